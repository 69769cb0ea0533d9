package domain

// ItemForm holds the new-item fields the admin is typing. The gateway resets
// it only after the item was written.
type ItemForm struct {
	Name     string
	Price    string
	Category string
}

func (f *ItemForm) Input() ItemInput {
	return ItemInput{Name: f.Name, Price: f.Price, Category: f.Category}
}

// Reset clears every field.
func (f *ItemForm) Reset() {
	*f = ItemForm{}
}
