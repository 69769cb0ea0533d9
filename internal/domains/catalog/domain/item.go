package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups catalog items for the order screen.
type Category string

const (
	CategoryMain  Category = "main"
	CategorySide  Category = "side"
	CategoryDrink Category = "drink"
)

var (
	ErrEmptyName       = errors.New("item name is required")
	ErrInvalidPrice    = errors.New("item price must be a non-negative amount")
	ErrInvalidCategory = errors.New("item category is invalid")
)

// Item is a sellable catalog entry.
type Item struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Category  Category
}

// NewItem builds an item ensuring required invariants.
func NewItem(id, name string, unitPrice decimal.Decimal, category Category) (*Item, error) {
	item := &Item{ID: id}
	if err := item.Rename(name); err != nil {
		return nil, err
	}
	if err := item.Reprice(unitPrice); err != nil {
		return nil, err
	}
	if err := item.Categorize(category); err != nil {
		return nil, err
	}
	return item, nil
}

// Rename trims and validates the display name.
func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	i.Name = name
	return nil
}

// Reprice rejects negative prices.
func (i *Item) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	i.UnitPrice = price
	return nil
}

// Categorize sets the category, defaulting to main.
func (i *Item) Categorize(category Category) error {
	category, err := ParseCategory(string(category))
	if err != nil {
		return err
	}
	i.Category = category
	return nil
}

// ParsePrice reads a non-negative decimal amount such as "10" or "2.50".
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}

// ParseCategory normalizes a category name. Empty input means main.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CategoryMain:
		return CategoryMain, nil
	case CategorySide:
		return CategorySide, nil
	case CategoryDrink:
		return CategoryDrink, nil
	default:
		return "", ErrInvalidCategory
	}
}
