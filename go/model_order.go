package posserver

type OrderLine struct {
	ItemId    string `json:"itemId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

// Pricing carries amounts rounded to cents.
type Pricing struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discountAmount"`
	TaxableAmount  string `json:"taxableAmount"`
	TaxAmount      string `json:"taxAmount"`
	Total          string `json:"total"`
}

type Order struct {
	SessionId       string      `json:"sessionId"`
	Employee        string      `json:"employee"`
	Lines           []OrderLine `json:"lines"`
	DiscountPercent string      `json:"discountPercent"`
	Pricing         Pricing     `json:"pricing"`
	Version         uint64      `json:"version"`
}

type AddItemRequest struct {
	ItemId string `json:"itemId"`
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta"`
}

type DiscountRequest struct {
	Value Amount `json:"value"`
}

// DiscountResponse reports whether the submitted discount was accepted.
// A rejected value leaves the order as it was.
type DiscountResponse struct {
	Applied bool  `json:"applied"`
	Order   Order `json:"order"`
}

type CheckoutResponse struct {
	OrderId   string   `json:"orderId,omitempty"`
	Submitted bool     `json:"submitted"`
	Totals    *Pricing `json:"totals,omitempty"`
}
