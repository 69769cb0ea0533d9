package domain

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
)

var (
	ErrInvalidDiscount = errors.New("discount must be a number between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Line is one catalog item's quantity in the order. Name and price are copied
// when the item is first added so later catalog edits do not reprice the sale.
type Line struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is the exact unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is an immutable copy of an order's state.
type Snapshot struct {
	Lines           []Line
	DiscountPercent decimal.Decimal
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Order is the in-progress sale. Invariants: at most one line per item id,
// every quantity is positive, discount is within [0,100].
type Order struct {
	lines    []Line
	discount decimal.Decimal
}

// NewOrder returns an empty order with no discount.
func NewOrder() *Order {
	return &Order{discount: decimal.Zero}
}

// AddItem increments the existing line for item or appends a new one.
func (o *Order) AddItem(item catalogdomain.Item) {
	if i := o.index(item.ID); i >= 0 {
		o.lines[i].Quantity++
		return
	}
	o.lines = append(o.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  1,
	})
}

// ChangeQuantity applies delta, removing the line when it reaches zero.
// Unknown item ids are ignored.
func (o *Order) ChangeQuantity(itemID string, delta int) {
	i := o.index(itemID)
	if i < 0 {
		return
	}
	quantity := o.lines[i].Quantity
	if delta > 0 && quantity > math.MaxInt-delta {
		quantity = math.MaxInt
	} else {
		quantity += delta
	}
	if quantity <= 0 {
		o.removeAt(i)
		return
	}
	o.lines[i].Quantity = quantity
}

// RemoveItem drops the line regardless of quantity.
func (o *Order) RemoveItem(itemID string) {
	if i := o.index(itemID); i >= 0 {
		o.removeAt(i)
	}
}

// SetDiscountPercent keeps the prior value when percent is outside [0,100].
func (o *Order) SetDiscountPercent(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	o.discount = percent
	return nil
}

// Clear resets to an empty order with no discount.
func (o *Order) Clear() {
	o.lines = nil
	o.discount = decimal.Zero
}

// Settle removes what a committed submission took from the order. Units
// added after the submission was taken stay; the discount resets unless it
// was changed in the meantime.
func (o *Order) Settle(submitted Snapshot) {
	for _, line := range submitted.Lines {
		o.ChangeQuantity(line.ItemID, -line.Quantity)
	}
	if o.discount.Equal(submitted.DiscountPercent) {
		o.discount = decimal.Zero
	}
}

func (o *Order) DiscountPercent() decimal.Decimal {
	return o.discount
}

func (o *Order) IsEmpty() bool {
	return len(o.lines) == 0
}

// Snapshot copies the current state.
func (o *Order) Snapshot() Snapshot {
	lines := make([]Line, len(o.lines))
	copy(lines, o.lines)
	return Snapshot{Lines: lines, DiscountPercent: o.discount}
}

func (o *Order) index(itemID string) int {
	for i := range o.lines {
		if o.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (o *Order) removeAt(i int) {
	o.lines = append(o.lines[:i], o.lines[i+1:]...)
}

// ParseDiscountPercent reads discount field text. Empty input means zero.
func ParseDiscountPercent(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	percent, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidDiscount
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, ErrInvalidDiscount
	}
	return percent, nil
}
