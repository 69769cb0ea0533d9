// Package documents stores submitted orders in the remote document store.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
)

// Collection is the remote collection receiving submitted orders.
const Collection = "orders"

var _ ports.OrderStore = (*OrderStore)(nil)

// LineDocument is the stored shape of an order line.
type LineDocument struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderDocument is the stored shape of a submitted order. It doubles as the
// kitchen message payload.
type OrderDocument struct {
	ID              string          `json:"id,omitempty"`
	SessionID       string          `json:"sessionId"`
	Employee        string          `json:"employee"`
	Lines           []LineDocument  `json:"lines"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxRatePercent  decimal.Decimal `json:"taxRatePercent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	SubmittedAt     time.Time       `json:"submittedAt"`
}

// OrderStore writes submitted orders as new documents.
type OrderStore struct {
	store docstore.Store
}

func NewOrderStore(store docstore.Store) *OrderStore {
	return &OrderStore{store: store}
}

// Submit creates the order document and returns the id assigned by the store.
func (s *OrderStore) Submit(ctx context.Context, order domain.SubmittedOrder) (string, error) {
	if s == nil || s.store == nil {
		return "", errors.New("order store not configured")
	}
	doc := ToDocument(order)
	doc.ID = ""
	data, err := docstore.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}
	return s.store.Create(ctx, Collection, data)
}

// ToDocument flattens a submitted order.
func ToDocument(order domain.SubmittedOrder) OrderDocument {
	lines := make([]LineDocument, 0, len(order.Order.Lines))
	for _, line := range order.Order.Lines {
		lines = append(lines, LineDocument{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal(),
		})
	}
	return OrderDocument{
		ID:              order.ID,
		SessionID:       order.SessionID,
		Employee:        order.Employee,
		Lines:           lines,
		DiscountPercent: order.Order.DiscountPercent,
		TaxRatePercent:  order.TaxRatePercent,
		Subtotal:        order.Totals.Subtotal,
		DiscountAmount:  order.Totals.DiscountAmount,
		TaxableAmount:   order.Totals.TaxableAmount,
		TaxAmount:       order.Totals.TaxAmount,
		Total:           order.Totals.Total,
		Status:          string(order.Status),
		SubmittedAt:     order.SubmittedAt,
	}
}

// FromDocument rebuilds a submitted order.
func FromDocument(doc OrderDocument) domain.SubmittedOrder {
	lines := make([]domain.Line, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, domain.Line{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return domain.SubmittedOrder{
		ID:             doc.ID,
		SessionID:      doc.SessionID,
		Employee:       doc.Employee,
		Order:          domain.Snapshot{Lines: lines, DiscountPercent: doc.DiscountPercent},
		TaxRatePercent: doc.TaxRatePercent,
		Totals: domain.PricingResult{
			Subtotal:       doc.Subtotal,
			DiscountAmount: doc.DiscountAmount,
			TaxableAmount:  doc.TaxableAmount,
			TaxAmount:      doc.TaxAmount,
			Total:          doc.Total,
		},
		Status:      domain.SubmissionStatus(doc.Status),
		SubmittedAt: doc.SubmittedAt,
	}
}
