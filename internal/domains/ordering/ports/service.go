package ports

import (
	"context"

	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
)

// State is what observers and readers see after each order mutation.
type State struct {
	SessionID string
	Employee  string
	Order     domain.Snapshot
	Pricing   domain.PricingResult
	Version   uint64
}

// CheckoutResult reports a commit. Submitted is false when the order was empty.
type CheckoutResult struct {
	OrderID   string
	Submitted bool
	Totals    domain.PricingResult
}

// Service exposes the order-entry use cases to adapters.
type Service interface {
	OpenSession(ctx context.Context, employee directorydomain.Employee) (State, error)
	CloseSession(ctx context.Context, sessionID string) error
	Order(ctx context.Context, sessionID string) (State, error)
	AddItem(ctx context.Context, sessionID, itemID string) (State, error)
	ChangeQuantity(ctx context.Context, sessionID, itemID string, delta int) (State, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (State, error)
	SetDiscountPercent(ctx context.Context, sessionID, raw string) (State, bool, error)
	Clear(ctx context.Context, sessionID string) (State, error)
	Checkout(ctx context.Context, sessionID string) (CheckoutResult, error)
	// Watch calls fn with every later state of the session's order until
	// cancel runs. fn runs on the mutating goroutine and must not block.
	Watch(ctx context.Context, sessionID string, fn func(State)) (cancel func(), err error)
}
