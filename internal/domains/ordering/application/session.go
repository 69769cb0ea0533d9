package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

// Session owns one employee's in-progress order from sign-in to sign-out.
// Mutations are serialized; every mutation reprices the order and notifies
// observers with the new state, in version order.
type Session struct {
	id       string
	employee string
	catalog  ports.Catalog
	settings ports.Settings

	mu         sync.Mutex
	order      *domain.Order
	pricing    domain.PricingResult
	version    uint64
	submitting bool
	lastSeen   atomic.Int64

	notifyMu  sync.Mutex
	delivered uint64
	observers map[uint64]func(ports.State)
	nextObs   uint64
}

func newSession(id, employee string, catalog ports.Catalog, settings ports.Settings) *Session {
	s := &Session{
		id:        id,
		employee:  employee,
		catalog:   catalog,
		settings:  settings,
		order:     domain.NewOrder(),
		observers: map[uint64]func(ports.State){},
	}
	s.pricing = domain.ComputeTotals(s.order.Snapshot(), s.taxRate())
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	busy := s.submitting
	s.mu.Unlock()
	return !busy && s.lastSeen.Load() < cutoff.UnixNano()
}

func (s *Session) Employee() string { return s.employee }

// State returns the current order and its pricing.
func (s *Session) State() ports.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Observe registers fn for every later state change. Observers run on the
// mutating goroutine and must not mutate the session.
func (s *Session) Observe(fn func(ports.State)) (cancel func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	return func() {
		s.notifyMu.Lock()
		delete(s.observers, id)
		s.notifyMu.Unlock()
	}
}

// AddItem resolves itemID through the catalog and adds one unit.
func (s *Session) AddItem(_ context.Context, itemID string) (ports.State, error) {
	item, ok := s.catalog.Lookup(itemID)
	if !ok {
		return s.State(), mapError(fmt.Errorf("%w: %s", ErrUnknownItem, itemID))
	}
	return s.mutate(func(o *domain.Order) { o.AddItem(item) }), nil
}

func (s *Session) ChangeQuantity(itemID string, delta int) ports.State {
	return s.mutate(func(o *domain.Order) { o.ChangeQuantity(itemID, delta) })
}

func (s *Session) RemoveItem(itemID string) ports.State {
	return s.mutate(func(o *domain.Order) { o.RemoveItem(itemID) })
}

// SetDiscountPercent applies discount field text. Invalid input leaves the
// order untouched and reports false.
func (s *Session) SetDiscountPercent(raw string) (ports.State, bool) {
	percent, err := domain.ParseDiscountPercent(raw)
	if err != nil {
		return s.State(), false
	}
	var applied bool
	state := s.mutate(func(o *domain.Order) { applied = o.SetDiscountPercent(percent) == nil })
	return state, applied
}

func (s *Session) Clear() ports.State {
	return s.mutate(func(o *domain.Order) { o.Clear() })
}

// settle drops the submitted lines once their commit succeeded.
func (s *Session) settle(submitted domain.Snapshot) ports.State {
	return s.mutate(func(o *domain.Order) { o.Settle(submitted) })
}

// Reprice recomputes totals after a settings change.
func (s *Session) Reprice() ports.State {
	return s.mutate(func(*domain.Order) {})
}

func (s *Session) mutate(fn func(*domain.Order)) ports.State {
	s.mu.Lock()
	fn(s.order)
	s.pricing = domain.ComputeTotals(s.order.Snapshot(), s.taxRate())
	s.version++
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return state
}

func (s *Session) notify(state ports.State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if state.Version <= s.delivered {
		return
	}
	s.delivered = state.Version
	for _, fn := range s.observers {
		fn(state)
	}
}

func (s *Session) stateLocked() ports.State {
	return ports.State{
		SessionID: s.id,
		Employee:  s.employee,
		Order:     s.order.Snapshot(),
		Pricing:   s.pricing,
		Version:   s.version,
	}
}

func (s *Session) taxRate() decimal.Decimal {
	return s.settings.Current().TaxRatePercent
}

func (s *Session) beginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmissionInFlight
	}
	s.submitting = true
	return nil
}

func (s *Session) endSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}
