package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

type staticCatalog map[string]catalogdomain.Item

func (c staticCatalog) Lookup(id string) (catalogdomain.Item, bool) {
	item, ok := c[id]
	return item, ok
}

type mutableSettings struct {
	mu    sync.Mutex
	value settingsdomain.Business
}

func (s *mutableSettings) Current() settingsdomain.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *mutableSettings) setRate(rate string) {
	s.mu.Lock()
	s.value.TaxRatePercent = decimal.RequireFromString(rate)
	s.mu.Unlock()
}

type fakeOrderStore struct {
	mu      sync.Mutex
	orders  []domain.SubmittedOrder
	err     error
	release chan struct{}
	entered chan struct{}
}

func (f *fakeOrderStore) Submit(_ context.Context, order domain.SubmittedOrder) (string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.orders = append(f.orders, order)
	return "order-1", nil
}

func (f *fakeOrderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []domain.SubmittedOrder
	err        error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, order domain.SubmittedOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, order)
	return f.err
}

var burger = catalogdomain.Item{ID: "a", Name: "Burger", UnitPrice: decimal.RequireFromString("10.00"), Category: catalogdomain.CategoryMain}

type fixture struct {
	service    *Service
	sessions   *Sessions
	settings   *mutableSettings
	store      *fakeOrderStore
	dispatcher *fakeDispatcher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	settings := &mutableSettings{value: settingsdomain.Default("Stand", decimal.NewFromInt(8))}
	store := &fakeOrderStore{}
	dispatcher := &fakeDispatcher{}
	sessions := NewSessions(staticCatalog{"a": burger}, settings)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pipeline := NewCommitPipeline(store, WithDispatcher(dispatcher), WithClock(func() time.Time { return fixed }))
	return fixture{
		service:    NewService(sessions, settings, pipeline),
		sessions:   sessions,
		settings:   settings,
		store:      store,
		dispatcher: dispatcher,
	}
}

func (f fixture) open(t *testing.T) string {
	t.Helper()
	state, err := f.service.OpenSession(context.Background(), directorydomain.Employee{Username: "sam"})
	require.NoError(t, err)
	return state.SessionID
}

func TestService_PricingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)

	_, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)
	state, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)
	require.Len(t, state.Order.Lines, 1)
	assert.Equal(t, 2, state.Order.Lines[0].Quantity)

	state, applied, err := f.service.SetDiscountPercent(ctx, id, "10")
	require.NoError(t, err)
	require.True(t, applied)

	rounded := state.Pricing.Rounded()
	assert.Equal(t, "20.00", rounded.Subtotal.StringFixed(2))
	assert.Equal(t, "2.00", rounded.DiscountAmount.StringFixed(2))
	assert.Equal(t, "18.00", rounded.TaxableAmount.StringFixed(2))
	assert.Equal(t, "1.44", rounded.TaxAmount.StringFixed(2))
	assert.Equal(t, "19.44", rounded.Total.StringFixed(2))
}

func TestService_AddUnknownItemIsInvalidReference(t *testing.T) {
	f := newFixture(t)
	id := f.open(t)

	_, err := f.service.AddItem(context.Background(), id, "ghost")
	require.ErrorIs(t, err, fault.ErrInvalidReference)
	require.ErrorIs(t, err, ErrUnknownItem)

	state, err := f.service.Order(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, state.Order.IsEmpty())
}

func TestService_InvalidDiscountKeepsPriorValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)

	_, applied, err := f.service.SetDiscountPercent(ctx, id, "25")
	require.NoError(t, err)
	require.True(t, applied)

	for _, raw := range []string{"150", "-5", "ten"} {
		state, applied, err := f.service.SetDiscountPercent(ctx, id, raw)
		require.NoError(t, err)
		assert.False(t, applied, raw)
		assert.True(t, state.Order.DiscountPercent.Equal(decimal.NewFromInt(25)), raw)
	}

	state, applied, err := f.service.SetDiscountPercent(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, state.Order.DiscountPercent.IsZero())
}

func TestService_UnknownSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Order(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, f.service.CloseSession(context.Background(), "missing"), ErrSessionNotFound)
}

func TestService_CheckoutSubmitsAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)

	result, err := f.service.Checkout(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, "10.80", result.Totals.Total.StringFixed(2))

	require.Equal(t, 1, f.store.count())
	stored := f.store.orders[0]
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, "sam", stored.Employee)
	assert.Equal(t, id, stored.SessionID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), stored.SubmittedAt)

	require.Len(t, f.dispatcher.dispatched, 1)
	assert.Equal(t, "order-1", f.dispatcher.dispatched[0].ID)

	state, err := f.service.Order(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.Order.IsEmpty())
}

func TestService_CheckoutEmptyOrderIsNoop(t *testing.T) {
	f := newFixture(t)
	id := f.open(t)

	result, err := f.service.Checkout(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, result.Submitted)
	assert.Empty(t, result.OrderID)
	assert.Zero(t, f.store.count())
}

func TestService_CheckoutFailureLeavesOrderForRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)

	f.store.err = errors.New("connection reset")
	_, err = f.service.Checkout(ctx, id)
	require.ErrorIs(t, err, fault.ErrRemoteUnavailable)
	require.ErrorIs(t, err, ErrCommitFailed)
	assert.Empty(t, f.dispatcher.dispatched)

	state, err := f.service.Order(ctx, id)
	require.NoError(t, err)
	require.Len(t, state.Order.Lines, 1)

	f.store.err = nil
	result, err := f.service.Checkout(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
}

func TestService_DispatchFailureStillCommits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)

	f.dispatcher.err = errors.New("broker down")
	result, err := f.service.Checkout(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
}

func TestService_ConcurrentCheckoutRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)

	f.store.entered = make(chan struct{}, 1)
	f.store.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Checkout(ctx, id)
		done <- err
	}()
	<-f.store.entered

	_, err = f.service.Checkout(ctx, id)
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(f.store.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.store.count())
}

func TestService_EditsDuringCheckoutAreKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)

	f.store.entered = make(chan struct{}, 1)
	f.store.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Checkout(ctx, id)
		done <- err
	}()
	<-f.store.entered

	state, err := f.service.AddItem(ctx, id, "a")
	require.NoError(t, err)
	require.Equal(t, 2, state.Order.Lines[0].Quantity)

	close(f.store.release)
	require.NoError(t, <-done)

	require.Equal(t, 1, f.store.count())
	assert.Equal(t, 1, f.store.orders[0].Order.Lines[0].Quantity)
	left, err := f.service.Order(ctx, id)
	require.NoError(t, err)
	require.Len(t, left.Order.Lines, 1)
	assert.Equal(t, 1, left.Order.Lines[0].Quantity)
}

func TestSession_ObserversSeeEveryMutation(t *testing.T) {
	f := newFixture(t)
	session := f.sessions.Open("sam")

	var versions []uint64
	cancel := session.Observe(func(state ports.State) { versions = append(versions, state.Version) })

	_, err := session.AddItem(context.Background(), "a")
	require.NoError(t, err)
	session.ChangeQuantity("a", 1)
	session.SetDiscountPercent("5")
	session.SetDiscountPercent("500")
	session.Clear()
	cancel()
	session.Clear()

	assert.Equal(t, []uint64{1, 2, 3, 4}, versions)
}

func TestSessions_RepriceAllAppliesNewTaxRate(t *testing.T) {
	f := newFixture(t)
	session := f.sessions.Open("sam")
	_, err := session.AddItem(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "0.80", session.State().Pricing.TaxAmount.StringFixed(2))

	f.settings.setRate("8.25")
	f.sessions.RepriceAll()
	assert.Equal(t, "0.83", session.State().Pricing.Rounded().TaxAmount.StringFixed(2))
}

func TestSessions_CloseDestroysOrder(t *testing.T) {
	f := newFixture(t)
	session := f.sessions.Open("sam")
	_, err := session.AddItem(context.Background(), "a")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Close(session.ID()))
	assert.True(t, session.State().Order.IsEmpty())
	_, err = f.sessions.Get(session.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, f.sessions.Len())
}

func TestCommitPipeline_EmptyDraftReturnsNoID(t *testing.T) {
	store := &fakeOrderStore{}
	pipeline := NewCommitPipeline(store)

	id, err := pipeline.Submit(context.Background(), Draft{Order: domain.Snapshot{}, TaxRatePercent: decimal.NewFromInt(8)})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Zero(t, store.count())
}

func TestSessions_PurgeIdleClosesStaleSessions(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.sessions.SetClock(func() time.Time { return now })

	stale := f.open(t)
	now = now.Add(20 * time.Minute)
	fresh := f.open(t)

	purged := f.sessions.PurgeIdle(now.Add(-10 * time.Minute))
	assert.Equal(t, 1, purged)

	_, err := f.service.Order(context.Background(), stale)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.service.Order(context.Background(), fresh)
	require.NoError(t, err)
}
