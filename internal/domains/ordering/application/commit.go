package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

// Draft is the finalized order handed to the commit pipeline.
type Draft struct {
	SessionID      string
	Employee       string
	Order          domain.Snapshot
	TaxRatePercent decimal.Decimal
}

// CommitPipeline performs the one-shot write of a finalized order. It never
// retries and never clears the caller's order.
type CommitPipeline struct {
	store      ports.OrderStore
	dispatcher ports.FulfillmentDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

type CommitOption func(*CommitPipeline)

func WithDispatcher(dispatcher ports.FulfillmentDispatcher) CommitOption {
	return func(p *CommitPipeline) {
		p.dispatcher = dispatcher
	}
}

func WithCommitLogger(logger *slog.Logger) CommitOption {
	return func(p *CommitPipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithClock(now func() time.Time) CommitOption {
	return func(p *CommitPipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func NewCommitPipeline(store ports.OrderStore, opts ...CommitOption) *CommitPipeline {
	p := &CommitPipeline{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Submit writes draft as a pending order and returns its id. An empty draft
// is a no-op that returns an empty id and no error.
func (p *CommitPipeline) Submit(ctx context.Context, draft Draft) (string, error) {
	submitted, err := p.submit(ctx, draft)
	return submitted.ID, err
}

func (p *CommitPipeline) submit(ctx context.Context, draft Draft) (domain.SubmittedOrder, error) {
	if draft.Order.IsEmpty() {
		return domain.SubmittedOrder{}, nil
	}
	order := domain.SubmittedOrder{
		SessionID:      draft.SessionID,
		Employee:       draft.Employee,
		Order:          draft.Order,
		TaxRatePercent: draft.TaxRatePercent,
		Totals:         domain.ComputeTotals(draft.Order, draft.TaxRatePercent).Rounded(),
		Status:         domain.StatusPending,
		SubmittedAt:    p.now().UTC(),
	}
	id, err := p.store.Submit(ctx, order)
	if err != nil {
		return domain.SubmittedOrder{}, mapError(fmt.Errorf("%w: %w", ErrCommitFailed, err))
	}
	order.ID = id

	if p.dispatcher != nil {
		// The order is already persisted; a failed hand-off must not turn into a commit error.
		if err := p.dispatcher.Dispatch(ctx, order); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelWarn, "fulfillment dispatch failed",
				slog.String("order.id", id), slog.String("error", err.Error()))
		}
	}
	return order, nil
}
