package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	orderingports "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

const tracerName = "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/observability/service"

// Service decorates the ordering service with tracing, logging, and metrics.
type Service struct {
	inner   orderingports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core ordering service.
func New(inner orderingports.Service, opts ...Option) orderingports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) OpenSession(ctx context.Context, employee directorydomain.Employee) (orderingports.State, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.OpenSession", trace.WithAttributes(attribute.String("employee", employee.Username)))
	defer span.End()

	state, err := s.inner.OpenSession(ctx, employee)
	if err != nil {
		return state, s.handleError(ctx, span, err, "failed to open session", slog.String("employee", employee.Username))
	}
	s.metrics.recordSession(ctx, "opened")
	s.logInfo(ctx, "order session opened", slog.String("session.id", state.SessionID), slog.String("employee", employee.Username))
	return state, nil
}

func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "OrderingService.CloseSession", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if err := s.inner.CloseSession(ctx, sessionID); err != nil {
		return s.handleError(ctx, span, err, "failed to close session", slog.String("session.id", sessionID))
	}
	s.metrics.recordSession(ctx, "closed")
	s.logInfo(ctx, "order session closed", slog.String("session.id", sessionID))
	return nil
}

func (s *Service) Order(ctx context.Context, sessionID string) (orderingports.State, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.Order", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	state, err := s.inner.Order(ctx, sessionID)
	if err != nil {
		return state, s.handleError(ctx, span, err, "failed to load order", slog.String("session.id", sessionID))
	}
	return state, nil
}

func (s *Service) AddItem(ctx context.Context, sessionID, itemID string) (orderingports.State, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.AddItem",
		trace.WithAttributes(attribute.String("session.id", sessionID), attribute.String("item.id", itemID)))
	defer span.End()

	state, err := s.inner.AddItem(ctx, sessionID, itemID)
	if err != nil {
		return state, s.handleError(ctx, span, err, "failed to add item", slog.String("session.id", sessionID), slog.String("item.id", itemID))
	}
	s.annotate(span, state)
	return state, nil
}

func (s *Service) ChangeQuantity(ctx context.Context, sessionID, itemID string, delta int) (orderingports.State, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.ChangeQuantity",
		trace.WithAttributes(attribute.String("session.id", sessionID), attribute.String("item.id", itemID), attribute.Int("delta", delta)))
	defer span.End()

	state, err := s.inner.ChangeQuantity(ctx, sessionID, itemID, delta)
	if err != nil {
		return state, s.handleError(ctx, span, err, "failed to change quantity", slog.String("session.id", sessionID), slog.String("item.id", itemID))
	}
	s.annotate(span, state)
	return state, nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) (orderingports.State, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.RemoveItem",
		trace.WithAttributes(attribute.String("session.id", sessionID), attribute.String("item.id", itemID)))
	defer span.End()

	state, err := s.inner.RemoveItem(ctx, sessionID, itemID)
	if err != nil {
		return state, s.handleError(ctx, span, err, "failed to remove item", slog.String("session.id", sessionID), slog.String("item.id", itemID))
	}
	s.annotate(span, state)
	return state, nil
}

func (s *Service) SetDiscountPercent(ctx context.Context, sessionID, raw string) (orderingports.State, bool, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.SetDiscountPercent", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	state, applied, err := s.inner.SetDiscountPercent(ctx, sessionID, raw)
	if err != nil {
		return state, applied, s.handleError(ctx, span, err, "failed to set discount", slog.String("session.id", sessionID))
	}
	span.SetAttributes(attribute.Bool("discount.applied", applied))
	if !applied {
		s.metrics.recordRejectedDiscount(ctx)
	}
	s.annotate(span, state)
	return state, applied, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) (orderingports.State, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.Clear", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	state, err := s.inner.Clear(ctx, sessionID)
	if err != nil {
		return state, s.handleError(ctx, span, err, "failed to clear order", slog.String("session.id", sessionID))
	}
	return state, nil
}

func (s *Service) Checkout(ctx context.Context, sessionID string) (orderingports.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.Checkout", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	s.logInfo(ctx, "submitting order", slog.String("session.id", sessionID))
	result, err := s.inner.Checkout(ctx, sessionID)
	if err != nil {
		s.metrics.recordCheckoutFailure(ctx)
		return result, s.handleError(ctx, span, err, "failed to submit order", slog.String("session.id", sessionID))
	}
	if !result.Submitted {
		s.logInfo(ctx, "empty order not submitted", slog.String("session.id", sessionID))
		return result, nil
	}
	span.SetAttributes(attribute.String("order.id", result.OrderID), attribute.String("order.total", result.Totals.Total.StringFixed(2)))
	s.metrics.recordSubmitted(ctx)
	s.logInfo(ctx, "order submitted",
		slog.String("session.id", sessionID),
		slog.String("order.id", result.OrderID),
		slog.String("order.total", result.Totals.Total.StringFixed(2)),
	)
	return result, nil
}

func (s *Service) Watch(ctx context.Context, sessionID string, fn func(orderingports.State)) (func(), error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.Watch", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	cancel, err := s.inner.Watch(ctx, sessionID, fn)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to watch order", slog.String("session.id", sessionID))
	}
	s.logInfo(ctx, "order watch opened", slog.String("session.id", sessionID))
	return cancel, nil
}

func (s *Service) annotate(span trace.Span, state orderingports.State) {
	span.SetAttributes(
		attribute.Int("order.lines", len(state.Order.Lines)),
		attribute.Int64("order.version", int64(state.Version)),
	)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersSubmitted   metric.Int64Counter
	checkoutFailures  metric.Int64Counter
	sessions          metric.Int64Counter
	rejectedDiscounts metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersSubmitted, _ := m.Int64Counter("ordering.orders_submitted", metric.WithDescription("Number of orders committed"))
	checkoutFailures, _ := m.Int64Counter("ordering.checkout_failures", metric.WithDescription("Number of failed checkouts"))
	sessions, _ := m.Int64Counter("ordering.sessions", metric.WithDescription("Order session lifecycle events"))
	rejectedDiscounts, _ := m.Int64Counter("ordering.rejected_discounts", metric.WithDescription("Discount inputs rejected at the boundary"))
	return serviceMetrics{
		ordersSubmitted:   ordersSubmitted,
		checkoutFailures:  checkoutFailures,
		sessions:          sessions,
		rejectedDiscounts: rejectedDiscounts,
	}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context) {
	if m.ordersSubmitted != nil {
		m.ordersSubmitted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCheckoutFailure(ctx context.Context) {
	if m.checkoutFailures != nil {
		m.checkoutFailures.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordSession(ctx context.Context, event string) {
	if m.sessions != nil {
		m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
	}
}

func (m serviceMetrics) recordRejectedDiscount(ctx context.Context) {
	if m.rejectedDiscounts != nil {
		m.rejectedDiscounts.Add(ctx, 1)
	}
}

var _ orderingports.Service = (*Service)(nil)
