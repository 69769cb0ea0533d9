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

	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/admin/ports"
)

const tracerName = "github.com/Apurer/go-gin-pos-server/internal/domains/admin/adapters/observability/gateway"

// Gateway decorates the admin gateway with tracing, logging, and metrics.
type Gateway struct {
	inner     ports.Gateway
	tracer    trace.Tracer
	logger    *slog.Logger
	mutations metric.Int64Counter
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(g *Gateway) {
		if m == nil {
			return
		}
		g.mutations, _ = m.Int64Counter("admin.mutations", metric.WithDescription("Admin writes by operation and outcome"))
	}
}

func New(inner ports.Gateway, opts ...Option) ports.Gateway {
	g := &Gateway{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.tracer == nil {
		g.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return g
}

func (g *Gateway) CreateItem(ctx context.Context, input domain.ItemInput) (string, error) {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.CreateItem")
	defer span.End()

	id, err := g.inner.CreateItem(ctx, input)
	return id, g.finish(ctx, span, "create_item", err, slog.String("item.id", id), slog.String("item.name", input.Name))
}

func (g *Gateway) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) error {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.UpdateItem", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	return g.finish(ctx, span, "update_item", g.inner.UpdateItem(ctx, id, patch), slog.String("item.id", id))
}

func (g *Gateway) RequestItemDeletion(ctx context.Context, id string) (domain.Confirmation, error) {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.RequestItemDeletion", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	confirmation, err := g.inner.RequestItemDeletion(ctx, id)
	if err != nil {
		return confirmation, g.handleError(ctx, span, err, "failed to request item deletion", slog.String("item.id", id))
	}
	return confirmation, nil
}

func (g *Gateway) SubmitItemForm(ctx context.Context, form *domain.ItemForm) (string, error) {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.SubmitItemForm")
	defer span.End()

	id, err := g.inner.SubmitItemForm(ctx, form)
	return id, g.finish(ctx, span, "submit_item_form", err, slog.String("item.id", id))
}

func (g *Gateway) CreateEmployee(ctx context.Context, input domain.EmployeeInput) (string, error) {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.CreateEmployee")
	defer span.End()

	id, err := g.inner.CreateEmployee(ctx, input)
	return id, g.finish(ctx, span, "create_employee", err, slog.String("employee.id", id), slog.String("employee.username", input.Username))
}

func (g *Gateway) UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) error {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.UpdateEmployee", trace.WithAttributes(attribute.String("employee.id", id)))
	defer span.End()

	return g.finish(ctx, span, "update_employee", g.inner.UpdateEmployee(ctx, id, patch), slog.String("employee.id", id))
}

func (g *Gateway) RequestEmployeeDeletion(ctx context.Context, id string) (domain.Confirmation, error) {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.RequestEmployeeDeletion", trace.WithAttributes(attribute.String("employee.id", id)))
	defer span.End()

	confirmation, err := g.inner.RequestEmployeeDeletion(ctx, id)
	if err != nil {
		return confirmation, g.handleError(ctx, span, err, "failed to request employee deletion", slog.String("employee.id", id))
	}
	return confirmation, nil
}

func (g *Gateway) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) error {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.UpdateSettings")
	defer span.End()

	return g.finish(ctx, span, "update_settings", g.inner.UpdateSettings(ctx, patch))
}

func (g *Gateway) Confirm(ctx context.Context, token string) (domain.Confirmation, error) {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.Confirm")
	defer span.End()

	confirmation, err := g.inner.Confirm(ctx, token)
	op := "delete"
	if confirmation.Kind != "" {
		op = "delete_" + string(confirmation.Kind)
	}
	return confirmation, g.finish(ctx, span, op, err, slog.String("target.id", confirmation.TargetID))
}

func (g *Gateway) Cancel(ctx context.Context, token string) error {
	ctx, span := g.tracer.Start(ctx, "AdminGateway.Cancel")
	defer span.End()

	if err := g.inner.Cancel(ctx, token); err != nil {
		return g.handleError(ctx, span, err, "failed to cancel confirmation")
	}
	return nil
}

func (g *Gateway) Pending(ctx context.Context) []domain.Confirmation {
	return g.inner.Pending(ctx)
}

// finish records the outcome of a write.
func (g *Gateway) finish(ctx context.Context, span trace.Span, op string, err error, attrs ...slog.Attr) error {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if g.mutations != nil {
		g.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op), attribute.String("outcome", outcome)))
	}
	attrs = append(attrs, slog.String("op", op))
	if err != nil {
		return g.handleError(ctx, span, err, "admin mutation failed", attrs...)
	}
	if g.logger != nil {
		g.logger.LogAttrs(ctx, slog.LevelInfo, "admin mutation written", attrs...)
	}
	return nil
}

func (g *Gateway) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if g.logger != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, msg, append(attrs, slog.String("error", err.Error()))...)
	}
	return err
}

var _ ports.Gateway = (*Gateway)(nil)
