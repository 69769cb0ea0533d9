package workflows

import (
	"context"
	"errors"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
	fulfillmentworkflows "github.com/Apurer/go-gin-pos-server/internal/platform/temporal/workflows/fulfillment"
)

var (
	_ ports.FulfillmentDispatcher = (*TemporalDispatcher)(nil)
	_ ports.FulfillmentDispatcher = (*InlineDispatcher)(nil)
)

// WorkflowStarter is the part of the Temporal client the dispatcher uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalDispatcher starts the durable fulfillment workflow and returns
// without waiting for it to finish.
type TemporalDispatcher struct {
	client    WorkflowStarter
	taskQueue string
}

func NewTemporalDispatcher(c WorkflowStarter) *TemporalDispatcher {
	return &TemporalDispatcher{client: c, taskQueue: fulfillmentworkflows.TaskQueue}
}

// Dispatch starts one workflow per order id; a repeat dispatch is a no-op.
func (d *TemporalDispatcher) Dispatch(ctx context.Context, order domain.SubmittedOrder) error {
	if d == nil || d.client == nil {
		return errors.New("temporal fulfillment dispatcher not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fulfillmentworkflows.WorkflowID(order.ID),
		TaskQueue: d.taskQueue,
	}
	_, err := d.client.ExecuteWorkflow(ctx, options, fulfillmentworkflows.WorkflowName,
		fulfillmentworkflows.WorkflowInput{Order: documents.ToDocument(order)})
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return nil
	}
	return err
}

// InlineDispatcher publishes directly without durable orchestration, useful for tests or dev fallbacks.
type InlineDispatcher struct {
	publisher ports.KitchenPublisher
}

func NewInlineDispatcher(publisher ports.KitchenPublisher) *InlineDispatcher {
	return &InlineDispatcher{publisher: publisher}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, order domain.SubmittedOrder) error {
	if d == nil || d.publisher == nil {
		return errors.New("inline fulfillment dispatcher not configured")
	}
	return d.publisher.PublishSubmitted(ctx, order)
}
