package fulfillment

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	"github.com/Apurer/go-gin-pos-server/internal/platform/temporal/sequences"
)

const (
	// WorkflowName is the registered name of the kitchen hand-off workflow.
	WorkflowName = "orders.workflows.Fulfillment"
	// TaskQueue is served by cmd/worker.
	TaskQueue = "ORDER_FULFILLMENT"
)

// WorkflowInput carries the persisted order.
type WorkflowInput struct {
	Order documents.OrderDocument
}

// Workflow publishes a submitted order to the kitchen.
func Workflow(ctx workflow.Context, input WorkflowInput) error {
	return sequences.RunFulfillmentSequence(ctx, input.Order)
}

// WorkflowID is deterministic per order so duplicate dispatches collapse.
func WorkflowID(orderID string) string {
	return "fulfillment-" + orderID
}
