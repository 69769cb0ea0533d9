package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	fulfillmentactivities "github.com/Apurer/go-gin-pos-server/internal/platform/temporal/activities/fulfillment"
)

// RunFulfillmentSequence hands a persisted order to the kitchen, retrying the publish.
func RunFulfillmentSequence(ctx workflow.Context, order documents.OrderDocument) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("fulfillment sequence started", "orderId", order.ID)
	publishOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, publishOptions),
		fulfillmentactivities.PublishSubmittedOrderActivityName,
		order,
	).Get(ctx, nil)
	if err != nil {
		logger.Error("fulfillment sequence failed", "orderId", order.ID, "error", err)
		return err
	}
	logger.Info("fulfillment sequence published", "orderId", order.ID)
	return nil
}
