package fulfillment

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	orderingports "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

const (
	// PublishSubmittedOrderActivityName announces a submitted order to the kitchen.
	PublishSubmittedOrderActivityName = "orders.activities.PublishSubmittedOrder"
)

// Activities groups the kitchen hand-off activities.
type Activities struct {
	publisher orderingports.KitchenPublisher
}

func NewActivities(publisher orderingports.KitchenPublisher) *Activities {
	return &Activities{publisher: publisher}
}

// PublishSubmittedOrder publishes the order document on the kitchen exchange.
func (a *Activities) PublishSubmittedOrder(ctx context.Context, order documents.OrderDocument) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.publisher == nil {
		logger.Error("fulfillment activity not initialized", "orderId", order.ID)
		return errors.New("fulfillment activity not initialized")
	}
	logger.Info("PublishSubmittedOrder activity started", "orderId", order.ID)
	if err := a.publisher.PublishSubmitted(ctx, documents.FromDocument(order)); err != nil {
		logger.Error("PublishSubmittedOrder activity failed", "orderId", order.ID, "error", err)
		return err
	}
	logger.Info("PublishSubmittedOrder activity completed", "orderId", order.ID)
	return nil
}
