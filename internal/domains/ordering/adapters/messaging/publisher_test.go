package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/messaging/rabbitmq"
)

type recordingBroker struct {
	messages []rabbitmq.Message
}

func (b *recordingBroker) Publish(_ context.Context, msg rabbitmq.Message) error {
	b.messages = append(b.messages, msg)
	return nil
}

func TestKitchenPublisher_PublishesPersistentJSON(t *testing.T) {
	broker := &recordingBroker{}
	order := domain.SubmittedOrder{
		ID:          "o1",
		Employee:    "sam",
		Order:       domain.Snapshot{Lines: []domain.Line{{ItemID: "a", Name: "Burger", UnitPrice: decimal.NewFromInt(10), Quantity: 1}}},
		Totals:      domain.PricingResult{Total: decimal.RequireFromString("10.80")},
		Status:      domain.StatusPending,
		SubmittedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, NewKitchenPublisher(broker).PublishSubmitted(context.Background(), order))
	require.Len(t, broker.messages, 1)

	msg := broker.messages[0]
	assert.Equal(t, rabbitmq.OrdersExchange, msg.Exchange)
	assert.Equal(t, SubmittedRoutingKey, msg.RoutingKey)
	assert.True(t, msg.Persistent)
	assert.Equal(t, "o1", msg.Headers["order_id"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &payload))
	assert.Equal(t, "o1", payload["id"])
	assert.Equal(t, "10.8", payload["total"])
	assert.Equal(t, "pending", payload["status"])
}
