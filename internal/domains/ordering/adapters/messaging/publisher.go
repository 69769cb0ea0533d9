// Package messaging announces submitted orders to the kitchen over AMQP.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
	"github.com/Apurer/go-gin-pos-server/internal/platform/messaging/rabbitmq"
)

// SubmittedRoutingKey routes submitted terminal orders to the kitchen queue.
const SubmittedRoutingKey = "kitchen.pos.submitted"

var (
	_ ports.KitchenPublisher = (*KitchenPublisher)(nil)
	_ ports.KitchenPublisher = NoopPublisher{}
)

// Broker is the slice of the AMQP client the publisher needs.
type Broker interface {
	Publish(ctx context.Context, msg rabbitmq.Message) error
}

// KitchenPublisher publishes submitted orders as persistent JSON messages.
type KitchenPublisher struct {
	broker Broker
}

func NewKitchenPublisher(broker Broker) *KitchenPublisher {
	return &KitchenPublisher{broker: broker}
}

func (p *KitchenPublisher) PublishSubmitted(ctx context.Context, order domain.SubmittedOrder) error {
	body, err := json.Marshal(documents.ToDocument(order))
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	return p.broker.Publish(ctx, rabbitmq.Message{
		Exchange:    rabbitmq.OrdersExchange,
		RoutingKey:  SubmittedRoutingKey,
		Body:        body,
		ContentType: "application/json",
		Headers:     map[string]any{"order_id": order.ID},
		Persistent:  true,
	})
}

// NoopPublisher drops messages when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSubmitted(context.Context, domain.SubmittedOrder) error { return nil }
