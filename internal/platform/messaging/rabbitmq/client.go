// Package rabbitmq wraps an AMQP connection with publisher confirms.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// OrdersExchange is the topic exchange carrying order events.
	OrdersExchange = "orders_topic"
	// KitchenQueue receives every kitchen.* order event.
	KitchenQueue   = "kitchen.q"
	kitchenBinding = "kitchen.*.*"
)

// Message is one publish request.
type Message struct {
	Exchange    string
	RoutingKey  string
	Body        []byte
	ContentType string
	Headers     amqp.Table
	Persistent  bool
}

// Client holds one connection and one confirm-mode channel. Publishes are
// serialized so each waits for its own confirmation.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

// Dial connects to url and enables publisher confirms.
func Dial(url string) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

// DeclareTopology declares the order exchange and the kitchen queue binding.
func (c *Client) DeclareTopology() error {
	if c == nil || c.ch == nil {
		return errors.New("rabbitmq channel is nil")
	}
	if err := c.ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", OrdersExchange, err)
	}
	if _, err := c.ch.QueueDeclare(KitchenQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", KitchenQueue, err)
	}
	if err := c.ch.QueueBind(KitchenQueue, kitchenBinding, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", KitchenQueue, err)
	}
	return nil
}

// Ping reports whether the connection is still open.
func (c *Client) Ping() error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Publish sends msg and waits for the broker's ack or ctx.
func (c *Client) Publish(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode := amqp.Transient
	if msg.Persistent {
		mode = amqp.Persistent
	}
	if err := c.ch.PublishWithContext(ctx, msg.Exchange, msg.RoutingKey, false, false, amqp.Publishing{
		DeliveryMode: mode,
		ContentType:  msg.ContentType,
		Timestamp:    time.Now().UTC(),
		Headers:      msg.Headers,
		Body:         msg.Body,
	}); err != nil {
		return err
	}

	select {
	case conf, ok := <-c.acks:
		if !ok {
			return errors.New("rabbitmq confirm channel closed")
		}
		if !conf.Ack {
			return errors.New("publish NACK from broker")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
