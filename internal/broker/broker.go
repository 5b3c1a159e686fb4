// Package broker wraps an AMQP consumer loop over the SAR input queue
// (§6.1), grounded in original_source's pika-delivered (message, properties)
// handler signature.
package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Baltic-RCC/RAO/internal/models"
)

// Recognized message headers.
const (
	HeaderScenarioTime     = "scenario_time"
	HeaderContentReference = "content_reference"
	HeaderTimeHorizon      = "time_horizon"
	HeaderProjectName      = "project_name"
	HeaderMessageID        = "x-message-id"
)

// Message is one delivered SAR payload with its recognized headers, ready
// for the orchestrator.
type Message struct {
	Body             []byte
	ScenarioTime     string
	ContentReference string
	TimeHorizon      string
	ProjectName      string
	MessageID        string

	delivery amqp.Delivery
}

// fromDelivery parses the recognized headers off an amqp.Delivery. Returns
// models.ErrBadMessage if content_reference is missing (spec §4.5 step 1).
func fromDelivery(d amqp.Delivery) (Message, error) {
	m := Message{Body: d.Body, delivery: d}
	if v, ok := d.Headers[HeaderScenarioTime].(string); ok {
		m.ScenarioTime = v
	}
	if v, ok := d.Headers[HeaderContentReference].(string); ok {
		m.ContentReference = v
	}
	if v, ok := d.Headers[HeaderTimeHorizon].(string); ok {
		m.TimeHorizon = v
	}
	if v, ok := d.Headers[HeaderProjectName].(string); ok {
		m.ProjectName = v
	}
	if v, ok := d.Headers[HeaderMessageID].(string); ok {
		m.MessageID = v
	}
	if m.ContentReference == "" {
		return m, fmt.Errorf("%w: missing %s header", models.ErrBadMessage, HeaderContentReference)
	}
	return m, nil
}

// Broker is the surface the orchestrator consumes from.
type Broker interface {
	Consume(ctx context.Context) (<-chan Message, error)
	Ack(m Message) error
	NackRequeue(m Message) error
	NackDiscard(m Message) error
}

// Client is the amqp091-go-backed Broker implementation.
type Client struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// Dial connects to the broker URL and opens one channel bound to queue.
func Dial(url, queue string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", models.ErrTransientIO, url, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", models.ErrTransientIO, err)
	}
	return &Client{conn: conn, ch: ch, queue: queue}, nil
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}

// Consume starts delivering messages from the queue. The returned channel is
// closed when ctx is cancelled.
func (c *Client) Consume(ctx context.Context) (<-chan Message, error) {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: consume %s: %v", models.ErrTransientIO, c.queue, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				msg, err := fromDelivery(d)
				if err != nil {
					_ = d.Nack(false, false)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ack acknowledges successful processing (spec §6.1 / §7).
func (c *Client) Ack(m Message) error {
	return m.delivery.Ack(false)
}

// NackRequeue negative-acks with requeue, for TransientIO failures.
func (c *Client) NackRequeue(m Message) error {
	return m.delivery.Nack(false, true)
}

// NackDiscard negative-acks without requeue (dead-letter), for BadMessage /
// BadSource / SchemaError.
func (c *Client) NackDiscard(m Message) error {
	return m.delivery.Nack(false, false)
}
