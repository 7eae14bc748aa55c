package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits checkout events on a topic exchange. It implements
// checkout.Publisher.
type Publisher struct {
	mu       sync.Mutex
	ch       channel
	exchange string
	now      func() time.Time
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra
	if err := declareEventsExchange(ch, exchange); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return newPublisher(ch, exchange), nil
}

func newPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishCheckoutCompleted(ctx context.Context, res checkout.Result) error {
	env := BuildCheckoutCompletedEnvelope(res, EnvelopeMetadata{
		CorrelationID: middleware.GetCorrelationID(ctx),
	}, p.now())

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CheckoutCompleted: %w", err)
	}

	return p.publishJSON(ctx, CheckoutCompletedRoutingKey, env.EventID, env.CorrelationID, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		pubCtx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     p.now().UTC(),
			Type:          checkoutCompletedEventName,
			Body:          body,
		},
	)
}
