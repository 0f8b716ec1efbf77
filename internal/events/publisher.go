package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

// Sequencer hands out per-partition sequence numbers.
type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       Channel
	seq      Sequencer
	producer string
	logger   *zap.Logger
}

type PublisherOptions struct {
	Producer string
	Logger   *zap.Logger
}

// NewPublisher opens a channel on conn and declares the events exchange.
func NewPublisher(conn *amqp.Connection, seq Sequencer, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return newPublisher(ch, seq, opts)
}

func newPublisher(ch Channel, seq Sequencer, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = contracts.StorefrontProducer
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Publisher{ch: ch, seq: seq, producer: producer, logger: logger}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishCartCheckedOut reserves the next sequence for the session and
// publishes the enveloped event.
func (p *Publisher) PublishCartCheckedOut(ctx context.Context, rec contracts.CheckoutRecord) error {
	seq, err := p.seq.NextSequence(ctx, rec.SessionID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := contracts.BuildCartCheckedOutEvent(rec, contracts.EnvelopeOptions{
		Sequence:      seq,
		Producer:      p.producer,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, env.EventID, env.CorrelationID, body); err != nil {
		return fmt.Errorf("publish CartCheckedOut: %w", err)
	}
	p.logger.Info("published CartCheckedOut",
		zap.String("event_id", env.EventID),
		zap.String("session_id", rec.SessionID),
		zap.Int64("sequence", seq),
	)
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
}
