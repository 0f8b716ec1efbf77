package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeSequencer struct {
	next map[string]int64
	err  error
}

func (f *fakeSequencer) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next[partitionKey]++
	return f.next[partitionKey], nil
}

func record() contracts.CheckoutRecord {
	return contracts.CheckoutRecord{
		SessionID: "session-1",
		Items:     []cart.LineItem{{ID: 1, Price: decimal.NewFromInt(100), Quantity: 2, Stock: 2}},
		Total:     decimal.NewFromInt(200),
	}
}

func TestPublisherDeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newPublisher(ch, &fakeSequencer{next: map[string]int64{}}, PublisherOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{EventsExchange + ":topic"}, ch.declared)

	failing := &fakeChannel{declareErr: errors.New("access refused")}
	_, err = newPublisher(failing, &fakeSequencer{}, PublisherOptions{})
	require.Error(t, err)
	assert.True(t, failing.closed)
}

func TestPublishCartCheckedOut(t *testing.T) {
	ch := &fakeChannel{}
	seq := &fakeSequencer{next: map[string]int64{}}
	p, err := newPublisher(ch, seq, PublisherOptions{})
	require.NoError(t, err)

	ctx := middleware.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, p.PublishCartCheckedOut(ctx, record()))
	require.NoError(t, p.PublishCartCheckedOut(ctx, record()))

	require.Len(t, ch.published, 2)
	first := ch.published[0]
	assert.Equal(t, EventsExchange, first.exchange)
	assert.Equal(t, CartCheckedOutRoutingKey, first.key)
	assert.Equal(t, "application/json", first.msg.ContentType)
	assert.Equal(t, amqp.Persistent, first.msg.DeliveryMode)
	assert.Equal(t, "corr-1", first.msg.CorrelationId)

	var env contracts.EventEnvelope
	require.NoError(t, json.Unmarshal(first.msg.Body, &env))
	assert.Equal(t, contracts.CartCheckedOutEventName, env.EventName)
	assert.Equal(t, "session-1", env.PartitionKey)
	assert.Equal(t, int64(1), env.Sequence)
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.Equal(t, env.EventID, first.msg.MessageId)
	assert.True(t, env.Payload.TotalAmount.Equal(decimal.NewFromInt(200)))

	var second contracts.EventEnvelope
	require.NoError(t, json.Unmarshal(ch.published[1].msg.Body, &second))
	assert.Equal(t, int64(2), second.Sequence)
}

func TestPublishCartCheckedOutErrors(t *testing.T) {
	t.Run("sequence failure", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := newPublisher(ch, &fakeSequencer{err: errors.New("db down")}, PublisherOptions{})
		require.NoError(t, err)

		require.Error(t, p.PublishCartCheckedOut(context.Background(), record()))
		assert.Empty(t, ch.published)
	})

	t.Run("broker failure", func(t *testing.T) {
		brokerErr := errors.New("channel closed")
		ch := &fakeChannel{publishErr: brokerErr}
		p, err := newPublisher(ch, &fakeSequencer{next: map[string]int64{}}, PublisherOptions{})
		require.NoError(t, err)

		require.ErrorIs(t, p.PublishCartCheckedOut(context.Background(), record()), brokerErr)
	})
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, NopPublisher{}.PublishCartCheckedOut(context.Background(), record()))
}
