package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, exchange: "booking.exchange"}

	e := New(BookingCancelled, time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))
	e.VisitID = 42
	e.Fee = decimal.NewFromInt(200)

	require.NoError(t, p.Publish(context.Background(), e))
	assert.Equal(t, "booking.exchange", ch.exchange)
	assert.Equal(t, BookingCancelled, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, e.ID, ch.msg.MessageId)

	var got Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, 42, got.VisitID)
	assert.True(t, got.Fee.Equal(decimal.NewFromInt(200)))
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	p := &RabbitPublisher{ch: &fakeChannel{err: errors.New("channel closed")}, exchange: "x"}

	err := p.Publish(context.Background(), New(VisitMissed, time.Now()))
	assert.Error(t, err)
}

func TestRabbitPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch}

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New(BookingCreated, time.Now())
	b := New(BookingCreated, time.Now())
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
