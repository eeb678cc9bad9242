package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nopLogger = zerolog.Nop()

type recordingWriter struct {
	email, locale string
	calls         int
	err           error
}

func (w *recordingWriter) UpsertProfile(_ context.Context, email, locale string) error {
	w.calls++
	w.email, w.locale = email, locale
	return w.err
}

func delivery(body string) amqp091.Delivery {
	return amqp091.Delivery{Body: []byte(body)}
}

func TestEventHandler_UserUpserted(t *testing.T) {
	w := &recordingWriter{}
	h := NewEventHandler(w)

	err := h.Handle(context.Background(), delivery(`{
		"id": "0b7e2c1a-6d0a-4a43-9a55-6f3f5f2e9d11",
		"type": "user.upserted",
		"payload": {"email": "ops@example.com", "preferred_locale": "de"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, "ops@example.com", w.email)
	assert.Equal(t, "de", w.locale)
}

func TestEventHandler_IgnoresOtherEvents(t *testing.T) {
	w := &recordingWriter{}
	h := NewEventHandler(w)

	err := h.Handle(context.Background(), delivery(`{"type": "user.deleted", "payload": {}}`))
	require.NoError(t, err)
	assert.Zero(t, w.calls)
}

func TestEventHandler_RejectsBadPayloads(t *testing.T) {
	w := &recordingWriter{}
	h := NewEventHandler(w)

	assert.ErrorIs(t, h.Handle(context.Background(), delivery(`not json`)), ErrPoisonMessage)
	assert.ErrorIs(t, h.Handle(context.Background(), delivery(`{"type": "user.upserted", "payload": {"email": "nope"}}`)), ErrPoisonMessage)
	assert.Zero(t, w.calls)
}

func TestEventHandler_PropagatesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	h := NewEventHandler(w)

	err := h.Handle(context.Background(), delivery(`{"type": "user.upserted", "payload": {"email": "a@example.com"}}`))
	assert.EqualError(t, err, "db down")
	assert.NotErrorIs(t, err, ErrPoisonMessage)
}

func TestSettlement(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		redelivered bool
		want        settlement
	}{
		{"success", nil, false, ack},
		{"poison", ErrPoisonMessage, false, drop},
		{"transient first time", errors.New("db down"), false, requeue},
		{"transient redelivered", errors.New("db down"), true, drop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settle(tt.err, tt.redelivered))
		})
	}
}

type recordingAck struct {
	acked, nacked, requeued int
}

func (a *recordingAck) Ack(uint64, bool) error { a.acked++; return nil }
func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}
func (a *recordingAck) Reject(uint64, bool) error { return nil }

func TestConsumer_Dispatch(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	c := &Consumer{sem: make(chan struct{}, 1), handlerTimeout: time.Second, log: &nopLogger}
	c.sem <- struct{}{}
	c.wg.Add(1)

	acker := &recordingAck{}
	msg := delivery(`{"type": "user.upserted", "payload": {"email": "a@example.com"}}`)
	msg.Acknowledger = acker
	c.dispatch(context.Background(), NewEventHandler(w), msg)

	assert.Equal(t, 1, acker.requeued)
	assert.Zero(t, acker.acked)
	assert.Empty(t, c.sem)
}
