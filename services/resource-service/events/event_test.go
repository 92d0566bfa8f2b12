package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKeysByResource(t *testing.T) {
	id := uuid.New()
	msg, err := encode(Event{Kind: "downloaded", ResourceID: id, Actor: "sarah@example.com"})
	require.NoError(t, err)
	assert.Equal(t, id.String(), string(msg.Key))

	e, err := decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "downloaded", e.Kind)
	assert.False(t, e.OccurredAt.IsZero(), "occurred_at is stamped when missing")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestDirectPublisher(t *testing.T) {
	var got []Event
	p := NewDirectPublisher(func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Publish(context.Background(), Event{Kind: "uploaded", OccurredAt: stamp}))
	require.NoError(t, p.Publish(context.Background(), Event{Kind: "deleted"}))
	require.NoError(t, p.Close())

	require.Len(t, got, 2)
	assert.Equal(t, stamp, got[0].OccurredAt)
	assert.False(t, got[1].OccurredAt.IsZero())
}

func TestDirectPublisherPropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	p := NewDirectPublisher(func(context.Context, Event) error { return boom })
	assert.ErrorIs(t, p.Publish(context.Background(), Event{}), boom)
}
