// Package events carries resource activity between the resource service
// and the activity feed, over Kafka when brokers are configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
)

// Event mirrors the JSON published on the resource events topic.
type Event struct {
	Kind          string            `json:"kind"`
	ResourceID    uuid.UUID         `json:"resource_id"`
	ResourceTitle string            `json:"resource_title"`
	Owner         string            `json:"owner"`
	Actor         string            `json:"actor"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Handler processes one event. A returned error is logged; the event is not retried.
type Handler func(ctx context.Context, e Event) error

// Publisher hands events to whoever records them.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

func encode(e Event) (kafka.Message, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.ResourceID.String()),
		Value: value,
	}, nil
}

func decode(msg kafka.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return Event{}, fmt.Errorf("bad event json: %w", err)
	}
	return e, nil
}

// DirectPublisher calls the handler in-process. Used when Kafka is disabled.
type DirectPublisher struct {
	handler Handler
}

func NewDirectPublisher(h Handler) *DirectPublisher {
	return &DirectPublisher{handler: h}
}

func (p *DirectPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return p.handler(ctx, e)
}

func (p *DirectPublisher) Close() error { return nil }
