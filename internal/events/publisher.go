// Package events publishes domain events (order.created,
// ingredient.low_stock) to Kafka.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated       = "order.created"
	IngredientLowStock = "ingredient.low_stock"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

// Envelope is the JSON value of every published message.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

type KafkaPublisher struct {
	w   MessageWriter
	now func() time.Time
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w, now: time.Now}
}

// Publish writes one message keyed "<type>-<key>", e.g. order.created-17.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	body, err := json.Marshal(Envelope{Type: eventType, OccurredAt: p.now().UTC(), Payload: payload})
	if err != nil {
		return errors.Wrapf(err, "encode %s", eventType)
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s-%s", eventType, key)),
		Value: body,
	}
	return errors.Wrapf(p.w.WriteMessages(ctx, msg), "publish %s", eventType)
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
	Keys   []string
}

func (r *Recorder) Publish(_ context.Context, eventType, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload})
	r.Keys = append(r.Keys, key)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the event types published so far, in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
