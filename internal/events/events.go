package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicProducts = "product_events"
	TopicCart     = "cart_events"
	TopicOrders   = "order_events"

	// TopicNotifications carries one event per send, not per recipient.
	TopicNotifications = "notification_events"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type ProductEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"productID"`
	Name      string `json:"name,omitempty"`
}

type CartEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"userID"`
	ProductID string `json:"productID,omitempty"`
	Shade     string `json:"shade,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type OrderEvent struct {
	Type          string `json:"type"`
	OrderID       string `json:"orderID"`
	UserID        string `json:"userID"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	Payment       bool   `json:"payment"`
	Amount        string `json:"amount"`
}

type NotificationEvent struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Target     string `json:"target"`
	Recipients int    `json:"recipients"`
}

// KafkaPublisher writes JSON events; messages sharing a key keep their order.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop drops every event. Used when KAFKA_BROKERS is unset.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                        { return nil }

type Recorded struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Types lists the event types published on topic, in order.
func (r *Recorder) Types(topic string) []string {
	var out []string
	for _, e := range r.Events() {
		if e.Topic != topic {
			continue
		}
		switch ev := e.Event.(type) {
		case ProductEvent:
			out = append(out, ev.Type)
		case CartEvent:
			out = append(out, ev.Type)
		case OrderEvent:
			out = append(out, ev.Type)
		case NotificationEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}
