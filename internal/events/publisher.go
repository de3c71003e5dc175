package events

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types. Each type is published to the topic of the same name.
const (
	ReservationCreated       = "reservation.created.v1"
	ReservationStatusChanged = "reservation.status_changed.v1"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher pushes reservation events to Kafka from a buffered queue so request
// handlers never wait on a broker. With no brokers configured it swallows
// events and the rest of the system runs unaffected.
type Publisher struct {
	brokers []string
	queue   chan kafka.Message
}

func NewPublisher(brokerList string) *Publisher {
	return &Publisher{
		brokers: splitBrokers(brokerList),
		queue:   make(chan kafka.Message, 256),
	}
}

func (p *Publisher) Enabled() bool {
	return len(p.brokers) > 0
}

// Publish queues one event. It never blocks: when the queue is full the event
// is dropped and logged, since losing an event beats stalling a booking.
func (p *Publisher) Publish(eventType, key string, data interface{}) {
	if !p.Enabled() {
		return
	}
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("Error encoding %s event: %v", eventType, err)
		return
	}
	msg := kafka.Message{
		Topic: eventType,
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(env.EventID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	select {
	case p.queue <- msg:
	default:
		log.Printf("Event queue full, dropping %s for key %s", eventType, key)
	}
}

// Run drains the queue until ctx is cancelled. Call it in its own goroutine.
func (p *Publisher) Run(ctx context.Context) {
	if !p.Enabled() {
		log.Println("Event publisher disabled (no kafka brokers configured)")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := writer.WriteMessages(ctx, msg); err != nil {
				log.Printf("Error publishing %s event: %v", msg.Topic, err)
			}
		}
	}
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
