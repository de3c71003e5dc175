package events

import (
	"context"
	"testing"
)

func TestSplitBrokers(t *testing.T) {
	brokers := splitBrokers("kafka-1:9092, kafka-2:9092 ,,")
	if len(brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %v", brokers)
	}
	if brokers[0] != "kafka-1:9092" || brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", brokers)
	}
	if got := splitBrokers(""); len(got) != 0 {
		t.Fatalf("expected no brokers, got %v", got)
	}
}

func TestPublisherDisabledWithoutBrokers(t *testing.T) {
	p := NewPublisher("")
	if p.Enabled() {
		t.Fatal("expected the publisher to be disabled")
	}
	// Publishing while disabled is a no-op, and Run returns straight away.
	p.Publish(ReservationCreated, "ABCD1234", map[string]int{"id": 1})
	if len(p.queue) != 0 {
		t.Fatalf("expected nothing queued, got %d", len(p.queue))
	}
	p.Run(context.Background())
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	p := NewPublisher("kafka-1:9092")
	if !p.Enabled() {
		t.Fatal("expected the publisher to be enabled")
	}

	// Run is not draining, so the queue fills and the overflow is dropped
	// instead of blocking.
	for i := 0; i < cap(p.queue)+10; i++ {
		p.Publish(ReservationCreated, "ABCD1234", map[string]int{"i": i})
	}
	if len(p.queue) != cap(p.queue) {
		t.Fatalf("expected a full queue of %d, got %d", cap(p.queue), len(p.queue))
	}
}

func TestPublishedMessageShape(t *testing.T) {
	p := NewPublisher("kafka-1:9092")
	p.Publish(ReservationStatusChanged, "9F2C41AB", map[string]string{"status": "confirmed"})

	msg := <-p.queue
	if msg.Topic != ReservationStatusChanged {
		t.Fatalf("expected topic %s, got %s", ReservationStatusChanged, msg.Topic)
	}
	if string(msg.Key) != "9F2C41AB" {
		t.Fatalf("expected key 9F2C41AB, got %s", msg.Key)
	}
	if len(msg.Headers) != 2 || msg.Headers[1].Key != "event_type" {
		t.Fatalf("expected event headers, got %+v", msg.Headers)
	}
	if string(msg.Headers[1].Value) != ReservationStatusChanged {
		t.Fatalf("expected event_type header %s, got %s", ReservationStatusChanged, msg.Headers[1].Value)
	}
}
