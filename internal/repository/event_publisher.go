package repository

import (
	"context"
	"time"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/domain/repository"
	pkgkafka "PriceWatch/pkg/kafka"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// eventRecord is the Kafka wire form of an Event.
type eventRecord struct {
	ID      string      `json:"id"`
	Event   string      `json:"event"`
	Symbol  string      `json:"symbol"`
	Payload interface{} `json:"payload"`
	TS      int64       `json:"ts"` // unix millis
}

// KafkaEventPublisher writes events keyed by symbol, so each symbol keeps
// its order within a partition.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaEventPublisher creates a Kafka notifier.
func NewKafkaEventPublisher(producer *pkgkafka.Producer) repository.Notifier {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, ev models.Event) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := eventRecord{
		ID:      uuid.NewString(),
		Event:   ev.Name,
		Symbol:  ev.Symbol,
		Payload: ev.Payload,
		TS:      ts.UnixMilli(),
	}
	return p.producer.Publish(ctx, []byte(ev.Symbol), rec,
		kafka.Header{Key: "event", Value: []byte(ev.Name)},
	)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
