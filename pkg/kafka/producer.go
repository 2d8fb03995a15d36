package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer the producer drives.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a Kafka writer bound to a single topic.
type Producer struct {
	writer  Writer
	topic   string
	comp    string
	metrics *producerMetrics
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: 1,
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1048576,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		HashByKey:    true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Topic == "" {
		return nil, errors.New("topic is required")
	}

	p := &Producer{
		writer:  cfg.Writer,
		topic:   cfg.Topic,
		comp:    cfg.Compression,
		metrics: newProducerMetrics(cfg.Registerer),
	}
	if p.writer != nil {
		return p, nil
	}

	if len(cfg.Brokers) == 0 {
		return nil, errors.New("brokers are required")
	}

	bal := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	if cfg.Async {
		// async writes report failures here instead of from WriteMessages
		w.Completion = func(msgs []kafka.Message, err error) {
			if err != nil {
				p.metrics.observe(p.topic, p.comp, 0, len(msgs), 0, err)
				if cfg.OnError != nil {
					cfg.OnError(err)
				}
			}
		}
	}
	p.writer = w
	return p, nil
}

// Topic returns the topic messages are written to.
func (p *Producer) Topic() string {
	return p.topic
}

// Publish sends one message keyed by key. value is sent as-is when it is
// []byte or string and JSON-encoded otherwise.
func (p *Producer) Publish(ctx context.Context, key []byte, value interface{}, headers ...kafka.Header) error {
	start := time.Now()
	v, err := encode(value)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:     key,
		Value:   v,
		Headers: headers,
		Time:    start,
	}

	err = p.writer.WriteMessages(ctx, msg)
	p.metrics.observe(p.topic, p.comp, int64(len(v)), 1, time.Since(start), err)
	return err
}

// Close flushes pending async writes and closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
