package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourorg/kap-news/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher records admin audit events
type Publisher interface {
	Publish(ctx context.Context, event model.AdminEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes audit events as JSON to a Kafka topic
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for topic
func NewKafkaPublisher(brokers []string, clientID, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			ClientID: clientID,
		},
	}
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// Publish sends one event keyed by its target
func (p *KafkaPublisher) Publish(ctx context.Context, event model.AdminEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("topic", p.topic), zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Target),
		Value: value,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
		},
		Time: event.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", p.topic),
			zap.String("action", event.Action),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Event published",
		zap.String("topic", p.topic),
		zap.String("action", event.Action),
		zap.String("target", event.Target))
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher logs events instead of publishing them
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher creates a publisher for deployments without Kafka
func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

// Publish logs the event
func (p *NoopPublisher) Publish(_ context.Context, event model.AdminEvent) error {
	p.logger.Info("Admin event",
		zap.String("action", event.Action),
		zap.String("target", event.Target),
		zap.String("username", event.Username),
		zap.Int("status", event.Status))
	return nil
}

// Close is a no-op
func (p *NoopPublisher) Close() error {
	return nil
}

// NewPublisher returns a Kafka publisher when brokers are set, a no-op one otherwise
func NewPublisher(brokers []string, clientID, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NewNoopPublisher(logger)
	}
	return NewKafkaPublisher(brokers, clientID, topic, logger)
}
