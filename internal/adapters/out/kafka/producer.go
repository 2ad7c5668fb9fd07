// Package kafka publishes notifications and audit events to Kafka topics.
package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer sends one keyed message to a topic.
type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// WriterProducer is a Producer backed by a kafka-go Writer. The topic is set per
// message, so one writer serves every topic.
type WriterProducer struct {
	writer *kafka.Writer
}

func NewWriterProducer(brokers []string, writeTimeout time.Duration) *WriterProducer {
	return &WriterProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *WriterProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now().UTC(),
	})
}

func (p *WriterProducer) Close() error {
	return p.writer.Close()
}
