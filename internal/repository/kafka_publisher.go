package repository

import (
	"context"

	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/domain/repository"
	pkgkafka "SignalPipe/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by
// symbol so consumers see per-symbol ordering.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, sig *models.ValidatedSignal) error {
	return p.producer.Publish(ctx, p.topic, []byte(sig.Candidate.Symbol), sig)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, signals []*models.ValidatedSignal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(signals))
	for i, sig := range signals {
		msgs[i] = pkgkafka.Message{Key: []byte(sig.Candidate.Symbol), Value: sig}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
