package repository

import (
	"context"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	pkgkafka "WalkSim/pkg/kafka"
)

// eventProducer is the part of pkg/kafka.Producer the publisher needs.
type eventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaResultPublisher emits ResultEvents keyed by symbol so a symbol's
// events stay ordered on one partition.
type KafkaResultPublisher struct {
	producer eventProducer
	topic    string
	now      func() time.Time
}

func NewKafkaResultPublisher(producer eventProducer, topic string) *KafkaResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaResultPublisher) PublishSimulation(ctx context.Context, r *models.SimulationResult) error {
	return p.publish(ctx, r.Symbol, models.ResultEvent{
		Type:       models.EventSimulationCompleted,
		Simulation: r,
		EmittedAt:  p.now().UTC(),
	})
}

func (p *KafkaResultPublisher) PublishPrediction(ctx context.Context, pr *models.Prediction) error {
	return p.publish(ctx, pr.Symbol, models.ResultEvent{
		Type:       models.EventPredictionCreated,
		Prediction: pr,
		EmittedAt:  p.now().UTC(),
	})
}

func (p *KafkaResultPublisher) publish(ctx context.Context, symbol string, ev models.ResultEvent) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:     []byte(symbol),
		Value:   ev,
		Headers: map[string]string{"event": ev.Type},
	}})
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.Publisher = (*KafkaResultPublisher)(nil)
