package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	pkgkafka "WalkSim/pkg/kafka"
)

// ResultsConsumer stores ResultEvents read from the results topic.
type ResultsConsumer struct {
	topic       string
	results     domrepo.ResultStore
	predictions domrepo.PredictionStore
	metrics     domrepo.Metrics
}

func NewResultsConsumer(topic string, results domrepo.ResultStore, predictions domrepo.PredictionStore, metrics domrepo.Metrics) *ResultsConsumer {
	return &ResultsConsumer{topic: topic, results: results, predictions: predictions, metrics: metrics}
}

func (h *ResultsConsumer) Topic() string { return h.topic }

func (h *ResultsConsumer) Handle(ctx context.Context, b []byte) error {
	var ev models.ResultEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !ev.EmittedAt.IsZero() {
		h.metrics.RecordLatency("consume_lag", time.Since(ev.EmittedAt).Seconds())
	}

	start := time.Now()
	var err error
	switch {
	case ev.Type == models.EventSimulationCompleted && ev.Simulation != nil:
		err = h.results.SaveSimulationResult(ctx, ev.Simulation)
	case ev.Type == models.EventPredictionCreated && ev.Prediction != nil:
		err = h.predictions.SavePrediction(ctx, ev.Prediction)
	default:
		h.metrics.RecordError("consumer_event")
		return fmt.Errorf("unsupported event %q", ev.Type)
	}
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent(BackendClickHouse, ev.Type)
	return nil
}

var _ pkgkafka.MessageHandler = (*ResultsConsumer)(nil)
