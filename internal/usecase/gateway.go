package usecase

import (
	"context"
	"fmt"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
)

const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

// Gateway routes results to ClickHouse directly or to Kafka for the
// results consumer to store. Failures come back as persistence_failure.
type Gateway struct {
	backend     string
	results     domrepo.ResultStore
	predictions domrepo.PredictionStore
	pub         domrepo.Publisher
	metrics     domrepo.Metrics
}

func NewGateway(backend string, results domrepo.ResultStore, predictions domrepo.PredictionStore, pub domrepo.Publisher, metrics domrepo.Metrics) *Gateway {
	return &Gateway{backend: backend, results: results, predictions: predictions, pub: pub, metrics: metrics}
}

func (g *Gateway) SaveSimulationResult(ctx context.Context, r *models.SimulationResult) error {
	start := time.Now()
	var err error
	switch {
	case g.backend == BackendKafka && g.pub != nil:
		err = g.pub.PublishSimulation(ctx, r)
	case g.backend == BackendClickHouse && g.results != nil:
		err = g.results.SaveSimulationResult(ctx, r)
	default:
		err = fmt.Errorf("backend %q not configured", g.backend)
	}
	return g.observe("simulation", "save_simulation", r.Symbol, start, err)
}

func (g *Gateway) SavePrediction(ctx context.Context, p *models.Prediction) error {
	start := time.Now()
	var err error
	switch {
	case g.backend == BackendKafka && g.pub != nil:
		err = g.pub.PublishPrediction(ctx, p)
	case g.backend == BackendClickHouse && g.predictions != nil:
		err = g.predictions.SavePrediction(ctx, p)
	default:
		err = fmt.Errorf("backend %q not configured", g.backend)
	}
	return g.observe("prediction", "save_prediction", p.Symbol, start, err)
}

func (g *Gateway) observe(kind, op, symbol string, start time.Time, err error) error {
	if err != nil {
		g.metrics.RecordError(string(models.KindPersistenceFailure))
		return models.NewError(models.KindPersistenceFailure, op, symbol, err)
	}
	g.metrics.RecordMessageSent(g.backend, kind)
	g.metrics.RecordLatency(op, time.Since(start).Seconds())
	return nil
}

var _ domrepo.ResultSink = (*Gateway)(nil)
