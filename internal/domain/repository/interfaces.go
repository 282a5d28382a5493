package repository

import (
	"context"
	"time"

	"WalkSim/internal/domain/models"
)

// BarProvider supplies daily bars sorted ascending and deduplicated per date.
type BarProvider interface {
	GetBars(ctx context.Context, symbol string, lookback int) ([]models.Bar, error)
}

// BarStore persists daily bars.
type BarStore interface {
	BarProvider
	SaveBars(ctx context.Context, bars []models.Bar) error
	BarsAfter(ctx context.Context, symbol string, after time.Time, limit int) ([]models.Bar, error)
}

// ResultStore persists simulation results.
type ResultStore interface {
	SaveSimulationResult(ctx context.Context, r *models.SimulationResult) error
}

// PredictionStore persists and queries live predictions.
type PredictionStore interface {
	SavePrediction(ctx context.Context, p *models.Prediction) error
	RecentPredictions(ctx context.Context, symbol string, limit int) ([]models.Prediction, error)
	PredictionHistory(ctx context.Context, symbol string, limit int) ([]models.Prediction, error)
	PendingPredictions(ctx context.Context, before time.Time) ([]models.Prediction, error)
	SetActualMovement(ctx context.Context, id string, movement bool) error
}

// Publisher emits result events to a message bus.
type Publisher interface {
	PublishSimulation(ctx context.Context, r *models.SimulationResult) error
	PublishPrediction(ctx context.Context, p *models.Prediction) error
	Close() error
}

// ResultSink is the persistence gateway used by the use cases.
type ResultSink interface {
	SaveSimulationResult(ctx context.Context, r *models.SimulationResult) error
	SavePrediction(ctx context.Context, p *models.Prediction) error
}

// Notifier pushes fresh predictions to live subscribers.
type Notifier interface {
	Broadcast(p *models.PredictionResult)
}

type Metrics interface {
	RecordSimulation(symbol string, roi, baselineROI float64, trades int)
	RecordTraining(symbol string, accuracy float64, seconds float64)
	RecordPrediction(symbol string, confidence float64)
	RecordMessageSent(backend, kind string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
