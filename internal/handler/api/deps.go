package api

import (
	"context"
	"time"

	"WalkSim/internal/domain/models"
)

// Simulator is the portfolio surface used by the simulation routes.
type Simulator interface {
	Simulate(ctx context.Context, symbol string, days int, initialBalance float64) (*models.SimulationResult, error)
	RunBatch(ctx context.Context, symbols []string, days int, initialBalance float64) []models.BatchItem
	History(ctx context.Context, symbol string, days int) ([]models.Bar, error)
	Symbols() []string
	Supports(symbol string) bool
}

type PredictionService interface {
	Predict(ctx context.Context, symbol string) (*models.PredictionResult, error)
}

type PredictionReader interface {
	RecentPredictions(ctx context.Context, symbol string, limit int) ([]models.Prediction, error)
	PredictionHistory(ctx context.Context, symbol string, limit int) ([]models.Prediction, error)
}

type MovementUpdater interface {
	UpdateActualMovements(ctx context.Context, now time.Time) (int, error)
}

type ModelRetrainer interface {
	RetrainSymbol(ctx context.Context, symbol string) (*models.ModelSummary, error)
}

type ModelCatalog interface {
	Snapshot() map[string]models.ModelSummary
}

// HealthCheck reports the state of one dependency.
type HealthCheck func(ctx context.Context) error
