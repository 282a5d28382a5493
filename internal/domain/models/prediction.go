package models

import "time"

// Prediction is a persisted next-day direction call for a symbol.
type Prediction struct {
	ID                string             `json:"id"`
	Symbol            string             `json:"symbol"`
	Date              time.Time          `json:"date"`
	PredictedMovement bool               `json:"predicted_movement"`
	Confidence        float64            `json:"confidence"`
	Features          map[string]float64 `json:"features,omitempty"`
	ActualMovement    *bool              `json:"actual_movement,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// PredictionResult is returned by the live prediction endpoint.
type PredictionResult struct {
	Prediction
	Close             float64            `json:"close"`
	ModelAccuracy     float64            `json:"model_accuracy"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// Event types carried on the results topic.
const (
	EventSimulationCompleted = "simulation.completed"
	EventPredictionCreated   = "prediction.created"
)

// ResultEvent is the envelope published when results are routed through Kafka.
type ResultEvent struct {
	Type       string            `json:"type"`
	Simulation *SimulationResult `json:"simulation,omitempty"`
	Prediction *Prediction       `json:"prediction,omitempty"`
	EmittedAt  time.Time         `json:"emitted_at"`
}
