package ml

import (
	"fmt"
	"time"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/domain/service"
)

// TrainedModel is an immutable fitted classifier with its diagnostics.
// It is safe for concurrent reads.
type TrainedModel struct {
	symbol         string
	kind           string
	clf            service.Classifier
	features       []string
	accuracy       float64
	importance     map[string]float64
	trainRows      int
	testRows       int
	split          SplitPolicy
	trainedThrough time.Time
	trainedAt      time.Time
}

func (m *TrainedModel) Symbol() string            { return m.symbol }
func (m *TrainedModel) Kind() string              { return m.kind }
func (m *TrainedModel) Accuracy() float64         { return m.accuracy }
func (m *TrainedModel) TrainedThrough() time.Time { return m.trainedThrough }
func (m *TrainedModel) TrainedAt() time.Time      { return m.trainedAt }

// Features returns a copy of the ordered feature names.
func (m *TrainedModel) Features() []string {
	return append([]string(nil), m.features...)
}

// Importance returns a copy of the feature importance mapping.
func (m *TrainedModel) Importance() map[string]float64 {
	out := make(map[string]float64, len(m.importance))
	for k, v := range m.importance {
		out[k] = v
	}
	return out
}

// Summary describes the model for results and API responses.
func (m *TrainedModel) Summary() models.ModelSummary {
	return models.ModelSummary{
		Kind:              m.kind,
		Accuracy:          m.accuracy,
		TrainRows:         m.trainRows,
		TestRows:          m.testRows,
		Split:             string(m.split),
		TrainedThrough:    m.trainedThrough,
		TrainedAt:         m.trainedAt,
		FeatureImportance: m.Importance(),
	}
}

// Predict returns the predicted class and the probability of that class.
func (m *TrainedModel) Predict(v models.FeatureVector) (int, float64, error) {
	if !v.Complete() {
		return 0, 0, fmt.Errorf("incomplete feature vector for %s", v.Date.Format("2006-01-02"))
	}
	class := m.clf.Predict(v.Values)
	proba := m.clf.PredictProba(v.Values)
	if class < 0 || class >= len(proba) {
		return 0, 0, fmt.Errorf("class %d outside probabilities %v", class, proba)
	}
	return class, proba[class], nil
}
