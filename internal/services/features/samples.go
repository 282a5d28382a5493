package features

import (
	"time"

	"WalkSim/internal/domain/models"
)

// MinSamples is the hard minimum of labeled rows below which training is refused.
const MinSamples = 30

// BuildSamples attaches label 1{close[t+1] > close[t]} to every complete
// vector that has a following bar. The last vector never gets a label.
func BuildSamples(vectors []models.FeatureVector) []models.LabeledSample {
	out := make([]models.LabeledSample, 0, len(vectors))
	for i := 0; i+1 < len(vectors); i++ {
		v := vectors[i]
		if !v.Complete() {
			continue
		}
		label := 0
		if vectors[i+1].Close > v.Close {
			label = 1
		}
		out = append(out, models.LabeledSample{FeatureVector: v, Label: label})
	}
	return out
}

// BuildTrainingSet confines vectors to dates strictly before cutoff, labels
// them within that slice and enforces MinSamples. A zero cutoff uses all vectors.
func BuildTrainingSet(symbol string, vectors []models.FeatureVector, cutoff time.Time) ([]models.LabeledSample, error) {
	slice := vectors
	if !cutoff.IsZero() {
		end := 0
		for end < len(vectors) && vectors[end].Date.Before(cutoff) {
			end++
		}
		slice = vectors[:end]
	}
	samples := BuildSamples(slice)
	if len(samples) < MinSamples {
		return nil, models.Errorf(models.KindInsufficientSamples, "build training set", symbol,
			"%d usable rows, need %d", len(samples), MinSamples)
	}
	return samples, nil
}

// Latest returns the last vector when it is complete.
func Latest(vectors []models.FeatureVector) (models.FeatureVector, bool) {
	if len(vectors) == 0 {
		return models.FeatureVector{}, false
	}
	v := vectors[len(vectors)-1]
	return v, v.Complete()
}

// Matrix flattens samples into a design matrix and label vector.
func Matrix(samples []models.LabeledSample) ([][]float64, []int) {
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i] = s.Values
		y[i] = s.Label
	}
	return X, y
}
