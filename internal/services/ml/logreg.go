package ml

import (
	"math"

	"WalkSim/internal/domain/service"

	"gonum.org/v1/gonum/stat"
)

// LogRegConfig holds logistic regression hyperparameters.
type LogRegConfig struct {
	Iterations   int
	LearningRate float64
	L2           float64
}

func DefaultLogRegConfig() LogRegConfig {
	return LogRegConfig{Iterations: 500, LearningRate: 0.1, L2: 0.01}
}

// LogisticRegression is an L2-regularized logistic model fitted by batch
// gradient descent on standardized features.
type LogisticRegression struct {
	cfg   LogRegConfig
	mean  []float64
	scale []float64
	w     []float64
	b     float64
}

func NewLogisticRegression(cfg LogRegConfig) *LogisticRegression {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 500
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	return &LogisticRegression{cfg: cfg}
}

func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	nf, err := checkDesign(X, y)
	if err != nil {
		return err
	}
	n := len(X)
	m.mean = make([]float64, nf)
	m.scale = make([]float64, nf)
	col := make([]float64, n)
	for j := 0; j < nf; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mu, sd := stat.MeanStdDev(col, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		m.mean[j], m.scale[j] = mu, sd
	}

	Z := make([][]float64, n)
	for i, row := range X {
		Z[i] = m.standardize(row)
	}

	m.w = make([]float64, nf)
	m.b = 0
	gw := make([]float64, nf)
	for it := 0; it < m.cfg.Iterations; it++ {
		for j := range gw {
			gw[j] = 0
		}
		var gb float64
		for i, z := range Z {
			diff := sigmoid(m.linear(z)) - float64(y[i])
			for j, v := range z {
				gw[j] += diff * v
			}
			gb += diff
		}
		for j := range m.w {
			m.w[j] -= m.cfg.LearningRate * (gw[j]/float64(n) + m.cfg.L2*m.w[j])
		}
		m.b -= m.cfg.LearningRate * gb / float64(n)
	}
	return nil
}

func (m *LogisticRegression) standardize(x []float64) []float64 {
	z := make([]float64, len(x))
	for j, v := range x {
		z[j] = (v - m.mean[j]) / m.scale[j]
	}
	return z
}

func (m *LogisticRegression) linear(z []float64) float64 {
	s := m.b
	for j, v := range z {
		s += m.w[j] * v
	}
	return s
}

func (m *LogisticRegression) PredictProba(x []float64) []float64 {
	p := sigmoid(m.linear(m.standardize(x)))
	return []float64{1 - p, p}
}

func (m *LogisticRegression) Predict(x []float64) int {
	if m.PredictProba(x)[1] > 0.5 {
		return 1
	}
	return 0
}

// FeatureImportances returns normalized absolute coefficients.
func (m *LogisticRegression) FeatureImportances() []float64 {
	return normalize(m.w)
}

var (
	_ service.Classifier         = (*LogisticRegression)(nil)
	_ service.ImportanceReporter = (*LogisticRegression)(nil)
)
