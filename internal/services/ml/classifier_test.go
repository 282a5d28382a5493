package ml

import (
	"math/rand"
	"testing"
)

// separable returns rows whose label is 1 when the first feature is positive.
func separable(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		a := rng.Float64()*2 - 1
		X[i] = []float64{a, rng.Float64(), rng.Float64()}
		if a > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func accuracyOn(predict func([]float64) int, X [][]float64, y []int) float64 {
	hits := 0
	for i := range X {
		if predict(X[i]) == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(X))
}

func TestGradientBoostingLearnsSeparableData(t *testing.T) {
	X, y := separable(200, 1)
	g := NewGradientBoosting(GBDTConfig{Estimators: 30, MaxDepth: 3, Seed: 42})
	if err := g.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if acc := accuracyOn(g.Predict, X, y); acc < 0.95 {
		t.Fatalf("training accuracy %.2f too low", acc)
	}
	imp := g.FeatureImportances()
	if imp[0] <= imp[1] || imp[0] <= imp[2] {
		t.Fatalf("first feature should dominate importance: %v", imp)
	}
	p := g.PredictProba(X[0])
	if len(p) != 2 || p[0]+p[1] < 0.999 || p[0]+p[1] > 1.001 {
		t.Fatalf("probabilities %v do not sum to 1", p)
	}
}

func TestGradientBoostingDeterministic(t *testing.T) {
	X, y := separable(120, 2)
	cfg := DefaultGBDTConfig()
	cfg.Estimators = 20
	a, b := NewGradientBoosting(cfg), NewGradientBoosting(cfg)
	if err := a.Fit(X, y); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	for i := range X {
		if a.PredictProba(X[i])[1] != b.PredictProba(X[i])[1] {
			t.Fatalf("row %d differs between identical fits", i)
		}
	}
	if a.Trees() != 20 {
		t.Fatalf("expected 20 trees, got %d", a.Trees())
	}
}

func TestLogisticRegressionLearnsSeparableData(t *testing.T) {
	X, y := separable(200, 3)
	m := NewLogisticRegression(DefaultLogRegConfig())
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if acc := accuracyOn(m.Predict, X, y); acc < 0.9 {
		t.Fatalf("training accuracy %.2f too low", acc)
	}
	if imp := m.FeatureImportances(); imp[0] <= imp[1] {
		t.Fatalf("first feature should dominate importance: %v", imp)
	}
}

func TestFitRejectsBadDesign(t *testing.T) {
	cases := map[string]struct {
		X [][]float64
		y []int
	}{
		"empty":    {nil, nil},
		"mismatch": {[][]float64{{1}}, []int{0, 1}},
		"ragged":   {[][]float64{{1, 2}, {1}}, []int{0, 1}},
		"label":    {[][]float64{{1}}, []int{2}},
	}
	for name, c := range cases {
		if err := NewGradientBoosting(GBDTConfig{}).Fit(c.X, c.y); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestClassifierFactory(t *testing.T) {
	f, err := NewClassifierFactory(FactoryConfig{Kind: " LogReg "})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if f.Kind() != KindLogReg {
		t.Fatalf("kind = %q", f.Kind())
	}
	if _, ok := f.New().(*LogisticRegression); !ok {
		t.Fatalf("expected logistic regression")
	}
	f, _ = NewClassifierFactory(FactoryConfig{})
	if _, ok := f.New().(*GradientBoosting); !ok {
		t.Fatalf("default kind should be gbdt")
	}
	if _, err := NewClassifierFactory(FactoryConfig{Kind: "svm"}); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}
