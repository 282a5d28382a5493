package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"WalkSim/internal/domain/service"
)

// GBDTConfig holds gradient boosting hyperparameters.
type GBDTConfig struct {
	Estimators     int
	LearningRate   float64
	MaxDepth       int
	Subsample      float64
	ColSample      float64
	MinChildWeight float64
	Lambda         float64
	Gamma          float64
	Seed           int64
}

// DefaultGBDTConfig mirrors the production model parameters.
func DefaultGBDTConfig() GBDTConfig {
	return GBDTConfig{
		Estimators:     100,
		LearningRate:   0.1,
		MaxDepth:       6,
		Subsample:      0.8,
		ColSample:      0.8,
		MinChildWeight: 1,
		Lambda:         1,
		Gamma:          0,
		Seed:           42,
	}
}

// GradientBoosting is a binary logistic gradient-boosted tree ensemble with
// exact greedy splits. Fitting is deterministic for a fixed Seed.
type GradientBoosting struct {
	cfg       GBDTConfig
	trees     []*treeNode
	gain      []float64
	nFeatures int
}

type treeNode struct {
	leaf      bool
	weight    float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) eval(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.weight
}

// NewGradientBoosting creates an unfitted ensemble.
func NewGradientBoosting(cfg GBDTConfig) *GradientBoosting {
	if cfg.Estimators <= 0 {
		cfg.Estimators = 100
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 6
	}
	if cfg.Subsample <= 0 || cfg.Subsample > 1 {
		cfg.Subsample = 1
	}
	if cfg.ColSample <= 0 || cfg.ColSample > 1 {
		cfg.ColSample = 1
	}
	if cfg.Lambda < 0 {
		cfg.Lambda = 0
	}
	return &GradientBoosting{cfg: cfg}
}

// Fit trains the ensemble from scratch.
func (g *GradientBoosting) Fit(X [][]float64, y []int) error {
	nf, err := checkDesign(X, y)
	if err != nil {
		return err
	}
	n := len(X)
	g.nFeatures = nf
	g.trees = make([]*treeNode, 0, g.cfg.Estimators)
	g.gain = make([]float64, nf)

	rng := rand.New(rand.NewSource(g.cfg.Seed))
	margin := make([]float64, n)
	grad := make([]float64, n)
	hess := make([]float64, n)

	for t := 0; t < g.cfg.Estimators; t++ {
		for i := 0; i < n; i++ {
			p := sigmoid(margin[i])
			grad[i] = p - float64(y[i])
			hess[i] = math.Max(p*(1-p), 1e-16)
		}
		rows := g.sampleRows(rng, n)
		cols := g.sampleCols(rng, nf)
		root := g.grow(X, grad, hess, rows, cols, 0)
		g.trees = append(g.trees, root)
		for i := 0; i < n; i++ {
			margin[i] += root.eval(X[i])
		}
	}
	return nil
}

func (g *GradientBoosting) sampleRows(rng *rand.Rand, n int) []int {
	rows := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if g.cfg.Subsample >= 1 || rng.Float64() < g.cfg.Subsample {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		for i := 0; i < n; i++ {
			rows = append(rows, i)
		}
	}
	return rows
}

func (g *GradientBoosting) sampleCols(rng *rand.Rand, nf int) []int {
	k := int(math.Round(g.cfg.ColSample * float64(nf)))
	if k < 1 {
		k = 1
	}
	if k >= nf {
		cols := make([]int, nf)
		for i := range cols {
			cols[i] = i
		}
		return cols
	}
	cols := rng.Perm(nf)[:k]
	sort.Ints(cols)
	return cols
}

func (g *GradientBoosting) grow(X [][]float64, grad, hess []float64, rows, cols []int, depth int) *treeNode {
	var G, H float64
	for _, r := range rows {
		G += grad[r]
		H += hess[r]
	}
	leaf := &treeNode{leaf: true, weight: -G / (H + g.cfg.Lambda) * g.cfg.LearningRate}
	if depth >= g.cfg.MaxDepth || len(rows) < 2 || H < 2*g.cfg.MinChildWeight {
		return leaf
	}

	parent := G * G / (H + g.cfg.Lambda)
	bestGain, bestFeature, bestThreshold := 0.0, -1, 0.0
	sorted := make([]int, len(rows))
	for _, f := range cols {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool { return X[sorted[i]][f] < X[sorted[j]][f] })
		var GL, HL float64
		for k := 0; k < len(sorted)-1; k++ {
			r := sorted[k]
			GL += grad[r]
			HL += hess[r]
			cur, next := X[r][f], X[sorted[k+1]][f]
			if cur == next {
				continue
			}
			GR, HR := G-GL, H-HL
			if HL < g.cfg.MinChildWeight || HR < g.cfg.MinChildWeight {
				continue
			}
			gain := 0.5*(GL*GL/(HL+g.cfg.Lambda)+GR*GR/(HR+g.cfg.Lambda)-parent) - g.cfg.Gamma
			if gain > bestGain {
				bestGain, bestFeature, bestThreshold = gain, f, (cur+next)/2
			}
		}
	}
	if bestFeature < 0 {
		return leaf
	}

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if X[r][bestFeature] < bestThreshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	g.gain[bestFeature] += bestGain
	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      g.grow(X, grad, hess, left, cols, depth+1),
		right:     g.grow(X, grad, hess, right, cols, depth+1),
	}
}

func (g *GradientBoosting) margin(x []float64) float64 {
	var m float64
	for _, t := range g.trees {
		m += t.eval(x)
	}
	return m
}

// PredictProba returns [P(0), P(1)].
func (g *GradientBoosting) PredictProba(x []float64) []float64 {
	p := sigmoid(g.margin(x))
	return []float64{1 - p, p}
}

// Predict returns the most probable class; ties resolve to 0.
func (g *GradientBoosting) Predict(x []float64) int {
	if g.PredictProba(x)[1] > 0.5 {
		return 1
	}
	return 0
}

// FeatureImportances returns total split gain per feature, normalized to sum to 1.
func (g *GradientBoosting) FeatureImportances() []float64 {
	return normalize(g.gain)
}

// Trees reports the number of fitted trees.
func (g *GradientBoosting) Trees() int { return len(g.trees) }

var (
	_ service.Classifier         = (*GradientBoosting)(nil)
	_ service.ImportanceReporter = (*GradientBoosting)(nil)
)

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func normalize(w []float64) []float64 {
	out := make([]float64, len(w))
	var total float64
	for _, v := range w {
		total += math.Abs(v)
	}
	if total == 0 {
		return out
	}
	for i, v := range w {
		out[i] = math.Abs(v) / total
	}
	return out
}

func checkDesign(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("rows %d != labels %d", len(X), len(y))
	}
	nf := len(X[0])
	if nf == 0 {
		return 0, fmt.Errorf("no features")
	}
	for i, row := range X {
		if len(row) != nf {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), nf)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("row %d has non-finite feature", i)
			}
		}
		if y[i] != 0 && y[i] != 1 {
			return 0, fmt.Errorf("row %d has label %d", i, y[i])
		}
	}
	return nf, nil
}
