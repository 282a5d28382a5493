package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/services/ml"
	"WalkSim/internal/services/simulation"
	"WalkSim/internal/synthetic"
	"WalkSim/pkg/metrics"
)

var errBoom = errors.New("boom")

type fakeBars struct {
	mu      sync.Mutex
	series  map[string][]models.Bar
	err     error
	lastAsk int
}

func newFakeBars(n int, symbols ...string) *fakeBars {
	f := &fakeBars{series: make(map[string][]models.Bar)}
	for i, s := range symbols {
		f.series[s] = synthetic.RandomWalk(s, n, int64(i+1))
	}
	return f
}

func (f *fakeBars) GetBars(_ context.Context, symbol string, lookback int) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAsk = lookback
	if f.err != nil {
		return nil, f.err
	}
	b := f.series[symbol]
	if len(b) > lookback {
		b = b[len(b)-lookback:]
	}
	return b, nil
}

type fakeSink struct {
	mu          sync.Mutex
	err         error
	results     []*models.SimulationResult
	predictions []*models.Prediction
}

func (f *fakeSink) SaveSimulationResult(_ context.Context, r *models.SimulationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, r)
	return nil
}

func (f *fakeSink) SavePrediction(_ context.Context, p *models.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.predictions = append(f.predictions, p)
	return nil
}

type fakeNotifier struct {
	got []*models.PredictionResult
}

func (f *fakeNotifier) Broadcast(p *models.PredictionResult) { f.got = append(f.got, p) }

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *memLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
	return nil
}

func newTestTrainer(t *testing.T) *ml.Trainer {
	t.Helper()
	gb := ml.DefaultGBDTConfig()
	gb.Estimators = 10
	f, err := ml.NewClassifierFactory(ml.FactoryConfig{Kind: ml.KindGBDT, GBDT: gb})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	return ml.NewTrainer(f, ml.DefaultTrainerConfig())
}

func newTestEngine(t *testing.T) *simulation.Engine {
	t.Helper()
	return simulation.NewEngine(newTestTrainer(t))
}

var noMetrics = metrics.Noop{}
