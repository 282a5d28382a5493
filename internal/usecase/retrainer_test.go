package usecase

import (
	"context"
	"errors"
	"testing"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/services/ml"
)

func newTestRetrainer(t *testing.T, bars *fakeBars, locker Locker, symbols ...string) (*Retrainer, *ml.Registry) {
	t.Helper()
	reg := ml.NewRegistry()
	r := NewRetrainer(bars, newTestTrainer(t), reg, locker, noMetrics, RetrainConfig{Symbols: symbols, Lookback: 300})
	return r, reg
}

func TestRetrainSymbolReplacesModel(t *testing.T) {
	bars := newFakeBars(300, "AAPL")
	r, reg := newTestRetrainer(t, bars, &memLocker{}, "AAPL")

	sum, err := r.RetrainSymbol(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	m, ok := reg.Get("AAPL")
	if !ok {
		t.Fatalf("model not registered")
	}
	// the newest bar has no label, so training stops one day earlier
	if want := bars.series["AAPL"][298].Date; !m.TrainedThrough().Equal(want) || !sum.TrainedThrough.Equal(want) {
		t.Fatalf("trained through %v, want %v", m.TrainedThrough(), want)
	}
}

func TestRetrainSymbolLockHeld(t *testing.T) {
	locker := &memLocker{held: map[string]bool{"retrain:AAPL": true}}
	r, reg := newTestRetrainer(t, newFakeBars(300, "AAPL"), locker, "AAPL")
	if _, err := r.RetrainSymbol(context.Background(), "AAPL"); !errors.Is(err, ErrRetrainInProgress) {
		t.Fatalf("expected in progress, got %v", err)
	}
	if _, ok := reg.Get("AAPL"); ok {
		t.Fatalf("no model should be installed")
	}
}

func TestRetrainSymbolLockErrorDoesNotBlock(t *testing.T) {
	r, _ := newTestRetrainer(t, newFakeBars(300, "AAPL"), &memLocker{err: errBoom}, "AAPL")
	if _, err := r.RetrainSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatalf("lock backend errors should not block retrain: %v", err)
	}
}

func TestRetrainFailureKeepsPreviousModel(t *testing.T) {
	bars := newFakeBars(300, "AAPL")
	r, reg := newTestRetrainer(t, bars, nil, "AAPL")
	if _, err := r.RetrainSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatalf("first retrain: %v", err)
	}
	before, _ := reg.Get("AAPL")

	bars.series["AAPL"] = bars.series["AAPL"][:60]
	_, err := r.RetrainSymbol(context.Background(), "AAPL")
	if !models.IsKind(err, models.KindInsufficientSamples) {
		t.Fatalf("expected insufficient_samples, got %v", err)
	}
	if after, _ := reg.Get("AAPL"); after != before {
		t.Fatalf("failed retrain must keep the previous model")
	}
}

func TestRetrainAllSortedOutcomes(t *testing.T) {
	bars := newFakeBars(300, "MSFT", "AAPL")
	r, reg := newTestRetrainer(t, bars, &memLocker{}, "MSFT", "AAPL", "NVDA")
	out := r.RetrainAll(context.Background())
	if len(out) != 3 || out[0].Symbol != "AAPL" || out[1].Symbol != "MSFT" || out[2].Symbol != "NVDA" {
		t.Fatalf("outcomes %+v", out)
	}
	if out[0].Model == nil || out[2].Error == "" {
		t.Fatalf("unexpected outcomes %+v", out)
	}
	if len(reg.Symbols()) != 2 {
		t.Fatalf("registry %v", reg.Symbols())
	}
}

func TestRetrainJobIgnoresInProgress(t *testing.T) {
	locker := &memLocker{held: map[string]bool{"retrain:AAPL": true}}
	r, _ := newTestRetrainer(t, newFakeBars(300, "AAPL"), locker, "AAPL")
	job := NewRetrainJob(r)
	if err := job.Handle(context.Background(), map[string]interface{}{"symbol": "AAPL"}); err != nil {
		t.Fatalf("in-progress retrain should be acknowledged: %v", err)
	}
	if job.Type() != JobTypeRetrain {
		t.Fatalf("type %q", job.Type())
	}
}
