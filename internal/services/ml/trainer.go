package ml

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/domain/service"
	"WalkSim/internal/services/features"
	applogger "WalkSim/pkg/logger"
)

// SplitPolicy decides which rows are held out for accuracy reporting.
type SplitPolicy string

const (
	// SplitChronological holds out the most recent rows.
	SplitChronological SplitPolicy = "chronological"
	// SplitRandom holds out a seeded random subset. Later rows can land in
	// the training partition, so the reported accuracy is optimistic.
	SplitRandom SplitPolicy = "random"
)

// MinTrainRows is the minimum size of the training partition after the split.
const MinTrainRows = 20

// TrainerConfig configures the split used for held-out accuracy.
type TrainerConfig struct {
	TestFraction float64
	Split        SplitPolicy
	Seed         int64
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{TestFraction: 0.2, Split: SplitChronological, Seed: 42}
}

// Trainer fits a fresh classifier per call and wraps it in a TrainedModel.
type Trainer struct {
	factory service.ClassifierFactory
	cfg     TrainerConfig
	l       *applogger.Logger
	now     func() time.Time
}

func NewTrainer(factory service.ClassifierFactory, cfg TrainerConfig) *Trainer {
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	if cfg.Split == "" {
		cfg.Split = SplitChronological
	}
	return &Trainer{factory: factory, cfg: cfg, now: time.Now}
}

// SetLogger injects a structured logger.
func (t *Trainer) SetLogger(l *applogger.Logger) { t.l = l }

// Kind returns the classifier kind produced by this trainer.
func (t *Trainer) Kind() string { return t.factory.Kind() }

// Train fits a classifier on samples, which the caller has already confined
// to dates before the simulation cutoff. Fitting is atomic and not cancellable.
func (t *Trainer) Train(symbol string, samples []models.LabeledSample) (*TrainedModel, error) {
	const op = "train"
	if len(samples) < features.MinSamples {
		return nil, models.Errorf(models.KindInsufficientSamples, op, symbol,
			"%d usable rows, need %d", len(samples), features.MinSamples)
	}
	train, test := t.split(samples)
	if len(train) < MinTrainRows {
		return nil, models.Errorf(models.KindInsufficientSamples, op, symbol,
			"%d training rows after split, need %d", len(train), MinTrainRows)
	}

	start := time.Now()
	clf := t.factory.New()
	X, y := features.Matrix(train)
	if err := safeFit(clf, X, y); err != nil {
		if t.l != nil {
			t.l.Error("model fit failed",
				applogger.String("symbol", symbol),
				applogger.String("kind", t.factory.Kind()),
				applogger.Error(err),
			)
		}
		return nil, models.NewError(models.KindTrainingFailure, op, symbol, err)
	}

	var accuracy float64
	if len(test) > 0 {
		hits := 0
		for _, s := range test {
			if clf.Predict(s.Values) == s.Label {
				hits++
			}
		}
		accuracy = float64(hits) / float64(len(test))
	}

	importance := make(map[string]float64, len(models.FeatureNames))
	if ir, ok := clf.(service.ImportanceReporter); ok {
		scores := ir.FeatureImportances()
		for i, name := range models.FeatureNames {
			if i < len(scores) {
				importance[name] = scores[i]
			}
		}
	}

	var through time.Time
	for _, s := range samples {
		if s.Date.After(through) {
			through = s.Date
		}
	}

	m := &TrainedModel{
		symbol:         symbol,
		kind:           t.factory.Kind(),
		clf:            clf,
		features:       append([]string(nil), models.FeatureNames...),
		accuracy:       accuracy,
		importance:     importance,
		trainRows:      len(train),
		testRows:       len(test),
		split:          t.cfg.Split,
		trainedThrough: through,
		trainedAt:      t.now().UTC(),
	}
	if t.l != nil {
		fields := []applogger.Field{
			applogger.String("symbol", symbol),
			applogger.String("kind", m.kind),
			applogger.String("split", string(t.cfg.Split)),
			applogger.Int("train_rows", m.trainRows),
			applogger.Int("test_rows", m.testRows),
			applogger.Float64("accuracy", accuracy),
			applogger.Duration("duration_ms", time.Since(start)),
		}
		if t.cfg.Split == SplitRandom {
			t.l.Warn("model trained with random split; accuracy may include future rows", fields...)
		} else {
			t.l.Info("model trained", fields...)
		}
	}
	return m, nil
}

func (t *Trainer) split(samples []models.LabeledSample) (train, test []models.LabeledSample) {
	n := len(samples)
	nTest := int(math.Ceil(float64(n) * t.cfg.TestFraction))
	if nTest >= n {
		nTest = n - 1
	}
	nTrain := n - nTest
	if t.cfg.Split != SplitRandom {
		return samples[:nTrain], samples[nTrain:]
	}
	perm := rand.New(rand.NewSource(t.cfg.Seed)).Perm(n)
	train = make([]models.LabeledSample, 0, nTrain)
	test = make([]models.LabeledSample, 0, nTest)
	for k, idx := range perm {
		if k < nTrain {
			train = append(train, samples[idx])
		} else {
			test = append(test, samples[idx])
		}
	}
	return train, test
}

func safeFit(clf service.Classifier, X [][]float64, y []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fit panic: %v", r)
		}
	}()
	return clf.Fit(X, y)
}
