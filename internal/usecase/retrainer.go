package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	"WalkSim/internal/services/features"
	"WalkSim/internal/services/ml"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/util"
)

// ErrRetrainInProgress is returned when another worker holds the symbol's lock.
var ErrRetrainInProgress = errors.New("retrain already in progress")

// Locker is a cross-instance mutual exclusion primitive with expiry.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ModelTrainer fits a model on labeled samples.
type ModelTrainer interface {
	Train(symbol string, samples []models.LabeledSample) (*ml.TrainedModel, error)
}

// RetrainConfig controls which symbols are refreshed and how.
type RetrainConfig struct {
	Symbols  []string
	Lookback int
	Workers  int
	Interval time.Duration
	LockTTL  time.Duration
}

// RetrainOutcome reports one symbol's retrain.
type RetrainOutcome struct {
	Symbol string               `json:"symbol"`
	Model  *models.ModelSummary `json:"model,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Retrainer refreshes the live model registry from the latest history.
type Retrainer struct {
	bars     domrepo.BarProvider
	trainer  ModelTrainer
	registry *ml.Registry
	locker   Locker
	metrics  domrepo.Metrics
	cfg      RetrainConfig
	l        *applogger.Logger
}

func NewRetrainer(bars domrepo.BarProvider, trainer ModelTrainer, registry *ml.Registry, locker Locker, metrics domrepo.Metrics, cfg RetrainConfig) *Retrainer {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 504
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Retrainer{
		bars:     bars,
		trainer:  trainer,
		registry: registry,
		locker:   locker,
		metrics:  metrics,
		cfg:      cfg,
		l:        applogger.Nop(),
	}
}

func (r *Retrainer) SetLogger(l *applogger.Logger) {
	if l != nil {
		r.l = l
	}
}

// RetrainSymbol trains on every labelled row of the latest history and
// replaces the registry entry. The previous model stays live on failure.
func (r *Retrainer) RetrainSymbol(ctx context.Context, symbol string) (*models.ModelSummary, error) {
	const op = "retrain"
	symbol = util.NormalizeSymbol(symbol)

	if r.locker != nil {
		key := "retrain:" + symbol
		ok, err := r.locker.TryLock(ctx, key, r.cfg.LockTTL)
		switch {
		case err != nil:
			r.l.Warn("retrain lock unavailable, continuing", applogger.String("symbol", symbol), applogger.Error(err))
		case !ok:
			return nil, ErrRetrainInProgress
		default:
			defer func() {
				if uerr := r.locker.Unlock(context.Background(), key); uerr != nil {
					r.l.Warn("retrain unlock", applogger.String("symbol", symbol), applogger.Error(uerr))
				}
			}()
		}
	}

	start := time.Now()
	bars, err := r.bars.GetBars(ctx, symbol, r.cfg.Lookback)
	if err != nil {
		r.metrics.RecordError(string(models.KindDataUnavailable))
		return nil, models.NewError(models.KindDataUnavailable, op, symbol, err)
	}
	if len(bars) == 0 {
		r.metrics.RecordError(string(models.KindDataUnavailable))
		return nil, models.Errorf(models.KindDataUnavailable, op, symbol, "no bars returned")
	}

	vectors := features.Compute(bars)
	cutoff := bars[len(bars)-1].Date.AddDate(0, 0, 1)
	samples, err := features.BuildTrainingSet(symbol, vectors, cutoff)
	if err != nil {
		r.metrics.RecordError(string(models.KindOf(err)))
		return nil, err
	}
	model, err := r.trainer.Train(symbol, samples)
	if err != nil {
		r.metrics.RecordError(string(models.KindOf(err)))
		return nil, err
	}

	prev := r.registry.Replace(model)
	summary := model.Summary()
	elapsed := time.Since(start)
	r.metrics.RecordTraining(symbol, summary.Accuracy, elapsed.Seconds())

	fields := []applogger.Field{
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(samples)),
		applogger.Float64("accuracy", summary.Accuracy),
		applogger.Duration("duration_ms", elapsed),
	}
	if prev != nil {
		fields = append(fields, applogger.Float64("previous_accuracy", prev.Accuracy()))
	}
	r.l.Info("model retrained", fields...)
	return &summary, nil
}

// RetrainAll retrains every configured symbol with bounded parallelism.
// Outcomes are sorted by symbol.
func (r *Retrainer) RetrainAll(ctx context.Context) []RetrainOutcome {
	var (
		mu  sync.Mutex
		out = make([]RetrainOutcome, 0, len(r.cfg.Symbols))
		g   errgroup.Group
	)
	g.SetLimit(r.cfg.Workers)
	for _, sym := range r.cfg.Symbols {
		sym := util.NormalizeSymbol(sym)
		g.Go(func() error {
			summary, err := r.RetrainSymbol(ctx, sym)
			o := RetrainOutcome{Symbol: sym, Model: summary}
			if err != nil {
				o.Error = err.Error()
				if !errors.Is(err, ErrRetrainInProgress) {
					r.l.Warn("retrain failed", applogger.String("symbol", sym), applogger.Error(err))
				}
			}
			mu.Lock()
			out = append(out, o)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Run retrains immediately and then on every interval until ctx is done.
func (r *Retrainer) Run(ctx context.Context) {
	r.sweep(ctx)
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Retrainer) sweep(ctx context.Context) {
	start := time.Now()
	outcomes := r.RetrainAll(ctx)
	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	r.l.Info("retrain sweep done",
		applogger.Int("symbols", len(outcomes)),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)))
}
