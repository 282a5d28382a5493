package simulation

import (
	"time"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/services/features"
	"WalkSim/internal/services/ml"
	applogger "WalkSim/pkg/logger"

	"github.com/google/uuid"
)

// ModelTrainer fits a model on labeled samples.
type ModelTrainer interface {
	Train(symbol string, samples []models.LabeledSample) (*ml.TrainedModel, error)
}

// Request parameterizes one walk-forward run. Range validation of Days and
// InitialBalance is the caller's job.
type Request struct {
	Symbol         string
	Days           int
	InitialBalance float64
}

// Engine trains on the bars before the window and replays the model's daily
// signal over the window. A run is sequential and shares no state with others.
type Engine struct {
	trainer ModelTrainer
	l       *applogger.Logger
	newID   func() string
	now     func() time.Time
}

func NewEngine(trainer ModelTrainer) *Engine {
	return &Engine{trainer: trainer, newID: uuid.NewString, now: time.Now}
}

// SetLogger injects a structured logger.
func (e *Engine) SetLogger(l *applogger.Logger) { e.l = l }

// Run simulates the last req.Days bars of history. bars must be ascending
// and deduplicated per date.
func (e *Engine) Run(req Request, bars []models.Bar) (*models.SimulationResult, error) {
	const op = "simulate"
	if req.Days <= 0 {
		return nil, models.Errorf(models.KindDataUnavailable, op, req.Symbol, "window of %d days", req.Days)
	}
	if len(bars) < req.Days {
		return nil, models.Errorf(models.KindDataUnavailable, op, req.Symbol,
			"window of %d days exceeds %d available bars", req.Days, len(bars))
	}
	start := len(bars) - req.Days
	window := bars[start:]
	for _, b := range window {
		if b.Close <= 0 {
			return nil, models.Errorf(models.KindDataUnavailable, op, req.Symbol,
				"non-positive close on %s", b.Date.Format("2006-01-02"))
		}
	}

	began := time.Now()
	vectors := features.Compute(bars)
	cutoff := window[0].Date
	samples, err := features.BuildTrainingSet(req.Symbol, vectors[:start], cutoff)
	if err != nil {
		return nil, err
	}
	model, err := e.trainer.Train(req.Symbol, samples)
	if err != nil {
		return nil, err
	}

	ledger, err := Replay(window, vectors[start:], model, req.InitialBalance)
	if err != nil {
		return nil, models.NewError(models.KindTrainingFailure, op, req.Symbol, err)
	}

	res := Assemble(req, window, ledger)
	res.ID = e.newID()
	res.Model = model.Summary()
	res.CreatedAt = e.now().UTC()

	if e.l != nil {
		e.l.Info("simulation complete",
			applogger.String("symbol", req.Symbol),
			applogger.Int("days", req.Days),
			applogger.Int("trades", len(res.Trades)),
			applogger.Float64("roi", res.ROIPercentage),
			applogger.Float64("baseline_roi", res.BuyAndHold.ROIPercentage),
			applogger.Duration("duration_ms", time.Since(began)),
		)
	}
	return res, nil
}
