package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	"WalkSim/internal/services/features"
	"WalkSim/internal/services/ml"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/util"
)

// predictLookback covers the longest feature window with room for gaps.
const predictLookback = 120

// ModelLookup resolves the current model for a symbol.
type ModelLookup interface {
	Get(symbol string) (*ml.TrainedModel, bool)
}

// Predictor produces the next-day call for a symbol from its live model.
type Predictor struct {
	bars     domrepo.BarProvider
	models   ModelLookup
	sink     domrepo.ResultSink
	notifier domrepo.Notifier
	metrics  domrepo.Metrics
	newID    func() string
	now      func() time.Time
	l        *applogger.Logger
}

func NewPredictor(bars domrepo.BarProvider, lookup ModelLookup, sink domrepo.ResultSink, notifier domrepo.Notifier, metrics domrepo.Metrics) *Predictor {
	return &Predictor{
		bars:     bars,
		models:   lookup,
		sink:     sink,
		notifier: notifier,
		metrics:  metrics,
		newID:    uuid.NewString,
		now:      time.Now,
		l:        applogger.Nop(),
	}
}

func (p *Predictor) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

// Predict classifies the latest bar. Persisting and broadcasting the
// prediction are best-effort.
func (p *Predictor) Predict(ctx context.Context, symbol string) (*models.PredictionResult, error) {
	const op = "predict"
	symbol = util.NormalizeSymbol(symbol)
	model, ok := p.models.Get(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrModelNotFound, symbol)
	}

	bars, err := p.bars.GetBars(ctx, symbol, predictLookback)
	if err != nil {
		p.metrics.RecordError(string(models.KindDataUnavailable))
		return nil, models.NewError(models.KindDataUnavailable, op, symbol, err)
	}
	vectors := features.Compute(bars)
	latest, ok := features.Latest(vectors)
	if !ok {
		p.metrics.RecordError(string(models.KindDataUnavailable))
		return nil, models.Errorf(models.KindDataUnavailable, op, symbol,
			"latest of %d bars has incomplete features", len(bars))
	}
	class, confidence, err := model.Predict(latest)
	if err != nil {
		p.metrics.RecordError(string(models.KindTrainingFailure))
		return nil, models.NewError(models.KindTrainingFailure, op, symbol, err)
	}

	res := &models.PredictionResult{
		Prediction: models.Prediction{
			ID:                p.newID(),
			Symbol:            symbol,
			Date:              latest.Date,
			PredictedMovement: class == 1,
			Confidence:        confidence,
			Features:          latest.Map(),
			CreatedAt:         p.now().UTC(),
		},
		Close:             latest.Close,
		ModelAccuracy:     model.Accuracy(),
		FeatureImportance: model.Importance(),
	}

	if err := p.sink.SavePrediction(ctx, &res.Prediction); err != nil {
		p.l.Warn("prediction not persisted", applogger.String("symbol", symbol), applogger.Error(err))
	}
	if p.notifier != nil {
		p.notifier.Broadcast(res)
	}
	p.metrics.RecordPrediction(symbol, confidence)
	return res, nil
}
