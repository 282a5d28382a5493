package usecase

import (
	"context"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	applogger "WalkSim/pkg/logger"
)

// MovementReconciler fills in the realised direction of past predictions.
type MovementReconciler struct {
	predictions domrepo.PredictionStore
	bars        domrepo.BarProvider
	l           *applogger.Logger
}

func NewMovementReconciler(predictions domrepo.PredictionStore, bars domrepo.BarProvider) *MovementReconciler {
	return &MovementReconciler{predictions: predictions, bars: bars, l: applogger.Nop()}
}

func (r *MovementReconciler) SetLogger(l *applogger.Logger) {
	if l != nil {
		r.l = l
	}
}

// UpdateActualMovements resolves predictions older than one day: the actual
// movement is whether the next close exceeds the close on the prediction
// date. Predictions whose next bar is not available yet are left pending.
// It returns how many predictions were updated.
func (r *MovementReconciler) UpdateActualMovements(ctx context.Context, now time.Time) (int, error) {
	pending, err := r.predictions.PendingPredictions(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return 0, models.NewError(models.KindPersistenceFailure, "pending_predictions", "", err)
	}

	bySymbol := make(map[string][]models.Prediction)
	for _, p := range pending {
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}

	updated := 0
	for symbol, preds := range bySymbol {
		oldest := preds[0].Date
		for _, p := range preds[1:] {
			if p.Date.Before(oldest) {
				oldest = p.Date
			}
		}
		lookback := int(now.Sub(oldest).Hours()/24) + 5
		bars, err := r.bars.GetBars(ctx, symbol, lookback)
		if err != nil {
			r.l.Warn("reconcile bars unavailable", applogger.String("symbol", symbol), applogger.Error(err))
			continue
		}
		index := make(map[time.Time]int, len(bars))
		for i, b := range bars {
			index[models.TradingDay(b.Date)] = i
		}
		for _, p := range preds {
			i, ok := index[models.TradingDay(p.Date)]
			if !ok || i+1 >= len(bars) {
				continue
			}
			movement := bars[i+1].Close > bars[i].Close
			if err := r.predictions.SetActualMovement(ctx, p.ID, movement); err != nil {
				r.l.Warn("set actual movement", applogger.String("id", p.ID), applogger.Error(err))
				continue
			}
			updated++
		}
	}
	r.l.Info("actual movements reconciled",
		applogger.Int("pending", len(pending)),
		applogger.Int("updated", updated))
	return updated, nil
}
