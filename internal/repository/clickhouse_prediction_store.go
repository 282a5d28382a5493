package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
)

const predictionColumns = "id, symbol, date, predicted_movement, confidence, features, actual_movement, created_at"

// CHPredictionStore keeps live predictions in prediction_history.
type CHPredictionStore struct {
	db    *sql.DB
	table string
}

func NewCHPredictionStore(db *sql.DB, database string) *CHPredictionStore {
	return &CHPredictionStore{db: db, table: database + "." + tablePredictionHistory}
}

func (s *CHPredictionStore) SavePrediction(ctx context.Context, p *models.Prediction) error {
	if p == nil {
		return fmt.Errorf("prediction is nil")
	}
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	var actual *uint8
	if p.ActualMovement != nil {
		v := boolToUint8(*p.ActualMovement)
		actual = &v
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table, predictionColumns)
	if _, err := s.db.ExecContext(ctx, q,
		p.ID,
		strings.ToUpper(p.Symbol),
		models.TradingDay(p.Date),
		boolToUint8(p.PredictedMovement),
		p.Confidence,
		string(features),
		actual,
		p.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns the newest predictions, optionally for one symbol.
func (s *CHPredictionStore) RecentPredictions(ctx context.Context, symbol string, limit int) ([]models.Prediction, error) {
	return s.list(ctx, symbol, limit)
}

// PredictionHistory is RecentPredictions with a larger page; kept separate
// so the two endpoints can diverge in filtering.
func (s *CHPredictionStore) PredictionHistory(ctx context.Context, symbol string, limit int) ([]models.Prediction, error) {
	return s.list(ctx, symbol, limit)
}

// PendingPredictions returns predictions dated before the given day that
// still have no actual movement.
func (s *CHPredictionStore) PendingPredictions(ctx context.Context, before time.Time) ([]models.Prediction, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s
		WHERE actual_movement IS NULL AND date < ?
		ORDER BY date ASC`, predictionColumns, s.table)
	return s.scan(ctx, q, models.TradingDay(before))
}

// SetActualMovement records the realised direction with a mutation.
func (s *CHPredictionStore) SetActualMovement(ctx context.Context, id string, movement bool) error {
	q := fmt.Sprintf("ALTER TABLE %s UPDATE actual_movement = ? WHERE id = ?", s.table)
	if _, err := s.db.ExecContext(ctx, q, boolToUint8(movement), id); err != nil {
		return fmt.Errorf("update actual movement: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) list(ctx context.Context, symbol string, limit int) ([]models.Prediction, error) {
	if symbol == "" {
		q := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC LIMIT ?", predictionColumns, s.table)
		return s.scan(ctx, q, limit)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE symbol = ? ORDER BY created_at DESC LIMIT ?", predictionColumns, s.table)
	return s.scan(ctx, q, strings.ToUpper(symbol), limit)
}

func (s *CHPredictionStore) scan(ctx context.Context, q string, args ...interface{}) ([]models.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Prediction, 0)
	for rows.Next() {
		var (
			p         models.Prediction
			predicted uint8
			features  string
			actual    *uint8
		)
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Date, &predicted, &p.Confidence, &features, &actual, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.PredictedMovement = predicted == 1
		if actual != nil {
			v := *actual == 1
			p.ActualMovement = &v
		}
		f, err := decodeFeatures(features)
		if err != nil {
			return nil, fmt.Errorf("prediction %s: %w", p.ID, err)
		}
		p.Features = f
		out = append(out, p)
	}
	return out, rows.Err()
}

// decodeFeatures parses the stored feature snapshot; empty means none.
func decodeFeatures(raw string) (map[string]float64, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return out, nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

var _ domrepo.PredictionStore = (*CHPredictionStore)(nil)
