package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
)

// CHResultStore writes simulation results to portfolio_simulation.
type CHResultStore struct {
	db    *sql.DB
	table string
}

func NewCHResultStore(db *sql.DB, database string) *CHResultStore {
	return &CHResultStore{db: db, table: database + "." + tablePortfolioSimulation}
}

func (s *CHResultStore) SaveSimulationResult(ctx context.Context, r *models.SimulationResult) error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}
	trades, err := json.Marshal(r.Trades)
	if err != nil {
		return fmt.Errorf("marshal trades: %w", err)
	}
	daily, err := json.Marshal(r.DailyBalance)
	if err != nil {
		return fmt.Errorf("marshal daily balance: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, symbol, start_date, end_date, days, initial_balance,
		final_balance, roi_percentage, baseline_roi, trade_count, trades, daily_balance,
		strategy, model_kind, model_accuracy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		r.ID,
		r.Symbol,
		r.StartDate,
		r.EndDate,
		uint16(r.Days),
		r.InitialBalance,
		r.FinalBalance,
		r.ROIPercentage,
		r.BuyAndHold.ROIPercentage,
		uint32(len(r.Trades)),
		string(trades),
		string(daily),
		r.Strategy,
		r.Model.Kind,
		r.Model.Accuracy,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert simulation: %w", err)
	}
	return nil
}

var _ domrepo.ResultStore = (*CHResultStore)(nil)
