package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	applogger "WalkSim/pkg/logger"
)

const barInsertChunk = 2000

// CHBarStore keeps daily bars in ClickHouse.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHBarStore creates a bar store over db.table.
func NewCHBarStore(db *sql.DB, database string) *CHBarStore {
	return &CHBarStore{db: db, table: database + "." + tableStockPrices, l: applogger.Nop()}
}

func (s *CHBarStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// GetBars returns the latest lookback bars for symbol, oldest first.
func (s *CHBarStore) GetBars(ctx context.Context, symbol string, lookback int) ([]models.Bar, error) {
	if lookback <= 0 {
		return nil, nil
	}
	start := time.Now()
	q := fmt.Sprintf(`SELECT symbol, date, open, high, low, close, volume
		FROM %s FINAL
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?`, s.table)
	bars, err := s.query(ctx, q, strings.ToUpper(symbol), lookback)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	s.l.Debug("ch bars loaded",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)))
	return models.NormalizeBars(symbol, bars), nil
}

// BarsAfter returns up to limit bars strictly after the given day, oldest first.
func (s *CHBarStore) BarsAfter(ctx context.Context, symbol string, after time.Time, limit int) ([]models.Bar, error) {
	q := fmt.Sprintf(`SELECT symbol, date, open, high, low, close, volume
		FROM %s FINAL
		WHERE symbol = ? AND date > ?
		ORDER BY date ASC
		LIMIT ?`, s.table)
	bars, err := s.query(ctx, q, strings.ToUpper(symbol), models.TradingDay(after), limit)
	if err != nil {
		return nil, fmt.Errorf("query bars after: %w", err)
	}
	return models.NormalizeBars(symbol, bars), nil
}

// SaveBars upserts bars with multi-row inserts; ReplacingMergeTree keeps the newest row per day.
func (s *CHBarStore) SaveBars(ctx context.Context, bars []models.Bar) error {
	for start := 0; start < len(bars); start += barInsertChunk {
		end := start + barInsertChunk
		if end > len(bars) {
			end = len(bars)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b.Symbol == "" || b.Close <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, strings.ToUpper(b.Symbol), models.TradingDay(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, date, open, high, low, close, volume) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert bars: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) query(ctx context.Context, q string, args ...interface{}) ([]models.Bar, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

var _ domrepo.BarStore = (*CHBarStore)(nil)
