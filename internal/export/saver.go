// Package export writes simulation ledgers and equity curves to files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"WalkSim/internal/domain/models"
)

// Saver writes one result's trades and equity curve in a single format.
type Saver interface {
	SaveTrades(trades []models.Trade, path string) error
	SaveEquity(points []models.EquityPoint, path string) error
	Extension() string
}

// NewSaver returns the saver for format (csv, json or parquet).
func NewSaver(format string) (Saver, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}, nil
	case "json":
		return JSONSaver{}, nil
	case "parquet":
		return ParquetSaver{}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q (use: csv, json, parquet)", format)
	}
}

// WriteResult saves r under dir as <symbol>_trades.<ext> and
// <symbol>_equity.<ext> and returns both paths.
func WriteResult(s Saver, dir string, r *models.SimulationResult) (string, string, error) {
	base := strings.ToLower(r.Symbol)
	trades := filepath.Join(dir, fmt.Sprintf("%s_trades.%s", base, s.Extension()))
	equity := filepath.Join(dir, fmt.Sprintf("%s_equity.%s", base, s.Extension()))
	if err := s.SaveTrades(r.Trades, trades); err != nil {
		return "", "", fmt.Errorf("save trades: %w", err)
	}
	if err := s.SaveEquity(r.DailyBalance, equity); err != nil {
		return "", "", fmt.Errorf("save equity: %w", err)
	}
	return trades, equity, nil
}
