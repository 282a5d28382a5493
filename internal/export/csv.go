package export

import (
	"encoding/csv"
	"os"
	"time"

	"WalkSim/internal/domain/models"

	"github.com/shopspring/decimal"
)

// CSVSaver writes amounts with fixed precision so files diff cleanly.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) SaveTrades(trades []models.Trade, path string) error {
	rows := make([][]string, 0, len(trades)+1)
	rows = append(rows, []string{"date", "action", "price", "shares", "value", "confidence"})
	for _, t := range trades {
		rows = append(rows, []string{
			t.Date.Format(time.DateOnly),
			string(t.Action),
			money(t.Price),
			decimal.NewFromFloat(t.Shares).StringFixed(6),
			money(t.Value),
			decimal.NewFromFloat(t.Confidence).StringFixed(4),
		})
	}
	return writeCSV(path, rows)
}

func (CSVSaver) SaveEquity(points []models.EquityPoint, path string) error {
	rows := make([][]string, 0, len(points)+1)
	rows = append(rows, []string{"date", "balance", "cash", "shares", "price"})
	for _, p := range points {
		rows = append(rows, []string{
			p.Date.Format(time.DateOnly),
			money(p.Balance),
			money(p.Cash),
			decimal.NewFromFloat(p.Shares).StringFixed(6),
			money(p.Price),
		})
	}
	return writeCSV(path, rows)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
