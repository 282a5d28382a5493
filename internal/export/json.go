package export

import (
	"encoding/json"
	"os"

	"WalkSim/internal/domain/models"
)

// JSONSaver writes indented JSON arrays.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) SaveTrades(trades []models.Trade, path string) error {
	return writeJSON(path, trades)
}

func (JSONSaver) SaveEquity(points []models.EquityPoint, path string) error {
	return writeJSON(path, points)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
