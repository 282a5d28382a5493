package export

import (
	"WalkSim/internal/domain/models"

	"github.com/parquet-go/parquet-go"
)

type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) SaveTrades(trades []models.Trade, path string) error {
	return parquet.WriteFile(path, trades)
}

func (ParquetSaver) SaveEquity(points []models.EquityPoint, path string) error {
	return parquet.WriteFile(path, points)
}
