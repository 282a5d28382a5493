package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"WalkSim/internal/domain/models"

	"github.com/parquet-go/parquet-go"
)

func sampleResult() *models.SimulationResult {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.SimulationResult{
		Symbol: "AAPL",
		Trades: []models.Trade{
			{Date: d, Action: models.ActionBuy, Price: 180.123, Shares: 55.5, Value: 10000, Confidence: 0.61},
			{Date: d.AddDate(0, 0, 3), Action: models.ActionFinalSell, Price: 182, Shares: 55.5, Value: 10101, Confidence: 1},
		},
		DailyBalance: []models.EquityPoint{
			{Date: d, Balance: 10000, Shares: 55.5, Price: 180.123},
			{Date: d.AddDate(0, 0, 3), Balance: 10101, Cash: 10101, Price: 182},
		},
	}
}

func TestNewSaverFormats(t *testing.T) {
	for _, f := range []string{"csv", " JSON ", "parquet"} {
		if _, err := NewSaver(f); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
	}
	if _, err := NewSaver("xlsx"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCSVWriteResult(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewSaver("csv")
	trades, equity, err := WriteResult(s, dir, sampleResult())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(trades) != "aapl_trades.csv" || filepath.Base(equity) != "aapl_equity.csv" {
		t.Fatalf("paths %s %s", trades, equity)
	}
	f, err := os.Open(trades)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "2024-03-01" || rows[1][1] != "BUY" || rows[1][2] != "180.12" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[2][1] != "FINAL_SELL" || rows[2][5] != "1.0000" {
		t.Fatalf("unexpected final row %v", rows[2])
	}
}

func TestJSONWriteResult(t *testing.T) {
	dir := t.TempDir()
	_, equity, err := WriteResult(JSONSaver{}, dir, sampleResult())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(equity)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var pts []models.EquityPoint
	if err := json.Unmarshal(b, &pts); err != nil || len(pts) != 2 || pts[1].Cash != 10101 {
		t.Fatalf("decode %v %+v", err, pts)
	}
}

func TestParquetWriteResult(t *testing.T) {
	dir := t.TempDir()
	trades, _, err := WriteResult(ParquetSaver{}, dir, sampleResult())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := parquet.ReadFile[models.Trade](trades)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[0].Action != models.ActionBuy || rows[1].Confidence != 1 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
