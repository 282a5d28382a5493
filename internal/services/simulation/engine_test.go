package simulation

import (
	"math"
	"reflect"
	"testing"
	"time"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/services/ml"
	"WalkSim/internal/synthetic"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	gb := ml.DefaultGBDTConfig()
	gb.Estimators = 10
	f, err := ml.NewClassifierFactory(ml.FactoryConfig{Kind: ml.KindGBDT, GBDT: gb})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	e := NewEngine(ml.NewTrainer(f, ml.DefaultTrainerConfig()))
	e.newID = func() string { return "run-1" }
	e.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestEngineMinimumHistory(t *testing.T) {
	e := newEngine(t)
	req := Request{Symbol: "AAPL", Days: 30, InitialBalance: 10000}

	res, err := e.Run(req, synthetic.RandomWalk("AAPL", 110, 11))
	if err != nil {
		t.Fatalf("110 bars should be enough for a 30 day window: %v", err)
	}
	if len(res.DailyBalance) != 30 {
		t.Fatalf("expected 30 equity points, got %d", len(res.DailyBalance))
	}

	_, err = e.Run(req, synthetic.RandomWalk("AAPL", 109, 11))
	if !models.IsKind(err, models.KindInsufficientSamples) {
		t.Fatalf("109 bars should be insufficient, got %v", err)
	}
}

func TestEngineResultShape(t *testing.T) {
	e := newEngine(t)
	bars := synthetic.RandomWalk("AAPL", 300, 12)
	res, err := e.Run(Request{Symbol: "AAPL", Days: 60, InitialBalance: 5000}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ID != "run-1" || res.Strategy != models.StrategyAIPrediction {
		t.Fatalf("identity %q %q", res.ID, res.Strategy)
	}
	if !res.StartDate.Equal(bars[240].Date) || !res.EndDate.Equal(bars[299].Date) {
		t.Fatalf("window %v..%v", res.StartDate, res.EndDate)
	}
	if !res.Model.TrainedThrough.Before(res.StartDate) {
		t.Fatalf("model trained through %v, must precede %v", res.Model.TrainedThrough, res.StartDate)
	}
	if math.Abs(res.ROIPercentage-ROI(5000, res.FinalBalance)) > 1e-9 {
		t.Fatalf("roi %v inconsistent with final %v", res.ROIPercentage, res.FinalBalance)
	}
	last := res.DailyBalance[len(res.DailyBalance)-1]
	if last.Shares != 0 || math.Abs(last.Balance-res.FinalBalance) > 1e-9 {
		t.Fatalf("run must end flat: %+v", last)
	}
	for i := 1; i < len(res.Trades); i++ {
		if res.Trades[i].Action == res.Trades[i-1].Action {
			t.Fatalf("trades must alternate: %+v", res.Trades)
		}
	}
}

func TestEngineIsDeterministic(t *testing.T) {
	bars := synthetic.RandomWalk("AAPL", 250, 13)
	req := Request{Symbol: "AAPL", Days: 45, InitialBalance: 10000}
	a, err := newEngine(t).Run(req, bars)
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	b, err := newEngine(t).Run(req, bars)
	if err != nil {
		t.Fatalf("run b: %v", err)
	}
	if !reflect.DeepEqual(a.Trades, b.Trades) {
		t.Fatalf("trades differ:\n%+v\n%+v", a.Trades, b.Trades)
	}
	if !reflect.DeepEqual(a.DailyBalance, b.DailyBalance) {
		t.Fatalf("equity curves differ")
	}
	if a.FinalBalance != b.FinalBalance {
		t.Fatalf("final %v vs %v", a.FinalBalance, b.FinalBalance)
	}
	checkSinglePosition(t, a.DailyBalance)
}

// checkSinglePosition asserts the account is either all cash or all shares.
func checkSinglePosition(t *testing.T, points []models.EquityPoint) {
	t.Helper()
	for _, p := range points {
		if p.Shares > 0 && p.Cash != 0 {
			t.Fatalf("%s: cash %v while holding %v shares", p.Date.Format("2006-01-02"), p.Cash, p.Shares)
		}
		if p.Cash > 0 && p.Shares != 0 {
			t.Fatalf("%s: shares %v while holding cash %v", p.Date.Format("2006-01-02"), p.Shares, p.Cash)
		}
		if math.Abs(p.Balance-(p.Cash+p.Shares*p.Price)) > 1e-6 {
			t.Fatalf("%s: balance %v != cash+shares*price", p.Date.Format("2006-01-02"), p.Balance)
		}
	}
}

func TestEngineFlatSeries(t *testing.T) {
	bars := synthetic.Trending("FLAT", 90, 0)
	res, err := newEngine(t).Run(Request{Symbol: "FLAT", Days: 10, InitialBalance: 10000}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("flat prices should never trade: %+v", res.Trades)
	}
	if res.ROIPercentage != 0 || res.BuyAndHold.ROIPercentage != 0 {
		t.Fatalf("roi %v baseline %v, want 0", res.ROIPercentage, res.BuyAndHold.ROIPercentage)
	}
	if res.FinalBalance != 10000 {
		t.Fatalf("final %v", res.FinalBalance)
	}
	checkSinglePosition(t, res.DailyBalance)
}

func TestEngineMonotonicMatchesBaseline(t *testing.T) {
	bars := synthetic.Trending("UP", 150, 1)
	res, err := newEngine(t).Run(Request{Symbol: "UP", Days: 30, InitialBalance: 10000}, bars)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	w := bars[len(bars)-30:]
	if len(res.Trades) != 2 {
		t.Fatalf("expected one round trip, got %+v", res.Trades)
	}
	if buy := res.Trades[0]; buy.Action != models.ActionBuy || !buy.Date.Equal(w[0].Date) {
		t.Fatalf("expected BUY on %v, got %+v", w[0].Date, buy)
	}
	if last := res.Trades[1]; last.Action != models.ActionFinalSell || !last.Date.Equal(w[len(w)-1].Date) {
		t.Fatalf("expected FINAL_SELL on the last day, got %+v", last)
	}
	if math.Abs(res.FinalBalance-res.BuyAndHold.FinalBalance) > 1e-9 {
		t.Fatalf("final %v != buy and hold %v", res.FinalBalance, res.BuyAndHold.FinalBalance)
	}
	for _, p := range res.DailyBalance[:len(res.DailyBalance)-1] {
		if p.Shares == 0 {
			t.Fatalf("position exited early on %v", p.Date)
		}
	}
	checkSinglePosition(t, res.DailyBalance)
}

func TestEngineRejectsBadInput(t *testing.T) {
	e := newEngine(t)
	bars := synthetic.RandomWalk("AAPL", 20, 1)
	if _, err := e.Run(Request{Symbol: "AAPL", Days: 30, InitialBalance: 1}, bars); !models.IsKind(err, models.KindDataUnavailable) {
		t.Fatalf("window longer than history should be data_unavailable, got %v", err)
	}
	if _, err := e.Run(Request{Symbol: "AAPL", Days: 0, InitialBalance: 1}, bars); !models.IsKind(err, models.KindDataUnavailable) {
		t.Fatalf("zero window should be data_unavailable, got %v", err)
	}
	bars = synthetic.RandomWalk("AAPL", 200, 1)
	bars[190].Close = 0
	if _, err := e.Run(Request{Symbol: "AAPL", Days: 30, InitialBalance: 1}, bars); !models.IsKind(err, models.KindDataUnavailable) {
		t.Fatalf("zero close should be data_unavailable, got %v", err)
	}
}
