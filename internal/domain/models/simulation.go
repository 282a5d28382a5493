package models

import "time"

// TradeAction is the kind of ledger entry.
type TradeAction string

const (
	ActionBuy       TradeAction = "BUY"
	ActionSell      TradeAction = "SELL"
	ActionFinalSell TradeAction = "FINAL_SELL"
)

// StrategyAIPrediction labels results produced by the classifier strategy.
const StrategyAIPrediction = "ai_prediction"

// Trade is an append-only ledger entry. Confidence of a FINAL_SELL is always 1
// and does not come from the model.
type Trade struct {
	Date       time.Time   `json:"date" parquet:"date,timestamp(millisecond)"`
	Action     TradeAction `json:"action" parquet:"action"`
	Price      float64     `json:"price" parquet:"price"`
	Shares     float64     `json:"shares" parquet:"shares"`
	Value      float64     `json:"value" parquet:"value"`
	Confidence float64     `json:"confidence" parquet:"confidence"`
}

// EquityPoint is the account state at the close of one simulated day.
// Balance is the total value (cash + shares*price).
type EquityPoint struct {
	Date    time.Time `json:"date" parquet:"date,timestamp(millisecond)"`
	Balance float64   `json:"balance" parquet:"balance"`
	Cash    float64   `json:"cash" parquet:"cash"`
	Shares  float64   `json:"shares" parquet:"shares"`
	Price   float64   `json:"price" parquet:"price"`
}

// BuyAndHold is the passive benchmark over the same window.
type BuyAndHold struct {
	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
	ROIPercentage  float64 `json:"roi_percentage"`
}

// ModelSummary describes the trained model behind a result or prediction.
type ModelSummary struct {
	Kind              string             `json:"kind"`
	Accuracy          float64            `json:"accuracy"`
	TrainRows         int                `json:"train_rows"`
	TestRows          int                `json:"test_rows"`
	Split             string             `json:"split"`
	TrainedThrough    time.Time          `json:"trained_through"`
	TrainedAt         time.Time          `json:"trained_at"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// SimulationResult is the immutable outcome of one walk-forward run.
type SimulationResult struct {
	ID             string        `json:"id"`
	Symbol         string        `json:"symbol"`
	Days           int           `json:"days"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	InitialBalance float64       `json:"initial_balance"`
	FinalBalance   float64       `json:"final_balance"`
	ROIPercentage  float64       `json:"roi_percentage"`
	Trades         []Trade       `json:"trades"`
	DailyBalance   []EquityPoint `json:"daily_balance"`
	BuyAndHold     BuyAndHold    `json:"buy_and_hold"`
	Model          ModelSummary  `json:"model"`
	Strategy       string        `json:"strategy"`
	CreatedAt      time.Time     `json:"created_at"`
}
