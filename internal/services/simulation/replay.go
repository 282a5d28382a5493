package simulation

import (
	"fmt"

	"WalkSim/internal/domain/models"
)

// Predictor is the read-only model capability used by the replay.
type Predictor interface {
	Predict(v models.FeatureVector) (class int, confidence float64, err error)
}

// State is the exposure of the single position.
type State int

const (
	Flat State = iota
	Long
)

func (s State) String() string {
	if s == Long {
		return "LONG"
	}
	return "FLAT"
}

// Position is fully in cash (Flat) or fully in shares (Long).
type Position struct {
	State  State
	Cash   float64
	Shares float64
}

func (p *Position) buy(b models.Bar, confidence float64) models.Trade {
	shares := p.Cash / b.Close
	t := models.Trade{
		Date:       b.Date,
		Action:     models.ActionBuy,
		Price:      b.Close,
		Shares:     shares,
		Value:      p.Cash,
		Confidence: confidence,
	}
	p.Shares, p.Cash, p.State = shares, 0, Long
	return t
}

func (p *Position) sell(b models.Bar, action models.TradeAction, confidence float64) models.Trade {
	value := p.Shares * b.Close
	t := models.Trade{
		Date:       b.Date,
		Action:     action,
		Price:      b.Close,
		Shares:     p.Shares,
		Value:      value,
		Confidence: confidence,
	}
	p.Cash, p.Shares, p.State = value, 0, Flat
	return t
}

// Value is the marked-to-close total of the position.
func (p *Position) Value(price float64) float64 {
	return p.Cash + p.Shares*price
}

func (p *Position) point(b models.Bar) models.EquityPoint {
	return models.EquityPoint{
		Date:    b.Date,
		Balance: p.Value(b.Close),
		Cash:    p.Cash,
		Shares:  p.Shares,
		Price:   b.Close,
	}
}

// Ledger is the output of a replay.
type Ledger struct {
	Trades []models.Trade
	Points []models.EquityPoint
	Final  float64
}

// Replay walks the window day by day. The last day gets no signal; an open
// position is liquidated there with a FINAL_SELL at confidence 1. Days whose
// feature vector is incomplete keep the current exposure.
func Replay(window []models.Bar, vectors []models.FeatureVector, model Predictor, initial float64) (*Ledger, error) {
	if len(window) == 0 {
		return nil, fmt.Errorf("empty window")
	}
	if len(vectors) != len(window) {
		return nil, fmt.Errorf("vectors %d != bars %d", len(vectors), len(window))
	}

	pos := &Position{State: Flat, Cash: initial}
	out := &Ledger{
		Trades: make([]models.Trade, 0, 8),
		Points: make([]models.EquityPoint, 0, len(window)),
	}
	last := len(window) - 1
	for t := 0; t < last; t++ {
		b := window[t]
		if v := vectors[t]; v.Complete() {
			class, confidence, err := model.Predict(v)
			if err != nil {
				return nil, fmt.Errorf("predict %s: %w", b.Date.Format("2006-01-02"), err)
			}
			switch {
			case pos.State == Flat && class == 1:
				out.Trades = append(out.Trades, pos.buy(b, confidence))
			case pos.State == Long && class == 0:
				out.Trades = append(out.Trades, pos.sell(b, models.ActionSell, confidence))
			}
		}
		out.Points = append(out.Points, pos.point(b))
	}

	b := window[last]
	if pos.State == Long {
		out.Trades = append(out.Trades, pos.sell(b, models.ActionFinalSell, 1.0))
	}
	out.Points = append(out.Points, pos.point(b))
	out.Final = pos.Value(b.Close)
	return out, nil
}
