package simulation

import (
	"errors"
	"math"
	"testing"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/services/features"
	"WalkSim/internal/synthetic"
)

// scripted returns classes in order and fails when asked past the script.
type scripted struct {
	classes []int
	calls   int
	err     error
}

func (s *scripted) Predict(models.FeatureVector) (int, float64, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	c := s.classes[s.calls%len(s.classes)]
	s.calls++
	return c, 0.7, nil
}

func window(n int) ([]models.Bar, []models.FeatureVector) {
	bars := synthetic.Trending("AAPL", 60+n, 1)
	vs := features.Compute(bars)
	return bars[60:], vs[60:]
}

func TestReplayNeverBuysKeepsCash(t *testing.T) {
	w, vs := window(10)
	l, err := Replay(w, vs, &scripted{classes: []int{0}}, 10000)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(l.Trades) != 0 || l.Final != 10000 {
		t.Fatalf("expected no trades and untouched cash, got %d trades final %v", len(l.Trades), l.Final)
	}
	if len(l.Points) != len(w) {
		t.Fatalf("expected one equity point per day, got %d", len(l.Points))
	}
}

func TestReplayBuySellAndFinalSell(t *testing.T) {
	w, vs := window(6)
	m := &scripted{classes: []int{1, 0, 1, 1, 1}}
	l, err := Replay(w, vs, m, 1000)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if m.calls != len(w)-1 {
		t.Fatalf("last day must not be predicted: %d calls", m.calls)
	}
	want := []models.TradeAction{models.ActionBuy, models.ActionSell, models.ActionBuy, models.ActionFinalSell}
	if len(l.Trades) != len(want) {
		t.Fatalf("trades %+v", l.Trades)
	}
	for i, a := range want {
		if l.Trades[i].Action != a {
			t.Fatalf("trade %d = %s, want %s", i, l.Trades[i].Action, a)
		}
	}
	final := l.Trades[3]
	if final.Confidence != 1 || !final.Date.Equal(w[len(w)-1].Date) {
		t.Fatalf("final sell %+v", final)
	}
	// bought at w[0], sold at w[1], bought at w[2], liquidated at w[5]
	expect := 1000 * w[1].Close / w[0].Close * w[5].Close / w[2].Close
	if math.Abs(l.Final-expect) > 1e-6 {
		t.Fatalf("final %v, want %v", l.Final, expect)
	}
	last := l.Points[len(l.Points)-1]
	if last.Shares != 0 || math.Abs(last.Balance-l.Final) > 1e-9 {
		t.Fatalf("last point should be all cash: %+v", last)
	}
}

func TestReplayEquityPointsMarkToClose(t *testing.T) {
	w, vs := window(4)
	l, err := Replay(w, vs, &scripted{classes: []int{1}}, 1000)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	shares := 1000 / w[0].Close
	for i := 0; i < len(w)-1; i++ {
		p := l.Points[i]
		if math.Abs(p.Balance-shares*w[i].Close) > 1e-9 || p.Cash != 0 {
			t.Fatalf("point %d = %+v", i, p)
		}
	}
}

func TestReplayIncompleteVectorKeepsExposure(t *testing.T) {
	w, vs := window(5)
	vs[1].Values[0] = math.NaN()
	m := &scripted{classes: []int{1, 0, 0, 0}}
	l, err := Replay(w, vs, m, 1000)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if m.calls != 3 {
		t.Fatalf("incomplete day must be skipped: %d calls", m.calls)
	}
	if l.Trades[1].Action != models.ActionSell || !l.Trades[1].Date.Equal(w[2].Date) {
		t.Fatalf("sell should happen on day 2: %+v", l.Trades)
	}
}

func TestReplayErrors(t *testing.T) {
	if _, err := Replay(nil, nil, &scripted{classes: []int{0}}, 1); err == nil {
		t.Fatalf("empty window should fail")
	}
	w, vs := window(3)
	if _, err := Replay(w, vs[:2], &scripted{classes: []int{0}}, 1); err == nil {
		t.Fatalf("misaligned vectors should fail")
	}
	boom := errors.New("boom")
	if _, err := Replay(w, vs, &scripted{err: boom}, 1); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped predictor error, got %v", err)
	}
}

func TestROIAndBuyAndHold(t *testing.T) {
	if got := ROI(1000, 1100); math.Abs(got-10) > 1e-9 {
		t.Fatalf("ROI = %v", got)
	}
	if got := ROI(0, 5); got != 0 {
		t.Fatalf("zero initial ROI = %v", got)
	}
	w, _ := window(5)
	bh := BuyAndHold(w, 1000)
	want := 1000 * w[4].Close / w[0].Close
	if math.Abs(bh.FinalBalance-want) > 1e-9 || math.Abs(bh.ROIPercentage-ROI(1000, want)) > 1e-9 {
		t.Fatalf("buy and hold %+v", bh)
	}
}
