package features

import (
	"math"
	"testing"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/synthetic"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{100, 110, 0, 5})
	if !math.IsNaN(got[0]) {
		t.Fatalf("first change should be NaN, got %v", got[0])
	}
	if !approx(got[1], 0.1) || !approx(got[2], -1) {
		t.Fatalf("unexpected changes %v", got)
	}
	if !math.IsNaN(got[3]) {
		t.Fatalf("change from zero should be NaN, got %v", got[3])
	}
}

func TestSMAAndStdWarmup(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	sma := SMA(x, 3)
	if !math.IsNaN(sma[0]) || !math.IsNaN(sma[1]) {
		t.Fatalf("warmup should be NaN: %v", sma)
	}
	if !approx(sma[2], 2) || !approx(sma[4], 4) {
		t.Fatalf("unexpected sma %v", sma)
	}
	std := RollingStd(x, 3)
	if !approx(std[4], 1) {
		t.Fatalf("sample std of 3,4,5 should be 1, got %v", std[4])
	}
	withNaN := SMA([]float64{math.NaN(), 1, 2, 3}, 3)
	if !math.IsNaN(withNaN[2]) || !approx(withNaN[3], 2) {
		t.Fatalf("window containing NaN should be NaN: %v", withNaN)
	}
}

func TestComputeFirstCompleteIndex(t *testing.T) {
	bars := synthetic.RandomWalk("AAPL", 60, 1)
	vs := Compute(bars)
	if len(vs) != len(bars) {
		t.Fatalf("expected %d vectors, got %d", len(bars), len(vs))
	}
	first := -1
	for i, v := range vs {
		if v.Complete() {
			first = i
			break
		}
	}
	if first != LongWindow-1 {
		t.Fatalf("first complete index = %d, want %d", first, LongWindow-1)
	}
	for i := first; i < len(vs); i++ {
		if !vs[i].Complete() {
			t.Fatalf("vector %d incomplete after warmup", i)
		}
	}
}

func TestComputeValues(t *testing.T) {
	bars := synthetic.Trending("MSFT", 60, 1)
	vs := Compute(bars)
	v := vs[59]
	// closes 100..159: ma5 of 155..159 is 157
	if !approx(v.Get(models.FeatureMA5), 157) {
		t.Fatalf("ma5 = %v", v.Get(models.FeatureMA5))
	}
	if !approx(v.Get(models.FeaturePriceChange), 1.0/158) {
		t.Fatalf("price_change = %v", v.Get(models.FeaturePriceChange))
	}
	if !approx(v.Get(models.FeaturePriceRelMA5), 159.0/157-1) {
		t.Fatalf("price_rel_ma5 = %v", v.Get(models.FeaturePriceRelMA5))
	}
	wantRange := (bars[59].High - bars[59].Low) / bars[59].Open
	if !approx(v.Get(models.FeatureDayRange), wantRange) {
		t.Fatalf("day_range = %v, want %v", v.Get(models.FeatureDayRange), wantRange)
	}
	if len(v.Map()) != len(models.FeatureNames) {
		t.Fatalf("map has %d entries", len(v.Map()))
	}
}

func TestComputeZeroOpenLeavesRangeUndefined(t *testing.T) {
	bars := synthetic.Trending("X", 55, 1)
	bars[54].Open = 0
	vs := Compute(bars)
	if vs[54].Complete() {
		t.Fatalf("zero open must make the vector incomplete")
	}
	if !vs[53].Complete() {
		t.Fatalf("previous vector should stay complete")
	}
}
