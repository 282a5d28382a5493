package features

import (
	"math"

	"WalkSim/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// Trailing window lengths used by the feature set.
const (
	VolatilityWindow = 5
	VolumeWindow     = 5
	ShortWindow      = 5
	MediumWindow     = 20
	LongWindow       = 50
)

// Compute derives one FeatureVector per bar. A feature whose trailing window
// is incomplete is NaN; such rows are excluded downstream, never imputed.
func Compute(bars []models.Bar) []models.FeatureVector {
	n := len(bars)
	if n == 0 {
		return nil
	}
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	priceChange := PctChange(closes)
	volatility := RollingStd(priceChange, VolatilityWindow)
	ma5 := SMA(closes, ShortWindow)
	ma20 := SMA(closes, MediumWindow)
	ma50 := SMA(closes, LongWindow)
	volumeChange := PctChange(volumes)
	avgVolume := SMA(volumes, VolumeWindow)

	out := make([]models.FeatureVector, n)
	for i, b := range bars {
		out[i] = models.FeatureVector{
			Date:  b.Date,
			Close: b.Close,
			// order matches models.FeatureNames
			Values: []float64{
				priceChange[i],
				volatility[i],
				ma5[i],
				ma20[i],
				ma50[i],
				relative(closes[i], ma5[i]),
				relative(closes[i], ma20[i]),
				relative(closes[i], ma50[i]),
				volumeChange[i],
				avgVolume[i],
				relative(volumes[i], avgVolume[i]),
				dayRange(b),
			},
		}
	}
	return out
}

// PctChange returns (x[t]-x[t-1])/x[t-1], NaN at t=0 or when x[t-1] is zero.
func PctChange(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i == 0 || x[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (x[i] - x[i-1]) / x[i-1]
	}
	return out
}

// SMA over the trailing p points including the current one; NaN for warmup
// and for any window containing NaN.
func SMA(x []float64, p int) []float64 {
	return rolling(x, p, func(w []float64) float64 { return stat.Mean(w, nil) })
}

// RollingStd is the sample standard deviation (n-1) over the trailing p points.
func RollingStd(x []float64, p int) []float64 {
	return rolling(x, p, func(w []float64) float64 { return stat.StdDev(w, nil) })
}

func rolling(x []float64, p int, fn func([]float64) float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if p <= 0 || i < p-1 {
			out[i] = math.NaN()
			continue
		}
		w := x[i-p+1 : i+1]
		if hasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		out[i] = fn(w)
	}
	return out
}

func hasNaN(w []float64) bool {
	for _, v := range w {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func relative(x, base float64) float64 {
	if math.IsNaN(base) || base == 0 {
		return math.NaN()
	}
	return x/base - 1
}

func dayRange(b models.Bar) float64 {
	if b.Open == 0 {
		return math.NaN()
	}
	return (b.High - b.Low) / b.Open
}
