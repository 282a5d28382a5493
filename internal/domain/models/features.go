package models

import (
	"math"
	"time"
)

// Canonical feature names, in model input order.
const (
	FeaturePriceChange  = "price_change"
	FeatureVolatility   = "volatility"
	FeatureMA5          = "ma5"
	FeatureMA20         = "ma20"
	FeatureMA50         = "ma50"
	FeaturePriceRelMA5  = "price_rel_ma5"
	FeaturePriceRelMA20 = "price_rel_ma20"
	FeaturePriceRelMA50 = "price_rel_ma50"
	FeatureVolumeChange = "volume_change"
	FeatureAvgVolume5d  = "avg_volume_5d"
	FeatureVolumeRelAvg = "volume_rel_avg"
	FeatureDayRange     = "day_range"
)

// FeatureNames is the ordered canonical feature list.
var FeatureNames = []string{
	FeaturePriceChange,
	FeatureVolatility,
	FeatureMA5,
	FeatureMA20,
	FeatureMA50,
	FeaturePriceRelMA5,
	FeaturePriceRelMA20,
	FeaturePriceRelMA50,
	FeatureVolumeChange,
	FeatureAvgVolume5d,
	FeatureVolumeRelAvg,
	FeatureDayRange,
}

// FeatureVector holds the features derived for one bar. Values is aligned
// with FeatureNames; undefined entries are NaN.
type FeatureVector struct {
	Date   time.Time
	Close  float64
	Values []float64
}

// Complete reports whether every canonical feature is present and finite.
func (v FeatureVector) Complete() bool {
	if len(v.Values) != len(FeatureNames) {
		return false
	}
	for _, x := range v.Values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Get returns the value of the named feature, or NaN when unknown.
func (v FeatureVector) Get(name string) float64 {
	for i, n := range FeatureNames {
		if n == name && i < len(v.Values) {
			return v.Values[i]
		}
	}
	return math.NaN()
}

// Map returns the vector as a name to value mapping.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(FeatureNames))
	for i, n := range FeatureNames {
		if i < len(v.Values) {
			out[n] = v.Values[i]
		}
	}
	return out
}

// LabeledSample is a complete feature vector with its next-bar direction.
// Label is 1 when the next close is strictly higher, otherwise 0.
type LabeledSample struct {
	FeatureVector
	Label int
}
