// Package synthetic builds deterministic daily bar series for tests and offline backtests.
package synthetic

import (
	"math"
	"math/rand"
	"time"

	"WalkSim/internal/domain/models"
)

// Start is the first session date used by generated series.
var Start = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

// Weekday returns the i-th weekday on or after Start.
func Weekday(i int) time.Time {
	d := Start
	for n := 0; n < i; {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			n++
		}
	}
	return d
}

// RandomWalk returns n ascending weekday bars following a seeded
// multiplicative random walk around 100.
func RandomWalk(symbol string, n int, seed int64) []models.Bar {
	rng := rand.New(rand.NewSource(seed))
	out := make([]models.Bar, n)
	price := 100.0
	d := Start
	for i := 0; i < n; i++ {
		if i > 0 {
			d = d.AddDate(0, 0, 1)
			for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				d = d.AddDate(0, 0, 1)
			}
		}
		open := price
		price = math.Max(1, price*(1+rng.NormFloat64()*0.015))
		hi := math.Max(open, price) * (1 + rng.Float64()*0.01)
		lo := math.Min(open, price) * (1 - rng.Float64()*0.01)
		out[i] = models.Bar{
			Symbol: symbol,
			Date:   d,
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  price,
			Volume: 1e6 * (1 + rng.Float64()),
		}
	}
	return out
}

// Trending returns n bars whose close rises by step every day.
func Trending(symbol string, n int, step float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		c := 100 + step*float64(i)
		out[i] = models.Bar{
			Symbol: symbol,
			Date:   Weekday(i),
			Open:   c - step/2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1e6 + float64(i%7)*1e4,
		}
	}
	return out
}
