package models

import (
	"sort"
	"strings"
	"time"
)

// Bar represents one trading day of OHLCV data for a symbol.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TradingDay truncates t to midnight UTC of its calendar day.
func TradingDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeBars returns bars sorted ascending by day with one bar per day.
// When a day repeats, the last occurrence wins.
func NormalizeBars(symbol string, bars []Bar) []Bar {
	if len(bars) == 0 {
		return nil
	}
	symbol = strings.ToUpper(symbol)
	byDay := make(map[time.Time]Bar, len(bars))
	for _, b := range bars {
		b.Date = TradingDay(b.Date)
		if symbol != "" {
			b.Symbol = symbol
		}
		byDay[b.Date] = b
	}
	out := make([]Bar, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Closes extracts closing prices.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
