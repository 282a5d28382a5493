package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-03-15")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if got := ParseTimeDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
	if got := ParseTimeDefault("garbage", def); !got.Equal(def) {
		t.Fatalf("expected default for garbage")
	}
}

func TestNextTradingDaySkipsWeekend(t *testing.T) {
	fri := time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)
	got := NextTradingDay(fri)
	want := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	tue := time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)
	if got := NextTradingDay(tue); got.Weekday() != time.Wednesday {
		t.Fatalf("expected wednesday, got %v", got.Weekday())
	}
}

func TestCalendarLookback(t *testing.T) {
	if CalendarLookback(0) != 0 {
		t.Fatalf("expected 0")
	}
	if got := CalendarLookback(100); got < 140 {
		t.Fatalf("lookback too small: %d", got)
	}
}

func TestSplitSymbols(t *testing.T) {
	got := SplitSymbols(" aapl,MSFT,,aapl , tsla")
	want := []string{"AAPL", "MSFT", "TSLA"}
	if len(got) != len(want) {
		t.Fatalf("unexpected %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected %v", got)
		}
	}
}
