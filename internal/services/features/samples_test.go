package features

import (
	"testing"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/synthetic"
)

func TestBuildSamplesLabelsNextClose(t *testing.T) {
	bars := synthetic.RandomWalk("AAPL", 70, 3)
	vs := Compute(bars)
	samples := BuildSamples(vs)
	// complete vectors 49..69, the last one has no label
	if len(samples) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(samples))
	}
	for k, s := range samples {
		i := 49 + k
		want := 0
		if bars[i+1].Close > bars[i].Close {
			want = 1
		}
		if s.Label != want || !s.Date.Equal(bars[i].Date) {
			t.Fatalf("sample %d: label %d date %v, want %d %v", k, s.Label, s.Date, want, bars[i].Date)
		}
	}
}

func TestBuildSamplesFlatNextCloseIsDown(t *testing.T) {
	bars := synthetic.Trending("X", 52, 0)
	samples := BuildSamples(Compute(bars))
	for _, s := range samples {
		if s.Label != 0 {
			t.Fatalf("equal closes must label 0")
		}
	}
}

func TestBuildTrainingSetMinimum(t *testing.T) {
	vs := Compute(synthetic.RandomWalk("AAPL", 80, 5))
	samples, err := BuildTrainingSet("AAPL", vs, synthetic.Weekday(80))
	if err != nil {
		t.Fatalf("80 bars should give %d samples: %v", MinSamples, err)
	}
	if len(samples) != MinSamples {
		t.Fatalf("expected %d samples, got %d", MinSamples, len(samples))
	}

	_, err = BuildTrainingSet("AAPL", vs[:79], synthetic.Weekday(80))
	if !models.IsKind(err, models.KindInsufficientSamples) {
		t.Fatalf("expected insufficient_samples, got %v", err)
	}
}

func TestBuildTrainingSetRespectsCutoff(t *testing.T) {
	bars := synthetic.RandomWalk("AAPL", 120, 7)
	vs := Compute(bars)
	cutoff := bars[100].Date
	samples, err := BuildTrainingSet("AAPL", vs, cutoff)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, s := range samples {
		if !s.Date.Before(cutoff) {
			t.Fatalf("sample on %v not before cutoff %v", s.Date, cutoff)
		}
	}
	// the bar just before the cutoff has no label inside the slice
	if last := samples[len(samples)-1]; !last.Date.Equal(bars[98].Date) {
		t.Fatalf("last sample %v, want %v", last.Date, bars[98].Date)
	}
}

func TestLatest(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Fatalf("empty input has no latest")
	}
	vs := Compute(synthetic.RandomWalk("AAPL", 40, 1))
	if _, ok := Latest(vs); ok {
		t.Fatalf("40 bars cannot produce a complete latest vector")
	}
	vs = Compute(synthetic.RandomWalk("AAPL", 50, 1))
	if _, ok := Latest(vs); !ok {
		t.Fatalf("50 bars should produce a complete latest vector")
	}
}
