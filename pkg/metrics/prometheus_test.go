package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderSimulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordSimulation("AAPL", 12.5, 8, 3)
	r.RecordSimulation("AAPL", -2, 1, 0)

	if got := testutil.ToFloat64(r.simulations.WithLabelValues("AAPL")); got != 2 {
		t.Fatalf("simulations: got %v", got)
	}
	if got := testutil.ToFloat64(r.roi.WithLabelValues("AAPL")); got != -2 {
		t.Fatalf("roi gauge should hold latest value, got %v", got)
	}
}

func TestRecorderErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordError("data_unavailable")
	r.RecordError("data_unavailable")
	r.RecordError("persist")

	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("data_unavailable")); got != 2 {
		t.Fatalf("errors: got %v", got)
	}
}
