package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	simulations   *prometheus.CounterVec
	roi           *prometheus.GaugeVec
	baselineROI   *prometheus.GaugeVec
	trades        *prometheus.HistogramVec
	trainings     *prometheus.CounterVec
	accuracy      *prometheus.GaugeVec
	trainDuration *prometheus.HistogramVec
	predictions   *prometheus.CounterVec
	confidence    *prometheus.GaugeVec
	messagesSent  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		simulations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walksim_simulations_total",
				Help: "Completed walk-forward simulations",
			},
			[]string{"symbol"},
		),
		roi: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walksim_simulation_roi_percent",
				Help: "Strategy ROI of the latest simulation",
			},
			[]string{"symbol"},
		),
		baselineROI: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walksim_simulation_baseline_roi_percent",
				Help: "Buy-and-hold ROI of the latest simulation",
			},
			[]string{"symbol"},
		),
		trades: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walksim_simulation_trades",
				Help:    "Trades per simulation",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"symbol"},
		),
		trainings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walksim_model_trainings_total",
				Help: "Completed model trainings",
			},
			[]string{"symbol"},
		),
		accuracy: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walksim_model_accuracy",
				Help: "Held-out accuracy of the latest model",
			},
			[]string{"symbol"},
		),
		trainDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walksim_model_training_seconds",
				Help:    "Model training duration",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"symbol"},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walksim_predictions_total",
				Help: "Live predictions served",
			},
			[]string{"symbol"},
		),
		confidence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walksim_prediction_confidence",
				Help: "Confidence of the latest live prediction",
			},
			[]string{"symbol"},
		),
		messagesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walksim_results_persisted_total",
				Help: "Results handed to a persistence backend",
			},
			[]string{"backend", "kind"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walksim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walksim_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSimulation(symbol string, roi, baselineROI float64, trades int) {
	r.simulations.WithLabelValues(symbol).Inc()
	r.roi.WithLabelValues(symbol).Set(roi)
	r.baselineROI.WithLabelValues(symbol).Set(baselineROI)
	r.trades.WithLabelValues(symbol).Observe(float64(trades))
}

func (r *Recorder) RecordTraining(symbol string, accuracy float64, seconds float64) {
	r.trainings.WithLabelValues(symbol).Inc()
	r.accuracy.WithLabelValues(symbol).Set(accuracy)
	r.trainDuration.WithLabelValues(symbol).Observe(seconds)
}

func (r *Recorder) RecordPrediction(symbol string, confidence float64) {
	r.predictions.WithLabelValues(symbol).Inc()
	r.confidence.WithLabelValues(symbol).Set(confidence)
}

// RecordMessageSent records a result handed to a backend.
func (r *Recorder) RecordMessageSent(backend, kind string) {
	r.messagesSent.WithLabelValues(backend, kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordSimulation(string, float64, float64, int) {}
func (Noop) RecordTraining(string, float64, float64)        {}
func (Noop) RecordPrediction(string, float64)               {}
func (Noop) RecordMessageSent(string, string)               {}
func (Noop) RecordError(string)                             {}
func (Noop) RecordLatency(string, float64)                  {}
