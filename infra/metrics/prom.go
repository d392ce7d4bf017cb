// Package metrics provides the sink adapters behind core/metrics:
// Prometheus for scraping, InfluxDB for event history, plus multi and
// fallback composition.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/pugetops/ferrytrack/core/metrics"
)

// PromSink records tracker and pipeline activity as Prometheus metrics.
type PromSink struct {
	vessels   *prometheus.CounterVec
	completed prometheus.Counter
	tickDur   prometheus.Histogram
	trained   prometheus.Gauge
	nullM     prometheus.Gauge
	trainErrs prometheus.Counter
}

// NewPromSink registers the metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		vessels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ferrytrack_tick_vessels_total",
			Help: "Vessels handled per tick, by result",
		}, []string{"result"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ferrytrack_trips_completed_total",
			Help: "Trips finalized at a boundary",
		}),
		tickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ferrytrack_tick_duration_seconds",
			Help:    "Duration of one orchestrator tick",
			Buckets: prometheus.DefBuckets,
		}),
		trained: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ferrytrack_models_trained",
			Help: "Models trained by the last pipeline run",
		}),
		nullM: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ferrytrack_models_null",
			Help: "Null-model placeholders written by the last run",
		}),
		trainErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ferrytrack_training_errors_total",
			Help: "Recoverable errors across training runs",
		}),
	}

	for _, c := range []prometheus.Collector{s.vessels, s.completed, s.tickDur, s.trained, s.nullM, s.trainErrs} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordTick updates the per-tick counters.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	s.vessels.WithLabelValues("ok").Add(float64(ev.Processed))
	s.vessels.WithLabelValues("failed").Add(float64(ev.Failed))
	s.tickDur.Observe(ev.Duration.Seconds())
	return nil
}

// RecordTripCompleted increments the completion counter.
func (s *PromSink) RecordTripCompleted(coremetrics.TripCompletedEvent) error {
	s.completed.Inc()
	return nil
}

// RecordTrainingRun updates the training gauges.
func (s *PromSink) RecordTrainingRun(ev coremetrics.TrainingRunEvent) error {
	s.trained.Set(float64(ev.Trained))
	s.nullM.Set(float64(ev.NullModels))
	s.trainErrs.Add(float64(ev.Failed))
	return nil
}
