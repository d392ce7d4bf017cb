package metrics

import coremetrics "github.com/pugetops/ferrytrack/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTick forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordTick(ev coremetrics.TickEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTick(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTripCompleted forwards completed-trip events.
func (m *MultiSink) RecordTripCompleted(ev coremetrics.TripCompletedEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTripCompleted(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrainingRun forwards training-run summaries.
func (m *MultiSink) RecordTrainingRun(ev coremetrics.TrainingRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTrainingRun(ev); err != nil {
			return err
		}
	}
	return nil
}
