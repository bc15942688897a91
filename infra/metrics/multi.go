package metrics

import coremetrics "github.com/kilianp07/bmsim/core/metrics"

// MultiSink fans pack snapshots out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPackState forwards the snapshot to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordPackState(ev coremetrics.PackStateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPackState(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCycle forwards cycle completions to sinks that care about them.
func (m *MultiSink) RecordCycle(ev coremetrics.CycleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.CycleRecorder); ok {
			if err := rec.RecordCycle(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
