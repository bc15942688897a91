package metrics

import "time"

// PackStateEvent is one per-step snapshot of the pack, to be recorded for
// observability purposes.
type PackStateEvent struct {
	RunID       string
	Step        int
	SimTime     time.Duration // elapsed simulated time at the end of the step
	PackVoltage float64
	AverageSOC  float64
	AverageSOH  float64
	AverageTemp float64
	Cycles      int
	Timestamp   time.Time // wall-clock time the sample was produced
}

// CycleEvent marks the completion of a full charge/discharge cycle.
type CycleEvent struct {
	RunID     string
	SimTime   time.Duration
	Cycles    int
	Timestamp time.Time
}

// MetricsSink records pack snapshots. Sinks must tolerate being called once
// per simulation step.
type MetricsSink interface {
	RecordPackState(ev PackStateEvent) error
}

// CycleRecorder is implemented by sinks interested in cycle completions.
type CycleRecorder interface {
	RecordCycle(ev CycleEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPackState(PackStateEvent) error { return nil }
