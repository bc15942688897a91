package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/bmsim/core/logger"
	"github.com/kilianp07/bmsim/core/metrics"
	"github.com/kilianp07/bmsim/core/model"
)

// Runner drives a pack through a current profile in fixed time steps,
// collecting one sample per step and forwarding it to a metrics sink.
type Runner struct {
	pack    *model.Pack
	profile Profile
	dt      time.Duration
	log     logger.Logger
	sink    metrics.MetricsSink
	runID   string
}

// NewRunner validates the inputs and prepares a run. A nil logger or sink is
// replaced with a no-op implementation.
func NewRunner(pack *model.Pack, profile Profile, dt time.Duration, log logger.Logger, sink metrics.MetricsSink) (*Runner, error) {
	if pack == nil {
		return nil, fmt.Errorf("pack must not be nil")
	}
	if dt <= 0 {
		return nil, fmt.Errorf("step duration must be positive, got %s", dt)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Runner{
		pack:    pack,
		profile: profile,
		dt:      dt,
		log:     log,
		sink:    sink,
		runID:   uuid.NewString(),
	}, nil
}

// RunID returns the identifier attached to every event of this run.
func (r *Runner) RunID() string { return r.runID }

// Run executes the whole profile and returns the collected time series. The
// run stops early with the context error if ctx is cancelled between steps.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	steps := int(r.profile.TotalDuration() / r.dt)
	r.log.Infof("run %s: %d cells, %d steps of %s", r.runID, r.pack.NumCells(), steps, r.dt)

	samples := make([]Sample, 0, steps)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := time.Duration(i) * r.dt
		current := r.profile.CurrentAt(t)
		prevCycles := r.pack.Cycles()
		if err := r.pack.SimulateStep(current, r.dt.Seconds()); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		simTime := t + r.dt
		s := Sample{
			Step:        i,
			Time:        simTime,
			PackVoltage: r.pack.PackVoltage(),
			AverageSOC:  r.pack.AverageSOC(),
			AverageSOH:  r.pack.AverageSOH(),
			AverageTemp: r.pack.AverageTemp(),
			Cycles:      r.pack.Cycles(),
		}
		samples = append(samples, s)

		ev := metrics.PackStateEvent{
			RunID:       r.runID,
			Step:        i,
			SimTime:     simTime,
			PackVoltage: s.PackVoltage,
			AverageSOC:  s.AverageSOC,
			AverageSOH:  s.AverageSOH,
			AverageTemp: s.AverageTemp,
			Cycles:      s.Cycles,
			Timestamp:   time.Now(),
		}
		if err := r.sink.RecordPackState(ev); err != nil {
			r.log.Warnf("metrics sink: %v", err)
		}

		if s.Cycles > prevCycles {
			r.log.Infof("run %s: full cycle %d completed at t=%s", r.runID, s.Cycles, simTime)
			if rec, ok := r.sink.(metrics.CycleRecorder); ok {
				if err := rec.RecordCycle(metrics.CycleEvent{
					RunID:     r.runID,
					SimTime:   simTime,
					Cycles:    s.Cycles,
					Timestamp: time.Now(),
				}); err != nil {
					r.log.Warnf("cycle recorder: %v", err)
				}
			}
		}
	}

	r.log.Debugw("run finished", map[string]any{
		"run_id": r.runID,
		"steps":  steps,
		"cycles": r.pack.Cycles(),
	})
	return &Result{RunID: r.runID, Samples: samples, Cycles: r.pack.Cycles()}, nil
}
