package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bmsim/core/metrics"
	"github.com/kilianp07/bmsim/core/model"
)

// captureSink records every event it receives.
type captureSink struct {
	states []metrics.PackStateEvent
	cycles []metrics.CycleEvent
}

func (s *captureSink) RecordPackState(ev metrics.PackStateEvent) error {
	s.states = append(s.states, ev)
	return nil
}

func (s *captureSink) RecordCycle(ev metrics.CycleEvent) error {
	s.cycles = append(s.cycles, ev)
	return nil
}

func newRunnerPack(t *testing.T) *model.Pack {
	t.Helper()
	p, err := model.NewPack(4, 2.5, 3.7)
	require.NoError(t, err)
	return p
}

func TestNewRunnerValidation(t *testing.T) {
	pack := newRunnerPack(t)
	prof := Profile{{CurrentA: 1, Duration: time.Minute}}

	_, err := NewRunner(nil, prof, 10*time.Second, nil, nil)
	assert.Error(t, err)
	_, err = NewRunner(pack, prof, 0, nil, nil)
	assert.Error(t, err)
	_, err = NewRunner(pack, Profile{}, 10*time.Second, nil, nil)
	assert.Error(t, err)

	r, err := NewRunner(pack, prof, 10*time.Second, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, r.RunID())
}

// The reference scenario: 4 cells of 2.5 Ah / 3.7 V, one hour of 1 A
// discharge followed by one hour of 1 A charge, dt = 10 s.
func TestRunnerReferenceScenario(t *testing.T) {
	pack := newRunnerPack(t)
	prof := Profile{
		{CurrentA: 1.0, Duration: time.Hour},
		{CurrentA: -1.0, Duration: time.Hour},
	}
	sink := &captureSink{}
	r, err := NewRunner(pack, prof, 10*time.Second, nil, sink)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Samples, 720)
	assert.Len(t, sink.states, 720)

	// One hour at 1 A drains 1 Ah of 2.5 Ah: SOC 60% at the turnaround.
	mid := res.Samples[359]
	assert.InDelta(t, 60.0, mid.AverageSOC, 1e-6)

	// The hour of charging restores the same amount, and reaching full
	// charge again completes one cycle at the very last step.
	last := res.Samples[719]
	assert.InDelta(t, 100.0, last.AverageSOC, 1e-6)
	assert.Equal(t, 1, res.Cycles)
	require.Len(t, sink.cycles, 1)
	assert.Equal(t, 2*time.Hour, sink.cycles[0].SimTime)

	// Samples carry monotonically increasing sim time and the run id.
	for i := 1; i < len(res.Samples); i++ {
		assert.Greater(t, res.Samples[i].Time, res.Samples[i-1].Time)
	}
	assert.Equal(t, r.RunID(), sink.states[0].RunID)
}

func TestRunnerRecordsCycleEvents(t *testing.T) {
	pack := newRunnerPack(t)
	// 2.5 Ah at 5 A empties in 30 minutes; give it an hour.
	prof := Profile{{CurrentA: 5.0, Duration: time.Hour}}
	sink := &captureSink{}
	r, err := NewRunner(pack, prof, time.Minute, nil, sink)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Cycles)
	require.Len(t, sink.cycles, 1)
	assert.Equal(t, 1, sink.cycles[0].Cycles)
	assert.Equal(t, 30*time.Minute, sink.cycles[0].SimTime)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	pack := newRunnerPack(t)
	prof := Profile{{CurrentA: 1.0, Duration: time.Hour}}
	r, err := NewRunner(pack, prof, time.Second, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
