package sim

import (
	"fmt"
	"math"
	"time"
)

// Segment is one piecewise-constant span of a current profile. A positive
// current discharges the pack, a negative one charges it.
type Segment struct {
	CurrentA float64
	Duration time.Duration
}

// Profile is an ordered sequence of segments describing the current applied
// to the pack over the whole run.
type Profile []Segment

// Validate checks that the profile is usable: at least one segment, positive
// durations and finite currents.
func (p Profile) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("profile must contain at least one segment")
	}
	for i, s := range p {
		if s.Duration <= 0 {
			return fmt.Errorf("segment %d: duration must be positive, got %s", i, s.Duration)
		}
		if math.IsNaN(s.CurrentA) || math.IsInf(s.CurrentA, 0) {
			return fmt.Errorf("segment %d: current must be finite, got %g", i, s.CurrentA)
		}
	}
	return nil
}

// TotalDuration returns the sum of all segment durations.
func (p Profile) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range p {
		total += s.Duration
	}
	return total
}

// CurrentAt returns the current in effect at elapsed time t. Past the end of
// the profile the pack rests at zero current.
func (p Profile) CurrentAt(t time.Duration) float64 {
	if t < 0 {
		return 0
	}
	for _, s := range p {
		if t < s.Duration {
			return s.CurrentA
		}
		t -= s.Duration
	}
	return 0
}
