package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/bmsim/core/model"
	"github.com/kilianp07/bmsim/core/sim"
)

// SegmentConfig is one span of the current profile. Positive current
// discharges the pack, negative charges it.
type SegmentConfig struct {
	CurrentA        float64 `json:"current_a"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// SimulationConfig describes the pack and the current profile of a run.
// Zero-valued physical overrides fall back to the model defaults.
type SimulationConfig struct {
	NumCells       int     `json:"num_cells"`
	CellCapacityAh float64 `json:"cell_capacity_ah"`
	CellVoltage    float64 `json:"cell_voltage"`
	StepSeconds    float64 `json:"step_seconds"`

	Profile []SegmentConfig `json:"profile"`

	// Optional physical parameter overrides for all cells.
	InternalResistance float64 `json:"internal_resistance"`
	ThermalCapacity    float64 `json:"thermal_capacity"`
	AmbientTemp        float64 `json:"ambient_temp"`
	CoolingCoeff       float64 `json:"cooling_coeff"`
	DegradationRate    float64 `json:"degradation_rate"`
	SOHFloor           float64 `json:"soh_floor"`
}

// SetDefaults reproduces the reference bench: a 4s1p pack of 2.5 Ah / 3.7 V
// cells stepped every 10 s through one hour of 1 A discharge followed by one
// hour of 1 A charge.
func (c *SimulationConfig) SetDefaults() {
	if c.NumCells == 0 {
		c.NumCells = 4
	}
	if c.CellCapacityAh == 0 {
		c.CellCapacityAh = 2.5
	}
	if c.CellVoltage == 0 {
		c.CellVoltage = 3.7
	}
	if c.StepSeconds == 0 {
		c.StepSeconds = 10
	}
	if len(c.Profile) == 0 {
		c.Profile = []SegmentConfig{
			{CurrentA: 1.0, DurationSeconds: 3600},
			{CurrentA: -1.0, DurationSeconds: 3600},
		}
	}
}

// Validate checks the run parameters. Pack preconditions are checked again at
// construction; this catches configuration mistakes with file context.
func (c SimulationConfig) Validate() error {
	if c.NumCells <= 0 {
		return fmt.Errorf("num_cells must be positive, got %d", c.NumCells)
	}
	if c.CellCapacityAh <= 0 {
		return fmt.Errorf("cell_capacity_ah must be positive, got %g", c.CellCapacityAh)
	}
	if c.CellVoltage <= 0 {
		return fmt.Errorf("cell_voltage must be positive, got %g", c.CellVoltage)
	}
	if c.StepSeconds <= 0 {
		return fmt.Errorf("step_seconds must be positive, got %g", c.StepSeconds)
	}
	if err := c.SimProfile().Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	return nil
}

// CellParams maps the configuration to model parameters, falling back to the
// model defaults for unset overrides.
func (c SimulationConfig) CellParams() model.CellParams {
	p := model.DefaultCellParams(c.CellCapacityAh, c.CellVoltage)
	if c.InternalResistance != 0 {
		p.InternalResistance = c.InternalResistance
	}
	if c.ThermalCapacity != 0 {
		p.ThermalCapacity = c.ThermalCapacity
	}
	if c.AmbientTemp != 0 {
		p.AmbientTemp = c.AmbientTemp
	}
	if c.CoolingCoeff != 0 {
		p.CoolingCoeff = c.CoolingCoeff
	}
	if c.DegradationRate != 0 {
		p.DegradationRate = c.DegradationRate
	}
	if c.SOHFloor != 0 {
		p.SOHFloor = c.SOHFloor
	}
	return p
}

// SimProfile converts the configured segments to a sim.Profile.
func (c SimulationConfig) SimProfile() sim.Profile {
	prof := make(sim.Profile, len(c.Profile))
	for i, s := range c.Profile {
		prof[i] = sim.Segment{
			CurrentA: s.CurrentA,
			Duration: time.Duration(s.DurationSeconds * float64(time.Second)),
		}
	}
	return prof
}

// Step returns the step size as a duration.
func (c SimulationConfig) Step() time.Duration {
	return time.Duration(c.StepSeconds * float64(time.Second))
}
