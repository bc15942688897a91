package model

import (
	"fmt"
	"math"
)

// socBoundEpsilon is the tolerance used when deciding whether a cell sits at
// an SOC extreme. Clamping produces exact bounds, but accumulated float error
// from long runs must not miss or duplicate cycle counts.
const socBoundEpsilon = 1e-9

// Pack is a series-connected group of identical cells. It owns its cells
// exclusively; the only mutating entry point is SimulateStep.
type Pack struct {
	cells  []*Cell
	cycles int
	// saturated remembers whether the pack sat at an SOC extreme after the
	// previous step, so a cycle is counted only on the crossing into
	// saturation and not on every step spent there.
	saturated bool
}

// NewPack creates a pack of numCells identical cells with default physical
// parameters, each starting at SOC 100, SOH 100 and ambient temperature.
func NewPack(numCells int, capacityAh, nominalVoltage float64) (*Pack, error) {
	return NewPackWithParams(numCells, DefaultCellParams(capacityAh, nominalVoltage))
}

// NewPackWithParams creates a pack whose cells share the given parameters.
func NewPackWithParams(numCells int, params CellParams) (*Pack, error) {
	if numCells <= 0 {
		return nil, fmt.Errorf("pack needs at least one cell, got %d", numCells)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("cell params: %w", err)
	}
	cells := make([]*Cell, numCells)
	for i := range cells {
		c, err := NewCell(params)
		if err != nil {
			return nil, err
		}
		cells[i] = c
	}
	p := &Pack{cells: cells}
	p.saturated = p.allAtBound()
	return p, nil
}

// SimulateStep applies one tick of the current profile to every cell. A
// positive current discharges, a negative current charges with its magnitude,
// and zero lets the cells rest untouched. After the per-cell pass the pack
// checks for a crossing into full saturation (every cell at SOC 0 or every
// cell at SOC 100) and, on a crossing, counts a cycle and degrades every
// cell's health with the new cumulative count.
func (p *Pack) SimulateStep(current, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("step duration must be positive, got %g", dt)
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return fmt.Errorf("current must be finite, got %g", current)
	}

	switch {
	case current > 0:
		for _, c := range p.cells {
			c.Discharge(current, dt)
		}
	case current < 0:
		for _, c := range p.cells {
			c.Charge(-current, dt)
		}
	}

	sat := p.allAtBound()
	if sat && !p.saturated {
		p.cycles++
		for _, c := range p.cells {
			c.DegradeHealth(p.cycles)
		}
	}
	p.saturated = sat
	return nil
}

// allAtBound reports whether every cell sits at SOC 0 or every cell sits at
// SOC 100. A single outlier cell keeps the pack unsaturated.
func (p *Pack) allAtBound() bool {
	full, empty := true, true
	for _, c := range p.cells {
		if math.Abs(c.soc-100) > socBoundEpsilon {
			full = false
		}
		if math.Abs(c.soc) > socBoundEpsilon {
			empty = false
		}
		if !full && !empty {
			return false
		}
	}
	return full || empty
}

// PackVoltage returns the sum of all cell voltages (series stack).
func (p *Pack) PackVoltage() float64 {
	var sum float64
	for _, c := range p.cells {
		sum += c.voltage
	}
	return sum
}

// AverageSOC returns the arithmetic mean SOC across cells, in percent.
func (p *Pack) AverageSOC() float64 {
	var sum float64
	for _, c := range p.cells {
		sum += c.soc
	}
	return sum / float64(len(p.cells))
}

// AverageTemp returns the arithmetic mean cell temperature in °C.
func (p *Pack) AverageTemp() float64 {
	var sum float64
	for _, c := range p.cells {
		sum += c.temp
	}
	return sum / float64(len(p.cells))
}

// AverageSOH returns the arithmetic mean SOH across cells, in percent.
func (p *Pack) AverageSOH() float64 {
	var sum float64
	for _, c := range p.cells {
		sum += c.soh
	}
	return sum / float64(len(p.cells))
}

// Cycles returns the number of completed full charge/discharge cycles.
func (p *Pack) Cycles() int { return p.cycles }

// NumCells returns the number of cells in the pack.
func (p *Pack) NumCells() int { return len(p.cells) }
