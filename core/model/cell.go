package model

import (
	"fmt"
	"math"
)

// Default physical parameters applied by DefaultCellParams. They describe a
// small cylindrical lithium-ion cell and can be overridden per pack.
const (
	DefaultInternalResistance = 0.05  // ohms
	DefaultThermalCapacity    = 500.0 // J/°C
	DefaultAmbientTemp        = 25.0  // °C
	DefaultCoolingCoeff       = 0.01  // fraction of the ambient delta removed per update
	DefaultDegradationRate    = 0.01  // SOH percent lost per cumulative cycle
	DefaultSOHFloor           = 60.0  // percent
)

// CellParams holds the fixed physical characteristics shared by every cell in
// a pack. None of the fields are mutated after construction.
type CellParams struct {
	CapacityAh         float64 // total charge capacity in amp-hours
	NominalVoltage     float64 // rated voltage in volts
	InternalResistance float64 // ohmic resistance used for I²R heating
	ThermalCapacity    float64 // thermal mass in J/°C
	AmbientTemp        float64 // surrounding temperature in °C
	CoolingCoeff       float64 // relaxation applied toward ambient per update
	DegradationRate    float64 // SOH percent lost per cumulative cycle
	SOHFloor           float64 // lowest SOH a cell can degrade to, percent
}

// DefaultCellParams returns parameters for a cell of the given capacity and
// nominal voltage with all other characteristics set to package defaults.
func DefaultCellParams(capacityAh, nominalVoltage float64) CellParams {
	return CellParams{
		CapacityAh:         capacityAh,
		NominalVoltage:     nominalVoltage,
		InternalResistance: DefaultInternalResistance,
		ThermalCapacity:    DefaultThermalCapacity,
		AmbientTemp:        DefaultAmbientTemp,
		CoolingCoeff:       DefaultCoolingCoeff,
		DegradationRate:    DefaultDegradationRate,
		SOHFloor:           DefaultSOHFloor,
	}
}

// Validate checks that the parameters describe a physically usable cell.
func (p CellParams) Validate() error {
	if p.CapacityAh <= 0 {
		return fmt.Errorf("cell capacity must be positive, got %g", p.CapacityAh)
	}
	if p.NominalVoltage <= 0 {
		return fmt.Errorf("nominal voltage must be positive, got %g", p.NominalVoltage)
	}
	if p.ThermalCapacity <= 0 {
		return fmt.Errorf("thermal capacity must be positive, got %g", p.ThermalCapacity)
	}
	if p.InternalResistance < 0 {
		return fmt.Errorf("internal resistance must not be negative, got %g", p.InternalResistance)
	}
	if p.CoolingCoeff < 0 || p.CoolingCoeff > 1 {
		return fmt.Errorf("cooling coefficient must be within [0,1], got %g", p.CoolingCoeff)
	}
	if p.DegradationRate < 0 {
		return fmt.Errorf("degradation rate must not be negative, got %g", p.DegradationRate)
	}
	if p.SOHFloor < 0 || p.SOHFloor > 100 {
		return fmt.Errorf("SOH floor must be within [0,100], got %g", p.SOHFloor)
	}
	return nil
}

// Cell models the electrical, thermal and aging state of one physical cell.
// All mutations happen through Discharge, Charge and DegradeHealth; the
// derived voltage is kept consistent with SOC and SOH after every update.
type Cell struct {
	params  CellParams
	soc     float64 // state of charge, percent, clamped to [0,100]
	soh     float64 // state of health, percent, never below params.SOHFloor
	temp    float64 // cell temperature in °C
	voltage float64 // derived: nominal * soc/100 * soh/100
}

// NewCell creates a cell at full charge and health resting at ambient
// temperature.
func NewCell(params CellParams) (*Cell, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	c := &Cell{
		params: params,
		soc:    100,
		soh:    100,
		temp:   params.AmbientTemp,
	}
	c.updateVoltage()
	return c, nil
}

// Discharge removes charge at the given current (amps) for dt seconds. SOC is
// clamped at zero; depleting the cell is normal behaviour, not an error.
func (c *Cell) Discharge(current, dt float64) {
	deltaAh := current * dt / 3600
	drop := deltaAh / c.params.CapacityAh * 100
	c.soc = math.Max(c.soc-drop, 0)
	c.generateHeat(current, dt)
	c.updateVoltage()
}

// Charge adds charge at the given current (amps) for dt seconds. SOC is
// clamped at 100.
func (c *Cell) Charge(current, dt float64) {
	deltaAh := current * dt / 3600
	gain := deltaAh / c.params.CapacityAh * 100
	c.soc = math.Min(c.soc+gain, 100)
	c.generateHeat(current, dt)
	c.updateVoltage()
}

// DegradeHealth ages the cell proportionally to the cumulative cycle count of
// its pack, so wear accelerates as the pack accumulates cycles. SOH never
// drops below the configured floor.
func (c *Cell) DegradeHealth(cycles int) {
	c.soh -= c.params.DegradationRate * float64(cycles)
	if c.soh < c.params.SOHFloor {
		c.soh = c.params.SOHFloor
	}
	c.updateVoltage()
}

// generateHeat applies the ohmic loss of one step. The loss is I²R and does
// not depend on current direction; current is a non-negative magnitude here.
func (c *Cell) generateHeat(current, dt float64) {
	heat := current * current * c.params.InternalResistance * dt
	c.temp += heat / c.params.ThermalCapacity
	c.coolDown()
}

// coolDown pulls the temperature toward ambient by a fixed fraction of the
// delta. The pull is applied once per update, not scaled by dt.
func (c *Cell) coolDown() {
	c.temp -= (c.temp - c.params.AmbientTemp) * c.params.CoolingCoeff
}

func (c *Cell) updateVoltage() {
	c.voltage = c.params.NominalVoltage * (c.soc / 100) * (c.soh / 100)
}

// SOC returns the state of charge in percent.
func (c *Cell) SOC() float64 { return c.soc }

// SOH returns the state of health in percent.
func (c *Cell) SOH() float64 { return c.soh }

// Temp returns the cell temperature in °C.
func (c *Cell) Temp() float64 { return c.temp }

// Voltage returns the derived terminal voltage in volts.
func (c *Cell) Voltage() float64 { return c.voltage }

// Params returns the fixed physical parameters of the cell.
func (c *Cell) Params() CellParams { return c.params }
