package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() CellParams {
	return DefaultCellParams(2.5, 3.7)
}

func TestNewCellDefaults(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.SOC())
	assert.Equal(t, 100.0, c.SOH())
	assert.Equal(t, DefaultAmbientTemp, c.Temp())
	assert.InDelta(t, 3.7, c.Voltage(), 1e-12)
}

func TestNewCellRejectsInvalidParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CellParams)
	}{
		{"zero capacity", func(p *CellParams) { p.CapacityAh = 0 }},
		{"negative capacity", func(p *CellParams) { p.CapacityAh = -1 }},
		{"zero voltage", func(p *CellParams) { p.NominalVoltage = 0 }},
		{"zero thermal capacity", func(p *CellParams) { p.ThermalCapacity = 0 }},
		{"negative resistance", func(p *CellParams) { p.InternalResistance = -0.01 }},
		{"cooling above one", func(p *CellParams) { p.CoolingCoeff = 1.5 }},
		{"negative degradation", func(p *CellParams) { p.DegradationRate = -0.01 }},
		{"floor above hundred", func(p *CellParams) { p.SOHFloor = 120 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.mutate(&p)
			_, err := NewCell(p)
			assert.Error(t, err)
		})
	}
}

// One 2.5 Ah / 3.7 V cell discharged at 1 A for 10 s loses
// (1*10/3600)/2.5*100 ≈ 0.11111 percentage points of SOC.
func TestCellDischargeNumericScenario(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)

	c.Discharge(1.0, 10)

	assert.InDelta(t, 99.888889, c.SOC(), 1e-5)
	assert.InDelta(t, 3.7*c.SOC()/100*c.SOH()/100, c.Voltage(), 1e-12)
}

func TestCellDischargeClampsAtZero(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)

	// 2.5 Ah at 10 A takes 900 s to empty; run well past that.
	c.Discharge(10, 3600)

	assert.Equal(t, 0.0, c.SOC())
	assert.Equal(t, 0.0, c.Voltage())
}

func TestCellChargeClampsAtHundred(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)
	c.Discharge(1.0, 600)
	before := c.SOC()
	require.Less(t, before, 100.0)

	c.Charge(10, 7200)

	assert.Equal(t, 100.0, c.SOC())
	assert.InDelta(t, 3.7, c.Voltage(), 1e-12)
}

// Charging by the same current and duration undoes a discharge exactly, as
// long as neither leg hits a bound.
func TestCellChargeDischargeRoundTrip(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)
	c.Discharge(1.0, 1800)
	start := c.SOC()

	c.Charge(0.5, 300)
	c.Discharge(0.5, 300)

	assert.InDelta(t, start, c.SOC(), 1e-9)
}

func TestCellHeatGeneration(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)

	// Heat is I²R·dt = 4*0.05*100 = 20 J, so +0.04 °C before cooling.
	// At ambient the cooling pull removes 1% of the new delta.
	c.Discharge(2.0, 100)

	want := 25.0 + 0.04 - 0.04*DefaultCoolingCoeff
	assert.InDelta(t, want, c.Temp(), 1e-12)
}

func TestCellCoolsTowardAmbient(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)
	c.temp = 40

	for i := 0; i < 500; i++ {
		c.Discharge(0, 10) // zero current: no heat, cooling still applies
	}

	assert.InDelta(t, DefaultAmbientTemp, c.Temp(), 0.5)
	assert.Greater(t, c.Temp(), DefaultAmbientTemp)
}

func TestCellDegradeHealth(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)

	c.DegradeHealth(3)

	assert.InDelta(t, 99.97, c.SOH(), 1e-12)
	assert.InDelta(t, 3.7*(c.SOC()/100)*(c.SOH()/100), c.Voltage(), 1e-12)
}

func TestCellDegradeHealthFloors(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)

	// A huge cumulative count would push SOH far below the floor.
	c.DegradeHealth(100000)

	assert.Equal(t, DefaultSOHFloor, c.SOH())
	assert.InDelta(t, 3.7*(c.SOC()/100)*(DefaultSOHFloor/100), c.Voltage(), 1e-12)
}

func TestCellSOHNeverIncreases(t *testing.T) {
	c, err := NewCell(testParams())
	require.NoError(t, err)
	prev := c.SOH()
	for i := 1; i <= 50; i++ {
		c.DegradeHealth(i)
		assert.LessOrEqual(t, c.SOH(), prev)
		prev = c.SOH()
	}
}
