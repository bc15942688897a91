package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kilianp07/bmsim/core/sim"
)

// series selects one value out of a sample.
type series struct {
	file  string
	title string
	yAxis string
	value func(sim.Sample) float64
}

var seriesDefs = []series{
	{"soc.png", "Battery SOC Over Time", "State of Charge (%)", func(s sim.Sample) float64 { return s.AverageSOC }},
	{"temperature.png", "Battery Temperature Over Time", "Temperature (°C)", func(s sim.Sample) float64 { return s.AverageTemp }},
	{"voltage.png", "Pack Voltage Over Time", "Voltage (V)", func(s sim.Sample) float64 { return s.PackVoltage }},
	{"soh.png", "Battery SOH Over Time", "State of Health (%)", func(s sim.Sample) float64 { return s.AverageSOH }},
}

// Render writes one PNG line chart per recorded series into dir, creating it
// if needed. Time is plotted in minutes.
func Render(res *sim.Result, dir string) error {
	if len(res.Samples) == 0 {
		return fmt.Errorf("no samples to plot")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	for _, def := range seriesDefs {
		if err := renderSeries(res, def, filepath.Join(dir, def.file)); err != nil {
			return fmt.Errorf("render %s: %w", def.file, err)
		}
	}
	return nil
}

func renderSeries(res *sim.Result, def series, path string) error {
	pts := make(plotter.XYs, len(res.Samples))
	for i, s := range res.Samples {
		pts[i].X = s.Time.Minutes()
		pts[i].Y = def.value(s)
	}

	p := plot.New()
	p.Title.Text = def.title
	p.X.Label.Text = "Time (min)"
	p.Y.Label.Text = def.yAxis

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(plotter.NewGrid(), line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
