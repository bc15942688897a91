package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is one per-step snapshot of the pack aggregates.
type Sample struct {
	Step        int
	Time        time.Duration // elapsed simulated time at the end of the step
	PackVoltage float64
	AverageSOC  float64
	AverageSOH  float64
	AverageTemp float64
	Cycles      int
}

// Result holds the full time series of a run.
type Result struct {
	RunID   string
	Samples []Sample
	Cycles  int
}

// SeriesStats summarises one recorded series.
type SeriesStats struct {
	Min  float64
	Max  float64
	Mean float64
}

// Summary aggregates a run for logging and reporting.
type Summary struct {
	Steps    int
	Duration time.Duration
	Cycles   int
	SOC      SeriesStats
	SOH      SeriesStats
	Temp     SeriesStats
	Voltage  SeriesStats
}

func seriesStats(xs []float64) SeriesStats {
	if len(xs) == 0 {
		return SeriesStats{}
	}
	return SeriesStats{
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Mean: stat.Mean(xs, nil),
	}
}

// Summary computes min/max/mean for every recorded series.
func (r *Result) Summary() Summary {
	n := len(r.Samples)
	soc := make([]float64, n)
	soh := make([]float64, n)
	temp := make([]float64, n)
	volts := make([]float64, n)
	for i, s := range r.Samples {
		soc[i] = s.AverageSOC
		soh[i] = s.AverageSOH
		temp[i] = s.AverageTemp
		volts[i] = s.PackVoltage
	}
	sum := Summary{
		Steps:   n,
		Cycles:  r.Cycles,
		SOC:     seriesStats(soc),
		SOH:     seriesStats(soh),
		Temp:    seriesStats(temp),
		Voltage: seriesStats(volts),
	}
	if n > 0 {
		sum.Duration = r.Samples[n-1].Time
	}
	return sum
}

// WriteCSV writes the sample series with a header row. Times are emitted in
// seconds.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"step", "time_s", "pack_voltage_v", "avg_soc_pct", "avg_soh_pct", "avg_temp_c", "cycles"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range r.Samples {
		row := []string{
			strconv.Itoa(s.Step),
			strconv.FormatFloat(s.Time.Seconds(), 'f', -1, 64),
			strconv.FormatFloat(s.PackVoltage, 'f', 6, 64),
			strconv.FormatFloat(s.AverageSOC, 'f', 6, 64),
			strconv.FormatFloat(s.AverageSOH, 'f', 6, 64),
			strconv.FormatFloat(s.AverageTemp, 'f', 6, 64),
			strconv.Itoa(s.Cycles),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", s.Step, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
