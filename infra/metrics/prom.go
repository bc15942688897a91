package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/bmsim/core/metrics"
)

// PromSink exposes the pack state as Prometheus metrics.
type PromSink struct {
	voltage prometheus.Gauge
	soc     prometheus.Gauge
	soh     prometheus.Gauge
	temp    prometheus.Gauge
	cycles  prometheus.Gauge
	crossed *prometheus.CounterVec
}

// NewPromSink registers pack metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pack_voltage_volts",
			Help: "Total series voltage of the simulated pack",
		}),
		soc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pack_soc_avg_percent",
			Help: "Average state of charge across cells",
		}),
		soh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pack_soh_avg_percent",
			Help: "Average state of health across cells",
		}),
		temp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pack_temp_avg_celsius",
			Help: "Average cell temperature",
		}),
		cycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pack_cycles",
			Help: "Cumulative full charge/discharge cycles of the pack",
		}),
		crossed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pack_cycles_total",
			Help: "Cycle completion events by run",
		}, []string{"run_id"}),
	}

	gauges := []*prometheus.Gauge{&s.voltage, &s.soc, &s.soh, &s.temp, &s.cycles}
	for _, g := range gauges {
		if err := reg.Register(*g); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*g = are.ExistingCollector.(prometheus.Gauge)
			} else {
				return nil, err
			}
		}
	}
	if err := reg.Register(s.crossed); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.crossed = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	return s, nil
}

// RecordPackState updates the gauges from the snapshot.
func (s *PromSink) RecordPackState(ev coremetrics.PackStateEvent) error {
	s.voltage.Set(ev.PackVoltage)
	s.soc.Set(ev.AverageSOC)
	s.soh.Set(ev.AverageSOH)
	s.temp.Set(ev.AverageTemp)
	s.cycles.Set(float64(ev.Cycles))
	return nil
}

// RecordCycle counts a completed cycle.
func (s *PromSink) RecordCycle(ev coremetrics.CycleEvent) error {
	s.crossed.WithLabelValues(ev.RunID).Inc()
	return nil
}
