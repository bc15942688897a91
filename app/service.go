package app

import (
	"context"
	"fmt"
	"os"

	"github.com/kilianp07/bmsim/config"
	coremetrics "github.com/kilianp07/bmsim/core/metrics"
	"github.com/kilianp07/bmsim/core/model"
	"github.com/kilianp07/bmsim/core/sim"
	"github.com/kilianp07/bmsim/infra/logger"
	"github.com/kilianp07/bmsim/infra/metrics"
	"github.com/kilianp07/bmsim/infra/mqtt"
	"github.com/kilianp07/bmsim/infra/plot"
)

// Service wires the pack, the runner and the metrics sinks from configuration.
type Service struct {
	runner      *sim.Runner
	output      config.OutputConfig
	log         logger.Logger
	pub         *mqtt.Publisher
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	pack, err := model.NewPackWithParams(cfg.Simulation.NumCells, cfg.Simulation.CellParams())
	if err != nil {
		return nil, fmt.Errorf("build pack: %w", err)
	}

	svc := &Service{
		output:      cfg.Output,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	if cfg.Metrics.MQTTEnabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
		sinks = append(sinks, pub)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	runner, err := sim.NewRunner(pack, cfg.Simulation.SimProfile(), cfg.Simulation.Step(), logger.New("runner"), sink)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	svc.runner = runner
	return svc, nil
}

// Run executes the simulation and writes the configured artifacts. It returns
// once the profile is exhausted or the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}

	sum := res.Summary()
	s.log.Infof("run %s finished: %d steps over %s, %d cycles", res.RunID, sum.Steps, sum.Duration, sum.Cycles)
	s.log.Debugw("series summary", map[string]any{
		"soc_min":  sum.SOC.Min,
		"soc_max":  sum.SOC.Max,
		"soh_min":  sum.SOH.Min,
		"temp_max": sum.Temp.Max,
		"volt_min": sum.Voltage.Min,
		"volt_max": sum.Voltage.Max,
	})

	if s.output.CSVPath != "" {
		if err := s.writeCSV(res); err != nil {
			return err
		}
		s.log.Infof("samples written to %s", s.output.CSVPath)
	}
	if s.output.PlotsDir != "" {
		if err := plot.Render(res, s.output.PlotsDir); err != nil {
			return fmt.Errorf("render plots: %w", err)
		}
		s.log.Infof("charts rendered to %s", s.output.PlotsDir)
	}
	return nil
}

func (s *Service) writeCSV(res *sim.Result) error {
	f, err := os.Create(s.output.CSVPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.log.Errorf("close csv: %v", cerr)
		}
	}()
	if err := res.WriteCSV(f); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Close()
	}
	return nil
}
