package main

import (
	"fmt"
	"log"

	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/game"
	"github.com/decker502/trafficsim/pkg/types"
	"github.com/google/uuid"
)

// options 一次无窗口运行的参数，零值字段使用仿真参数中的默认值
type options struct {
	ConfigPath  string
	CatalogPath string
	Layout      string
	SignalMode  string
	Density     float64
	SpeedLimit  float64
	NoTransit   bool
	Seed        int64
	Ticks       int
	Sample      int

	// 为 nil 时使用默认值
	SlowZoneStrength *float64
	SlowdownRate     *float64
}

// Report 运行报告
type Report struct {
	RunID          string       `yaml:"runId"`
	Layout         string       `yaml:"layout"`
	SignalMode     string       `yaml:"signalMode"`
	Seed           int64        `yaml:"seed"`
	Ticks          int          `yaml:"ticks"`
	Density        float64      `yaml:"density"`
	SpeedLimit     float64      `yaml:"speedLimit"`
	TransitEnabled bool         `yaml:"transitEnabled"`
	SlowZone       float64      `yaml:"slowZoneStrength"`
	SlowdownRate   float64      `yaml:"slowdownRate"`
	Samples        []game.Stats `yaml:"samples"`
	Final          game.Stats   `yaml:"final"`
}

// runHeadless 按参数运行仿真并收集统计
func runHeadless(opts options) (*Report, error) {
	if opts.Ticks < 0 {
		return nil, fmt.Errorf("ticks must be >= 0, got %d", opts.Ticks)
	}

	cfg, err := config.LoadSimulationConfigFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	catalog, err := config.LoadLayoutCatalogFile(opts.CatalogPath)
	if err != nil {
		return nil, err
	}

	sim, err := game.NewSimulation(cfg, catalog, opts.Seed)
	if err != nil {
		return nil, err
	}
	if err := applyOptions(sim, opts); err != nil {
		return nil, err
	}

	c := sim.Controls()
	report := &Report{
		RunID:          uuid.New().String(),
		Layout:         string(c.Layout),
		SignalMode:     c.SignalMode.String(),
		Seed:           opts.Seed,
		Ticks:          opts.Ticks,
		Density:        c.Density,
		SpeedLimit:     c.SpeedLimit,
		TransitEnabled: c.TransitEnabled,
		SlowZone:       c.SlowZoneStrength,
		SlowdownRate:   c.SlowdownRate,
		Samples:        make([]game.Stats, 0),
	}

	for i := 1; i <= opts.Ticks; i++ {
		sim.Tick()
		if opts.Sample > 0 && i%opts.Sample == 0 {
			report.Samples = append(report.Samples, sim.Stats())
		}
	}
	report.Final = sim.Stats()

	log.Printf("[Headless] Run %s finished: %d ticks, %d spawned, %d culled",
		report.RunID, report.Final.Tick, report.Final.Spawned, report.Final.Culled)
	return report, nil
}

// applyOptions 将命令行参数应用到仿真
func applyOptions(sim *game.Simulation, opts options) error {
	if opts.Layout != "" {
		name, err := types.ParseLayoutName(opts.Layout)
		if err != nil {
			return err
		}
		if err := sim.SetLayout(name); err != nil {
			return err
		}
	}
	if opts.SignalMode != "" {
		mode, err := types.ParseSignalMode(opts.SignalMode)
		if err != nil {
			return err
		}
		sim.SetSignalMode(mode)
	}
	if opts.Density > 0 {
		sim.SetDensity(opts.Density)
	}
	if opts.SpeedLimit > 0 {
		sim.SetSpeedLimit(opts.SpeedLimit)
	}
	if opts.NoTransit {
		sim.SetTransitEnabled(false)
	}
	if opts.SlowZoneStrength != nil {
		sim.SetSlowZoneStrength(*opts.SlowZoneStrength)
	}
	if opts.SlowdownRate != nil {
		sim.SetSlowdownRate(*opts.SlowdownRate)
	}
	return nil
}
