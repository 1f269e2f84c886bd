package game

import (
	"math"
	"testing"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/entities"
	"github.com/decker502/trafficsim/pkg/network"
	"github.com/decker502/trafficsim/pkg/systems"
	"github.com/decker502/trafficsim/pkg/types"
)

func loadTestCatalog(t *testing.T) *config.LayoutCatalog {
	t.Helper()
	catalog, err := config.LoadLayoutCatalogFile("../../data/layouts.yaml")
	if err != nil {
		t.Fatalf("Failed to load layout catalog: %v", err)
	}
	return catalog
}

func newTestSimulation(t *testing.T, seed int64) *Simulation {
	t.Helper()
	sim, err := NewSimulation(config.DefaultSimulationConfig(), loadTestCatalog(t), seed)
	if err != nil {
		t.Fatalf("NewSimulation() error: %v", err)
	}
	return sim
}

func TestNewSimulation(t *testing.T) {
	sim := newTestSimulation(t, 1)

	c := sim.Controls()
	if c.Layout != types.LayoutIntersection || c.SignalMode != types.SignalFixed {
		t.Errorf("controls = %+v, want intersection/fixed defaults", c)
	}
	if sim.Network() == nil || sim.Network().Name != types.LayoutIntersection {
		t.Errorf("network = %+v", sim.Network())
	}
	if stats := sim.Stats(); stats != (Stats{}) {
		t.Errorf("initial stats = %+v, want zero", stats)
	}
}

func TestNewSimulationErrors(t *testing.T) {
	catalog := loadTestCatalog(t)

	tests := []struct {
		name    string
		cfg     func() *config.SimulationConfig
		catalog *config.LayoutCatalog
	}{
		{"缺少配置", func() *config.SimulationConfig { return nil }, catalog},
		{"缺少布局目录", config.DefaultSimulationConfig, nil},
		{"未知默认布局", func() *config.SimulationConfig {
			cfg := config.DefaultSimulationConfig()
			cfg.Defaults.Layout = "cloverleaf"
			return cfg
		}, catalog},
		{"未知默认信号模式", func() *config.SimulationConfig {
			cfg := config.DefaultSimulationConfig()
			cfg.Defaults.SignalMode = "blinking"
			return cfg
		}, catalog},
		{"目录中缺少默认布局", config.DefaultSimulationConfig, &config.LayoutCatalog{
			LaneWidth: 20,
			Layouts:   []config.LayoutDef{{Name: string(types.LayoutArterial)}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSimulation(tt.cfg(), tt.catalog, 1); err == nil {
				t.Error("NewSimulation() should fail")
			}
		})
	}
}

func TestSimulationTickAndPause(t *testing.T) {
	sim := newTestSimulation(t, 1)

	for i := 0; i < 10; i++ {
		sim.Tick()
	}
	if got := sim.Stats().Tick; got != 10 {
		t.Fatalf("Tick = %d, want 10", got)
	}
	before := sim.Snapshot()

	sim.Pause()
	if !sim.Paused() {
		t.Fatal("Paused() = false after Pause()")
	}
	for i := 0; i < 10; i++ {
		sim.Tick()
	}
	if got := sim.Stats().Tick; got != 10 {
		t.Errorf("paused Tick advanced to %d", got)
	}
	after := sim.Snapshot()
	if len(before) != len(after) {
		t.Fatalf("paused snapshot changed size: %d → %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("agent %d changed while paused: %+v → %+v", before[i].ID, before[i], after[i])
		}
	}

	sim.Step()
	if got := sim.Stats().Tick; got != 11 {
		t.Errorf("Step() while paused: Tick = %d, want 11", got)
	}

	sim.Resume()
	sim.Tick()
	if got := sim.Stats().Tick; got != 12 {
		t.Errorf("Tick after Resume = %d, want 12", got)
	}
}

func TestSimulationReset(t *testing.T) {
	sim := newTestSimulation(t, 1)
	sim.SetDensity(50)
	for i := 0; i < 300; i++ {
		sim.Tick()
	}
	if sim.Stats().Count == 0 {
		t.Fatal("expected vehicles after 300 ticks")
	}

	sim.Reset()
	if stats := sim.Stats(); stats != (Stats{}) {
		t.Errorf("stats after Reset = %+v, want zero", stats)
	}
	if sim.Controls().Layout != types.LayoutIntersection || sim.Controls().Density != 50 {
		t.Errorf("Reset changed controls: %+v", sim.Controls())
	}

	// 重置后第一个 tick 即可生成
	sim.Tick()
	if sim.Stats().Spawned != 1 {
		t.Errorf("Spawned = %d after first tick, want 1", sim.Stats().Spawned)
	}
}

func TestSimulationSetLayout(t *testing.T) {
	sim := newTestSimulation(t, 1)
	for i := 0; i < 200; i++ {
		sim.Tick()
	}

	if err := sim.SetLayout(types.LayoutRoundabout); err != nil {
		t.Fatalf("SetLayout() error: %v", err)
	}
	if sim.Stats() != (Stats{}) {
		t.Errorf("SetLayout should discard agents and counters, got %+v", sim.Stats())
	}
	if sim.Network().Roundabout == nil {
		t.Error("roundabout layout has no ring geometry")
	}

	if err := sim.SetLayout("cloverleaf"); err == nil {
		t.Error("SetLayout() should reject unknown layouts")
	}
	if sim.Controls().Layout != types.LayoutRoundabout {
		t.Errorf("failed SetLayout changed layout to %s", sim.Controls().Layout)
	}

	// 路网按布局缓存
	ring := sim.Network()
	if err := sim.SetLayout(types.LayoutArterial); err != nil {
		t.Fatal(err)
	}
	if err := sim.SetLayout(types.LayoutRoundabout); err != nil {
		t.Fatal(err)
	}
	if sim.Network() != ring {
		t.Error("expected cached network for a previously used layout")
	}
}

func TestSimulationSignalModes(t *testing.T) {
	sim := newTestSimulation(t, 1)

	sim.SetSignalMode(types.SignalOff)
	if s := sim.Signal(); !s.HorizontalAllowed || !s.VerticalAllowed {
		t.Errorf("off mode signal = %+v", s)
	}

	sim.AdvanceManualPhase()
	sim.SetSignalMode(types.SignalManual)
	if s := sim.Signal(); !s.HorizontalAllowed || s.VerticalAllowed {
		t.Errorf("manual mode should restart at phase 0, got %+v", s)
	}

	sim.AdvanceManualPhase()
	if s := sim.Signal(); s.HorizontalAllowed || !s.VerticalAllowed {
		t.Errorf("after advance signal = %+v, want vertical green", s)
	}

	// 手动模式下 tick 不改变相位
	for i := 0; i < 500; i++ {
		sim.Tick()
	}
	if s := sim.Signal(); !s.VerticalAllowed {
		t.Errorf("manual phase changed with ticks: %+v", s)
	}
}

// TestSimulationSpawnCullBalance 生成速度不超过每 tick 一辆，累计生成 = 累计清理 + 存活
func TestSimulationSpawnCullBalance(t *testing.T) {
	for _, layout := range types.AllLayouts {
		t.Run(string(layout), func(t *testing.T) {
			sim := newTestSimulation(t, 7)
			if err := sim.SetLayout(layout); err != nil {
				t.Fatal(err)
			}
			sim.SetDensity(1e6)

			for tick := 1; tick <= 3000; tick++ {
				sim.Tick()
				stats := sim.Stats()
				if stats.Count > tick {
					t.Fatalf("tick %d: %d live vehicles", tick, stats.Count)
				}
				if stats.Spawned != stats.Culled+stats.Count {
					t.Fatalf("tick %d: spawned %d != culled %d + live %d", tick, stats.Spawned, stats.Culled, stats.Count)
				}
			}
			if sim.Stats().Culled == 0 {
				t.Error("no vehicle ever left the network")
			}
		})
	}
}

// TestSimulationDeterministic 相同种子和相同操作序列产生相同结果
func TestSimulationDeterministic(t *testing.T) {
	run := func() []AgentView {
		sim := newTestSimulation(t, 99)
		sim.SetDensity(30)
		for i := 0; i < 600; i++ {
			sim.Tick()
		}
		return sim.Snapshot()
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("snapshot sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("agent %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSimulationStatsMatchSnapshot(t *testing.T) {
	sim := newTestSimulation(t, 3)
	sim.SetDensity(40)
	for i := 0; i < 400; i++ {
		sim.Tick()
	}

	views := sim.Snapshot()
	stats := sim.Stats()
	if stats.Count != len(views) {
		t.Fatalf("Count = %d, snapshot has %d", stats.Count, len(views))
	}
	sum, slow := 0.0, 0
	for _, v := range views {
		sum += v.Speed
		if v.Speed < sim.Config().Speed.SlowSpeedThreshold {
			slow++
		}
	}
	if len(views) > 0 && math.Abs(stats.AverageSpeed-sum/float64(len(views))) > 1e-9 {
		t.Errorf("AverageSpeed = %v, want %v", stats.AverageSpeed, sum/float64(len(views)))
	}
	if stats.SlowCount != slow {
		t.Errorf("SlowCount = %d, want %d", stats.SlowCount, slow)
	}
}

func TestSimulationZeroDensity(t *testing.T) {
	sim := newTestSimulation(t, 1)
	sim.SetDensity(0)
	for i := 0; i < 100; i++ {
		sim.Tick()
	}
	// 第一次生成后，按密度下限换算的间隔远大于 100 tick
	if got := sim.Stats().Spawned; got != 1 {
		t.Errorf("Spawned = %d, want 1", got)
	}
}

// TestSimulationSlowControls 瓶颈强度和随机刹车概率的设置与截断
func TestSimulationSlowControls(t *testing.T) {
	tests := []struct {
		name         string
		strength     float64
		rate         float64
		wantStrength float64
		wantRate     float64
	}{
		{"范围内", 0.3, 0.8, 0.3, 0.8},
		{"强度超过上限", 1.5, 0.1, config.MaxSlowZoneStrength, 0.1},
		{"负值按零处理", -0.2, -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulation(t, 1)
			sim.SetSlowZoneStrength(tt.strength)
			sim.SetSlowdownRate(tt.rate)
			c := sim.Controls()
			if c.SlowZoneStrength != tt.wantStrength || c.SlowdownRate != tt.wantRate {
				t.Errorf("controls = %v/%v, want %v/%v", c.SlowZoneStrength, c.SlowdownRate, tt.wantStrength, tt.wantRate)
			}
		})
	}
}

// TestSimulationStationaryAtCentre 固定周期 200，水平绿灯期间停在路口中央的 3 辆垂直方向车辆
// 保持静止，直到相位切换后恢复行驶
// 内置默认参数和出厂配置文件都要满足
func TestSimulationStationaryAtCentre(t *testing.T) {
	shipped, err := config.LoadSimulationConfigFile("../../data/simulation.yaml")
	if err != nil {
		t.Fatalf("Failed to load data/simulation.yaml: %v", err)
	}

	tests := []struct {
		name string
		cfg  *config.SimulationConfig
	}{
		{"内置默认参数", config.DefaultSimulationConfig()},
		{"出厂配置文件", shipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := NewSimulation(tt.cfg, loadTestCatalog(t), 5)
			if err != nil {
				t.Fatalf("NewSimulation() error: %v", err)
			}
			checkStationaryAtCentre(t, sim)
		})
	}
}

func checkStationaryAtCentre(t *testing.T, sim *Simulation) {
	t.Helper()
	cfg := sim.Config()
	if cfg.Signal.CyclePeriod != 200 || sim.Controls().Density != 10 {
		t.Fatalf("unexpected defaults: period=%d density=%v", cfg.Signal.CyclePeriod, sim.Controls().Density)
	}

	em := sim.EntityManager()
	base := systems.BaseSpeed(cfg, sim.Controls().SpeedLimit, types.VehicleCar)
	startY := []float64{270, 300, 330}
	ids := make([]ecs.EntityID, 0, len(startY))
	for _, y := range startY {
		ids = append(ids, entities.NewVehicleEntity(em, network.SpawnPoint{
			X: 390, Y: y, VY: 1,
			Orientation: types.Vertical,
			Direction:   types.Forward,
			LaneCount:   2,
		}, entities.VehicleParams{
			Class:     types.VehicleCar,
			Size:      cfg.Vehicles.Car.Size,
			BaseSpeed: base,
		}))
	}

	for tick := 0; tick < cfg.Signal.CyclePeriod; tick++ {
		if sim.Signal().VerticalAllowed {
			t.Fatalf("tick %d: vertical axis unexpectedly green", tick)
		}
		sim.Tick()
		for i, id := range ids {
			pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
			veh, _ := ecs.GetComponent[*components.VehicleComponent](em, id)
			if veh.Speed != 0 || pos.Y != startY[i] {
				t.Fatalf("tick %d: entity %d moved during horizontal green (y=%v speed=%v)", tick, id, pos.Y, veh.Speed)
			}
		}
	}

	if !sim.Signal().VerticalAllowed {
		t.Fatal("phase did not flip to vertical after one period")
	}

	maxSpeed := make([]float64, len(ids))
	for tick := 0; tick < 120; tick++ {
		sim.Tick()
		for i, id := range ids {
			veh, _ := ecs.GetComponent[*components.VehicleComponent](em, id)
			maxSpeed[i] = math.Max(maxSpeed[i], veh.Speed)
		}
	}

	for i, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if pos.Y <= startY[i] {
			t.Errorf("entity %d did not resume after the phase flip (y=%v)", id, pos.Y)
		}
		if maxSpeed[i] <= 0 {
			t.Errorf("entity %d never regained speed", id)
		}
	}
	// 最前方的车辆没有前车，恢复到基础速度
	if front := maxSpeed[len(ids)-1]; math.Abs(front-base) > 1e-9 {
		t.Errorf("front vehicle max speed = %v, want base %v", front, base)
	}
}

// TestSimulationRedStopsVehicleInsideBox 出厂配置下，绿灯时驶入管控区的车辆在红灯后停在区内
func TestSimulationRedStopsVehicleInsideBox(t *testing.T) {
	cfg, err := config.LoadSimulationConfigFile("../../data/simulation.yaml")
	if err != nil {
		t.Fatalf("Failed to load data/simulation.yaml: %v", err)
	}
	sim, err := NewSimulation(cfg, loadTestCatalog(t), 3)
	if err != nil {
		t.Fatalf("NewSimulation() error: %v", err)
	}
	sim.SetDensity(0.0001)
	sim.SetSlowdownRate(0)
	sim.SetSignalMode(types.SignalManual)
	sim.AdvanceManualPhase() // 垂直绿灯

	em := sim.EntityManager()
	base := systems.BaseSpeed(cfg, sim.Controls().SpeedLimit, types.VehicleCar)
	id := entities.NewVehicleEntity(em, network.SpawnPoint{
		X: 390, Y: 230, VY: 1,
		Orientation: types.Vertical,
		Direction:   types.Forward,
		LaneCount:   2,
	}, entities.VehicleParams{Class: types.VehicleCar, Size: cfg.Vehicles.Car.Size, BaseSpeed: base, Speed: base})

	halfSize := cfg.Signal.JunctionHalfSize
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	for tick := 0; tick < 200 && !sim.Network().InJunctionBox(pos.X, pos.Y, halfSize); tick++ {
		sim.Tick()
	}
	if !sim.Network().InJunctionBox(pos.X, pos.Y, halfSize) {
		t.Fatalf("vehicle never entered the junction box (y=%v)", pos.Y)
	}

	sim.AdvanceManualPhase() // 水平绿灯
	sim.Tick()
	stoppedY := pos.Y
	for tick := 0; tick < 10; tick++ {
		sim.Tick()
		veh, _ := ecs.GetComponent[*components.VehicleComponent](em, id)
		if veh.Speed != 0 || pos.Y != stoppedY {
			t.Fatalf("tick %d: vehicle moved inside the box on red (y=%v speed=%v)", tick, pos.Y, veh.Speed)
		}
	}
}
