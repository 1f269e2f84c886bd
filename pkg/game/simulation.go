package game

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/network"
	"github.com/decker502/trafficsim/pkg/systems"
	"github.com/decker502/trafficsim/pkg/types"
)

// Controls 外部可调的控制参数
type Controls struct {
	Layout           types.LayoutName
	SignalMode       types.SignalMode
	Density          float64
	SpeedLimit       float64
	TransitEnabled   bool
	SlowZoneStrength float64 // 瓶颈区减速强度 [0, config.MaxSlowZoneStrength]
	SlowdownRate     float64 // 随机刹车每秒概率
}

// AgentView 车辆状态的只读副本，供渲染和报告使用
type AgentView struct {
	ID          ecs.EntityID
	X, Y        float64
	VX, VY      float64
	Speed       float64
	Size        float64
	Class       types.VehicleClass
	Orientation types.Orientation
	Lane        int
	OnRing      bool
}

// Stats 仿真统计
type Stats struct {
	Tick         int     `yaml:"tick"`
	Count        int     `yaml:"count"`        // 存活车辆数
	AverageSpeed float64 `yaml:"averageSpeed"` // 实际速度平均值
	SlowCount    int     `yaml:"slowCount"`    // 慢车数量
	Spawned      int     `yaml:"spawned"`      // 累计生成
	Culled       int     `yaml:"culled"`       // 累计清理
}

// Simulation 仿真时钟
//
// 每次 Tick 以固定步长推进一个 tick，顺序为：生成 → 信号 → 运动与碰撞 → 清理。
// 单线程使用，调用方保证不会重入 Tick；渲染通过 Snapshot 读取副本。
type Simulation struct {
	config  *config.SimulationConfig
	catalog *config.LayoutCatalog

	state    *SimulationState
	controls Controls
	paused   bool

	network     *network.RoadNetwork
	networks    map[types.LayoutName]*network.RoadNetwork // 按布局缓存的路网
	spawnPoints map[types.LayoutName][]network.SpawnPoint // 按布局缓存的生成点

	spawnSystem  *systems.SpawnSystem
	motionSystem *systems.MotionSystem
	cullSystem   *systems.CullSystem
}

// NewSimulation 创建仿真
// 参数:
//   - cfg: 仿真参数（控制参数的初始值取自 cfg.Defaults）
//   - catalog: 布局目录
//   - seed: 随机种子，相同种子和相同操作序列产生相同结果
//
// 返回: 默认布局或默认信号模式无效时返回错误
func NewSimulation(cfg *config.SimulationConfig, catalog *config.LayoutCatalog, seed int64) (*Simulation, error) {
	if cfg == nil || catalog == nil {
		return nil, fmt.Errorf("simulation config and layout catalog are required")
	}

	layout, err := types.ParseLayoutName(cfg.Defaults.Layout)
	if err != nil {
		return nil, fmt.Errorf("invalid default layout: %w", err)
	}
	mode, err := types.ParseSignalMode(cfg.Defaults.SignalMode)
	if err != nil {
		return nil, fmt.Errorf("invalid default signal mode: %w", err)
	}

	s := &Simulation{
		config:  cfg,
		catalog: catalog,
		state:   newSimulationState(seed),
		controls: Controls{
			Layout:           layout,
			SignalMode:       mode,
			Density:          cfg.Defaults.Density,
			SpeedLimit:       cfg.Defaults.SpeedLimit,
			TransitEnabled:   cfg.Defaults.TransitEnabled,
			SlowZoneStrength: cfg.Defaults.SlowZoneStrength,
			SlowdownRate:     cfg.Defaults.SlowdownRate,
		},
		networks:    make(map[types.LayoutName]*network.RoadNetwork),
		spawnPoints: make(map[types.LayoutName][]network.SpawnPoint),
	}

	net, points, err := s.loadLayout(layout)
	if err != nil {
		return nil, err
	}
	s.network = net

	em := s.state.Entities
	s.spawnSystem = systems.NewSpawnSystem(em, cfg, points)
	s.motionSystem = systems.NewMotionSystem(em, cfg, net)
	s.cullSystem = systems.NewCullSystem(em, net)

	log.Printf("[Simulation] Initialized: layout=%s signal=%s seed=%d", layout, mode, seed)
	return s, nil
}

// loadLayout 返回布局的路网和生成点，首次使用时构建并缓存
func (s *Simulation) loadLayout(name types.LayoutName) (*network.RoadNetwork, []network.SpawnPoint, error) {
	if net, ok := s.networks[name]; ok {
		return net, s.spawnPoints[name], nil
	}

	def, err := s.catalog.Layout(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load layout: %w", err)
	}

	net := network.BuildLayout(def)
	points := network.BuildSpawnPoints(net)
	s.networks[name] = net
	s.spawnPoints[name] = points
	log.Printf("[Simulation] Built layout %s: %d segments, %d spawn points", name, len(net.Segments), len(points))
	return net, points, nil
}

// Tick 推进一个 tick；暂停时不做任何事
func (s *Simulation) Tick() {
	if s.paused {
		return
	}
	s.step()
}

// Step 无论是否暂停都推进一个 tick（单步调试）
func (s *Simulation) Step() {
	s.step()
}

func (s *Simulation) step() {
	st := s.state
	dt := s.config.TimeStep

	// 1. 生成
	interval := systems.SpawnInterval(s.controls.Density, s.config.Spawn)
	if systems.SpawnDue(st.Tick, st.LastSpawnTick, interval) {
		_, ok := s.spawnSystem.TrySpawn(systems.SpawnInput{
			SpeedLimit:     s.controls.SpeedLimit,
			TransitEnabled: s.controls.TransitEnabled,
			RNG:            st.RNG,
		})
		if ok {
			st.LastSpawnTick = st.Tick
			st.Spawned++
		}
	}

	// 2. 信号
	signal := s.Signal()

	// 3. 运动与碰撞
	s.motionSystem.Update(dt, systems.MotionInput{
		SpeedLimit:       s.controls.SpeedLimit,
		SlowZoneStrength: s.controls.SlowZoneStrength,
		SlowdownRate:     s.controls.SlowdownRate,
		Signal:           signal,
		RNG:              st.RNG,
	})

	// 4. 清理
	st.Culled += s.cullSystem.Update()

	st.Tick++
}

// Pause 暂停；tick 计数、生成计时和车辆位置保持不变
func (s *Simulation) Pause() {
	s.paused = true
}

// Resume 从暂停处继续
func (s *Simulation) Resume() {
	s.paused = false
}

// Paused 是否处于暂停状态
func (s *Simulation) Paused() bool {
	return s.paused
}

// Reset 删除所有车辆并清零计数器，保留当前路网和控制参数
func (s *Simulation) Reset() {
	s.state.clear()
	log.Printf("[Simulation] Reset on layout %s", s.controls.Layout)
}

// SetLayout 切换布局：整体替换路网并丢弃所有车辆
func (s *Simulation) SetLayout(name types.LayoutName) error {
	net, points, err := s.loadLayout(name)
	if err != nil {
		return err
	}

	s.state.clear()
	s.network = net
	s.controls.Layout = name
	s.spawnSystem.SetSpawnPoints(points)
	s.motionSystem.SetNetwork(net)
	s.cullSystem.SetNetwork(net)

	log.Printf("[Simulation] Switched to layout %s", name)
	return nil
}

// SetSignalMode 切换信号模式；切换到手动模式时相位归零
func (s *Simulation) SetSignalMode(mode types.SignalMode) {
	s.controls.SignalMode = mode
	if mode == types.SignalManual {
		s.state.ManualPhase = 0
	}
}

// AdvanceManualPhase 推进手动信号相位
func (s *Simulation) AdvanceManualPhase() {
	s.state.ManualPhase++
}

// SetDensity 设置车流密度（生成间隔在使用时按下限保护）
func (s *Simulation) SetDensity(d float64) {
	s.controls.Density = d
}

// SetSpeedLimit 设置限速，负值按 0 处理
func (s *Simulation) SetSpeedLimit(v float64) {
	if v < 0 {
		v = 0
	}
	s.controls.SpeedLimit = v
}

// SetTransitEnabled 设置是否生成公交
func (s *Simulation) SetTransitEnabled(enabled bool) {
	s.controls.TransitEnabled = enabled
}

// SetSlowZoneStrength 设置瓶颈区减速强度，超出 [0, MaxSlowZoneStrength] 的值截断到边界
func (s *Simulation) SetSlowZoneStrength(strength float64) {
	s.controls.SlowZoneStrength = math.Max(0, math.Min(strength, config.MaxSlowZoneStrength))
}

// SetSlowdownRate 设置随机刹车的每秒概率，负值按 0 处理
func (s *Simulation) SetSlowdownRate(rate float64) {
	s.controls.SlowdownRate = math.Max(0, rate)
}

// Controls 返回当前控制参数
func (s *Simulation) Controls() Controls {
	return s.controls
}

// Signal 返回当前 tick 生效的信号状态
func (s *Simulation) Signal() systems.SignalState {
	return systems.CurrentSignal(s.controls.SignalMode, s.state.Tick, s.state.ManualPhase, s.config.Signal.CyclePeriod)
}

// Stats 返回当前统计
func (s *Simulation) Stats() Stats {
	speed := systems.CollectSpeedStats(s.state.Entities, s.config.Speed.SlowSpeedThreshold)
	return Stats{
		Tick:         s.state.Tick,
		Count:        speed.Count,
		AverageSpeed: speed.AverageSpeed,
		SlowCount:    speed.SlowCount,
		Spawned:      s.state.Spawned,
		Culled:       s.state.Culled,
	}
}

// Snapshot 返回所有车辆的只读副本（按实体 ID 升序）
func (s *Simulation) Snapshot() []AgentView {
	em := s.state.Entities
	ids := ecs.GetEntitiesWith2[*components.PositionComponent, *components.VehicleComponent](em)
	views := make([]AgentView, 0, len(ids))
	for _, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		veh, _ := ecs.GetComponent[*components.VehicleComponent](em, id)
		views = append(views, AgentView{
			ID:          id,
			X:           pos.X,
			Y:           pos.Y,
			VX:          veh.VX,
			VY:          veh.VY,
			Speed:       veh.Speed,
			Size:        veh.Size,
			Class:       veh.Class,
			Orientation: veh.Orientation,
			Lane:        veh.Lane,
			OnRing:      ecs.HasComponent[*components.RoundaboutComponent](em, id),
		})
	}
	return views
}

// Network 返回当前路网（只读）
func (s *Simulation) Network() *network.RoadNetwork {
	return s.network
}

// EntityManager 返回车辆所在的 EntityManager，供渲染系统只读访问
func (s *Simulation) EntityManager() *ecs.EntityManager {
	return s.state.Entities
}

// Config 返回仿真参数
func (s *Simulation) Config() *config.SimulationConfig {
	return s.config
}
