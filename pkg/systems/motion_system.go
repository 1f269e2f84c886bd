package systems

import (
	"log"
	"math"
	"math/rand"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/network"
)

// MotionInput 一次运动更新的外部输入
type MotionInput struct {
	SpeedLimit       float64     // 全局限速设置
	SlowZoneStrength float64     // 瓶颈区减速强度，0 表示不减速
	SlowdownRate     float64     // 随机刹车事件的每秒概率，0 表示关闭
	Signal           SignalState // 本 tick 的信号状态
	RNG              *rand.Rand  // 随机刹车使用的随机源
}

// MotionSystem 车辆运动与碰撞引擎
//
// 每个 tick 按实体 ID 升序逐个处理车辆：
// 基础速度 → 瓶颈区目标速度 → 前车查询 → 跟车 → 随机刹车 → 信号管控 → 候选移动 → 碰撞否决。
// 每辆车的移动立即提交，后处理的车辆看到的是已更新的位置。
// 前车查询和碰撞检测都是对全部车辆的两两扫描（O(n²)），车辆规模在几十辆以内。
type MotionSystem struct {
	entityManager *ecs.EntityManager
	config        *config.SimulationConfig
	network       *network.RoadNetwork

	vetoCount int // 最近一次更新中被否决的移动数量
}

// NewMotionSystem 创建运动系统
// 参数:
//   - em: EntityManager 实例
//   - cfg: 仿真参数
//   - net: 当前路网
func NewMotionSystem(em *ecs.EntityManager, cfg *config.SimulationConfig, net *network.RoadNetwork) *MotionSystem {
	return &MotionSystem{
		entityManager: em,
		config:        cfg,
		network:       net,
	}
}

// SetNetwork 切换路网（切换布局时调用）
func (s *MotionSystem) SetNetwork(net *network.RoadNetwork) {
	s.network = net
}

// VetoCount 返回最近一次更新中被碰撞否决的移动数量
func (s *MotionSystem) VetoCount() int {
	return s.vetoCount
}

// Update 推进所有车辆一个 tick
func (s *MotionSystem) Update(dt float64, in MotionInput) {
	s.vetoCount = 0
	agents := collectAgents(s.entityManager)

	for i := range agents {
		s.updateAgent(agents, i, dt, in)
	}
}

// updateAgent 处理单辆车
func (s *MotionSystem) updateAgent(agents []agentRef, i int, dt float64, in MotionInput) {
	a := agents[i]
	veh := a.veh
	speedCfg := s.config.Speed

	// 基础速度随限速设置实时变化，当前速度不超过基础速度
	veh.BaseSpeed = BaseSpeed(s.config, in.SpeedLimit, veh.Class)
	if veh.Speed > veh.BaseSpeed {
		veh.Speed = veh.BaseSpeed
	}

	desired := veh.BaseSpeed
	if in.SlowZoneStrength > 0 && s.network.InSlowZone(a.pos.X, a.pos.Y) {
		desired *= 1 - in.SlowZoneStrength
	}

	// 跟车
	_, gap := findLaneLeader(agents, i, s.network.LaneWidth/2)
	minGap := veh.Size * s.config.Following.MinGapFactor
	slowGap := veh.Size * s.config.Following.SlowGapFactor

	switch {
	case gap < minGap:
		veh.Speed = 0
	case gap < slowGap:
		veh.Speed = approach(veh.Speed, speedCfg.SlowFactor*desired, speedCfg.Accel, speedCfg.Decel, dt)
	default:
		veh.Speed = approach(veh.Speed, desired, speedCfg.Accel, speedCfg.Decel, dt)
	}

	// 随机刹车
	if in.RNG != nil && in.SlowdownRate > 0 && veh.Speed > speedCfg.RandomBrakeMinSpeed &&
		in.RNG.Float64() < in.SlowdownRate*dt {
		veh.Speed = math.Max(0, veh.Speed-speedCfg.RandomBrakeDecel*dt)
	}

	s.applySignal(a, in.Signal)

	s.move(agents, i, dt)
}

// applySignal 信号管控：车辆位于路口管控区且所在轴向被禁行时停车
//
// 开启 ClearanceOnRed 时，绿灯期间驶入管控区的车辆在红灯后仍可驶离，
// 否则管控区内的车辆一律停车。环岛内的车辆不受信号管控。
func (s *MotionSystem) applySignal(a agentRef, signal SignalState) {
	if !s.network.Signalized || a.ring != nil {
		return
	}

	veh := a.veh
	if !s.network.InJunctionBox(a.pos.X, a.pos.Y, s.config.Signal.JunctionHalfSize) {
		veh.ClearingJunction = false
		return
	}

	if signal.Allows(veh.Orientation) {
		veh.ClearingJunction = true
		return
	}

	if s.config.Signal.ClearanceOnRed && veh.ClearingJunction {
		return
	}
	veh.Speed = 0
}

// move 计算候选位置，通过碰撞检测后提交
func (s *MotionSystem) move(agents []agentRef, i int, dt float64) {
	a := agents[i]
	veh := a.veh
	geom := s.network.Roundabout

	switch {
	case a.ring != nil:
		m := nextRingMove(geom, a.ring, veh.Speed, dt, s.config.Roundabout.MaxAngularStep)
		if s.vetoed(agents, i, m.x, m.y) {
			s.hold(a)
			return
		}
		a.pos.X, a.pos.Y = m.x, m.y
		veh.VX, veh.VY = m.vx, m.vy
		if m.exited {
			s.exitRing(agents, i)
			return
		}
		a.ring.Angle = m.angle
		a.ring.Remaining -= m.sweep

	case inMergeBand(geom, a, s.config.Roundabout.Band):
		rc := newRingState(geom, a)
		x, y := ringPoint(geom, rc.Radius, rc.Angle)
		if s.vetoed(agents, i, x, y) {
			s.hold(a)
			return
		}
		a.pos.X, a.pos.Y = x, y
		veh.VX, veh.VY = ringTangent(rc.Angle, rc.Sign)
		ecs.AddComponent(s.entityManager, a.id, rc)
		agents[i].ring = rc
		log.Printf("[MotionSystem] Entity %d merged into ring (r=%.1f, sign=%+.0f)", a.id, rc.Radius, rc.Sign)

	default:
		if veh.Speed == 0 {
			return
		}
		x := a.pos.X + veh.VX*veh.Speed*dt
		y := a.pos.Y + veh.VY*veh.Speed*dt
		if s.vetoed(agents, i, x, y) {
			s.hold(a)
			return
		}
		a.pos.X, a.pos.Y = x, y
	}
}

// exitRing 驶出环岛：恢复原速度向量，此后不再汇入
func (s *MotionSystem) exitRing(agents []agentRef, i int) {
	a := agents[i]
	a.veh.RingDone = true
	ecs.RemoveComponent[*components.RoundaboutComponent](s.entityManager, a.id)
	agents[i].ring = nil
	log.Printf("[MotionSystem] Entity %d left ring at (%.1f, %.1f)", a.id, a.pos.X, a.pos.Y)
}

// hold 移动被否决：原地不动，速度归零
func (s *MotionSystem) hold(a agentRef) {
	a.veh.Speed = 0
	s.vetoCount++
}

// vetoed 碰撞否决：候选位置与任一其他车辆当前位置的距离小于阈值时否决
// 阈值为 collision.scale × (两车尺寸之和)
func (s *MotionSystem) vetoed(agents []agentRef, self int, x, y float64) bool {
	size := agents[self].veh.Size
	scale := s.config.Collision.Scale

	for j, other := range agents {
		if j == self {
			continue
		}
		threshold := scale * (size + other.veh.Size)
		dx := x - other.pos.X
		dy := y - other.pos.Y
		if dx*dx+dy*dy < threshold*threshold {
			return true
		}
	}
	return false
}
