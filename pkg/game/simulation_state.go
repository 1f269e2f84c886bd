package game

import (
	"math/rand"

	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/systems"
)

// SimulationState 仿真的全部可变状态
// 只由 Simulation 持有和修改；各系统通过同一个 EntityManager 和随机源读写，不保留副本
type SimulationState struct {
	Entities *ecs.EntityManager // 存活车辆

	Tick          int // 单调递增的 tick 计数
	LastSpawnTick int // 最近一次成功生成的 tick
	ManualPhase   int // 手动信号相位计数

	RNG *rand.Rand // 生成和随机刹车共用的随机源

	Spawned int // 累计生成数量
	Culled  int // 累计清理数量
}

// newSimulationState 创建空状态
func newSimulationState(seed int64) *SimulationState {
	return &SimulationState{
		Entities:      ecs.NewEntityManager(),
		LastSpawnTick: systems.NeverSpawned,
		RNG:           rand.New(rand.NewSource(seed)),
	}
}

// clear 删除所有车辆并清零计数器，随机源继续使用
func (s *SimulationState) clear() {
	s.Entities.Clear()
	s.Tick = 0
	s.LastSpawnTick = systems.NeverSpawned
	s.ManualPhase = 0
	s.Spawned = 0
	s.Culled = 0
}
