package systems

import (
	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/network"
)

// CullSystem 移除驶出可见区域的车辆，这是车辆唯一的销毁途径
type CullSystem struct {
	entityManager *ecs.EntityManager
	network       *network.RoadNetwork
}

// NewCullSystem 创建清理系统
func NewCullSystem(em *ecs.EntityManager, net *network.RoadNetwork) *CullSystem {
	return &CullSystem{
		entityManager: em,
		network:       net,
	}
}

// SetNetwork 切换路网（切换布局时调用）
func (s *CullSystem) SetNetwork(net *network.RoadNetwork) {
	s.network = net
}

// Update 标记并删除所有位于可见区域之外的车辆
// 返回: 本次删除的车辆数量
func (s *CullSystem) Update() int {
	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.VehicleComponent](s.entityManager)

	for _, id := range entities {
		pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		if !ok {
			continue
		}

		if !s.network.Contains(pos.X, pos.Y) {
			s.entityManager.DestroyEntity(id)
		}
	}

	return s.entityManager.RemoveMarkedEntities()
}
