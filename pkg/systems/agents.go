package systems

import (
	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/types"
)

// agentRef 一次更新中对单个车辆组件的引用
//
// 组件为指针，逐个提交的移动会立即对后续车辆可见（碰撞检测使用）；
// 前车查询使用 tick 开始时的位置快照，结果与处理顺序无关。
type agentRef struct {
	id   ecs.EntityID
	pos  *components.PositionComponent
	veh  *components.VehicleComponent
	ring *components.RoundaboutComponent // 不在环岛内时为 nil

	startX, startY float64 // tick 开始时的位置
	startOnRing    bool    // tick 开始时是否在环岛内
}

// collectAgents 按实体 ID 升序收集全部车辆
func collectAgents(em *ecs.EntityManager) []agentRef {
	ids := ecs.GetEntitiesWith2[*components.PositionComponent, *components.VehicleComponent](em)
	agents := make([]agentRef, 0, len(ids))
	for _, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		veh, _ := ecs.GetComponent[*components.VehicleComponent](em, id)
		ring, _ := ecs.GetComponent[*components.RoundaboutComponent](em, id)
		agents = append(agents, agentRef{
			id:          id,
			pos:         pos,
			veh:         veh,
			ring:        ring,
			startX:      pos.X,
			startY:      pos.Y,
			startOnRing: ring != nil,
		})
	}
	return agents
}

// along tick 开始时沿行驶轴的坐标
func (a agentRef) along() float64 {
	if a.veh.Orientation == types.Horizontal {
		return a.startX
	}
	return a.startY
}

// across tick 开始时垂直于行驶轴的坐标（车道中心线位置）
func (a agentRef) across() float64 {
	if a.veh.Orientation == types.Horizontal {
		return a.startY
	}
	return a.startX
}
