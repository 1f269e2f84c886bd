package entities

import (
	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/network"
	"github.com/decker502/trafficsim/pkg/types"
)

// VehicleParams 创建车辆所需的类别参数
type VehicleParams struct {
	Class     types.VehicleClass
	Size      float64 // 尺寸（碰撞半径代理）
	BaseSpeed float64 // 基础速度（已按类别缩放）
	Speed     float64 // 初始速度
}

// NewVehicleEntity 在生成点创建一个车辆实体
// 参数:
//   - em: EntityManager 实例
//   - sp: 生成点（位置、方向、车道）
//   - params: 车辆类别参数
//
// 返回: 创建的实体ID
func NewVehicleEntity(em *ecs.EntityManager, sp network.SpawnPoint, params VehicleParams) ecs.EntityID {
	id := em.CreateEntity()

	ecs.AddComponent(em, id, &components.PositionComponent{
		X: sp.X,
		Y: sp.Y,
	})

	ecs.AddComponent(em, id, &components.VehicleComponent{
		VX:          sp.VX,
		VY:          sp.VY,
		Orientation: sp.Orientation,
		Direction:   sp.Direction,
		Lane:        sp.Lane,
		LaneCount:   sp.LaneCount,
		Speed:       params.Speed,
		BaseSpeed:   params.BaseSpeed,
		Size:        params.Size,
		Class:       params.Class,
	})

	ecs.AddComponent(em, id, &components.CollisionComponent{
		Radius: params.Size,
	})

	return id
}
