package systems

import (
	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/samber/lo"
)

// SpeedStats 当前车辆的速度统计
type SpeedStats struct {
	Count        int
	AverageSpeed float64 // 实际速度的平均值，无车辆时为 0
	SlowCount    int     // 速度低于慢车阈值的车辆数
}

// CollectSpeedStats 统计所有车辆的速度
func CollectSpeedStats(em *ecs.EntityManager, slowThreshold float64) SpeedStats {
	ids := ecs.GetEntitiesWith1[*components.VehicleComponent](em)
	vehicles := lo.FilterMap(ids, func(id ecs.EntityID, _ int) (*components.VehicleComponent, bool) {
		return ecs.GetComponent[*components.VehicleComponent](em, id)
	})

	stats := SpeedStats{Count: len(vehicles)}
	if stats.Count == 0 {
		return stats
	}

	total := lo.SumBy(vehicles, func(v *components.VehicleComponent) float64 {
		return v.Speed
	})
	stats.AverageSpeed = total / float64(stats.Count)
	stats.SlowCount = lo.CountBy(vehicles, func(v *components.VehicleComponent) bool {
		return v.Speed < slowThreshold
	})
	return stats
}
