package systems

import (
	"math"

	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/types"
)

// BaseSpeed 由限速输入换算车辆基础速度
// 限速乘以换算系数后在极速上限处饱和，再按车辆类别缩放
func BaseSpeed(cfg *config.SimulationConfig, speedLimit float64, class types.VehicleClass) float64 {
	if speedLimit < 0 {
		speedLimit = 0
	}
	v := math.Min(speedLimit*cfg.Speed.PerLimitUnit, cfg.Speed.Cap)
	return v * cfg.Vehicles.ForClass(class).SpeedFactor
}

// approach 以有界加/减速度让速度趋近目标值
func approach(current, target, accel, decel, dt float64) float64 {
	if current < target {
		return math.Min(target, current+accel*dt)
	}
	return math.Max(target, current-decel*dt)
}
