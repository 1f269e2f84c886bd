package components

import "github.com/decker502/trafficsim/pkg/types"

// VehicleComponent 车辆运动状态
//
// 速度向量 (VX, VY) 为单位向量，只有在环岛内才会改变；
// 车辆不会变道，也不会改变 Orientation/Direction/Lane。
type VehicleComponent struct {
	VX, VY      float64           // 单位速度向量
	Orientation types.Orientation // 所在路段的轴向
	Direction   types.Direction   // 沿轴的行驶方向
	Lane        int               // 车道号（0 为最内侧）
	LaneCount   int               // 该方向车道总数

	Speed     float64 // 当前速度，范围 [0, BaseSpeed]
	BaseSpeed float64 // 由限速换算并按类别缩放后的基础速度
	Size      float64 // 尺寸（碰撞半径代理）

	Class types.VehicleClass

	// ClearingJunction 绿灯期间驶入路口管控区，红灯时允许继续驶离
	ClearingJunction bool
	// RingDone 已经通过环岛，不会再次汇入
	RingDone bool
}
