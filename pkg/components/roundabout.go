package components

// RoundaboutComponent 车辆在环岛内行驶时附加的状态
// 驶出环岛时移除
type RoundaboutComponent struct {
	Radius    float64 // 所在环道半径
	Angle     float64 // 当前极角（弧度，画布坐标系，Y 轴向下）
	Sign      float64 // 角度推进方向：+1 或 -1
	Remaining float64 // 距离出口还需转过的角度（弧度）

	// 出口点位于原车道中心线上，驶出后恢复原速度向量
	ExitX, ExitY float64
	ExitVX       float64
	ExitVY       float64
}
