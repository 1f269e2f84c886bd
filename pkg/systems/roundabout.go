package systems

import (
	"math"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/network"
)

// ringMove 环岛内一次移动的候选结果
type ringMove struct {
	x, y   float64
	vx, vy float64
	angle  float64
	sweep  float64 // 本次转过的角度
	exited bool
}

// inMergeBand 判断车辆是否到达所在车道对应环道的汇入带
func inMergeBand(geom *network.RoundaboutGeometry, a agentRef, band float64) bool {
	if geom == nil || a.ring != nil || a.veh.RingDone || a.veh.Lane >= geom.Lanes {
		return false
	}
	dist := math.Hypot(a.pos.X-geom.CenterX, a.pos.Y-geom.CenterY)
	return math.Abs(dist-geom.LaneRadius(a.veh.Lane)) <= band
}

// newRingState 计算汇入环岛时的状态：吸附到环道上的极角、推进方向和出口
//
// 推进方向由入口位置与原速度的叉积决定，出口是入口关于环心
// 在原车道中心线上的镜像点，驶出后车辆回到原车道。
func newRingState(geom *network.RoundaboutGeometry, a agentRef) *components.RoundaboutComponent {
	r := geom.LaneRadius(a.veh.Lane)
	rx := a.pos.X - geom.CenterX
	ry := a.pos.Y - geom.CenterY
	vx, vy := a.veh.VX, a.veh.VY

	sign := -1.0
	if cross := rx*vy - ry*vx; cross > 0 {
		sign = 1.0
	}

	// 出口点 P + 2((C-P)·v)v
	proj := -rx*vx - ry*vy
	exitX := a.pos.X + 2*proj*vx
	exitY := a.pos.Y + 2*proj*vy

	angle := math.Atan2(ry, rx)
	exitAngle := math.Atan2(exitY-geom.CenterY, exitX-geom.CenterX)

	return &components.RoundaboutComponent{
		Radius:    r,
		Angle:     angle,
		Sign:      sign,
		Remaining: normalizeAngle(sign * (exitAngle - angle)),
		ExitX:     exitX,
		ExitY:     exitY,
		ExitVX:    vx,
		ExitVY:    vy,
	}
}

// ringPoint 返回环道上指定极角的位置
func ringPoint(geom *network.RoundaboutGeometry, radius, angle float64) (float64, float64) {
	return geom.CenterX + radius*math.Cos(angle), geom.CenterY + radius*math.Sin(angle)
}

// ringTangent 返回推进方向上的单位切向量
func ringTangent(angle, sign float64) (float64, float64) {
	return -sign * math.Sin(angle), sign * math.Cos(angle)
}

// nextRingMove 计算环岛内的下一步
// 角步长为弧长换算的角度，不超过 maxStep，也不越过出口
func nextRingMove(geom *network.RoundaboutGeometry, rc *components.RoundaboutComponent, speed, dt, maxStep float64) ringMove {
	step := math.Min(speed*dt/rc.Radius, maxStep)
	if step >= rc.Remaining {
		return ringMove{
			x: rc.ExitX, y: rc.ExitY,
			vx: rc.ExitVX, vy: rc.ExitVY,
			sweep:  rc.Remaining,
			exited: true,
		}
	}

	angle := rc.Angle + rc.Sign*step
	x, y := ringPoint(geom, rc.Radius, angle)
	vx, vy := ringTangent(angle, rc.Sign)
	return ringMove{x: x, y: y, vx: vx, vy: vy, angle: angle, sweep: step}
}

// normalizeAngle 将角度规范到 [0, 2π)
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
