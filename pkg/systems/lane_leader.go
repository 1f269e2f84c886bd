package systems

import "math"

// findLaneLeader 查找 agents[self] 所在车道上最近的前车
//
// 同车道指轴向、行驶方向、车道号都相同，且车道中心线相差不超过 laneTolerance
// （干道布局中多条同向垂直路段共用车道号）。环岛内的车辆既没有前车也不充当前车。
//
// 位置取 tick 开始时的快照。
// 返回前车下标和车间距（中心距离减去两车尺寸）；没有前车时返回 -1 和 +Inf。
// agents 按实体 ID 升序，距离相同时保留先出现的，即 ID 较小的一方。
func findLaneLeader(agents []agentRef, self int, laneTolerance float64) (int, float64) {
	me := agents[self]
	if me.startOnRing {
		return -1, math.Inf(1)
	}

	leader := -1
	best := math.Inf(1)
	dir := float64(me.veh.Direction)

	for i, other := range agents {
		if i == self || other.startOnRing {
			continue
		}
		if other.veh.Orientation != me.veh.Orientation ||
			other.veh.Direction != me.veh.Direction ||
			other.veh.Lane != me.veh.Lane {
			continue
		}
		if math.Abs(other.across()-me.across()) > laneTolerance {
			continue
		}

		ahead := (other.along() - me.along()) * dir
		if ahead <= 0 {
			continue
		}
		if ahead < best {
			best = ahead
			leader = i
		}
	}

	if leader < 0 {
		return -1, math.Inf(1)
	}
	return leader, best - me.veh.Size - agents[leader].veh.Size
}
