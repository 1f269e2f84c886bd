package network

import "github.com/decker502/trafficsim/pkg/types"

// SpawnPoint 车辆生成点
// 由路段、车道和行驶方向确定，每个路段恰好 2 × Lanes 个
type SpawnPoint struct {
	X, Y        float64 // 入口坐标
	VX, VY      float64 // 单位速度向量
	Orientation types.Orientation
	Direction   types.Direction
	Lane        int
	LaneCount   int
}

// BuildSpawnPoints 枚举路网的全部生成点
// 顺序固定：路段 → 车道 → 正向/反向，同一路网多次调用结果一致
//
// 生成点只位于可见区域边缘的开放端。一端封闭的路段（丁字路口的支路）
// 两个方向的车道都从开放端驶入，每个路段仍然恰好 2 × Lanes 个生成点。
func BuildSpawnPoints(net *RoadNetwork) []SpawnPoint {
	points := make([]SpawnPoint, 0)

	for _, seg := range net.Segments {
		for lane := 0; lane < seg.Lanes; lane++ {
			for _, dir := range []types.Direction{types.Forward, types.Backward} {
				points = append(points, newSpawnPoint(net, seg, lane, dir))
			}
		}
	}

	return points
}

// newSpawnPoint 计算单个生成点
// 正向车道从跨度起点进入，反向车道从跨度终点进入；入口端封闭时改从另一端进入，
// 沿同一条车道中心线向路网内部行驶
func newSpawnPoint(net *RoadNetwork, seg RoadSegment, lane int, dir types.Direction) SpawnPoint {
	startOpen, endOpen := net.OpenEnds(seg)
	across := seg.Center + net.LaneOffset(seg.Orientation, dir, lane)

	travel := dir
	if dir == types.Forward && !startOpen {
		travel = types.Backward
	} else if dir == types.Backward && !endOpen {
		travel = types.Forward
	}

	along := seg.Start
	if travel == types.Backward {
		along = seg.End
	}

	sp := SpawnPoint{
		Orientation: seg.Orientation,
		Direction:   travel,
		Lane:        lane,
		LaneCount:   seg.Lanes,
	}

	if seg.Orientation == types.Horizontal {
		sp.X, sp.Y = along, across
		sp.VX = float64(travel)
	} else {
		sp.X, sp.Y = across, along
		sp.VY = float64(travel)
	}

	return sp
}
