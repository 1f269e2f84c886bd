// Package network 描述静态路网：路段、环岛几何、可见区域和信号管控区
//
// 路网在布局选定后只读，切换布局时整体替换
package network

import (
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/types"
)

// RoadSegment 有向路段（双向行驶，每个方向 Lanes 条车道）
type RoadSegment struct {
	Orientation types.Orientation
	Center      float64 // 中心线坐标（水平路段为 Y，垂直路段为 X）
	Start       float64 // 沿行驶轴的跨度起点
	End         float64 // 沿行驶轴的跨度终点
	Lanes       int
}

// RoundaboutGeometry 环岛几何
type RoundaboutGeometry struct {
	CenterX, CenterY float64
	Radius           float64 // 最内侧车道半径
	Lanes            int
	LaneSpacing      float64
}

// LaneRadius 返回指定车道的环道半径
func (g *RoundaboutGeometry) LaneRadius(lane int) float64 {
	return g.Radius + float64(lane)*g.LaneSpacing
}

// Rect 轴对齐矩形
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains 判断点是否在矩形内（含边界）
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Point 坐标点
type Point struct {
	X, Y float64
}

// RoadNetwork 一个布局对应的完整静态路网
type RoadNetwork struct {
	Name       types.LayoutName
	Segments   []RoadSegment
	Roundabout *RoundaboutGeometry // 非环岛布局为 nil
	Junctions  []Point             // 路口中心
	Signalized bool
	Bounds     Rect
	SlowZone   *Rect // 瓶颈区，区内目标速度按强度降低；可为 nil
	LaneWidth  float64
}

// BuildLayout 根据布局定义构建路网
// 定义已在加载目录时校验过，这里没有错误路径
func BuildLayout(def config.LayoutDef) *RoadNetwork {
	net := &RoadNetwork{
		Name:       types.LayoutName(def.Name),
		Signalized: def.Signalized,
		LaneWidth:  def.LaneWidth,
		Bounds: Rect{
			MinX: def.Bounds.MinX,
			MinY: def.Bounds.MinY,
			MaxX: def.Bounds.MaxX,
			MaxY: def.Bounds.MaxY,
		},
		Segments:  make([]RoadSegment, 0, len(def.Segments)),
		Junctions: make([]Point, 0, len(def.Junctions)),
	}

	for _, seg := range def.Segments {
		// 方向字符串已校验，忽略错误
		orientation, _ := types.ParseOrientation(seg.Orientation)
		net.Segments = append(net.Segments, RoadSegment{
			Orientation: orientation,
			Center:      seg.Center,
			Start:       seg.Start,
			End:         seg.End,
			Lanes:       seg.Lanes,
		})
	}

	for _, j := range def.Junctions {
		net.Junctions = append(net.Junctions, Point{X: j.X, Y: j.Y})
	}

	if z := def.SlowZone; z != nil {
		net.SlowZone = &Rect{MinX: z.MinX, MinY: z.MinY, MaxX: z.MaxX, MaxY: z.MaxY}
	}

	if r := def.Roundabout; r != nil {
		net.Roundabout = &RoundaboutGeometry{
			CenterX:     r.CenterX,
			CenterY:     r.CenterY,
			Radius:      r.Radius,
			Lanes:       r.Lanes,
			LaneSpacing: r.LaneSpacing,
		}
	}

	return net
}

// LaneOffset 返回车道中心线相对路段中心线的垂直偏移
//
// 右侧通行：水平路段上向 +X 行驶的车道在中心线下方（+Y），
// 垂直路段上向 +Y 行驶的车道在中心线左侧（-X）。
func (n *RoadNetwork) LaneOffset(o types.Orientation, dir types.Direction, lane int) float64 {
	offset := (float64(lane) + 0.5) * n.LaneWidth
	if o == types.Horizontal {
		return float64(dir) * offset
	}
	return -float64(dir) * offset
}

// OpenEnds 判断路段两端是否位于可见区域边缘（车辆可以从该端驶入）
func (n *RoadNetwork) OpenEnds(seg RoadSegment) (startOpen, endOpen bool) {
	if seg.Orientation == types.Horizontal {
		return seg.Start <= n.Bounds.MinX, seg.End >= n.Bounds.MaxX
	}
	return seg.Start <= n.Bounds.MinY, seg.End >= n.Bounds.MaxY
}

// InSlowZone 判断点是否在瓶颈区内；布局没有瓶颈区时恒为 false
func (n *RoadNetwork) InSlowZone(x, y float64) bool {
	return n.SlowZone != nil && n.SlowZone.Contains(x, y)
}

// Contains 判断点是否在可见区域内
func (n *RoadNetwork) Contains(x, y float64) bool {
	return n.Bounds.Contains(x, y)
}

// InJunctionBox 判断点是否在任一路口管控区内，halfSize 为管控区半边长
func (n *RoadNetwork) InJunctionBox(x, y, halfSize float64) bool {
	for _, j := range n.Junctions {
		if abs(x-j.X) <= halfSize && abs(y-j.Y) <= halfSize {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
