package systems

import (
	"image/color"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/network"
	"github.com/decker502/trafficsim/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 渲染配色
var (
	colorGround      = color.RGBA{R: 46, G: 70, B: 46, A: 255}
	colorRoad        = color.RGBA{R: 60, G: 60, B: 66, A: 255}
	colorLaneMark    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorCenterLine  = color.RGBA{R: 230, G: 190, B: 40, A: 255}
	colorIsland      = color.RGBA{R: 70, G: 110, B: 60, A: 255}
	colorSignalGreen = color.RGBA{R: 40, G: 220, B: 80, A: 255}
	colorSignalRed   = color.RGBA{R: 230, G: 50, B: 40, A: 255}
	colorCar         = color.RGBA{R: 80, G: 160, B: 255, A: 255}
	colorTransit     = color.RGBA{R: 255, G: 170, B: 40, A: 255}
	colorStopped     = color.RGBA{R: 240, G: 70, B: 70, A: 255}
	colorSlowZone    = color.RGBA{R: 120, G: 30, B: 30, A: 90}
)

// RenderSystem 绘制路网、信号灯和车辆
// 只读取组件状态，不参与任何仿真决策
type RenderSystem struct {
	entityManager *ecs.EntityManager
	config        *config.SimulationConfig
	network       *network.RoadNetwork
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager, cfg *config.SimulationConfig, net *network.RoadNetwork) *RenderSystem {
	return &RenderSystem{
		entityManager: em,
		config:        cfg,
		network:       net,
	}
}

// SetNetwork 切换路网（切换布局时调用）
func (s *RenderSystem) SetNetwork(net *network.RoadNetwork) {
	s.network = net
}

// Draw 绘制一帧
func (s *RenderSystem) Draw(screen *ebiten.Image, signal SignalState) {
	screen.Fill(colorGround)
	s.drawRoads(screen)
	s.drawRoundabout(screen)
	s.drawSlowZone(screen)
	s.drawSignals(screen, signal)
	s.drawVehicles(screen)
}

// drawSlowZone 半透明标出瓶颈区
func (s *RenderSystem) drawSlowZone(screen *ebiten.Image) {
	z := s.network.SlowZone
	if z == nil {
		return
	}
	vector.DrawFilledRect(screen, f32(z.MinX), f32(z.MinY), f32(z.MaxX-z.MinX), f32(z.MaxY-z.MinY), colorSlowZone, false)
}

// drawRoads 绘制路段和车道线
func (s *RenderSystem) drawRoads(screen *ebiten.Image) {
	w := s.network.LaneWidth
	for _, seg := range s.network.Segments {
		half := float64(seg.Lanes) * w
		if seg.Orientation == types.Horizontal {
			vector.DrawFilledRect(screen, f32(seg.Start), f32(seg.Center-half), f32(seg.End-seg.Start), f32(2*half), colorRoad, false)
		} else {
			vector.DrawFilledRect(screen, f32(seg.Center-half), f32(seg.Start), f32(2*half), f32(seg.End-seg.Start), colorRoad, false)
		}
	}

	// 车道线画在路面之上，避免被交叉路段覆盖
	for _, seg := range s.network.Segments {
		for lane := 1; lane < seg.Lanes; lane++ {
			for _, dir := range []types.Direction{types.Forward, types.Backward} {
				off := seg.Center + float64(dir)*float64(lane)*w
				s.drawAxisLine(screen, seg, off, 1, colorLaneMark)
			}
		}
		s.drawAxisLine(screen, seg, seg.Center, 2, colorCenterLine)
	}
}

func (s *RenderSystem) drawAxisLine(screen *ebiten.Image, seg network.RoadSegment, across float64, width float32, clr color.Color) {
	if seg.Orientation == types.Horizontal {
		vector.StrokeLine(screen, f32(seg.Start), f32(across), f32(seg.End), f32(across), width, clr, false)
		return
	}
	vector.StrokeLine(screen, f32(across), f32(seg.Start), f32(across), f32(seg.End), width, clr, false)
}

// drawRoundabout 绘制环岛中心岛和环道
func (s *RenderSystem) drawRoundabout(screen *ebiten.Image) {
	geom := s.network.Roundabout
	if geom == nil {
		return
	}
	cx, cy := f32(geom.CenterX), f32(geom.CenterY)
	outer := geom.LaneRadius(geom.Lanes-1) + geom.LaneSpacing/2
	inner := geom.Radius - geom.LaneSpacing/2

	vector.DrawFilledCircle(screen, cx, cy, f32(outer), colorRoad, true)
	vector.DrawFilledCircle(screen, cx, cy, f32(inner), colorIsland, true)
	for lane := 1; lane < geom.Lanes; lane++ {
		r := geom.LaneRadius(lane) - geom.LaneSpacing/2
		vector.StrokeCircle(screen, cx, cy, f32(r), 1, colorLaneMark, true)
	}
}

// drawSignals 在每个路口的四角绘制信号灯
func (s *RenderSystem) drawSignals(screen *ebiten.Image, signal SignalState) {
	if !s.network.Signalized {
		return
	}
	half := s.config.Signal.JunctionHalfSize
	for _, j := range s.network.Junctions {
		hClr, vClr := signalColor(signal.HorizontalAllowed), signalColor(signal.VerticalAllowed)
		// 水平方向的灯在左右两侧，垂直方向的灯在上下两侧
		vector.DrawFilledCircle(screen, f32(j.X-half), f32(j.Y-half), 5, hClr, true)
		vector.DrawFilledCircle(screen, f32(j.X+half), f32(j.Y+half), 5, hClr, true)
		vector.DrawFilledCircle(screen, f32(j.X+half), f32(j.Y-half), 5, vClr, true)
		vector.DrawFilledCircle(screen, f32(j.X-half), f32(j.Y+half), 5, vClr, true)
	}
}

// drawVehicles 绘制所有车辆，停止的车辆以红色描边
func (s *RenderSystem) drawVehicles(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.VehicleComponent](s.entityManager)
	for _, id := range entities {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		veh, _ := ecs.GetComponent[*components.VehicleComponent](s.entityManager, id)

		clr := colorCar
		if veh.Class == types.VehicleTransit {
			clr = colorTransit
		}
		vector.DrawFilledCircle(screen, f32(pos.X), f32(pos.Y), f32(veh.Size), clr, true)
		if veh.Speed == 0 {
			vector.StrokeCircle(screen, f32(pos.X), f32(pos.Y), f32(veh.Size), 1.5, colorStopped, true)
		}

		// 车头方向
		hx := pos.X + veh.VX*veh.Size
		hy := pos.Y + veh.VY*veh.Size
		vector.StrokeLine(screen, f32(pos.X), f32(pos.Y), f32(hx), f32(hy), 1.5, colorLaneMark, true)
	}
}

func signalColor(allowed bool) color.Color {
	if allowed {
		return colorSignalGreen
	}
	return colorSignalRed
}

func f32(v float64) float32 {
	return float32(v)
}
