package app

import (
	"fmt"
	"image/color"

	"github.com/decker502/trafficsim/pkg/game"
	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	hudX          = 8
	hudY          = 8
	hudLineHeight = 16
)

var (
	hudBackground = color.RGBA{R: 0, G: 0, B: 0, A: 160}
	hudText       = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// hud 左上角的统计和控制信息
type hud struct {
	face text.Face
}

func newHUD() *hud {
	return &hud{face: text.NewGoXFace(bitmapfont.Face)}
}

// Draw 绘制统计面板
func (h *hud) Draw(screen *ebiten.Image, sim *game.Simulation) {
	lines := hudLines(sim)

	width := float32(0)
	for _, line := range lines {
		w, _ := text.Measure(line, h.face, hudLineHeight)
		width = max(width, float32(w))
	}
	vector.DrawFilledRect(screen, hudX-4, hudY-4, width+8, float32(len(lines)*hudLineHeight)+8, hudBackground, false)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(hudX, float64(hudY+i*hudLineHeight))
		op.ColorScale.ScaleWithColor(hudText)
		text.Draw(screen, line, h.face, op)
	}
}

// hudLines 生成面板文本
func hudLines(sim *game.Simulation) []string {
	c := sim.Controls()
	stats := sim.Stats()
	signal := sim.Signal()

	state := "running"
	if sim.Paused() {
		state = "paused"
	}
	transit := "off"
	if c.TransitEnabled {
		transit = "on"
	}

	return []string{
		fmt.Sprintf("layout: %s (1-4)   %s (space)", c.Layout, state),
		fmt.Sprintf("signal: %s (S)  H:%s V:%s (N)", c.SignalMode, greenRed(signal.HorizontalAllowed), greenRed(signal.VerticalAllowed)),
		fmt.Sprintf("density: %.0f (left/right)  limit: %.0f (up/down)  transit: %s (T)", c.Density, c.SpeedLimit, transit),
		fmt.Sprintf("bottleneck: %.1f ([/])  random brake: %.1f/s (-/=)", c.SlowZoneStrength, c.SlowdownRate),
		fmt.Sprintf("tick: %d  vehicles: %d  avg speed: %.1f  slow: %d", stats.Tick, stats.Count, stats.AverageSpeed, stats.SlowCount),
		fmt.Sprintf("spawned: %d  culled: %d", stats.Spawned, stats.Culled),
	}
}

func greenRed(allowed bool) string {
	if allowed {
		return "green"
	}
	return "red"
}
