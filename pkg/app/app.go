// Package app 提供仿真查看器的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/game"
	"github.com/decker502/trafficsim/pkg/systems"
	"github.com/decker502/trafficsim/pkg/types"
	"github.com/decker502/trafficsim/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 逻辑屏幕尺寸，与布局目录中的可见区域一致
const (
	ScreenWidth  = 800
	ScreenHeight = 600
)

// 每次按键调整的步长
const (
	densityStep    = 2.0
	speedLimitStep = 5.0
	slowStep       = 0.1
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Layout 指定启动布局，为空则使用已保存的设置或默认布局
	Layout string
	// Seed 随机种子
	Seed int64
	// ConfigPath 仿真参数文件路径，为空则使用内嵌的 data/simulation.yaml
	ConfigPath string
}

// App 是查看器的核心包装器，实现 ebiten.Game 接口
type App struct {
	simulation      *game.Simulation
	settingsManager *game.SettingsManager
	renderSystem    *systems.RenderSystem
	hud             *hud
	verbose         bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化查看器
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	simCfg, err := loadSimulationConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("仿真参数加载失败: %w", err)
	}

	catalog, err := config.LoadLayoutCatalog(config.LayoutCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("布局目录加载失败: %w", err)
	}

	sim, err := game.NewSimulation(simCfg, catalog, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("仿真初始化失败: %w", err)
	}

	// gdata 不可用时降级为仅内存设置
	gdataManager, err := utils.OpenStore("trafficsim")
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable: %v (settings will not persist)", err)
		gdataManager = nil
	}
	settingsManager := game.NewSettingsManager(gdataManager, simCfg.Defaults)
	if err := settingsManager.Apply(sim); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	if cfg.Layout != "" {
		layout, err := types.ParseLayoutName(cfg.Layout)
		if err != nil {
			return nil, err
		}
		if err := sim.SetLayout(layout); err != nil {
			return nil, err
		}
	}

	if settingsManager.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	log.Printf("[App] Starting layout: %s", sim.Controls().Layout)

	return &App{
		simulation:      sim,
		settingsManager: settingsManager,
		renderSystem:    systems.NewRenderSystem(sim.EntityManager(), simCfg, sim.Network()),
		hud:             newHUD(),
		verbose:         cfg.Verbose,
	}, nil
}

func loadSimulationConfig(path string) (*config.SimulationConfig, error) {
	if path == "" {
		return config.LoadSimulationConfig(config.SimulationConfigPath)
	}
	return config.LoadSimulationConfigFile(path)
}

// Update 处理输入并推进仿真
// 每个 tick 调用一次（通常每秒 60 次），每次推进一个仿真 tick
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleInput()
	a.simulation.Tick()
	return nil
}

// handleInput 键盘控制
func (a *App) handleInput() {
	sim := a.simulation

	// 1-4 切换布局
	layoutKeys := []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4}
	for i, key := range layoutKeys {
		if i < len(types.AllLayouts) && inpututil.IsKeyJustPressed(key) {
			if err := sim.SetLayout(types.AllLayouts[i]); err != nil {
				log.Printf("[App] Failed to switch layout: %v", err)
			}
		}
	}

	c := sim.Controls()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		sim.SetSignalMode(c.SignalMode.Next())
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		sim.AdvanceManualPhase()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		sim.SetTransitEnabled(!c.TransitEnabled)
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		sim.SetSpeedLimit(min(c.SpeedLimit+speedLimitStep, game.MaxSpeedLimit))
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		sim.SetSpeedLimit(max(c.SpeedLimit-speedLimitStep, game.MinSpeedLimit))
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		sim.SetDensity(min(c.Density+densityStep, game.MaxDensity))
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		sim.SetDensity(max(c.Density-densityStep, game.MinDensity))
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		sim.SetSlowZoneStrength(c.SlowZoneStrength + slowStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		sim.SetSlowZoneStrength(c.SlowZoneStrength - slowStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		sim.SetSlowdownRate(min(c.SlowdownRate+slowStep, game.MaxSlowdownRate))
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		sim.SetSlowdownRate(c.SlowdownRate - slowStep)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if sim.Paused() {
			sim.Resume()
		} else {
			sim.Pause()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		sim.Step()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		sim.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		a.toggleFullscreen()
	}
}

// toggleFullscreen F11 切换全屏
func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settingsManager.SetFullscreen(false)
		return
	}
	ebiten.SetFullscreen(true)
	a.settingsManager.SetFullscreen(true)
}

// Draw 绘制一帧
func (a *App) Draw(screen *ebiten.Image) {
	a.renderSystem.SetNetwork(a.simulation.Network())
	a.renderSystem.Draw(screen, a.simulation.Signal())
	a.hud.Draw(screen, a.simulation)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Shutdown 保存当前控制参数（窗口关闭后调用）
func (a *App) Shutdown() error {
	a.settingsManager.Capture(a.simulation)
	if err := a.settingsManager.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Simulation 返回仿真实例
func (a *App) Simulation() *game.Simulation {
	return a.simulation
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
