package main

import (
	"flag"
	"log"
	"os"

	"github.com/decker502/trafficsim/pkg/app"
	"github.com/decker502/trafficsim/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	layout     = flag.String("layout", "", "启动布局（intersection, roundabout, t-junction, arterial）")
	seed       = flag.Int64("seed", 1, "随机种子")
	configPath = flag.String("config", "", "仿真参数文件路径（默认使用内嵌的 data/simulation.yaml）")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		Layout:     *layout,
		Seed:       *seed,
		ConfigPath: *configPath,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Traffic Simulation")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// 窗口关闭后保存查看器设置
	runErr := ebiten.RunGame(viewer)
	if err := viewer.Shutdown(); err != nil {
		log.Printf("[Main] %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
