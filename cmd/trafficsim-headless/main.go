// trafficsim-headless 无窗口运行仿真并输出 YAML 报告
//
// 用法（在项目根目录执行）：
//
//	go run ./cmd/trafficsim-headless --layout roundabout --ticks 3600 --sample 600
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	verbose     = flag.Bool("verbose", false, "显示详细调试信息")
	configPath  = flag.String("config", "data/simulation.yaml", "仿真参数文件路径")
	catalogPath = flag.String("layouts", "data/layouts.yaml", "布局目录文件路径")
	layout      = flag.String("layout", "", "布局名称（默认取仿真参数中的默认值）")
	signalMode  = flag.String("signal", "", "信号模式：off, fixed, manual")
	density     = flag.Float64("density", 0, "车流密度（0 表示使用默认值）")
	speedLimit  = flag.Float64("speed-limit", 0, "限速（0 表示使用默认值）")
	noTransit   = flag.Bool("no-transit", false, "不生成公交")
	slowZone    = flag.Float64("slow-zone", 0, "瓶颈区减速强度（未指定时使用默认值）")
	slowdown    = flag.Float64("slowdown-rate", 0, "随机刹车每秒概率（未指定时使用默认值）")
	seed        = flag.Int64("seed", 1, "随机种子")
	ticks       = flag.Int("ticks", 3600, "运行的 tick 数")
	sample      = flag.Int("sample", 600, "统计采样间隔（tick）")
	outPath     = flag.String("out", "", "报告输出文件（默认标准输出）")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	opts := options{
		ConfigPath:  *configPath,
		CatalogPath: *catalogPath,
		Layout:      *layout,
		SignalMode:  *signalMode,
		Density:     *density,
		SpeedLimit:  *speedLimit,
		NoTransit:   *noTransit,
		Seed:        *seed,
		Ticks:       *ticks,
		Sample:      *sample,
	}
	// 0 是有效取值，只应用显式给出的参数
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "slow-zone":
			opts.SlowZoneStrength = slowZone
		case "slowdown-rate":
			opts.SlowdownRate = slowdown
		}
	})

	report, err := runHeadless(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "运行失败: %v\n", err)
		os.Exit(1)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "报告序列化失败: %v\n", err)
		os.Exit(1)
	}

	if *outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "写入报告失败: %v\n", err)
		os.Exit(1)
	}
}
