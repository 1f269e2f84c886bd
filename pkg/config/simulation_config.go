package config

import (
	"fmt"
	"os"

	"github.com/decker502/trafficsim/pkg/embedded"
	"github.com/decker502/trafficsim/pkg/types"
	"gopkg.in/yaml.v3"
)

// SimulationConfigPath 内嵌仿真参数文件路径
const SimulationConfigPath = "data/simulation.yaml"

// SimulationConfig 仿真数值参数
// 长度单位为像素，速度单位为像素/秒，时间单位为秒
type SimulationConfig struct {
	TimeStep   float64          `yaml:"timeStep"` // 固定步长（秒/tick）
	Speed      SpeedConfig      `yaml:"speed"`
	Following  FollowingConfig  `yaml:"following"`
	Collision  CollisionConfig  `yaml:"collision"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Vehicles   VehiclesConfig   `yaml:"vehicles"`
	Signal     SignalConfig     `yaml:"signal"`
	Roundabout RoundaboutConfig `yaml:"roundabout"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
}

// SpeedConfig 速度相关参数
type SpeedConfig struct {
	PerLimitUnit        float64 `yaml:"perLimitUnit"`        // 限速输入每单位对应的速度
	Cap                 float64 `yaml:"cap"`                 // 极速上限
	SlowFactor          float64 `yaml:"slowFactor"`          // 跟车减速区间的速度系数
	Accel               float64 `yaml:"accel"`               // 最大加速度
	Decel               float64 `yaml:"decel"`               // 最大减速度
	RandomBrakeDecel    float64 `yaml:"randomBrakeDecel"`    // 随机刹车减速度
	RandomBrakeMinSpeed float64 `yaml:"randomBrakeMinSpeed"` // 随机刹车最低触发速度
	SlowSpeedThreshold  float64 `yaml:"slowSpeedThreshold"`  // 慢车统计阈值
}

// FollowingConfig 跟车间距参数（以车辆尺寸为基准）
type FollowingConfig struct {
	MinGapFactor  float64 `yaml:"minGapFactor"`
	SlowGapFactor float64 `yaml:"slowGapFactor"`
}

// CollisionConfig 碰撞判定参数
type CollisionConfig struct {
	Scale float64 `yaml:"scale"`
}

// SpawnConfig 车辆生成参数
type SpawnConfig struct {
	IntervalBase       float64 `yaml:"intervalBase"`       // 生成间隔基数（tick）
	DensityFloor       float64 `yaml:"densityFloor"`       // 密度下限
	TransitProbability float64 `yaml:"transitProbability"` // 公交占比
}

// VehicleClassConfig 单个车辆类别的参数
type VehicleClassConfig struct {
	Size        float64 `yaml:"size"`        // 碰撞半径代理
	SpeedFactor float64 `yaml:"speedFactor"` // 基础速度系数
}

// VehiclesConfig 各车辆类别参数
type VehiclesConfig struct {
	Car     VehicleClassConfig `yaml:"car"`
	Transit VehicleClassConfig `yaml:"transit"`
}

// ForClass 返回指定类别的参数
func (v VehiclesConfig) ForClass(class types.VehicleClass) VehicleClassConfig {
	if class == types.VehicleTransit {
		return v.Transit
	}
	return v.Car
}

// SignalConfig 信号灯参数
type SignalConfig struct {
	CyclePeriod      int     `yaml:"cyclePeriod"`      // 固定周期模式每相位 tick 数
	JunctionHalfSize float64 `yaml:"junctionHalfSize"` // 路口管控区半边长
	ClearanceOnRed   bool    `yaml:"clearanceOnRed"`   // 已驶入路口的车辆红灯时是否继续清空路口
}

// RoundaboutConfig 环岛汇入参数
type RoundaboutConfig struct {
	Band           float64 `yaml:"band"`           // 汇入带宽
	MaxAngularStep float64 `yaml:"maxAngularStep"` // 每 tick 最大角度步长（弧度）
}

// MaxSlowZoneStrength 瓶颈强度上限，强度为 1 时区内目标速度为零，车流永久停滞
const MaxSlowZoneStrength = 0.9

// DefaultsConfig 启动时的默认控制参数
type DefaultsConfig struct {
	Layout           string  `yaml:"layout"`
	SignalMode       string  `yaml:"signalMode"`
	Density          float64 `yaml:"density"`
	SpeedLimit       float64 `yaml:"speedLimit"`
	TransitEnabled   bool    `yaml:"transitEnabled"`
	SlowZoneStrength float64 `yaml:"slowZoneStrength"` // 瓶颈区减速强度，区内目标速度 = 基础速度 × (1 - 强度)
	SlowdownRate     float64 `yaml:"slowdownRate"`     // 随机刹车事件的每秒概率
}

// DefaultSimulationConfig 返回内置默认参数，与 data/simulation.yaml 一致
func DefaultSimulationConfig() *SimulationConfig {
	return &SimulationConfig{
		TimeStep: 1.0 / 60.0,
		Speed: SpeedConfig{
			PerLimitUnit:        2.0,
			Cap:                 160,
			SlowFactor:          0.35,
			Accel:               120,
			Decel:               240,
			RandomBrakeDecel:    160,
			RandomBrakeMinSpeed: 20,
			SlowSpeedThreshold:  30,
		},
		Following: FollowingConfig{
			MinGapFactor:  1.5,
			SlowGapFactor: 5.0,
		},
		Collision: CollisionConfig{Scale: 1.0},
		Spawn: SpawnConfig{
			IntervalBase:       600,
			DensityFloor:       0.1,
			TransitProbability: 0.15,
		},
		Vehicles: VehiclesConfig{
			Car:     VehicleClassConfig{Size: 6, SpeedFactor: 1.0},
			Transit: VehicleClassConfig{Size: 10, SpeedFactor: 0.75},
		},
		Signal: SignalConfig{
			CyclePeriod:      200,
			JunctionHalfSize: 60,
		},
		Roundabout: RoundaboutConfig{
			Band:           3,
			MaxAngularStep: 0.08,
		},
		Defaults: DefaultsConfig{
			Layout:           string(types.LayoutIntersection),
			SignalMode:       "fixed",
			Density:          10,
			SpeedLimit:       50,
			TransitEnabled:   true,
			SlowZoneStrength: 0.5,
			SlowdownRate:     0.3,
		},
	}
}

// ParseSimulationConfig 解析并校验 YAML 格式的仿真参数
func ParseSimulationConfig(data []byte) (*SimulationConfig, error) {
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config YAML: %w", err)
	}

	if err := validateSimulationConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	return &cfg, nil
}

// LoadSimulationConfig 从内嵌资源加载仿真参数
func LoadSimulationConfig(path string) (*SimulationConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config %s: %w", path, err)
	}
	return ParseSimulationConfig(data)
}

// LoadSimulationConfigFile 从磁盘文件加载仿真参数（命令行 --config 使用）
func LoadSimulationConfigFile(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config file %s: %w", path, err)
	}
	return ParseSimulationConfig(data)
}

// validateSimulationConfig 验证配置的有效性
func validateSimulationConfig(cfg *SimulationConfig) error {
	if cfg.TimeStep <= 0 {
		return fmt.Errorf("timeStep must be > 0, got %v", cfg.TimeStep)
	}

	// 速度参数
	if cfg.Speed.Cap <= 0 || cfg.Speed.PerLimitUnit <= 0 {
		return fmt.Errorf("speed.cap and speed.perLimitUnit must be > 0")
	}
	if cfg.Speed.SlowFactor <= 0 || cfg.Speed.SlowFactor >= 1 {
		return fmt.Errorf("speed.slowFactor must be in (0, 1), got %v", cfg.Speed.SlowFactor)
	}
	if cfg.Speed.Accel <= 0 || cfg.Speed.Decel <= 0 {
		return fmt.Errorf("speed.accel and speed.decel must be > 0")
	}
	if cfg.Speed.RandomBrakeDecel < 0 {
		return fmt.Errorf("speed.randomBrakeDecel must be >= 0, got %v", cfg.Speed.RandomBrakeDecel)
	}

	// 跟车间距：减速区必须在停车区之外
	if cfg.Following.MinGapFactor <= 0 {
		return fmt.Errorf("following.minGapFactor must be > 0, got %v", cfg.Following.MinGapFactor)
	}
	if cfg.Following.SlowGapFactor <= cfg.Following.MinGapFactor {
		return fmt.Errorf("following.slowGapFactor (%v) must exceed minGapFactor (%v)",
			cfg.Following.SlowGapFactor, cfg.Following.MinGapFactor)
	}

	if cfg.Collision.Scale <= 0 {
		return fmt.Errorf("collision.scale must be > 0, got %v", cfg.Collision.Scale)
	}

	// 生成参数
	if cfg.Spawn.IntervalBase <= 0 {
		return fmt.Errorf("spawn.intervalBase must be > 0, got %v", cfg.Spawn.IntervalBase)
	}
	if cfg.Spawn.DensityFloor <= 0 {
		return fmt.Errorf("spawn.densityFloor must be > 0, got %v", cfg.Spawn.DensityFloor)
	}
	if cfg.Spawn.TransitProbability < 0 || cfg.Spawn.TransitProbability > 1 {
		return fmt.Errorf("spawn.transitProbability must be in [0, 1], got %v", cfg.Spawn.TransitProbability)
	}

	// 车辆类别
	for name, vc := range map[string]VehicleClassConfig{"car": cfg.Vehicles.Car, "transit": cfg.Vehicles.Transit} {
		if vc.Size <= 0 {
			return fmt.Errorf("vehicles.%s.size must be > 0, got %v", name, vc.Size)
		}
		if vc.SpeedFactor <= 0 || vc.SpeedFactor > 1 {
			return fmt.Errorf("vehicles.%s.speedFactor must be in (0, 1], got %v", name, vc.SpeedFactor)
		}
	}

	if cfg.Signal.CyclePeriod < 1 {
		return fmt.Errorf("signal.cyclePeriod must be >= 1, got %d", cfg.Signal.CyclePeriod)
	}
	if cfg.Signal.JunctionHalfSize <= 0 {
		return fmt.Errorf("signal.junctionHalfSize must be > 0, got %v", cfg.Signal.JunctionHalfSize)
	}

	if cfg.Roundabout.Band <= 0 || cfg.Roundabout.MaxAngularStep <= 0 {
		return fmt.Errorf("roundabout.band and roundabout.maxAngularStep must be > 0")
	}
	// 单个 tick 的最大位移必须小于汇入带总宽，否则车辆可能一步跨过汇入带
	if step := cfg.Speed.Cap * cfg.TimeStep; step >= 2*cfg.Roundabout.Band {
		return fmt.Errorf("speed.cap × timeStep (%v) must be less than 2 × roundabout.band (%v)",
			step, 2*cfg.Roundabout.Band)
	}

	// 默认控制参数
	if _, err := types.ParseLayoutName(cfg.Defaults.Layout); err != nil {
		return fmt.Errorf("defaults.layout: %w", err)
	}
	if _, err := types.ParseSignalMode(cfg.Defaults.SignalMode); err != nil {
		return fmt.Errorf("defaults.signalMode: %w", err)
	}
	if cfg.Defaults.Density <= 0 || cfg.Defaults.SpeedLimit <= 0 {
		return fmt.Errorf("defaults.density and defaults.speedLimit must be > 0")
	}
	if cfg.Defaults.SlowZoneStrength < 0 || cfg.Defaults.SlowZoneStrength > MaxSlowZoneStrength {
		return fmt.Errorf("defaults.slowZoneStrength must be in [0, %v], got %v",
			MaxSlowZoneStrength, cfg.Defaults.SlowZoneStrength)
	}
	if cfg.Defaults.SlowdownRate < 0 {
		return fmt.Errorf("defaults.slowdownRate must be >= 0, got %v", cfg.Defaults.SlowdownRate)
	}

	return nil
}
