package game

import (
	"fmt"
	"log"

	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/types"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerSettings 查看器记住的控制参数
// 只有查看器会持久化这些设置，仿真核心本身不保存任何状态
type ViewerSettings struct {
	Layout         string  `yaml:"layout"`         // 布局名称
	SignalMode     string  `yaml:"signalMode"`     // 信号模式
	Density        float64 `yaml:"density"`        // 车流密度
	SpeedLimit     float64 `yaml:"speedLimit"`     // 限速
	TransitEnabled bool    `yaml:"transitEnabled"` // 是否生成公交

	SlowZoneStrength float64 `yaml:"slowZoneStrength"` // 瓶颈区减速强度
	SlowdownRate     float64 `yaml:"slowdownRate"`     // 随机刹车每秒概率

	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultViewerSettings 由仿真参数中的默认值构造设置
func DefaultViewerSettings(defaults config.DefaultsConfig) *ViewerSettings {
	return &ViewerSettings{
		Layout:         defaults.Layout,
		SignalMode:     defaults.SignalMode,
		Density:        defaults.Density,
		SpeedLimit:     defaults.SpeedLimit,
		TransitEnabled: defaults.TransitEnabled,

		SlowZoneStrength: defaults.SlowZoneStrength,
		SlowdownRate:     defaults.SlowdownRate,
	}
}

// 查看器控制参数的可调范围
const (
	MinDensity      = 1.0
	MaxDensity      = 60.0
	MinSpeedLimit   = 10.0
	MaxSpeedLimit   = 120.0
	MaxSlowdownRate = 2.0
)

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	defaults     config.DefaultsConfig
	settings     *ViewerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - defaults: 没有已保存设置时使用的默认值
//
// 返回：
//   - *SettingsManager: 设置管理器实例
func NewSettingsManager(gdataManager *gdata.Manager, defaults config.DefaultsConfig) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		defaults:     defaults,
		settings:     DefaultViewerSettings(defaults),
	}

	// 加载失败不是致命错误，使用默认设置
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置；
// 已保存的布局名或信号模式无法识别时整体回退到默认设置。
//
// 返回：
//   - error: 如果读取、反序列化或校验失败返回错误
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultViewerSettings(sm.defaults)
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultViewerSettings(sm.defaults)
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultViewerSettings(sm.defaults)
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 旧版本保存的设置缺少的字段沿用默认值
	loaded := *DefaultViewerSettings(sm.defaults)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.settings = DefaultViewerSettings(sm.defaults)
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := validateViewerSettings(&loaded); err != nil {
		sm.settings = DefaultViewerSettings(sm.defaults)
		return fmt.Errorf("invalid saved settings: %w", err)
	}

	sm.settings = &loaded
	log.Printf("[SettingsManager] Settings loaded: layout=%s signal=%s", loaded.Layout, loaded.SignalMode)
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// Capture 从仿真当前的控制参数更新设置
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) Capture(sim *Simulation) {
	c := sim.Controls()
	sm.settings.Layout = string(c.Layout)
	sm.settings.SignalMode = c.SignalMode.String()
	sm.settings.Density = c.Density
	sm.settings.SpeedLimit = c.SpeedLimit
	sm.settings.TransitEnabled = c.TransitEnabled
	sm.settings.SlowZoneStrength = c.SlowZoneStrength
	sm.settings.SlowdownRate = c.SlowdownRate
}

// Apply 将设置应用到仿真
//
// 返回：
//   - error: 设置中的布局名或信号模式无效时返回错误
func (sm *SettingsManager) Apply(sim *Simulation) error {
	s := sm.settings
	layout, err := types.ParseLayoutName(s.Layout)
	if err != nil {
		return fmt.Errorf("failed to apply settings: %w", err)
	}
	mode, err := types.ParseSignalMode(s.SignalMode)
	if err != nil {
		return fmt.Errorf("failed to apply settings: %w", err)
	}

	if layout != sim.Controls().Layout {
		if err := sim.SetLayout(layout); err != nil {
			return fmt.Errorf("failed to apply settings: %w", err)
		}
	}
	sim.SetSignalMode(mode)
	sim.SetDensity(s.Density)
	sim.SetSpeedLimit(s.SpeedLimit)
	sim.SetTransitEnabled(s.TransitEnabled)
	sim.SetSlowZoneStrength(s.SlowZoneStrength)
	sim.SetSlowdownRate(s.SlowdownRate)
	return nil
}

// SetFullscreen 设置全屏模式
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// validateViewerSettings 验证已保存的设置
func validateViewerSettings(s *ViewerSettings) error {
	if _, err := types.ParseLayoutName(s.Layout); err != nil {
		return err
	}
	if _, err := types.ParseSignalMode(s.SignalMode); err != nil {
		return err
	}
	s.Density = clamp(s.Density, MinDensity, MaxDensity)
	s.SpeedLimit = clamp(s.SpeedLimit, MinSpeedLimit, MaxSpeedLimit)
	s.SlowZoneStrength = clamp(s.SlowZoneStrength, 0, config.MaxSlowZoneStrength)
	s.SlowdownRate = clamp(s.SlowdownRate, 0, MaxSlowdownRate)
	return nil
}

// clamp 将值限制在 [lo, hi] 范围内
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
