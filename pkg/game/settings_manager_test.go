package game

import (
	"os"
	"testing"

	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/types"
	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下创建 gdata 管理器
func openTestGdata(t *testing.T) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: "trafficsim_test_settings",
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

func TestDefaultViewerSettings(t *testing.T) {
	defaults := config.DefaultSimulationConfig().Defaults
	s := DefaultViewerSettings(defaults)

	if s.Layout != defaults.Layout || s.SignalMode != defaults.SignalMode {
		t.Errorf("layout/signal = %s/%s, want %s/%s", s.Layout, s.SignalMode, defaults.Layout, defaults.SignalMode)
	}
	if s.Density != defaults.Density || s.SpeedLimit != defaults.SpeedLimit {
		t.Errorf("density/speed = %v/%v", s.Density, s.SpeedLimit)
	}
	if s.TransitEnabled != defaults.TransitEnabled {
		t.Errorf("TransitEnabled = %v", s.TransitEnabled)
	}
	if s.SlowZoneStrength != defaults.SlowZoneStrength || s.SlowdownRate != defaults.SlowdownRate {
		t.Errorf("slow zone/slowdown = %v/%v", s.SlowZoneStrength, s.SlowdownRate)
	}
	if s.Fullscreen {
		t.Error("Fullscreen should default to false")
	}
}

// TestSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestSettingsManagerNilGdata(t *testing.T) {
	defaults := config.DefaultSimulationConfig().Defaults
	sm := NewSettingsManager(nil, defaults)

	if sm.GetSettings().Layout != defaults.Layout {
		t.Errorf("Layout = %s, want default", sm.GetSettings().Layout)
	}
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should not fail: %v", err)
	}
}

// TestSettingsRoundTrip 保存后重新打开能恢复仿真控制参数
func TestSettingsRoundTrip(t *testing.T) {
	gdataManager := openTestGdata(t)
	cfg := config.DefaultSimulationConfig()

	sim, err := NewSimulation(cfg, loadTestCatalog(t), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetLayout(types.LayoutArterial); err != nil {
		t.Fatal(err)
	}
	sim.SetSignalMode(types.SignalManual)
	sim.SetDensity(25)
	sim.SetSpeedLimit(80)
	sim.SetTransitEnabled(false)
	sim.SetSlowZoneStrength(0.7)
	sim.SetSlowdownRate(1.2)

	sm := NewSettingsManager(gdataManager, cfg.Defaults)
	sm.Capture(sim)
	sm.SetFullscreen(true)
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	restored := NewSettingsManager(gdataManager, cfg.Defaults)
	got := restored.GetSettings()
	want := ViewerSettings{
		Layout:         "arterial",
		SignalMode:     "manual",
		Density:        25,
		SpeedLimit:     80,
		TransitEnabled: false,

		SlowZoneStrength: 0.7,
		SlowdownRate:     1.2,

		Fullscreen: true,
	}
	if *got != want {
		t.Fatalf("restored settings = %+v, want %+v", *got, want)
	}

	fresh, err := NewSimulation(cfg, loadTestCatalog(t), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Apply(fresh); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	c := fresh.Controls()
	if c.Layout != types.LayoutArterial || c.SignalMode != types.SignalManual ||
		c.Density != 25 || c.SpeedLimit != 80 || c.TransitEnabled ||
		c.SlowZoneStrength != 0.7 || c.SlowdownRate != 1.2 {
		t.Errorf("applied controls = %+v", c)
	}
}

// TestSettingsInvalidSaved 已保存的设置无法识别时回退到默认值
func TestSettingsInvalidSaved(t *testing.T) {
	gdataManager := openTestGdata(t)
	defaults := config.DefaultSimulationConfig().Defaults

	tests := []struct {
		name string
		data string
	}{
		{"未知布局", "layout: cloverleaf\nsignalMode: fixed\n"},
		{"未知信号模式", "layout: roundabout\nsignalMode: blinking\n"},
		{"YAML 格式错误", "layout: [roundabout\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte(tt.data)); err != nil {
				t.Fatal(err)
			}
			sm := NewSettingsManager(gdataManager, defaults)
			if sm.GetSettings().Layout != defaults.Layout {
				t.Errorf("Layout = %s, want default %s", sm.GetSettings().Layout, defaults.Layout)
			}
			if err := sm.Load(); err == nil {
				t.Error("Load() should report invalid saved settings")
			}
		})
	}
}

// TestSettingsClamp 超出范围的密度和限速在加载时被限制
func TestSettingsClamp(t *testing.T) {
	gdataManager := openTestGdata(t)
	data := "layout: roundabout\nsignalMode: off\ndensity: 1000\nspeedLimit: -3\nslowZoneStrength: 1.5\nslowdownRate: -1\n"
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte(data)); err != nil {
		t.Fatal(err)
	}

	sm := NewSettingsManager(gdataManager, config.DefaultSimulationConfig().Defaults)
	s := sm.GetSettings()
	if s.Density != MaxDensity || s.SpeedLimit != MinSpeedLimit {
		t.Errorf("density/speed = %v/%v, want %v/%v", s.Density, s.SpeedLimit, MaxDensity, MinSpeedLimit)
	}
	if s.SlowZoneStrength != config.MaxSlowZoneStrength || s.SlowdownRate != 0 {
		t.Errorf("slow zone/slowdown = %v/%v, want %v/0", s.SlowZoneStrength, s.SlowdownRate, config.MaxSlowZoneStrength)
	}
	if s.Layout != "roundabout" {
		t.Errorf("Layout = %s, want roundabout", s.Layout)
	}
}

// TestSettingsMissingFieldsKeepDefaults 旧版本设置缺少的字段使用默认值
func TestSettingsMissingFieldsKeepDefaults(t *testing.T) {
	gdataManager := openTestGdata(t)
	defaults := config.DefaultSimulationConfig().Defaults
	data := "layout: arterial\nsignalMode: fixed\ndensity: 12\nspeedLimit: 60\n"
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte(data)); err != nil {
		t.Fatal(err)
	}

	s := NewSettingsManager(gdataManager, defaults).GetSettings()
	if s.SlowZoneStrength != defaults.SlowZoneStrength || s.SlowdownRate != defaults.SlowdownRate {
		t.Errorf("slow zone/slowdown = %v/%v, want defaults %v/%v",
			s.SlowZoneStrength, s.SlowdownRate, defaults.SlowZoneStrength, defaults.SlowdownRate)
	}
	if s.TransitEnabled != defaults.TransitEnabled {
		t.Errorf("TransitEnabled = %v, want default %v", s.TransitEnabled, defaults.TransitEnabled)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"小于下限", -1, 1},
		{"范围内", 5, 5},
		{"大于上限", 20, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clamp(tt.input, 1, 10); got != tt.want {
				t.Errorf("clamp(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
