package types

import "fmt"

// SignalMode 信号灯控制模式
type SignalMode int

const (
	// SignalOff 信号灯关闭，两个方向始终放行
	SignalOff SignalMode = iota
	// SignalFixed 固定周期，相位由 tick 计数决定
	SignalFixed
	// SignalManual 手动模式，相位由外部触发推进
	SignalManual
)

// signalModeNames 模式名称，顺序与常量一致（用于循环切换）
var signalModeNames = []string{"off", "fixed", "manual"}

// String 返回模式名称
func (m SignalMode) String() string {
	if int(m) >= 0 && int(m) < len(signalModeNames) {
		return signalModeNames[m]
	}
	return fmt.Sprintf("SignalMode(%d)", int(m))
}

// Next 返回循环顺序中的下一个模式（off → fixed → manual → off）
func (m SignalMode) Next() SignalMode {
	return SignalMode((int(m) + 1) % len(signalModeNames))
}

// ParseSignalMode 将字符串转换为 SignalMode
// 兼容 "fixed-cycle" 写法
func ParseSignalMode(s string) (SignalMode, error) {
	switch s {
	case "off":
		return SignalOff, nil
	case "fixed", "fixed-cycle":
		return SignalFixed, nil
	case "manual":
		return SignalManual, nil
	default:
		return SignalOff, fmt.Errorf("unknown signal mode %q (want off, fixed or manual)", s)
	}
}
