package systems

import "github.com/decker502/trafficsim/pkg/types"

// SignalState 两个轴向的通行权
// 固定周期和手动模式下至少有一个轴向放行；关闭模式下两个轴向都放行
type SignalState struct {
	HorizontalAllowed bool
	VerticalAllowed   bool
}

// Allows 判断指定轴向是否放行
func (s SignalState) Allows(o types.Orientation) bool {
	if o == types.Horizontal {
		return s.HorizontalAllowed
	}
	return s.VerticalAllowed
}

// CurrentSignal 计算当前信号状态（纯函数，不修改任何状态）
// 参数:
//   - mode: 信号模式
//   - tick: 当前 tick
//   - manualPhase: 手动相位计数
//   - cyclePeriod: 固定周期模式每个相位持续的 tick 数
//
// 返回: 相位 0 放行水平方向，相位 1 放行垂直方向
func CurrentSignal(mode types.SignalMode, tick, manualPhase, cyclePeriod int) SignalState {
	switch mode {
	case types.SignalFixed:
		if cyclePeriod < 1 {
			cyclePeriod = 1
		}
		return phaseSignal((tick / cyclePeriod) % 2)
	case types.SignalManual:
		return phaseSignal(manualPhase % 2)
	default:
		return SignalState{HorizontalAllowed: true, VerticalAllowed: true}
	}
}

func phaseSignal(phase int) SignalState {
	if phase == 0 {
		return SignalState{HorizontalAllowed: true}
	}
	return SignalState{VerticalAllowed: true}
}
