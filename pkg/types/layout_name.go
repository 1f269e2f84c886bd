package types

import "fmt"

// LayoutName 路网布局名称
type LayoutName string

const (
	LayoutIntersection LayoutName = "intersection" // 十字路口
	LayoutRoundabout   LayoutName = "roundabout"   // 环岛
	LayoutTJunction    LayoutName = "t-junction"   // 丁字路口
	LayoutArterial     LayoutName = "arterial"     // 干道（多个路口）
)

// AllLayouts 固定的布局目录，顺序即界面上的编号顺序（1-4）
var AllLayouts = []LayoutName{
	LayoutIntersection,
	LayoutRoundabout,
	LayoutTJunction,
	LayoutArterial,
}

// ParseLayoutName 校验布局名称
// 未知名称属于配置错误，在边界处拒绝，不进入仿真核心
func ParseLayoutName(s string) (LayoutName, error) {
	for _, name := range AllLayouts {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q", s)
}
