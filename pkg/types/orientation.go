// Package types 定义共享的基础类型
package types

import "fmt"

// Orientation 道路/车辆的轴向
type Orientation int

const (
	// Horizontal 水平方向（沿 X 轴行驶）
	Horizontal Orientation = iota
	// Vertical 垂直方向（沿 Y 轴行驶）
	Vertical
)

// String 返回轴向名称（用于日志和配置）
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation 将配置字符串转换为 Orientation
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	default:
		return Horizontal, fmt.Errorf("unknown orientation %q", s)
	}
}

// Direction 沿轴行驶的方向：+1 为坐标增大方向，-1 为坐标减小方向
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)
