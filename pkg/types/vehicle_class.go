package types

// VehicleClass 车辆类别
// 两类车辆共享同一套运动与碰撞逻辑，只在尺寸和限速系数上不同
type VehicleClass int

const (
	// VehicleCar 普通小汽车
	VehicleCar VehicleClass = iota
	// VehicleTransit 公交车（尺寸更大、速度上限更低）
	VehicleTransit
)

// String 返回车辆类别名称
func (c VehicleClass) String() string {
	if c == VehicleTransit {
		return "transit"
	}
	return "car"
}
