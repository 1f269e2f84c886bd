package components

// CollisionComponent 定义车辆的碰撞半径
// 两车中心距离小于 Scale × (RadiusA + RadiusB) 即视为重叠
type CollisionComponent struct {
	Radius float64 // 碰撞半径（像素），等于车辆尺寸
}
