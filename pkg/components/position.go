package components

// PositionComponent 存储实体在路网中的位置（画布坐标，像素）
type PositionComponent struct {
	X float64
	Y float64
}
