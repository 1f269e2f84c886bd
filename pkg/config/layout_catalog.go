package config

import (
	"fmt"
	"os"

	"github.com/decker502/trafficsim/pkg/embedded"
	"github.com/decker502/trafficsim/pkg/types"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// LayoutCatalogPath 内嵌布局目录文件路径
const LayoutCatalogPath = "data/layouts.yaml"

// LayoutCatalog 路网布局目录
type LayoutCatalog struct {
	LaneWidth float64     `yaml:"laneWidth"` // 车道宽度（所有布局共用）
	Layouts   []LayoutDef `yaml:"layouts"`
}

// LayoutDef 单个布局定义
type LayoutDef struct {
	Name       string         `yaml:"name"`
	Bounds     RectDef        `yaml:"bounds"`     // 可见区域，驶出即移除
	Signalized bool           `yaml:"signalized"` // 是否受信号灯管控
	Segments   []SegmentDef   `yaml:"segments"`
	Junctions  []PointDef     `yaml:"junctions"`  // 路口中心（信号管控区）
	Roundabout *RoundaboutDef `yaml:"roundabout"` // 仅环岛布局
	SlowZone   *RectDef       `yaml:"slowZone"`   // 瓶颈区（可选）
	LaneWidth  float64        `yaml:"-"`          // 由目录统一填充
}

// RectDef 轴对齐矩形
type RectDef struct {
	MinX float64 `yaml:"minX"`
	MinY float64 `yaml:"minY"`
	MaxX float64 `yaml:"maxX"`
	MaxY float64 `yaml:"maxY"`
}

// SegmentDef 路段定义
type SegmentDef struct {
	Orientation string  `yaml:"orientation"` // "horizontal" 或 "vertical"
	Center      float64 `yaml:"center"`      // 中心线坐标（水平路段为 Y，垂直路段为 X）
	Start       float64 `yaml:"start"`       // 跨度起点（沿行驶轴）
	End         float64 `yaml:"end"`         // 跨度终点
	Lanes       int     `yaml:"lanes"`       // 单向车道数
}

// PointDef 坐标点
type PointDef struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// RoundaboutDef 环岛几何定义
type RoundaboutDef struct {
	CenterX     float64 `yaml:"centerX"`
	CenterY     float64 `yaml:"centerY"`
	Radius      float64 `yaml:"radius"`      // 最内侧车道半径
	Lanes       int     `yaml:"lanes"`       // 环道车道数
	LaneSpacing float64 `yaml:"laneSpacing"` // 相邻环道半径差
}

// Layout 按名称查找布局
// 未知名称返回错误：布局名属于边界输入，在进入仿真核心之前拒绝
func (c *LayoutCatalog) Layout(name types.LayoutName) (LayoutDef, error) {
	def, ok := lo.Find(c.Layouts, func(d LayoutDef) bool {
		return d.Name == string(name)
	})
	if !ok {
		return LayoutDef{}, fmt.Errorf("layout %q not found in catalog", name)
	}
	return def, nil
}

// Names 返回目录中的全部布局名称
func (c *LayoutCatalog) Names() []types.LayoutName {
	return lo.Map(c.Layouts, func(d LayoutDef, _ int) types.LayoutName {
		return types.LayoutName(d.Name)
	})
}

// ParseLayoutCatalog 解析并校验布局目录
func ParseLayoutCatalog(data []byte) (*LayoutCatalog, error) {
	var catalog LayoutCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse layout catalog YAML: %w", err)
	}

	if err := validateLayoutCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid layout catalog: %w", err)
	}

	for i := range catalog.Layouts {
		catalog.Layouts[i].LaneWidth = catalog.LaneWidth
	}

	return &catalog, nil
}

// LoadLayoutCatalog 从内嵌资源加载布局目录
func LoadLayoutCatalog(path string) (*LayoutCatalog, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout catalog %s: %w", path, err)
	}
	return ParseLayoutCatalog(data)
}

// LoadLayoutCatalogFile 从磁盘文件加载布局目录
func LoadLayoutCatalogFile(path string) (*LayoutCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout catalog file %s: %w", path, err)
	}
	return ParseLayoutCatalog(data)
}

// validateLayoutCatalog 验证布局目录
// 布局数据有缺陷属于配置错误，在加载时暴露，不留到仿真运行时
func validateLayoutCatalog(catalog *LayoutCatalog) error {
	if catalog.LaneWidth <= 0 {
		return fmt.Errorf("laneWidth must be > 0, got %v", catalog.LaneWidth)
	}
	if len(catalog.Layouts) == 0 {
		return fmt.Errorf("layouts cannot be empty")
	}

	seen := make(map[string]bool)
	for _, def := range catalog.Layouts {
		if _, err := types.ParseLayoutName(def.Name); err != nil {
			return err
		}
		if seen[def.Name] {
			return fmt.Errorf("duplicate layout %q", def.Name)
		}
		seen[def.Name] = true

		if err := validateLayout(def, catalog.LaneWidth); err != nil {
			return fmt.Errorf("layout %q: %w", def.Name, err)
		}
	}
	return nil
}

// validateLayout 验证单个布局
func validateLayout(def LayoutDef, laneWidth float64) error {
	b := def.Bounds
	if b.MaxX <= b.MinX || b.MaxY <= b.MinY {
		return fmt.Errorf("bounds must have positive area")
	}
	if len(def.Segments) == 0 {
		return fmt.Errorf("segments cannot be empty")
	}

	for i, seg := range def.Segments {
		orientation, err := types.ParseOrientation(seg.Orientation)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if seg.Lanes < 1 {
			return fmt.Errorf("segment %d: lanes must be >= 1, got %d", i, seg.Lanes)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d: end (%v) must be greater than start (%v)", i, seg.End, seg.Start)
		}
		// 生成点只放在可见区域边缘，两端都在区域内部的路段没有入口
		if !segmentReachesEdge(seg, orientation, b) {
			return fmt.Errorf("segment %d: neither end reaches the bounds edge", i)
		}
	}

	if z := def.SlowZone; z != nil {
		if z.MaxX <= z.MinX || z.MaxY <= z.MinY {
			return fmt.Errorf("slowZone must have positive area")
		}
		if z.MinX < b.MinX || z.MinY < b.MinY || z.MaxX > b.MaxX || z.MaxY > b.MaxY {
			return fmt.Errorf("slowZone must lie inside bounds")
		}
	}

	if def.Signalized && len(def.Junctions) == 0 {
		return fmt.Errorf("signalized layout needs at least one junction")
	}

	if def.Name == string(types.LayoutRoundabout) && def.Roundabout == nil {
		return fmt.Errorf("roundabout layout needs ring geometry")
	}

	if ring := def.Roundabout; ring != nil {
		if ring.Radius <= 0 || ring.Lanes < 1 || ring.LaneSpacing <= 0 {
			return fmt.Errorf("roundabout radius, lanes and laneSpacing must be positive")
		}
		// 直行车道必须与对应环道相交，否则车辆永远进不了汇入带
		for i, seg := range def.Segments {
			if seg.Lanes > ring.Lanes {
				return fmt.Errorf("segment %d has %d lanes but ring only %d", i, seg.Lanes, ring.Lanes)
			}
			for lane := 0; lane < seg.Lanes; lane++ {
				offset := (float64(lane) + 0.5) * laneWidth
				radius := ring.Radius + float64(lane)*ring.LaneSpacing
				if offset >= radius {
					return fmt.Errorf("segment %d lane %d offset %v does not cross ring radius %v", i, lane, offset, radius)
				}
			}
		}
	}

	return nil
}

// segmentReachesEdge 判断路段是否至少有一端到达可见区域边缘
func segmentReachesEdge(seg SegmentDef, o types.Orientation, b RectDef) bool {
	if o == types.Vertical {
		return seg.Start <= b.MinY || seg.End >= b.MaxY
	}
	return seg.Start <= b.MinX || seg.End >= b.MaxX
}
