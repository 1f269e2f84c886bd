package systems

import (
	"log"
	"math"
	"math/rand"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/entities"
	"github.com/decker502/trafficsim/pkg/network"
	"github.com/decker502/trafficsim/pkg/types"
)

// NeverSpawned 尚未生成过车辆时的 lastSpawnTick，保证第一个 tick 即可生成
const NeverSpawned = math.MinInt32

// SpawnInput 一次生成尝试的外部输入
type SpawnInput struct {
	SpeedLimit     float64
	TransitEnabled bool
	RNG            *rand.Rand
}

// SpawnSystem 车辆生成系统
//
// 生成间隔由密度换算，每次到期时从当前布局的生成点中均匀随机选择一个。
// 这是对泊松到达过程的近似：间隔固定，随机性只体现在位置和车型上。
type SpawnSystem struct {
	entityManager *ecs.EntityManager
	config        *config.SimulationConfig
	spawnPoints   []network.SpawnPoint
}

// NewSpawnSystem 创建生成系统
// 参数:
//   - em: EntityManager 实例
//   - cfg: 仿真参数
//   - points: 当前布局的生成点
func NewSpawnSystem(em *ecs.EntityManager, cfg *config.SimulationConfig, points []network.SpawnPoint) *SpawnSystem {
	log.Printf("[SpawnSystem] Initialized with %d spawn points", len(points))
	return &SpawnSystem{
		entityManager: em,
		config:        cfg,
		spawnPoints:   points,
	}
}

// SetSpawnPoints 切换生成点（切换布局时调用）
func (s *SpawnSystem) SetSpawnPoints(points []network.SpawnPoint) {
	s.spawnPoints = points
}

// SpawnInterval 由密度换算生成间隔（tick）
// 密度低于下限时按下限计算，避免除零；间隔至少为 1
func SpawnInterval(density float64, cfg config.SpawnConfig) int {
	d := math.Max(density, cfg.DensityFloor)
	return max(1, int(math.Round(cfg.IntervalBase/d)))
}

// SpawnDue 判断本 tick 是否应尝试生成
func SpawnDue(tick, lastSpawnTick, interval int) bool {
	return tick-lastSpawnTick > interval
}

// TrySpawn 尝试生成一辆车
// 选中的生成点被占用（与已有车辆距离小于碰撞阈值）时放弃本次生成
//
// 返回: 新实体ID，以及是否成功生成
func (s *SpawnSystem) TrySpawn(in SpawnInput) (ecs.EntityID, bool) {
	if len(s.spawnPoints) == 0 || in.RNG == nil {
		return 0, false
	}

	sp := s.spawnPoints[in.RNG.Intn(len(s.spawnPoints))]

	class := types.VehicleCar
	if in.TransitEnabled && in.RNG.Float64() < s.config.Spawn.TransitProbability {
		class = types.VehicleTransit
	}
	classCfg := s.config.Vehicles.ForClass(class)

	if s.blocked(sp.X, sp.Y, classCfg.Size) {
		return 0, false
	}

	base := BaseSpeed(s.config, in.SpeedLimit, class)
	id := entities.NewVehicleEntity(s.entityManager, sp, entities.VehicleParams{
		Class:     class,
		Size:      classCfg.Size,
		BaseSpeed: base,
		Speed:     base,
	})
	return id, true
}

// blocked 判断位置是否与已有车辆重叠
func (s *SpawnSystem) blocked(x, y, size float64) bool {
	scale := s.config.Collision.Scale
	ids := ecs.GetEntitiesWith2[*components.PositionComponent, *components.VehicleComponent](s.entityManager)
	for _, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		veh, _ := ecs.GetComponent[*components.VehicleComponent](s.entityManager, id)
		threshold := scale * (size + veh.Size)
		dx, dy := x-pos.X, y-pos.Y
		if dx*dx+dy*dy < threshold*threshold {
			return true
		}
	}
	return false
}
