package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/entities"
	"github.com/decker502/trafficsim/pkg/network"
	"github.com/decker502/trafficsim/pkg/types"
)

// loadTestNetwork 加载项目自带目录中的布局
func loadTestNetwork(t *testing.T, name types.LayoutName) *network.RoadNetwork {
	t.Helper()
	catalog, err := config.LoadLayoutCatalogFile("../../data/layouts.yaml")
	if err != nil {
		t.Fatalf("Failed to load layout catalog: %v", err)
	}
	def, err := catalog.Layout(name)
	if err != nil {
		t.Fatalf("layout %q: %v", name, err)
	}
	return network.BuildLayout(def)
}

// placeCar 在指定位置放置一辆普通车辆
func placeCar(em *ecs.EntityManager, cfg *config.SimulationConfig, x, y float64, o types.Orientation, dir types.Direction, lane int, speed float64) ecs.EntityID {
	sp := network.SpawnPoint{
		X: x, Y: y,
		Orientation: o,
		Direction:   dir,
		Lane:        lane,
		LaneCount:   2,
	}
	if o == types.Horizontal {
		sp.VX = float64(dir)
	} else {
		sp.VY = float64(dir)
	}
	return entities.NewVehicleEntity(em, sp, entities.VehicleParams{
		Class:     types.VehicleCar,
		Size:      cfg.Vehicles.Car.Size,
		BaseSpeed: speed,
		Speed:     speed,
	})
}

func vehicleOf(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) (*components.PositionComponent, *components.VehicleComponent) {
	t.Helper()
	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no PositionComponent", id)
	}
	veh, ok := ecs.GetComponent[*components.VehicleComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no VehicleComponent", id)
	}
	return pos, veh
}

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// assertNoOverlap 检查任意两车的距离不小于碰撞阈值
func assertNoOverlap(t *testing.T, em *ecs.EntityManager, cfg *config.SimulationConfig, tick int) {
	t.Helper()
	agents := collectAgents(em)
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			a, b := agents[i], agents[j]
			threshold := cfg.Collision.Scale * (a.veh.Size + b.veh.Size)
			d := math.Hypot(a.pos.X-b.pos.X, a.pos.Y-b.pos.Y)
			if d < threshold-1e-9 {
				t.Fatalf("tick %d: entities %d and %d overlap: distance %.4f < %.4f", tick, a.id, b.id, d, threshold)
			}
		}
	}
}
