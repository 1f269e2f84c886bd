package systems

import (
	"testing"

	"github.com/decker502/trafficsim/pkg/components"
	"github.com/decker502/trafficsim/pkg/config"
	"github.com/decker502/trafficsim/pkg/ecs"
	"github.com/decker502/trafficsim/pkg/types"
)

func TestCullSystemUpdate(t *testing.T) {
	cfg := config.DefaultSimulationConfig()
	net := loadTestNetwork(t, types.LayoutIntersection)
	em := ecs.NewEntityManager()

	inside := placeCar(em, cfg, 400, 310, types.Horizontal, types.Forward, 0, 0)
	onEdge := placeCar(em, cfg, 800, 310, types.Horizontal, types.Forward, 0, 0)
	outsideX := placeCar(em, cfg, 800.5, 330, types.Horizontal, types.Forward, 1, 0)
	outsideY := placeCar(em, cfg, 390, -1, types.Vertical, types.Backward, 0, 0)

	system := NewCullSystem(em, net)
	if removed := system.Update(); removed != 2 {
		t.Errorf("Update() removed %d, want 2", removed)
	}

	for _, id := range []ecs.EntityID{inside, onEdge} {
		if !ecs.HasComponent[*components.PositionComponent](em, id) {
			t.Errorf("entity %d inside bounds was culled", id)
		}
	}
	for _, id := range []ecs.EntityID{outsideX, outsideY} {
		if ecs.HasComponent[*components.PositionComponent](em, id) {
			t.Errorf("entity %d outside bounds was not culled", id)
		}
	}

	if removed := system.Update(); removed != 0 {
		t.Errorf("second Update() removed %d, want 0", removed)
	}
}
