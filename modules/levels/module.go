package levels

import (
	"embed"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence"
	"github.com/iota-uz/levels/modules/levels/presentation/controllers"
	"github.com/iota-uz/levels/modules/levels/services"
	"github.com/iota-uz/levels/pkg/eventbus"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

type Module struct {
	controller *controllers.LevelsController
}

// NewModule wires repositories, services, and the controller. cfg switches
// live in services.Config; the event bus receives level lifecycle events.
func NewModule(cfg services.Config, log *logrus.Logger, bus eventbus.EventBus) *Module {
	tiers := persistence.NewTierRepository()
	levels := persistence.NewLevelRepository()
	activities := persistence.NewActivityRepository()
	values := persistence.NewAttributeValueRepository()

	return &Module{
		controller: controllers.NewLevelsController(
			services.NewLevelService(cfg, log, levels, tiers),
			services.NewCascadeService(log, bus, levels, activities, values),
			services.NewReplicationService(cfg, log, bus, levels, activities, values, tiers),
			services.NewQueryService(log, levels, activities),
			tiers,
		),
	}
}

func (m *Module) Register(r *mux.Router) {
	m.controller.Register(r)
}
