package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/attributevalue"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/pkg/eventbus"
	"github.com/iota-uz/levels/pkg/itf"
)

// fixture wires the services against the in-memory repositories. The
// context carries a transaction marker so the services join it instead of
// opening one against a real pool.
type fixture struct {
	ctx context.Context
	bus eventbus.EventBus

	tiers      *itf.TierRepository
	levels     *itf.LevelRepository
	activities *itf.ActivityRepository
	values     *itf.ValueRepository

	cascade     *CascadeService
	replication *ReplicationService
	query       *QueryService
	level       *LevelService
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	log := itf.NopLogger()
	tiers := itf.NewTierRepository()
	levels := itf.NewLevelRepository()
	activities := itf.NewActivityRepository(levels, tiers)
	values := itf.NewValueRepository()
	bus := eventbus.NewEventPublisher(log)

	return &fixture{
		ctx:         itf.TxContext(),
		bus:         bus,
		tiers:       tiers,
		levels:      levels,
		activities:  activities,
		values:      values,
		cascade:     NewCascadeService(log, bus, levels, activities, values),
		replication: NewReplicationService(cfg, log, bus, levels, activities, values, tiers),
		query:       NewQueryService(log, levels, activities),
		level:       NewLevelService(cfg, log, levels, tiers),
	}
}

func (f *fixture) addTier(label string, pos tier.ChainPosition) *tier.Tier {
	return f.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: label, Color: "#" + label, ChainPosition: pos})
}

func (f *fixture) addLevel(tierID uuid.UUID, parent *uuid.UUID, name string) *level.Level {
	return f.levels.Seed(&level.Level{ID: uuid.New(), TierID: tierID, ParentID: parent, Name: name})
}

func (f *fixture) addActivity(levelID uuid.UUID, order int, description string) *activity.Activity {
	return f.activities.Seed(&activity.Activity{
		ID:              uuid.New(),
		LevelID:         levelID,
		AttributeTypeID: uuid.New(),
		DisplayOrder:    order,
		Description:     description,
	})
}

func (f *fixture) addValue(activityID uuid.UUID, value string) *attributevalue.AttributeValue {
	return f.values.Seed(&attributevalue.AttributeValue{ID: uuid.New(), ActivityID: activityID, Value: value})
}
