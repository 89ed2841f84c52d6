package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
)

func TestQueryService_QueryActivities_CoversSubtree(t *testing.T) {
	f := newFixture(t, Config{})
	area := f.addTier("Area", tier.ChainArea)
	process := f.addTier("Process", tier.ChainProcess)
	system := f.addTier("System", tier.ChainSystem)

	root := f.addLevel(area.ID, nil, "Plant")
	crushing := f.addLevel(process.ID, &root.ID, "Crushing")
	conveyor := f.addLevel(system.ID, &crushing.ID, "Conveyor")
	flotation := f.addLevel(process.ID, &root.ID, "Flotation")

	f.addActivity(crushing.ID, 0, "Inspect jaw")
	f.addActivity(conveyor.ID, 0, "Grease bearings")
	outside := f.addActivity(flotation.ID, 0, "Check cells")

	rows, err := f.query.QueryActivities(f.ctx, &activity.Filter{LevelID: &crushing.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.NotEqual(t, outside.ID, row.ID)
	}
}

func TestQueryService_QueryActivities_SortedByLevelNameThenOrder(t *testing.T) {
	f := newFixture(t, Config{})
	process := f.addTier("Process", tier.ChainProcess)

	milling := f.addLevel(process.ID, nil, "Milling")
	crushing := f.addLevel(process.ID, nil, "Crushing")

	f.addActivity(milling.ID, 0, "Mill first")
	f.addActivity(crushing.ID, 2, "Crush second")
	f.addActivity(crushing.ID, 1, "Crush first")

	rows, err := f.query.QueryActivities(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Crush first", rows[0].Description)
	require.Equal(t, "Crush second", rows[1].Description)
	require.Equal(t, "Mill first", rows[2].Description)
}

func TestQueryService_QueryActivities_FiltersAreConjunctive(t *testing.T) {
	f := newFixture(t, Config{})
	process := f.addTier("Process", tier.ChainProcess)
	l := f.addLevel(process.ID, nil, "Crushing")

	mech := uuid.New()
	elec := uuid.New()
	weekly := 7.0
	daily := 1.0

	a1 := f.addActivity(l.ID, 0, "Mechanical weekly")
	a1.DisciplineID = &mech
	a1.TaskFrequency = &weekly
	a2 := f.addActivity(l.ID, 1, "Mechanical daily")
	a2.DisciplineID = &mech
	a2.TaskFrequency = &daily
	a3 := f.addActivity(l.ID, 2, "Electrical weekly")
	a3.DisciplineID = &elec
	a3.TaskFrequency = &weekly

	rows, err := f.query.QueryActivities(f.ctx, &activity.Filter{DisciplineID: &mech, TaskFrequency: &weekly})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Mechanical weekly", rows[0].Description)
}

func TestQueryService_QueryActivities_UnknownLevelYieldsEmptyResult(t *testing.T) {
	f := newFixture(t, Config{})
	missing := uuid.New()

	rows, err := f.query.QueryActivities(f.ctx, &activity.Filter{LevelID: &missing})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestQueryService_QueryActivities_RejectsInvalidFilter(t *testing.T) {
	f := newFixture(t, Config{})
	negative := -1.0

	_, err := f.query.QueryActivities(f.ctx, &activity.Filter{TaskFrequency: &negative})
	require.ErrorIs(t, err, ErrInvalidFilter)
}
