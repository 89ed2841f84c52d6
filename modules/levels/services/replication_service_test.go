package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
)

func TestReplicationService_ReplicateSubtree_CopiesStructureAndClearsFlags(t *testing.T) {
	f := newFixture(t, Config{})
	area := f.addTier("Area", tier.ChainArea)
	process := f.addTier("Process", tier.ChainProcess)
	system := f.addTier("System", tier.ChainSystem)

	target := f.addLevel(area.ID, nil, "North plant")

	template := f.addLevel(process.ID, nil, "Crushing template")
	template.IsTemplate = true
	template.IsGeneric = true
	primary := f.addLevel(system.ID, &template.ID, "Primary crusher")
	primary.IsTemplate = true
	secondary := f.addLevel(system.ID, &template.ID, "Secondary crusher")

	freq := 2.5
	a := f.addActivity(primary.ID, 1, "Check liners")
	a.TaskFrequency = &freq
	f.addValue(a.ID, "torque 300Nm")

	newRoot, err := f.replication.ReplicateSubtree(f.ctx, template.ID, &target.ID)
	require.NoError(t, err)
	require.NotNil(t, newRoot)
	require.NotEqual(t, template.ID, newRoot.ID)
	require.Equal(t, "Crushing template", newRoot.Name)
	require.Equal(t, process.ID, newRoot.TierID)
	require.NotNil(t, newRoot.ParentID)
	require.Equal(t, target.ID, *newRoot.ParentID)
	require.False(t, newRoot.IsTemplate)
	require.False(t, newRoot.IsGeneric)

	children, err := f.levels.ListByParent(f.ctx, newRoot.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	names := []string{children[0].Name, children[1].Name}
	require.ElementsMatch(t, []string{"Primary crusher", "Secondary crusher"}, names)
	for _, c := range children {
		require.False(t, c.IsTemplate)
		require.False(t, c.IsGeneric)
	}

	var newPrimary *level.Level
	for _, c := range children {
		if c.Name == "Primary crusher" {
			newPrimary = c
		}
	}
	copied, err := f.activities.ListByLevel(f.ctx, newPrimary.ID)
	require.NoError(t, err)
	require.Len(t, copied, 1)
	require.Equal(t, "Check liners", copied[0].Description)
	require.Equal(t, 1, copied[0].DisplayOrder)
	require.NotNil(t, copied[0].TaskFrequency)
	require.Equal(t, freq, *copied[0].TaskFrequency)
	require.NotEqual(t, a.ID, copied[0].ID)

	values, err := f.values.ListByActivity(f.ctx, copied[0].ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, "torque 300Nm", values[0].Value)
}

func TestReplicationService_ReplicateSubtree_SourceStaysIntact(t *testing.T) {
	f := newFixture(t, Config{})
	process := f.addTier("Process", tier.ChainProcess)

	src := f.addLevel(process.ID, nil, "Milling")
	src.IsTemplate = true
	f.addActivity(src.ID, 0, "Inspect mill")

	_, err := f.replication.ReplicateSubtree(f.ctx, src.ID, nil)
	require.NoError(t, err)

	kept, err := f.levels.GetByID(f.ctx, src.ID)
	require.NoError(t, err)
	require.True(t, kept.IsTemplate)
	activities, err := f.activities.ListByLevel(f.ctx, src.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
}

func TestReplicationService_ReplicateSubtree_MissingSourceIsNoOp(t *testing.T) {
	f := newFixture(t, Config{})

	newRoot, err := f.replication.ReplicateSubtree(f.ctx, uuid.New(), nil)
	require.NoError(t, err)
	require.Nil(t, newRoot)
	require.Equal(t, 0, f.levels.Len())
}

func TestReplicationService_ReplicateSubtree_ChainOrderEnforcedWhenEnabled(t *testing.T) {
	f := newFixture(t, Config{ValidateChainOrder: true})
	f.addTier("Area", tier.ChainArea)
	process := f.addTier("Process", tier.ChainProcess)

	// A process-tier subtree cannot become a root.
	src := f.addLevel(process.ID, nil, "Crushing template")

	_, err := f.replication.ReplicateSubtree(f.ctx, src.ID, nil)
	require.ErrorIs(t, err, ErrChainOrder)
}

func TestReplicationService_ReplicateSubtree_PublishesReplicatedEvent(t *testing.T) {
	f := newFixture(t, Config{})
	process := f.addTier("Process", tier.ChainProcess)
	src := f.addLevel(process.ID, nil, "Milling")

	var got *level.ReplicatedEvent
	f.bus.Subscribe(func(e *level.ReplicatedEvent) {
		got = e
	})

	newRoot, err := f.replication.ReplicateSubtree(f.ctx, src.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, src.ID, got.SourceID)
	require.Equal(t, newRoot.ID, got.NewRootID)
}

func TestReplicationService_CopyActivity_CopiesValues(t *testing.T) {
	f := newFixture(t, Config{})
	process := f.addTier("Process", tier.ChainProcess)
	src := f.addLevel(process.ID, nil, "Milling")
	dst := f.addLevel(process.ID, nil, "Flotation")

	a := f.addActivity(src.ID, 3, "Replace screens")
	f.addValue(a.ID, "mesh 40")
	f.addValue(a.ID, "mesh 60")

	copied, err := f.replication.CopyActivity(f.ctx, a.ID, dst.ID)
	require.NoError(t, err)
	require.Equal(t, dst.ID, copied.LevelID)
	require.Equal(t, "Replace screens", copied.Description)
	require.NotEqual(t, a.ID, copied.ID)

	values, err := f.values.ListByActivity(f.ctx, copied.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)
}

func TestReplicationService_ReplicateSubtree_TargetInsideSourceRejected(t *testing.T) {
	f := newFixture(t, Config{})
	process := f.addTier("Process", tier.ChainProcess)
	system := f.addTier("System", tier.ChainSystem)

	root := f.addLevel(process.ID, nil, "Flotation")
	child := f.addLevel(system.ID, &root.ID, "Rougher cells")
	before := f.levels.Len()

	_, err := f.replication.ReplicateSubtree(f.ctx, root.ID, &child.ID)
	require.ErrorIs(t, err, ErrReplicateIntoSubtree)
	require.Equal(t, before, f.levels.Len())

	_, err = f.replication.ReplicateSubtree(f.ctx, root.ID, &root.ID)
	require.ErrorIs(t, err, ErrReplicateIntoSubtree)
	require.Equal(t, before, f.levels.Len())
}
