package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/attributevalue"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/pkg/composables"
	"github.com/iota-uz/levels/pkg/eventbus"
	"github.com/iota-uz/levels/pkg/serrors"
)

var (
	ErrChainOrder           = serrors.Validation("LEVEL_CHAIN_ORDER", "parent level must belong to the immediately preceding tier")
	ErrReplicateIntoSubtree = serrors.Validation("LEVEL_REPLICATE_TARGET_IN_SUBTREE", "target parent is inside the source subtree")
)

// ReplicationService clones a subtree under a new parent, producing fresh
// identifiers throughout. It backs both "copy a component elsewhere" and
// "import a catalog template into a project".
type ReplicationService struct {
	cfg        Config
	log        *logrus.Logger
	bus        eventbus.EventBus
	levels     level.Repository
	activities activity.Repository
	values     attributevalue.Repository
	tiers      tier.Repository
}

func NewReplicationService(
	cfg Config,
	log *logrus.Logger,
	bus eventbus.EventBus,
	levels level.Repository,
	activities activity.Repository,
	values attributevalue.Repository,
	tiers tier.Repository,
) *ReplicationService {
	return &ReplicationService{
		cfg:        cfg,
		log:        log,
		bus:        bus,
		levels:     levels,
		activities: activities,
		values:     values,
		tiers:      tiers,
	}
}

// ReplicateSubtree copies sourceID and everything it owns under
// targetParentID, parent before children, preserving sibling order. Every
// copied level gets is_template and is_generic forced to false: a clone is
// a concrete use, not a reusable template. A missing source is a no-op,
// matching idempotent import semantics. A target parent inside the source
// subtree (the source itself included) is rejected with ErrReplicateIntoSubtree.
// Activities are copied with the full maintenance-planning field set.
func (s *ReplicationService) ReplicateSubtree(ctx context.Context, sourceID uuid.UUID, targetParentID *uuid.UUID) (*level.Level, error) {
	var newRoot *level.Level

	err := composables.InTxOrCurrent(ctx, func(ctx context.Context) error {
		src, err := s.levels.GetByID(ctx, sourceID)
		if err != nil {
			if errors.Is(err, level.ErrNotFound) {
				return nil
			}
			return err
		}
		if s.cfg.ValidateChainOrder {
			if err := checkChainOrder(ctx, s.tiers, s.levels, src.TierID, targetParentID); err != nil {
				return err
			}
		}

		// Snapshot the descendant set before the first insert. Copies land
		// in the same tables the traversal reads, so without the snapshot a
		// target inside the source subtree makes the walk chase its own
		// output and never terminate.
		subtreeIDs, err := s.levels.ListSubtreeIDs(ctx, sourceID)
		if err != nil {
			return err
		}
		inSource := make(map[uuid.UUID]struct{}, len(subtreeIDs))
		for _, id := range subtreeIDs {
			inSource[id] = struct{}{}
		}
		if targetParentID != nil {
			if _, ok := inSource[*targetParentID]; ok {
				return ErrReplicateIntoSubtree
			}
		}

		type task struct {
			sourceID uuid.UUID
			parentID *uuid.UUID
		}
		// LIFO worklist; children are pushed in reverse so pop order
		// matches the source sibling order.
		stack := []task{{sourceID: sourceID, parentID: targetParentID}}
		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			node, err := s.levels.GetByID(ctx, t.sourceID)
			if err != nil {
				if errors.Is(err, level.ErrNotFound) {
					continue
				}
				return err
			}

			created, err := s.copyLevel(ctx, node, t.parentID)
			if err != nil {
				return err
			}
			if newRoot == nil {
				newRoot = created
			}

			if err := s.copyActivities(ctx, node.ID, created.ID); err != nil {
				return err
			}

			children, err := s.levels.ListByParent(ctx, node.ID)
			if err != nil {
				return err
			}
			for i := len(children) - 1; i >= 0; i-- {
				// Only descend into nodes from the snapshot; anything else
				// under a source node is a copy made by this traversal.
				if _, ok := inSource[children[i].ID]; !ok {
					continue
				}
				stack = append(stack, task{sourceID: children[i].ID, parentID: &created.ID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if newRoot != nil {
		s.log.WithFields(logrus.Fields{
			"op":          "ReplicateSubtree",
			"source_id":   sourceID,
			"new_root_id": newRoot.ID,
		}).Info("level subtree replicated")
		s.bus.Publish(&level.ReplicatedEvent{SourceID: sourceID, NewRootID: newRoot.ID})
	}
	return newRoot, nil
}

// CopyActivity clones a single activity, attribute values included, onto
// another level.
func (s *ReplicationService) CopyActivity(ctx context.Context, activityID, targetLevelID uuid.UUID) (*activity.Activity, error) {
	var created *activity.Activity
	err := composables.InTxOrCurrent(ctx, func(ctx context.Context) error {
		src, err := s.activities.GetByID(ctx, activityID)
		if err != nil {
			return err
		}
		if _, err := s.levels.GetByID(ctx, targetLevelID); err != nil {
			return err
		}

		clone := *src
		clone.ID = uuid.Nil
		clone.LevelID = targetLevelID
		created, err = s.activities.Create(ctx, &clone)
		if err != nil {
			return err
		}
		return s.copyValues(ctx, src.ID, created.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"op":          "CopyActivity",
		"activity_id": activityID,
		"level_id":    targetLevelID,
	}).Info("activity copied")
	return created, nil
}

func (s *ReplicationService) copyLevel(ctx context.Context, src *level.Level, parentID *uuid.UUID) (*level.Level, error) {
	clone := *src
	clone.ID = uuid.Nil
	clone.ParentID = parentID
	clone.IsTemplate = false
	clone.IsGeneric = false
	return s.levels.Create(ctx, &clone)
}

func (s *ReplicationService) copyActivities(ctx context.Context, sourceLevelID, targetLevelID uuid.UUID) error {
	activities, err := s.activities.ListByLevel(ctx, sourceLevelID)
	if err != nil {
		return err
	}
	for _, a := range activities {
		clone := *a
		clone.ID = uuid.Nil
		clone.LevelID = targetLevelID
		created, err := s.activities.Create(ctx, &clone)
		if err != nil {
			return err
		}
		if err := s.copyValues(ctx, a.ID, created.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReplicationService) copyValues(ctx context.Context, sourceActivityID, targetActivityID uuid.UUID) error {
	values, err := s.values.ListByActivity(ctx, sourceActivityID)
	if err != nil {
		return err
	}
	for _, v := range values {
		if _, err := s.values.Create(ctx, &attributevalue.AttributeValue{
			ActivityID: targetActivityID,
			Value:      v.Value,
		}); err != nil {
			return err
		}
	}
	return nil
}
