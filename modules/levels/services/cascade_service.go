package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/attributevalue"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/pkg/composables"
	"github.com/iota-uz/levels/pkg/eventbus"
)

// CascadeService removes a level together with everything it transitively
// owns. Storage has no ON DELETE CASCADE on these tables, so the traversal
// itself is responsible for leaving no orphans.
type CascadeService struct {
	log        *logrus.Logger
	bus        eventbus.EventBus
	levels     level.Repository
	activities activity.Repository
	values     attributevalue.Repository
}

func NewCascadeService(
	log *logrus.Logger,
	bus eventbus.EventBus,
	levels level.Repository,
	activities activity.Repository,
	values attributevalue.Repository,
) *CascadeService {
	return &CascadeService{
		log:        log,
		bus:        bus,
		levels:     levels,
		activities: activities,
		values:     values,
	}
}

// DeleteLevelSubtree deletes levelID and its whole subtree bottom-up:
// attribute values, then activities, then child levels, then the level
// itself. The invocation runs in one transaction unless the caller already
// holds one. Returns the pre-deletion snapshot of the deleted level.
func (s *CascadeService) DeleteLevelSubtree(ctx context.Context, levelID uuid.UUID) (*level.Level, error) {
	var snapshot *level.Level
	err := composables.InTxOrCurrent(ctx, func(ctx context.Context) error {
		snap, err := s.levels.GetByID(ctx, levelID)
		if err != nil {
			return err
		}
		snapshot = snap

		// Explicit worklist instead of native recursion: subtree depth is
		// data-controlled. Discovery order is parents-first, so walking it
		// in reverse deletes every child before its parent.
		order := make([]uuid.UUID, 0, 16)
		stack := []uuid.UUID{levelID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			order = append(order, id)

			children, err := s.levels.ListByParent(ctx, id)
			if err != nil {
				return err
			}
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i].ID)
			}
		}

		for i := len(order) - 1; i >= 0; i-- {
			if err := s.deleteOwned(ctx, order[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"op":       "DeleteLevelSubtree",
		"level_id": levelID,
	}).Info("level subtree deleted")
	s.bus.Publish(&level.DeletedEvent{Level: snapshot})
	return snapshot, nil
}

// DeleteActivity removes a single activity together with its attribute
// values. Returns the pre-deletion snapshot.
func (s *CascadeService) DeleteActivity(ctx context.Context, activityID uuid.UUID) (*activity.Activity, error) {
	var snapshot *activity.Activity
	err := composables.InTxOrCurrent(ctx, func(ctx context.Context) error {
		snap, err := s.activities.GetByID(ctx, activityID)
		if err != nil {
			return err
		}
		snapshot = snap

		if err := s.values.DeleteByActivity(ctx, activityID); err != nil {
			return err
		}
		return s.activities.Delete(ctx, activityID)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"op":          "DeleteActivity",
		"activity_id": activityID,
	}).Info("level activity deleted")
	return snapshot, nil
}

func (s *CascadeService) deleteOwned(ctx context.Context, levelID uuid.UUID) error {
	activities, err := s.activities.ListByLevel(ctx, levelID)
	if err != nil {
		return err
	}
	for _, a := range activities {
		if err := s.values.DeleteByActivity(ctx, a.ID); err != nil {
			return err
		}
	}
	if err := s.activities.DeleteByLevel(ctx, levelID); err != nil {
		return err
	}
	// A level removed concurrently mid-traversal is already in the state
	// this operation is driving toward.
	if err := s.levels.Delete(ctx, levelID); err != nil && !errors.Is(err, level.ErrNotFound) {
		return err
	}
	return nil
}
