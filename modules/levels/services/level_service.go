package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/pkg/composables"
	"github.com/iota-uz/levels/pkg/serrors"
)

var ErrNameRequired = serrors.Validation("LEVEL_NAME_REQUIRED", "level name is required")

// LevelService is the CRUD facade for levels. It deliberately has no
// Delete: once a level may own children or activities, single-row deletion
// can orphan them, so removal goes through CascadeService only.
type LevelService struct {
	cfg    Config
	log    *logrus.Logger
	levels level.Repository
	tiers  tier.Repository
}

func NewLevelService(cfg Config, log *logrus.Logger, levels level.Repository, tiers tier.Repository) *LevelService {
	return &LevelService{cfg: cfg, log: log, levels: levels, tiers: tiers}
}

func (s *LevelService) GetByID(ctx context.Context, id uuid.UUID) (*level.Level, error) {
	return s.levels.GetByID(ctx, id)
}

func (s *LevelService) List(ctx context.Context, params *level.FindParams) ([]*level.Level, error) {
	return s.levels.List(ctx, params)
}

func (s *LevelService) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*level.Level, error) {
	return s.levels.ListByParent(ctx, parentID)
}

func (s *LevelService) Create(ctx context.Context, l *level.Level) (*level.Level, error) {
	if l.Name == "" {
		return nil, ErrNameRequired
	}
	var created *level.Level
	err := composables.InTxOrCurrent(ctx, func(ctx context.Context) error {
		if s.cfg.ValidateChainOrder {
			if err := checkChainOrder(ctx, s.tiers, s.levels, l.TierID, l.ParentID); err != nil {
				return err
			}
		}
		var err error
		created, err = s.levels.Create(ctx, l)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *LevelService) Update(ctx context.Context, l *level.Level) (*level.Level, error) {
	if l.Name == "" {
		return nil, ErrNameRequired
	}
	var updated *level.Level
	err := composables.InTxOrCurrent(ctx, func(ctx context.Context) error {
		if s.cfg.ValidateChainOrder {
			if err := checkChainOrder(ctx, s.tiers, s.levels, l.TierID, l.ParentID); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.levels.Update(ctx, l)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkChainOrder verifies the parent-tier invariant: roots sit on the
// first tier, every other level directly below its parent's tier.
func checkChainOrder(ctx context.Context, tiers tier.Repository, levels level.Repository, tierID uuid.UUID, parentID *uuid.UUID) error {
	levelTier, err := tiers.GetByID(ctx, tierID)
	if err != nil {
		return err
	}
	if parentID == nil {
		if levelTier.ChainPosition != tier.ChainArea {
			return ErrChainOrder
		}
		return nil
	}
	parent, err := levels.GetByID(ctx, *parentID)
	if err != nil {
		return err
	}
	parentTier, err := tiers.GetByID(ctx, parent.TierID)
	if err != nil {
		return err
	}
	if parentTier.ChainPosition+1 != levelTier.ChainPosition {
		return ErrChainOrder
	}
	return nil
}
