package level

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/pkg/serrors"
)

var ErrNotFound = serrors.NotFound("LEVEL_NOT_FOUND", "level not found")

// Level is a node in the decomposition forest. ParentID is nil for root
// levels, which belong to the first tier in the chain. The parent-tier
// invariant (parent sits on the immediately preceding tier) is assumed by
// storage and only enforced when the service is configured to validate it.
type Level struct {
	ID                 uuid.UUID
	TierID             uuid.UUID
	ParentID           *uuid.UUID
	Name               string
	IsTemplate         bool
	IsGeneric          bool
	IsMaintainableUnit bool
	Icon               *string
	Comment            *string
	Owner              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type FindParams struct {
	TierID   *uuid.UUID
	ParentID *uuid.UUID
	// RootsOnly selects levels with no parent; ignored when ParentID is set.
	RootsOnly bool
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Level, error)
	List(ctx context.Context, params *FindParams) ([]*Level, error)
	// ListByParent returns the direct children of parentID in ascending id
	// order, the order replication preserves.
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*Level, error)
	// ListSubtreeIDs returns rootID plus every descendant reachable through
	// parent references, deduplicated, parents before their children.
	ListSubtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, l *Level) (*Level, error)
	Update(ctx context.Context, l *Level) (*Level, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeletedEvent is published after a subtree deletion commits.
type DeletedEvent struct {
	Level *Level
}

// ReplicatedEvent is published after a subtree replication commits.
type ReplicatedEvent struct {
	SourceID  uuid.UUID
	NewRootID uuid.UUID
}
