package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/pkg/serrors"
)

var ErrNotFound = serrors.NotFound("ACTIVITY_NOT_FOUND", "level activity not found")

// Activity is a maintenance task record owned by exactly one level.
// DisplayOrder is the ordering key among siblings, ties broken by id.
// Everything from FailureMode down is opaque maintenance-planning payload:
// replication copies it verbatim and never interprets it.
type Activity struct {
	ID              uuid.UUID
	LevelID         uuid.UUID
	AttributeTypeID uuid.UUID
	DisplayOrder    int
	Description     string

	FailureMode          *string
	FailureEffect        *string
	MTTF                 *float64
	MTTFUnit             *string
	FailureConsequenceID *uuid.UUID
	MaintenanceClassID   *uuid.UUID
	AccessConditionID    *uuid.UUID
	TaskFrequency        *float64
	FrequencyUnit        *string
	Duration             *float64
	ResourceCount        *int32
	DisciplineID         *uuid.UUID
}

// Filter narrows QueryActivities results. All fields are optional; each
// present field is an exact-match predicate joined by AND.
type Filter struct {
	LevelID              *uuid.UUID
	DisciplineID         *uuid.UUID
	TaskFrequency        *float64 `validate:"omitempty,gte=0"`
	FrequencyUnit        *string  `validate:"omitempty,max=32"`
	AccessConditionID    *uuid.UUID
	MaintenanceClassID   *uuid.UUID
	FailureConsequenceID *uuid.UUID
}

// EnrichedRow is an activity joined with its level, tier color, and the
// labels of its optional reference fields. Missing references leave nil
// labels, never errors.
type EnrichedRow struct {
	Activity

	LevelName     string
	LevelTierID   uuid.UUID
	LevelParentID *uuid.UUID
	TierColor     string

	DisciplineLabel         *string
	MaintenanceClassLabel   *string
	AccessConditionLabel    *string
	FailureConsequenceLabel *string
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	// ListByLevel returns activities of levelID ordered by display order,
	// ties broken by id.
	ListByLevel(ctx context.Context, levelID uuid.UUID) ([]*Activity, error)
	// ListEnriched joins activities of the given levels (all levels when
	// levelIDs is nil) with level/tier data and reference labels, applying
	// the filter and sorting by level name then display order.
	ListEnriched(ctx context.Context, levelIDs []uuid.UUID, f *Filter) ([]*EnrichedRow, error)
	Create(ctx context.Context, a *Activity) (*Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLevel(ctx context.Context, levelID uuid.UUID) error
}
