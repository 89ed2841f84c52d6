package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/pkg/constants"
	"github.com/iota-uz/levels/pkg/serrors"
)

var ErrInvalidFilter = serrors.Validation("ACTIVITY_FILTER_INVALID", "invalid activity filter")

// QueryService answers enriched activity queries over a level's transitive
// closure.
type QueryService struct {
	log        *logrus.Logger
	levels     level.Repository
	activities activity.Repository
}

func NewQueryService(log *logrus.Logger, levels level.Repository, activities activity.Repository) *QueryService {
	return &QueryService{log: log, levels: levels, activities: activities}
}

// QueryActivities returns the activities of the filter's level and all of
// its descendants (or of every level when no level is given), enriched with
// level/tier data and reference labels, every present filter field applied
// as an exact-match predicate. An unknown level yields an empty result,
// never an error.
func (s *QueryService) QueryActivities(ctx context.Context, f *activity.Filter) ([]*activity.EnrichedRow, error) {
	if f == nil {
		f = &activity.Filter{}
	}
	if err := constants.Validate.Struct(f); err != nil {
		return nil, ErrInvalidFilter.WithCause(err)
	}

	var levelIDs []uuid.UUID
	if f.LevelID != nil {
		ids, err := s.levels.ListSubtreeIDs(ctx, *f.LevelID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []*activity.EnrichedRow{}, nil
		}
		levelIDs = ids
	}

	rows, err := s.activities.ListEnriched(ctx, levelIDs, f)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"op":   "QueryActivities",
		"rows": len(rows),
	}).Debug("activity query executed")
	return rows, nil
}
