// Package itf holds in-memory repository implementations for tests. They
// mirror the ordering and not-found semantics of the Postgres
// repositories so service behavior can be exercised without a database.
package itf

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/attributevalue"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
)

type TierRepository struct {
	items []*tier.Tier
}

func NewTierRepository() *TierRepository {
	return &TierRepository{}
}

func (r *TierRepository) Seed(t *tier.Tier) *tier.Tier {
	r.items = append(r.items, t)
	return t
}

func (r *TierRepository) List(ctx context.Context) ([]*tier.Tier, error) {
	out := append([]*tier.Tier(nil), r.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ChainPosition < out[j].ChainPosition })
	return out, nil
}

func (r *TierRepository) GetByID(ctx context.Context, id uuid.UUID) (*tier.Tier, error) {
	for _, t := range r.items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, tier.ErrNotFound
}

type LevelRepository struct {
	byID map[uuid.UUID]*level.Level
}

func NewLevelRepository() *LevelRepository {
	return &LevelRepository{byID: map[uuid.UUID]*level.Level{}}
}

func (r *LevelRepository) Seed(l *level.Level) *level.Level {
	r.byID[l.ID] = l
	return l
}

func (r *LevelRepository) Len() int {
	return len(r.byID)
}

func (r *LevelRepository) Has(id uuid.UUID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *LevelRepository) GetByID(ctx context.Context, id uuid.UUID) (*level.Level, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, level.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *LevelRepository) List(ctx context.Context, params *level.FindParams) ([]*level.Level, error) {
	if params == nil {
		params = &level.FindParams{}
	}
	var out []*level.Level
	for _, l := range r.byID {
		if params.TierID != nil && l.TierID != *params.TierID {
			continue
		}
		if params.ParentID != nil {
			if l.ParentID == nil || *l.ParentID != *params.ParentID {
				continue
			}
		} else if params.RootsOnly && l.ParentID != nil {
			continue
		}
		clone := *l
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *LevelRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*level.Level, error) {
	var out []*level.Level
	for _, l := range r.byID {
		if l.ParentID != nil && *l.ParentID == parentID {
			clone := *l
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *LevelRepository) ListSubtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	if _, ok := r.byID[rootID]; !ok {
		return nil, nil
	}
	ids := []uuid.UUID{rootID}
	frontier := []uuid.UUID{rootID}
	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, parent := range frontier {
			children, _ := r.ListByParent(ctx, parent)
			for _, c := range children {
				ids = append(ids, c.ID)
				next = append(next, c.ID)
			}
		}
		frontier = next
	}
	return ids, nil
}

func (r *LevelRepository) Create(ctx context.Context, l *level.Level) (*level.Level, error) {
	clone := *l
	clone.ID = uuid.New()
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *LevelRepository) Update(ctx context.Context, l *level.Level) (*level.Level, error) {
	if _, ok := r.byID[l.ID]; !ok {
		return nil, level.ErrNotFound
	}
	clone := *l
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *LevelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return level.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type ActivityRepository struct {
	levels *LevelRepository
	tiers  *TierRepository
	byID   map[uuid.UUID]*activity.Activity
}

func NewActivityRepository(levels *LevelRepository, tiers *TierRepository) *ActivityRepository {
	return &ActivityRepository{levels: levels, tiers: tiers, byID: map[uuid.UUID]*activity.Activity{}}
}

func (r *ActivityRepository) Seed(a *activity.Activity) *activity.Activity {
	r.byID[a.ID] = a
	return a
}

func (r *ActivityRepository) Len() int {
	return len(r.byID)
}

func (r *ActivityRepository) Has(id uuid.UUID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*activity.Activity, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, activity.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *ActivityRepository) ListByLevel(ctx context.Context, levelID uuid.UUID) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, a := range r.byID {
		if a.LevelID == levelID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *ActivityRepository) ListEnriched(ctx context.Context, levelIDs []uuid.UUID, f *activity.Filter) ([]*activity.EnrichedRow, error) {
	allowed := map[uuid.UUID]struct{}{}
	for _, id := range levelIDs {
		allowed[id] = struct{}{}
	}

	var out []*activity.EnrichedRow
	for _, a := range r.byID {
		if levelIDs != nil {
			if _, ok := allowed[a.LevelID]; !ok {
				continue
			}
		}
		if !matchesFilter(a, f) {
			continue
		}
		l, ok := r.levels.byID[a.LevelID]
		if !ok {
			continue
		}
		row := &activity.EnrichedRow{Activity: *a, LevelName: l.Name, LevelTierID: l.TierID, LevelParentID: l.ParentID}
		for _, t := range r.tiers.items {
			if t.ID == l.TierID {
				row.TierColor = t.Color
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LevelName != out[j].LevelName {
			return out[i].LevelName < out[j].LevelName
		}
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func matchesFilter(a *activity.Activity, f *activity.Filter) bool {
	if f == nil {
		return true
	}
	if f.DisciplineID != nil && (a.DisciplineID == nil || *a.DisciplineID != *f.DisciplineID) {
		return false
	}
	if f.TaskFrequency != nil && (a.TaskFrequency == nil || *a.TaskFrequency != *f.TaskFrequency) {
		return false
	}
	if f.FrequencyUnit != nil && (a.FrequencyUnit == nil || *a.FrequencyUnit != *f.FrequencyUnit) {
		return false
	}
	if f.AccessConditionID != nil && (a.AccessConditionID == nil || *a.AccessConditionID != *f.AccessConditionID) {
		return false
	}
	if f.MaintenanceClassID != nil && (a.MaintenanceClassID == nil || *a.MaintenanceClassID != *f.MaintenanceClassID) {
		return false
	}
	if f.FailureConsequenceID != nil && (a.FailureConsequenceID == nil || *a.FailureConsequenceID != *f.FailureConsequenceID) {
		return false
	}
	return true
}

func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) (*activity.Activity, error) {
	clone := *a
	clone.ID = uuid.New()
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return activity.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ActivityRepository) DeleteByLevel(ctx context.Context, levelID uuid.UUID) error {
	for id, a := range r.byID {
		if a.LevelID == levelID {
			delete(r.byID, id)
		}
	}
	return nil
}

type ValueRepository struct {
	byID map[uuid.UUID]*attributevalue.AttributeValue
}

func NewValueRepository() *ValueRepository {
	return &ValueRepository{byID: map[uuid.UUID]*attributevalue.AttributeValue{}}
}

func (r *ValueRepository) Seed(v *attributevalue.AttributeValue) *attributevalue.AttributeValue {
	r.byID[v.ID] = v
	return v
}

func (r *ValueRepository) Len() int {
	return len(r.byID)
}

func (r *ValueRepository) Has(id uuid.UUID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *ValueRepository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*attributevalue.AttributeValue, error) {
	var out []*attributevalue.AttributeValue
	for _, v := range r.byID {
		if v.ActivityID == activityID {
			clone := *v
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *ValueRepository) Create(ctx context.Context, v *attributevalue.AttributeValue) (*attributevalue.AttributeValue, error) {
	clone := *v
	clone.ID = uuid.New()
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *ValueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return attributevalue.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ValueRepository) DeleteByActivity(ctx context.Context, activityID uuid.UUID) error {
	for id, v := range r.byID {
		if v.ActivityID == activityID {
			delete(r.byID, id)
		}
	}
	return nil
}
