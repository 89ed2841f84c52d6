package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence/models"
	"github.com/iota-uz/levels/pkg/composables"
	"github.com/iota-uz/levels/pkg/mapping"
)

const (
	activityColumns = `id, level_id, attribute_type_id, display_order, description,
		failure_mode, failure_effect, mttf, mttf_unit, failure_consequence_id,
		maintenance_class_id, access_condition_id, task_frequency, frequency_unit,
		duration, resource_count, discipline_id`

	activityFindQuery = `SELECT ` + activityColumns + ` FROM level_activities`

	activityEnrichedQuery = `
		SELECT
			a.id, a.level_id, a.attribute_type_id, a.display_order, a.description,
			a.failure_mode, a.failure_effect, a.mttf, a.mttf_unit, a.failure_consequence_id,
			a.maintenance_class_id, a.access_condition_id, a.task_frequency, a.frequency_unit,
			a.duration, a.resource_count, a.discipline_id,
			l.name, l.tier_id, l.parent_id, t.color,
			d.label, mc.label, ac.label, fc.label
		FROM level_activities a
		JOIN levels l ON l.id = a.level_id
		JOIN tiers t ON t.id = l.tier_id
		LEFT JOIN disciplines d ON d.id = a.discipline_id
		LEFT JOIN maintenance_classes mc ON mc.id = a.maintenance_class_id
		LEFT JOIN access_conditions ac ON ac.id = a.access_condition_id
		LEFT JOIN failure_consequences fc ON fc.id = a.failure_consequence_id`
)

type ActivityRepository struct{}

func NewActivityRepository() activity.Repository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*activity.Activity, error) {
	activities, err := r.queryActivities(ctx, activityFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, activity.ErrNotFound
	}
	return activities[0], nil
}

func (r *ActivityRepository) ListByLevel(ctx context.Context, levelID uuid.UUID) ([]*activity.Activity, error) {
	return r.queryActivities(
		ctx,
		activityFindQuery+" WHERE level_id = $1 ORDER BY display_order ASC, id ASC",
		levelID.String(),
	)
}

func (r *ActivityRepository) ListEnriched(ctx context.Context, levelIDs []uuid.UUID, f *activity.Filter) ([]*activity.EnrichedRow, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	where, args := buildActivityFilters(levelIDs, f)
	query := activityEnrichedQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.name ASC, a.display_order ASC, a.id ASC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	results := make([]*activity.EnrichedRow, 0, 32)
	for rows.Next() {
		var a models.Activity
		var levelName, tierID, tierColor string
		var parentID pgtype.UUID
		var disciplineLabel, maintenanceClassLabel, accessConditionLabel, failureConsequenceLabel sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.LevelID,
			&a.AttributeTypeID,
			&a.DisplayOrder,
			&a.Description,
			&a.FailureMode,
			&a.FailureEffect,
			&a.MTTF,
			&a.MTTFUnit,
			&a.FailureConsequenceID,
			&a.MaintenanceClassID,
			&a.AccessConditionID,
			&a.TaskFrequency,
			&a.FrequencyUnit,
			&a.Duration,
			&a.ResourceCount,
			&a.DisciplineID,
			&levelName,
			&tierID,
			&parentID,
			&tierColor,
			&disciplineLabel,
			&maintenanceClassLabel,
			&accessConditionLabel,
			&failureConsequenceLabel,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan activity row")
		}

		entity, err := toDomainActivity(&a)
		if err != nil {
			return nil, err
		}
		levelTierID, err := uuid.Parse(tierID)
		if err != nil {
			return nil, err
		}
		results = append(results, &activity.EnrichedRow{
			Activity:                *entity,
			LevelName:               levelName,
			LevelTierID:             levelTierID,
			LevelParentID:           nullableUUID(parentID),
			TierColor:               tierColor,
			DisciplineLabel:         mapping.SQLNullStringToPointer(disciplineLabel),
			MaintenanceClassLabel:   mapping.SQLNullStringToPointer(maintenanceClassLabel),
			AccessConditionLabel:    mapping.SQLNullStringToPointer(accessConditionLabel),
			FailureConsequenceLabel: mapping.SQLNullStringToPointer(failureConsequenceLabel),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return results, nil
}

func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) (*activity.Activity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO level_activities (
			level_id, attribute_type_id, display_order, description,
			failure_mode, failure_effect, mttf, mttf_unit, failure_consequence_id,
			maintenance_class_id, access_condition_id, task_frequency, frequency_unit,
			duration, resource_count, discipline_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		a.LevelID.String(),
		a.AttributeTypeID.String(),
		a.DisplayOrder,
		a.Description,
		mapping.PointerToSQLNullString(a.FailureMode),
		mapping.PointerToSQLNullString(a.FailureEffect),
		mapping.PointerToSQLNullFloat64(a.MTTF),
		mapping.PointerToSQLNullString(a.MTTFUnit),
		pgNullableUUID(a.FailureConsequenceID),
		pgNullableUUID(a.MaintenanceClassID),
		pgNullableUUID(a.AccessConditionID),
		mapping.PointerToSQLNullFloat64(a.TaskFrequency),
		mapping.PointerToSQLNullString(a.FrequencyUnit),
		mapping.PointerToSQLNullFloat64(a.Duration),
		mapping.PointerToSQLNullInt32(a.ResourceCount),
		pgNullableUUID(a.DisciplineID),
	).Scan(&idStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM level_activities WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrNotFound
	}
	return nil
}

func (r *ActivityRepository) DeleteByLevel(ctx context.Context, levelID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM level_activities WHERE level_id = $1`, levelID.String())
	return err
}

func (r *ActivityRepository) queryActivities(ctx context.Context, query string, args ...interface{}) ([]*activity.Activity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var activities []*activity.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(
			&a.ID,
			&a.LevelID,
			&a.AttributeTypeID,
			&a.DisplayOrder,
			&a.Description,
			&a.FailureMode,
			&a.FailureEffect,
			&a.MTTF,
			&a.MTTFUnit,
			&a.FailureConsequenceID,
			&a.MaintenanceClassID,
			&a.AccessConditionID,
			&a.TaskFrequency,
			&a.FrequencyUnit,
			&a.Duration,
			&a.ResourceCount,
			&a.DisciplineID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan activity row")
		}
		entity, err := toDomainActivity(&a)
		if err != nil {
			return nil, err
		}
		activities = append(activities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return activities, nil
}

func buildActivityFilters(levelIDs []uuid.UUID, f *activity.Filter) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	argPos := 1

	if levelIDs != nil {
		idStrs := make([]string, 0, len(levelIDs))
		for _, id := range levelIDs {
			idStrs = append(idStrs, id.String())
		}
		where = append(where, fmt.Sprintf("a.level_id = ANY($%d::uuid[])", argPos))
		args = append(args, idStrs)
		argPos++
	}
	if f == nil {
		return where, args
	}

	if f.DisciplineID != nil {
		where = append(where, fmt.Sprintf("a.discipline_id = $%d", argPos))
		args = append(args, f.DisciplineID.String())
		argPos++
	}
	if f.TaskFrequency != nil {
		where = append(where, fmt.Sprintf("a.task_frequency = $%d", argPos))
		args = append(args, *f.TaskFrequency)
		argPos++
	}
	if f.FrequencyUnit != nil {
		where = append(where, fmt.Sprintf("a.frequency_unit = $%d", argPos))
		args = append(args, *f.FrequencyUnit)
		argPos++
	}
	if f.AccessConditionID != nil {
		where = append(where, fmt.Sprintf("a.access_condition_id = $%d", argPos))
		args = append(args, f.AccessConditionID.String())
		argPos++
	}
	if f.MaintenanceClassID != nil {
		where = append(where, fmt.Sprintf("a.maintenance_class_id = $%d", argPos))
		args = append(args, f.MaintenanceClassID.String())
		argPos++
	}
	if f.FailureConsequenceID != nil {
		where = append(where, fmt.Sprintf("a.failure_consequence_id = $%d", argPos))
		args = append(args, f.FailureConsequenceID.String())
	}
	return where, args
}
