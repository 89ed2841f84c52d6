package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/levels/modules/levels/domain/entities/attributevalue"
	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence/models"
	"github.com/iota-uz/levels/pkg/composables"
)

const (
	attributeValueFindQuery = `SELECT id, activity_id, value FROM attribute_values`
)

type AttributeValueRepository struct{}

func NewAttributeValueRepository() attributevalue.Repository {
	return &AttributeValueRepository{}
}

func (r *AttributeValueRepository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*attributevalue.AttributeValue, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(
		ctx,
		attributeValueFindQuery+" WHERE activity_id = $1 ORDER BY id ASC",
		activityID.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var values []*attributevalue.AttributeValue
	for rows.Next() {
		var v models.AttributeValue
		if err := rows.Scan(&v.ID, &v.ActivityID, &v.Value); err != nil {
			return nil, errors.Wrap(err, "failed to scan attribute value row")
		}
		entity, err := toDomainAttributeValue(&v)
		if err != nil {
			return nil, err
		}
		values = append(values, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return values, nil
}

func (r *AttributeValueRepository) Create(ctx context.Context, v *attributevalue.AttributeValue) (*attributevalue.AttributeValue, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var idStr string
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO attribute_values (activity_id, value) VALUES ($1, $2) RETURNING id`,
		v.ActivityID.String(),
		v.Value,
	).Scan(&idStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return &attributevalue.AttributeValue{
		ID:         id,
		ActivityID: v.ActivityID,
		Value:      v.Value,
	}, nil
}

func (r *AttributeValueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM attribute_values WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attributevalue.ErrNotFound
	}
	return nil
}

func (r *AttributeValueRepository) DeleteByActivity(ctx context.Context, activityID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM attribute_values WHERE activity_id = $1`, activityID.String())
	return err
}
