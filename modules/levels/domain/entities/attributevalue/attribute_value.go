package attributevalue

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/pkg/serrors"
)

var ErrNotFound = serrors.NotFound("ATTRIBUTE_VALUE_NOT_FOUND", "attribute value not found")

// AttributeValue belongs to exactly one activity and is destroyed with it.
type AttributeValue struct {
	ID         uuid.UUID
	ActivityID uuid.UUID
	Value      string
}

type Repository interface {
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*AttributeValue, error)
	Create(ctx context.Context, v *AttributeValue) (*AttributeValue, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByActivity(ctx context.Context, activityID uuid.UUID) error
}
