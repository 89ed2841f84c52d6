package persistence

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/attributevalue"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence/models"
	"github.com/iota-uz/levels/pkg/mapping"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgNullableUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil || *id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func nullableUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	u := uuid.UUID(v.Bytes)
	return &u
}

func toDomainTier(t *models.Tier) (*tier.Tier, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return nil, err
	}
	return &tier.Tier{
		ID:            id,
		Label:         t.Label,
		Color:         t.Color,
		ChainPosition: tier.ChainPosition(t.ChainPosition),
	}, nil
}

func toDomainLevel(l *models.Level) (*level.Level, error) {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return nil, err
	}
	tierID, err := uuid.Parse(l.TierID)
	if err != nil {
		return nil, err
	}
	return &level.Level{
		ID:                 id,
		TierID:             tierID,
		ParentID:           nullableUUID(l.ParentID),
		Name:               l.Name,
		IsTemplate:         l.IsTemplate,
		IsGeneric:          l.IsGeneric,
		IsMaintainableUnit: l.IsMaintainableUnit,
		Icon:               mapping.SQLNullStringToPointer(l.Icon),
		Comment:            mapping.SQLNullStringToPointer(l.Comment),
		Owner:              mapping.SQLNullStringToPointer(l.Owner),
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}, nil
}

func toDomainActivity(a *models.Activity) (*activity.Activity, error) {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return nil, err
	}
	levelID, err := uuid.Parse(a.LevelID)
	if err != nil {
		return nil, err
	}
	attributeTypeID, err := uuid.Parse(a.AttributeTypeID)
	if err != nil {
		return nil, err
	}
	return &activity.Activity{
		ID:                   id,
		LevelID:              levelID,
		AttributeTypeID:      attributeTypeID,
		DisplayOrder:         a.DisplayOrder,
		Description:          a.Description,
		FailureMode:          mapping.SQLNullStringToPointer(a.FailureMode),
		FailureEffect:        mapping.SQLNullStringToPointer(a.FailureEffect),
		MTTF:                 mapping.SQLNullFloat64ToPointer(a.MTTF),
		MTTFUnit:             mapping.SQLNullStringToPointer(a.MTTFUnit),
		FailureConsequenceID: nullableUUID(a.FailureConsequenceID),
		MaintenanceClassID:   nullableUUID(a.MaintenanceClassID),
		AccessConditionID:    nullableUUID(a.AccessConditionID),
		TaskFrequency:        mapping.SQLNullFloat64ToPointer(a.TaskFrequency),
		FrequencyUnit:        mapping.SQLNullStringToPointer(a.FrequencyUnit),
		Duration:             mapping.SQLNullFloat64ToPointer(a.Duration),
		ResourceCount:        mapping.SQLNullInt32ToPointer(a.ResourceCount),
		DisciplineID:         nullableUUID(a.DisciplineID),
	}, nil
}

func toDomainAttributeValue(v *models.AttributeValue) (*attributevalue.AttributeValue, error) {
	id, err := uuid.Parse(v.ID)
	if err != nil {
		return nil, err
	}
	activityID, err := uuid.Parse(v.ActivityID)
	if err != nil {
		return nil, err
	}
	return &attributevalue.AttributeValue{
		ID:         id,
		ActivityID: activityID,
		Value:      v.Value,
	}, nil
}
