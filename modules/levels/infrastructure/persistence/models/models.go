package models

import (
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Tier struct {
	ID            string
	Label         string
	Color         string
	ChainPosition int
}

type Level struct {
	ID                 string
	TierID             string
	ParentID           pgtype.UUID
	Name               string
	IsTemplate         bool
	IsGeneric          bool
	IsMaintainableUnit bool
	Icon               sql.NullString
	Comment            sql.NullString
	Owner              sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Activity struct {
	ID              string
	LevelID         string
	AttributeTypeID string
	DisplayOrder    int
	Description     string

	FailureMode          sql.NullString
	FailureEffect        sql.NullString
	MTTF                 sql.NullFloat64
	MTTFUnit             sql.NullString
	FailureConsequenceID pgtype.UUID
	MaintenanceClassID   pgtype.UUID
	AccessConditionID    pgtype.UUID
	TaskFrequency        sql.NullFloat64
	FrequencyUnit        sql.NullString
	Duration             sql.NullFloat64
	ResourceCount        sql.NullInt32
	DisciplineID         pgtype.UUID
}

type AttributeValue struct {
	ID         string
	ActivityID string
	Value      string
}
