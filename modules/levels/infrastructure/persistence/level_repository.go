package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence/models"
	"github.com/iota-uz/levels/pkg/composables"
	"github.com/iota-uz/levels/pkg/mapping"
)

const (
	levelFindQuery = `
		SELECT id, tier_id, parent_id, name, is_template, is_generic, is_maintainable_unit,
			icon, comment, owner, created_at, updated_at
		FROM levels`

	// Parents come out before their children so deletion can walk the
	// result in reverse.
	levelSubtreeQuery = `
		WITH RECURSIVE subtree AS (
			SELECT id, 0 AS depth
			FROM levels
			WHERE id = $1
			UNION ALL
			SELECT l.id, s.depth + 1
			FROM levels l
			JOIN subtree s ON l.parent_id = s.id
		)
		SELECT id FROM subtree ORDER BY depth ASC, id ASC`
)

type LevelRepository struct{}

func NewLevelRepository() level.Repository {
	return &LevelRepository{}
}

func (r *LevelRepository) GetByID(ctx context.Context, id uuid.UUID) (*level.Level, error) {
	levels, err := r.queryLevels(ctx, levelFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, level.ErrNotFound
	}
	return levels[0], nil
}

func (r *LevelRepository) List(ctx context.Context, params *level.FindParams) ([]*level.Level, error) {
	where, args := buildLevelFilters(params)
	query := levelFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC, id ASC"
	return r.queryLevels(ctx, query, args...)
}

func (r *LevelRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*level.Level, error) {
	return r.queryLevels(ctx, levelFindQuery+" WHERE parent_id = $1 ORDER BY id ASC", parentID.String())
}

func (r *LevelRepository) ListSubtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, levelSubtreeQuery, rootID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute subtree query")
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, 16)
	seen := make(map[uuid.UUID]struct{}, 16)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "failed to scan subtree row")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return ids, nil
}

func (r *LevelRepository) Create(ctx context.Context, l *level.Level) (*level.Level, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO levels (tier_id, parent_id, name, is_template, is_generic, is_maintainable_unit, icon, comment, owner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		l.TierID.String(),
		pgNullableUUID(l.ParentID),
		l.Name,
		l.IsTemplate,
		l.IsGeneric,
		l.IsMaintainableUnit,
		mapping.PointerToSQLNullString(l.Icon),
		mapping.PointerToSQLNullString(l.Comment),
		mapping.PointerToSQLNullString(l.Owner),
	).Scan(&idStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *LevelRepository) Update(ctx context.Context, l *level.Level) (*level.Level, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE levels
		SET tier_id = $1, parent_id = $2, name = $3, is_template = $4, is_generic = $5,
			is_maintainable_unit = $6, icon = $7, comment = $8, owner = $9, updated_at = now()
		WHERE id = $10
	`
	tag, err := tx.Exec(
		ctx,
		query,
		l.TierID.String(),
		pgNullableUUID(l.ParentID),
		l.Name,
		l.IsTemplate,
		l.IsGeneric,
		l.IsMaintainableUnit,
		mapping.PointerToSQLNullString(l.Icon),
		mapping.PointerToSQLNullString(l.Comment),
		mapping.PointerToSQLNullString(l.Owner),
		l.ID.String(),
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, level.ErrNotFound
	}
	return r.GetByID(ctx, l.ID)
}

func (r *LevelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM levels WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return level.ErrNotFound
	}
	return nil
}

func (r *LevelRepository) queryLevels(ctx context.Context, query string, args ...interface{}) ([]*level.Level, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var levels []*level.Level
	for rows.Next() {
		var l models.Level
		if err := rows.Scan(
			&l.ID,
			&l.TierID,
			&l.ParentID,
			&l.Name,
			&l.IsTemplate,
			&l.IsGeneric,
			&l.IsMaintainableUnit,
			&l.Icon,
			&l.Comment,
			&l.Owner,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan level row")
		}
		entity, err := toDomainLevel(&l)
		if err != nil {
			return nil, err
		}
		levels = append(levels, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return levels, nil
}

func buildLevelFilters(params *level.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	argPos := 1
	if params == nil {
		return where, args
	}

	if params.TierID != nil {
		where = append(where, fmt.Sprintf("tier_id = $%d", argPos))
		args = append(args, params.TierID.String())
		argPos++
	}
	if params.ParentID != nil {
		where = append(where, fmt.Sprintf("parent_id = $%d", argPos))
		args = append(args, params.ParentID.String())
	} else if params.RootsOnly {
		where = append(where, "parent_id IS NULL")
	}
	return where, args
}
