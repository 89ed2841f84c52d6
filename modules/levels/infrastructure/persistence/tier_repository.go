package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/modules/levels/infrastructure/persistence/models"
	"github.com/iota-uz/levels/pkg/composables"
)

const (
	tierFindQuery = `SELECT id, label, color, chain_position FROM tiers`
)

type TierRepository struct{}

func NewTierRepository() tier.Repository {
	return &TierRepository{}
}

func (r *TierRepository) List(ctx context.Context) ([]*tier.Tier, error) {
	return r.queryTiers(ctx, tierFindQuery+" ORDER BY chain_position ASC")
}

func (r *TierRepository) GetByID(ctx context.Context, id uuid.UUID) (*tier.Tier, error) {
	tiers, err := r.queryTiers(ctx, tierFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, tier.ErrNotFound
	}
	return tiers[0], nil
}

func (r *TierRepository) queryTiers(ctx context.Context, query string, args ...interface{}) ([]*tier.Tier, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var tiers []*tier.Tier
	for rows.Next() {
		var t models.Tier
		if err := rows.Scan(&t.ID, &t.Label, &t.Color, &t.ChainPosition); err != nil {
			return nil, errors.Wrap(err, "failed to scan tier row")
		}
		entity, err := toDomainTier(&t)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return tiers, nil
}
