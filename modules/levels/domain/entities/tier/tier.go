package tier

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/pkg/serrors"
)

var ErrNotFound = serrors.NotFound("TIER_NOT_FOUND", "tier not found")

// ChainPosition is a rank in the fixed decomposition chain. Position 0 is
// the topmost tier; a level's parent must sit exactly one position above.
type ChainPosition int

const (
	ChainArea ChainPosition = iota
	ChainProcess
	ChainSystem
	ChainAssembly
	ChainComponent
	ChainSubComponent
)

// Tier is read-only reference data for this subsystem; it is created and
// edited elsewhere.
type Tier struct {
	ID            uuid.UUID
	Label         string
	Color         string
	ChainPosition ChainPosition
}

// MatchesVocabulary reports whether the tier label matches the known
// vocabulary for the given chain position. The match is a case-insensitive
// substring test, which tolerates decorated labels but not localization
// beyond the legacy "conjunto" spelling for assemblies.
func (t *Tier) MatchesVocabulary(pos ChainPosition) bool {
	label := strings.ToLower(t.Label)
	for _, word := range vocabulary[pos] {
		if strings.Contains(label, word) {
			return true
		}
	}
	return false
}

var vocabulary = map[ChainPosition][]string{
	ChainArea:         {"area"},
	ChainProcess:      {"process"},
	ChainSystem:       {"system"},
	ChainAssembly:     {"assembly", "conjunto"},
	ChainComponent:    {"component"},
	ChainSubComponent: {"sub-component", "subcomponent"},
}

type Repository interface {
	List(ctx context.Context) ([]*Tier, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Tier, error)
}
