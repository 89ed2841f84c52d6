package mappers

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/modules/levels/presentation/viewmodels"
)

// TreeOptions tunes BuildTree. DetectRootTier switches root-tier detection
// from raw chain position to the label vocabulary match; the raw grouping
// is the safe default since the vocabulary is fragile against renamed or
// localized tiers.
type TreeOptions struct {
	DetectRootTier bool
}

// BuildTree folds flat tier/level/activity collections into a presentation
// forest. Pure function, no I/O: the caller materializes the data. Root
// nodes are the null-parent levels of the first tier, sorted by name;
// levels whose parent is absent from the input are kept as extra roots so
// no row silently disappears. Each level node nests its child levels
// (sorted by name) followed by its activities (sorted by display order).
// Terminates on any acyclic input; cycles are an assumed-absent invariant,
// not validated here.
func BuildTree(tiers []*tier.Tier, levels []*level.Level, activities []*activity.Activity, opts TreeOptions) []viewmodels.TreeNode {
	byID := make(map[uuid.UUID]*level.Level, len(levels))
	for _, l := range levels {
		byID[l.ID] = l
	}

	childrenByParent := make(map[uuid.UUID][]*level.Level, len(levels))
	for _, l := range levels {
		if l.ParentID == nil {
			continue
		}
		childrenByParent[*l.ParentID] = append(childrenByParent[*l.ParentID], l)
	}
	for parentID := range childrenByParent {
		sortLevels(childrenByParent[parentID])
	}

	activitiesByLevel := make(map[uuid.UUID][]*activity.Activity, len(levels))
	for _, a := range activities {
		activitiesByLevel[a.LevelID] = append(activitiesByLevel[a.LevelID], a)
	}
	for levelID := range activitiesByLevel {
		siblings := activitiesByLevel[levelID]
		sort.SliceStable(siblings, func(i, j int) bool {
			if siblings[i].DisplayOrder != siblings[j].DisplayOrder {
				return siblings[i].DisplayOrder < siblings[j].DisplayOrder
			}
			return siblings[i].ID.String() < siblings[j].ID.String()
		})
		activitiesByLevel[levelID] = siblings
	}

	colorByTier := make(map[uuid.UUID]string, len(tiers))
	for _, t := range tiers {
		colorByTier[t.ID] = t.Color
	}

	rootTier := firstTier(tiers, opts)

	roots := make([]*level.Level, 0, 8)
	for _, l := range levels {
		switch {
		case l.ParentID == nil:
			if rootTier == nil || l.TierID == rootTier.ID {
				roots = append(roots, l)
			}
		default:
			if _, ok := byID[*l.ParentID]; !ok {
				// Orphan fallback: a missing parent must not drop the
				// subtree from the output.
				roots = append(roots, l)
			}
		}
	}
	if rootTier != nil {
		// Null-parent levels outside the root tier are still shown rather
		// than lost (degraded-but-safe grouping).
		for _, l := range levels {
			if l.ParentID == nil && l.TierID != rootTier.ID {
				roots = append(roots, l)
			}
		}
	}
	sortLevels(roots)

	visited := make(map[uuid.UUID]struct{}, len(levels))
	var walk func(l *level.Level) *viewmodels.TreeNode
	walk = func(l *level.Level) *viewmodels.TreeNode {
		if _, ok := visited[l.ID]; ok {
			return nil
		}
		visited[l.ID] = struct{}{}

		tierID := l.TierID
		node := viewmodels.TreeNode{
			ID:        l.ID,
			Kind:      viewmodels.TreeNodeLevel,
			Name:      l.Name,
			TierID:    &tierID,
			TierColor: colorByTier[l.TierID],
		}
		for _, child := range childrenByParent[l.ID] {
			if childNode := walk(child); childNode != nil {
				node.Children = append(node.Children, *childNode)
			}
		}
		for _, a := range activitiesByLevel[l.ID] {
			node.Children = append(node.Children, viewmodels.TreeNode{
				ID:    a.ID,
				Kind:  viewmodels.TreeNodeActivity,
				Name:  a.Description,
				Order: a.DisplayOrder,
			})
		}
		return &node
	}

	out := make([]viewmodels.TreeNode, 0, len(roots))
	for _, r := range roots {
		if node := walk(r); node != nil {
			out = append(out, *node)
		}
	}
	return out
}

func sortLevels(levels []*level.Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		ni := strings.TrimSpace(levels[i].Name)
		nj := strings.TrimSpace(levels[j].Name)
		if ni != nj {
			return ni < nj
		}
		return levels[i].ID.String() < levels[j].ID.String()
	})
}

func firstTier(tiers []*tier.Tier, opts TreeOptions) *tier.Tier {
	if opts.DetectRootTier {
		for _, t := range tiers {
			if t.MatchesVocabulary(tier.ChainArea) {
				return t
			}
		}
		// No label matched the vocabulary; fall back to raw chain order.
	}
	var first *tier.Tier
	for _, t := range tiers {
		if first == nil || t.ChainPosition < first.ChainPosition {
			first = t
		}
	}
	return first
}
