package viewmodels

import "github.com/google/uuid"

type TreeNodeKind string

const (
	TreeNodeLevel    TreeNodeKind = "level"
	TreeNodeActivity TreeNodeKind = "activity"
)

// TreeNode is one presentation node of the level tree. Level nodes carry
// tier data and nest child levels first, then activity leaves.
type TreeNode struct {
	ID        uuid.UUID    `json:"id"`
	Kind      TreeNodeKind `json:"kind"`
	Name      string       `json:"name"`
	TierID    *uuid.UUID   `json:"tierId,omitempty"`
	TierColor string       `json:"tierColor,omitempty"`
	Order     int          `json:"order,omitempty"`
	Children  []TreeNode   `json:"children,omitempty"`
}
