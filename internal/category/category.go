package category

import "time"

// Category is one node of the content hierarchy. Leaf categories hold
// notes directly; container categories hold only child categories.
//
// Depth and Path are denormalized from the parent chain: Depth is the
// number of ancestors and Path lists their IDs from root down to the
// immediate parent. The auditor in this package checks that the
// denormalization is consistent; it is not enforced at write time.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"` // nil for roots
	Depth     int       `json:"depth"`
	Path      []string  `json:"path"`
	IsLeaf    bool      `json:"is_leaf"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot returns true for top-level categories.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
