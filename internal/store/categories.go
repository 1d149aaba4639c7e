package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck/internal/category"
)

// CategoryRepo provides admin CRUD over the category tree. Depth and
// path are computed from the parent at write time; the auditor in
// internal/category checks them after the fact.
type CategoryRepo struct {
	db *sql.DB
}

// List returns all categories ordered by depth then name.
func (r *CategoryRepo) List(ctx context.Context) ([]category.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, parent_id, depth, path, is_leaf, created_at, updated_at
		 FROM categories ORDER BY depth, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one category by ID.
func (r *CategoryRepo) Get(ctx context.Context, id string) (*category.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id, depth, path, is_leaf, created_at, updated_at
		 FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category under parentID (nil for a root) and
// returns it with depth and path computed from the parent.
func (r *CategoryRepo) Create(ctx context.Context, name string, parentID *string, isLeaf bool) (*category.Category, error) {
	c := category.Category{
		ID:       uuid.NewString(),
		Name:     name,
		ParentID: parentID,
		IsLeaf:   isLeaf,
		Path:     []string{},
	}

	if parentID != nil {
		parent, err := r.Get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.IsLeaf {
			return nil, fmt.Errorf("category %q is a leaf and cannot hold child categories", parent.Name)
		}
		c.Depth = parent.Depth + 1
		c.Path = append(append([]string{}, parent.Path...), parent.ID)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	pathJSON, err := json.Marshal(c.Path)
	if err != nil {
		return nil, fmt.Errorf("encode path: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, parent_id, depth, path, is_leaf, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullable(c.ParentID), c.Depth, string(pathJSON), c.IsLeaf, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

// Rename changes a category's display name.
func (r *CategoryRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("category not found: %s", id)
	}
	return nil
}

// Move reparents a category and rewrites depth and path for it and its
// entire subtree in one transaction. Moving a category under itself or
// one of its descendants is rejected.
func (r *CategoryRepo) Move(ctx context.Context, id string, newParentID *string) error {
	all, err := r.List(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]*category.Category, len(all))
	children := make(map[string][]*category.Category)
	for i := range all {
		byID[all[i].ID] = &all[i]
		if all[i].ParentID != nil {
			children[*all[i].ParentID] = append(children[*all[i].ParentID], &all[i])
		}
	}

	node, ok := byID[id]
	if !ok {
		return fmt.Errorf("category not found: %s", id)
	}

	var newDepth int
	var newPath []string
	if newParentID != nil {
		parent, ok := byID[*newParentID]
		if !ok {
			return fmt.Errorf("category not found: %s", *newParentID)
		}
		if parent.IsLeaf {
			return fmt.Errorf("category %q is a leaf and cannot hold child categories", parent.Name)
		}
		if *newParentID == id || inSubtree(children, id, *newParentID) {
			return fmt.Errorf("cannot move category %q under its own subtree", node.Name)
		}
		newDepth = parent.Depth + 1
		newPath = append(append([]string{}, parent.Path...), parent.ID)
	} else {
		newPath = []string{}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin move: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := updateCategoryPlacement(ctx, tx, id, newParentID, newDepth, newPath, now); err != nil {
		return err
	}

	// Re-path descendants breadth-first from the moved node.
	node.Depth = newDepth
	node.Path = newPath
	queue := []*category.Category{node}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur.ID] {
			child.Depth = cur.Depth + 1
			child.Path = append(append([]string{}, cur.Path...), cur.ID)
			if err := updateCategoryPlacement(ctx, tx, child.ID, child.ParentID, child.Depth, child.Path, now); err != nil {
				return err
			}
			queue = append(queue, child)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit move: %w", err)
	}
	return nil
}

// Delete removes a category. Categories with children or notes must be
// emptied first.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	var childCount int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = ?`, id).Scan(&childCount); err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if childCount > 0 {
		return fmt.Errorf("category has %d child categories; delete or move them first", childCount)
	}

	var noteCount int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE category_id = ?`, id).Scan(&noteCount); err != nil {
		return fmt.Errorf("count notes: %w", err)
	}
	if noteCount > 0 {
		return fmt.Errorf("category has %d notes; delete or move them first", noteCount)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("category not found: %s", id)
	}
	return nil
}

func updateCategoryPlacement(ctx context.Context, tx *sql.Tx, id string, parentID *string, depth int, path []string, now time.Time) error {
	pathJSON, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE categories SET parent_id = ?, depth = ?, path = ?, updated_at = ? WHERE id = ?`,
		nullable(parentID), depth, string(pathJSON), now, id)
	if err != nil {
		return fmt.Errorf("update category %s: %w", id, err)
	}
	return nil
}

// inSubtree reports whether candidate is a descendant of rootID.
func inSubtree(children map[string][]*category.Category, rootID, candidate string) bool {
	queue := append([]*category.Category{}, children[rootID]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.ID == candidate {
			return true
		}
		queue = append(queue, children[cur.ID]...)
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (category.Category, error) {
	var c category.Category
	var parentID sql.NullString
	var pathJSON string
	err := row.Scan(&c.ID, &c.Name, &parentID, &c.Depth, &pathJSON, &c.IsLeaf, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if err := json.Unmarshal([]byte(pathJSON), &c.Path); err != nil {
		return c, fmt.Errorf("decode path for %s: %w", c.ID, err)
	}
	if c.Path == nil {
		c.Path = []string{}
	}
	return c, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
