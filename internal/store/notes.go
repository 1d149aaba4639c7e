package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is one learning item: a question with a model answer, filed
// under a leaf category.
type Note struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Title       string    `json:"title"`
	Question    string    `json:"question"`
	ModelAnswer string    `json:"model_answer"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NoteRepo provides admin CRUD over notes.
type NoteRepo struct {
	db *sql.DB
}

// Create inserts a note at the end of its category.
func (r *NoteRepo) Create(ctx context.Context, categoryID, title, question, modelAnswer string) (*Note, error) {
	var maxPos sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(position) FROM notes WHERE category_id = ?`, categoryID).Scan(&maxPos)
	if err != nil {
		return nil, fmt.Errorf("next note position: %w", err)
	}

	now := time.Now().UTC()
	n := Note{
		ID:          uuid.NewString(),
		CategoryID:  categoryID,
		Title:       title,
		Question:    question,
		ModelAnswer: modelAnswer,
		Position:    int(maxPos.Int64) + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO notes (id, category_id, title, question, model_answer, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.CategoryID, n.Title, n.Question, n.ModelAnswer, n.Position, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &n, nil
}

// Get returns one note by ID.
func (r *NoteRepo) Get(ctx context.Context, id string) (*Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, title, question, model_answer, position, created_at, updated_at
		 FROM notes WHERE id = ?`, id).
		Scan(&n.ID, &n.CategoryID, &n.Title, &n.Question, &n.ModelAnswer, &n.Position, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &n, nil
}

// Update rewrites a note's content.
func (r *NoteRepo) Update(ctx context.Context, id, title, question, modelAnswer string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, question = ?, model_answer = ?, updated_at = ? WHERE id = ?`,
		title, question, modelAnswer, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("note not found: %s", id)
	}
	return nil
}

// Delete removes a note.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("note not found: %s", id)
	}
	return nil
}

// ListByCategory returns a category's notes in position order.
func (r *NoteRepo) ListByCategory(ctx context.Context, categoryID string) ([]Note, error) {
	return r.list(ctx,
		`SELECT id, category_id, title, question, model_answer, position, created_at, updated_at
		 FROM notes WHERE category_id = ? ORDER BY position`, categoryID)
}

// ListAll returns every note, grouped by category in position order.
func (r *NoteRepo) ListAll(ctx context.Context) ([]Note, error) {
	return r.list(ctx,
		`SELECT id, category_id, title, question, model_answer, position, created_at, updated_at
		 FROM notes ORDER BY category_id, position`)
}

func (r *NoteRepo) list(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.CategoryID, &n.Title, &n.Question, &n.ModelAnswer, &n.Position, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
