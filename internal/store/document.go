package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prepdeck/prepdeck/internal/progress"
)

// DocumentStore keeps one progress document per user ID and implements
// progress.DocumentBackend. Merge folds the notes field into the
// existing document without touching sibling columns, and watchers
// within the process receive the full merged document after every
// change, the same contract a hosted document store's snapshot
// listener provides, minus the network.
type DocumentStore struct {
	db *sql.DB

	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]func(progress.Map, error)
}

var _ progress.DocumentBackend = (*DocumentStore)(nil)

func newDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{
		db:       db,
		watchers: make(map[string]map[int]func(progress.Map, error)),
	}
}

// Fetch reads the user's progress document once. A missing document
// yields an empty map, not an error.
func (d *DocumentStore) Fetch(ctx context.Context, userID string) (progress.Map, error) {
	var raw string
	err := d.db.QueryRowContext(ctx,
		`SELECT notes FROM progress_docs WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return progress.Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch progress document: %w", err)
	}

	var m progress.Map
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode progress document: %w", err)
	}
	return m, nil
}

// Merge shallow-merges notes into the user's document: existing
// entries for other note IDs survive, entries present in notes are
// replaced wholesale. Watchers are notified with the merged result.
func (d *DocumentStore) Merge(ctx context.Context, userID string, notes progress.Map) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback()

	merged := progress.Map{}
	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT notes FROM progress_docs WHERE user_id = ?`, userID).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// First write for this user.
	case err != nil:
		return fmt.Errorf("read progress document: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &merged); err != nil {
			return fmt.Errorf("decode progress document: %w", err)
		}
	}

	for id, p := range notes {
		merged[id] = p
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode progress document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO progress_docs (user_id, notes, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET notes = excluded.notes, updated_at = excluded.updated_at`,
		userID, string(encoded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write progress document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: %w", err)
	}

	d.notify(userID, merged)
	return nil
}

// Watch registers fn for userID, delivering the current document
// immediately and the full merged document after every change. The
// returned stop releases the registration.
func (d *DocumentStore) Watch(userID string, fn func(progress.Map, error)) (func(), error) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	if d.watchers[userID] == nil {
		d.watchers[userID] = make(map[int]func(progress.Map, error))
	}
	d.watchers[userID][id] = fn
	d.mu.Unlock()

	// Initial delivery with the current content.
	m, err := d.Fetch(context.Background(), userID)
	fn(m, err)

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.watchers[userID], id)
		if len(d.watchers[userID]) == 0 {
			delete(d.watchers, userID)
		}
	}, nil
}

func (d *DocumentStore) notify(userID string, m progress.Map) {
	d.mu.Lock()
	fns := make([]func(progress.Map, error), 0, len(d.watchers[userID]))
	for _, fn := range d.watchers[userID] {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(m, nil)
	}
}
