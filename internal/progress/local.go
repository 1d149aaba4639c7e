package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// KV is the durable local persistence collaborator: a synchronous
// key-value store holding one serialized progress map under a single
// key. The tracker owns the serialization format; the KV owns the
// medium.
type KV interface {
	// Get returns the stored value for key, and whether one exists.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key.
	Set(key string, value []byte) error
}

// LocalKey is the KV key the anonymous tracker persists under.
const LocalKey = "prepdeck.progress"

// LocalTracker is the anonymous single-device Tracker. State is held in
// memory, lazily loaded from the KV on first access, and written back
// synchronously on every change. Persistence is best-effort: if a write
// to the KV fails, the in-memory state still reflects the change and a
// warning goes to stderr.
type LocalTracker struct {
	// writeMu serializes write+notify sections so subscribers observe
	// changes in call order.
	writeMu sync.Mutex

	mu     sync.Mutex
	kv     KV
	loaded bool
	notes  Map
	subs   *subscribers

	now func() time.Time
}

var _ Tracker = (*LocalTracker)(nil)

// NewLocalTracker creates a tracker persisting to kv under LocalKey.
func NewLocalTracker(kv KV) *LocalTracker {
	return &LocalTracker{
		kv:   kv,
		subs: newSubscribers(),
		now:  time.Now,
	}
}

// load reads the persisted map once. Called with mu held.
func (t *LocalTracker) load() {
	if t.loaded {
		return
	}
	t.loaded = true

	raw, ok, err := t.kv.Get(LocalKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: load local progress: %v\n", err)
		return
	}
	if !ok {
		return
	}

	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		fmt.Fprintf(os.Stderr, "warning: decode local progress: %v\n", err)
		return
	}
	t.notes = m
}

func (t *LocalTracker) Snapshot() Map {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.load()
	if len(t.notes) == 0 {
		return EmptyMap()
	}
	return t.notes
}

func (t *LocalTracker) Subscribe(fn func(Map)) func() {
	t.mu.Lock()
	id := t.subs.add(fn)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.subs.remove(id)
	}
}

func (t *LocalTracker) SetStatus(noteID string, status Status) error {
	return t.update(func(m Map, now time.Time) error {
		m[noteID] = advanceStatus(m[noteID], status, now)
		return nil
	})
}

func (t *LocalTracker) SetScore(noteID string, score int) error {
	return t.update(func(m Map, now time.Time) error {
		p := m[noteID]
		s := clampScore(score)
		p.Score = &s
		m[noteID] = p
		return nil
	})
}

func (t *LocalTracker) ClearItem(noteID string) error {
	return t.update(func(m Map, _ time.Time) error {
		delete(m, noteID)
		return nil
	})
}

func (t *LocalTracker) RecordReview(noteID string) error {
	return t.update(func(m Map, now time.Time) error {
		p, ok := m[noteID]
		if !ok || p.Status != StatusCompleted {
			return ErrNotCompleted
		}
		m[noteID] = advanceReview(p, now)
		return nil
	})
}

// update applies mutate to a copy of the current map, swaps it in,
// notifies subscribers, then persists. The whole section runs under
// writeMu so sequential writes notify in order. A mutate error aborts
// before the swap, leaving the store untouched.
func (t *LocalTracker) update(mutate func(Map, time.Time) error) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	t.load()
	next := t.notes.Clone()
	if err := mutate(next, t.now()); err != nil {
		t.mu.Unlock()
		return err
	}
	t.notes = next
	fns := t.subs.snapshot()
	t.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := t.kv.Set(LocalKey, raw); err != nil {
		// Best-effort: memory already reflects the change.
		fmt.Fprintf(os.Stderr, "warning: persist local progress: %v\n", err)
	}
	return nil
}
