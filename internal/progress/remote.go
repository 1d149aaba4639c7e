package progress

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// DocumentBackend is the remote document collaborator: one progress
// document per authenticated user, with a read-once fetch, a live
// watch delivering the full document on every change, and a merge
// write that folds the notes field into the existing document without
// clobbering sibling fields.
type DocumentBackend interface {
	// Fetch reads the user's document once. A missing document is not
	// an error; it returns an empty map.
	Fetch(ctx context.Context, userID string) (Map, error)

	// Merge folds notes into the user's document.
	Merge(ctx context.Context, userID string, notes Map) error

	// Watch registers fn to receive the full document content on every
	// change, including one initial delivery of the current content.
	// A terminal watch failure is delivered as a non-nil error. The
	// returned stop function releases the watch.
	Watch(userID string, fn func(Map, error)) (stop func(), err error)
}

// SyncState reports the remote tracker's relationship to its backend,
// so callers can tell a genuinely empty store from one that is empty
// because the watch failed.
type SyncState int

const (
	// SyncPending: no watch established yet, or state came from a
	// one-shot fetch only.
	SyncPending SyncState = iota
	// SyncLive: a watch is active and the snapshot reflects the last
	// pushed document.
	SyncLive
	// SyncFailed: the fetch or watch failed; the snapshot is empty and
	// may not reflect remote state.
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncLive:
		return "live"
	case SyncFailed:
		return "failed"
	default:
		return "pending"
	}
}

// RemoteTracker is the authenticated multi-device Tracker for one user.
//
// Writes are optimistic: the in-memory cache is updated and subscribers
// are notified immediately, then the full mapping is persisted
// asynchronously with a merge write. An incoming push replaces the
// entire cached map (last full snapshot wins), which is the sole
// convergence mechanism across devices; no field-level reconciliation
// is attempted beyond what the backend's merge primitive provides.
//
// The first subscriber establishes the backend watch; the last cancel
// releases it. Obtain instances through a Manager so concurrent
// consumers within the process share one tracker (and one watch) per
// user ID.
type RemoteTracker struct {
	writeMu sync.Mutex

	mu       sync.Mutex
	backend  DocumentBackend
	userID   string
	loaded   bool
	notes    Map
	state    SyncState
	subs     *subscribers
	watching bool
	stop     func()

	now func() time.Time
}

var _ Tracker = (*RemoteTracker)(nil)

// NewRemoteTracker creates a tracker for one user. Most callers should
// use Manager.Tracker instead.
func NewRemoteTracker(backend DocumentBackend, userID string) *RemoteTracker {
	return &RemoteTracker{
		backend: backend,
		userID:  userID,
		subs:    newSubscribers(),
		now:     time.Now,
	}
}

// SyncState reports whether the snapshot is live, pending, or the
// result of a failed connection.
func (t *RemoteTracker) SyncState() SyncState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// load performs the lazy read-once fetch. Called with mu held. Once a
// watch is active the fetch is skipped; pushes keep the cache current.
func (t *RemoteTracker) load() {
	if t.loaded {
		return
	}
	t.loaded = true

	m, err := t.backend.Fetch(context.Background(), t.userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: fetch remote progress: %v\n", err)
		t.state = SyncFailed
		return
	}
	t.notes = m
}

func (t *RemoteTracker) Snapshot() Map {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.load()
	if len(t.notes) == 0 {
		return EmptyMap()
	}
	return t.notes
}

// Subscribe registers fn and, for the first subscriber, establishes the
// live watch. The returned cancel removes the registration; the last
// cancel tears the watch down.
func (t *RemoteTracker) Subscribe(fn func(Map)) func() {
	t.mu.Lock()
	id := t.subs.add(fn)
	start := !t.watching
	if start {
		t.watching = true
	}
	t.mu.Unlock()

	// The watch is wired outside the state lock: backends may deliver
	// the initial document synchronously through onPush.
	if start {
		stop, err := t.backend.Watch(t.userID, t.onPush)
		t.mu.Lock()
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "warning: watch remote progress: %v\n", err)
			t.state = SyncFailed
			t.watching = false
		case t.subs.len() == 0:
			// Every subscriber cancelled while the watch was being set up.
			t.watching = false
			t.mu.Unlock()
			stop()
			t.mu.Lock()
		default:
			t.stop = stop
		}
		t.mu.Unlock()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.subs.remove(id)
			var stop func()
			if t.subs.len() == 0 && t.stop != nil {
				stop = t.stop
				t.stop = nil
				t.watching = false
				if t.state == SyncLive {
					t.state = SyncPending
				}
			}
			t.mu.Unlock()
			if stop != nil {
				stop()
			}
		})
	}
}

// onPush handles a pushed document: the whole cached map is replaced,
// discarding any optimistic local write that raced with the push. A
// terminal watch error degrades to an empty snapshot but is kept
// distinguishable through SyncState.
func (t *RemoteTracker) onPush(m Map, err error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	t.loaded = true
	if err != nil {
		t.state = SyncFailed
		t.notes = nil
	} else {
		t.state = SyncLive
		t.notes = m
	}
	snap := t.notes
	if len(snap) == 0 {
		snap = EmptyMap()
	}
	fns := t.subs.snapshot()
	t.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (t *RemoteTracker) SetStatus(noteID string, status Status) error {
	return t.update(func(m Map, now time.Time) error {
		m[noteID] = advanceStatus(m[noteID], status, now)
		return nil
	})
}

func (t *RemoteTracker) SetScore(noteID string, score int) error {
	return t.update(func(m Map, now time.Time) error {
		p := m[noteID]
		s := clampScore(score)
		p.Score = &s
		m[noteID] = p
		return nil
	})
}

func (t *RemoteTracker) ClearItem(noteID string) error {
	return t.update(func(m Map, _ time.Time) error {
		delete(m, noteID)
		return nil
	})
}

func (t *RemoteTracker) RecordReview(noteID string) error {
	return t.update(func(m Map, now time.Time) error {
		p, ok := m[noteID]
		if !ok || p.Status != StatusCompleted {
			return ErrNotCompleted
		}
		m[noteID] = advanceReview(p, now)
		return nil
	})
}

// update applies mutate optimistically: cache swap and notifications
// happen before the merge write, which runs on its own goroutine. A
// failed merge leaves the optimistic state in place; convergence comes
// from the next push.
func (t *RemoteTracker) update(mutate func(Map, time.Time) error) error {
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

	go func() {
		if err := t.backend.Merge(context.Background(), t.userID, next); err != nil {
			fmt.Fprintf(os.Stderr, "warning: persist remote progress: %v\n", err)
		}
	}()
	return nil
}

// Manager is the process-wide registry of remote trackers, one per
// user ID, so repeated lookups from independent consumers share a
// single cache and watch.
type Manager struct {
	mu       sync.Mutex
	backend  DocumentBackend
	trackers map[string]*RemoteTracker
}

// NewManager creates a Manager over the given backend.
func NewManager(backend DocumentBackend) *Manager {
	return &Manager{
		backend:  backend,
		trackers: make(map[string]*RemoteTracker),
	}
}

// Tracker returns the shared tracker for userID, creating it on first
// use.
func (m *Manager) Tracker(userID string) *RemoteTracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trackers[userID]
	if !ok {
		t = NewRemoteTracker(m.backend, userID)
		m.trackers[userID] = t
	}
	return t
}
