package progress

import "errors"

// ErrNotCompleted is returned by RecordReview when the note has not
// been completed; the store is left unchanged.
var ErrNotCompleted = errors.New("note is not completed")

// Tracker is the single interface consuming layers hold, regardless of
// which backend serves the current session. The anonymous local tracker
// and the per-user remote tracker both implement it; callers pick one
// from auth state and never branch on backend type afterwards.
//
// Snapshots handed out by a Tracker are immutable: every write swaps in
// a fresh map, and an empty tracker always returns the same shared
// empty value. Callers must not mutate a snapshot.
type Tracker interface {
	// Snapshot returns the current progress map.
	Snapshot() Map

	// Subscribe registers fn to run after every change, with the new
	// snapshot. Notifications are delivered synchronously after the
	// in-memory state is updated, in write order. The returned cancel
	// function removes the registration.
	Subscribe(fn func(Map)) (cancel func())

	// SetStatus transitions a note to a new status.
	SetStatus(noteID string, status Status) error

	// SetScore records a grade for a note, clamped to 0-100.
	SetScore(noteID string, score int) error

	// ClearItem removes the note's record entirely, resetting it to
	// not started with no history.
	ClearItem(noteID string) error

	// RecordReview advances the review schedule for a completed note.
	// Returns ErrNotCompleted otherwise.
	RecordReview(noteID string) error
}

// subscribers is the callback registry shared by both tracker
// implementations. Not safe for concurrent use on its own; trackers
// guard it with their own locks.
type subscribers struct {
	next int
	fns  map[int]func(Map)
}

func newSubscribers() *subscribers {
	return &subscribers{fns: make(map[int]func(Map))}
}

func (s *subscribers) add(fn func(Map)) int {
	id := s.next
	s.next++
	s.fns[id] = fn
	return id
}

func (s *subscribers) remove(id int) {
	delete(s.fns, id)
}

func (s *subscribers) len() int {
	return len(s.fns)
}

// snapshot returns the callbacks in registration order so trackers can
// invoke them outside their state lock.
func (s *subscribers) snapshot() []func(Map) {
	out := make([]func(Map), 0, len(s.fns))
	for id := 0; id < s.next; id++ {
		if fn, ok := s.fns[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
