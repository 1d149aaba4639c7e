package progress

import (
	"math"
	"time"
)

// Status describes how far a learner has gotten with a single note.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ReviewIntervals is the fixed spaced review schedule in days.
// The first re-review comes 3 days after a note is reviewed; every
// subsequent review is 7 days out.
var ReviewIntervals = []int{3, 7, 7}

// FirstReviewDelayDays is the delay between completing a note and its
// first scheduled review.
const FirstReviewDelayDays = 1

// NoteProgress is the tracked state for one note.
type NoteProgress struct {
	Status         Status     `json:"status"`
	Score          *int       `json:"score,omitempty"`
	LastViewedAt   *time.Time `json:"last_viewed_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	ReviewCount    int        `json:"review_count,omitempty"`
}

// IsDue returns true if the note is completed and its next review is at
// or before now.
func (p NoteProgress) IsDue(now time.Time) bool {
	return p.Status == StatusCompleted && p.NextReviewAt != nil && !p.NextReviewAt.After(now)
}

// Map is a session's full progress state, keyed by note ID.
type Map map[string]NoteProgress

// emptyMap is the shared zero-value snapshot. Trackers return it when
// they hold no data so that callers doing identity-based change
// detection never see a fresh empty map per read.
var emptyMap = Map{}

// EmptyMap returns the shared empty snapshot.
func EmptyMap() Map { return emptyMap }

// Clone returns a shallow copy. Trackers mutate copies, never a map
// already handed out to callers.
func (m Map) Clone() Map {
	out := make(Map, len(m)+1)
	for id, p := range m {
		out[id] = p
	}
	return out
}

// advanceStatus returns the record after transitioning to status at now.
// Moving from not_started to in_progress stamps LastViewedAt; the zero
// Status of an untracked note counts as not_started. The first
// transition into completed stamps CompletedAt once and schedules the
// first review; completing an already-completed note changes nothing
// else.
func advanceStatus(p NoteProgress, status Status, now time.Time) NoteProgress {
	if status == StatusInProgress && (p.Status == StatusNotStarted || p.Status == "") {
		t := now
		p.LastViewedAt = &t
	}
	if status == StatusCompleted && p.CompletedAt == nil {
		t := now
		next := now.AddDate(0, 0, FirstReviewDelayDays)
		p.CompletedAt = &t
		p.NextReviewAt = &next
	}
	p.Status = status
	return p
}

// advanceReview returns the record after one review at now. The caller
// guarantees the note is completed.
func advanceReview(p NoteProgress, now time.Time) NoteProgress {
	p.ReviewCount++
	idx := p.ReviewCount - 1
	if idx > len(ReviewIntervals)-1 {
		idx = len(ReviewIntervals) - 1
	}
	t := now
	next := now.AddDate(0, 0, ReviewIntervals[idx])
	p.LastReviewedAt = &t
	p.NextReviewAt = &next
	return p
}

// clampScore bounds a grade to the 0-100 range.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Percent computes the aggregate completion percentage over noteIDs.
// Completed notes count 1, in-progress notes 0.5, everything else 0.
// An empty ID set yields 0.
func Percent(noteIDs []string, m Map) int {
	if len(noteIDs) == 0 {
		return 0
	}
	var sum float64
	for _, id := range noteIDs {
		switch m[id].Status {
		case StatusCompleted:
			sum += 1
		case StatusInProgress:
			sum += 0.5
		}
	}
	return int(math.Round(sum / float64(len(noteIDs)) * 100))
}

// DueForReview returns the subset of noteIDs whose review is due at now,
// preserving input order.
func DueForReview(noteIDs []string, m Map, now time.Time) []string {
	var due []string
	for _, id := range noteIDs {
		if m[id].IsDue(now) {
			due = append(due, id)
		}
	}
	return due
}
