package progress

import (
	"testing"
	"time"
)

func TestReviewIntervals_Values(t *testing.T) {
	expected := []int{3, 7, 7}
	if len(ReviewIntervals) != len(expected) {
		t.Fatalf("expected %d intervals, got %d", len(expected), len(ReviewIntervals))
	}
	for i, v := range expected {
		if ReviewIntervals[i] != v {
			t.Errorf("ReviewIntervals[%d] = %d, want %d", i, ReviewIntervals[i], v)
		}
	}
}

func TestAdvanceStatus_FirstViewStampsViewed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// An untracked note carries the zero Status, not "not_started".
	p := advanceStatus(NoteProgress{}, StatusInProgress, now)
	if p.LastViewedAt == nil || !p.LastViewedAt.Equal(now) {
		t.Errorf("zero status: LastViewedAt = %v, want %v", p.LastViewedAt, now)
	}

	p = advanceStatus(NoteProgress{Status: StatusNotStarted}, StatusInProgress, now)
	if p.LastViewedAt == nil || !p.LastViewedAt.Equal(now) {
		t.Errorf("not_started: LastViewedAt = %v, want %v", p.LastViewedAt, now)
	}
}

func TestAdvanceStatus_RepeatViewKeepsStamp(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	p := advanceStatus(NoteProgress{}, StatusInProgress, first)
	p = advanceStatus(p, StatusInProgress, later)
	if p.LastViewedAt == nil || !p.LastViewedAt.Equal(first) {
		t.Errorf("LastViewedAt = %v, want first view %v", p.LastViewedAt, first)
	}
}

func TestIsDue_NotCompleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := now.Add(-time.Hour)
	p := NoteProgress{Status: StatusInProgress, NextReviewAt: &next}
	if p.IsDue(now) {
		t.Error("expected not due for an in-progress note")
	}
}

func TestIsDue_BeforeReviewDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := now.Add(time.Hour)
	p := NoteProgress{Status: StatusCompleted, NextReviewAt: &next}
	if p.IsDue(now) {
		t.Error("expected not due before the review date")
	}
}

func TestIsDue_OnReviewDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := now
	p := NoteProgress{Status: StatusCompleted, NextReviewAt: &next}
	if !p.IsDue(now) {
		t.Error("expected due exactly on the review date")
	}
}

func TestIsDue_NoSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NoteProgress{Status: StatusCompleted}
	if p.IsDue(now) {
		t.Error("expected not due with no scheduled review")
	}
}

func TestPercent_EmptyIDs(t *testing.T) {
	if got := Percent(nil, Map{}); got != 0 {
		t.Errorf("Percent() = %d, want 0", got)
	}
}

func TestPercent_AllCompleted(t *testing.T) {
	m := Map{
		"a": {Status: StatusCompleted},
		"b": {Status: StatusCompleted},
	}
	if got := Percent([]string{"a", "b"}, m); got != 100 {
		t.Errorf("Percent() = %d, want 100", got)
	}
}

func TestPercent_HalfCredit(t *testing.T) {
	m := Map{
		"a": {Status: StatusCompleted},
		"b": {Status: StatusInProgress},
	}
	// 1 + 0.5 over 2 notes = 75%.
	if got := Percent([]string{"a", "b"}, m); got != 75 {
		t.Errorf("Percent() = %d, want 75", got)
	}
}

func TestPercent_Rounds(t *testing.T) {
	m := Map{"a": {Status: StatusCompleted}}
	// 1 of 3 = 33.33 -> 33.
	if got := Percent([]string{"a", "b", "c"}, m); got != 33 {
		t.Errorf("Percent() = %d, want 33", got)
	}
	m["b"] = NoteProgress{Status: StatusCompleted}
	// 2 of 3 = 66.67 -> 67.
	if got := Percent([]string{"a", "b", "c"}, m); got != 67 {
		t.Errorf("Percent() = %d, want 67", got)
	}
}

func TestPercent_IgnoresUntrackedIDs(t *testing.T) {
	m := Map{"a": {Status: StatusCompleted}}
	if got := Percent([]string{"a", "missing"}, m); got != 50 {
		t.Errorf("Percent() = %d, want 50", got)
	}
}

func TestDueForReview_PreservesOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	m := Map{
		"c": {Status: StatusCompleted, NextReviewAt: &past},
		"a": {Status: StatusCompleted, NextReviewAt: &past},
		"b": {Status: StatusInProgress},
	}
	got := DueForReview([]string{"c", "b", "a"}, m, now)
	if len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Errorf("DueForReview() = %v, want [c a]", got)
	}
}

func TestClone_Independent(t *testing.T) {
	m := Map{"a": {Status: StatusCompleted}}
	c := m.Clone()
	c["b"] = NoteProgress{Status: StatusInProgress}
	if _, ok := m["b"]; ok {
		t.Error("mutating a clone leaked into the original")
	}
}
