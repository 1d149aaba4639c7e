package progress

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// memoryKVStore is an in-memory KV for tests.
type memoryKVStore struct {
	data   map[string][]byte
	setErr error
	sets   int
}

func newMemoryKV() *memoryKVStore {
	return &memoryKVStore{data: make(map[string][]byte)}
}

func (kv *memoryKVStore) Get(key string) ([]byte, bool, error) {
	raw, ok := kv.data[key]
	return raw, ok, nil
}

func (kv *memoryKVStore) Set(key string, value []byte) error {
	if kv.setErr != nil {
		return kv.setErr
	}
	kv.sets++
	kv.data[key] = value
	return nil
}

func testClock(start time.Time) func() time.Time {
	return func() time.Time { return start }
}

func TestLocalTracker_EmptySnapshotIsStable(t *testing.T) {
	tr := NewLocalTracker(newMemoryKV())

	a := tr.Snapshot()
	b := tr.Snapshot()
	if len(a) != 0 {
		t.Fatalf("expected empty snapshot, got %d entries", len(a))
	}
	if reflect.ValueOf(a).Pointer() != reflect.ValueOf(b).Pointer() {
		t.Error("empty snapshots should be the same shared value")
	}
}

func TestLocalTracker_SetStatusStampsViewed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewLocalTracker(newMemoryKV())
	tr.now = testClock(now)

	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}

	p := tr.Snapshot()["n1"]
	if p.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress", p.Status)
	}
	if p.LastViewedAt == nil || !p.LastViewedAt.Equal(now) {
		t.Errorf("LastViewedAt = %v, want %v", p.LastViewedAt, now)
	}
}

func TestLocalTracker_CompletionSchedulesFirstReview(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewLocalTracker(newMemoryKV())
	tr.now = testClock(now)

	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}

	p := tr.Snapshot()["n1"]
	if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt = %v, want %v", p.CompletedAt, now)
	}
	wantNext := now.AddDate(0, 0, 1)
	if p.NextReviewAt == nil || !p.NextReviewAt.Equal(wantNext) {
		t.Errorf("NextReviewAt = %v, want %v", p.NextReviewAt, wantNext)
	}
}

func TestLocalTracker_CompletedAtSetOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewLocalTracker(newMemoryKV())
	tr.now = testClock(first)

	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}

	tr.now = testClock(first.AddDate(0, 0, 10))
	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}

	p := tr.Snapshot()["n1"]
	if p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt = %v, want first completion time %v", p.CompletedAt, first)
	}
}

func TestLocalTracker_SetScoreClamps(t *testing.T) {
	tr := NewLocalTracker(newMemoryKV())

	if err := tr.SetScore("n1", 150); err != nil {
		t.Fatal(err)
	}
	if p := tr.Snapshot()["n1"]; p.Score == nil || *p.Score != 100 {
		t.Errorf("score = %v, want 100", p.Score)
	}

	if err := tr.SetScore("n1", -5); err != nil {
		t.Fatal(err)
	}
	if p := tr.Snapshot()["n1"]; p.Score == nil || *p.Score != 0 {
		t.Errorf("score = %v, want 0", p.Score)
	}
}

func TestLocalTracker_ReviewScheduleProgression(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewLocalTracker(newMemoryKV())
	tr.now = testClock(now)

	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}

	// Offsets follow the schedule, then stay at the last interval.
	wantOffsets := []int{3, 7, 7, 7}
	for i, days := range wantOffsets {
		reviewAt := now.AddDate(0, 0, i)
		tr.now = testClock(reviewAt)

		if err := tr.RecordReview("n1"); err != nil {
			t.Fatalf("review %d: %v", i+1, err)
		}

		p := tr.Snapshot()["n1"]
		if p.ReviewCount != i+1 {
			t.Errorf("review %d: count = %d, want %d", i+1, p.ReviewCount, i+1)
		}
		wantNext := reviewAt.AddDate(0, 0, days)
		if p.NextReviewAt == nil || !p.NextReviewAt.Equal(wantNext) {
			t.Errorf("review %d: NextReviewAt = %v, want %v", i+1, p.NextReviewAt, wantNext)
		}
		if p.LastReviewedAt == nil || !p.LastReviewedAt.Equal(reviewAt) {
			t.Errorf("review %d: LastReviewedAt = %v, want %v", i+1, p.LastReviewedAt, reviewAt)
		}
	}
}

func TestLocalTracker_ReviewRequiresCompletion(t *testing.T) {
	kv := newMemoryKV()
	tr := NewLocalTracker(kv)

	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}
	before := tr.Snapshot()
	setsBefore := kv.sets

	var notified bool
	cancel := tr.Subscribe(func(Map) { notified = true })
	defer cancel()

	err := tr.RecordReview("n1")
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("err = %v, want ErrNotCompleted", err)
	}
	if notified {
		t.Error("a failed review should not notify subscribers")
	}
	if kv.sets != setsBefore {
		t.Error("a failed review should not persist")
	}
	after := tr.Snapshot()
	if reflect.ValueOf(before).Pointer() != reflect.ValueOf(after).Pointer() {
		t.Error("a failed review should leave the snapshot untouched")
	}

	err = tr.RecordReview("missing")
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("err = %v, want ErrNotCompleted for unknown note", err)
	}
}

func TestLocalTracker_ClearItem(t *testing.T) {
	tr := NewLocalTracker(newMemoryKV())

	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := tr.ClearItem("n1"); err != nil {
		t.Fatal(err)
	}

	if _, ok := tr.Snapshot()["n1"]; ok {
		t.Error("expected n1 removed")
	}
}

func TestLocalTracker_SnapshotsAreImmutable(t *testing.T) {
	tr := NewLocalTracker(newMemoryKV())

	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}
	before := tr.Snapshot()

	if err := tr.SetStatus("n2", StatusInProgress); err != nil {
		t.Fatal(err)
	}

	if _, ok := before["n2"]; ok {
		t.Error("a later write mutated an earlier snapshot")
	}
}

func TestLocalTracker_PersistsAcrossInstances(t *testing.T) {
	kv := newMemoryKV()

	tr := NewLocalTracker(kv)
	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetScore("n1", 80); err != nil {
		t.Fatal(err)
	}

	again := NewLocalTracker(kv)
	p := again.Snapshot()["n1"]
	if p.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", p.Status)
	}
	if p.Score == nil || *p.Score != 80 {
		t.Errorf("score = %v, want 80", p.Score)
	}
}

func TestLocalTracker_SkipsCorruptPersistedState(t *testing.T) {
	kv := newMemoryKV()
	kv.data[LocalKey] = []byte("{not json")

	tr := NewLocalTracker(kv)
	if got := tr.Snapshot(); len(got) != 0 {
		t.Errorf("expected empty snapshot for corrupt state, got %d entries", len(got))
	}

	// The tracker is still writable.
	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}
}

func TestLocalTracker_PersistFailureKeepsMemoryState(t *testing.T) {
	kv := newMemoryKV()
	kv.setErr = errors.New("disk full")

	tr := NewLocalTracker(kv)
	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if tr.Snapshot()["n1"].Status != StatusInProgress {
		t.Error("in-memory state should survive a persistence failure")
	}
}

func TestLocalTracker_SubscribeNotifiesInWriteOrder(t *testing.T) {
	tr := NewLocalTracker(newMemoryKV())

	var seen []int
	cancel := tr.Subscribe(func(m Map) {
		seen = append(seen, len(m))
	})
	defer cancel()

	for i, id := range []string{"a", "b", "c"} {
		if err := tr.SetStatus(id, StatusInProgress); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	want := []int{1, 2, 3}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("notification sizes = %v, want %v", seen, want)
	}
}

func TestLocalTracker_CancelStopsNotifications(t *testing.T) {
	tr := NewLocalTracker(newMemoryKV())

	var count int
	cancel := tr.Subscribe(func(Map) { count++ })

	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := tr.SetStatus("n2", StatusInProgress); err != nil {
		t.Fatal(err)
	}

	if count != 1 {
		t.Errorf("notifications = %d, want 1", count)
	}
}

func TestLocalTracker_SerializedFormat(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	kv := newMemoryKV()
	tr := NewLocalTracker(kv)
	tr.now = testClock(now)

	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal(kv.data[LocalKey], &decoded); err != nil {
		t.Fatalf("persisted value is not JSON: %v", err)
	}
	if decoded["n1"]["status"] != "completed" {
		t.Errorf("persisted status = %v, want completed", decoded["n1"]["status"])
	}
	if _, ok := decoded["n1"]["completed_at"]; !ok {
		t.Error("expected completed_at in persisted record")
	}
}

// Full lifecycle: view, complete, score, review, reset.
func TestLocalTracker_Lifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := NewLocalTracker(newMemoryKV())
	tr.now = testClock(now)

	if err := tr.SetStatus("n1", StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetStatus("n1", StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetScore("n1", 85); err != nil {
		t.Fatal(err)
	}

	ids := []string{"n1", "n2"}
	if got := Percent(ids, tr.Snapshot()); got != 50 {
		t.Errorf("Percent = %d, want 50", got)
	}

	// Not due the next morning, due after the first delay.
	if due := DueForReview(ids, tr.Snapshot(), now.Add(12*time.Hour)); len(due) != 0 {
		t.Errorf("due too early: %v", due)
	}
	due := DueForReview(ids, tr.Snapshot(), now.AddDate(0, 0, 1))
	if len(due) != 1 || due[0] != "n1" {
		t.Fatalf("due = %v, want [n1]", due)
	}

	tr.now = testClock(now.AddDate(0, 0, 1))
	if err := tr.RecordReview("n1"); err != nil {
		t.Fatal(err)
	}
	p := tr.Snapshot()["n1"]
	wantNext := now.AddDate(0, 0, 1+3)
	if p.NextReviewAt == nil || !p.NextReviewAt.Equal(wantNext) {
		t.Errorf("NextReviewAt = %v, want %v", p.NextReviewAt, wantNext)
	}

	if err := tr.ClearItem("n1"); err != nil {
		t.Fatal(err)
	}
	if got := Percent(ids, tr.Snapshot()); got != 0 {
		t.Errorf("Percent after reset = %d, want 0", got)
	}
}
