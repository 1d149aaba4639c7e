package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"categories", "notes", "progress_docs", "grade_requests"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestCategoryRepo_CreateRoot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.Categories().Create(ctx, "Backend", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if c.Depth != 0 || len(c.Path) != 0 || c.ParentID != nil {
		t.Errorf("root category = %+v", c)
	}

	got, err := s.Categories().Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Backend" || got.Depth != 0 || len(got.Path) != 0 {
		t.Errorf("round-tripped = %+v", got)
	}
}

func TestCategoryRepo_CreateChildComputesPlacement(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	root, err := s.Categories().Create(ctx, "Backend", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	mid, err := s.Categories().Create(ctx, "Databases", &root.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := s.Categories().Create(ctx, "Indexes", &mid.ID, true)
	if err != nil {
		t.Fatal(err)
	}

	if leaf.Depth != 2 {
		t.Errorf("depth = %d, want 2", leaf.Depth)
	}
	want := []string{root.ID, mid.ID}
	if len(leaf.Path) != 2 || leaf.Path[0] != want[0] || leaf.Path[1] != want[1] {
		t.Errorf("path = %v, want %v", leaf.Path, want)
	}
}

func TestCategoryRepo_LeafCannotHoldChildren(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	leaf, err := s.Categories().Create(ctx, "Indexes", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Categories().Create(ctx, "Kid", &leaf.ID, true); err == nil {
		t.Error("expected error creating a child under a leaf")
	}
}

func TestCategoryRepo_MoveRewritesSubtree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.Categories().Create(ctx, "A", nil, false)
	b, _ := s.Categories().Create(ctx, "B", nil, false)
	mid, err := s.Categories().Create(ctx, "Mid", &a.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := s.Categories().Create(ctx, "Leaf", &mid.ID, true)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Categories().Move(ctx, mid.ID, &b.ID); err != nil {
		t.Fatal(err)
	}

	movedMid, _ := s.Categories().Get(ctx, mid.ID)
	if movedMid.ParentID == nil || *movedMid.ParentID != b.ID {
		t.Errorf("mid parent = %v, want %s", movedMid.ParentID, b.ID)
	}
	if movedMid.Depth != 1 || len(movedMid.Path) != 1 || movedMid.Path[0] != b.ID {
		t.Errorf("mid placement = depth %d path %v", movedMid.Depth, movedMid.Path)
	}

	movedLeaf, _ := s.Categories().Get(ctx, leaf.ID)
	if movedLeaf.Depth != 2 || len(movedLeaf.Path) != 2 || movedLeaf.Path[0] != b.ID || movedLeaf.Path[1] != mid.ID {
		t.Errorf("leaf placement = depth %d path %v", movedLeaf.Depth, movedLeaf.Path)
	}
}

func TestCategoryRepo_MoveToRoot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.Categories().Create(ctx, "A", nil, false)
	kid, err := s.Categories().Create(ctx, "Kid", &a.ID, true)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Categories().Move(ctx, kid.ID, nil); err != nil {
		t.Fatal(err)
	}

	moved, _ := s.Categories().Get(ctx, kid.ID)
	if moved.ParentID != nil || moved.Depth != 0 || len(moved.Path) != 0 {
		t.Errorf("moved = %+v, want root placement", moved)
	}
}

func TestCategoryRepo_MoveUnderOwnSubtreeRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.Categories().Create(ctx, "A", nil, false)
	kid, err := s.Categories().Create(ctx, "Kid", &a.ID, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Categories().Move(ctx, a.ID, &kid.ID); err == nil {
		t.Error("expected error moving a category under its descendant")
	}
	if err := s.Categories().Move(ctx, a.ID, &a.ID); err == nil {
		t.Error("expected error moving a category under itself")
	}
}

func TestCategoryRepo_DeleteGuards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.Categories().Create(ctx, "A", nil, false)
	kid, err := s.Categories().Create(ctx, "Kid", &a.ID, true)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Categories().Delete(ctx, a.ID); err == nil {
		t.Error("expected error deleting a category with children")
	}

	if _, err := s.Notes().Create(ctx, kid.ID, "t", "q", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Categories().Delete(ctx, kid.ID); err == nil {
		t.Error("expected error deleting a category with notes")
	}
}

func TestNoteRepo_PositionsAppend(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, _ := s.Categories().Create(ctx, "C", nil, true)
	n1, err := s.Notes().Create(ctx, c.ID, "first", "q1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	n2, err := s.Notes().Create(ctx, c.ID, "second", "q2", "a2")
	if err != nil {
		t.Fatal(err)
	}
	if n1.Position != 1 || n2.Position != 2 {
		t.Errorf("positions = %d, %d, want 1, 2", n1.Position, n2.Position)
	}

	notes, err := s.Notes().ListByCategory(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 || notes[0].ID != n1.ID || notes[1].ID != n2.ID {
		t.Errorf("list order wrong: %v", notes)
	}
}

func TestNoteRepo_UpdateAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, _ := s.Categories().Create(ctx, "C", nil, true)
	n, err := s.Notes().Create(ctx, c.ID, "t", "q", "a")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Notes().Update(ctx, n.ID, "t2", "q2", "a2"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Notes().Get(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "t2" || got.Question != "q2" || got.ModelAnswer != "a2" {
		t.Errorf("updated note = %+v", got)
	}

	if err := s.Notes().Delete(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Notes().Get(ctx, n.ID); err == nil {
		t.Error("expected error for deleted note")
	}
	if err := s.Notes().Delete(ctx, n.ID); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestGradeLog_AppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.GradeLog().Append(ctx, GradeRequestData{
			Provider:     "mock",
			Model:        "mock",
			InputTokens:  10 + i,
			OutputTokens: 5,
			LatencyMs:    int64(100 * i),
			Success:      i != 1,
			ErrorMessage: "",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.GradeLog().Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].InputTokens != 12 || records[1].InputTokens != 11 {
		t.Errorf("order wrong: %d, %d", records[0].InputTokens, records[1].InputTokens)
	}
	if records[1].Success {
		t.Error("second newest should be the failed request")
	}
}
