package tui

import "github.com/prepdeck/prepdeck/internal/grader"

// gradedMsg is sent when the async grading call finishes.
type gradedMsg struct {
	NoteID string
	Result *grader.Result
	Err    error
}

// progressChangedMsg is sent when the tracker notifies a subscriber.
type progressChangedMsg struct{}
