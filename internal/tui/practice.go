// Package tui is the interactive practice screen.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/prepdeck/prepdeck/internal/grader"
	"github.com/prepdeck/prepdeck/internal/progress"
	"github.com/prepdeck/prepdeck/internal/store"
)

type phase int

const (
	phaseAnswering phase = iota
	phaseGrading
	phaseFeedback
	phaseDone
)

// Deps are the injected dependencies for the practice screen.
type Deps struct {
	Notes   []store.Note
	Tracker progress.Tracker

	// Grader may be nil; answers are then marked completed unscored.
	Grader *grader.Grader
}

// Model is the root Bubble Tea model for a practice run.
type Model struct {
	deps  Deps
	idx   int
	phase phase

	input    textinput.Model
	result   *grader.Result
	gradeErr error

	width  int
	height int
}

// New creates a practice model over the given notes.
func New(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.Focus()

	m := Model{deps: deps, input: ti}
	if len(deps.Notes) == 0 {
		m.phase = phaseDone
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.phase == phaseDone {
		return nil
	}
	return tea.Batch(m.input.Focus(), m.markViewed())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case gradedMsg:
		return m.handleGraded(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.phase == phaseAnswering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseDone:
		return m, tea.Quit

	case phaseFeedback:
		if key == "esc" {
			return m, tea.Quit
		}
		return m.advance()

	case phaseGrading:
		return m, nil

	case phaseAnswering:
		switch key {
		case "esc":
			return m, tea.Quit
		case "ctrl+n":
			// Skip without completing.
			return m.advance()
		case "enter":
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// markViewed moves the current note into in_progress unless it has
// already been completed.
func (m Model) markViewed() tea.Cmd {
	note := m.deps.Notes[m.idx]
	return func() tea.Msg {
		snap := m.deps.Tracker.Snapshot()
		if snap[note.ID].Status != progress.StatusCompleted {
			if err := m.deps.Tracker.SetStatus(note.ID, progress.StatusInProgress); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to mark note viewed: %v\n", err)
			}
		}
		return progressChangedMsg{}
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	answer := strings.TrimSpace(m.input.Value())
	if answer == "" {
		return m, nil
	}

	note := m.deps.Notes[m.idx]

	if m.deps.Grader == nil {
		m.complete(note.ID, nil)
		m.result = nil
		m.gradeErr = nil
		m.phase = phaseFeedback
		return m, nil
	}

	m.phase = phaseGrading
	g := m.deps.Grader
	return m, func() tea.Msg {
		res, err := g.Grade(context.Background(), note.Question, note.ModelAnswer, answer)
		return gradedMsg{NoteID: note.ID, Result: res, Err: err}
	}
}

func (m Model) handleGraded(msg gradedMsg) (tea.Model, tea.Cmd) {
	m.result = msg.Result
	m.gradeErr = msg.Err
	m.phase = phaseFeedback

	if msg.Err == nil {
		var score *int
		if msg.Result != nil {
			score = &msg.Result.Score
		}
		m.complete(msg.NoteID, score)
	}
	return m, nil
}

// complete marks the note completed, recording a review when it had
// been completed before.
func (m Model) complete(noteID string, score *int) {
	tr := m.deps.Tracker
	snap := tr.Snapshot()

	if snap[noteID].Status == progress.StatusCompleted {
		if err := tr.RecordReview(noteID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record review: %v\n", err)
		}
	} else if err := tr.SetStatus(noteID, progress.StatusCompleted); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to mark note completed: %v\n", err)
	}

	if score != nil {
		if err := tr.SetScore(noteID, *score); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record score: %v\n", err)
		}
	}
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.result = nil
	m.gradeErr = nil

	if m.idx >= len(m.deps.Notes)-1 {
		m.phase = phaseDone
		return m, nil
	}

	m.idx++
	m.phase = phaseAnswering

	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.Focus()
	m.input = ti

	return m, tea.Batch(m.input.Focus(), m.markViewed())
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 {
		return v
	}

	v.SetContent(m.render())
	return v
}

func (m Model) render() string {
	var b strings.Builder

	noteIDs := make([]string, len(m.deps.Notes))
	for i, n := range m.deps.Notes {
		noteIDs[i] = n.ID
	}
	pct := progress.Percent(noteIDs, m.deps.Tracker.Snapshot())

	b.WriteString(titleStyle.Render("prepdeck"))
	b.WriteString(crumbStyle.Render(fmt.Sprintf("  %d/%d notes · %d%% complete", m.idx+1, len(m.deps.Notes), pct)))
	b.WriteString("\n\n")

	if m.phase == phaseDone {
		b.WriteString("All done for this session.\n\n")
		b.WriteString(hintStyle.Render("Press any key to exit"))
		return b.String()
	}

	note := m.deps.Notes[m.idx]
	b.WriteString(questionStyle.Width(m.contentWidth()).Render(note.Question))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseAnswering:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Enter submit · Ctrl+N skip · Esc quit"))

	case phaseGrading:
		b.WriteString(hintStyle.Render("Grading..."))

	case phaseFeedback:
		b.WriteString(m.renderFeedback())
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Any key for next · Esc quit"))
	}

	return b.String()
}

func (m Model) renderFeedback() string {
	if m.gradeErr != nil {
		return errStyle.Render("Grading failed: " + m.gradeErr.Error())
	}
	if m.result == nil {
		return feedbackStyle.Width(m.contentWidth()).Render("Marked completed.")
	}

	score := scoreStyle(m.result.Score).Render(fmt.Sprintf("Score: %d/100", m.result.Score))
	return feedbackStyle.Width(m.contentWidth()).Render(score + "\n\n" + m.result.Feedback)
}

func (m Model) contentWidth() int {
	w := m.width - 4
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Run starts the Bubble Tea program.
func Run(deps Deps) error {
	p := tea.NewProgram(New(deps))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
