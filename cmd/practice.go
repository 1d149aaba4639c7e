package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/grader"
	"github.com/prepdeck/prepdeck/internal/store"
	"github.com/prepdeck/prepdeck/internal/tui"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd)
	},
}

func init() {
	practiceCmd.Flags().StringP("category", "c", "", "Limit the session to one category ID")
}

// runPractice opens the store, builds dependencies, and launches the TUI.
func runPractice(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var notes []store.Note
	if catID, _ := cmd.Flags().GetString("category"); catID != "" {
		notes, err = st.Notes().ListByCategory(ctx, catID)
	} else {
		notes, err = st.Notes().ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	if len(notes) == 0 {
		fmt.Println("No notes yet. Add some with: prepdeck note add")
		return nil
	}

	tracker, err := resolveTracker(cmd, st)
	if err != nil {
		return err
	}

	deps := tui.Deps{
		Notes:   notes,
		Tracker: tracker,
	}

	provider, err := grader.NewProviderFromEnv(ctx, st.GradeLog())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Grading provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Answers will be marked complete without a score.")
	} else {
		deps.Grader = grader.NewGrader(provider, grader.DefaultGraderConfig())
	}

	return tui.Run(deps)
}
