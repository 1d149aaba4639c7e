package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/category"
	"github.com/prepdeck/prepdeck/internal/progress"
	"github.com/prepdeck/prepdeck/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study progress and deck statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		cats, err := s.Categories().List(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		notes, err := s.Notes().ListAll(ctx)
		if err != nil {
			return fmt.Errorf("load notes: %w", err)
		}

		tracker, err := resolveTracker(cmd, s)
		if err != nil {
			return err
		}
		snap := tracker.Snapshot()

		noteIDs := make([]string, len(notes))
		for i, n := range notes {
			noteIDs[i] = n.ID
		}

		var completed, inProgress int
		for _, id := range noteIDs {
			switch snap[id].Status {
			case progress.StatusCompleted:
				completed++
			case progress.StatusInProgress:
				inProgress++
			}
		}
		due := progress.DueForReview(noteIDs, snap, time.Now())

		st := category.ComputeStatistics(cats)
		sep := strings.Repeat("─", 48)

		fmt.Println("Deck")
		fmt.Println(sep)
		fmt.Printf("%-20s %d\n", "Categories", st.TotalCategories)
		fmt.Printf("%-20s %d\n", "Notes", len(notes))
		fmt.Printf("%-20s max %d, avg %.1f\n", "Tree depth", st.MaxDepth, st.AvgDepth)

		fmt.Println()
		fmt.Println("Progress")
		fmt.Println(sep)
		fmt.Printf("%-20s %d%%\n", "Overall", progress.Percent(noteIDs, snap))
		fmt.Printf("%-20s %d\n", "Completed", completed)
		fmt.Printf("%-20s %d\n", "In progress", inProgress)
		fmt.Printf("%-20s %d\n", "Due for review", len(due))

		for _, id := range due {
			for _, n := range notes {
				if n.ID == id {
					fmt.Printf("  %s  %s\n", n.ID, n.Title)
					break
				}
			}
		}

		return nil
	},
}
