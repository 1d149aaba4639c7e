package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/progress"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run a periodic due-review reminder in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetInt("every")
		if interval <= 0 {
			interval = 1
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		tracker, err := resolveTracker(cmd, s)
		if err != nil {
			return err
		}

		check := func() {
			notes, err := s.Notes().ListAll(context.Background())
			if err != nil {
				fmt.Printf("%s  failed to load notes: %v\n", time.Now().Format("15:04"), err)
				return
			}
			noteIDs := make([]string, len(notes))
			byID := make(map[string]string, len(notes))
			for i, n := range notes {
				noteIDs[i] = n.ID
				byID[n.ID] = n.Title
			}

			due := progress.DueForReview(noteIDs, tracker.Snapshot(), time.Now())
			if len(due) == 0 {
				fmt.Printf("%s  nothing due\n", time.Now().Format("15:04"))
				return
			}

			fmt.Printf("%s  %d note(s) due for review:\n", time.Now().Format("15:04"), len(due))
			for _, id := range due {
				fmt.Printf("  %s  %s\n", id, byID[id])
			}
		}

		// Report once immediately, then on the interval.
		check()

		sched := gocron.NewScheduler(time.UTC)
		if _, err := sched.Every(interval).Hours().Do(check); err != nil {
			return fmt.Errorf("schedule reminder: %w", err)
		}

		fmt.Printf("Checking every %d hour(s). Ctrl+C to stop.\n", interval)
		sched.StartBlocking()
		return nil
	},
}

func init() {
	remindCmd.Flags().Int("every", 1, "Hours between checks")
}
