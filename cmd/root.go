package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/config"
	"github.com/prepdeck/prepdeck/internal/progress"
	"github.com/prepdeck/prepdeck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "prepdeck",
	Short: "Interview prep flashcards in the terminal",
	Long:  "Prepdeck is a terminal flashcard trainer for interview questions, with spaced review and AI answer grading.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PREPDECK_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "User ID for synced progress (overrides PREPDECK_USER env var)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PREPDECK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveUser returns the user ID from --user or PREPDECK_USER, or ""
// for an anonymous session.
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return config.UserID()
}

// resolveTracker picks the progress backend from auth state: the
// per-user synced tracker when a user is set, the anonymous local one
// otherwise.
func resolveTracker(cmd *cobra.Command, st *store.Store) (progress.Tracker, error) {
	if user := resolveUser(cmd); user != "" {
		return progress.NewManager(st.Documents()).Tracker(user), nil
	}

	dir, err := store.DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	kv, err := store.NewFileKV(dir)
	if err != nil {
		return nil, fmt.Errorf("open local progress store: %w", err)
	}
	return progress.NewLocalTracker(kv), nil
}
