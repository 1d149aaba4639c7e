package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/store"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage the category tree",
}

var categoryListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		cats, err := s.Categories().List(context.Background())
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		if len(cats) == 0 {
			fmt.Println("No categories yet.")
			return nil
		}

		for _, c := range cats {
			marker := ""
			if c.IsLeaf {
				marker = " *"
			}
			fmt.Printf("%s%s%s  (%s)\n", strings.Repeat("  ", c.Depth), c.Name, marker, c.ID)
		}
		fmt.Println("\n* leaf category (holds notes)")
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		leaf, _ := cmd.Flags().GetBool("leaf")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var parentID *string
		if parent != "" {
			parentID = &parent
		}

		c, err := s.Categories().Create(context.Background(), args[0], parentID, leaf)
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		fmt.Printf("Created %q (%s)\n", c.Name, c.ID)
		return nil
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Categories().Rename(context.Background(), args[0], args[1]); err != nil {
			return fmt.Errorf("rename category: %w", err)
		}
		fmt.Println("Renamed.")
		return nil
	},
}

var categoryMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move a category under a new parent (or to the root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var parentID *string
		if parent != "" {
			parentID = &parent
		}

		if err := s.Categories().Move(context.Background(), args[0], parentID); err != nil {
			return fmt.Errorf("move category: %w", err)
		}
		fmt.Println("Moved.")
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an empty category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Categories().Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().StringP("parent", "p", "", "Parent category ID (empty for a root)")
	categoryAddCmd.Flags().BoolP("leaf", "l", false, "Mark as a leaf category that holds notes")
	categoryMoveCmd.Flags().StringP("parent", "p", "", "New parent category ID (empty for the root)")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryMoveCmd)
	categoryCmd.AddCommand(categoryRemoveCmd)
}

// openStore resolves the DB path and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
