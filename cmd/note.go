package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/store"
)

func listNotes(ctx context.Context, s *store.Store, catID string) ([]store.Note, error) {
	var notes []store.Note
	var err error
	if catID != "" {
		notes, err = s.Notes().ListByCategory(ctx, catID)
	} else {
		notes, err = s.Notes().ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return notes, nil
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage interview notes",
}

var noteListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List notes (optionally for one category)",
	RunE: func(cmd *cobra.Command, args []string) error {
		catID, _ := cmd.Flags().GetString("category")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		notes, err := listNotes(ctx, s, catID)
		if err != nil {
			return err
		}

		if len(notes) == 0 {
			fmt.Println("No notes found.")
			return nil
		}

		fmt.Printf("%-36s  %-30s  %s\n", "ID", "Title", "Category")
		fmt.Println(strings.Repeat("─", 90))
		for _, n := range notes {
			title := n.Title
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			fmt.Printf("%-36s  %-30s  %s\n", n.ID, title, n.CategoryID)
		}
		fmt.Printf("\n%d notes\n", len(notes))
		return nil
	},
}

var noteAddCmd = &cobra.Command{
	Use:   "add <category-id> <title>",
	Short: "Create a note; question and model answer are read from stdin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reader := bufio.NewReader(os.Stdin)

		fmt.Print("Question: ")
		question, err := readLine(reader)
		if err != nil {
			return err
		}
		fmt.Print("Model answer: ")
		modelAnswer, err := readLine(reader)
		if err != nil {
			return err
		}

		n, err := s.Notes().Create(context.Background(), args[0], args[1], question, modelAnswer)
		if err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		fmt.Printf("Created %q (%s)\n", n.Title, n.ID)
		return nil
	},
}

var noteRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Notes().Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	noteListCmd.Flags().StringP("category", "c", "", "Filter by category ID")

	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteRemoveCmd)
}
