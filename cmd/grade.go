package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/grader"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <note-id> [answer]",
	Short: "Grade one answer against a note's model answer",
	Long:  "Grades an answer with the configured AI provider. The answer is taken from the arguments, or from stdin when omitted.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		note, err := s.Notes().Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load note: %w", err)
		}

		var answer string
		if len(args) == 2 {
			answer = args[1]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read answer from stdin: %w", err)
			}
			answer = strings.TrimSpace(string(data))
		}
		if answer == "" {
			return fmt.Errorf("answer is empty")
		}

		provider, err := grader.NewProviderFromEnv(ctx, s.GradeLog())
		if err != nil {
			return err
		}

		g := grader.NewGrader(provider, grader.DefaultGraderConfig())
		result, err := g.Grade(ctx, note.Question, note.ModelAnswer, answer)
		if err != nil {
			return err
		}

		fmt.Printf("Score: %d/100\n\n%s\n", result.Score, result.Feedback)
		return nil
	},
}

var gradeLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent grading requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.GradeLog().Recent(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query grade log: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No grading requests recorded yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 90))

		for _, r := range records {
			ok := "✓"
			if !r.Success {
				ok = "✗"
			}
			model := r.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-5d  %-19s  %-28s  %-6d  %-6d  %-7d  %s\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				model,
				r.InputTokens,
				r.OutputTokens,
				r.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	gradeLogCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")

	gradeCmd.AddCommand(gradeLogCmd)
}
