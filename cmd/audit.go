package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prepdeck/prepdeck/internal/category"
	"github.com/prepdeck/prepdeck/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the category tree for structural problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		cats, err := s.Categories().List(context.Background())
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		report := category.RunAll(cats)
		printAuditReport(report)

		if report.HasIssues {
			return fmt.Errorf("category tree has issues")
		}
		return nil
	},
}

func printAuditReport(r category.Report) {
	sep := strings.Repeat("─", 60)

	fmt.Println("Category Tree Audit")
	fmt.Println(sep)
	fmt.Printf("Categories:  %d total, %d roots, %d leaves, %d containers\n",
		r.Stats.TotalCategories, r.Stats.RootCategories,
		r.Stats.LeafCategories, r.Stats.ContainerCategories)
	fmt.Printf("Depth:       max %d, avg %.1f\n", r.Stats.MaxDepth, r.Stats.AvgDepth)
	fmt.Println(sep)

	if len(r.Orphaned) > 0 {
		fmt.Printf("Orphaned (%d):\n", len(r.Orphaned))
		for _, c := range r.Orphaned {
			fmt.Printf("  %s  %s\n", c.ID, c.Name)
		}
	}

	if len(r.Circular) > 0 {
		fmt.Printf("Circular parent references (%d):\n", len(r.Circular))
		for _, id := range r.Circular {
			fmt.Printf("  %s\n", id)
		}
	}

	if !r.PathValidation.Valid {
		fmt.Printf("Path inconsistencies (%d):\n", len(r.PathValidation.Errors))
		for _, e := range r.PathValidation.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	if len(r.ExcessiveDepth) > 0 {
		fmt.Printf("Deeper than %d levels (%d):\n", category.DefaultMaxDepth, len(r.ExcessiveDepth))
		for _, c := range r.ExcessiveDepth {
			fmt.Printf("  %s  %s (depth %d)\n", c.ID, c.Name, c.Depth)
		}
	}

	if !r.HasIssues {
		fmt.Println("No issues found.")
	}
}
