package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwhiz/internal/report"
	"github.com/abhisek/quizwhiz/internal/store"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List recent quiz reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		records, err := s.ReportRepo().ListReports(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No quiz reports yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-12s  %-5s  %-9s  %s\n",
			"ID", "Finished", "Subject", "Grade", "Correct", "Accuracy")
		fmt.Println(strings.Repeat("─", 70))

		for _, r := range records {
			fmt.Printf("%-5d  %-19s  %-12s  %-5d  %-9s  %.0f%%\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Subject,
				r.Grade,
				fmt.Sprintf("%d/%d", r.TotalCorrect, r.TotalQuestions),
				r.Accuracy*100,
			)
			if verbose {
				printReportDetail(r)
			}
		}
		return nil
	},
}

// printReportDetail prints per-topic lines for one stored report.
func printReportDetail(r store.ReportRecord) {
	var sr report.SessionReport
	if err := r.Decode(&sr); err != nil {
		fmt.Printf("       (unreadable report: %v)\n", err)
		return
	}
	for _, topic := range slices.Sorted(maps.Keys(sr.TopicStats)) {
		ts := sr.TopicStats[topic]
		fmt.Printf("       %-24s  %d/%d\n", topic, ts.Correct, ts.Total)
	}
	if len(sr.RevisionNeeded) > 0 {
		fmt.Printf("       needs revision: %s\n", strings.Join(sr.RevisionNeeded, ", "))
	}
}

func init() {
	reportsCmd.Flags().IntP("limit", "n", 10, "Number of reports to show")
	reportsCmd.Flags().BoolP("verbose", "v", false, "Show per-topic results")
}
