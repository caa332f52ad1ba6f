package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [URL]",
		Short: "List the scans of a page, or every scanned URL",
		Long: `History lists the scans of a URL, newest first, including failed scans.
Without a URL it lists every URL in the score database.

Examples:
  contentscale history
  contentscale history https://example.com/guide
  contentscale history -n 5 --json https://example.com/guide`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 0, "Maximum number of scans (0 for all)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	db, err := openExistingStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		urls, err := db.ListScannedURLs(ctx)
		if err != nil {
			return err
		}
		if cfg.JSONReport {
			return json.NewEncoder(out).Encode(urls)
		}
		if len(urls) == 0 {
			fmt.Fprintln(out, "No scanned URLs found in the database.")
			return nil
		}
		fmt.Fprintf(out, "Scanned URLs (%d):\n\n", len(urls))
		for _, u := range urls {
			fmt.Fprintf(out, "  %s\n", u)
		}
		return nil
	}

	url := args[0]
	rows, err := db.GetScanHistory(ctx, url, flagInt(cmd, "limit", 0))
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	switch {
	case cfg.JSONReport:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case cfg.MarkdownReport:
		return report.WriteSummariesMarkdown(out, "History of "+url, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", url)
		return nil
	}
	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", url, len(rows))
	fmt.Fprintf(out, "  %-36s  %-20s  %-5s  %s\n", "ID", "Date", "Score", "Status")
	for _, s := range rows {
		status := string(s.Quality)
		score := fmt.Sprint(s.Total)
		if s.FailureStage != "" {
			status = "failed at " + s.FailureStage
			score = "-"
		} else if !s.Verified {
			status += " (" + report.Unverified + ")"
		}
		fmt.Fprintf(out, "  %-36s  %-20s  %-5s  %s\n", s.ID, s.ScannedAt.Format("2006-01-02 15:04:05"), score, status)
	}
	fmt.Fprintln(out, "\nUse 'contentscale compare <url>' to compare the latest two scans.")
	return nil
}
