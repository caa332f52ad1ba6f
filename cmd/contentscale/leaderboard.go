package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/database"
	"github.com/nao1215/contentscale/internal/report"
)

// defaultLeaderboardLimit is the number of rows shown by default.
const defaultLeaderboardLimit = 20

// NewLeaderboardCmd creates the leaderboard command.
func NewLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank scanned pages by their latest score",
		Long: `Leaderboard ranks every scanned URL by the total of its latest successful
scan, highest first. Failed scans never appear.

Examples:
  contentscale leaderboard
  contentscale leaderboard --host example.com --verified-only
  contentscale leaderboard --since 2026-01-01 -n 50 --markdown`,
		Args: cobra.NoArgs,
		RunE: runLeaderboardCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultLeaderboardLimit, "Maximum number of rows (0 for all)")
	cmd.Flags().String("host", "", "Only rank pages of this host")
	cmd.Flags().String("since", "", "Only rank scans on or after this date (YYYY-MM-DD)")
	cmd.Flags().Bool("verified-only", false, "Only rank scores computed from validator verdicts")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown")

	return cmd
}

// runLeaderboardCmd executes the leaderboard command.
func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	since, err := parseSince(flagString(cmd, "since"))
	if err != nil {
		return err
	}

	db, err := openExistingStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Leaderboard(cmd.Context(), database.LeaderboardQuery{
		Host:         flagString(cmd, "host"),
		Since:        since,
		VerifiedOnly: flagBool(cmd, "verified-only"),
		Limit:        flagInt(cmd, "limit", defaultLeaderboardLimit),
	})
	if err != nil {
		return fmt.Errorf("failed to build leaderboard: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case cfg.JSONReport:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case cfg.MarkdownReport:
		return report.WriteSummariesMarkdown(out, "Leaderboard", rows)
	default:
		if len(rows) == 0 {
			fmt.Fprintln(out, "No scored pages found.")
			return nil
		}
		return report.WriteSummaries(out, "Leaderboard", rows)
	}
}
