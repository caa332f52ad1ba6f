package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for contentscale.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contentscale",
		Short: "Score web pages for SEO content quality",
		Long: `contentscale scores web pages for SEO content quality on a 0-100 scale.

Each page is rendered, parsed for credibility signals and technical SEO
elements, optionally validated by an LLM, and scored with three rubrics:
GRAAF (50 points), CRAFT (30 points) and Technical SEO (20 points).

Results are stored locally so that pages can be ranked and compared over time.
Validation requires ANTHROPIC_API_KEY; without it scores are labeled unverified.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .contentscale.yaml in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the SQLite score database (default: XDG data directory)")
	cmd.PersistentFlags().String("db-dsn", "",
		"PostgreSQL DSN; stores scores in PostgreSQL instead of SQLite")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewParseCmd())
	cmd.AddCommand(NewLeaderboardCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
