package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/database"
	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/report"
	"github.com/nao1215/contentscale/internal/scoring"
)

// Score directions between two scans.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare URL",
		Short: "Compare the latest score of a page with an earlier scan",
		Long: `Compare shows how the score of a page changed between two successful scans.

By default the latest scan is compared with the one before it. Failed scans
are never compared. Each criterion of the three rubrics is listed with its
previous and current points.

Examples:
  # Compare the latest two scans of a page
  contentscale compare https://example.com/guide

  # Compare with a specific scan (IDs are shown by 'contentscale history')
  contentscale compare --with-scan-id 6f1c... https://example.com/guide

  # Compare with the first scan since a date
  contentscale compare --since 2026-01-01 https://example.com/guide`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("with-scan-id", "i", "",
		"Compare with a specific scan by ID")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
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

	previous, current, err := selectComparison(cmd.Context(), db, args[0], flagString(cmd, "with-scan-id"), since)
	if err != nil {
		return err
	}

	result := compareReports(previous, current)
	out := cmd.OutOrStdout()
	switch {
	case cfg.JSONReport:
		return outputComparisonJSON(out, result)
	case cfg.MarkdownReport:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// selectComparison picks the previous and current reports of url.
// The current report is the latest successful scan.
func selectComparison(ctx context.Context, db *database.ScoreDB, url, withScanID string, since time.Time) (*model.ScanReport, *model.ScanReport, error) {
	history, err := db.GetScanHistory(ctx, url, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get scan history: %w", err)
	}

	// Newest first.
	scored := make([]model.ScanSummary, 0, len(history))
	for _, s := range history {
		if s.FailureStage == "" {
			scored = append(scored, s)
		}
	}
	if len(scored) == 0 {
		return nil, nil, fmt.Errorf("no successful scans found for %s", url)
	}

	var previousID string
	switch {
	case withScanID != "":
		if withScanID == scored[0].ID {
			return nil, nil, fmt.Errorf("scan %s is the latest scan; choose an earlier one", withScanID)
		}
		previousID = withScanID
	case !since.IsZero():
		for i := len(scored) - 1; i > 0; i-- {
			if !scored[i].ScannedAt.Before(since) {
				previousID = scored[i].ID
				break
			}
		}
		if previousID == "" {
			return nil, nil, fmt.Errorf("no earlier successful scan found since %s", since.Format(dateLayout))
		}
	default:
		if len(scored) < 2 {
			return nil, nil, fmt.Errorf("at least 2 successful scans are required for comparison (found %d)", len(scored))
		}
		previousID = scored[1].ID
	}

	current, err := db.GetScanReportByID(ctx, scored[0].ID)
	if err != nil {
		return nil, nil, err
	}
	previous, err := db.GetScanReportByID(ctx, previousID)
	if err != nil {
		return nil, nil, err
	}
	if current == nil || previous == nil {
		return nil, nil, fmt.Errorf("scan %s not found", previousID)
	}
	if previous.URL != url {
		return nil, nil, fmt.Errorf("scan %s belongs to %s, not %s", previousID, previous.URL, url)
	}
	if previous.Failed() || previous.Score == nil || current.Score == nil {
		return nil, nil, errors.New("failed scans cannot be compared")
	}
	return previous, current, nil
}

// ComparisonResult holds the result of comparing two scans of one URL.
type ComparisonResult struct {
	URL       string          `json:"url"`
	Previous  ScanMetadata    `json:"previous"`
	Current   ScanMetadata    `json:"current"`
	Direction string          `json:"direction"`
	Delta     int             `json:"delta"`
	Groups    []GroupDelta    `json:"groups"`
	Criteria  []CriterionDiff `json:"criteria"`
}

// ScanMetadata identifies one side of a comparison.
type ScanMetadata struct {
	ID        string        `json:"id"`
	ScannedAt time.Time     `json:"scannedAt"`
	Total     int           `json:"total"`
	Quality   model.Quality `json:"quality"`
	Verified  bool          `json:"verified"`
}

// GroupDelta is the change of one rubric.
type GroupDelta struct {
	Group    scoring.Group `json:"group"`
	Previous int           `json:"previous"`
	Current  int           `json:"current"`
	Delta    int           `json:"delta"`
}

// CriterionDiff is the change of one criterion.
type CriterionDiff struct {
	Group    scoring.Group `json:"group"`
	Name     string        `json:"name"`
	Max      int           `json:"max"`
	Previous int           `json:"previous"`
	Current  int           `json:"current"`
	Delta    int           `json:"delta"`
}

// compareReports compares two scored reports.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		URL:      current.URL,
		Previous: metadataOf(previous),
		Current:  metadataOf(current),
		Delta:    current.Score.Total - previous.Score.Total,
	}
	result.Direction = direction(result.Delta)

	groups := []scoring.Group{scoring.GroupGRAAF, scoring.GroupCRAFT, scoring.GroupTechnical}
	sums := make(map[scoring.Group][2]int, len(groups))
	for _, c := range scoring.Criteria() {
		p, n := c.Value(*previous.Score), c.Value(*current.Score)
		result.Criteria = append(result.Criteria, CriterionDiff{
			Group:    c.Group,
			Name:     c.Name,
			Max:      c.Max,
			Previous: p,
			Current:  n,
			Delta:    n - p,
		})
		s := sums[c.Group]
		sums[c.Group] = [2]int{s[0] + p, s[1] + n}
	}
	for _, g := range groups {
		s := sums[g]
		result.Groups = append(result.Groups, GroupDelta{Group: g, Previous: s[0], Current: s[1], Delta: s[1] - s[0]})
	}
	return result
}

func metadataOf(r *model.ScanReport) ScanMetadata {
	return ScanMetadata{
		ID:        r.ID,
		ScannedAt: r.ScannedAt,
		Total:     r.Score.Total,
		Quality:   r.Quality,
		Verified:  r.Verified(),
	}
}

func direction(delta int) string {
	switch {
	case delta > 0:
		return directionImproved
	case delta < 0:
		return directionWorsened
	default:
		return directionUnchanged
	}
}

// outputComparisonJSON writes result as indented JSON.
func outputComparisonJSON(w io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown writes result as Markdown tables.
func outputComparisonMarkdown(w io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(w)
	md.H1("Score Comparison")
	md.PlainText("")
	md.PlainText(fmt.Sprintf("**URL:** %s", result.URL))
	md.PlainText("")
	md.PlainText(fmt.Sprintf("**Status:** %s (%s)", formatDirection(result.Direction), formatDelta(result.Delta)))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: append([][]string{
			{"Date", result.Previous.ScannedAt.Format("2006-01-02 15:04"), result.Current.ScannedAt.Format("2006-01-02 15:04"), "-"},
			{"Quality", result.Previous.Quality.String(), result.Current.Quality.String(), "-"},
			{"Validation", validationText(result.Previous.Verified), validationText(result.Current.Verified), "-"},
		}, groupRows(result)...),
	})
	md.PlainText("")

	md.H2("Criteria")
	md.PlainText("")
	rows := make([][]string, 0, len(result.Criteria))
	for _, c := range result.Criteria {
		rows = append(rows, []string{
			report.GroupTitle(c.Group),
			report.Label(c.Name),
			strconv.Itoa(c.Previous),
			strconv.Itoa(c.Current),
			formatDelta(c.Delta),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rubric", "Criterion", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	return md.Build()
}

func groupRows(result *ComparisonResult) [][]string {
	rows := make([][]string, 0, len(result.Groups)+1)
	for _, g := range result.Groups {
		rows = append(rows, []string{
			report.GroupTitle(g.Group),
			strconv.Itoa(g.Previous),
			strconv.Itoa(g.Current),
			formatDelta(g.Delta),
		})
	}
	rows = append(rows, []string{
		"**Total**",
		fmt.Sprintf("**%d**", result.Previous.Total),
		fmt.Sprintf("**%d**", result.Current.Total),
		fmt.Sprintf("**%s**", formatDelta(result.Delta)),
	})
	return rows
}

// outputComparisonText writes result as plain text.
func outputComparisonText(w io.Writer, result *ComparisonResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score Comparison: %s\n", result.URL)
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "\nStatus: %s (%s)\n", formatDirection(result.Direction), formatDelta(result.Delta))
	fmt.Fprintf(&sb, "\nPrevious scan: %s  %d/100 %s (%s)\n",
		result.Previous.ScannedAt.Format("2006-01-02 15:04:05"), result.Previous.Total,
		result.Previous.Quality, validationText(result.Previous.Verified))
	fmt.Fprintf(&sb, "Current scan:  %s  %d/100 %s (%s)\n",
		result.Current.ScannedAt.Format("2006-01-02 15:04:05"), result.Current.Total,
		result.Current.Quality, validationText(result.Current.Verified))

	for _, g := range result.Groups {
		fmt.Fprintf(&sb, "\n%s: %d -> %d (%s)\n", report.GroupTitle(g.Group), g.Previous, g.Current, formatDelta(g.Delta))
		for _, c := range result.Criteria {
			if c.Group != g.Group {
				continue
			}
			fmt.Fprintf(&sb, "  %-20s  %2d -> %2d / %-2d  %s\n",
				report.Label(c.Name), c.Previous, c.Current, c.Max, formatDelta(c.Delta))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func validationText(verified bool) string {
	if verified {
		return "verified"
	}
	return report.Unverified
}

// formatDirection formats a score direction for display.
func formatDirection(d string) string {
	switch d {
	case directionImproved:
		return "IMPROVED"
	case directionWorsened:
		return "WORSENED"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
