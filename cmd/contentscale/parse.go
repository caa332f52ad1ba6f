package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/config"
	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/parser"
	"github.com/nao1215/contentscale/internal/pipeline"
)

// rendererFile names the source of pages read by the parse command.
const rendererFile = "file"

// NewParseCmd creates the parse command.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Score a saved HTML document without rendering it",
		Long: `Parse scores an HTML document read from a file, or from stdin when FILE
is "-". The --url flag gives the page address used to classify links as
internal or external.

Nothing is saved to the score database unless --save is given.

Examples:
  contentscale parse --url https://example.com/guide page.html
  curl -s https://example.com/guide | contentscale parse --url https://example.com/guide -`,
		Args: cobra.ExactArgs(1),
		RunE: runParseCmd,
	}

	cmd.Flags().String("url", "", "Address of the page (required)")
	cmd.Flags().Bool("no-validate", false,
		"Score on parser counts only (scores are labeled unverified)")
	cmd.Flags().String("model", "", "Anthropic model used for validation")
	cmd.Flags().BoolP("json", "j", false, "Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path")
	cmd.Flags().Bool("save", false, "Save the result to the score database")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// runParseCmd executes the parse command.
func runParseCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	html, err := readDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	v, err := buildValidator(cfg, logger)
	if err != nil {
		return err
	}

	pageURL := flagString(cmd, "url")
	page := &model.Page{
		URL:         pageURL,
		FinalURL:    pageURL,
		StatusCode:  200,
		ContentType: "text/html",
		HTML:        html,
		Renderer:    rendererFile,
		FetchedAt:   time.Now().UTC(),
	}
	page.TruncateHTML()
	page.ComputeHash()

	r := model.NewScanReport(pageURL)
	r.Page = page
	r.PerformedSteps = append(r.PerformedSteps, model.StageRender)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewParseStep(parser.New(parser.WithLogger(logger))),
		pipeline.NewValidateStep(v, cfg.SiteConfigs.SkipValidation),
		pipeline.NewScoreStep(),
	)
	scanErr := p.Execute(ctx, r)

	out, closeOut, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // Best effort close of the report file

	if _, err := newReportWriter(cfg, out).Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if flagBool(cmd, "save") {
		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveScanReport(ctx, r); err != nil {
			return fmt.Errorf("failed to save scan report: %w", err)
		}
	}

	if scanErr != nil {
		return fmt.Errorf("scan failed at %s: %w", r.FailureStage, scanErr)
	}
	return nil
}

// readDocument reads path, or stdin when path is "-".
func readDocument(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, model.MaxPageSize+1))
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // User-provided document path is intentional
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}
