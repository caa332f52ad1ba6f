package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/contentscale/internal/archive"
	"github.com/nao1215/contentscale/internal/config"
	"github.com/nao1215/contentscale/internal/database"
	"github.com/nao1215/contentscale/internal/metrics"
	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/parser"
	"github.com/nao1215/contentscale/internal/pipeline"
	"github.com/nao1215/contentscale/internal/render"
	"github.com/nao1215/contentscale/internal/report"
	"github.com/nao1215/contentscale/internal/validator"
)

// errScansFailed is returned when at least one scan produced no score.
var errScansFailed = errors.New("some scans failed")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Render, parse, validate and score web pages",
		Long: `Scan scores one or more web pages for SEO content quality.

Each URL is rendered, parsed for credibility signals and technical SEO
elements, validated by an LLM when ANTHROPIC_API_KEY is set, and scored.
Reports are printed and results are saved to the score database.

A page that cannot be rendered or parsed is reported as a failed scan,
never as a low score. The command exits with an error if any scan failed.

Examples:
  # Scan a single page
  contentscale scan https://example.com/guide

  # Scan a list of URLs, 5 at a time, as Markdown
  contentscale scan --list urls.txt --batch-size 5 --markdown -o report.md

  # Render JavaScript-heavy pages with headless Chrome
  contentscale scan --renderer browserless --browserless-endpoint https://chrome.example.com https://example.com/app

  # Score on parser counts only
  contentscale scan --no-validate https://example.com/guide`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}
	addScanFlags(cmd)
	return cmd
}

// addScanFlags registers the flags shared by scan and watch.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line")

	// Rendering
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for rendering one page")
	cmd.Flags().Duration("scan-timeout", config.DefaultScanTimeout,
		"Timeout for one whole scan including validation")
	cmd.Flags().String("renderer", config.DefaultRenderer,
		"Renderer to use: http or browserless")
	cmd.Flags().String("browserless-endpoint", "",
		"Browserless base URL (token via BROWSERLESS_TOKEN)")
	cmd.Flags().String("user-agent", "",
		"User-Agent for page requests")
	cmd.Flags().Int("render-concurrency", config.DefaultRenderConcurrency,
		"Maximum number of pages rendered at once")

	// Batch scanning
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Validation
	cmd.Flags().Bool("no-validate", false,
		"Score on parser counts only (scores are labeled unverified)")
	cmd.Flags().String("model", "",
		"Anthropic model used for validation")

	// Reports and side outputs
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the score database")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics to this textfile after the run")
	cmd.Flags().String("trace-file", "",
		"Write OpenTelemetry spans as JSON to this file")
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out, closeOut, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // Best effort close of the report file

	s, err := newScanner(ctx, cfg, scannerIO{report: out, status: cmd.ErrOrStderr()}, flagString(cmd, "trace-file"), logger)
	if err != nil {
		return err
	}
	defer s.close()

	reports, err := s.run(ctx, cfg.Targets)
	if err != nil {
		return err
	}
	return scanError(reports)
}

// scanError returns errScansFailed with a count when any report failed.
func scanError(reports []*model.ScanReport) error {
	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", errScansFailed, failed, len(reports))
}

// scannerIO holds the destinations of a scanner.
type scannerIO struct {
	report io.Writer
	status io.Writer
}

// scanner owns every collaborator of a scan run: the renderer stack, the
// validator, the pipeline, and the stores that receive finished reports.
type scanner struct {
	cfg       *config.Config
	logger    *slog.Logger
	io        scannerIO
	writer    report.Writer
	processor *pipeline.BatchProcessor
	store     *database.ScoreDB
	archiver  *archive.S3Archiver
	recorder  *metrics.Recorder
	closers   []func() error

	mu sync.Mutex
}

// newScanner wires the collaborators described by cfg.
func newScanner(ctx context.Context, cfg *config.Config, sio scannerIO, traceFile string, logger *slog.Logger) (*scanner, error) {
	s := &scanner{
		cfg:      cfg,
		logger:   logger,
		io:       sio,
		writer:   newReportWriter(cfg, sio.report),
		recorder: metrics.NewRecorder(),
	}

	renderer, closeRenderer, err := buildRenderer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, closeRenderer)

	v, err := buildValidator(cfg, logger)
	if err != nil {
		s.close()
		return nil, err
	}

	tp, shutdownTracing, err := setupTracing(ctx, traceFile)
	if err != nil {
		s.close()
		return nil, err
	}
	s.closers = append(s.closers, func() error {
		return shutdownTracing(context.Background())
	})

	s.processor = newBatchProcessor(cfg, renderer, v, tp, logger)

	if cfg.SaveToDB {
		s.store, err = openStore(ctx, cfg)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, s.store.Close)
		logger.Debug("database opened", "location", s.store.Location())
	}

	if cfg.Archive.Bucket != "" {
		s.archiver, err = archive.NewS3Archiver(ctx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Prefix:          cfg.Archive.Prefix,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			UsePathStyle:    cfg.Archive.UsePathStyle,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		}, getVersion())
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to set up report archive: %w", err)
		}
	}

	return s, nil
}

// newBatchProcessor builds the processor that runs one DefaultPipeline per URL.
func newBatchProcessor(cfg *config.Config, renderer render.Renderer, v validator.Validator, tp trace.TracerProvider, logger *slog.Logger) *pipeline.BatchProcessor {
	p := parser.New(parser.WithLogger(logger))
	skip := cfg.SiteConfigs.SkipValidation

	return pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(renderer, v, pipeline.DefaultConfig{
				Parser:         p,
				SkipValidation: skip,
				Logger:         logger,
			}, pipeline.WithTracerProvider(tp))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithScanTimeout(cfg.ScanTimeout),
		pipeline.WithBatchLogger(logger),
	)
}

// buildRenderer assembles the renderer stack: the base renderer, an
// optional redis cache, and the bounded pool on top.
func buildRenderer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (render.Renderer, func() error, error) {
	closeFn := func() error { return nil }
	sites := siteLookup(cfg.SiteConfigs)

	var base render.Renderer
	switch cfg.Renderer {
	case config.RendererBrowserless:
		b, err := render.NewBrowserlessRenderer(cfg.BrowserlessEndpoint,
			render.WithBrowserlessToken(cfg.BrowserlessToken),
			render.WithBrowserlessTimeout(cfg.Timeout),
			render.WithBrowserlessSites(sites),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create browserless renderer: %w", err)
		}
		base = b
	default:
		base = render.NewHTTPRenderer(
			render.WithTimeout(cfg.Timeout),
			render.WithMaxBodySize(cfg.MaxBodySize),
			render.WithUserAgent(cfg.UserAgent),
			render.WithSites(sites),
		)
	}

	if cfg.CacheAddr != "" {
		store, err := render.NewRedisStore(ctx, cfg.CacheAddr, cfg.CachePassword, cfg.CacheDB)
		if err != nil {
			logger.Warn("render cache unavailable, continuing without it", "addr", cfg.CacheAddr, "error", err)
		} else {
			base = render.NewCachedRenderer(base, store,
				render.WithCacheTTL(cfg.CacheTTL),
				render.WithCacheLogger(logger),
			)
			closeFn = store.Close
		}
	}

	return render.NewPool(base, cfg.RenderConcurrency), closeFn, nil
}

// siteLookup exposes per-host settings of the configuration file to renderers.
func siteLookup(f *config.File) render.SiteLookup {
	if f == nil {
		return nil
	}
	return func(host string) (render.SiteOptions, bool) {
		if !f.HasSiteSettings(host) {
			return render.SiteOptions{}, false
		}
		sc := f.GetSiteConfig(host)
		return render.SiteOptions{
			Headers:   sc.Headers,
			Cookie:    sc.Cookie,
			UserAgent: sc.UserAgent,
		}, true
	}
}

// buildValidator returns the LLM validator, or nil when validation is off.
// A nil validator makes every scan fall back to parser counts.
func buildValidator(cfg *config.Config, logger *slog.Logger) (validator.Validator, error) {
	if !cfg.ValidationEnabled() {
		if !cfg.NoValidate {
			logger.Warn("validation disabled: no API key", "env", config.EnvAPIKey)
		}
		return nil, nil
	}

	opts := []validator.AnthropicOption{
		validator.WithModel(cfg.Model),
		validator.WithMaxAttempts(cfg.ValidatorMaxAttempts),
		validator.WithRequestTimeout(cfg.ValidatorTimeout),
	}
	if cfg.ValidatorBaseURL != "" {
		opts = append(opts, validator.WithBaseURL(cfg.ValidatorBaseURL))
	}

	client, err := validator.NewAnthropicClient(cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}
	return validator.NewLLMValidator(client, validator.WithLogger(logger)), nil
}

// run scans targets and hands each finished report to handle. Reports are
// returned in completion order.
func (s *scanner) run(ctx context.Context, targets []string) ([]*model.ScanReport, error) {
	fmt.Fprintf(s.io.status, "Scanning %d URL(s) (concurrency: %d)...\n", len(targets), s.cfg.BatchSize)
	start := time.Now()

	reports := make([]*model.ScanReport, 0, len(targets))
	err := s.processor.ProcessBatchWithCallback(ctx, targets, func(r *model.ScanReport, index int) {
		s.mu.Lock()
		defer s.mu.Unlock()
		reports = append(reports, r)
		s.handle(ctx, r, index, len(targets))
	})

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}
	fmt.Fprintf(s.io.status, "Scanned %d URL(s) in %s: %d scored, %d failed\n",
		len(reports), time.Since(start).Round(time.Millisecond), len(reports)-failed, failed)

	if s.cfg.MetricsFile != "" {
		if merr := s.recorder.WriteTextfile(s.cfg.MetricsFile); merr != nil {
			s.logger.Error("failed to write metrics", "path", s.cfg.MetricsFile, "error", merr)
		}
	}

	if err != nil {
		return reports, fmt.Errorf("scan interrupted: %w", err)
	}
	return reports, nil
}

// handle outputs, saves, archives and records one finished report.
// The caller holds s.mu.
func (s *scanner) handle(ctx context.Context, r *model.ScanReport, index, total int) {
	status := "scored"
	if r.Failed() {
		status = "failed at " + r.FailureStage
	}
	fmt.Fprintf(s.io.status, "[%d/%d] %s: %s\n", index+1, total, r.URL, status)

	if _, err := s.writer.Write(r); err != nil {
		s.logger.Error("report failed", "url", r.URL, "error", err)
	}

	s.recorder.Observe(r)

	// Saving and archiving must not be cut short by an interrupt that
	// arrived after the scan finished.
	storeCtx := context.WithoutCancel(ctx)

	if s.store != nil {
		if err := s.store.SaveScanReport(storeCtx, r); err != nil {
			s.logger.Error("failed to save scan report", "url", r.URL, "error", err)
		} else {
			s.logger.Debug("scan report saved", "url", r.URL, "id", r.ID)
		}
	}

	if s.archiver != nil {
		key, err := s.archiver.Archive(storeCtx, r)
		if err != nil {
			s.logger.Error("failed to archive scan report", "url", r.URL, "error", err)
		} else {
			s.logger.Debug("scan report archived", "bucket", s.archiver.Bucket(), "key", key)
		}
	}
}

// close releases every collaborator in reverse order of creation.
func (s *scanner) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("cleanup failed", "error", err)
		}
	}
	s.closers = nil
}
