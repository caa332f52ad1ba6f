package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/contentscale/internal/model"
)

// DefaultConcurrency is the default number of concurrent scans.
const DefaultConcurrency = 10

// BatchProcessor scans many URLs concurrently, each with a fresh pipeline.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	scanTimeout     time.Duration
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithScanTimeout bounds each scan. Zero means no per-scan deadline.
func WithScanTimeout(d time.Duration) BatchOption {
	return func(b *BatchProcessor) {
		if d > 0 {
			b.scanTimeout = d
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called once per URL.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch scans urls and returns one report per URL in input order.
// A failed scan is recorded on its report and does not stop the others.
// The error is non-nil only when ctx ends before every scan started; reports
// of URLs that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.ScanReport, error) {
	results := make([]*model.ScanReport, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(report *model.ScanReport, index int) {
		results[index] = report
	})
	return results, err
}

// ProcessBatchWithCallback scans urls and calls callback as each scan finishes.
// callback is called from worker goroutines and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(report *model.ScanReport, index int),
) error {
	bp.logger.Info("starting batch", "total_urls", len(urls), "concurrency", bp.concurrency)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, rawURL := range urls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			callback(bp.scan(gctx, rawURL), i)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	bp.logger.Info("batch complete", "total_urls", len(urls), "elapsed", time.Since(start))
	return err
}

func (bp *BatchProcessor) scan(ctx context.Context, rawURL string) *model.ScanReport {
	if bp.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bp.scanTimeout)
		defer cancel()
	}

	report := model.NewScanReport(rawURL)
	if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
		bp.logger.Warn("scan failed", "url", rawURL, "stage", report.FailureStage, "error", err)
		return report
	}
	bp.logger.Info("scan completed", "url", rawURL, "total", report.Total(), "verified", report.Verified())
	return report
}
