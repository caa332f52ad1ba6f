package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/contentscale/internal/model"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/nao1215/contentscale/internal/pipeline"

// Step is one stage of a scan.
type Step interface {
	// Do runs the step. It returns an error only when the scan cannot continue.
	Do(ctx context.Context, report *model.ScanReport) error

	// Name is the stage recorded in performedSteps and failureStage.
	Name() string
}

// Pipeline runs steps in order and stops at the first failure.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracerProvider sets the provider spans are created from.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.tracer == nil {
		p.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against report. Cancellation is checked before each
// step. The first failing step is recorded as the report's failure stage and
// its error is returned. Each step runs in its own span under a "scan" span.
func (p *Pipeline) Execute(ctx context.Context, report *model.ScanReport) error {
	start := time.Now()
	defer func() {
		report.DurationMillis = time.Since(start).Milliseconds()
	}()

	ctx, scanSpan := p.tracer.Start(ctx, "scan", trace.WithAttributes(
		attribute.String("scan.id", report.ID),
		attribute.String("scan.url", report.URL),
	))
	defer scanSpan.End()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("scan cancelled", "step", step.Name(), "url", report.URL, "reason", err)
			report.TimedOut = errors.Is(err, context.DeadlineExceeded)
			report.Fail(step.Name(), err)
			scanSpan.SetStatus(codes.Error, err.Error())
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "url", report.URL)

		if err := p.run(ctx, step, report); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "url", report.URL, "error", err)
			if errors.Is(err, context.DeadlineExceeded) {
				report.TimedOut = true
			}
			report.Fail(step.Name(), err)
			scanSpan.RecordError(err)
			scanSpan.SetStatus(codes.Error, err.Error())
			return err
		}
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	if report.Score != nil {
		scanSpan.SetAttributes(
			attribute.Int("score.total", report.Score.Total),
			attribute.Bool("score.verified", report.Verified()),
		)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, step Step, report *model.ScanReport) error {
	ctx, span := p.tracer.Start(ctx, "step."+step.Name())
	defer span.End()

	if err := step.Do(ctx, report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
