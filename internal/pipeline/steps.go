package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/parser"
	"github.com/nao1215/contentscale/internal/render"
	"github.com/nao1215/contentscale/internal/scoring"
	"github.com/nao1215/contentscale/internal/validator"
)

// ReasonSkipped is the fallback reason for hosts configured to skip validation.
const ReasonSkipped = "validation skipped for host"

// RenderStep renders the report URL.
type RenderStep struct {
	renderer render.Renderer
	logger   *slog.Logger
}

// NewRenderStep creates a RenderStep.
func NewRenderStep(renderer render.Renderer, logger *slog.Logger) *RenderStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderStep{renderer: renderer, logger: logger}
}

// Name returns model.StageRender.
func (s *RenderStep) Name() string {
	return model.StageRender
}

// Do renders the page and stores it on the report.
func (s *RenderStep) Do(ctx context.Context, report *model.ScanReport) error {
	page, err := s.renderer.Render(ctx, report.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	report.Page = page
	s.logger.Debug("page rendered",
		"url", report.URL,
		"renderer", page.Renderer,
		"size", page.Size,
		"from_cache", page.FromCache,
	)
	return nil
}

// ParseStep parses the rendered page.
type ParseStep struct {
	parser *parser.Parser
}

// NewParseStep creates a ParseStep. A nil parser uses the default configuration.
func NewParseStep(p *parser.Parser) *ParseStep {
	if p == nil {
		p = parser.New()
	}
	return &ParseStep{parser: p}
}

// Name returns model.StageParse.
func (s *ParseStep) Name() string {
	return model.StageParse
}

// Do parses the page HTML against its final URL. An unsuccessful parse is
// stored on the report and returned as ErrParseFailed.
func (s *ParseStep) Do(_ context.Context, report *model.ScanReport) error {
	if report.Page == nil {
		return fmt.Errorf("%w: no rendered page", ErrMissingInput)
	}
	out := s.parser.Parse(report.Page.HTML, report.Page.BaseURL())
	report.Parse = out
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrParseFailed, out.Error)
	}
	return nil
}

// ValidateStep narrows the parser counts with a Validator. It never fails.
type ValidateStep struct {
	validator validator.Validator
	skip      func(host string) bool
}

// NewValidateStep creates a ValidateStep. A nil validator always falls back.
// skip may be nil.
func NewValidateStep(v validator.Validator, skip func(host string) bool) *ValidateStep {
	return &ValidateStep{validator: v, skip: skip}
}

// Name returns model.StageValidate.
func (s *ValidateStep) Name() string {
	return model.StageValidate
}

// Do stores the validated counts, or the fallback, on the report.
func (s *ValidateStep) Do(ctx context.Context, report *model.ScanReport) error {
	if report.Parse == nil {
		return fmt.Errorf("%w: no parser output", ErrMissingInput)
	}
	if s.skip != nil && s.skip(report.Host) {
		report.Validation = validator.Fallback(report.Parse.Counts, ReasonSkipped)
		return nil
	}
	report.Validation = validator.Run(ctx, s.validator, report.Parse)
	return nil
}

// ScoreStep scores the report.
type ScoreStep struct{}

// NewScoreStep creates a ScoreStep.
func NewScoreStep() *ScoreStep {
	return &ScoreStep{}
}

// Name returns model.StageScore.
func (s *ScoreStep) Name() string {
	return model.StageScore
}

// Do sets the score and its quality label.
func (s *ScoreStep) Do(_ context.Context, report *model.ScanReport) error {
	if report.Parse == nil {
		return fmt.Errorf("%w: no parser output", ErrMissingInput)
	}
	score := scoring.Score(report.Validation, report.Parse.Counts)
	report.Score = &score
	report.Quality = model.QualityFor(score.Total)
	return nil
}

// DefaultConfig holds the optional collaborators of DefaultPipeline.
type DefaultConfig struct {
	// Parser parses rendered pages. Nil uses parser.New().
	Parser *parser.Parser

	// SkipValidation reports hosts that are scored on parser counts only.
	SkipValidation func(host string) bool

	// Logger is shared by the pipeline and its steps.
	Logger *slog.Logger
}

// DefaultPipeline returns the render, parse, validate and score pipeline.
// v may be nil, in which case every scan is scored on parser counts.
func DefaultPipeline(renderer render.Renderer, v validator.Validator, cfg DefaultConfig, opts ...Option) *Pipeline {
	if cfg.Logger != nil {
		opts = append([]Option{WithLogger(cfg.Logger)}, opts...)
	}
	p := New(opts...)
	p.AddSteps(
		NewRenderStep(renderer, p.logger),
		NewParseStep(cfg.Parser),
		NewValidateStep(v, cfg.SkipValidation),
		NewScoreStep(),
	)
	return p
}
