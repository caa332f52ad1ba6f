package validator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/contentscale/internal/model"
)

// Completer sends a single-turn prompt to a language model and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// modelNamer is implemented by completers that know their model name.
type modelNamer interface {
	Model() string
}

// LLMValidator validates parser output with a language model.
type LLMValidator struct {
	completer Completer
	logger    *slog.Logger
}

// LLMOption configures an LLMValidator.
type LLMOption func(*LLMValidator)

// WithLogger sets the logger for validation outcomes.
func WithLogger(logger *slog.Logger) LLMOption {
	return func(v *LLMValidator) {
		v.logger = logger
	}
}

// NewLLMValidator creates a validator that asks completer for verdicts.
func NewLLMValidator(completer Completer, opts ...LLMOption) *LLMValidator {
	v := &LLMValidator{
		completer: completer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate asks the model to review the snippets of out and returns the
// conserved counts. Any failure is returned as an error; Run turns it into a fallback.
func (v *LLMValidator) Validate(ctx context.Context, out *model.ParserOutput) (*model.ValidatedCounts, error) {
	if out == nil || !out.Success {
		return nil, ErrNoOutput
	}

	text, err := v.completer.Complete(ctx, BuildPrompt(out))
	if err != nil {
		v.logger.Warn("validation request failed", "url", out.URL, "error", err)
		return nil, fmt.Errorf("validation request: %w", err)
	}

	result, err := ParseResponse(text, out)
	if err != nil {
		v.logger.Warn("validation response rejected", "url", out.URL, "error", err)
		return nil, err
	}
	if m, ok := v.completer.(modelNamer); ok {
		result.Model = m.Model()
	}

	v.logger.Debug("validation complete",
		"url", out.URL,
		"expert_quotes", fmt.Sprintf("%d/%d", result.ExpertQuotes, out.Counts.ExpertQuotes),
		"statistics", fmt.Sprintf("%d/%d", result.Statistics, out.Counts.Statistics),
		"rejected", result.TotalRejected(),
	)
	return result, nil
}
