package validator

import (
	"context"
	"fmt"

	"github.com/nao1215/contentscale/internal/model"
)

// Fallback reasons recorded by Run.
const (
	ReasonDisabled = "validator disabled"
	ReasonNoResult = "validator returned no result"
)

// Validator narrows the detected counts of a parser output.
type Validator interface {
	Validate(ctx context.Context, out *model.ParserOutput) (*model.ValidatedCounts, error)
}

// Fallback returns counts echoed from the parser with fallback set and no rejections.
func Fallback(counts model.Counts, reason string) *model.ValidatedCounts {
	return model.NewFallbackValidation(counts, reason)
}

// Run validates out with v and never fails: a nil validator, an error, an
// empty result or a result whose counts are not conserved gives a fallback
// carrying the reason. The result is never nil.
func Run(ctx context.Context, v Validator, out *model.ParserOutput) *model.ValidatedCounts {
	if out == nil {
		return Fallback(model.Counts{}, ErrNoOutput.Error())
	}
	if v == nil {
		return Fallback(out.Counts, ReasonDisabled)
	}

	res, err := v.Validate(ctx, out)
	if err != nil {
		return Fallback(out.Counts, err.Error())
	}
	if res == nil {
		return Fallback(out.Counts, ReasonNoResult)
	}
	if err := checkConserved(res, out.Counts); err != nil {
		return Fallback(out.Counts, err.Error())
	}
	return res
}

// checkConserved verifies that every category's validated and rejected items
// add up to the detected count.
func checkConserved(res *model.ValidatedCounts, counts model.Counts) error {
	for _, c := range model.ValidatedCategories() {
		detected := counts.Detected(c)
		validated := res.Get(c)
		rejected := len(res.Rejections[c])
		if validated > detected || validated+rejected != detected {
			return fmt.Errorf("%w: %s validated %d + rejected %d != detected %d",
				ErrConservation, c, validated, rejected, detected)
		}
	}
	return nil
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, out *model.ParserOutput) (*model.ValidatedCounts, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, out *model.ParserOutput) (*model.ValidatedCounts, error) {
	return f(ctx, out)
}
