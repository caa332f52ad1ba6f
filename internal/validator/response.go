package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nao1215/contentscale/internal/model"
)

// verdict is the model's answer for one category.
type verdict struct {
	Validated *int           `json:"validated"`
	Rejected  []rejectedItem `json:"rejected"`
}

type rejectedItem struct {
	Index  *int   `json:"index"`
	Reason string `json:"reason"`
}

// verdicts is the complete response. Every category is required.
type verdicts struct {
	ExpertQuotes *verdict `json:"expertQuotes"`
	Statistics   *verdict `json:"statistics"`
	Sources      *verdict `json:"sources"`
	CaseStudies  *verdict `json:"caseStudies"`
	FAQs         *verdict `json:"faqs"`
}

func (v verdicts) get(c model.Category) *verdict {
	switch c {
	case model.CategoryExpertQuotes:
		return v.ExpertQuotes
	case model.CategoryStatistics:
		return v.Statistics
	case model.CategorySources:
		return v.Sources
	case model.CategoryCaseStudies:
		return v.CaseStudies
	case model.CategoryFAQs:
		return v.FAQs
	default:
		return nil
	}
}

// stripCodeFence removes a surrounding markdown code fence such as ```json ... ```.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// ParseResponse decodes a validation answer for out and checks it against the
// detected counts. For every category the rejected indexes must be distinct and
// refer to snippets that were shown, and validated plus rejected must equal the
// detected count. When fewer snippets were shown than detected, an answer that
// accounts only for the shown snippets is accepted and the unseen items count
// as validated.
func ParseResponse(text string, out *model.ParserOutput) (*model.ValidatedCounts, error) {
	if out == nil {
		return nil, ErrNoOutput
	}

	body := stripCodeFence(text)
	if body == "" {
		return nil, ErrEmptyCompletion
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()

	var v verdicts
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedResponse)
	}

	result := &model.ValidatedCounts{Rejections: model.NewRejections()}
	for _, c := range model.ValidatedCategories() {
		cv := v.get(c)
		if cv == nil || cv.Validated == nil {
			return nil, fmt.Errorf("%w: missing category %q", ErrMalformedResponse, c)
		}

		validated, rejections, err := conserve(c, *cv, out.Counts.Detected(c), out.Snippets.Len(c))
		if err != nil {
			return nil, err
		}
		result.Set(c, validated)
		result.Rejections[c] = rejections
	}
	return result, nil
}

// conserve checks one category and returns its validated count and rejections.
func conserve(c model.Category, v verdict, detected, shown int) (int, []model.Rejection, error) {
	validated := *v.Validated
	if validated < 0 {
		return 0, nil, fmt.Errorf("%w: %s validated %d is negative", ErrConservation, c, validated)
	}

	rejections := make([]model.Rejection, 0, len(v.Rejected))
	seen := make(map[int]bool, len(v.Rejected))
	for _, r := range v.Rejected {
		if r.Index == nil {
			return 0, nil, fmt.Errorf("%w: %s rejection without index", ErrMalformedResponse, c)
		}
		idx := *r.Index
		if idx < 0 || idx >= shown {
			return 0, nil, fmt.Errorf("%w: %s rejected index %d outside 0..%d", ErrConservation, c, idx, shown-1)
		}
		if seen[idx] {
			return 0, nil, fmt.Errorf("%w: %s rejected index %d twice", ErrConservation, c, idx)
		}
		seen[idx] = true
		rejections = append(rejections, model.Rejection{Index: idx, Reason: strings.TrimSpace(r.Reason)})
	}

	total := validated + len(rejections)
	switch {
	case total == detected:
	case shown < detected && total == shown:
		validated += detected - shown
	default:
		return 0, nil, fmt.Errorf("%w: %s validated %d + rejected %d != detected %d",
			ErrConservation, c, validated, len(rejections), detected)
	}
	return validated, rejections, nil
}
