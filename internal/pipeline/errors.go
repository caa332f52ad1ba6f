package pipeline

import "errors"

var (
	// ErrRenderFailed is returned when the page could not be rendered.
	ErrRenderFailed = errors.New("pipeline: render failed")

	// ErrParseFailed is returned when the parser produced no usable output.
	ErrParseFailed = errors.New("pipeline: parse failed")

	// ErrMissingInput is returned when a step runs before the step it depends on.
	ErrMissingInput = errors.New("pipeline: missing input from an earlier step")
)
