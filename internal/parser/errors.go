package parser

import "errors"

var (
	// ErrEmptyDocument is recorded on the output when the HTML is empty or whitespace.
	ErrEmptyDocument = errors.New("empty document")

	// ErrUnparsable is recorded on the output when the markup could not be processed.
	ErrUnparsable = errors.New("unparsable document")
)
