package render

import "errors"

var (
	// ErrInvalidURL is returned when the URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("render: invalid URL")

	// ErrUnexpectedStatus is returned for a non-2xx response.
	ErrUnexpectedStatus = errors.New("render: unexpected status")

	// ErrNotHTML is returned when the response is not an HTML document.
	ErrNotHTML = errors.New("render: response is not HTML")

	// ErrEmptyBody is returned when the response has no content.
	ErrEmptyBody = errors.New("render: empty response body")

	// ErrNoEndpoint is returned when a browserless renderer has no endpoint.
	ErrNoEndpoint = errors.New("render: browserless endpoint is not set")
)
