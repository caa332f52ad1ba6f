package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no URL is given on the command line, in a
	// list file or in the watch section of the configuration file.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidTimeout is returned when the render or scan timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidRenderConcurrency is returned when the render pool size is not positive.
	ErrInvalidRenderConcurrency = errors.New("invalid render concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownRenderer is returned for a renderer other than http or browserless.
	ErrUnknownRenderer = errors.New("unknown renderer: must be http or browserless")

	// ErrNoBrowserlessEndpoint is returned when the browserless renderer has no endpoint.
	ErrNoBrowserlessEndpoint = errors.New("browserless renderer requires render.browserless.endpoint")

	// ErrInvalidCacheTTL is returned when the render cache TTL is not positive.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be positive")
)
