package archive

import "errors"

var (
	// ErrNoBucket is returned when the archive has no bucket configured.
	ErrNoBucket = errors.New("archive bucket is required")

	// ErrNoRegion is returned when neither a region nor an endpoint is configured.
	ErrNoRegion = errors.New("archive region is required")

	// ErrNoReport is returned when Archive is called with a nil report.
	ErrNoReport = errors.New("no report to archive")

	// ErrIncompleteCredentials is returned when only one half of a static key pair is set.
	ErrIncompleteCredentials = errors.New("archive credentials need both access key id and secret access key")
)
