package database

import "errors"

var (
	// ErrNotFound is returned by Open when the database does not exist and
	// creation was not requested.
	ErrNotFound = errors.New("database: not found")

	// ErrMissingID is returned when saving a report without an ID.
	ErrMissingID = errors.New("database: report has no ID")
)
