package validator

import "errors"

var (
	// ErrNoAPIKey is returned when the completion client has no API key.
	ErrNoAPIKey = errors.New("validator: API key is not set")

	// ErrEmptyCompletion is returned when the model answered without text.
	ErrEmptyCompletion = errors.New("validator: empty completion")

	// ErrMalformedResponse is returned when the model's answer is not the expected JSON.
	ErrMalformedResponse = errors.New("validator: malformed response")

	// ErrConservation is returned when validated and rejected items do not add up
	// to the detected count.
	ErrConservation = errors.New("validator: counts not conserved")

	// ErrStatus is returned for a non-success HTTP status from the completion API.
	ErrStatus = errors.New("validator: unexpected status")

	// ErrNoOutput is returned when there is no successful parser output to validate.
	ErrNoOutput = errors.New("validator: no parser output")
)
