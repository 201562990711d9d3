package services

import "errors"

// Service errors
var (
	// ErrNoReport is returned when an export is requested before any report
	// was generated.
	ErrNoReport = errors.New("no report generated yet")

	// ErrMissingInput is returned when one of the two uploads is absent.
	ErrMissingInput = errors.New("both the history and the current spreadsheet are required")
)
