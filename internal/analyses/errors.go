package analyses

import "errors"

// MaxAnalysesPerUser caps how many records a single user keeps; older ones are evicted.
const MaxAnalysesPerUser = 20

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	// Callers must not be able to tell the two apart.
	ErrNotFound     = errors.New("not found")
	ErrUserRequired = errors.New("userID is required")

	errDuplicateID = errors.New("duplicate analysis id")
)

const (
	ErrorCodeValidation     = "validation_error"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeAnalysisFailed = "analysis_failed"
	ErrorCodeInternal       = "internal_error"
)
