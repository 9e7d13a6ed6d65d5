package engine

import "errors"

// Precondition violations. A silently coerced anchor or horizon would
// corrupt the forecast, so these fail fast instead of clamping.
var (
	ErrInvalidDueDay  = errors.New("due day must be between 1 and 31")
	ErrInvalidHorizon = errors.New("projection horizon must be positive")
	ErrInvalidDate    = errors.New("invalid date")
)
