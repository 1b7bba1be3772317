package analysis

import "errors"

var ErrNotFound = errors.New("not found")

// Error codes recorded for failed AI attempts. Connectivity, timeout and
// protocol codes come from the inference package; these cover the analysis
// layer itself.
const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)
