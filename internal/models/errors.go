package models

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned for lookups on unknown product IDs.
var ErrProductNotFound = errors.New("product not found")

// FieldError reports a missing or invalid required field. The
// operation is aborted with no partial mutation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// RuleError reports a violated profit or discount rule. Rule names the
// rule that failed; Reason is the human-readable explanation.
type RuleError struct {
	Rule   string
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

// RequestError reports a malformed bulk update request, surfaced
// before any record is touched.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return e.Reason
}
