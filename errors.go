package clearurls

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is returned when a pattern in the rule data is not a
	// valid regular expression.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrMissingURLPattern is returned for a provider record without a
	// urlPattern.
	ErrMissingURLPattern = errors.New("missing urlPattern")

	// ErrMalformedRules is returned when the rule document does not have the
	// expected shape.
	ErrMalformedRules = errors.New("malformed rules")

	// ErrNoCaptureGroup is returned when a redirection pattern has no capture
	// group, or matched without its first group participating.
	ErrNoCaptureGroup = errors.New("redirection has no capture group")

	// ErrNoConvergence is returned when cleaning a URL did not reach a fixed
	// point within the sweep limit.
	ErrNoConvergence = errors.New("url did not converge")
)

// PatternError describes a pattern that could not be compiled or applied.
type PatternError struct {
	Provider string
	Field    string
	Source   string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("provider %v: %v %q: %v", e.Provider, e.Field, e.Source, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
