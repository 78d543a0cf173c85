package model

import (
	"errors"
	"fmt"
)

// ErrEmptySeries is returned when a provider has no bars for a symbol.
var ErrEmptySeries = errors.New("no data returned")

// ConfigurationError reports invalid pipeline input: a bad date range, an
// unknown currency code, negative shares or price. It is fatal to a pass.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigError builds a ConfigurationError with a formatted reason.
func NewConfigError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ProviderError reports a fetch failure, timeout or empty result for one symbol.
type ProviderError struct {
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %s: %v", e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ComputationError reports malformed input for one symbol, such as bars out
// of date order.
type ComputationError struct {
	Symbol string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation: %s: %v", e.Symbol, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// ErrorKind names the class of err for display and persistence.
func ErrorKind(err error) string {
	var cfgErr *ConfigurationError
	var provErr *ProviderError
	var compErr *ComputationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &provErr):
		return "provider"
	case errors.As(err, &compErr):
		return "computation"
	default:
		return "unknown"
	}
}
