// Package errors provides the error taxonomy shared by the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors
var (
	ErrInvalidTicker         = errors.New("invalid ticker")
	ErrTickerNotFound        = errors.New("ticker not found")
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrSearchUnavailable     = errors.New("search unavailable")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrConfigInvalid         = errors.New("invalid configuration")
)

// ValidationError represents a rejected user input.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%q): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidTicker for ticker fields.
func (e *ValidationError) Unwrap() error {
	if e.Field == "ticker" {
		return ErrInvalidTicker
	}
	return nil
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ProviderError is a failure reported by an external provider. Kind is one of
// the sentinels above; Err is the underlying cause.
type ProviderError struct {
	Provider string
	Op       string
	Symbol   string
	Kind     error
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Provider, e.Op)
	if e.Symbol != "" {
		msg += " " + e.Symbol
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, op, symbol string, kind, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Symbol:   symbol,
		Kind:     kind,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// HTTPStatus maps a pipeline error to the status code returned by the API.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidTicker):
		return http.StatusBadRequest
	case errors.Is(err, ErrTickerNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrProviderUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrGenerationUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message shown inline on the page for err.
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "Please enter a valid stock ticker (for example AAPL or BRK.B). " + verr.Message + "."
	case errors.Is(err, ErrTickerNotFound):
		return "No market data was found for that ticker. Please verify the symbol."
	case errors.Is(err, ErrProviderUnavailable):
		return "The market data provider is unavailable right now. Please try again later."
	case errors.Is(err, ErrGenerationUnavailable):
		return "Unable to generate AI insights at this moment."
	default:
		return "Something went wrong while analyzing this ticker."
	}
}
