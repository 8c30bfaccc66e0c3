package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a client or exchange error.
type ErrorType int

// Error type constants categorize errors for proper handling at the tool boundary.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates the exchange rejected the credentials or signature.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeServerError indicates an exchange-side error.
	ErrorTypeServerError
	// ErrorTypeConfiguration indicates missing or invalid local configuration.
	// Configuration errors are raised before any network call.
	ErrorTypeConfiguration
	// ErrorTypeValidation indicates malformed caller input, rejected before any network call.
	ErrorTypeValidation
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"SERVER_ERROR",
		"CONFIGURATION",
		"VALIDATION",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when API credentials are missing or incomplete.
	ErrNoCredentials = errors.New("no credentials configured")
)

// ExchangeError represents a structured error from the client or the exchange.
// It provides detailed context for debugging and error handling.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, zero for local errors.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific error code.
	Code string `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// RawBody contains the exchange error payload when available.
	RawBody string `json:"raw_body,omitempty"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for ExchangeError.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[okx] %s (%d/%s): %s", e.Type, e.StatusCode, e.Code, e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("[okx] %s (%d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[okx] %s: %s", e.Type, e.Message)
}

// WithCode returns the error with the exchange-specific error code set.
func (e *ExchangeError) WithCode(code string) *ExchangeError {
	e.Code = code
	return e
}

// WithRawBody returns the error with the raw exchange payload attached.
func (e *ExchangeError) WithRawBody(body string) *ExchangeError {
	e.RawBody = body
	return e
}

// NewExchangeError creates a new ExchangeError with the specified details.
// The timestamp is automatically set to the current time.
func NewExchangeError(errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// IsConfigurationError returns true if the error is a local configuration problem.
// Configuration errors are fatal and never the result of a network exchange.
func IsConfigurationError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeConfiguration
	}
	return errors.Is(err, ErrNoCredentials)
}

// IsValidationError returns true if the error is malformed caller input.
func IsValidationError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeValidation
	}
	return false
}

// IsAuthenticationError returns true if the exchange rejected the credentials.
func IsAuthenticationError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeAuthentication
	}
	return false
}

// IsTransportError returns true for network, timeout, and exchange HTTP failures.
func IsTransportError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		switch e.Type {
		case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRateLimit,
			ErrorTypeAuthentication, ErrorTypeBadRequest, ErrorTypeServerError:
			return true
		}
	}
	return false
}
