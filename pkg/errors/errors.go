package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents page fetch failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting by the deals page
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeStorage represents persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// DealError is the error type returned across the extraction and refresh path
type DealError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *DealError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *DealError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a later attempt could succeed.
// Nothing in the refresh path retries on its own; callers decide.
func (e *DealError) IsRetryable() bool {
	return e.Type == ErrorTypeNetwork
}

// New creates a new DealError
func New(errType ErrorType, source, message string, err error) *DealError {
	return &DealError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *DealError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *DealError {
	return New(ErrorTypeRateLimit, source, fmt.Sprintf("rate limited for %v", duration), nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *DealError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewStorage creates a new storage error
func NewStorage(source, message string, err error) *DealError {
	return New(ErrorTypeStorage, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *DealError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *DealError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *DealError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether any DealError in err's chain has the given type
func IsType(err error, errType ErrorType) bool {
	var de *DealError
	if stderrors.As(err, &de) {
		return de.Type == errType
	}
	return false
}
