package error

import "fmt"

// Statistics domain errors.
var (
	// ErrInvalidStatsWindow is returned when the window is not weekly, monthly or yearly.
	ErrInvalidStatsWindow = fmt.Errorf("%w: window must be: weekly, monthly, or yearly", ErrValidation)
)

// StatisticsErrorCode defines error codes for statistics errors.
// Format: STS-XXYYYY where XX is category and YYYY is specific error.
type StatisticsErrorCode string

const (
	ErrCodeInvalidStatsWindow StatisticsErrorCode = "STS-010001"
	ErrCodeStatsPersistence   StatisticsErrorCode = "STS-990001"
)

// StatisticsError represents a statistics error with code and message.
type StatisticsError struct {
	Code    StatisticsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StatisticsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *StatisticsError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the API error code.
func (e *StatisticsError) ErrorCode() string {
	return string(e.Code)
}

// NewStatisticsError creates a new StatisticsError with the given code and message.
func NewStatisticsError(code StatisticsErrorCode, message string, err error) *StatisticsError {
	return &StatisticsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
