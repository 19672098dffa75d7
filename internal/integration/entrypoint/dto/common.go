// Package dto defines data transfer objects for API requests and responses.
package dto

import "time"

// DateLayout is the short date format accepted for transaction dates.
const DateLayout = "2006-01-02"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ParseDate accepts either a short date or an RFC3339 timestamp.
// Short dates are interpreted as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(DateLayout, value)
}
