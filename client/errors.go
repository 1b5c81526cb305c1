package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is a structured error response from the store
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether the error is a 404, e.g. an unresolvable
// series identifier
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// parseAPIError attempts to decode a JSON error body, falling back to raw text
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
