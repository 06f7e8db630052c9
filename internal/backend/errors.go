package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response reported by the backend
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Temporary reports whether retrying the same request may succeed
func (e *APIError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// newAPIError builds an APIError taking the message from the body's "error"
// or "message" field, falling back to "HTTP error! status: {code}"
func newAPIError(status int, body []byte) *APIError {
	msg := fmt.Sprintf("HTTP error! status: %d", status)
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, key := range []string{"error", "message", "detail"} {
			if s, ok := envelope[key].(string); ok && strings.TrimSpace(s) != "" {
				msg = strings.TrimSpace(s)
				break
			}
		}
	}
	return &APIError{Status: status, Message: msg, Body: body}
}

// TransportError wraps a failure to reach the backend at all
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Retryable reports whether err is a transport failure or a temporary
// backend error
func Retryable(err error) bool {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}
