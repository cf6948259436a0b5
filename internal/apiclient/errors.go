package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a failure to get any response from the API: connection
// refused, timeout, cancelled context, truncated body.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether err is an APIError with status 401
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is an APIError with status 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsTransport reports whether err is or wraps a TransportError
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// MessageOf returns the server-provided message carried by err, if any
func MessageOf(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// extractMessage pulls a human message out of an error body shaped like
// {"data":{"message":...}} or {"message":...}.
func extractMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Data) > 0 && payload.Data[0] == '{' {
		var inner struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Data, &inner); err == nil && inner.Message != "" {
			return inner.Message
		}
	}

	var msg string
	if err := json.Unmarshal(payload.Message, &msg); err == nil {
		return msg
	}
	return ""
}
