package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a 2xx body does not match the expected wire shape.
var ErrMalformedResponse = errors.New("malformed response")

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func newError(status int, body []byte) *Error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &Error{StatusCode: status, Message: strings.TrimSpace(payload.Error)}
	}
	return &Error{StatusCode: status, Message: fmt.Sprintf("HTTP %d", status)}
}

// StatusCode reports the HTTP status carried by err, or 0 when err is not a backend response error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
