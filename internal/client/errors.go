package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"winetasting/internal/models"
)

// APIError is returned when the server answers with a non-2xx status.
// Detail is the server's message, suitable for showing to the organizer verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

func newAPIError(status int, body []byte) *APIError {
	var eb models.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return &APIError{StatusCode: status, Detail: eb.Detail}
	}

	// Request validation failures come back as plain text.
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return &APIError{StatusCode: status, Detail: text}
	}

	return &APIError{StatusCode: status, Detail: http.StatusText(status)}
}

// IsAPIError reports whether err came from a server rejection rather than the transport.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
