package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wricardo/stonescissorspaper/game/service"
)

// APIError is a non-2xx response from the game API
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Status)
}

// Is lets errors.Is match service.ErrSessionNotFound for unknown sessions
func (e *APIError) Is(target error) bool {
	return target == service.ErrSessionNotFound && e.sessionNotFound()
}

// sessionNotFound reports a 404 whose message names an unknown session
func (e *APIError) sessionNotFound() bool {
	if e.StatusCode != http.StatusNotFound {
		return false
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "session") && strings.Contains(msg, "not found")
}

// IsSessionNotFound reports whether err means the server no longer knows
// the session
func IsSessionNotFound(err error) bool {
	return errors.Is(err, service.ErrSessionNotFound)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// an API error
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(resp.Body)
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    serverMessage(body),
		Body:       body,
	}
}
