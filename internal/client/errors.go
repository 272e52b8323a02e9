package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spellbook-cards/spellbook-go/internal/errs"
)

// APIError is a non-2xx response from the Spellbook API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the server-provided error message when one was decodable.
	Detail string
}

// Error returns a human-readable description of the failure.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("spellbook api: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is maps HTTP status classes onto the shared sentinels so callers can use
// errors.Is(err, errs.ErrUnauthorized) without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case errs.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case errs.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case errs.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case errs.ErrAlreadyExists:
		return e.StatusCode == http.StatusConflict
	case errs.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// newAPIError builds an APIError from a response body, extracting the
// FastAPI-style {"detail": ...} message when present.
func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, StatusCode: status}

	var wrapper struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &wrapper) == nil && len(wrapper.Detail) > 0 {
		var s string
		if json.Unmarshal(wrapper.Detail, &s) == nil {
			e.Detail = s
		} else {
			e.Detail = string(wrapper.Detail)
		}
		return e
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && len(trimmed) <= 256 {
		e.Detail = trimmed
	}
	return e
}
