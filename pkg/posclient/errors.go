package posclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	// Message is the "error" (or "message") field of a JSON body, or the body text.
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("posclient: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Message
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
