package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed upstream body is kept in memory.
const maxErrorBody = 64 << 10

// UpstreamError is a non-2xx answer from the backend.
type UpstreamError struct {
	Upstream    string
	Method      string
	Path        string
	StatusCode  int
	ContentType string
	Body        []byte
}

func NewUpstreamError(upstream, method, path string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		Upstream:    upstream,
		Method:      method,
		Path:        path,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s %s: status %d: %s", e.Upstream, e.Method, e.Path, e.StatusCode, e.Message())
}

// Message extracts a human readable reason: the "error" or "message" field of a
// JSON body, the raw body otherwise, or the status line when the body is empty.
func (e *UpstreamError) Message() string {
	var payload map[string]any
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		for _, k := range []string{"error", "message", "msg"} {
			if s, ok := payload[k].(string); ok && s != "" {
				return s
			}
		}
		return strings.TrimSpace(string(e.Body))
	}
	if text := strings.TrimSpace(string(e.Body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Details returns the body as decoded JSON when possible, as text otherwise.
func (e *UpstreamError) Details() any {
	if len(e.Body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(e.Body, &v); err == nil {
		return v
	}
	return string(e.Body)
}
