package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mtlh01p/project-altar-server/internal/clients"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
	"github.com/mtlh01p/project-altar-server/internal/model"
)

// maxBodyBytes bounds request bodies the gateway decodes itself.
const maxBodyBytes = 1 << 20

// Relay copies a 2xx backend answer to the caller unchanged. Anything else is
// wrapped as {"error": errMsg, "details": <backend body>} with the backend status.
func Relay(w http.ResponseWriter, r *http.Request, resp *http.Response, errMsg string) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr := clients.NewUpstreamError("backend", r.Method, r.URL.Path, resp)
		WriteError(w, r, resp.StatusCode, errMsg, upErr.Details())
		return
	}
	CopyUpstreamResponse(w, resp)
}

func CopyUpstreamResponse(w http.ResponseWriter, resp *http.Response) {
	for _, k := range []string{"Content-Type", "Cache-Control", "Location"} {
		if v := resp.Header.Get(k); v != "" {
			w.Header().Set(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func WriteUpstreamError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteError(w, r, status, msg, nil)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	WriteJSON(w, status, model.ErrorResponse{
		Error:         msg,
		Details:       details,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes an already encoded JSON document.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func backendFailed(w http.ResponseWriter, r *http.Request, err error) {
	WriteUpstreamError(w, r, http.StatusBadGateway, "backend request failed: "+err.Error())
}

// forwardHeaders is the inbound header set sent upstream. The backend only
// speaks JSON, so bodies without a content type are labelled as such.
func forwardHeaders(r *http.Request) http.Header {
	h := r.Header.Clone()
	if h.Get("Content-Type") == "" && r.Body != nil && r.Body != http.NoBody {
		h.Set("Content-Type", "application/json")
	}
	return h
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "json")
}

func requireToken(w http.ResponseWriter, r *http.Request, msg string) bool {
	if middleware.GetAccessToken(r.Context()) == "" {
		WriteUpstreamError(w, r, http.StatusUnauthorized, msg)
		return false
	}
	return true
}
