package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mtlh01p/project-altar-server/internal/metrics"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
)

// Client talks to one upstream. The caller's access token and correlation id
// travel in the context and are attached to every outbound request.
type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

// Do sends path (already escaped, relative to the base URL path) upstream.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	target := strings.TrimRight(c.BaseURL.String(), "/") + "/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)

	if token := middleware.GetAccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	// Ensure correlation id propagated downstream
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	status := 0
	if err == nil {
		status = resp.StatusCode
	}
	metrics.RecordUpstream(c.Name, method, status, time.Since(start))

	return resp, err
}

// DoJSON marshals in (when non-nil), sends it and decodes a 2xx body into out
// (when non-nil). Non-2xx answers come back as *UpstreamError.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	headers := http.Header{"Accept": []string{"application/json"}}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		headers.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(ctx, method, path, "", body, headers)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewUpstreamError(c.Name, method, path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) || isSessionHeader(k) {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}

// The browser session never leaves the gateway as-is: the cookie is swapped
// for a bearer token and Content-Length is recomputed by net/http.
func isSessionHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Host", "Cookie", "Authorization", "Content-Length", "Origin", "Referer":
		return true
	default:
		return false
	}
}

// PathID escapes a single path segment taken from a client URL.
func PathID(id string) string {
	return url.PathEscape(id)
}
