// Package posclient is a typed client for the gateway's /api routes. It keeps
// the session cookie in a jar, so a Login makes every later call authenticated.
package posclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/mtlh01p/project-altar-server/internal/model"
)

type (
	ID             = model.ID
	Product        = model.Product
	Inventory      = model.Inventory
	InventoryLog   = model.InventoryLog
	Cart           = model.Cart
	CartItem       = model.CartItem
	Transaction    = model.Transaction
	NewTransaction = model.NewTransaction
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its Jar is kept if set,
// otherwise a fresh jar is attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for a gateway at baseURL (scheme and host, no /api).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}

	c := &Client{baseURL: u, http: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx answer into out (when
// non-nil). Anything else comes back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers http.Header, in, out any) (*http.Response, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, newAPIError(resp.StatusCode, raw)
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

// decodeList accepts a bare array or an object holding the array under one of keys.
func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}

	var list []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok && string(v) != "null" {
			if err := json.Unmarshal(v, &list); err != nil {
				return nil, fmt.Errorf("decode %s: %w", k, err)
			}
			return list, nil
		}
	}
	return []T{}, nil
}

// decodeOne accepts a bare object or one wrapped under one of keys.
func decodeOne[T any](raw json.RawMessage, keys ...string) (T, error) {
	var out T
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, k := range keys {
			if v, ok := obj[k]; ok && len(v) > 0 && v[0] == '{' {
				err := json.Unmarshal(v, &out)
				return out, err
			}
		}
	}
	err := json.Unmarshal(raw, &out)
	return out, err
}

func pathID(id ID) string { return url.PathEscape(id.String()) }
