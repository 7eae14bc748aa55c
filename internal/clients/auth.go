package clients

import (
	"context"
	"io"
	"net/http"
)

type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

func (ac *AuthClient) Login(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return ac.c.Do(ctx, http.MethodPost, "/auth/login", "", body, headers)
}

func (ac *AuthClient) Register(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return ac.c.Do(ctx, http.MethodPost, "/auth/register", "", body, headers)
}

func (ac *AuthClient) Me(ctx context.Context, headers http.Header) (*http.Response, error) {
	return ac.c.Do(ctx, http.MethodGet, "/auth/me", "", nil, headers)
}
