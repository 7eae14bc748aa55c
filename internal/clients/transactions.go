package clients

import (
	"context"
	"io"
	"net/http"
)

type TransactionClient struct{ c *Client }

func NewTransactionClient(c *Client) *TransactionClient { return &TransactionClient{c: c} }

func (tc *TransactionClient) List(ctx context.Context, rawQuery string, headers http.Header) (*http.Response, error) {
	return tc.c.Do(ctx, http.MethodGet, "/transactions", rawQuery, nil, headers)
}

func (tc *TransactionClient) Create(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return tc.c.Do(ctx, http.MethodPost, "/transactions/create", "", body, headers)
}
