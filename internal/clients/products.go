package clients

import (
	"context"
	"io"
	"net/http"
)

type ProductClient struct{ c *Client }

func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

func (pc *ProductClient) List(ctx context.Context, rawQuery string, headers http.Header) (*http.Response, error) {
	return pc.c.Do(ctx, http.MethodGet, "/products", rawQuery, nil, headers)
}

func (pc *ProductClient) Create(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return pc.c.Do(ctx, http.MethodPost, "/products", "", body, headers)
}

func (pc *ProductClient) Get(ctx context.Context, productID string, headers http.Header) (*http.Response, error) {
	return pc.c.Do(ctx, http.MethodGet, "/products/"+PathID(productID), "", nil, headers)
}

func (pc *ProductClient) Update(ctx context.Context, productID string, body io.Reader, headers http.Header) (*http.Response, error) {
	return pc.c.Do(ctx, http.MethodPut, "/products/"+PathID(productID), "", body, headers)
}

func (pc *ProductClient) Delete(ctx context.Context, productID string, headers http.Header) (*http.Response, error) {
	return pc.c.Do(ctx, http.MethodDelete, "/products/"+PathID(productID), "", nil, headers)
}

func (pc *ProductClient) ByInventory(ctx context.Context, inventoryID, rawQuery string, headers http.Header) (*http.Response, error) {
	return pc.c.Do(ctx, http.MethodGet, "/products/inventory/"+PathID(inventoryID), rawQuery, nil, headers)
}
