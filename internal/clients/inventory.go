package clients

import (
	"context"
	"io"
	"net/http"
)

type InventoryClient struct{ c *Client }

func NewInventoryClient(c *Client) *InventoryClient { return &InventoryClient{c: c} }

func (ic *InventoryClient) List(ctx context.Context, rawQuery string, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodGet, "/inventory", rawQuery, nil, headers)
}

func (ic *InventoryClient) Create(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodPost, "/inventory", "", body, headers)
}

func (ic *InventoryClient) Get(ctx context.Context, inventoryID string, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodGet, "/inventory/"+PathID(inventoryID), "", nil, headers)
}

func (ic *InventoryClient) Update(ctx context.Context, inventoryID string, body io.Reader, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodPut, "/inventory/"+PathID(inventoryID), "", body, headers)
}

func (ic *InventoryClient) Delete(ctx context.Context, inventoryID string, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodDelete, "/inventory/"+PathID(inventoryID), "", nil, headers)
}

// Logs and CreateLog target the inventory audit trail.
func (ic *InventoryClient) Logs(ctx context.Context, rawQuery string, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodGet, "/inventory-logs", rawQuery, nil, headers)
}

func (ic *InventoryClient) CreateLog(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return ic.c.Do(ctx, http.MethodPost, "/inventory-logs", "", body, headers)
}
