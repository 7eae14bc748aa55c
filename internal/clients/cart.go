package clients

import (
	"context"
	"io"
	"net/http"
)

type CartClient struct{ c *Client }

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

func (cc *CartClient) List(ctx context.Context, rawQuery string, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodGet, "/cart", rawQuery, nil, headers)
}

func (cc *CartClient) Create(ctx context.Context, body io.Reader, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodPost, "/cart", "", body, headers)
}

func (cc *CartClient) Delete(ctx context.Context, cartID string, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodDelete, "/cart/"+PathID(cartID), "", nil, headers)
}

func (cc *CartClient) Items(ctx context.Context, cartID, rawQuery string, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodGet, "/cart/"+PathID(cartID)+"/items", rawQuery, nil, headers)
}

func (cc *CartClient) AddItem(ctx context.Context, cartID string, body io.Reader, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodPost, "/cart/"+PathID(cartID)+"/items", "", body, headers)
}

func (cc *CartClient) UpdateItem(ctx context.Context, itemID string, body io.Reader, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodPatch, "/cart/items/"+PathID(itemID), "", body, headers)
}

func (cc *CartClient) DeleteItem(ctx context.Context, itemID string, headers http.Header) (*http.Response, error) {
	return cc.c.Do(ctx, http.MethodDelete, "/cart/items/"+PathID(itemID), "", nil, headers)
}
