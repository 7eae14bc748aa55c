package posclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	InventoryID ID              `json:"inventoryId"`
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Product](raw, "products")
}

func (c *Client) GetProduct(ctx context.Context, productID ID) (Product, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/products/"+pathID(productID), nil, nil, nil, &raw); err != nil {
		return Product{}, err
	}
	return decodeOne[Product](raw, "product")
}

// ProductsByInventory returns no products, without a request, for an empty id.
func (c *Client) ProductsByInventory(ctx context.Context, inventoryID ID) ([]Product, error) {
	if inventoryID == "" {
		return []Product{}, nil
	}
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/products/inventory/"+pathID(inventoryID), nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Product](raw, "products")
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/api/products", nil, nil, in, &raw); err != nil {
		return Product{}, err
	}
	return decodeOne[Product](raw, "product", "data")
}

// UpdateProduct sends only the given fields, e.g. {"stock": 3}.
func (c *Client) UpdateProduct(ctx context.Context, productID ID, fields map[string]any) (Product, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodPut, "/api/products/"+pathID(productID), nil, nil, fields, &raw); err != nil {
		return Product{}, err
	}
	return decodeOne[Product](raw, "data", "product")
}

func (c *Client) DeleteProduct(ctx context.Context, productID ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/products/"+pathID(productID), nil, nil, nil, nil)
	return err
}
