package posclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type InventoryInput struct {
	Name        string `json:"name"`
	OwnerUserID string `json:"ownerUserId,omitempty"`
}

type InventoryLogInput struct {
	InventoryID ID     `json:"inventoryId"`
	ProductID   ID     `json:"productId,omitempty"`
	Action      string `json:"action"`
	Quantity    int    `json:"quantity,omitempty"`
}

func (c *Client) ListInventories(ctx context.Context) ([]Inventory, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/inventory", nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Inventory](raw, "inventories", "inventory")
}

func (c *Client) CreateInventory(ctx context.Context, in InventoryInput) (Inventory, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/api/inventory", nil, nil, in, &raw); err != nil {
		return Inventory{}, err
	}
	return decodeOne[Inventory](raw, "inventory", "data")
}

func (c *Client) UpdateInventory(ctx context.Context, inventoryID ID, name string) (Inventory, error) {
	var raw json.RawMessage
	in := map[string]string{"name": name}
	if _, err := c.do(ctx, http.MethodPut, "/api/inventory/"+pathID(inventoryID), nil, nil, in, &raw); err != nil {
		return Inventory{}, err
	}
	return decodeOne[Inventory](raw, "inventory", "data")
}

func (c *Client) DeleteInventory(ctx context.Context, inventoryID ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/inventory/"+pathID(inventoryID), nil, nil, nil, nil)
	return err
}

// ListInventoryLogs lists the logs of one inventory, or all logs for an empty id.
func (c *Client) ListInventoryLogs(ctx context.Context, inventoryID ID) ([]InventoryLog, error) {
	var q url.Values
	if inventoryID != "" {
		q = url.Values{"inventoryId": []string{inventoryID.String()}}
	}
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/inventorylogs", q, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[InventoryLog](raw, "logs")
}

func (c *Client) CreateInventoryLog(ctx context.Context, in InventoryLogInput) error {
	_, err := c.do(ctx, http.MethodPost, "/api/inventorylogs", nil, nil, in, nil)
	return err
}
