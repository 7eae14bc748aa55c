package model

import "github.com/shopspring/decimal"

func init() {
	// The backend speaks JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ProductID   ID              `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	InventoryID ID              `json:"inventoryId,omitempty"`
}

type Inventory struct {
	InventoryID ID     `json:"inventoryId"`
	Name        string `json:"name"`
	OwnerUserID string `json:"ownerUserId,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// InventoryLog is one audit row of a stock movement inside an inventory.
type InventoryLog struct {
	LogID       ID     `json:"logId,omitempty"`
	InventoryID ID     `json:"inventoryId"`
	ProductID   ID     `json:"productId,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Action      string `json:"action"`
	Quantity    int    `json:"quantity,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}
