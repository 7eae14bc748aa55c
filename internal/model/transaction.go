package model

import "github.com/shopspring/decimal"

type Transaction struct {
	TransactionID ID              `json:"transactionId"`
	ProductIDs    []ID            `json:"productIds"`
	Total         decimal.Decimal `json:"total"`
	UserID        *string         `json:"userId"`
	InventoryID   *ID             `json:"inventoryId"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// NewTransaction is the body of POST /transactions/create.
type NewTransaction struct {
	ProductIDs  []ID            `json:"productIds"`
	Total       decimal.Decimal `json:"total"`
	UserID      *string         `json:"userId"`
	InventoryID *ID             `json:"inventoryId"`
}
