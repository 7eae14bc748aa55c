package posclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// TransactionList is the gateway's transaction listing. Error is set when the
// backend failed and Transactions is then empty.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Error        string        `json:"error,omitempty"`
}

func (c *Client) ListTransactions(ctx context.Context, userID string) (TransactionList, error) {
	var q url.Values
	if userID != "" {
		q = url.Values{"userId": []string{userID}}
	}
	var out TransactionList
	if _, err := c.do(ctx, http.MethodGet, "/api/transactions", q, nil, nil, &out); err != nil {
		return TransactionList{}, err
	}
	if out.Transactions == nil {
		out.Transactions = []Transaction{}
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx NewTransaction) (Transaction, error) {
	var out struct {
		Transaction Transaction `json:"transaction"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/transactions", nil, nil, tx, &out); err != nil {
		return Transaction{}, err
	}
	return out.Transaction, nil
}

// CheckoutItem is one cart line as the POS screen holds it.
type CheckoutItem struct {
	ID           ID              `json:"id"`
	ProductID    ID              `json:"productId"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ProductStock int             `json:"productStock"`
	InventoryID  ID              `json:"inventoryId,omitempty"`
}

type CheckoutWarning struct {
	Step   string `json:"step"`
	Target string `json:"target"`
	Error  string `json:"error"`
}

type CheckoutResult struct {
	Transaction Transaction
	// Raw is the transaction exactly as the backend returned it.
	Raw      json.RawMessage
	Warnings []CheckoutWarning
	// Replayed is set when the gateway answered from an earlier checkout with
	// the same idempotency key.
	Replayed bool
}

// Checkout turns the cart into a transaction. An empty idempotencyKey sends none.
func (c *Client) Checkout(ctx context.Context, cartID ID, items []CheckoutItem, idempotencyKey string) (CheckoutResult, error) {
	var h http.Header
	if idempotencyKey != "" {
		h = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	in := struct {
		CartID ID             `json:"cartId"`
		Items  []CheckoutItem `json:"items"`
	}{CartID: cartID, Items: items}

	var out struct {
		Transaction json.RawMessage   `json:"transaction"`
		Warnings    []CheckoutWarning `json:"warnings"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/checkout", nil, h, in, &out)
	if err != nil {
		return CheckoutResult{}, err
	}

	res := CheckoutResult{
		Raw:      out.Transaction,
		Warnings: out.Warnings,
		Replayed: resp.Header.Get("Idempotent-Replay") == "true",
	}
	if len(out.Transaction) > 0 {
		if err := json.Unmarshal(out.Transaction, &res.Transaction); err != nil {
			return res, err
		}
	}
	return res, nil
}
