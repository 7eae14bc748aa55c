package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mtlh01p/project-altar-server/internal/model"
)

// CheckoutBackend is the typed side of the backend used by the checkout flow.
type CheckoutBackend struct{ c *Client }

func NewCheckoutBackend(c *Client) *CheckoutBackend { return &CheckoutBackend{c: c} }

func (b *CheckoutBackend) CurrentUserID(ctx context.Context) (string, error) {
	var me struct {
		User *struct {
			UserID model.ID `json:"userId"`
			ID     model.ID `json:"id"`
		} `json:"user"`
		UserID model.ID `json:"userId"`
	}
	if err := b.c.DoJSON(ctx, http.MethodGet, "/auth/me", nil, &me); err != nil {
		return "", err
	}
	switch {
	case me.User != nil && me.User.UserID != "":
		return me.User.UserID.String(), nil
	case me.User != nil && me.User.ID != "":
		return me.User.ID.String(), nil
	case me.UserID != "":
		return me.UserID.String(), nil
	}
	return "", errors.New("auth/me: no user id in response")
}

func (b *CheckoutBackend) CreateTransaction(ctx context.Context, tx model.NewTransaction) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.c.DoJSON(ctx, http.MethodPost, "/transactions/create", tx, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *CheckoutBackend) UpdateProductStock(ctx context.Context, productID model.ID, stock int) error {
	return b.c.DoJSON(ctx, http.MethodPut, "/products/"+PathID(productID.String()), map[string]int{"stock": stock}, nil)
}

func (b *CheckoutBackend) DeleteCartItem(ctx context.Context, itemID model.ID) error {
	return b.c.DoJSON(ctx, http.MethodDelete, "/cart/items/"+PathID(itemID.String()), nil, nil)
}

func (b *CheckoutBackend) DeleteCart(ctx context.Context, cartID model.ID) error {
	return b.c.DoJSON(ctx, http.MethodDelete, "/cart/"+PathID(cartID.String()), nil, nil)
}
