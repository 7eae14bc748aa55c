package posclient

import (
	"context"
	"encoding/json"
	"net/http"
)

type CartInput struct {
	CartName    string `json:"cartName"`
	OwnerUserID string `json:"ownerUserId,omitempty"`
}

func (c *Client) ListCarts(ctx context.Context) ([]Cart, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/cart", nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Cart](raw, "carts", "cart")
}

func (c *Client) CreateCart(ctx context.Context, in CartInput) (Cart, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodPost, "/api/cart", nil, nil, in, &raw); err != nil {
		return Cart{}, err
	}
	return decodeOne[Cart](raw, "cart")
}

func (c *Client) CartItems(ctx context.Context, cartID ID) ([]CartItem, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/cart/"+pathID(cartID)+"/items", nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[CartItem](raw, "items")
}

// AddCartItem adds quantity units; the backend bumps an existing line instead
// of creating a second one.
func (c *Client) AddCartItem(ctx context.Context, cartID, productID ID, quantity int) error {
	in := struct {
		ProductID ID  `json:"productId"`
		Quantity  int `json:"quantity,omitempty"`
	}{ProductID: productID, Quantity: quantity}
	_, err := c.do(ctx, http.MethodPost, "/api/cart/"+pathID(cartID)+"/items", nil, nil, in, nil)
	return err
}

// UpdateCartItemQuantity sets a line's quantity; zero removes the line.
func (c *Client) UpdateCartItemQuantity(ctx context.Context, itemID ID, quantity int) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/cart/items/"+pathID(itemID), nil, nil, map[string]int{"quantity": quantity}, nil)
	return err
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/cart/items/"+pathID(itemID), nil, nil, nil, nil)
	return err
}

func (c *Client) DeleteCart(ctx context.Context, cartID ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/cart/"+pathID(cartID), nil, nil, nil, nil)
	return err
}
