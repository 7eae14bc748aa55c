package model

// Cart as returned by the backend. Older backend builds send "id" instead of "cartId".
type Cart struct {
	CartID      ID     `json:"cartId,omitempty"`
	ID          ID     `json:"id,omitempty"`
	OwnerUserID string `json:"ownerUserId,omitempty"`
	CartName    string `json:"cartName,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Key returns whichever identifier the backend populated.
func (c Cart) Key() ID {
	if c.CartID != "" {
		return c.CartID
	}
	return c.ID
}

type CartItem struct {
	ID        ID       `json:"id"`
	ProductID ID       `json:"productId,omitempty"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
	AddedAt   string   `json:"added_at,omitempty"`
}

// ProductKey resolves the referenced product id from either the flat or nested form.
func (i CartItem) ProductKey() ID {
	if i.ProductID != "" {
		return i.ProductID
	}
	if i.Product != nil {
		return i.Product.ProductID
	}
	return ""
}
