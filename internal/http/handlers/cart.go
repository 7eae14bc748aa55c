package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtlh01p/project-altar-server/internal/clients"
)

type CartHandler struct{ c *clients.CartClient }

func NewCartHandler(c *clients.CartClient) *CartHandler { return &CartHandler{c: c} }

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.List(r.Context(), r.URL.RawQuery, forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch carts")
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Create(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to create cart")
}

// Items serves both GET /cart/{cartId} and GET /cart/{cartId}/items.
func (h *CartHandler) Items(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Items(r.Context(), chi.URLParam(r, "cartId"), r.URL.RawQuery, forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch cart items")
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.AddItem(r.Context(), chi.URLParam(r, "cartId"), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to add item to cart")
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Delete(r.Context(), chi.URLParam(r, "cartId"), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to delete cart")
}

// UpdateItem sets a line's quantity. A quantity of zero removes the line, so a
// zero is never stored.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		WriteUpstreamError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	switch {
	case body.Quantity == nil:
		WriteUpstreamError(w, r, http.StatusBadRequest, "Missing quantity")
		return
	case *body.Quantity < 0:
		WriteUpstreamError(w, r, http.StatusBadRequest, "quantity must not be negative")
		return
	case *body.Quantity == 0:
		h.deleteItem(w, r, itemID)
		return
	}

	payload, _ := json.Marshal(map[string]int{"quantity": *body.Quantity})
	headers := r.Header.Clone()
	headers.Set("Content-Type", "application/json")

	resp, err := h.c.UpdateItem(r.Context(), itemID, bytes.NewReader(payload), headers)
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to update cart item")
}

func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.deleteItem(w, r, chi.URLParam(r, "itemId"))
}

func (h *CartHandler) deleteItem(w http.ResponseWriter, r *http.Request, itemID string) {
	headers := r.Header.Clone()
	headers.Del("Content-Type")

	resp, err := h.c.DeleteItem(r.Context(), itemID, headers)
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to remove cart item")
}
