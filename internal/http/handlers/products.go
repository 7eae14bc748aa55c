package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtlh01p/project-altar-server/internal/clients"
)

type ProductHandler struct{ c *clients.ProductClient }

func NewProductHandler(c *clients.ProductClient) *ProductHandler { return &ProductHandler{c: c} }

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.List(r.Context(), r.URL.RawQuery, forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch products")
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Create(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Backend error")
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Get(r.Context(), chi.URLParam(r, "productId"), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch product")
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Update(r.Context(), chi.URLParam(r, "productId"), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to update product")
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Delete(r.Context(), chi.URLParam(r, "productId"), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Backend error")
}

func (h *ProductHandler) ByInventory(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.ByInventory(r.Context(), chi.URLParam(r, "inventoryId"), r.URL.RawQuery, forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch products")
}
