package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtlh01p/project-altar-server/internal/clients"
)

type InventoryHandler struct{ c *clients.InventoryClient }

func NewInventoryHandler(c *clients.InventoryClient) *InventoryHandler {
	return &InventoryHandler{c: c}
}

// List is the only inventory read that refuses anonymous callers up front.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireToken(w, r, "No token found") {
		return
	}
	resp, err := h.c.List(r.Context(), r.URL.RawQuery, forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch inventory")
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Create(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to create inventory item")
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Get(r.Context(), chi.URLParam(r, "inventoryId"), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch inventory")
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Update(r.Context(), chi.URLParam(r, "inventoryId"), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to update inventory")
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Delete(r.Context(), chi.URLParam(r, "inventoryId"), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to delete inventory")
}

func (h *InventoryHandler) Logs(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Logs(r.Context(), r.URL.RawQuery, forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch inventory logs")
}

func (h *InventoryHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.CreateLog(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to create inventory log")
}
