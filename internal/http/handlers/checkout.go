package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/clients"
)

const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replay"
)

type CheckoutHandler struct{ svc *checkout.Service }

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

type checkoutResponse struct {
	Transaction json.RawMessage              `json:"transaction"`
	Warnings    []checkout.SideEffectFailure `json:"warnings,omitempty"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteUpstreamError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))

	res, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		var upErr *clients.UpstreamError
		switch {
		case errors.Is(err, checkout.ErrInvalidRequest):
			WriteUpstreamError(w, r, http.StatusBadRequest, "No cart or items provided")
		case errors.Is(err, checkout.ErrIdempotencyKeyReused):
			WriteUpstreamError(w, r, http.StatusConflict, "Idempotency-Key already used for a different cart")
		case errors.As(err, &upErr):
			WriteUpstreamError(w, r, http.StatusBadRequest, upErr.Message())
		default:
			WriteError(w, r, http.StatusBadGateway, "Checkout failed", err.Error())
		}
		return
	}

	if res.Replayed {
		w.Header().Set(HeaderIdempotentReplay, "true")
	}
	WriteJSON(w, http.StatusOK, checkoutResponse{Transaction: res.Transaction, Warnings: res.Failures})
}
