package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mtlh01p/project-altar-server/internal/clients"
)

type TransactionHandler struct{ c *clients.TransactionClient }

func NewTransactionHandler(c *clients.TransactionClient) *TransactionHandler {
	return &TransactionHandler{c: c}
}

// Create validates the minimum shape before the backend sees it. userId and
// inventoryId are sent as null when absent.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductIDs  json.RawMessage `json:"productIds"`
		Total       json.RawMessage `json:"total"`
		UserID      json.RawMessage `json:"userId"`
		InventoryID json.RawMessage `json:"inventoryId"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		WriteUpstreamError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if !isJSONArray(in.ProductIDs) || !isTruthy(in.Total) {
		WriteUpstreamError(w, r, http.StatusBadRequest, "Missing required fields: productIds, total")
		return
	}

	payload, _ := json.Marshal(map[string]json.RawMessage{
		"productIds":  in.ProductIDs,
		"total":       in.Total,
		"userId":      orNull(in.UserID),
		"inventoryId": orNull(in.InventoryID),
	})
	headers := r.Header.Clone()
	headers.Set("Content-Type", "application/json")

	resp, err := h.c.Create(r.Context(), bytes.NewReader(payload), headers)
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "Failed to create transaction"
		}
		WriteUpstreamError(w, r, resp.StatusCode, msg)
		return
	}
	if !json.Valid(body) {
		WriteUpstreamError(w, r, http.StatusBadGateway, "backend returned invalid json")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]json.RawMessage{"transaction": body})
}

// List always answers 200 with a transactions array; a backend failure yields
// an empty list plus an error string.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := ""
	if uid := r.URL.Query().Get("userId"); uid != "" {
		query = url.Values{"userId": []string{uid}}.Encode()
	}

	resp, err := h.c.List(r.Context(), query, forwardHeaders(r))
	if err != nil {
		writeTransactions(w, []json.RawMessage{}, "backend request failed: "+err.Error())
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		writeTransactions(w, []json.RawMessage{}, "backend returned "+resp.Status+": "+strings.TrimSpace(string(body)))
		return
	}

	list, err := decodeTransactions(body)
	if err != nil {
		writeTransactions(w, []json.RawMessage{}, err.Error())
		return
	}
	writeTransactions(w, list, "")
}

func decodeTransactions(body []byte) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Transactions []json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Transactions == nil {
		return []json.RawMessage{}, nil
	}
	return wrapped.Transactions, nil
}

func writeTransactions(w http.ResponseWriter, list []json.RawMessage, errMsg string) {
	out := struct {
		Transactions []json.RawMessage `json:"transactions"`
		Error        string            `json:"error,omitempty"`
	}{Transactions: list, Error: errMsg}
	WriteJSON(w, http.StatusOK, out)
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// isTruthy mirrors a falsy check on the total: absent, null, false, 0 and ""
// all count as missing.
func isTruthy(raw json.RawMessage) bool {
	switch s := string(bytes.TrimSpace(raw)); s {
	case "", "null", "false", `""`:
		return false
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f != 0
		}
		return true
	}
}

func orNull(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == `""` || string(raw) == "false" {
		return json.RawMessage("null")
	}
	return raw
}
