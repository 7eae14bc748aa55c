package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mtlh01p/project-altar-server/internal/clients"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
)

type AuthHandler struct {
	c            *clients.AuthClient
	secureCookie bool
	logger       *logrus.Logger
}

func NewAuthHandler(c *clients.AuthClient, secureCookie bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{c: c, secureCookie: secureCookie, logger: logger}
}

// Login exchanges credentials for the backend token and keeps it in an
// httpOnly cookie. Only the user part of the backend answer reaches the browser.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Login(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		writeBackendPayload(w, r, http.StatusUnauthorized, body, "Login failed")
		return
	}

	var data struct {
		AccessToken string          `json:"access_token"`
		User        json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.AccessToken == "" {
		h.logger.WithField("correlation_id", middleware.GetCorrelationID(r.Context())).
			Error("login: backend answer carries no access token")
		WriteUpstreamError(w, r, http.StatusBadGateway, "login response missing access token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    data.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	user := data.User
	if len(user) == 0 {
		user = json.RawMessage("null")
	}
	WriteJSON(w, http.StatusOK, map[string]json.RawMessage{"user": user})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	resp, err := h.c.Register(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		writeBackendPayload(w, r, http.StatusBadRequest, body, "Registration failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Registration successful"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if !requireToken(w, r, "Unauthorized") {
		return
	}
	resp, err := h.c.Me(r.Context(), forwardHeaders(r))
	if err != nil {
		backendFailed(w, r, err)
		return
	}
	defer resp.Body.Close()
	Relay(w, r, resp, "Failed to fetch user")
}

// writeBackendPayload answers with the backend's own JSON body under status,
// or wraps a non-JSON body so the caller always receives JSON.
func writeBackendPayload(w http.ResponseWriter, r *http.Request, status int, body []byte, fallback string) {
	if json.Valid(body) && len(body) > 0 {
		writeRawJSON(w, status, body)
		return
	}
	WriteError(w, r, status, fallback, string(body))
}
