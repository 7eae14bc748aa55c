package posclient

import (
	"context"
	"encoding/json"
	"net/http"
)

type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login stores the session cookie and returns the backend's user value, which
// may be an email string or an object.
func (c *Client) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	var out struct {
		User json.RawMessage `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/login", nil, nil, in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/api/register", nil, nil, req, nil)
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, nil, &raw); err != nil {
		return User{}, err
	}
	return decodeOne[User](raw, "user")
}
