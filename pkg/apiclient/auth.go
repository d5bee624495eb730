package apiclient

import (
	"context"
	"net/url"

	"github.com/dmitrymomot/stockdash/pkg/identity"
)

// LoginResponse is the credential exchange result. Only the user id and
// username are guaranteed; everything else about the identity stays blank
// until an authorized fetch enriches it.
type LoginResponse struct {
	Message     string    `json:"message"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        LoginUser `json:"user"`
}

// LoginUser is the minimal identity projection embedded in LoginResponse.
type LoginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms account creation. Registration never returns a
// token; a subsequent login is required.
type RegisterResponse struct {
	Message string        `json:"message"`
	UserID  string        `json:"user_id"`
	Email   string        `json:"email"`
	Role    identity.Role `json:"role"`
}

// Login exchanges credentials for a bearer token. The backend expects a
// form-urlencoded body (OAuth2 password flow convention), not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp LoginResponse
	if err := c.PostForm(ctx, "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. Pure forwarding: no token, no session side
// effects.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
