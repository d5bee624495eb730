package apiclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/dmitrymomot/stockdash/pkg/identity"
)

// UpdateRequest is the mutable subset of a user profile.
type UpdateRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// userPayload tolerates the id/_id and full_name/fullname variants the
// backend is known to emit.
type userPayload struct {
	ID          string        `json:"id"`
	MongoID     string        `json:"_id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FullName    string        `json:"full_name"`
	FullNameAlt string        `json:"fullname"`
	Role        identity.Role `json:"role"`
}

func (p userPayload) id() string {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

func (p userPayload) fullName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.FullNameAlt
}

func (p userPayload) toUser() identity.User {
	return identity.User{
		ID:       p.id(),
		Username: p.Username,
		Email:    p.Email,
		FullName: p.fullName(),
		Role:     p.Role,
	}
}

// GetUser fetches the authoritative user record.
func (c *Client) GetUser(ctx context.Context, id string) (*identity.User, error) {
	var payload userPayload
	if err := c.Get(ctx, "/users/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, err
	}
	user := payload.toUser()
	return &user, nil
}

// UpdateUser patches full name and email. The response echo is discarded;
// callers wanting authoritative state re-fetch the record.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateRequest) error {
	return c.Put(ctx, "/users/"+url.PathEscape(id), req, nil)
}

// DeleteUser removes the account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.Delete(ctx, "/users/"+url.PathEscape(id), nil)
}

// PromoteUser grants the admin role. Empty request body; the caller must
// confirm the outcome by re-reading the record, not by the 200 alone.
func (c *Client) PromoteUser(ctx context.Context, id string) error {
	return c.Put(ctx, "/users/"+url.PathEscape(id)+"/role", nil, nil)
}

// RevokeSessions invalidates every outstanding token for the current user.
// The local session is untouched; callers typically end it next.
func (c *Client) RevokeSessions(ctx context.Context) error {
	return c.Post(ctx, "/users/revoke_sessions", nil, nil)
}

// ListUsers fetches the user directory, tolerating all known response
// shapes. See NormalizeUserList for the decoding rules.
func (c *Client) ListUsers(ctx context.Context) ([]identity.User, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/users", nil, &raw); err != nil {
		return nil, err
	}
	return NormalizeUserList(raw)
}
