// Package identity defines the user projection shared by the credential
// store, the API client and the session manager. The client never invents
// role values; they always originate from the backend.
package identity

// Role is the backend-assigned authorization level of a user.
type Role string

const (
	// RoleStandard is the default role assigned at registration.
	RoleStandard Role = "standard_user"
	// RoleAdmin grants access to the administrator views and operations.
	RoleAdmin Role = "admin"
)

// User is the client-side projection of a backend user record. Depending on
// where it came from (credential exchange vs. an authorized fetch) some
// fields may still be blank; see the session package for the enrichment
// flow.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns an independent copy. Callers holding a clone can mutate it
// freely without affecting the broadcast session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
