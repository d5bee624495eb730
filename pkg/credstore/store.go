package credstore

import (
	"github.com/dmitrymomot/stockdash/pkg/identity"
)

// Credentials is the durable slot content: an opaque bearer token and the
// last known user projection. Both travel together through every Save and
// Clear.
type Credentials struct {
	AccessToken string         `json:"access_token,omitempty"`
	User        *identity.User `json:"current_user,omitempty"`
}

// HasToken reports whether a bearer token is present, which is what makes
// the session count as authenticated.
func (c Credentials) HasToken() bool {
	return c.AccessToken != ""
}

// Clone returns a deep copy so that holders cannot mutate stored state
// through a shared User pointer.
func (c Credentials) Clone() Credentials {
	return Credentials{
		AccessToken: c.AccessToken,
		User:        c.User.Clone(),
	}
}

// Store is the persistence interface for the credential slot.
type Store interface {
	// Load returns the current slot content. A store that has never been
	// written (or was cleared) returns zero Credentials and no error.
	Load() (Credentials, error)

	// Save replaces the entire slot atomically.
	Save(creds Credentials) error

	// Clear empties the slot, removing token and identity together.
	// Clearing an already empty store is not an error.
	Clear() error
}
