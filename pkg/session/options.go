package session

import (
	"log/slog"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/credstore"
)

// Option configures the Manager.
type Option func(*Manager)

// WithAPIClient wires the backend client. Required; New panics without it.
func WithAPIClient(api *apiclient.Client) Option {
	return func(m *Manager) {
		m.api = api
	}
}

// WithStore sets the credential store. Defaults to an in-memory store, which
// means no persistence across restarts.
func WithStore(store credstore.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLogger sets a structured logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithSignalBuffer sets the per-subscriber buffer of both signals. Defaults
// to 8.
func WithSignalBuffer(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.signalBuffer = n
		}
	}
}
