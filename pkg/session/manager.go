package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/credstore"
	"github.com/dmitrymomot/stockdash/pkg/identity"
	"github.com/dmitrymomot/stockdash/pkg/signal"
)

// Manager owns the session state. It is the single writer of the credential
// store and the only producer of the authenticated and identity signals.
type Manager struct {
	mu    sync.Mutex // serializes persist+broadcast per call
	store credstore.Store
	api   *apiclient.Client
	log   *slog.Logger

	signalBuffer  int
	authenticated *signal.Signal[bool]
	identity      *signal.Signal[*identity.User]
}

// New creates a Manager and seeds both signals from the persisted store, so
// late subscribers immediately learn the reload-time state. A corrupt or
// unreadable store seeds as signed-out rather than failing construction.
func New(opts ...Option) *Manager {
	m := &Manager{
		log:          slog.New(slog.DiscardHandler),
		signalBuffer: 8,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.api == nil {
		// Fail fast on misconfiguration; a manager without a backend client
		// cannot satisfy any of its operations.
		panic("session: api client is required")
	}
	if m.store == nil {
		m.store = credstore.NewMemoryStore()
	}

	m.authenticated = signal.New[bool](m.signalBuffer)
	m.identity = signal.New[*identity.User](m.signalBuffer)

	creds, err := m.store.Load()
	if err != nil {
		m.log.Warn("credential store unreadable at boot, starting signed out", slog.Any("error", err))
		creds = credstore.Credentials{}
	}
	m.authenticated.Set(creds.HasToken())
	m.identity.Set(creds.User.Clone())

	return m
}

// Authenticated is the boolean session-active signal. Replays its latest
// value to new subscribers.
func (m *Manager) Authenticated() *signal.Signal[bool] {
	return m.authenticated
}

// Identity is the current-user signal. Replays its latest value (possibly
// nil) to new subscribers.
func (m *Manager) Identity() *signal.Signal[*identity.User] {
	return m.identity
}

// CurrentIdentity returns a snapshot of the current user without suspending.
// The returned record is a copy; mutating it never affects session state.
func (m *Manager) CurrentIdentity() *identity.User {
	user, _ := m.identity.Latest()
	return user.Clone()
}

// Token returns the persisted bearer token, or empty when signed out. This
// is what the bearer transport reads at send time.
func (m *Manager) Token() string {
	creds, err := m.store.Load()
	if err != nil {
		return ""
	}
	return creds.AccessToken
}

// Exchange trades credentials for a bearer token. On success the token and
// the minimal identity projection (id, username; other fields blank until
// enriched) are persisted, then authenticated flips true, then the identity
// signal carries the projection. Returns the projection for chaining into
// FetchIdentity.
func (m *Manager) Exchange(ctx context.Context, username, password string) (*identity.User, error) {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user := &identity.User{
		ID:       resp.User.ID,
		Username: resp.User.Username,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(credstore.Credentials{
		AccessToken: resp.AccessToken,
		User:        user,
	}); err != nil {
		return nil, err
	}

	// Persist first, then broadcast; authenticated strictly before identity.
	m.authenticated.Set(true)
	m.identity.Set(user.Clone())

	m.log.InfoContext(ctx, "session established", slog.String("user_id", user.ID))
	return user.Clone(), nil
}

// FetchIdentity reads the authoritative user record and overwrites the
// persisted and in-memory identity with it, healing the blank fields left by
// Exchange. The overwrite is unconditional: fetching a different user's
// record replaces the mirror, matching the backend contract this client
// consumes.
func (m *Manager) FetchIdentity(ctx context.Context, id string) (*identity.User, error) {
	user, err := m.api.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load()
	if err != nil {
		creds = credstore.Credentials{}
	}
	creds.User = user.Clone()
	if err := m.store.Save(creds); err != nil {
		return nil, err
	}

	m.identity.Set(user.Clone())
	return user.Clone(), nil
}

// Register forwards an account creation request. No session side effects:
// registration never yields a token.
func (m *Manager) Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error) {
	return m.api.Register(ctx, req)
}

// UpdateIdentity patches a user profile and then re-fetches the record so
// the mirrored identity stays authoritative instead of trusting the patch
// echo.
func (m *Manager) UpdateIdentity(ctx context.Context, id string, req apiclient.UpdateRequest) (*identity.User, error) {
	if err := m.api.UpdateUser(ctx, id, req); err != nil {
		return nil, err
	}
	return m.FetchIdentity(ctx, id)
}

// DeleteIdentity removes a user account. Deleting the current user implies
// logout: EndSession completes before this call returns, so callers never
// need to remember the side effect.
func (m *Manager) DeleteIdentity(ctx context.Context, id string) error {
	if err := m.api.DeleteUser(ctx, id); err != nil {
		return err
	}

	if current := m.CurrentIdentity(); current != nil && current.ID == id {
		m.EndSession()
	}
	return nil
}

// EndSession signs out: both persisted keys are cleared together, then
// authenticated broadcasts false, then identity broadcasts nil. Synchronous,
// no network round trip, idempotent.
func (m *Manager) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		// The broadcast must flip regardless; a dangling file is preferable
		// to consumers believing the session is still active.
		m.log.Warn("failed to clear credential store", slog.Any("error", err))
	}

	m.authenticated.Set(false)
	m.identity.Set(nil)
}

// Close releases both signals. The Manager must not be used afterwards.
func (m *Manager) Close() error {
	_ = m.authenticated.Close()
	_ = m.identity.Close()
	return nil
}
