package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/apitest"
	"github.com/dmitrymomot/stockdash/pkg/bearer"
	"github.com/dmitrymomot/stockdash/pkg/credstore"
	"github.com/dmitrymomot/stockdash/pkg/identity"
	"github.com/dmitrymomot/stockdash/pkg/session"
	"github.com/dmitrymomot/stockdash/pkg/signal"
)

type fixture struct {
	backend *apitest.Server
	store   *credstore.MemoryStore
	manager *session.Manager
}

func newFixture(t *testing.T, opts ...apitest.ServerOption) *fixture {
	t.Helper()

	backend := apitest.NewServer(opts...)
	t.Cleanup(backend.Close)

	store := credstore.NewMemoryStore()

	client, err := apiclient.New(backend.URL(),
		apiclient.WithHTTPClient(&http.Client{
			Transport: bearer.New(bearer.TokenSourceFunc(func() string {
				creds, _ := store.Load()
				return creds.AccessToken
			})),
		}),
	)
	require.NoError(t, err)

	manager := session.New(
		session.WithAPIClient(client),
		session.WithStore(store),
	)
	t.Cleanup(func() { _ = manager.Close() })

	return &fixture{backend: backend, store: store, manager: manager}
}

func drainLatest[T any](t *testing.T, sub signal.Subscriber[T]) T {
	t.Helper()

	select {
	case msg, ok := <-sub.Receive(context.Background()):
		require.True(t, ok)
		return msg.Data
	case <-time.After(time.Second):
		t.Fatal("no signal value arrived")
		panic("unreachable")
	}
}

func TestNew_RequiresAPIClient(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		session.New()
	})
}

func TestExchange_PersistsThenBroadcasts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice", Email: "a@example.com", FullName: "Alice", Role: identity.RoleStandard}, "secret1")

	authSub := f.manager.Authenticated().Subscribe(context.Background())
	idSub := f.manager.Identity().Subscribe(context.Background())

	// Boot replay: signed out, nil identity.
	assert.False(t, drainLatest(t, authSub))
	assert.Nil(t, drainLatest(t, idSub))

	user, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Email, "exchange yields only the minimal projection")

	// Persisted before broadcast: by the time the signal fires, the store
	// already holds the slot.
	assert.True(t, drainLatest(t, authSub))
	creds, err := f.store.Load()
	require.NoError(t, err)
	assert.True(t, creds.HasToken())
	require.NotNil(t, creds.User)
	assert.Equal(t, id, creds.User.ID)

	broadcast := drainLatest(t, idSub)
	require.NotNil(t, broadcast)
	assert.Equal(t, "alice", broadcast.Username)
}

func TestExchange_InvalidCredentials(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.SeedUser(identity.User{Username: "alice"}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)

	assert.Nil(t, f.manager.CurrentIdentity())
	assert.Empty(t, f.manager.Token())
	auth, _ := f.manager.Authenticated().Latest()
	assert.False(t, auth)
}

func TestExchange_AuthenticatedBeforeEnrichedIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice", Email: "a@example.com", FullName: "Alice"}, "secret1")

	type event struct {
		kind string
		auth bool
		user *identity.User
	}
	var events []event

	authSub := f.manager.Authenticated().Subscribe(context.Background())
	idSub := f.manager.Identity().Subscribe(context.Background())
	drainLatest(t, authSub) // discard boot replay
	drainLatest(t, idSub)

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	events = append(events, event{kind: "auth", auth: drainLatest(t, authSub)})
	events = append(events, event{kind: "identity", user: drainLatest(t, idSub)})

	_, err = f.manager.FetchIdentity(context.Background(), id)
	require.NoError(t, err)
	events = append(events, event{kind: "identity", user: drainLatest(t, idSub)})

	// authenticated=true arrives strictly before the enriched record.
	require.Len(t, events, 3)
	assert.Equal(t, "auth", events[0].kind)
	assert.True(t, events[0].auth)
	assert.Empty(t, events[1].user.Email, "first identity emission is the minimal projection")
	assert.Equal(t, "a@example.com", events[2].user.Email, "second emission is enriched")
	assert.Equal(t, "Alice", events[2].user.FullName)
}

func TestFetchIdentity_OverwritesPersistedIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice", Email: "a@example.com", FullName: "Alice", Role: identity.RoleAdmin}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	current := f.manager.CurrentIdentity()
	require.NotNil(t, current)
	assert.Empty(t, current.Role)

	fetched, err := f.manager.FetchIdentity(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, fetched.Role)

	creds, err := f.store.Load()
	require.NoError(t, err)
	require.NotNil(t, creds.User)
	assert.Equal(t, identity.RoleAdmin, creds.User.Role)
	assert.Equal(t, "a@example.com", creds.User.Email)
	assert.True(t, creds.HasToken(), "token survives identity enrichment")
}

func TestFetchIdentity_Unauthorized(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice"}, "secret1")

	_, err := f.manager.FetchIdentity(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestRegister_NoSessionSideEffects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	resp, err := f.manager.Register(context.Background(), apiclient.RegisterRequest{
		FullName: "Bob Example",
		Username: "bob",
		Email:    "b@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, identity.RoleStandard, resp.Role)

	assert.Empty(t, f.manager.Token())
	assert.Nil(t, f.manager.CurrentIdentity())
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.SeedUser(identity.User{Username: "alice", Email: "a@example.com"}, "secret1")

	_, err := f.manager.Register(context.Background(), apiclient.RegisterRequest{
		FullName: "Alice Two",
		Username: "alice",
		Email:    "a2@example.com",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrConflict)
}

func TestUpdateIdentity_RefetchesAuthoritativeRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice", Email: "a@example.com", FullName: "Alice"}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	updated, err := f.manager.UpdateIdentity(context.Background(), id, apiclient.UpdateRequest{
		FullName: "Alice Renamed",
		Email:    "new@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Renamed", updated.FullName)
	assert.Equal(t, "new@example.com", updated.Email)

	// The mirror carries the server copy, not the patch echo.
	current := f.manager.CurrentIdentity()
	require.NotNil(t, current)
	assert.Equal(t, "Alice Renamed", current.FullName)
}

func TestDeleteIdentity_SelfImpliesEndSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice", Email: "a@example.com"}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, f.manager.Token())

	// EndSession must be observable before DeleteIdentity returns.
	require.NoError(t, f.manager.DeleteIdentity(context.Background(), id))

	assert.Empty(t, f.manager.Token())
	assert.Nil(t, f.manager.CurrentIdentity())
	auth, _ := f.manager.Authenticated().Latest()
	assert.False(t, auth)

	creds, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, creds.HasToken())
	assert.Nil(t, creds.User)
}

func TestDeleteIdentity_OtherUserKeepsSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.SeedUser(identity.User{Username: "root", Role: identity.RoleAdmin}, "secret1")
	otherID := f.backend.SeedUser(identity.User{Username: "bob", Email: "b@example.com"}, "secret2")

	_, err := f.manager.Exchange(context.Background(), "root", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.manager.DeleteIdentity(context.Background(), otherID))

	assert.NotEmpty(t, f.manager.Token(), "deleting another user must not end the session")
	require.NotNil(t, f.manager.CurrentIdentity())
	assert.Equal(t, "root", f.manager.CurrentIdentity().Username)
}

func TestEndSession_IdempotentAndComplete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.SeedUser(identity.User{Username: "alice"}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	f.manager.EndSession()
	f.manager.EndSession() // same observable end state as once

	auth, ok := f.manager.Authenticated().Latest()
	require.True(t, ok)
	assert.False(t, auth)
	assert.Nil(t, f.manager.CurrentIdentity())
	assert.Empty(t, f.manager.Token())

	creds, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, creds.HasToken())
	assert.Nil(t, creds.User)
}

func TestEndSession_FromColdStateStillBroadcasts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.manager.EndSession()

	auth, ok := f.manager.Authenticated().Latest()
	require.True(t, ok)
	assert.False(t, auth)
}

func TestNew_SeedsFromPersistedStore(t *testing.T) {
	t.Parallel()

	backend := apitest.NewServer()
	t.Cleanup(backend.Close)

	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(credstore.Credentials{
		AccessToken: "stale-but-trusted",
		User:        &identity.User{ID: "u1", Username: "alice", Role: identity.RoleAdmin},
	}))

	client, err := apiclient.New(backend.URL())
	require.NoError(t, err)

	// Reload: the persisted identity is trusted without server validation.
	manager := session.New(session.WithAPIClient(client), session.WithStore(store))
	t.Cleanup(func() { _ = manager.Close() })

	auth, ok := manager.Authenticated().Latest()
	require.True(t, ok)
	assert.True(t, auth)

	current := manager.CurrentIdentity()
	require.NotNil(t, current)
	assert.Equal(t, "alice", current.Username)
	assert.True(t, current.IsAdmin())
}

func TestCurrentIdentity_CopyOnRead(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.SeedUser(identity.User{Username: "alice"}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	snapshot := f.manager.CurrentIdentity()
	require.NotNil(t, snapshot)
	snapshot.Role = identity.RoleAdmin // must not leak into session state

	again := f.manager.CurrentIdentity()
	require.NotNil(t, again)
	assert.Empty(t, again.Role)
}

func TestExampleScenario_LoginBeforeEnrichment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.backend.SeedUser(identity.User{ID: "u1", Username: "alice", Email: "a@example.com"}, "secret1")

	user, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	// Even before FetchIdentity completes, the session is authenticated and
	// knows the minimal identity.
	assert.Equal(t, "u1", f.manager.CurrentIdentity().ID)
	auth, _ := f.manager.Authenticated().Latest()
	assert.True(t, auth)
	assert.Equal(t, "u1", user.ID)
}

func TestStaleTokenSurfacesUnauthorized(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.backend.SeedUser(identity.User{Username: "alice"}, "secret1")

	_, err := f.manager.Exchange(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	f.backend.RevokeToken(f.manager.Token())

	_, err = f.manager.FetchIdentity(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)

	// Detection does not auto-logout; re-authentication is the caller's move.
	auth, _ := f.manager.Authenticated().Latest()
	assert.True(t, auth)
}
