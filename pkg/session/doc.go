// Package session is the authority for two questions: is a session active,
// and who is the current user. Every answer consumers can observe flows
// through the Manager, which mediates all reads and writes of the credential
// store and broadcasts state over two independently subscribable
// replay-latest signals, one boolean (authenticated) and one carrying the
// current identity.
//
// # State transitions
//
// Exchange persists the token plus a minimal identity (id and username only)
// and flips authenticated before the identity signal fires; the enriched
// record arrives later via FetchIdentity, which overwrites both the
// persisted and in-memory identity with the authoritative server copy.
// UpdateIdentity re-fetches after a successful patch instead of trusting the
// echo. DeleteIdentity of the current user ends the session before
// returning. EndSession is synchronous, idempotent and network-free.
//
// Within a single call, persistence strictly precedes broadcast and both
// happen under one lock, so no consumer can observe a token without the
// matching stored identity. There is no cross-call ordering guarantee: two
// mutations racing on the network resolve last-response-wins.
//
// # Reload staleness
//
// New seeds both signals from the persisted store without contacting the
// server, so a restart can resurrect an identity whose token has since been
// invalidated. The first authorized call then fails with
// apiclient.ErrUnauthorized and re-authentication is the only recovery; no
// refresh protocol exists.
//
// # Construction
//
// The Manager is an explicitly constructed, injectable instance; nothing in
// this package is process-global.
//
//	manager := session.New(
//	    session.WithAPIClient(client),
//	    session.WithStore(fileStore),
//	)
//	defer manager.Close()
package session
