// Package credstore persists the client's bearer token and the last known
// user identity across process restarts.
//
// The store is a single durable slot: the token and the serialized identity
// are saved and cleared together, never independently, so a reader can never
// observe one without the other having been written by the same operation.
// Writes are atomic at the slot granularity; a reader racing a writer sees
// either the old or the new credentials, never a torn mix.
//
// Only the session manager writes the store. Any component may read it, in
// particular the bearer transport, which consults the token at send time.
//
// Two implementations ship with the package: FileStore, which mirrors the
// slot into a JSON file via an atomic rename, and MemoryStore for tests and
// embedding.
package credstore
