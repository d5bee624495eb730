// Package signal provides type-safe, replay-latest value broadcasting.
//
// A Signal holds at most one current value. Subscribers receive every value
// set after they subscribe and, if a value was ever set, the most recent one
// immediately on subscription. This makes a Signal suitable for state that
// consumers may start observing at any point in the process lifetime, such
// as authentication status or the current user identity.
//
// Sends are non-blocking: a subscriber whose buffer is full misses the
// update and is detached rather than stalling the producer. The latest value
// is always available synchronously through Latest, so a detached or late
// consumer can still recover the current state.
//
// # Usage
//
//	authenticated := signal.New[bool](8)
//	defer authenticated.Close()
//
//	sub := authenticated.Subscribe(ctx)
//	authenticated.Set(true)
//
//	for msg := range sub.Receive(ctx) {
//	    // msg.Data is true
//	}
//
// All methods are safe for concurrent use.
package signal
