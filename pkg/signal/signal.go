package signal

import (
	"context"
	"sync"
)

// Message wraps a value of type T delivered to a subscriber.
type Message[T any] struct {
	Data T
}

// Subscriber receives values from a Signal.
// Implementations are safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel on which broadcast values arrive.
	// The context parameter is kept for interface symmetry with
	// adapter-backed implementations; the in-memory subscriber ignores it.
	Receive(ctx context.Context) <-chan Message[T]

	// Close closes the subscriber. After Close the receive channel is
	// closed and no further values are delivered. Close is idempotent.
	Close() error
}

type subscriber[T any] struct {
	ch     chan Message[T]
	closed bool
	mu     sync.RWMutex
}

func newSubscriber[T any](bufferSize int) *subscriber[T] {
	return &subscriber[T]{
		ch: make(chan Message[T], bufferSize),
	}
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Signal broadcasts values to subscribers and replays the most recent value
// to anyone subscribing after it was set. The zero value is not usable; use
// New.
type Signal[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	latest      T
	hasLatest   bool
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// New creates a Signal whose subscribers buffer up to bufferSize pending
// values. A minimum buffer of 1 is enforced so that the replayed value can
// always be delivered without blocking.
func New[T any](bufferSize int) *Signal[T] {
	return &Signal[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a new subscriber. If a value has ever been set, it is
// delivered immediately (replay-one). The subscription is removed when ctx
// is cancelled. Subscribing to a closed Signal returns an already-closed
// subscriber.
func (s *Signal[T]) Subscribe(ctx context.Context) Subscriber[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := newSubscriber[T](s.bufferSize)
	if s.closed {
		_ = sub.Close()
		return sub
	}

	s.subscribers[sub] = struct{}{}

	// Replay before any later Set can race ahead; the buffer is at least 1
	// so this never blocks.
	if s.hasLatest {
		sub.send(Message[T]{Data: s.latest})
	}

	if ctx.Done() != nil {
		s.cleanupWg.Add(1)
		go func() {
			defer s.cleanupWg.Done()
			select {
			case <-ctx.Done():
				s.unsubscribe(sub)
			case <-s.done:
			}
		}()
	}

	return sub
}

// Set stores v as the latest value and broadcasts it to all subscribers.
// Subscribers with full buffers miss the value and are detached; they can
// resynchronize through Latest. Set on a closed Signal is a no-op.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.latest = v
	s.hasLatest = true

	// Deliver while holding the lock so subscribers observe values strictly
	// in set order. Sends never block; slow subscribers are detached
	// asynchronously to avoid self-deadlock on the write lock.
	for sub := range s.subscribers {
		if !sub.send(Message[T]{Data: v}) {
			s.cleanupWg.Add(1)
			go func(sub *subscriber[T]) {
				defer s.cleanupWg.Done()
				s.unsubscribe(sub)
			}(sub)
		}
	}
	s.mu.Unlock()
}

// Latest returns the most recent value and whether any value was ever set.
func (s *Signal[T]) Latest() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

// Close shuts down the Signal and closes all subscribers. Safe to call more
// than once.
func (s *Signal[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)

	for sub := range s.subscribers {
		_ = sub.Close()
	}
	clear(s.subscribers)
	s.mu.Unlock()

	s.cleanupWg.Wait()
	return nil
}

func (s *Signal[T]) unsubscribe(sub *subscriber[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscribers, sub)
	_ = sub.Close()
}
