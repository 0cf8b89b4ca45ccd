package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// inputBuffer is the capacity of the channel returned by Run.
const inputBuffer = 64

// subscriber holds a channel and its send timeout configuration.
type subscriber[T any] struct {
	ch       chan<- T
	timeout  *time.Duration // nil means non-blocking
	inactive atomic.Bool
	dropped  atomic.Int32
}

func (s *subscriber[T]) send(msg T) {
	if s.inactive.Load() {
		s.dropped.Add(1)
		return
	}
	var err error
	if s.timeout != nil {
		// Send with timeout
		err = SendWithTimeout(s.ch, msg, *s.timeout)
	} else {
		// Non-blocking send.
		err = SendNonBlock(s.ch, msg)
	}
	if err != nil {
		// if channel is closed, mark inactive
		// otherwise just count dropped messages
		s.dropped.Add(1)
		if errors.Is(err, ErrChannelClosed) {
			s.inactive.Store(true)
		}
	}
}

// Broadcaster broadcasts messages from a single input channel to multiple subscriber channels.
// It owns the input channel and handles graceful shutdown via context cancellation.
//
// Messages are sent to subscribers using the configured send strategy:
// - Non-blocking (default): Messages are dropped if channel is full
// - With timeout: Messages are dropped if send times out
//
// Subscribers may come and go while the broadcaster runs. On context
// cancellation, the input channel is closed and all remaining messages
// are drained to subscribers before shutdown completes.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers []*subscriber[T]
	input       chan T
	started     atomic.Bool
	wg          sync.WaitGroup
}

// NewBroadcaster creates a new Broadcaster instance with subscribers for the given type T.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe adds a channel to receive broadcasted messages in non-blocking mode.
// If the channel is full, messages will be dropped for that subscriber.
func (f *Broadcaster[T]) Subscribe(ch chan<- T) error {
	if ch == nil {
		return errors.New("subscriber channel cannot be nil")
	}

	f.add(&subscriber[T]{ch: ch, timeout: nil})

	return nil
}

// SubscribeWithTimeout adds a channel to receive broadcasted messages with a send timeout.
// If the send times out, messages will be dropped for that subscriber.
func (f *Broadcaster[T]) SubscribeWithTimeout(ch chan<- T, timeout time.Duration) error {
	if ch == nil {
		return errors.New("subscriber channel cannot be nil")
	}

	if timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	f.add(&subscriber[T]{ch: ch, timeout: &timeout})

	return nil
}

// Unsubscribe removes ch. The channel is not closed; the caller owns it.
// Returns false if ch was not subscribed.
func (f *Broadcaster[T]) Unsubscribe(ch chan<- T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, sub := range f.subscribers {
		if sub.ch == ch {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			return true
		}
	}

	return false
}

func (f *Broadcaster[T]) add(sub *subscriber[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subscribers = append(f.subscribers, sub)
}

// Run starts the broadcaster and returns the input channel for sending messages.
//
// The returned channel is owned by Broadcaster and will be closed on context cancellation.
// After closure, all remaining messages are drained to subscribers.
//
// Returns error if already started.
func (f *Broadcaster[T]) Run(ctx context.Context) (chan<- T, error) {
	if !f.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("broadcaster already started")
	}

	f.input = make(chan T, inputBuffer)

	// Start broadcaster goroutine
	f.wg.Go(func() {
		// Read each message from input
		for msg := range f.input {
			f.mu.RLock()
			// Broadcast to all subscribers
			for _, sub := range f.subscribers {
				sub.send(msg)
			}
			f.mu.RUnlock()
		}
	})

	// Shutdown handler: close input and wait for drain to complete
	go func() {
		<-ctx.Done()
		close(f.input)
		f.wg.Wait()
	}()

	return f.input, nil
}

// Wait blocks until all subscribers have finished processing messages.
// This is useful for waiting for graceful shutdown to complete after
// the context is cancelled. Multiple goroutines can safely call Wait().
func (f *Broadcaster[T]) Wait() {
	f.wg.Wait()
}

type SubscriberStats struct {
	Dropped  int
	Inactive bool
}

func (f *Broadcaster[T]) Stats() []SubscriberStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	stats := make([]SubscriberStats, 0, len(f.subscribers))
	for _, sub := range f.subscribers {
		stats = append(stats, SubscriberStats{
			Dropped:  int(sub.dropped.Load()),
			Inactive: sub.inactive.Load(),
		})
	}
	return stats
}
