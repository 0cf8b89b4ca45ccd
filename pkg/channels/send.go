// Package channels holds generic helpers for fan-out over Go channels.
package channels

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrChannelClosed is returned when sending on a closed channel.
	ErrChannelClosed = errors.New("channel closed")
	// ErrChannelTimeout is returned when a bounded send gives up.
	ErrChannelTimeout = errors.New("send timeout")
	// ErrChannelFull is returned by SendNonBlock when no receiver is ready.
	ErrChannelFull = errors.New("channel full")
)

// SendNonBlock sends msg only if ch can take it right now.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer recoverClosed(&err)

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendWithTimeout waits up to timeout for ch to take msg.
func SendWithTimeout[T any](ch chan<- T, msg T, timeout time.Duration) error {
	return SendContext(context.Background(), ch, msg, timeout)
}

// SendContext waits up to timeout for ch to take msg, and gives up early
// with ctx.Err() when ctx is done. A non-positive timeout waits on ctx alone.
func SendContext[T any](ctx context.Context, ch chan<- T, msg T, timeout time.Duration) (err error) {
	defer recoverClosed(&err)

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case ch <- msg:
		return nil
	case <-expired:
		return ErrChannelTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recoverClosed turns the panic from sending on a closed channel into
// ErrChannelClosed.
func recoverClosed(err *error) {
	if r := recover(); r != nil {
		*err = ErrChannelClosed
	}
}
