// Package channel provides the unbounded, ordered, one-way queues that carry
// events from a controller to the host and responses back.
//
// Go channels are bounded, so a send could block the host thread once the
// buffer fills. These queues never block on send and report a closed peer as
// ErrDisconnected instead of panicking.
package channel

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrDisconnected is returned when the peer endpoint has been closed.
	ErrDisconnected = errors.New("channel: peer disconnected")

	// ErrEmpty is returned by TryReceive when nothing is pending.
	ErrEmpty = errors.New("channel: empty")
)

type queue[T any] struct {
	mu    sync.Mutex
	items []T

	// ready holds at most one wakeup token for the single receiver.
	ready chan struct{}

	senderGone   chan struct{}
	receiverGone chan struct{}
	senderOnce   sync.Once
	receiverOnce sync.Once
}

// Sender is the sending endpoint of a queue. It is safe for concurrent use.
type Sender[T any] struct {
	q *queue[T]
}

// Receiver is the receiving endpoint of a queue. It must be used by a
// single goroutine at a time.
type Receiver[T any] struct {
	q *queue[T]
}

// New creates a connected sender/receiver pair.
func New[T any]() (*Sender[T], *Receiver[T]) {
	q := &queue[T]{
		ready:        make(chan struct{}, 1),
		senderGone:   make(chan struct{}),
		receiverGone: make(chan struct{}),
	}
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Send appends v to the queue. It never blocks and fails only when the
// receiver has been closed.
func (s *Sender[T]) Send(v T) error {
	select {
	case <-s.q.receiverGone:
		return ErrDisconnected
	default:
	}

	s.q.mu.Lock()
	s.q.items = append(s.q.items, v)
	s.q.mu.Unlock()

	select {
	case s.q.ready <- struct{}{}:
	default:
		// A wakeup is already pending.
	}
	return nil
}

// Close marks the sender as gone. Values already queued can still be
// received. Safe to call multiple times.
func (s *Sender[T]) Close() {
	s.q.senderOnce.Do(func() {
		close(s.q.senderGone)
	})
}

// TryReceive returns the next value without waiting. It returns ErrEmpty when
// nothing is pending and ErrDisconnected when the sender is gone and the
// queue is drained.
func (r *Receiver[T]) TryReceive() (T, error) {
	if v, ok := r.q.pop(); ok {
		return v, nil
	}

	var zero T
	select {
	case <-r.q.senderGone:
		// The sender may have queued a last value before closing.
		if v, ok := r.q.pop(); ok {
			return v, nil
		}
		return zero, ErrDisconnected
	default:
		return zero, ErrEmpty
	}
}

// Receive waits indefinitely for the next value. It fails only when the
// sender is gone and the queue is drained.
func (r *Receiver[T]) Receive() (T, error) {
	return r.ReceiveContext(context.Background())
}

// ReceiveContext is Receive with cancellation, for controller-side readers.
func (r *Receiver[T]) ReceiveContext(ctx context.Context) (T, error) {
	var zero T
	for {
		v, err := r.TryReceive()
		if !errors.Is(err, ErrEmpty) {
			return v, err
		}

		select {
		case <-r.q.ready:
		case <-r.q.senderGone:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len reports the number of queued values.
func (r *Receiver[T]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Discard drops every queued value and returns how many were dropped.
func (r *Receiver[T]) Discard() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	n := len(r.q.items)
	clear(r.q.items)
	r.q.items = r.q.items[:0]
	return n
}

// Close marks the receiver as gone; later sends fail with ErrDisconnected.
// Safe to call multiple times.
func (r *Receiver[T]) Close() {
	r.q.receiverOnce.Do(func() {
		close(r.q.receiverGone)
	})
}

func (q *queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}
