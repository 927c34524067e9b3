package player

import (
	"sync"
)

// Stream is a broadcast stream of values. It is open after construction,
// closed exactly once, and absorbs publishes after close without panicking.
// Slow subscribers drop messages rather than block the publisher.
type Stream[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewStream creates an open stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new subscriber with the given buffer size and
// returns its channel plus a cancel function. Subscribing to a closed
// stream returns an already-closed channel.
func (s *Stream[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = 16
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, buffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers v to every subscriber. Publishing to a closed stream is
// a silent no-op. A subscriber whose buffer is full misses the value.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close closes the stream and every subscriber channel. Safe to call more
// than once.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// Closed reports whether the stream has been closed.
func (s *Stream[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Streams bundles the three public streams one controller owns. They are
// created before the bridge and the facade so both receive them at
// construction; nothing is installed after the fact.
type Streams struct {
	Status *Stream[Status]
	Times  *Stream[TimeUpdate]
	Events *Stream[Event]
}

// NewStreams creates the three open streams for one player instance.
func NewStreams() *Streams {
	return &Streams{
		Status: NewStream[Status](),
		Times:  NewStream[TimeUpdate](),
		Events: NewStream[Event](),
	}
}

// Close closes all three streams. Idempotent.
func (s *Streams) Close() {
	s.Status.Close()
	s.Times.Close()
	s.Events.Close()
}
