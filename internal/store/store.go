// Package store implements a persisted reactive value: a named scalar whose
// observers are notified synchronously on every change and whose value is
// written through to a durable storage slot.
//
// Sync is one-way. The slot is read once, at construction; later writes to
// the slot by anything else are not observed.
package store

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ppiankov/findings/internal/storage"
)

// DefaultWarnInterval bounds how often storage failures are logged at warn level.
const DefaultWarnInterval = 30 * time.Second

// Observer receives the current value; ok is false when the store is empty.
type Observer[T any] func(value T, ok bool)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	warnInterval time.Duration
}

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWarnInterval sets the minimum spacing between warn-level failure logs.
func WithWarnInterval(d time.Duration) Option {
	return func(o *options) {
		o.warnInterval = d
	}
}

// Store is a persisted reactive value. The zero value is not usable; call New.
//
// Notifications are queued and delivered one full pass at a time, in the
// order the changes happened. Observers may call Set, Clear or Subscribe
// themselves: the nested change is applied at once and its pass runs after
// the current one finishes. Only one goroutine delivers at a time; a change
// made while another goroutine is delivering is handed to that goroutine.
type Store[T any] struct {
	key     string
	backend storage.Storage
	codec   Codec[T]
	log     *zap.Logger
	warn    *rate.Sometimes

	mu        sync.Mutex
	value     T
	present   bool
	observers []subscription[T]
	nextID    uint64
	pending   []delivery[T]
	notifying bool
}

type subscription[T any] struct {
	id uint64
	fn Observer[T]
}

// delivery is one queued notification pass: a value and the observers
// registered when it was produced.
type delivery[T any] struct {
	value     T
	ok        bool
	observers []Observer[T]
}

// New creates a store for the slot key, hydrated from backend. It never
// fails: unreadable or undecodable slots are logged and the store starts
// empty. A nil backend behaves like storage.Noop.
func New[T any](key string, backend storage.Storage, codec Codec[T], opts ...Option) *Store[T] {
	o := options{
		logger:       zap.NewNop(),
		warnInterval: DefaultWarnInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if backend == nil {
		backend = storage.Noop{}
	}

	s := &Store[T]{
		key:     key,
		backend: backend,
		codec:   codec,
		log:     o.logger.With(zap.String("key", key)),
		warn:    &rate.Sometimes{Interval: o.warnInterval},
	}
	s.hydrate()
	return s
}

// Key returns the storage slot name.
func (s *Store[T]) Key() string {
	return s.key
}

// Persistent reports whether changes survive the process.
func (s *Store[T]) Persistent() bool {
	return storage.Persistent(s.backend)
}

// Get returns the current value.
func (s *Store[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.present
}

// Subscribe registers fn and calls it with the current value. The call is
// immediate unless a notification pass is in progress, in which case it is
// queued behind that pass. The returned function removes the subscription;
// calling it more than once is harmless.
func (s *Store[T]) Subscribe(fn Observer[T]) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription[T]{id: id, fn: fn})
	s.enqueue(delivery[T]{value: s.value, ok: s.present, observers: []Observer[T]{fn}})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// Set replaces the value, writes it to the slot and notifies every observer.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	s.value, s.present = value, true
	s.write(value)
	s.enqueue(delivery[T]{value: value, ok: true, observers: s.snapshot()})
}

// Clear empties the value, deletes the slot and notifies every observer.
func (s *Store[T]) Clear() {
	var zero T

	s.mu.Lock()
	s.value, s.present = zero, false
	if err := s.backend.Delete(s.key); err != nil {
		s.failure("delete", err)
	}
	s.enqueue(delivery[T]{value: zero, ok: false, observers: s.snapshot()})
}

// enqueue must be called with mu held and releases it. The caller becomes
// the deliverer unless a pass is already running.
func (s *Store[T]) enqueue(d delivery[T]) {
	s.pending = append(s.pending, d)
	if s.notifying {
		s.mu.Unlock()
		return
	}
	s.notifying = true
	s.mu.Unlock()

	s.drain()
}

func (s *Store[T]) drain() {
	done := false
	defer func() {
		// A panicking observer must not leave the store stuck in a pass
		if !done {
			s.mu.Lock()
			s.pending = nil
			s.notifying = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.notifying = false
			s.mu.Unlock()
			done = true
			return
		}
		d := s.pending[0]
		s.pending[0] = delivery[T]{}
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, fn := range d.observers {
			fn(d.value, d.ok)
		}
	}
}

func (s *Store[T]) hydrate() {
	raw, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.failure("read", err)
		return
	}
	if !ok {
		return
	}

	value, err := s.codec.Decode(raw)
	if err != nil {
		s.failure("decode", err)
		return
	}
	s.value, s.present = value, true
}

// write must be called with mu held so slot writes land in Set order.
func (s *Store[T]) write(value T) {
	raw, err := s.codec.Encode(value)
	if err != nil {
		s.failure("encode", err)
		return
	}
	if err := s.backend.Set(s.key, raw); err != nil {
		s.failure("write", err)
	}
}

func (s *Store[T]) failure(op string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	s.log.Debug("storage operation failed", fields...)
	s.warn.Do(func() {
		s.log.Warn("storage operation failed, continuing in memory", fields...)
	})
}

func (s *Store[T]) snapshot() []Observer[T] {
	out := make([]Observer[T], len(s.observers))
	for i, sub := range s.observers {
		out[i] = sub.fn
	}
	return out
}

func (s *Store[T]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.observers {
		if sub.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}
