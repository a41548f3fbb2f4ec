package state

import (
	"sync"
	"time"
)

// DefaultToastTTL is how long a toast lives before it is removed.
const DefaultToastTTL = 3000 * time.Millisecond

// Listener observes every dispatched action. Listeners run synchronously, in
// registration order, while the store's lock is held: they must not dispatch.
type Listener func(Transition)

// Store holds one profile's state and serializes dispatches.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []listenerEntry
	nextID    int

	toastTTL time.Duration
	toastSeq int64
	timers   map[int64]*time.Timer
	closed   bool
}

type listenerEntry struct {
	id int
	fn Listener
}

type Option func(*Store)

// WithToastTTL overrides DefaultToastTTL.
func WithToastTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.toastTTL = ttl
		}
	}
}

func NewStore(initial State, opts ...Option) *Store {
	s := &Store{
		state:    initial,
		toastTTL: DefaultToastTTL,
		timers:   make(map[int64]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and notifies listeners. It returns the new state.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(action)
}

func (s *Store) dispatchLocked(action Action) State {
	prev := s.state
	s.state = Reduce(prev, action)
	t := Transition{Action: action, Prev: prev, Next: s.state}
	for _, l := range s.listeners {
		l.fn(t)
	}
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.listeners {
			if entry.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Toast adds a notification that removes itself after the toast TTL. A closed
// store ignores toasts and returns the zero Toast.
func (s *Store) Toast(message string, typ ToastType) Toast {
	if typ == "" {
		typ = ToastSuccess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Toast{}
	}

	s.toastSeq++
	toast := Toast{ID: s.toastSeq, Message: message, Type: typ}
	s.dispatchLocked(AddToast{Toast: toast})

	id := toast.ID
	s.timers[id] = time.AfterFunc(s.toastTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, pending := s.timers[id]; !pending {
			return
		}
		delete(s.timers, id)
		s.dispatchLocked(RemoveToast{ID: id})
	})
	return toast
}

// Close cancels pending toast timers. The store stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
