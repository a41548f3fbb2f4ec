package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/activity"
	"github.com/example/storefront/internal/infrastructure/storage"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/state"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

// Publisher receives an activity event for every transition that changed a
// cart or wishlist.
type Publisher interface {
	Publish(ctx context.Context, event activity.Event) error
}

type writeKey struct {
	profileID string
	key       string
}

// Syncer persists state changes in the background. Transitions are encoded when
// they happen and handed to a single worker without blocking the dispatcher.
// Pending writes coalesce per profile and key, so a slow backend only ever
// holds the latest value. Activity events queue up to the configured size and
// are dropped beyond it.
type Syncer struct {
	backend   storage.Backend
	publisher Publisher
	log       *logger.Logger
	metrics   *metrics.Metrics
	timeout   time.Duration
	now       func() time.Time
	maxEvents int

	mu      sync.Mutex
	closed  bool
	pending map[writeKey]string
	order   []writeKey
	events  []activity.Event
	wake    chan struct{}
	done    chan struct{}
}

type SyncerOption func(*Syncer)

func WithPublisher(p Publisher) SyncerOption {
	return func(s *Syncer) { s.publisher = p }
}

func WithSyncMetrics(m *metrics.Metrics) SyncerOption {
	return func(s *Syncer) { s.metrics = m }
}

// WithQueueSize caps how many activity events may wait for the worker.
func WithQueueSize(n int) SyncerOption {
	return func(s *Syncer) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

func WithClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) { s.now = now }
}

// NewSyncer starts the write worker. Call Close to flush and stop it.
func NewSyncer(backend storage.Backend, log *logger.Logger, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		backend:   backend,
		log:       log.Component("syncer"),
		timeout:   defaultWriteTimeout,
		now:       time.Now,
		maxEvents: defaultQueueSize,
		pending:   make(map[writeKey]string),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Listener returns the state listener that persists profileID's changes.
func (s *Syncer) Listener(profileID string) state.Listener {
	return func(t state.Transition) {
		cartChanged := t.CartChanged()
		wishlistChanged := t.WishlistChanged()
		if !cartChanged && !wishlistChanged {
			return
		}

		writes := make(map[string]string, 2)
		if cartChanged {
			value, err := EncodeCart(t.Next.Cart)
			if err != nil {
				s.log.Error(context.Background(), "encoding cart for "+profileID, err)
			} else {
				writes[KeyCart] = value
			}
		}
		if wishlistChanged {
			value, err := EncodeWishlist(t.Next.Wishlist)
			if err != nil {
				s.log.Error(context.Background(), "encoding wishlist for "+profileID, err)
			} else {
				writes[KeyWishlist] = value
			}
		}
		var event *activity.Event
		if s.publisher != nil {
			event = &activity.Event{
				ProfileID:     profileID,
				Action:        t.Action.Type(),
				CartCount:     t.Next.Cart.Count(),
				WishlistCount: len(t.Next.Wishlist),
				At:            s.now().UTC(),
			}
		}
		s.enqueue(profileID, writes, event)
	}
}

// enqueue runs under the dispatching store's lock and never blocks on the worker.
func (s *Syncer) enqueue(profileID string, writes map[string]string, event *activity.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn(context.Background(), "syncer closed, dropping state write")
		return
	}
	for _, key := range []string{KeyCart, KeyWishlist} {
		value, ok := writes[key]
		if !ok {
			continue
		}
		k := writeKey{profileID: profileID, key: key}
		if _, queued := s.pending[k]; !queued {
			s.order = append(s.order, k)
		}
		s.pending[k] = value
	}
	dropped := false
	if event != nil {
		if len(s.events) < s.maxEvents {
			s.events = append(s.events, *event)
		} else {
			dropped = true
		}
	}
	s.mu.Unlock()

	if dropped {
		s.metrics.IncActivityDrop()
		s.log.Warn(s.log.WithProfileID(context.Background(), profileID), "activity queue full, dropping event")
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

type write struct {
	writeKey
	value string
}

// take hands everything pending to the worker.
func (s *Syncer) take() ([]write, []activity.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writes := make([]write, 0, len(s.order))
	for _, k := range s.order {
		writes = append(writes, write{writeKey: k, value: s.pending[k]})
	}
	clear(s.pending)
	s.order = nil
	events := s.events
	s.events = nil
	return writes, events, s.closed
}

func (s *Syncer) run() {
	defer close(s.done)
	for {
		writes, events, closed := s.take()
		for _, w := range writes {
			s.write(w)
		}
		for _, e := range events {
			s.publish(e)
		}
		if len(writes) > 0 || len(events) > 0 {
			continue
		}
		if closed {
			return
		}
		<-s.wake
	}
}

func (s *Syncer) write(w write) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = s.log.WithProfileID(ctx, w.profileID)

	err := s.backend.Set(ctx, w.profileID, w.key, w.value)
	s.metrics.IncStorageWrite(w.key, err == nil)
	if err != nil {
		s.log.Error(ctx, "persisting "+w.key, err)
	}
}

func (s *Syncer) publish(e activity.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = s.log.WithProfileID(ctx, e.ProfileID)

	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Error(ctx, "publishing activity event", err)
	}
}

// Close stops accepting writes, waits for pending ones to finish and stops the worker.
func (s *Syncer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	<-s.done
}
