package profile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/storefront/internal/infrastructure/storage"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/persistence"
	"github.com/example/storefront/internal/state"
	"golang.org/x/sync/singleflight"
)

const defaultHydrateTimeout = 5 * time.Second

// Registry owns one state.Store per browser profile. A profile's store is
// hydrated from storage on first use and wired to the syncer. Storage stays the
// source of truth, so stores idle for longer than the idle TTL are dropped and
// rehydrated on their next use.
type Registry struct {
	backend        storage.Backend
	syncer         *persistence.Syncer
	log            *logger.Logger
	metrics        *metrics.Metrics
	toastTTL       time.Duration
	idleTTL        time.Duration
	hydrateTimeout time.Duration
	now            func() time.Time
	group          singleflight.Group

	mu     sync.RWMutex
	stores map[string]*entry
}

type entry struct {
	store    *state.Store
	lastUsed atomic.Int64 // unix nanoseconds
}

type Option func(*Registry)

func WithToastTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.toastTTL = ttl }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithIdleTTL sets how long an unused store is kept. Zero keeps stores until Close.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.idleTTL = ttl }
}

func WithHydrateTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.hydrateTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(backend storage.Backend, syncer *persistence.Syncer, log *logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		backend:        backend,
		syncer:         syncer,
		log:            log.Component("profiles"),
		toastTTL:       state.DefaultToastTTL,
		hydrateTimeout: defaultHydrateTimeout,
		now:            time.Now,
		stores:         make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the profile's store, hydrating it on first use. Concurrent first
// requests for the same profile share one hydration.
func (r *Registry) Store(ctx context.Context, profileID string) (*state.Store, error) {
	r.mu.RLock()
	e, ok := r.stores[profileID]
	r.mu.RUnlock()
	if ok {
		e.lastUsed.Store(r.now().UnixNano())
		return e.store, nil
	}

	v, err, _ := r.group.Do(profileID, func() (any, error) {
		// Shared by every waiter, so the first caller going away must not cancel it.
		hydrateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.hydrateTimeout)
		defer cancel()
		return r.hydrate(hydrateCtx, profileID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*state.Store), nil
}

func (r *Registry) hydrate(ctx context.Context, profileID string) (*state.Store, error) {
	r.mu.RLock()
	e, ok := r.stores[profileID]
	r.mu.RUnlock()
	if ok {
		e.lastUsed.Store(r.now().UnixNano())
		return e.store, nil
	}

	ctx = r.log.WithProfileID(ctx, profileID)
	initial, err := persistence.Hydrate(ctx, r.backend, profileID, r.log)
	if err != nil {
		return nil, fmt.Errorf("hydrate profile: %w", err)
	}

	s := state.NewStore(initial, state.WithToastTTL(r.toastTTL))
	s.Subscribe(func(t state.Transition) {
		r.metrics.IncAction(t.Action.Type())
	})
	if r.syncer != nil {
		s.Subscribe(r.syncer.Listener(profileID))
	}

	e = &entry{store: s}
	e.lastUsed.Store(r.now().UnixNano())
	r.mu.Lock()
	r.stores[profileID] = e
	n := len(r.stores)
	r.mu.Unlock()

	r.metrics.SetActiveProfiles(n)
	r.log.Debug(ctx, fmt.Sprintf("hydrated profile: %d cart lines, %d wishlist items", len(initial.Cart), len(initial.Wishlist)))
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// Evict closes and drops every store unused for longer than the idle TTL and
// returns how many were dropped. Their changes already went through the syncer.
func (r *Registry) Evict() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL).UnixNano()

	r.mu.Lock()
	var idle []*state.Store
	for id, e := range r.stores {
		if e.lastUsed.Load() < cutoff {
			idle = append(idle, e.store)
			delete(r.stores, id)
		}
	}
	n := len(r.stores)
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		r.metrics.SetActiveProfiles(n)
		r.metrics.AddEvictions(len(idle))
		r.log.Debug(context.Background(), fmt.Sprintf("evicted %d idle profiles, %d remain", len(idle), n))
	}
	return len(idle)
}

// Run calls Evict every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

// Close tears down every store, cancelling pending toast timers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.stores {
		e.store.Close()
		delete(r.stores, id)
	}
	r.metrics.SetActiveProfiles(0)
}
