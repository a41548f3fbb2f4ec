package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/metrics"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrMalformedCatalog   = errors.New("catalog is not a JSON array of products")
)

// Status reports the outcome of the last catalog fetch.
type Status struct {
	Loaded bool
	Err    error
}

// Loader fetches the catalog once and serves it from memory afterwards.
// Concurrent callers share a single in-flight fetch. A failed fetch is not
// remembered as a result, so the next call tries again.
type Loader struct {
	source  Source
	timeout time.Duration
	log     *logger.Logger
	metrics *metrics.Metrics
	group   singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	lastErr  error
	products []product.Product
	byID     map[int]product.Product
}

type LoaderOption func(*Loader)

func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.timeout = d }
}

func WithMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

func NewLoader(source Source, log *logger.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: source,
		log:    log.Component("catalog"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Products returns the normalized catalog, fetching it on first use.
func (l *Loader) Products(ctx context.Context) ([]product.Product, error) {
	l.mu.RLock()
	if l.loaded {
		products := l.products
		l.mu.RUnlock()
		return products, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do("catalog", func() (any, error) {
		return l.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.Product), nil
}

// Product looks up one product by id.
func (l *Loader) Product(ctx context.Context, id int) (product.Product, error) {
	if _, err := l.Products(ctx); err != nil {
		return product.Product{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.byID[id]
	if !ok {
		return product.Product{}, product.ErrProductNotFound
	}
	return p, nil
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Status{Loaded: l.loaded, Err: l.lastErr}
}

func (l *Loader) fetch(ctx context.Context) ([]product.Product, error) {
	l.mu.RLock()
	if l.loaded {
		products := l.products
		l.mu.RUnlock()
		return products, nil
	}
	l.mu.RUnlock()

	// The fetch is shared by every waiting caller, so one caller going away must
	// not cancel it for the rest.
	fetchCtx := context.WithoutCancel(ctx)
	if l.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(fetchCtx, l.timeout)
		defer cancel()
	}

	products, err := l.load(fetchCtx)
	l.metrics.IncCatalogFetch(err == nil)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.lastErr = err
		l.log.Error(ctx, fmt.Sprintf("catalog fetch from %s failed", l.source), err)
		return nil, err
	}

	l.products = products
	l.byID = make(map[int]product.Product, len(products))
	for _, p := range products {
		l.byID[p.ID] = p
	}
	l.loaded = true
	l.lastErr = nil
	l.log.Info(ctx, fmt.Sprintf("catalog loaded: %d products from %s", len(products), l.source))
	return products, nil
}

func (l *Loader) load(ctx context.Context) ([]product.Product, error) {
	data, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	var raw []product.Product
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrCatalogUnavailable, ErrMalformedCatalog, err)
	}

	products, skipped := product.NormalizeAll(raw)
	for _, err := range skipped {
		l.log.Warn(ctx, fmt.Sprintf("skipping catalog record: %v", err))
	}
	return products, nil
}
