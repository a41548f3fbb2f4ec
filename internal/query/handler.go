package query

import (
	"context"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/infrastructure/storage"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/persistence"
	"github.com/example/storefront/internal/readmodel"
	"github.com/example/storefront/internal/state"
)

// ProductCatalog is the loaded product list.
type ProductCatalog interface {
	Products(ctx context.Context) ([]product.Product, error)
	Product(ctx context.Context, id int) (product.Product, error)
}

// Stores hands out per-profile state stores.
type Stores interface {
	Store(ctx context.Context, profileID string) (*state.Store, error)
}

type Handler struct {
	catalog  ProductCatalog
	pipeline *catalog.Pipeline
	stores   Stores
	backend  storage.Backend
	views    *persistence.Views
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(products ProductCatalog, pipeline *catalog.Pipeline, stores Stores, backend storage.Backend, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		catalog:  products,
		pipeline: pipeline,
		stores:   stores,
		backend:  backend,
		views:    persistence.NewViews(backend),
		log:      log.Component("query"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Products

// ListProducts runs a shop query string against the catalog. The returned page
// carries the canonical query string of the page actually shown.
func (h *Handler) ListProducts(ctx context.Context, rawQuery string) (*readmodel.ProductPageReadModel, error) {
	products, err := h.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	now := h.now()
	q := catalog.Decode(rawQuery)
	page := h.pipeline.Apply(products, q, now)
	h.metrics.ObserveQuery(time.Since(start), page.Total, page.Clamped)

	opts := h.pipeline.Options()
	items := make([]readmodel.ProductReadModel, len(page.Items))
	for i, p := range page.Items {
		items[i] = readmodel.NewProduct(p, now, opts.FreshnessWindow)
	}
	shown := q.WithPage(page.Page)
	return &readmodel.ProductPageReadModel{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   opts.PageSize,
		TotalPages: page.TotalPages,
		Sort:       string(shown.Sort),
		Query:      catalog.Encode(shown),
		Clamped:    page.Clamped,
	}, nil
}

// GetProduct returns one product. With a profile id the view is recorded in
// that profile's recently viewed list.
func (h *Handler) GetProduct(ctx context.Context, profileID string, id int) (*readmodel.ProductReadModel, error) {
	p, err := h.catalog.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	if profileID != "" {
		if _, err := h.views.Record(ctx, profileID, id); err != nil {
			h.log.Error(ctx, "recording recently viewed product", err)
		}
	}
	view := readmodel.NewProduct(p, h.now(), h.pipeline.Options().FreshnessWindow)
	return &view, nil
}

// GetRecent returns the recently viewed products that are still in the catalog,
// most recent first.
func (h *Handler) GetRecent(ctx context.Context, profileID string) ([]readmodel.ProductReadModel, error) {
	ids, err := persistence.LoadRecent(ctx, h.backend, profileID)
	if err != nil {
		return nil, err
	}
	byID, err := h.productIndex(ctx)
	if err != nil {
		return nil, err
	}

	now := h.now()
	window := h.pipeline.Options().FreshnessWindow
	items := make([]readmodel.ProductReadModel, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, readmodel.NewProduct(p, now, window))
		}
	}
	return items, nil
}

// Cart

// GetCart returns the cart with totals. Maximum quantities come from the live
// catalog when it is available and from the line snapshots otherwise.
func (h *Handler) GetCart(ctx context.Context, profileID string) (*readmodel.CartReadModel, error) {
	s, err := h.stores.Store(ctx, profileID)
	if err != nil {
		return nil, err
	}
	byID, err := h.productIndex(ctx)
	if err != nil {
		h.log.Warn(ctx, "catalog unavailable, using cart snapshots for stock")
	}
	view := readmodel.NewCart(s.State().Cart, byID)
	return &view, nil
}

// Wishlist

func (h *Handler) GetWishlist(ctx context.Context, profileID string) (*readmodel.WishlistReadModel, error) {
	s, err := h.stores.Store(ctx, profileID)
	if err != nil {
		return nil, err
	}
	byID, err := h.productIndex(ctx)
	if err != nil {
		return nil, err
	}

	ids := s.State().Wishlist
	now := h.now()
	window := h.pipeline.Options().FreshnessWindow
	items := make([]readmodel.WishlistItemReadModel, 0, len(ids))
	for _, id := range ids {
		item := readmodel.WishlistItemReadModel{ProductID: id}
		if p, ok := byID[id]; ok {
			view := readmodel.NewProduct(p, now, window)
			item.Available = true
			item.InStock = p.HasStock()
			item.Product = &view
		}
		items = append(items, item)
	}
	return &readmodel.WishlistReadModel{Items: items, Count: len(items)}, nil
}

// Toasts

func (h *Handler) ListToasts(ctx context.Context, profileID string) ([]readmodel.ToastReadModel, error) {
	s, err := h.stores.Store(ctx, profileID)
	if err != nil {
		return nil, err
	}
	toasts := s.State().Toasts
	out := make([]readmodel.ToastReadModel, len(toasts))
	for i, t := range toasts {
		out[i] = readmodel.ToastReadModel{ID: t.ID, Message: t.Message, Type: string(t.Type)}
	}
	return out, nil
}

func (h *Handler) productIndex(ctx context.Context) (map[int]product.Product, error) {
	products, err := h.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
