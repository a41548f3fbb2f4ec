package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/catalog/mocks"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/recent"
	storagemocks "github.com/example/storefront/internal/infrastructure/storage/mocks"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/profile"
	"github.com/example/storefront/internal/readmodel"
	"github.com/example/storefront/internal/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testProducts() []product.Product {
	sale := decimal.RequireFromString("60.00")
	return []product.Product{
		{
			ID: 1, Brand: "Northline", Name: "Canvas Sneaker", Category: product.CategoryShoes,
			Price: decimal.RequireFromString("80.00"), CreatedAt: "2025-02-20T00:00:00Z",
			Variants: []product.Variant{{Color: "White", Size: "42", Stock: 3}},
		},
		{
			ID: 2, Brand: "Northline", Name: "Leather Boot", Category: product.CategoryShoes,
			Price: decimal.RequireFromString("140.00"), SalePrice: &sale, CreatedAt: "2024-11-01T00:00:00Z",
			Variants: []product.Variant{{Color: "Brown", Size: "43", Stock: 1}},
		},
		{
			ID: 3, Brand: "Hold", Name: "Running Shoe", Category: product.CategoryShoes,
			Price: decimal.RequireFromString("120.00"), CreatedAt: "2025-01-10T00:00:00Z",
			Variants: []product.Variant{{Color: "Black", Size: "44", Stock: 0}},
		},
		{
			ID: 4, Brand: "Hold", Name: "Braided Belt", Category: product.CategoryBelts,
			Price: decimal.RequireFromString("40.00"), CreatedAt: "2025-02-25T00:00:00Z",
			Variants: []product.Variant{{Color: "Brown", Size: "One Size", Stock: 6}},
		},
	}
}

type testEnv struct {
	handler  *Handler
	catalog  *mocks.MockCatalog
	backend  *storagemocks.MockBackend
	registry *profile.Registry
}

func newTestQueryHandler(t *testing.T) testEnv {
	t.Helper()
	cat := mocks.NewMockCatalog(testProducts()...)
	backend := storagemocks.NewMockBackend()
	registry := profile.NewRegistry(backend, nil, logger.Nop(), profile.WithToastTTL(time.Hour))
	t.Cleanup(registry.Close)

	pipeline := catalog.NewPipeline(catalog.Options{PageSize: 2, FreshnessWindow: 30 * 24 * time.Hour})
	handler := NewHandler(cat, pipeline, registry, backend, logger.Nop(), WithClock(func() time.Time { return testNow }))
	return testEnv{handler: handler, catalog: cat, backend: backend, registry: registry}
}

func (e testEnv) store(t *testing.T) *state.Store {
	t.Helper()
	s, err := e.registry.Store(context.Background(), testProfile)
	require.NoError(t, err)
	return s
}

func productIDs(items []readmodel.ProductReadModel) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// ============================================
// Product Listing Tests
// ============================================

func TestHandler_ListProducts_DefaultQuery(t *testing.T) {
	env := newTestQueryHandler(t)

	page, err := env.handler.ListProducts(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, "newest", page.Sort)
	assert.Equal(t, "", page.Query)
	assert.Equal(t, []int{4, 1}, productIDs(page.Items))
	assert.True(t, page.Items[0].NewArrival)
}

func TestHandler_ListProducts_FilterAndSort(t *testing.T) {
	env := newTestQueryHandler(t)

	page, err := env.handler.ListProducts(context.Background(), "?category=shoes&sort=price-asc")

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []int{2, 1}, productIDs(page.Items))
	assert.Equal(t, "$60.00", page.Items[0].PriceLabel)
	assert.True(t, page.Items[0].OnSale)
	assert.Equal(t, "category=shoes&sort=price-asc", page.Query)
}

func TestHandler_ListProducts_ClampsPage(t *testing.T) {
	env := newTestQueryHandler(t)

	page, err := env.handler.ListProducts(context.Background(), "category=shoes&page=9")

	require.NoError(t, err)
	assert.True(t, page.Clamped)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, "category=shoes&page=2", page.Query)
	assert.Equal(t, []int{2}, productIDs(page.Items))
}

func TestHandler_ListProducts_NoMatches(t *testing.T) {
	env := newTestQueryHandler(t)

	page, err := env.handler.ListProducts(context.Background(), "search=vaux")

	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
}

func TestHandler_ListProducts_CatalogUnavailable(t *testing.T) {
	env := newTestQueryHandler(t)
	env.catalog.Err = catalog.ErrCatalogUnavailable

	page, err := env.handler.ListProducts(context.Background(), "")

	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	assert.Nil(t, page)
}

// ============================================
// Product Detail & Recently Viewed Tests
// ============================================

func TestHandler_GetProduct_RecordsView(t *testing.T) {
	env := newTestQueryHandler(t)
	ctx := context.Background()

	view, err := env.handler.GetProduct(ctx, testProfile, 3)
	require.NoError(t, err)
	assert.Equal(t, "Running Shoe", view.Name)
	assert.False(t, view.InStock)

	_, err = env.handler.GetProduct(ctx, testProfile, 1)
	require.NoError(t, err)
	_, err = env.handler.GetProduct(ctx, testProfile, 3)
	require.NoError(t, err)

	raw, ok := env.backend.Value(testProfile, recent.StorageKey)
	require.True(t, ok)
	assert.Equal(t, "[3,1]", raw)
}

func TestHandler_GetProduct_Anonymous(t *testing.T) {
	env := newTestQueryHandler(t)

	_, err := env.handler.GetProduct(context.Background(), "", 1)

	require.NoError(t, err)
	assert.Empty(t, env.backend.Sets())
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	env := newTestQueryHandler(t)

	view, err := env.handler.GetProduct(context.Background(), testProfile, 404)

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Nil(t, view)
	assert.Empty(t, env.backend.Sets())
}

func TestHandler_GetProduct_StorageFailureIsNotFatal(t *testing.T) {
	env := newTestQueryHandler(t)
	env.backend.SetErr = errors.New("disk full")

	view, err := env.handler.GetProduct(context.Background(), testProfile, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, view.ID)
}

func TestHandler_GetRecent_SkipsUnknownProducts(t *testing.T) {
	env := newTestQueryHandler(t)
	env.backend.Seed(testProfile, recent.StorageKey, "[4,99,2]")

	items, err := env.handler.GetRecent(context.Background(), testProfile)

	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, productIDs(items))
}

// ============================================
// Cart & Wishlist Tests
// ============================================

func TestHandler_GetCart(t *testing.T) {
	env := newTestQueryHandler(t)
	products := testProducts()
	s := env.store(t)
	s.Dispatch(state.AddToCart{Product: products[0], Color: "White", Size: "42", Qty: 2})
	s.Dispatch(state.AddToCart{Product: products[3], Color: "Brown", Size: "One Size", Qty: 1})

	view, err := env.handler.GetCart(context.Background(), testProfile)

	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 3, view.Lines[0].MaxQty)
	assert.True(t, decimal.RequireFromString("160").Equal(view.Lines[0].LineTotal))
	assert.Equal(t, 3, view.Totals.Count)
	assert.True(t, view.Totals.FreeShipping)
	assert.Equal(t, "Free", view.Totals.ShippingLabel)
	assert.Equal(t, "$200.00", view.Totals.TotalLabel)
}

func TestHandler_GetCart_FallsBackToSnapshots(t *testing.T) {
	env := newTestQueryHandler(t)
	products := testProducts()
	s := env.store(t)
	s.Dispatch(state.AddToCart{Product: products[3], Color: "Brown", Size: "One Size", Qty: 1})
	env.catalog.Err = catalog.ErrCatalogUnavailable

	view, err := env.handler.GetCart(context.Background(), testProfile)

	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 6, view.Lines[0].MaxQty)
	assert.Equal(t, "$12.00", view.Totals.ShippingLabel)
	assert.Equal(t, "$52.00", view.Totals.TotalLabel)
}

func TestHandler_GetWishlist(t *testing.T) {
	env := newTestQueryHandler(t)
	s := env.store(t)
	s.Dispatch(state.ToggleWishlist{ProductID: 3})
	s.Dispatch(state.ToggleWishlist{ProductID: 99})
	s.Dispatch(state.ToggleWishlist{ProductID: 1})

	view, err := env.handler.GetWishlist(context.Background(), testProfile)

	require.NoError(t, err)
	assert.Equal(t, 3, view.Count)
	require.Len(t, view.Items, 3)

	assert.True(t, view.Items[0].Available)
	assert.False(t, view.Items[0].InStock)
	assert.False(t, view.Items[1].Available)
	assert.Nil(t, view.Items[1].Product)
	assert.True(t, view.Items[2].InStock)
	assert.Equal(t, "Canvas Sneaker", view.Items[2].Product.Name)
}

func TestHandler_ListToasts(t *testing.T) {
	env := newTestQueryHandler(t)
	s := env.store(t)
	s.Toast("Saved to wishlist", state.ToastSuccess)
	s.Toast("Item removed", state.ToastInfo)

	toasts, err := env.handler.ListToasts(context.Background(), testProfile)

	require.NoError(t, err)
	require.Len(t, toasts, 2)
	assert.Equal(t, "Saved to wishlist", toasts[0].Message)
	assert.Equal(t, "success", toasts[0].Type)
	assert.Equal(t, "info", toasts[1].Type)
	assert.NotEqual(t, toasts[0].ID, toasts[1].ID)
}
