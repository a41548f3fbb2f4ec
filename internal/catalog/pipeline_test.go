package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/storefront/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func floatPtr(v float64) *float64 {
	return &v
}

func newTestCatalog() []product.Product {
	return []product.Product{
		{
			ID: 1, Brand: "Vale", Name: "Linen Shirt", Category: product.CategoryClothing,
			Price: dec("60"), Colors: []string{"White", "Sand"}, Sizes: []string{"S", "M"},
			Tags: []string{"Summer", "linen"}, CreatedAt: "2026-03-10T09:00:00Z", Rating: floatPtr(4.2),
		},
		{
			ID: 2, Brand: "Northline", Name: "Wool Overshirt", Category: product.CategoryClothing,
			Price: dec("120"), SalePrice: decPtr("89"), Colors: []string{"Black", "Navy"}, Sizes: []string{"M", "L"},
			Tags: []string{"Outerwear"}, CreatedAt: "2025-11-01", Rating: floatPtr(4.8),
		},
		{
			ID: 3, Brand: "Stride", Name: "Leather Derby", Category: product.CategoryShoes,
			Price: dec("150"), Colors: []string{"Brown"}, Sizes: []string{"9", "10"},
			Tags: []string{"Formal"}, CreatedAt: "2026-03-01T00:00:00Z", Rating: floatPtr(4.8),
		},
		{
			ID: 4, Brand: "Stride", Name: "Canvas Sneaker", Category: product.CategoryShoes,
			Price: dec("75"), SalePrice: decPtr("55"), Colors: []string{"White"}, Sizes: []string{"10", "11"},
			Tags: []string{"summer"},
		},
		{
			ID: 5, Brand: "Hold", Name: "Braided Belt", Category: product.CategoryBelts,
			Price: dec("40"), Colors: []string{"Brown", "Black"}, Sizes: []string{"One Size"},
			CreatedAt: "2026-04-01T00:00:00Z",
		},
	}
}

func ids(products []product.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func numberedCatalog(n int) []product.Product {
	out := make([]product.Product, n)
	for i := range out {
		out[i] = product.Product{
			ID:       i + 1,
			Name:     fmt.Sprintf("Product %d", i+1),
			Category: product.CategoryAccessories,
			Price:    dec("10"),
		}
	}
	return out
}

// ============================================
// Filter Tests
// ============================================

func TestPipeline_Filter(t *testing.T) {
	p := NewPipeline(DefaultOptions())

	tests := []struct {
		name     string
		filters  Filters
		expected []int
	}{
		{"no filters", Filters{}, []int{1, 2, 3, 4, 5}},
		{"search name", Filters{Search: "SHIRT"}, []int{1, 2}},
		{"search brand", Filters{Search: "stride"}, []int{3, 4}},
		{"search tag substring", Filters{Search: "outer"}, []int{2}},
		{"category", Filters{Category: "shoes"}, []int{3, 4}},
		{"sale", Filters{Sale: true}, []int{2, 4}},
		{"new arrival", Filters{NewArrival: true}, []int{1, 3}},
		{"tag exact case-insensitive", Filters{Tag: "SUMMER"}, []int{1, 4}},
		{"tag is not a substring match", Filters{Tag: "summ"}, nil},
		{"min price uses sale price", Filters{MinPrice: "89"}, []int{2, 3}},
		{"max price inclusive", Filters{MaxPrice: "55"}, []int{4, 5}},
		{"price range", Filters{MinPrice: "50", MaxPrice: "90"}, []int{1, 2, 4}},
		{"unparsable price ignored", Filters{MinPrice: "lots"}, []int{1, 2, 3, 4, 5}},
		{"colors intersect", Filters{Colors: []string{"Black", "Sand"}}, []int{1, 2, 5}},
		{"sizes intersect", Filters{Sizes: []string{"10"}}, []int{3, 4}},
		{"combined", Filters{Category: "shoes", Sale: true, Sizes: []string{"11"}}, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Filter(newTestCatalog(), tt.filters, testNow)
			assert.ElementsMatch(t, tt.expected, ids(got))
		})
	}
}

func TestPipeline_FilterOrderIndependent(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	full := Filters{Search: "s", Colors: []string{"White", "Brown"}, MaxPrice: "100"}

	all := ids(p.Filter(newTestCatalog(), full, testNow))

	stepwise := newTestCatalog()
	stepwise = p.Filter(stepwise, Filters{MaxPrice: "100"}, testNow)
	stepwise = p.Filter(stepwise, Filters{Colors: full.Colors}, testNow)
	stepwise = p.Filter(stepwise, Filters{Search: "s"}, testNow)

	assert.Equal(t, all, ids(stepwise))
}

func TestPipeline_FutureProductsAreNotNew(t *testing.T) {
	p := NewPipeline(Options{FreshnessWindow: 365 * 24 * time.Hour})

	got := p.Filter(newTestCatalog(), Filters{NewArrival: true}, testNow)
	assert.ElementsMatch(t, []int{1, 2, 3}, ids(got))
}

// ============================================
// Sort Tests
// ============================================

func TestSort(t *testing.T) {
	tests := []struct {
		name     string
		key      SortKey
		expected []int
	}{
		{"newest with missing timestamp last", SortNewest, []int{5, 1, 3, 2, 4}},
		{"price ascending by effective price", SortPriceAsc, []int{5, 4, 1, 2, 3}},
		{"price descending", SortPriceDesc, []int{3, 2, 1, 4, 5}},
		{"rating with ties by id desc", SortRating, []int{3, 2, 1, 5, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := newTestCatalog()
			Sort(products, tt.key)
			assert.Equal(t, tt.expected, ids(products))
		})
	}
}

func TestSort_NewestFallsBackToID(t *testing.T) {
	products := numberedCatalog(4)
	Sort(products, SortNewest)
	assert.Equal(t, []int{4, 3, 2, 1}, ids(products))
}

func TestSort_PriceIsStable(t *testing.T) {
	products := numberedCatalog(5)
	Sort(products, SortPriceAsc)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(products))
}

// ============================================
// Pagination Tests
// ============================================

func TestPipeline_Apply_Pagination(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	products := numberedCatalog(13)

	first := p.Apply(products, Query{Page: 1}, testNow)
	assert.Len(t, first.Items, 12)
	assert.Equal(t, 13, first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.False(t, first.Clamped)

	second := p.Apply(products, Query{Page: 2}, testNow)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 1, second.Items[0].ID)
	assert.Equal(t, 2, second.Page)

	third := p.Apply(products, Query{Page: 3}, testNow)
	assert.Equal(t, 2, third.Page)
	assert.True(t, third.Clamped)
	assert.Equal(t, ids(second.Items), ids(third.Items))
}

func TestPipeline_Apply_NoMatches(t *testing.T) {
	p := NewPipeline(DefaultOptions())

	page := p.Apply(newTestCatalog(), Query{Filters: Filters{Search: "vaux"}, Page: 4}, testNow)

	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.True(t, page.Clamped)
}

func TestPaginate_SliceLength(t *testing.T) {
	products := numberedCatalog(30)

	for _, size := range []int{1, 7, 12, 30, 50} {
		totalPages := max(1, (len(products)+size-1)/size)
		for page := 1; page <= totalPages; page++ {
			got := Paginate(products, page, size)
			remaining := len(products) - (page-1)*size
			assert.Len(t, got.Items, min(size, remaining), "size %d page %d", size, page)
			assert.NotEmpty(t, got.Items)
		}
	}
}

func TestPipeline_Apply_DoesNotReorderInput(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	products := newTestCatalog()

	p.Apply(products, Query{Sort: SortPriceDesc}, testNow)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(products))
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline(Options{})
	assert.Equal(t, DefaultOptions(), p.Options())
}
