package persistence

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/wishlist"
	"github.com/example/storefront/internal/infrastructure/storage/mocks"
	"github.com/example/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newTestProduct() product.Product {
	return product.Product{
		ID:       7,
		Brand:    "Northline",
		Name:     "Wool Overshirt",
		Category: product.CategoryClothing,
		Price:    decimal.RequireFromString("89.00"),
		Variants: []product.Variant{
			{Color: "Black", Size: "M", Stock: 2},
			{Color: "Navy", Size: "M", Stock: 5},
		},
	}
}

// ============================================
// Hydrate Tests
// ============================================

func TestHydrate_Empty(t *testing.T) {
	backend := mocks.NewMockBackend()

	s, err := Hydrate(context.Background(), backend, testProfile, logger.Nop())

	require.NoError(t, err)
	assert.Empty(t, s.Cart)
	assert.Empty(t, s.Wishlist)
	assert.Len(t, backend.GetCalls, 2)
}

func TestHydrate_RoundTrip(t *testing.T) {
	backend := mocks.NewMockBackend()
	c := cart.Cart{}.Add(newTestProduct(), "Navy", "M", 3)
	encodedCart, err := EncodeCart(c)
	require.NoError(t, err)
	backend.Seed(testProfile, KeyCart, encodedCart)
	backend.Seed(testProfile, KeyWishlist, "[4,9]")

	s, err := Hydrate(context.Background(), backend, testProfile, logger.Nop())

	require.NoError(t, err)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, "7-Navy-M", s.Cart[0].Key)
	assert.Equal(t, 3, s.Cart[0].Qty)
	assert.True(t, s.Cart[0].Product.Price.Equal(decimal.RequireFromString("89")))
	assert.Equal(t, wishlist.Wishlist{4, 9}, s.Wishlist)
}

func TestHydrate_CorruptDataIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		cart     string
		wishlist string
	}{
		{"not json", "{{{", "oops"},
		{"objects", `{"key":"7-Black-M"}`, `{"ids":[1]}`},
		{"null", "null", "null"},
		{"strings", `"cart"`, `"1,2"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mocks.NewMockBackend()
			backend.Seed(testProfile, KeyCart, tt.cart)
			backend.Seed(testProfile, KeyWishlist, tt.wishlist)

			s, err := Hydrate(context.Background(), backend, testProfile, logger.Nop())

			require.NoError(t, err)
			assert.NotNil(t, s.Cart)
			assert.Empty(t, s.Cart)
			assert.Empty(t, s.Wishlist)
		})
	}
}

func TestHydrate_BackendError(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.GetErr = errors.New("connection refused")

	_, err := Hydrate(context.Background(), backend, testProfile, logger.Nop())

	assert.ErrorIs(t, err, backend.GetErr)
}

// ============================================
// Decode Tests
// ============================================

func TestDecodeCart_DropsInvalidLines(t *testing.T) {
	raw := `[
		{"key": "7-Black-M", "color": "Black", "size": "M", "qty": 1, "product": {"id": 7, "price": 89}},
		{"key": "", "qty": 2},
		{"key": "7-Navy-M", "qty": 0},
		{"key": "7-Black-M", "qty": 2}
	]`

	c, ok := DecodeCart(raw)

	assert.True(t, ok)
	require.Len(t, c, 1)
	assert.Equal(t, "7-Black-M", c[0].Key)
	assert.Equal(t, 1, c[0].Qty)
}

func TestDecodeWishlist(t *testing.T) {
	w, ok := DecodeWishlist(`[3, 3, "x", 4.5, 8, null, 3]`)

	assert.True(t, ok)
	assert.Equal(t, wishlist.Wishlist{3, 8}, w)
}

func TestEncode_EmptyIsArray(t *testing.T) {
	c, err := EncodeCart(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", c)

	w, err := EncodeWishlist(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", w)
}

// ============================================
// Recently Viewed Tests
// ============================================

func TestRecordView(t *testing.T) {
	ctx := context.Background()
	backend := mocks.NewMockBackend()
	backend.Seed(testProfile, "recentlyViewedProducts", `[5, "junk", 2]`)

	list, err := RecordView(ctx, backend, testProfile, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, []int(list))

	stored, ok := backend.Value(testProfile, "recentlyViewedProducts")
	require.True(t, ok)
	assert.Equal(t, "[2,5]", stored)

	for _, id := range []int{10, 11, 12, 13} {
		_, err := RecordView(ctx, backend, testProfile, id)
		require.NoError(t, err)
	}
	list, err = LoadRecent(ctx, backend, testProfile)
	require.NoError(t, err)
	assert.Equal(t, []int{13, 12, 11, 10, 2}, []int(list))
}

func TestRecordView_BackendError(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.SetErr = errors.New("read only")

	_, err := RecordView(context.Background(), backend, testProfile, 1)
	assert.ErrorIs(t, err, backend.SetErr)
}

// slowGetBackend widens the gap between loading and storing a value.
type slowGetBackend struct {
	*mocks.MockBackend
}

func (b slowGetBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	value, ok, err := b.MockBackend.Get(ctx, namespace, key)
	time.Sleep(5 * time.Millisecond)
	return value, ok, err
}

func TestViews_ConcurrentRecordsKeepEveryView(t *testing.T) {
	backend := slowGetBackend{MockBackend: mocks.NewMockBackend()}
	views := NewViews(backend)

	var wg sync.WaitGroup
	for id := 1; id <= 5; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := views.Record(context.Background(), testProfile, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := LoadRecent(context.Background(), backend, testProfile)
	require.NoError(t, err)
	got := []int(list)
	slices.Sort(got)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}
