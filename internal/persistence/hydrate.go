package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/wishlist"
	"github.com/example/storefront/internal/infrastructure/storage"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/state"
)

const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// Hydrate reads a profile's persisted cart and wishlist. Stored values that are
// not JSON arrays are treated as empty and logged; only backend failures are
// returned as errors.
func Hydrate(ctx context.Context, backend storage.Backend, profileID string, log *logger.Logger) (state.State, error) {
	rawCart, _, err := backend.Get(ctx, profileID, KeyCart)
	if err != nil {
		return state.State{}, fmt.Errorf("load cart: %w", err)
	}
	rawWishlist, _, err := backend.Get(ctx, profileID, KeyWishlist)
	if err != nil {
		return state.State{}, fmt.Errorf("load wishlist: %w", err)
	}

	c, ok := DecodeCart(rawCart)
	if !ok {
		log.Warn(ctx, "stored cart is corrupt, starting empty")
	}
	w, ok := DecodeWishlist(rawWishlist)
	if !ok {
		log.Warn(ctx, "stored wishlist is corrupt, starting empty")
	}
	return state.State{Cart: c, Wishlist: w}, nil
}

// DecodeCart parses a stored cart. Lines without a key, with a quantity below
// one, or repeating an earlier key are dropped. The bool is false when raw was
// present but unreadable.
func DecodeCart(raw string) (cart.Cart, bool) {
	if raw == "" {
		return cart.Cart{}, true
	}
	var lines []cart.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil || lines == nil {
		return cart.Cart{}, false
	}
	out := make(cart.Cart, 0, len(lines))
	for _, line := range lines {
		if line.Key == "" || line.Qty < 1 {
			continue
		}
		if _, _, dup := out.Find(line.Key); dup {
			continue
		}
		out = append(out, line)
	}
	return out, true
}

// DecodeWishlist parses a stored wishlist, dropping non-integer entries and
// repeats. The bool is false when raw was present but unreadable.
func DecodeWishlist(raw string) (wishlist.Wishlist, bool) {
	if raw == "" {
		return wishlist.Wishlist{}, true
	}
	var values []any
	if err := json.Unmarshal([]byte(raw), &values); err != nil || values == nil {
		return wishlist.Wishlist{}, false
	}
	ids := make([]int, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			ids = append(ids, int(f))
		}
	}
	return wishlist.New(ids...), true
}

// EncodeCart renders c as a JSON array; an empty cart is "[]".
func EncodeCart(c cart.Cart) (string, error) {
	if c == nil {
		c = cart.Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(data), nil
}

func EncodeWishlist(w wishlist.Wishlist) (string, error) {
	if w == nil {
		w = wishlist.Wishlist{}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode wishlist: %w", err)
	}
	return string(data), nil
}
