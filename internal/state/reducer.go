package state

import (
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/wishlist"
)

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
)

// Toast is a short-lived notification. Toasts are never persisted.
type Toast struct {
	ID      int64     `json:"id"`
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}

// State is everything the store manager owns for one profile.
type State struct {
	Cart     cart.Cart         `json:"cart"`
	Wishlist wishlist.Wishlist `json:"wishlist"`
	Toasts   []Toast           `json:"toasts"`
}

// Reduce applies an action and returns the next state. It never mutates s and never
// fails: actions that do not apply leave the state unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case AddToCart:
		s.Cart = s.Cart.Add(a.Product, a.Color, a.Size, a.Qty)
	case UpdateQty:
		s.Cart = s.Cart.UpdateQty(a.Key, a.Qty, a.Product)
	case RemoveFromCart:
		s.Cart = s.Cart.Remove(a.Key)
	case ClearCart:
		if len(s.Cart) > 0 {
			s.Cart = cart.Cart{}
		}
	case ToggleWishlist:
		s.Wishlist = s.Wishlist.Toggle(a.ProductID)
	case RemoveWishlist:
		s.Wishlist = s.Wishlist.Remove(a.ProductID)
	case MoveToCart:
		s.Cart = s.Cart.Add(a.Product, a.Color, a.Size, 1)
		s.Wishlist = s.Wishlist.Remove(a.Product.ID)
	case AddToast:
		toasts := make([]Toast, len(s.Toasts), len(s.Toasts)+1)
		copy(toasts, s.Toasts)
		s.Toasts = append(toasts, a.Toast)
	case RemoveToast:
		toasts := make([]Toast, 0, len(s.Toasts))
		for _, t := range s.Toasts {
			if t.ID != a.ID {
				toasts = append(toasts, t)
			}
		}
		s.Toasts = toasts
	}
	return s
}

// Transition describes one applied action.
type Transition struct {
	Action Action
	Prev   State
	Next   State
}

func (t Transition) CartChanged() bool {
	return !t.Prev.Cart.Equal(t.Next.Cart)
}

func (t Transition) WishlistChanged() bool {
	return !t.Prev.Wishlist.Equal(t.Next.Wishlist)
}
