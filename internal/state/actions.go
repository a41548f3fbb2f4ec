package state

import (
	"github.com/example/storefront/internal/domain/product"
)

const (
	TypeAddToCart      = "ADD_TO_CART"
	TypeUpdateQty      = "UPDATE_QTY"
	TypeRemoveFromCart = "REMOVE_FROM_CART"
	TypeClearCart      = "CLEAR_CART"
	TypeToggleWishlist = "TOGGLE_WISHLIST"
	TypeRemoveWishlist = "REMOVE_WISHLIST"
	TypeMoveToCart     = "MOVE_TO_CART"
	TypeAddToast       = "ADD_TOAST"
	TypeRemoveToast    = "REMOVE_TOAST"
)

// Action is anything Reduce knows how to apply.
type Action interface {
	Type() string
}

type AddToCart struct {
	Product product.Product
	Color   string
	Size    string
	Qty     int
}

// UpdateQty sets a line's quantity. Product, when set, is the live catalog entry for
// the line and supplies the current stock.
type UpdateQty struct {
	Key     string
	Qty     int
	Product *product.Product
}

type RemoveFromCart struct {
	Key string
}

type ClearCart struct{}

type ToggleWishlist struct {
	ProductID int
}

type RemoveWishlist struct {
	ProductID int
}

// MoveToCart adds one unit of a variant and unsaves the product in a single step.
type MoveToCart struct {
	Product product.Product
	Color   string
	Size    string
}

type AddToast struct {
	Toast Toast
}

type RemoveToast struct {
	ID int64
}

func (AddToCart) Type() string      { return TypeAddToCart }
func (UpdateQty) Type() string      { return TypeUpdateQty }
func (RemoveFromCart) Type() string { return TypeRemoveFromCart }
func (ClearCart) Type() string      { return TypeClearCart }
func (ToggleWishlist) Type() string { return TypeToggleWishlist }
func (RemoveWishlist) Type() string { return TypeRemoveWishlist }
func (MoveToCart) Type() string     { return TypeMoveToCart }
func (AddToast) Type() string       { return TypeAddToast }
func (RemoveToast) Type() string    { return TypeRemoveToast }
