package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/state"
)

const (
	MsgSelectVariant     = "Please choose both color and size"
	MsgVariantOutOfStock = "Selected variant is out of stock"
	MsgNoStock           = "No stock available"
	MsgNoPurchasable     = "No purchasable variant in stock"
	MsgItemRemoved       = "Item removed"
	MsgCartCleared       = "Cart cleared"
	MsgSavedToWishlist   = "Saved to wishlist"
	MsgRemovedWishlist   = "Removed from wishlist"
)

var ErrQtyRequired = errors.New("qty is required")

// ProductCatalog looks up products by id.
type ProductCatalog interface {
	Product(ctx context.Context, id int) (product.Product, error)
}

// Stores hands out per-profile state stores.
type Stores interface {
	Store(ctx context.Context, profileID string) (*state.Store, error)
}

// Result is the outcome of a command. Applied is false when the command was
// refused, in which case Toast says why.
type Result struct {
	Applied bool        `json:"applied"`
	Toast   state.Toast `json:"toast"`
	State   state.State `json:"-"`
}

type Handler struct {
	catalog ProductCatalog
	stores  Stores
	log     *logger.Logger
}

func NewHandler(catalog ProductCatalog, stores Stores, log *logger.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		stores:  stores,
		log:     log.Component("command"),
	}
}

// AddToCart adds the selected variant. Missing selections and sold-out variants
// are refused with a toast and leave the cart unchanged.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*Result, error) {
	s, p, err := h.storeAndProduct(ctx, cmd.ProfileID, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	if cmd.Color == "" || cmd.Size == "" {
		return refuse(s, MsgSelectVariant, state.ToastInfo), nil
	}
	if p.StockFor(cmd.Color, cmd.Size) < 1 {
		return refuse(s, MsgVariantOutOfStock, state.ToastError), nil
	}

	qty := max(cmd.Qty, 1)
	next := s.Dispatch(state.AddToCart{Product: p, Color: cmd.Color, Size: cmd.Size, Qty: qty})
	return applied(s, next, p.Name+" added to cart", state.ToastSuccess), nil
}

// QuickAdd adds one unit of the first in-stock variant.
func (h *Handler) QuickAdd(ctx context.Context, cmd QuickAdd) (*Result, error) {
	s, p, err := h.storeAndProduct(ctx, cmd.ProfileID, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	v, ok := p.FirstAvailableVariant()
	if !ok {
		return refuse(s, MsgNoStock, state.ToastError), nil
	}
	next := s.Dispatch(state.AddToCart{Product: p, Color: v.Color, Size: v.Size, Qty: 1})
	return applied(s, next, p.Name+" added to cart", state.ToastSuccess), nil
}

// UpdateQuantity sets a line's quantity against the product's current stock.
// A quantity below one removes the line.
func (h *Handler) UpdateQuantity(ctx context.Context, cmd UpdateQuantity) (*Result, error) {
	if cmd.Qty == nil {
		return nil, ErrQtyRequired
	}
	s, err := h.stores.Store(ctx, cmd.ProfileID)
	if err != nil {
		return nil, err
	}

	if *cmd.Qty < 1 {
		next := s.Dispatch(state.RemoveFromCart{Key: cmd.Key})
		return &Result{Applied: true, State: next}, nil
	}

	line, _, ok := s.State().Cart.Find(cmd.Key)
	if !ok {
		return &Result{State: s.State()}, nil
	}

	action := state.UpdateQty{Key: cmd.Key, Qty: *cmd.Qty}
	live, err := h.catalog.Product(ctx, line.Product.ID)
	switch {
	case err == nil:
		action.Product = &live
	case errors.Is(err, product.ErrProductNotFound):
		// Dropped from the catalog: the line's snapshot is all we have.
	default:
		h.log.Warn(ctx, fmt.Sprintf("catalog lookup for cart line %s failed, using snapshot stock: %v", cmd.Key, err))
	}

	next := s.Dispatch(action)
	return &Result{Applied: true, State: next}, nil
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (*Result, error) {
	s, err := h.stores.Store(ctx, cmd.ProfileID)
	if err != nil {
		return nil, err
	}
	next := s.Dispatch(state.RemoveFromCart{Key: cmd.Key})
	return applied(s, next, MsgItemRemoved, state.ToastInfo), nil
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) (*Result, error) {
	s, err := h.stores.Store(ctx, cmd.ProfileID)
	if err != nil {
		return nil, err
	}
	next := s.Dispatch(state.ClearCart{})
	return applied(s, next, MsgCartCleared, state.ToastInfo), nil
}

// ToggleWishlist saves or unsaves a product. The product must exist.
func (h *Handler) ToggleWishlist(ctx context.Context, cmd ToggleWishlist) (*Result, error) {
	s, _, err := h.storeAndProduct(ctx, cmd.ProfileID, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	wasSaved := s.State().Wishlist.Contains(cmd.ProductID)
	next := s.Dispatch(state.ToggleWishlist{ProductID: cmd.ProductID})
	if wasSaved {
		return applied(s, next, MsgRemovedWishlist, state.ToastInfo), nil
	}
	return applied(s, next, MsgSavedToWishlist, state.ToastSuccess), nil
}

// RemoveWishlist drops a saved product. Ids no longer in the catalog can still
// be removed.
func (h *Handler) RemoveWishlist(ctx context.Context, cmd RemoveWishlist) (*Result, error) {
	s, err := h.stores.Store(ctx, cmd.ProfileID)
	if err != nil {
		return nil, err
	}
	next := s.Dispatch(state.RemoveWishlist{ProductID: cmd.ProductID})
	return applied(s, next, MsgRemovedWishlist, state.ToastInfo), nil
}

// MoveToCart adds one unit of the first in-stock variant and unsaves the product.
func (h *Handler) MoveToCart(ctx context.Context, cmd MoveToCart) (*Result, error) {
	s, p, err := h.storeAndProduct(ctx, cmd.ProfileID, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	v, ok := p.FirstAvailableVariant()
	if !ok {
		return refuse(s, MsgNoPurchasable, state.ToastError), nil
	}
	next := s.Dispatch(state.MoveToCart{Product: p, Color: v.Color, Size: v.Size})
	return applied(s, next, p.Name+" moved to cart", state.ToastSuccess), nil
}

func (h *Handler) storeAndProduct(ctx context.Context, profileID string, productID int) (*state.Store, product.Product, error) {
	p, err := h.catalog.Product(ctx, productID)
	if err != nil {
		return nil, product.Product{}, err
	}
	s, err := h.stores.Store(ctx, profileID)
	if err != nil {
		return nil, product.Product{}, err
	}
	return s, p, nil
}

func applied(s *state.Store, next state.State, msg string, typ state.ToastType) *Result {
	toast := s.Toast(msg, typ)
	return &Result{Applied: true, Toast: toast, State: next}
}

func refuse(s *state.Store, msg string, typ state.ToastType) *Result {
	toast := s.Toast(msg, typ)
	return &Result{Toast: toast, State: s.State()}
}
