package command

// Cart Commands
type AddToCart struct {
	ProfileID string `json:"-"`
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Qty       int    `json:"qty" validate:"omitempty,gte=1,lte=99"`
}

// QuickAdd adds one unit of the product's first in-stock variant.
type QuickAdd struct {
	ProfileID string `json:"-"`
	ProductID int    `json:"product_id" validate:"required,gt=0"`
}

type UpdateQuantity struct {
	ProfileID string `json:"-"`
	Key       string `json:"-"`
	Qty       *int   `json:"qty" validate:"required"`
}

type RemoveFromCart struct {
	ProfileID string `json:"-"`
	Key       string `json:"-"`
}

type ClearCart struct {
	ProfileID string `json:"-"`
}

// Wishlist Commands
type ToggleWishlist struct {
	ProfileID string `json:"-"`
	ProductID int    `json:"-"`
}

type RemoveWishlist struct {
	ProfileID string `json:"-"`
	ProductID int    `json:"-"`
}

type MoveToCart struct {
	ProfileID string `json:"-"`
	ProductID int    `json:"-"`
}
