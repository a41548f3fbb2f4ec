package readmodel

import (
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/money"
	"github.com/shopspring/decimal"
)

// VariantReadModel is one purchasable color/size of a product
type VariantReadModel struct {
	Color   string `json:"color"`
	Size    string `json:"size"`
	Stock   int    `json:"stock"`
	InStock bool   `json:"in_stock"`
}

// ProductReadModel is the read model for products
type ProductReadModel struct {
	ID             int                `json:"id"`
	Brand          string             `json:"brand"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Category       string             `json:"category"`
	Price          decimal.Decimal    `json:"price"`
	SalePrice      *decimal.Decimal   `json:"sale_price,omitempty"`
	EffectivePrice decimal.Decimal    `json:"effective_price"`
	PriceLabel     string             `json:"price_label"`
	OnSale         bool               `json:"on_sale"`
	NewArrival     bool               `json:"new_arrival"`
	InStock        bool               `json:"in_stock"`
	Colors         []string           `json:"colors"`
	Sizes          []string           `json:"sizes"`
	Variants       []VariantReadModel `json:"variants"`
	Images         []string           `json:"images"`
	Tags           []string           `json:"tags"`
	CreatedAt      string             `json:"created_at,omitempty"`
	Rating         float64            `json:"rating"`
	ReviewCount    int                `json:"review_count"`
	Featured       bool               `json:"featured,omitempty"`
}

// NewProduct builds the read model of p. now and freshness decide the new-arrival flag.
func NewProduct(p product.Product, now time.Time, freshness time.Duration) ProductReadModel {
	variants := make([]VariantReadModel, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = VariantReadModel{Color: v.Color, Size: v.Size, Stock: v.Stock, InStock: v.Stock > 0}
	}
	reviews := 0
	if p.ReviewCount != nil {
		reviews = *p.ReviewCount
	}
	return ProductReadModel{
		ID:             p.ID,
		Brand:          p.Brand,
		Name:           p.Name,
		Description:    p.Description,
		Category:       string(p.Category),
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		PriceLabel:     money.FormatUSD(p.EffectivePrice()),
		OnSale:         p.OnSale(),
		NewArrival:     p.IsNewArrival(now, freshness),
		InStock:        p.HasStock(),
		Colors:         nonNil(p.Colors),
		Sizes:          nonNil(p.Sizes),
		Variants:       variants,
		Images:         nonNil(p.Images),
		Tags:           nonNil(p.Tags),
		CreatedAt:      p.CreatedAt,
		Rating:         p.RatingValue(),
		ReviewCount:    reviews,
		Featured:       p.Featured,
	}
}

// ProductPageReadModel is one page of the shop listing
type ProductPageReadModel struct {
	Items      []ProductReadModel `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	Sort       string             `json:"sort"`
	// Query is the canonical query string for the page actually shown.
	Query   string `json:"query"`
	Clamped bool   `json:"clamped"`
}

// CartLineReadModel represents a line in the cart
type CartLineReadModel struct {
	Key       string          `json:"key"`
	ProductID int             `json:"product_id"`
	Brand     string          `json:"brand"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Qty       int             `json:"qty"`
	MaxQty    int             `json:"max_qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartTotalsReadModel adds display strings to cart.Totals
type CartTotalsReadModel struct {
	cart.Totals
	SubtotalLabel string `json:"subtotal_label"`
	ShippingLabel string `json:"shipping_label"`
	TotalLabel    string `json:"total_label"`
}

// CartReadModel is the read model for the shopping cart
type CartReadModel struct {
	Lines  []CartLineReadModel `json:"lines"`
	Totals CartTotalsReadModel `json:"totals"`
}

// NewCart builds the cart view. live maps product ids to current catalog entries
// and supplies each line's maximum quantity; lines missing from it fall back to
// their snapshot.
func NewCart(c cart.Cart, live map[int]product.Product) CartReadModel {
	lines := make([]CartLineReadModel, 0, len(c))
	for _, line := range c {
		p, ok := live[line.Product.ID]
		if !ok {
			p = line.Product
		}
		unit := line.Product.EffectivePrice()
		image := ""
		if len(line.Product.Images) > 0 {
			image = line.Product.Images[0]
		}
		lines = append(lines, CartLineReadModel{
			Key:       line.Key,
			ProductID: line.Product.ID,
			Brand:     line.Product.Brand,
			Name:      line.Product.Name,
			Image:     image,
			Color:     line.Color,
			Size:      line.Size,
			Qty:       line.Qty,
			MaxQty:    max(p.StockFor(line.Color, line.Size), 1),
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(line.Qty))),
		})
	}

	totals := c.Totals()
	return CartReadModel{
		Lines: lines,
		Totals: CartTotalsReadModel{
			Totals:        totals,
			SubtotalLabel: money.FormatUSD(totals.Subtotal),
			ShippingLabel: shippingLabel(totals),
			TotalLabel:    money.FormatUSD(totals.Total),
		},
	}
}

func shippingLabel(t cart.Totals) string {
	if t.FreeShipping {
		return "Free"
	}
	return money.FormatUSD(t.Shipping)
}

// WishlistItemReadModel is a saved product. Products no longer in the catalog
// are reported with Available false.
type WishlistItemReadModel struct {
	ProductID int               `json:"product_id"`
	Available bool              `json:"available"`
	InStock   bool              `json:"in_stock"`
	Product   *ProductReadModel `json:"product,omitempty"`
}

// WishlistReadModel lists saved products in the order they were saved
type WishlistReadModel struct {
	Items []WishlistItemReadModel `json:"items"`
	Count int                     `json:"count"`
}

// ToastReadModel is a live notification
type ToastReadModel struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SessionReadModel is returned when a profile token is issued
type SessionReadModel struct {
	ProfileID string    `json:"profile_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
