package product

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryShoes       Category = "shoes"
	CategoryBelts       Category = "belts"
	CategoryAccessories Category = "accessories"
)

// Categories lists the shop categories in display order.
var Categories = []Category{CategoryClothing, CategoryShoes, CategoryBelts, CategoryAccessories}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Variant is one purchasable color/size combination of a product.
type Variant struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// Product is a catalog entry. Products are treated as immutable once loaded.
type Product struct {
	ID          int              `json:"id" validate:"gt=0"`
	Brand       string           `json:"brand"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description,omitempty"`
	Category    Category         `json:"category" validate:"required"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Colors      []string         `json:"colors"`
	Sizes       []string         `json:"sizes"`
	Variants    []Variant        `json:"variants" validate:"dive"`
	Images      []string         `json:"images"`
	Tags        []string         `json:"tags"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	Rating      *float64         `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount *int             `json:"reviewCount,omitempty" validate:"omitempty,gte=0"`
	Featured    bool             `json:"featured,omitempty"`
}

// EffectivePrice is the sale price when present, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

func (p Product) OnSale() bool {
	return p.SalePrice != nil
}

// FindVariant looks up the variant for a color/size pair.
func (p Product) FindVariant(color, size string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Color == color && v.Size == size {
			return v, true
		}
	}
	return Variant{}, false
}

// StockFor returns the stock of a color/size pair; unknown pairs have no stock.
func (p Product) StockFor(color, size string) int {
	v, ok := p.FindVariant(color, size)
	if !ok {
		return 0
	}
	return v.Stock
}

func (p Product) HasStock() bool {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}

// FirstAvailableVariant returns the first in-stock variant with both a color and a size.
func (p Product) FirstAvailableVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.Stock > 0 && v.Color != "" && v.Size != "" {
			return v, true
		}
	}
	return Variant{}, false
}

// AvailableSizes lists sizes in stock for a color. An empty color yields all sizes.
func (p Product) AvailableSizes(color string) []string {
	if color == "" {
		return append([]string(nil), p.Sizes...)
	}
	sizes := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.Color == color && v.Stock > 0 {
			sizes = append(sizes, v.Size)
		}
	}
	return sizes
}

var createdAtLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// CreatedTime parses CreatedAt. ok is false when absent or unparsable.
func (p Product) CreatedTime() (time.Time, bool) {
	value := strings.TrimSpace(p.CreatedAt)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsNewArrival reports whether the product was created within window before now.
// Future-dated products never qualify.
func (p Product) IsNewArrival(now time.Time, window time.Duration) bool {
	created, ok := p.CreatedTime()
	if !ok {
		return false
	}
	age := now.Sub(created)
	return age >= 0 && age <= window
}

// RatingValue is the rating, or zero when missing.
func (p Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
