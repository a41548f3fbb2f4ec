package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize        = 12
	DefaultFreshnessWindow = 30 * 24 * time.Hour
)

type Options struct {
	PageSize        int
	FreshnessWindow time.Duration
}

func DefaultOptions() Options {
	return Options{PageSize: DefaultPageSize, FreshnessWindow: DefaultFreshnessWindow}
}

// Page is one page of a filtered, sorted catalog.
type Page struct {
	Items      []product.Product
	Total      int
	Page       int
	TotalPages int
	// Clamped is set when the requested page was out of range and Page was reset.
	Clamped bool
}

// Pipeline turns a product list and a query into a page. It holds no state
// besides its options and is safe for concurrent use.
type Pipeline struct {
	opts Options
}

func NewPipeline(opts Options) *Pipeline {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	return &Pipeline{opts: opts}
}

func (p *Pipeline) Options() Options {
	return p.opts
}

// Apply filters, sorts and paginates products. The input slice is not modified.
func (p *Pipeline) Apply(products []product.Product, q Query, now time.Time) Page {
	q = q.Normalize()
	matched := p.Filter(products, q.Filters, now)
	Sort(matched, q.Sort)
	return Paginate(matched, q.Page, p.opts.PageSize)
}

// Filter returns the products matching every non-empty field of f, in input order.
func (p *Pipeline) Filter(products []product.Product, f Filters, now time.Time) []product.Product {
	preds := p.predicates(f, now)
	out := make([]product.Product, 0, len(products))
	for _, prod := range products {
		if matchesAll(prod, preds) {
			out = append(out, prod)
		}
	}
	return out
}

type predicate func(product.Product) bool

func (p *Pipeline) predicates(f Filters, now time.Time) []predicate {
	var preds []predicate

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(prod product.Product) bool {
			if strings.Contains(strings.ToLower(prod.Name), needle) ||
				strings.Contains(strings.ToLower(prod.Brand), needle) {
				return true
			}
			return slices.ContainsFunc(prod.Tags, func(tag string) bool {
				return strings.Contains(strings.ToLower(tag), needle)
			})
		})
	}
	if f.Category != "" {
		preds = append(preds, func(prod product.Product) bool {
			return string(prod.Category) == f.Category
		})
	}
	if f.Sale {
		preds = append(preds, func(prod product.Product) bool {
			return prod.SalePrice != nil
		})
	}
	if f.NewArrival {
		window := p.opts.FreshnessWindow
		preds = append(preds, func(prod product.Product) bool {
			return prod.IsNewArrival(now, window)
		})
	}
	if f.Tag != "" {
		preds = append(preds, func(prod product.Product) bool {
			return slices.ContainsFunc(prod.Tags, func(tag string) bool {
				return strings.EqualFold(tag, f.Tag)
			})
		})
	}
	if minPrice, err := decimal.NewFromString(f.MinPrice); f.MinPrice != "" && err == nil {
		preds = append(preds, func(prod product.Product) bool {
			return prod.EffectivePrice().GreaterThanOrEqual(minPrice)
		})
	}
	if maxPrice, err := decimal.NewFromString(f.MaxPrice); f.MaxPrice != "" && err == nil {
		preds = append(preds, func(prod product.Product) bool {
			return prod.EffectivePrice().LessThanOrEqual(maxPrice)
		})
	}
	if len(f.Colors) > 0 {
		preds = append(preds, func(prod product.Product) bool {
			return intersects(prod.Colors, f.Colors)
		})
	}
	if len(f.Sizes) > 0 {
		preds = append(preds, func(prod product.Product) bool {
			return intersects(prod.Sizes, f.Sizes)
		})
	}
	return preds
}

func matchesAll(prod product.Product, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(prod) {
			return false
		}
	}
	return true
}

func intersects(have, want []string) bool {
	return slices.ContainsFunc(have, func(v string) bool {
		return slices.Contains(want, v)
	})
}

// Sort orders products in place by key. The sort is stable.
func Sort(products []product.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b product.Product) int {
			return a.EffectivePrice().Cmp(b.EffectivePrice())
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b product.Product) int {
			return b.EffectivePrice().Cmp(a.EffectivePrice())
		})
	case SortRating:
		slices.SortStableFunc(products, func(a, b product.Product) int {
			if c := cmp.Compare(b.RatingValue(), a.RatingValue()); c != 0 {
				return c
			}
			return b.ID - a.ID
		})
	default:
		slices.SortStableFunc(products, compareNewest)
	}
}

// compareNewest puts later createdAt first, products without a timestamp last,
// and breaks ties by descending id.
func compareNewest(a, b product.Product) int {
	at, aok := a.CreatedTime()
	bt, bok := b.CreatedTime()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok:
		if c := bt.Compare(at); c != 0 {
			return c
		}
	}
	return b.ID - a.ID
}

// Paginate slices one page out of products. The requested page is clamped into
// [1, TotalPages], so a page is never empty while earlier pages have items.
func Paginate(products []product.Product, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(products)
	totalPages := max(1, (total+size-1)/size)

	clamped := false
	if page < 1 {
		page, clamped = 1, true
	}
	if page > totalPages {
		page, clamped = totalPages, true
	}

	start := min((page-1)*size, total)
	end := min(start+size, total)
	return Page{
		Items:      products[start:end:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Clamped:    clamped,
	}
}
