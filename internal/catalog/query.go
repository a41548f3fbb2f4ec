package catalog

import (
	"slices"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
)

// SortKeys lists the accepted sort keys in display order.
var SortKeys = []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortRating}

func (s SortKey) Valid() bool {
	return slices.Contains(SortKeys, s)
}

// Filters is the shop listing's filter state. Empty fields match everything.
// MinPrice and MaxPrice hold decimal text exactly as it appears in the URL.
type Filters struct {
	Search     string   `json:"search,omitempty"`
	Category   string   `json:"category,omitempty"`
	MinPrice   string   `json:"min_price,omitempty"`
	MaxPrice   string   `json:"max_price,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Sizes      []string `json:"sizes,omitempty"`
	Sale       bool     `json:"sale,omitempty"`
	NewArrival bool     `json:"new_arrival,omitempty"`
	Tag        string   `json:"tag,omitempty"`
}

func (f Filters) IsZero() bool {
	return f.Search == "" &&
		f.Category == "" &&
		f.MinPrice == "" &&
		f.MaxPrice == "" &&
		len(f.Colors) == 0 &&
		len(f.Sizes) == 0 &&
		!f.Sale &&
		!f.NewArrival &&
		f.Tag == ""
}

// Query is filters, sort and page together: the state behind a shop URL.
type Query struct {
	Filters Filters `json:"filters"`
	Sort    SortKey `json:"sort"`
	Page    int     `json:"page"`
}

// Clear returns the default query: no filters, newest first, page 1.
func Clear() Query {
	return Query{Sort: SortNewest, Page: 1}
}

// WithFilters replaces the filters and goes back to the first page.
func (q Query) WithFilters(f Filters) Query {
	q.Filters = f
	q.Page = 1
	return q.Normalize()
}

// WithSort changes the sort key and goes back to the first page.
func (q Query) WithSort(s SortKey) Query {
	q.Sort = s
	q.Page = 1
	return q.Normalize()
}

func (q Query) WithPage(page int) Query {
	q.Page = page
	return q.Normalize()
}

// Normalize fills in the default sort and page.
func (q Query) Normalize() Query {
	if !q.Sort.Valid() {
		q.Sort = SortNewest
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// IsDefault reports whether q has no active filter, the default sort and page 1.
func (q Query) IsDefault() bool {
	n := q.Normalize()
	return n.Filters.IsZero() && n.Sort == SortNewest && n.Page == 1
}
