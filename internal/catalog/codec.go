package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamColors   = "colors"
	ParamSizes    = "sizes"
	ParamSale     = "sale"
	ParamNew      = "new"
	ParamTag      = "tag"
	ParamSort     = "sort"
	ParamPage     = "page"
)

// Values encodes q as URL parameters. Fields at their default value are omitted,
// so the default query encodes to no parameters at all.
func Values(q Query) url.Values {
	q = q.Normalize()
	f := q.Filters
	v := url.Values{}

	setIf(v, ParamSearch, f.Search)
	setIf(v, ParamCategory, f.Category)
	if validPrice(f.MinPrice) {
		v.Set(ParamMinPrice, f.MinPrice)
	}
	if validPrice(f.MaxPrice) {
		v.Set(ParamMaxPrice, f.MaxPrice)
	}
	if colors := cleanList(f.Colors); len(colors) > 0 {
		v.Set(ParamColors, strings.Join(colors, ","))
	}
	if sizes := cleanList(f.Sizes); len(sizes) > 0 {
		v.Set(ParamSizes, strings.Join(sizes, ","))
	}
	if f.Sale {
		v.Set(ParamSale, "1")
	}
	if f.NewArrival {
		v.Set(ParamNew, "1")
	}
	setIf(v, ParamTag, f.Tag)
	if q.Sort != SortNewest {
		v.Set(ParamSort, string(q.Sort))
	}
	if q.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	return v
}

// Encode returns the canonical query string for q, without a leading "?".
func Encode(q Query) string {
	return Values(q).Encode()
}

// Decode parses a query string, with or without a leading "?". Malformed input
// never fails: unknown sort keys fall back to newest, bad pages to 1, and
// unparsable prices are dropped.
func Decode(raw string) Query {
	// ParseQuery keeps every pair it could decode alongside the first error.
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return FromValues(values)
}

// FromValues is Decode for already parsed parameters.
func FromValues(v url.Values) Query {
	q := Query{
		Filters: Filters{
			Search:     v.Get(ParamSearch),
			Category:   v.Get(ParamCategory),
			Colors:     splitList(v.Get(ParamColors)),
			Sizes:      splitList(v.Get(ParamSizes)),
			Sale:       v.Get(ParamSale) == "1",
			NewArrival: v.Get(ParamNew) == "1",
			Tag:        v.Get(ParamTag),
		},
		Sort: SortKey(v.Get(ParamSort)),
		Page: parsePage(v.Get(ParamPage)),
	}
	if p := v.Get(ParamMinPrice); validPrice(p) {
		q.Filters.MinPrice = p
	}
	if p := v.Get(ParamMaxPrice); validPrice(p) {
		q.Filters.MaxPrice = p
	}
	return q.Normalize()
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func validPrice(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := decimal.NewFromString(raw)
	return err == nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return cleanList(strings.Split(raw, ","))
}

// cleanList trims entries and drops empties and repeats, keeping first-seen order.
func cleanList(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
