// Package recent tracks recently viewed products, most recent first.
package recent

import (
	"encoding/json"
	"math"
	"slices"
)

const (
	// StorageKey is the local storage entry holding the list.
	StorageKey = "recentlyViewedProducts"
	// Limit caps how many ids are kept.
	Limit = 5
)

type List []int

// Push moves id to the front, dropping older duplicates and anything past Limit.
func (l List) Push(id int) List {
	out := make(List, 0, Limit)
	out = append(out, id)
	for _, existing := range l {
		if len(out) == Limit {
			break
		}
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// Decode parses a stored list. Corrupt data yields an empty list; non-integer
// entries are dropped and the result is capped at Limit.
func Decode(raw string) List {
	if raw == "" {
		return List{}
	}
	var values []any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return List{}
	}
	out := make(List, 0, min(len(values), Limit))
	for _, v := range values {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || slices.Contains(out, int(f)) {
			continue
		}
		out = append(out, int(f))
		if len(out) == Limit {
			break
		}
	}
	return out
}

func (l List) Encode() string {
	if l == nil {
		l = List{}
	}
	data, _ := json.Marshal([]int(l))
	return string(data)
}
