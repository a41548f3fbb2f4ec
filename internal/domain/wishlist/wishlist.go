package wishlist

import "slices"

// Wishlist is an insertion-ordered set of product ids. Operations return a new value.
type Wishlist []int

// New builds a wishlist from ids, dropping duplicates and keeping first occurrences.
func New(ids ...int) Wishlist {
	out := make(Wishlist, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (w Wishlist) Contains(id int) bool {
	return slices.Contains(w, id)
}

// Toggle adds id when absent and removes it when present.
func (w Wishlist) Toggle(id int) Wishlist {
	if w.Contains(id) {
		return w.Remove(id)
	}
	out := make(Wishlist, len(w), len(w)+1)
	copy(out, w)
	return append(out, id)
}

// Remove drops id. Missing ids are ignored.
func (w Wishlist) Remove(id int) Wishlist {
	idx := slices.Index(w, id)
	if idx < 0 {
		return w
	}
	out := make(Wishlist, 0, len(w)-1)
	out = append(out, w[:idx]...)
	return append(out, w[idx+1:]...)
}

func (w Wishlist) Equal(other Wishlist) bool {
	return slices.Equal(w, other)
}
