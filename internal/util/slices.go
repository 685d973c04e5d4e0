package util

import "sort"

// SortBy returns a copy of sl sorted using the given less function. The
// original slice is not modified.
func SortBy[E any](sl []E, lt func(l, r E) bool) []E {
	if len(sl) < 2 {
		return sl
	}

	sorted := make([]E, len(sl))
	copy(sorted, sl)

	sort.Slice(sorted, func(i, j int) bool {
		return lt(sorted[i], sorted[j])
	})

	return sorted
}

// SliceIndexOf returns the index of the first occurrence of v in sl, or -1 if
// it is not present.
func SliceIndexOf[E comparable](v E, sl []E) int {
	for i := range sl {
		if sl[i] == v {
			return i
		}
	}
	return -1
}

// SliceRemove returns a slice with the first occurrence of v removed. If v is
// not present, the slice is returned unchanged.
func SliceRemove[E comparable](v E, sl []E) []E {
	pos := SliceIndexOf(v, sl)
	if pos < 0 {
		return sl
	}

	updated := make([]E, 0, len(sl)-1)
	updated = append(updated, sl[:pos]...)
	updated = append(updated, sl[pos+1:]...)
	return updated
}
