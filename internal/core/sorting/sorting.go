// Package sorting implements the stable merge sort every ranking query is
// ordered with.
package sorting

import (
	"cmp"

	"github.com/agenthands/basket/internal/core/model"
)

type options struct {
	reverse bool
}

type Option func(*options)

// Reverse selects descending order. Ties keep their input order either way.
func Reverse(reverse bool) Option {
	return func(o *options) {
		o.reverse = reverse
	}
}

type keyed[T any, K cmp.Ordered] struct {
	key  K
	item T
}

// MergeSort returns a new slice with items ordered by key. The sort is stable,
// runs in O(n log n) time with O(n) auxiliary space, and never modifies items.
func MergeSort[T any, K cmp.Ordered](items []T, key func(T) K, opts ...Option) []T {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]T, len(items))
	if len(items) <= 1 {
		copy(out, items)
		return out
	}

	// Keys are extracted once per element.
	work := make([]keyed[T, K], len(items))
	for i, item := range items {
		work[i] = keyed[T, K]{key: key(item), item: item}
	}
	buf := make([]keyed[T, K], len(items))
	mergeSort(work, buf, o.reverse)

	for i := range work {
		out[i] = work[i].item
	}
	return out
}

// MergeSortOrdered sorts values by themselves.
func MergeSortOrdered[T cmp.Ordered](items []T, opts ...Option) []T {
	return MergeSort(items, func(v T) T { return v }, opts...)
}

// SortPairsByFrequency ranks bundles by frequency, highest first unless
// Reverse(false) is given.
func SortPairsByFrequency(pairs []model.Bundle, opts ...Option) []model.Bundle {
	opts = append([]Option{Reverse(true)}, opts...)
	return MergeSort(pairs, func(b model.Bundle) int { return b.Frequency }, opts...)
}

// SortAssociationsByWeight ranks associations by weight, highest first unless
// Reverse(false) is given.
func SortAssociationsByWeight(assocs []model.Association, opts ...Option) []model.Association {
	opts = append([]Option{Reverse(true)}, opts...)
	return MergeSort(assocs, func(a model.Association) int { return a.Weight }, opts...)
}

func mergeSort[T any, K cmp.Ordered](a, buf []keyed[T, K], reverse bool) {
	if len(a) <= 1 {
		return
	}
	mid := len(a) / 2
	mergeSort(a[:mid], buf[:mid], reverse)
	mergeSort(a[mid:], buf[mid:], reverse)
	merge(a, mid, buf, reverse)
}

// merge combines the sorted halves a[:mid] and a[mid:]. An element from the
// right half only overtakes the left one when it is strictly before it.
func merge[T any, K cmp.Ordered](a []keyed[T, K], mid int, buf []keyed[T, K], reverse bool) {
	copy(buf, a)
	left, right := buf[:mid], buf[mid:len(a)]

	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		c := cmp.Compare(right[j].key, left[i].key)
		if reverse {
			c = -c
		}
		if c < 0 {
			a[k] = right[j]
			j++
		} else {
			a[k] = left[i]
			i++
		}
		k++
	}
	k += copy(a[k:], left[i:])
	copy(a[k:], right[j:])
}
