// Package topn selects the largest elements of a slice without touching the input.
package topn

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidArgument is returned for a negative n.
var ErrInvalidArgument = errors.New("invalid argument")

// TopN returns the n largest items in descending order.
func TopN[T cmp.Ordered](items []T, n int) ([]T, error) {
	return TopNFunc(items, n, cmp.Compare[T])
}

// TopNFunc is TopN for any element type ordered by compare.
func TopNFunc[T any](items []T, n int, compare func(a, b T) int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("n must be >= 0, got %d: %w", n, ErrInvalidArgument)
	}
	if n == 0 {
		return []T{}, nil
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int { return compare(b, a) })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []T{}
	}
	return sorted, nil
}
