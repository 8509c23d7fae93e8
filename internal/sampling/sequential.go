// Package sampling selects contiguous, wrapping windows from ordered sequences.
//
// A window keeps neighbouring elements together, which preserves topical locality
// when picking lesson chunks or generated questions.
package sampling

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidArgument is wrapped by every precondition failure.
var ErrInvalidArgument = errors.New("invalid sampling argument")

// TakeSequential returns count consecutive items starting at start, wrapping to
// the front of items when the window runs past the end.
func TakeSequential[T any](items []T, count, start int) ([]T, error) {
	n := len(items)
	if n == 0 {
		return nil, fmt.Errorf("%w: 'items' must be non-empty", ErrInvalidArgument)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: 'count' must be a positive integer, got %d", ErrInvalidArgument, count)
	}
	if count > n {
		return nil, fmt.Errorf("%w: 'count' (%d) exceeds the number of items (%d)", ErrInvalidArgument, count, n)
	}
	if start < 0 || start >= n {
		return nil, fmt.Errorf("%w: 'start' must be in [0, %d), got %d", ErrInvalidArgument, n, start)
	}

	out := make([]T, 0, count)
	if count == n {
		return append(out, items...), nil
	}
	if start+count <= n {
		return append(out, items[start:start+count]...), nil
	}
	out = append(out, items[start:]...)
	return append(out, items[:start+count-n]...), nil
}

// TakeRandomSequential picks start uniformly in [0, len(items)) and delegates to
// TakeSequential. intn must return a value in [0, n); nil uses math/rand/v2.
func TakeRandomSequential[T any](items []T, count int, intn func(n int) int) ([]T, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: 'items' must be non-empty", ErrInvalidArgument)
	}
	if intn == nil {
		intn = rand.IntN
	}
	return TakeSequential(items, count, intn(len(items)))
}
