// Package ranking orders entities by score.
//
// Two flavours are provided: Rank computes a linear score from an entity's metric
// vector and a caller supplied weight vector, Order accepts any scoring function.
// Both sort by score descending and keep the input order for equal scores.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrDimensionMismatch is matched by errors returned when a metric vector and the
// weight vector differ in length.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Score is the set of numeric types a score can have.
type Score interface {
	~int | ~int64 | ~float64
}

// Metered is implemented by entities carrying a metric vector.
type Metered interface {
	Name() string
	Metrics() []float64
}

// Weights is the per-metric multiplier used by Rank.
type Weights []float64

// Scored pairs an entity with the score it was ranked by.
type Scored[T any, S Score] struct {
	Item  T
	Score S
}

// DimensionMismatchError reports the first entity whose metric vector does not fit the weights.
type DimensionMismatchError struct {
	Index   int
	Name    string
	Metrics int
	Weights int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: entity %d (%q) has %d metrics, weight vector has %d",
		ErrDimensionMismatch, e.Index, e.Name, e.Metrics, e.Weights)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// Dot returns the weighted sum of metrics. Both slices must have the same length.
func (w Weights) Dot(metrics []float64) float64 {
	var sum float64
	for i, m := range metrics {
		sum += m * w[i]
	}
	return sum
}

// Rank scores every entity as the dot product of its metrics and weights and returns
// the pairs sorted by score descending. Equal scores keep their input order.
// An empty input produces an empty result. The input slice is left untouched.
func Rank[T Metered](items []T, weights Weights) ([]Scored[T, float64], error) {
	for i, item := range items {
		if n := len(item.Metrics()); n != len(weights) {
			return nil, &DimensionMismatchError{
				Index:   i,
				Name:    item.Name(),
				Metrics: n,
				Weights: len(weights),
			}
		}
	}

	return Order(items, func(item T) float64 {
		return weights.Dot(item.Metrics())
	}), nil
}

// Order scores items with fn and returns them sorted by score descending.
// Equal scores keep their input order.
func Order[T any, S Score](items []T, fn func(T) S) []Scored[T, S] {
	scored := make([]Scored[T, S], 0, len(items))
	for _, item := range items {
		scored = append(scored, Scored[T, S]{Item: item, Score: fn(item)})
	}

	sortDesc(scored)
	return scored
}

// SelectTopN returns at most n entries with the highest scores, highest first.
// Equal scores keep their relative order. A non-positive n selects nothing.
func SelectTopN[T any, S Score](scored []Scored[T, S], n int) []Scored[T, S] {
	if n <= 0 || len(scored) == 0 {
		return []Scored[T, S]{}
	}

	sorted := slices.Clone(scored)
	sortDesc(sorted)

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Items strips the scores.
func Items[T any, S Score](scored []Scored[T, S]) []T {
	items := make([]T, 0, len(scored))
	for _, s := range scored {
		items = append(items, s.Item)
	}
	return items
}

func sortDesc[T any, S Score](scored []Scored[T, S]) {
	slices.SortStableFunc(scored, func(a, b Scored[T, S]) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
