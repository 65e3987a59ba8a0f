package filter

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	}
	return "", false
}

// SortState is the selected sort field and direction of a list view.
type SortState[F ~string] struct {
	Field     F         `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle applies a click on a sortable column: the active field flips
// direction, any other field becomes active in ascending order.
func (s SortState[F]) Toggle(field F) SortState[F] {
	if s.Field == field {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
		return s
	}
	return SortState[F]{Field: field, Direction: Asc}
}

// Comparator orders two records, returning <0, 0 or >0.
type Comparator[T any] func(a, b T) int

func ByString[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(Fold(key(a)), Fold(key(b)))
	}
}

func ByNumber[T any](key func(T) float64) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

func ByTime[T any](key func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return key(a).Compare(key(b))
	}
}

// Apply returns the records matching pred in their original order. The input
// slice is left untouched.
func Apply[T any](records []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders items in place. Equal keys keep their relative order in both
// directions.
func Sort[T any](items []T, c Comparator[T], dir Direction) {
	if c == nil {
		return
	}
	if dir == Desc {
		slices.SortStableFunc(items, func(a, b T) int { return c(b, a) })
		return
	}
	slices.SortStableFunc(items, c)
}

// FilterAndSort filters records with pred and sorts the result by the
// comparator registered for state.Field. An unknown field keeps input order.
func FilterAndSort[T any, F ~string](records []T, pred Predicate[T], state SortState[F], comparators map[F]Comparator[T]) []T {
	out := Apply(records, pred)
	Sort(out, comparators[state.Field], state.Direction)
	return out
}
