package filter

import (
	"strings"
	"time"
)

// Predicate is a boolean test applied to one record.
type Predicate[T any] func(T) bool

// DateRange bounds a timestamp inclusively. A nil side is open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r DateRange) Active() bool {
	return r.From != nil || r.To != nil
}

// Contains reports whether t lies in [From, To]. Zero timestamps are never
// contained, and an inverted range contains nothing.
func (r DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Builder collects the active sub-predicates of a filter configuration.
// Setters given an inactive value (empty search, "all", nil flag, open
// range) add nothing.
type Builder[T any] struct {
	preds []Predicate[T]
}

func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{}
}

// Search matches when the folded term is a substring of any text field. When
// the term looks like a phone number it is also matched, digits only, against
// the phone fields. phones may be nil.
func (b *Builder[T]) Search(term string, fields func(T) []string, phones func(T) []string) *Builder[T] {
	needle := Fold(strings.TrimSpace(term))
	if needle == "" {
		return b
	}
	digits := ""
	if phones != nil && phoneLike(needle) {
		digits = Digits(needle)
	}
	b.preds = append(b.preds, func(rec T) bool {
		for _, f := range fields(rec) {
			if f != "" && strings.Contains(Fold(f), needle) {
				return true
			}
		}
		if phones == nil {
			return false
		}
		for _, p := range phones(rec) {
			if p == "" {
				continue
			}
			if strings.Contains(Fold(p), needle) {
				return true
			}
			if digits != "" && strings.Contains(Digits(p), digits) {
				return true
			}
		}
		return false
	})
	return b
}

// Equal matches records whose field equals value exactly.
func (b *Builder[T]) Equal(value string, field func(T) string) *Builder[T] {
	if Inactive(value) {
		return b
	}
	want := strings.TrimSpace(value)
	b.preds = append(b.preds, func(rec T) bool {
		return field(rec) == want
	})
	return b
}

func (b *Builder[T]) DateRange(r DateRange, field func(T) time.Time) *Builder[T] {
	if !r.Active() {
		return b
	}
	b.preds = append(b.preds, func(rec T) bool {
		return r.Contains(field(rec))
	})
	return b
}

func (b *Builder[T]) Flag(expected *bool, field func(T) bool) *Builder[T] {
	if expected == nil {
		return b
	}
	want := *expected
	b.preds = append(b.preds, func(rec T) bool {
		return field(rec) == want
	})
	return b
}

// Where adds an arbitrary predicate; nil is ignored.
func (b *Builder[T]) Where(p Predicate[T]) *Builder[T] {
	if p != nil {
		b.preds = append(b.preds, p)
	}
	return b
}

// Active returns the number of sub-predicates that will be evaluated.
func (b *Builder[T]) Active() int {
	return len(b.preds)
}

// Build returns the conjunction of the active sub-predicates.
func (b *Builder[T]) Build() Predicate[T] {
	preds := make([]Predicate[T], len(b.preds))
	copy(preds, b.preds)
	if len(preds) == 0 {
		return func(T) bool { return true }
	}
	return func(rec T) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

func phoneLike(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return hasDigit
}
