// Package enumerate filters a sequence of string-like values and numbers
// the survivors.
//
// Two shapes are provided. FilterEnumerate keeps values for which a
// predicate over their text holds. FilterMapEnumerate lets the callback
// replace or drop each value. Both number the kept values densely from 0,
// in input order, after filtering.
package enumerate

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

type Text interface {
	~string | ~[]byte
}

// Indexed pairs a kept value with its position among kept values.
type Indexed[T Text] struct {
	Index int `json:"index"`
	Value T   `json:"value"`
}

func (p Indexed[T]) String() string {
	return fmt.Sprintf("(%d, %q)", p.Index, string(p.Value))
}

// Present is the default predicate. It keeps every value, empty ones included.
func Present(string) bool { return true }

// NonBlank drops empty and whitespace-only values.
func NonBlank(s string) bool { return strings.TrimSpace(s) != "" }

// FilterEnumerate returns the values of input for which keep reports true,
// numbered from 0. A nil keep means Present.
func FilterEnumerate[T Text](input []T, keep func(string) bool) []Indexed[T] {
	if keep == nil {
		keep = Present
	}
	out := make([]Indexed[T], 0, len(input))
	for _, v := range input {
		if keep(string(v)) {
			out = append(out, Indexed[T]{Index: len(out), Value: v})
		}
	}
	return out
}

// Identity is the default mapping. It keeps every value unchanged.
func Identity[T Text](v T) (T, bool) { return v, true }

// Keep turns a predicate into a mapping for FilterMapEnumerate.
func Keep[T Text](pred func(string) bool) func(T) (T, bool) {
	return func(v T) (T, bool) { return v, pred(string(v)) }
}

// FilterMapEnumerate applies f to each value, drops those for which f
// reports false and numbers the rest from 0. A nil f means Identity.
func FilterMapEnumerate[T Text](input []T, f func(T) (T, bool)) []Indexed[T] {
	out := make([]Indexed[T], 0, len(input))
	for i, v := range FilterMapSeq(slices.Values(input), f) {
		out = append(out, Indexed[T]{Index: i, Value: v})
	}
	return out
}

// FilterSeq is FilterEnumerate over an iterator.
func FilterSeq[T Text](seq iter.Seq[T], keep func(string) bool) iter.Seq2[int, T] {
	if keep == nil {
		keep = Present
	}
	return FilterMapSeq(seq, Keep[T](keep))
}

// FilterMapSeq is FilterMapEnumerate over an iterator.
func FilterMapSeq[T Text](seq iter.Seq[T], f func(T) (T, bool)) iter.Seq2[int, T] {
	if f == nil {
		f = Identity[T]
	}
	return func(yield func(int, T) bool) {
		i := 0
		for v := range seq {
			mapped, ok := f(v)
			if !ok {
				continue
			}
			if !yield(i, mapped) {
				return
			}
			i++
		}
	}
}
