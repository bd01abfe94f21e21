// Package filterlist holds an immutable backing collection of labeled
// entries and the subset of it that matches the current filter.
package filterlist

import (
	"errors"
	"fmt"

	"dvach/internal/filter"
)

// ErrSelectionOutOfRange is returned when a selection index does not point
// into the visible subset. Callers guard against it; seeing it means the
// caller lost track of the visible length.
var ErrSelectionOutOfRange = errors.New("selection out of range")

// Item is an entry of a list: Label is what the user sees and filters on,
// Key is the stable identity handed out on selection.
type Item interface {
	Label() string
	Key() string
}

// Compiler turns filter input into a predicate.
type Compiler func(needle string) (filter.Matcher, error)

func containsCompiler(needle string) (filter.Matcher, error) {
	return filter.Contains(needle), nil
}

type List[T Item] struct {
	all     []T
	visible []T
	needle  string
	compile Compiler
	err     error
}

type Option[T Item] func(*List[T])

// WithCompiler replaces the default case-insensitive containment predicate.
func WithCompiler[T Item](c Compiler) Option[T] {
	return func(l *List[T]) { l.compile = c }
}

// New copies entries into the backing collection; every entry is visible.
func New[T Item](entries []T, opts ...Option[T]) *List[T] {
	all := make([]T, len(entries))
	copy(all, entries)
	l := &List[T]{all: all, visible: all, compile: containsCompiler}
	for _, o := range opts {
		o(l)
	}
	return l
}

// SetFilter recomputes the visible subset from the backing collection.
// An empty needle shows everything in backing order. When the needle does
// not compile it is matched as plain text and Err reports why.
func (l *List[T]) SetFilter(needle string) {
	l.needle = needle
	l.err = nil
	if needle == "" {
		l.visible = l.all
		return
	}
	m, err := l.compile(needle)
	if err != nil {
		l.err = err
		m = filter.Contains(needle)
	}
	visible := make([]T, 0, len(l.all))
	for _, e := range l.all {
		if m.Match(e) {
			visible = append(visible, e)
		}
	}
	l.visible = visible
}

func (l *List[T]) Filter() string { return l.needle }

// Err is the compile error of the current filter, if any.
func (l *List[T]) Err() error { return l.err }

func (l *List[T]) Len() int   { return len(l.visible) }
func (l *List[T]) Total() int { return len(l.all) }

// Visible returns the visible subset. Callers must not modify it.
func (l *List[T]) Visible() []T { return l.visible }

// All returns the backing collection. Callers must not modify it.
func (l *List[T]) All() []T { return l.all }

// Entry returns the visible entry at index.
func (l *List[T]) Entry(index int) (T, error) {
	var zero T
	if index < 0 || index >= len(l.visible) {
		return zero, fmt.Errorf("%w: index %d, %d visible", ErrSelectionOutOfRange, index, len(l.visible))
	}
	return l.visible[index], nil
}

// Select returns the key of the visible entry at index.
func (l *List[T]) Select(index int) (string, error) {
	e, err := l.Entry(index)
	if err != nil {
		return "", err
	}
	return e.Key(), nil
}
