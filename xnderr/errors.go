// Package xnderr defines the sentinel error kinds surfaced by the container
// runtime. Every operation that can fail returns one of these, optionally
// wrapped with positional context via fmt.Errorf's %w verb so callers can
// still match on the kind with errors.Is.
package xnderr

import (
	"errors"
	"fmt"
)

// Kinds, not type names: callers match on these with errors.Is.
var (
	ErrType                     = errors.New("type_error")
	ErrValue                    = errors.New("value_error")
	ErrOutOfRange               = errors.New("out_of_range")
	ErrOverflow                 = errors.New("overflow")
	ErrTooManyIndices           = errors.New("too_many_indices")
	ErrMissingValueNotIndexable = errors.New("missing_value_not_indexable")
	ErrVarIndexOutOfRangeAcross = errors.New("var_index_out_of_range_across_lists")
	ErrWrongUnionTag            = errors.New("wrong_union_tag")
	ErrNotACategory             = errors.New("not_a_category")
	ErrNotImplemented           = errors.New("not_implemented")
	ErrMemory                   = errors.New("memory_error")
)

// Wrap attaches positional context to a sentinel error kind while keeping it
// matchable via errors.Is(err, kind).
func Wrap(kind error, format string, args ...any) error {
	if format == "" {
		return kind
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
