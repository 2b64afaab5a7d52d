package view

import "math"

// Equal reports loose, value-level equality: numeric scalars compare by
// value regardless of dtype (an int64 and a float32 array holding the same
// numbers compare equal), and NaN equals NaN. This is the notion used for
// things like deduplication, where two differently-typed views that "mean
// the same thing" should collapse together.
func Equal(a, b *View) (bool, error) {
	return compareViews(a, b, false)
}

// StrictEqual reports plain IEEE float equality (NaN != NaN) composed
// structurally over the rest of the type tree, and additionally requires
// both views to have identical types.
func StrictEqual(a, b *View) (bool, error) {
	return compareViews(a, b, true)
}

func compareViews(a, b *View, strict bool) (bool, error) {
	if strict && !a.typ.Equal(b.typ) {
		return false, nil
	}
	av, err := a.Value()
	if err != nil {
		return false, err
	}
	bv, err := b.Value()
	if err != nil {
		return false, err
	}
	return equalValues(av, bv, strict), nil
}

func equalValues(a, b any, strict bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case complex128:
		var bv complex128
		if c, ok := b.(complex128); ok {
			bv = c
		} else if !strict {
			c, ok := toComplex(b)
			if !ok {
				return false
			}
			bv = c
		} else {
			return false
		}
		return equalFloat(real(av), real(bv), strict) && equalFloat(imag(av), imag(bv), strict)
	case []byte:
		bv, ok := b.([]byte)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i], strict) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ov, present := bv[k]
			if !present || !equalValues(v, ov, strict) {
				return false
			}
		}
		return true
	case UnionValue:
		bv, ok := b.(UnionValue)
		return ok && av.Index == bv.Index && equalValues(av.Value, bv.Value, strict)
	default:
		// Strict equality already requires identical types at the *View
		// level (compareViews), so same-kind scalars compare fine via the
		// plain == below. Loose equality additionally coerces across
		// numeric dtypes, per §4.7's int64-vs-float32 example.
		if !strict {
			if af, ok := toFloat(a); ok {
				if bf, ok := toFloat(b); ok {
					return equalFloat(af, bf, false)
				}
			}
		}
		return a == b
	}
}

// toFloat converts a decoded scalar host value (as produced by
// leafColumn.value) to float64 for dtype-agnostic numeric comparison.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toComplex(v any) (complex128, bool) {
	if c, ok := v.(complex128); ok {
		return c, true
	}
	if f, ok := toFloat(v); ok {
		return complex(f, 0), true
	}
	return 0, false
}

// equalFloat compares by value. Under both strict and loose comparison,
// signed zero is preserved by the underlying == (so +0 == -0 either way,
// matching §4.7's "float by bit pattern (sign-preserving zero)" rule); the
// two modes differ only on NaN, where strict keeps IEEE's NaN != NaN and
// loose treats NaN as equal to itself so round-tripped missing/NaN data
// dedupes sensibly.
func equalFloat(a, b float64, strict bool) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN || bNaN {
		if strict {
			return false
		}
		return aNaN && bNaN
	}
	return a == b
}
