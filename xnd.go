// Package xnd is the public facade of the container runtime: construct
// typed in-memory values from host Go data or explicit types, compare
// them, reshape/transpose/split/copy views, and serialize them to and
// from the wire container format. It mirrors the teacher's public-API
// split (multi_map.go's New/PutValue/Get surface, multimap.go's thin
// interface wrapper around a concrete implementation) generalized from a
// single concurrent map type to the whole View/marshal/xndio stack: xnd
// re-exports just enough of those packages' types and functions that a
// caller never needs to import them directly.
package xnd

import (
	"math/rand"

	"github.com/xnd-project/xnd/marshal"
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/view"
	"github.com/xnd-project/xnd/xndio"
)

// Type is the datashape type descriptor; re-exported so callers building
// explicit types do not need to import ndt directly for the common case.
type Type = ndt.Type

// View is a live, possibly-shared handle onto typed memory: an indexable,
// sliceable window with its own shape/strides, backed by one or more
// refcounted arenas.
type View = view.View

// Idx is one index/slice/ellipsis/newaxis operation passed to Subscript.
type Idx = view.Idx

// UnionValue is the host-side representation of an active Union variant.
type UnionValue = view.UnionValue

// Index, Slice, Ellipsis and NewAxis build the four kinds of Subscript
// operand; re-exported from view for caller convenience.
var (
	Index    = view.Int
	Slice    = view.Slice
	Ellipsis = view.Ellipsis
	NewAxis  = view.NewAxis
)

// New constructs a View of the given explicit type, populated from val.
func New(t Type, val any) (*View, error) {
	return marshal.BuildTyped(t, val)
}

// Empty constructs a zero-initialized View of the given fully regular type
// with no host value to assign; optional slots start out present.
func Empty(t Type) (*View, error) {
	return view.Empty(t)
}

// FromValue infers a type from val's shape and constructs a View over it,
// the same convenience the reference implementation calls automatic type
// inference.
func FromValue(val any) (*View, error) {
	return marshal.Build(val)
}

// InferType reports the type FromValue would infer for val, without
// constructing a View.
func InferType(val any) (Type, error) {
	return marshal.InferType(val)
}

// Random generates a well-typed random host value for t, usable with New.
func Random(t Type, rng *rand.Rand) (any, error) {
	return marshal.Random(t, rng)
}

// Equal reports loose (dtype-agnostic numeric, NaN-equal) structural
// equality: same shape and recursively equal element values, with numeric
// scalars compared by value regardless of dtype.
func Equal(a, b *View) (bool, error) {
	return view.Equal(a, b)
}

// StrictEqual reports strict (plain IEEE `==`) structural equality: NaN
// never equals NaN, +0 equals -0.
func StrictEqual(a, b *View) (bool, error) {
	return view.StrictEqual(a, b)
}

// Reshape returns a new view over the same contiguous memory with a
// different shape, or an error if v is not contiguous or the element
// count does not match.
func Reshape(v *View, shape []int) (*View, error) {
	return v.Reshape(shape)
}

// Transpose returns a new view with axes permuted by perm.
func Transpose(v *View, perm []int) (*View, error) {
	return v.Transpose(perm)
}

// Split divides v along axis into n roughly-equal views (the first
// len%n parts get one extra element), matching the reference
// implementation's divmod split policy.
func Split(v *View, axis, n int) ([]*View, error) {
	return v.Split(axis, n)
}

// ContiguousCopy returns a densely-packed, C-contiguous copy of v,
// repacking any ragged var dimension from offset 0.
func ContiguousCopy(v *View) (*View, error) {
	return v.ContiguousCopy()
}

// Serialize writes v to the wire container format.
func Serialize(v *View) ([]byte, error) {
	if err := xndio.ValidateType(v.Type()); err != nil {
		return nil, err
	}
	return xndio.Marshal(v)
}

// Deserialize reconstructs a View previously written by Serialize.
func Deserialize(b []byte) (*View, error) {
	return xndio.Unmarshal(b)
}
