// Package view implements the runtime View descriptor: the typed handle
// obtained by indexing, slicing, transposing, reshaping, or marshalling a
// type tree over memory. It is modeled on the teacher's kind-tagged node
// dispatch (art_node.go / art/get_child.go: a type switch over a node kind
// enum driving per-kind logic, pointer-free traversal through explicit
// tables) generalized from a fixed family of ART node shapes to an
// arbitrary datashape type tree, and on array_based.go's mutex-guarded
// linear container for the root's lifetime bookkeeping.
package view

import (
	"sync/atomic"

	"github.com/xnd-project/xnd/arena"
	"github.com/xnd-project/xnd/bitmap"
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// varState is the runtime table owned by a chain of one or more consecutive
// VarDim levels in a value's type tree (see DESIGN.md: spec §8 scenario 3's
// var-of-var chains are supported via the `child` link below; the one
// corner still rejected at construction time is a FixedDim sandwiched
// between two VarDim occurrences, "var-fixed-var").
type varState struct {
	offsets []int64 // length N+1, in this level's own units
	shapes  []int64 // length N
	bitmap  bitmap.Bitmap
	optional bool

	// window into offsets/shapes this particular View exposes.
	base int
	n    int

	// leaf-instance units spanned by one offset/shape unit: the product of
	// any regular dims between the var dim and the dtype. Only meaningful
	// at the innermost level (child == nil); an outer level's offsets/
	// shapes address rows of child instead.
	unitStride int

	// child is non-nil when this var level is itself followed by another
	// var level (chained var dims) rather than directly by the dtype (or
	// trailing regular dims). A row's offsets[i]/shapes[i] then describe a
	// window [offsets[i], offsets[i]+shapes[i]) into child's own tables.
	child *varState

	trailingShape  []int
	trailingStride []int
	trailingLayout []ndt.DimLayout
}

func (v *varState) clone() *varState {
	if v == nil {
		return nil
	}
	cp := *v
	cp.offsets = append([]int64(nil), v.offsets...)
	cp.shapes = append([]int64(nil), v.shapes...)
	cp.bitmap = v.bitmap.Clone()
	cp.child = v.child.clone()
	cp.trailingShape = append([]int(nil), v.trailingShape...)
	cp.trailingStride = append([]int(nil), v.trailingStride...)
	cp.trailingLayout = append([]ndt.DimLayout(nil), v.trailingLayout...)
	return &cp
}

// root tracks the single owner of a value's backing arenas, shared by every
// derived View through an atomic refcount exactly like the teacher's ART
// nodes share nothing but a multimap owns its slice outright; here the
// analogue is the arena.Arena type itself, which already refcounts — root
// additionally remembers every auxiliary arena (string/bytes heaps, leaf
// data) so the last View to drop can release all of them together.
type root struct {
	refs   atomic.Int64
	arenas []*arena.Arena
}

func newRoot(arenas ...*arena.Arena) *root {
	r := &root{arenas: arenas}
	r.refs.Store(1)
	return r
}

func (r *root) retain() *root {
	r.refs.Add(1)
	return r
}

func (r *root) release() {
	if r.refs.Add(-1) <= 0 {
		for _, a := range r.arenas {
			a.Release()
		}
	}
}

// View is the runtime handle described in §3 of the design: a typed,
// aliased window onto an arena. The zero value is not useful; construct one
// via Empty or the marshal package.
type View struct {
	typ      ndt.Type
	writable bool
	root     *root

	// The regular (possibly 0-dimensional) strided prefix, in leaf-instance
	// units relative to base. If varDim is nil these address the dtype tail
	// directly; otherwise they are the dims strictly above the single var
	// dim in the type tree.
	shape  []int
	stride []int
	base   int

	dimOptional []bool
	dimBitmap   []bitmap.Bitmap
	dimLayout   []ndt.DimLayout

	varDim *varState

	leaf *leafColumn
}

// Type returns the view's full remaining type.
func (v *View) Type() ndt.Type { return v.typ }

// Dtype drops the view's leading dimensions and returns the element type.
func (v *View) Dtype() ndt.Type { return v.typ.DropDim() }

// Writable reports whether mutation through this view is permitted.
func (v *View) Writable() bool { return v.writable }

func (v *View) checkWritable() error {
	if !v.writable {
		return xnderr.Wrap(xnderr.ErrType, "view is not writable")
	}
	return nil
}

// Len returns the outer dimension length; fails for a 0-dim view.
func (v *View) Len() (int, error) {
	if len(v.shape) > 0 {
		return v.shape[0], nil
	}
	if v.varDim != nil {
		return v.varDim.n, nil
	}
	return 0, xnderr.Wrap(xnderr.ErrValue, "len() is undefined for a 0-dim view")
}

// NDim returns the number of addressable leading dimensions remaining.
func (v *View) NDim() int {
	n := len(v.shape)
	for vs := v.varDim; vs != nil; vs = vs.child {
		n++
	}
	return n
}

// Shape returns the size in each remaining regular dimension; a var
// dimension reports -1 (a symbolic value, per §4.4), once per chained var
// level.
func (v *View) Shape() []int {
	out := make([]int, 0, v.NDim())
	out = append(out, v.shape...)
	for vs := v.varDim; vs != nil; vs = vs.child {
		out = append(out, -1)
		if vs.child == nil {
			out = append(out, vs.trailingShape...)
		}
	}
	return out
}

// Strides returns the per-dimension element stride, in leaf-instance units,
// for the regular portions; a var dimension reports 0 (symbolic), once per
// chained var level.
func (v *View) Strides() []int {
	out := make([]int, 0, v.NDim())
	out = append(out, v.stride...)
	for vs := v.varDim; vs != nil; vs = vs.child {
		out = append(out, 0)
		if vs.child == nil {
			out = append(out, vs.trailingStride...)
		}
	}
	return out
}

func totalElems(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// Release drops this view's hold on its backing arenas. Safe to call more
// than once is not guaranteed; callers should call it exactly once when
// finished with a root View (derived views are typically left to the
// garbage collector, matching the teacher's lack of any explicit Drop on
// derived multimap values — only the root's lifetime is load-bearing here).
func (v *View) Release() {
	if v.root != nil {
		v.root.release()
	}
}

func computeStrides(shape []int, layout ndt.DimLayout) []int {
	n := len(shape)
	strides := make([]int, n)
	switch layout {
	case ndt.FContig:
		acc := 1
		for d := 0; d < n; d++ {
			strides[d] = acc
			acc *= shape[d]
		}
	default: // CContig and ArrayOfPointers both address as row-major here
		acc := 1
		for d := n - 1; d >= 0; d-- {
			strides[d] = acc
			acc *= shape[d]
		}
	}
	return strides
}
