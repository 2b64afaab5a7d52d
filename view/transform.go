package view

import (
	"github.com/xnd-project/xnd/bitmap"
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// isContiguous reports whether the view's regular prefix addresses exactly
// the product-sized block [0, m) in standard row-major order with no var
// dim remaining — the precondition for a zero-copy Reshape.
func (v *View) isContiguous() bool {
	if v.varDim != nil {
		return false
	}
	want := computeStrides(v.shape, ndt.CContig)
	for i := range v.stride {
		if v.stride[i] != want[i] {
			return false
		}
	}
	return v.base == 0
}

// Reshape returns a new view over the same data with shape newShape,
// zero-copy. The view must currently be contiguous; use ContiguousCopy
// first if it is not.
func (v *View) Reshape(newShape []int) (*View, error) {
	if !v.isContiguous() {
		return nil, xnderr.Wrap(xnderr.ErrType, "reshape requires a contiguous view; call ContiguousCopy first")
	}
	if totalElems(newShape) != totalElems(v.shape) {
		return nil, xnderr.Wrap(xnderr.ErrValue, "reshape cannot change the total element count (%d != %d)", totalElems(newShape), totalElems(v.shape))
	}
	cp := v.shallowCopy()
	cp.shape = append([]int(nil), newShape...)
	cp.stride = computeStrides(newShape, ndt.CContig)
	cp.dimOptional = make([]bool, len(newShape))
	cp.dimBitmap = make([]bitmap.Bitmap, len(newShape))
	cp.dimLayout = make([]ndt.DimLayout, len(newShape))
	for i := range cp.dimLayout {
		cp.dimLayout[i] = ndt.CContig
	}
	cp.typ = rebuildType(cp)
	return cp, nil
}

// Transpose returns a new view with its regular dimensions permuted
// according to perm, a permutation of [0, NDim()). A var dimension (and
// anything below it) cannot be transposed and must not be named in perm.
func (v *View) Transpose(perm []int) (*View, error) {
	if v.varDim != nil {
		return nil, xnderr.Wrap(xnderr.ErrNotImplemented, "transpose does not support a view with a remaining var dimension")
	}
	n := len(v.shape)
	if len(perm) != n {
		return nil, xnderr.Wrap(xnderr.ErrValue, "permutation length %d does not match %d dimensions", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, xnderr.Wrap(xnderr.ErrValue, "invalid permutation %v", perm)
		}
		seen[p] = true
	}
	cp := v.shallowCopy()
	for i, p := range perm {
		cp.shape[i] = v.shape[p]
		cp.stride[i] = v.stride[p]
		cp.dimOptional[i] = v.dimOptional[p]
		cp.dimBitmap[i] = v.dimBitmap[p].Clone()
		cp.dimLayout[i] = v.dimLayout[p]
	}
	cp.typ = rebuildType(cp)
	return cp, nil
}

// Split divides dimension axis into n roughly-equal parts (divmod: the
// first len%n parts get one extra element), returning n views each
// covering a contiguous slice of that axis.
func (v *View) Split(axis, n int) ([]*View, error) {
	if n <= 0 {
		return nil, xnderr.Wrap(xnderr.ErrValue, "split count must be positive, got %d", n)
	}
	if axis < 0 || axis >= len(v.shape) {
		if v.varDim != nil && axis == len(v.shape) {
			return v.splitVar(n)
		}
		return nil, xnderr.Wrap(xnderr.ErrOutOfRange, "split axis %d out of range", axis)
	}
	length := v.shape[axis]
	base, rem := length/n, length%n
	out := make([]*View, n)
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		hi := lo + size
		loCopy, hiCopy := lo, hi
		part, err := v.Subscript(axisSlice(len(v.shape), axis, &loCopy, &hiCopy)...)
		if err != nil {
			return nil, err
		}
		out[i] = part
		lo = hi
	}
	return out, nil
}

func (v *View) splitVar(n int) ([]*View, error) {
	length := v.varDim.n
	base, rem := length/n, length%n
	out := make([]*View, n)
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		hi := lo + size
		loCopy, hiCopy := lo, hi
		part, err := v.Subscript(Slice(p(loCopy), p(hiCopy), nil))
		if err != nil {
			return nil, err
		}
		out[i] = part
		lo = hi
	}
	return out, nil
}

func axisSlice(ndim, axis int, lo, hi *int) []Idx {
	idxs := make([]Idx, ndim)
	for i := range idxs {
		if i == axis {
			idxs[i] = Slice(lo, hi, nil)
		} else {
			idxs[i] = Slice(nil, nil, nil)
		}
	}
	return idxs
}

// ContiguousCopy materializes a densely-packed, independently-owned copy of
// this view: every regular dimension becomes C-contiguous and, if a var
// dimension remains, its sublists are repacked back-to-back starting at
// offset 0 with no gaps. Implemented by reading the view back to a host
// value and rebuilding it fresh, which already carries None markers and
// ragged shapes through unchanged.
func (v *View) ContiguousCopy() (*View, error) {
	val, err := v.Value()
	if err != nil {
		return nil, err
	}
	return BuildValue(v.typ, val)
}
