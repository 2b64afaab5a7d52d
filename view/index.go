package view

import (
	"github.com/xnd-project/xnd/bitmap"
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// IdxKind tags one element of a Subscript index list.
type IdxKind int

const (
	IdxInt IdxKind = iota
	IdxSlice
	IdxEllipsis
	IdxNewAxis
)

// Idx is one position in a Subscript call: an integer index, a Python-style
// slice (nil bound pointers mean "omitted", matching `a[::-1]`, `a[1:]`),
// an ellipsis, or a newaxis.
type Idx struct {
	Kind               IdxKind
	I                  int
	Lo, Hi, Step       int
	HasLo, HasHi, HasStep bool
}

func Int(i int) Idx { return Idx{Kind: IdxInt, I: i} }

func Slice(lo, hi, step *int) Idx {
	idx := Idx{Kind: IdxSlice}
	if lo != nil {
		idx.Lo, idx.HasLo = *lo, true
	}
	if hi != nil {
		idx.Hi, idx.HasHi = *hi, true
	}
	if step != nil {
		idx.Step, idx.HasStep = *step, true
	}
	return idx
}

func Ellipsis() Idx { return Idx{Kind: IdxEllipsis} }
func NewAxis() Idx  { return Idx{Kind: IdxNewAxis} }

func p(n int) *int { return &n }

// normalizeSlice resolves Python-style slice bounds against a dimension of
// length n, returning (lo, count, step).
func normalizeSlice(idx Idx, n int) (lo, count, step int, err error) {
	step = 1
	if idx.HasStep {
		step = idx.Step
		if step == 0 {
			return 0, 0, 0, xnderr.Wrap(xnderr.ErrValue, "slice step cannot be zero")
		}
	}
	var defaultLo, defaultHi int
	if step > 0 {
		defaultLo, defaultHi = 0, n
	} else {
		defaultLo, defaultHi = n-1, -1
	}
	lo = defaultLo
	if idx.HasLo {
		lo = clampIndex(idx.Lo, n, step > 0)
	}
	hi := defaultHi
	if idx.HasHi {
		hi = clampIndex(idx.Hi, n, step > 0)
	}
	if step > 0 {
		if hi < lo {
			hi = lo
		}
		count = (hi - lo + step - 1) / step
	} else {
		if hi > lo {
			hi = lo
		}
		count = (lo - hi + (-step) - 1) / (-step)
	}
	if count < 0 {
		count = 0
	}
	return lo, count, step, nil
}

func clampIndex(i, n int, forward bool) int {
	if i < 0 {
		i += n
	}
	if forward {
		if i < 0 {
			i = 0
		}
		if i > n {
			i = n
		}
	} else {
		if i < -1 {
			i = -1
		}
		if i >= n {
			i = n - 1
		}
	}
	return i
}

func normalizeInt(i, n int) (int, error) {
	orig := i
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, xnderr.Wrap(xnderr.ErrOutOfRange, "index %d out of range [0,%d)", orig, n)
	}
	return i, nil
}

// expand resolves an ellipsis against the view's current NDim and pads
// the list with full slices so every physical dimension gets an op.
// Newaxis ops stay in place in the returned list; they add a dimension
// rather than consuming one.
func (v *View) expand(idxs []Idx) ([]Idx, error) {
	ellipsisAt := -1
	consuming := 0
	for i, ix := range idxs {
		switch ix.Kind {
		case IdxEllipsis:
			if ellipsisAt != -1 {
				return nil, xnderr.Wrap(xnderr.ErrValue, "only one ellipsis is permitted")
			}
			ellipsisAt = i
		case IdxNewAxis:
		default:
			consuming++
		}
	}
	nd := v.NDim()
	maxOps := nd
	if v.varDim != nil {
		// One further op is permitted beyond the chain's own dimension
		// count: once a trailing var level narrows to a single row (e.g.
		// spec §8 scenario 3's v[1:2, ::2, ...]), that row's own elements
		// become indexable by one more op in the same call (the ::-1).
		maxOps++
	}
	if consuming > maxOps {
		return nil, xnderr.Wrap(xnderr.ErrTooManyIndices, "%d indices given for %d dimensions", consuming, nd)
	}
	if ellipsisAt == -1 {
		out := append([]Idx(nil), idxs...)
		for len(out) < nd+countNewAxis(idxs) {
			out = append(out, Idx{Kind: IdxSlice})
		}
		return out, nil
	}
	fill := nd - consuming
	out := append([]Idx(nil), idxs[:ellipsisAt]...)
	for i := 0; i < fill; i++ {
		out = append(out, Idx{Kind: IdxSlice})
	}
	out = append(out, idxs[ellipsisAt+1:]...)
	return out, nil
}

func countNewAxis(idxs []Idx) int {
	n := 0
	for _, ix := range idxs {
		if ix.Kind == IdxNewAxis {
			n++
		}
	}
	return n
}

// Subscript applies a Python-like index/slice expression, returning a new
// (possibly lower-rank) View that aliases the same underlying arenas.
func (v *View) Subscript(idxs ...Idx) (*View, error) {
	ops, err := v.expand(idxs)
	if err != nil {
		return nil, err
	}

	cur := v.shallowCopy()
	regularD := 0 // which entry of cur.shape/stride we're consuming next

	// varCursor tracks which level of a chained var dimension the next
	// var-targeted op applies to; varParent is whichever node's .child (or,
	// if nil, cur.varDim itself) holds varCursor, so a dropped (IdxInt)
	// level can be spliced out of the chain in place.
	var varCursor *varState
	var varParent *varState
	varStarted := false

	// lastRetainedInnerLevel is the innermost var level (child == nil) most
	// recently narrowed by a retained (slice) op, while it still has no
	// further chain level to descend into. If one more op follows once the
	// chain is otherwise exhausted, it targets that single remaining row's
	// own elements (spec §8 scenario 3's trailing ::-1).
	var lastRetainedInnerLevel *varState

	for _, op := range ops {
		if op.Kind == IdxNewAxis {
			cur.shape = insertAt(cur.shape, regularD, 1)
			cur.stride = insertAt(cur.stride, regularD, 0)
			cur.dimOptional = insertBoolAt(cur.dimOptional, regularD, false)
			cur.dimBitmap = insertBitmapAt(cur.dimBitmap, regularD, bitmap.Bitmap{})
			cur.dimLayout = insertLayoutAt(cur.dimLayout, regularD, ndt.CContig)
			regularD++
			continue
		}
		if regularD < len(cur.shape) {
			if err := applyRegular(cur, regularD, op); err != nil {
				return nil, err
			}
			if op.Kind == IdxInt {
				cur.dropRegularDim(regularD)
			} else {
				regularD++
			}
			continue
		}
		if !varStarted && cur.varDim != nil {
			varStarted = true
			varCursor = cur.varDim
		}
		if varCursor != nil {
			level := varCursor
			next, dropped, err := applyVarLevel(cur, varParent, level, op)
			if err != nil {
				return nil, err
			}
			if dropped {
				varCursor = next
				lastRetainedInnerLevel = nil
			} else {
				varParent = level
				varCursor = level.child
				if level.child == nil {
					lastRetainedInnerLevel = level
				} else {
					lastRetainedInnerLevel = nil
				}
			}
			continue
		}
		if lastRetainedInnerLevel != nil {
			if err := applyLeafLevelOp(lastRetainedInnerLevel, op); err != nil {
				return nil, err
			}
			lastRetainedInnerLevel = nil
			continue
		}
		return nil, xnderr.Wrap(xnderr.ErrTooManyIndices, "too many indices")
	}
	cur.typ = rebuildType(cur)
	return cur, nil
}

func insertAt(s []int, at, v int) []int {
	out := make([]int, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	out = append(out, s[at:]...)
	return out
}
func insertBoolAt(s []bool, at int, v bool) []bool {
	out := make([]bool, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	out = append(out, s[at:]...)
	return out
}
func insertBitmapAt(s []bitmap.Bitmap, at int, v bitmap.Bitmap) []bitmap.Bitmap {
	out := make([]bitmap.Bitmap, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	out = append(out, s[at:]...)
	return out
}
func insertLayoutAt(s []ndt.DimLayout, at int, v ndt.DimLayout) []ndt.DimLayout {
	out := make([]ndt.DimLayout, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	out = append(out, s[at:]...)
	return out
}

// shallowCopy duplicates the dimension/var-table bookkeeping (so the clone
// can be mutated independently) while sharing the leaf column and retaining
// the same arena ownership — exactly the "per-view tables cloned, arena
// shared" discipline the design calls for.
func (v *View) shallowCopy() *View {
	cp := &View{
		typ:      v.typ,
		writable: v.writable,
		root:     v.root.retain(),
		shape:    append([]int(nil), v.shape...),
		stride:   append([]int(nil), v.stride...),
		base:     v.base,
		dimOptional: append([]bool(nil), v.dimOptional...),
		dimLayout:   append([]ndt.DimLayout(nil), v.dimLayout...),
		varDim:   v.varDim.clone(),
		leaf:     v.leaf,
	}
	cp.dimBitmap = make([]bitmap.Bitmap, len(v.dimBitmap))
	for i := range v.dimBitmap {
		cp.dimBitmap[i] = v.dimBitmap[i].Clone()
	}
	return cp
}

func (v *View) dropRegularDim(d int) {
	v.shape = append(v.shape[:d], v.shape[d+1:]...)
	v.stride = append(v.stride[:d], v.stride[d+1:]...)
	v.dimOptional = append(v.dimOptional[:d], v.dimOptional[d+1:]...)
	v.dimBitmap = append(v.dimBitmap[:d], v.dimBitmap[d+1:]...)
	v.dimLayout = append(v.dimLayout[:d], v.dimLayout[d+1:]...)
}

func applyRegular(v *View, d int, op Idx) error {
	n := v.shape[d]
	switch op.Kind {
	case IdxInt:
		i, err := normalizeInt(op.I, n)
		if err != nil {
			return err
		}
		if v.dimOptional[d] && !v.dimBitmap[d].IsSet(i) {
			return xnderr.Wrap(xnderr.ErrMissingValueNotIndexable, "dimension %d element %d is missing", d, op.I)
		}
		v.base += i * v.stride[d]
		return nil
	default: // IdxSlice
		lo, count, step, err := normalizeSlice(op, n)
		if err != nil {
			return err
		}
		v.base += lo * v.stride[d]
		v.stride[d] = v.stride[d] * step
		if v.dimOptional[d] {
			idxList := make([]int, count)
			for i := 0; i < count; i++ {
				idxList[i] = lo + i*step
			}
			bm, err := v.dimBitmap[d].Gather(idxList)
			if err != nil {
				return err
			}
			v.dimBitmap[d] = bm
		}
		v.shape[d] = count
		return nil
	}
}

// applyVarLevel applies one index op to a single level of a (possibly
// chained) var dimension. It reports the level the NEXT var-targeted op
// should apply to (next) and whether this level was dropped (IdxInt,
// matching applyRegular+dropRegularDim's "Int collapses the dim" rule) as
// opposed to retained (IdxSlice, which narrows the level but keeps it as
// its own dimension — so a further op can still slice the next level
// independently, e.g. spec §8 scenario 3's v[1:2, ::2, ::-1] over
// `3 * var * var * int64`).
func applyVarLevel(v *View, parent *varState, level *varState, op Idx) (next *varState, dropped bool, err error) {
	n := level.n
	switch op.Kind {
	case IdxInt:
		i, err := normalizeInt(op.I, n)
		if err != nil {
			return nil, false, err
		}
		real := level.base + i
		if level.optional && !level.bitmap.IsSet(real) {
			return nil, false, xnderr.Wrap(xnderr.ErrMissingValueNotIndexable, "var-dim element %d is missing", op.I)
		}
		off := int(level.offsets[real])
		length := int(level.shapes[real])
		if level.child != nil {
			// level is already this Subscript call's own private clone (see
			// shallowCopy), so level.child is too; window into it directly
			// and splice it into whichever slot level used to occupy.
			child := level.child
			if level.n != 1 {
				child.base = off
				child.n = length
			}
			// When level.n==1 there is exactly one possible row (real is
			// always level.base), and child may already have been narrowed
			// further by a later op on this same level in an earlier
			// Subscript call (e.g. scenario 3's ::2 after the 1:2 that
			// narrowed level to one row) — resetting child here from
			// level's own (now stale) offsets/shapes would discard that.
			spliceVarLevel(v, parent, child)
			return child, true, nil
		}
		off *= level.unitStride
		v.base = off
		v.shape = append([]int(nil), level.trailingShape...)
		v.stride = append([]int(nil), level.trailingStride...)
		v.dimLayout = append([]ndt.DimLayout(nil), level.trailingLayout...)
		v.dimOptional = make([]bool, len(v.shape))
		v.dimBitmap = make([]bitmap.Bitmap, len(v.shape))
		if len(v.shape) == 0 {
			v.shape = []int{length}
			v.stride = []int{level.unitStride}
			v.dimLayout = []ndt.DimLayout{ndt.CContig}
			v.dimOptional = []bool{false}
			v.dimBitmap = []bitmap.Bitmap{{}}
		}
		spliceVarLevel(v, parent, nil)
		return nil, true, nil
	default: // IdxSlice
		lo, count, step, err := normalizeSlice(op, n)
		if err != nil {
			return nil, false, err
		}
		if step == 1 {
			level.base = level.base + lo
			level.n = count
		} else {
			// Any non-contiguous selection (reversed or otherwise strided):
			// materialize gathered offset/shape tables for just the rows
			// picked.
			idxList := make([]int, count)
			for k := 0; k < count; k++ {
				idxList[k] = level.base + lo + k*step
			}
			newOffsets := make([]int64, count+1)
			newShapes := make([]int64, count)
			for k, real := range idxList {
				newOffsets[k] = level.offsets[real]
				newShapes[k] = level.shapes[real]
			}
			newBitmap, err := level.bitmap.Gather(idxList)
			if err != nil {
				return nil, false, err
			}
			level.offsets = newOffsets
			level.shapes = newShapes
			level.bitmap = newBitmap
			level.base = 0
			level.n = count
		}
		if level.child != nil {
			// A further op targets level.child next, but only the rows
			// belonging to the rows level itself just selected — restrict
			// (and reindex) the child table to exactly those, so the next
			// op doesn't see sibling rows from parent rows this slice
			// dropped.
			if err := restrictVarChild(level); err != nil {
				return nil, false, err
			}
		}
		return level.child, false, nil
	}
}

// applyLeafLevelOp applies one further slice to the single remaining row of
// an innermost var level (level.child == nil) once it has narrowed to
// exactly one row — spec §8 scenario 3's trailing ::-1, reversing the ints
// of the one ragged row the preceding two ops already selected. The row's
// length only becomes a single concrete number once level.n == 1, so this
// can't be modeled as an ordinary chain level; it instead rewrites this one
// row's own offset/shape entry and records the result in trailingShape/
// trailingStride, which the existing Int-collapse path already knows how to
// read back verbatim instead of falling back to "the whole row".
func applyLeafLevelOp(level *varState, op Idx) error {
	if level.n != 1 {
		return xnderr.Wrap(xnderr.ErrNotImplemented, "cannot apply a further index across %d differently-shaped var rows at once", level.n)
	}
	if op.Kind == IdxInt {
		return xnderr.Wrap(xnderr.ErrNotImplemented, "a further integer index into a var row's own elements is not supported")
	}
	real := level.base
	if level.optional && !level.bitmap.IsSet(real) {
		return xnderr.Wrap(xnderr.ErrMissingValueNotIndexable, "var-dim row is missing")
	}
	length := int(level.shapes[real])
	lo, count, step, err := normalizeSlice(op, length)
	if err != nil {
		return err
	}
	level.offsets[real] += int64(lo)
	level.shapes[real] = int64(count)
	level.trailingShape = []int{count}
	level.trailingStride = []int{level.unitStride * step}
	level.trailingLayout = []ndt.DimLayout{ndt.CContig}
	return nil
}

// spliceVarLevel replaces a dropped chain node with its (possibly nil)
// replacement in whichever slot it occupied: the view's own varDim field if
// it was the outermost level, or its parent's child pointer otherwise.
func spliceVarLevel(v *View, parent *varState, replacement *varState) {
	if parent == nil {
		v.varDim = replacement
		return
	}
	parent.child = replacement
}

// restrictVarChild narrows level.child to exactly the rows belonging to
// level's own current (already narrowed) window, reindexing level's own
// offsets/shapes to address the newly restricted child table. level.child's
// own child (if any) is left shared/untouched: each kept child row still
// points to the same grandchild range it always did, since that addressing
// is per exact child row, not per parent row.
func restrictVarChild(level *varState) error {
	n := level.n
	indices := make([]int, 0, n)
	newOffsets := make([]int64, n+1)
	newShapes := make([]int64, n)
	cursor := int64(0)
	for k := 0; k < n; k++ {
		real := level.base + k
		off := level.offsets[real]
		length := level.shapes[real]
		for j := int64(0); j < length; j++ {
			indices = append(indices, int(off+j))
		}
		newOffsets[k] = cursor
		newShapes[k] = length
		cursor += length
	}
	newOffsets[n] = cursor

	child := level.child
	gatheredOffsets := make([]int64, len(indices))
	gatheredShapes := make([]int64, len(indices))
	for k, real := range indices {
		gatheredOffsets[k] = child.offsets[real]
		gatheredShapes[k] = child.shapes[real]
	}
	gatheredBitmap, err := child.bitmap.Gather(indices)
	if err != nil {
		return err
	}
	level.child = &varState{
		offsets:        gatheredOffsets,
		shapes:         gatheredShapes,
		bitmap:         gatheredBitmap,
		optional:       child.optional,
		base:           0,
		n:              len(indices),
		unitStride:     child.unitStride,
		child:          child.child,
		trailingShape:  append([]int(nil), child.trailingShape...),
		trailingStride: append([]int(nil), child.trailingStride...),
		trailingLayout: append([]ndt.DimLayout(nil), child.trailingLayout...),
	}
	level.offsets = newOffsets
	level.shapes = newShapes
	level.base = 0
	level.n = n
	return nil
}

// rebuildType reconstructs the remaining ndt.Type from a View's current
// physical shape so Type()/Dtype() stay accurate after Subscript.
func rebuildType(v *View) ndt.Type {
	t := v.leaf.typ
	if v.varDim != nil {
		// Walk the chain innermost-first so the type tree nests the same
		// way the varState chain does (outermost varDim wraps everything).
		var chain []*varState
		for vs := v.varDim; vs != nil; vs = vs.child {
			chain = append(chain, vs)
		}
		innermost := chain[len(chain)-1]
		for i := len(innermost.trailingShape) - 1; i >= 0; i-- {
			t = ndt.FixedDim(innermost.trailingShape[i], t)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			vd := ndt.VarDim(t)
			if chain[i].optional {
				vd = vd.Opt()
			}
			t = vd
		}
	}
	for i := len(v.shape) - 1; i >= 0; i-- {
		fd := ndt.FixedDim(v.shape[i], t)
		if i < len(v.dimOptional) && v.dimOptional[i] {
			fd = fd.Opt()
		}
		t = fd
	}
	return t
}
