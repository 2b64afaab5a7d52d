package view

import (
	"github.com/xnd-project/xnd/arena"
	"github.com/xnd-project/xnd/bitmap"
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

type dimDesc struct {
	shape    int
	optional bool
	layout   ndt.DimLayout
}

// analyze walks t's leading dimension chain and splits it into: any regular
// (FixedDim) prefix, a chain of one or more consecutive VarDim nodes
// (varChain, outermost first), any regular (FixedDim) suffix after that
// chain closes, and the dtype itself. Chained var dims (var * var * ...,
// spec §8 scenario 3) are supported to arbitrary depth; the one rejected
// shape is a FixedDim sandwiched between two VarDim occurrences
// ("var-fixed-var") — see DESIGN.md for why that narrow corner remains out
// of scope.
func analyze(t ndt.Type) (outer []dimDesc, varChain []dimDesc, trailing []dimDesc, dtype ndt.Type, err error) {
	cur := t
	const (
		beforeVar = iota
		inVar
		afterVar
	)
	state := beforeVar
	for cur.Kind().IsDim() {
		if cur.Kind() == ndt.KindVarDim {
			if state == afterVar {
				return nil, nil, nil, ndt.Type{}, xnderr.Wrap(xnderr.ErrNotImplemented, "a fixed dim between two var dims (var-fixed-var) is not supported by this runtime")
			}
			state = inVar
			varChain = append(varChain, dimDesc{optional: cur.IsOptional(), layout: cur.Layout()})
			cur = cur.Elem()
			continue
		}
		d := dimDesc{shape: cur.Length(), optional: cur.IsOptional(), layout: cur.Layout()}
		switch state {
		case beforeVar:
			outer = append(outer, d)
		case inVar:
			state = afterVar
			trailing = append(trailing, d)
		case afterVar:
			trailing = append(trailing, d)
		}
		cur = cur.Elem()
	}
	dtype = cur
	return outer, varChain, trailing, dtype, nil
}

func shapesOf(ds []dimDesc) []int {
	out := make([]int, len(ds))
	for i, d := range ds {
		out[i] = d.shape
	}
	return out
}

// Empty constructs a zero-initialized root View for a fully regular type
// (no VarDim anywhere in its dimension chain). Use BuildValue (which the
// marshal package calls, and which learns the per-sublist shapes from a host
// value) or NewVarDim to construct a value whose type contains a ragged axis.
func Empty(t ndt.Type) (*View, error) {
	outer, varChain, _, dtype, err := analyze(t)
	if err != nil {
		return nil, err
	}
	if len(varChain) > 0 {
		return nil, xnderr.Wrap(xnderr.ErrType, "Empty does not support var dims; use NewVarDim")
	}
	shape := shapesOf(outer)
	m := totalElems(shape)
	leaf, err := newLeaf(dtype, m)
	if err != nil {
		return nil, err
	}
	v := &View{
		typ:      t,
		writable: true,
		shape:    shape,
		stride:   computeStrides(shape, outermostLayout(outer)),
		leaf:     leaf,
	}
	v.dimOptional = make([]bool, len(outer))
	v.dimBitmap = make([]bitmap.Bitmap, len(outer))
	v.dimLayout = make([]ndt.DimLayout, len(outer))
	running := m
	for i, d := range outer {
		v.dimLayout[i] = d.layout
		if d.shape != 0 {
			running /= d.shape
		}
		if d.optional {
			v.dimOptional[i] = true
			v.dimBitmap[i] = bitmap.New(d.shape)
		}
	}
	var arenas []*arena.Arena
	leaf.arenas(&arenas)
	v.root = newRoot(arenas...)
	return v, nil
}

func outermostLayout(outer []dimDesc) ndt.DimLayout {
	if len(outer) == 0 {
		return ndt.CContig
	}
	return outer[0].layout
}

// NewVarDim constructs a root View whose dimension chain is
// `[outerN *] var[optional] * dtype` (trailing fixed dims after the var
// are not produced by this constructor — see DESIGN.md). totalLeaf is the
// total number of dtype instances across every sublist, known up front by
// the caller.
//
// The caller must then populate each sublist in order via SetVarShape
// before writing any dtype-level data, and finally NewVarDim's returned
// View addresses dtype instance k via the flat index SetVarShape(i, ...)
// returns as `start`.
func NewVarDim(outerFixed int, varOptional bool, dtype ndt.Type, outerN, totalLeaf int) (*View, error) {
	leaf, err := newLeaf(dtype, totalLeaf)
	if err != nil {
		return nil, err
	}
	vs := &varState{
		offsets:    arena.NewOffsetTable(outerN),
		shapes:     arena.NewShapeTable(outerN),
		optional:   varOptional,
		n:          outerN,
		unitStride: 1,
	}
	if varOptional {
		vs.bitmap = bitmap.New(outerN)
	}
	typ := ndt.VarDim(dtype)
	if varOptional {
		typ = typ.Opt()
	}
	if outerFixed > 0 {
		typ = ndt.FixedDim(outerFixed, typ)
		if outerFixed != outerN {
			return nil, xnderr.Wrap(xnderr.ErrValue, "outer fixed shape %d does not match var table length %d", outerFixed, outerN)
		}
	}
	v := &View{typ: typ, writable: true, varDim: vs, leaf: leaf}
	var arenas []*arena.Arena
	leaf.arenas(&arenas)
	v.root = newRoot(arenas...)
	return v, nil
}

// SetVarShape records that sublist i (0-based) has the given length, and
// returns the flat index (in this level's own units — leaf instances at
// the innermost chain level, child rows at any outer level) at which its
// elements begin. Sublists must be filled in order 0..N-1.
func (v *View) SetVarShape(i, length int) (start int, err error) {
	if err := v.checkWritable(); err != nil {
		return 0, err
	}
	if v.varDim == nil {
		return 0, xnderr.Wrap(xnderr.ErrType, "view has no var dimension")
	}
	return setVarShape(v.varDim, i, length)
}

func setVarShape(vs *varState, i, length int) (start int, err error) {
	if i < 0 || i >= len(vs.shapes) {
		return 0, xnderr.Wrap(xnderr.ErrOutOfRange, "sublist index %d out of range [0,%d)", i, len(vs.shapes))
	}
	cursor := vs.offsets[i]
	vs.shapes[i] = int64(length)
	vs.offsets[i+1] = cursor + int64(length)
	return int(cursor), nil
}

// buildVarChain constructs a nested varState chain (outermost first) and a
// single shared leaf column sized to the chain's total leaf-element count,
// from a chain of level descriptors and the nested host rows that will be
// assigned into it. Only the table bookkeeping (offsets/shapes/bitmap/
// child linkage) is built here; View.AssignValue fills the actual dtype
// values afterward by walking the same nested rows through At/Assign.
func buildVarChain(levels []dimDesc, dtype ndt.Type, rows []any) (*varState, *leafColumn, error) {
	level := levels[0]
	n := len(rows)
	vs := &varState{
		offsets:    arena.NewOffsetTable(n),
		shapes:     arena.NewShapeTable(n),
		optional:   level.optional,
		n:          n,
		unitStride: 1,
	}
	if level.optional {
		vs.bitmap = bitmap.New(n)
	}

	rowLens := make([]int, n)
	var childRows []any
	if len(levels) > 1 {
		childRows = make([]any, 0, n)
	}
	total := 0
	for i, row := range rows {
		if row == nil {
			continue
		}
		rs, ok := row.([]any)
		if !ok {
			return nil, nil, xnderr.Wrap(xnderr.ErrType, "var dimension row %d: expected a list, got %T", i, row)
		}
		rowLens[i] = len(rs)
		if len(levels) > 1 {
			childRows = append(childRows, rs...)
		} else {
			total += len(rs)
		}
	}

	var leaf *leafColumn
	var err error
	if len(levels) == 1 {
		leaf, err = newLeaf(dtype, total)
		if err != nil {
			return nil, nil, err
		}
	} else {
		vs.child, leaf, err = buildVarChain(levels[1:], dtype, childRows)
		if err != nil {
			return nil, nil, err
		}
	}

	for i := range rows {
		if _, err := setVarShape(vs, i, rowLens[i]); err != nil {
			return nil, nil, err
		}
		if rows[i] == nil {
			if !level.optional {
				return nil, nil, xnderr.Wrap(xnderr.ErrType, "var dimension row %d is missing but the dimension is not optional", i)
			}
			if err := vs.bitmap.Clear(i); err != nil {
				return nil, nil, err
			}
		}
	}
	return vs, leaf, nil
}

// buildVarValue constructs a root View whose dimension chain is
// `[outerFixed *] levels[0] * levels[1] * ... * dtype` (levels is the
// consecutive var-dim chain, outermost first) from a nested host value.
func buildVarValue(outerFixed int, levels []dimDesc, dtype ndt.Type, rows []any) (*View, error) {
	vs, leaf, err := buildVarChain(levels, dtype, rows)
	if err != nil {
		return nil, err
	}
	typ := dtype
	for i := len(levels) - 1; i >= 0; i-- {
		t := ndt.VarDim(typ)
		if levels[i].optional {
			t = t.Opt()
		}
		typ = t
	}
	if outerFixed > 0 {
		typ = ndt.FixedDim(outerFixed, typ)
	}
	v := &View{typ: typ, writable: true, varDim: vs, leaf: leaf}
	var arenas []*arena.Arena
	leaf.arenas(&arenas)
	v.root = newRoot(arenas...)
	return v, nil
}

// SetVarMissing marks sublist i as None (the whole ragged row absent).
func (v *View) SetVarMissing(i int) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	if v.varDim == nil || !v.varDim.optional {
		return xnderr.Wrap(xnderr.ErrType, "view's var dimension is not optional")
	}
	return v.varDim.bitmap.Clear(i)
}
