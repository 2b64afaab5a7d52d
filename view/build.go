package view

import (
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// AssignValue recursively assigns a nested host value (produced the same
// way Value() would read one back: []any per dimension, nil for a missing
// element, map[string]any/[]any/UnionValue at the dtype tail) into this
// view. Every sublist length for a var dimension must already have been
// fixed via SetVarShape (BuildValue does this in a first pass) before
// AssignValue descends into it.
func (v *View) AssignValue(val any) error {
	if v.NDim() == 0 {
		return v.Assign(val)
	}
	vals, ok := val.([]any)
	if !ok {
		return xnderr.Wrap(xnderr.ErrType, "expected a list for a %d-dimensional view, got %T", v.NDim(), val)
	}
	n, err := v.Len()
	if err != nil {
		return err
	}
	if len(vals) != n {
		return xnderr.Wrap(xnderr.ErrValue, "expected %d elements, got %d", n, len(vals))
	}
	for i := 0; i < n; i++ {
		if vals[i] == nil {
			if err := v.setDimMissing(i); err != nil {
				return err
			}
			continue
		}
		elem, err := v.At(i)
		if err != nil {
			return err
		}
		if err := elem.AssignValue(vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) setDimMissing(i int) error {
	if len(v.shape) > 0 {
		if !v.dimOptional[0] {
			return xnderr.Wrap(xnderr.ErrType, "dimension is not optional")
		}
		return v.dimBitmap[0].Clear(i)
	}
	if v.varDim != nil {
		if _, err := v.SetVarShape(i, 0); err != nil {
			return err
		}
		return v.SetVarMissing(i)
	}
	return xnderr.Wrap(xnderr.ErrType, "no dimension to mark missing")
}

// BuildValue constructs a new root View of type t populated from val. It
// supports any fully regular type, and a type with a chain of one or more
// consecutive VarDims directly wrapping the dtype (optionally itself
// wrapped by a single FixedDim) with no trailing fixed dims after the
// chain closes — see DESIGN.md for the scope decision behind this limit.
func BuildValue(t ndt.Type, val any) (*View, error) {
	outer, varChain, trailing, dtype, err := analyze(t)
	if err != nil {
		return nil, err
	}
	if len(varChain) == 0 {
		v, err := Empty(t)
		if err != nil {
			return nil, err
		}
		if err := v.AssignValue(val); err != nil {
			return nil, err
		}
		return v, nil
	}
	if len(trailing) > 0 {
		return nil, xnderr.Wrap(xnderr.ErrNotImplemented, "building a value whose var dim chain is followed by further fixed dims is not supported")
	}
	if len(outer) > 1 {
		return nil, xnderr.Wrap(xnderr.ErrNotImplemented, "more than one fixed dim wrapping a var dim chain is not supported")
	}
	outerFixed := 0
	if len(outer) == 1 {
		outerFixed = outer[0].shape
	}
	rows, ok := val.([]any)
	if !ok {
		return nil, xnderr.Wrap(xnderr.ErrType, "expected a list of rows for a var dimension, got %T", val)
	}
	if outerFixed != 0 && outerFixed != len(rows) {
		return nil, xnderr.Wrap(xnderr.ErrValue, "expected %d rows, got %d", outerFixed, len(rows))
	}
	v, err := buildVarValue(outerFixed, varChain, dtype, rows)
	if err != nil {
		return nil, err
	}
	if err := v.AssignValue(rows); err != nil {
		return nil, err
	}
	return v, nil
}
