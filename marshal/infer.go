// Package marshal turns untyped, nested Go host values into typed memory
// and back, and generates random typed test values. It is grounded on the
// teacher's typed-constructor idiom (key.go: FromInt/FromString/FromBytes,
// one constructor per accepted Go input shape) generalized from a single
// flat key type to the full recursive datashape tree, and hands the actual
// typed construction off to the view package's BuildValue once a type has
// been inferred or supplied explicitly.
package marshal

import (
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// MaxDim is the deepest nested-list dimension this runtime will infer
// before giving up, mirroring the external type library's own recursion
// cap (its documented MAX_DIM).
const MaxDim = 128

// InferType infers a datashape Type for val the same way the reference
// implementation's automatic type inference does: an empty list becomes a
// var dimension of float64; a list of scalars becomes a fixed dim; dicts
// become records; nested lists become fixed dims when every sibling list is
// the same length, var dims otherwise (as does a list mixing scalars and
// lists);
// Go tuples (via the Tuple wrapper type) become tuple dtypes; []byte
// becomes bytes; string becomes string; bool/int/float/complex become the
// widest native Go numeric type that held them (int64, float64, or
// complex128).
func InferType(val any) (ndt.Type, error) {
	return inferAt(val, 0)
}

// Tuple marks a Go slice as a positional tuple rather than a dimension,
// since both would otherwise be represented as []any.
type Tuple []any

func inferAt(val any, depth int) (ndt.Type, error) {
	if depth > MaxDim {
		return ndt.Type{}, xnderr.Wrap(xnderr.ErrValue, "nesting exceeds the maximum supported dimension count (%d)", MaxDim)
	}
	switch v := val.(type) {
	case nil:
		return ndt.Float64().Opt(), nil
	case bool:
		return ndt.Bool(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ndt.Int64(), nil
	case float32, float64:
		return ndt.Float64(), nil
	case complex64, complex128:
		return ndt.Complex128(), nil
	case string:
		return ndt.String(), nil
	case []byte:
		return ndt.Bytes(), nil
	case Tuple:
		fields := make([]ndt.Type, len(v))
		for i, e := range v {
			ft, err := inferAt(e, depth+1)
			if err != nil {
				return ndt.Type{}, err
			}
			fields[i] = ft
		}
		return ndt.Tuple(fields...), nil
	case map[string]any:
		return inferRecord(v, depth)
	case []any:
		return inferDim(v, depth)
	}
	return ndt.Type{}, xnderr.Wrap(xnderr.ErrType, "cannot infer a type for %T", val)
}

func inferRecord(m map[string]any, depth int) (ndt.Type, error) {
	fields := make([]ndt.Field, 0, len(m))
	for name, v := range m {
		ft, err := inferAt(v, depth+1)
		if err != nil {
			return ndt.Type{}, err
		}
		fields = append(fields, ndt.F(name, ft))
	}
	return ndt.Record(fields...), nil
}

func inferDim(v []any, depth int) (ndt.Type, error) {
	if len(v) == 0 {
		return ndt.VarDim(ndt.Float64()), nil
	}
	var elemType ndt.Type
	regular := true
	firstLen := -1
	anyNil := false
	sawScalar := false
	for i, e := range v {
		if e == nil {
			anyNil = true
			continue
		}
		sub, ok := e.([]any)
		if !ok {
			sawScalar = true
		} else {
			if firstLen == -1 {
				firstLen = len(sub)
			} else if len(sub) != firstLen {
				regular = false
			}
		}
		t, err := inferAt(e, depth+1)
		if err != nil {
			return ndt.Type{}, err
		}
		if i == 0 || elemType.Kind() == ndt.KindInvalid {
			elemType = t
		} else if !elemType.Equal(t) {
			// mixed element types: widen to the common numeric kind when
			// possible, otherwise fall back to whichever was seen last.
			if isNumeric(elemType) && isNumeric(t) {
				elemType = ndt.Float64()
			} else {
				elemType = t
			}
		}
	}
	if sawScalar && firstLen != -1 {
		regular = false
	}
	if anyNil && !elemType.IsOptional() {
		elemType = elemType.Opt()
	}
	if regular && (firstLen != -1 || sawScalar) {
		return ndt.FixedDim(len(v), elemType), nil
	}
	return ndt.VarDim(elemType), nil
}

func isNumeric(t ndt.Type) bool {
	switch t.Kind() {
	case ndt.KindInt64, ndt.KindFloat64, ndt.KindComplex128:
		return true
	}
	return false
}
