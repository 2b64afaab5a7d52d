package marshal

import (
	"math/rand"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// Random generates a random host value of type t using rng, grounded on
// the original implementation's randvalue.py test-data generator (kept
// down to the subset of kinds this runtime supports: no ecosystem
// fuzz/property-testing library appears anywhere in the retrieved corpus,
// so this is implemented directly against math/rand, std library, with a
// DESIGN.md note recording that as a deliberate choice rather than an
// oversight).
func Random(t ndt.Type, rng *rand.Rand) (any, error) {
	if t.IsOptional() && rng.Intn(5) == 0 {
		return nil, nil
	}
	switch t.Kind() {
	case ndt.KindBool:
		return rng.Intn(2) == 1, nil
	case ndt.KindInt8, ndt.KindInt16, ndt.KindInt32, ndt.KindInt64,
		ndt.KindUint8, ndt.KindUint16, ndt.KindUint32, ndt.KindUint64:
		return int64(rng.Intn(1000) - 500), nil
	case ndt.KindFloat16, ndt.KindBFloat16, ndt.KindFloat32, ndt.KindFloat64:
		return rng.Float64()*200 - 100, nil
	case ndt.KindComplex32, ndt.KindComplex64, ndt.KindComplex128:
		return complex(rng.Float64()*10, rng.Float64()*10), nil
	case ndt.KindChar:
		return rune('a' + rng.Intn(26)), nil
	case ndt.KindString, ndt.KindFixedString:
		return randomString(rng, 6), nil
	case ndt.KindBytes, ndt.KindFixedBytes:
		n := t.Length()
		if n == 0 {
			n = rng.Intn(8)
		}
		b := make([]byte, n)
		rng.Read(b)
		return b, nil
	case ndt.KindCategorical:
		cats := t.Categories()
		if len(cats) == 0 {
			return nil, xnderr.Wrap(xnderr.ErrValue, "categorical type has no declared categories")
		}
		return cats[rng.Intn(len(cats))], nil
	case ndt.KindFixedDim:
		n := t.Length()
		out := make([]any, n)
		for i := range out {
			v, err := Random(t.Elem(), rng)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ndt.KindVarDim:
		n := rng.Intn(5)
		out := make([]any, n)
		for i := range out {
			v, err := Random(t.Elem(), rng)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ndt.KindTuple:
		out := make([]any, len(t.Fields()))
		for i, f := range t.Fields() {
			v, err := Random(f.Type, rng)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ndt.KindRecord:
		out := make(map[string]any, len(t.Fields()))
		for _, f := range t.Fields() {
			v, err := Random(f.Type, rng)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	}
	return nil, xnderr.Wrap(xnderr.ErrNotImplemented, "random generation is not implemented for kind %s", t.Kind())
}

func randomString(rng *rand.Rand, maxLen int) string {
	n := rng.Intn(maxLen)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + rng.Intn(26))
	}
	return string(b)
}
