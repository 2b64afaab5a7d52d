// Package layout computes the bottom-up size/alignment/step table for a
// type tree: how many bytes a node's data-region slot occupies, what its
// natural alignment is, and where each tuple/record field lands. It is
// modeled on the worked-out byte-budget comments in the teacher's
// art/node_types.go ("Node (24) + bitmap (32) = 56 ...") generalized from a
// fixed family of ART node shapes to an arbitrary type tree.
//
// NOTE: 64-bit architecture assumed (8-byte pointer width), same assumption
// the teacher's node layout documents explicitly.
package layout

import (
	"math"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// PointerSize is the size in bytes of a Ref slot or a string/bytes data
// pointer, on the only architecture this runtime targets.
const PointerSize = 8

// unitSize returns the number of bytes one fixed-string code unit occupies
// for the given encoding. ascii and utf8 are measured in bytes (length is a
// byte budget, content zero-padded and, for utf8, must be valid UTF-8);
// utf16 is measured in 2-byte code units; utf32 in 4-byte code points. This
// fixes a concrete convention for an otherwise unspecified corner of the
// external type library's contract; see DESIGN.md.
func unitSize(enc ndt.Encoding) int {
	switch enc {
	case ndt.Ascii, ndt.UTF8:
		return 1
	case ndt.UTF16:
		return 2
	case ndt.UTF32:
		return 4
	}
	return 1
}

// primitiveSize returns the byte size of a fixed-size scalar dtype.
func primitiveSize(k ndt.Kind, bits int) (int, error) {
	switch k {
	case ndt.KindBool, ndt.KindChar:
		if k == ndt.KindChar {
			return 4, nil // a char is one Unicode code point, UCS-4.
		}
		return 1, nil
	case ndt.KindInt8, ndt.KindUint8:
		return 1, nil
	case ndt.KindInt16, ndt.KindUint16, ndt.KindFloat16, ndt.KindBFloat16:
		return 2, nil
	case ndt.KindInt32, ndt.KindUint32, ndt.KindFloat32, ndt.KindComplex32:
		return 4, nil
	case ndt.KindInt64, ndt.KindUint64, ndt.KindFloat64, ndt.KindComplex64:
		return 8, nil
	case ndt.KindComplex128:
		return 16, nil
	}
	return 0, xnderr.Wrap(xnderr.ErrType, "not a primitive scalar kind: %s", k)
}

// mulOverflows reports whether a*b would exceed platform int range.
func mulOverflows(a, b int) bool {
	if a == 0 || b == 0 {
		return false
	}
	result := a * b
	return result/b != a || result < 0
}

func addOverflows(a, b int) bool {
	sum := a + b
	return sum < a || sum < b
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Plan is the static layout of a type node: the byte size of one slot of
// this type, its natural alignment, and — for Tuple/Record/Union nodes —
// the byte offset and plan of each field. VarDim nodes have no fixed Size
// (IsDynamic is true); their Step is the element's byte size when the
// element has a static size, and 1 (addressing the inner var dim's offset
// table instead of raw bytes) when the element is itself dynamic.
type Plan struct {
	Type      ndt.Type
	Size      int // bytes occupied by one instance of this node; meaningless if IsDynamic
	Align     int
	Step      int // bytes-per-element (dtype levels) or offset-table units (var levels)
	IsDynamic bool
	Fields    []FieldPlan // Tuple/Record/Union only
}

// FieldPlan is one field's placement inside a Tuple/Record/Union Plan.
type FieldPlan struct {
	Name   string
	Offset int
	Plan   Plan
}

// resolveAlign applies a node's align=/pack= overrides to a natural
// alignment, per §4.1: pack= clamps down, align= overrides outright.
func resolveAlign(t ndt.Type, natural int) int {
	if t.Align() > 0 {
		return t.Align()
	}
	if t.Pack() > 0 && t.Pack() < natural {
		return t.Pack()
	}
	return natural
}

// Compute walks t bottom-up and returns its Plan, or an error (overflow,
// type_error for a var dim nested where a static size is required) if the
// tree cannot be planned.
func Compute(t ndt.Type) (Plan, error) {
	switch t.Kind() {
	case ndt.KindFixedDim:
		ePlan, err := Compute(t.Elem())
		if err != nil {
			return Plan{}, err
		}
		n := t.Length()
		if n < 0 {
			return Plan{}, xnderr.Wrap(xnderr.ErrValue, "negative fixed dimension shape %d", n)
		}
		if ePlan.IsDynamic {
			// A fixed dim over a var-dim child has a dynamic footprint:
			// it stores N offset/shape table entries, not raw bytes.
			return Plan{Type: t, Align: ePlan.Align, Step: ePlan.Step, IsDynamic: true}, nil
		}
		if mulOverflows(n, ePlan.Size) {
			return Plan{}, xnderr.Wrap(xnderr.ErrOverflow, "fixed dim shape=%d * elem size=%d overflows", n, ePlan.Size)
		}
		return Plan{Type: t, Size: n * ePlan.Size, Align: ePlan.Align, Step: ePlan.Size}, nil

	case ndt.KindVarDim:
		ePlan, err := Compute(t.Elem())
		if err != nil {
			return Plan{}, err
		}
		step := ePlan.Step
		if ePlan.IsDynamic {
			step = 1 // outer var addresses the inner var's offset table
		} else {
			step = ePlan.Size
		}
		return Plan{Type: t, Align: ePlan.Align, Step: step, IsDynamic: true}, nil

	case ndt.KindTuple, ndt.KindRecord:
		return computeProduct(t)

	case ndt.KindUnion:
		return computeUnion(t)

	case ndt.KindRef:
		if _, err := Compute(t.Elem()); err != nil {
			return Plan{}, err
		}
		return Plan{Type: t, Size: PointerSize, Align: PointerSize, Step: PointerSize}, nil

	case ndt.KindConstructor, ndt.KindTypedef:
		ePlan, err := Compute(t.Elem())
		if err != nil {
			return Plan{}, err
		}
		ePlan.Type = t
		return ePlan, nil

	case ndt.KindString, ndt.KindBytes:
		// {data *byte, len int64}: pointer to a separately allocated
		// immutable byte run plus its length.
		size := PointerSize + 8
		return Plan{Type: t, Size: size, Align: PointerSize, Step: size}, nil

	case ndt.KindFixedString:
		size := t.Length() * unitSize(t.Encoding())
		return Plan{Type: t, Size: size, Align: unitSize(t.Encoding()), Step: size}, nil

	case ndt.KindFixedBytes:
		align := t.Align()
		if align <= 0 {
			align = 1
		}
		size := t.Length()
		return Plan{Type: t, Size: size, Align: align, Step: size}, nil

	case ndt.KindCategorical:
		return Plan{Type: t, Size: 4, Align: 4, Step: 4}, nil // int32 category index

	default:
		if !t.Kind().IsPrimitive() {
			return Plan{}, xnderr.Wrap(xnderr.ErrType, "cannot compute layout for kind %s", t.Kind())
		}
		size, err := primitiveSize(t.Kind(), t.Bits())
		if err != nil {
			return Plan{}, err
		}
		align := size
		if align > 8 {
			align = 8
		}
		align = resolveAlign(t, align)
		return Plan{Type: t, Size: size, Align: align, Step: size}, nil
	}
}

func computeProduct(t ndt.Type) (Plan, error) {
	fields := make([]FieldPlan, len(t.Fields()))
	offset := 0
	maxAlign := 1
	for i, f := range t.Fields() {
		fp, err := Compute(f.Type)
		if err != nil {
			return Plan{}, err
		}
		if fp.IsDynamic {
			return Plan{}, xnderr.Wrap(xnderr.ErrType, "field %q: var dims are not permitted directly inside a tuple/record slot without an intervening dimension", f.Name)
		}
		align := resolveAlign(t, fp.Align)
		if align < 1 {
			align = 1
		}
		off := alignUp(offset, align)
		if addOverflows(off, fp.Size) {
			return Plan{}, xnderr.Wrap(xnderr.ErrOverflow, "field %q offset+size overflows", f.Name)
		}
		fields[i] = FieldPlan{Name: f.Name, Offset: off, Plan: fp}
		offset = off + fp.Size
		if align > maxAlign {
			maxAlign = align
		}
	}
	total := alignUp(offset, maxAlign)
	return Plan{Type: t, Size: total, Align: maxAlign, Step: total, Fields: fields}, nil
}

func computeUnion(t ndt.Type) (Plan, error) {
	fields := make([]FieldPlan, len(t.Fields()))
	maxSize, maxAlign := 0, 1
	for i, f := range t.Fields() {
		fp, err := Compute(f.Type)
		if err != nil {
			return Plan{}, err
		}
		if fp.IsDynamic {
			return Plan{}, xnderr.Wrap(xnderr.ErrType, "union variant %q: var dims are not permitted directly inside a union slot", f.Name)
		}
		if fp.Size > maxSize {
			maxSize = fp.Size
		}
		if fp.Align > maxAlign {
			maxAlign = fp.Align
		}
		fields[i] = FieldPlan{Name: f.Name, Plan: fp} // offset filled below
	}
	tagOffset := alignUp(1, maxAlign) // tag byte, then pad to payload alignment
	for i := range fields {
		fields[i].Offset = tagOffset
	}
	total := alignUp(tagOffset+maxSize, maxAlign)
	return Plan{Type: t, Size: total, Align: maxAlign, Step: total, Fields: fields}, nil
}

// MaxInt is exposed for overflow-boundary tests.
const MaxInt = math.MaxInt
