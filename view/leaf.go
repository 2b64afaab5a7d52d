package view

import (
	"math"

	"github.com/xnd-project/xnd/arena"
	"github.com/xnd-project/xnd/bitmap"
	"github.com/xnd-project/xnd/layout"
	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// leafColumn is the struct-of-arrays representation of everything below a
// value's leading dimensions: the dtype tail. Every leafColumn in a value's
// tree shares the same instance count M (the flat leaf-instance cardinality
// of the owning arenas) and is addressed by the same flat index — exactly
// like an Arrow struct array's children share one length and one validity
// bitmap per child, generalized here to tuples, records, unions, refs,
// strings and categoricals as well as plain numeric columns.
//
// This trades the fully packed single-byte-slot model layout.Plan computes
// for an easier-to-get-right columnar one; see DESIGN.md for the rationale.
type leafColumn struct {
	typ ndt.Type
	m   int // instance count
	plan layout.Plan

	bitmap bitmap.Bitmap // length m, only populated if typ.IsOptional()

	data     *arena.Arena // primitive / fixed-string / fixed-bytes / categorical
	slotSize int

	strData *arena.Arena // string / bytes content heap
	strOff  []int64
	strLen  []int64
	strNext int64 // bump allocator cursor into strData

	refs []any // Ref: each is *View or a boxed host value

	fields []*leafColumn // Tuple / Record / Union
	tag    []uint8        // Union only
}

// newLeaf allocates a zero/blank leafColumn of m instances for typ.
func newLeaf(typ ndt.Type, m int) (*leafColumn, error) {
	plan, err := layout.Compute(stripOptional(typ))
	if err != nil {
		return nil, err
	}
	col := &leafColumn{typ: typ, m: m, plan: plan}
	if typ.IsOptional() {
		col.bitmap = bitmap.New(m)
	}

	switch typ.Kind() {
	case ndt.KindString, ndt.KindBytes:
		heap, err := arena.New(0, 1, nil)
		if err != nil {
			return nil, err
		}
		col.strData = heap
		col.strOff = make([]int64, m)
		col.strLen = make([]int64, m)

	case ndt.KindRef:
		col.refs = make([]any, m)

	case ndt.KindTuple, ndt.KindRecord:
		col.fields = make([]*leafColumn, len(typ.Fields()))
		for i, f := range typ.Fields() {
			fc, err := newLeaf(f.Type, m)
			if err != nil {
				return nil, err
			}
			col.fields[i] = fc
		}

	case ndt.KindUnion:
		col.fields = make([]*leafColumn, len(typ.Fields()))
		for i, f := range typ.Fields() {
			fc, err := newLeaf(f.Type, m)
			if err != nil {
				return nil, err
			}
			col.fields[i] = fc
		}
		col.tag = make([]uint8, m)

	default:
		if plan.Size > 0 {
			a, err := arena.New(plan.Size*m, plan.Align, nil)
			if err != nil {
				return nil, err
			}
			col.data = a
			col.slotSize = plan.Size
		}
	}
	return col, nil
}

func stripOptional(t ndt.Type) ndt.Type {
	// layout.Compute does not know about optionality bits; nullable levels
	// are carried out-of-band in leafColumn.bitmap instead, per §4.2's
	// "optionals are not sum types at the data layer" rule.
	return t
}

func (c *leafColumn) arenas(out *[]*arena.Arena) {
	if c.data != nil {
		*out = append(*out, c.data)
	}
	if c.strData != nil {
		*out = append(*out, c.strData)
	}
	for _, f := range c.fields {
		f.arenas(out)
	}
}

func (c *leafColumn) isMissing(k int) bool {
	return c.typ.IsOptional() && !c.bitmap.IsSet(k)
}

func (c *leafColumn) setMissing(k int) error {
	if !c.typ.IsOptional() {
		return xnderr.Wrap(xnderr.ErrType, "cannot assign None to non-optional type %s", c.typ.Kind())
	}
	return c.bitmap.Clear(k)
}

func (c *leafColumn) clearMissingFlag(k int) error {
	if !c.typ.IsOptional() {
		return nil
	}
	return c.bitmap.Set(k)
}

func (c *leafColumn) slot(k int) []byte {
	base := k * c.slotSize
	return c.data.Data()[base : base+c.slotSize]
}

// setString appends s into the string heap and records (offset,len) at k.
func (c *leafColumn) setString(k int, b []byte) error {
	heap := c.strData.Data()
	needed := int(c.strNext) + len(b)
	if needed > len(heap) {
		grown, err := arena.New(needed*2+16, 1, nil)
		if err != nil {
			return err
		}
		copy(grown.Data(), heap)
		c.strData = grown
		heap = grown.Data()
	}
	copy(heap[c.strNext:], b)
	c.strOff[k] = c.strNext
	c.strLen[k] = int64(len(b))
	c.strNext += int64(len(b))
	return nil
}

func (c *leafColumn) getString(k int) []byte {
	off, n := c.strOff[k], c.strLen[k]
	return c.strData.Data()[off : off+n]
}

// The functions below decode/encode the reduced-precision float kinds via
// float32; float16 and bfloat16 have no ecosystem-standard Go codec anywhere
// in the retrieved corpus, so per DESIGN.md these two conversions are
// implemented directly against the IEEE 754 bit layouts using
// math.Float32bits/math.Float32frombits.
func float16ToFloat64(bits uint16) float64 {
	sign := uint32(bits>>15) & 1
	exp := uint32(bits>>10) & 0x1F
	frac := uint32(bits) & 0x3FF
	var f32 uint32
	switch exp {
	case 0:
		if frac == 0 {
			f32 = sign << 31
		} else {
			for frac&0x400 == 0 {
				frac <<= 1
				exp--
			}
			exp++
			frac &= 0x3FF
			f32 = (sign << 31) | ((exp + 112) << 23) | (frac << 13)
		}
	case 0x1F:
		f32 = (sign << 31) | (0xFF << 23) | (frac << 13)
	default:
		f32 = (sign << 31) | ((exp + 112) << 23) | (frac << 13)
	}
	return float64(math.Float32frombits(f32))
}

func float64ToFloat16(v float64) (uint16, bool) {
	f32 := math.Float32bits(float32(v))
	sign := uint16(f32>>16) & 0x8000
	exp := int32(f32>>23) & 0xFF
	frac := f32 & 0x7FFFFF
	if math.IsInf(v, 0) {
		return sign | (0x1F << 10), false
	}
	if math.IsNaN(v) {
		return sign | (0x1F << 10) | 0x200, true
	}
	e := exp - 127 + 15
	if e >= 0x1F {
		return sign | (0x1F << 10), false // overflow to infinity: reject
	}
	if e <= 0 {
		return sign, true // underflow to zero
	}
	return sign | uint16(e<<10) | uint16(frac>>13), true
}

func bfloat16ToFloat64(bits uint16) float64 {
	return float64(math.Float32frombits(uint32(bits) << 16))
}

func float64ToBFloat16(v float64) (uint16, bool) {
	f := float32(v)
	bits := math.Float32bits(f)
	if math.IsInf(float64(f), 0) {
		// an infinite input, or a finite one beyond the float32 exponent range
		return uint16(bits >> 16), false
	}
	return uint16(bits >> 16), true
}
