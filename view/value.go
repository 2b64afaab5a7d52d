package view

import (
	"encoding/binary"

	"golang.org/x/text/unicode/norm"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// UnionValue is the host-side representation of a Union instance: which
// variant is active, and its value.
type UnionValue struct {
	Tag   string
	Index int
	Value any
}

// At is Subscript(Int(i)) for the common single-integer case.
func (v *View) At(i int) (*View, error) { return v.Subscript(Int(i)) }

// flatLeafIndex resolves this view's current position to one index into
// its leaf column. Valid only once every dimension has been consumed
// (NDim() == 0).
func (v *View) flatLeafIndex() (int, error) {
	if v.NDim() != 0 {
		return 0, xnderr.Wrap(xnderr.ErrType, "value requested on a view with %d dimensions remaining", v.NDim())
	}
	return v.base, nil
}

// IsMissing reports whether the fully-indexed scalar this view addresses is
// None at the dtype level.
func (v *View) IsMissing() (bool, error) {
	k, err := v.flatLeafIndex()
	if err != nil {
		return false, err
	}
	return v.leaf.isMissing(k), nil
}

// Value recursively materializes this view as a host Go value: nested
// []any for dimensions, map[string]any for Record, []any for Tuple,
// UnionValue for Union, and native Go scalars for primitives/strings.
func (v *View) Value() (any, error) {
	if v.NDim() > 0 {
		n, err := v.Len()
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			if v.missingAt(i) {
				out[i] = nil
				continue
			}
			elem, err := v.At(i)
			if err != nil {
				return nil, err
			}
			val, err := elem.Value()
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	}
	k, err := v.flatLeafIndex()
	if err != nil {
		return nil, err
	}
	return v.leaf.value(k)
}

// missingAt reports whether row/element i of the current leading dimension
// is flagged None, without indexing into it — Subscript/At error on a
// missing element since the caller explicitly asked for it, but a
// recursive Value() walk needs to emit nil for that slot instead of
// failing the whole read-back.
func (v *View) missingAt(i int) bool {
	if len(v.shape) > 0 {
		return v.dimOptional[0] && !v.dimBitmap[0].IsSet(i)
	}
	if v.varDim != nil {
		vs := v.varDim
		return vs.optional && !vs.bitmap.IsSet(vs.base+i)
	}
	return false
}

func (c *leafColumn) value(k int) (any, error) {
	if c.isMissing(k) {
		return nil, nil
	}
	switch c.typ.Kind() {
	case ndt.KindString:
		return string(c.getString(k)), nil
	case ndt.KindBytes:
		b := c.getString(k)
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case ndt.KindFixedString:
		return decodeFixedString(c.typ, c.slot(k))
	case ndt.KindFixedBytes:
		s := c.slot(k)
		out := make([]byte, len(s))
		copy(out, s)
		return out, nil
	case ndt.KindCategorical:
		idx := int32(binary.LittleEndian.Uint32(c.slot(k)))
		cats := c.typ.Categories()
		if int(idx) < 0 || int(idx) >= len(cats) {
			return nil, xnderr.Wrap(xnderr.ErrNotACategory, "category index %d out of range", idx)
		}
		return cats[idx], nil
	case ndt.KindRef:
		ref := c.refs[k]
		if sub, ok := ref.(*View); ok {
			return sub.Value()
		}
		return ref, nil
	case ndt.KindTuple:
		out := make([]any, len(c.fields))
		for i, f := range c.fields {
			val, err := f.value(k)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	case ndt.KindRecord:
		out := make(map[string]any, len(c.fields))
		for i, f := range c.fields {
			val, err := f.value(k)
			if err != nil {
				return nil, err
			}
			out[c.typ.Fields()[i].Name] = val
		}
		return out, nil
	case ndt.KindUnion:
		tagIdx := int(c.tag[k])
		if tagIdx < 0 || tagIdx >= len(c.fields) {
			return nil, xnderr.Wrap(xnderr.ErrWrongUnionTag, "union tag %d out of range", tagIdx)
		}
		val, err := c.fields[tagIdx].value(k)
		if err != nil {
			return nil, err
		}
		return UnionValue{Tag: c.typ.Fields()[tagIdx].Name, Index: tagIdx, Value: val}, nil
	default:
		return decodeScalar(c.typ, c.slot(k))
	}
}

// Assign writes val into the fully-indexed scalar position this view
// addresses. nil assigns None and requires the dtype to be optional.
func (v *View) Assign(val any) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	k, err := v.flatLeafIndex()
	if err != nil {
		return err
	}
	return v.leaf.assign(k, val)
}

func (c *leafColumn) assign(k int, val any) error {
	if val == nil {
		return c.setMissing(k)
	}
	if err := c.clearMissingFlag(k); err != nil {
		return err
	}
	switch c.typ.Kind() {
	case ndt.KindString:
		b, err := toBytesLike(val)
		if err != nil {
			return err
		}
		return c.setString(k, norm.NFC.Bytes(b))
	case ndt.KindBytes:
		b, err := toBytesLike(val)
		if err != nil {
			return err
		}
		return c.setString(k, b)
	case ndt.KindFixedString:
		s, ok := val.(string)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "expected string, got %T", val)
		}
		return encodeFixedString(c.typ, c.slot(k), s)
	case ndt.KindFixedBytes:
		b, err := toBytesLike(val)
		if err != nil {
			return err
		}
		if len(b) != c.typ.Length() {
			return xnderr.Wrap(xnderr.ErrValue, "fixed_bytes[%d] requires exactly that many bytes, got %d", c.typ.Length(), len(b))
		}
		copy(c.slot(k), b)
		return nil
	case ndt.KindCategorical:
		idx, err := c.typ.CategoryIndex(val)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(c.slot(k), uint32(idx))
		return nil
	case ndt.KindRef:
		c.refs[k] = val
		return nil
	case ndt.KindTuple:
		elems, ok := val.([]any)
		if !ok || len(elems) != len(c.fields) {
			return xnderr.Wrap(xnderr.ErrType, "tuple assignment expects %d positional elements", len(c.fields))
		}
		for i, f := range c.fields {
			if err := f.assign(k, elems[i]); err != nil {
				return err
			}
		}
		return nil
	case ndt.KindRecord:
		m, ok := val.(map[string]any)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "record assignment expects map[string]any, got %T", val)
		}
		for i, f := range c.fields {
			name := c.typ.Fields()[i].Name
			fv, present := m[name]
			if !present {
				return xnderr.Wrap(xnderr.ErrValue, "missing record field %q", name)
			}
			if err := f.assign(k, fv); err != nil {
				return err
			}
		}
		return nil
	case ndt.KindUnion:
		uv, ok := val.(UnionValue)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "union assignment expects view.UnionValue, got %T", val)
		}
		idx := uv.Index
		if uv.Tag != "" {
			found := false
			for i, f := range c.typ.Fields() {
				if f.Name == uv.Tag {
					idx, found = i, true
					break
				}
			}
			if !found {
				return xnderr.Wrap(xnderr.ErrWrongUnionTag, "no union variant named %q", uv.Tag)
			}
		}
		if idx < 0 || idx >= len(c.fields) {
			return xnderr.Wrap(xnderr.ErrWrongUnionTag, "union tag index %d out of range", idx)
		}
		c.tag[k] = uint8(idx)
		return c.fields[idx].assign(k, uv.Value)
	default:
		return encodeScalar(c.typ, c.slot(k), val)
	}
}

func toBytesLike(v any) ([]byte, error) {
	switch b := v.(type) {
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	}
	return nil, xnderr.Wrap(xnderr.ErrType, "expected string or []byte, got %T", v)
}

// Field selects a named Record/Union field at the current (fully-indexed)
// scalar position, returning a new 0-dim View over that field's column.
func (v *View) Field(name string) (*View, error) {
	if v.NDim() != 0 {
		return nil, xnderr.Wrap(xnderr.ErrType, "Field requires a fully-indexed scalar view")
	}
	_, idx, ok := v.leaf.typ.FieldByName(name)
	if !ok {
		return nil, xnderr.Wrap(xnderr.ErrValue, "no field named %q", name)
	}
	return v.tupleIndex(idx)
}

// TupleIndex selects the i-th positional field of a Tuple/Union.
func (v *View) TupleIndex(i int) (*View, error) {
	if v.NDim() != 0 {
		return nil, xnderr.Wrap(xnderr.ErrType, "TupleIndex requires a fully-indexed scalar view")
	}
	return v.tupleIndex(i)
}

func (v *View) tupleIndex(i int) (*View, error) {
	if i < 0 || i >= len(v.leaf.fields) {
		return nil, xnderr.Wrap(xnderr.ErrOutOfRange, "field index %d out of range", i)
	}
	cp := v.shallowCopy()
	cp.leaf = v.leaf.fields[i]
	cp.typ = cp.leaf.typ
	return cp, nil
}
