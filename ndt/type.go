package ndt

import (
	"github.com/xnd-project/xnd/xnderr"

	set3 "github.com/TomTonic/Set3"
)

// Field is one element of a Tuple, Record, or Union node. Name is empty for
// Tuple fields and for unnamed Union variants.
type Field struct {
	Name string
	Type Type
}

// Type is the immutable, persistent type-descriptor tree consumed by the
// rest of the runtime. Values are copied by value (slices inside are never
// mutated after construction), matching the "immutable type descriptor"
// contract in the external type-library interface.
type Type struct {
	kind     Kind
	optional bool

	// primitive / fixed-string / fixed-bytes / categorical
	bits     int      // bit width for numeric kinds
	length   int       // FixedString code-unit count, FixedBytes byte size, FixedDim shape
	encoding Encoding // FixedString only
	align    int      // explicit align= override in bytes, 0 = natural
	pack     int      // explicit pack= override in bytes, 0 = natural

	layout DimLayout // FixedDim / VarDim only

	elem *Type // FixedDim, VarDim, Ref, Constructor, Typedef element

	fields []Field // Tuple, Record, Union

	categories []any // Categorical, ordered value list
	catSet     *set3.Set3[any]

	name string // Constructor / Typedef name
}

// Kind reports the node's tag.
func (t Type) Kind() Kind { return t.kind }

// IsOptional reports whether this node carries an optionality bit.
func (t Type) IsOptional() bool { return t.optional }

// Opt returns a copy of t with the optionality bit set.
func (t Type) Opt() Type {
	t.optional = true
	return t
}

// Bits returns the bit width of a primitive numeric dtype.
func (t Type) Bits() int { return t.bits }

// Length returns the FixedString code-unit length, the FixedBytes byte
// size, or the FixedDim static shape, depending on Kind.
func (t Type) Length() int { return t.length }

// Encoding returns the code-unit encoding of a FixedString.
func (t Type) Encoding() Encoding { return t.encoding }

// Align returns the explicit align= override, or 0 if none was set.
func (t Type) Align() int { return t.align }

// Pack returns the explicit pack= override, or 0 if none was set.
func (t Type) Pack() int { return t.pack }

// Layout returns the physical contiguity flag of a dimension node.
func (t Type) Layout() DimLayout { return t.layout }

// Elem returns the element type of a FixedDim, VarDim, Ref, Constructor, or
// Typedef node. Panics (via nil dereference is avoided) and instead returns
// the zero Type when not applicable.
func (t Type) Elem() Type {
	if t.elem == nil {
		return Type{}
	}
	return *t.elem
}

// Fields returns the field list of a Tuple, Record, or Union node.
func (t Type) Fields() []Field { return t.fields }

// Categories returns the ordered category value list.
func (t Type) Categories() []any { return t.categories }

// Name returns the Constructor or Typedef name.
func (t Type) Name() string { return t.name }

// FieldByName looks up a Record field (or a named Union variant) by name.
func (t Type) FieldByName(name string) (Field, int, bool) {
	for i, f := range t.fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return Field{}, -1, false
}

// CategoryIndex returns the index of v in the category list, or
// xnderr.ErrNotACategory if v is not one of the declared categories.
func (t Type) CategoryIndex(v any) (int, error) {
	if t.kind != KindCategorical {
		return 0, xnderr.Wrap(xnderr.ErrType, "CategoryIndex called on non-categorical type %s", t.Kind())
	}
	if t.catSet != nil && !t.catSet.Contains(v) {
		return 0, xnderr.Wrap(xnderr.ErrNotACategory, "%v is not a declared category", v)
	}
	for i, c := range t.categories {
		if c == v {
			return i, nil
		}
	}
	return 0, xnderr.Wrap(xnderr.ErrNotACategory, "%v is not a declared category", v)
}

// --- scalar primitive constructors ---

func Bool() Type           { return Type{kind: KindBool, bits: 1} }
func Int8() Type           { return Type{kind: KindInt8, bits: 8} }
func Int16() Type          { return Type{kind: KindInt16, bits: 16} }
func Int32() Type          { return Type{kind: KindInt32, bits: 32} }
func Int64() Type          { return Type{kind: KindInt64, bits: 64} }
func Uint8() Type          { return Type{kind: KindUint8, bits: 8} }
func Uint16() Type         { return Type{kind: KindUint16, bits: 16} }
func Uint32() Type         { return Type{kind: KindUint32, bits: 32} }
func Uint64() Type         { return Type{kind: KindUint64, bits: 64} }
func Float16() Type        { return Type{kind: KindFloat16, bits: 16} }
func BFloat16() Type       { return Type{kind: KindBFloat16, bits: 16} }
func Float32() Type        { return Type{kind: KindFloat32, bits: 32} }
func Float64() Type        { return Type{kind: KindFloat64, bits: 64} }
func Complex32() Type      { return Type{kind: KindComplex32, bits: 32} }
func Complex64() Type      { return Type{kind: KindComplex64, bits: 64} }
func Complex128() Type     { return Type{kind: KindComplex128, bits: 128} }
func Char() Type           { return Type{kind: KindChar, bits: 32} }
func String() Type         { return Type{kind: KindString} }
func Bytes() Type          { return Type{kind: KindBytes} }

// FixedString declares a fixed-length string dtype. length counts code
// units of enc: bytes for ascii and utf8, 2-byte units for utf16, 4-byte
// code points for utf32. Only for ascii and utf32 is it a code-point count;
// a utf8 or utf16 value whose encoding needs more units than length does
// not fit, however few code points it has.
func FixedString(length int, enc Encoding) Type {
	return Type{kind: KindFixedString, length: length, encoding: enc}
}

// FixedBytes declares a fixed byte-size, fixed-alignment opaque blob dtype.
func FixedBytes(size, align int) Type {
	return Type{kind: KindFixedBytes, length: size, align: align}
}

// Categorical declares an ordered category value list. Duplicate values are
// rejected: the category set (backed by a Set3, the same generic-set
// dependency the teacher uses for its value sets) detects them at
// construction time and is kept for CategoryIndex's membership check.
func Categorical(values ...any) (Type, error) {
	set := set3.EmptyWithCapacity[any](len(values))
	for _, v := range values {
		if set.Contains(v) {
			return Type{}, xnderr.Wrap(xnderr.ErrValue, "duplicate category value %v", v)
		}
		set.Add(v)
	}
	cats := make([]any, len(values))
	copy(cats, values)
	return Type{kind: KindCategorical, categories: cats, catSet: set}, nil
}

// --- dimension constructors ---

// DimOption configures a dimension constructor.
type DimOption func(*Type)

// WithLayout overrides the default C-contiguous layout flag.
func WithLayout(l DimLayout) DimOption {
	return func(t *Type) { t.layout = l }
}

// FixedDim declares a dimension of static shape n over elem.
func FixedDim(n int, elem Type, opts ...DimOption) Type {
	e := elem
	t := Type{kind: KindFixedDim, length: n, elem: &e, layout: CContig}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// VarDim declares a ragged dimension over elem; per-outer-element shapes
// and offsets are runtime metadata, not part of the type.
func VarDim(elem Type, opts ...DimOption) Type {
	e := elem
	t := Type{kind: KindVarDim, elem: &e, layout: CContig}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// --- aggregate constructors ---

// Tuple declares a positional product type.
func Tuple(elems ...Type) Type {
	fields := make([]Field, len(elems))
	for i, e := range elems {
		fields[i] = Field{Type: e}
	}
	return Type{kind: KindTuple, fields: fields}
}

// Record declares a named product type.
func Record(fields ...Field) Type {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Type{kind: KindRecord, fields: fs}
}

// F is a convenience constructor for a Record/Union Field.
func F(name string, t Type) Field { return Field{Name: name, Type: t} }

// Union declares a tagged sum type; each variant may optionally be named.
func Union(variants ...Field) Type {
	fs := make([]Field, len(variants))
	copy(fs, variants)
	return Type{kind: KindUnion, fields: fs}
}

// Ref declares a pointer-sized indirection to elem.
func Ref(elem Type) Type {
	e := elem
	return Type{kind: KindRef, elem: &e}
}

// Constructor declares a named wrapper around elem (e.g. a nominal tag that
// does not change layout).
func Constructor(name string, elem Type) Type {
	e := elem
	return Type{kind: KindConstructor, name: name, elem: &e}
}

// Typedef declares a nominal alias for elem.
func Typedef(name string, elem Type) Type {
	e := elem
	return Type{kind: KindTypedef, name: name, elem: &e}
}

// Equal reports structural equality: same Kind, same optionality, and
// recursively equal children. Categorical order matters.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind || t.optional != o.optional {
		return false
	}
	switch t.kind {
	case KindFixedString:
		return t.length == o.length && t.encoding == o.encoding
	case KindFixedBytes:
		return t.length == o.length && t.align == o.align
	case KindCategorical:
		if len(t.categories) != len(o.categories) {
			return false
		}
		for i := range t.categories {
			if t.categories[i] != o.categories[i] {
				return false
			}
		}
		return true
	case KindFixedDim:
		return t.length == o.length && t.layout == o.layout && t.Elem().Equal(o.Elem())
	case KindVarDim:
		return t.layout == o.layout && t.Elem().Equal(o.Elem())
	case KindTuple, KindRecord, KindUnion:
		if len(t.fields) != len(o.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != o.fields[i].Name || !t.fields[i].Type.Equal(o.fields[i].Type) {
				return false
			}
		}
		return true
	case KindRef, KindConstructor, KindTypedef:
		if t.name != o.name {
			return false
		}
		return t.Elem().Equal(o.Elem())
	default:
		return t.bits == o.bits
	}
}

// DropDim returns the element type with every leading dimension removed; it
// is the implementation of the "dtype(view)" operation (drop leading dims).
func (t Type) DropDim() Type {
	if !t.kind.IsDim() {
		return t
	}
	return t.Elem().DropDim()
}
