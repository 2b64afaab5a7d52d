// Package ndt provides the immutable datashape type-descriptor tree consumed
// by the container runtime. In a full deployment this adapts a pre-existing
// type library (a datashape parser/matcher/printer); since no such library
// is part of this module's dependency surface, ndt ships one concrete,
// hand-built implementation: programmatic constructors plus a pretty
// printer, but deliberately no string parser — that remains the documented
// extension point for an external type library to plug into.
package ndt

// Kind tags the shape of a Type node.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat16
	KindBFloat16
	KindFloat32
	KindFloat64
	KindComplex32
	KindComplex64
	KindComplex128
	KindChar
	KindFixedString
	KindString
	KindFixedBytes
	KindBytes
	KindCategorical
	KindFixedDim
	KindVarDim
	KindTuple
	KindRecord
	KindUnion
	KindRef
	KindConstructor
	KindTypedef
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat16:
		return "float16"
	case KindBFloat16:
		return "bfloat16"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindComplex32:
		return "complex32"
	case KindComplex64:
		return "complex64"
	case KindComplex128:
		return "complex128"
	case KindChar:
		return "char"
	case KindFixedString:
		return "fixed_string"
	case KindString:
		return "string"
	case KindFixedBytes:
		return "fixed_bytes"
	case KindBytes:
		return "bytes"
	case KindCategorical:
		return "categorical"
	case KindFixedDim:
		return "fixed_dim"
	case KindVarDim:
		return "var_dim"
	case KindTuple:
		return "tuple"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindRef:
		return "ref"
	case KindConstructor:
		return "constructor"
	case KindTypedef:
		return "typedef"
	}
	return "invalid"
}

// IsDim reports whether k is one of the two dimension kinds.
func (k Kind) IsDim() bool { return k == KindFixedDim || k == KindVarDim }

// IsPrimitive reports whether k is a fixed-size scalar dtype (not a
// container, dimension, string/bytes, categorical, or wrapper kind).
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindBool, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat16, KindBFloat16, KindFloat32, KindFloat64,
		KindComplex32, KindComplex64, KindComplex128, KindChar:
		return true
	}
	return false
}

// Encoding enumerates the fixed-string code unit encodings.
type Encoding int

const (
	Ascii Encoding = iota
	UTF8
	UTF16
	UTF32
)

func (e Encoding) String() string {
	switch e {
	case Ascii:
		return "ascii"
	case UTF8:
		return "utf8"
	case UTF16:
		return "utf16"
	case UTF32:
		return "utf32"
	}
	return "unknown"
}

// DimLayout tags the physical layout flag carried by a dimension node.
type DimLayout int

const (
	CContig DimLayout = iota
	FContig
	ArrayOfPointers
)

func (l DimLayout) String() string {
	switch l {
	case CContig:
		return "C"
	case FContig:
		return "F"
	case ArrayOfPointers:
		return "A"
	}
	return "?"
}
