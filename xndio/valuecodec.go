package xndio

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/xnd-project/xnd/view"
	"github.com/xnd-project/xnd/xnderr"
)

// valueTag distinguishes the host-value shapes view.Value can hand back,
// the same set marshal.InferType accepts on the way in.
type valueTag byte

const (
	vNone valueTag = iota
	vBool
	vInt64
	vFloat64
	vComplex128
	vString
	vBytes
	vRune
	vList
	vMap
	vUnion
)

func encodeValue(w io.Writer, v any) error {
	switch x := v.(type) {
	case nil:
		return writeTag(w, vNone)
	case bool:
		if err := writeTag(w, vBool); err != nil {
			return err
		}
		return writeBool(w, x)
	case int64:
		if err := writeTag(w, vInt64); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, x)
	case float64:
		if err := writeTag(w, vFloat64); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, math.Float64bits(x))
	case complex128:
		if err := writeTag(w, vComplex128); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, math.Float64bits(real(x))); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, math.Float64bits(imag(x)))
	case string:
		if err := writeTag(w, vString); err != nil {
			return err
		}
		return writeString(w, x)
	case []byte:
		if err := writeTag(w, vBytes); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(x))); err != nil {
			return err
		}
		_, err := w.Write(x)
		return err
	case rune:
		if err := writeTag(w, vRune); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int32(x))
	case []any:
		if err := writeTag(w, vList); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(x))); err != nil {
			return err
		}
		for _, e := range x {
			if err := encodeValue(w, e); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if err := writeTag(w, vMap); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(x))); err != nil {
			return err
		}
		for k, e := range x {
			if err := writeString(w, k); err != nil {
				return err
			}
			if err := encodeValue(w, e); err != nil {
				return err
			}
		}
		return nil
	case view.UnionValue:
		if err := writeTag(w, vUnion); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(x.Index)); err != nil {
			return err
		}
		return encodeValue(w, x.Value)
	default:
		return xnderr.Wrap(xnderr.ErrNotImplemented, "serialization does not support host value of type %T", v)
	}
}

func decodeValue(r io.Reader) (any, error) {
	tag, err := readTag(r)
	if err != nil {
		return nil, err
	}
	switch tag {
	case vNone:
		return nil, nil
	case vBool:
		return readBool(r)
	case vInt64:
		var n int64
		err := binary.Read(r, binary.LittleEndian, &n)
		return n, err
	case vFloat64:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, err
		}
		return math.Float64frombits(bits), nil
	case vComplex128:
		var rb, ib uint64
		if err := binary.Read(r, binary.LittleEndian, &rb); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &ib); err != nil {
			return nil, err
		}
		return complex(math.Float64frombits(rb), math.Float64frombits(ib)), nil
	case vString:
		return readString(r)
	case vBytes:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case vRune:
		var n int32
		err := binary.Read(r, binary.LittleEndian, &n)
		return rune(n), err
	case vList:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			e, err := decodeValue(r)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case vMap:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		out := make(map[string]any, n)
		for i := uint32(0); i < n; i++ {
			k, err := readString(r)
			if err != nil {
				return nil, err
			}
			e, err := decodeValue(r)
			if err != nil {
				return nil, err
			}
			out[k] = e
		}
		return out, nil
	case vUnion:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, err
		}
		val, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		return view.UnionValue{Index: int(idx), Value: val}, nil
	}
	return nil, xnderr.Wrap(xnderr.ErrValue, "unknown value tag %d in serialized stream", tag)
}

func writeTag(w io.Writer, tag valueTag) error {
	_, err := w.Write([]byte{byte(tag)})
	return err
}

func readTag(r io.Reader) (valueTag, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return valueTag(b[0]), nil
}
