// Package xndio implements the self-describing binary serialization format:
// a magic-prefixed, length-prefixed container of a type section followed
// by a data section, so a reader needs nothing but this package (no
// external schema) to reconstruct a View. It is modeled on
// solidcoredata-dca/ts's writer.go/reader.go/fieldcoder.go, with its per-kind
// coder table replaced by recursive encode/decode functions that switch on
// the node kind and drive encoding/binary reads and writes, since the
// datashape type tree nests where that package's column set is flat.
package xndio

import (
	"encoding/binary"
	"io"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// typeTag mirrors ndt.Kind but is pinned to fixed byte values so the wire
// format does not break if ndt.Kind's iota ordering ever changes.
type typeTag byte

const (
	tagBool typeTag = iota
	tagInt8
	tagInt16
	tagInt32
	tagInt64
	tagUint8
	tagUint16
	tagUint32
	tagUint64
	tagFloat16
	tagBFloat16
	tagFloat32
	tagFloat64
	tagComplex32
	tagComplex64
	tagComplex128
	tagChar
	tagFixedString
	tagString
	tagFixedBytes
	tagBytes
	tagCategorical
	tagFixedDim
	tagVarDim
	tagTuple
	tagRecord
	tagUnion
	tagRef
)

var kindToTag = map[ndt.Kind]typeTag{
	ndt.KindBool: tagBool, ndt.KindInt8: tagInt8, ndt.KindInt16: tagInt16,
	ndt.KindInt32: tagInt32, ndt.KindInt64: tagInt64, ndt.KindUint8: tagUint8,
	ndt.KindUint16: tagUint16, ndt.KindUint32: tagUint32, ndt.KindUint64: tagUint64,
	ndt.KindFloat16: tagFloat16, ndt.KindBFloat16: tagBFloat16, ndt.KindFloat32: tagFloat32,
	ndt.KindFloat64: tagFloat64, ndt.KindComplex32: tagComplex32, ndt.KindComplex64: tagComplex64,
	ndt.KindComplex128: tagComplex128, ndt.KindChar: tagChar, ndt.KindFixedString: tagFixedString,
	ndt.KindString: tagString, ndt.KindFixedBytes: tagFixedBytes, ndt.KindBytes: tagBytes,
	ndt.KindCategorical: tagCategorical, ndt.KindFixedDim: tagFixedDim, ndt.KindVarDim: tagVarDim,
	ndt.KindTuple: tagTuple, ndt.KindRecord: tagRecord, ndt.KindUnion: tagUnion, ndt.KindRef: tagRef,
}

var tagToKind = func() map[typeTag]ndt.Kind {
	out := make(map[typeTag]ndt.Kind, len(kindToTag))
	for k, v := range kindToTag {
		out[v] = k
	}
	return out
}()

func writeBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// encodeType writes a self-describing representation of t.
func encodeType(w io.Writer, t ndt.Type) error {
	if err := writeBool(w, t.IsOptional()); err != nil {
		return err
	}
	tag, ok := kindToTag[t.Kind()]
	if !ok {
		return xnderr.Wrap(xnderr.ErrNotImplemented, "serialization does not support kind %s", t.Kind())
	}
	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return err
	}
	switch t.Kind() {
	case ndt.KindFixedDim:
		if err := binary.Write(w, binary.LittleEndian, int64(t.Length())); err != nil {
			return err
		}
		return encodeType(w, t.Elem())
	case ndt.KindVarDim:
		return encodeType(w, t.Elem())
	case ndt.KindRef:
		return encodeType(w, t.Elem())
	case ndt.KindFixedString:
		if err := binary.Write(w, binary.LittleEndian, int64(t.Length())); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int32(t.Encoding()))
	case ndt.KindFixedBytes:
		if err := binary.Write(w, binary.LittleEndian, int64(t.Length())); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int64(t.Align()))
	case ndt.KindCategorical:
		cats := t.Categories()
		if err := binary.Write(w, binary.LittleEndian, uint32(len(cats))); err != nil {
			return err
		}
		for _, c := range cats {
			s, ok := c.(string)
			if !ok {
				return xnderr.Wrap(xnderr.ErrNotImplemented, "serialization only supports string categories")
			}
			if err := writeString(w, s); err != nil {
				return err
			}
		}
		return nil
	case ndt.KindTuple, ndt.KindUnion:
		fields := t.Fields()
		if err := binary.Write(w, binary.LittleEndian, uint32(len(fields))); err != nil {
			return err
		}
		for _, f := range fields {
			if err := writeString(w, f.Name); err != nil {
				return err
			}
			if err := encodeType(w, f.Type); err != nil {
				return err
			}
		}
		return nil
	case ndt.KindRecord:
		fields := t.Fields()
		if err := binary.Write(w, binary.LittleEndian, uint32(len(fields))); err != nil {
			return err
		}
		for _, f := range fields {
			if err := writeString(w, f.Name); err != nil {
				return err
			}
			if err := encodeType(w, f.Type); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func decodeType(r io.Reader) (ndt.Type, error) {
	opt, err := readBool(r)
	if err != nil {
		return ndt.Type{}, err
	}
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return ndt.Type{}, err
	}
	kind, ok := tagToKind[typeTag(tagByte[0])]
	if !ok {
		return ndt.Type{}, xnderr.Wrap(xnderr.ErrValue, "unknown type tag %d in serialized stream", tagByte[0])
	}
	var t ndt.Type
	switch kind {
	case ndt.KindFixedDim:
		var n int64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return ndt.Type{}, err
		}
		elem, err := decodeType(r)
		if err != nil {
			return ndt.Type{}, err
		}
		t = ndt.FixedDim(int(n), elem)
	case ndt.KindVarDim:
		elem, err := decodeType(r)
		if err != nil {
			return ndt.Type{}, err
		}
		t = ndt.VarDim(elem)
	case ndt.KindRef:
		elem, err := decodeType(r)
		if err != nil {
			return ndt.Type{}, err
		}
		t = ndt.Ref(elem)
	case ndt.KindFixedString:
		var n int64
		var enc int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return ndt.Type{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &enc); err != nil {
			return ndt.Type{}, err
		}
		t = ndt.FixedString(int(n), ndt.Encoding(enc))
	case ndt.KindFixedBytes:
		var n, align int64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return ndt.Type{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &align); err != nil {
			return ndt.Type{}, err
		}
		t = ndt.FixedBytes(int(n), int(align))
	case ndt.KindCategorical:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return ndt.Type{}, err
		}
		cats := make([]any, n)
		for i := range cats {
			s, err := readString(r)
			if err != nil {
				return ndt.Type{}, err
			}
			cats[i] = s
		}
		var err error
		t, err = ndt.Categorical(cats...)
		if err != nil {
			return ndt.Type{}, err
		}
	case ndt.KindTuple, ndt.KindUnion:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return ndt.Type{}, err
		}
		fields := make([]ndt.Field, n)
		for i := range fields {
			name, err := readString(r)
			if err != nil {
				return ndt.Type{}, err
			}
			ft, err := decodeType(r)
			if err != nil {
				return ndt.Type{}, err
			}
			fields[i] = ndt.F(name, ft)
		}
		if kind == ndt.KindTuple {
			ts := make([]ndt.Type, n)
			for i, f := range fields {
				ts[i] = f.Type
			}
			t = ndt.Tuple(ts...)
		} else {
			t = ndt.Union(fields...)
		}
	case ndt.KindRecord:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return ndt.Type{}, err
		}
		fields := make([]ndt.Field, n)
		for i := range fields {
			name, err := readString(r)
			if err != nil {
				return ndt.Type{}, err
			}
			ft, err := decodeType(r)
			if err != nil {
				return ndt.Type{}, err
			}
			fields[i] = ndt.F(name, ft)
		}
		t = ndt.Record(fields...)
	default:
		t = primitiveFromKind(kind)
	}
	if opt {
		t = t.Opt()
	}
	return t, nil
}

func primitiveFromKind(k ndt.Kind) ndt.Type {
	switch k {
	case ndt.KindBool:
		return ndt.Bool()
	case ndt.KindInt8:
		return ndt.Int8()
	case ndt.KindInt16:
		return ndt.Int16()
	case ndt.KindInt32:
		return ndt.Int32()
	case ndt.KindInt64:
		return ndt.Int64()
	case ndt.KindUint8:
		return ndt.Uint8()
	case ndt.KindUint16:
		return ndt.Uint16()
	case ndt.KindUint32:
		return ndt.Uint32()
	case ndt.KindUint64:
		return ndt.Uint64()
	case ndt.KindFloat16:
		return ndt.Float16()
	case ndt.KindBFloat16:
		return ndt.BFloat16()
	case ndt.KindFloat32:
		return ndt.Float32()
	case ndt.KindFloat64:
		return ndt.Float64()
	case ndt.KindComplex32:
		return ndt.Complex32()
	case ndt.KindComplex64:
		return ndt.Complex64()
	case ndt.KindComplex128:
		return ndt.Complex128()
	case ndt.KindChar:
		return ndt.Char()
	case ndt.KindString:
		return ndt.String()
	case ndt.KindBytes:
		return ndt.Bytes()
	}
	return ndt.Type{}
}
