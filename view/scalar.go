package view

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/xnderr"
)

// decodeScalar reads the native Go value out of a primitive dtype slot.
func decodeScalar(t ndt.Type, slot []byte) (any, error) {
	switch t.Kind() {
	case ndt.KindBool:
		return slot[0] != 0, nil
	case ndt.KindInt8:
		return int8(slot[0]), nil
	case ndt.KindUint8:
		return uint8(slot[0]), nil
	case ndt.KindInt16:
		return int16(binary.LittleEndian.Uint16(slot)), nil
	case ndt.KindUint16:
		return binary.LittleEndian.Uint16(slot), nil
	case ndt.KindInt32:
		return int32(binary.LittleEndian.Uint32(slot)), nil
	case ndt.KindUint32:
		return binary.LittleEndian.Uint32(slot), nil
	case ndt.KindInt64:
		return int64(binary.LittleEndian.Uint64(slot)), nil
	case ndt.KindUint64:
		return binary.LittleEndian.Uint64(slot), nil
	case ndt.KindFloat16:
		return float16ToFloat64(binary.LittleEndian.Uint16(slot)), nil
	case ndt.KindBFloat16:
		return bfloat16ToFloat64(binary.LittleEndian.Uint16(slot)), nil
	case ndt.KindFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(slot))), nil
	case ndt.KindFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(slot)), nil
	case ndt.KindComplex32:
		re := float16ToFloat64(binary.LittleEndian.Uint16(slot[0:2]))
		im := float16ToFloat64(binary.LittleEndian.Uint16(slot[2:4]))
		return complex(re, im), nil
	case ndt.KindComplex64:
		re := math.Float32frombits(binary.LittleEndian.Uint32(slot[0:4]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(slot[4:8]))
		return complex(float64(re), float64(im)), nil
	case ndt.KindComplex128:
		re := math.Float64frombits(binary.LittleEndian.Uint64(slot[0:8]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(slot[8:16]))
		return complex(re, im), nil
	case ndt.KindChar:
		return rune(binary.LittleEndian.Uint32(slot)), nil
	}
	return nil, xnderr.Wrap(xnderr.ErrType, "cannot decode scalar kind %s", t.Kind())
}

// encodeScalar validates and writes v into slot for dtype t, per the
// range/overflow rules in §5.2: integers reject out-of-range values
// (overflow), reduced-precision floats accept NaN but reject infinities
// produced by an in-range finite input overflowing the target exponent
// (overflow), consistent with the source implementation's assignment
// semantics.
func encodeScalar(t ndt.Type, slot []byte, v any) error {
	switch t.Kind() {
	case ndt.KindBool:
		b, ok := v.(bool)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "expected bool, got %T", v)
		}
		if b {
			slot[0] = 1
		} else {
			slot[0] = 0
		}
		return nil
	case ndt.KindInt8, ndt.KindInt16, ndt.KindInt32, ndt.KindInt64:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		return putInt(t.Kind(), slot, n)
	case ndt.KindUint8, ndt.KindUint16, ndt.KindUint32, ndt.KindUint64:
		n, err := toUint64(v)
		if err != nil {
			return err
		}
		return putUint(t.Kind(), slot, n)
	case ndt.KindFloat16:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		bits, ok := float64ToFloat16(f)
		if !ok {
			return xnderr.Wrap(xnderr.ErrOverflow, "%v overflows float16", v)
		}
		binary.LittleEndian.PutUint16(slot, bits)
		return nil
	case ndt.KindBFloat16:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		bits, ok := float64ToBFloat16(f)
		if !ok {
			return xnderr.Wrap(xnderr.ErrOverflow, "%v overflows bfloat16", v)
		}
		binary.LittleEndian.PutUint16(slot, bits)
		return nil
	case ndt.KindFloat32:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		if !math.IsNaN(f) && !math.IsInf(f, 0) && (f > math.MaxFloat32 || f < -math.MaxFloat32) {
			return xnderr.Wrap(xnderr.ErrOverflow, "%v overflows float32", v)
		}
		binary.LittleEndian.PutUint32(slot, math.Float32bits(float32(f)))
		return nil
	case ndt.KindFloat64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(slot, math.Float64bits(f))
		return nil
	case ndt.KindComplex128:
		c, ok := v.(complex128)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "expected complex128, got %T", v)
		}
		binary.LittleEndian.PutUint64(slot[0:8], math.Float64bits(real(c)))
		binary.LittleEndian.PutUint64(slot[8:16], math.Float64bits(imag(c)))
		return nil
	case ndt.KindComplex64:
		c, ok := v.(complex128)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "expected complex128, got %T", v)
		}
		binary.LittleEndian.PutUint32(slot[0:4], math.Float32bits(float32(real(c))))
		binary.LittleEndian.PutUint32(slot[4:8], math.Float32bits(float32(imag(c))))
		return nil
	case ndt.KindComplex32:
		c, ok := v.(complex128)
		if !ok {
			return xnderr.Wrap(xnderr.ErrType, "expected complex128, got %T", v)
		}
		reBits, ok1 := float64ToFloat16(real(c))
		imBits, ok2 := float64ToFloat16(imag(c))
		if !ok1 || !ok2 {
			return xnderr.Wrap(xnderr.ErrOverflow, "%v overflows complex32", v)
		}
		binary.LittleEndian.PutUint16(slot[0:2], reBits)
		binary.LittleEndian.PutUint16(slot[2:4], imBits)
		return nil
	case ndt.KindChar:
		r, ok := v.(rune)
		if !ok {
			s, isStr := v.(string)
			if isStr && utf8.RuneCountInString(s) == 1 {
				r, _ = utf8.DecodeRuneInString(s)
			} else {
				return xnderr.Wrap(xnderr.ErrType, "expected a single rune, got %T", v)
			}
		}
		binary.LittleEndian.PutUint32(slot, uint32(r))
		return nil
	}
	return xnderr.Wrap(xnderr.ErrType, "cannot encode scalar kind %s", t.Kind())
}

func putInt(k ndt.Kind, slot []byte, n int64) error {
	var lo, hi int64
	switch k {
	case ndt.KindInt8:
		lo, hi = math.MinInt8, math.MaxInt8
	case ndt.KindInt16:
		lo, hi = math.MinInt16, math.MaxInt16
	case ndt.KindInt32:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		slot[0] = byte(n)
		if k == ndt.KindInt64 {
			binary.LittleEndian.PutUint64(slot, uint64(n))
		}
		return nil
	}
	if n < lo || n > hi {
		return xnderr.Wrap(xnderr.ErrOverflow, "%d overflows %s", n, k)
	}
	switch k {
	case ndt.KindInt8:
		slot[0] = byte(n)
	case ndt.KindInt16:
		binary.LittleEndian.PutUint16(slot, uint16(n))
	case ndt.KindInt32:
		binary.LittleEndian.PutUint32(slot, uint32(n))
	}
	return nil
}

func putUint(k ndt.Kind, slot []byte, n uint64) error {
	var hi uint64
	switch k {
	case ndt.KindUint8:
		hi = math.MaxUint8
	case ndt.KindUint16:
		hi = math.MaxUint16
	case ndt.KindUint32:
		hi = math.MaxUint32
	case ndt.KindUint64:
		binary.LittleEndian.PutUint64(slot, n)
		return nil
	}
	if n > hi {
		return xnderr.Wrap(xnderr.ErrOverflow, "%d overflows %s", n, k)
	}
	switch k {
	case ndt.KindUint8:
		slot[0] = byte(n)
	case ndt.KindUint16:
		binary.LittleEndian.PutUint16(slot, uint16(n))
	case ndt.KindUint32:
		binary.LittleEndian.PutUint32(slot, uint32(n))
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, xnderr.Wrap(xnderr.ErrOverflow, "%d overflows int64", n)
		}
		return int64(n), nil
	}
	return 0, xnderr.Wrap(xnderr.ErrType, "expected an integer, got %T", v)
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, xnderr.Wrap(xnderr.ErrOverflow, "%d overflows an unsigned type", n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, xnderr.Wrap(xnderr.ErrOverflow, "%d overflows an unsigned type", n)
		}
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	}
	return 0, xnderr.Wrap(xnderr.ErrType, "expected an unsigned integer, got %T", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, xnderr.Wrap(xnderr.ErrType, "expected a float, got %T", v)
}

// decodeFixedString trims trailing NUL code units and decodes per encoding.
func decodeFixedString(t ndt.Type, slot []byte) (string, error) {
	unit := len(slot)
	if t.Length() > 0 {
		unit = len(slot) / t.Length()
	}
	switch t.Encoding() {
	case ndt.Ascii, ndt.UTF8:
		end := len(slot)
		for end > 0 && slot[end-1] == 0 {
			end--
		}
		return string(slot[:end]), nil
	case ndt.UTF16:
		units := make([]uint16, len(slot)/2)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(slot[i*2:])
		}
		for len(units) > 0 && units[len(units)-1] == 0 {
			units = units[:len(units)-1]
		}
		return string(utf16.Decode(units)), nil
	case ndt.UTF32:
		n := len(slot) / 4
		for n > 0 && binary.LittleEndian.Uint32(slot[(n-1)*4:]) == 0 {
			n--
		}
		runes := make([]rune, n)
		for i := 0; i < n; i++ {
			runes[i] = rune(binary.LittleEndian.Uint32(slot[i*4:]))
		}
		return string(runes), nil
	}
	_ = unit
	return "", xnderr.Wrap(xnderr.ErrType, "unsupported fixed_string encoding %s", t.Encoding())
}

func encodeFixedString(t ndt.Type, slot []byte, s string) error {
	for i := range slot {
		slot[i] = 0
	}
	switch t.Encoding() {
	case ndt.Ascii:
		if len(s) > len(slot) {
			return xnderr.Wrap(xnderr.ErrOverflow, "string of %d bytes does not fit fixed_string[%d,'ascii']", len(s), t.Length())
		}
		for i := 0; i < len(s); i++ {
			if s[i] > 0x7F {
				return xnderr.Wrap(xnderr.ErrValue, "byte %d is not ASCII", i)
			}
		}
		copy(slot, s)
		return nil
	case ndt.UTF8:
		if !utf8.ValidString(s) {
			return xnderr.Wrap(xnderr.ErrValue, "invalid utf-8")
		}
		if len(s) > len(slot) {
			return xnderr.Wrap(xnderr.ErrOverflow, "string of %d bytes does not fit fixed_string[%d,'utf8']", len(s), t.Length())
		}
		copy(slot, s)
		return nil
	case ndt.UTF16:
		units := utf16.Encode([]rune(s))
		if len(units) > len(slot)/2 {
			return xnderr.Wrap(xnderr.ErrOverflow, "%d utf-16 units do not fit fixed_string[%d,'utf16']", len(units), t.Length())
		}
		for i, u := range units {
			binary.LittleEndian.PutUint16(slot[i*2:], u)
		}
		return nil
	case ndt.UTF32:
		runes := []rune(s)
		if len(runes) > len(slot)/4 {
			return xnderr.Wrap(xnderr.ErrOverflow, "%d code points do not fit fixed_string[%d,'utf32']", len(runes), t.Length())
		}
		for i, r := range runes {
			binary.LittleEndian.PutUint32(slot[i*4:], uint32(r))
		}
		return nil
	}
	return xnderr.Wrap(xnderr.ErrType, "unsupported fixed_string encoding %s", t.Encoding())
}
