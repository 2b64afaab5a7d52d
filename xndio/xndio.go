package xndio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/xnd-project/xnd/ndt"
	"github.com/xnd-project/xnd/view"
	"github.com/xnd-project/xnd/xnderr"
)

// magic identifies the container format on disk; version allows the wire
// layout to change without breaking the ability to reject an old/unknown
// stream outright instead of misparsing it.
var magic = [4]byte{'X', 'N', 'D', 'S'}

const version = uint8(1)

// Writer serializes Views to an io.Writer in the container's three
// length-prefixed sections (type, metadata, data), following the same
// section-then-payload structure as solidcoredata-dca/ts's writer.go, one
// field coder invocation per column generalized here to one recursive
// encodeType/encodeValue call per View.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes v: header, type section, metadata section (currently
// unused, reserved for future provenance/device info, written empty), then
// the data section.
func (wr *Writer) Write(v *view.View) error {
	var typeBuf bytes.Buffer
	if err := encodeType(&typeBuf, v.Type()); err != nil {
		return err
	}

	val, err := v.Value()
	if err != nil {
		return err
	}
	var dataBuf bytes.Buffer
	if err := encodeValue(&dataBuf, val); err != nil {
		return err
	}

	bw := bufio.NewWriter(wr.w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := bw.WriteByte(version); err != nil {
		return err
	}
	if err := writeSection(bw, typeBuf.Bytes()); err != nil {
		return err
	}
	if err := writeSection(bw, nil); err != nil {
		return err
	}
	if err := writeSection(bw, dataBuf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

func writeSection(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readSection(r io.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Reader deserializes a single View written by Writer.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read reconstructs a View from the wrapped stream.
func (rd *Reader) Read() (*view.View, error) {
	br := bufio.NewReader(rd.r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, xnderr.Wrap(xnderr.ErrValue, "not an xnd container: bad magic %q", gotMagic)
	}
	ver, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, xnderr.Wrap(xnderr.ErrNotImplemented, "unsupported container version %d", ver)
	}

	typeBytes, err := readSection(br)
	if err != nil {
		return nil, err
	}
	if _, err := readSection(br); err != nil { // metadata, currently unused
		return nil, err
	}
	dataBytes, err := readSection(br)
	if err != nil {
		return nil, err
	}

	t, err := decodeType(bytes.NewReader(typeBytes))
	if err != nil {
		return nil, err
	}
	val, err := decodeValue(bytes.NewReader(dataBytes))
	if err != nil {
		return nil, err
	}
	return view.BuildValue(t, val)
}

// Marshal serializes v to a byte slice in one call.
func Marshal(v *view.View) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes a single View from b.
func Unmarshal(b []byte) (*view.View, error) {
	return NewReader(bytes.NewReader(b)).Read()
}

// ValidateType reports whether t can be carried on the wire at all,
// letting the root facade surface not_implemented early for types this
// codec cannot represent (Constructor and Typedef nodes, and categoricals
// with non-string category values).
func ValidateType(t ndt.Type) error {
	var buf bytes.Buffer
	return encodeType(&buf, t)
}
