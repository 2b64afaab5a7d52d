// Package bitmap implements the Arrow-compatible validity bitmap used by
// every optional (nullable) level of a container. Bit i of a bitmap is set
// iff element i is present; a cleared bit marks the element missing. Bit
// order matches Arrow: LSB-first within each byte, words are little-endian
// uint64s, mirroring the presence-map layout used throughout the multimap
// ART nodes this package is modeled on.
package bitmap

import (
	"math/bits"

	"github.com/xnd-project/xnd/xnderr"
)

// Bitmap is a length-N packed validity bit array. The zero value is the
// empty sentinel used by non-optional levels: Len() == 0 and IsEmpty()
// reports true.
type Bitmap struct {
	words []uint64
	n     int
}

// New allocates a Bitmap of n bits, all initially set (present). Levels
// become "missing" only by an explicit Clear, matching the marshaller's
// policy that every slot starts valid until assigned None.
func New(n int) Bitmap {
	if n <= 0 {
		return Bitmap{}
	}
	nw := (n + 63) / 64
	words := make([]uint64, nw)
	for i := range words {
		words[i] = ^uint64(0)
	}
	if rem := n % 64; rem != 0 {
		words[nw-1] = (uint64(1) << uint(rem)) - 1
	}
	return Bitmap{words: words, n: n}
}

// NewCleared allocates a Bitmap of n bits, all initially cleared (missing).
func NewCleared(n int) Bitmap {
	if n <= 0 {
		return Bitmap{}
	}
	nw := (n + 63) / 64
	return Bitmap{words: make([]uint64, nw), n: n}
}

// Len returns the number of bits tracked by this bitmap.
func (b *Bitmap) Len() int { return b.n }

// IsEmpty reports whether this is the sentinel used by non-optional levels.
func (b *Bitmap) IsEmpty() bool { return b.n == 0 }

func (b *Bitmap) checkRange(i int) error {
	if i < 0 || i >= b.n {
		return xnderr.Wrap(xnderr.ErrOutOfRange, "bitmap index %d out of range [0,%d)", i, b.n)
	}
	return nil
}

// Set marks bit i present.
func (b *Bitmap) Set(i int) error {
	if err := b.checkRange(i); err != nil {
		return err
	}
	b.words[i>>6] |= uint64(1) << uint(i&0x3F)
	return nil
}

// Clear marks bit i missing.
func (b *Bitmap) Clear(i int) error {
	if err := b.checkRange(i); err != nil {
		return err
	}
	b.words[i>>6] &^= uint64(1) << uint(i&0x3F)
	return nil
}

// IsSet reports whether bit i is present. An empty bitmap (non-optional
// level) always reports every index present.
func (b *Bitmap) IsSet(i int) bool {
	if b.IsEmpty() {
		return true
	}
	if i < 0 || i >= b.n {
		return false
	}
	return (b.words[i>>6] & (uint64(1) << uint(i&0x3F))) != 0
}

// PopCount returns the number of set (present) bits.
func (b *Bitmap) PopCount() int {
	count := 0
	for _, w := range b.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Clone returns an independent copy sharing no backing storage, the
// copy-on-derive counterpart used whenever a derived View would otherwise
// mutate a bitmap it does not own outright.
func (b *Bitmap) Clone() Bitmap {
	if b.IsEmpty() {
		return Bitmap{}
	}
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return Bitmap{words: words, n: b.n}
}

// Slice returns a new Bitmap covering bits [lo,hi) of b, suitable for the
// view/subscript engine to carve validity windows out of a parent bitmap
// without mutating it in place.
func (b *Bitmap) Slice(lo, hi int) (Bitmap, error) {
	if b.IsEmpty() {
		return Bitmap{}, nil
	}
	if lo < 0 || hi > b.n || lo > hi {
		return Bitmap{}, xnderr.Wrap(xnderr.ErrOutOfRange, "bitmap slice [%d:%d) out of range [0,%d)", lo, hi, b.n)
	}
	out := NewCleared(hi - lo)
	for i := lo; i < hi; i++ {
		if b.IsSet(i) {
			_ = out.Set(i - lo)
		}
	}
	return out, nil
}

// Gather builds a new Bitmap by reading validity at the given source
// indices in order, used when a derived view picks a non-contiguous subset
// of elements (e.g. a reversed slice or an integer-after-slice pick).
func (b *Bitmap) Gather(indices []int) (Bitmap, error) {
	if b.IsEmpty() {
		return Bitmap{}, nil
	}
	out := NewCleared(len(indices))
	for j, i := range indices {
		if i < 0 || i >= b.n {
			return Bitmap{}, xnderr.Wrap(xnderr.ErrOutOfRange, "bitmap gather index %d out of range [0,%d)", i, b.n)
		}
		if b.IsSet(i) {
			_ = out.Set(j)
		}
	}
	return out, nil
}

// All reports whether every element in [0,Len()) is present.
func (b *Bitmap) All() bool {
	if b.IsEmpty() {
		return true
	}
	return b.PopCount() == b.n
}
