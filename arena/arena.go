// Package arena owns the raw, aligned memory blocks backing a container's
// primary data region, plus the small integer auxiliary arrays (offset
// tables, shape tables) every var-dim level needs. It is modeled on
// nmxmxh-inos_v1's HybridAllocator (github.com/nmxmxh/inos_v1, see
// kernel/threads/arena/allocator.go): an atomic allocation/free counter pair
// plus a Stats snapshot, generalized here from a fixed SAB-backed byte slab
// to a pluggable host/device allocator, and combined with the teacher's
// explicit 64-bit-pointer alignment discipline (art/node_types.go).
package arena

import (
	"fmt"
	"sync/atomic"

	"github.com/xnd-project/xnd/xnderr"
)

// Allocator is the pluggable memory source for an Arena. The default host
// allocator below satisfies it; a GPU/managed-device backend is expected to
// provide its own implementation per §6 of the design: "every allocation
// returns a device-qualified pointer plus an identifier that the View
// records for downstream consumers."
type Allocator interface {
	// Alloc returns a zero-initialized byte region of at least size bytes,
	// aligned to align bytes, plus an opaque device identifier (empty for
	// host memory).
	Alloc(size, align int) (data []byte, deviceID string, err error)
}

// HostAllocator is the default Allocator, backing arenas with regular Go
// heap memory over-allocated so an aligned sub-slice can always be carved
// out of it.
type HostAllocator struct{}

func (HostAllocator) Alloc(size, align int) ([]byte, string, error) {
	if size < 0 {
		return nil, "", xnderr.Wrap(xnderr.ErrValue, "negative arena size %d", size)
	}
	if align <= 0 {
		align = 1
	}
	raw := make([]byte, size+align)
	off := alignOffset(raw, align)
	return raw[off : off+size : off+size], "", nil
}

func alignOffset(b []byte, align int) int {
	if len(b) == 0 || align <= 1 {
		return 0
	}
	// A Go slice header has no guaranteed absolute address stability
	// across a GC move in general, but for the lifetime of this
	// computation it is numerically stable; real production code would
	// use a pinned allocation. This mirrors the same-architecture pointer
	// arithmetic the teacher's ART nodes assume.
	addr := sliceAddr(b)
	rem := addr % uintptrOf(align)
	if rem == 0 {
		return 0
	}
	return int(uintptrOf(align) - rem)
}

var globalStats stats

type stats struct {
	totalAllocated atomic.Int64
	totalFreed     atomic.Int64
	arenasCreated  atomic.Int64
	arenasLive     atomic.Int64
}

// Stats is a point-in-time snapshot of allocator activity across every
// Arena created by this process, mirroring HybridAllocator.GetStats().
type Stats struct {
	TotalAllocated int64
	TotalFreed     int64
	ArenasCreated  int64
	ArenasLive     int64
}

// GlobalStats returns a snapshot of process-wide arena bookkeeping.
func GlobalStats() Stats {
	return Stats{
		TotalAllocated: globalStats.totalAllocated.Load(),
		TotalFreed:     globalStats.totalFreed.Load(),
		ArenasCreated:  globalStats.arenasCreated.Load(),
		ArenasLive:     globalStats.arenasLive.Load(),
	}
}

// Arena is a single aligned byte buffer owned by exactly one root View.
// Derived views hold a borrow of the same Arena via Retain/Release, which
// maintain an atomic refcount; the backing bytes are released only when the
// last holder calls Release.
type Arena struct {
	data      []byte
	alignment int
	writable  bool
	device    bool
	deviceID  string
	allocator Allocator
	refs      *atomic.Int64
	dropped   *atomic.Bool
}

// New allocates a zero-initialized Arena of size bytes aligned to alignment
// bytes using alloc (HostAllocator{} if nil).
func New(size, alignment int, alloc Allocator) (*Arena, error) {
	if alloc == nil {
		alloc = HostAllocator{}
	}
	data, deviceID, err := alloc.Alloc(size, alignment)
	if err != nil {
		return nil, err
	}
	globalStats.totalAllocated.Add(int64(size))
	globalStats.arenasCreated.Add(1)
	globalStats.arenasLive.Add(1)
	refs := &atomic.Int64{}
	refs.Store(1)
	return &Arena{
		data:      data,
		alignment: alignment,
		writable:  true,
		device:    deviceID != "",
		deviceID:  deviceID,
		allocator: alloc,
		refs:      refs,
		dropped:   &atomic.Bool{},
	}, nil
}

// Import wraps an externally supplied memory region (the buffer-protocol
// import entry point in §6): the arena does not own this memory and never
// frees it; writable is copied from the caller.
func Import(data []byte, writable bool) *Arena {
	refs := &atomic.Int64{}
	refs.Store(1)
	return &Arena{data: data, writable: writable, refs: refs, dropped: &atomic.Bool{}}
}

// Data returns the backing byte slice. Panics are avoided: once dropped,
// Data returns nil.
func (a *Arena) Data() []byte {
	if a.dropped.Load() {
		return nil
	}
	return a.data
}

// Writable reports whether mutation through this arena is permitted.
func (a *Arena) Writable() bool { return a.writable }

// Device reports whether this arena is device (non-host) memory, and its
// device identifier if so.
func (a *Arena) Device() (bool, string) { return a.device, a.deviceID }

// Retain increments the refcount and returns the same Arena, the
// counterpart of every derived View cloning its root's arena reference.
func (a *Arena) Retain() *Arena {
	a.refs.Add(1)
	return a
}

// Release decrements the refcount; once it reaches zero the arena frees its
// imported-from-host bytes (a no-op for externally imported memory, which
// this package never owns) and becomes inaccessible — "no dangling
// references after dropping... only the root controls lifetime."
func (a *Arena) Release() int64 {
	n := a.refs.Add(-1)
	if n <= 0 && a.dropped.CompareAndSwap(false, true) {
		if a.allocator != nil { // imported arenas were never counted by New
			globalStats.totalFreed.Add(int64(len(a.data)))
			globalStats.arenasLive.Add(-1)
		}
		a.data = nil
	}
	return n
}

// RefCount reports the current number of live holders.
func (a *Arena) RefCount() int64 { return a.refs.Load() }

// NewOffsetTable allocates a zero-initialized var-dim offset table of
// length n+1, per the invariant that offsets[n] has one more entry than
// there are outer elements.
func NewOffsetTable(n int) []int64 {
	if n < 0 {
		n = 0
	}
	return make([]int64, n+1)
}

// NewShapeTable allocates a zero-initialized var-dim shape table of length n.
func NewShapeTable(n int) []int64 {
	if n < 0 {
		n = 0
	}
	return make([]int64, n)
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{size=%d writable=%v device=%v refs=%d}", len(a.data), a.writable, a.device, a.RefCount())
}
