package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArenaZeroInitialized(t *testing.T) {
	a, err := New(64, 8, nil)
	require.NoError(t, err)
	defer a.Release()

	data := a.Data()
	require.Len(t, data, 64)
	for i, b := range data {
		assert.Equal(t, byte(0), b, "byte %d should be zero-initialized", i)
	}
	assert.True(t, a.Writable())
}

func TestArenaAlignment(t *testing.T) {
	for _, align := range []int{1, 2, 4, 8, 16, 32} {
		a, err := New(17, align, nil)
		require.NoError(t, err)
		addr := sliceAddr(a.Data())
		assert.Equal(t, uintptr(0), addr%uintptrOf(align), "arena data must satisfy alignment=%d", align)
		a.Release()
	}
}

func TestArenaRefcounting(t *testing.T) {
	a, err := New(8, 8, nil)
	require.NoError(t, err)

	b := a.Retain()
	assert.Equal(t, int64(2), a.RefCount())

	assert.Equal(t, int64(1), b.Release())
	require.NotNil(t, a.Data(), "arena must stay alive while any holder remains")

	assert.Equal(t, int64(0), a.Release())
	assert.Nil(t, a.Data(), "arena must release its bytes once the last holder drops it")
}

func TestImportDoesNotOwnMemory(t *testing.T) {
	buf := make([]byte, 8)
	buf[0] = 0xFF
	a := Import(buf, false)
	assert.False(t, a.Writable())
	assert.Equal(t, byte(0xFF), a.Data()[0])
}

func TestOffsetAndShapeTables(t *testing.T) {
	offsets := NewOffsetTable(3)
	require.Len(t, offsets, 4, "offset table for N outer elements has N+1 entries")

	shapes := NewShapeTable(3)
	require.Len(t, shapes, 3)
}

func TestGlobalStatsTracksLiveArenas(t *testing.T) {
	before := GlobalStats()
	a, err := New(32, 8, nil)
	require.NoError(t, err)
	after := GlobalStats()
	assert.Equal(t, before.ArenasLive+1, after.ArenasLive)
	assert.Equal(t, before.TotalAllocated+32, after.TotalAllocated)

	a.Release()
	final := GlobalStats()
	assert.Equal(t, after.ArenasLive-1, final.ArenasLive)
}
