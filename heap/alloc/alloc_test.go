package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func Test_InitThenSingleAlloc(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	// Init leaves one free chunk between the fences.
	assert.Equal(t, []int32{format.ChunkWords}, freeBlockSizes(a))
	requireCheck(t, a)

	ref, buf, err := a.Alloc(100)
	require.NoError(t, err)
	require.NotZero(t, ref)
	assert.Zero(t, ref%format.DWordSize, "payload must be 8-byte aligned")
	assert.GreaterOrEqual(t, len(buf), 100)
	requireCheck(t, a)
}

func Test_InitIdempotent(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	size := a.h.Size()

	require.NoError(t, a.Init())
	assert.Equal(t, size, a.h.Size(), "second Init must be a no-op")
}

func Test_LazyInitOnFirstAlloc(t *testing.T) {
	a := newUninitAllocator(t, 1<<20)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	require.NotZero(t, ref)
	requireCheck(t, a)
}

func Test_ZeroSizeAlloc(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ref, buf, err := a.Alloc(0)
	require.NoError(t, err)
	assert.Zero(t, ref)
	assert.Nil(t, buf)
	assert.Zero(t, a.Stats().AllocCalls, "zero-size requests get no storage")
}

func Test_NegativeSizeAlloc(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	_, _, err := a.Alloc(-1)
	assert.ErrorIs(t, err, ErrBadSize)
}

func Test_AlignmentAcrossSizes(t *testing.T) {
	a := newTestAllocator(t, 1<<22)

	for _, n := range []int32{1, 2, 7, 8, 9, 16, 24, 31, 100, 555, 4096} {
		ref, buf, err := a.Alloc(n)
		require.NoError(t, err, "Alloc(%d)", n)
		assert.Zero(t, ref%format.DWordSize, "Alloc(%d) payload misaligned", n)
		assert.GreaterOrEqual(t, int32(len(buf)), n,
			"Alloc(%d) payload too small", n)
		requireCheck(t, a)
	}
}

func Test_PayloadWithinBlock(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ref, buf, err := a.Alloc(200)
	require.NoError(t, err)

	size := blockSizeOf(t, a, ref)
	// The payload is everything between header and footer.
	assert.Equal(t, int(format.PayloadBytes(size)), len(buf))

	// Writing every payload byte must not disturb the tags.
	fill(buf, 0xAA)
	requireCheck(t, a)
}

func Test_MinimumBlockSize(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ref, _, err := a.Alloc(1)
	require.NoError(t, err)
	assert.Equal(t, int32(format.MinBlockWords), blockSizeOf(t, a, ref))
}

func Test_AdjacentAllocationsDoNotOverlap(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ref1, buf1, err := a.Alloc(64)
	require.NoError(t, err)
	ref2, buf2, err := a.Alloc(64)
	require.NoError(t, err)
	require.NotEqual(t, ref1, ref2)

	fill(buf1, 0xAA)
	fill(buf2, 0xBB)
	requireFilled(t, buf1, len(buf1), 0xAA)
	requireFilled(t, buf2, len(buf2), 0xBB)
	requireCheck(t, a)
}

func Test_FreeNullRef(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	require.NoError(t, a.Free(0))
	assert.Zero(t, a.Stats().FreeCalls)
}

func Test_DoubleFree(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	err = a.Free(ref)
	assert.ErrorIs(t, err, ErrNotUsed)
	requireCheck(t, a)
}

func Test_FreeBadRef(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	assert.ErrorIs(t, a.Free(12), ErrBadRef, "unaligned ref")
	assert.ErrorIs(t, a.Free(1<<30), ErrBadRef, "ref past the heap")
	requireCheck(t, a)
}

func Test_AllocRoundTripRestoresFreeSizes(t *testing.T) {
	a := newTestAllocator(t, 1<<20)
	before := freeBlockSizes(a)

	ref, _, err := a.Alloc(100)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	assert.Equal(t, before, freeBlockSizes(a),
		"free then coalesce must restore the pre-alloc free set")
	requireCheck(t, a)
}

func Test_OutOfMemory(t *testing.T) {
	// Cap the heap at exactly fences + initial chunk so any growth fails.
	capBytes := format.ByteOff(format.FenceWords + format.ChunkWords)
	a := newTestAllocator(t, capBytes)

	snapshot := make([]byte, a.h.Size())
	copy(snapshot, a.h.Bytes())

	_, _, err := a.Alloc(int32(format.ByteOff(format.ChunkWords)) + 1)
	require.ErrorIs(t, err, ErrOutOfMemory)

	assert.Equal(t, snapshot, a.h.Bytes(),
		"failed allocation must leave the heap byte-identical")
	requireCheck(t, a)
}

func Test_AllocAfterOOMStillWorks(t *testing.T) {
	capBytes := format.ByteOff(format.FenceWords + format.ChunkWords)
	a := newTestAllocator(t, capBytes)

	_, _, err := a.Alloc(int32(format.ByteOff(format.ChunkWords)) + 1)
	require.ErrorIs(t, err, ErrOutOfMemory)

	// A fitting request must still succeed from the untouched free lists.
	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	require.NotZero(t, ref)
	requireCheck(t, a)
}

func Test_Stats(t *testing.T) {
	a := newTestAllocator(t, 1<<22)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	st := a.Stats()
	assert.Equal(t, 1, st.AllocCalls)
	assert.Equal(t, 1, st.FreeCalls)
	assert.Equal(t, 1, st.AllocFastPath)
	assert.Zero(t, st.AllocSlowPath)
	assert.Equal(t, st.BytesAllocated, st.BytesFreed)
	assert.Equal(t, 1, st.GrowCalls, "only the init-time chunk extension")
}
