package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestAllocator creates an initialized allocator over a capped in-memory
// heap. The initial heap holds one free block of ChunkWords.
func newTestAllocator(t testing.TB, maxBytes int) *Allocator {
	t.Helper()

	h, err := heap.New(heap.Options{InMemory: true, MaxBytes: maxBytes})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	a := New(h)
	require.NoError(t, a.Init())
	return a
}

// newUninitAllocator creates an allocator without running Init, for lazy
// initialization tests.
func newUninitAllocator(t testing.TB, maxBytes int) *Allocator {
	t.Helper()

	h, err := heap.New(heap.Options{InMemory: true, MaxBytes: maxBytes})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return New(h)
}

// requireCheck fails the test if the consistency checker rejects the heap.
func requireCheck(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

// freeBlockSizes walks the heap physically and returns the sizes (in words)
// of all free blocks, left to right.
func freeBlockSizes(a *Allocator) []int32 {
	data := a.h.Bytes()
	heapWords := format.WordOff(a.h.Size())

	var out []int32
	b := int32(format.FenceWords - format.TagWords)
	for b < heapWords {
		t := format.ReadTag(data, b)
		if t.IsFence() {
			break
		}
		if !t.Inuse {
			out = append(out, t.SizeWords)
		}
		b += t.SizeWords
	}
	return out
}

// blockSizeOf returns the total size in words of the block behind ref.
func blockSizeOf(t testing.TB, a *Allocator, ref Ref) int32 {
	t.Helper()
	b, err := a.blockForRef(ref)
	require.NoError(t, err)
	return blockSize(a.h.Bytes(), b)
}

// fill writes a repeating marker byte over the whole slice.
func fill(p []byte, marker byte) {
	for i := range p {
		p[i] = marker
	}
}

// requireFilled verifies the first n bytes still carry the marker.
func requireFilled(t testing.TB, p []byte, n int, marker byte) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.Equal(t, marker, p[i], "payload corrupted at byte %d", i)
	}
}
