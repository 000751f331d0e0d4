package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/list"
	"github.com/joshuapare/heapkit/internal/membase"
)

// maxRequestBytes bounds a single request so the adjusted size in words
// cannot overflow the 31-bit tag size field.
const maxRequestBytes = 1<<31 - 16

// Allocator carves a heap region into boundary-tagged blocks and tracks the
// free ones in a segregated array of free lists.
type Allocator struct {
	h     *heap.Heap
	lists [format.NumClasses]list.List
	stats Stats

	initialized bool
}

// New returns an allocator over h. The heap must be empty; the first
// operation (or an explicit Init) writes the fences and the initial free
// block.
func New(h *heap.Heap) *Allocator {
	return &Allocator{h: h}
}

// Init prepares the heap: all free lists empty, two fence words written, and
// the heap extended by ChunkWords so the first allocation has somewhere to
// go. Init is idempotent; Alloc, Free, and Realloc call it lazily.
func (a *Allocator) Init() error {
	if a.initialized {
		return nil
	}
	if a.h.Size() != 0 {
		return fmt.Errorf("%w: heap not empty at init", ErrCorrupt)
	}
	for i := range a.lists {
		a.lists[i].Init()
	}

	off, err := a.h.ExtendRaw(format.ByteOff(format.FenceWords))
	if err != nil {
		return a.growErr(err)
	}
	data := a.h.Bytes()
	left := format.WordOff(off)
	format.PutTag(data, left, format.Fence)
	format.PutTag(data, left+1, format.Fence)
	a.initialized = true

	if _, err := a.extendHeap(format.ChunkWords); err != nil {
		return err
	}
	debugLogf("init: heap primed with %d words", format.ChunkWords)
	return nil
}

// Alloc allocates a block with at least n usable payload bytes and returns
// its reference and payload view. n = 0 returns the null reference with no
// storage.
func (a *Allocator) Alloc(n int32) (Ref, []byte, error) {
	if n < 0 || n > maxRequestBytes {
		return 0, nil, ErrBadSize
	}
	if n == 0 {
		return 0, nil, nil
	}
	if err := a.ensureInit(); err != nil {
		return 0, nil, err
	}
	a.stats.AllocCalls++

	req := format.WordsForPayload(n)
	b := a.findFit(req)
	if b < 0 {
		grow := req
		if grow < format.ChunkWords {
			grow = format.ChunkWords
		}
		var err error
		b, err = a.extendHeap(grow)
		if err != nil {
			debugLogf("Alloc(%d): no fit and grow failed: %v", n, err)
			a.dumpAllocatorState()
			return 0, nil, err
		}
		a.stats.AllocSlowPath++
	} else {
		a.stats.AllocFastPath++
	}

	b = a.place(b, req)
	data := a.h.Bytes()
	a.stats.BytesAllocated += int64(format.ByteOff(blockSize(data, b)))
	return refOf(b), a.payload(data, b), nil
}

// Free returns the block to the free lists, merging with any free immediate
// neighbor. The null reference is accepted as a no-op.
func (a *Allocator) Free(ref Ref) error {
	if ref == 0 {
		return nil
	}
	if err := a.ensureInit(); err != nil {
		return err
	}
	a.stats.FreeCalls++

	b, err := a.blockForRef(ref)
	if err != nil {
		return err
	}
	data := a.h.Bytes()
	size := blockSize(data, b)
	a.stats.BytesFreed += int64(format.ByteOff(size))

	markFree(data, b, size)
	a.coalesce(b)
	return nil
}

// Realloc resizes the block at ref to hold at least n payload bytes. A null
// ref aliases to Alloc; n = 0 aliases to Free. The block stays in place when
// it can shrink or grow into its right neighbor or the heap edge; otherwise
// the contents move to a fresh block and the old one is freed. On failure
// the original block is untouched.
func (a *Allocator) Realloc(ref Ref, n int32) (Ref, []byte, error) {
	if ref == 0 {
		return a.Alloc(n)
	}
	if n < 0 || n > maxRequestBytes {
		return 0, nil, ErrBadSize
	}
	if n == 0 {
		return 0, nil, a.Free(ref)
	}
	if err := a.ensureInit(); err != nil {
		return 0, nil, err
	}
	a.stats.ReallocCalls++

	b, err := a.blockForRef(ref)
	if err != nil {
		return 0, nil, err
	}
	data := a.h.Bytes()
	old := blockSize(data, b)
	req := format.WordsForPayload(n)

	// Shrink, or already big enough: stay in place, splitting off the tail
	// when it makes a legal block.
	if req <= old {
		if old-req >= format.MinBlockWords {
			a.stats.SplitCount++
			markUsed(data, b, req)
			tail := b + req
			markFree(data, tail, old-req)
			a.coalesce(tail)
		}
		a.stats.ReallocInPlace++
		return ref, a.payload(data, b), nil
	}

	next := b + old
	nt := format.ReadTag(data, next)

	// Growing against the right fence: extend the heap and absorb the new
	// block whole.
	if nt.IsFence() {
		grow := req - old
		if grow < format.ChunkWords {
			grow = format.ChunkWords
		}
		nb, err := a.extendHeap(grow)
		if err != nil {
			return 0, nil, err
		}
		data = a.h.Bytes()
		ns := blockSize(data, nb)
		a.removeFree(nb, ns)
		markUsed(data, b, old+ns)
		a.stats.ReallocInPlace++
		return ref, a.payload(data, b), nil
	}

	// The right neighbor is free and covers the deficit: absorb it.
	if !nt.Inuse && old+nt.SizeWords >= req {
		a.absorbNext(b, old, req)
		a.stats.ReallocInPlace++
		data = a.h.Bytes()
		return ref, a.payload(data, b), nil
	}

	// The right neighbor is free but short, and it ends at the heap edge:
	// extend by the deficit, let the extension coalesce into the neighbor,
	// then absorb as above.
	if !nt.Inuse && format.ReadTag(data, next+nt.SizeWords).IsFence() {
		deficit := req - old - nt.SizeWords
		if _, err := a.extendHeap(deficit); err != nil {
			return 0, nil, err
		}
		a.absorbNext(b, old, req)
		a.stats.ReallocInPlace++
		data = a.h.Bytes()
		return ref, a.payload(data, b), nil
	}

	// Fallback: allocate elsewhere, copy, free the original.
	newRef, newPayload, err := a.Alloc(n)
	if err != nil {
		return 0, nil, err
	}
	data = a.h.Bytes()
	copyLen := format.PayloadBytes(old)
	if copyLen > n {
		copyLen = n
	}
	copy(newPayload[:copyLen], data[int(ref):int(ref)+int(copyLen)])
	if err := a.Free(ref); err != nil {
		return 0, nil, err
	}
	a.stats.ReallocMoved++
	return newRef, newPayload, nil
}

// Payload returns the payload view for a live reference.
func (a *Allocator) Payload(ref Ref) ([]byte, error) {
	b, err := a.blockForRef(ref)
	if err != nil {
		return nil, err
	}
	return a.payload(a.h.Bytes(), b), nil
}

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Heap returns the backing region.
func (a *Allocator) Heap() *heap.Heap {
	return a.h
}

// ============================================================================
// Internal helpers
// ============================================================================

func (a *Allocator) ensureInit() error {
	if a.initialized {
		return nil
	}
	return a.Init()
}

// findFit scans the free lists from the request's class upward and returns
// the first block that fits, or -1. The starting class can hold blocks
// smaller than the request, so the per-block size check is mandatory.
func (a *Allocator) findFit(req int32) int32 {
	data := a.h.Bytes()
	for k := sizeClass(req); k < format.NumClasses; k++ {
		l := &a.lists[k]
		for n := l.Begin(); n != l.End(); n = list.Next(data, n) {
			b := blockOf(n)
			if blockSize(data, b) >= req {
				return b
			}
		}
	}
	return -1
}

// place removes b from its list and marks req words of it used, splitting
// off the high-end remainder when it makes a legal block. Returns the used
// block's offset.
func (a *Allocator) place(b, req int32) int32 {
	data := a.h.Bytes()
	c := blockSize(data, b)
	a.removeFree(b, c)

	if c-req >= format.MinBlockWords {
		a.stats.SplitCount++
		markUsed(data, b, req)
		rem := b + req
		markFree(data, rem, c-req)
		a.insertFree(rem, c-req)
	} else {
		markUsed(data, b, c)
	}
	return b
}

// coalesce merges the freshly freed block b with any free immediate
// neighbor, inserts the result into its size class, and returns its offset.
// b must carry free tags and belong to no list. Fences read as in use, which
// disables merging past either heap end.
func (a *Allocator) coalesce(b int32) int32 {
	data := a.h.Bytes()
	size := blockSize(data, b)
	prevUsed := prevFooter(data, b).Inuse
	nextUsed := nextHeader(data, b).Inuse

	switch {
	case prevUsed && nextUsed:
		// Nothing to merge.

	case prevUsed && !nextUsed:
		next := nextBlock(data, b)
		ns := blockSize(data, next)
		a.removeFree(next, ns)
		a.stats.CoalesceForward++
		size += ns
		markFree(data, b, size)

	case !prevUsed && nextUsed:
		p := prevBlock(data, b)
		ps := blockSize(data, p)
		a.removeFree(p, ps)
		a.stats.CoalesceBackward++
		size += ps
		b = p
		markFree(data, b, size)

	default:
		next := nextBlock(data, b)
		ns := blockSize(data, next)
		p := prevBlock(data, b)
		ps := blockSize(data, p)
		a.removeFree(next, ns)
		a.removeFree(p, ps)
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
		size += ns + ps
		b = p
		markFree(data, b, size)
	}

	a.insertFree(b, size)
	return b
}

// extendHeap grows the region by at least reqWords (rounded to an even count
// of at least MinBlockWords), converts the displaced right fence into the
// new block's header, writes a fresh fence, and coalesces with the former
// right-most block. Returns the resulting free block's offset; the block is
// already on its free list.
func (a *Allocator) extendHeap(reqWords int32) (int32, error) {
	req := format.AlignUpEvenWords(reqWords)
	if req < format.MinBlockWords {
		req = format.MinBlockWords
	}

	off, err := a.h.ExtendRaw(format.ByteOff(req))
	if err != nil {
		return 0, a.growErr(err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(format.ByteOff(req))

	data := a.h.Bytes()
	b := format.WordOff(off) - format.TagWords // scoop up the old right fence
	markFree(data, b, req)
	format.PutTag(data, b+req, format.Fence)

	debugLogf("extend: +%d words, block at %d", req, b)
	return a.coalesce(b), nil
}

// absorbNext merges the free right neighbor into b and marks the result
// used, splitting off any remainder of at least MinBlockWords. The caller
// has verified the combined size covers req.
func (a *Allocator) absorbNext(b, old, req int32) {
	data := a.h.Bytes()
	next := b + old
	ns := blockSize(data, next)
	a.removeFree(next, ns)
	combined := old + ns

	if combined-req >= format.MinBlockWords {
		a.stats.SplitCount++
		markUsed(data, b, req)
		rem := b + req
		// The remainder's right neighbor was the absorbed block's neighbor,
		// which is in use or a fence, so inserting without coalescing keeps
		// the invariant.
		markFree(data, rem, combined-req)
		a.insertFree(rem, combined-req)
	} else {
		markUsed(data, b, combined)
	}
}

// insertFree pushes the block's embedded node onto the list for its class.
// The caller has already written the free tags.
func (a *Allocator) insertFree(b, sizeWords int32) {
	a.lists[sizeClass(sizeWords)].PushFront(a.h.Bytes(), nodeOf(b))
}

// removeFree unlinks the block's embedded node from the list for its class.
func (a *Allocator) removeFree(b, sizeWords int32) {
	a.lists[sizeClass(sizeWords)].Remove(a.h.Bytes(), nodeOf(b))
}

// blockForRef validates a reference and returns its block offset.
func (a *Allocator) blockForRef(ref Ref) (int32, error) {
	if ref%format.DWordSize != 0 {
		return 0, ErrBadRef
	}
	byteOff := int(ref)
	if byteOff < format.ByteOff(format.FenceWords) || byteOff >= a.h.Size() {
		return 0, ErrBadRef
	}
	b := format.WordOff(byteOff) - format.TagWords
	hdr := format.ReadTag(a.h.Bytes(), b)
	if hdr.SizeWords < format.MinBlockWords ||
		b+hdr.SizeWords > format.WordOff(a.h.Size()) {
		return 0, ErrBadRef
	}
	if !hdr.Inuse {
		return 0, ErrNotUsed
	}
	return b, nil
}

// payload returns the usable bytes between a block's header and footer.
func (a *Allocator) payload(data []byte, b int32) []byte {
	size := blockSize(data, b)
	return data[format.ByteOff(b+format.TagWords):format.ByteOff(footerOff(b, size))]
}

func refOf(b int32) Ref {
	return Ref(format.ByteOff(b + format.TagWords))
}

func (a *Allocator) growErr(err error) error {
	if errors.Is(err, membase.ErrExhausted) {
		return ErrOutOfMemory
	}
	return fmt.Errorf("alloc: extend heap: %w", err)
}
