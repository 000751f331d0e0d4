package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/list"
)

// Check walks the heap from fence to fence and cross-checks it against the
// free lists. It returns nil iff:
//
//   - the walk lands on successive block starts and terminates exactly at
//     the right fence,
//   - every block's header mirrors its footer and has a legal, even size,
//   - no two adjacent blocks are both free,
//   - the free blocks in the heap and the members of the free lists are the
//     same set, each member filed in its size class exactly once.
//
// All errors wrap ErrCorrupt. Errors about a single block name its word
// offset; errors about a list or about the heap as a whole name the list
// index or the counts involved.
func (a *Allocator) Check() error {
	if !a.initialized {
		return nil
	}

	data := a.h.Bytes()
	low := format.WordOff(a.h.Low())
	heapWords := format.WordOff(a.h.High())
	if heapWords-low < format.FenceWords {
		return fmt.Errorf("%w: heap smaller than the fence pair", ErrCorrupt)
	}
	if !format.ReadTag(data, low).IsFence() {
		return fmt.Errorf("%w: left fence missing at word %d", ErrCorrupt, low)
	}

	// Pass 1: physical walk.
	free := make(map[int32]int32) // header offset -> size in words
	prevFree := false
	b := int32(format.FenceWords - format.TagWords)
	for {
		if b >= heapWords {
			return fmt.Errorf("%w: walk ran past the heap end at word %d", ErrCorrupt, b)
		}
		t := format.ReadTag(data, b)
		if t.IsFence() {
			if b != heapWords-format.TagWords {
				return fmt.Errorf("%w: right fence at word %d, heap ends at %d",
					ErrCorrupt, b, heapWords-format.TagWords)
			}
			break
		}
		if t.SizeWords < format.MinBlockWords || t.SizeWords%2 != 0 {
			return fmt.Errorf("%w: illegal block size %d at word %d",
				ErrCorrupt, t.SizeWords, b)
		}
		if b+t.SizeWords >= heapWords {
			return fmt.Errorf("%w: block at word %d overruns the heap", ErrCorrupt, b)
		}
		if foot := format.ReadTag(data, footerOff(b, t.SizeWords)); foot != t {
			return fmt.Errorf("%w: header/footer mismatch at word %d", ErrCorrupt, b)
		}
		if !t.Inuse {
			if prevFree {
				return fmt.Errorf("%w: adjacent free blocks at word %d", ErrCorrupt, b)
			}
			free[b] = t.SizeWords
		}
		prevFree = !t.Inuse
		b += t.SizeWords
	}

	// Pass 2: the lists must cover exactly the free blocks.
	seen := make(map[int32]bool, len(free))
	for k := range a.lists {
		l := &a.lists[k]
		count := 0
		for n := l.Begin(); n != l.End(); n = list.Next(data, n) {
			count++
			if count > len(free)+1 {
				return fmt.Errorf("%w: cycle in free list %d", ErrCorrupt, k)
			}
			blk := blockOf(n)
			size, ok := free[blk]
			if !ok {
				return fmt.Errorf("%w: list %d member at word %d is not a free block",
					ErrCorrupt, k, blk)
			}
			if seen[blk] {
				return fmt.Errorf("%w: block at word %d on more than one list",
					ErrCorrupt, blk)
			}
			seen[blk] = true
			if sizeClass(size) != k {
				return fmt.Errorf("%w: block at word %d (size %d) filed in class %d, want %d",
					ErrCorrupt, blk, size, k, sizeClass(size))
			}
		}
		if count != l.Len() {
			return fmt.Errorf("%w: list %d length %d, counted %d",
				ErrCorrupt, k, l.Len(), count)
		}
	}
	if len(seen) != len(free) {
		return fmt.Errorf("%w: %d free blocks in heap, %d on lists",
			ErrCorrupt, len(free), len(seen))
	}
	return nil
}
