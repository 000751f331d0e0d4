// Package alloc implements the dynamic storage allocator over a heap region.
//
// # Overview
//
// The allocator partitions the heap into variable-sized blocks bracketed by
// one-word boundary tags and hands out 8-byte-aligned payloads. Free blocks
// are threaded onto a segregated array of free lists indexed by size class,
// giving roughly constant expected time per request.
//
// # Block layout
//
// Every block is a contiguous run of 4-byte words:
//
//	header tag (1 word) | body (size-2 words) | footer tag (1 word)
//
// Header and footer are bit-identical; each packs an inuse bit and the total
// block size in words. Free block bodies start with a two-word list node.
// Two fence tags (inuse, size 0) bracket the live heap so neighbor reads
// never run off the ends.
//
// # Size classes
//
// The allocator maintains 20 segregated free lists. List k holds free blocks
// whose size in words lies in [2^k, 2^(k+1)); the final list absorbs all
// larger sizes. Allocation scans the starting class and upward, taking the
// first block that fits, and splits off any remainder of at least four words.
//
// # Usage example
//
//	h, err := heap.New(heap.Options{})
//	if err != nil {
//	    return err
//	}
//	a := alloc.New(h)
//
//	ref, buf, err := a.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later, release or resize the block.
//	ref, buf, err = a.Realloc(ref, 512)
//	err = a.Free(ref)
//
// # References
//
// A Ref is the byte offset of a block's payload from the heap base; 0 is the
// null reference. Payload slices are views into the heap and stay valid until
// the block is freed or moved by Realloc.
//
// # Freeing and coalescing
//
// Free marks the block and merges it with any free immediate neighbor using
// the boundary tags, so no two adjacent free blocks ever exist. When no fit
// is found, the heap grows by at least ChunkWords and the displaced right
// fence becomes the header of the new free block.
//
// # Thread safety
//
// Allocator instances are not thread-safe. Callers must serialize access
// externally.
package alloc
