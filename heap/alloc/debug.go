package alloc

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/list"
)

// Compile-time toggle for verbose allocator logging.
const debugAlloc = false

// Runtime toggle for allocation logging, controlled by HEAPKIT_LOG_ALLOC.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// debugLogf prints debug messages when either toggle is on.
func debugLogf(msg string, args ...any) {
	if debugAlloc || logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] "+msg+"\n", args...)
	}
}

// dumpAllocatorState writes the per-class free-list population to stderr.
func (a *Allocator) dumpAllocatorState() {
	if !debugAlloc && !logAlloc {
		return
	}

	data := a.h.Bytes()
	fmt.Fprintf(os.Stderr, "\n=== ALLOCATOR STATE (heap %d bytes) ===\n", a.h.Size())

	totalFree := 0
	totalFreeWords := int64(0)
	for k := range a.lists {
		l := &a.lists[k]
		if l.Empty() {
			continue
		}
		var minSize, maxSize int32
		for n := l.Begin(); n != l.End(); n = list.Next(data, n) {
			size := blockSize(data, blockOf(n))
			if minSize == 0 || size < minSize {
				minSize = size
			}
			if size > maxSize {
				maxSize = size
			}
			totalFreeWords += int64(size)
		}
		totalFree += l.Len()
		lo, hi := classRange(k)
		fmt.Fprintf(os.Stderr, "  class[%d] [%d,%d): %d blocks, sizes [%d, %d]\n",
			k, lo, hi, l.Len(), minSize, maxSize)
	}
	fmt.Fprintf(os.Stderr, "  total: %d free blocks, %d words\n", totalFree, totalFreeWords)
}
