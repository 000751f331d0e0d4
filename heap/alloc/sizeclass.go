package alloc

import "github.com/joshuapare/heapkit/internal/format"

// sizeClass maps a block size in words to its free-list index: floor(log2 s),
// saturated at the top class. Insert and find-fit must agree on this mapping,
// so both call here.
func sizeClass(sizeWords int32) int {
	k := 0
	for s := sizeWords; s > 1 && k < format.NumClasses-1; s >>= 1 {
		k++
	}
	return k
}

// classRange returns the half-open size range [lo, hi) covered by class k.
// The top class has no upper bound; hi is 0 there.
func classRange(k int) (lo, hi int32) {
	lo = int32(1) << k
	if k < format.NumClasses-1 {
		hi = lo << 1
	}
	return lo, hi
}
