package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/heapkit/internal/format"
)

func Test_SizeClassMapping(t *testing.T) {
	cases := []struct {
		size int32
		k    int
	}{
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{7, 2},
		{8, 3},
		{15, 3},
		{16, 4},
		{1023, 9},
		{1024, 10},
		{1 << 18, 18},
		{1 << 19, 19},
		{1 << 20, 19},      // saturates at the top class
		{1<<30 - 1, 19},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.k, sizeClass(tc.size), "sizeClass(%d)", tc.size)
	}
}

func Test_SizeClassBoundaries(t *testing.T) {
	// Class k covers [2^k, 2^(k+1)); both endpoints of every non-top class
	// must map consistently.
	for k := 0; k < format.NumClasses-1; k++ {
		lo, hi := classRange(k)
		assert.Equal(t, k, sizeClass(lo), "low boundary of class %d", k)
		assert.Equal(t, k, sizeClass(hi-1), "high boundary of class %d", k)
		assert.Equal(t, k+1, sizeClass(hi), "next class boundary after %d", k)
	}

	lo, hi := classRange(format.NumClasses - 1)
	assert.Equal(t, int32(1)<<(format.NumClasses-1), lo)
	assert.Zero(t, hi, "top class is unbounded")
}

func Test_SizeClassMonotonic(t *testing.T) {
	// The find-fit scan starts at sizeClass(req) and walks upward, so any
	// block that can satisfy the request must live at or above that class.
	prev := 0
	for size := int32(1); size <= 1<<21; size <<= 1 {
		k := sizeClass(size)
		assert.GreaterOrEqual(t, k, prev, "sizeClass must not decrease (size %d)", size)
		assert.GreaterOrEqual(t, k, sizeClass(size-1), "within-step monotonicity")
		prev = k
	}
}
