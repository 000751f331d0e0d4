// Package format houses the low-level block layout for the heap: boundary-tag
// encoding, alignment rules, and unit conversions between words and bytes. The
// goal is to keep the pointer arithmetic focused, allocation-free, and
// independent from the allocator so higher-level packages can orchestrate the
// blocks in a more ergonomic form.
//
// Sizes in this package are in words unless a name says otherwise. A word is
// 4 bytes; client payloads are aligned to the 8-byte double word.
package format

const (
	// WordSize is the size of one heap word in bytes. All block sizes are
	// measured in words of this size.
	WordSize = 4

	// DWordSize is the payload alignment unit in bytes.
	DWordSize = 8

	// TagWords is the number of words used by one boundary tag. Every block
	// carries two: a header and a mirrored footer.
	TagWords = 1

	// MinBlockWords is the smallest legal block: header, a two-word free-list
	// node, and footer. Splits never produce a remainder below this.
	MinBlockWords = 4

	// ChunkWords is the default heap extension granularity, in words.
	ChunkWords = 1 << 10

	// NumClasses is the number of segregated free lists. List k holds free
	// blocks whose size in words lies in [2^k, 2^(k+1)), with the final list
	// absorbing everything larger.
	NumClasses = 20

	// MaxBlockWords is the largest representable block size. The size field
	// occupies 31 bits of the tag word.
	MaxBlockWords = 1<<31 - 1

	// FenceWords is the pair of sentinel tag words written by heap
	// initialization before the first real block exists.
	FenceWords = 2
)
