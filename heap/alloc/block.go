package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Tag arithmetic primitives. Blocks are addressed by the word offset of
// their header. Because fences bracket the live heap, the word before any
// real block's header and the word at header+size are always readable tags.

// blockSize reads the block's total size in words from its header.
func blockSize(data []byte, b int32) int32 {
	return format.ReadTag(data, b).SizeWords
}

// prevFooter reads the word immediately before b's header: the left fence or
// the previous block's footer.
func prevFooter(data []byte, b int32) format.Tag {
	return format.ReadTag(data, b-format.TagWords)
}

// nextHeader reads the word at b+size: the right fence or the next block's
// header.
func nextHeader(data []byte, b int32) format.Tag {
	return format.ReadTag(data, b+blockSize(data, b))
}

// prevBlock returns the previous block's header offset. Only meaningful when
// the previous neighbor is a real block, not the left fence.
func prevBlock(data []byte, b int32) int32 {
	return b - prevFooter(data, b).SizeWords
}

// nextBlock returns the next block's header offset. Only meaningful when the
// next neighbor is a real block, not the right fence.
func nextBlock(data []byte, b int32) int32 {
	return b + blockSize(data, b)
}

// footerOff returns the word offset of the footer for a block of the given
// size starting at b.
func footerOff(b, sizeWords int32) int32 {
	return b + sizeWords - format.TagWords
}

// markFree writes matching free header and footer tags for the block.
func markFree(data []byte, b, sizeWords int32) {
	t := format.Tag{SizeWords: sizeWords, Inuse: false}
	format.PutTag(data, b, t)
	format.PutTag(data, footerOff(b, sizeWords), t)
}

// markUsed writes matching in-use header and footer tags for the block.
func markUsed(data []byte, b, sizeWords int32) {
	t := format.Tag{SizeWords: sizeWords, Inuse: true}
	format.PutTag(data, b, t)
	format.PutTag(data, footerOff(b, sizeWords), t)
}

// nodeOf returns the word offset of the free-list node embedded in the
// block's body: the first two words after the header.
func nodeOf(b int32) int32 {
	return b + format.TagWords
}

// blockOf is the inverse of nodeOf.
func blockOf(node int32) int32 {
	return node - format.TagWords
}
