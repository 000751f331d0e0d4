package format

// Alignment and unit-conversion utilities. The heap format requires every
// block size to be an even number of words so that payloads stay aligned to
// the 8-byte double word.

const dwordMask = DWordSize - 1

// AlignUpBytes8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	AlignUpBytes8(1)  = 8
//	AlignUpBytes8(8)  = 8
//	AlignUpBytes8(9)  = 16
func AlignUpBytes8(n int32) int32 {
	return (n + dwordMask) & ^int32(dwordMask)
}

// AlignUpEvenWords returns n rounded up to an even word count.
func AlignUpEvenWords(n int32) int32 {
	return (n + 1) & ^int32(1)
}

// WordsForPayload converts a requested payload size in bytes into the
// adjusted block size in words: tag overhead added, rounded to the double
// word, and clamped to the minimum block size.
func WordsForPayload(nBytes int32) int32 {
	adj := AlignUpBytes8(nBytes+2*TagWords*WordSize) / WordSize
	if adj < MinBlockWords {
		adj = MinBlockWords
	}
	return adj
}

// ByteOff converts a word offset to a byte offset.
func ByteOff(wordOff int32) int {
	return int(wordOff) * WordSize
}

// WordOff converts a byte offset to a word offset. The offset must be
// word-aligned; callers validate before converting.
func WordOff(byteOff int) int32 {
	return int32(byteOff / WordSize)
}

// PayloadBytes returns the number of usable payload bytes in a block of the
// given total size: everything between the header and the footer.
func PayloadBytes(sizeWords int32) int32 {
	return (sizeWords - 2*TagWords) * WordSize
}
