package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the heap could not grow to satisfy a request.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadRef indicates an invalid or out-of-bounds block reference.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrNotUsed indicates an attempt to free or resize a block that is not
	// marked in use.
	ErrNotUsed = errors.New("alloc: block not in use")

	// ErrBadSize indicates a negative or unrepresentable request size.
	ErrBadSize = errors.New("alloc: bad request size")

	// ErrCorrupt indicates the consistency checker found the heap and the
	// free lists out of sync.
	ErrCorrupt = errors.New("alloc: heap corrupt")
)
