// Package heap exposes the contiguous growable region the allocator carves
// into blocks. The region is backed by membase: an address-stable reservation
// that only grows, so block offsets and payload slices stay valid for the
// life of the heap.
package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/membase"
)

// DefaultMaxBytes is the default heap capacity.
const DefaultMaxBytes = 1 << 28

// Options controls how the region is created.
type Options struct {
	// MaxBytes caps the heap size. Zero means DefaultMaxBytes.
	MaxBytes int

	// InMemory forces the slice backend instead of the platform mapping.
	// Useful for deterministic tests and capped out-of-memory scenarios.
	InMemory bool
}

// Heap is the raw region, byte-addressed from a stable base.
type Heap struct {
	b membase.Backend
}

// New creates an empty heap.
func New(opts Options) (*Heap, error) {
	maxBytes := opts.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}

	var (
		b   membase.Backend
		err error
	)
	if opts.InMemory {
		b, err = membase.NewSlice(maxBytes)
	} else {
		b, err = membase.New(maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("heap: %w", err)
	}
	return &Heap{b: b}, nil
}

// Bytes returns the live region. Length equals Size().
func (h *Heap) Bytes() []byte { return h.b.Bytes() }

// Size returns the number of bytes currently in the region.
func (h *Heap) Size() int { return h.b.Len() }

// Cap returns the maximum size the region may reach.
func (h *Heap) Cap() int { return h.b.Cap() }

// ExtendRaw grows the region by nBytes and returns the byte offset where the
// new bytes begin. Successive calls return adjacent regions.
func (h *Heap) ExtendRaw(nBytes int) (int, error) {
	return h.b.Extend(nBytes)
}

// Low returns the byte offset of the first heap byte.
func (h *Heap) Low() int { return 0 }

// High returns the byte offset one past the last heap byte.
func (h *Heap) High() int { return h.b.Len() }

// Close releases the region. Payload slices become invalid.
func (h *Heap) Close() error { return h.b.Close() }
