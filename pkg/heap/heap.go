package heap

import (
	"github.com/sirupsen/logrus"

	region "github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// Ref is a block reference; see the alloc package.
type Ref = alloc.Ref

// Stats re-exports the allocator counters.
type Stats = alloc.Stats

// Heap owns a region and the allocator over it.
type Heap struct {
	r     *region.Heap
	a     *alloc.Allocator
	check bool
	log   logrus.FieldLogger
}

// New creates and initializes a heap.
func New(opts Options) (*Heap, error) {
	r, err := region.New(region.Options{
		MaxBytes: opts.MaxHeapBytes,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, err
	}

	a := alloc.New(r)
	if err := a.Init(); err != nil {
		_ = r.Close()
		return nil, err
	}

	return &Heap{
		r:     r,
		a:     a,
		check: opts.CheckEveryOp,
		log:   opts.logger(),
	}, nil
}

// Allocate returns a reference to a block with at least n payload bytes.
func (h *Heap) Allocate(n int32) (Ref, []byte, error) {
	ref, buf, err := h.a.Alloc(n)
	if err != nil {
		h.log.WithError(err).WithField("size", n).Debug("allocate failed")
		return 0, nil, err
	}
	h.log.WithFields(logrus.Fields{"size": n, "ref": ref}).Trace("allocate")
	return ref, buf, h.postOp()
}

// Free releases the block at ref. The null reference is a no-op.
func (h *Heap) Free(ref Ref) error {
	if err := h.a.Free(ref); err != nil {
		h.log.WithError(err).WithField("ref", ref).Debug("free failed")
		return err
	}
	h.log.WithField("ref", ref).Trace("free")
	return h.postOp()
}

// Reallocate resizes the block at ref, preserving payload bytes up to the
// smaller of the old and new sizes.
func (h *Heap) Reallocate(ref Ref, n int32) (Ref, []byte, error) {
	newRef, buf, err := h.a.Realloc(ref, n)
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{"ref": ref, "size": n}).
			Debug("reallocate failed")
		return 0, nil, err
	}
	h.log.WithFields(logrus.Fields{"ref": ref, "newRef": newRef, "size": n}).
		Trace("reallocate")
	return newRef, buf, h.postOp()
}

// Payload returns the payload view for a live reference.
func (h *Heap) Payload(ref Ref) ([]byte, error) {
	return h.a.Payload(ref)
}

// Check runs the heap consistency checker.
func (h *Heap) Check() error {
	return h.a.Check()
}

// Stats returns the allocator counters.
func (h *Heap) Stats() Stats {
	return h.a.Stats()
}

// Size returns the current heap size in bytes.
func (h *Heap) Size() int {
	return h.r.Size()
}

// Close releases the region. Outstanding references become invalid.
func (h *Heap) Close() error {
	return h.r.Close()
}

func (h *Heap) postOp() error {
	if !h.check {
		return nil
	}
	if err := h.a.Check(); err != nil {
		h.log.WithError(err).Error("heap consistency check failed")
		return err
	}
	return nil
}
