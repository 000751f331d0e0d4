// Package heap is the public facade over the allocator: one type that owns
// the region and the allocator together, with options for capping, debug
// checking, and logging.
//
// # Basic usage
//
//	h, err := heap.New(heap.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	ref, buf, err := h.Allocate(256)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	copy(buf, data)
//
//	ref, buf, err = h.Reallocate(ref, 4096)
//	err = h.Free(ref)
//
// # Debug checking
//
// With Options.CheckEveryOp set, the consistency checker runs after every
// public call and surfaces corruption as an error at the call site. This is
// meant for tests and debugging; it walks the whole heap each time.
package heap
