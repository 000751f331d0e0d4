package heap

import (
	"io"

	"github.com/sirupsen/logrus"

	region "github.com/joshuapare/heapkit/heap"
)

// Options controls heap construction.
type Options struct {
	// MaxHeapBytes caps the heap size. Zero means the region default.
	MaxHeapBytes int

	// InMemory forces the slice backend instead of the platform mapping.
	// Deterministic and cap-exact; used by the tests, including the trace
	// replay tests.
	InMemory bool

	// CheckEveryOp runs the consistency checker after every public call.
	// Debug aid; adds a full heap walk per operation.
	CheckEveryOp bool

	// Logger receives operation-level debug logs. Nil discards them.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the standard production configuration: platform
// backend, default cap, no per-op checking, logs discarded.
func DefaultOptions() Options {
	return Options{
		MaxHeapBytes: region.DefaultMaxBytes,
	}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
