package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/trace"
	"github.com/joshuapare/heapkit/pkg/heap"
)

func TestReplayTrace(t *testing.T) {
	in := `
# mixed workload
a 0 512
a 1 128
a 2 2048
f 1
r 0 4096
f 2
r 0 64
f 0
`
	ops, err := trace.Parse(strings.NewReader(in))
	require.NoError(t, err)

	h, err := heap.New(heap.Options{
		MaxHeapBytes: 1 << 22,
		InMemory:     true,
		CheckEveryOp: true,
	})
	require.NoError(t, err)
	defer h.Close()

	res, err := replay(h, ops)
	require.NoError(t, err)

	assert.Equal(t, len(ops), res.Ops)
	// Peak is reached right after the realloc to 4096: 512->4096 alongside
	// the live 2048 allocation.
	assert.Equal(t, int64(4096+2048), res.PeakPayload)
	assert.Positive(t, res.HeapBytes)
	require.NoError(t, h.Check())
}

func TestReplayFreeUnknownIDIsNoOp(t *testing.T) {
	ops, err := trace.Parse(strings.NewReader("f 7\n"))
	require.NoError(t, err)

	h, err := heap.New(heap.Options{MaxHeapBytes: 1 << 20, InMemory: true})
	require.NoError(t, err)
	defer h.Close()

	// id 7 was never allocated; its ref is the null ref, which frees as a
	// no-op, so the replay completes with nothing live.
	res, err := replay(h, ops)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ops)
	assert.Zero(t, res.PeakPayload)
}
