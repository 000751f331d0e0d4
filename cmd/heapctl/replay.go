package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
	"github.com/joshuapare/heapkit/pkg/heap"
)

var (
	replayCheck   bool
	replayMaxHeap int
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false,
		"Run the consistency checker after every operation")
	cmd.Flags().IntVar(&replayMaxHeap, "max-heap", 0,
		"Cap the heap size in bytes (0 = default)")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace against a fresh heap",
		Long: `The replay command parses a trace file (one operation per line:
"a <id> <bytes>", "r <id> <bytes>", "f <id>") and drives it through the
allocator, then reports throughput, peak payload, and heap utilization.

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --check --max-heap 67108864`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args[0])
		},
	}
}

type replayResult struct {
	Ops         int
	Elapsed     time.Duration
	PeakPayload int64
	HeapBytes   int
	Stats       heap.Stats
}

func runReplay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ops, err := trace.Parse(f)
	if err != nil {
		return err
	}
	log.Debugf("parsed %d operations from %s", len(ops), path)

	h, err := heap.New(heap.Options{
		MaxHeapBytes: replayMaxHeap,
		CheckEveryOp: replayCheck,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	res, err := replay(h, ops)
	if err != nil {
		return err
	}
	report(res)
	return nil
}

// replay runs the parsed operations, tracking surviving allocations by
// trace id.
func replay(h *heap.Heap, ops []trace.Op) (replayResult, error) {
	refs := make(map[int]heap.Ref)
	sizes := make(map[int]int32)

	var payload, peak int64
	start := time.Now()

	for i, op := range ops {
		switch op.Kind {
		case trace.OpAlloc:
			ref, _, err := h.Allocate(op.Size)
			if err != nil {
				return replayResult{}, fmt.Errorf("op %d: alloc %d: %w", i, op.Size, err)
			}
			refs[op.ID] = ref
			sizes[op.ID] = op.Size
			payload += int64(op.Size)

		case trace.OpRealloc:
			ref, _, err := h.Reallocate(refs[op.ID], op.Size)
			if err != nil {
				return replayResult{}, fmt.Errorf("op %d: realloc %d: %w", i, op.Size, err)
			}
			payload += int64(op.Size) - int64(sizes[op.ID])
			refs[op.ID] = ref
			sizes[op.ID] = op.Size

		case trace.OpFree:
			if err := h.Free(refs[op.ID]); err != nil {
				return replayResult{}, fmt.Errorf("op %d: free id %d: %w", i, op.ID, err)
			}
			payload -= int64(sizes[op.ID])
			delete(refs, op.ID)
			delete(sizes, op.ID)
		}
		if payload > peak {
			peak = payload
		}
	}

	return replayResult{
		Ops:         len(ops),
		Elapsed:     time.Since(start),
		PeakPayload: peak,
		HeapBytes:   h.Size(),
		Stats:       h.Stats(),
	}, nil
}

func report(res replayResult) {
	opsPerSec := float64(res.Ops) / res.Elapsed.Seconds()
	util := float64(res.PeakPayload) / float64(res.HeapBytes) * 100

	fmt.Printf("operations:    %d in %s (%.0f ops/s)\n", res.Ops, res.Elapsed, opsPerSec)
	fmt.Printf("peak payload:  %d bytes\n", res.PeakPayload)
	fmt.Printf("heap size:     %d bytes\n", res.HeapBytes)
	fmt.Printf("utilization:   %.1f%%\n", util)
	fmt.Printf("grows:         %d (%d bytes)\n", res.Stats.GrowCalls, res.Stats.GrowBytes)
	fmt.Printf("splits:        %d\n", res.Stats.SplitCount)
	fmt.Printf("coalesces:     %d forward, %d backward\n",
		res.Stats.CoalesceForward, res.Stats.CoalesceBackward)
	fmt.Printf("realloc moves: %d of %d\n", res.Stats.ReallocMoved, res.Stats.ReallocCalls)
}
