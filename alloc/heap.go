package alloc

import (
	"math"
	"math/bits"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/borsh/errors"
)

// Stats is a snapshot of allocator accounting.
type Stats struct {
	Live   int    // allocations not yet freed
	InUse  uint64 // bytes held by live allocations
	Peak   uint64 // highest InUse observed
	Allocs uint64 // successful Alloc calls
	Frees  uint64 // Free calls that matched a live allocation
}

type block struct {
	size  uint32
	align uint32
}

// Heap is an accounting allocator. It hands out opaque non-zero handles,
// tracks every live allocation and can enforce a byte limit. The storage
// itself is ordinary Go memory owned by the decoded values.
type Heap struct {
	live  map[uint32]block
	stats Stats
	limit uint64
	next  uint32
	mu    sync.Mutex
}

type HeapOption func(*Heap)

// WithLimit makes Alloc fail once live allocations would exceed n bytes.
func WithLimit(n uint64) HeapOption {
	return func(h *Heap) {
		h.limit = n
	}
}

func NewHeap(opts ...HeapOption) *Heap {
	h := &Heap{
		live: make(map[uint32]block),
		next: 1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if align == 0 || bits.OnesCount32(align) != 1 {
		return 0, errors.InvalidInput(errors.PhaseAlloc, "alignment must be a power of two")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.limit > 0 && h.stats.InUse+uint64(size) > h.limit {
		return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("allocating %d bytes exceeds limit %d (%d in use)", size, h.limit, h.stats.InUse).
			Build()
	}
	if len(h.live) == math.MaxUint32-1 {
		return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("handle space exhausted").
			Build()
	}

	ptr := h.next
	for {
		if _, used := h.live[ptr]; !used && ptr != 0 {
			break
		}
		ptr++
	}
	h.next = ptr + 1

	h.live[ptr] = block{size: size, align: align}
	h.stats.Live++
	h.stats.Allocs++
	h.stats.InUse += uint64(size)
	h.stats.Peak = max(h.stats.Peak, h.stats.InUse)
	return ptr, nil
}

// Free releases a live allocation. Unknown handles and size mismatches are
// caller errors; they are logged and otherwise ignored.
func (h *Heap) Free(ptr, size, align uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.live[ptr]
	if !ok {
		Logger().Warn("free of unknown allocation", zap.Uint32("ptr", ptr), zap.Uint32("size", size))
		return
	}
	if b.size != size || b.align != align {
		Logger().Warn("free with mismatched layout",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Uint32("allocated_size", b.size),
			zap.Uint32("align", align),
			zap.Uint32("allocated_align", b.align))
	}
	delete(h.live, ptr)
	h.stats.Live--
	h.stats.Frees++
	h.stats.InUse -= uint64(b.size)
}

func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// Live returns the number of allocations not yet freed.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
