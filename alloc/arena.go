package alloc

import (
	"sync"

	"github.com/wippyai/borsh/errors"
	"github.com/wippyai/borsh/internal/abi"
)

// The first bytes of the slab are never handed out so no allocation is at 0.
const arenaBase = 8

type frame struct {
	ptr  uint32
	prev uint32
}

// Arena is a bump allocator over a fixed slab. Allocations are addressable
// through Bytes. Free reclaims space only for the most recent allocation,
// which suits the newest-first order in which decoded values are released;
// Reset reclaims everything.
type Arena struct {
	buf    []byte
	frames []frame
	off    uint32
	mu     sync.Mutex
}

// NewArena returns an arena that can hold capacity bytes of allocations,
// alignment padding included.
func NewArena(capacity uint32) *Arena {
	return &Arena{
		buf: make([]byte, uint64(capacity)+arenaBase),
		off: arenaBase,
	}
}

func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := abi.AlignTo(a.off, align)
	end, ok := abi.SafeAddU32(start, size)
	if !ok || start < a.off || uint64(end) > uint64(len(a.buf)) {
		return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("arena exhausted: need %d bytes (align %d), %d free", size, align, a.free()).
			Build()
	}
	a.frames = append(a.frames, frame{ptr: start, prev: a.off})
	a.off = end
	return start, nil
}

func (a *Arena) Free(ptr, size, align uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.frames); n > 0 && a.frames[n-1].ptr == ptr {
		a.off = a.frames[n-1].prev
		a.frames = a.frames[:n-1]
	}
}

// Bytes maps an allocation to its storage in the slab.
func (a *Arena) Bytes(ptr, size uint32) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	end, ok := abi.SafeAddU32(ptr, size)
	if !ok || ptr < arenaBase || end > a.off {
		return nil, false
	}
	return a.buf[ptr:end:end], true
}

// Reset releases every allocation at once.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.off = arenaBase
	a.frames = a.frames[:0]
}

// Used returns the bytes currently taken, alignment padding included.
func (a *Arena) Used() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.off - arenaBase
}

// Cap returns the arena's capacity.
func (a *Arena) Cap() uint32 {
	return uint32(len(a.buf) - arenaBase)
}

func (a *Arena) free() uint32 {
	return uint32(len(a.buf)) - a.off
}
