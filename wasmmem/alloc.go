package wasmmem

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/borsh/errors"
	"github.com/wippyai/borsh/internal/abi"
)

const pageSize = 65536

type frame struct {
	ptr  uint32
	prev uint32
}

// Bump allocates from guest linear memory above a base offset, growing the
// memory by whole pages when needed. Only the most recent allocation is
// reclaimed by Free; Reset reclaims everything.
//
// Slices returned by Bytes alias guest memory and are invalidated when the
// memory grows.
type Bump struct {
	mem    api.Memory
	frames []frame
	base   uint32
	off    uint32
	mu     sync.Mutex
}

// NewBump returns an allocator handing out memory at or above base. A base
// of 0 is raised to 8 so that no allocation is at address 0.
func NewBump(mem api.Memory, base uint32) *Bump {
	base = max(base, 8)
	return &Bump{mem: mem, base: base, off: base}
}

func (b *Bump) Alloc(size, align uint32) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := abi.AlignTo(b.off, align)
	end, ok := abi.SafeAddU32(start, size)
	if !ok || start < b.off {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}
	if cur := b.mem.Size(); end > cur {
		pages := (end - cur + pageSize - 1) / pageSize
		if _, ok := b.mem.Grow(pages); !ok {
			e := errors.AllocationFailed(errors.PhaseAlloc, size, align)
			e.Detail += ": memory cannot grow"
			return 0, e
		}
		Logger().Debug("grew guest memory", zap.Uint32("pages", pages), zap.Uint32("size", b.mem.Size()))
	}

	b.frames = append(b.frames, frame{ptr: start, prev: b.off})
	b.off = end
	return start, nil
}

func (b *Bump) Free(ptr, size, align uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.frames); n > 0 && b.frames[n-1].ptr == ptr {
		b.off = b.frames[n-1].prev
		b.frames = b.frames[:n-1]
	}
}

func (b *Bump) Bytes(ptr, size uint32) ([]byte, bool) {
	return b.mem.Read(ptr, size)
}

// Reset releases every allocation at once.
func (b *Bump) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.off = b.base
	b.frames = b.frames[:0]
}

// Used returns the bytes allocated above base, alignment padding included.
func (b *Bump) Used() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.off - b.base
}

// Realloc allocates through a guest's exported
// cabi_realloc(old_ptr, old_size, align, new_size) function.
type Realloc struct {
	ctx context.Context
	fn  api.Function
	mem api.Memory
	mu  sync.Mutex
}

// WrapRealloc returns an allocator over fn, or nil if fn is nil.
func WrapRealloc(ctx context.Context, mem api.Memory, fn api.Function) *Realloc {
	if fn == nil {
		return nil
	}
	return &Realloc{ctx: ctx, fn: fn, mem: mem}
}

func (a *Realloc) Alloc(size, align uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	results, err := a.fn.Call(a.ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		e := errors.AllocationFailed(errors.PhaseAlloc, size, align)
		e.Cause = err
		return 0, e
	}
	if len(results) == 0 || uint32(results[0]) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}
	return uint32(results[0]), nil
}

func (a *Realloc) Free(ptr, size, align uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.fn.Call(a.ctx, uint64(ptr), uint64(size), uint64(align), 0); err != nil {
		Logger().Warn("guest free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

func (a *Realloc) Bytes(ptr, size uint32) ([]byte, bool) {
	if a.mem == nil {
		return nil, false
	}
	return a.mem.Read(ptr, size)
}
