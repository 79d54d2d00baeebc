package codec

import (
	"sync"

	"github.com/wippyai/borsh"
)

// Allocation records one successful Allocator request.
type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList records allocations in the order the decoder made them.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns to pool. Must call after Free(); list invalid after Release.
func (al *AllocationList) Release() {
	// Only pool small lists to prevent memory bloat
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator borsh.Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{
		Ptr:   ptr,
		Size:  size,
		Align: align,
	})
}

// Free releases every recorded allocation, newest first, and forgets them.
func (al *AllocationList) Free(allocator borsh.Allocator) {
	al.FreeFrom(allocator, 0)
}

// FreeFrom releases allocations recorded at or after mark, newest first.
// Allocations before mark stay recorded.
func (al *AllocationList) FreeFrom(allocator borsh.Allocator, mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark >= len(al.allocations) {
		return
	}
	if allocator != nil {
		for i := len(al.allocations) - 1; i >= mark; i-- {
			a := al.allocations[i]
			if a.Ptr != 0 {
				allocator.Free(a.Ptr, a.Size, a.Align)
			}
		}
	}
	al.allocations = al.allocations[:mark]
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}

// Bytes returns the total size of the recorded allocations.
func (al *AllocationList) Bytes() uint64 {
	var total uint64
	for _, a := range al.allocations {
		total += uint64(a.Size)
	}
	return total
}
