package codec

import "github.com/wippyai/borsh"

// Owned is a decoded value together with every allocation the decoder made
// for it. Releasing it through Free is the only way to return that storage
// to the allocator, and must happen once.
type Owned[T any] struct {
	Value  T
	allocs *AllocationList
}

// Allocations returns how many allocations the value holds.
func (o *Owned[T]) Allocations() int {
	if o == nil || o.allocs == nil {
		return 0
	}
	return o.allocs.Count()
}

// AllocatedBytes returns the total size of the allocations the value holds.
func (o *Owned[T]) AllocatedBytes() uint64 {
	if o == nil || o.allocs == nil {
		return 0
	}
	return o.allocs.Bytes()
}

// Free releases the value's allocations, newest first, and clears Value.
// Calling Free again on the same handle does nothing.
func (o *Owned[T]) Free(alloc borsh.Allocator) {
	if o == nil || o.allocs == nil {
		return
	}
	o.allocs.FreeAndRelease(alloc)
	o.allocs = nil
	var zero T
	o.Value = zero
}

// Free releases a decoded value. It must be given the allocator used to
// decode it.
func Free[T any](alloc borsh.Allocator, o *Owned[T]) {
	o.Free(alloc)
}
