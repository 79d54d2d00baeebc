// Package alloc provides allocators for the codec.
//
// Heap hands out opaque handles and keeps exact accounting of live
// allocations, optionally under a byte limit; it is what tests use to prove
// every decoded allocation is released. Arena is a bump allocator over a
// fixed slab whose allocations are addressable, so encode helpers can write
// straight into it.
package alloc
