package borsh

// Allocator hands out storage for values materialized during decode and for
// buffers produced by encode helpers. A successful Alloc never returns 0;
// callers treat ptr 0 as "nothing allocated".
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Mapper is implemented by allocators whose allocations are addressable bytes,
// such as arenas and guest linear memory.
type Mapper interface {
	Bytes(ptr, size uint32) ([]byte, bool)
}
