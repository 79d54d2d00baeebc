package codec

import (
	"github.com/wippyai/borsh"
	"github.com/wippyai/borsh/errors"
	"github.com/wippyai/borsh/internal/abi"
)

// Buffer is an encoded value in storage obtained from an allocator.
type Buffer struct {
	data []byte
	ptr  uint32
	size uint32
}

// Bytes returns the encoded bytes. They alias allocator memory when the
// allocator maps its allocations.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Ptr returns the allocator handle backing the buffer, 0 if none.
func (b *Buffer) Ptr() uint32 {
	return b.ptr
}

func (b *Buffer) Len() int {
	return len(b.data)
}

// Free returns the buffer's storage to the allocator it came from.
func (b *Buffer) Free(alloc borsh.Allocator) {
	if b == nil {
		return
	}
	if b.ptr != 0 && alloc != nil {
		alloc.Free(b.ptr, b.size, 1)
	}
	b.ptr, b.size, b.data = 0, 0, nil
}

// EncodeToBuffer sizes v, allocates exactly that many bytes from alloc and
// encodes v into them. If alloc implements borsh.Mapper the bytes live in
// allocator memory; otherwise alloc only accounts for a Go slice.
func EncodeToBuffer[T any](alloc borsh.Allocator, c Codec[T], v T) (*Buffer, error) {
	n := SizeOf(c, v)
	if uint64(n) > abi.MaxLength {
		return nil, errors.LengthTooLarge(errors.PhaseEncode, nil, uint64(n), abi.MaxLength)
	}

	buf := &Buffer{size: uint32(n)}
	if n > 0 && alloc != nil {
		ptr, err := alloc.Alloc(uint32(n), 1)
		if err != nil {
			e := errors.AllocationFailed(errors.PhaseAlloc, uint32(n), 1)
			e.Cause = err
			return nil, e
		}
		buf.ptr = ptr
		if m, ok := alloc.(borsh.Mapper); ok {
			if data, ok := m.Bytes(ptr, uint32(n)); ok {
				buf.data = data
			}
		}
	}
	if buf.data == nil {
		buf.data = make([]byte, n)
	}

	w := &sliceWriter{buf: buf.data}
	if err := Encode(w, c, v); err != nil {
		buf.Free(alloc)
		return nil, err
	}
	buf.data = buf.data[:w.n]
	return buf, nil
}
