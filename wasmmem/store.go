package wasmmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/borsh"
	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/errors"
)

// Allocator hands out addressable guest memory.
type Allocator interface {
	borsh.Allocator
	borsh.Mapper
}

// Store encodes v into memory obtained from a and returns its address and
// length. The caller releases it with a.Free(ptr, size, 1).
func Store[T any](a Allocator, c codec.Codec[T], v T) (ptr, size uint32, err error) {
	buf, err := codec.EncodeToBuffer(a, c, v)
	if err != nil {
		return 0, 0, err
	}
	if buf.Len() > 0 {
		if _, ok := a.Bytes(buf.Ptr(), uint32(buf.Len())); !ok {
			buf.Free(a)
			return 0, 0, errors.Unsupported(errors.PhaseRuntime, "allocator did not map its allocation")
		}
	}
	return buf.Ptr(), uint32(buf.Len()), nil
}

// Load decodes one value from size bytes of guest memory at ptr. The bytes
// are copied out, so the guest may reuse the range once Load returns.
func Load[T any](mem api.Memory, ptr, size uint32, a borsh.Allocator, c codec.Codec[T], opts ...codec.DecodeOption) (*codec.Owned[T], error) {
	r, err := NewReader(mem, ptr, size)
	if err != nil {
		return nil, err
	}
	out, err := codec.Decode(a, r, c, opts...)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		out.Free(a)
		return nil, errors.New(errors.PhaseDecode, errors.KindTrailingBytes).
			Detail("%d bytes left after value", r.Len()).
			Build()
	}
	return out, nil
}
