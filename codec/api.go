package codec

import (
	"bytes"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/borsh"
	"github.com/wippyai/borsh/errors"
)

// Encode writes the encoding of v to w. On failure, bytes already written
// to w are not retracted.
func Encode[T any](w io.Writer, c Codec[T], v T) error {
	e := newEncoder(w)
	if err := c.Encode(e, v); err != nil {
		return err
	}
	return e.Err()
}

// SizeOf returns the exact number of bytes Encode would write for v without
// producing them. The value is assumed to be encodable; errors are ignored.
func SizeOf[T any](c Codec[T], v T) int {
	e := newEncoder(counter{})
	_ = c.Encode(e, v)
	return e.Written()
}

// Marshal returns the encoding of v in a new slice.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	w := &sliceWriter{buf: make([]byte, SizeOf(c, v))}
	if err := Encode(w, c, v); err != nil {
		return nil, err
	}
	return w.buf[:w.n], nil
}

// Decode reads one value from r. Every allocation made while decoding is
// requested from alloc and owned by the returned handle. On failure all of
// them are released before the error is returned. A nil alloc disables
// allocation accounting.
func Decode[T any](alloc borsh.Allocator, r io.Reader, c Codec[T], opts ...DecodeOption) (*Owned[T], error) {
	allocs := NewAllocationList()
	d := newDecoder(r, alloc, allocs, newDecodeConfig(opts))

	v, err := c.Decode(d)
	if err == nil {
		err = d.Err()
	}
	if err != nil {
		if n := allocs.Count(); n > 0 {
			Logger().Debug("decode failed, releasing allocations",
				zap.Int("count", n),
				zap.Uint64("bytes", allocs.Bytes()),
				zap.Error(err))
		}
		allocs.FreeAndRelease(alloc)
		return nil, err
	}
	return &Owned[T]{Value: v, allocs: allocs}, nil
}

// Unmarshal decodes one value from data, which must contain nothing else.
func Unmarshal[T any](alloc borsh.Allocator, data []byte, c Codec[T], opts ...DecodeOption) (*Owned[T], error) {
	r := bytes.NewReader(data)
	out, err := Decode(alloc, r, c, opts...)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		out.Free(alloc)
		return nil, errors.New(errors.PhaseDecode, errors.KindTrailingBytes).
			Detail("%d bytes left after value", r.Len()).
			Build()
	}
	return out, nil
}
