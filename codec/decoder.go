package codec

import (
	"encoding/binary"
	"io"
	"slices"

	"github.com/wippyai/borsh"
	"github.com/wippyai/borsh/errors"
)

// Reads larger than this are done in steps so a bogus length prefix cannot
// force a huge buffer before the source runs dry.
const readChunk = 64 << 10

// Decoder reads Borsh bytes from a source and records every allocation it
// requests. It is per-call state and must not be shared between goroutines.
//
// Like Encoder, the first error recorded through Get or SetError is sticky.
type Decoder struct {
	r       io.Reader
	alloc   borsh.Allocator
	allocs  *AllocationList
	err     error
	cfg     decodeConfig
	depth   int
	n       int
	scratch [16]byte
}

func newDecoder(r io.Reader, alloc borsh.Allocator, allocs *AllocationList, cfg decodeConfig) *Decoder {
	return &Decoder{
		r:      r,
		alloc:  alloc,
		allocs: allocs,
		cfg:    cfg,
	}
}

// Consumed returns the number of bytes read from the source so far.
func (d *Decoder) Consumed() int {
	return d.n
}

// Err returns the first error recorded on the decoder.
func (d *Decoder) Err() error {
	return d.err
}

// SetError records err unless an earlier error is already recorded.
func (d *Decoder) SetError(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) readFull(buf []byte) error {
	n, err := io.ReadFull(d.r, buf)
	d.n += n
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.UnexpectedEOF(len(buf), n)
	}
	return errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read from source")
}

// ReadBytes reads exactly n bytes into a new slice.
func (d *Decoder) ReadBytes(n uint32) ([]byte, error) {
	if lr, ok := d.r.(interface{ Len() int }); ok && uint64(n) > uint64(lr.Len()) {
		return nil, errors.UnexpectedEOF(int(n), lr.Len())
	}
	if n <= readChunk {
		buf := make([]byte, n)
		if err := d.readFull(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	buf := make([]byte, 0, readChunk)
	for remaining := n; remaining > 0; {
		step := min(remaining, readChunk)
		start := len(buf)
		buf = slices.Grow(buf, int(step))[:start+int(step)]
		if err := d.readFull(buf[start:]); err != nil {
			return nil, err
		}
		remaining -= step
	}
	return buf, nil
}

func (d *Decoder) ReadU8() (uint8, error) {
	if err := d.readFull(d.scratch[:1]); err != nil {
		return 0, err
	}
	return d.scratch[0], nil
}

func (d *Decoder) ReadU16() (uint16, error) {
	if err := d.readFull(d.scratch[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.scratch[:2]), nil
}

func (d *Decoder) ReadU32() (uint32, error) {
	if err := d.readFull(d.scratch[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.scratch[:4]), nil
}

func (d *Decoder) ReadU64() (uint64, error) {
	if err := d.readFull(d.scratch[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d.scratch[:8]), nil
}

// ReadLength reads a u32 length prefix and applies the configured maximum.
func (d *Decoder) ReadLength() (uint32, error) {
	n, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	if d.cfg.maxLength > 0 && n > d.cfg.maxLength {
		return 0, errors.LengthTooLarge(errors.PhaseDecode, nil, uint64(n), uint64(d.cfg.maxLength))
	}
	return n, nil
}

// readTag reads a one-byte union or enum discriminant.
func (d *Decoder) readTag() (uint32, error) {
	b, err := d.ReadU8()
	return uint32(b), err
}

// Alloc requests storage from the allocator and records it on the value
// being decoded. Zero-size requests are not forwarded.
func (d *Decoder) Alloc(size, align uint32) error {
	if size == 0 || d.alloc == nil {
		return nil
	}
	ptr, err := d.alloc.Alloc(size, align)
	if err != nil {
		e := errors.AllocationFailed(errors.PhaseAlloc, size, align)
		e.Cause = err
		return e
	}
	d.allocs.Add(ptr, size, align)
	return nil
}

// mark returns a rollback point for the allocation list.
func (d *Decoder) mark() int {
	return d.allocs.Count()
}

// rollback releases every allocation made since mark.
func (d *Decoder) rollback(mark int) {
	d.allocs.FreeFrom(d.alloc, mark)
}

// enter tracks nesting of sequences and owned references.
func (d *Decoder) enter() error {
	d.depth++
	if d.cfg.maxDepth > 0 && d.depth > d.cfg.maxDepth {
		d.depth--
		return errors.New(errors.PhaseDecode, errors.KindOverflow).
			Detail("nesting depth exceeds maximum %d", d.cfg.maxDepth).
			Build()
	}
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

// Get decodes a value with c unless an earlier error is recorded on d.
// A failure is recorded on d and the zero value is returned.
func Get[T any](d *Decoder, c Codec[T]) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := c.Decode(d)
	if err != nil {
		d.err = err
		return zero
	}
	return v
}

// GetField is Get with the field name added to the error path on failure.
func GetField[T any](d *Decoder, name string, c Codec[T]) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := c.Decode(d)
	if err != nil {
		d.err = errors.WithPath(err, name)
		return zero
	}
	return v
}
