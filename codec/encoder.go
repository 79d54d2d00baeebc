package codec

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/wippyai/borsh/errors"
	"github.com/wippyai/borsh/internal/abi"
)

// Encoder writes Borsh bytes to a sink. It is per-call state and must not be
// shared between goroutines.
//
// The first error recorded through Put or SetError is sticky: later Put
// calls become no-ops, so aggregates can encode their members in sequence
// and check Err once.
type Encoder struct {
	w       io.Writer
	err     error
	n       int
	scratch [16]byte
}

func newEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Written returns the number of bytes accepted by the sink so far.
func (e *Encoder) Written() int {
	return e.n
}

// Err returns the first error recorded on the encoder.
func (e *Encoder) Err() error {
	return e.err
}

// SetError records err unless an earlier error is already recorded.
func (e *Encoder) SetError(err error) {
	if e.err == nil {
		e.err = err
	}
}

// WriteBytes writes p verbatim.
func (e *Encoder) WriteBytes(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := e.w.Write(p)
	e.n += n
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "write to sink")
	}
	if n != len(p) {
		return errors.Wrap(errors.PhaseEncode, errors.KindIO, io.ErrShortWrite, "write to sink")
	}
	return nil
}

func (e *Encoder) WriteU8(v uint8) error {
	e.scratch[0] = v
	return e.WriteBytes(e.scratch[:1])
}

func (e *Encoder) WriteU16(v uint16) error {
	binary.LittleEndian.PutUint16(e.scratch[:2], v)
	return e.WriteBytes(e.scratch[:2])
}

func (e *Encoder) WriteU32(v uint32) error {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	return e.WriteBytes(e.scratch[:4])
}

func (e *Encoder) WriteU64(v uint64) error {
	binary.LittleEndian.PutUint64(e.scratch[:8], v)
	return e.WriteBytes(e.scratch[:8])
}

// WriteLength writes a u32 length prefix, rejecting lengths the field cannot hold.
func (e *Encoder) WriteLength(n int) error {
	if uint64(n) > abi.MaxLength {
		return errors.LengthTooLarge(errors.PhaseEncode, nil, uint64(n), abi.MaxLength)
	}
	return e.WriteU32(uint32(n))
}

// writeTag writes a union or enum discriminant. The wire field is always one
// byte regardless of the declared tag width.
func (e *Encoder) writeTag(tag uint32) error {
	if tag > math.MaxUint8 {
		return errors.DiscriminantTooLarge(nil, tag)
	}
	return e.WriteU8(uint8(tag))
}

// Put encodes v with c unless an earlier error is recorded on e.
// A failure is recorded on e and surfaces through Err.
func Put[T any](e *Encoder, c Codec[T], v T) {
	if e.err != nil {
		return
	}
	if err := c.Encode(e, v); err != nil {
		e.err = err
	}
}

// PutField is Put with the field name added to the error path on failure.
func PutField[T any](e *Encoder, name string, c Codec[T], v T) {
	if e.err != nil {
		return
	}
	if err := c.Encode(e, v); err != nil {
		e.err = errors.WithPath(err, name)
	}
}

// counter is a sink that only counts bytes.
type counter struct{}

func (counter) Write(p []byte) (int, error) {
	return len(p), nil
}

// sliceWriter fills a preallocated buffer and refuses to grow it.
type sliceWriter struct {
	buf []byte
	n   int
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		n := copy(w.buf[w.n:], p)
		w.n += n
		return n, io.ErrShortWrite
	}
	copy(w.buf[w.n:], p)
	w.n += len(p)
	return len(p), nil
}
