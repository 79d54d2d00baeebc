package wasmmem

import (
	"io"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/borsh/errors"
)

// Writer is a sink over guest linear memory starting at a fixed offset.
type Writer struct {
	mem api.Memory
	off uint32
	n   uint32
}

// NewWriter returns a sink that writes to mem starting at off.
func NewWriter(mem api.Memory, off uint32) *Writer {
	return &Writer{mem: mem, off: off}
}

func (w *Writer) Write(p []byte) (int, error) {
	at := uint64(w.off) + uint64(w.n)
	if at+uint64(len(p)) > uint64(w.mem.Size()) || !w.mem.Write(uint32(at), p) {
		return 0, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Detail("memory write out of bounds: offset=%d, length=%d", at, len(p)).
			Build()
	}
	w.n += uint32(len(p))
	return len(p), nil
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() uint32 {
	return w.n
}

// Reader is a source over a range of guest linear memory.
type Reader struct {
	mem api.Memory
	off uint32
	end uint32
}

// NewReader returns a source over n bytes of mem starting at off. The range
// is checked against the current memory size.
func NewReader(mem api.Memory, off, n uint32) (*Reader, error) {
	end := uint64(off) + uint64(n)
	if end > uint64(mem.Size()) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Detail("memory read out of bounds: offset=%d, length=%d", off, n).
			Build()
	}
	return &Reader{mem: mem, off: off, end: uint32(end)}, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.end {
		return 0, io.EOF
	}
	n := min(uint32(len(p)), r.end-r.off)
	data, ok := r.mem.Read(r.off, n)
	if !ok {
		return 0, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Detail("memory read out of bounds: offset=%d, length=%d", r.off, n).
			Build()
	}
	copy(p, data)
	r.off += n
	return int(n), nil
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return int(r.end - r.off)
}
