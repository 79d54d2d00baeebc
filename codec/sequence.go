package codec

import (
	"cmp"
	"slices"
	"strconv"
	"unicode/utf8"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/borsh/errors"
	"github.com/wippyai/borsh/internal/abi"
)

// Decoded sequences start with at most this many preallocated elements and
// grow as elements actually arrive.
const maxPrealloc = 1024

func layoutOf[T any]() (size, align uint32) {
	var zero T
	return uint32(unsafe.Sizeof(zero)), uint32(unsafe.Alignof(zero))
}

func indexSeg[I int | int64](i I) string {
	return "[" + strconv.FormatInt(int64(i), 10) + "]"
}

// allocArray requests storage for n elements of the given layout.
func (d *Decoder) allocArray(n, size, align uint32) error {
	if d.alloc == nil {
		return nil
	}
	total, ok := abi.SafeMulU32(n, size)
	if !ok {
		return errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("%d elements of %d bytes overflow u32", n, size).
			Build()
	}
	return d.Alloc(total, align)
}

func (d *Decoder) rollbackSeq(mark int, err error) {
	released := d.allocs.Count() - mark
	d.rollback(mark)
	if released > 0 {
		Logger().Debug("sequence decode rolled back",
			zap.Int("released", released),
			zap.Error(err))
	}
}

type seqCodec[T any] struct {
	elem Codec[T]
}

// zeroSizeElem reports a non-empty sequence of zero-width elements.
const zeroSizeElem = "sequence elements encode to zero bytes"

// Seq returns the codec for a variable-length sequence: a u32 length followed
// by each element. A non-empty sequence whose elements occupy no bytes on the
// wire is rejected with invalid_data.
func Seq[T any](elem Codec[T]) Codec[[]T] {
	return seqCodec[T]{elem: elem}
}

func (c seqCodec[T]) Encode(e *Encoder, v []T) error {
	if err := e.WriteLength(len(v)); err != nil {
		return err
	}
	start := e.Written()
	for i := range v {
		if err := c.elem.Encode(e, v[i]); err != nil {
			return errors.WithPath(err, indexSeg(i))
		}
		if i == 0 && e.Written() == start {
			return errors.InvalidData(errors.PhaseEncode, nil, zeroSizeElem)
		}
	}
	return nil
}

func (c seqCodec[T]) Decode(d *Decoder) ([]T, error) {
	n, err := d.ReadLength()
	if err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	mark := d.mark()
	size, align := layoutOf[T]()
	if err := d.allocArray(n, size, align); err != nil {
		return nil, err
	}

	out := make([]T, 0, min(n, maxPrealloc))
	start := d.Consumed()
	for i := range int64(n) {
		v, err := c.elem.Decode(d)
		if err != nil {
			d.rollbackSeq(mark, err)
			return nil, errors.WithPath(err, indexSeg(i))
		}
		if i == 0 && d.Consumed() == start {
			err := errors.InvalidData(errors.PhaseDecode, nil, zeroSizeElem)
			d.rollbackSeq(mark, err)
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type stringCodec struct{}

// String is the codec for UTF-8 text: a u32 byte length followed by the bytes.
var String Codec[string] = stringCodec{}

func (stringCodec) Encode(e *Encoder, v string) error {
	if !utf8.ValidString(v) {
		return errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(v))
	}
	if err := e.WriteLength(len(v)); err != nil {
		return err
	}
	return e.WriteBytes(unsafe.Slice(unsafe.StringData(v), len(v)))
}

func (stringCodec) Decode(d *Decoder) (string, error) {
	b, err := readByteSeq(d)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, b)
	}
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}

type bytesCodec struct{}

// Bytes is the codec for a byte string. It encodes exactly like Seq(U8).
var Bytes Codec[[]byte] = bytesCodec{}

func (bytesCodec) Encode(e *Encoder, v []byte) error {
	if err := e.WriteLength(len(v)); err != nil {
		return err
	}
	return e.WriteBytes(v)
}

func (bytesCodec) Decode(d *Decoder) ([]byte, error) {
	return readByteSeq(d)
}

func readByteSeq(d *Decoder) ([]byte, error) {
	n, err := d.ReadLength()
	if err != nil {
		return nil, err
	}
	mark := d.mark()
	if err := d.Alloc(n, 1); err != nil {
		return nil, err
	}
	b, err := d.ReadBytes(n)
	if err != nil {
		d.rollbackSeq(mark, err)
		return nil, err
	}
	return b, nil
}

type arrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

// Array returns the codec for a fixed-length array of n elements. No length
// is written; encoding a slice of any other length fails.
func Array[T any](n int, elem Codec[T]) Codec[[]T] {
	if n < 0 {
		panic("codec: negative array length")
	}
	return arrayCodec[T]{elem: elem, n: n}
}

func (c arrayCodec[T]) Encode(e *Encoder, v []T) error {
	if len(v) != c.n {
		return errors.InvalidData(errors.PhaseEncode, nil,
			"array needs "+strconv.Itoa(c.n)+" elements, got "+strconv.Itoa(len(v)))
	}
	for i := range v {
		if err := c.elem.Encode(e, v[i]); err != nil {
			return errors.WithPath(err, indexSeg(i))
		}
	}
	return nil
}

func (c arrayCodec[T]) Decode(d *Decoder) ([]T, error) {
	out := make([]T, c.n)
	for i := range out {
		v, err := c.elem.Decode(d)
		if err != nil {
			return nil, errors.WithPath(err, indexSeg(i))
		}
		out[i] = v
	}
	return out, nil
}

type fixedBytesCodec struct {
	n int
}

// FixedBytes returns the codec for a byte array of exactly n bytes.
func FixedBytes(n int) Codec[[]byte] {
	if n < 0 {
		panic("codec: negative array length")
	}
	return fixedBytesCodec{n: n}
}

func (c fixedBytesCodec) Encode(e *Encoder, v []byte) error {
	if len(v) != c.n {
		return errors.InvalidData(errors.PhaseEncode, nil,
			"byte array needs "+strconv.Itoa(c.n)+" bytes, got "+strconv.Itoa(len(v)))
	}
	return e.WriteBytes(v)
}

func (c fixedBytesCodec) Decode(d *Decoder) ([]byte, error) {
	return d.ReadBytes(uint32(c.n))
}

type mapCodec[K cmp.Ordered, V any] struct {
	key Codec[K]
	val Codec[V]
}

// Map returns the codec for a map with ordered keys: a u32 length followed by
// key/value pairs in ascending key order. Decode rejects keys that are not
// strictly ascending, so every map has exactly one encoding.
func Map[K cmp.Ordered, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{key: key, val: val}
}

func (c mapCodec[K, V]) Encode(e *Encoder, m map[K]V) error {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := e.WriteLength(len(keys)); err != nil {
		return err
	}
	for i, k := range keys {
		if err := c.key.Encode(e, k); err != nil {
			return errors.WithPath(err, indexSeg(i))
		}
		if err := c.val.Encode(e, m[k]); err != nil {
			return errors.WithPath(err, indexSeg(i))
		}
	}
	return nil
}

func (c mapCodec[K, V]) Decode(d *Decoder) (map[K]V, error) {
	n, err := d.ReadLength()
	if err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	mark := d.mark()
	ks, ka := layoutOf[K]()
	vs, va := layoutOf[V]()
	entry, ok := abi.SafeAddU32(abi.AlignTo(ks, va), vs)
	if !ok {
		entry = ^uint32(0)
	}
	if err := d.allocArray(n, abi.AlignTo(entry, max(ka, va)), max(ka, va)); err != nil {
		return nil, err
	}

	out := make(map[K]V, min(n, maxPrealloc))
	var prev K
	for i := range int64(n) {
		k, err := c.key.Decode(d)
		if err == nil && i > 0 && cmp.Compare(k, prev) <= 0 {
			err = errors.InvalidData(errors.PhaseDecode, nil, "map keys are not in strictly ascending order")
		}
		if err != nil {
			d.rollbackSeq(mark, err)
			return nil, errors.WithPath(err, indexSeg(i))
		}
		v, err := c.val.Decode(d)
		if err != nil {
			d.rollbackSeq(mark, err)
			return nil, errors.WithPath(err, indexSeg(i))
		}
		out[k] = v
		prev = k
	}
	return out, nil
}
