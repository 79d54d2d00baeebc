package codec

import (
	"math"
	"math/big"
	"unsafe"

	"github.com/wippyai/borsh/errors"
	"github.com/wippyai/borsh/internal/abi"
)

var (
	Bool Codec[bool] = boolCodec{}

	U8  = Fixed[uint8]()
	U16 = Fixed[uint16]()
	U32 = Fixed[uint32]()
	U64 = Fixed[uint64]()
	I8  = Fixed[int8]()
	I16 = Fixed[int16]()
	I32 = Fixed[int32]()
	I64 = Fixed[int64]()

	U128 Codec[Uint128] = u128Codec{}
	I128 Codec[Int128]  = i128Codec{}

	F32 Codec[float32] = f32Codec{}
	F64 Codec[float64] = f64Codec{}
)

type boolCodec struct{}

func (boolCodec) Encode(e *Encoder, v bool) error {
	if v {
		return e.WriteU8(1)
	}
	return e.WriteU8(0)
}

func (boolCodec) Decode(d *Decoder) (bool, error) {
	b, err := d.ReadU8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.New(errors.PhaseDecode, errors.KindInvalidBoolean).
		Detail("boolean byte must be 0 or 1, got %d", b).
		Value(b).
		Build()
}

// Fixed returns the integer codec for a named integer type, encoded at the
// width of its underlying type. Platform-sized int and uint are excluded.
func Fixed[T Sized]() Codec[T] {
	var zero T
	return fixedN[T]{width: int(unsafe.Sizeof(zero))}
}

// Sized is the set of integer types with a fixed wire width.
type Sized interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64
}

type fixedN[T Sized] struct {
	width int
}

func (c fixedN[T]) Encode(e *Encoder, v T) error {
	switch c.width {
	case 1:
		return e.WriteU8(uint8(v))
	case 2:
		return e.WriteU16(uint16(v))
	case 4:
		return e.WriteU32(uint32(v))
	}
	return e.WriteU64(uint64(v))
}

func (c fixedN[T]) Decode(d *Decoder) (T, error) {
	switch c.width {
	case 1:
		v, err := d.ReadU8()
		return T(v), err
	case 2:
		v, err := d.ReadU16()
		return T(v), err
	case 4:
		v, err := d.ReadU32()
		return T(v), err
	}
	v, err := d.ReadU64()
	return T(v), err
}

type f32Codec struct{}

func (f32Codec) Encode(e *Encoder, v float32) error {
	bits := math.Float32bits(v)
	if abi.IsNaN32(bits) {
		return errors.NaNNotAllowed(errors.PhaseEncode, nil, uint64(bits))
	}
	return e.WriteU32(bits)
}

func (f32Codec) Decode(d *Decoder) (float32, error) {
	bits, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	if abi.IsNaN32(bits) {
		return 0, errors.NaNNotAllowed(errors.PhaseDecode, nil, uint64(bits))
	}
	return math.Float32frombits(bits), nil
}

type f64Codec struct{}

func (f64Codec) Encode(e *Encoder, v float64) error {
	bits := math.Float64bits(v)
	if abi.IsNaN64(bits) {
		return errors.NaNNotAllowed(errors.PhaseEncode, nil, bits)
	}
	return e.WriteU64(bits)
}

func (f64Codec) Decode(d *Decoder) (float64, error) {
	bits, err := d.ReadU64()
	if err != nil {
		return 0, err
	}
	if abi.IsNaN64(bits) {
		return 0, errors.NaNNotAllowed(errors.PhaseDecode, nil, bits)
	}
	return math.Float64frombits(bits), nil
}

// Uint128 is an unsigned 128-bit integer, encoded as 16 little-endian bytes.
type Uint128 struct {
	Lo, Hi uint64
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Lo uint64
	Hi int64
}

var (
	two64     = new(big.Int).Lsh(big.NewInt(1), 64)
	maxU128   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	maxI128   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	mask64Big = new(big.Int).SetUint64(math.MaxUint64)
)

func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	return u.Big().String()
}

// Uint128FromBig converts b, reporting false when it is negative or wider
// than 128 bits.
func Uint128FromBig(b *big.Int) (Uint128, bool) {
	if b.Sign() < 0 || b.Cmp(maxU128) > 0 {
		return Uint128{}, false
	}
	lo := new(big.Int).And(b, mask64Big).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return Uint128{Lo: lo, Hi: hi}, true
}

func (i Int128) Big() *big.Int {
	b := Uint128{Lo: i.Lo, Hi: uint64(i.Hi)}.Big()
	if i.Hi < 0 {
		b.Sub(b, new(big.Int).Lsh(two64, 64))
	}
	return b
}

func (i Int128) String() string {
	return i.Big().String()
}

// Int128FromBig converts b, reporting false when it does not fit in 128 bits.
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.Cmp(minI128) < 0 || b.Cmp(maxI128) > 0 {
		return Int128{}, false
	}
	v := new(big.Int).Set(b)
	if v.Sign() < 0 {
		v.Add(v, new(big.Int).Lsh(two64, 64))
	}
	u, _ := Uint128FromBig(v)
	return Int128{Lo: u.Lo, Hi: int64(u.Hi)}, true
}

type u128Codec struct{}

func (u128Codec) Encode(e *Encoder, v Uint128) error {
	if err := e.WriteU64(v.Lo); err != nil {
		return err
	}
	return e.WriteU64(v.Hi)
}

func (u128Codec) Decode(d *Decoder) (Uint128, error) {
	lo, err := d.ReadU64()
	if err != nil {
		return Uint128{}, err
	}
	hi, err := d.ReadU64()
	if err != nil {
		return Uint128{}, err
	}
	return Uint128{Lo: lo, Hi: hi}, nil
}

type i128Codec struct{}

func (i128Codec) Encode(e *Encoder, v Int128) error {
	return u128Codec{}.Encode(e, Uint128{Lo: v.Lo, Hi: uint64(v.Hi)})
}

func (i128Codec) Decode(d *Decoder) (Int128, error) {
	u, err := u128Codec{}.Decode(d)
	return Int128{Lo: u.Lo, Hi: int64(u.Hi)}, err
}
