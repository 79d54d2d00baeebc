package codec

import (
	"fmt"

	"github.com/wippyai/borsh/errors"
)

// Integer is the set of types usable as enumeration constants.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type enumCodec[E Integer] struct {
	declared [256]bool
	name     string
}

// Enum returns the codec for a payload-free enumeration whose constants are
// declared. Each constant is written as a one-byte discriminant; a declared
// constant outside 0..255 cannot be encoded.
func Enum[E Integer](declared ...E) Codec[E] {
	c := &enumCodec[E]{name: fmt.Sprintf("%T", *new(E))}
	for _, v := range declared {
		if v >= 0 && uint64(v) <= 255 {
			c.declared[uint8(v)] = true
		}
	}
	return c
}

func (c *enumCodec[E]) Encode(e *Encoder, v E) error {
	if v < 0 || uint64(v) > 255 {
		return errors.DiscriminantTooLarge(nil, v)
	}
	if !c.declared[uint8(v)] {
		return errors.InvalidEnum(errors.PhaseEncode, nil, v, c.name)
	}
	return e.WriteU8(uint8(v))
}

func (c *enumCodec[E]) Decode(d *Decoder) (E, error) {
	b, err := d.ReadU8()
	if err != nil {
		return 0, err
	}
	if !c.declared[b] {
		return 0, errors.UnknownDiscriminant(errors.PhaseDecode, nil, uint32(b))
	}
	return E(b), nil
}

// Variant is one case of a tagged union over the sum type U.
type Variant[U any] struct {
	tag    uint32
	name   string
	match  func(U) bool
	encode func(*Encoder, U) error
	decode func(*Decoder) (U, error)
}

// Case declares a union case: values of concrete type V are written with the
// given tag and then the payload. Payload-free cases use Empty[V]().
//
// Tags are declared with 32 bits but the wire carries one byte, so only tags
// up to 255 can be encoded. Case panics if V does not implement U.
func Case[U, V any](tag uint32, payload Codec[V]) Variant[U] {
	var zero V
	if _, ok := any(zero).(U); !ok {
		panic(fmt.Sprintf("codec: case type %T does not implement %T", zero, (*U)(nil)))
	}
	return Variant[U]{
		tag:  tag,
		name: fmt.Sprintf("%T", zero),
		match: func(u U) bool {
			_, ok := any(u).(V)
			return ok
		},
		encode: func(e *Encoder, u U) error {
			return payload.Encode(e, any(u).(V))
		},
		decode: func(d *Decoder) (U, error) {
			v, err := payload.Decode(d)
			if err != nil {
				var zero U
				return zero, err
			}
			return any(v).(U), nil
		},
	}
}

type unionCodec[U any] struct {
	cases []Variant[U]
	byTag map[uint32]int
}

// Union returns the codec for a tagged union. Encode picks the first case
// whose type matches the value; decode selects the case by discriminant.
// Union panics on duplicate tags.
func Union[U any](cases ...Variant[U]) Codec[U] {
	c := &unionCodec[U]{
		cases: cases,
		byTag: make(map[uint32]int, len(cases)),
	}
	for i, v := range cases {
		if _, dup := c.byTag[v.tag]; dup {
			panic(fmt.Sprintf("codec: duplicate union tag %d", v.tag))
		}
		c.byTag[v.tag] = i
	}
	return c
}

func (c *unionCodec[U]) Encode(e *Encoder, u U) error {
	for _, v := range c.cases {
		if !v.match(u) {
			continue
		}
		if err := e.writeTag(v.tag); err != nil {
			return err
		}
		if err := v.encode(e, u); err != nil {
			return errors.WithPath(err, v.name)
		}
		return nil
	}
	return errors.New(errors.PhaseEncode, errors.KindInvalidVariant).
		GoType(fmt.Sprintf("%T", u)).
		Detail("value matches no declared case").
		Build()
}

func (c *unionCodec[U]) Decode(d *Decoder) (U, error) {
	var zero U
	tag, err := d.readTag()
	if err != nil {
		return zero, err
	}
	i, ok := c.byTag[tag]
	if !ok {
		return zero, errors.UnknownDiscriminant(errors.PhaseDecode, nil, tag)
	}
	u, err := c.cases[i].decode(d)
	if err != nil {
		return zero, errors.WithPath(err, c.cases[i].name)
	}
	return u, nil
}
