package codec

import (
	"fmt"

	"github.com/wippyai/borsh/errors"
)

// Option holds a value that may be absent.
type Option[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

type optionalCodec[T any] struct {
	inner Codec[T]
}

// Optional returns the codec for a nullable value: a presence byte (0 or 1)
// followed by the payload when present.
func Optional[T any](inner Codec[T]) Codec[Option[T]] {
	return optionalCodec[T]{inner: inner}
}

func (c optionalCodec[T]) Encode(e *Encoder, v Option[T]) error {
	if !v.Valid {
		return e.WriteU8(0)
	}
	if err := e.WriteU8(1); err != nil {
		return err
	}
	return c.inner.Encode(e, v.Value)
}

func (c optionalCodec[T]) Decode(d *Decoder) (Option[T], error) {
	tag, err := d.ReadU8()
	if err != nil {
		return Option[T]{}, err
	}
	switch tag {
	case 0:
		return Option[T]{}, nil
	case 1:
		v, err := c.inner.Decode(d)
		if err != nil {
			return Option[T]{}, err
		}
		return Some(v), nil
	}
	return Option[T]{}, invalidOptionalTag(tag)
}

func invalidOptionalTag(tag uint8) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidOptionalTag).
		Detail("optional tag must be 0 or 1, got %d", tag).
		Value(tag).
		Build()
}

// Tags of the optional wrapper union.
const (
	TagNone uint32 = 0
	TagSome uint32 = 1
)

type optionUnionCodec[T any] struct {
	inner Codec[T]
}

// OptionUnion treats an optional value as a two-case tagged union with
// 32-bit case tags (TagNone, TagSome). Like every union it writes its
// discriminant as one byte, so the wire form is identical to Optional; an
// unknown tag is reported as an unknown discriminant instead of an invalid
// optional tag.
func OptionUnion[T any](inner Codec[T]) Codec[Option[T]] {
	return optionUnionCodec[T]{inner: inner}
}

func (c optionUnionCodec[T]) Encode(e *Encoder, v Option[T]) error {
	if !v.Valid {
		return e.writeTag(TagNone)
	}
	if err := e.writeTag(TagSome); err != nil {
		return err
	}
	return c.inner.Encode(e, v.Value)
}

func (c optionUnionCodec[T]) Decode(d *Decoder) (Option[T], error) {
	tag, err := d.readTag()
	if err != nil {
		return Option[T]{}, err
	}
	switch tag {
	case TagNone:
		return Option[T]{}, nil
	case TagSome:
		v, err := c.inner.Decode(d)
		if err != nil {
			return Option[T]{}, err
		}
		return Some(v), nil
	}
	return Option[T]{}, errors.UnknownDiscriminant(errors.PhaseDecode, nil, tag)
}

type boxCodec[T any] struct {
	inner Codec[T]
}

// Box returns the codec for an owned reference. The pointer is transparent
// on the wire; decode allocates storage for one T.
func Box[T any](inner Codec[T]) Codec[*T] {
	return boxCodec[T]{inner: inner}
}

func (c boxCodec[T]) Encode(e *Encoder, v *T) error {
	if v == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, fmt.Sprintf("%T", v))
	}
	return c.inner.Encode(e, *v)
}

func (c boxCodec[T]) Decode(d *Decoder) (*T, error) {
	return decodeOwned(d, c.inner)
}

func decodeOwned[T any](d *Decoder, inner Codec[T]) (*T, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	size, align := layoutOf[T]()
	if err := d.Alloc(size, align); err != nil {
		return nil, err
	}
	v, err := inner.Decode(d)
	if err != nil {
		return nil, err
	}
	p := new(T)
	*p = v
	return p, nil
}

type nullableCodec[T any] struct {
	inner Codec[T]
}

// Nullable combines Optional and Box: a nil pointer is absent, anything else
// is present and owned.
func Nullable[T any](inner Codec[T]) Codec[*T] {
	return nullableCodec[T]{inner: inner}
}

func (c nullableCodec[T]) Encode(e *Encoder, v *T) error {
	if v == nil {
		return e.WriteU8(0)
	}
	if err := e.WriteU8(1); err != nil {
		return err
	}
	return c.inner.Encode(e, *v)
}

func (c nullableCodec[T]) Decode(d *Decoder) (*T, error) {
	tag, err := d.ReadU8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return decodeOwned(d, c.inner)
	}
	return nil, invalidOptionalTag(tag)
}
