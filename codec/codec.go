package codec

import "sync"

// Codec encodes and decodes values of one static shape. Implementations are
// immutable after construction and safe for concurrent use.
type Codec[T any] interface {
	Encode(e *Encoder, v T) error
	Decode(d *Decoder) (T, error)
}

// Marshaler is implemented by aggregates that write their members in
// declared order.
type Marshaler interface {
	MarshalBorsh(e *Encoder) error
}

// Unmarshaler is implemented by aggregates that read their members in
// declared order.
type Unmarshaler interface {
	UnmarshalBorsh(d *Decoder) error
}

type objectCodec[T any, PT interface {
	*T
	Marshaler
	Unmarshaler
}] struct{}

// Object adapts an aggregate whose pointer type implements Marshaler and
// Unmarshaler into a Codec.
//
//	points := codec.Seq(codec.Object[Point]())
func Object[T any, PT interface {
	*T
	Marshaler
	Unmarshaler
}]() Codec[T] {
	return objectCodec[T, PT]{}
}

func (objectCodec[T, PT]) Encode(e *Encoder, v T) error {
	if err := PT(&v).MarshalBorsh(e); err != nil {
		return err
	}
	return e.Err()
}

func (objectCodec[T, PT]) Decode(d *Decoder) (T, error) {
	var v T
	if err := PT(&v).UnmarshalBorsh(d); err != nil {
		return v, err
	}
	return v, d.Err()
}

type emptyCodec[T any] struct{}

// Empty returns a codec that writes and reads nothing. Decode yields the zero T.
func Empty[T any]() Codec[T] {
	return emptyCodec[T]{}
}

func (emptyCodec[T]) Encode(*Encoder, T) error {
	return nil
}

func (emptyCodec[T]) Decode(*Decoder) (T, error) {
	var zero T
	return zero, nil
}

// Unit is the codec for the empty shape.
var Unit = Empty[struct{}]()

type lazyCodec[T any] struct {
	once  *sync.Once
	build func() Codec[T]
	c     *Codec[T]
}

// Lazy defers building a codec until first use, so package-level codecs of
// recursive shapes can refer to each other:
//
//	var expr codec.Codec[Expr] // assigned in init
//	var operand = codec.Box(codec.Lazy(func() codec.Codec[Expr] { return expr }))
func Lazy[T any](build func() Codec[T]) Codec[T] {
	return lazyCodec[T]{once: new(sync.Once), build: build, c: new(Codec[T])}
}

func (l lazyCodec[T]) get() Codec[T] {
	l.once.Do(func() {
		*l.c = l.build()
	})
	return *l.c
}

func (l lazyCodec[T]) Encode(e *Encoder, v T) error {
	return l.get().Encode(e, v)
}

func (l lazyCodec[T]) Decode(d *Decoder) (T, error) {
	return l.get().Decode(d)
}
