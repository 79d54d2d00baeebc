package codec

import "github.com/wippyai/borsh/errors"

type Pair[A, B any] struct {
	First  A
	Second B
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

type tuple2[A, B any] struct {
	a Codec[A]
	b Codec[B]
}

// Tuple2 returns the codec for a two-element tuple, encoded as its members
// back to back.
func Tuple2[A, B any](a Codec[A], b Codec[B]) Codec[Pair[A, B]] {
	return tuple2[A, B]{a: a, b: b}
}

func (c tuple2[A, B]) Encode(e *Encoder, v Pair[A, B]) error {
	if err := c.a.Encode(e, v.First); err != nil {
		return errors.WithPath(err, "0")
	}
	if err := c.b.Encode(e, v.Second); err != nil {
		return errors.WithPath(err, "1")
	}
	return nil
}

func (c tuple2[A, B]) Decode(d *Decoder) (Pair[A, B], error) {
	var v Pair[A, B]
	var err error
	if v.First, err = c.a.Decode(d); err != nil {
		return v, errors.WithPath(err, "0")
	}
	if v.Second, err = c.b.Decode(d); err != nil {
		return v, errors.WithPath(err, "1")
	}
	return v, nil
}

type tuple3[A, B, C any] struct {
	a Codec[A]
	b Codec[B]
	c Codec[C]
}

func Tuple3[A, B, C any](a Codec[A], b Codec[B], c Codec[C]) Codec[Triple[A, B, C]] {
	return tuple3[A, B, C]{a: a, b: b, c: c}
}

func (c tuple3[A, B, C]) Encode(e *Encoder, v Triple[A, B, C]) error {
	if err := c.a.Encode(e, v.First); err != nil {
		return errors.WithPath(err, "0")
	}
	if err := c.b.Encode(e, v.Second); err != nil {
		return errors.WithPath(err, "1")
	}
	if err := c.c.Encode(e, v.Third); err != nil {
		return errors.WithPath(err, "2")
	}
	return nil
}

func (c tuple3[A, B, C]) Decode(d *Decoder) (Triple[A, B, C], error) {
	var v Triple[A, B, C]
	var err error
	if v.First, err = c.a.Decode(d); err != nil {
		return v, errors.WithPath(err, "0")
	}
	if v.Second, err = c.b.Decode(d); err != nil {
		return v, errors.WithPath(err, "1")
	}
	if v.Third, err = c.c.Decode(d); err != nil {
		return v, errors.WithPath(err, "2")
	}
	return v, nil
}
