package schema

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/errors"
)

// Dynamic codecs exchange values as plain Go data: scalars, string, []byte,
// []any, map[string]any and nil. Encoding accepts any numeric Go type that
// fits; decoding yields the exact Go type of the WIT primitive.

func decode[T any](d *codec.Decoder, c codec.Codec[T]) (any, error) {
	v, err := c.Decode(d)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func mismatch(v any, kind Kind) error {
	return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), kind.String())
}

type boolNode struct{}

func (boolNode) Encode(e *codec.Encoder, v any) error {
	b, ok := v.(bool)
	if !ok {
		return mismatch(v, KindBool)
	}
	return codec.Bool.Encode(e, b)
}

func (boolNode) Decode(d *codec.Decoder) (any, error) {
	return decode(d, codec.Bool)
}

type unsignedNode[T codec.Sized] struct {
	c     codec.Codec[T]
	limit uint64
	kind  Kind
}

func (n unsignedNode[T]) Encode(e *codec.Encoder, v any) error {
	u, ok := toUint(v, n.limit)
	if !ok {
		return numberError(v, n.kind)
	}
	return n.c.Encode(e, T(u))
}

func (n unsignedNode[T]) Decode(d *codec.Decoder) (any, error) {
	return decode(d, n.c)
}

type signedNode[T codec.Sized] struct {
	c      codec.Codec[T]
	lo, hi int64
	kind   Kind
}

func (n signedNode[T]) Encode(e *codec.Encoder, v any) error {
	i, ok := toInt(v, n.lo, n.hi)
	if !ok {
		return numberError(v, n.kind)
	}
	return n.c.Encode(e, T(i))
}

func (n signedNode[T]) Decode(d *codec.Decoder) (any, error) {
	return decode(d, n.c)
}

func numberError(v any, kind Kind) error {
	if _, ok := toFloat(v); ok {
		return errors.Overflow(errors.PhaseEncode, nil, v, kind.String())
	}
	return mismatch(v, kind)
}

type f32Node struct{}

func (f32Node) Encode(e *codec.Encoder, v any) error {
	f, ok := toFloat(v)
	if !ok {
		return mismatch(v, KindF32)
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return errors.Overflow(errors.PhaseEncode, nil, v, KindF32.String())
	}
	return codec.F32.Encode(e, float32(f))
}

func (f32Node) Decode(d *codec.Decoder) (any, error) {
	return decode(d, codec.F32)
}

type f64Node struct{}

func (f64Node) Encode(e *codec.Encoder, v any) error {
	f, ok := toFloat(v)
	if !ok {
		return mismatch(v, KindF64)
	}
	return codec.F64.Encode(e, f)
}

func (f64Node) Decode(d *codec.Decoder) (any, error) {
	return decode(d, codec.F64)
}

// charNode writes a Unicode scalar value as u32. Decoded chars are
// one-rune strings; encode also accepts a code point number.
type charNode struct{}

func (charNode) Encode(e *codec.Encoder, v any) error {
	var r rune
	switch v := v.(type) {
	case string:
		c, size := utf8.DecodeRuneInString(v)
		if size == 0 || size != len(v) || c == utf8.RuneError {
			return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("char needs exactly one character, got %q", v))
		}
		r = c
	default:
		u, ok := toUint(v, utf8.MaxRune)
		if !ok {
			return numberError(v, KindChar)
		}
		r = rune(u)
	}
	if !utf8.ValidRune(r) {
		return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("%U is not a Unicode scalar value", r))
	}
	return codec.U32.Encode(e, uint32(r))
}

func (charNode) Decode(d *codec.Decoder) (any, error) {
	u, err := codec.U32.Decode(d)
	if err != nil {
		return nil, err
	}
	if u > utf8.MaxRune || !utf8.ValidRune(rune(u)) {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("0x%x is not a Unicode scalar value", u))
	}
	return string(rune(u)), nil
}

type stringNode struct{}

func (stringNode) Encode(e *codec.Encoder, v any) error {
	s, ok := v.(string)
	if !ok {
		return mismatch(v, KindString)
	}
	return codec.String.Encode(e, s)
}

func (stringNode) Decode(d *codec.Decoder) (any, error) {
	return decode(d, codec.String)
}

// bytesNode is list<u8>, exchanged as []byte.
type bytesNode struct{}

func (bytesNode) Encode(e *codec.Encoder, v any) error {
	switch v := v.(type) {
	case []byte:
		return codec.Bytes.Encode(e, v)
	case string:
		return codec.Bytes.Encode(e, []byte(v))
	case []any:
		b := make([]byte, len(v))
		for i, x := range v {
			u, ok := toUint(x, math.MaxUint8)
			if !ok {
				return errors.WithPath(numberError(x, KindU8), fmt.Sprintf("[%d]", i))
			}
			b[i] = byte(u)
		}
		return codec.Bytes.Encode(e, b)
	}
	return mismatch(v, KindList)
}

func (bytesNode) Decode(d *codec.Decoder) (any, error) {
	return decode(d, codec.Bytes)
}

type listNode struct {
	seq codec.Codec[[]any]
}

func newListNode(elem codec.Codec[any]) listNode {
	return listNode{seq: codec.Seq(elem)}
}

func (n listNode) Encode(e *codec.Encoder, v any) error {
	items, ok := v.([]any)
	if !ok {
		return mismatch(v, KindList)
	}
	return n.seq.Encode(e, items)
}

func (n listNode) Decode(d *codec.Decoder) (any, error) {
	return decode(d, n.seq)
}

type tupleNode struct {
	elems []codec.Codec[any]
}

func (n tupleNode) Encode(e *codec.Encoder, v any) error {
	items, ok := v.([]any)
	if !ok {
		return mismatch(v, KindTuple)
	}
	if len(items) != len(n.elems) {
		return errors.InvalidData(errors.PhaseEncode, nil,
			fmt.Sprintf("tuple needs %d elements, got %d", len(n.elems), len(items)))
	}
	for i, c := range n.elems {
		codec.PutField(e, fmt.Sprint(i), c, items[i])
	}
	return e.Err()
}

func (n tupleNode) Decode(d *codec.Decoder) (any, error) {
	out := make([]any, len(n.elems))
	for i, c := range n.elems {
		out[i] = codec.GetField(d, fmt.Sprint(i), c)
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type field struct {
	name     string
	c        codec.Codec[any]
	optional bool
}

type recordNode struct {
	fields []field
	index  map[string]int
}

func newRecordNode(fields []field) recordNode {
	n := recordNode{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		n.index[f.name] = i
	}
	return n
}

func (n recordNode) Encode(e *codec.Encoder, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return mismatch(v, KindRecord)
	}
	for name := range m {
		if _, known := n.index[name]; !known {
			return errors.FieldUnknown(errors.PhaseEncode, nil, name)
		}
	}
	for _, f := range n.fields {
		fv, present := m[f.name]
		if !present && !f.optional {
			return errors.FieldMissing(errors.PhaseEncode, nil, f.name)
		}
		codec.PutField(e, f.name, f.c, fv)
	}
	return e.Err()
}

func (n recordNode) Decode(d *codec.Decoder) (any, error) {
	out := make(map[string]any, len(n.fields))
	for _, f := range n.fields {
		out[f.name] = codec.GetField(d, f.name, f.c)
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// optionNode maps nil to absent and anything else to present. When the
// element is itself an option, a present value is wrapped as
// map[string]any{"some": v} so that some(none) stays distinct from none.
type optionNode struct {
	opt    codec.Codec[codec.Option[any]]
	nested bool
}

func newOptionNode(elem codec.Codec[any], nested bool) optionNode {
	return optionNode{opt: codec.Optional(elem), nested: nested}
}

func (n optionNode) Encode(e *codec.Encoder, v any) error {
	if v == nil {
		return n.opt.Encode(e, codec.None[any]())
	}
	if n.nested {
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch(v, KindOption)
		}
		inner, present := m["some"]
		if !present || len(m) != 1 {
			return errors.InvalidData(errors.PhaseEncode, nil, `nested option value needs exactly the key "some"`)
		}
		v = inner
	}
	return n.opt.Encode(e, codec.Some(v))
}

func (n optionNode) Decode(d *codec.Decoder) (any, error) {
	o, err := n.opt.Decode(d)
	if err != nil {
		return nil, err
	}
	if !o.Valid {
		return nil, nil
	}
	if n.nested {
		return map[string]any{"some": o.Value}, nil
	}
	return o.Value, nil
}

// enumNode exchanges cases by name; encode also accepts the case index.
type enumNode struct {
	c     codec.Codec[uint32]
	names []string
	index map[string]uint32
}

func newEnumNode(names []string) enumNode {
	declared := make([]uint32, len(names))
	index := make(map[string]uint32, len(names))
	for i, name := range names {
		declared[i] = uint32(i)
		index[name] = uint32(i)
	}
	return enumNode{c: codec.Enum(declared...), names: names, index: index}
}

func (n enumNode) Encode(e *codec.Encoder, v any) error {
	if name, ok := v.(string); ok {
		i, known := n.index[name]
		if !known {
			return errors.InvalidEnum(errors.PhaseEncode, nil, name, KindEnum.String())
		}
		return n.c.Encode(e, i)
	}
	i, ok := toUint(v, math.MaxUint32)
	if !ok {
		return mismatch(v, KindEnum)
	}
	return n.c.Encode(e, uint32(i))
}

func (n enumNode) Decode(d *codec.Decoder) (any, error) {
	i, err := n.c.Decode(d)
	if err != nil {
		return nil, err
	}
	return n.names[i], nil
}

type variantCase struct {
	name    string
	payload codec.Codec[any] // nil for payload-free cases
}

// variantNode exchanges a case as map[string]any{name: payload}. A
// payload-free case may also be given as its bare name. Results are variants
// with cases err (0) and ok (1).
type variantNode struct {
	cases []variantCase
	index map[string]int
	kind  Kind
}

func newVariantNode(kind Kind, cases []variantCase) variantNode {
	n := variantNode{cases: cases, index: make(map[string]int, len(cases)), kind: kind}
	for i, c := range cases {
		n.index[c.name] = i
	}
	return n
}

func (n variantNode) Encode(e *codec.Encoder, v any) error {
	var name string
	var payload any
	switch v := v.(type) {
	case string:
		name = v
	case map[string]any:
		if len(v) != 1 {
			return errors.InvalidData(errors.PhaseEncode, nil,
				fmt.Sprintf("%s value needs exactly one case, got %d", n.kind, len(v)))
		}
		for k, p := range v {
			name, payload = k, p
		}
	default:
		return mismatch(v, n.kind)
	}

	i, ok := n.index[name]
	if !ok {
		return errors.New(errors.PhaseEncode, errors.KindInvalidVariant).
			Detail("unknown %s case %q", n.kind, name).
			Build()
	}
	if i > math.MaxUint8 {
		return errors.DiscriminantTooLarge(nil, i)
	}
	if err := e.WriteU8(uint8(i)); err != nil {
		return err
	}
	c := n.cases[i]
	if c.payload == nil {
		if payload != nil {
			return errors.WithPath(errors.InvalidData(errors.PhaseEncode, nil, "case has no payload"), name)
		}
		return nil
	}
	if err := c.payload.Encode(e, payload); err != nil {
		return errors.WithPath(err, name)
	}
	return nil
}

func (n variantNode) Decode(d *codec.Decoder) (any, error) {
	tag, err := d.ReadU8()
	if err != nil {
		return nil, err
	}
	if int(tag) >= len(n.cases) {
		return nil, errors.UnknownDiscriminant(errors.PhaseDecode, nil, uint32(tag))
	}
	c := n.cases[tag]
	var payload any
	if c.payload != nil {
		if payload, err = c.payload.Decode(d); err != nil {
			return nil, errors.WithPath(err, c.name)
		}
	}
	return map[string]any{c.name: payload}, nil
}
