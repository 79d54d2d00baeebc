package schema

import (
	"bytes"
	stderrors "errors"
	"reflect"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/borsh/alloc"
	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/errors"
)

const testSchema = `
types:
  point:
    record:
      x: s32
      y: s32
  shape:
    variant:
      circle: f64
      square: point
      empty:
  color:
    enum: [red, green, blue]
  path: list<point>
  drawing:
    record:
      name: string
      color: color
      shapes: list<shape>
      note: option<string>
      raw: list<u8>
      status: result<u32, string>
`

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Parse([]byte(testSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func mustCodec(t *testing.T, r *Registry, expr string) codec.Codec[any] {
	t.Helper()
	c, err := r.Codec(expr)
	if err != nil {
		t.Fatalf("Codec(%q): %v", expr, err)
	}
	return c
}

func TestRegistryNames(t *testing.T) {
	r := mustRegistry(t)
	want := []string{"point", "shape", "color", "path", "drawing"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	pt, ok := r.Lookup("point")
	if !ok {
		t.Fatal("point not found")
	}
	if KindOf(pt) != KindRecord {
		t.Errorf("KindOf(point) = %v", KindOf(pt))
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) succeeded")
	}
}

func TestEncodeVectors(t *testing.T) {
	r := mustRegistry(t)
	tests := []struct {
		name  string
		expr  string
		value any
		want  []byte
	}{
		{"point", "point", map[string]any{"x": 1, "y": -2}, []byte{1, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff}},
		{"enum by name", "color", "blue", []byte{2}},
		{"enum by index", "color", 1, []byte{1}},
		{"variant payload", "shape", map[string]any{"circle": 1.0}, []byte{0, 0, 0, 0, 0, 0, 0, 0xf0, 0x3f}},
		{"variant bare name", "shape", "empty", []byte{2}},
		{"variant null payload", "shape", map[string]any{"empty": nil}, []byte{2}},
		{"option none", "option<u8>", nil, []byte{0}},
		{"option some", "option<u8>", 7, []byte{1, 7}},
		{"bytes", "list<u8>", []byte{1, 2}, []byte{2, 0, 0, 0, 1, 2}},
		{"bytes from list", "list<u8>", []any{1, 2}, []byte{2, 0, 0, 0, 1, 2}},
		{"tuple", "tuple<u8, bool>", []any{3, true}, []byte{3, 1}},
		{"result ok", "result<u32, string>", map[string]any{"ok": 5}, []byte{1, 5, 0, 0, 0}},
		{"result err", "result<u32, string>", map[string]any{"err": "x"}, []byte{0, 1, 0, 0, 0, 'x'}},
		{"bare result", "result", "ok", []byte{1}},
		{"char", "char", "é", []byte{0xe9, 0, 0, 0}},
		{"char code point", "char", 65, []byte{65, 0, 0, 0}},
		{"u64 from float", "u64", 3.0, []byte{3, 0, 0, 0, 0, 0, 0, 0}},
		{"string", "string", "hi", []byte{2, 0, 0, 0, 'h', 'i'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Marshal(mustCodec(t, r, tt.expr), tt.value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Marshal = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	r := mustRegistry(t)
	c := mustCodec(t, r, "drawing")
	in := map[string]any{
		"name":  "sketch",
		"color": "green",
		"shapes": []any{
			map[string]any{"circle": 2.5},
			map[string]any{"square": map[string]any{"x": 1, "y": 2}},
			"empty",
		},
		"raw":    []byte{0xde, 0xad},
		"status": map[string]any{"err": "pending"},
	}
	data, err := codec.Marshal(c, any(in))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if n := codec.SizeOf(c, any(in)); n != len(data) {
		t.Errorf("SizeOf = %d, encoded %d bytes", n, len(data))
	}

	heap := alloc.NewHeap()
	out, err := codec.Unmarshal(heap, data, c)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	defer out.Free(heap)

	want := map[string]any{
		"name":  "sketch",
		"color": "green",
		"shapes": []any{
			map[string]any{"circle": 2.5},
			map[string]any{"square": map[string]any{"x": int32(1), "y": int32(2)}},
			map[string]any{"empty": nil},
		},
		"note":   nil,
		"raw":    []byte{0xde, 0xad},
		"status": map[string]any{"err": "pending"},
	}
	if !reflect.DeepEqual(out.Value, want) {
		t.Errorf("decoded %#v\nwant %#v", out.Value, want)
	}

	again, err := codec.Marshal(c, out.Value)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Errorf("re-encoded %x, want %x", again, data)
	}
}

func TestEncodeErrors(t *testing.T) {
	r := mustRegistry(t)
	tests := []struct {
		name  string
		expr  string
		value any
		kind  errors.Kind
	}{
		{"u8 overflow", "u8", 256, errors.KindOverflow},
		{"negative unsigned", "u32", -1, errors.KindOverflow},
		{"fraction", "s32", 1.5, errors.KindOverflow},
		{"wrong type", "u32", "7", errors.KindTypeMismatch},
		{"f32 overflow", "f32", 1e300, errors.KindOverflow},
		{"nan", "f64", nanValue(), errors.KindNaNNotAllowed},
		{"unknown enum", "color", "purple", errors.KindInvalidEnum},
		{"undeclared enum index", "color", 3, errors.KindInvalidEnum},
		{"unknown case", "shape", "hexagon", errors.KindInvalidVariant},
		{"two cases", "shape", map[string]any{"circle": 1.0, "empty": nil}, errors.KindInvalidData},
		{"payload on empty case", "shape", map[string]any{"empty": 1}, errors.KindInvalidData},
		{"missing field", "point", map[string]any{"x": 1}, errors.KindFieldMissing},
		{"unknown field", "point", map[string]any{"x": 1, "y": 2, "z": 3}, errors.KindFieldUnknown},
		{"tuple arity", "tuple<u8, u8>", []any{1}, errors.KindInvalidData},
		{"char too long", "char", "ab", errors.KindInvalidData},
		{"surrogate", "char", 0xd800, errors.KindInvalidData},
		{"invalid utf8", "string", "\xff", errors.KindInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Marshal(mustCodec(t, r, tt.expr), tt.value)
			if !stderrors.Is(err, errors.Sentinel(tt.kind)) {
				t.Errorf("Marshal error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}

func TestErrorPath(t *testing.T) {
	r := mustRegistry(t)
	c := mustCodec(t, r, "drawing")
	in := map[string]any{
		"name":   "x",
		"color":  "red",
		"shapes": []any{map[string]any{"square": map[string]any{"x": 1, "y": "two"}}},
		"raw":    []byte{},
		"status": "ok",
	}
	_, err := codec.Marshal(c, any(in))
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error %v is not structured", err)
	}
	want := []string{"shapes", "[0]", "square", "y"}
	if !reflect.DeepEqual(e.Path, want) {
		t.Errorf("path = %v, want %v", e.Path, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	r := mustRegistry(t)
	tests := []struct {
		name string
		expr string
		data []byte
		kind errors.Kind
	}{
		{"enum out of range", "color", []byte{3}, errors.KindUnknownDiscriminant},
		{"variant out of range", "shape", []byte{9}, errors.KindUnknownDiscriminant},
		{"result tag", "result", []byte{2}, errors.KindUnknownDiscriminant},
		{"surrogate char", "char", []byte{0, 0xd8, 0, 0}, errors.KindInvalidData},
		{"char beyond range", "char", []byte{0, 0, 0x11, 0}, errors.KindInvalidData},
		{"option tag", "option<u8>", []byte{2, 0}, errors.KindInvalidOptionalTag},
		{"truncated record", "point", []byte{1, 0, 0, 0, 2}, errors.KindUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heap := alloc.NewHeap()
			_, err := codec.Unmarshal(heap, tt.data, mustCodec(t, r, tt.expr))
			if !stderrors.Is(err, errors.Sentinel(tt.kind)) {
				t.Errorf("Unmarshal error = %v, want kind %s", err, tt.kind)
			}
			if live := heap.Live(); live != 0 {
				t.Errorf("%d allocations left after failed decode", live)
			}
		})
	}
}

func TestCompileUnsupported(t *testing.T) {
	tests := []struct {
		name string
		typ  wit.Type
	}{
		{"flags", &wit.TypeDef{Kind: &wit.Flags{Flags: []wit.Flag{{Name: "a"}}}}},
		{"nested flags", &wit.TypeDef{Kind: &wit.List{Type: &wit.TypeDef{Kind: &wit.Flags{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler().Compile(tt.typ)
			if !stderrors.Is(err, errors.Sentinel(errors.KindUnsupported)) {
				t.Errorf("Compile error = %v, want unsupported", err)
			}
		})
	}
	if _, err := Compile(nil); !stderrors.Is(err, errors.Sentinel(errors.KindNilPointer)) {
		t.Errorf("Compile(nil) error = %v", err)
	}
}

func TestCompileWitTypes(t *testing.T) {
	rec := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "id", Type: wit.U64{}},
		{Name: "tags", Type: &wit.TypeDef{Kind: &wit.List{Type: wit.String{}}}},
	}}}
	alias := &wit.TypeDef{Kind: rec}

	c := NewCompiler()
	rc, err := c.Compile(alias)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	again, err := c.Compile(alias)
	if err != nil {
		t.Fatalf("Compile cached: %v", err)
	}
	if !reflect.DeepEqual(rc, again) {
		t.Error("second Compile did not reuse the cached codec")
	}

	data, err := codec.Marshal(rc, any(map[string]any{"id": uint64(9), "tags": []any{"a"}}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := []byte{9, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 'a'}
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal = %x, want %x", data, want)
	}
}

func TestRecursiveTypeDef(t *testing.T) {
	list := &wit.List{}
	node := &wit.TypeDef{Kind: list}
	list.Type = node
	if _, err := NewCompiler().Compile(node); !stderrors.Is(err, errors.Sentinel(errors.KindUnsupported)) {
		t.Errorf("Compile error = %v, want unsupported", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"not yaml", "types: [", errors.KindInvalidData},
		{"types not mapping", "types: [a]", errors.KindInvalidData},
		{"unknown reference", "types:\n  a: list<b>\n", errors.KindNotFound},
		{"recursive", "types:\n  a: list<b>\n  b: option<a>\n", errors.KindInvalidData},
		{"reserved name", "types:\n  u8: string\n", errors.KindInvalidData},
		{"unknown form", "types:\n  a:\n    union: {x: u8}\n", errors.KindInvalidData},
		{"empty enum", "types:\n  a:\n    enum: []\n", errors.KindInvalidData},
		{"repeated enum case", "types:\n  a:\n    enum: [x, x]\n", errors.KindInvalidData},
		{"field without type", "types:\n  a:\n    record:\n      x:\n", errors.KindInvalidData},
		{"bad expression", "types:\n  a: list<u8\n", errors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !stderrors.Is(err, errors.Sentinel(tt.kind)) {
				t.Errorf("Parse error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestResolveExpressions(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		expr string
		kind Kind
	}{
		{"u32", KindU32},
		{"list<string>", KindList},
		{" option< list<u8> > ", KindOption},
		{"tuple<u8,s8,char>", KindTuple},
		{"result<_, string>", KindResult},
		{"result<u8>", KindResult},
		{"result", KindResult},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			typ, err := r.Resolve(tt.expr)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := KindOf(typ); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
		})
	}

	bad := []string{"", "list", "list<>", "list<u8, u8>", "option<_>", "tuple<u8", "u8 u8", "result<u8, u8, u8>", "thing"}
	for _, expr := range bad {
		if _, err := r.Resolve(expr); err == nil {
			t.Errorf("Resolve(%q) succeeded", expr)
		}
	}
}

func TestResultOmittedOK(t *testing.T) {
	c := mustCodec(t, NewRegistry(), "result<_, string>")
	data, err := codec.Marshal(c, any("ok"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(data, []byte{1}) {
		t.Errorf("Marshal = %x, want 01", data)
	}
	out, err := codec.Unmarshal(nil, data, c)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if want := map[string]any{"ok": nil}; !reflect.DeepEqual(out.Value, want) {
		t.Errorf("decoded %#v, want %#v", out.Value, want)
	}
}

func TestNestedOption(t *testing.T) {
	c := mustCodec(t, NewRegistry(), "option<option<u32>>")
	tests := []struct {
		name  string
		data  []byte
		value any
	}{
		{"none", []byte{0}, nil},
		{"some none", []byte{1, 0}, map[string]any{"some": nil}},
		{"some some", []byte{1, 1, 5, 0, 0, 0}, map[string]any{"some": uint32(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := codec.Unmarshal(nil, tt.data, c)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(out.Value, tt.value) {
				t.Errorf("decoded %#v, want %#v", out.Value, tt.value)
			}
			again, err := codec.Marshal(c, out.Value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if !bytes.Equal(again, tt.data) {
				t.Errorf("re-encoded %x, want %x", again, tt.data)
			}
		})
	}

	if _, err := codec.Marshal(c, any(5)); !stderrors.Is(err, errors.Sentinel(errors.KindTypeMismatch)) {
		t.Errorf("bare value: got %v, want type_mismatch", err)
	}
	bad := map[string]any{"value": 5}
	if _, err := codec.Marshal(c, any(bad)); !stderrors.Is(err, errors.Sentinel(errors.KindInvalidData)) {
		t.Errorf("wrong key: got %v, want invalid_data", err)
	}
}

func TestRegistryCodecCached(t *testing.T) {
	r := mustRegistry(t)
	mustCodec(t, r, "list<tuple<point, string>>")
	compiled := len(r.compiler.cache)
	for range 3 {
		mustCodec(t, r, "list<tuple<point, string>>")
	}
	if n := len(r.compiler.cache); n != compiled {
		t.Errorf("compiler cache grew from %d to %d on repeated lookups", compiled, n)
	}
	if n := len(r.codecs); n != 1 {
		t.Errorf("%d cached expressions, want 1", n)
	}
}
