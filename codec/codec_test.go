package codec

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/wippyai/borsh/alloc"
)

// roundTrip checks size agreement, decode(encode(v)) == v and that freeing
// the decoded value returns every allocation.
func roundTrip[T any](t *testing.T, c Codec[T], v T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := Encode(&buf, c, v); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()

	if n := SizeOf(c, v); n != len(data) {
		t.Errorf("SizeOf = %d, encoded %d bytes", n, len(data))
	}

	heap := alloc.NewHeap()
	out, err := Unmarshal(heap, data, c)
	if err != nil {
		t.Fatalf("Unmarshal(%x): %v", data, err)
	}
	if !reflect.DeepEqual(out.Value, v) {
		t.Errorf("round trip mismatch:\n got  %#v\n want %#v", out.Value, v)
	}
	if heap.Live() != out.Allocations() {
		t.Errorf("heap has %d live allocations, handle records %d", heap.Live(), out.Allocations())
	}
	out.Free(heap)
	if live := heap.Live(); live != 0 {
		t.Errorf("%d allocations live after Free", live)
	}
	return data
}

func TestRoundTrip_Integers(t *testing.T) {
	t.Run("u8", func(t *testing.T) {
		for _, v := range []uint8{0, 1, 127, math.MaxUint8} {
			roundTrip(t, U8, v)
		}
	})
	t.Run("u16", func(t *testing.T) {
		for _, v := range []uint16{0, 300, math.MaxUint16} {
			roundTrip(t, U16, v)
		}
	})
	t.Run("u32", func(t *testing.T) {
		for _, v := range []uint32{0, 300, math.MaxUint32} {
			roundTrip(t, U32, v)
		}
	})
	t.Run("u64", func(t *testing.T) {
		for _, v := range []uint64{0, 1 << 40, math.MaxUint64} {
			roundTrip(t, U64, v)
		}
	})
	t.Run("i8", func(t *testing.T) {
		for _, v := range []int8{math.MinInt8, -1, 0, math.MaxInt8} {
			roundTrip(t, I8, v)
		}
	})
	t.Run("i16", func(t *testing.T) {
		for _, v := range []int16{math.MinInt16, -1, 0, math.MaxInt16} {
			roundTrip(t, I16, v)
		}
	})
	t.Run("i32", func(t *testing.T) {
		for _, v := range []int32{math.MinInt32, -1, 0, math.MaxInt32} {
			roundTrip(t, I32, v)
		}
	})
	t.Run("i64", func(t *testing.T) {
		for _, v := range []int64{math.MinInt64, -1, 0, math.MaxInt64} {
			roundTrip(t, I64, v)
		}
	})
	t.Run("u128", func(t *testing.T) {
		for _, v := range []Uint128{{}, {Lo: 1}, {Lo: math.MaxUint64, Hi: math.MaxUint64}} {
			roundTrip(t, U128, v)
		}
	})
	t.Run("i128", func(t *testing.T) {
		for _, v := range []Int128{{}, {Lo: math.MaxUint64, Hi: -1}, {Hi: math.MinInt64}, {Lo: math.MaxUint64, Hi: math.MaxInt64}} {
			roundTrip(t, I128, v)
		}
	})
	t.Run("named", func(t *testing.T) {
		type height int16
		roundTrip(t, Fixed[height](), height(-42))
		if n := SizeOf(Fixed[height](), 1); n != 2 {
			t.Errorf("SizeOf(height) = %d, want 2", n)
		}
	})
}

func TestRoundTrip_Floats(t *testing.T) {
	for _, v := range []float32{0, -1.5, math.SmallestNonzeroFloat32, math.MaxFloat32, -math.MaxFloat32, float32(math.Inf(1)), float32(math.Inf(-1))} {
		roundTrip(t, F32, v)
	}
	for _, v := range []float64{0, 3.25, math.SmallestNonzeroFloat64, math.MaxFloat64, -math.MaxFloat64, math.Inf(1), math.Inf(-1)} {
		roundTrip(t, F64, v)
	}
}

func TestRoundTrip_Bool(t *testing.T) {
	roundTrip(t, Bool, true)
	roundTrip(t, Bool, false)
}

func TestRoundTrip_Empty(t *testing.T) {
	if data := roundTrip(t, Unit, struct{}{}); len(data) != 0 {
		t.Errorf("unit encoded as %x", data)
	}
	type marker struct{}
	if data := roundTrip(t, Empty[marker](), marker{}); len(data) != 0 {
		t.Errorf("empty encoded as %x", data)
	}
}

func TestRoundTrip_Sequences(t *testing.T) {
	roundTrip(t, Seq(U32), []uint32{})
	roundTrip(t, Seq(U32), []uint32{42})
	roundTrip(t, Seq(U32), []uint32{1, 2, 3, math.MaxUint32})
	roundTrip(t, Seq(Seq(I8)), [][]int8{{}, {-1}, {1, 2}})
	roundTrip(t, String, "")
	roundTrip(t, String, "hello, мир")
	roundTrip(t, Bytes, []byte{})
	roundTrip(t, Bytes, []byte{0, 1, 0xff})

	big := make([]uint16, 5000)
	for i := range big {
		big[i] = uint16(i)
	}
	roundTrip(t, Seq(U16), big)
}

func TestRoundTrip_Fixed(t *testing.T) {
	data := roundTrip(t, Array(3, U8), []uint8{1, 2, 3})
	if len(data) != 3 {
		t.Errorf("array encoded as %x, want no length prefix", data)
	}
	roundTrip(t, Array(0, String), []string{})
	roundTrip(t, FixedBytes(4), []byte("abcd"))
	roundTrip(t, Tuple2(U8, String), Pair[uint8, string]{7, "x"})
	roundTrip(t, Tuple3(Bool, I64, Seq(U8)), Triple[bool, int64, []uint8]{true, -9, []uint8{1}})
	roundTrip(t, Object[point](), point{X: math.MinInt32, Y: math.MaxInt32})
}

func TestRoundTrip_Optional(t *testing.T) {
	roundTrip(t, Optional(U32), None[uint32]())
	roundTrip(t, Optional(U32), Some[uint32](0))
	roundTrip(t, Optional(Optional(Bool)), Some(None[bool]()))
	roundTrip(t, Optional(Optional(Bool)), Some(Some(true)))
	roundTrip(t, Optional(Optional(Bool)), None[Option[bool]]())
	roundTrip(t, Optional(String), Some("nested"))
}

func TestRoundTrip_Owned(t *testing.T) {
	v := uint64(99)
	roundTrip(t, Box(U64), &v)

	inner := "deep"
	p := &inner
	roundTrip(t, Box(Box(String)), &p)

	roundTrip(t, Nullable(U8), (*uint8)(nil))
	b := uint8(3)
	roundTrip(t, Nullable(U8), &b)
}

func TestRoundTrip_Unions(t *testing.T) {
	for _, v := range []shape{circle{R: 2}, square{Side: math.MaxUint16}, dot{}} {
		roundTrip(t, shapeCodec, v)
	}
	for _, v := range []color{red, green, blue} {
		roundTrip(t, colorCodec, v)
	}
}

func TestRoundTrip_Map(t *testing.T) {
	roundTrip(t, Map(String, U32), map[string]uint32{})
	roundTrip(t, Map(String, U32), map[string]uint32{"b": 2, "a": 1, "c": 3})
	roundTrip(t, Map(I32, Seq(Bool)), map[int32][]bool{-5: {true}, 0: {}, 5: {false, true}})
}

func TestRoundTrip_Aggregate(t *testing.T) {
	roundTrip(t, recordCodec, sampleRecord())

	r := sampleRecord()
	r.Score = None[float64]()
	r.Tags = []string{}
	r.Shapes = []shape{}
	roundTrip(t, recordCodec, r)
}

func TestRoundTrip_Recursive(t *testing.T) {
	v := tree{Value: 1, Children: []tree{
		{Value: 2, Children: []tree{}},
		{Value: 3, Children: []tree{{Value: 4, Children: []tree{}}}},
	}}
	roundTrip(t, Object[tree](), v)
}

func TestLazy_BuildsOnce(t *testing.T) {
	calls := 0
	c := Lazy(func() Codec[uint16] {
		calls++
		return U16
	})
	roundTrip(t, c, 513)
	roundTrip(t, Seq(c), []uint16{1, 2})
	if calls != 1 {
		t.Errorf("build called %d times", calls)
	}
}

func TestSizeOf_MatchesMarshal(t *testing.T) {
	r := sampleRecord()
	data, err := Marshal(recordCodec, r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if n := SizeOf(recordCodec, r); n != len(data) {
		t.Errorf("SizeOf = %d, Marshal produced %d", n, len(data))
	}
	if n := SizeOf(Seq(Unit), []struct{}{}); n != 4 {
		t.Errorf("SizeOf(no units) = %d, want 4", n)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	m := map[string]uint8{}
	for i := range 50 {
		m[string(rune('a'+i%26))+string(rune('A'+i/26))] = uint8(i)
	}
	first, err := Marshal(Map(String, U8), m)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, _ := Marshal(Map(String, U8), m)
		if !bytes.Equal(first, again) {
			t.Fatal("map encoding depends on iteration order")
		}
	}
}
