// Package borsh is the root of a Go implementation of Borsh, a canonical and
// deterministic binary serialization format.
//
// The byte layout of a value is fully determined by its type: there are no
// type tags, no schema negotiation and no versioning. Two conformant
// implementations produce identical bytes for the same typed value.
//
// # Architecture Overview
//
//	borsh/         Root package with the Allocator and Mapper interfaces
//	├── codec/     Encode/decode engine, size calculation, buffer helpers
//	├── alloc/     Heap (accounting) and Arena (bump) allocators
//	├── wasmmem/   Borsh over WebAssembly guest memory (wazero)
//	├── schema/    Dynamic codecs compiled from WIT type definitions
//	├── errors/    Structured error types
//	└── cmd/borsh  Command line encoder/decoder/inspector
//
// # Wire Format
//
//	Shape             Encoding
//	──────────────────────────────────────────────────────────────
//	unit              nothing
//	bool              1 byte, 0 or 1
//	u8..u128/i8..i128 little-endian two's complement
//	f32/f64           IEEE-754 bits, little-endian, NaN rejected
//	enum              1 byte discriminant
//	union             1 byte discriminant + payload
//	struct/tuple      fields in declared order, no padding
//	fixed array       elements, no length
//	sequence/string   u32 length + elements
//	option            1 byte presence flag + payload if present
//	owned reference   the referenced value
//
// # Quick Start
//
//	type Point struct{ X, Y int32 }
//
//	func (p *Point) MarshalBorsh(e *codec.Encoder) error {
//	    codec.Put(e, codec.I32, p.X)
//	    codec.Put(e, codec.I32, p.Y)
//	    return e.Err()
//	}
//
//	func (p *Point) UnmarshalBorsh(d *codec.Decoder) error {
//	    p.X = codec.Get(d, codec.I32)
//	    p.Y = codec.Get(d, codec.I32)
//	    return d.Err()
//	}
//
//	points := codec.Seq(codec.Object[Point]())
//	data, err := codec.Marshal(points, []Point{{1, 2}})
//
//	heap := alloc.NewHeap()
//	out, err := codec.Unmarshal(heap, data, points)
//	defer out.Free(heap)
//
// # Allocation
//
// Decoding threads an Allocator through every recursive call. Sequences and
// owned references request storage from it, and every allocation is recorded
// on the Owned handle returned to the caller, which releases them with Free.
// Allocation failures surface as allocation errors, distinct from malformed
// input.
package borsh
