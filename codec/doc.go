// Package codec is the Borsh encode/decode engine.
//
// Every shape has a Codec: scalars are package variables (Bool, U32, F64,
// String, ...), compound shapes are built by combinators (Seq, Optional, Box,
// Union, Tuple2, Map, ...), and user aggregates implement Marshaler and
// Unmarshaler and are adapted with Object. Dispatch is static: the codec tree
// is assembled once from Go types and no reflection happens while encoding or
// decoding.
//
// # Key Types
//
//	Codec[T]   - encodes and decodes one shape
//	Encoder    - per-call sink state, sticky error for Put/PutField
//	Decoder    - per-call source state, allocator and allocation record
//	Owned[T]   - decoded value plus the allocations made for it
//	Buffer     - encoded bytes in allocator storage
//
// # Operations
//
//	Encode(w, c, v)               write v to a sink
//	SizeOf(c, v)                  exact encoded size, no output
//	EncodeToBuffer(alloc, c, v)   encode into a freshly allocated buffer
//	Decode(alloc, r, c)           read a value, returns *Owned[T]
//	Free(alloc, owned)            release everything Decode allocated
//
// Marshal and Unmarshal are slice conveniences over Encode and Decode.
//
// # Allocation Ownership
//
// Sequences, strings, maps and owned references request storage from the
// allocator as they are decoded. A failed element releases the storage of
// its enclosing sequence immediately; a failed decode releases everything.
// A successful decode hands all allocations to the Owned handle, so the free
// path always mirrors the decode path exactly.
//
// # Discriminants
//
// Enum and union discriminants are one byte on the wire. Union case tags are
// declared as uint32, matching the 32-bit tag of the optional wrapper
// (OptionUnion), but a tag above 255 fails to encode with a
// discriminant_too_large error.
package codec
