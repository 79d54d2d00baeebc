// Package schema builds Borsh codecs at runtime from WIT type descriptions.
//
// Types come from go.bytecodealliance.org/wit values or from a small YAML
// schema document (see Registry). Compiled codecs exchange plain Go values:
//
//	bool, u8..s64, f32, f64  Go numbers of the matching width (encode accepts any exact number)
//	char                     one-rune string
//	string                   string
//	list<u8>                 []byte
//	list<T>, tuple<...>      []any
//	record                   map[string]any keyed by field name
//	option<T>                nil or the value
//	option<option<T>>        nil or map[string]any{"some": inner}
//	enum                     case name
//	variant, result          map[string]any{case: payload}
//
// Enum and variant discriminants are one byte on the wire. Results encode
// err as 0 and ok as 1. Flags and resource handles have no Borsh form and
// are rejected at compile time.
package schema
