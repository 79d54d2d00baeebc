package schema

import "go.bytecodealliance.org/wit"

// Kind classifies a WIT type for codec compilation.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindChar
	KindString
	KindRecord
	KindList
	KindVariant
	KindOption
	KindResult
	KindTuple
	KindEnum
	KindFlags
	KindOwn
	KindBorrow
	KindUnknown
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindS8:      "s8",
	KindU16:     "u16",
	KindS16:     "s16",
	KindU32:     "u32",
	KindS32:     "s32",
	KindU64:     "u64",
	KindS64:     "s64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindChar:    "char",
	KindString:  "string",
	KindRecord:  "record",
	KindList:    "list",
	KindVariant: "variant",
	KindOption:  "option",
	KindResult:  "result",
	KindTuple:   "tuple",
	KindEnum:    "enum",
	KindFlags:   "flags",
	KindOwn:     "own",
	KindBorrow:  "borrow",
	KindUnknown: "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindChar
}

// KindOf classifies t, looking through type aliases.
func KindOf(t wit.Type) Kind {
	switch t := t.(type) {
	case wit.Bool:
		return KindBool
	case wit.U8:
		return KindU8
	case wit.S8:
		return KindS8
	case wit.U16:
		return KindU16
	case wit.S16:
		return KindS16
	case wit.U32:
		return KindU32
	case wit.S32:
		return KindS32
	case wit.U64:
		return KindU64
	case wit.S64:
		return KindS64
	case wit.F32:
		return KindF32
	case wit.F64:
		return KindF64
	case wit.Char:
		return KindChar
	case wit.String:
		return KindString
	case *wit.TypeDef:
		switch k := t.Kind.(type) {
		case *wit.Record:
			return KindRecord
		case *wit.List:
			return KindList
		case *wit.Variant:
			return KindVariant
		case *wit.Option:
			return KindOption
		case *wit.Result:
			return KindResult
		case *wit.Tuple:
			return KindTuple
		case *wit.Enum:
			return KindEnum
		case *wit.Flags:
			return KindFlags
		case *wit.Own:
			return KindOwn
		case *wit.Borrow:
			return KindBorrow
		case wit.Type:
			return KindOf(k)
		}
	}
	return KindUnknown
}
