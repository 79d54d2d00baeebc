package schema

import (
	"math"
	"slices"
	"strconv"
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/errors"
)

// Compiler turns WIT types into dynamic Borsh codecs over plain Go values.
// Compiled type definitions are cached, so a Compiler should be reused for
// the types of one schema. It is safe for concurrent use.
type Compiler struct {
	mu       sync.Mutex
	cache    map[*wit.TypeDef]codec.Codec[any]
	inflight map[*wit.TypeDef]bool
}

func NewCompiler() *Compiler {
	return &Compiler{
		cache:    make(map[*wit.TypeDef]codec.Codec[any]),
		inflight: make(map[*wit.TypeDef]bool),
	}
}

var defaultCompiler = NewCompiler()

// Compile builds a codec for t with a shared compiler.
func Compile(t wit.Type) (codec.Codec[any], error) {
	return defaultCompiler.Compile(t)
}

func (c *Compiler) Compile(t wit.Type) (codec.Codec[any], error) {
	if t == nil {
		return nil, errors.New(errors.PhaseSchema, errors.KindNilPointer).
			Detail("WIT type cannot be nil").
			Build()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compile(t, nil)
}

func (c *Compiler) compile(t wit.Type, path []string) (codec.Codec[any], error) {
	switch t := t.(type) {
	case wit.Bool:
		return boolNode{}, nil
	case wit.U8:
		return unsignedNode[uint8]{c: codec.U8, limit: math.MaxUint8, kind: KindU8}, nil
	case wit.U16:
		return unsignedNode[uint16]{c: codec.U16, limit: math.MaxUint16, kind: KindU16}, nil
	case wit.U32:
		return unsignedNode[uint32]{c: codec.U32, limit: math.MaxUint32, kind: KindU32}, nil
	case wit.U64:
		return unsignedNode[uint64]{c: codec.U64, limit: math.MaxUint64, kind: KindU64}, nil
	case wit.S8:
		return signedNode[int8]{c: codec.I8, lo: math.MinInt8, hi: math.MaxInt8, kind: KindS8}, nil
	case wit.S16:
		return signedNode[int16]{c: codec.I16, lo: math.MinInt16, hi: math.MaxInt16, kind: KindS16}, nil
	case wit.S32:
		return signedNode[int32]{c: codec.I32, lo: math.MinInt32, hi: math.MaxInt32, kind: KindS32}, nil
	case wit.S64:
		return signedNode[int64]{c: codec.I64, lo: math.MinInt64, hi: math.MaxInt64, kind: KindS64}, nil
	case wit.F32:
		return f32Node{}, nil
	case wit.F64:
		return f64Node{}, nil
	case wit.Char:
		return charNode{}, nil
	case wit.String:
		return stringNode{}, nil
	case *wit.TypeDef:
		return c.compileTypeDef(t, path)
	default:
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

func (c *Compiler) compileTypeDef(t *wit.TypeDef, path []string) (codec.Codec[any], error) {
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}
	if c.inflight[t] {
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			Detail("recursive type definition").
			Build()
	}
	c.inflight[t] = true
	defer delete(c.inflight, t)

	node, err := c.compileKind(t, path)
	if err != nil {
		return nil, err
	}
	c.cache[t] = node
	Logger().Debug("compiled type",
		zap.Stringer("kind", KindOf(t)),
		zap.Strings("path", path))
	return node, nil
}

func (c *Compiler) compileKind(t *wit.TypeDef, path []string) (codec.Codec[any], error) {
	switch k := t.Kind.(type) {
	case *wit.Record:
		return c.compileRecord(k, path)
	case *wit.List:
		if _, isByte := k.Type.(wit.U8); isByte {
			return bytesNode{}, nil
		}
		elem, err := c.compile(k.Type, sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		return newListNode(elem), nil
	case *wit.Tuple:
		elems := make([]codec.Codec[any], len(k.Types))
		for i, et := range k.Types {
			ec, err := c.compile(et, sub(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			elems[i] = ec
		}
		return tupleNode{elems: elems}, nil
	case *wit.Enum:
		return c.compileEnum(k, path)
	case *wit.Option:
		elem, err := c.compile(k.Type, path)
		if err != nil {
			return nil, err
		}
		return newOptionNode(elem, KindOf(k.Type) == KindOption), nil
	case *wit.Result:
		return c.compileResult(k, path)
	case *wit.Variant:
		return c.compileVariant(k, path)
	case *wit.Flags:
		return nil, unsupported(KindFlags, path)
	case *wit.Own:
		return nil, unsupported(KindOwn, path)
	case *wit.Borrow:
		return nil, unsupported(KindBorrow, path)
	case wit.Type:
		return c.compile(k, path)
	default:
		return nil, errors.New(errors.PhaseSchema, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported TypeDef kind: %T", t.Kind).
			Build()
	}
}

func unsupported(kind Kind, path []string) error {
	return errors.New(errors.PhaseSchema, errors.KindUnsupported).
		Path(path...).
		WitType(kind.String()).
		Detail("no Borsh representation").
		Build()
}

func (c *Compiler) compileRecord(r *wit.Record, path []string) (codec.Codec[any], error) {
	fields := make([]field, len(r.Fields))
	seen := make(map[string]bool, len(r.Fields))
	for i, f := range r.Fields {
		if seen[f.Name] {
			return nil, errors.InvalidData(errors.PhaseSchema, path, "duplicate field "+f.Name)
		}
		seen[f.Name] = true
		fc, err := c.compile(f.Type, sub(path, f.Name))
		if err != nil {
			return nil, err
		}
		fields[i] = field{name: f.Name, c: fc, optional: KindOf(f.Type) == KindOption}
	}
	return newRecordNode(fields), nil
}

func (c *Compiler) compileEnum(e *wit.Enum, path []string) (codec.Codec[any], error) {
	if len(e.Cases) > math.MaxUint8+1 {
		return nil, errors.DiscriminantTooLarge(path, len(e.Cases)-1)
	}
	names := make([]string, len(e.Cases))
	for i, ec := range e.Cases {
		names[i] = ec.Name
	}
	return newEnumNode(names), nil
}

func (c *Compiler) compileVariant(v *wit.Variant, path []string) (codec.Codec[any], error) {
	if len(v.Cases) > math.MaxUint8+1 {
		return nil, errors.DiscriminantTooLarge(path, len(v.Cases)-1)
	}
	cases := make([]variantCase, len(v.Cases))
	for i, vc := range v.Cases {
		cases[i].name = vc.Name
		if vc.Type == nil {
			continue
		}
		pc, err := c.compile(vc.Type, sub(path, vc.Name))
		if err != nil {
			return nil, err
		}
		cases[i].payload = pc
	}
	return newVariantNode(KindVariant, cases), nil
}

// Results use the Borsh convention: err is tag 0 and ok is tag 1.
func (c *Compiler) compileResult(r *wit.Result, path []string) (codec.Codec[any], error) {
	cases := []variantCase{{name: "err"}, {name: "ok"}}
	if r.Err != nil {
		ec, err := c.compile(r.Err, sub(path, "err"))
		if err != nil {
			return nil, err
		}
		cases[0].payload = ec
	}
	if r.OK != nil {
		oc, err := c.compile(r.OK, sub(path, "ok"))
		if err != nil {
			return nil, err
		}
		cases[1].payload = oc
	}
	return newVariantNode(KindResult, cases), nil
}

func sub(path []string, seg string) []string {
	return append(slices.Clip(path), seg)
}
