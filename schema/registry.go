package schema

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/errors"
)

// Registry holds the named types of a schema document.
//
// A document lists types under a top-level "types" mapping. Each entry is a
// type expression (an alias) or a mapping with exactly one of record,
// variant or enum:
//
//	types:
//	  point:
//	    record:
//	      x: s32
//	      y: s32
//	  shape:
//	    variant:
//	      circle: f64
//	      square: point
//	      empty:
//	  color:
//	    enum: [red, green, blue]
//	  path: list<point>
//
// Record fields and variant cases keep their document order, which is
// their wire order.
type Registry struct {
	specs    map[string]*yaml.Node
	types    map[string]wit.Type
	order    []string
	compiler *Compiler
	codecs   map[string]codec.Codec[any]

	mu sync.Mutex
}

// NewRegistry returns an empty registry. It still resolves expressions built
// from primitives.
func NewRegistry() *Registry {
	return &Registry{
		specs:    make(map[string]*yaml.Node),
		types:    make(map[string]wit.Type),
		compiler: NewCompiler(),
		codecs:   make(map[string]codec.Codec[any]),
	}
}

// Load reads and parses the schema document at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindIO, err, "read schema "+path)
	}
	return Parse(data)
}

// Parse builds a registry from a YAML schema document. Every declared type
// is resolved, so reference errors surface here.
func Parse(data []byte) (*Registry, error) {
	var doc struct {
		Types yaml.Node `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseFailed("schema document", err)
	}

	r := NewRegistry()
	if doc.Types.Kind == 0 {
		return r, nil
	}
	if doc.Types.Kind != yaml.MappingNode {
		return nil, nodeError(&doc.Types, "types must be a mapping")
	}
	for i := 0; i+1 < len(doc.Types.Content); i += 2 {
		key, spec := doc.Types.Content[i], doc.Types.Content[i+1]
		name := key.Value
		if _, ok := primitives[name]; ok || isBuiltin(name) {
			return nil, nodeError(key, fmt.Sprintf("type name %q is reserved", name))
		}
		if _, dup := r.specs[name]; dup {
			return nil, nodeError(key, fmt.Sprintf("type %q declared twice", name))
		}
		r.specs[name] = spec
		r.order = append(r.order, name)
	}

	for _, name := range r.order {
		if _, err := r.define(name, nil); err != nil {
			return nil, err
		}
	}
	Logger().Debug("schema parsed", zap.Int("types", len(r.order)))
	return r, nil
}

func isBuiltin(name string) bool {
	switch name {
	case "list", "option", "tuple", "result", "_":
		return true
	}
	return false
}

func nodeError(n *yaml.Node, msg string) error {
	return errors.ParseFailed("schema document", fmt.Errorf("line %d: %s", n.Line, msg))
}

// Names returns the declared type names in document order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Lookup returns the resolved type declared as name.
func (r *Registry) Lookup(name string) (wit.Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[name]
	return t, ok
}

// Resolve parses a type expression against the registry.
func (r *Registry) Resolve(expr string) (wit.Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return parseExpr(expr, func(name string) (wit.Type, error) {
		return r.define(name, nil)
	})
}

// Codec resolves expr and compiles it into a dynamic codec. Codecs are
// cached by expression, since every parse yields fresh type definitions.
func (r *Registry) Codec(expr string) (codec.Codec[any], error) {
	r.mu.Lock()
	c, ok := r.codecs[expr]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	t, err := r.Resolve(expr)
	if err != nil {
		return nil, err
	}
	if c, err = r.compiler.Compile(t); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.codecs[expr] = c
	r.mu.Unlock()
	return c, nil
}

// define resolves a declared name. stack holds the names being defined so
// recursive declarations are reported instead of followed.
func (r *Registry) define(name string, stack []string) (wit.Type, error) {
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	spec, ok := r.specs[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseParse, "type", name)
	}
	if slices.Contains(stack, name) {
		return nil, nodeError(spec, fmt.Sprintf("recursive type %s", chain(append(stack, name))))
	}
	stack = append(stack, name)
	ref := func(n string) (wit.Type, error) { return r.define(n, stack) }

	t, err := r.build(spec, ref)
	if err != nil {
		return nil, errors.WithPath(err, name)
	}
	r.types[name] = t
	return t, nil
}

func chain(names []string) string {
	s := names[0]
	for _, n := range names[1:] {
		s += " -> " + n
	}
	return s
}

func (r *Registry) build(spec *yaml.Node, ref func(string) (wit.Type, error)) (wit.Type, error) {
	if spec.Kind == yaml.ScalarNode {
		return parseExpr(spec.Value, ref)
	}
	if spec.Kind != yaml.MappingNode || len(spec.Content) != 2 {
		return nil, nodeError(spec, "type needs an expression or one of record, variant, enum")
	}
	form, body := spec.Content[0].Value, spec.Content[1]
	switch form {
	case "record":
		return buildRecord(body, ref)
	case "variant":
		return buildVariant(body, ref)
	case "enum":
		return buildEnum(body)
	case "alias":
		if body.Kind != yaml.ScalarNode {
			return nil, nodeError(body, "alias needs a type expression")
		}
		return parseExpr(body.Value, ref)
	}
	return nil, nodeError(spec.Content[0], fmt.Sprintf("unknown type form %q", form))
}

// pairs walks a mapping node in document order, rejecting repeated keys.
func pairs(n *yaml.Node, what string, fn func(key string, val *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return nodeError(n, what+" needs a mapping")
	}
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if seen[key] {
			return nodeError(n.Content[i], fmt.Sprintf("%s entry %q repeated", what, key))
		}
		seen[key] = true
		if err := fn(key, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "")
}

func buildRecord(body *yaml.Node, ref func(string) (wit.Type, error)) (wit.Type, error) {
	rec := &wit.Record{}
	err := pairs(body, "record", func(key string, val *yaml.Node) error {
		if val.Kind != yaml.ScalarNode || isNull(val) {
			return nodeError(val, fmt.Sprintf("field %q needs a type expression", key))
		}
		t, err := parseExpr(val.Value, ref)
		if err != nil {
			return errors.WithPath(err, key)
		}
		rec.Fields = append(rec.Fields, wit.Field{Name: key, Type: t})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &wit.TypeDef{Kind: rec}, nil
}

func buildVariant(body *yaml.Node, ref func(string) (wit.Type, error)) (wit.Type, error) {
	v := &wit.Variant{}
	err := pairs(body, "variant", func(key string, val *yaml.Node) error {
		c := wit.Case{Name: key}
		if !isNull(val) {
			if val.Kind != yaml.ScalarNode {
				return nodeError(val, fmt.Sprintf("case %q needs a type expression", key))
			}
			t, err := parseExpr(val.Value, ref)
			if err != nil {
				return errors.WithPath(err, key)
			}
			c.Type = t
		}
		v.Cases = append(v.Cases, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(v.Cases) == 0 {
		return nil, nodeError(body, "variant needs at least one case")
	}
	return &wit.TypeDef{Kind: v}, nil
}

func buildEnum(body *yaml.Node) (wit.Type, error) {
	var names []string
	if err := body.Decode(&names); err != nil {
		return nil, nodeError(body, "enum needs a list of case names")
	}
	if len(names) == 0 {
		return nil, nodeError(body, "enum needs at least one case")
	}
	e := &wit.Enum{}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, nodeError(body, fmt.Sprintf("enum case %q repeated", n))
		}
		seen[n] = true
		e.Cases = append(e.Cases, wit.EnumCase{Name: n})
	}
	return &wit.TypeDef{Kind: e}, nil
}
