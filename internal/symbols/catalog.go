package symbols

import (
	"fmt"

	"github.com/upstat-io/sigil-lang-sub006/internal/config"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// Constructor describes one variant of an enum type: its source name, its
// declaration-order index (the runtime tag) and its payload types.
type Constructor struct {
	Name   string
	Index  int
	Fields []typesystem.Type
}

// Arity returns the number of payload fields.
func (c Constructor) Arity() int {
	return len(c.Fields)
}

// Signature describes the constructor space of a scrutinee type.
type Signature interface {
	signatureNode()
}

// Finite is a closed set of constructors (enums, Bool).
type Finite struct {
	TypeName     string
	Constructors []Constructor
}

// InfiniteDiscrete is an unbounded equality domain (Int, String). No
// finite arm set covers it without a wildcard or full range coverage.
type InfiniteDiscrete struct{}

// ListFamily is the length-indexed constructor family of List<Element>.
type ListFamily struct {
	Element typesystem.Type
}

func (Finite) signatureNode()           {}
func (InfiniteDiscrete) signatureNode() {}
func (ListFamily) signatureNode()       {}

type enumDecl struct {
	params       []string
	constructors []Constructor
}

type ctorRef struct {
	typeName string
	index    int
}

// Catalog is the read-only source of truth about declared types: which
// constructors an enum has, their arities and payload types, and the
// field sets of struct types. It is built once per compilation unit and
// then shared across concurrent match-site checks, so it must not be
// mutated after Freeze.
type Catalog struct {
	enums   map[string]enumDecl
	records map[string]map[string]typesystem.Type
	owners  map[string]ctorRef
	frozen  bool
}

// NewCatalog builds a catalog with the builtin Option and Result enums
// pre-registered.
func NewCatalog() *Catalog {
	c := &Catalog{
		enums:   make(map[string]enumDecl),
		records: make(map[string]map[string]typesystem.Type),
		owners:  make(map[string]ctorRef),
	}
	c.MustRegisterEnum(config.OptionTypeName, []string{"T"}, []Constructor{
		{Name: config.NoneCtorName},
		{Name: config.SomeCtorName, Fields: []typesystem.Type{typesystem.TCon{Name: "T"}}},
	})
	c.MustRegisterEnum(config.ResultTypeName, []string{"T", "E"}, []Constructor{
		{Name: config.OkCtorName, Fields: []typesystem.Type{typesystem.TCon{Name: "T"}}},
		{Name: config.ErrCtorName, Fields: []typesystem.Type{typesystem.TCon{Name: "E"}}},
	})
	return c
}

// RegisterEnum declares an enum type with ordered constructors. Params
// name the type parameters; payload types reference them as plain TCons
// and are instantiated per scrutinee in SignatureOf.
func (c *Catalog) RegisterEnum(name string, params []string, ctors []Constructor) error {
	if c.frozen {
		return fmt.Errorf("catalog is frozen")
	}
	if _, exists := c.enums[name]; exists {
		return fmt.Errorf("enum %s already registered", name)
	}
	indexed := make([]Constructor, len(ctors))
	for i, ctor := range ctors {
		if ref, dup := c.owners[ctor.Name]; dup {
			return fmt.Errorf("constructor %s already declared by %s", ctor.Name, ref.typeName)
		}
		ctor.Index = i
		indexed[i] = ctor
		c.owners[ctor.Name] = ctorRef{typeName: name, index: i}
	}
	c.enums[name] = enumDecl{params: params, constructors: indexed}
	return nil
}

// MustRegisterEnum is RegisterEnum for declarations the front end has
// already validated. A failure here is a compiler bug.
func (c *Catalog) MustRegisterEnum(name string, params []string, ctors []Constructor) {
	if err := c.RegisterEnum(name, params, ctors); err != nil {
		panic(err)
	}
}

// RegisterRecord declares a struct type's field set.
func (c *Catalog) RegisterRecord(name string, fields map[string]typesystem.Type) error {
	if c.frozen {
		return fmt.Errorf("catalog is frozen")
	}
	if _, exists := c.records[name]; exists {
		return fmt.Errorf("record %s already registered", name)
	}
	c.records[name] = fields
	return nil
}

// Freeze marks the catalog read-only. Called by the driver before any
// concurrent checking starts.
func (c *Catalog) Freeze() {
	c.frozen = true
}

// SignatureOf classifies a scrutinee type into its constructor space.
// Enum payload types are instantiated with the scrutinee's type
// arguments. Constructors with an uninhabited payload are omitted, so
// matching on Result<T, Never> does not demand an Err arm.
func (c *Catalog) SignatureOf(t typesystem.Type) (Signature, bool) {
	head := typesystem.HeadName(t)
	switch head {
	case config.IntTypeName, config.StringTypeName:
		return InfiniteDiscrete{}, true
	case config.BoolTypeName:
		return Finite{
			TypeName: config.BoolTypeName,
			Constructors: []Constructor{
				{Name: "false", Index: 0},
				{Name: "true", Index: 1},
			},
		}, true
	case config.ListTypeName:
		args := typesystem.TypeArgs(t)
		if len(args) != 1 {
			return nil, false
		}
		return ListFamily{Element: args[0]}, true
	}

	decl, ok := c.enums[head]
	if !ok {
		return nil, false
	}
	subst := bindParams(decl.params, typesystem.TypeArgs(t))
	ctors := make([]Constructor, 0, len(decl.constructors))
	for _, ctor := range decl.constructors {
		fields := make([]typesystem.Type, len(ctor.Fields))
		inhabited := true
		for i, f := range ctor.Fields {
			fields[i] = substitute(f, subst)
			if isUninhabited(fields[i]) {
				inhabited = false
			}
		}
		if !inhabited {
			continue
		}
		ctors = append(ctors, Constructor{Name: ctor.Name, Index: ctor.Index, Fields: fields})
	}
	return Finite{TypeName: head, Constructors: ctors}, true
}

// LookupConstructor resolves a constructor name to its owning enum and
// its declared form. Payload types are uninstantiated.
func (c *Catalog) LookupConstructor(name string) (string, Constructor, bool) {
	ref, ok := c.owners[name]
	if !ok {
		return "", Constructor{}, false
	}
	return ref.typeName, c.enums[ref.typeName].constructors[ref.index], true
}

// FieldsOf returns the declared fields of a struct type.
func (c *Catalog) FieldsOf(name string) (map[string]typesystem.Type, bool) {
	fields, ok := c.records[name]
	return fields, ok
}

// FieldTypeAt resolves a field type for a scrutinee that is either a
// registered record name or a structural TRecord.
func (c *Catalog) FieldTypeAt(t typesystem.Type, field string) (typesystem.Type, bool) {
	if rec, ok := t.(typesystem.TRecord); ok {
		ft, ok := rec.Fields[field]
		return ft, ok
	}
	fields, ok := c.records[typesystem.HeadName(t)]
	if !ok {
		return nil, false
	}
	ft, ok := fields[field]
	return ft, ok
}

func bindParams(params []string, args []typesystem.Type) map[string]typesystem.Type {
	subst := make(map[string]typesystem.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	return subst
}

func substitute(t typesystem.Type, subst map[string]typesystem.Type) typesystem.Type {
	switch typ := t.(type) {
	case typesystem.TCon:
		if repl, ok := subst[typ.Name]; ok {
			return repl
		}
		return typ
	case typesystem.TApp:
		args := make([]typesystem.Type, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = substitute(a, subst)
		}
		return typesystem.TApp{Constructor: substitute(typ.Constructor, subst), Args: args}
	case typesystem.TTuple:
		elems := make([]typesystem.Type, len(typ.Elements))
		for i, e := range typ.Elements {
			elems[i] = substitute(e, subst)
		}
		return typesystem.TTuple{Elements: elems}
	default:
		return t
	}
}

func isUninhabited(t typesystem.Type) bool {
	switch typ := t.(type) {
	case typesystem.TCon:
		return typ.Name == config.NeverTypeName
	case typesystem.TTuple:
		for _, e := range typ.Elements {
			if isUninhabited(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
