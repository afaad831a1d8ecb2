package typesystem

import (
	"sort"
	"strings"
)

// Type is the interface for all types the match checker can scrutinize.
// The surrounding front end has already run inference, so every type
// reaching this package is ground (no free type variables).
type Type interface {
	String() string
	typeNode()
}

// TCon is a named type constructor with no arguments (Int, Bool, String,
// or a user-declared enum or struct name).
type TCon struct {
	Name string
}

func (t TCon) typeNode() {}

func (t TCon) String() string {
	return t.Name
}

// TApp is an applied type constructor, e.g. Option<Int> or List<String>.
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) typeNode() {}

func (t TApp) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Constructor.String() + "<" + strings.Join(args, ", ") + ">"
}

// TTuple is a fixed-arity tuple type.
type TTuple struct {
	Elements []Type
}

func (t TTuple) typeNode() {}

func (t TTuple) String() string {
	elems := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// TRecord is a named struct type with its field types.
type TRecord struct {
	Name   string
	Fields map[string]Type
}

func (t TRecord) typeNode() {}

func (t TRecord) String() string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString("{")
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(t.Fields[name].String())
	}
	sb.WriteString("}")
	return sb.String()
}

// HeadName returns the outermost constructor name of a type, or "" when
// the type has no name (tuples).
func HeadName(t Type) string {
	switch typ := t.(type) {
	case TCon:
		return typ.Name
	case TApp:
		return HeadName(typ.Constructor)
	case TRecord:
		return typ.Name
	default:
		return ""
	}
}

// TypeArgs returns the arguments of an applied constructor, or nil.
func TypeArgs(t Type) []Type {
	if app, ok := t.(TApp); ok {
		return app.Args
	}
	return nil
}
