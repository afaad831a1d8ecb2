package patterns

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Pattern is the canonical, desugared pattern form the engine works on.
// The normalizer produces it from the surface AST; after normalization
// there are no or-patterns left (they are expanded into sibling rows) and
// struct patterns carry every field explicitly.
type Pattern interface {
	isPattern()
	String() string
}

// Wildcard matches anything and binds nothing.
type Wildcard struct{}

// Binding matches anything and binds it to Name.
type Binding struct {
	Name string
}

// LitInt matches one integer value.
type LitInt struct {
	Value int64
}

// LitBool matches one boolean value.
type LitBool struct {
	Value bool
}

// LitStr matches one string value.
type LitStr struct {
	Value string
}

// Variant matches one enum constructor and its payload.
type Variant struct {
	TypeName string
	Name     string
	Index    int
	Args     []Pattern
}

// Tuple matches a tuple positionally.
type Tuple struct {
	Elements []Pattern
}

// StructField is one field of a canonical struct pattern.
type StructField struct {
	Name    string
	Pattern Pattern
}

// Struct matches a struct type. Fields are sorted by name and complete:
// the normalizer expands `..` into explicit wildcards.
type Struct struct {
	TypeName string
	Fields   []StructField
}

// List matches a list by shape: fixed prefix, optional rest (possibly
// named), fixed suffix. Without a rest the shape is exact.
type List struct {
	Prefix  []Pattern
	HasRest bool
	Rest    string // binding name for the rest slice, may be empty
	Suffix  []Pattern
}

// Range matches integers in the inclusive interval [Lo, Hi]. Open bounds
// are clamped to the int64 domain by the normalizer.
type Range struct {
	Lo int64
	Hi int64
}

// At matches Inner and additionally binds the whole value to Name.
type At struct {
	Name  string
	Inner Pattern
}

func (Wildcard) isPattern() {}
func (Binding) isPattern()  {}
func (LitInt) isPattern()   {}
func (LitBool) isPattern()  {}
func (LitStr) isPattern()   {}
func (Variant) isPattern()  {}
func (Tuple) isPattern()    {}
func (Struct) isPattern()   {}
func (List) isPattern()     {}
func (Range) isPattern()    {}
func (At) isPattern()       {}

func (Wildcard) String() string { return "_" }

func (p Binding) String() string { return p.Name }

func (p LitInt) String() string { return strconv.FormatInt(p.Value, 10) }

func (p LitBool) String() string {
	if p.Value {
		return "true"
	}
	return "false"
}

func (p LitStr) String() string { return strconv.Quote(p.Value) }

func (p Variant) String() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return p.Name + "(" + strings.Join(args, ", ") + ")"
}

func (p Tuple) String() string {
	elems := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

func (p Struct) String() string {
	var sb strings.Builder
	sb.WriteString(p.TypeName)
	sb.WriteString("{")
	for i, f := range p.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Pattern.String())
	}
	sb.WriteString("}")
	return sb.String()
}

func (p List) String() string {
	parts := make([]string, 0, len(p.Prefix)+len(p.Suffix)+1)
	for _, e := range p.Prefix {
		parts = append(parts, e.String())
	}
	if p.HasRest {
		parts = append(parts, ".."+p.Rest)
	}
	for _, e := range p.Suffix {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p Range) String() string {
	return fmt.Sprintf("%d..=%d", p.Lo, p.Hi)
}

func (p At) String() string {
	return p.Name + " @ " + p.Inner.String()
}

// isWildcardLike reports whether a pattern matches every value of its
// type. At-patterns delegate to their inner pattern.
func isWildcardLike(p Pattern) bool {
	switch pat := p.(type) {
	case Wildcard, Binding:
		return true
	case At:
		return isWildcardLike(pat.Inner)
	default:
		return false
	}
}

// stripAt unwraps at-patterns; bindings are tracked separately, so the
// engine only cares about the structural core.
func stripAt(p Pattern) Pattern {
	for {
		at, ok := p.(At)
		if !ok {
			return p
		}
		p = at.Inner
	}
}

// bindingNames collects the set of names a pattern binds, sorted.
func bindingNames(p Pattern) []string {
	set := make(map[string]bool)
	collectNames(p, set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectNames(p Pattern, set map[string]bool) {
	switch pat := p.(type) {
	case Binding:
		set[pat.Name] = true
	case At:
		set[pat.Name] = true
		collectNames(pat.Inner, set)
	case Variant:
		for _, a := range pat.Args {
			collectNames(a, set)
		}
	case Tuple:
		for _, e := range pat.Elements {
			collectNames(e, set)
		}
	case Struct:
		for _, f := range pat.Fields {
			collectNames(f.Pattern, set)
		}
	case List:
		for _, e := range pat.Prefix {
			collectNames(e, set)
		}
		if pat.HasRest && pat.Rest != "" {
			set[pat.Rest] = true
		}
		for _, e := range pat.Suffix {
			collectNames(e, set)
		}
	}
}
