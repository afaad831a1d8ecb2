package patterns

import (
	"fmt"
	"math"
	"sort"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/config"
	"github.com/upstat-io/sigil-lang-sub006/internal/diagnostics"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// Normalizer lowers surface patterns into canonical form. Or-patterns are
// expanded on the spot, so one surface pattern becomes one or more
// canonical alternatives; every alternative matches exactly the values
// the surface pattern matched.
type Normalizer struct {
	catalog *symbols.Catalog
}

func NewNormalizer(catalog *symbols.Catalog) *Normalizer {
	return &Normalizer{catalog: catalog}
}

// Normalize lowers one surface pattern against its scrutinee type. The
// type may be nil when the caller has no type information; catalog-driven
// checks that need it are then skipped.
func (n *Normalizer) Normalize(p ast.Pattern, t typesystem.Type) ([]Pattern, *diagnostics.DiagnosticError) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return []Pattern{Wildcard{}}, nil

	case *ast.IdentifierPattern:
		return []Pattern{Binding{Name: pat.Value}}, nil

	case *ast.LiteralPattern:
		return n.normalizeLiteral(pat)

	case *ast.ConstructorPattern:
		return n.normalizeConstructor(pat, t)

	case *ast.TuplePattern:
		return n.normalizeTuple(pat, t)

	case *ast.RecordPattern:
		return n.normalizeRecord(pat, t)

	case *ast.ListPattern:
		return n.normalizeList(pat, t)

	case *ast.RangePattern:
		return n.normalizeRange(pat)

	case *ast.OrPattern:
		return n.normalizeOr(pat, t)

	case *ast.AtPattern:
		inner, err := n.Normalize(pat.Pattern, t)
		if err != nil {
			return nil, err
		}
		out := make([]Pattern, len(inner))
		for i, alt := range inner {
			out[i] = At{Name: pat.Name, Inner: alt}
		}
		return out, nil

	default:
		return nil, diagnostics.NewError(diagnostics.ErrM007, p.GetToken(),
			fmt.Sprintf("pattern form %T is not matchable", p))
	}
}

func (n *Normalizer) normalizeLiteral(pat *ast.LiteralPattern) ([]Pattern, *diagnostics.DiagnosticError) {
	switch v := pat.Value.(type) {
	case int64:
		return []Pattern{LitInt{Value: v}}, nil
	case int:
		return []Pattern{LitInt{Value: int64(v)}}, nil
	case bool:
		return []Pattern{LitBool{Value: v}}, nil
	case string:
		return []Pattern{LitStr{Value: v}}, nil
	default:
		return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token,
			fmt.Sprintf("literal %v is not matchable", pat.Value))
	}
}

func (n *Normalizer) normalizeConstructor(pat *ast.ConstructorPattern, t typesystem.Type) ([]Pattern, *diagnostics.DiagnosticError) {
	name := pat.Name.Value
	typeName, decl, ok := n.catalog.LookupConstructor(name)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrM005, pat.Token,
			fmt.Sprintf("unknown constructor '%s'", name))
	}
	if len(pat.Elements) != decl.Arity() {
		return nil, diagnostics.NewError(diagnostics.ErrM005, pat.Token,
			fmt.Sprintf("constructor '%s' takes %d arguments, pattern has %d",
				name, decl.Arity(), len(pat.Elements)))
	}

	// Prefer payload types instantiated with the scrutinee's type
	// arguments; fall back to the declared (generic) payload types.
	fields := decl.Fields
	if t != nil {
		if sig, ok := n.catalog.SignatureOf(t); ok {
			if fin, ok := sig.(symbols.Finite); ok && fin.TypeName == typeName {
				for _, ctor := range fin.Constructors {
					if ctor.Name == name {
						fields = ctor.Fields
						break
					}
				}
			}
		}
	}

	alts, err := n.normalizeAll(pat.Elements, fields)
	if err != nil {
		return nil, err
	}
	out := make([]Pattern, len(alts))
	for i, args := range alts {
		out[i] = Variant{TypeName: typeName, Name: name, Index: decl.Index, Args: args}
	}
	return out, nil
}

func (n *Normalizer) normalizeTuple(pat *ast.TuplePattern, t typesystem.Type) ([]Pattern, *diagnostics.DiagnosticError) {
	var elemTypes []typesystem.Type
	if tup, ok := t.(typesystem.TTuple); ok && len(tup.Elements) == len(pat.Elements) {
		elemTypes = tup.Elements
	} else {
		elemTypes = make([]typesystem.Type, len(pat.Elements))
	}
	alts, err := n.normalizeAll(pat.Elements, elemTypes)
	if err != nil {
		return nil, err
	}
	out := make([]Pattern, len(alts))
	for i, elems := range alts {
		out[i] = Tuple{Elements: elems}
	}
	return out, nil
}

func (n *Normalizer) normalizeRecord(pat *ast.RecordPattern, t typesystem.Type) ([]Pattern, *diagnostics.DiagnosticError) {
	typeName := pat.TypeName
	if typeName == "" {
		typeName = typesystem.HeadName(t)
	}

	declared, ok := n.catalog.FieldsOf(typeName)
	if !ok {
		if rec, isRec := t.(typesystem.TRecord); isRec {
			declared = rec.Fields
		} else {
			return nil, diagnostics.NewError(diagnostics.ErrM003, pat.Token,
				fmt.Sprintf("unknown struct type '%s'", typeName))
		}
	}

	listed := make(map[string]ast.Pattern, len(pat.Fields))
	for _, f := range pat.Fields {
		if _, dup := listed[f.Name]; dup {
			return nil, diagnostics.NewError(diagnostics.ErrM003, pat.Token,
				fmt.Sprintf("field '%s' listed twice", f.Name))
		}
		if _, exists := declared[f.Name]; !exists {
			return nil, diagnostics.NewError(diagnostics.ErrM003, pat.Token,
				fmt.Sprintf("struct '%s' has no field '%s'", typeName, f.Name))
		}
		listed[f.Name] = f.Pattern
	}
	if !pat.HasRest && len(listed) != len(declared) {
		missing := make([]string, 0)
		for name := range declared {
			if _, ok := listed[name]; !ok {
				missing = append(missing, name)
			}
		}
		sort.Strings(missing)
		return nil, diagnostics.NewError(diagnostics.ErrM003, pat.Token,
			fmt.Sprintf("struct '%s' fields not matched: %v (add '..' to ignore)", typeName, missing))
	}

	// Canonical field order is sorted by name; unlisted fields become
	// explicit wildcards.
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)

	subPatterns := make([]ast.Pattern, 0, len(names))
	subTypes := make([]typesystem.Type, 0, len(names))
	for _, name := range names {
		if fp, ok := listed[name]; ok {
			subPatterns = append(subPatterns, fp)
		} else {
			subPatterns = append(subPatterns, nil)
		}
		subTypes = append(subTypes, declared[name])
	}

	alts, err := n.normalizeAllSparse(subPatterns, subTypes)
	if err != nil {
		return nil, err
	}
	out := make([]Pattern, len(alts))
	for i, subs := range alts {
		fields := make([]StructField, len(names))
		for j, name := range names {
			fields[j] = StructField{Name: name, Pattern: subs[j]}
		}
		out[i] = Struct{TypeName: typeName, Fields: fields}
	}
	return out, nil
}

func (n *Normalizer) normalizeList(pat *ast.ListPattern, t typesystem.Type) ([]Pattern, *diagnostics.DiagnosticError) {
	var elemType typesystem.Type
	if sig, ok := n.catalog.SignatureOf(t); ok {
		if lf, ok := sig.(symbols.ListFamily); ok {
			elemType = lf.Element
		}
	}

	restAt := -1
	restName := ""
	for i, e := range pat.Elements {
		if spread, ok := e.(*ast.SpreadPattern); ok {
			if restAt >= 0 {
				return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token,
					"list pattern has more than one rest")
			}
			restAt = i
			restName = spread.Name
		}
	}

	prefixSrc := pat.Elements
	var suffixSrc []ast.Pattern
	hasRest := restAt >= 0
	if hasRest {
		prefixSrc = pat.Elements[:restAt]
		suffixSrc = pat.Elements[restAt+1:]
	}

	fixed := make([]ast.Pattern, 0, len(prefixSrc)+len(suffixSrc))
	fixed = append(fixed, prefixSrc...)
	fixed = append(fixed, suffixSrc...)
	types := make([]typesystem.Type, len(fixed))
	for i := range types {
		types[i] = elemType
	}

	alts, err := n.normalizeAll(fixed, types)
	if err != nil {
		return nil, err
	}
	out := make([]Pattern, len(alts))
	for i, subs := range alts {
		out[i] = List{
			Prefix:  subs[:len(prefixSrc)],
			HasRest: hasRest,
			Rest:    restName,
			Suffix:  subs[len(prefixSrc):],
		}
	}
	return out, nil
}

func (n *Normalizer) normalizeRange(pat *ast.RangePattern) ([]Pattern, *diagnostics.DiagnosticError) {
	lo := int64(math.MinInt64)
	hi := int64(math.MaxInt64)
	if pat.Low != nil {
		v, ok := intLiteral(pat.Low)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token,
				"range bounds must be integer literals")
		}
		lo = v
	}
	if pat.High != nil {
		v, ok := intLiteral(pat.High)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token,
				"range bounds must be integer literals")
		}
		hi = v
		if !pat.Inclusive {
			if hi == math.MinInt64 {
				return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token, "range is empty")
			}
			hi--
		}
	}
	if lo > hi {
		return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token, "range is empty")
	}
	if lo == hi {
		return []Pattern{LitInt{Value: lo}}, nil
	}
	return []Pattern{Range{Lo: lo, Hi: hi}}, nil
}

func (n *Normalizer) normalizeOr(pat *ast.OrPattern, t typesystem.Type) ([]Pattern, *diagnostics.DiagnosticError) {
	if len(pat.Alternatives) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrM007, pat.Token, "empty or-pattern")
	}
	var out []Pattern
	var firstNames []string
	for i, alt := range pat.Alternatives {
		alts, err := n.Normalize(alt, t)
		if err != nil {
			return nil, err
		}
		names := bindingNames(alts[0])
		if i == 0 {
			firstNames = names
		} else if !sameNames(firstNames, names) {
			return nil, diagnostics.NewError(diagnostics.ErrM004, pat.Token,
				fmt.Sprintf("alternative %d binds %v, first binds %v", i+1, names, firstNames))
		}
		out = append(out, alts...)
		if len(out) > config.MaxMatrixRows {
			return nil, diagnostics.NewError(diagnostics.ErrM006, pat.Token)
		}
	}
	return out, nil
}

// normalizeAll lowers a slice of sub-patterns and builds the cartesian
// product of their alternatives.
func (n *Normalizer) normalizeAll(pats []ast.Pattern, types []typesystem.Type) ([][]Pattern, *diagnostics.DiagnosticError) {
	return n.normalizeAllSparse(pats, types)
}

// normalizeAllSparse is normalizeAll where a nil surface pattern stands
// for an implicit wildcard (used for struct field expansion).
func (n *Normalizer) normalizeAllSparse(pats []ast.Pattern, types []typesystem.Type) ([][]Pattern, *diagnostics.DiagnosticError) {
	product := [][]Pattern{{}}
	for i, p := range pats {
		var alts []Pattern
		if p == nil {
			alts = []Pattern{Wildcard{}}
		} else {
			var t typesystem.Type
			if i < len(types) {
				t = types[i]
			}
			var err *diagnostics.DiagnosticError
			alts, err = n.Normalize(p, t)
			if err != nil {
				return nil, err
			}
		}
		next := make([][]Pattern, 0, len(product)*len(alts))
		for _, row := range product {
			for _, alt := range alts {
				extended := make([]Pattern, len(row)+1)
				copy(extended, row)
				extended[len(row)] = alt
				next = append(next, extended)
			}
		}
		if len(next) > config.MaxMatrixRows {
			var tok token.Token
			if p != nil {
				tok = p.GetToken()
			}
			return nil, diagnostics.NewError(diagnostics.ErrM006, tok)
		}
		product = next
	}
	return product, nil
}

func intLiteral(lit *ast.LiteralPattern) (int64, bool) {
	switch v := lit.Value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
