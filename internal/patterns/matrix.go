package patterns

import (
	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/config"
	"github.com/upstat-io/sigil-lang-sub006/internal/diagnostics"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// Row is one matrix row: the patterns still to be matched (one per
// column), the arm it came from, the arm's guard, and the bindings the
// arm introduces. Or-pattern expansion means several rows can share an
// arm index. Rows are immutable; specialization builds new ones.
type Row struct {
	Patterns []Pattern
	ArmIndex int
	Guard    ast.Expression // nil when the arm is unguarded
	Bindings []BoundName
}

func (r Row) guarded() bool {
	return r.Guard != nil
}

// withPatterns derives a row with new column patterns, keeping arm,
// guard and bindings.
func (r Row) withPatterns(pats []Pattern) Row {
	return Row{Patterns: pats, ArmIndex: r.ArmIndex, Guard: r.Guard, Bindings: r.Bindings}
}

// BuildRows normalizes a match site's arms into the initial matrix. Each
// arm contributes one row per or-expansion alternative; bindings are
// resolved to scrutinee paths up front so they survive specialization
// unchanged.
func BuildRows(n *Normalizer, arms []*ast.MatchArm, scrutinee typesystem.Type) ([]Row, *diagnostics.DiagnosticError) {
	var rows []Row
	for i, arm := range arms {
		alts, err := n.Normalize(arm.Pattern, scrutinee)
		if err != nil {
			return nil, err
		}
		for _, alt := range alts {
			var binds []BoundName
			collectBindings(alt, nil, &binds)
			rows = append(rows, Row{
				Patterns: []Pattern{alt},
				ArmIndex: i,
				Guard:    arm.Guard,
				Bindings: binds,
			})
		}
		if len(rows) > config.MaxMatrixRows {
			return nil, diagnostics.NewError(diagnostics.ErrM006, arm.Pattern.GetToken())
		}
	}
	return rows, nil
}

func collectBindings(p Pattern, path ScrutineePath, binds *[]BoundName) {
	switch pat := p.(type) {
	case Binding:
		*binds = append(*binds, BoundName{Name: pat.Name, Path: path})
	case At:
		*binds = append(*binds, BoundName{Name: pat.Name, Path: path})
		collectBindings(pat.Inner, path, binds)
	case Variant:
		for i, arg := range pat.Args {
			collectBindings(arg, path.extend(PathInstruction{Kind: PathTagPayload, Index: i}), binds)
		}
	case Tuple:
		for i, elem := range pat.Elements {
			collectBindings(elem, path.extend(PathInstruction{Kind: PathTupleIndex, Index: i}), binds)
		}
	case Struct:
		for _, f := range pat.Fields {
			collectBindings(f.Pattern, path.extend(PathInstruction{Kind: PathStructField, Field: f.Name}), binds)
		}
	case List:
		for i, elem := range pat.Prefix {
			collectBindings(elem, path.extend(PathInstruction{Kind: PathListElement, Index: i}), binds)
		}
		if pat.HasRest && pat.Rest != "" {
			*binds = append(*binds, BoundName{
				Name: pat.Rest,
				Path: path.extend(PathInstruction{Kind: PathListRest, Index: len(pat.Prefix), Drop: len(pat.Suffix)}),
			})
		}
		for j, elem := range pat.Suffix {
			collectBindings(elem, path.extend(PathInstruction{Kind: PathListFromEnd, Index: len(pat.Suffix) - j}), binds)
		}
	}
}
