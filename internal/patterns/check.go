package patterns

import (
	"fmt"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/diagnostics"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// CheckResult is the outcome of checking one match site. Tree is nil
// when any hard error was found; warnings alone do not block
// compilation.
type CheckResult struct {
	Tree        DecisionTree
	Diagnostics []*diagnostics.DiagnosticError
}

// HasErrors reports whether any diagnostic is a hard error.
func (r CheckResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if !d.IsWarning() {
			return true
		}
	}
	return false
}

// CheckMatch verifies one match site and compiles its decision tree.
// It reports non-exhaustiveness with a concrete witness, per-arm
// reachability, and range overlap warnings. The catalog is only read.
func CheckMatch(catalog *symbols.Catalog, scrutinee typesystem.Type, match *ast.MatchExpression) CheckResult {
	var diags []*diagnostics.DiagnosticError

	rows, derr := BuildRows(NewNormalizer(catalog), match.Arms, scrutinee)
	if derr != nil {
		return CheckResult{Diagnostics: []*diagnostics.DiagnosticError{derr}}
	}

	e := &engine{catalog: catalog}
	types := []typesystem.Type{scrutinee}

	// Exhaustiveness. Guarded rows cannot prove coverage, so they are
	// excluded; a second query with guards ignored tells a plain gap
	// apart from guard-dependent coverage.
	unguarded := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.guarded() {
			unguarded = append(unguarded, r)
		}
	}
	open, w, err := e.useful(unguarded, []Pattern{Wildcard{}}, types, 0)
	if err != nil {
		return CheckResult{Diagnostics: []*diagnostics.DiagnosticError{
			diagnostics.NewError(diagnostics.ErrM006, match.Token),
		}}
	}
	if open {
		witness := w[0]
		ignoringGuards := make([]Row, len(rows))
		for i, r := range rows {
			ignoringGuards[i] = Row{Patterns: r.Patterns, ArmIndex: r.ArmIndex, Bindings: r.Bindings}
		}
		stillOpen, _, err := e.useful(ignoringGuards, []Pattern{Wildcard{}}, types, 0)
		if err != nil {
			return CheckResult{Diagnostics: []*diagnostics.DiagnosticError{
				diagnostics.NewError(diagnostics.ErrM006, match.Token),
			}}
		}
		if stillOpen {
			diags = append(diags, diagnostics.NewMatchError(diagnostics.ErrM001, match.Token,
				fmt.Sprintf("match is not exhaustive: '%s' is not covered; add a pattern or a '_' arm", witness)))
		} else {
			diags = append(diags, diagnostics.NewMatchError(diagnostics.ErrM002, match.Token,
				fmt.Sprintf("guards never prove completeness: '%s' is only covered when a guard passes", witness)))
		}
		return CheckResult{Diagnostics: diags}
	}

	// Reachability. Guarded rows are checked but never shadow later
	// rows, since their guard may fail at runtime.
	armReachable := make([]bool, len(match.Arms))
	var prefix []Row
	for _, r := range rows {
		reachable, _, err := e.useful(prefix, r.Patterns, types, 0)
		if err != nil {
			return CheckResult{Diagnostics: []*diagnostics.DiagnosticError{
				diagnostics.NewError(diagnostics.ErrM006, match.Token),
			}}
		}
		if reachable {
			armReachable[r.ArmIndex] = true
		}
		if !r.guarded() {
			prefix = append(prefix, r)
		}
	}
	for i, reachable := range armReachable {
		if !reachable {
			diags = append(diags, diagnostics.NewError(diagnostics.WarnM001,
				armToken(match.Arms[i], match.Token),
				fmt.Sprintf("arm %d can never match; earlier arms already cover it", i+1)))
		}
	}

	diags = append(diags, rangeOverlapWarnings(rows, match)...)

	tree, cerr := CompileTree(catalog, rows, scrutinee)
	if cerr != nil {
		diags = append(diags, diagnostics.NewError(diagnostics.ErrM006, match.Token))
		return CheckResult{Diagnostics: diags}
	}
	return CheckResult{Tree: tree, Diagnostics: diags}
}

// rangeOverlapWarnings flags top-level integer ranges that intersect a
// range of an earlier arm. Later arms get the warning; the earlier arm
// established the coverage.
func rangeOverlapWarnings(rows []Row, match *ast.MatchExpression) []*diagnostics.DiagnosticError {
	type armInterval struct {
		iv  interval
		arm int
	}
	var seen []armInterval
	warned := make(map[int]bool)
	var out []*diagnostics.DiagnosticError
	for _, r := range rows {
		// Plain literals never warn; duplicated literals already surface
		// as unreachable arms.
		rng, ok := stripAt(r.Patterns[0]).(Range)
		if !ok {
			continue
		}
		iv := interval{lo: rng.Lo, hi: rng.Hi}
		for _, prev := range seen {
			if prev.arm != r.ArmIndex && prev.iv.overlaps(iv) && !warned[r.ArmIndex] {
				warned[r.ArmIndex] = true
				out = append(out, diagnostics.NewError(diagnostics.WarnM002,
					armToken(match.Arms[r.ArmIndex], match.Token),
					fmt.Sprintf("range %s overlaps an earlier arm's range", rng)))
			}
		}
		seen = append(seen, armInterval{iv: iv, arm: r.ArmIndex})
	}
	return out
}

func armToken(arm *ast.MatchArm, fallback token.Token) token.Token {
	if arm != nil && arm.Pattern != nil {
		return arm.Pattern.GetToken()
	}
	return fallback
}
