package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/diagnostics"
	"github.com/upstat-io/sigil-lang-sub006/internal/patterns"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// MatchSite is one match expression queued for checking: the typed
// scrutinee, the arms, and a stable ID used to key the compiled artifact.
type MatchSite struct {
	ID        uuid.UUID
	Scrutinee typesystem.Type
	Match     *ast.MatchExpression
}

// NewMatchSite assigns a fresh site ID. The front end calls this once per
// match expression when it finishes type inference.
func NewMatchSite(scrutinee typesystem.Type, match *ast.MatchExpression) MatchSite {
	return MatchSite{ID: uuid.New(), Scrutinee: scrutinee, Match: match}
}

// UnitResult aggregates a compilation unit's checking outcome. Artifacts
// holds a decision tree per site that produced one; sites with hard
// errors have no entry.
type UnitResult struct {
	Diagnostics []*diagnostics.DiagnosticError
	Artifacts   map[uuid.UUID]patterns.DecisionTree
}

// HasErrors reports whether any site failed with a hard error.
func (r UnitResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if !d.IsWarning() {
			return true
		}
	}
	return false
}

// CheckUnit checks every match site of a compilation unit. Sites are
// independent, so each runs on its own goroutine against the shared
// read-only catalog; per-site state is never shared. Diagnostics come
// back in stable source order regardless of scheduling.
func CheckUnit(catalog *symbols.Catalog, sites []MatchSite) UnitResult {
	catalog.Freeze()

	results := make([]patterns.CheckResult, len(sites))
	var wg sync.WaitGroup
	for i, site := range sites {
		wg.Add(1)
		go func(i int, site MatchSite) {
			defer wg.Done()
			results[i] = patterns.CheckMatch(catalog, site.Scrutinee, site.Match)
		}(i, site)
	}
	wg.Wait()

	out := UnitResult{Artifacts: make(map[uuid.UUID]patterns.DecisionTree, len(sites))}
	for i, res := range results {
		out.Diagnostics = append(out.Diagnostics, res.Diagnostics...)
		if res.Tree != nil && !res.HasErrors() {
			out.Artifacts[sites[i].ID] = res.Tree
		}
	}
	diagnostics.SortStable(out.Diagnostics)
	return out
}
