package pipeline

import (
	"testing"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/diagnostics"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

func tokAt(line int) token.Token {
	return token.Token{Type: token.MATCH, Lexeme: "match", Line: line, Column: 1}
}

func wildAt(line int) ast.Pattern {
	return &ast.WildcardPattern{Token: tokAt(line)}
}

func ctorAt(line int, name string, args ...ast.Pattern) ast.Pattern {
	return &ast.ConstructorPattern{
		Token:    tokAt(line),
		Name:     &ast.Identifier{Token: tokAt(line), Value: name},
		Elements: args,
	}
}

func bindAt(line int, name string) ast.Pattern {
	return &ast.IdentifierPattern{Token: tokAt(line), Value: name}
}

func matchAt(line int, arms ...*ast.MatchArm) *ast.MatchExpression {
	return &ast.MatchExpression{
		Token:      tokAt(line),
		Expression: &ast.Identifier{Token: tokAt(line), Value: "subject"},
		Arms:       arms,
	}
}

func armOf(p ast.Pattern) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p, Expression: &ast.Identifier{Token: p.GetToken(), Value: "body"}}
}

var tInt = typesystem.TCon{Name: "Int"}

func tOptionInt() typesystem.Type {
	return typesystem.TApp{Constructor: typesystem.TCon{Name: "Option"}, Args: []typesystem.Type{tInt}}
}

func TestCheckUnitArtifactsPerSite(t *testing.T) {
	clean := NewMatchSite(tOptionInt(), matchAt(1,
		armOf(ctorAt(1, "Some", bindAt(1, "x"))),
		armOf(ctorAt(1, "None")),
	))
	broken := NewMatchSite(tOptionInt(), matchAt(2,
		armOf(ctorAt(2, "Some", bindAt(2, "x"))),
	))

	res := CheckUnit(symbols.NewCatalog(), []MatchSite{clean, broken})

	if !res.HasErrors() {
		t.Error("unit with a non-exhaustive site should report errors")
	}
	if _, ok := res.Artifacts[clean.ID]; !ok {
		t.Error("clean site should have a compiled artifact")
	}
	if _, ok := res.Artifacts[broken.ID]; ok {
		t.Error("failing site must not have an artifact")
	}
}

func TestCheckUnitWarningSiteStillCompiles(t *testing.T) {
	site := NewMatchSite(tOptionInt(), matchAt(1,
		armOf(ctorAt(1, "Some", bindAt(1, "x"))),
		armOf(ctorAt(1, "None")),
		armOf(wildAt(1)),
	))

	res := CheckUnit(symbols.NewCatalog(), []MatchSite{site})

	if res.HasErrors() {
		t.Fatalf("unreachable-arm warnings are not errors: %v", res.Diagnostics)
	}
	if len(res.Diagnostics) == 0 || res.Diagnostics[0].Code != diagnostics.WarnM001 {
		t.Errorf("expected an unreachable-arm warning, got %v", res.Diagnostics)
	}
	if _, ok := res.Artifacts[site.ID]; !ok {
		t.Error("warning site should still produce an artifact")
	}
}

func TestCheckUnitDiagnosticsInSourceOrder(t *testing.T) {
	// Sites are queued out of source order; diagnostics still come back
	// sorted by position.
	sites := []MatchSite{
		NewMatchSite(tOptionInt(), matchAt(30, armOf(ctorAt(30, "None")))),
		NewMatchSite(tOptionInt(), matchAt(10, armOf(ctorAt(10, "None")))),
		NewMatchSite(tOptionInt(), matchAt(20, armOf(ctorAt(20, "None")))),
	}

	res := CheckUnit(symbols.NewCatalog(), sites)

	if len(res.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(res.Diagnostics))
	}
	for i, want := range []int{10, 20, 30} {
		if res.Diagnostics[i].Line != want {
			t.Errorf("diagnostic %d at line %d, want %d", i, res.Diagnostics[i].Line, want)
		}
	}
}

func TestNewMatchSiteAssignsDistinctIDs(t *testing.T) {
	m := matchAt(1, armOf(wildAt(1)))
	a := NewMatchSite(tInt, m)
	b := NewMatchSite(tInt, m)
	if a.ID == b.ID {
		t.Error("sites must get distinct IDs")
	}
}

func TestCheckUnitEmpty(t *testing.T) {
	res := CheckUnit(symbols.NewCatalog(), nil)
	if res.HasErrors() || len(res.Artifacts) != 0 {
		t.Errorf("empty unit should be clean, got %+v", res)
	}
}
