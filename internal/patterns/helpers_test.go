package patterns

import (
	"testing"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/diagnostics"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

func testTok() token.Token {
	return token.Token{Type: token.MATCH, Lexeme: "match", Line: 1, Column: 1}
}

func wild() ast.Pattern {
	return &ast.WildcardPattern{Token: testTok()}
}

func bind(name string) ast.Pattern {
	return &ast.IdentifierPattern{Token: testTok(), Value: name}
}

func lit(v interface{}) ast.Pattern {
	return &ast.LiteralPattern{Token: testTok(), Value: v}
}

func ctorPat(name string, args ...ast.Pattern) ast.Pattern {
	return &ast.ConstructorPattern{
		Token:    testTok(),
		Name:     &ast.Identifier{Token: testTok(), Value: name},
		Elements: args,
	}
}

func tuplePat(elems ...ast.Pattern) ast.Pattern {
	return &ast.TuplePattern{Token: testTok(), Elements: elems}
}

func listPat(elems ...ast.Pattern) ast.Pattern {
	return &ast.ListPattern{Token: testTok(), Elements: elems}
}

func spreadPat(name string) ast.Pattern {
	return &ast.SpreadPattern{Token: testTok(), Name: name}
}

func recPat(typeName string, hasRest bool, fields ...ast.RecordFieldPattern) ast.Pattern {
	return &ast.RecordPattern{Token: testTok(), TypeName: typeName, Fields: fields, HasRest: hasRest}
}

func fieldPat(name string, p ast.Pattern) ast.RecordFieldPattern {
	return ast.RecordFieldPattern{Name: name, Pattern: p}
}

func rangePat(lo, hi int64, inclusive bool) ast.Pattern {
	return &ast.RangePattern{
		Token:     testTok(),
		Low:       &ast.LiteralPattern{Token: testTok(), Value: lo},
		High:      &ast.LiteralPattern{Token: testTok(), Value: hi},
		Inclusive: inclusive,
	}
}

func rangeFrom(lo int64) ast.Pattern {
	return &ast.RangePattern{
		Token:     testTok(),
		Low:       &ast.LiteralPattern{Token: testTok(), Value: lo},
		Inclusive: true,
	}
}

func rangeTo(hi int64) ast.Pattern {
	return &ast.RangePattern{
		Token:     testTok(),
		High:      &ast.LiteralPattern{Token: testTok(), Value: hi},
		Inclusive: true,
	}
}

func orPat(alts ...ast.Pattern) ast.Pattern {
	return &ast.OrPattern{Token: testTok(), Alternatives: alts}
}

func atPat(name string, p ast.Pattern) ast.Pattern {
	return &ast.AtPattern{Token: testTok(), Name: name, Pattern: p}
}

func arm(p ast.Pattern) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p, Expression: &ast.Identifier{Token: testTok(), Value: "body"}}
}

func guardedArm(p ast.Pattern) *ast.MatchArm {
	a := arm(p)
	a.Guard = &ast.Identifier{Token: testTok(), Value: "cond"}
	return a
}

func matchOf(arms ...*ast.MatchArm) *ast.MatchExpression {
	return &ast.MatchExpression{
		Token:      testTok(),
		Expression: &ast.Identifier{Token: testTok(), Value: "subject"},
		Arms:       arms,
	}
}

func tCon(name string) typesystem.Type {
	return typesystem.TCon{Name: name}
}

func tApp(name string, args ...typesystem.Type) typesystem.Type {
	return typesystem.TApp{Constructor: typesystem.TCon{Name: name}, Args: args}
}

func tTuple(elems ...typesystem.Type) typesystem.Type {
	return typesystem.TTuple{Elements: elems}
}

var (
	tInt  = tCon("Int")
	tBool = tCon("Bool")
	tStr  = tCon("String")
)

func tList(elem typesystem.Type) typesystem.Type { return tApp("List", elem) }

func tOption(elem typesystem.Type) typesystem.Type { return tApp("Option", elem) }

// testCatalog registers the user types the tests match against.
func testCatalog() *symbols.Catalog {
	c := symbols.NewCatalog()
	c.MustRegisterEnum("Color", nil, []symbols.Constructor{
		{Name: "Red"},
		{Name: "Green"},
		{Name: "Blue"},
	})
	c.MustRegisterEnum("Shape", nil, []symbols.Constructor{
		{Name: "Circle", Fields: []typesystem.Type{tInt}},
		{Name: "Rect", Fields: []typesystem.Type{tInt, tInt}},
	})
	if err := c.RegisterRecord("Point", map[string]typesystem.Type{
		"x": tInt,
		"y": tInt,
	}); err != nil {
		panic(err)
	}
	return c
}

func checkOf(t *testing.T, catalog *symbols.Catalog, scrutinee typesystem.Type, arms ...*ast.MatchArm) CheckResult {
	t.Helper()
	return CheckMatch(catalog, scrutinee, matchOf(arms...))
}

func wantCode(t *testing.T, diags []*diagnostics.DiagnosticError, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected diagnostic %s, got %v", code, diags)
	return nil
}

func wantNoCode(t *testing.T, diags []*diagnostics.DiagnosticError, code diagnostics.ErrorCode) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			t.Fatalf("unexpected diagnostic %s: %s", code, d.Message)
		}
	}
}

func wantClean(t *testing.T, res CheckResult) {
	t.Helper()
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", res.Diagnostics)
	}
	if res.Tree == nil {
		t.Fatal("expected a compiled tree")
	}
}
