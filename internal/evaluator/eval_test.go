package evaluator

import (
	"math"
	"testing"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
	"github.com/upstat-io/sigil-lang-sub006/internal/patterns"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

func tok() token.Token {
	return token.Token{Type: token.MATCH, Lexeme: "match", Line: 1, Column: 1}
}

func wild() ast.Pattern { return &ast.WildcardPattern{Token: tok()} }

func bind(name string) ast.Pattern {
	return &ast.IdentifierPattern{Token: tok(), Value: name}
}

func lit(v interface{}) ast.Pattern {
	return &ast.LiteralPattern{Token: tok(), Value: v}
}

func ctorPat(name string, args ...ast.Pattern) ast.Pattern {
	return &ast.ConstructorPattern{
		Token:    tok(),
		Name:     &ast.Identifier{Token: tok(), Value: name},
		Elements: args,
	}
}

func tuplePat(elems ...ast.Pattern) ast.Pattern {
	return &ast.TuplePattern{Token: tok(), Elements: elems}
}

func listPat(elems ...ast.Pattern) ast.Pattern {
	return &ast.ListPattern{Token: tok(), Elements: elems}
}

func spreadPat(name string) ast.Pattern {
	return &ast.SpreadPattern{Token: tok(), Name: name}
}

func orPat(alts ...ast.Pattern) ast.Pattern {
	return &ast.OrPattern{Token: tok(), Alternatives: alts}
}

func atPat(name string, p ast.Pattern) ast.Pattern {
	return &ast.AtPattern{Token: tok(), Name: name, Pattern: p}
}

func rangeTo(hi int64) ast.Pattern {
	return &ast.RangePattern{
		Token:     tok(),
		High:      &ast.LiteralPattern{Token: tok(), Value: hi},
		Inclusive: true,
	}
}

func rangeFrom(lo int64) ast.Pattern {
	return &ast.RangePattern{
		Token:     tok(),
		Low:       &ast.LiteralPattern{Token: tok(), Value: lo},
		Inclusive: true,
	}
}

func arm(p ast.Pattern) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p, Expression: &ast.Identifier{Token: tok(), Value: "body"}}
}

func guardedArm(p ast.Pattern) *ast.MatchArm {
	a := arm(p)
	a.Guard = &ast.Identifier{Token: tok(), Value: "cond"}
	return a
}

var tInt = typesystem.TCon{Name: "Int"}

func tOption(elem typesystem.Type) typesystem.Type {
	return typesystem.TApp{Constructor: typesystem.TCon{Name: "Option"}, Args: []typesystem.Type{elem}}
}

func tList(elem typesystem.Type) typesystem.Type {
	return typesystem.TApp{Constructor: typesystem.TCon{Name: "List"}, Args: []typesystem.Type{elem}}
}

func tTuple(elems ...typesystem.Type) typesystem.Type {
	return typesystem.TTuple{Elements: elems}
}

func compiledTree(t *testing.T, scrutinee typesystem.Type, arms ...*ast.MatchArm) patterns.DecisionTree {
	t.Helper()
	res := patterns.CheckMatch(symbols.NewCatalog(), scrutinee, &ast.MatchExpression{
		Token:      tok(),
		Expression: &ast.Identifier{Token: tok(), Value: "subject"},
		Arms:       arms,
	})
	if res.HasErrors() {
		t.Fatalf("check failed: %v", res.Diagnostics)
	}
	if res.Tree == nil {
		t.Fatal("no tree compiled")
	}
	return res.Tree
}

func mustMatch(t *testing.T, tree patterns.DecisionTree, v Value, guard GuardFunc) MatchOutcome {
	t.Helper()
	out, ok, err := EvalTree(tree, v, guard)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !ok {
		t.Fatalf("no arm matched %s", v.Inspect())
	}
	return out
}

func intVal(n int64) Value      { return &IntValue{Value: n} }
func listVal(ns ...int64) Value {
	elems := make([]Value, len(ns))
	for i, n := range ns {
		elems[i] = intVal(n)
	}
	return &ListValue{Elements: elems}
}

func someVal(v Value) Value {
	return &DataValue{TypeName: "Option", Ctor: "Some", Tag: 1, Fields: []Value{v}}
}

func noneVal() Value {
	return &DataValue{TypeName: "Option", Ctor: "None", Tag: 0}
}

func TestEvalOptionBinding(t *testing.T) {
	tree := compiledTree(t, tOption(tInt),
		arm(ctorPat("Some", bind("x"))),
		arm(ctorPat("None")),
	)

	out := mustMatch(t, tree, someVal(intVal(7)), nil)
	if out.ArmIndex != 0 {
		t.Errorf("arm = %d, want 0", out.ArmIndex)
	}
	if x, ok := out.Bindings["x"].(*IntValue); !ok || x.Value != 7 {
		t.Errorf("x = %v, want 7", out.Bindings["x"])
	}

	out = mustMatch(t, tree, noneVal(), nil)
	if out.ArmIndex != 1 {
		t.Errorf("arm = %d, want 1", out.ArmIndex)
	}
}

func TestEvalGuardBacktracks(t *testing.T) {
	tree := compiledTree(t, tInt,
		guardedArm(bind("x")),
		arm(bind("y")),
	)
	bigOnly := func(armIndex int, binds map[string]Value) bool {
		return binds["x"].(*IntValue).Value > 10
	}

	out := mustMatch(t, tree, intVal(42), bigOnly)
	if out.ArmIndex != 0 {
		t.Errorf("guard passed, arm = %d, want 0", out.ArmIndex)
	}

	out = mustMatch(t, tree, intVal(5), bigOnly)
	if out.ArmIndex != 1 {
		t.Errorf("guard failed, arm = %d, want 1", out.ArmIndex)
	}
	if y, ok := out.Bindings["y"].(*IntValue); !ok || y.Value != 5 {
		t.Errorf("y = %v, want 5", out.Bindings["y"])
	}
}

func TestEvalGuardMissingEvaluator(t *testing.T) {
	tree := compiledTree(t, tInt,
		guardedArm(bind("x")),
		arm(wild()),
	)
	_, _, err := EvalTree(tree, intVal(1), nil)
	if err == nil {
		t.Fatal("expected an error when a guard has no evaluator")
	}
}

func TestEvalListPrefixRestSuffix(t *testing.T) {
	tree := compiledTree(t, tList(tInt),
		arm(listPat(bind("a"), spreadPat("mid"), bind("z"))),
		arm(wild()),
	)

	out := mustMatch(t, tree, listVal(1, 2, 3, 4), nil)
	if out.ArmIndex != 0 {
		t.Fatalf("arm = %d, want 0", out.ArmIndex)
	}
	if a := out.Bindings["a"].(*IntValue); a.Value != 1 {
		t.Errorf("a = %d, want 1", a.Value)
	}
	if z := out.Bindings["z"].(*IntValue); z.Value != 4 {
		t.Errorf("z = %d, want 4", z.Value)
	}
	mid := out.Bindings["mid"].(*ListValue)
	if len(mid.Elements) != 2 ||
		mid.Elements[0].(*IntValue).Value != 2 ||
		mid.Elements[1].(*IntValue).Value != 3 {
		t.Errorf("mid = %s, want [2, 3]", mid.Inspect())
	}

	// Shortest list the shape admits: the rest is empty.
	out = mustMatch(t, tree, listVal(8, 9), nil)
	if out.ArmIndex != 0 {
		t.Fatalf("arm = %d, want 0", out.ArmIndex)
	}
	if mid := out.Bindings["mid"].(*ListValue); len(mid.Elements) != 0 {
		t.Errorf("mid = %s, want []", mid.Inspect())
	}

	out = mustMatch(t, tree, listVal(1), nil)
	if out.ArmIndex != 1 {
		t.Errorf("one-element list: arm = %d, want 1", out.ArmIndex)
	}
}

func TestEvalListArmOrder(t *testing.T) {
	tree := compiledTree(t, tList(tInt),
		arm(listPat()),
		arm(listPat(bind("a"), bind("b"))),
		arm(listPat(bind("a"), spreadPat("rest"))),
	)

	tests := []struct {
		list Value
		arm  int
	}{
		{listVal(), 0},
		{listVal(1), 2},
		{listVal(1, 2), 1},
		{listVal(1, 2, 3), 2},
		{listVal(1, 2, 3, 4), 2},
	}
	for _, tt := range tests {
		out := mustMatch(t, tree, tt.list, nil)
		if out.ArmIndex != tt.arm {
			t.Errorf("%s: arm = %d, want %d", tt.list.Inspect(), out.ArmIndex, tt.arm)
		}
	}
}

func TestEvalOrAlternativesBindOwnPaths(t *testing.T) {
	tree := compiledTree(t, tTuple(tInt, tInt),
		arm(orPat(
			tuplePat(bind("x"), lit(int64(0))),
			tuplePat(lit(int64(0)), bind("x")),
		)),
		arm(wild()),
	)

	out := mustMatch(t, tree, &TupleValue{Elements: []Value{intVal(5), intVal(0)}}, nil)
	if out.ArmIndex != 0 {
		t.Fatalf("arm = %d, want 0", out.ArmIndex)
	}
	if x := out.Bindings["x"].(*IntValue); x.Value != 5 {
		t.Errorf("first alternative: x = %d, want 5", x.Value)
	}

	out = mustMatch(t, tree, &TupleValue{Elements: []Value{intVal(0), intVal(7)}}, nil)
	if out.ArmIndex != 0 {
		t.Fatalf("arm = %d, want 0", out.ArmIndex)
	}
	if x := out.Bindings["x"].(*IntValue); x.Value != 7 {
		t.Errorf("second alternative: x = %d, want 7", x.Value)
	}

	out = mustMatch(t, tree, &TupleValue{Elements: []Value{intVal(3), intVal(4)}}, nil)
	if out.ArmIndex != 1 {
		t.Errorf("no alternative: arm = %d, want 1", out.ArmIndex)
	}
}

func TestEvalAtBindsWholeValue(t *testing.T) {
	tree := compiledTree(t, tOption(tInt),
		arm(atPat("whole", ctorPat("Some", bind("x")))),
		arm(ctorPat("None")),
	)

	out := mustMatch(t, tree, someVal(intVal(9)), nil)
	whole, ok := out.Bindings["whole"].(*DataValue)
	if !ok || whole.Ctor != "Some" {
		t.Fatalf("whole = %v, want the Some value itself", out.Bindings["whole"])
	}
	if x := out.Bindings["x"].(*IntValue); x.Value != 9 {
		t.Errorf("x = %d, want 9", x.Value)
	}
}

func TestEvalExhaustiveIntBoundaries(t *testing.T) {
	tree := compiledTree(t, tInt,
		arm(rangeTo(-1)),
		arm(lit(int64(0))),
		arm(rangeFrom(1)),
	)

	tests := []struct {
		value int64
		arm   int
	}{
		{math.MinInt64, 0},
		{-1, 0},
		{0, 1},
		{1, 2},
		{math.MaxInt64, 2},
	}
	for _, tt := range tests {
		out := mustMatch(t, tree, intVal(tt.value), nil)
		if out.ArmIndex != tt.arm {
			t.Errorf("value %d: arm = %d, want %d", tt.value, out.ArmIndex, tt.arm)
		}
	}
}

func TestEvalFirstMatchingArmWins(t *testing.T) {
	tree := compiledTree(t, tInt,
		arm(&ast.RangePattern{
			Token:     tok(),
			Low:       &ast.LiteralPattern{Token: tok(), Value: int64(0)},
			High:      &ast.LiteralPattern{Token: tok(), Value: int64(10)},
			Inclusive: true,
		}),
		arm(&ast.RangePattern{
			Token:     tok(),
			Low:       &ast.LiteralPattern{Token: tok(), Value: int64(5)},
			High:      &ast.LiteralPattern{Token: tok(), Value: int64(20)},
			Inclusive: true,
		}),
		arm(wild()),
	)

	// 7 is in both ranges; arm order decides.
	out := mustMatch(t, tree, intVal(7), nil)
	if out.ArmIndex != 0 {
		t.Errorf("overlap value: arm = %d, want 0", out.ArmIndex)
	}
	out = mustMatch(t, tree, intVal(15), nil)
	if out.ArmIndex != 1 {
		t.Errorf("second range only: arm = %d, want 1", out.ArmIndex)
	}
}

func TestResolvePathForms(t *testing.T) {
	list := listVal(10, 20, 30, 40)

	tests := []struct {
		name string
		path patterns.ScrutineePath
		want string
	}{
		{"element", patterns.ScrutineePath{{Kind: patterns.PathListElement, Index: 1}}, "20"},
		{"from end", patterns.ScrutineePath{{Kind: patterns.PathListFromEnd, Index: 1}}, "40"},
		{"rest", patterns.ScrutineePath{{Kind: patterns.PathListRest, Index: 1, Drop: 1}}, "[20, 30]"},
		{"empty rest", patterns.ScrutineePath{{Kind: patterns.PathListRest, Index: 2, Drop: 2}}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(list, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Inspect() != tt.want {
				t.Errorf("resolved %s, want %s", got.Inspect(), tt.want)
			}
		})
	}

	if _, err := ResolvePath(list, patterns.ScrutineePath{{Kind: patterns.PathListElement, Index: 9}}); err == nil {
		t.Error("out-of-range element should error")
	}
}

func TestResolvePathStructAndPayload(t *testing.T) {
	v := someVal(&StructValue{TypeName: "Point", Fields: map[string]Value{
		"x": intVal(3),
		"y": intVal(4),
	}})
	path := patterns.ScrutineePath{
		{Kind: patterns.PathTagPayload, Index: 0},
		{Kind: patterns.PathStructField, Field: "y"},
	}
	got, err := ResolvePath(v, path)
	if err != nil {
		t.Fatal(err)
	}
	if got.(*IntValue).Value != 4 {
		t.Errorf("resolved %s, want 4", got.Inspect())
	}
}
