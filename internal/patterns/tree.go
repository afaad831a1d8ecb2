package patterns

import (
	"fmt"
	"strings"

	"github.com/upstat-io/sigil-lang-sub006/internal/ast"
)

// PathKind identifies one navigation step from a value to a subvalue.
type PathKind int

const (
	PathTagPayload  PathKind = iota // payload field Index of a variant
	PathTupleIndex                  // tuple element Index
	PathStructField                 // struct field Field
	PathListElement                 // list element Index from the front
	PathListFromEnd                 // list element Index from the back (1 = last)
	PathListRest                    // slice from Index, dropping Drop from the back
)

// PathInstruction is one step of a scrutinee path.
type PathInstruction struct {
	Kind  PathKind
	Index int
	Drop  int    // PathListRest only
	Field string // PathStructField only
}

// ScrutineePath navigates from the match scrutinee to a subvalue. Paths
// are immutable; extending one always copies.
type ScrutineePath []PathInstruction

func (p ScrutineePath) extend(instr PathInstruction) ScrutineePath {
	out := make(ScrutineePath, len(p)+1)
	copy(out, p)
	out[len(p)] = instr
	return out
}

func (p ScrutineePath) String() string {
	if len(p) == 0 {
		return "$"
	}
	var sb strings.Builder
	sb.WriteString("$")
	for _, instr := range p {
		switch instr.Kind {
		case PathTagPayload:
			fmt.Fprintf(&sb, ".payload(%d)", instr.Index)
		case PathTupleIndex:
			fmt.Fprintf(&sb, ".%d", instr.Index)
		case PathStructField:
			fmt.Fprintf(&sb, ".%s", instr.Field)
		case PathListElement:
			fmt.Fprintf(&sb, "[%d]", instr.Index)
		case PathListFromEnd:
			fmt.Fprintf(&sb, "[len-%d]", instr.Index)
		case PathListRest:
			fmt.Fprintf(&sb, "[%d..len-%d]", instr.Index, instr.Drop)
		}
	}
	return sb.String()
}

// TestKind identifies the runtime test a switch edge performs.
type TestKind int

const (
	TestEnumTag TestKind = iota
	TestBoolEq
	TestIntEq
	TestStrEq
	TestIntRange
	TestListLen
)

// TestValue is one switch edge's test. Only the fields relevant to Kind
// are set.
type TestValue struct {
	Kind    TestKind
	Tag     int    // TestEnumTag: variant index
	TagName string // TestEnumTag: variant name, for rendering
	Int     int64  // TestIntEq
	Str     string // TestStrEq
	Bool    bool   // TestBoolEq
	Lo, Hi  int64  // TestIntRange, inclusive
	Len     int    // TestListLen
	Exact   bool   // TestListLen: exact length vs minimum length
}

func (t TestValue) String() string {
	switch t.Kind {
	case TestEnumTag:
		return t.TagName
	case TestBoolEq:
		if t.Bool {
			return "true"
		}
		return "false"
	case TestIntEq:
		return fmt.Sprintf("%d", t.Int)
	case TestStrEq:
		return fmt.Sprintf("%q", t.Str)
	case TestIntRange:
		return fmt.Sprintf("%d..=%d", t.Lo, t.Hi)
	case TestListLen:
		if t.Exact {
			return fmt.Sprintf("len=%d", t.Len)
		}
		return fmt.Sprintf("len>=%d", t.Len)
	}
	return "?"
}

// BoundName is a binding introduced by a matched arm: the name and the
// scrutinee path of the value it captures.
type BoundName struct {
	Name string
	Path ScrutineePath
}

// DecisionTree is the compiled form of a match site.
type DecisionTree interface {
	treeNode()
}

// Leaf selects an arm unconditionally.
type Leaf struct {
	ArmIndex int
	Bindings []BoundName
}

// Guard selects an arm if its guard passes, otherwise continues with
// OnFail. Bindings are in scope while the guard runs.
type Guard struct {
	ArmIndex int
	Bindings []BoundName
	Expr     ast.Expression
	OnFail   DecisionTree
}

// Fail means no arm matched. A verified-exhaustive match never compiles
// to a reachable Fail.
type Fail struct{}

// Edge is one tested branch of a Switch. Edges are evaluated in order;
// the first passing test wins.
type Edge struct {
	Test    TestValue
	Subtree DecisionTree
}

// Switch tests the subvalue at Path against its edges, falling through to
// Default when no edge test passes.
type Switch struct {
	Path    ScrutineePath
	Edges   []Edge
	Default DecisionTree
}

func (Leaf) treeNode()   {}
func (Guard) treeNode()  {}
func (Fail) treeNode()   {}
func (Switch) treeNode() {}
