package evaluator

import (
	"fmt"

	"github.com/upstat-io/sigil-lang-sub006/internal/patterns"
)

// GuardFunc evaluates an arm's guard with the arm's bindings in scope.
// The checker treats guards as opaque; callers supply the real evaluator.
type GuardFunc func(armIndex int, bindings map[string]Value) bool

// MatchOutcome is the result of running a compiled match on a value.
type MatchOutcome struct {
	ArmIndex int
	Bindings map[string]Value
}

// EvalTree runs a compiled decision tree against a scrutinee value.
// Switch edges are tested in order; guard failures fall through to the
// node's backtracking subtree. A false second return means no arm
// matched, which a verified-exhaustive match cannot produce.
func EvalTree(tree patterns.DecisionTree, scrutinee Value, guard GuardFunc) (MatchOutcome, bool, error) {
	switch node := tree.(type) {
	case patterns.Leaf:
		binds, err := resolveBindings(scrutinee, node.Bindings)
		if err != nil {
			return MatchOutcome{}, false, err
		}
		return MatchOutcome{ArmIndex: node.ArmIndex, Bindings: binds}, true, nil

	case patterns.Guard:
		binds, err := resolveBindings(scrutinee, node.Bindings)
		if err != nil {
			return MatchOutcome{}, false, err
		}
		if guard == nil {
			return MatchOutcome{}, false, fmt.Errorf("arm %d has a guard but no guard evaluator was supplied", node.ArmIndex)
		}
		if guard(node.ArmIndex, binds) {
			return MatchOutcome{ArmIndex: node.ArmIndex, Bindings: binds}, true, nil
		}
		return EvalTree(node.OnFail, scrutinee, guard)

	case patterns.Fail:
		return MatchOutcome{}, false, nil

	case patterns.Switch:
		sub, err := ResolvePath(scrutinee, node.Path)
		if err != nil {
			return MatchOutcome{}, false, err
		}
		for _, edge := range node.Edges {
			ok, err := testValue(edge.Test, sub)
			if err != nil {
				return MatchOutcome{}, false, err
			}
			if ok {
				return EvalTree(edge.Subtree, scrutinee, guard)
			}
		}
		return EvalTree(node.Default, scrutinee, guard)

	default:
		return MatchOutcome{}, false, fmt.Errorf("unknown decision tree node %T", tree)
	}
}

// ResolvePath walks a scrutinee path to the subvalue it denotes.
func ResolvePath(root Value, path patterns.ScrutineePath) (Value, error) {
	v := root
	for _, instr := range path {
		switch instr.Kind {
		case patterns.PathTagPayload:
			data, ok := v.(*DataValue)
			if !ok || instr.Index >= len(data.Fields) {
				return nil, fmt.Errorf("path %s: no payload %d in %s", path, instr.Index, v.Inspect())
			}
			v = data.Fields[instr.Index]

		case patterns.PathTupleIndex:
			tup, ok := v.(*TupleValue)
			if !ok || instr.Index >= len(tup.Elements) {
				return nil, fmt.Errorf("path %s: no tuple element %d in %s", path, instr.Index, v.Inspect())
			}
			v = tup.Elements[instr.Index]

		case patterns.PathStructField:
			st, ok := v.(*StructValue)
			if !ok {
				return nil, fmt.Errorf("path %s: %s is not a struct", path, v.Inspect())
			}
			fv, ok := st.Fields[instr.Field]
			if !ok {
				return nil, fmt.Errorf("path %s: struct has no field %s", path, instr.Field)
			}
			v = fv

		case patterns.PathListElement:
			list, ok := v.(*ListValue)
			if !ok || instr.Index >= len(list.Elements) {
				return nil, fmt.Errorf("path %s: no list element %d", path, instr.Index)
			}
			v = list.Elements[instr.Index]

		case patterns.PathListFromEnd:
			list, ok := v.(*ListValue)
			if !ok || instr.Index > len(list.Elements) || instr.Index < 1 {
				return nil, fmt.Errorf("path %s: no list element len-%d", path, instr.Index)
			}
			v = list.Elements[len(list.Elements)-instr.Index]

		case patterns.PathListRest:
			list, ok := v.(*ListValue)
			if !ok || instr.Index+instr.Drop > len(list.Elements) {
				return nil, fmt.Errorf("path %s: rest slice out of range", path)
			}
			v = &ListValue{Elements: list.Elements[instr.Index : len(list.Elements)-instr.Drop]}

		default:
			return nil, fmt.Errorf("unknown path instruction %v", instr.Kind)
		}
	}
	return v, nil
}

func resolveBindings(root Value, bindings []patterns.BoundName) (map[string]Value, error) {
	out := make(map[string]Value, len(bindings))
	for _, b := range bindings {
		v, err := ResolvePath(root, b.Path)
		if err != nil {
			return nil, err
		}
		out[b.Name] = v
	}
	return out, nil
}

func testValue(test patterns.TestValue, v Value) (bool, error) {
	switch test.Kind {
	case patterns.TestEnumTag:
		data, ok := v.(*DataValue)
		if !ok {
			return false, fmt.Errorf("enum tag test on %s", v.Inspect())
		}
		return data.Tag == test.Tag, nil

	case patterns.TestBoolEq:
		b, ok := v.(*BoolValue)
		if !ok {
			return false, fmt.Errorf("bool test on %s", v.Inspect())
		}
		return b.Value == test.Bool, nil

	case patterns.TestIntEq:
		i, ok := v.(*IntValue)
		if !ok {
			return false, fmt.Errorf("int test on %s", v.Inspect())
		}
		return i.Value == test.Int, nil

	case patterns.TestIntRange:
		i, ok := v.(*IntValue)
		if !ok {
			return false, fmt.Errorf("int range test on %s", v.Inspect())
		}
		return test.Lo <= i.Value && i.Value <= test.Hi, nil

	case patterns.TestStrEq:
		s, ok := v.(*StrValue)
		if !ok {
			return false, fmt.Errorf("string test on %s", v.Inspect())
		}
		return s.Value == test.Str, nil

	case patterns.TestListLen:
		list, ok := v.(*ListValue)
		if !ok {
			return false, fmt.Errorf("list length test on %s", v.Inspect())
		}
		if test.Exact {
			return len(list.Elements) == test.Len, nil
		}
		return len(list.Elements) >= test.Len, nil

	default:
		return false, fmt.Errorf("unknown test kind %v", test.Kind)
	}
}
