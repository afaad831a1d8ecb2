package patterns

import (
	"fmt"
	"sort"

	"github.com/upstat-io/sigil-lang-sub006/internal/config"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// compiler lowers a verified row matrix into a decision tree. Like the
// usefulness engine, all state is per match site.
type compiler struct {
	catalog *symbols.Catalog
}

// CompileTree compiles a match site's rows. Rows must already be
// normalized and checked; an exhaustive match never produces a reachable
// Fail node.
func CompileTree(catalog *symbols.Catalog, rows []Row, scrutinee typesystem.Type) (DecisionTree, error) {
	c := &compiler{catalog: catalog}
	return c.compile(rows, []ScrutineePath{nil}, []typesystem.Type{scrutinee}, 0)
}

func (c *compiler) compile(rows []Row, paths []ScrutineePath, types []typesystem.Type, depth int) (DecisionTree, error) {
	if depth > config.MaxCheckDepth || len(rows) > config.MaxMatrixRows {
		return nil, errTooComplex
	}
	if len(rows) == 0 {
		return Fail{}, nil
	}

	if rowIrrefutable(rows[0]) {
		first := rows[0]
		if first.Guard == nil {
			return Leaf{ArmIndex: first.ArmIndex, Bindings: first.Bindings}, nil
		}
		onFail, err := c.compile(rows[1:], paths, types, depth+1)
		if err != nil {
			return nil, err
		}
		return Guard{ArmIndex: first.ArmIndex, Bindings: first.Bindings, Expr: first.Guard, OnFail: onFail}, nil
	}

	col := pickColumn(rows)

	switch head := firstHeadAt(rows, col).(type) {
	case Tuple:
		return c.decomposeTuple(rows, paths, types, col, len(head.Elements), depth)
	case Struct:
		return c.decomposeStruct(rows, paths, types, col, head, depth)
	case LitBool:
		return c.switchBool(rows, paths, types, col, depth)
	case LitInt, Range:
		return c.switchInt(rows, paths, types, col, depth)
	case LitStr:
		return c.switchStr(rows, paths, types, col, depth)
	case Variant:
		return c.switchVariant(rows, paths, types, col, depth)
	case List:
		return c.switchList(rows, paths, types, col, depth)
	default:
		panic(fmt.Sprintf("unexpected column head %T", head))
	}
}

// pickColumn chooses the column with the most distinct head constructors,
// preferring the leftmost on ties. More distinct tests first means more
// rows eliminated per switch.
func pickColumn(rows []Row) int {
	width := len(rows[0].Patterns)
	bestCol := -1
	bestCount := 0
	for col := 0; col < width; col++ {
		keys := make(map[string]bool)
		for _, r := range rows {
			h := stripAt(r.Patterns[col])
			if !isWildcardLike(h) {
				keys[ctorKey(h)] = true
			}
		}
		if len(keys) > bestCount {
			bestCount = len(keys)
			bestCol = col
		}
	}
	if bestCol < 0 {
		panic("no testable column in refutable matrix")
	}
	return bestCol
}

func ctorKey(p Pattern) string {
	switch h := p.(type) {
	case Variant:
		return fmt.Sprintf("v%d", h.Index)
	case LitBool:
		return fmt.Sprintf("b%t", h.Value)
	case LitInt:
		return fmt.Sprintf("i%d", h.Value)
	case Range:
		return fmt.Sprintf("r%d:%d", h.Lo, h.Hi)
	case LitStr:
		return "s" + h.Value
	case Tuple:
		return "tuple"
	case Struct:
		return "struct"
	case List:
		if h.HasRest {
			return fmt.Sprintf("l%d+", len(h.Prefix)+len(h.Suffix))
		}
		return fmt.Sprintf("l%d", len(h.Prefix))
	default:
		return "?"
	}
}

func rowIrrefutable(r Row) bool {
	for _, p := range r.Patterns {
		if !isWildcardLike(p) {
			return false
		}
	}
	return true
}

// firstHeadAt returns the first structural head of a column.
func firstHeadAt(rows []Row, col int) Pattern {
	for _, r := range rows {
		h := stripAt(r.Patterns[col])
		if !isWildcardLike(h) {
			return h
		}
	}
	panic("column has no head")
}

// --- single-constructor columns ----------------------------------------

// decomposeTuple splices tuple elements into the matrix without a runtime
// test: a tuple always matches its only constructor.
func (c *compiler) decomposeTuple(rows []Row, paths []ScrutineePath, types []typesystem.Type, col, arity, depth int) (DecisionTree, error) {
	subPaths := make([]ScrutineePath, arity)
	for i := range subPaths {
		subPaths[i] = paths[col].extend(PathInstruction{Kind: PathTupleIndex, Index: i})
	}
	subRows := make([]Row, 0, len(rows))
	for _, r := range rows {
		switch h := stripAt(r.Patterns[col]).(type) {
		case Wildcard, Binding:
			subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, wildcards(arity))))
		case Tuple:
			subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, h.Elements)))
		}
	}
	return c.compile(subRows,
		splice(paths, col, subPaths),
		splice(types, col, tupleElemTypes(types[col], arity)),
		depth+1)
}

func (c *compiler) decomposeStruct(rows []Row, paths []ScrutineePath, types []typesystem.Type, col int, head Struct, depth int) (DecisionTree, error) {
	names := fieldNames(head)
	subPaths := make([]ScrutineePath, len(names))
	for i, name := range names {
		subPaths[i] = paths[col].extend(PathInstruction{Kind: PathStructField, Field: name})
	}
	e := &engine{catalog: c.catalog}
	subRows := make([]Row, 0, len(rows))
	for _, r := range rows {
		switch h := stripAt(r.Patterns[col]).(type) {
		case Wildcard, Binding:
			subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, wildcards(len(names)))))
		case Struct:
			subs := make([]Pattern, len(h.Fields))
			for i, f := range h.Fields {
				subs[i] = f.Pattern
			}
			subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, subs)))
		}
	}
	return c.compile(subRows,
		splice(paths, col, subPaths),
		splice(types, col, e.structFieldTypes(types[col], names)),
		depth+1)
}

// --- switch columns -----------------------------------------------------

func (c *compiler) switchBool(rows []Row, paths []ScrutineePath, types []typesystem.Type, col, depth int) (DecisionTree, error) {
	var order []bool
	seen := make(map[bool]bool)
	for _, r := range rows {
		if h, ok := stripAt(r.Patterns[col]).(LitBool); ok && !seen[h.Value] {
			seen[h.Value] = true
			order = append(order, h.Value)
		}
	}

	edges := make([]Edge, 0, len(order))
	for _, b := range order {
		subRows := make([]Row, 0, len(rows))
		for _, r := range rows {
			switch h := stripAt(r.Patterns[col]).(type) {
			case Wildcard, Binding:
				subRows = append(subRows, r.withPatterns(dropColumn(r.Patterns, col)))
			case LitBool:
				if h.Value == b {
					subRows = append(subRows, r.withPatterns(dropColumn(r.Patterns, col)))
				}
			}
		}
		subtree, err := c.compile(subRows, dropColumn(paths, col), dropColumn(types, col), depth+1)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{Test: TestValue{Kind: TestBoolEq, Bool: b}, Subtree: subtree})
	}
	return c.finishSwitch(rows, paths, types, col, edges, depth)
}

// switchInt emits one edge per coverage segment. Segments are disjoint
// and each row either covers a segment fully or not at all, so guard
// backtracking inside a subtree sees every arm that could still match.
func (c *compiler) switchInt(rows []Row, paths []ScrutineePath, types []typesystem.Type, col, depth int) (DecisionTree, error) {
	var ivs []interval
	for _, r := range rows {
		if iv, ok := headInterval(stripAt(r.Patterns[col])); ok {
			ivs = append(ivs, iv)
		}
	}
	segs := splitSegments(ivs)
	if len(segs) > config.MaxSwitchEdges {
		return nil, errTooComplex
	}

	edges := make([]Edge, 0, len(segs))
	for _, seg := range segs {
		subRows := make([]Row, 0, len(rows))
		for _, r := range rows {
			h := stripAt(r.Patterns[col])
			if isWildcardLike(h) {
				subRows = append(subRows, r.withPatterns(dropColumn(r.Patterns, col)))
				continue
			}
			if iv, ok := headInterval(h); ok && iv.contains(seg) {
				subRows = append(subRows, r.withPatterns(dropColumn(r.Patterns, col)))
			}
		}
		subtree, err := c.compile(subRows, dropColumn(paths, col), dropColumn(types, col), depth+1)
		if err != nil {
			return nil, err
		}
		test := TestValue{Kind: TestIntRange, Lo: seg.lo, Hi: seg.hi}
		if seg.lo == seg.hi {
			test = TestValue{Kind: TestIntEq, Int: seg.lo}
		}
		edges = append(edges, Edge{Test: test, Subtree: subtree})
	}
	return c.finishSwitch(rows, paths, types, col, edges, depth)
}

func (c *compiler) switchStr(rows []Row, paths []ScrutineePath, types []typesystem.Type, col, depth int) (DecisionTree, error) {
	var order []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if h, ok := stripAt(r.Patterns[col]).(LitStr); ok && !seen[h.Value] {
			seen[h.Value] = true
			order = append(order, h.Value)
		}
	}
	if len(order) > config.MaxSwitchEdges {
		return nil, errTooComplex
	}

	edges := make([]Edge, 0, len(order))
	for _, s := range order {
		subRows := make([]Row, 0, len(rows))
		for _, r := range rows {
			switch h := stripAt(r.Patterns[col]).(type) {
			case Wildcard, Binding:
				subRows = append(subRows, r.withPatterns(dropColumn(r.Patterns, col)))
			case LitStr:
				if h.Value == s {
					subRows = append(subRows, r.withPatterns(dropColumn(r.Patterns, col)))
				}
			}
		}
		subtree, err := c.compile(subRows, dropColumn(paths, col), dropColumn(types, col), depth+1)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{Test: TestValue{Kind: TestStrEq, Str: s}, Subtree: subtree})
	}
	return c.finishSwitch(rows, paths, types, col, edges, depth)
}

func (c *compiler) switchVariant(rows []Row, paths []ScrutineePath, types []typesystem.Type, col, depth int) (DecisionTree, error) {
	type variantCase struct {
		index int
		name  string
		arity int
	}
	var order []variantCase
	seen := make(map[int]bool)
	for _, r := range rows {
		if h, ok := stripAt(r.Patterns[col]).(Variant); ok && !seen[h.Index] {
			seen[h.Index] = true
			order = append(order, variantCase{index: h.Index, name: h.Name, arity: len(h.Args)})
		}
	}

	e := &engine{catalog: c.catalog}
	edges := make([]Edge, 0, len(order))
	for _, vc := range order {
		subPaths := make([]ScrutineePath, vc.arity)
		for i := range subPaths {
			subPaths[i] = paths[col].extend(PathInstruction{Kind: PathTagPayload, Index: i})
		}
		subTypes := e.variantFields(types[col], Variant{Index: vc.index}, vc.arity)

		subRows := make([]Row, 0, len(rows))
		for _, r := range rows {
			switch h := stripAt(r.Patterns[col]).(type) {
			case Wildcard, Binding:
				subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, wildcards(vc.arity))))
			case Variant:
				if h.Index == vc.index {
					subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, h.Args)))
				}
			}
		}
		subtree, err := c.compile(subRows,
			splice(paths, col, subPaths),
			splice(types, col, subTypes),
			depth+1)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{
			Test:    TestValue{Kind: TestEnumTag, Tag: vc.index, TagName: vc.name},
			Subtree: subtree,
		})
	}
	return c.finishSwitch(rows, paths, types, col, edges, depth)
}

// switchList emits exact-length edges followed by one minimum-length
// edge. Exact edges cover every length a fixed-shape row tests for plus
// every length between the shortest and the widest rest shape; values
// reaching the minimum-length edge are therefore at least as long as
// every rest row's fixed part, which makes front and back element paths
// well defined.
func (c *compiler) switchList(rows []Row, paths []ScrutineePath, types []typesystem.Type, col, depth int) (DecisionTree, error) {
	exactSet := make(map[int]bool)
	hasRest := false
	minRest, maxPre, maxSuf := -1, 0, 0
	for _, r := range rows {
		h, ok := stripAt(r.Patterns[col]).(List)
		if !ok {
			continue
		}
		fixed := len(h.Prefix) + len(h.Suffix)
		if h.HasRest {
			hasRest = true
			if minRest < 0 || fixed < minRest {
				minRest = fixed
			}
			if len(h.Prefix) > maxPre {
				maxPre = len(h.Prefix)
			}
			if len(h.Suffix) > maxSuf {
				maxSuf = len(h.Suffix)
			}
		} else {
			exactSet[fixed] = true
		}
	}

	minLen := maxPre + maxSuf
	var exactLens []int
	for l := range exactSet {
		exactLens = append(exactLens, l)
	}
	if hasRest {
		for l := minRest; l < minLen; l++ {
			if !exactSet[l] {
				exactLens = append(exactLens, l)
			}
		}
	}
	sort.Ints(exactLens)
	if len(exactLens)+1 > config.MaxSwitchEdges || minLen > config.MaxListSplit {
		return nil, errTooComplex
	}

	elem := (&engine{catalog: c.catalog}).listElemType(types[col])

	var edges []Edge
	for _, l := range exactLens {
		subPaths := make([]ScrutineePath, l)
		for i := range subPaths {
			subPaths[i] = paths[col].extend(PathInstruction{Kind: PathListElement, Index: i})
		}
		subRows := make([]Row, 0, len(rows))
		for _, r := range rows {
			switch h := stripAt(r.Patterns[col]).(type) {
			case Wildcard, Binding:
				subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, wildcards(l))))
			case List:
				fixed := len(h.Prefix) + len(h.Suffix)
				if !h.HasRest {
					if fixed == l {
						subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, h.Prefix)))
					}
					continue
				}
				if fixed > l {
					continue
				}
				subs := make([]Pattern, 0, l)
				subs = append(subs, h.Prefix...)
				subs = append(subs, wildcards(l-fixed)...)
				subs = append(subs, h.Suffix...)
				subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, subs)))
			}
		}
		subtree, err := c.compile(subRows,
			splice(paths, col, subPaths),
			splice(types, col, repeatType(elem, l)),
			depth+1)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{Test: TestValue{Kind: TestListLen, Len: l, Exact: true}, Subtree: subtree})
	}

	if hasRest {
		cols := maxPre + maxSuf
		subPaths := make([]ScrutineePath, cols)
		for i := 0; i < maxPre; i++ {
			subPaths[i] = paths[col].extend(PathInstruction{Kind: PathListElement, Index: i})
		}
		for j := 0; j < maxSuf; j++ {
			subPaths[maxPre+j] = paths[col].extend(PathInstruction{Kind: PathListFromEnd, Index: maxSuf - j})
		}
		subRows := make([]Row, 0, len(rows))
		for _, r := range rows {
			switch h := stripAt(r.Patterns[col]).(type) {
			case Wildcard, Binding:
				subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, wildcards(cols))))
			case List:
				if !h.HasRest {
					continue
				}
				subs := make([]Pattern, cols)
				for i := range subs {
					subs[i] = Wildcard{}
				}
				copy(subs, h.Prefix)
				for j, p := range h.Suffix {
					subs[cols-len(h.Suffix)+j] = p
				}
				subRows = append(subRows, r.withPatterns(splice(r.Patterns, col, subs)))
			}
		}
		subtree, err := c.compile(subRows,
			splice(paths, col, subPaths),
			splice(types, col, repeatType(elem, cols)),
			depth+1)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{Test: TestValue{Kind: TestListLen, Len: minLen, Exact: false}, Subtree: subtree})
	}

	return c.finishSwitch(rows, paths, types, col, edges, depth)
}

// finishSwitch compiles the default branch (rows that match no edge) and
// assembles the node.
func (c *compiler) finishSwitch(rows []Row, paths []ScrutineePath, types []typesystem.Type, col int, edges []Edge, depth int) (DecisionTree, error) {
	defRows := make([]Row, 0)
	for _, r := range rows {
		if isWildcardLike(stripAt(r.Patterns[col])) {
			defRows = append(defRows, r.withPatterns(dropColumn(r.Patterns, col)))
		}
	}
	def, err := c.compile(defRows, dropColumn(paths, col), dropColumn(types, col), depth+1)
	if err != nil {
		return nil, err
	}
	return Switch{Path: paths[col], Edges: edges, Default: def}, nil
}

// --- column splicing ----------------------------------------------------

func splice[T any](items []T, col int, subs []T) []T {
	out := make([]T, 0, len(items)-1+len(subs))
	out = append(out, items[:col]...)
	out = append(out, subs...)
	out = append(out, items[col+1:]...)
	return out
}

func dropColumn[T any](items []T, col int) []T {
	return splice(items, col, nil)
}
