package patterns

import (
	"errors"

	"github.com/upstat-io/sigil-lang-sub006/internal/config"
	"github.com/upstat-io/sigil-lang-sub006/internal/symbols"
	"github.com/upstat-io/sigil-lang-sub006/internal/typesystem"
)

// errTooComplex aborts a check that exceeded its resource caps. The
// caller turns it into a "match too complex" diagnostic.
var errTooComplex = errors.New("match too complex")

// engine runs usefulness queries against one scrutinee. All state is
// local to a single match site; the catalog is shared and read-only.
type engine struct {
	catalog *symbols.Catalog
}

// useful reports whether a value exists that matches cand but no matrix
// row. When it does, the returned witness describes one such value, one
// pattern per candidate column. Guards are invisible here: callers
// exclude guarded rows as needed before querying.
func (e *engine) useful(matrix []Row, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	if depth > config.MaxCheckDepth || len(matrix) > config.MaxMatrixRows {
		return false, nil, errTooComplex
	}
	if len(cand) == 0 {
		return len(matrix) == 0, nil, nil
	}

	switch head := stripAt(cand[0]).(type) {
	case Wildcard, Binding:
		return e.usefulWildcard(matrix, cand, types, depth)

	case Variant:
		arity := len(head.Args)
		sub := specializeVariant(matrix, head.Index, arity)
		subCand := append(append([]Pattern{}, head.Args...), cand[1:]...)
		subTypes := append(e.variantFields(types[0], head, arity), types[1:]...)
		ok, w, err := e.useful(sub, subCand, subTypes, depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		rebuilt := Variant{TypeName: head.TypeName, Name: head.Name, Index: head.Index, Args: w[:arity]}
		return true, prepend(rebuilt, w[arity:]), nil

	case LitBool:
		ok, w, err := e.useful(specializeBool(matrix, head.Value), cand[1:], types[1:], depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		return true, prepend(head, w), nil

	case LitStr:
		ok, w, err := e.useful(specializeStr(matrix, head.Value), cand[1:], types[1:], depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		return true, prepend(head, w), nil

	case LitInt:
		return e.usefulInterval(matrix, interval{lo: head.Value, hi: head.Value}, cand, types, depth)

	case Range:
		return e.usefulInterval(matrix, interval{lo: head.Lo, hi: head.Hi}, cand, types, depth)

	case Tuple:
		arity := len(head.Elements)
		sub := specializeTuple(matrix, arity)
		subCand := append(append([]Pattern{}, head.Elements...), cand[1:]...)
		subTypes := append(tupleElemTypes(types[0], arity), types[1:]...)
		ok, w, err := e.useful(sub, subCand, subTypes, depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		return true, prepend(Tuple{Elements: w[:arity]}, w[arity:]), nil

	case Struct:
		names := fieldNames(head)
		sub := specializeStruct(matrix, len(names))
		subCand := make([]Pattern, 0, len(names)+len(cand)-1)
		for _, f := range head.Fields {
			subCand = append(subCand, f.Pattern)
		}
		subCand = append(subCand, cand[1:]...)
		subTypes := append(e.structFieldTypes(types[0], names), types[1:]...)
		ok, w, err := e.useful(sub, subCand, subTypes, depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		return true, prepend(rebuildStruct(head.TypeName, names, w[:len(names)]), w[len(names):]), nil

	case List:
		return e.usefulList(matrix, head, cand, types, depth)

	default:
		panic("unexpected canonical pattern in usefulness query")
	}
}

// usefulWildcard handles a wildcard candidate head: the column's
// constructor space decides whether the matrix covers everything.
func (e *engine) usefulWildcard(matrix []Row, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	heads := columnHeads(matrix)

	if sig, ok := e.signatureOf(types[0]); ok {
		switch s := sig.(type) {
		case symbols.Finite:
			if s.TypeName == config.BoolTypeName {
				return e.wildcardBool(matrix, heads, cand, types, depth)
			}
			return e.wildcardFinite(matrix, s, heads, cand, types, depth)
		case symbols.InfiniteDiscrete:
			if typesystem.HeadName(types[0]) == config.IntTypeName {
				return e.wildcardInt(matrix, heads, cand, types, depth)
			}
			return e.wildcardOpaque(matrix, cand, types, depth)
		case symbols.ListFamily:
			return e.wildcardList(matrix, s.Element, heads, cand, types, depth)
		}
	}
	if tup, ok := types[0].(typesystem.TTuple); ok {
		cand2 := append([]Pattern{Tuple{Elements: wildcards(len(tup.Elements))}}, cand[1:]...)
		return e.useful(matrix, cand2, types, depth)
	}

	// No usable type information: fall back to what the column's own
	// heads reveal.
	if len(heads) == 0 {
		ok, w, err := e.useful(defaultMatrix(matrix), cand[1:], types[1:], depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		return true, prepend(Wildcard{}, w), nil
	}
	switch h := heads[0].(type) {
	case LitBool:
		return e.wildcardBool(matrix, heads, cand, types, depth)
	case LitInt, Range:
		return e.wildcardInt(matrix, heads, cand, types, depth)
	case Tuple:
		cand2 := append([]Pattern{Tuple{Elements: wildcards(len(h.Elements))}}, cand[1:]...)
		return e.useful(matrix, cand2, types, depth)
	case Struct:
		cand2 := append([]Pattern{rebuildStruct(h.TypeName, fieldNames(h), wildcards(len(h.Fields)))}, cand[1:]...)
		return e.useful(matrix, cand2, types, depth)
	case List:
		return e.wildcardList(matrix, nil, heads, cand, types, depth)
	default:
		// Variant or string heads without a catalog signature: the full
		// constructor set is unknown, so coverage cannot be proven.
		return e.wildcardOpaque(matrix, cand, types, depth)
	}
}

func (e *engine) wildcardOpaque(matrix []Row, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	ok, w, err := e.useful(defaultMatrix(matrix), cand[1:], types[1:], depth+1)
	if !ok || err != nil {
		return false, nil, err
	}
	return true, prepend(Wildcard{}, w), nil
}

func (e *engine) wildcardBool(matrix []Row, heads []Pattern, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	have := make(map[bool]bool)
	for _, h := range heads {
		if lb, ok := h.(LitBool); ok {
			have[lb.Value] = true
		}
	}
	if have[false] && have[true] {
		for _, b := range []bool{false, true} {
			ok, w, err := e.useful(specializeBool(matrix, b), cand[1:], types[1:], depth+1)
			if err != nil {
				return false, nil, err
			}
			if ok {
				return true, prepend(LitBool{Value: b}, w), nil
			}
		}
		return false, nil, nil
	}
	ok, w, err := e.useful(defaultMatrix(matrix), cand[1:], types[1:], depth+1)
	if !ok || err != nil {
		return false, nil, err
	}
	missing := false
	if have[false] {
		missing = true
	}
	return true, prepend(LitBool{Value: missing}, w), nil
}

func (e *engine) wildcardFinite(matrix []Row, sig symbols.Finite, heads []Pattern, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	present := make(map[int]bool)
	for _, h := range heads {
		if v, ok := h.(Variant); ok {
			present[v.Index] = true
		}
	}
	complete := true
	for _, ctor := range sig.Constructors {
		if !present[ctor.Index] {
			complete = false
			break
		}
	}

	if complete {
		for _, ctor := range sig.Constructors {
			arity := ctor.Arity()
			sub := specializeVariant(matrix, ctor.Index, arity)
			subCand := append(wildcards(arity), cand[1:]...)
			subTypes := append(append([]typesystem.Type{}, ctor.Fields...), types[1:]...)
			ok, w, err := e.useful(sub, subCand, subTypes, depth+1)
			if err != nil {
				return false, nil, err
			}
			if ok {
				rebuilt := Variant{TypeName: sig.TypeName, Name: ctor.Name, Index: ctor.Index, Args: w[:arity]}
				return true, prepend(rebuilt, w[arity:]), nil
			}
		}
		return false, nil, nil
	}

	ok, w, err := e.useful(defaultMatrix(matrix), cand[1:], types[1:], depth+1)
	if !ok || err != nil {
		return false, nil, err
	}
	for _, ctor := range sig.Constructors {
		if !present[ctor.Index] {
			missing := Variant{TypeName: sig.TypeName, Name: ctor.Name, Index: ctor.Index, Args: wildcards(ctor.Arity())}
			return true, prepend(missing, w), nil
		}
	}
	return true, prepend(Wildcard{}, w), nil
}

func (e *engine) wildcardInt(matrix []Row, heads []Pattern, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	var ivs []interval
	for _, h := range heads {
		if iv, ok := headInterval(h); ok {
			ivs = append(ivs, iv)
		}
	}
	merged := mergeIntervals(ivs)

	if coversFullDomain(merged) {
		for _, seg := range splitSegments(ivs) {
			ok, w, err := e.useful(specializeInterval(matrix, seg), cand[1:], types[1:], depth+1)
			if err != nil {
				return false, nil, err
			}
			if ok {
				return true, prepend(LitInt{Value: seg.lo}, w), nil
			}
		}
		return false, nil, nil
	}

	ok, w, err := e.useful(defaultMatrix(matrix), cand[1:], types[1:], depth+1)
	if !ok || err != nil {
		return false, nil, err
	}
	if v, found := gapWitness(merged); found {
		return true, prepend(LitInt{Value: v}, w), nil
	}
	return true, prepend(Wildcard{}, w), nil
}

func (e *engine) wildcardList(matrix []Row, elem typesystem.Type, heads []Pattern, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	exact := make(map[int]bool)
	minRest := -1
	maxFixed := -1
	for _, h := range heads {
		l, ok := h.(List)
		if !ok {
			continue
		}
		fixed := len(l.Prefix) + len(l.Suffix)
		if fixed > maxFixed {
			maxFixed = fixed
		}
		if l.HasRest {
			if minRest < 0 || fixed < minRest {
				minRest = fixed
			}
		} else {
			exact[fixed] = true
		}
	}

	if maxFixed+1 > config.MaxListSplit {
		return false, nil, errTooComplex
	}

	covered := func(l int) bool {
		return exact[l] || (minRest >= 0 && minRest <= l)
	}

	missing := -1
	for l := 0; l <= maxFixed+1; l++ {
		if !covered(l) {
			missing = l
			break
		}
	}
	if minRest < 0 {
		// Without a rest pattern no finite arm set covers all lengths;
		// the first length beyond the largest fixed shape is always open.
		if missing < 0 || missing > maxFixed+1 {
			missing = maxFixed + 1
		}
	}

	if missing < 0 {
		// Every length class is covered; recurse per class.
		for l := 0; l <= maxFixed+1; l++ {
			sub := specializeListLen(matrix, l)
			subCand := append(wildcards(l), cand[1:]...)
			subTypes := append(repeatType(elem, l), types[1:]...)
			ok, w, err := e.useful(sub, subCand, subTypes, depth+1)
			if err != nil {
				return false, nil, err
			}
			if ok {
				return true, prepend(List{Prefix: w[:l]}, w[l:]), nil
			}
		}
		return false, nil, nil
	}

	ok, w, err := e.useful(defaultMatrix(matrix), cand[1:], types[1:], depth+1)
	if !ok || err != nil {
		return false, nil, err
	}
	return true, prepend(List{Prefix: wildcards(missing)}, w), nil
}

// usefulInterval handles a literal or range candidate head by splitting
// it into segments the matrix treats uniformly.
func (e *engine) usefulInterval(matrix []Row, civ interval, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	ivs := []interval{civ}
	for _, h := range columnHeads(matrix) {
		if iv, ok := headInterval(h); ok && iv.overlaps(civ) {
			ivs = append(ivs, iv)
		}
	}
	for _, seg := range splitSegments(ivs) {
		if !civ.contains(seg) {
			continue
		}
		ok, w, err := e.useful(specializeInterval(matrix, seg), cand[1:], types[1:], depth+1)
		if err != nil {
			return false, nil, err
		}
		if ok {
			return true, prepend(LitInt{Value: seg.lo}, w), nil
		}
	}
	return false, nil, nil
}

// usefulList handles a list candidate head. A rest candidate stands for a
// family of lengths; it is useful if any of them is.
func (e *engine) usefulList(matrix []Row, head List, cand []Pattern, types []typesystem.Type, depth int) (bool, []Pattern, error) {
	elem := e.listElemType(types[0])

	tryLen := func(l int, fixed []Pattern) (bool, []Pattern, error) {
		sub := specializeListLen(matrix, l)
		subCand := append(append([]Pattern{}, fixed...), cand[1:]...)
		subTypes := append(repeatType(elem, l), types[1:]...)
		ok, w, err := e.useful(sub, subCand, subTypes, depth+1)
		if !ok || err != nil {
			return false, nil, err
		}
		return true, prepend(List{Prefix: w[:l]}, w[l:]), nil
	}

	if !head.HasRest {
		return tryLen(len(head.Prefix), head.Prefix)
	}

	minL := len(head.Prefix) + len(head.Suffix)
	maxFixed := minL
	for _, h := range columnHeads(matrix) {
		if l, ok := h.(List); ok {
			if fixed := len(l.Prefix) + len(l.Suffix); fixed > maxFixed {
				maxFixed = fixed
			}
		}
	}
	if maxFixed+1 > config.MaxListSplit {
		return false, nil, errTooComplex
	}
	for l := minL; l <= maxFixed+1; l++ {
		fixed := make([]Pattern, 0, l)
		fixed = append(fixed, head.Prefix...)
		fixed = append(fixed, wildcards(l-minL)...)
		fixed = append(fixed, head.Suffix...)
		ok, w, err := tryLen(l, fixed)
		if err != nil {
			return false, nil, err
		}
		if ok {
			return true, w, nil
		}
	}
	return false, nil, nil
}

// --- specialization ---------------------------------------------------

// columnHeads returns the structural heads of the first column, skipping
// wildcard-like rows.
func columnHeads(matrix []Row) []Pattern {
	var heads []Pattern
	for _, r := range matrix {
		h := stripAt(r.Patterns[0])
		if !isWildcardLike(h) {
			heads = append(heads, h)
		}
	}
	return heads
}

func specializeVariant(matrix []Row, index, arity int) []Row {
	var out []Row
	for _, r := range matrix {
		switch h := stripAt(r.Patterns[0]).(type) {
		case Wildcard, Binding:
			out = append(out, r.withPatterns(append(wildcards(arity), r.Patterns[1:]...)))
		case Variant:
			if h.Index == index {
				out = append(out, r.withPatterns(append(append([]Pattern{}, h.Args...), r.Patterns[1:]...)))
			}
		}
	}
	return out
}

func specializeBool(matrix []Row, b bool) []Row {
	var out []Row
	for _, r := range matrix {
		switch h := stripAt(r.Patterns[0]).(type) {
		case Wildcard, Binding:
			out = append(out, r.withPatterns(r.Patterns[1:]))
		case LitBool:
			if h.Value == b {
				out = append(out, r.withPatterns(r.Patterns[1:]))
			}
		}
	}
	return out
}

func specializeStr(matrix []Row, s string) []Row {
	var out []Row
	for _, r := range matrix {
		switch h := stripAt(r.Patterns[0]).(type) {
		case Wildcard, Binding:
			out = append(out, r.withPatterns(r.Patterns[1:]))
		case LitStr:
			if h.Value == s {
				out = append(out, r.withPatterns(r.Patterns[1:]))
			}
		}
	}
	return out
}

// specializeInterval keeps rows whose head covers the whole segment. The
// segment construction guarantees partial overlap cannot happen.
func specializeInterval(matrix []Row, seg interval) []Row {
	var out []Row
	for _, r := range matrix {
		h := stripAt(r.Patterns[0])
		if isWildcardLike(h) {
			out = append(out, r.withPatterns(r.Patterns[1:]))
			continue
		}
		if iv, ok := headInterval(h); ok && iv.contains(seg) {
			out = append(out, r.withPatterns(r.Patterns[1:]))
		}
	}
	return out
}

func specializeTuple(matrix []Row, arity int) []Row {
	var out []Row
	for _, r := range matrix {
		switch h := stripAt(r.Patterns[0]).(type) {
		case Wildcard, Binding:
			out = append(out, r.withPatterns(append(wildcards(arity), r.Patterns[1:]...)))
		case Tuple:
			out = append(out, r.withPatterns(append(append([]Pattern{}, h.Elements...), r.Patterns[1:]...)))
		}
	}
	return out
}

// specializeStruct decomposes struct heads into their canonical
// (name-sorted) field order, which the normalizer made uniform.
func specializeStruct(matrix []Row, fieldCount int) []Row {
	var out []Row
	for _, r := range matrix {
		switch h := stripAt(r.Patterns[0]).(type) {
		case Wildcard, Binding:
			out = append(out, r.withPatterns(append(wildcards(fieldCount), r.Patterns[1:]...)))
		case Struct:
			subs := make([]Pattern, 0, fieldCount+len(r.Patterns)-1)
			for _, f := range h.Fields {
				subs = append(subs, f.Pattern)
			}
			out = append(out, r.withPatterns(append(subs, r.Patterns[1:]...)))
		}
	}
	return out
}

// specializeListLen decomposes list heads against a concrete length.
// Rest heads shorter than the length widen with wildcards between prefix
// and suffix.
func specializeListLen(matrix []Row, length int) []Row {
	var out []Row
	for _, r := range matrix {
		switch h := stripAt(r.Patterns[0]).(type) {
		case Wildcard, Binding:
			out = append(out, r.withPatterns(append(wildcards(length), r.Patterns[1:]...)))
		case List:
			fixed := len(h.Prefix) + len(h.Suffix)
			if !h.HasRest {
				if fixed == length {
					out = append(out, r.withPatterns(append(append([]Pattern{}, h.Prefix...), r.Patterns[1:]...)))
				}
				continue
			}
			if fixed > length {
				continue
			}
			subs := make([]Pattern, 0, length+len(r.Patterns)-1)
			subs = append(subs, h.Prefix...)
			subs = append(subs, wildcards(length-fixed)...)
			subs = append(subs, h.Suffix...)
			out = append(out, r.withPatterns(append(subs, r.Patterns[1:]...)))
		}
	}
	return out
}

// defaultMatrix keeps only wildcard-like rows, dropping the column.
func defaultMatrix(matrix []Row) []Row {
	var out []Row
	for _, r := range matrix {
		if isWildcardLike(stripAt(r.Patterns[0])) {
			out = append(out, r.withPatterns(r.Patterns[1:]))
		}
	}
	return out
}

// --- type plumbing ----------------------------------------------------

func (e *engine) signatureOf(t typesystem.Type) (symbols.Signature, bool) {
	if t == nil {
		return nil, false
	}
	return e.catalog.SignatureOf(t)
}

func (e *engine) variantFields(t typesystem.Type, v Variant, arity int) []typesystem.Type {
	if sig, ok := e.signatureOf(t); ok {
		if fin, ok := sig.(symbols.Finite); ok {
			for _, ctor := range fin.Constructors {
				if ctor.Index == v.Index && ctor.Arity() == arity {
					return append([]typesystem.Type{}, ctor.Fields...)
				}
			}
		}
	}
	return make([]typesystem.Type, arity)
}

func (e *engine) structFieldTypes(t typesystem.Type, names []string) []typesystem.Type {
	out := make([]typesystem.Type, len(names))
	if t == nil {
		return out
	}
	for i, name := range names {
		if ft, ok := e.catalog.FieldTypeAt(t, name); ok {
			out[i] = ft
		}
	}
	return out
}

func (e *engine) listElemType(t typesystem.Type) typesystem.Type {
	if sig, ok := e.signatureOf(t); ok {
		if lf, ok := sig.(symbols.ListFamily); ok {
			return lf.Element
		}
	}
	return nil
}

func tupleElemTypes(t typesystem.Type, arity int) []typesystem.Type {
	if tup, ok := t.(typesystem.TTuple); ok && len(tup.Elements) == arity {
		return append([]typesystem.Type{}, tup.Elements...)
	}
	return make([]typesystem.Type, arity)
}

func repeatType(t typesystem.Type, n int) []typesystem.Type {
	out := make([]typesystem.Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func wildcards(n int) []Pattern {
	out := make([]Pattern, n)
	for i := range out {
		out[i] = Wildcard{}
	}
	return out
}

func prepend(head Pattern, rest []Pattern) []Pattern {
	out := make([]Pattern, 0, len(rest)+1)
	out = append(out, head)
	out = append(out, rest...)
	return out
}

func fieldNames(s Struct) []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func rebuildStruct(typeName string, names []string, pats []Pattern) Struct {
	fields := make([]StructField, len(names))
	for i, name := range names {
		fields[i] = StructField{Name: name, Pattern: pats[i]}
	}
	return Struct{TypeName: typeName, Fields: fields}
}
