package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a runtime value a compiled match can scrutinize.
type Value interface {
	valueNode()
	Inspect() string
}

// IntValue is an integer.
type IntValue struct {
	Value int64
}

// BoolValue is a boolean.
type BoolValue struct {
	Value bool
}

// StrValue is a string.
type StrValue struct {
	Value string
}

// DataValue is an enum constructor application: a tag plus payload.
type DataValue struct {
	TypeName string
	Ctor     string
	Tag      int
	Fields   []Value
}

// TupleValue is a fixed-arity tuple.
type TupleValue struct {
	Elements []Value
}

// StructValue is a struct instance.
type StructValue struct {
	TypeName string
	Fields   map[string]Value
}

// ListValue is a list.
type ListValue struct {
	Elements []Value
}

func (*IntValue) valueNode()    {}
func (*BoolValue) valueNode()   {}
func (*StrValue) valueNode()    {}
func (*DataValue) valueNode()   {}
func (*TupleValue) valueNode()  {}
func (*StructValue) valueNode() {}
func (*ListValue) valueNode()   {}

func (v *IntValue) Inspect() string { return strconv.FormatInt(v.Value, 10) }

func (v *BoolValue) Inspect() string {
	if v.Value {
		return "true"
	}
	return "false"
}

func (v *StrValue) Inspect() string { return strconv.Quote(v.Value) }

func (v *DataValue) Inspect() string {
	if len(v.Fields) == 0 {
		return v.Ctor
	}
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Inspect()
	}
	return v.Ctor + "(" + strings.Join(parts, ", ") + ")"
}

func (v *TupleValue) Inspect() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.Inspect()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (v *StructValue) Inspect() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, v.Fields[name].Inspect())
	}
	return v.TypeName + "{" + strings.Join(parts, ", ") + "}"
}

func (v *ListValue) Inspect() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
