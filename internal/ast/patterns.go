package ast

import (
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
)

// WildcardPattern is `_`. Matches anything, binds nothing.
type WildcardPattern struct {
	Token token.Token
}

func (w *WildcardPattern) patternNode()         {}
func (w *WildcardPattern) TokenLiteral() string { return w.Token.Lexeme }
func (w *WildcardPattern) GetToken() token.Token {
	return w.Token
}

// IdentifierPattern is a lowercase name: matches anything and binds it.
type IdentifierPattern struct {
	Token token.Token
	Value string
}

func (i *IdentifierPattern) patternNode()         {}
func (i *IdentifierPattern) TokenLiteral() string { return i.Token.Lexeme }
func (i *IdentifierPattern) GetToken() token.Token {
	return i.Token
}

// LiteralPattern matches an int, bool or string constant. Value holds
// int64, bool or string.
type LiteralPattern struct {
	Token token.Token
	Value interface{}
}

func (l *LiteralPattern) patternNode()         {}
func (l *LiteralPattern) TokenLiteral() string { return l.Token.Lexeme }
func (l *LiteralPattern) GetToken() token.Token {
	return l.Token
}

// ConstructorPattern matches one enum variant, e.g. Some(x) or None.
type ConstructorPattern struct {
	Token    token.Token
	Name     *Identifier
	Elements []Pattern
}

func (c *ConstructorPattern) patternNode()         {}
func (c *ConstructorPattern) TokenLiteral() string { return c.Token.Lexeme }
func (c *ConstructorPattern) GetToken() token.Token {
	return c.Token
}

// TuplePattern matches a fixed-arity tuple positionally.
type TuplePattern struct {
	Token    token.Token
	Elements []Pattern
}

func (t *TuplePattern) patternNode()         {}
func (t *TuplePattern) TokenLiteral() string { return t.Token.Lexeme }
func (t *TuplePattern) GetToken() token.Token {
	return t.Token
}

// RecordFieldPattern is one `name: pattern` entry of a struct pattern.
type RecordFieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern matches a struct by field name. HasRest marks a trailing
// `..` that tolerates unlisted fields.
type RecordPattern struct {
	Token    token.Token
	TypeName string
	Fields   []RecordFieldPattern
	HasRest  bool
}

func (r *RecordPattern) patternNode()         {}
func (r *RecordPattern) TokenLiteral() string { return r.Token.Lexeme }
func (r *RecordPattern) GetToken() token.Token {
	return r.Token
}

// SpreadPattern is `..` or `..name` inside a list pattern; it matches the
// elements between the fixed prefix and suffix.
type SpreadPattern struct {
	Token token.Token
	Name  string // empty for an anonymous rest
}

func (s *SpreadPattern) patternNode()         {}
func (s *SpreadPattern) TokenLiteral() string { return s.Token.Lexeme }
func (s *SpreadPattern) GetToken() token.Token {
	return s.Token
}

// ListPattern matches a list by shape. Elements may contain at most one
// SpreadPattern, anywhere; elements around it form prefix and suffix.
type ListPattern struct {
	Token    token.Token
	Elements []Pattern
}

func (l *ListPattern) patternNode()         {}
func (l *ListPattern) TokenLiteral() string { return l.Token.Lexeme }
func (l *ListPattern) GetToken() token.Token {
	return l.Token
}

// RangePattern matches integers in an interval. A nil bound is open on
// that side.
type RangePattern struct {
	Token     token.Token
	Low       *LiteralPattern
	High      *LiteralPattern
	Inclusive bool
}

func (r *RangePattern) patternNode()         {}
func (r *RangePattern) TokenLiteral() string { return r.Token.Lexeme }
func (r *RangePattern) GetToken() token.Token {
	return r.Token
}

// OrPattern matches when any alternative matches. All alternatives must
// bind the same names.
type OrPattern struct {
	Token        token.Token
	Alternatives []Pattern
}

func (o *OrPattern) patternNode()         {}
func (o *OrPattern) TokenLiteral() string { return o.Token.Lexeme }
func (o *OrPattern) GetToken() token.Token {
	return o.Token
}

// AtPattern binds the whole matched value while also matching the inner
// pattern, e.g. `p @ Some(x)`.
type AtPattern struct {
	Token   token.Token
	Name    string
	Pattern Pattern
}

func (a *AtPattern) patternNode()         {}
func (a *AtPattern) TokenLiteral() string { return a.Token.Lexeme }
func (a *AtPattern) GetToken() token.Token {
	return a.Token
}
