package ast

import (
	"github.com/upstat-io/sigil-lang-sub006/internal/token"
)

// Node is the base interface of all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Expression nodes are produced by the front end; the match checker only
// carries them through (guards, arm bodies) without interpreting them.
type Expression interface {
	Node
	expressionNode()
}

// Pattern nodes form the surface pattern language of match arms.
type Pattern interface {
	Node
	patternNode()
}

// Identifier is a lowercase name reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	return i.Token
}

// MatchArm is one `pattern [if guard] -> body` clause.
type MatchArm struct {
	Pattern    Pattern
	Guard      Expression // nil when the arm is unguarded
	Expression Expression
}

// MatchExpression is a full match site: a scrutinee and its ordered arms.
type MatchExpression struct {
	Token      token.Token
	Expression Expression
	Arms       []*MatchArm
}

func (m *MatchExpression) expressionNode()      {}
func (m *MatchExpression) TokenLiteral() string { return m.Token.Lexeme }
func (m *MatchExpression) GetToken() token.Token {
	return m.Token
}
