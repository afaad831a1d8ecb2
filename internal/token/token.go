package token

// TokenType identifies the lexical class of a token.
type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT_LOWER TokenType = "IDENT_LOWER" // bindings, field names
	IDENT_UPPER TokenType = "IDENT_UPPER" // type and constructor names

	INT    TokenType = "INT"
	STRING TokenType = "STRING"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"

	UNDERSCORE TokenType = "UNDERSCORE"
	LPAREN     TokenType = "LPAREN"
	RPAREN     TokenType = "RPAREN"
	LBRACKET   TokenType = "LBRACKET"
	RBRACKET   TokenType = "RBRACKET"
	LBRACE     TokenType = "LBRACE"
	RBRACE     TokenType = "RBRACE"
	COMMA      TokenType = "COMMA"
	DOT_DOT    TokenType = "DOT_DOT"
	DOT_DOT_EQ TokenType = "DOT_DOT_EQ"
	PIPE       TokenType = "PIPE"
	AT         TokenType = "AT"
	MATCH      TokenType = "MATCH"
)

// Token is a lexical token with its source position. Pattern nodes carry
// the token that introduced them so diagnostics can point at source.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

// New builds a token at the given position.
func New(tokenType TokenType, lexeme string, line, col int) Token {
	return Token{Type: tokenType, Lexeme: lexeme, Line: line, Column: col}
}
