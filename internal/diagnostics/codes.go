package diagnostics

// ErrorCode is a stable identifier for a diagnostic kind. Codes never
// change meaning once released; tooling matches on them.
type ErrorCode string

// Match-checking diagnostics (M series).
const (
	ErrM001 ErrorCode = "M001" // non-exhaustive match
	ErrM002 ErrorCode = "M002" // arms cover only under guards
	ErrM003 ErrorCode = "M003" // struct pattern field mismatch
	ErrM004 ErrorCode = "M004" // or-pattern alternatives bind different names
	ErrM005 ErrorCode = "M005" // constructor arity or name mismatch
	ErrM006 ErrorCode = "M006" // match too complex
	ErrM007 ErrorCode = "M007" // malformed pattern (empty range, bad literal)

	WarnM001 ErrorCode = "M101" // unreachable arm
	WarnM002 ErrorCode = "M102" // overlapping integer ranges
)

// Severity distinguishes hard errors from advisory warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

var messages = map[ErrorCode]string{
	ErrM001:  "match is not exhaustive",
	ErrM002:  "match arms only apply under guards",
	ErrM003:  "struct pattern does not match type fields",
	ErrM004:  "or-pattern alternatives must bind the same names",
	ErrM005:  "constructor pattern does not match declaration",
	ErrM006:  "match too complex",
	ErrM007:  "malformed pattern",
	WarnM001: "unreachable match arm",
	WarnM002: "overlapping integer ranges",
}

var severities = map[ErrorCode]Severity{
	WarnM001: SeverityWarning,
	WarnM002: SeverityWarning,
}

// MessageFor returns the base message for a code.
func MessageFor(code ErrorCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown diagnostic"
}

// SeverityFor returns the severity for a code. Codes default to errors.
func SeverityFor(code ErrorCode) Severity {
	if sev, ok := severities[code]; ok {
		return sev
	}
	return SeverityError
}
