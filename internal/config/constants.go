package config

// Built-in type names
const (
	IntTypeName    = "Int"
	BoolTypeName   = "Bool"
	StringTypeName = "String"
	NeverTypeName  = "Never"
	ListTypeName   = "List"
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

// Resource caps for a single match site. Checking aborts with a
// "match too complex" diagnostic when a cap is exceeded, so pathological
// inputs degrade to an error instead of unbounded work.
const (
	MaxCheckDepth  = 256
	MaxMatrixRows  = 65536
	MaxListSplit   = 512
	MaxSwitchEdges = 4096
)
