package memory

import "github.com/jstrace/jstrace/internal/value"

// Declaration is the record emitted during hoisting for each binding
// created.
type Declaration struct {
	DeclKind     DeclKind
	VariableName string
	InitialValue value.Value
	ScopeIndex   int
}
