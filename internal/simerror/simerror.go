// Package simerror implements the simulator's own internal (fatal) error
// class, distinct from ECMAScript-visible errors: an unhandled
// node type, a malformed AST, or an operand-stack underflow are bugs in the
// simulator or its input, not something a `try` inside the simulated
// program could ever catch. Run() surfaces these as a Go error instead of
// as a bubble.
//
// Each error names where it occurred by the offending node's type and its
// [start, end] byte range, since this module's input already arrives as a
// parsed tree with no line/column positions of its own.
package simerror

import "fmt"

// SimulatorError is a fatal, internal failure of the simulator itself.
type SimulatorError struct {
	NodeType string
	Range    [2]int
	Message  string
}

func New(nodeType string, rng [2]int, format string, args ...any) *SimulatorError {
	return &SimulatorError{
		NodeType: nodeType,
		Range:    rng,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (e *SimulatorError) Error() string {
	return fmt.Sprintf("simulator error at %s[%d:%d]: %s", e.NodeType, e.Range[0], e.Range[1], e.Message)
}

// Unhandled builds the standard "don't silently swallow unknown node types"
// error.
func Unhandled(nodeType string, rng [2]int) *SimulatorError {
	return New(nodeType, rng, "no handler registered for node type %q", nodeType)
}

// StackUnderflow builds the standard operand-stack-underflow error.
func StackUnderflow(nodeType string, rng [2]int, context string) *SimulatorError {
	return New(nodeType, rng, "operand stack underflow while %s", context)
}

// Malformed builds an error for an AST node whose contents its type does
// not allow (e.g. an unknown operator string or invalid bigint literal text).
func Malformed(nodeType string, rng [2]int, detail string) *SimulatorError {
	return New(nodeType, rng, "malformed AST: %s", detail)
}
