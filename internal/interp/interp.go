// Package interp implements the execution pass, the largest component of
// the simulator: a handler per AST node type, the two-pass block traversal
// (hoist then execute), the CallExpression protocol, and the propagation
// of non-local control flow via internal/bubble.
//
// One big file, one method per AST node kind, threading a *trace.Recorder
// through every handler and returning (*bubble.Signal, error) rather than
// a bare (Value, error) — return/throw/break/continue unwind as an
// explicit typed signal, never a Go error.
package interp

import (
	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/bubble"
	"github.com/jstrace/jstrace/internal/hoist"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/simerror"
	"github.com/jstrace/jstrace/internal/trace"
)

// Interp is the simulator engine. One Interp runs exactly one program and
// owns its memory and step log exclusively.
type Interp struct {
	Rec    *trace.Recorder
	Strict bool
}

// New creates a fresh simulator instance.
func New() *Interp {
	return &Interp{Rec: trace.NewRecorder()}
}

// Run drives the top-level traversal over program and returns the full
// step log, complete, before returning. err is non-nil only for an
// internal simulator error; an uncaught ECMAScript throw, or a top-level
// return/break/continue, simply ends the trace with no error.
func (ip *Interp) Run(program *ast.Program) ([]*trace.Step, error) {
	ip.Rec.Emit(program.Type(), program.Range(), trace.Initial, 0, "")

	decls := hoist.HoistBlock(program.Body, ip.Rec.Scopes, 0, ip.Rec.Heap)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeDeclaration, Declarations: decls})
	ip.Rec.Emit(program.Type(), program.Range(), trace.Hoisting, 0, "")

	_, err := ip.execStatements(program.Body, 0)
	if err != nil {
		return ip.Rec.Steps(), err
	}
	return ip.Rec.Steps(), nil
}

// execStatements runs every non-FunctionDeclaration statement of a block's
// direct body in order, stopping early if a bubble propagates.
func (ip *Interp) execStatements(stmts []ast.Node, scopeIndex int) (*bubble.Signal, error) {
	for _, st := range stmts {
		if _, isFn := st.(*ast.FunctionDeclaration); isFn {
			continue
		}
		sig, err := ip.execStmt(st, scopeIndex)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

// paramBinder binds a function's parameters or a catch clause's parameter
// into the freshly pushed scope, returning the declaration records to fold
// into the block's single hoisting step.
type paramBinder func(scopeIndex int) ([]memory.Declaration, *bubble.Signal, error)

// runBlock implements the generic "push scope, hoist, execute, pop scope"
// traversal shared by BlockStatement, function bodies, catch bodies, try
// blocks, finally blocks, and loop bodies entered as their own scope.
// binder is nil for plain blocks.
func (ip *Interp) runBlock(kind memory.Kind, nodeType string, rng [2]int, stmts []ast.Node, binder paramBinder) (*bubble.Signal, error) {
	scopeIndex := ip.Rec.Scopes.Push(kind)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangePushScope, ScopeIndex: scopeIndex})
	ip.Rec.Emit(nodeType, rng, trace.PushScope, scopeIndex, "")

	var paramDecls []memory.Declaration
	if binder != nil {
		d, sig, err := binder(scopeIndex)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			ip.popScope(kind, nodeType, rng, scopeIndex, sig)
			return sig, nil
		}
		paramDecls = d
	}

	bodyDecls := hoist.HoistBlock(stmts, ip.Rec.Scopes, scopeIndex, ip.Rec.Heap)
	allDecls := append(append([]memory.Declaration{}, paramDecls...), bodyDecls...)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeDeclaration, Declarations: allDecls})
	ip.Rec.Emit(nodeType, rng, trace.Hoisting, scopeIndex, "")

	sig, err := ip.execStatements(stmts, scopeIndex)
	if err != nil {
		return nil, err
	}
	ip.popScope(kind, nodeType, rng, scopeIndex, sig)
	return sig, nil
}

func (ip *Interp) popScope(_ memory.Kind, nodeType string, rng [2]int, scopeIndex int, sig *bubble.Signal) {
	bubbleTag := ""
	if sig != nil {
		bubbleTag = string(sig.Kind)
	}
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangePopScope, ScopeIndex: scopeIndex})
	ip.Rec.Emit(nodeType, rng, trace.PopScope, scopeIndex, bubbleTag)
	ip.Rec.Scopes.Pop()
}

func unhandled(node ast.Node) error {
	return simerror.Unhandled(node.Type(), node.Range())
}
