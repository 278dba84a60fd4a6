// Package hoist implements the hoisting pass: a direct statement-list walk
// (never descending into nested functions or blocks) that declares
// FunctionDeclaration, var, let and const bindings ahead of execution, plus
// the function/catch entry parameter-binding step, which binds values the
// caller has already popped off the operand stack.
//
// Kept separate from internal/interp so the declaration-collection pass and
// the execution pass can each be driven without duplicating the
// per-statement-kind switch.
package hoist

import (
	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/bubble"
	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/value"
)

// Evaluator drives the traversal for a single expression subtree, used here
// only to run an AssignmentPattern's default initializer. Accepting a
// callback instead of importing internal/interp directly avoids a hoist/
// interp import cycle, since interp is the package that will supply it.
type Evaluator func(node ast.Node) (value.Value, *bubble.Signal, error)

// HoistBlock declares every FunctionDeclaration/var/let/const binding found
// directly in stmts (no descent into nested functions or blocks), in source
// order, and returns the declaration records for the caller's single
// hoisting step.
func HoistBlock(stmts []ast.Node, scopes *memory.ScopeStack, scopeIndex int, h *heap.Heap) []memory.Declaration {
	var decls []memory.Declaration
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.FunctionDeclaration:
			if n.Id == nil {
				continue
			}
			ref, obj := h.Allocate(heap.FunctionObject)
			obj.FuncNode = n
			obj.FuncName = n.Id.Name
			obj.ClosureTop = scopes.Len()
			v := value.Ref_(ref)
			scopes.Declare(scopeIndex, n.Id.Name, memory.DeclFunction, v)
			decls = append(decls, memory.Declaration{DeclKind: memory.DeclFunction, VariableName: n.Id.Name, InitialValue: v, ScopeIndex: scopeIndex})
		case *ast.VariableDeclaration:
			decls = append(decls, hoistVariableDeclaration(n, scopes, scopeIndex)...)
		}
	}
	return decls
}

func hoistVariableDeclaration(n *ast.VariableDeclaration, scopes *memory.ScopeStack, scopeIndex int) []memory.Declaration {
	var decls []memory.Declaration
	for _, d := range n.Declarations {
		id, ok := d.Id.(*ast.Identifier)
		if !ok {
			continue
		}
		var declKind memory.DeclKind
		var initial value.Value
		switch n.Kind {
		case "var":
			declKind, initial = memory.DeclVar, value.Undef()
		case "let":
			declKind, initial = memory.DeclLet, value.NotInit()
		case "const":
			declKind, initial = memory.DeclConst, value.NotInit()
		default:
			continue
		}
		scopes.Declare(scopeIndex, id.Name, declKind, initial)
		decls = append(decls, memory.Declaration{DeclKind: declKind, VariableName: id.Name, InitialValue: initial, ScopeIndex: scopeIndex})
	}
	return decls
}

// BindParams binds a function's parameters for one call. args
// holds the already-evaluated argument values in left-to-right call order
// (the caller has already popped them off the operand stack, undoing the
// reverse order they were pushed in). Each param is bound as declaration
// kind `param`; an AssignmentPattern whose corresponding argument is
// undefined (explicitly passed or simply missing) triggers immediate
// execution of its default initializer via evalDefault, inside scopeIndex,
// before the next parameter is bound — so later defaults can observe
// earlier parameters.
//
// Destructuring patterns (ObjectPattern/ArrayPattern) and rest parameters
// are not modeled; only Identifier and AssignmentPattern(Identifier, expr)
// parameter shapes are supported, matching the AST node set this module
// defines.
func BindParams(params []ast.Node, args []value.Value, scopes *memory.ScopeStack, scopeIndex int, evalDefault Evaluator) ([]memory.Declaration, *bubble.Signal, error) {
	var decls []memory.Declaration
	for i, p := range params {
		var raw value.Value
		if i < len(args) {
			raw = args[i]
		} else {
			raw = value.Undef()
		}
		switch pn := p.(type) {
		case *ast.Identifier:
			scopes.Declare(scopeIndex, pn.Name, memory.DeclParam, raw)
			decls = append(decls, memory.Declaration{DeclKind: memory.DeclParam, VariableName: pn.Name, InitialValue: raw, ScopeIndex: scopeIndex})
		case *ast.AssignmentPattern:
			id, ok := pn.Left.(*ast.Identifier)
			if !ok {
				continue
			}
			bound := raw
			if raw.IsUndefined() {
				v, sig, err := evalDefault(pn.Right)
				if err != nil {
					return nil, nil, err
				}
				if sig != nil {
					return decls, sig, nil
				}
				bound = v
			}
			scopes.Declare(scopeIndex, id.Name, memory.DeclParam, bound)
			decls = append(decls, memory.Declaration{DeclKind: memory.DeclParam, VariableName: id.Name, InitialValue: bound, ScopeIndex: scopeIndex})
		}
	}
	return decls, nil, nil
}

// BindCatchParam binds a catch clause's single optional parameter to the
// thrown value. param may be nil for a parameterless `catch {}`.
func BindCatchParam(param ast.Node, thrown value.Value, scopes *memory.ScopeStack, scopeIndex int) []memory.Declaration {
	if param == nil {
		return nil
	}
	id, ok := param.(*ast.Identifier)
	if !ok {
		return nil
	}
	scopes.Declare(scopeIndex, id.Name, memory.DeclParam, thrown)
	return []memory.Declaration{{DeclKind: memory.DeclParam, VariableName: id.Name, InitialValue: thrown, ScopeIndex: scopeIndex}}
}
