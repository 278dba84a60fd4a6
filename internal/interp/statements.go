package interp

import (
	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/bubble"
	"github.com/jstrace/jstrace/internal/hoist"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/ops"
	"github.com/jstrace/jstrace/internal/simerror"
	"github.com/jstrace/jstrace/internal/trace"
	"github.com/jstrace/jstrace/internal/value"
)

// execStmt drives node's executing/executed step pair. Statement handlers
// push nothing net onto the operand stack.
func (ip *Interp) execStmt(node ast.Node, scopeIndex int) (*bubble.Signal, error) {
	ip.Rec.Emit(node.Type(), node.Range(), trace.Executing, scopeIndex, "")
	sig, tagOverride, err := ip.dispatchStmt(node, scopeIndex)
	if err != nil {
		return nil, err
	}
	tag := tagOverride
	if tag == "" && sig != nil {
		tag = string(sig.Kind)
	}
	ip.Rec.Emit(node.Type(), node.Range(), trace.Executed, scopeIndex, tag)
	return sig, nil
}

func declKindFor(kind string) memory.DeclKind {
	switch kind {
	case "let":
		return memory.DeclLet
	case "const":
		return memory.DeclConst
	default:
		return memory.DeclVar
	}
}

func (ip *Interp) dispatchStmt(node ast.Node, scopeIndex int) (*bubble.Signal, string, error) {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return ip.execVariableDeclaration(n, scopeIndex)
	case *ast.ExpressionStatement:
		return ip.execExpressionStatement(n)
	case *ast.IfStatement:
		return ip.execIf(n)
	case *ast.BlockStatement:
		sig, err := ip.runBlock(memory.Block, n.Type(), n.Range(), n.Body, nil)
		return sig, "", err
	case *ast.ForStatement:
		return ip.execFor(n)
	case *ast.WhileStatement:
		return ip.execWhile(n)
	case *ast.DoWhileStatement:
		return ip.execDoWhile(n)
	case *ast.ReturnStatement:
		return ip.execReturn(n)
	case *ast.BreakStatement:
		return bubble.NewBreak(), "", nil
	case *ast.ContinueStatement:
		return bubble.NewContinue(), "", nil
	case *ast.ThrowStatement:
		return ip.execThrow(n)
	case *ast.TryStatement:
		return ip.execTry(n)
	case *ast.FunctionDeclaration:
		// Already bound by the enclosing block's hoisting pass; nothing to
		// do when reached in source-statement order.
		return nil, "", nil
	case *ast.ClassDeclaration, *ast.MethodDefinition, *ast.PropertyDefinition:
		// Descriptive only: no class semantics executed.
		return nil, "", nil
	}
	return nil, "", unhandled(node)
}

func (ip *Interp) execVariableDeclaration(n *ast.VariableDeclaration, scopeIndex int) (*bubble.Signal, string, error) {
	for _, d := range n.Declarations {
		id, ok := d.Id.(*ast.Identifier)
		if !ok {
			continue
		}
		declKind := declKindFor(n.Kind)
		if d.Init != nil {
			v, sig, err := ip.evalValue(d.Init)
			if err != nil || sig != nil {
				return sig, "", err
			}
			ip.Rec.Scopes.Declare(scopeIndex, id.Name, declKind, v)
			ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeWriteVariable, ScopeIndex: scopeIndex, VariableName: id.Name, Value: v})
		} else if n.Kind == "let" {
			// Clears the TDZ sentinel hoisting left behind even without an
			// initializer; `const` without an initializer is not valid
			// source and is left untouched.
			ip.Rec.Scopes.Declare(scopeIndex, id.Name, declKind, value.Undef())
			ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeWriteVariable, ScopeIndex: scopeIndex, VariableName: id.Name, Value: value.Undef()})
		}
	}
	return nil, "", nil
}

func (ip *Interp) execExpressionStatement(n *ast.ExpressionStatement) (*bubble.Signal, string, error) {
	sig, err := ip.evalExpr(n.Expression)
	if err != nil || sig != nil {
		return sig, "", err
	}
	if _, ok := ip.Rec.Pop(); !ok {
		return nil, "", simerror.StackUnderflow(n.Type(), n.Range(), "discarding an expression statement's result")
	}
	return nil, "", nil
}

// execBranch runs an if/else branch in its own `conditional` scope, whether
// the branch is a block or a single statement.
func (ip *Interp) execBranch(node ast.Node) (*bubble.Signal, error) {
	if blk, ok := node.(*ast.BlockStatement); ok {
		return ip.runBlock(memory.Conditional, blk.Type(), blk.Range(), blk.Body, nil)
	}
	return ip.runBlock(memory.Conditional, node.Type(), node.Range(), []ast.Node{node}, nil)
}

func (ip *Interp) execIf(n *ast.IfStatement) (*bubble.Signal, string, error) {
	test, sig, err := ip.evalValue(n.Test)
	if err != nil || sig != nil {
		return sig, "", err
	}
	if ops.ToBoolean(test) {
		sig, err := ip.execBranch(n.Consequent)
		return sig, "", err
	}
	if n.Alternate != nil {
		sig, err := ip.execBranch(n.Alternate)
		return sig, "", err
	}
	return nil, "", nil
}

// execLoopBody runs a loop's body statement. A BlockStatement body gets its
// own `block` scope as usual; a bare statement body runs directly in the
// current top scope (the for-loop's own scope, or the enclosing scope for
// while/do-while, which push none), with nothing hoisted for it.
func (ip *Interp) execLoopBody(body ast.Node) (*bubble.Signal, error) {
	if blk, ok := body.(*ast.BlockStatement); ok {
		return ip.runBlock(memory.Block, blk.Type(), blk.Range(), blk.Body, nil)
	}
	return ip.execStmt(body, ip.Rec.Scopes.Top())
}

// execForInit handles a ForStatement's init clause directly in the loop
// scope already pushed by execFor: a VariableDeclaration declares fresh
// bindings there (it is not hoisted the way a block's children are, since a
// for-loop's own scope never runs a hoisting pass over a statement list);
// any other node is an expression run for effect.
func (ip *Interp) execForInit(node ast.Node, scopeIndex int) (*bubble.Signal, error) {
	if n, ok := node.(*ast.VariableDeclaration); ok {
		for _, d := range n.Declarations {
			id, ok := d.Id.(*ast.Identifier)
			if !ok {
				continue
			}
			declKind := declKindFor(n.Kind)
			v := value.Undef()
			if d.Init != nil {
				val, sig, err := ip.evalValue(d.Init)
				if err != nil {
					return nil, err
				}
				if sig != nil {
					return sig, nil
				}
				v = val
			}
			ip.Rec.Scopes.Declare(scopeIndex, id.Name, declKind, v)
			ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeDeclaration, Declarations: []memory.Declaration{{DeclKind: declKind, VariableName: id.Name, InitialValue: v, ScopeIndex: scopeIndex}}})
		}
		return nil, nil
	}
	sig, err := ip.evalExpr(node)
	if err != nil || sig != nil {
		return sig, err
	}
	ip.Rec.Pop()
	return nil, nil
}

func (ip *Interp) execFor(n *ast.ForStatement) (*bubble.Signal, string, error) {
	scopeIndex := ip.Rec.Scopes.Push(memory.Loop)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangePushScope, ScopeIndex: scopeIndex})
	ip.Rec.Emit(n.Type(), n.Range(), trace.PushScope, scopeIndex, "")

	var result *bubble.Signal
	if n.Init != nil {
		sig, err := ip.execForInit(n.Init, scopeIndex)
		if err != nil {
			return nil, "", err
		}
		result = sig
	}

	for result == nil {
		if n.Test != nil {
			test, sig, err := ip.evalValue(n.Test)
			if err != nil {
				return nil, "", err
			}
			if sig != nil {
				result = sig
				break
			}
			if !ops.ToBoolean(test) {
				break
			}
		}
		sig, err := ip.execLoopBody(n.Body)
		if err != nil {
			return nil, "", err
		}
		if sig != nil {
			if sig.Kind == bubble.Break {
				break
			}
			if sig.Kind != bubble.Continue {
				result = sig
				break
			}
		}
		if n.Update != nil {
			sig, err := ip.evalExpr(n.Update)
			if err != nil {
				return nil, "", err
			}
			if sig != nil {
				result = sig
				break
			}
			ip.Rec.Pop()
		}
	}

	ip.popScope(memory.Loop, n.Type(), n.Range(), scopeIndex, result)
	return result, "", nil
}

func (ip *Interp) execWhile(n *ast.WhileStatement) (*bubble.Signal, string, error) {
	for {
		test, sig, err := ip.evalValue(n.Test)
		if err != nil {
			return nil, "", err
		}
		if sig != nil {
			return sig, "", nil
		}
		if !ops.ToBoolean(test) {
			return nil, "", nil
		}
		sig, err = ip.execLoopBody(n.Body)
		if err != nil {
			return nil, "", err
		}
		if sig != nil {
			if sig.Kind == bubble.Break {
				return nil, "", nil
			}
			if sig.Kind == bubble.Continue {
				continue
			}
			return sig, "", nil
		}
	}
}

func (ip *Interp) execDoWhile(n *ast.DoWhileStatement) (*bubble.Signal, string, error) {
	for {
		sig, err := ip.execLoopBody(n.Body)
		if err != nil {
			return nil, "", err
		}
		if sig != nil {
			if sig.Kind == bubble.Break {
				return nil, "", nil
			}
			if sig.Kind != bubble.Continue {
				return sig, "", nil
			}
		}
		test, sig2, err := ip.evalValue(n.Test)
		if err != nil {
			return nil, "", err
		}
		if sig2 != nil {
			return sig2, "", nil
		}
		if !ops.ToBoolean(test) {
			return nil, "", nil
		}
	}
}

func (ip *Interp) execReturn(n *ast.ReturnStatement) (*bubble.Signal, string, error) {
	if n.Argument != nil {
		sig, err := ip.evalExpr(n.Argument)
		if err != nil || sig != nil {
			return sig, "", err
		}
	} else {
		ip.Rec.Push(value.Undef())
	}
	return bubble.NewReturn(), "", nil
}

func (ip *Interp) execThrow(n *ast.ThrowStatement) (*bubble.Signal, string, error) {
	sig, err := ip.evalExpr(n.Argument)
	if err != nil || sig != nil {
		return sig, "", err
	}
	top, ok := ip.Rec.Memval.Peek(0)
	if !ok {
		return nil, "", simerror.StackUnderflow(n.Type(), n.Range(), "reading the thrown value")
	}
	ip.Rec.Console.Append(trace.Error, []value.Value{value.Str(ip.errorDisplayString(top))})
	return bubble.NewThrow(), "", nil
}

func (ip *Interp) errorDisplayString(v value.Value) string {
	if v.IsReference() {
		if obj, ok := ip.Rec.Heap.Get(v.R); ok {
			if s, ok := obj.GetProperty("stack"); ok && s.Kind == value.String {
				return s.S
			}
		}
	}
	return ops.ToString(v, ip.Rec.Heap)
}

func (ip *Interp) execTry(n *ast.TryStatement) (*bubble.Signal, string, error) {
	sig, err := ip.runBlock(memory.Try, n.Block.Type(), n.Block.Range(), n.Block.Body, nil)
	if err != nil {
		return nil, "", err
	}

	if sig != nil && sig.Kind == bubble.Throw && n.Handler != nil {
		thrown, ok := ip.Rec.Pop()
		if !ok {
			return nil, "", simerror.StackUnderflow(n.Type(), n.Range(), "consuming the thrown value for catch binding")
		}
		binder := func(scopeIndex int) ([]memory.Declaration, *bubble.Signal, error) {
			return hoist.BindCatchParam(n.Handler.Param, thrown, ip.Rec.Scopes, scopeIndex), nil, nil
		}
		catchSig, err := ip.runBlock(memory.Catch, n.Handler.Type(), n.Handler.Range(), n.Handler.Body.Body, binder)
		if err != nil {
			return nil, "", err
		}
		sig = catchSig
	}

	if n.Finalizer != nil {
		finSig, err := ip.runBlock(memory.Finally, n.Finalizer.Type(), n.Finalizer.Range(), n.Finalizer.Body, nil)
		if err != nil {
			return nil, "", err
		}
		if finSig != nil {
			// A bubble-up from `finally` overrides any in-flight bubble
			//.
			sig = finSig
		}
	}

	return sig, "", nil
}
