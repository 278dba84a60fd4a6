package interp

import (
	"math"
	"math/big"

	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/bubble"
	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/hoist"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/ops"
	"github.com/jstrace/jstrace/internal/simerror"
	"github.com/jstrace/jstrace/internal/trace"
	"github.com/jstrace/jstrace/internal/value"
)

// evalExpr drives node's evaluating/evaluated step pair and leaves exactly
// one value on top of the operand stack on normal completion. On a throw
// bubble, no result is pushed; the thrown value is left on top of the
// operand stack instead. The caller must check the returned signal.
func (ip *Interp) evalExpr(node ast.Node) (*bubble.Signal, error) {
	return ip.evalExprOpt(node, false)
}

func (ip *Interp) evalExprOpt(node ast.Node, typeofCtx bool) (*bubble.Signal, error) {
	scopeIndex := ip.Rec.Scopes.Top()
	ip.Rec.Emit(node.Type(), node.Range(), trace.Evaluating, scopeIndex, "")
	sig, tagOverride, err := ip.dispatchExpr(node, typeofCtx)
	if err != nil {
		return nil, err
	}
	tag := tagOverride
	if tag == "" && sig != nil {
		tag = string(sig.Kind)
	}
	ip.Rec.Emit(node.Type(), node.Range(), trace.Evaluated, scopeIndex, tag)
	return sig, nil
}

// evalValue evaluates node and pops its result for immediate consumption by
// the caller (the common "a parent needs its child's value" shape). It must
// never be used where the value needs to remain observable on the stack
// (e.g. ThrowStatement's argument).
func (ip *Interp) evalValue(node ast.Node) (value.Value, *bubble.Signal, error) {
	sig, err := ip.evalExpr(node)
	if err != nil {
		return value.Value{}, nil, err
	}
	if sig != nil {
		return value.Value{}, sig, nil
	}
	v, ok := ip.Rec.Pop()
	if !ok {
		return value.Value{}, nil, simerror.StackUnderflow(node.Type(), node.Range(), "consuming an expression result")
	}
	return v, nil, nil
}

func (ip *Interp) evalValueTypeof(node ast.Node) (value.Value, *bubble.Signal, error) {
	sig, err := ip.evalExprOpt(node, true)
	if err != nil {
		return value.Value{}, nil, err
	}
	if sig != nil {
		return value.Value{}, sig, nil
	}
	v, ok := ip.Rec.Pop()
	if !ok {
		return value.Value{}, nil, simerror.StackUnderflow(node.Type(), node.Range(), "consuming a typeof operand")
	}
	return v, nil, nil
}

// dispatchExpr is the per-node-type handler table for expressions. The
// returned tag, when non-empty, overrides the bubble tag evalExprOpt would
// otherwise derive from sig. Handlers that raise a simulated error return
// "throw" alongside a throw signal, which is the same tag sig would give;
// the only case where it differs from sig is CallExpression's
// return-absorption case (nil signal, "return" tag).
func (ip *Interp) dispatchExpr(node ast.Node, typeofCtx bool) (*bubble.Signal, string, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return ip.evalLiteral(n)
	case *ast.Identifier:
		return ip.evalIdentifier(n, typeofCtx)
	case *ast.BinaryExpression:
		return ip.evalBinary(n)
	case *ast.LogicalExpression:
		return ip.evalLogical(n)
	case *ast.UnaryExpression:
		return ip.evalUnary(n)
	case *ast.UpdateExpression:
		return ip.evalUpdate(n)
	case *ast.AssignmentExpression:
		return ip.evalAssignment(n)
	case *ast.ConditionalExpression:
		return ip.evalConditional(n)
	case *ast.CallExpression:
		return ip.evalCall(n)
	case *ast.MemberExpression:
		return ip.evalMember(n)
	case *ast.ObjectExpression:
		return ip.evalObjectLiteral(n)
	case *ast.ArrayExpression:
		return ip.evalArrayLiteral(n)
	case *ast.FunctionExpression:
		return ip.evalFunctionLiteral(n, n.Id, n.Params, n.Body, false)
	case *ast.ArrowFunctionExpression:
		return ip.evalArrowLiteral(n)
	}
	return nil, "", unhandled(node)
}

func (ip *Interp) evalLiteral(n *ast.Literal) (*bubble.Signal, string, error) {
	var v value.Value
	switch n.Kind {
	case "string":
		v = value.Str(n.Str)
	case "number":
		v = value.Num(n.Num)
	case "boolean":
		v = value.Bool(n.Bool)
	case "null":
		v = value.Nul()
	case "bigint":
		bi, ok := new(big.Int).SetString(n.BigIntText, 10)
		if !ok {
			return nil, "", simerror.Malformed(n.Type(), n.Range(), "invalid bigint text "+n.BigIntText)
		}
		v = value.BigI(bi)
	default:
		v = value.Undef()
	}
	ip.Rec.Push(v)
	return nil, "", nil
}

func (ip *Interp) evalIdentifier(n *ast.Identifier, typeofCtx bool) (*bubble.Signal, string, error) {
	if n.Name == "undefined" {
		ip.Rec.Push(value.Undef())
		return nil, "", nil
	}
	if n.Name == "NaN" {
		ip.Rec.Push(value.Num(math.NaN()))
		return nil, "", nil
	}
	if n.Name == "Infinity" {
		ip.Rec.Push(value.Num(math.Inf(1)))
		return nil, "", nil
	}
	b, _, ok := ip.Rec.Scopes.LookupFromTop(n.Name)
	if !ok {
		if typeofCtx {
			ip.Rec.Push(value.Undef())
			return nil, "", nil
		}
		return ip.referenceError(n.Name + " is not defined"), "throw", nil
	}
	if b.Value.IsTDZ() {
		return ip.referenceError("Cannot access '" + n.Name + "' before initialization"), "throw", nil
	}
	ip.Rec.Push(b.Value)
	return nil, "", nil
}

func (ip *Interp) evalBinary(n *ast.BinaryExpression) (*bubble.Signal, string, error) {
	left, sig, err := ip.evalValue(n.Left)
	if err != nil || sig != nil {
		return sig, "", err
	}
	right, sig, err := ip.evalValue(n.Right)
	if err != nil || sig != nil {
		return sig, "", err
	}
	h := ip.Rec.Heap
	var result value.Value
	var opErr error
	switch n.Operator {
	case "===":
		result = value.Bool(ops.StrictEquals(left, right))
	case "!==":
		result = value.Bool(!ops.StrictEquals(left, right))
	case "==":
		result = value.Bool(ops.AbstractEquals(left, right, h))
	case "!=":
		result = value.Bool(!ops.AbstractEquals(left, right, h))
	case "<", "<=", ">", ">=":
		result, opErr = ops.Relational(n.Operator, left, right, h)
	case "+":
		result = ops.Add(left, right, h)
	case "-", "*", "/", "%", "**":
		result, opErr = ops.Arithmetic(n.Operator, left, right, h)
	case "<<", ">>", ">>>":
		result, opErr = ops.Shift(n.Operator, left, right, h)
	case "|", "^", "&":
		result, opErr = ops.Bitwise(n.Operator, left, right, h)
	case "in":
		result, opErr = ops.In(left, right, h)
	case "instanceof":
		result = ops.InstanceOf(left, right)
	default:
		return nil, "", simerror.Malformed(n.Type(), n.Range(), "unknown binary operator "+n.Operator)
	}
	if opErr != nil {
		return ip.typeError(opErr.Error()), "throw", nil
	}
	ip.Rec.Push(result)
	return nil, "", nil
}

func (ip *Interp) evalLogical(n *ast.LogicalExpression) (*bubble.Signal, string, error) {
	left, sig, err := ip.evalValue(n.Left)
	if err != nil || sig != nil {
		return sig, "", err
	}
	switch n.Operator {
	case "&&":
		if !ops.ToBoolean(left) {
			ip.Rec.Push(left)
			return nil, "", nil
		}
	case "||":
		if ops.ToBoolean(left) {
			ip.Rec.Push(left)
			return nil, "", nil
		}
	case "??":
		if !left.IsNullish() {
			ip.Rec.Push(left)
			return nil, "", nil
		}
	default:
		return nil, "", simerror.Malformed(n.Type(), n.Range(), "unknown logical operator "+n.Operator)
	}
	right, sig, err := ip.evalValue(n.Right)
	if err != nil || sig != nil {
		return sig, "", err
	}
	ip.Rec.Push(right)
	return nil, "", nil
}

func (ip *Interp) evalUnary(n *ast.UnaryExpression) (*bubble.Signal, string, error) {
	if n.Operator == "typeof" {
		if id, ok := n.Argument.(*ast.Identifier); ok {
			v, sig, err := ip.evalValueTypeof(id)
			if err != nil || sig != nil {
				return sig, "", err
			}
			ip.Rec.Push(value.Str(ip.typeofString(v)))
			return nil, "", nil
		}
		v, sig, err := ip.evalValue(n.Argument)
		if err != nil || sig != nil {
			return sig, "", err
		}
		ip.Rec.Push(value.Str(ip.typeofString(v)))
		return nil, "", nil
	}
	if n.Operator == "delete" {
		return ip.evalDelete(n)
	}
	v, sig, err := ip.evalValue(n.Argument)
	if err != nil || sig != nil {
		return sig, "", err
	}
	h := ip.Rec.Heap
	switch n.Operator {
	case "void":
		ip.Rec.Push(value.Undef())
	case "!":
		ip.Rec.Push(ops.Not(v))
	case "+", "-", "~":
		r, err := ops.UnaryNumeric(n.Operator, v, h)
		if err != nil {
			return ip.typeError(err.Error()), "throw", nil
		}
		ip.Rec.Push(r)
	default:
		return nil, "", simerror.Malformed(n.Type(), n.Range(), "unknown unary operator "+n.Operator)
	}
	return nil, "", nil
}

func (ip *Interp) typeofString(v value.Value) string {
	switch v.Kind {
	case value.Undefined, value.TDZ:
		return "undefined"
	case value.Null:
		return "object"
	case value.Boolean:
		return "boolean"
	case value.Number:
		return "number"
	case value.BigInt:
		return "bigint"
	case value.String:
		return "string"
	case value.Symbol:
		return "symbol"
	case value.Reference:
		if obj, ok := ip.Rec.Heap.Get(v.R); ok && obj.Kind == heap.FunctionObject {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

func (ip *Interp) evalDelete(n *ast.UnaryExpression) (*bubble.Signal, string, error) {
	switch target := n.Argument.(type) {
	case *ast.Identifier:
		b, _, ok := ip.Rec.Scopes.LookupFromTop(target.Name)
		if !ok || b.DeclKind != memory.DeclGlobal {
			ip.Rec.Push(value.Bool(false))
			return nil, "", nil
		}
		ip.Rec.Push(value.Bool(true))
		return nil, "", nil
	case *ast.MemberExpression:
		objVal, sig, err := ip.evalValue(target.Object)
		if err != nil || sig != nil {
			return sig, "", err
		}
		if objVal.IsNullish() {
			return ip.typeError("Cannot convert undefined or null to object"), "throw", nil
		}
		key, sig, err := ip.propertyKey(target)
		if err != nil || sig != nil {
			return sig, "", err
		}
		deleted := false
		if objVal.IsReference() {
			deleted = ip.Rec.Heap.DeleteProperty(objVal.R, key)
			ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeDeleteProperty, Ref: objVal.R, Key: key})
		}
		ip.Rec.Push(value.Bool(deleted))
		return nil, "", nil
	}
	return nil, "", simerror.Malformed(n.Type(), n.Range(), "delete target must be an identifier or member expression")
}

func (ip *Interp) propertyKey(n *ast.MemberExpression) (string, *bubble.Signal, error) {
	if !n.Computed {
		id, ok := n.Property.(*ast.Identifier)
		if !ok {
			return "", nil, simerror.Malformed(n.Type(), n.Range(), "non-computed member property must be an Identifier")
		}
		return id.Name, nil, nil
	}
	v, sig, err := ip.evalValue(n.Property)
	if err != nil || sig != nil {
		return "", sig, err
	}
	return ops.ToString(v, ip.Rec.Heap), nil, nil
}

func (ip *Interp) evalMember(n *ast.MemberExpression) (*bubble.Signal, string, error) {
	objVal, sig, err := ip.evalValue(n.Object)
	if err != nil || sig != nil {
		return sig, "", err
	}
	key, sig, err := ip.propertyKey(n)
	if err != nil || sig != nil {
		return sig, "", err
	}
	if objVal.IsNullish() {
		return ip.typeError("Cannot read properties of " + ops.ToString(objVal, ip.Rec.Heap) + " (reading '" + key + "')"), "throw", nil
	}
	if !objVal.IsReference() {
		ip.Rec.Push(value.Undef())
		return nil, "", nil
	}
	ip.Rec.Push(ip.Rec.Heap.ReadProperty(objVal.R, key))
	return nil, "", nil
}

func (ip *Interp) evalUpdate(n *ast.UpdateExpression) (*bubble.Signal, string, error) {
	id, ok := n.Argument.(*ast.Identifier)
	if !ok {
		// member-expression targets (a[i]++) are a natural extension but are
		// not exercised by any scenario in scope; identifiers cover every
		// update-expression use named here.
		return nil, "", simerror.Unhandled(n.Type(), n.Range())
	}
	b, scopeIdx, ok := ip.Rec.Scopes.LookupFromTop(id.Name)
	if !ok {
		return ip.referenceError(id.Name + " is not defined"), "throw", nil
	}
	res, err := ops.Update(n.Operator, b.Value, n.Prefix, ip.Rec.Heap)
	if err != nil {
		return ip.typeError(err.Error()), "throw", nil
	}
	ip.Rec.Scopes.At(scopeIdx).Declare(id.Name, b.DeclKind, res.NewValue)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeWriteVariable, ScopeIndex: scopeIdx, VariableName: id.Name, Value: res.NewValue})
	ip.Rec.Push(res.ReturnValue)
	return nil, "", nil
}

func (ip *Interp) evalConditional(n *ast.ConditionalExpression) (*bubble.Signal, string, error) {
	test, sig, err := ip.evalValue(n.Test)
	if err != nil || sig != nil {
		return sig, "", err
	}
	branch := n.Alternate
	if ops.ToBoolean(test) {
		branch = n.Consequent
	}
	sig, err = ip.evalExpr(branch)
	if err != nil || sig != nil {
		return sig, "", err
	}
	v, ok := ip.Rec.Pop()
	if !ok {
		return nil, "", simerror.StackUnderflow(n.Type(), n.Range(), "consuming a conditional branch result")
	}
	ip.Rec.Push(v)
	return nil, "", nil
}

func (ip *Interp) evalObjectLiteral(n *ast.ObjectExpression) (*bubble.Signal, string, error) {
	type kv struct {
		key string
		val value.Value
	}
	entries := make([]kv, 0, len(n.Properties))
	for _, p := range n.Properties {
		var key string
		if p.Computed {
			kVal, sig, err := ip.evalValue(p.Key)
			if err != nil || sig != nil {
				return sig, "", err
			}
			key = ops.ToString(kVal, ip.Rec.Heap)
		} else {
			switch k := p.Key.(type) {
			case *ast.Identifier:
				key = k.Name
			case *ast.Literal:
				key = ops.ToString(literalValue(k), ip.Rec.Heap)
			default:
				return nil, "", simerror.Malformed(p.Type(), p.Range(), "unsupported object-literal key")
			}
		}
		v, sig, err := ip.evalValue(p.Value)
		if err != nil || sig != nil {
			return sig, "", err
		}
		entries = append(entries, kv{key: key, val: v})
	}
	ref, obj := ip.Rec.Heap.Allocate(heap.PlainObject)
	for _, e := range entries {
		obj.SetProperty(e.key, e.val)
	}
	result := value.Ref_(ref)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeCreateHeapObject, Ref: ref, Value: result})
	ip.Rec.Push(result)
	return nil, "", nil
}

func literalValue(k *ast.Literal) value.Value {
	switch k.Kind {
	case "string":
		return value.Str(k.Str)
	case "number":
		return value.Num(k.Num)
	case "boolean":
		return value.Bool(k.Bool)
	}
	return value.Undef()
}

func (ip *Interp) evalArrayLiteral(n *ast.ArrayExpression) (*bubble.Signal, string, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		if el == nil {
			elems[i] = value.Undef()
			continue
		}
		v, sig, err := ip.evalValue(el)
		if err != nil || sig != nil {
			return sig, "", err
		}
		elems[i] = v
	}
	ref, obj := ip.Rec.Heap.Allocate(heap.ArrayObject)
	obj.Elements = elems
	result := value.Ref_(ref)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeCreateHeapObject, Ref: ref, Value: result})
	ip.Rec.Push(result)
	return nil, "", nil
}

func (ip *Interp) evalFunctionLiteral(n ast.Node, id *ast.Identifier, params []ast.Node, body *ast.BlockStatement, isArrow bool) (*bubble.Signal, string, error) {
	ref, obj := ip.Rec.Heap.Allocate(heap.FunctionObject)
	obj.FuncNode = n
	obj.IsArrow = isArrow
	if id != nil {
		obj.FuncName = id.Name
	}
	obj.ClosureTop = ip.Rec.Scopes.Len()
	_ = params
	_ = body
	result := value.Ref_(ref)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeCreateHeapObject, Ref: ref, Value: result})
	ip.Rec.Push(result)
	return nil, "", nil
}

func (ip *Interp) evalArrowLiteral(n *ast.ArrowFunctionExpression) (*bubble.Signal, string, error) {
	return ip.evalFunctionLiteral(n, nil, n.Params, nil, true)
}

// consoleMethods are the console-buffer entry kinds the CallExpression
// special case recognizes; console itself is a built-in the
// simulator intercepts rather than a modeled heap object (see DESIGN.md).
var consoleMethods = map[string]trace.ConsoleKind{
	"log":            trace.Log,
	"error":          trace.Error,
	"info":           trace.Info,
	"warn":           trace.Warn,
	"debug":          trace.Debug,
	"table":          trace.Table,
	"group":          trace.Group,
	"groupEnd":       trace.GroupEnd,
	"groupCollapsed": trace.GroupCollapsed,
}

func (ip *Interp) consoleCallKind(n *ast.CallExpression) (trace.ConsoleKind, bool) {
	m, ok := n.Callee.(*ast.MemberExpression)
	if !ok || m.Computed {
		return "", false
	}
	obj, ok := m.Object.(*ast.Identifier)
	if !ok || obj.Name != "console" {
		return "", false
	}
	prop, ok := m.Property.(*ast.Identifier)
	if !ok {
		return "", false
	}
	kind, ok := consoleMethods[prop.Name]
	return kind, ok
}

func (ip *Interp) evalCall(n *ast.CallExpression) (*bubble.Signal, string, error) {
	if kind, ok := ip.consoleCallKind(n); ok {
		args := make([]value.Value, 0, len(n.Arguments))
		for _, a := range n.Arguments {
			v, sig, err := ip.evalValue(a)
			if err != nil || sig != nil {
				return sig, "", err
			}
			args = append(args, v)
		}
		ip.Rec.Console.Append(kind, args)
		ip.Rec.Push(value.Undef())
		return nil, "", nil
	}

	calleeVal, sig, err := func() (value.Value, *bubble.Signal, error) {
		sig, err := ip.evalExpr(n.Callee)
		if err != nil || sig != nil {
			return value.Value{}, sig, err
		}
		v, ok := ip.Rec.Memval.Peek(0)
		if !ok {
			return value.Value{}, nil, simerror.StackUnderflow(n.Type(), n.Range(), "reading callee reference")
		}
		return v, nil, nil
	}()
	if err != nil || sig != nil {
		return sig, "", err
	}

	argCount := len(n.Arguments)
	for i, a := range n.Arguments {
		sig, err := ip.evalExpr(a)
		if err != nil {
			return nil, "", err
		}
		if sig != nil {
			// A throw mid-argument leaves the callee and any arguments
			// already evaluated sitting under the thrown value; pop them
			// so only the thrown value itself survives to be caught.
			thrown, hasThrown := ip.Rec.Pop()
			for j := 0; j < i; j++ {
				ip.Rec.Pop()
			}
			ip.Rec.Pop() // callee
			if hasThrown {
				ip.Rec.Push(thrown)
			}
			return sig, "", nil
		}
	}
	ip.Rec.Push(value.Num(float64(argCount)))
	ip.Rec.Push(calleeVal)

	scopeIndex := ip.Rec.Scopes.Top()
	ip.Rec.Emit(n.Type(), n.Range(), trace.FunctionCall, scopeIndex, "")
	ip.Rec.Pop() // discard the re-pushed callee copy (step 5)

	if !calleeVal.IsReference() {
		ip.Rec.Pop() // argCount
		for i := 0; i < argCount; i++ {
			ip.Rec.Pop()
		}
		ip.Rec.Pop() // original callee
		return ip.typeError(ops.ToString(calleeVal, ip.Rec.Heap) + " is not a function"), "throw", nil
	}
	obj, ok := ip.Rec.Heap.Get(calleeVal.R)
	if !ok || obj.Kind != heap.FunctionObject {
		ip.Rec.Pop()
		for i := 0; i < argCount; i++ {
			ip.Rec.Pop()
		}
		ip.Rec.Pop()
		return ip.typeError(ops.ToString(calleeVal, ip.Rec.Heap) + " is not a function"), "throw", nil
	}

	argCountVal, _ := ip.Rec.Pop()
	args := make([]value.Value, int(argCountVal.N))
	for i := len(args) - 1; i >= 0; i-- {
		v, ok := ip.Rec.Pop()
		if !ok {
			return nil, "", simerror.StackUnderflow(n.Type(), n.Range(), "collecting call arguments")
		}
		args[i] = v
	}
	ip.Rec.Pop() // original callee reference, no longer needed

	params, body, nodeType, rng := ip.functionShape(obj)
	evalDefault := func(node ast.Node) (value.Value, *bubble.Signal, error) {
		return ip.evalValue(node)
	}
	binder := func(scopeIndex int) ([]memory.Declaration, *bubble.Signal, error) {
		return hoist.BindParams(params, args, ip.Rec.Scopes, scopeIndex, evalDefault)
	}
	sig, err = ip.runBlock(memory.Function, nodeType, rng, body, binder)
	if err != nil {
		return nil, "", err
	}
	if sig == nil {
		ip.Rec.Push(value.Undef())
		return nil, "", nil
	}
	if sig.Kind == bubble.Return {
		return nil, "return", nil
	}
	return sig, "", nil
}

// functionShape extracts params/body/node-type/range from whichever of the
// three function-literal AST shapes produced obj.
func (ip *Interp) functionShape(obj *heap.Object) ([]ast.Node, []ast.Node, string, [2]int) {
	switch fn := obj.FuncNode.(type) {
	case *ast.FunctionDeclaration:
		return fn.Params, fn.Body.Body, fn.Type(), fn.Range()
	case *ast.FunctionExpression:
		return fn.Params, fn.Body.Body, fn.Type(), fn.Range()
	case *ast.ArrowFunctionExpression:
		if block, ok := fn.Body.(*ast.BlockStatement); ok {
			return fn.Params, block.Body, fn.Type(), fn.Range()
		}
		// expression-bodied arrow: synthesize a single implicit return
		return fn.Params, []ast.Node{&ast.ReturnStatement{Base: ast.Base{NodeType: "ReturnStatement", RangeSpan: fn.Range()}, Argument: fn.Body}}, fn.Type(), fn.Range()
	}
	return nil, nil, "FunctionExpression", [2]int{0, 0}
}

func (ip *Interp) evalAssignment(n *ast.AssignmentExpression) (*bubble.Signal, string, error) {
	switch target := n.Left.(type) {
	case *ast.Identifier:
		return ip.assignIdentifier(n, target)
	case *ast.MemberExpression:
		return ip.assignMember(n, target)
	}
	return nil, "", simerror.Malformed(n.Type(), n.Range(), "assignment target must be an identifier or member expression")
}

func (ip *Interp) assignIdentifier(n *ast.AssignmentExpression, target *ast.Identifier) (*bubble.Signal, string, error) {
	current := value.Undef()
	b, scopeIdx, found := ip.Rec.Scopes.LookupFromTop(target.Name)
	if found {
		current = b.Value
	}
	if n.Operator != "=" && !found {
		return ip.referenceError(target.Name + " is not defined"), "throw", nil
	}
	if found && current.IsTDZ() {
		return ip.referenceError("Cannot access '" + target.Name + "' before initialization"), "throw", nil
	}

	newVal, sig, err := ip.compoundRHS(n, current, found)
	if err != nil || sig != nil {
		return sig, "", err
	}

	if n.Operator == "||=" && ops.ToBoolean(current) {
		ip.Rec.Push(current)
		return nil, "", nil
	}
	if n.Operator == "&&=" && !ops.ToBoolean(current) {
		ip.Rec.Push(current)
		return nil, "", nil
	}
	if n.Operator == "??=" && !current.IsNullish() {
		ip.Rec.Push(current)
		return nil, "", nil
	}

	if found {
		ip.Rec.Scopes.At(scopeIdx).Declare(target.Name, b.DeclKind, newVal)
		ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeWriteVariable, ScopeIndex: scopeIdx, VariableName: target.Name, Value: newVal})
	} else {
		idx, res := ip.Rec.Scopes.WriteVariable(target.Name, newVal, ip.Rec.Scopes.Top(), ip.Strict)
		if res == memory.WriteFailed {
			return ip.referenceError(target.Name + " is not defined"), "throw", nil
		}
		ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeWriteVariable, ScopeIndex: idx, VariableName: target.Name, Value: newVal})
	}
	ip.Rec.Push(newVal)
	return nil, "", nil
}

// compoundRHS evaluates the right-hand side and, for non-`=` operators,
// combines it with current per the matching binary operator.
// When a short-circuiting assignment operator (||=, &&=, ??=) short-circuits
// on current, it returns a zero value without evaluating the right-hand
// side; the caller then checks the same condition and pushes current
// unchanged instead of writing.
func (ip *Interp) compoundRHS(n *ast.AssignmentExpression, current value.Value, found bool) (value.Value, *bubble.Signal, error) {
	if n.Operator == "||=" && ops.ToBoolean(current) {
		return value.Value{}, nil, nil
	}
	if n.Operator == "&&=" && !ops.ToBoolean(current) {
		return value.Value{}, nil, nil
	}
	if n.Operator == "??=" && !current.IsNullish() {
		return value.Value{}, nil, nil
	}
	rhs, sig, err := ip.evalValue(n.Right)
	if err != nil || sig != nil {
		return value.Value{}, sig, err
	}
	if n.Operator == "=" || n.Operator == "||=" || n.Operator == "&&=" || n.Operator == "??=" {
		return rhs, nil, nil
	}
	h := ip.Rec.Heap
	op := n.Operator[:len(n.Operator)-1] // "+=" -> "+"
	var result value.Value
	var opErr error
	switch op {
	case "+":
		result = ops.Add(current, rhs, h)
	case "-", "*", "/", "%", "**":
		result, opErr = ops.Arithmetic(op, current, rhs, h)
	case "<<", ">>", ">>>":
		result, opErr = ops.Shift(op, current, rhs, h)
	case "|", "^", "&":
		result, opErr = ops.Bitwise(op, current, rhs, h)
	default:
		return value.Value{}, nil, simerror.Malformed(n.Type(), n.Range(), "unknown compound assignment operator "+n.Operator)
	}
	if opErr != nil {
		return value.Value{}, ip.typeError(opErr.Error()), nil
	}
	return result, nil, nil
}

func (ip *Interp) assignMember(n *ast.AssignmentExpression, target *ast.MemberExpression) (*bubble.Signal, string, error) {
	objVal, sig, err := ip.evalValue(target.Object)
	if err != nil || sig != nil {
		return sig, "", err
	}
	key, sig, err := ip.propertyKey(target)
	if err != nil || sig != nil {
		return sig, "", err
	}
	if objVal.IsNullish() {
		return ip.typeError("Cannot set properties of " + ops.ToString(objVal, ip.Rec.Heap) + " (setting '" + key + "')"), "throw", nil
	}
	current := value.Undef()
	if objVal.IsReference() {
		current = ip.Rec.Heap.ReadProperty(objVal.R, key)
	}
	newVal, sig, err := ip.compoundRHS(n, current, true)
	if err != nil || sig != nil {
		return sig, "", err
	}
	if n.Operator == "||=" && ops.ToBoolean(current) {
		ip.Rec.Push(current)
		return nil, "", nil
	}
	if n.Operator == "&&=" && !ops.ToBoolean(current) {
		ip.Rec.Push(current)
		return nil, "", nil
	}
	if n.Operator == "??=" && !current.IsNullish() {
		ip.Rec.Push(current)
		return nil, "", nil
	}
	if objVal.IsReference() {
		ip.Rec.Heap.WriteProperty(objVal.R, key, newVal)
		ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeWriteProperty, Ref: objVal.R, Key: key, Value: newVal})
	}
	ip.Rec.Push(newVal)
	return nil, "", nil
}
