package hoist

import (
	"testing"

	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/bubble"
	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/value"
)

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Base: ast.Base{NodeType: "Identifier"}, Name: name}
}

func varDecl(kind, name string) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{
		Base: ast.Base{NodeType: "VariableDeclaration"},
		Kind: kind,
		Declarations: []*ast.VariableDeclarator{
			{Base: ast.Base{NodeType: "VariableDeclarator"}, Id: ident(name)},
		},
	}
}

func TestHoistBlockVarIsUndefined(t *testing.T) {
	scopes := memory.NewScopeStack()
	h := heap.New()

	decls := HoistBlock([]ast.Node{varDecl("var", "x")}, scopes, 0, h)

	if len(decls) != 1 || decls[0].DeclKind != memory.DeclVar {
		t.Fatalf("expected one var declaration, got %+v", decls)
	}
	b, _ := scopes.At(0).Get("x")
	if !b.Value.IsUndefined() {
		t.Errorf("hoisted var should be undefined, got %v", b.Value.DebugString())
	}
}

func TestHoistBlockLetAndConstAreTDZ(t *testing.T) {
	scopes := memory.NewScopeStack()
	h := heap.New()

	HoistBlock([]ast.Node{varDecl("let", "a"), varDecl("const", "b")}, scopes, 0, h)

	for _, name := range []string{"a", "b"} {
		b, ok := scopes.At(0).Get(name)
		if !ok {
			t.Fatalf("expected %s to be declared", name)
		}
		if !b.Value.IsTDZ() {
			t.Errorf("%s should start in the TDZ, got %v", name, b.Value.DebugString())
		}
	}
}

func TestHoistBlockDoesNotDescendIntoNestedBlock(t *testing.T) {
	scopes := memory.NewScopeStack()
	h := heap.New()

	nested := &ast.BlockStatement{Base: ast.Base{NodeType: "BlockStatement"}, Body: []ast.Node{varDecl("var", "inner")}}
	HoistBlock([]ast.Node{nested}, scopes, 0, h)

	if _, ok := scopes.At(0).Get("inner"); ok {
		t.Error("hoisting must not descend into a nested block")
	}
}

func TestHoistBlockFunctionDeclarationAllocatesHeapObject(t *testing.T) {
	scopes := memory.NewScopeStack()
	h := heap.New()

	fn := &ast.FunctionDeclaration{
		Base: ast.Base{NodeType: "FunctionDeclaration"},
		Id:   ident("greet"),
		Body: &ast.BlockStatement{Base: ast.Base{NodeType: "BlockStatement"}},
	}
	decls := HoistBlock([]ast.Node{fn}, scopes, 0, h)

	if len(decls) != 1 || decls[0].DeclKind != memory.DeclFunction {
		t.Fatalf("expected one function declaration, got %+v", decls)
	}
	b, _ := scopes.At(0).Get("greet")
	if !b.Value.IsReference() {
		t.Fatalf("function binding should be a heap reference, got %v", b.Value.DebugString())
	}
	obj, ok := h.Get(b.Value.R)
	if !ok || obj.Kind != heap.FunctionObject || obj.FuncName != "greet" {
		t.Fatalf("expected a FunctionObject named greet, got %+v", obj)
	}
}

func TestBindParamsIdentifiers(t *testing.T) {
	scopes := memory.NewScopeStack()
	scopeIndex := scopes.Push(memory.Function)

	params := []ast.Node{ident("a"), ident("b")}
	args := []value.Value{value.Num(1), value.Num(2)}

	decls, sig, err := BindParams(params, args, scopes, scopeIndex, nil)
	if err != nil || sig != nil {
		t.Fatalf("unexpected sig/err: %v %v", sig, err)
	}
	if len(decls) != 2 {
		t.Fatalf("expected 2 param declarations, got %d", len(decls))
	}
	ba, _ := scopes.At(scopeIndex).Get("a")
	bb, _ := scopes.At(scopeIndex).Get("b")
	if ba.Value.N != 1 || bb.Value.N != 2 {
		t.Errorf("params not bound correctly: a=%v b=%v", ba.Value.DebugString(), bb.Value.DebugString())
	}
}

func TestBindParamsMissingArgBindsUndefined(t *testing.T) {
	scopes := memory.NewScopeStack()
	scopeIndex := scopes.Push(memory.Function)

	decls, sig, err := BindParams([]ast.Node{ident("a")}, nil, scopes, scopeIndex, nil)
	if err != nil || sig != nil {
		t.Fatalf("unexpected sig/err: %v %v", sig, err)
	}
	if len(decls) != 1 || !decls[0].InitialValue.IsUndefined() {
		t.Fatalf("missing arg should bind undefined, got %+v", decls)
	}
}

func TestBindParamsDefaultEvaluatedWhenArgUndefined(t *testing.T) {
	scopes := memory.NewScopeStack()
	scopeIndex := scopes.Push(memory.Function)

	defaultExpr := &ast.Literal{Base: ast.Base{NodeType: "Literal"}, Kind: "number", Num: 7}
	param := &ast.AssignmentPattern{Base: ast.Base{NodeType: "AssignmentPattern"}, Left: ident("a"), Right: defaultExpr}

	evalDefault := func(node ast.Node) (value.Value, *bubble.Signal, error) {
		lit := node.(*ast.Literal)
		return value.Num(lit.Num), nil, nil
	}

	decls, sig, err := BindParams([]ast.Node{param}, []value.Value{value.Undef()}, scopes, scopeIndex, evalDefault)
	if err != nil || sig != nil {
		t.Fatalf("unexpected sig/err: %v %v", sig, err)
	}
	if len(decls) != 1 || decls[0].InitialValue.N != 7 {
		t.Fatalf("expected default value 7, got %+v", decls)
	}
}

func TestBindCatchParamNilIsNoop(t *testing.T) {
	scopes := memory.NewScopeStack()
	scopeIndex := scopes.Push(memory.Catch)

	decls := BindCatchParam(nil, value.Str("boom"), scopes, scopeIndex)
	if decls != nil {
		t.Errorf("expected no declarations for a parameterless catch, got %+v", decls)
	}
}

func TestBindCatchParamBindsThrownValue(t *testing.T) {
	scopes := memory.NewScopeStack()
	scopeIndex := scopes.Push(memory.Catch)

	decls := BindCatchParam(ident("e"), value.Str("boom"), scopes, scopeIndex)
	if len(decls) != 1 || decls[0].VariableName != "e" {
		t.Fatalf("expected catch param e to be bound, got %+v", decls)
	}
	b, _ := scopes.At(scopeIndex).Get("e")
	if b.Value.S != "boom" {
		t.Errorf("catch param should hold thrown value, got %v", b.Value.DebugString())
	}
}
