package decode

import (
	"testing"

	"github.com/jstrace/jstrace/internal/ast"
)

func TestProgramDecodesVariableDeclarationAndExpressionStatement(t *testing.T) {
	src := `{
		"type": "Program",
		"range": [0, 20],
		"body": [
			{
				"type": "VariableDeclaration",
				"range": [0, 10],
				"kind": "let",
				"declarations": [
					{
						"type": "VariableDeclarator",
						"range": [4, 9],
						"id": {"type": "Identifier", "range": [4, 5], "name": "x"},
						"init": {"type": "Literal", "range": [8, 9], "kind": "number", "num": 1}
					}
				]
			},
			{
				"type": "ExpressionStatement",
				"range": [11, 19],
				"expression": {
					"type": "BinaryExpression",
					"range": [11, 18],
					"operator": "+",
					"left": {"type": "Identifier", "range": [11, 12], "name": "x"},
					"right": {"type": "Literal", "range": [15, 18], "kind": "number", "num": 2}
				}
			}
		]
	}`

	program, err := Program([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program.Body) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(program.Body))
	}

	decl, ok := program.Body[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", program.Body[0])
	}
	if decl.Kind != "let" || len(decl.Declarations) != 1 {
		t.Fatalf("unexpected declaration shape: %+v", decl)
	}
	id, ok := decl.Declarations[0].Id.(*ast.Identifier)
	if !ok || id.Name != "x" {
		t.Fatalf("expected declarator id \"x\", got %+v", decl.Declarations[0].Id)
	}
	lit, ok := decl.Declarations[0].Init.(*ast.Literal)
	if !ok || lit.Num != 1 {
		t.Fatalf("expected init literal 1, got %+v", decl.Declarations[0].Init)
	}

	stmt, ok := program.Body[1].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", program.Body[1])
	}
	bin, ok := stmt.Expression.(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected binary + expression, got %+v", stmt.Expression)
	}
}

func TestFunctionDeclarationWithDefaultParam(t *testing.T) {
	src := `{
		"type": "Program",
		"range": [0, 1],
		"body": [
			{
				"type": "FunctionDeclaration",
				"range": [0, 1],
				"id": {"type": "Identifier", "range": [0, 1], "name": "f"},
				"params": [
					{
						"type": "AssignmentPattern",
						"range": [0, 1],
						"left": {"type": "Identifier", "range": [0, 1], "name": "a"},
						"right": {"type": "Literal", "range": [0, 1], "kind": "number", "num": 5}
					}
				],
				"body": {"type": "BlockStatement", "range": [0, 1], "body": []}
			}
		]
	}`

	program, err := Program([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := program.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", program.Body[0])
	}
	if fn.Id.Name != "f" || len(fn.Params) != 1 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	pattern, ok := fn.Params[0].(*ast.AssignmentPattern)
	if !ok {
		t.Fatalf("expected AssignmentPattern param, got %T", fn.Params[0])
	}
	if pattern.Left.(*ast.Identifier).Name != "a" {
		t.Fatalf("unexpected param name: %+v", pattern.Left)
	}
}

func TestArrayExpressionPreservesElisions(t *testing.T) {
	src := `{
		"type": "Program",
		"range": [0, 1],
		"body": [
			{
				"type": "ExpressionStatement",
				"range": [0, 1],
				"expression": {
					"type": "ArrayExpression",
					"range": [0, 1],
					"elements": [
						{"type": "Literal", "range": [0, 1], "kind": "number", "num": 1},
						null,
						{"type": "Literal", "range": [0, 1], "kind": "number", "num": 3}
					]
				}
			}
		]
	}`

	program, err := Program([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := program.Body[0].(*ast.ExpressionStatement).Expression.(*ast.ArrayExpression)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
	if arr.Elements[1] != nil {
		t.Errorf("expected elision to decode as nil, got %+v", arr.Elements[1])
	}
}

func TestNodeRejectsUnknownType(t *testing.T) {
	_, err := Node([]byte(`{"type": "SomeFutureSyntax", "range": [0, 1]}`))
	if err == nil {
		t.Fatal("expected an error for an unrecognized node type")
	}
}

func TestProgramRejectsNonProgramTopLevel(t *testing.T) {
	_, err := Program([]byte(`{"type": "Identifier", "range": [0, 1], "name": "x"}`))
	if err == nil {
		t.Fatal("expected an error when the top-level document is not a Program")
	}
}
