package interp

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/trace"
)

// consoleCall builds `console.<method>(args...)` as an ExpressionStatement,
// the shape evalCall's built-in interception recognizes.
func consoleCall(method string, args ...ast.Node) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{
		Base: ast.Base{NodeType: "ExpressionStatement"},
		Expression: &ast.CallExpression{
			Base: ast.Base{NodeType: "CallExpression"},
			Callee: &ast.MemberExpression{
				Base:     ast.Base{NodeType: "MemberExpression"},
				Object:   ident("console"),
				Property: ident(method),
			},
			Arguments: args,
		},
	}
}

func letDecl(name string, init ast.Node) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{
		Base: ast.Base{NodeType: "VariableDeclaration"}, Kind: "let",
		Declarations: []*ast.VariableDeclarator{
			{Base: ast.Base{NodeType: "VariableDeclarator"}, Id: ident(name), Init: init},
		},
	}
}

func exprStmt(e ast.Node) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Base: ast.Base{NodeType: "ExpressionStatement"}, Expression: e}
}

func binExpr(op string, left, right ast.Node) *ast.BinaryExpression {
	return &ast.BinaryExpression{Base: ast.Base{NodeType: "BinaryExpression"}, Operator: op, Left: left, Right: right}
}

func member(object, property ast.Node, computed bool) *ast.MemberExpression {
	return &ast.MemberExpression{Base: ast.Base{NodeType: "MemberExpression"}, Object: object, Property: property, Computed: computed}
}

// consoleSummary renders a console buffer the same compact way across every
// scenario test, so go-snaps pins a stable, readable string rather than a
// struct dump full of unexported internals.
func consoleSummary(entries []trace.ConsoleEntry) string {
	var out string
	for _, e := range entries {
		out += string(e.Kind) + "("
		for i, v := range e.Values {
			if i > 0 {
				out += ", "
			}
			out += v.DebugString()
		}
		out += ")\n"
	}
	return out
}

// Scenario 1: let x = 1; let y = 2; console.log(x + y);
func TestScenarioArithmeticConsoleLog(t *testing.T) {
	prog := program(
		letDecl("x", numLit(1)),
		letDecl("y", numLit(2)),
		consoleCall("log", binExpr("+", ident("x"), ident("y"))),
	)

	ip := New()
	if _, err := ip.Run(prog); err != nil {
		t.Fatalf("unexpected simulator error: %v", err)
	}

	x, _ := ip.Rec.Scopes.At(0).Get("x")
	y, _ := ip.Rec.Scopes.At(0).Get("y")
	if x.Value.N != 1 || y.Value.N != 2 {
		t.Errorf("expected x=1, y=2 in global scope, got x=%v y=%v", x.Value.DebugString(), y.Value.DebugString())
	}
	if ip.Rec.Heap.Len() != 0 {
		t.Errorf("expected an empty heap, got %d objects", ip.Rec.Heap.Len())
	}

	snaps.MatchSnapshot(t, "arithmetic_console_log", consoleSummary(ip.Rec.Console.Snapshot()))
}

// Scenario 2: function f(a, b=10){ return a*b; } console.log(f(3));
func TestScenarioDefaultParameterCall(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		Base: ast.Base{NodeType: "FunctionDeclaration"},
		Id:   ident("f"),
		Params: []ast.Node{
			ident("a"),
			&ast.AssignmentPattern{Base: ast.Base{NodeType: "AssignmentPattern"}, Left: ident("b"), Right: numLit(10)},
		},
		Body: &ast.BlockStatement{Base: ast.Base{NodeType: "BlockStatement"}, Body: []ast.Node{
			&ast.ReturnStatement{Base: ast.Base{NodeType: "ReturnStatement"}, Argument: binExpr("*", ident("a"), ident("b"))},
		}},
	}
	call := &ast.CallExpression{
		Base:      ast.Base{NodeType: "CallExpression"},
		Callee:    ident("f"),
		Arguments: []ast.Node{numLit(3)},
	}
	prog := program(fn, consoleCall("log", call))

	ip := New()
	if _, err := ip.Run(prog); err != nil {
		t.Fatalf("unexpected simulator error: %v", err)
	}

	entries := ip.Rec.Console.Snapshot()
	if len(entries) != 1 || len(entries[0].Values) != 1 || entries[0].Values[0].N != 30 {
		t.Fatalf("expected console.log(30) from the default-parameter call, got %s", consoleSummary(entries))
	}
	if ip.Rec.Scopes.Len() != 1 {
		t.Errorf("expected the call's function scope to be popped, stack depth = %d", ip.Rec.Scopes.Len())
	}

	snaps.MatchSnapshot(t, "default_parameter_call", consoleSummary(entries))
}

// Scenario 3: let x; try { x = y; } catch(e){ x = e.message; } console.log(x);
func TestScenarioReferenceErrorCaughtAndMessageRead(t *testing.T) {
	prog := program(
		&ast.VariableDeclaration{
			Base: ast.Base{NodeType: "VariableDeclaration"}, Kind: "let",
			Declarations: []*ast.VariableDeclarator{
				{Base: ast.Base{NodeType: "VariableDeclarator"}, Id: ident("x")},
			},
		},
		&ast.TryStatement{
			Base: ast.Base{NodeType: "TryStatement"},
			Block: &ast.BlockStatement{Base: ast.Base{NodeType: "BlockStatement"}, Body: []ast.Node{
				exprStmt(&ast.AssignmentExpression{
					Base: ast.Base{NodeType: "AssignmentExpression"}, Operator: "=", Left: ident("x"), Right: ident("y"),
				}),
			}},
			Handler: &ast.CatchClause{
				Base:  ast.Base{NodeType: "CatchClause"},
				Param: ident("e"),
				Body: &ast.BlockStatement{Base: ast.Base{NodeType: "BlockStatement"}, Body: []ast.Node{
					exprStmt(&ast.AssignmentExpression{
						Base: ast.Base{NodeType: "AssignmentExpression"}, Operator: "=", Left: ident("x"),
						Right: member(ident("e"), ident("message"), false),
					}),
				}},
			},
		},
		consoleCall("log", ident("x")),
	)

	ip := New()
	if _, err := ip.Run(prog); err != nil {
		t.Fatalf("unexpected simulator error: %v", err)
	}

	x, _ := ip.Rec.Scopes.At(0).Get("x")
	if x.Value.S != "y is not defined" {
		t.Errorf(`expected x == "y is not defined", got %v`, x.Value.DebugString())
	}

	entries := ip.Rec.Console.Snapshot()
	if len(entries) != 1 || len(entries[0].Values) != 1 || entries[0].Values[0].S != "y is not defined" {
		t.Fatalf(`expected console.log("y is not defined"), got %s`, consoleSummary(entries))
	}

	snaps.MatchSnapshot(t, "reference_error_caught_and_message_read", consoleSummary(entries))
}

// Scenario 4: const o = {a:1}; o.b = o.a + 2; console.log(o.a, o.b);
func TestScenarioObjectPropertyReadWrite(t *testing.T) {
	objLit := &ast.ObjectExpression{
		Base: ast.Base{NodeType: "ObjectExpression"},
		Properties: []*ast.Property{
			{Base: ast.Base{NodeType: "Property"}, Key: ident("a"), Value: numLit(1)},
		},
	}
	prog := program(
		&ast.VariableDeclaration{
			Base: ast.Base{NodeType: "VariableDeclaration"}, Kind: "const",
			Declarations: []*ast.VariableDeclarator{
				{Base: ast.Base{NodeType: "VariableDeclarator"}, Id: ident("o"), Init: objLit},
			},
		},
		exprStmt(&ast.AssignmentExpression{
			Base: ast.Base{NodeType: "AssignmentExpression"}, Operator: "=",
			Left:  member(ident("o"), ident("b"), false),
			Right: binExpr("+", member(ident("o"), ident("a"), false), numLit(2)),
		}),
		consoleCall("log", member(ident("o"), ident("a"), false), member(ident("o"), ident("b"), false)),
	)

	ip := New()
	if _, err := ip.Run(prog); err != nil {
		t.Fatalf("unexpected simulator error: %v", err)
	}

	if ip.Rec.Heap.Len() != 1 {
		t.Fatalf("expected exactly one heap object, got %d", ip.Rec.Heap.Len())
	}
	refs := ip.Rec.Heap.Refs()
	obj, _ := ip.Rec.Heap.Get(refs[0])
	a, _ := obj.GetProperty("a")
	b, _ := obj.GetProperty("b")
	if a.N != 1 || b.N != 3 {
		t.Errorf("expected o == {a:1, b:3}, got a=%v b=%v", a.DebugString(), b.DebugString())
	}

	entries := ip.Rec.Console.Snapshot()
	if len(entries) != 1 || len(entries[0].Values) != 2 || entries[0].Values[0].N != 1 || entries[0].Values[1].N != 3 {
		t.Fatalf("expected console.log(1, 3), got %s", consoleSummary(entries))
	}

	snaps.MatchSnapshot(t, "object_property_read_write", consoleSummary(entries))
}

// Scenario 5: let s = ""; for (let i = 0; i < 3; i = i + 1) { s = s + i; } console.log(s);
func TestScenarioForLoopStringConcat(t *testing.T) {
	prog := program(
		letDecl("s", strLit("")),
		&ast.ForStatement{
			Base: ast.Base{NodeType: "ForStatement"},
			Init: letDecl("i", numLit(0)),
			Test: binExpr("<", ident("i"), numLit(3)),
			Update: &ast.AssignmentExpression{
				Base: ast.Base{NodeType: "AssignmentExpression"}, Operator: "=",
				Left: ident("i"), Right: binExpr("+", ident("i"), numLit(1)),
			},
			Body: &ast.BlockStatement{Base: ast.Base{NodeType: "BlockStatement"}, Body: []ast.Node{
				exprStmt(&ast.AssignmentExpression{
					Base: ast.Base{NodeType: "AssignmentExpression"}, Operator: "=",
					Left: ident("s"), Right: binExpr("+", ident("s"), ident("i")),
				}),
			}},
		},
		consoleCall("log", ident("s")),
	)

	ip := New()
	if _, err := ip.Run(prog); err != nil {
		t.Fatalf("unexpected simulator error: %v", err)
	}

	s, _ := ip.Rec.Scopes.At(0).Get("s")
	if s.Value.S != "012" {
		t.Errorf(`expected s == "012", got %v`, s.Value.DebugString())
	}
	if ip.Rec.Scopes.Len() != 1 {
		t.Errorf("expected the loop scope to be popped, stack depth = %d", ip.Rec.Scopes.Len())
	}

	snaps.MatchSnapshot(t, "for_loop_string_concat", consoleSummary(ip.Rec.Console.Snapshot()))
}

// Scenario 6: let a = [1,2,3]; a[1] = a[0] + a[2]; console.log(a[1]);
func TestScenarioArrayIndexReadWrite(t *testing.T) {
	arrLit := &ast.ArrayExpression{
		Base:     ast.Base{NodeType: "ArrayExpression"},
		Elements: []ast.Node{numLit(1), numLit(2), numLit(3)},
	}
	prog := program(
		letDecl("a", arrLit),
		exprStmt(&ast.AssignmentExpression{
			Base: ast.Base{NodeType: "AssignmentExpression"}, Operator: "=",
			Left:  member(ident("a"), numLit(1), true),
			Right: binExpr("+", member(ident("a"), numLit(0), true), member(ident("a"), numLit(2), true)),
		}),
		consoleCall("log", member(ident("a"), numLit(1), true)),
	)

	ip := New()
	if _, err := ip.Run(prog); err != nil {
		t.Fatalf("unexpected simulator error: %v", err)
	}

	refs := ip.Rec.Heap.Refs()
	if len(refs) != 1 {
		t.Fatalf("expected exactly one heap object, got %d", len(refs))
	}
	obj, _ := ip.Rec.Heap.Get(refs[0])
	if len(obj.Elements) != 3 || obj.Elements[1].N != 4 {
		t.Errorf("expected a == [1, 4, 3], got %v", obj.Elements)
	}

	entries := ip.Rec.Console.Snapshot()
	if len(entries) != 1 || len(entries[0].Values) != 1 || entries[0].Values[0].N != 4 {
		t.Fatalf("expected console.log(4), got %s", consoleSummary(entries))
	}

	snaps.MatchSnapshot(t, "array_index_read_write", consoleSummary(entries))
}

// TestScenarioSummaryTable pins, in one place, the final console output of
// two scenarios (arithmetic and array indexing) side by side - convenient
// for spotting a regression that shifts more than one scenario at once.
func TestScenarioSummaryTable(t *testing.T) {
	type scenario struct {
		name string
		prog *ast.Program
	}
	arrLit := &ast.ArrayExpression{Base: ast.Base{NodeType: "ArrayExpression"}, Elements: []ast.Node{numLit(1), numLit(2), numLit(3)}}
	scenarios := []scenario{
		{"arithmetic", program(letDecl("x", numLit(1)), letDecl("y", numLit(2)), consoleCall("log", binExpr("+", ident("x"), ident("y"))))},
		{"array_index", program(letDecl("a", arrLit), consoleCall("log", member(ident("a"), numLit(1), true)))},
	}

	var out string
	for _, sc := range scenarios {
		ip := New()
		if _, err := ip.Run(sc.prog); err != nil {
			t.Fatalf("%s: unexpected simulator error: %v", sc.name, err)
		}
		out += fmt.Sprintf("%s: %s", sc.name, consoleSummary(ip.Rec.Console.Snapshot()))
	}

	snaps.MatchSnapshot(t, "scenario_summary_table", out)
}
