// Package decode turns a JSON-encoded ESTree document into the internal/ast
// node tree the interpreter dispatches on. Parsing source text is out of
// scope here; this package only bridges an already-parsed tree's JSON
// serialization into Go values, since this module has no parser of its own
// to hand the CLI an AST any other way.
package decode

import (
	"encoding/json"
	"fmt"

	"github.com/jstrace/jstrace/internal/ast"
)

type head struct {
	Type  string  `json:"type"`
	Range [2]int  `json:"range"`
}

func base(h head) ast.Base { return ast.Base{NodeType: h.Type, RangeSpan: h.Range} }

// Program decodes a top-level ESTree Program document.
func Program(data []byte) (*ast.Program, error) {
	n, err := Node(data)
	if err != nil {
		return nil, err
	}
	p, ok := n.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("decode: top-level document is not a Program node")
	}
	return p, nil
}

// Node decodes a single ESTree node of any kind, dispatching on its "type"
// field. A json null or empty payload decodes to (nil, nil).
func Node(data []byte) (ast.Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var h head
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	switch h.Type {
	case "Program":
		var raw struct {
			head
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		body, err := nodes(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Program{Base: base(h), Body: body}, nil

	case "Identifier":
		var raw struct {
			head
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return &ast.Identifier{Base: base(h), Name: raw.Name}, nil

	case "Literal":
		var raw struct {
			head
			Kind       string  `json:"kind"`
			Str        string  `json:"str"`
			Num        float64 `json:"num"`
			Bool       bool    `json:"bool"`
			BigIntText string  `json:"bigintText"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return &ast.Literal{Base: base(h), Kind: raw.Kind, Str: raw.Str, Num: raw.Num, Bool: raw.Bool, BigIntText: raw.BigIntText}, nil

	case "VariableDeclaration":
		var raw struct {
			head
			Kind         string            `json:"kind"`
			Declarations []json.RawMessage `json:"declarations"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		decls := make([]*ast.VariableDeclarator, 0, len(raw.Declarations))
		for _, d := range raw.Declarations {
			var dh head
			if err := json.Unmarshal(d, &dh); err != nil {
				return nil, err
			}
			var draw struct {
				head
				Id   json.RawMessage `json:"id"`
				Init json.RawMessage `json:"init"`
			}
			if err := json.Unmarshal(d, &draw); err != nil {
				return nil, err
			}
			id, err := Node(draw.Id)
			if err != nil {
				return nil, err
			}
			init, err := Node(draw.Init)
			if err != nil {
				return nil, err
			}
			decls = append(decls, &ast.VariableDeclarator{Base: base(dh), Id: id, Init: init})
		}
		return &ast.VariableDeclaration{Base: base(h), Kind: raw.Kind, Declarations: decls}, nil

	case "FunctionDeclaration", "FunctionExpression":
		var raw struct {
			head
			Id     json.RawMessage   `json:"id"`
			Params []json.RawMessage `json:"params"`
			Body   json.RawMessage   `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		idNode, err := Node(raw.Id)
		if err != nil {
			return nil, err
		}
		var id *ast.Identifier
		if idNode != nil {
			id, _ = idNode.(*ast.Identifier)
		}
		params, err := nodes(raw.Params)
		if err != nil {
			return nil, err
		}
		bodyNode, err := Node(raw.Body)
		if err != nil {
			return nil, err
		}
		block, _ := bodyNode.(*ast.BlockStatement)
		if h.Type == "FunctionDeclaration" {
			return &ast.FunctionDeclaration{Base: base(h), Id: id, Params: params, Body: block}, nil
		}
		return &ast.FunctionExpression{Base: base(h), Id: id, Params: params, Body: block}, nil

	case "ArrowFunctionExpression":
		var raw struct {
			head
			Params   []json.RawMessage `json:"params"`
			Body     json.RawMessage   `json:"body"`
			ExprBody bool              `json:"exprBody"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		params, err := nodes(raw.Params)
		if err != nil {
			return nil, err
		}
		body, err := Node(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ArrowFunctionExpression{Base: base(h), Params: params, Body: body, ExprBody: raw.ExprBody}, nil

	case "AssignmentPattern":
		var raw struct {
			head
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		left, err := Node(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := Node(raw.Right)
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentPattern{Base: base(h), Left: left, Right: right}, nil

	case "BlockStatement":
		var raw struct {
			head
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		body, err := nodes(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Base: base(h), Body: body}, nil

	case "ExpressionStatement":
		var raw struct {
			head
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		expr, err := Node(raw.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Base: base(h), Expression: expr}, nil

	case "IfStatement":
		var raw struct {
			head
			Test       json.RawMessage `json:"test"`
			Consequent json.RawMessage `json:"consequent"`
			Alternate  json.RawMessage `json:"alternate"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := Node(raw.Test)
		if err != nil {
			return nil, err
		}
		cons, err := Node(raw.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := Node(raw.Alternate)
		if err != nil {
			return nil, err
		}
		return &ast.IfStatement{Base: base(h), Test: test, Consequent: cons, Alternate: alt}, nil

	case "ForStatement":
		var raw struct {
			head
			Init   json.RawMessage `json:"init"`
			Test   json.RawMessage `json:"test"`
			Update json.RawMessage `json:"update"`
			Body   json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		initN, err := Node(raw.Init)
		if err != nil {
			return nil, err
		}
		testN, err := Node(raw.Test)
		if err != nil {
			return nil, err
		}
		updN, err := Node(raw.Update)
		if err != nil {
			return nil, err
		}
		bodyN, err := Node(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStatement{Base: base(h), Init: initN, Test: testN, Update: updN, Body: bodyN}, nil

	case "WhileStatement":
		var raw struct {
			head
			Test json.RawMessage `json:"test"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := Node(raw.Test)
		if err != nil {
			return nil, err
		}
		body, err := Node(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStatement{Base: base(h), Test: test, Body: body}, nil

	case "DoWhileStatement":
		var raw struct {
			head
			Test json.RawMessage `json:"test"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := Node(raw.Test)
		if err != nil {
			return nil, err
		}
		body, err := Node(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.DoWhileStatement{Base: base(h), Test: test, Body: body}, nil

	case "ReturnStatement":
		var raw struct {
			head
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		arg, err := Node(raw.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Base: base(h), Argument: arg}, nil

	case "BreakStatement":
		return &ast.BreakStatement{Base: base(h)}, nil

	case "ContinueStatement":
		return &ast.ContinueStatement{Base: base(h)}, nil

	case "ThrowStatement":
		var raw struct {
			head
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		arg, err := Node(raw.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.ThrowStatement{Base: base(h), Argument: arg}, nil

	case "TryStatement":
		var raw struct {
			head
			Block     json.RawMessage `json:"block"`
			Handler   json.RawMessage `json:"handler"`
			Finalizer json.RawMessage `json:"finalizer"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		blockN, err := Node(raw.Block)
		if err != nil {
			return nil, err
		}
		block, _ := blockN.(*ast.BlockStatement)
		var handler *ast.CatchClause
		if len(raw.Handler) > 0 && string(raw.Handler) != "null" {
			var hh head
			if err := json.Unmarshal(raw.Handler, &hh); err != nil {
				return nil, err
			}
			var hraw struct {
				head
				Param json.RawMessage `json:"param"`
				Body  json.RawMessage `json:"body"`
			}
			if err := json.Unmarshal(raw.Handler, &hraw); err != nil {
				return nil, err
			}
			param, err := Node(hraw.Param)
			if err != nil {
				return nil, err
			}
			bodyN, err := Node(hraw.Body)
			if err != nil {
				return nil, err
			}
			body, _ := bodyN.(*ast.BlockStatement)
			handler = &ast.CatchClause{Base: base(hh), Param: param, Body: body}
		}
		var finalizer *ast.BlockStatement
		if len(raw.Finalizer) > 0 && string(raw.Finalizer) != "null" {
			finN, err := Node(raw.Finalizer)
			if err != nil {
				return nil, err
			}
			finalizer, _ = finN.(*ast.BlockStatement)
		}
		return &ast.TryStatement{Base: base(h), Block: block, Handler: handler, Finalizer: finalizer}, nil

	case "BinaryExpression":
		l, r, op, err := binaryShape(data)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpression{Base: base(h), Operator: op, Left: l, Right: r}, nil

	case "LogicalExpression":
		l, r, op, err := binaryShape(data)
		if err != nil {
			return nil, err
		}
		return &ast.LogicalExpression{Base: base(h), Operator: op, Left: l, Right: r}, nil

	case "UnaryExpression":
		var raw struct {
			head
			Operator string          `json:"operator"`
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		arg, err := Node(raw.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Base: base(h), Operator: raw.Operator, Argument: arg}, nil

	case "UpdateExpression":
		var raw struct {
			head
			Operator string          `json:"operator"`
			Argument json.RawMessage `json:"argument"`
			Prefix   bool            `json:"prefix"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		arg, err := Node(raw.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Base: base(h), Operator: raw.Operator, Argument: arg, Prefix: raw.Prefix}, nil

	case "AssignmentExpression":
		l, r, op, err := binaryShape(data)
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Base: base(h), Operator: op, Left: l, Right: r}, nil

	case "ConditionalExpression":
		var raw struct {
			head
			Test       json.RawMessage `json:"test"`
			Consequent json.RawMessage `json:"consequent"`
			Alternate  json.RawMessage `json:"alternate"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := Node(raw.Test)
		if err != nil {
			return nil, err
		}
		cons, err := Node(raw.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := Node(raw.Alternate)
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpression{Base: base(h), Test: test, Consequent: cons, Alternate: alt}, nil

	case "CallExpression":
		var raw struct {
			head
			Callee    json.RawMessage   `json:"callee"`
			Arguments []json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		callee, err := Node(raw.Callee)
		if err != nil {
			return nil, err
		}
		args, err := nodes(raw.Arguments)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpression{Base: base(h), Callee: callee, Arguments: args}, nil

	case "MemberExpression":
		var raw struct {
			head
			Object   json.RawMessage `json:"object"`
			Property json.RawMessage `json:"property"`
			Computed bool            `json:"computed"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		obj, err := Node(raw.Object)
		if err != nil {
			return nil, err
		}
		prop, err := Node(raw.Property)
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpression{Base: base(h), Object: obj, Property: prop, Computed: raw.Computed}, nil

	case "ObjectExpression":
		var raw struct {
			head
			Properties []json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		props := make([]*ast.Property, 0, len(raw.Properties))
		for _, p := range raw.Properties {
			var ph head
			if err := json.Unmarshal(p, &ph); err != nil {
				return nil, err
			}
			var praw struct {
				head
				Key      json.RawMessage `json:"key"`
				Value    json.RawMessage `json:"value"`
				Computed bool            `json:"computed"`
			}
			if err := json.Unmarshal(p, &praw); err != nil {
				return nil, err
			}
			key, err := Node(praw.Key)
			if err != nil {
				return nil, err
			}
			val, err := Node(praw.Value)
			if err != nil {
				return nil, err
			}
			props = append(props, &ast.Property{Base: base(ph), Key: key, Value: val, Computed: praw.Computed})
		}
		return &ast.ObjectExpression{Base: base(h), Properties: props}, nil

	case "ArrayExpression":
		var raw struct {
			head
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elems, err := nodes(raw.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayExpression{Base: base(h), Elements: elems}, nil

	case "ClassDeclaration":
		var raw struct {
			head
			Id         json.RawMessage   `json:"id"`
			SuperClass json.RawMessage   `json:"superClass"`
			Body       []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		idNode, err := Node(raw.Id)
		if err != nil {
			return nil, err
		}
		id, _ := idNode.(*ast.Identifier)
		super, err := Node(raw.SuperClass)
		if err != nil {
			return nil, err
		}
		body, err := nodes(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ClassDeclaration{Base: base(h), Id: id, SuperClass: super, Body: body}, nil

	case "MethodDefinition":
		var raw struct {
			head
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
			Kind  string          `json:"kind"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		key, err := Node(raw.Key)
		if err != nil {
			return nil, err
		}
		val, err := Node(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.MethodDefinition{Base: base(h), Key: key, Value: val, Kind: raw.Kind}, nil

	case "PropertyDefinition":
		var raw struct {
			head
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		key, err := Node(raw.Key)
		if err != nil {
			return nil, err
		}
		val, err := Node(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.PropertyDefinition{Base: base(h), Key: key, Value: val}, nil
	}

	return nil, fmt.Errorf("decode: unrecognized node type %q", h.Type)
}

func binaryShape(data []byte) (left, right ast.Node, operator string, err error) {
	var raw struct {
		head
		Operator string          `json:"operator"`
		Left     json.RawMessage `json:"left"`
		Right    json.RawMessage `json:"right"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, "", err
	}
	left, err = Node(raw.Left)
	if err != nil {
		return nil, nil, "", err
	}
	right, err = Node(raw.Right)
	if err != nil {
		return nil, nil, "", err
	}
	return left, right, raw.Operator, nil
}

// nodes decodes a JSON array of nodes, preserving null entries as nil so
// array-literal elisions round-trip correctly.
func nodes(raw []json.RawMessage) ([]ast.Node, error) {
	out := make([]ast.Node, len(raw))
	for i, r := range raw {
		n, err := Node(r)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
