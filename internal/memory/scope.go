// Package memory implements the simulator's scope stack and operand stack:
// the lexically-searched binding chain and the LIFO of in-flight evaluation
// results ("memval").
//
// Scopes are held in a flat, indexable slice rather than a chain of linked
// environment pointers, since scope_index must be an observable, stable
// number on every step, not just an internal pointer.
package memory

import "github.com/jstrace/jstrace/internal/value"

// Kind tags why a scope was pushed.
type Kind string

const (
	Global      Kind = "global"
	Function    Kind = "function"
	Block       Kind = "block"
	Try         Kind = "try"
	Catch       Kind = "catch"
	Finally     Kind = "finally"
	Conditional Kind = "conditional"
	Loop        Kind = "loop"
)

// DeclKind tags how a binding was introduced.
type DeclKind string

const (
	DeclVar      DeclKind = "var"
	DeclLet      DeclKind = "let"
	DeclConst    DeclKind = "const"
	DeclFunction DeclKind = "function"
	DeclClass    DeclKind = "class"
	DeclParam    DeclKind = "param"
	DeclGlobal   DeclKind = "global"
)

// Binding is one name's entry within a scope.
type Binding struct {
	DeclKind DeclKind
	Value    value.Value
}

// Scope is one activation record: a kind tag plus an insertion-ordered
// name -> Binding map (insertion order is kept only so snapshots are
// deterministic to print/diff; lookup itself is by name).
type Scope struct {
	Kind  Kind
	names []string
	binds map[string]*Binding
}

func newScope(kind Kind) *Scope {
	return &Scope{Kind: kind, binds: make(map[string]*Binding)}
}

// Declare creates or overwrites a binding. It performs no shadow-check: a
// second Declare of the same name in the same scope silently overwrites,
// on the assumption the hoisting pass already decided whether that was
// legal.
func (s *Scope) Declare(name string, kind DeclKind, initial value.Value) {
	if _, exists := s.binds[name]; !exists {
		s.names = append(s.names, name)
	}
	s.binds[name] = &Binding{DeclKind: kind, Value: initial}
}

// Get returns the binding for name in this scope only (no outer search).
func (s *Scope) Get(name string) (*Binding, bool) {
	b, ok := s.binds[name]
	return b, ok
}

// Names returns bound names in declaration order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Scope) clone() *Scope {
	c := &Scope{Kind: s.Kind, names: append([]string(nil), s.names...), binds: make(map[string]*Binding, len(s.binds))}
	for k, b := range s.binds {
		cb := *b
		c.binds[k] = &cb
	}
	return c
}

// ScopeStack is the lexical scope stack. Index 0 is always the global
// scope and the stack is never empty during execution.
type ScopeStack struct {
	scopes []*Scope
}

// NewScopeStack creates a stack already containing the global scope at
// index 0, so that invariant holds from the first step onward.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []*Scope{newScope(Global)}}
}

// Push creates a new top scope of the given kind and returns its index.
func (s *ScopeStack) Push(kind Kind) int {
	s.scopes = append(s.scopes, newScope(kind))
	return len(s.scopes) - 1
}

// Pop removes the top scope. The caller must never pop scope 0 (global).
func (s *ScopeStack) Pop() {
	if len(s.scopes) <= 1 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Len returns the stack depth.
func (s *ScopeStack) Len() int { return len(s.scopes) }

// Top returns the index of the current top scope.
func (s *ScopeStack) Top() int { return len(s.scopes) - 1 }

// At returns the scope at index i.
func (s *ScopeStack) At(i int) *Scope { return s.scopes[i] }

// Declare declares a binding directly in the scope at scopeIndex.
func (s *ScopeStack) Declare(scopeIndex int, name string, kind DeclKind, initial value.Value) {
	s.scopes[scopeIndex].Declare(name, kind, initial)
}

// Lookup walks the stack top-down from fromIndex (inclusive) looking for
// name.
func (s *ScopeStack) Lookup(name string, fromIndex int) (*Binding, int, bool) {
	for i := fromIndex; i >= 0; i-- {
		if b, ok := s.scopes[i].Get(name); ok {
			return b, i, true
		}
	}
	return nil, -1, false
}

// LookupFromTop is Lookup starting at the current top of stack; this is
// the common case used when evaluating an expression in the scope that is
// currently executing.
func (s *ScopeStack) LookupFromTop(name string) (*Binding, int, bool) {
	return s.Lookup(name, s.Top())
}

// WriteResult describes how WriteVariable resolved.
type WriteResult int

const (
	WroteExisting WriteResult = iota
	WroteNewGlobal
	WriteFailed
)

// WriteVariable finds the binding by walking the stack from fromIndex down;
// if found, writes it there. If not found and strict is false, creates a
// new `global` binding in scope 0. If not found and strict is true, the
// caller should raise a ReferenceError (WriteFailed).
func (s *ScopeStack) WriteVariable(name string, v value.Value, fromIndex int, strict bool) (scopeIndex int, result WriteResult) {
	if b, idx, ok := s.Lookup(name, fromIndex); ok {
		b.Value = v
		return idx, WroteExisting
	}
	if strict {
		return -1, WriteFailed
	}
	s.Declare(0, name, DeclGlobal, v)
	return 0, WroteNewGlobal
}

// Clone deep-copies the entire scope stack for an independent memory
// snapshot.
func (s *ScopeStack) Clone() *ScopeStack {
	c := &ScopeStack{scopes: make([]*Scope, len(s.scopes))}
	for i, sc := range s.scopes {
		c.scopes[i] = sc.clone()
	}
	return c
}
