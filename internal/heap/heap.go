// Package heap implements the simulator's object arena: an
// integer-reference-addressed store of plain objects, arrays, and functions.
// References are assigned monotonically and never reused or renumbered, and
// the arena owns every object exclusively — scopes only ever hold a
// value.Reference into it.
package heap

import (
	"strconv"

	"github.com/jstrace/jstrace/internal/ast"
	"github.com/jstrace/jstrace/internal/value"
)

// Kind tags which heap-object variant an Object is.
type Kind uint8

const (
	PlainObject Kind = iota
	ArrayObject
	FunctionObject
)

// Object is one heap entry. Which fields are meaningful depends on Kind.
type Object struct {
	Kind Kind

	// PlainObject / ArrayObject non-index properties: insertion-ordered.
	propNames []string
	props     map[string]value.Value

	// ArrayObject elements.
	Elements []value.Value

	// FunctionObject.
	FuncNode    ast.Node // *ast.FunctionDeclaration | *ast.FunctionExpression | *ast.ArrowFunctionExpression
	FuncName    string
	IsArrow     bool
	ClosureTop  int // scope-stack length at allocation time; see DESIGN.md (currently unread by the call protocol)
}

func newObject(kind Kind) *Object {
	return &Object{
		Kind:  kind,
		props: make(map[string]value.Value),
	}
}

// SetProperty writes a non-index property, preserving insertion order.
func (o *Object) SetProperty(key string, v value.Value) {
	if _, exists := o.props[key]; !exists {
		o.propNames = append(o.propNames, key)
	}
	o.props[key] = v
}

// GetProperty reads a non-index property. ok is false when absent.
func (o *Object) GetProperty(key string) (value.Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

// DeleteProperty removes a non-index property, returns whether it existed.
func (o *Object) DeleteProperty(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, n := range o.propNames {
		if n == key {
			o.propNames = append(o.propNames[:i], o.propNames[i+1:]...)
			break
		}
	}
	return true
}

// PropertyNames returns non-index property keys in insertion order.
func (o *Object) PropertyNames() []string {
	out := make([]string, len(o.propNames))
	copy(out, o.propNames)
	return out
}

func (o *Object) clone() *Object {
	c := &Object{
		Kind:       o.Kind,
		FuncNode:   o.FuncNode,
		FuncName:   o.FuncName,
		IsArrow:    o.IsArrow,
		ClosureTop: o.ClosureTop,
	}
	c.propNames = append([]string(nil), o.propNames...)
	c.props = make(map[string]value.Value, len(o.props))
	for k, v := range o.props {
		c.props[k] = v
	}
	if o.Elements != nil {
		c.Elements = append([]value.Value(nil), o.Elements...)
	}
	return c
}

// ArrayIndex reports whether key is a canonical non-negative integer index
// (e.g. "0", "12"), and its value. "01" and "-1" are not indices; they are
// stored as ordinary properties, matching ECMAScript array-index semantics.
func ArrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	if key == "0" {
		return 0, true
	}
	if key[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Heap is the object arena.
type Heap struct {
	objects map[value.Ref]*Object
	next    value.Ref
}

func New() *Heap {
	return &Heap{objects: make(map[value.Ref]*Object)}
}

// Allocate creates a new heap object of the given kind and returns its ref.
// Refs increase monotonically and are never reused, even across deletes
// (there is no delete-the-whole-object operation, only property deletes).
func (h *Heap) Allocate(kind Kind) (value.Ref, *Object) {
	r := h.next
	h.next++
	obj := newObject(kind)
	h.objects[r] = obj
	return r, obj
}

// Get returns the object for ref, or (nil, false) if ref is not (yet)
// present in the heap.
func (h *Heap) Get(ref value.Ref) (*Object, bool) {
	o, ok := h.objects[ref]
	return o, ok
}

// ReadProperty reads a property off ref: array objects split numeric-string
// keys into Elements and everything else into the property map; missing
// keys read as undefined.
func (h *Heap) ReadProperty(ref value.Ref, key string) value.Value {
	obj, ok := h.objects[ref]
	if !ok {
		return value.Undef()
	}
	if obj.Kind == ArrayObject {
		if key == "length" {
			return value.Num(float64(len(obj.Elements)))
		}
		if idx, isIdx := ArrayIndex(key); isIdx {
			if idx < len(obj.Elements) {
				return obj.Elements[idx]
			}
			return value.Undef()
		}
	}
	if v, ok := obj.GetProperty(key); ok {
		return v
	}
	return value.Undef()
}

// WriteProperty writes a property onto ref, with the same array/object key
// split as ReadProperty. Writing past the end of an array's Elements (e.g.
// a[5] on a 2-element array) pads with undefined, matching JS
// sparse-array-by-growth semantics closely enough for this simulator's
// purposes (holes read as undefined, same as a true sparse array would for
// this subset).
func (h *Heap) WriteProperty(ref value.Ref, key string, v value.Value) {
	obj, ok := h.objects[ref]
	if !ok {
		return
	}
	if obj.Kind == ArrayObject {
		if key == "length" {
			n := int(v.N)
			if n < 0 {
				n = 0
			}
			if n < len(obj.Elements) {
				obj.Elements = obj.Elements[:n]
			} else {
				for len(obj.Elements) < n {
					obj.Elements = append(obj.Elements, value.Undef())
				}
			}
			return
		}
		if idx, isIdx := ArrayIndex(key); isIdx {
			for len(obj.Elements) <= idx {
				obj.Elements = append(obj.Elements, value.Undef())
			}
			obj.Elements[idx] = v
			return
		}
	}
	obj.SetProperty(key, v)
}

// DeleteProperty removes a property from ref, for both the array and
// plain-object splits.
func (h *Heap) DeleteProperty(ref value.Ref, key string) bool {
	obj, ok := h.objects[ref]
	if !ok {
		return false
	}
	if obj.Kind == ArrayObject {
		if idx, isIdx := ArrayIndex(key); isIdx {
			if idx < len(obj.Elements) {
				obj.Elements[idx] = value.Undef()
				return true
			}
			return false
		}
	}
	return obj.DeleteProperty(key)
}

// HasOwn reports whether ref owns key, including array elements/length
// (the `in` operator's fast path).
func (h *Heap) HasOwn(ref value.Ref, key string) bool {
	obj, ok := h.objects[ref]
	if !ok {
		return false
	}
	if obj.Kind == ArrayObject {
		if key == "length" {
			return true
		}
		if idx, isIdx := ArrayIndex(key); isIdx {
			return idx < len(obj.Elements)
		}
	}
	_, has := obj.GetProperty(key)
	return has
}

// Clone deep-copies the entire arena, used by the step recorder to produce
// an independent memory snapshot.
func (h *Heap) Clone() *Heap {
	c := &Heap{objects: make(map[value.Ref]*Object, len(h.objects)), next: h.next}
	for r, o := range h.objects {
		c.objects[r] = o.clone()
	}
	return c
}

// Len reports the number of allocated (still tracked) objects.
func (h *Heap) Len() int { return len(h.objects) }

// Refs returns all live references, for iteration (e.g. by the step
// recorder or a JSON encoder); order is not guaranteed.
func (h *Heap) Refs() []value.Ref {
	out := make([]value.Ref, 0, len(h.objects))
	for r := range h.objects {
		out = append(out, r)
	}
	return out
}
