package interp

import (
	"github.com/jstrace/jstrace/internal/bubble"
	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/trace"
	"github.com/jstrace/jstrace/internal/value"
)

// raiseSimulated builds a simulated ECMAScript error: a PlainObject
// heap entry with name/message/stack, pushes it onto the operand stack,
// appends a console `error` entry carrying the stack string, and returns the
// throw bubble the caller should propagate.
func (ip *Interp) raiseSimulated(name, message string) *bubble.Signal {
	ref, obj := ip.Rec.Heap.Allocate(heap.PlainObject)
	stack := name + ": " + message
	obj.SetProperty("name", value.Str(name))
	obj.SetProperty("message", value.Str(message))
	obj.SetProperty("stack", value.Str(stack))

	errVal := value.Ref_(ref)
	ip.Rec.SetChange(trace.MemoryChange{Kind: trace.ChangeCreateHeapObject, Ref: ref, Value: errVal})
	ip.Rec.Push(errVal)
	ip.Rec.Console.Append(trace.Error, []value.Value{value.Str(stack)})
	return bubble.NewThrow()
}

func (ip *Interp) typeError(message string) *bubble.Signal {
	return ip.raiseSimulated("TypeError", message)
}

func (ip *Interp) referenceError(message string) *bubble.Signal {
	return ip.raiseSimulated("ReferenceError", message)
}
