package trace

import (
	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/value"
)

// Recorder is the step recorder. It owns the live memory
// (scopes, heap, operand stack, console) on the caller's behalf so that
// every push/pop and every declared change is captured automatically, then
// emits a Step that embeds a deep, independent snapshot.
type Recorder struct {
	Scopes  *memory.ScopeStack
	Heap    *heap.Heap
	Memval  *memory.OperandStack
	Console *ConsoleBuffer

	steps []*Step

	pendingChange MemoryChange
	pendingMemval []MemvalChange
}

// NewRecorder wires a fresh Recorder around a fresh memory set: a scope
// stack with the global scope at index 0, an empty heap, an empty operand
// stack, and an empty console buffer.
func NewRecorder() *Recorder {
	return &Recorder{
		Scopes:        memory.NewScopeStack(),
		Heap:          heap.New(),
		Memval:        memory.NewOperandStack(),
		Console:       NewConsoleBuffer(),
		pendingChange: MemoryChange{Kind: ChangeNone},
	}
}

// Push pushes v onto the operand stack and records the push as a pending
// memval change.
func (r *Recorder) Push(v value.Value) {
	r.Memval.Push(v)
	r.pendingMemval = append(r.pendingMemval, MemvalChange{Kind: MemvalPush, Value: v})
}

// Pop pops the top of the operand stack and records the pop as a pending
// memval change. ok is false on underflow (the caller should treat this as
// a simulator error, never a silent no-op).
func (r *Recorder) Pop() (value.Value, bool) {
	v, ok := r.Memval.Pop()
	if !ok {
		return v, false
	}
	r.pendingMemval = append(r.pendingMemval, MemvalChange{Kind: MemvalPop, Value: v})
	return v, true
}

// SetChange records the memory_change descriptor the in-flight handler
// performed, to be attached to the next emitted step.
func (r *Recorder) SetChange(c MemoryChange) {
	r.pendingChange = c
}

// Emit deep-clones the current memory into a snapshot, attaches the pending
// change/memval-change buffers and the console snapshot, appends the step,
// resets the pending buffers, and returns the step.
func (r *Recorder) Emit(nodeType string, nodeRange [2]int, stepType StepType, scopeIndex int, bubbleUp string) *Step {
	step := &Step{
		Index:      len(r.steps),
		NodeType:   nodeType,
		NodeRange:  nodeRange,
		StepType:   stepType,
		ScopeIndex: scopeIndex,
		Memory: &MemorySnapshot{
			Scopes: r.Scopes.Clone(),
			Heap:   r.Heap.Clone(),
			Memval: r.Memval.Snapshot(),
		},
		MemoryChange:  r.pendingChange,
		MemvalChanges: r.pendingMemval,
		Console:       r.Console.Snapshot(),
		BubbleUp:      bubbleUp,
	}
	r.steps = append(r.steps, step)
	r.pendingChange = MemoryChange{Kind: ChangeNone}
	r.pendingMemval = nil
	return step
}

// Steps returns every step emitted so far, in order.
func (r *Recorder) Steps() []*Step {
	return r.steps
}
