// Package trace implements the step recorder: it snapshots the
// simulator's memory after every transition and emits typed, immutable step
// records a visualizer can replay in any order. Each step carries a full
// deep-cloned memory snapshot rather than a frame description, since steps
// must stay independently replayable after the live run finishes.
package trace

import (
	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/value"
)

// StepType names which phase of the traversal emitted a step.
type StepType string

const (
	Initial      StepType = "initial"
	PushScope    StepType = "push_scope"
	Hoisting     StepType = "hoisting"
	Executing    StepType = "executing"
	Executed     StepType = "executed"
	Evaluating   StepType = "evaluating"
	Evaluated    StepType = "evaluated"
	FunctionCall StepType = "function_call"
	PopScope     StepType = "pop_scope"
)

// ChangeKind names the memory-change descriptor variant.
type ChangeKind string

const (
	ChangeNone             ChangeKind = "none"
	ChangeDeclaration      ChangeKind = "declaration"
	ChangeWriteVariable    ChangeKind = "write_variable"
	ChangeCreateHeapObject ChangeKind = "create_heap_object"
	ChangeWriteProperty    ChangeKind = "write_property"
	ChangeDeleteProperty   ChangeKind = "delete_property"
	ChangePushScope        ChangeKind = "push_scope"
	ChangePopScope         ChangeKind = "pop_scope"
)

// MemoryChange describes the single memory mutation a step performed, if
// any.
type MemoryChange struct {
	Kind ChangeKind

	Declarations []memory.Declaration // ChangeDeclaration

	ScopeIndex   int          // ChangeWriteVariable / ChangePushScope / ChangePopScope
	VariableName string       // ChangeWriteVariable
	Value        value.Value  // ChangeWriteVariable / ChangeWriteProperty

	Ref value.Ref // ChangeCreateHeapObject / ChangeWriteProperty / ChangeDeleteProperty
	Key string     // ChangeWriteProperty / ChangeDeleteProperty
}

// MemvalChangeKind names whether an operand-stack change was a push or pop.
type MemvalChangeKind string

const (
	MemvalPush MemvalChangeKind = "push"
	MemvalPop  MemvalChangeKind = "pop"
)

// MemvalChange is one recorded operand-stack mutation.
type MemvalChange struct {
	Kind  MemvalChangeKind
	Value value.Value
}

// MemorySnapshot is a deep, independent copy of the simulator's full memory
// state at the moment a step was emitted. The copy must be deep: later
// mutations to the live scopes/heap must never be visible through an
// already-emitted step.
type MemorySnapshot struct {
	Scopes *memory.ScopeStack
	Heap   *heap.Heap
	Memval []value.Value
}

// Step is one atomic transition in the simulator's trace.
type Step struct {
	Index        int
	NodeType     string
	NodeRange    [2]int
	StepType     StepType
	ScopeIndex   int
	Memory       *MemorySnapshot
	MemoryChange MemoryChange
	MemvalChanges []MemvalChange
	Console      []ConsoleEntry
	BubbleUp     string // "" or one of bubble.Kind's string values
}
