package trace

import (
	"testing"

	"github.com/jstrace/jstrace/internal/memory"
	"github.com/jstrace/jstrace/internal/value"
)

func TestPushPopRecordMemvalChanges(t *testing.T) {
	r := NewRecorder()
	r.Push(value.Num(1))
	v, ok := r.Pop()
	if !ok || v.N != 1 {
		t.Fatalf("expected Pop to return 1, got %v ok=%v", v.DebugString(), ok)
	}

	step := r.Emit("ExpressionStatement", [2]int{0, 1}, Evaluated, 0, "")
	if len(step.MemvalChanges) != 2 {
		t.Fatalf("expected 2 memval changes (push, pop), got %d", len(step.MemvalChanges))
	}
	if step.MemvalChanges[0].Kind != MemvalPush || step.MemvalChanges[1].Kind != MemvalPop {
		t.Errorf("expected push then pop, got %+v", step.MemvalChanges)
	}
}

func TestEmitResetsPendingBuffersBetweenSteps(t *testing.T) {
	r := NewRecorder()
	r.Push(value.Num(1))
	r.Emit("A", [2]int{0, 1}, Evaluated, 0, "")

	second := r.Emit("B", [2]int{1, 2}, Evaluated, 0, "")
	if len(second.MemvalChanges) != 0 {
		t.Errorf("expected the second step's memval changes to start empty, got %+v", second.MemvalChanges)
	}
	if second.MemoryChange.Kind != ChangeNone {
		t.Errorf("expected the second step's memory change to reset to ChangeNone, got %v", second.MemoryChange.Kind)
	}
}

func TestEmitIndexesStepsSequentially(t *testing.T) {
	r := NewRecorder()
	s0 := r.Emit("A", [2]int{0, 1}, Evaluated, 0, "")
	s1 := r.Emit("B", [2]int{1, 2}, Evaluated, 0, "")
	if s0.Index != 0 || s1.Index != 1 {
		t.Errorf("expected sequential indices 0,1, got %d,%d", s0.Index, s1.Index)
	}
	if len(r.Steps()) != 2 {
		t.Errorf("expected Steps() to return both emitted steps, got %d", len(r.Steps()))
	}
}

func TestEmitSnapshotsAreIndependentOfLaterMutation(t *testing.T) {
	r := NewRecorder()
	r.Scopes.Declare(0, "x", memory.DeclVar, value.Num(1))
	step := r.Emit("A", [2]int{0, 1}, Evaluated, 0, "")

	r.Scopes.Declare(0, "x", memory.DeclVar, value.Num(2))

	b, _ := step.Memory.Scopes.At(0).Get("x")
	if b.Value.N != 1 {
		t.Errorf("expected the snapshot to freeze x at 1, got %v", b.Value.DebugString())
	}
}

func TestConsoleBufferSnapshotIsCumulativeAndIndependent(t *testing.T) {
	c := NewConsoleBuffer()
	c.Append(Log, []value.Value{value.Str("first")})

	snap := c.Snapshot()
	c.Append(Error, []value.Value{value.Str("second")})

	if len(snap) != 1 {
		t.Fatalf("expected the first snapshot to have 1 entry, got %d", len(snap))
	}
	full := c.Snapshot()
	if len(full) != 2 {
		t.Fatalf("expected the buffer to accumulate to 2 entries, got %d", len(full))
	}
	if full[0].Kind != Log || full[1].Kind != Error {
		t.Errorf("expected log then error, got %+v", full)
	}
}
