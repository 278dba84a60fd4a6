package memory

import (
	"testing"

	"github.com/jstrace/jstrace/internal/value"
)

func TestOperandStackPushPopLIFO(t *testing.T) {
	s := NewOperandStack()
	s.Push(value.Num(1))
	s.Push(value.Num(2))

	top, ok := s.Pop()
	if !ok || top.N != 2 {
		t.Fatalf("expected top == 2, got %v ok=%v", top.DebugString(), ok)
	}
	top, ok = s.Pop()
	if !ok || top.N != 1 {
		t.Fatalf("expected top == 1, got %v ok=%v", top.DebugString(), ok)
	}
	if _, ok := s.Pop(); ok {
		t.Error("expected underflow on an empty stack")
	}
}

func TestOperandStackPeekDoesNotRemove(t *testing.T) {
	s := NewOperandStack()
	s.Push(value.Num(1))
	s.Push(value.Num(2))

	top, ok := s.Peek(0)
	if !ok || top.N != 2 {
		t.Fatalf("expected Peek(0) == 2, got %v", top.DebugString())
	}
	if s.Len() != 2 {
		t.Errorf("expected Peek to leave the stack untouched, len=%d", s.Len())
	}
	second, ok := s.Peek(1)
	if !ok || second.N != 1 {
		t.Fatalf("expected Peek(1) == 1, got %v", second.DebugString())
	}
	if _, ok := s.Peek(2); ok {
		t.Error("expected Peek out of range to report ok=false")
	}
}

func TestOperandStackSnapshotIsDefensiveCopy(t *testing.T) {
	s := NewOperandStack()
	s.Push(value.Num(1))

	snap := s.Snapshot()
	s.Push(value.Num(2))

	if len(snap) != 1 {
		t.Errorf("expected snapshot taken before the second push to have length 1, got %d", len(snap))
	}
}
