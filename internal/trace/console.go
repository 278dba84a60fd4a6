package trace

import "github.com/jstrace/jstrace/internal/value"

// ConsoleKind names the console-entry style a `console.*` call produced.
type ConsoleKind string

const (
	Log             ConsoleKind = "log"
	Error           ConsoleKind = "error"
	Info            ConsoleKind = "info"
	Warn            ConsoleKind = "warn"
	Debug           ConsoleKind = "debug"
	Table           ConsoleKind = "table"
	Group           ConsoleKind = "group"
	GroupEnd        ConsoleKind = "groupEnd"
	GroupCollapsed  ConsoleKind = "groupCollapsed"
)

// ConsoleEntry is one observable console-style log line.
type ConsoleEntry struct {
	Kind   ConsoleKind
	Values []value.Value
}

// ConsoleBuffer is the ordered console log, a copy of which is snapshotted
// into every step.
type ConsoleBuffer struct {
	entries []ConsoleEntry
}

func NewConsoleBuffer() *ConsoleBuffer {
	return &ConsoleBuffer{}
}

// Append records a new console entry.
func (c *ConsoleBuffer) Append(kind ConsoleKind, values []value.Value) {
	c.entries = append(c.entries, ConsoleEntry{Kind: kind, Values: append([]value.Value(nil), values...)})
}

// Snapshot returns a stable, independent copy of the buffer's current
// contents at the moment it's called.
func (c *ConsoleBuffer) Snapshot() []ConsoleEntry {
	out := make([]ConsoleEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
