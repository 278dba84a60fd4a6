// Package value implements the simulator's tagged runtime value: either a
// primitive (undefined, null, boolean, number, bigint, string, symbol, or the
// TDZ sentinel) or a reference into the heap. See internal/heap for the
// objects references point at.
package value

import (
	"fmt"
	"math"
	"math/big"
)

// Kind tags the variant a Value currently holds.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	Boolean
	Number
	BigInt
	String
	Symbol
	TDZ
	Reference
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case BigInt:
		return "bigint"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case TDZ:
		return "tdz"
	case Reference:
		return "reference"
	default:
		return "unknown"
	}
}

// Ref identifies a heap slot. Refs are assigned monotonically and are never
// reused, so a Ref is valid for the lifetime of the simulator instance that
// produced it (see internal/heap).
type Ref int64

// Sym is a symbol primitive. Two Sym values are only identical if they are
// the same pointer; a freshly allocated Sym is always unique.
type Sym struct {
	Description string
}

// Value is a tagged union over every primitive kind plus a heap reference.
// Only the fields relevant to Kind are meaningful; the rest are zero.
type Value struct {
	Kind Kind
	B    bool
	N    float64
	Big  *big.Int
	S    string
	Sy   *Sym
	R    Ref
}

func Undef() Value           { return Value{Kind: Undefined} }
func Nul() Value             { return Value{Kind: Null} }
func Bool(b bool) Value      { return Value{Kind: Boolean, B: b} }
func Num(n float64) Value    { return Value{Kind: Number, N: n} }
func Str(s string) Value     { return Value{Kind: String, S: s} }
func BigI(b *big.Int) Value  { return Value{Kind: BigInt, Big: b} }
func NotInit() Value         { return Value{Kind: TDZ} }
func Ref_(r Ref) Value       { return Value{Kind: Reference, R: r} }
func NewSymbol(desc string) Value {
	return Value{Kind: Symbol, Sy: &Sym{Description: desc}}
}

func (v Value) IsUndefined() bool { return v.Kind == Undefined }
func (v Value) IsNull() bool      { return v.Kind == Null }
func (v Value) IsNullish() bool   { return v.Kind == Undefined || v.Kind == Null }
func (v Value) IsTDZ() bool       { return v.Kind == TDZ }
func (v Value) IsReference() bool { return v.Kind == Reference }
func (v Value) IsPrimitive() bool { return v.Kind != Reference }

// SameValueZero compares two values by kind and content, with NaN equal to
// NaN here, unlike JS's own ===. The === operator is implemented separately
// by internal/ops.StrictEquals, which does not call this helper.
func (v Value) SameValueZero(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Undefined, Null, TDZ:
		return true
	case Boolean:
		return v.B == other.B
	case Number:
		if math.IsNaN(v.N) && math.IsNaN(other.N) {
			return true
		}
		return v.N == other.N
	case BigInt:
		return v.Big.Cmp(other.Big) == 0
	case String:
		return v.S == other.S
	case Symbol:
		return v.Sy == other.Sy
	case Reference:
		return v.R == other.R
	}
	return false
}

// DebugString renders a value for diagnostics; it is not the ECMAScript
// ToString conversion (see internal/ops.ToString for that, which needs heap
// access to stringify references).
func (v Value) DebugString() string {
	switch v.Kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case TDZ:
		return "<not initialized>"
	case Boolean:
		return fmt.Sprintf("%t", v.B)
	case Number:
		return fmt.Sprintf("%v", v.N)
	case BigInt:
		return v.Big.String() + "n"
	case String:
		return v.S
	case Symbol:
		return "Symbol(" + v.Sy.Description + ")"
	case Reference:
		return fmt.Sprintf("ref#%d", v.R)
	default:
		return "?"
	}
}
