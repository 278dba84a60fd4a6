// Package ops implements the ECMAScript abstract operations that back every
// binary, unary, update, assignment, and logical operator: the
// ToBoolean/ToNumber/ToInt32/ToUint32/ToString/ToPrimitive coercion ladder
// and the operator tables built on top of it. Each coercion function tries
// the value's own kind first, falling back to ToPrimitive only for
// references.
package ops

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/value"
)

// ToBoolean converts v to a boolean: booleans pass through, other
// primitives use standard JS truthiness, and references are always truthy.
func ToBoolean(v value.Value) bool {
	switch v.Kind {
	case value.Boolean:
		return v.B
	case value.Undefined, value.Null, value.TDZ:
		return false
	case value.Number:
		return v.N != 0 && !math.IsNaN(v.N)
	case value.BigInt:
		return v.Big.Sign() != 0
	case value.String:
		return v.S != ""
	case value.Symbol:
		return true
	case value.Reference:
		return true
	}
	return false
}

// ToPrimitive converts a heap reference to a primitive: arrays stringify
// their elements and comma-join them (empty array -> ""); functions render
// a fixed "native code" signature depending on whether they are arrow
// functions; plain objects render "[object Object]".
func ToPrimitive(ref value.Ref, h *heap.Heap) value.Value {
	obj, ok := h.Get(ref)
	if !ok {
		return value.Undef()
	}
	switch obj.Kind {
	case heap.ArrayObject:
		parts := make([]string, len(obj.Elements))
		for i, el := range obj.Elements {
			if el.IsNullish() {
				parts[i] = ""
			} else {
				parts[i] = ToString(el, h)
			}
		}
		return value.Str(strings.Join(parts, ","))
	case heap.FunctionObject:
		if obj.IsArrow {
			return value.Str("() => { [native code] }")
		}
		name := obj.FuncName
		return value.Str("function " + name + "() { [native code] }")
	default:
		return value.Str("[object Object]")
	}
}

// ToNumber converts v to a number, coercing strings and booleans and
// flattening references through ToPrimitive first.
func ToNumber(v value.Value, h *heap.Heap) float64 {
	switch v.Kind {
	case value.Number:
		return v.N
	case value.Undefined, value.TDZ:
		return math.NaN()
	case value.Null:
		return 0
	case value.Boolean:
		if v.B {
			return 1
		}
		return 0
	case value.String:
		return stringToNumber(v.S)
	case value.BigInt:
		f := new(big.Float).SetInt(v.Big)
		n, _ := f.Float64()
		return n
	case value.Symbol:
		return math.NaN()
	case value.Reference:
		return ToNumber(ToPrimitive(v.R, h), h)
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	if t == "Infinity" || t == "+Infinity" {
		return math.Inf(1)
	}
	if t == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		n, err := strconv.ParseInt(t[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToInt32 runs ToNumber then a signed 32-bit wrap.
func ToInt32(v value.Value, h *heap.Heap) int32 {
	n := ToNumber(v, h)
	return float64ToInt32(n)
}

// ToUint32 runs ToNumber then an unsigned 32-bit wrap.
func ToUint32(v value.Value, h *heap.Heap) uint32 {
	n := ToNumber(v, h)
	return float64ToUint32(n)
}

func float64ToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	n = math.Trunc(n)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

func float64ToInt32(n float64) int32 {
	u := float64ToUint32(n)
	if u >= 2147483648 {
		return int32(int64(u) - 4294967296)
	}
	return int32(u)
}

// ToString converts v to a string, symmetric with ToNumber; references go
// through ToPrimitive first.
func ToString(v value.Value, h *heap.Heap) string {
	switch v.Kind {
	case value.String:
		return v.S
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	case value.TDZ:
		return "undefined"
	case value.Boolean:
		if v.B {
			return "true"
		}
		return "false"
	case value.Number:
		return numberToString(v.N)
	case value.BigInt:
		return v.Big.String()
	case value.Symbol:
		return "Symbol(" + v.Sy.Description + ")"
	case value.Reference:
		return ToString(ToPrimitive(v.R, h), h)
	}
	return ""
}

// numberToString follows ECMA-262's Number::toString: plain decimal digits
// for magnitudes in [1e-6, 1e21), exponential notation (unpadded exponent,
// explicit sign) outside that range. strconv's 'g' verb switches to
// exponential far earlier than that, so it is not used here.
func numberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == 0 {
		return "0"
	}

	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		return numberToExponential(n)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// numberToExponential renders n the way JS prints large/small numbers:
// shortest mantissa, no zero-padded exponent (Go's 'e' verb pads to two
// digits, e.g. "e-07" where JS prints "e-7").
func numberToExponential(n float64) string {
	s := strconv.FormatFloat(n, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(s, "e")

	sign := "+"
	if strings.HasPrefix(expPart, "-") {
		sign = "-"
	}
	digits := strings.TrimLeft(strings.TrimLeft(expPart, "+-"), "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
