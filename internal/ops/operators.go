package ops

import (
	"fmt"
	"math"

	"github.com/jstrace/jstrace/internal/heap"
	"github.com/jstrace/jstrace/internal/value"
)

// OperatorError marks a binary/unary operator evaluation that must surface
// as an ECMAScript-visible TypeError rather than a Go error. The
// caller (internal/interp) is responsible for turning this into a heap
// error object and a throw bubble; it never escapes as a Go error itself.
type OperatorError struct {
	Message string
}

func (e *OperatorError) Error() string { return e.Message }

func typeError(format string, args ...any) error {
	return &OperatorError{Message: fmt.Sprintf(format, args...)}
}

// StrictEquals implements ===: reference identity for
// references, value identity for primitives, false across kinds.
func StrictEquals(a, b value.Value) bool {
	if a.Kind == value.Reference && b.Kind == value.Reference {
		return a.R == b.R
	}
	if a.Kind == value.Reference || b.Kind == value.Reference {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.Undefined, value.Null, value.TDZ:
		return true
	case value.Boolean:
		return a.B == b.B
	case value.Number:
		return a.N == b.N // NaN !== NaN falls out of plain float comparison
	case value.BigInt:
		return a.Big.Cmp(b.Big) == 0
	case value.String:
		return a.S == b.S
	case value.Symbol:
		return a.Sy == b.Sy
	}
	return false
}

// AbstractEquals implements ==.
func AbstractEquals(a, b value.Value, h *heap.Heap) bool {
	if a.Kind == b.Kind {
		return StrictEquals(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	// reference vs primitive: ToPrimitive then retry
	if a.Kind == value.Reference && b.Kind != value.Reference {
		return AbstractEquals(ToPrimitive(a.R, h), b, h)
	}
	if b.Kind == value.Reference && a.Kind != value.Reference {
		return AbstractEquals(a, ToPrimitive(b.R, h), h)
	}
	// number/string/boolean cross-kind: both ToNumber
	return ToNumber(a, h) == ToNumber(b, h)
}

// Relational implements <, <=, >, >=. op is one of those four
// token strings.
func Relational(op string, left, right value.Value, h *heap.Heap) (value.Value, error) {
	l, r := left, right
	if l.Kind == value.Reference {
		l = ToPrimitive(l.R, h)
	}
	if r.Kind == value.Reference {
		r = ToPrimitive(r.R, h)
	}
	var cmp int
	nan := false
	if l.Kind == value.String && r.Kind == value.String {
		switch {
		case l.S < r.S:
			cmp = -1
		case l.S > r.S:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		ln, rn := ToNumber(l, h), ToNumber(r, h)
		if math.IsNaN(ln) || math.IsNaN(rn) {
			nan = true
		} else if ln < rn {
			cmp = -1
		} else if ln > rn {
			cmp = 1
		} else {
			cmp = 0
		}
	}
	if nan {
		return value.Bool(false), nil
	}
	switch op {
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case ">=":
		return value.Bool(cmp >= 0), nil
	}
	return value.Undef(), typeError("unknown relational operator %q", op)
}

// Add implements +: string concat if either post-ToPrimitive
// side is a string, otherwise numeric add.
func Add(left, right value.Value, h *heap.Heap) value.Value {
	l, r := left, right
	if l.Kind == value.Reference {
		l = ToPrimitive(l.R, h)
	}
	if r.Kind == value.Reference {
		r = ToPrimitive(r.R, h)
	}
	if l.Kind == value.String || r.Kind == value.String {
		return value.Str(ToString(l, h) + ToString(r, h))
	}
	return value.Num(ToNumber(l, h) + ToNumber(r, h))
}

// Arithmetic implements -, *, /, %, **: always numeric.
func Arithmetic(op string, left, right value.Value, h *heap.Heap) (value.Value, error) {
	l, r := ToNumber(left, h), ToNumber(right, h)
	switch op {
	case "-":
		return value.Num(l - r), nil
	case "*":
		return value.Num(l * r), nil
	case "/":
		return value.Num(l / r), nil
	case "%":
		return value.Num(math.Mod(l, r)), nil
	case "**":
		return value.Num(math.Pow(l, r)), nil
	}
	return value.Undef(), typeError("unknown arithmetic operator %q", op)
}

// Shift implements <<, >>, >>>.
func Shift(op string, left, right value.Value, h *heap.Heap) (value.Value, error) {
	switch op {
	case "<<":
		l := ToInt32(left, h)
		rshift := ToUint32(right, h) & 0x1F
		return value.Num(float64(l << rshift)), nil
	case ">>":
		l := ToInt32(left, h)
		rshift := ToUint32(right, h) & 0x1F
		return value.Num(float64(l >> rshift)), nil
	case ">>>":
		l := ToUint32(left, h)
		rshift := ToUint32(right, h) & 0x1F
		return value.Num(float64(l >> rshift)), nil
	}
	return value.Undef(), typeError("unknown shift operator %q", op)
}

// Bitwise implements |, ^, &: both operands ToInt32.
func Bitwise(op string, left, right value.Value, h *heap.Heap) (value.Value, error) {
	l, r := ToInt32(left, h), ToInt32(right, h)
	switch op {
	case "|":
		return value.Num(float64(l | r)), nil
	case "^":
		return value.Num(float64(l ^ r)), nil
	case "&":
		return value.Num(float64(l & r)), nil
	}
	return value.Undef(), typeError("unknown bitwise operator %q", op)
}

// In implements the `in` operator: the key is ToString'd; if
// the right-hand side is a reference its own properties are checked
// (arrays include `length` and in-range numeric indices); otherwise a
// TypeError results.
func In(key value.Value, right value.Value, h *heap.Heap) (value.Value, error) {
	if right.Kind != value.Reference {
		return value.Undef(), typeError("Cannot use 'in' operator to search for '%s' in %s", ToString(key, h), ToString(right, h))
	}
	return value.Bool(h.HasOwn(right.R, ToString(key, h))), nil
}

// InstanceOf implements `instanceof`. It is unconditionally false: no
// prototype-chain modeling is attempted, so there's no same-constructor
// check to fall back to either (see SPEC_FULL.md).
func InstanceOf(left, right value.Value) value.Value {
	if left.Kind != value.Reference || right.Kind != value.Reference {
		return value.Bool(false)
	}
	return value.Bool(false)
}

// UnaryNumeric implements unary +, -, ~.
func UnaryNumeric(op string, operand value.Value, h *heap.Heap) (value.Value, error) {
	switch op {
	case "+":
		return value.Num(ToNumber(operand, h)), nil
	case "-":
		return value.Num(-ToNumber(operand, h)), nil
	case "~":
		return value.Num(float64(^ToInt32(operand, h))), nil
	}
	return value.Undef(), typeError("unknown unary operator %q", op)
}

// Not implements unary !.
func Not(operand value.Value) value.Value {
	return value.Bool(!ToBoolean(operand))
}

// UpdateResult is the {new_value, return_value} pair produced by ++/--:
// the value written back to the binding, and the value left on the
// operand stack (these differ for postfix updates).
type UpdateResult struct {
	NewValue    value.Value
	ReturnValue value.Value
}

// Update implements ++/--: new is current ± 1; return is new
// if prefix, else the pre-update current value.
func Update(op string, current value.Value, prefix bool, h *heap.Heap) (UpdateResult, error) {
	n := ToNumber(current, h)
	var nv float64
	switch op {
	case "++":
		nv = n + 1
	case "--":
		nv = n - 1
	default:
		return UpdateResult{}, typeError("unknown update operator %q", op)
	}
	newVal := value.Num(nv)
	if prefix {
		return UpdateResult{NewValue: newVal, ReturnValue: newVal}, nil
	}
	return UpdateResult{NewValue: newVal, ReturnValue: value.Num(n)}, nil
}
