package machine

import "github.com/mna/gox/lang/ir"

// StackValue is a single operand-stack, local or global slot: a tagged
// union of int and float, replacing the teacher's polymorphic Value
// interface since GoxLang's runtime has exactly two scalar
// representations. Only the field matching Type is meaningful.
type StackValue struct {
	Type ir.ValueType
	I    int64
	F    float64
}

// IntValue returns an int-typed StackValue.
func IntValue(v int64) StackValue { return StackValue{Type: ir.I, I: v} }

// FloatValue returns a float-typed StackValue.
func FloatValue(v float64) StackValue { return StackValue{Type: ir.F, F: v} }

// zero returns the zero value for irType (0 or 0.0), used to
// zero-initialize declared locals that a CALL does not bind from an
// argument, and to synthesize an implicit return value when a function's
// code runs off its end without an explicit RET.
func zero(irType ir.ValueType) StackValue {
	if irType == ir.F {
		return FloatValue(0)
	}
	return IntValue(0)
}
