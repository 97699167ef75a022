// Package object implements the Value model (spec.md §3.1) and the Scope
// container (spec.md §3.2, §4.1) that together form the evaluator's runtime
// data model.
package object

// Kind tags a Value's variant. The eight kinds named in spec.md §3.1 plus
// NativeFunction, an additive kind used only by the evaluator's native
// module wiring (SPEC_FULL.md §3) — never produced by user source, only by
// Go code: the native modules installed into the top scope before the
// prelude runs, and values those modules return (e.g. a Socket connection).
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumeric
	KindString
	KindArray
	KindFunction
	KindClass
	KindPrimitiveClass
	KindObject
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindNumeric:
		return "Numeric"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	case KindPrimitiveClass:
		return "PrimitiveClass"
	case KindObject:
		return "Object"
	case KindNativeFunction:
		return "NativeFunction"
	default:
		return "Unknown"
	}
}

// PrimitiveClassName maps a value Kind to the canonical name a PrimitiveClass
// must be bound under in scope for primitive-method dispatch to find it
// (spec.md §4.5 class-name map). Class and Object values dispatch through
// their own class machinery rather than a PrimitiveClass, but Class still
// gets an entry since classes themselves are operands of `==`/`!=`.
func PrimitiveClassName(k Kind) (string, bool) {
	switch k {
	case KindNull:
		return "Null", true
	case KindBoolean:
		return "Boolean", true
	case KindNumeric:
		return "Numeric", true
	case KindString:
		return "String", true
	case KindArray:
		return "Array", true
	case KindFunction:
		return "Function", true
	case KindClass:
		return "Class", true
	default:
		return "", false
	}
}
