package evaluator

import (
	"math"
	"strings"

	"charly/pkg/ast"
	"charly/pkg/object"
	"charly/pkg/trace"
)

// overrideName maps an operator token to the canonical method name user and
// primitive classes may define to intercept it (spec.md §4.3). Unary minus
// shares __minus with binary subtraction; the two are told apart by the
// argument count the override is invoked with.
func overrideName(op string) (string, bool) {
	switch op {
	case "+":
		return "__plus", true
	case "-":
		return "__minus", true
	case "*":
		return "__mult", true
	case "/":
		return "__divd", true
	case "%":
		return "__mod", true
	case "**":
		return "__pow", true
	case "<":
		return "__less", true
	case ">":
		return "__greater", true
	case "<=":
		return "__lessequal", true
	case ">=":
		return "__greaterequal", true
	case "==":
		return "__equal", true
	case "!":
		return "__not", true
	default:
		return "", false
	}
}

// dispatchOperand looks up operand's override for op: first on its own data
// scope (IGNORE_PARENT), then on its Kind's bound PrimitiveClass (spec.md
// §4.3 step 2).
func dispatchOperand(operand object.Value, op string, scope *object.Scope) (*object.Function, bool) {
	name, ok := overrideName(op)
	if !ok {
		return nil, false
	}
	if value, err := operand.Data().Get(name, object.IgnoreParent); err == nil {
		if fn, ok := value.(*object.Function); ok {
			return fn, true
		}
	}
	if method, ok := lookupPrimitiveMethod(operand.Kind(), name, scope); ok {
		if fn, ok := method.(*object.Function); ok {
			return fn, true
		}
	}
	return nil, false
}

func (ev *Evaluator) evalUnary(n *ast.UnaryExpression, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	operand, err := ev.eval(n.Right, scope, ctx)
	if err != nil {
		return nil, err
	}
	if fn, ok := dispatchOperand(operand, n.Operator, scope); ok {
		return ev.callFunction(fn, operand, nil, n, ctx)
	}
	switch n.Operator {
	case "-":
		num, ok := operand.(*object.Numeric)
		if !ok {
			return nil, trace.NewError(trace.NotImplemented, ctx, n, "unary - is not defined for %s", operand.Kind())
		}
		return object.NewNumeric(-num.Value), nil
	case "!":
		return object.NewBoolean(!object.Truthy(operand)), nil
	default:
		return nil, trace.NewError(trace.NotImplemented, ctx, n, "unknown unary operator %q", n.Operator)
	}
}

func (ev *Evaluator) evalBinary(n *ast.BinaryExpression, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	left, err := ev.eval(n.Left, scope, ctx)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(n.Right, scope, ctx)
	if err != nil {
		return nil, err
	}
	if fn, ok := dispatchOperand(left, n.Operator, scope); ok {
		return ev.callFunction(fn, left, []object.Value{right}, n, ctx)
	}
	return builtinBinary(n.Operator, left, right, ctx, n)
}

// builtinBinary implements the built-in arithmetic/concatenation semantics
// used when the left operand does not override the operator (spec.md §4.3);
// the right operand's overrides are not consulted.
func builtinBinary(op string, left, right object.Value, ctx *trace.Context, node ast.Node) (object.Value, error) {
	ln, lIsNum := left.(*object.Numeric)
	rn, rIsNum := right.(*object.Numeric)
	ls, lIsStr := left.(*object.String)
	rs, rIsStr := right.(*object.String)
	la, lIsArr := left.(*object.Array)
	ra, rIsArr := right.(*object.Array)

	switch op {
	case "+":
		if lIsNum && rIsNum {
			return object.NewNumeric(ln.Value + rn.Value), nil
		}
		if lIsStr && rIsStr {
			return object.NewString(ls.Value + rs.Value), nil
		}
		if lIsStr {
			return object.NewString(ls.Value + right.Inspect()), nil
		}
		if rIsStr {
			return object.NewString(left.Inspect() + rs.Value), nil
		}
		if lIsArr && rIsArr {
			combined := make([]object.Value, 0, len(la.Elements)+len(ra.Elements))
			combined = append(combined, la.Elements...)
			combined = append(combined, ra.Elements...)
			return object.NewArray(combined), nil
		}
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "+ is not defined between %s and %s", left.Kind(), right.Kind())

	case "-":
		if lIsNum && rIsNum {
			return object.NewNumeric(ln.Value - rn.Value), nil
		}
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "- is not defined between %s and %s", left.Kind(), right.Kind())

	case "*":
		// A zero-valued left Numeric short-circuits to 0 whatever the right
		// operand is (spec.md §4.3 multiplication edge case).
		if lIsNum && ln.Value == 0 {
			return object.NewNumeric(0), nil
		}
		if lIsNum && rIsNum {
			return object.NewNumeric(ln.Value * rn.Value), nil
		}
		if lIsStr && rIsNum {
			return object.NewString(strings.Repeat(ls.Value, repeatCount(rn.Value))), nil
		}
		if rIsStr && lIsNum {
			return object.NewString(strings.Repeat(rs.Value, repeatCount(ln.Value))), nil
		}
		if lIsArr && rIsNum {
			count := repeatCount(rn.Value)
			out := make([]object.Value, 0, len(la.Elements)*count)
			for i := 0; i < count; i++ {
				out = append(out, la.Elements...)
			}
			return object.NewArray(out), nil
		}
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "* is not defined between %s and %s", left.Kind(), right.Kind())

	case "/":
		if lIsNum && rIsNum {
			if ln.Value == 0 || rn.Value == 0 {
				return object.NewNull(), nil
			}
			return object.NewNumeric(ln.Value / rn.Value), nil
		}
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "/ is not defined between %s and %s", left.Kind(), right.Kind())

	case "%":
		if lIsNum && rIsNum {
			li, ri := int64(ln.Value), int64(rn.Value)
			if ri == 0 {
				return object.NewNull(), nil
			}
			return object.NewNumeric(float64(li % ri)), nil
		}
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "%% is not defined between %s and %s", left.Kind(), right.Kind())

	case "**":
		if lIsNum && rIsNum {
			return object.NewNumeric(math.Pow(ln.Value, rn.Value)), nil
		}
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "** is not defined between %s and %s", left.Kind(), right.Kind())

	default:
		return nil, trace.NewError(trace.NotImplemented, ctx, node, "unknown binary operator %q", op)
	}
}

func repeatCount(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(v)
}

func (ev *Evaluator) evalComparison(n *ast.ComparisonExpression, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	left, err := ev.eval(n.Left, scope, ctx)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(n.Right, scope, ctx)
	if err != nil {
		return nil, err
	}

	if n.Operator == "==" || n.Operator == "!=" {
		equal, err := ev.evalEquality(left, right, scope, n, ctx)
		if err != nil {
			return nil, err
		}
		if n.Operator == "!=" {
			return object.NewBoolean(!equal), nil
		}
		return object.NewBoolean(equal), nil
	}

	if fn, ok := dispatchOperand(left, n.Operator, scope); ok {
		return ev.callFunction(fn, left, []object.Value{right}, n, ctx)
	}
	return builtinComparison(n.Operator, left, right, ctx, n)
}

// evalEquality applies an __equal override if the left operand defines
// one, otherwise the built-in equality table (spec.md §4.3): same Kind
// compares by value for Null/Boolean/Numeric/String, by identity for every
// other Kind; a mismatched Kind is false unless Boolean is on one side, in
// which case the asymmetric Null rule or the truthiness-coercion rule
// applies (see builtinEqual).
func (ev *Evaluator) evalEquality(left, right object.Value, scope *object.Scope, node ast.Node, ctx *trace.Context) (bool, error) {
	if fn, ok := dispatchOperand(left, "==", scope); ok {
		result, err := ev.callFunction(fn, left, []object.Value{right}, node, ctx)
		if err != nil {
			return false, err
		}
		return object.Truthy(result), nil
	}
	return builtinEqual(left, right), nil
}

func builtinEqual(left, right object.Value) bool {
	if left.Kind() == right.Kind() {
		switch l := left.(type) {
		case *object.Null:
			return true
		case *object.Boolean:
			return l.Value == right.(*object.Boolean).Value
		case *object.Numeric:
			return l.Value == right.(*object.Numeric).Value
		case *object.String:
			return l.Value == right.(*object.String).Value
		default:
			return left == right
		}
	}

	// Null/Boolean asymmetry (spec.md §4.3, §8): b == null is b.value;
	// null == b is the negation, ¬b.value.
	if lb, ok := left.(*object.Boolean); ok {
		if _, ok := right.(*object.Null); ok {
			return lb.Value
		}
	}
	if _, ok := left.(*object.Null); ok {
		if rb, ok := right.(*object.Boolean); ok {
			return !rb.Value
		}
	}

	// Boolean == non-Boolean (either side, Null already handled above):
	// coerce the non-Boolean operand to truthiness and compare (spec.md
	// §4.3).
	if lb, ok := left.(*object.Boolean); ok {
		return lb.Value == object.Truthy(right)
	}
	if rb, ok := right.(*object.Boolean); ok {
		return object.Truthy(left) == rb.Value
	}

	return false
}

func builtinComparison(op string, left, right object.Value, ctx *trace.Context, node ast.Node) (object.Value, error) {
	if ln, ok := left.(*object.Numeric); ok {
		if rn, ok := right.(*object.Numeric); ok {
			return object.NewBoolean(numericCompare(op, ln.Value, rn.Value)), nil
		}
	}
	if ls, ok := left.(*object.String); ok {
		if rs, ok := right.(*object.String); ok {
			return object.NewBoolean(stringCompare(op, ls.Value, rs.Value)), nil
		}
	}
	return nil, trace.NewError(trace.NotImplemented, ctx, node, "%s is not defined between %s and %s", op, left.Kind(), right.Kind())
}

func numericCompare(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	case ">=":
		return l >= r
	default:
		return false
	}
}

// stringCompare orders strings by length, not lexicographically (spec.md
// §4.3: "String vs String: <,>,<=,>= compare string lengths").
func stringCompare(op string, l, r string) bool {
	return numericCompare(op, float64(len(l)), float64(len(r)))
}
