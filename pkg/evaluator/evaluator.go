// Package evaluator implements the tree-walking evaluator core: recursive
// expression dispatch, the call/return/break control-flow discipline, and
// the prelude-loading lifecycle (spec.md §2 item 4, §4.2).
package evaluator

import (
	"math"

	"charly/pkg/ast"
	"charly/pkg/object"
	"charly/pkg/token"
	"charly/pkg/trace"
)

// Evaluator owns the top scope, the shared call stack, and loads the
// prelude at construction time (spec.md §5 "Prelude lifecycle").
type Evaluator struct {
	Global *object.Scope
	Stack  *trace.CallStack
}

// Options configures construction. LoadPrelude mirrors spec.md §9's design
// note that the prelude loader is a separate step tests can skip.
type Options struct {
	LoadPrelude bool
	CharlyDir   string // overrides $CHARLYDIR when non-empty
}

// New constructs an Evaluator: installs the native modules (SPEC_FULL.md
// §3), then loads the prelude unless disabled. Prelude parse/run errors
// abort construction (spec.md §5).
func New(opts Options) (*Evaluator, error) {
	ev := &Evaluator{
		Global: object.NewScope(nil),
		Stack:  trace.NewCallStack(),
	}
	installNatives(ev.Global)

	if opts.LoadPrelude {
		if err := loadPrelude(ev, opts.CharlyDir); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// ExecProgram runs program.Tree in scope and returns its final value — the
// result of the last top-level statement, Null for an empty program
// (spec.md §4.2 Block semantics, applied at the top level).
func (ev *Evaluator) ExecProgram(program *ast.Program, scope *object.Scope) (object.Value, error) {
	ctx := trace.NewContext(program.Path, ev.Stack)
	return ev.evalBlock(program.Tree, scope, ctx)
}

// controlFlow marks the two non-error non-local exits (spec.md §5): they
// propagate through eval like an error but are not runtime errors. Callers
// that only know how to render RuntimeError must type-assert before
// treating a returned error as one.
type controlFlow interface {
	error
	isControlFlow()
}

type returnSignal struct{ Value object.Value }

func (r *returnSignal) Error() string  { return "return" }
func (r *returnSignal) isControlFlow() {}

type breakSignal struct{}

func (b *breakSignal) Error() string  { return "break" }
func (b *breakSignal) isControlFlow() {}

// eval is the single recursive dispatch over AST node variants (spec.md
// §4.2).
func (ev *Evaluator) eval(node ast.Node, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	switch n := node.(type) {
	case *ast.Block:
		return ev.evalBlock(n, scope, ctx)
	case *ast.ExpressionStatement:
		return ev.eval(n.Expression, scope, ctx)

	case *ast.VariableInitialisation:
		return ev.evalInitialisation(n.Name, n.Value, scope, ctx, false)
	case *ast.ConstantInitialisation:
		return ev.evalInitialisation(n.Name, n.Value, scope, ctx, true)
	case *ast.VariableAssignment:
		return ev.evalAssignment(n, scope, ctx)

	case *ast.Identifier:
		return ev.evalIdentifier(n, scope, ctx)

	case *ast.NumericLiteral:
		return object.NewNumeric(n.Value), nil
	case *ast.StringLiteral:
		return object.NewString(n.Value), nil
	case *ast.BooleanLiteral:
		return object.NewBoolean(n.Value), nil
	case *ast.NullLiteral:
		return object.NewNull(), nil
	case *ast.NANLiteral:
		return object.NewNumeric(math.NaN()), nil
	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(n, scope, ctx)

	case *ast.FunctionLiteral:
		fn := object.NewFunction(n.Name, n.Parameters, n.Body, scope)
		if n.Name != nil {
			if err := scope.Write(*n.Name, fn, object.Init); err != nil {
				return nil, wrapScopeError(err, ctx, n)
			}
		}
		return fn, nil

	case *ast.ClassLiteral:
		return ev.evalClassLiteral(n, scope, ctx)
	case *ast.PrimitiveClassLiteral:
		return ev.evalPrimitiveClassLiteral(n, scope, ctx)

	case *ast.CallExpression:
		return ev.evalCallExpression(n, scope, ctx)

	case *ast.MemberExpression:
		_, value, err := ev.evalMemberPair(n, scope, ctx)
		return value, err

	case *ast.IndexExpression:
		return ev.evalIndexExpression(n, scope, ctx)

	case *ast.UnaryExpression:
		return ev.evalUnary(n, scope, ctx)
	case *ast.BinaryExpression:
		return ev.evalBinary(n, scope, ctx)
	case *ast.ComparisonExpression:
		return ev.evalComparison(n, scope, ctx)
	case *ast.And:
		return ev.evalAnd(n, scope, ctx)
	case *ast.Or:
		return ev.evalOr(n, scope, ctx)

	case *ast.ReturnStatement:
		return ev.evalReturn(n, scope, ctx)
	case *ast.BreakStatement:
		return nil, &breakSignal{}

	case *ast.IfStatement:
		return ev.evalIf(n, scope, ctx)
	case *ast.WhileStatement:
		return ev.evalWhile(n, scope, ctx)

	default:
		return nil, trace.NewError(trace.UnexpectedNode, ctx, node, "unexpected AST node %T", node)
	}
}

func (ev *Evaluator) evalBlock(block *ast.Block, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	var result object.Value = object.NewNull()
	for _, stmt := range block.Statements {
		value, err := ev.eval(stmt, scope, ctx)
		if err != nil {
			return nil, err
		}
		result = value
	}
	return result, nil
}

func (ev *Evaluator) evalInitialisation(name *ast.Identifier, valueExpr ast.Expression, scope *object.Scope, ctx *trace.Context, constant bool) (object.Value, error) {
	if token.Reserved(name.Name) {
		return nil, trace.NewError(trace.ReservedName, ctx, name, "%q is reserved and cannot be bound", name.Name)
	}
	value, err := ev.eval(valueExpr, scope, ctx)
	if err != nil {
		return nil, err
	}
	flags := object.Init
	if constant {
		flags |= object.Constant
	}
	if err := scope.Write(name.Name, value, flags); err != nil {
		return nil, wrapScopeError(err, ctx, name)
	}
	return value, nil
}

func (ev *Evaluator) evalAssignment(n *ast.VariableAssignment, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	value, err := ev.eval(n.Value, scope, ctx)
	if err != nil {
		return nil, err
	}

	switch target := n.Target.(type) {
	case *ast.Identifier:
		if token.Reserved(target.Name) {
			return nil, trace.NewError(trace.ReservedName, ctx, target, "%q is reserved and cannot be assigned", target.Name)
		}
		if err := scope.Write(target.Name, value, 0); err != nil {
			return nil, wrapScopeError(err, ctx, target)
		}
		return value, nil

	case *ast.MemberExpression:
		base, err := ev.eval(target.Object, scope, ctx)
		if err != nil {
			return nil, err
		}
		if err := base.Data().Write(target.Property.Name, value, object.Init|object.IgnoreParent); err != nil {
			// Already present: overwrite in place rather than re-Init, since
			// member slots are freely reassignable (spec.md §4.7).
			if _, ok := err.(*object.AlreadyDefinedError); ok {
				if werr := base.Data().Write(target.Property.Name, value, object.IgnoreParent); werr != nil {
					return nil, wrapScopeError(werr, ctx, target)
				}
				return value, nil
			}
			return nil, wrapScopeError(err, ctx, target)
		}
		return value, nil

	case *ast.IndexExpression:
		return nil, trace.NewError(trace.NotImplemented, ctx, target, "assignment through an index expression is not supported")

	default:
		return nil, trace.NewError(trace.NotAnIdentifier, ctx, n.Target, "invalid assignment target")
	}
}

func (ev *Evaluator) evalIdentifier(n *ast.Identifier, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	value, err := scope.Get(n.Name, 0)
	if err != nil {
		return nil, wrapScopeError(err, ctx, n)
	}
	return value, nil
}

func (ev *Evaluator) evalArrayLiteral(n *ast.ArrayLiteral, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	elements := make([]object.Value, len(n.Elements))
	for i, elExpr := range n.Elements {
		v, err := ev.eval(elExpr, scope, ctx)
		if err != nil {
			return nil, err
		}
		elements[i] = v
	}
	return object.NewArray(elements), nil
}

func (ev *Evaluator) evalIndexExpression(n *ast.IndexExpression, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	base, err := ev.eval(n.Object, scope, ctx)
	if err != nil {
		return nil, err
	}
	arr, ok := base.(*object.Array)
	if !ok {
		return nil, trace.NewError(trace.NotImplemented, ctx, n, "index access is only supported on Array, got %s", base.Kind())
	}
	idxVal, err := ev.eval(n.Index, scope, ctx)
	if err != nil {
		return nil, err
	}
	idxNum, ok := idxVal.(*object.Numeric)
	if !ok {
		return nil, trace.NewError(trace.NotImplemented, ctx, n, "array index must be Numeric, got %s", idxVal.Kind())
	}
	i := int(idxNum.Value)
	if i < 0 || i >= len(arr.Elements) {
		return object.NewNull(), nil
	}
	return arr.Elements[i], nil
}

func (ev *Evaluator) evalReturn(n *ast.ReturnStatement, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	if n.Expression == nil {
		return nil, &returnSignal{Value: object.NewNull()}
	}
	value, err := ev.eval(n.Expression, scope, ctx)
	if err != nil {
		return nil, err
	}
	return nil, &returnSignal{Value: value}
}

func (ev *Evaluator) evalIf(n *ast.IfStatement, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	test, err := ev.eval(n.Test, scope, ctx)
	if err != nil {
		return nil, err
	}
	if object.Truthy(test) {
		return ev.evalBlock(n.Consequent, object.NewScope(scope), ctx)
	}
	switch alt := n.Alternate.(type) {
	case nil:
		return object.NewNull(), nil
	case *ast.IfStatement:
		return ev.evalIf(alt, scope, ctx)
	case *ast.Block:
		return ev.evalBlock(alt, object.NewScope(scope), ctx)
	default:
		return nil, trace.NewError(trace.UnexpectedNode, ctx, n, "unexpected if-alternate node %T", alt)
	}
}

// evalWhile creates a single child scope shared across every iteration of
// the loop body (spec.md §4.2), not a fresh one per iteration.
func (ev *Evaluator) evalWhile(n *ast.WhileStatement, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	loopScope := object.NewScope(scope)
	var result object.Value = object.NewNull()
	for {
		test, err := ev.eval(n.Test, loopScope, ctx)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(test) {
			return result, nil
		}
		value, err := ev.evalBlock(n.Consequent, loopScope, ctx)
		if err != nil {
			if _, ok := err.(*breakSignal); ok {
				return result, nil
			}
			return nil, err
		}
		result = value
	}
}

func (ev *Evaluator) evalAnd(n *ast.And, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	left, err := ev.eval(n.Left, scope, ctx)
	if err != nil {
		return nil, err
	}
	if !object.Truthy(left) {
		return left, nil
	}
	return ev.eval(n.Right, scope, ctx)
}

func (ev *Evaluator) evalOr(n *ast.Or, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	left, err := ev.eval(n.Left, scope, ctx)
	if err != nil {
		return nil, err
	}
	if object.Truthy(left) {
		return left, nil
	}
	return ev.eval(n.Right, scope, ctx)
}

// wrapScopeError lifts a pkg/object scope error into a trace.RuntimeError
// carrying the offending node's location (spec.md §7).
func wrapScopeError(err error, ctx *trace.Context, node ast.Node) error {
	switch e := err.(type) {
	case *object.NotDefinedError:
		return trace.NewError(trace.NotDefined, ctx, node, "%s", e.Error())
	case *object.ConstantAssignmentError:
		return trace.NewError(trace.ConstantAssignment, ctx, node, "%s", e.Error())
	case *object.AlreadyDefinedError:
		return trace.NewError(trace.AlreadyDefined, ctx, node, "%s", e.Error())
	default:
		return trace.NewError(trace.NotDefined, ctx, node, "%s", err.Error())
	}
}
