package evaluator

import (
	"charly/pkg/ast"
	"charly/pkg/object"
	"charly/pkg/trace"
)

// evalCallExpression implements the call protocol's dispatch step (spec.md
// §4.6): a MemberExpression callee carries its base through as `self`;
// anything else calls with no base.
func (ev *Evaluator) evalCallExpression(n *ast.CallExpression, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	var base object.Value
	var callee object.Value
	var err error

	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		base, callee, err = ev.evalMemberPair(member, scope, ctx)
	} else {
		callee, err = ev.eval(n.Callee, scope, ctx)
	}
	if err != nil {
		return nil, err
	}

	args := make([]object.Value, len(n.Arguments))
	for i, argExpr := range n.Arguments {
		v, err := ev.eval(argExpr, scope, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return ev.dispatchCall(callee, base, args, n, ctx)
}

func (ev *Evaluator) dispatchCall(callee object.Value, base object.Value, args []object.Value, node ast.Node, ctx *trace.Context) (object.Value, error) {
	switch fn := callee.(type) {
	case *object.Function:
		return ev.callFunction(fn, base, args, node, ctx)
	case *object.Class:
		return ev.constructObject(fn, args, node, ctx)
	case *object.PrimitiveClass:
		return nil, trace.NewError(trace.NotInstantiable, ctx, node, "%s is a primitive class and cannot be instantiated", fn.Name)
	case *object.NativeFunction:
		result, err := fn.Fn(base, args)
		if err != nil {
			if re, ok := err.(*trace.RuntimeError); ok {
				return nil, re
			}
			return nil, trace.NewError(trace.NotImplemented, ctx, node, "%s", err.Error())
		}
		return result, nil
	default:
		return nil, trace.NewError(trace.NotCallable, ctx, node, "%s is not callable", callee.Kind())
	}
}

// callFunction implements the function-call half of spec.md §4.6: arity
// check (fewer than declared is an error, extras discarded), left-to-right
// argument binding by index, optional self binding, then the trace
// push/run/pop discipline. A RuntimeError unwind deliberately skips the pop
// (spec.md §9 open question 2: the stale frame is kept for Render()).
func (ev *Evaluator) callFunction(fn *object.Function, base object.Value, args []object.Value, node ast.Node, ctx *trace.Context) (object.Value, error) {
	if len(args) < len(fn.Parameters) {
		return nil, trace.NewError(trace.ArityMismatch, ctx, node, "expected at least %d argument(s), got %d", len(fn.Parameters), len(args))
	}

	callScope := object.NewScope(fn.Captured)
	for i, param := range fn.Parameters {
		if err := callScope.Write(param.Name, args[i], object.Init); err != nil {
			return nil, wrapScopeError(err, ctx, param)
		}
	}
	if base != nil {
		if err := callScope.Write("self", base, object.Init|object.Constant); err != nil {
			return nil, wrapScopeError(err, ctx, node)
		}
	}

	name := "anonymous"
	if fn.Name != nil {
		name = *fn.Name
	}
	ev.Stack.Push(trace.Entry{Name: name, Node: node, Scope: callScope, Context: ctx})

	value, err := ev.evalBlock(fn.Body, callScope, ctx)
	if err != nil {
		if ret, ok := err.(*returnSignal); ok {
			ev.Stack.Pop()
			return ret.Value, nil
		}
		if _, ok := err.(*trace.RuntimeError); ok {
			return nil, err
		}
		// breakSignal escaping a function body: propagate uncaught, per
		// spec.md §5 (only a WhileStatement catches it).
		ev.Stack.Pop()
		return nil, err
	}

	ev.Stack.Pop()
	return value, nil
}
