package evaluator

import (
	"charly/pkg/ast"
	"charly/pkg/object"
	"charly/pkg/trace"
)

// evalMemberPair implements exec_get_member_expression_pairs (spec.md §4.7):
// evaluate the base, then resolve Property against the base's own data
// scope first, falling back to primitive-method lookup (§4.5) when the base
// is not an Object. An unresolved member is Null, not an error.
func (ev *Evaluator) evalMemberPair(n *ast.MemberExpression, scope *object.Scope, ctx *trace.Context) (object.Value, object.Value, error) {
	base, err := ev.eval(n.Object, scope, ctx)
	if err != nil {
		return nil, nil, err
	}

	if value, err := base.Data().Get(n.Property.Name, object.IgnoreParent); err == nil {
		return base, value, nil
	}

	if _, isObject := base.(*object.Object); !isObject {
		if method, ok := lookupPrimitiveMethod(base.Kind(), n.Property.Name, scope); ok {
			return base, method, nil
		}
	}

	return base, object.NewNull(), nil
}

// lookupPrimitiveMethod resolves name against the PrimitiveClass bound under
// kind's canonical name in scope (spec.md §4.5). Absent either the binding
// or the method, ok is false.
func lookupPrimitiveMethod(kind object.Kind, name string, scope *object.Scope) (object.Value, bool) {
	className, ok := object.PrimitiveClassName(kind)
	if !ok {
		return nil, false
	}
	classVal, err := scope.Get(className, 0)
	if err != nil {
		return nil, false
	}
	primitive, ok := classVal.(*object.PrimitiveClass)
	if !ok {
		return nil, false
	}
	method, err := primitive.Data().Get(name, object.IgnoreParent)
	if err != nil {
		return nil, false
	}
	return method, true
}
