package evaluator

import (
	"charly/pkg/ast"
	"charly/pkg/object"
	"charly/pkg/trace"
)

// methodEntry pairs a declared method with the scope its Function value
// should close over: for a user class, that's the owning class's own
// captured scope (spec.md §4.4); for a primitive class, the scope the
// primitiveclass literal was evaluated in.
type methodEntry struct {
	Name     string
	Literal  *ast.FunctionLiteral
	Captured *object.Scope
}

// classBody walks a class/primitiveclass body, splitting it into property
// declarations and named-function methods. Anything else is
// IllegalClassBody (spec.md §4.4, §4.5).
func classBody(body *ast.Block, captured *object.Scope, ctx *trace.Context) ([]string, []methodEntry, error) {
	var properties []string
	var methods []methodEntry
	for _, stmt := range body.Statements {
		switch s := stmt.(type) {
		case *ast.PropertyDeclaration:
			properties = append(properties, s.Name)
		case *ast.ExpressionStatement:
			lit, ok := s.Expression.(*ast.FunctionLiteral)
			if !ok || lit.Name == nil {
				return nil, nil, trace.NewError(trace.IllegalClassBody, ctx, stmt, "only property declarations and named functions are allowed here")
			}
			methods = append(methods, methodEntry{Name: *lit.Name, Literal: lit, Captured: captured})
		default:
			return nil, nil, trace.NewError(trace.IllegalClassBody, ctx, stmt, "only property declarations and named functions are allowed here")
		}
	}
	return properties, methods, nil
}

// flattenProperties walks class.Parents depth-first in declaration order,
// then appends class's own properties (spec.md §4.4).
func flattenProperties(class *object.Class) []string {
	var out []string
	for _, parent := range class.Parents {
		out = append(out, flattenProperties(parent)...)
	}
	out = append(out, class.Properties...)
	return out
}

// flattenMethods performs the same depth-first-then-self traversal as
// flattenProperties, pairing each method with its owning class's captured
// scope (spec.md §4.4).
func flattenMethods(class *object.Class) []methodEntry {
	var out []methodEntry
	for _, parent := range class.Parents {
		out = append(out, flattenMethods(parent)...)
	}
	for _, lit := range class.Methods {
		out = append(out, methodEntry{Name: *lit.Name, Literal: lit, Captured: class.Captured})
	}
	return out
}

func reverseMethods(entries []methodEntry) []methodEntry {
	out := make([]methodEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// evalClassLiteral resolves parents, captures the class's own property and
// method declarations, and binds the resulting Class in scope (spec.md
// §4.4).
func (ev *Evaluator) evalClassLiteral(n *ast.ClassLiteral, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	parents := make([]*object.Class, len(n.Parents))
	for i, id := range n.Parents {
		value, err := scope.Get(id.Name, 0)
		if err != nil {
			return nil, wrapScopeError(err, ctx, id)
		}
		parent, ok := value.(*object.Class)
		if !ok {
			return nil, trace.NewError(trace.NotAClass, ctx, id, "%q is not a class", id.Name)
		}
		parents[i] = parent
	}

	properties, methodEntries, err := classBody(n.Body, nil, ctx)
	if err != nil {
		return nil, err
	}
	methods := make([]*ast.FunctionLiteral, len(methodEntries))
	for i, m := range methodEntries {
		methods[i] = m.Literal
	}

	class := object.NewClass(n.Name, properties, methods, parents, scope)
	if err := scope.Write(n.Name, class, object.Init); err != nil {
		return nil, wrapScopeError(err, ctx, n)
	}
	return class, nil
}

// constructObject implements object construction (spec.md §4.4): flatten
// properties (parents-first, self last) and install as Null slots, flatten
// methods and install self-first (the reversed traversal), extract and
// invoke a constructor if one was installed.
func (ev *Evaluator) constructObject(class *object.Class, args []object.Value, node ast.Node, ctx *trace.Context) (object.Value, error) {
	obj := object.NewObject(class)

	for _, name := range flattenProperties(class) {
		// First-wins: an already-installed property (diamond inheritance)
		// keeps its slot.
		_ = obj.Data().Write(name, object.NewNull(), object.Init|object.IgnoreParent)
	}

	reversed := reverseMethods(flattenMethods(class))
	var constructor *object.Function
	for _, entry := range reversed {
		fn := object.NewFunction(&entry.Name, entry.Literal.Parameters, entry.Literal.Body, entry.Captured)
		if err := obj.Data().Write(entry.Name, fn, object.Init|object.Constant|object.IgnoreParent); err != nil {
			continue // first-wins: already installed by a more-derived class
		}
		if entry.Name == "constructor" && constructor == nil {
			constructor = fn
		}
	}

	if constructor != nil {
		_ = obj.Data().Delete("constructor", object.IgnoreParent)
		if _, err := ev.callFunction(constructor, obj, args, node, ctx); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

// evalPrimitiveClassLiteral implements primitive class construction
// (spec.md §4.5): an Object class's flattened methods (if one is defined)
// are prepended to the literal's own methods, the combined list reversed
// and installed first-wins, so the literal's own methods win over Object's.
func (ev *Evaluator) evalPrimitiveClassLiteral(n *ast.PrimitiveClassLiteral, scope *object.Scope, ctx *trace.Context) (object.Value, error) {
	_, ownMethods, err := classBody(n.Body, scope, ctx)
	if err != nil {
		return nil, err
	}

	combined := ownMethods
	if objClassVal, err := scope.Get("Object", 0); err == nil {
		if objClass, ok := objClassVal.(*object.Class); ok {
			combined = append(flattenMethods(objClass), ownMethods...)
		}
	}
	reversed := reverseMethods(combined)

	primitive := object.NewPrimitiveClass(n.Name, scope)
	for _, entry := range reversed {
		fn := object.NewFunction(&entry.Name, entry.Literal.Parameters, entry.Literal.Body, entry.Captured)
		_ = primitive.Data().Write(entry.Name, fn, object.Init|object.IgnoreParent)
	}

	if err := scope.Write(n.Name, primitive, object.Init); err != nil {
		if _, ok := err.(*object.AlreadyDefinedError); !ok {
			return nil, wrapScopeError(err, ctx, n)
		}
		// Redeclaring a primitive class augments the existing one instead
		// of erroring, so a later primitiveclass block (e.g. from an
		// external prelude) can add methods without colliding with the
		// natively-installed one (SPEC_FULL.md §4 supplemented features).
		existing, _ := scope.Get(n.Name, 0)
		if existingPrimitive, ok := existing.(*object.PrimitiveClass); ok {
			for _, entry := range reversed {
				fn := object.NewFunction(&entry.Name, entry.Literal.Parameters, entry.Literal.Body, entry.Captured)
				_ = existingPrimitive.Data().Write(entry.Name, fn, object.Init|object.IgnoreParent)
			}
			return existingPrimitive, nil
		}
		return nil, wrapScopeError(err, ctx, n)
	}
	return primitive, nil
}
