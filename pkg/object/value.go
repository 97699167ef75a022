package object

import (
	"fmt"
	"strconv"
	"strings"

	"charly/pkg/ast"
)

// Value is the tagged variant every runtime datum implements (spec.md
// §3.1). Every variant carries a non-nil attached data Scope holding its
// dynamically-added members.
type Value interface {
	Kind() Kind
	Data() *Scope
	Inspect() string
}

// Null carries no value. Every Null compares equal to every other Null, but
// each NewNull call allocates a distinct instance with its own data scope.
type Null struct{ data *Scope }

func NewNull() *Null                { return &Null{data: NewScope(nil)} }
func (n *Null) Kind() Kind           { return KindNull }
func (n *Null) Data() *Scope         { return n.data }
func (n *Null) Inspect() string      { return "null" }

// Boolean wraps a bool.
type Boolean struct {
	Value bool
	data  *Scope
}

func NewBoolean(v bool) *Boolean { return &Boolean{Value: v, data: NewScope(nil)} }
func (b *Boolean) Kind() Kind    { return KindBoolean }
func (b *Boolean) Data() *Scope  { return b.data }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// Numeric wraps an IEEE-754 double; NaN is representable (spec.md §3.1).
type Numeric struct {
	Value float64
	data  *Scope
}

func NewNumeric(v float64) *Numeric { return &Numeric{Value: v, data: NewScope(nil)} }
func (n *Numeric) Kind() Kind       { return KindNumeric }
func (n *Numeric) Data() *Scope     { return n.data }
func (n *Numeric) Inspect() string  { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// String wraps a UTF-8 string.
type String struct {
	Value string
	data  *Scope
}

func NewString(v string) *String { return &String{Value: v, data: NewScope(nil)} }
func (s *String) Kind() Kind      { return KindString }
func (s *String) Data() *Scope    { return s.data }
func (s *String) Inspect() string { return s.Value }

// Array is an ordered, mutable sequence of Values.
type Array struct {
	Elements []Value
	data     *Scope
}

func NewArray(elements []Value) *Array { return &Array{Elements: elements, data: NewScope(nil)} }
func (a *Array) Kind() Kind            { return KindArray }
func (a *Array) Data() *Scope          { return a.data }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Function is a closure: declared parameter identifiers, body block, and
// the scope it was defined in (shared, not copied — spec.md §3.1).
type Function struct {
	Name       *string
	Parameters []*ast.Identifier
	Body       *ast.Block
	Captured   *Scope
	data       *Scope
}

func NewFunction(name *string, params []*ast.Identifier, body *ast.Block, captured *Scope) *Function {
	return &Function{Name: name, Parameters: params, Body: body, Captured: captured, data: NewScope(nil)}
}

func (f *Function) Kind() Kind   { return KindFunction }
func (f *Function) Data() *Scope { return f.data }
func (f *Function) Inspect() string {
	if f.Name != nil {
		return "function " + *f.Name
	}
	return "function"
}

// Class is a user class descriptor: name, declared property names, declared
// (unevaluated) methods, ordered parent classes, and the scope it was
// declared in (spec.md §3.1, §4.4).
type Class struct {
	Name       string
	Properties []string
	Methods    []*ast.FunctionLiteral
	Parents    []*Class
	Captured   *Scope
	data       *Scope
}

// NewClass attaches a fresh scope, child of captured, as the class's data
// scope (spec.md §4.4).
func NewClass(name string, properties []string, methods []*ast.FunctionLiteral, parents []*Class, captured *Scope) *Class {
	return &Class{
		Name:       name,
		Properties: properties,
		Methods:    methods,
		Parents:    parents,
		Captured:   captured,
		data:       NewScope(captured),
	}
}

func (c *Class) Kind() Kind      { return KindClass }
func (c *Class) Data() *Scope    { return c.data }
func (c *Class) Inspect() string { return "class " + c.Name }

// PrimitiveClass maps one built-in Kind to a dispatch table of methods kept
// in its data scope (spec.md §3.1, §4.5).
type PrimitiveClass struct {
	Name     string
	Captured *Scope
	data     *Scope
}

func NewPrimitiveClass(name string, captured *Scope) *PrimitiveClass {
	return &PrimitiveClass{Name: name, Captured: captured, data: NewScope(nil)}
}

func (p *PrimitiveClass) Kind() Kind      { return KindPrimitiveClass }
func (p *PrimitiveClass) Data() *Scope    { return p.data }
func (p *PrimitiveClass) Inspect() string { return "primitiveclass " + p.Name }

// Object is an instance of a user Class; its data scope holds its members
// and has the class's captured scope as parent (spec.md §4.4).
type Object struct {
	Class *Class
	data  *Scope
}

func NewObject(class *Class) *Object {
	return &Object{Class: class, data: NewScope(class.Captured)}
}

func (o *Object) Kind() Kind   { return KindObject }
func (o *Object) Data() *Scope { return o.data }
func (o *Object) Inspect() string {
	return fmt.Sprintf("%s instance", o.Class.Name)
}

// NativeFunction wraps a Go closure so it can be installed into a scope and
// invoked through the ordinary call protocol (SPEC_FULL.md §3): the one
// extension point the evaluator's call dispatch grows beyond spec.md's
// Function/Class/PrimitiveClass cases.
type NativeFunction struct {
	Name string
	Fn   func(self Value, args []Value) (Value, error)
	data *Scope
}

// NewNativeFunction wraps fn for installation into a scope. self is the
// MemberExpression base the function was called through, or nil when
// called bare (SPEC_FULL.md §3) — e.g. an Array method's receiver.
func NewNativeFunction(name string, fn func(self Value, args []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn, data: NewScope(nil)}
}

func (n *NativeFunction) Kind() Kind      { return KindNativeFunction }
func (n *NativeFunction) Data() *Scope    { return n.data }
func (n *NativeFunction) Inspect() string { return "native function " + n.Name }

// Truthy implements spec.md §3: false for Null and Boolean(false), true for
// every other value (the GLOSSARY's "Truthiness").
func Truthy(v Value) bool {
	switch val := v.(type) {
	case *Null:
		return false
	case *Boolean:
		return val.Value
	default:
		return true
	}
}
