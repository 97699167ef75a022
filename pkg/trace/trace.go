// Package trace carries the evaluator's per-program Context, its call-stack
// for diagnostics, and the RuntimeError type errors unwind as (spec.md §3.3,
// §7).
package trace

import (
	"fmt"
	"strings"

	"charly/pkg/ast"
	"charly/pkg/object"
)

// Entry is one call-stack frame: the call-site name, the calling AST node,
// the scope active at the call, and the context it ran in (spec.md §3.3).
type Entry struct {
	Name    string
	Node    ast.Node
	Scope   *object.Scope
	Context *Context
}

// CallStack is the ordered, shared call-stack threaded through a program's
// execution. The evaluator pushes on call-entry and pops on call-exit; a
// runtime-error unwind deliberately skips the pop (spec.md §5, §9 open
// question 2) so a stale trace is available to the error's own Render().
type CallStack struct {
	entries []Entry
}

func NewCallStack() *CallStack { return &CallStack{} }

func (c *CallStack) Push(e Entry) { c.entries = append(c.entries, e) }

func (c *CallStack) Pop() {
	if len(c.entries) > 0 {
		c.entries = c.entries[:len(c.entries)-1]
	}
}

// Entries returns the stack innermost-first (most-recent-first), the order
// a rendered trace reads in (spec.md §7).
func (c *CallStack) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[len(c.entries)-1-i]
	}
	return out
}

func (c *CallStack) Depth() int { return len(c.entries) }

// Context is the per-program execution context threaded through eval calls
// for diagnostics: the source path and a reference to the shared call stack
// (spec.md §2 item 3).
type Context struct {
	Path  string
	Stack *CallStack
}

func NewContext(path string, stack *CallStack) *Context {
	return &Context{Path: path, Stack: stack}
}

// Kind enumerates the runtime error kinds named in spec.md §7.
type Kind string

const (
	NotDefined         Kind = "NotDefined"
	AlreadyDefined     Kind = "AlreadyDefined"
	ReservedName       Kind = "ReservedName"
	ConstantAssignment Kind = "ConstantAssignment"
	NotCallable        Kind = "NotCallable"
	NotInstantiable    Kind = "NotInstantiable"
	ArityMismatch      Kind = "ArityMismatch"
	NotAnIdentifier    Kind = "NotAnIdentifier"
	NotAClass          Kind = "NotAClass"
	IllegalClassBody   Kind = "IllegalClassBody"
	NotImplemented     Kind = "NotImplemented"
	UnexpectedNode     Kind = "UnexpectedNode"
	PreludeMissing     Kind = "PreludeMissing"
)

// RuntimeError is the non-local exit every evaluator error unwinds as
// (spec.md §7): it carries the offending node's source location and the
// active context so a caller can render a call trace.
type RuntimeError struct {
	ErrKind Kind
	Message string
	Node    ast.Node
	Context *Context
}

func NewError(kind Kind, ctx *Context, node ast.Node, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{ErrKind: kind, Message: fmt.Sprintf(format, args...), Node: node, Context: ctx}
}

func (e *RuntimeError) Error() string {
	line, col := 0, 0
	if e.Node != nil {
		line, col = e.Node.Tok().Line, e.Node.Tok().Column
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Context.Path, line, col, e.ErrKind, e.Message)
}

// Render formats a full stack trace, innermost frame first, matching
// spec.md §7 ("the renderer may walk the call-stack entries in reverse").
func (e *RuntimeError) Render() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.Context == nil || e.Context.Stack == nil {
		return b.String()
	}
	for _, entry := range e.Context.Stack.Entries() {
		line, col := 0, 0
		if entry.Node != nil {
			line, col = entry.Node.Tok().Line, entry.Node.Tok().Column
		}
		fmt.Fprintf(&b, "\n  at %s (%s:%d:%d)", entry.Name, entry.Context.Path, line, col)
	}
	return b.String()
}
