package evaluator

import (
	"testing"

	"charly/pkg/lexer"
	"charly/pkg/object"
	"charly/pkg/parser"
)

// run parses and evaluates input against a fresh, prelude-free Evaluator —
// spec.md §9's design note that tests should be able to skip prelude
// loading entirely.
func run(t *testing.T, input string) (object.Value, error) {
	t.Helper()
	ev, err := New(Options{LoadPrelude: false})
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	program, errs := parser.ParseProgram("<test>", lexer.New(input))
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return ev.ExecProgram(program, object.NewScope(ev.Global))
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1"},
		{"1.5", "1.5"},
		{`"hi"`, "hi"},
		{"true", "true"},
		{"false", "false"},
		{"null", "null"},
		{"[1, 2, 3]", "[1, 2, 3]"},
	}
	for _, tt := range tests {
		value, err := run(t, tt.input)
		requireNoError(t, err)
		if value.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.input, value.Inspect(), tt.want)
		}
	}
}

func TestVariableInitialisationAndAssignment(t *testing.T) {
	value, err := run(t, "let x = 1\nx = 2\nx")
	requireNoError(t, err)
	if value.Inspect() != "2" {
		t.Errorf("got %q, want 2", value.Inspect())
	}
}

func TestConstantReassignmentErrors(t *testing.T) {
	_, err := run(t, "const x = 1\nx = 2")
	if err == nil {
		t.Fatal("expected a ConstantAssignment error")
	}
}

func TestAlreadyDefinedErrorsOnReinit(t *testing.T) {
	_, err := run(t, "let x = 1\nlet x = 2")
	if err == nil {
		t.Fatal("expected an AlreadyDefined error")
	}
}

func TestNotDefinedIdentifier(t *testing.T) {
	_, err := run(t, "y")
	if err == nil {
		t.Fatal("expected a NotDefined error")
	}
}

func TestReservedSelfCannotBeBound(t *testing.T) {
	_, err := run(t, "let self = 1")
	if err == nil {
		t.Fatal("expected a ReservedName error")
	}
}

func TestIfElse(t *testing.T) {
	value, err := run(t, "if (false) { 1 } else { 2 }")
	requireNoError(t, err)
	if value.Inspect() != "2" {
		t.Errorf("got %q, want 2", value.Inspect())
	}
}

func TestWhileAccumulates(t *testing.T) {
	value, err := run(t, "let i = 0\nlet sum = 0\nwhile (i < 5) { sum = sum + i\ni = i + 1 }\nsum")
	requireNoError(t, err)
	if value.Inspect() != "10" {
		t.Errorf("got %q, want 10", value.Inspect())
	}
}

func TestBreakStopsLoop(t *testing.T) {
	value, err := run(t, "let i = 0\nwhile (true) { i = i + 1\nif (i == 3) { break } }\ni")
	requireNoError(t, err)
	if value.Inspect() != "3" {
		t.Errorf("got %q, want 3", value.Inspect())
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	value, err := run(t, "func add(a, b) { return a + b }\nadd(2, 3)")
	requireNoError(t, err)
	if value.Inspect() != "5" {
		t.Errorf("got %q, want 5", value.Inspect())
	}
}

func TestFunctionArityErrorOnTooFewArgs(t *testing.T) {
	_, err := run(t, "func add(a, b) { return a + b }\nadd(2)")
	if err == nil {
		t.Fatal("expected an ArityMismatch error")
	}
}

func TestExtraArgumentsAreDiscarded(t *testing.T) {
	value, err := run(t, "func add(a, b) { return a + b }\nadd(2, 3, 4, 5)")
	requireNoError(t, err)
	if value.Inspect() != "5" {
		t.Errorf("got %q, want 5", value.Inspect())
	}
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	value, err := run(t, `
let make = func(base) {
	return func(n) { return base + n }
}
let addTen = make(10)
addTen(5)
`)
	requireNoError(t, err)
	if value.Inspect() != "15" {
		t.Errorf("got %q, want 15", value.Inspect())
	}
}

func TestAndOrShortCircuit(t *testing.T) {
	value, err := run(t, "false && (1/0)")
	requireNoError(t, err)
	if value.Inspect() != "false" {
		t.Errorf("got %q, want false", value.Inspect())
	}

	value, err = run(t, "true || (1/0)")
	requireNoError(t, err)
	if value.Inspect() != "true" {
		t.Errorf("got %q, want true", value.Inspect())
	}
}

func TestArrayIndexOutOfBoundsIsNull(t *testing.T) {
	value, err := run(t, "let a = [1, 2, 3]\na[10]")
	requireNoError(t, err)
	if value.Inspect() != "null" {
		t.Errorf("got %q, want null", value.Inspect())
	}
}

func TestMemberAccessWithoutPreludeIsNull(t *testing.T) {
	// length isn't among the native-installed Array methods, matching
	// spec.md's scenario that a prelude alone would supply it.
	value, err := run(t, "let a = [1, 2, 3]\na.length")
	requireNoError(t, err)
	if value.Inspect() != "null" {
		t.Errorf("got %q, want null", value.Inspect())
	}
}
