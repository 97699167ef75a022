package evaluator

import "testing"

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2", "3"},
		{"5 - 2", "3"},
		{"3 * 4", "12"},
		{"10 / 4", "2.5"},
		{"7 % 3", "1"},
		{"2 ** 10", "1024"},
		{`"a" + "b"`, "ab"},
		{`"ab" * 3`, "ababab"},
		{`"x" + 1`, "x1"},
		{`1 + "x"`, "1x"},
		{`3 * "ab"`, "ababab"},
		{"[1] + [2]", "[1, 2]"},
	}
	for _, tt := range tests {
		value, err := run(t, tt.input)
		requireNoError(t, err)
		if value.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.input, value.Inspect(), tt.want)
		}
	}
}

func TestDivisionByZeroIsNull(t *testing.T) {
	for _, input := range []string{"1 / 0", "0 / 1"} {
		value, err := run(t, input)
		requireNoError(t, err)
		if value.Inspect() != "null" {
			t.Errorf("%s: got %q, want null", input, value.Inspect())
		}
	}
}

func TestModuloByZeroIsNull(t *testing.T) {
	value, err := run(t, "1 % 0")
	requireNoError(t, err)
	if value.Inspect() != "null" {
		t.Errorf("got %q, want null", value.Inspect())
	}
}

func TestMultiplicationShortCircuitsToZero(t *testing.T) {
	value, err := run(t, `0 * "unrelated"`)
	requireNoError(t, err)
	if value.Inspect() != "0" {
		t.Errorf("got %q, want 0", value.Inspect())
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 < 2", "true"},
		{"2 < 1", "false"},
		{"2 <= 2", "true"},
		{`"a" < "b"`, "false"},
		{`"a" < "bb"`, "true"},
		{"1 == 1", "true"},
		{"1 == 1.0", "true"},
		{"1 != 2", "true"},
		{"null == null", "true"},
		{"null == 1", "false"},
		{"1 == null", "false"},
		{"true == true", "true"},
		{"true == 1", "true"},
		{"1 == true", "true"},
		{"false == 0", "false"},
		{"true == null", "true"},
		{"null == true", "false"},
		{"false == null", "false"},
		{"null == false", "true"},
	}
	for _, tt := range tests {
		value, err := run(t, tt.input)
		requireNoError(t, err)
		if value.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.input, value.Inspect(), tt.want)
		}
	}
}

func TestUnaryOperators(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-5", "-5"},
		{"!true", "false"},
		{"!false", "true"},
		{"!null", "true"},
		{"!0", "false"},
	}
	for _, tt := range tests {
		value, err := run(t, tt.input)
		requireNoError(t, err)
		if value.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.input, value.Inspect(), tt.want)
		}
	}
}
