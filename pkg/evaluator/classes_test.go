package evaluator

import "testing"

func TestObjectConstructorRuns(t *testing.T) {
	value, err := run(t, `
class Point {
	property x
	property y
	func constructor(x, y) {
		self.x = x
		self.y = y
	}
	func sum() {
		return self.x + self.y
	}
}
let p = Point(3, 4)
p.sum()
`)
	requireNoError(t, err)
	if value.Inspect() != "7" {
		t.Errorf("got %q, want 7", value.Inspect())
	}
}

func TestConstructorIsRemovedAfterConstruction(t *testing.T) {
	value, err := run(t, `
class Point {
	func constructor() {}
}
let p = Point()
p.constructor
`)
	requireNoError(t, err)
	if value.Inspect() != "null" {
		t.Errorf("got %q, want null (constructor should be deleted post-construction)", value.Inspect())
	}
}

func TestMultiParentMethodPrecedenceIsSelfFirst(t *testing.T) {
	value, err := run(t, `
class A {
	func label() { return "A" }
}
class B {
	func label() { return "B" }
}
class C extends A, B {
	func label() { return "C" }
}
let c = C()
c.label()
`)
	requireNoError(t, err)
	if value.Inspect() != "C" {
		t.Errorf("got %q, want C (own method wins over parents)", value.Inspect())
	}
}

func TestMultiParentMethodPrecedenceLastParentWins(t *testing.T) {
	value, err := run(t, `
class A {
	func label() { return "A" }
}
class B {
	func label() { return "B" }
}
class C extends A, B {}
let c = C()
c.label()
`)
	requireNoError(t, err)
	if value.Inspect() != "B" {
		t.Errorf("got %q, want B (later parent wins when neither overrides)", value.Inspect())
	}
}

func TestPropertyDefaultsToNull(t *testing.T) {
	value, err := run(t, `
class Empty {
	property name
}
let e = Empty()
e.name
`)
	requireNoError(t, err)
	if value.Inspect() != "null" {
		t.Errorf("got %q, want null", value.Inspect())
	}
}

func TestUnknownMemberIsNullNotError(t *testing.T) {
	value, err := run(t, `
class Empty {}
let e = Empty()
e.missing
`)
	requireNoError(t, err)
	if value.Inspect() != "null" {
		t.Errorf("got %q, want null", value.Inspect())
	}
}

func TestIllegalClassBodyStatementErrors(t *testing.T) {
	_, err := run(t, `
class Bad {
	let x = 1
}
`)
	if err == nil {
		t.Fatal("expected an IllegalClassBody error")
	}
}

func TestPrimitiveClassOperatorOverride(t *testing.T) {
	value, err := run(t, `
primitiveclass Numeric {
	func __plus(other) {
		return 99
	}
}
1 + 2
`)
	requireNoError(t, err)
	if value.Inspect() != "99" {
		t.Errorf("got %q, want 99 (override should win over built-in +)", value.Inspect())
	}
}

func TestPrimitiveClassNotInstantiable(t *testing.T) {
	_, err := run(t, `
primitiveclass Numeric {}
Numeric()
`)
	if err == nil {
		t.Fatal("expected a NotInstantiable error")
	}
}
