package parser

import (
	"testing"

	"charly/pkg/ast"
	"charly/pkg/lexer"
)

func parseOrFail(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, errs := ParseProgram("<test>", lexer.New(input))
	if len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return program
}

func TestVariableInitialisation(t *testing.T) {
	program := parseOrFail(t, `let a = 2 + 3 * 4`)
	if len(program.Tree.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Tree.Statements))
	}
	stmt, ok := program.Tree.Statements[0].(*ast.VariableInitialisation)
	if !ok {
		t.Fatalf("expected *ast.VariableInitialisation, got %T", program.Tree.Statements[0])
	}
	if stmt.Name.Name != "a" {
		t.Errorf("expected name 'a', got %q", stmt.Name.Name)
	}
	bin, ok := stmt.Value.(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected top-level '+' binary expression, got %#v", stmt.Value)
	}
}

func TestClassLiteralWithMultipleInheritance(t *testing.T) {
	program := parseOrFail(t, `
class R extends P, Q {
  property x
  func constructor(v) { self.x = v }
}
`)
	stmt, ok := program.Tree.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Tree.Statements[0])
	}
	class, ok := stmt.Expression.(*ast.ClassLiteral)
	if !ok {
		t.Fatalf("expected *ast.ClassLiteral, got %T", stmt.Expression)
	}
	if class.Name != "R" {
		t.Errorf("expected class name R, got %q", class.Name)
	}
	if len(class.Parents) != 2 || class.Parents[0].Name != "P" || class.Parents[1].Name != "Q" {
		t.Fatalf("expected parents [P, Q] in order, got %v", class.Parents)
	}
	if len(class.Body.Statements) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(class.Body.Statements))
	}
	if _, ok := class.Body.Statements[0].(*ast.PropertyDeclaration); !ok {
		t.Fatalf("expected property declaration first, got %T", class.Body.Statements[0])
	}
}

func TestMemberAssignment(t *testing.T) {
	program := parseOrFail(t, `self.x = v`)
	stmt, ok := program.Tree.Statements[0].(*ast.VariableAssignment)
	if !ok {
		t.Fatalf("expected *ast.VariableAssignment, got %T", program.Tree.Statements[0])
	}
	if _, ok := stmt.Target.(*ast.MemberExpression); !ok {
		t.Fatalf("expected member expression target, got %T", stmt.Target)
	}
}

func TestWhileAndBreak(t *testing.T) {
	program := parseOrFail(t, `while (true) { break }`)
	stmt, ok := program.Tree.Statements[0].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("expected *ast.WhileStatement, got %T", program.Tree.Statements[0])
	}
	if len(stmt.Consequent.Statements) != 1 {
		t.Fatalf("expected 1 statement in while body, got %d", len(stmt.Consequent.Statements))
	}
	if _, ok := stmt.Consequent.Statements[0].(*ast.BreakStatement); !ok {
		t.Fatalf("expected break statement, got %T", stmt.Consequent.Statements[0])
	}
}

func TestCallExpressionPrecedence(t *testing.T) {
	program := parseOrFail(t, `A(7).x`)
	stmt, ok := program.Tree.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Tree.Statements[0])
	}
	member, ok := stmt.Expression.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected *ast.MemberExpression, got %T", stmt.Expression)
	}
	if _, ok := member.Object.(*ast.CallExpression); !ok {
		t.Fatalf("expected call expression as member base, got %T", member.Object)
	}
}
