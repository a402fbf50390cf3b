package cql

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/ast"
	"github.com/cwbudde/go-cql/internal/value"
)

func oneDefLibrary(name string) *ast.Library {
	return &ast.Library{
		Identifier: ast.VersionedIdentifier{ID: "TestLib", Version: "1.0.0"},
		Expressions: []*ast.ExpressionDef{
			{Name: name, Body: &ast.Literal{Kind: "Integer", Text: "1"}},
		},
	}
}

func TestParseAndEvalRoundTrip(t *testing.T) {
	parsed, err := Parse(oneDefLibrary("One"), ParseConfig{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	results, err := parsed.Eval(context.Background(), nil, EvalConfig{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got := results["One"]; got != (value.Integer{Value: 1}) {
		t.Errorf("results[One] = %v, want 1", got)
	}
}

func TestEvalDefinitionReturnsSingleResult(t *testing.T) {
	parsed, err := Parse(oneDefLibrary("One"), ParseConfig{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := parsed.EvalDefinition(context.Background(), "One", nil, EvalConfig{})
	if err != nil {
		t.Fatalf("EvalDefinition: %v", err)
	}
	if got != (value.Integer{Value: 1}) {
		t.Errorf("EvalDefinition(One) = %v, want 1", got)
	}
}

func TestEvalDefinitionUnknownNameIsEngineError(t *testing.T) {
	parsed, err := Parse(oneDefLibrary("One"), ParseConfig{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = parsed.EvalDefinition(context.Background(), "Missing", nil, EvalConfig{})
	if err == nil {
		t.Fatal("expected an error for an undefined definition")
	}
	ee, ok := err.(*EngineError)
	if !ok {
		t.Fatalf("error = %T, want *EngineError", err)
	}
	if ee.Stage != StageEvaluation {
		t.Errorf("Stage = %v, want StageEvaluation", ee.Stage)
	}
}

func TestParseNilLibraryIsEngineError(t *testing.T) {
	_, err := Parse(nil, ParseConfig{})
	if err == nil {
		t.Fatal("expected an error for a nil library")
	}
	if _, ok := err.(*EngineError); !ok {
		t.Fatalf("error = %T, want *EngineError", err)
	}
}

func TestParseReportsSemanticDiagnostics(t *testing.T) {
	lib := &ast.Library{
		Identifier: ast.VersionedIdentifier{ID: "BadLib"},
		Expressions: []*ast.ExpressionDef{
			{Name: "Bad", Body: &ast.Identifier{Name: "NoSuchThing"}},
		},
	}
	_, err := Parse(lib, ParseConfig{})
	if err == nil {
		t.Fatal("expected a semantic diagnostic for an unresolvable identifier")
	}
	ee, ok := err.(*EngineError)
	if !ok {
		t.Fatalf("error = %T, want *EngineError", err)
	}
	if ee.Stage != StageSemantic {
		t.Errorf("Stage = %v, want StageSemantic", ee.Stage)
	}
}

func TestUnusedParameterBindingDoesNotBreakEvaluation(t *testing.T) {
	lib := oneDefLibrary("One")
	parsed, err := Parse(lib, ParseConfig{Parameters: map[string]value.Value{"Unused": value.Integer{Value: 99}}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := parsed.EvalDefinition(context.Background(), "One", nil, EvalConfig{}); err != nil {
		t.Fatalf("EvalDefinition: %v", err)
	}
}
