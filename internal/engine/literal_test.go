package engine

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestParameterRefUsesBoundValueOrNull(t *testing.T) {
	e := newTestEngine()
	e.SetParameter("MeasurementPeriod", value.Integer{Value: 2024})
	if got := evalExprOn(t, e, &elm.ParameterRef{Name: "MeasurementPeriod"}); got != (value.Integer{Value: 2024}) {
		t.Errorf("ParameterRef(bound) = %v, want 2024", got)
	}
	if got := evalExprOn(t, e, &elm.ParameterRef{Name: "Unbound"}); got != (value.Null{}) {
		t.Errorf("ParameterRef(unbound) = %v, want null", got)
	}
}

func TestExpressionRefEvaluatesAndMemoizes(t *testing.T) {
	lib := &elm.Library{Statements: []elm.ExpressionDef{
		{Name: "One", Expression: intLit(1)},
	}}
	e := New(lib, nil, nil, nil)
	if got := evalExprOn(t, e, &elm.ExpressionRef{Name: "One"}); got != (value.Integer{Value: 1}) {
		t.Errorf("ExpressionRef(One) = %v, want 1", got)
	}
}

func TestExpressionRefCrossLibraryUnsupported(t *testing.T) {
	e := newTestEngine()
	_, err := e.Evaluate(context.Background(), &elm.ExpressionRef{LibraryName: "Other", Name: "X"}, NewRootContext(nil))
	if err == nil {
		t.Error("cross-library ExpressionRef should error without a loaded include")
	}
}

func TestFunctionRefCallsUserDefinedFunction(t *testing.T) {
	// define function Double(x Integer): x + x
	body := &elm.Add{BinaryExpression: elm.BinaryExpression{
		Operand: [2]elm.Expression{&elm.OperandRef{Name: "x"}, &elm.OperandRef{Name: "x"}},
	}}
	lib := &elm.Library{Functions: []elm.FunctionDef{
		{Name: "Double", Operands: []elm.OperandDef{{Name: "x"}}, Expression: body},
	}}
	e := New(lib, nil, nil, nil)
	call := &elm.FunctionRef{Name: "Double", Operand: []elm.Expression{intLit(21)}}
	if got := evalExprOn(t, e, call); got != (value.Integer{Value: 42}) {
		t.Errorf("Double(21) = %v, want 42", got)
	}
}

func TestFunctionRefUndefinedErrors(t *testing.T) {
	e := newTestEngine()
	_, err := e.Evaluate(context.Background(), &elm.FunctionRef{Name: "Missing"}, NewRootContext(nil))
	if err == nil {
		t.Error("FunctionRef to an undeclared function should error")
	}
}

func TestFunctionRefExternalWithoutImplementationErrors(t *testing.T) {
	lib := &elm.Library{Functions: []elm.FunctionDef{
		{Name: "Registry Lookup", External: true},
	}}
	e := New(lib, nil, nil, nil)
	_, err := e.Evaluate(context.Background(), &elm.FunctionRef{Name: "Registry Lookup"}, NewRootContext(nil))
	if err == nil {
		t.Error("external FunctionDef without a registered implementation should error")
	}
}

func TestIdentifierRefResolvesLocalScopeBeforeLibrary(t *testing.T) {
	lib := &elm.Library{Statements: []elm.ExpressionDef{
		{Name: "X", Expression: intLit(99)},
	}}
	e := New(lib, nil, nil, nil)
	root := NewRootContext(nil)
	bound := root.Push()
	bound.Bind("X", value.Integer{Value: 1})
	if got := evalExprOn(t, e, &elm.IdentifierRef{Name: "X"}); got != (value.Integer{Value: 99}) {
		t.Errorf("IdentifierRef(X) with no local binding = %v, want the ExpressionDef's 99", got)
	}
	got, err := e.Evaluate(context.Background(), &elm.IdentifierRef{Name: "X"}, bound)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != (value.Integer{Value: 1}) {
		t.Errorf("IdentifierRef(X) with a local alias bound = %v, want the alias's 1", got)
	}
}

func TestIdentifierRefResolvesParameter(t *testing.T) {
	e := newTestEngine()
	e.SetParameter("MeasurementPeriod", value.Integer{Value: 2024})
	if got := evalExprOn(t, e, &elm.IdentifierRef{Name: "MeasurementPeriod"}); got != (value.Integer{Value: 2024}) {
		t.Errorf("IdentifierRef(MeasurementPeriod) = %v, want 2024", got)
	}
}

func TestIdentifierRefResolvesCodeAndConcept(t *testing.T) {
	lib := &elm.Library{
		Codes:    []elm.CodeDef{{Name: "c1", Code: "1234", CodeSystem: "sys", Display: "Foo"}},
		Concepts: []elm.ConceptDef{{Name: "concept1", Codes: []string{"c1"}, Display: "Foo concept"}},
	}
	e := New(lib, nil, nil, nil)
	if got := evalExprOn(t, e, &elm.IdentifierRef{Name: "c1"}); got != (value.Code{Code: "1234", System: "sys", Display: "Foo"}) {
		t.Errorf("IdentifierRef(c1) = %v", got)
	}
	concept, ok := evalExprOn(t, e, &elm.IdentifierRef{Name: "concept1"}).(value.Concept)
	if !ok || len(concept.Codes) != 1 {
		t.Errorf("IdentifierRef(concept1) = %v", concept)
	}
}

func TestIdentifierRefResolvesValueSetAndCodeSystemToNull(t *testing.T) {
	lib := &elm.Library{
		ValueSets:   []elm.ValueSetDef{{Name: "Diabetes"}},
		CodeSystems: []elm.CodeSystemDef{{Name: "SNOMED"}},
	}
	e := New(lib, nil, nil, nil)
	if got := evalExprOn(t, e, &elm.IdentifierRef{Name: "Diabetes"}); got != (value.Null{}) {
		t.Errorf("IdentifierRef(Diabetes) = %v, want null", got)
	}
	if got := evalExprOn(t, e, &elm.IdentifierRef{Name: "SNOMED"}); got != (value.Null{}) {
		t.Errorf("IdentifierRef(SNOMED) = %v, want null", got)
	}
}

func TestIdentifierRefUnresolvedErrors(t *testing.T) {
	e := newTestEngine()
	_, err := e.Evaluate(context.Background(), &elm.IdentifierRef{Name: "NoSuchThing"}, NewRootContext(nil))
	if err == nil {
		t.Error("an unresolvable IdentifierRef should error rather than silently return null")
	}
}

func TestIdentifierRefQualifiedUnsupported(t *testing.T) {
	e := newTestEngine()
	_, err := e.Evaluate(context.Background(), &elm.IdentifierRef{Name: "Other.X"}, NewRootContext(nil))
	if err == nil {
		t.Error("a qualified IdentifierRef should error without a loaded include")
	}
}

func TestCodeRefAndConceptRef(t *testing.T) {
	lib := &elm.Library{
		Codes:    []elm.CodeDef{{Name: "c1", Code: "1234", CodeSystem: "sys", Display: "Foo"}},
		Concepts: []elm.ConceptDef{{Name: "concept1", Codes: []string{"c1"}, Display: "Foo concept"}},
	}
	e := New(lib, nil, nil, nil)
	got := evalExprOn(t, e, &elm.CodeRef{Name: "c1"})
	if got != (value.Code{Code: "1234", System: "sys", Display: "Foo"}) {
		t.Errorf("CodeRef = %v", got)
	}
	concept, ok := evalExprOn(t, e, &elm.ConceptRef{Name: "concept1"}).(value.Concept)
	if !ok || len(concept.Codes) != 1 || concept.Codes[0].Code != "1234" {
		t.Errorf("ConceptRef = %v", concept)
	}
}
