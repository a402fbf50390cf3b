package semantic

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/types"
)

func intLit() *elm.Literal { return &elm.Literal{ValueType: elm.SystemInteger, Value: "1"} }

func TestAnalyzeInfersExpressionDefType(t *testing.T) {
	lib := &elm.Library{Statements: []elm.ExpressionDef{
		{Name: "One", Expression: intLit()},
	}}
	symbols, diags := Analyze(lib, nil, "", nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	sym, ok := symbols.Lookup("One")
	if !ok {
		t.Fatal("One not declared")
	}
	if !types.Equal(sym.Type, types.Integer) {
		t.Errorf("One's inferred type = %v, want Integer", sym.Type)
	}
}

func TestAnalyzeReportsUnknownIdentifier(t *testing.T) {
	lib := &elm.Library{Statements: []elm.ExpressionDef{
		{Name: "Bad", Expression: &elm.ExpressionRef{Name: "DoesNotExist"}},
	}}
	_, diags := Analyze(lib, nil, "", nil)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", diags)
	}
}

func TestAnalyzeResolvesFunctionCallReturnType(t *testing.T) {
	lib := &elm.Library{
		Functions: []elm.FunctionDef{
			{
				Name:                "Double",
				Operands:            []elm.OperandDef{{Name: "x", OperandType: elm.NamedType(elm.SystemInteger)}},
				ResultTypeSpecifier: elm.NamedType(elm.SystemInteger),
				Expression: &elm.Add{BinaryExpression: elm.BinaryExpression{
					Operand: [2]elm.Expression{&elm.OperandRef{Name: "x"}, &elm.OperandRef{Name: "x"}},
				}},
			},
		},
		Statements: []elm.ExpressionDef{
			{Name: "Result", Expression: &elm.FunctionRef{Name: "Double", Operand: []elm.Expression{intLit()}}},
		},
	}
	symbols, diags := Analyze(lib, nil, "", nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	sym, _ := symbols.Lookup("Result")
	if !types.Equal(sym.Type, types.Integer) {
		t.Errorf("Result's inferred type = %v, want Integer", sym.Type)
	}
}

func TestAnalyzeReportsNoMatchingOverload(t *testing.T) {
	lib := &elm.Library{
		Functions: []elm.FunctionDef{
			{Name: "NeedsString", Operands: []elm.OperandDef{{Name: "s", OperandType: elm.NamedType(elm.SystemString)}}},
		},
		Statements: []elm.ExpressionDef{
			{Name: "Bad", Expression: &elm.FunctionRef{Name: "NeedsString", Operand: []elm.Expression{intLit()}}},
		},
	}
	_, diags := Analyze(lib, nil, "", nil)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one no-matching-overload error", diags)
	}
}

func TestAnalyzeDeclaresTerminologyDefs(t *testing.T) {
	lib := &elm.Library{
		CodeSystems: []elm.CodeSystemDef{{Name: "LOINC", ID: "urn:oid:2.16.840.1.113883.6.1"}},
		ValueSets:   []elm.ValueSetDef{{Name: "Diabetes", ID: "urn:oid:example"}},
		Codes:       []elm.CodeDef{{Name: "c1", Code: "1234", CodeSystem: "LOINC"}},
		Concepts:    []elm.ConceptDef{{Name: "concept1", Codes: []string{"c1"}}},
	}
	symbols, diags := Analyze(lib, nil, "", nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	for _, name := range []string{"LOINC", "Diabetes", "c1", "concept1"} {
		if _, ok := symbols.Lookup(name); !ok {
			t.Errorf("%s not declared", name)
		}
	}
}

func TestAnalyzeUnresolvedIncludeWithoutLoader(t *testing.T) {
	lib := &elm.Library{Includes: []elm.IncludeDef{{LocalIdentifier: "Common", Path: "Common"}}}
	_, diags := Analyze(lib, nil, "", nil)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one unresolved-include error", diags)
	}
}
