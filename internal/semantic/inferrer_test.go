package semantic

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/types"
)

func TestInferrerLiteralsAndArithmetic(t *testing.T) {
	inf := NewInferrer(nil, nil, "")

	lit := func(valueType, value string) elm.Expression {
		return &elm.Literal{ValueType: valueType, Value: value}
	}

	add := &elm.Add{BinaryExpression: elm.BinaryExpression{
		Operand: [2]elm.Expression{lit(elm.SystemInteger, "1"), lit(elm.SystemDecimal, "2.5")},
	}}
	if got := inf.Infer(add, nil); !types.Equal(got, types.Decimal) {
		t.Errorf("Integer + Decimal = %v, want Decimal", got)
	}

	divide := &elm.Divide{BinaryExpression: elm.BinaryExpression{
		Operand: [2]elm.Expression{lit(elm.SystemInteger, "4"), lit(elm.SystemInteger, "2")},
	}}
	if got := inf.Infer(divide, nil); !types.Equal(got, types.Decimal) {
		t.Errorf("Divide always yields Decimal, got %v", got)
	}

	eq := &elm.Equal{BinaryExpression: elm.BinaryExpression{
		Operand: [2]elm.Expression{lit(elm.SystemInteger, "1"), lit(elm.SystemInteger, "1")},
	}}
	if got := inf.Infer(eq, nil); !types.Equal(got, types.Boolean) {
		t.Errorf("Equal = %v, want Boolean", got)
	}
}

func TestInferrerIfCommonSupertype(t *testing.T) {
	inf := NewInferrer(nil, nil, "")
	ifExpr := &elm.If{
		Condition: &elm.Literal{ValueType: elm.SystemBoolean, Value: "true"},
		Then:      &elm.Literal{ValueType: elm.SystemInteger, Value: "1"},
		Else:      &elm.Literal{ValueType: elm.SystemLong, Value: "2"},
	}
	if got := inf.Infer(ifExpr, nil); !types.Equal(got, types.Long) {
		t.Errorf("If(Integer, Long) = %v, want Long", got)
	}
}

func TestInferrerListElementType(t *testing.T) {
	inf := NewInferrer(nil, nil, "")
	list := &elm.List{Element_: []elm.Expression{
		&elm.Literal{ValueType: elm.SystemInteger, Value: "1"},
		&elm.Literal{ValueType: elm.SystemDecimal, Value: "2.0"},
	}}
	got := inf.Infer(list, nil)
	lt, ok := got.(types.ListType)
	if !ok {
		t.Fatalf("List inference = %v, want ListType", got)
	}
	if !types.Equal(lt.Element, types.Decimal) {
		t.Errorf("List element type = %v, want Decimal", lt.Element)
	}
}

func TestInferrerQuerySingleSourceReturnsElementList(t *testing.T) {
	inf := NewInferrer(nil, nil, "")
	source := &elm.List{Element_: []elm.Expression{&elm.Literal{ValueType: elm.SystemInteger, Value: "1"}}}
	query := &elm.Query{
		Source: []elm.AliasedQuerySource{{Expression: source, Alias: "X"}},
	}
	got := inf.Infer(query, nil)
	lt, ok := got.(types.ListType)
	if !ok {
		t.Fatalf("Query inference = %v, want ListType", got)
	}
	if !types.Equal(lt.Element, types.Integer) {
		t.Errorf("single-source query element type = %v, want Integer", lt.Element)
	}
}

func TestInferrerMemoizesResultType(t *testing.T) {
	inf := NewInferrer(nil, nil, "")
	lit := &elm.Literal{ValueType: elm.SystemString, Value: "hi"}
	first := inf.Infer(lit, nil)
	if !types.Equal(first, types.String) {
		t.Fatalf("first Infer = %v, want String", first)
	}
	if got := elm.ResultType(lit); !types.Equal(got, types.String) {
		t.Errorf("ResultType not annotated on node: %v", got)
	}
}
