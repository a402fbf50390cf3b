package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestEqualAndEquivalentNullHandling(t *testing.T) {
	eq := &elm.Equal{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(1), nullLit()}}}
	if got := evalExpr(t, eq); got != (value.Null{}) {
		t.Errorf("1 = null = %v, want null", got)
	}
	equiv := &elm.Equivalent{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{nullLit(), nullLit()}}}
	if got := evalExpr(t, equiv); got != (value.Boolean{Value: true}) {
		t.Errorf("null ~ null = %v, want true", got)
	}
}

func TestEqualStructural(t *testing.T) {
	eq := &elm.Equal{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(3), intLit(3)}}}
	if got := evalExpr(t, eq); got != (value.Boolean{Value: true}) {
		t.Errorf("3 = 3 = %v, want true", got)
	}
	neq := &elm.NotEqual{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(3), intLit(4)}}}
	if got := evalExpr(t, neq); got != (value.Boolean{Value: true}) {
		t.Errorf("3 != 4 = %v, want true", got)
	}
}

func TestOrderingComparisons(t *testing.T) {
	less := &elm.Less{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(1), intLit(2)}}}
	if got := evalExpr(t, less); got != (value.Boolean{Value: true}) {
		t.Errorf("1 < 2 = %v, want true", got)
	}
	greaterOrEqual := &elm.GreaterOrEqual{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(2), intLit(2)}}}
	if got := evalExpr(t, greaterOrEqual); got != (value.Boolean{Value: true}) {
		t.Errorf("2 >= 2 = %v, want true", got)
	}
	lessNullPropagates := &elm.Less{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(1), nullLit()}}}
	if got := evalExpr(t, lessNullPropagates); got != (value.Null{}) {
		t.Errorf("1 < null = %v, want null", got)
	}
}

func TestEquivalentStringIgnoresCaseAndWhitespace(t *testing.T) {
	equiv := &elm.Equivalent{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{strLit("  Hello   World "), strLit("hello world")}}}
	if got := evalExpr(t, equiv); got != (value.Boolean{Value: true}) {
		t.Errorf("\"  Hello   World \" ~ \"hello world\" = %v, want true", got)
	}
}
