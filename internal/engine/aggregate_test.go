package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestCountSkipsNulls(t *testing.T) {
	list := &elm.List{Element_: []elm.Expression{intLit(1), nullLit(), intLit(3)}}
	n := &elm.Count{UnaryExpression: elm.UnaryExpression{Operand: list}}
	if got := evalExpr(t, n); got != (value.Integer{Value: 2}) {
		t.Errorf("Count([1,null,3]) = %v, want 2", got)
	}
}

func TestCountOnEmptyIsZero(t *testing.T) {
	n := &elm.Count{UnaryExpression: elm.UnaryExpression{Operand: intList()}}
	if got := evalExpr(t, n); got != (value.Integer{Value: 0}) {
		t.Errorf("Count([]) = %v, want 0", got)
	}
}

func TestSumOnAllNullListIsNull(t *testing.T) {
	list := &elm.List{Element_: []elm.Expression{nullLit(), nullLit()}}
	n := &elm.Sum{UnaryExpression: elm.UnaryExpression{Operand: list}}
	if got := evalExpr(t, n); got != (value.Null{}) {
		t.Errorf("Sum([null,null]) = %v, want null", got)
	}
}

func TestSumAndAvg(t *testing.T) {
	sum := &elm.Sum{UnaryExpression: elm.UnaryExpression{Operand: intList(1, 2, 3, 4)}}
	if got := evalExpr(t, sum); got != (value.Integer{Value: 10}) {
		t.Errorf("Sum([1,2,3,4]) = %v, want 10", got)
	}
	avg := &elm.Avg{UnaryExpression: elm.UnaryExpression{Operand: intList(1, 2, 3, 4)}}
	got, ok := evalExpr(t, avg).(value.Decimal)
	if !ok {
		t.Fatalf("Avg did not return Decimal: %T", evalExpr(t, avg))
	}
	if f, _ := got.Value.Float64(); f != 2.5 {
		t.Errorf("Avg([1,2,3,4]) = %v, want 2.5", f)
	}
}

func TestMinMaxAgg(t *testing.T) {
	min := &elm.Min{UnaryExpression: elm.UnaryExpression{Operand: intList(3, 1, 2)}}
	if got := evalExpr(t, min); got != (value.Integer{Value: 1}) {
		t.Errorf("Min([3,1,2]) = %v, want 1", got)
	}
	max := &elm.Max{UnaryExpression: elm.UnaryExpression{Operand: intList(3, 1, 2)}}
	if got := evalExpr(t, max); got != (value.Integer{Value: 3}) {
		t.Errorf("Max([3,1,2]) = %v, want 3", got)
	}
}

func TestAllTrueAndAnyTrue(t *testing.T) {
	list := &elm.List{Element_: []elm.Expression{boolLit(true), boolLit(true)}}
	allTrue := &elm.AllTrue{UnaryExpression: elm.UnaryExpression{Operand: list}}
	if got := evalExpr(t, allTrue); got != (value.Boolean{Value: true}) {
		t.Errorf("AllTrue([true,true]) = %v, want true", got)
	}
	mixed := &elm.List{Element_: []elm.Expression{boolLit(true), boolLit(false)}}
	anyTrue := &elm.AnyTrue{UnaryExpression: elm.UnaryExpression{Operand: mixed}}
	if got := evalExpr(t, anyTrue); got != (value.Boolean{Value: true}) {
		t.Errorf("AnyTrue([true,false]) = %v, want true", got)
	}
	allTrueMixed := &elm.AllTrue{UnaryExpression: elm.UnaryExpression{Operand: mixed}}
	if got := evalExpr(t, allTrueMixed); got != (value.Boolean{Value: false}) {
		t.Errorf("AllTrue([true,false]) = %v, want false", got)
	}
}

func TestPopulationVarianceAndStdDev(t *testing.T) {
	list := intList(2, 4, 4, 4, 5, 5, 7, 9)
	variance := &elm.PopulationVariance{UnaryExpression: elm.UnaryExpression{Operand: list}}
	got, ok := evalExpr(t, variance).(value.Decimal)
	if !ok {
		t.Fatalf("PopulationVariance did not return Decimal: %T", evalExpr(t, variance))
	}
	if f, _ := got.Value.Float64(); f != 4 {
		t.Errorf("PopulationVariance = %v, want 4", f)
	}
	stdDev := &elm.PopulationStdDev{UnaryExpression: elm.UnaryExpression{Operand: list}}
	sd, ok := evalExpr(t, stdDev).(value.Decimal)
	if !ok {
		t.Fatalf("PopulationStdDev did not return Decimal: %T", evalExpr(t, stdDev))
	}
	if f, _ := sd.Value.Float64(); f != 2 {
		t.Errorf("PopulationStdDev = %v, want 2", f)
	}
}
