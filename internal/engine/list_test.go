package engine

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func intList(values ...int32) *elm.List {
	ops := make([]elm.Expression, len(values))
	for i, v := range values {
		ops[i] = intLit(v)
	}
	return &elm.List{Element: elm.Element{}, Element_: ops}
}

func TestExistsOnEmptyAndNonEmptyList(t *testing.T) {
	empty := &elm.Exists{UnaryExpression: elm.UnaryExpression{Operand: intList()}}
	if got := evalExpr(t, empty); got != (value.Boolean{Value: false}) {
		t.Errorf("Exists([]) = %v, want false", got)
	}
	nonEmpty := &elm.Exists{UnaryExpression: elm.UnaryExpression{Operand: intList(1)}}
	if got := evalExpr(t, nonEmpty); got != (value.Boolean{Value: true}) {
		t.Errorf("Exists([1]) = %v, want true", got)
	}
}

func TestFirstAndLast(t *testing.T) {
	first := &elm.First{Source: intList(1, 2, 3)}
	if got := evalExpr(t, first); got != (value.Integer{Value: 1}) {
		t.Errorf("First([1,2,3]) = %v, want 1", got)
	}
	last := &elm.Last{Source: intList(1, 2, 3)}
	if got := evalExpr(t, last); got != (value.Integer{Value: 3}) {
		t.Errorf("Last([1,2,3]) = %v, want 3", got)
	}
	firstEmpty := &elm.First{Source: intList()}
	if got := evalExpr(t, firstEmpty); got != (value.Null{}) {
		t.Errorf("First([]) = %v, want null", got)
	}
}

func TestSingletonFrom(t *testing.T) {
	ok := &elm.SingletonFrom{UnaryExpression: elm.UnaryExpression{Operand: intList(7)}}
	if got := evalExpr(t, ok); got != (value.Integer{Value: 7}) {
		t.Errorf("SingletonFrom([7]) = %v, want 7", got)
	}
	empty := &elm.SingletonFrom{UnaryExpression: elm.UnaryExpression{Operand: intList()}}
	if got := evalExpr(t, empty); got != (value.Null{}) {
		t.Errorf("SingletonFrom([]) = %v, want null", got)
	}
	e := newTestEngine()
	_, err := e.evalSingletonFrom(context.Background(), &elm.SingletonFrom{UnaryExpression: elm.UnaryExpression{Operand: intList(1, 2)}}, NewRootContext(nil))
	if err == nil {
		t.Error("SingletonFrom([1,2]) should error, multi-element list")
	}
}

func TestDistinctDedupes(t *testing.T) {
	d := &elm.Distinct{UnaryExpression: elm.UnaryExpression{Operand: intList(1, 1, 2, 2, 3)}}
	got, ok := evalExpr(t, d).(value.List)
	if !ok {
		t.Fatalf("Distinct did not return a List: %T", got)
	}
	if len(got.Elements) != 3 {
		t.Errorf("Distinct([1,1,2,2,3]) = %v, want 3 elements", got.Elements)
	}
}

func TestIndexOf(t *testing.T) {
	idx := &elm.IndexOf{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intList(5, 6, 7), intLit(6)}}}
	if got := evalExpr(t, idx); got != (value.Integer{Value: 1}) {
		t.Errorf("IndexOf([5,6,7], 6) = %v, want 1", got)
	}
	missing := &elm.IndexOf{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intList(5, 6, 7), intLit(9)}}}
	if got := evalExpr(t, missing); got != (value.Integer{Value: -1}) {
		t.Errorf("IndexOf([5,6,7], 9) = %v, want -1", got)
	}
}

func TestSliceClampsBounds(t *testing.T) {
	s := &elm.Slice{Source: intList(1, 2, 3, 4, 5), StartIndex: intLit(1), EndIndex: intLit(3)}
	got, ok := evalExpr(t, s).(value.List)
	if !ok {
		t.Fatalf("Slice did not return a List: %T", got)
	}
	if len(got.Elements) != 2 || got.Elements[0] != (value.Integer{Value: 2}) {
		t.Errorf("Slice([1..5], 1, 3) = %v, want [2, 3]", got.Elements)
	}
	clamped := &elm.Slice{Source: intList(1, 2, 3, 4, 5), StartIndex: intLit(3), EndIndex: intLit(10)}
	got, ok = evalExpr(t, clamped).(value.List)
	if !ok {
		t.Fatalf("Slice did not return a List: %T", got)
	}
	if len(got.Elements) != 2 || got.Elements[1] != (value.Integer{Value: 5}) {
		t.Errorf("Slice([1..5], 3, 10) = %v, want [4, 5]", got.Elements)
	}
}
