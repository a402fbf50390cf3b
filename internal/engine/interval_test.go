package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// withPrecision-embedding ELM nodes (In, Contains, Includes, Before, After,
// ...) carry their Operand/Precision fields through an unexported embedded
// type, so tests build them by assigning the promoted fields rather than by
// struct literal.

func newIn(point, set elm.Expression) *elm.In {
	n := &elm.In{}
	n.Operand[0] = point
	n.Operand[1] = set
	return n
}

func TestInPointWithinInterval(t *testing.T) {
	iv := &elm.Interval{Low: intLit(1), LowClosed: true, High: intLit(10), HighClosed: true}
	n := newIn(intLit(5), iv)
	if got := evalExpr(t, n); got != (value.Boolean{Value: true}) {
		t.Errorf("5 in [1, 10] = %v, want true", got)
	}
	outside := newIn(intLit(11), iv)
	if got := evalExpr(t, outside); got != (value.Boolean{Value: false}) {
		t.Errorf("11 in [1, 10] = %v, want false", got)
	}
}

func TestInPointWithinList(t *testing.T) {
	n := newIn(intLit(2), intList(1, 2, 3))
	if got := evalExpr(t, n); got != (value.Boolean{Value: true}) {
		t.Errorf("2 in {1,2,3} = %v, want true", got)
	}
}

func TestInExcludesOpenBound(t *testing.T) {
	iv := &elm.Interval{Low: intLit(1), LowClosed: false, High: intLit(10), HighClosed: true}
	n := newIn(intLit(1), iv)
	if got := evalExpr(t, n); got != (value.Boolean{Value: false}) {
		t.Errorf("1 in (1, 10] (open low) = %v, want false", got)
	}
}

func TestDistinctOnEmptyList(t *testing.T) {
	d := &elm.Distinct{UnaryExpression: elm.UnaryExpression{Operand: intList()}}
	got, ok := evalExpr(t, d).(value.List)
	if !ok {
		t.Fatalf("Distinct([]) did not return a List: %T", got)
	}
	if len(got.Elements) != 0 {
		t.Errorf("Distinct([]) = %v, want empty", got.Elements)
	}
}
