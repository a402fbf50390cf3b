package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestIfTakesThenOnTrue(t *testing.T) {
	n := &elm.If{Condition: boolLit(true), Then: strLit("yes"), Else: strLit("no")}
	if got := evalExpr(t, n); got != (value.String{Value: "yes"}) {
		t.Errorf("If(true, yes, no) = %v, want yes", got)
	}
}

func TestIfTakesElseOnNull(t *testing.T) {
	n := &elm.If{Condition: nullLit(), Then: strLit("yes"), Else: strLit("no")}
	if got := evalExpr(t, n); got != (value.String{Value: "no"}) {
		t.Errorf("If(null, yes, no) = %v, want no (null takes else)", got)
	}
}

func TestCaseWithComparand(t *testing.T) {
	n := &elm.Case{
		Comparand: intLit(2),
		CaseItem: []elm.CaseItem{
			{When: intLit(1), Then: strLit("one")},
			{When: intLit(2), Then: strLit("two")},
		},
		Else: strLit("other"),
	}
	if got := evalExpr(t, n); got != (value.String{Value: "two"}) {
		t.Errorf("Case(2) = %v, want two", got)
	}
}

func TestCaseWithoutComparandFallsThroughToElse(t *testing.T) {
	n := &elm.Case{
		CaseItem: []elm.CaseItem{
			{When: boolLit(false), Then: strLit("one")},
		},
		Else: strLit("other"),
	}
	if got := evalExpr(t, n); got != (value.String{Value: "other"}) {
		t.Errorf("Case(no match) = %v, want other", got)
	}
}
