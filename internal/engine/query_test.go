package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// aliasRef builds an AliasRef expression referencing a query alias, the
// value-level equivalent of writing the alias name in CQL source.
func aliasRef(name string) *elm.AliasRef { return &elm.AliasRef{Name: name} }

func TestQuerySingleSourceWhereFilter(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{{Expression: intList(1, 2, 3, 4, 5), Alias: "x"}},
		Where: &elm.Greater{BinaryExpression: elm.BinaryExpression{
			Operand: [2]elm.Expression{aliasRef("x"), intLit(2)},
		}},
	}
	got, ok := evalExpr(t, q).(value.List)
	if !ok {
		t.Fatalf("query did not return a List: %T", got)
	}
	if len(got.Elements) != 3 {
		t.Fatalf("expected 3 elements > 2, got %d: %v", len(got.Elements), got.Elements)
	}
	for _, el := range got.Elements {
		iv, ok := el.(value.Integer)
		if !ok || iv.Value <= 2 {
			t.Errorf("unexpected element %v in filtered result", el)
		}
	}
}

func TestQueryReturnProjection(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{{Expression: intList(1, 2, 3), Alias: "x"}},
		Return: &elm.ReturnClause{
			Expression: &elm.Multiply{BinaryExpression: elm.BinaryExpression{
				Operand: [2]elm.Expression{aliasRef("x"), intLit(10)},
			}},
		},
	}
	got, ok := evalExpr(t, q).(value.List)
	if !ok {
		t.Fatalf("query did not return a List: %T", got)
	}
	want := []int32{10, 20, 30}
	if len(got.Elements) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got.Elements), len(want))
	}
	for i, el := range got.Elements {
		if el != (value.Integer{Value: want[i]}) {
			t.Errorf("element %d = %v, want %d", i, el, want[i])
		}
	}
}

func TestQueryCrossProduct(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{
			{Expression: intList(1, 2), Alias: "a"},
			{Expression: intList(10, 20), Alias: "b"},
		},
	}
	got, ok := evalExpr(t, q).(value.List)
	if !ok {
		t.Fatalf("query did not return a List: %T", got)
	}
	if len(got.Elements) != 4 {
		t.Fatalf("cross product of 2x2 sources should yield 4 rows, got %d", len(got.Elements))
	}
	for _, el := range got.Elements {
		tup, ok := el.(value.Tuple)
		if !ok {
			t.Fatalf("multi-source row should be a Tuple, got %T", el)
		}
		if _, ok := tup.Values["a"]; !ok {
			t.Error("tuple missing alias 'a'")
		}
		if _, ok := tup.Values["b"]; !ok {
			t.Error("tuple missing alias 'b'")
		}
	}
}

func TestQuerySingletonScalarSourceUnwraps(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{{Expression: intLit(5), Alias: "X"}},
		Return: &elm.ReturnClause{Expression: aliasRef("X")},
	}
	got := evalExpr(t, q)
	if got != (value.Integer{Value: 5}) {
		t.Errorf("from 5 X return X = %v, want Integer(5), not a List", got)
	}
}

func TestQuerySingletonScalarSourceFilteredOutYieldsNull(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{{Expression: intLit(5), Alias: "X"}},
		Where: &elm.Greater{BinaryExpression: elm.BinaryExpression{
			Operand: [2]elm.Expression{aliasRef("X"), intLit(10)},
		}},
	}
	got := evalExpr(t, q)
	if got != (value.Null{}) {
		t.Errorf("from 5 X where X > 10 = %v, want Null", got)
	}
}

func TestQueryMultiSourceStaysListEvenWithScalarSource(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{
			{Expression: intLit(5), Alias: "a"},
			{Expression: intList(10, 20), Alias: "b"},
		},
	}
	got, ok := evalExpr(t, q).(value.List)
	if !ok {
		t.Fatalf("multi-source query did not return a List: %T", got)
	}
	if len(got.Elements) != 2 {
		t.Errorf("scalar source crossed with a 2-element source should yield 2 rows, got %d", len(got.Elements))
	}
}

func TestQueryEmptySourceYieldsEmptyList(t *testing.T) {
	q := &elm.Query{
		Source: []elm.AliasedQuerySource{{Expression: intList(), Alias: "x"}},
	}
	got, ok := evalExpr(t, q).(value.List)
	if !ok {
		t.Fatalf("query did not return a List: %T", got)
	}
	if len(got.Elements) != 0 {
		t.Errorf("query over empty source should yield empty list, got %v", got.Elements)
	}
}
