package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestConcatenate(t *testing.T) {
	n := &elm.Concatenate{NaryExpression: elm.NaryExpression{Operand: []elm.Expression{strLit("foo"), strLit("bar")}}}
	if got := evalExpr(t, n); got != (value.String{Value: "foobar"}) {
		t.Errorf("Concatenate(foo, bar) = %v, want foobar", got)
	}
}

func TestConcatenateNullPropagates(t *testing.T) {
	n := &elm.Concatenate{NaryExpression: elm.NaryExpression{Operand: []elm.Expression{strLit("foo"), nullLit()}}}
	if got := evalExpr(t, n); got != (value.Null{}) {
		t.Errorf("Concatenate(foo, null) = %v, want null", got)
	}
}

func TestLengthOfStringCountsRunes(t *testing.T) {
	n := &elm.Length{UnaryExpression: elm.UnaryExpression{Operand: strLit("héllo")}}
	if got := evalExpr(t, n); got != (value.Integer{Value: 5}) {
		t.Errorf("Length(\"héllo\") = %v, want 5", got)
	}
}

func TestUpperLower(t *testing.T) {
	upper := &elm.Upper{UnaryExpression: elm.UnaryExpression{Operand: strLit("abc")}}
	if got := evalExpr(t, upper); got != (value.String{Value: "ABC"}) {
		t.Errorf("Upper(abc) = %v, want ABC", got)
	}
	lower := &elm.Lower{UnaryExpression: elm.UnaryExpression{Operand: strLit("ABC")}}
	if got := evalExpr(t, lower); got != (value.String{Value: "abc"}) {
		t.Errorf("Lower(ABC) = %v, want abc", got)
	}
}

func TestStartsWithEndsWith(t *testing.T) {
	sw := &elm.StartsWith{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{strLit("hello world"), strLit("hello")}}}
	if got := evalExpr(t, sw); got != (value.Boolean{Value: true}) {
		t.Errorf("StartsWith(\"hello world\", \"hello\") = %v, want true", got)
	}
	ew := &elm.EndsWith{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{strLit("hello world"), strLit("world")}}}
	if got := evalExpr(t, ew); got != (value.Boolean{Value: true}) {
		t.Errorf("EndsWith(\"hello world\", \"world\") = %v, want true", got)
	}
}

func TestMatches(t *testing.T) {
	n := &elm.Matches{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{strLit("12345"), strLit(`\d+`)}}}
	if got := evalExpr(t, n); got != (value.Boolean{Value: true}) {
		t.Errorf("Matches(\"12345\", \\d+) = %v, want true", got)
	}
}

func TestSubstring(t *testing.T) {
	n := &elm.Substring{StringExpr: strLit("hello world"), StartIndex: intLit(6), Length_: intLit(5)}
	if got := evalExpr(t, n); got != (value.String{Value: "world"}) {
		t.Errorf("Substring(\"hello world\", 6, 5) = %v, want world", got)
	}
}

func TestSplit(t *testing.T) {
	n := &elm.Split{StringToSplit: strLit("a,b,c"), Separator: strLit(",")}
	got, ok := evalExpr(t, n).(value.List)
	if !ok {
		t.Fatalf("Split did not return a List: %T", got)
	}
	if len(got.Elements) != 3 {
		t.Fatalf("Split(\"a,b,c\", \",\") = %v, want 3 elements", got.Elements)
	}
	if got.Elements[1] != (value.String{Value: "b"}) {
		t.Errorf("Split(\"a,b,c\", \",\")[1] = %v, want b", got.Elements[1])
	}
}
