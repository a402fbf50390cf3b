package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func strLit(s string) *elm.Literal {
	return &elm.Literal{ValueType: elm.SystemString, Value: s}
}

func TestToIntegerFromString(t *testing.T) {
	n := &elm.ToInteger{UnaryExpression: elm.UnaryExpression{Operand: strLit("42")}}
	if got := evalExpr(t, n); got != (value.Integer{Value: 42}) {
		t.Errorf("ToInteger(\"42\") = %v, want 42", got)
	}
	bad := &elm.ToInteger{UnaryExpression: elm.UnaryExpression{Operand: strLit("not a number")}}
	if got := evalExpr(t, bad); got != (value.Null{}) {
		t.Errorf("ToInteger(\"not a number\") = %v, want null", got)
	}
}

func TestToStringFromInteger(t *testing.T) {
	n := &elm.ToString{UnaryExpression: elm.UnaryExpression{Operand: intLit(7)}}
	if got := evalExpr(t, n); got != (value.String{Value: "7"}) {
		t.Errorf("ToString(7) = %v, want \"7\"", got)
	}
}

func TestToBooleanFromString(t *testing.T) {
	tests := []struct {
		in   string
		want value.Value
	}{
		{"true", value.Boolean{Value: true}},
		{"Yes", value.Boolean{Value: true}},
		{"0", value.Boolean{Value: false}},
		{"maybe", value.Null{}},
	}
	for _, tt := range tests {
		n := &elm.ToBoolean{UnaryExpression: elm.UnaryExpression{Operand: strLit(tt.in)}}
		if got := evalExpr(t, n); got != tt.want {
			t.Errorf("ToBoolean(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsTypeSpecifier(t *testing.T) {
	isInt := &elm.Is{Operand: intLit(1), IsTypeSpecifier: elm.TypeSpecifier{Name: elm.SystemInteger}}
	if got := evalExpr(t, isInt); got != (value.Boolean{Value: true}) {
		t.Errorf("1 is Integer = %v, want true", got)
	}
	isStr := &elm.Is{Operand: intLit(1), IsTypeSpecifier: elm.TypeSpecifier{Name: elm.SystemString}}
	if got := evalExpr(t, isStr); got != (value.Boolean{Value: false}) {
		t.Errorf("1 is String = %v, want false", got)
	}
}

func TestAsStrictFailsOnMismatch(t *testing.T) {
	e := newTestEngine()
	n := &elm.As{Operand: intLit(1), AsTypeSpecifier: elm.TypeSpecifier{Name: elm.SystemString}, Strict: true}
	_, err := e.evalAs(nil, n, NewRootContext(nil))
	if err == nil {
		t.Error("strict As with mismatched type should error")
	}
}

func TestAsNonStrictReturnsNullOnMismatch(t *testing.T) {
	n := &elm.As{Operand: intLit(1), AsTypeSpecifier: elm.TypeSpecifier{Name: elm.SystemString}}
	if got := evalExpr(t, n); got != (value.Null{}) {
		t.Errorf("non-strict As with mismatched type = %v, want null", got)
	}
}

func TestCanConvertStringToInteger(t *testing.T) {
	ok := &elm.CanConvert{Operand: strLit("5"), ToTypeSpecifier: elm.TypeSpecifier{Name: elm.SystemInteger}}
	if got := evalExpr(t, ok); got != (value.Boolean{Value: true}) {
		t.Errorf("CanConvert(\"5\", Integer) = %v, want true", got)
	}
	bad := &elm.CanConvert{Operand: strLit("abc"), ToTypeSpecifier: elm.TypeSpecifier{Name: elm.SystemInteger}}
	if got := evalExpr(t, bad); got != (value.Boolean{Value: false}) {
		t.Errorf("CanConvert(\"abc\", Integer) = %v, want false", got)
	}
}
