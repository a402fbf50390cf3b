package engine

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func intLit(i int32) *elm.Literal {
	return &elm.Literal{ValueType: elm.SystemInteger, Value: itoa(i)}
}

func decLit(s string) *elm.Literal {
	return &elm.Literal{ValueType: elm.SystemDecimal, Value: s}
}

func itoa(i int32) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [16]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	s := string(buf[pos:])
	if neg {
		return "-" + s
	}
	return s
}

func evalExpr(t *testing.T, n elm.Expression) value.Value {
	t.Helper()
	return evalExprOn(t, newTestEngine(), n)
}

func evalExprOn(t *testing.T, e *Engine, n elm.Expression) value.Value {
	t.Helper()
	v, err := e.Evaluate(context.Background(), n, NewRootContext(nil))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	return v
}

func TestArithmeticAddSubtractMultiply(t *testing.T) {
	add := &elm.Add{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(2), intLit(3)}}}
	if got := evalExpr(t, add); got != (value.Integer{Value: 5}) {
		t.Errorf("2 + 3 = %v, want 5", got)
	}
	sub := &elm.Subtract{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(10), intLit(4)}}}
	if got := evalExpr(t, sub); got != (value.Integer{Value: 6}) {
		t.Errorf("10 - 4 = %v, want 6", got)
	}
	mul := &elm.Multiply{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(3), intLit(4)}}}
	if got := evalExpr(t, mul); got != (value.Integer{Value: 12}) {
		t.Errorf("3 * 4 = %v, want 12", got)
	}
}

func TestArithmeticNullPropagation(t *testing.T) {
	add := &elm.Add{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(2), nullLit()}}}
	if got := evalExpr(t, add); got != (value.Null{}) {
		t.Errorf("2 + null = %v, want null", got)
	}
}

func TestDivideByZeroYieldsNull(t *testing.T) {
	div := &elm.Divide{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(1), intLit(0)}}}
	if got := evalExpr(t, div); got != (value.Null{}) {
		t.Errorf("1 / 0 = %v, want null", got)
	}
}

func TestDividePromotesToDecimal(t *testing.T) {
	div := &elm.Divide{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(10), intLit(4)}}}
	got, ok := evalExpr(t, div).(value.Decimal)
	if !ok {
		t.Fatalf("10 / 4 did not return Decimal: %T", got)
	}
	if f, _ := got.Value.Float64(); f != 2.5 {
		t.Errorf("10 / 4 = %v, want 2.5", f)
	}
}

func TestNegateAndAbs(t *testing.T) {
	neg := &elm.Negate{UnaryExpression: elm.UnaryExpression{Operand: intLit(5)}}
	if got := evalExpr(t, neg); got != (value.Integer{Value: -5}) {
		t.Errorf("Negate(5) = %v, want -5", got)
	}
	abs := &elm.Abs{UnaryExpression: elm.UnaryExpression{Operand: intLit(-7)}}
	if got := evalExpr(t, abs); got != (value.Integer{Value: 7}) {
		t.Errorf("Abs(-7) = %v, want 7", got)
	}
}

func TestCeilingFloorTruncate(t *testing.T) {
	ceil := &elm.Ceiling{UnaryExpression: elm.UnaryExpression{Operand: decLit("1.1")}}
	if got := evalExpr(t, ceil); got != (value.Integer{Value: 2}) {
		t.Errorf("Ceiling(1.1) = %v, want 2", got)
	}
	floor := &elm.Floor{UnaryExpression: elm.UnaryExpression{Operand: decLit("1.9")}}
	if got := evalExpr(t, floor); got != (value.Integer{Value: 1}) {
		t.Errorf("Floor(1.9) = %v, want 1", got)
	}
}

func TestTruncatedDivideAndModuloByZeroYieldNull(t *testing.T) {
	div := &elm.TruncatedDivide{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(7), intLit(0)}}}
	if got := evalExpr(t, div); got != (value.Null{}) {
		t.Errorf("7 div 0 = %v, want null", got)
	}
	mod := &elm.Modulo{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(7), intLit(0)}}}
	if got := evalExpr(t, mod); got != (value.Null{}) {
		t.Errorf("7 mod 0 = %v, want null", got)
	}
}

func TestTruncatedDivideAndModuloNonZero(t *testing.T) {
	div := &elm.TruncatedDivide{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(7), intLit(2)}}}
	if got := evalExpr(t, div); got != (value.Integer{Value: 3}) {
		t.Errorf("7 div 2 = %v, want 3", got)
	}
	mod := &elm.Modulo{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(7), intLit(2)}}}
	if got := evalExpr(t, mod); got != (value.Integer{Value: 1}) {
		t.Errorf("7 mod 2 = %v, want 1", got)
	}
}

func TestAddOverflowRaisesOverflowError(t *testing.T) {
	add := &elm.Add{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{intLit(2000000000), intLit(2000000000)}}}
	_, err := newTestEngine().Evaluate(context.Background(), add, NewRootContext(nil))
	if err == nil {
		t.Fatal("2000000000 + 2000000000 should overflow Integer, got no error")
	}
}

func TestMinMaxValueInteger(t *testing.T) {
	e := newTestEngine()
	min, err := e.evalMinMaxValue(elm.SystemInteger, true)
	if err != nil {
		t.Fatal(err)
	}
	if min != (value.Integer{Value: -2147483648}) {
		t.Errorf("MinValue(Integer) = %v", min)
	}
	max, err := e.evalMinMaxValue(elm.SystemInteger, false)
	if err != nil {
		t.Fatal(err)
	}
	if max != (value.Integer{Value: 2147483647}) {
		t.Errorf("MaxValue(Integer) = %v", max)
	}
}
