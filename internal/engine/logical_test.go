package engine

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func newTestEngine() *Engine {
	return New(&elm.Library{}, nil, nil, nil)
}

func boolLit(b bool) *elm.Literal {
	v := "false"
	if b {
		v = "true"
	}
	return &elm.Literal{ValueType: elm.SystemBoolean, Value: v}
}

func nullLit() *elm.Null { return &elm.Null{} }

func binary(op string, a, b elm.Expression) elm.Expression {
	be := elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}
	switch op {
	case "and":
		return &elm.And{BinaryExpression: be}
	case "or":
		return &elm.Or{BinaryExpression: be}
	case "xor":
		return &elm.Xor{BinaryExpression: be}
	case "implies":
		return &elm.Implies{BinaryExpression: be}
	}
	panic("unknown op " + op)
}

func evalBool(t *testing.T, n elm.Expression) value.Value {
	t.Helper()
	e := newTestEngine()
	v, err := e.Evaluate(context.Background(), n, NewRootContext(nil))
	if err != nil {
		t.Fatalf("Evaluate(%v) error: %v", n, err)
	}
	return v
}

func TestAndThreeValuedLogic(t *testing.T) {
	tests := []struct {
		name     string
		a, b     elm.Expression
		expected value.Value
	}{
		{"true and true", boolLit(true), boolLit(true), value.Boolean{Value: true}},
		{"true and false", boolLit(true), boolLit(false), value.Boolean{Value: false}},
		{"false and null short-circuits", boolLit(false), nullLit(), value.Boolean{Value: false}},
		{"null and false short-circuits", nullLit(), boolLit(false), value.Boolean{Value: false}},
		{"true and null propagates", boolLit(true), nullLit(), value.Null{}},
		{"null and true propagates", nullLit(), boolLit(true), value.Null{}},
		{"null and null propagates", nullLit(), nullLit(), value.Null{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalBool(t, binary("and", tt.a, tt.b))
			if got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestOrThreeValuedLogic(t *testing.T) {
	tests := []struct {
		name     string
		a, b     elm.Expression
		expected value.Value
	}{
		{"true or false", boolLit(true), boolLit(false), value.Boolean{Value: true}},
		{"false or false", boolLit(false), boolLit(false), value.Boolean{Value: false}},
		{"true or null short-circuits", boolLit(true), nullLit(), value.Boolean{Value: true}},
		{"null or true short-circuits", nullLit(), boolLit(true), value.Boolean{Value: true}},
		{"false or null propagates", boolLit(false), nullLit(), value.Null{}},
		{"null or null propagates", nullLit(), nullLit(), value.Null{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalBool(t, binary("or", tt.a, tt.b))
			if got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestXorAndImplies(t *testing.T) {
	if got := evalBool(t, binary("xor", boolLit(true), boolLit(false))); got != (value.Boolean{Value: true}) {
		t.Errorf("true xor false = %v, want true", got)
	}
	if got := evalBool(t, binary("xor", boolLit(true), nullLit())); got != (value.Null{}) {
		t.Errorf("true xor null = %v, want null", got)
	}
	if got := evalBool(t, binary("implies", boolLit(false), nullLit())); got != (value.Boolean{Value: true}) {
		t.Errorf("false implies null = %v, want true (vacuous truth)", got)
	}
	if got := evalBool(t, binary("implies", boolLit(true), boolLit(false))); got != (value.Boolean{Value: false}) {
		t.Errorf("true implies false = %v, want false", got)
	}
}

func TestNotAndIsNull(t *testing.T) {
	not := &elm.Not{UnaryExpression: elm.UnaryExpression{Operand: boolLit(true)}}
	if got := evalBool(t, not); got != (value.Boolean{Value: false}) {
		t.Errorf("not true = %v, want false", got)
	}
	notNull := &elm.Not{UnaryExpression: elm.UnaryExpression{Operand: nullLit()}}
	if got := evalBool(t, notNull); got != (value.Null{}) {
		t.Errorf("not null = %v, want null", got)
	}
	isNull := &elm.IsNull{UnaryExpression: elm.UnaryExpression{Operand: nullLit()}}
	if got := evalBool(t, isNull); got != (value.Boolean{Value: true}) {
		t.Errorf("IsNull(null) = %v, want true", got)
	}
}

func TestCoalesceReturnsFirstNonNull(t *testing.T) {
	n := &elm.Coalesce{NaryExpression: elm.NaryExpression{Operand: []elm.Expression{nullLit(), nullLit(), boolLit(true)}}}
	if got := evalBool(t, n); got != (value.Boolean{Value: true}) {
		t.Errorf("Coalesce(null, null, true) = %v, want true", got)
	}
}
