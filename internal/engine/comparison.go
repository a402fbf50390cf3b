package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

type orderOp int

const (
	orderLess orderOp = iota
	orderLessOrEqual
	orderGreater
	orderGreaterOrEqual
)

// evalEqual implements both Equal (structural, null-if-either-null) and
// Equivalent (treats null as equal to null, never returns null), mirroring
// CQL's distinction between `=` and `~`.
func (e *Engine) evalEqual(ctx context.Context, n *elm.BinaryExpression, ec *EvaluationContext, equivalent bool) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(left) || isNullValue(right) {
		if equivalent {
			return value.Boolean{Value: isNullValue(left) && isNullValue(right)}, nil
		}
		return value.Null{}, nil
	}
	eq, err := valuesEqual(left, right, equivalent)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: eq}, nil
}

func (e *Engine) evalNotEqual(ctx context.Context, n *elm.NotEqual, ec *EvaluationContext) (value.Value, error) {
	eq, err := e.evalEqual(ctx, &n.BinaryExpression, ec, false)
	if err != nil {
		return nil, err
	}
	b, null := asBoolean(eq)
	if null {
		return value.Null{}, nil
	}
	return value.Boolean{Value: !b}, nil
}

func (e *Engine) evalOrderingCompare(ctx context.Context, n *elm.BinaryExpression, ec *EvaluationContext, op orderOp) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	cmp, err := compareOrdered(left, right)
	if err != nil {
		return nil, err
	}
	switch op {
	case orderLess:
		return value.Boolean{Value: cmp < 0}, nil
	case orderLessOrEqual:
		return value.Boolean{Value: cmp <= 0}, nil
	case orderGreater:
		return value.Boolean{Value: cmp > 0}, nil
	default:
		return value.Boolean{Value: cmp >= 0}, nil
	}
}

// valuesEqual implements CQL's structural equality/equivalence over scalar
// and compound values. equivalent relaxes String case/whitespace per
// CQL's `~` rules and recurses null-tolerantly into Lists/Tuples.
func valuesEqual(a, b value.Value, equivalent bool) (bool, error) {
	if _, aNum := numericKindRank(a); aNum {
		if _, bNum := numericKindRank(b); bNum {
			ad, _ := toDecimal(a)
			bd, _ := toDecimal(b)
			return ad.Equal(bd), nil
		}
	}
	switch a := a.(type) {
	case value.Boolean:
		b, ok := b.(value.Boolean)
		return ok && a.Value == b.Value, nil
	case value.String:
		b, ok := b.(value.String)
		if !ok {
			return false, nil
		}
		if equivalent {
			return normalizeForEquivalence(a.Value) == normalizeForEquivalence(b.Value), nil
		}
		return a.Value == b.Value, nil
	case value.Date:
		b, ok := b.(value.Date)
		return ok && a.String() == b.String(), nil
	case value.DateTime:
		b, ok := b.(value.DateTime)
		return ok && a.String() == b.String(), nil
	case value.Time:
		b, ok := b.(value.Time)
		return ok && a.String() == b.String(), nil
	case value.Code:
		b, ok := b.(value.Code)
		return ok && a.Code == b.Code && a.System == b.System, nil
	case value.Concept:
		b, ok := b.(value.Concept)
		if !ok || len(a.Codes) != len(b.Codes) {
			return false, nil
		}
		for i := range a.Codes {
			eq, _ := valuesEqual(a.Codes[i], b.Codes[i], equivalent)
			if !eq {
				return false, nil
			}
		}
		return true, nil
	case value.Quantity:
		b, ok := b.(value.Quantity)
		return ok && a.Unit == b.Unit && a.Value.Equal(b.Value), nil
	case value.Interval:
		b, ok := b.(value.Interval)
		if !ok {
			return false, nil
		}
		return intervalEqual(a, b, equivalent), nil
	case value.List:
		b, ok := b.(value.List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false, nil
		}
		for i := range a.Elements {
			if equivalent {
				if isNullValue(a.Elements[i]) && isNullValue(b.Elements[i]) {
					continue
				}
				if isNullValue(a.Elements[i]) || isNullValue(b.Elements[i]) {
					return false, nil
				}
			} else if isNullValue(a.Elements[i]) || isNullValue(b.Elements[i]) {
				return false, nil
			}
			eq, err := valuesEqual(a.Elements[i], b.Elements[i], equivalent)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case value.Tuple:
		b, ok := b.(value.Tuple)
		if !ok || len(a.Names) != len(b.Names) {
			return false, nil
		}
		for _, name := range a.Names {
			av, _ := a.Get(name)
			bv, ok := b.Get(name)
			if !ok {
				return false, nil
			}
			if isNullValue(av) || isNullValue(bv) {
				if equivalent && isNullValue(av) && isNullValue(bv) {
					continue
				}
				return false, nil
			}
			eq, err := valuesEqual(av, bv, equivalent)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	default:
		return false, errInvalidOperand("", "cannot compare values of type %T and %T", a, b)
	}
}

func intervalEqual(a, b value.Interval, equivalent bool) bool {
	if a.LowClosed != b.LowClosed || a.HighClosed != b.HighClosed {
		return false
	}
	eqEndpoint := func(x, y value.Value) bool {
		if x == nil && y == nil {
			return true
		}
		if x == nil || y == nil {
			return false
		}
		eq, _ := valuesEqual(x, y, equivalent)
		return eq
	}
	return eqEndpoint(a.Low, b.Low) && eqEndpoint(a.High, b.High)
}

// normalizeForEquivalence applies CQL's `~` String relaxation: case- and
// locale-insensitive, leading/trailing whitespace and internal runs of
// whitespace collapsed.
func normalizeForEquivalence(s string) string {
	return collapseAndLower(s)
}

// compareOrdered returns -1/0/1 comparing two non-null values of the same
// ordered point type (numeric, String, Date/DateTime/Time, Quantity).
func compareOrdered(a, b value.Value) (int, error) {
	if _, aNum := numericKindRank(a); aNum {
		if _, bNum := numericKindRank(b); bNum {
			ad, _ := toDecimal(a)
			bd, _ := toDecimal(b)
			return cmpDecimal(ad, bd), nil
		}
	}
	switch a := a.(type) {
	case value.String:
		b, ok := b.(value.String)
		if !ok {
			return 0, errInvalidOperand("", "cannot compare String to %T", b)
		}
		switch {
		case a.Value < b.Value:
			return -1, nil
		case a.Value > b.Value:
			return 1, nil
		default:
			return 0, nil
		}
	case value.Quantity:
		b, ok := b.(value.Quantity)
		if !ok || a.Unit != b.Unit {
			return 0, errInvalidOperand("", "cannot compare Quantity with mismatched units")
		}
		return cmpDecimal(a.Value, b.Value), nil
	case value.Date:
		b, ok := b.(value.Date)
		if !ok {
			return 0, errInvalidOperand("", "cannot compare Date to %T", b)
		}
		return compareDateComponents(a.Year, a.Month, a.Day, b.Year, b.Month, b.Day), nil
	case value.DateTime:
		b, ok := b.(value.DateTime)
		if !ok {
			return 0, errInvalidOperand("", "cannot compare DateTime to %T", b)
		}
		return compareDateTime(a, b), nil
	case value.Time:
		b, ok := b.(value.Time)
		if !ok {
			return 0, errInvalidOperand("", "cannot compare Time to %T", b)
		}
		return compareTime(a, b), nil
	default:
		return 0, errInvalidOperand("", "type %T does not support ordering comparison", a)
	}
}

func cmpDecimal(a, b decimal.Decimal) int {
	return a.Cmp(b)
}
