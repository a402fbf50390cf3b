package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/value"
)

// toDecimal widens an Integer/Long/Decimal/Quantity value to a decimal.Decimal
// for arithmetic, mirroring DWScript's evalFloatBinaryOp promotion of an
// Integer operand before a Float binary op (internal/interp/interpreter.go).
func toDecimal(v value.Value) (decimal.Decimal, bool) {
	switch v := v.(type) {
	case value.Integer:
		return decimal.NewFromInt32(v.Value), true
	case value.Long:
		return decimal.NewFromInt(v.Value), true
	case value.Decimal:
		return v.Value, true
	case value.Quantity:
		return v.Value, true
	default:
		return decimal.Decimal{}, false
	}
}

// numericKindRank mirrors types.numericRank for runtime values, used to
// decide the result Kind of a promoted binary arithmetic operation.
func numericKindRank(v value.Value) (int, bool) {
	switch v.(type) {
	case value.Integer:
		return 0, true
	case value.Long:
		return 1, true
	case value.Decimal:
		return 2, true
	default:
		return 0, false
	}
}

// fromDecimalAtRank rebuilds a value.Value of the widened numeric kind from
// a computed decimal result -- Integer/Long results that round-trip exactly
// stay Integer/Long, matching CQL's rule that Integer+Integer stays Integer.
// A result that does not fit the target width raises Overflow rather than
// silently truncating (restoring original_source's checked-arithmetic
// helpers, CQL's `2000000000 + 2000000000` ⟶ Overflow rule).
func fromDecimalAtRank(d decimal.Decimal, rank int) (value.Value, error) {
	if rank < 2 && !d.Equal(d.Truncate(0)) {
		return value.Decimal{Value: d}, nil
	}
	switch rank {
	case 0:
		i := d.IntPart()
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, errors.Overflow("", fmt.Sprintf("Integer result %s out of range", d.String()))
		}
		return value.Integer{Value: int32(i)}, nil
	case 1:
		if d.GreaterThan(maxInt64Decimal) || d.LessThan(minInt64Decimal) {
			return nil, errors.Overflow("", fmt.Sprintf("Long result %s out of range", d.String()))
		}
		return value.Long{Value: d.IntPart()}, nil
	default:
		return value.Decimal{Value: d}, nil
	}
}

var (
	maxInt64Decimal = decimal.NewFromInt(math.MaxInt64)
	minInt64Decimal = decimal.NewFromInt(math.MinInt64)
)

// isNullValue reports whether v represents CQL null (nil Go value or an
// explicit value.Null), the single predicate every operator's
// null-propagation check goes through.
func isNullValue(v value.Value) bool {
	return value.IsNull(v)
}

// anyNull reports whether any of vs is null.
func anyNull(vs ...value.Value) bool {
	for _, v := range vs {
		if isNullValue(v) {
			return true
		}
	}
	return false
}

func asBoolean(v value.Value) (val bool, null bool) {
	if isNullValue(v) {
		return false, true
	}
	b, ok := v.(value.Boolean)
	if !ok {
		return false, true
	}
	return b.Value, false
}

func asString(v value.Value) (string, bool) {
	if isNullValue(v) {
		return "", false
	}
	s, ok := v.(value.String)
	return s.Value, ok
}

func asList(v value.Value) ([]value.Value, bool) {
	if isNullValue(v) {
		return nil, true
	}
	l, ok := v.(value.List)
	if !ok {
		return nil, false
	}
	return l.Elements, true
}

func asInterval(v value.Value) (value.Interval, bool) {
	iv, ok := v.(value.Interval)
	return iv, ok
}

func errInvalidOperand(definition, format string, args ...any) error {
	return errors.Newf(errors.KindEvaluation, errors.CodeInvalidOperand, definition, format, args...)
}
