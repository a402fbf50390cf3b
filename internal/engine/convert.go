package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// Type testing/conversion, grounded on DWScript's evalTypeCast
// (internal/interp/interpreter.go) generalized from DWScript's static class
// hierarchy to ELM's TypeSpecifier tags against the runtime value.Value kind.

func unqualifiedTypeName(name string) string {
	if i := strings.LastIndex(name, "}"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// matchesType reports whether v's runtime kind satisfies spec, following
// CQL's System-type-name matching for scalars and structural matching for
// List/Interval/Tuple.
func matchesType(v value.Value, spec elm.TypeSpecifier) bool {
	if spec.IsZero() {
		return true
	}
	switch spec.Kind {
	case "ListTypeSpecifier":
		elements, ok := asList(v)
		if !ok {
			return false
		}
		if spec.ElementType == nil {
			return true
		}
		for _, el := range elements {
			if !matchesType(el, *spec.ElementType) {
				return false
			}
		}
		return true
	case "IntervalTypeSpecifier":
		_, ok := asInterval(v)
		return ok
	case "TupleTypeSpecifier":
		_, ok := v.(value.Tuple)
		return ok
	case "ChoiceTypeSpecifier":
		for _, choice := range spec.ChoiceTypes {
			if matchesType(v, choice) {
				return true
			}
		}
		return false
	default:
		return matchesNamedType(v, unqualifiedTypeName(spec.Name))
	}
}

func matchesNamedType(v value.Value, name string) bool {
	switch name {
	case "Any":
		return true
	case "Boolean":
		_, ok := v.(value.Boolean)
		return ok
	case "Integer":
		_, ok := v.(value.Integer)
		return ok
	case "Long":
		_, ok := v.(value.Long)
		return ok
	case "Decimal":
		_, ok := v.(value.Decimal)
		return ok
	case "String":
		_, ok := v.(value.String)
		return ok
	case "Date":
		_, ok := v.(value.Date)
		return ok
	case "DateTime":
		_, ok := v.(value.DateTime)
		return ok
	case "Time":
		_, ok := v.(value.Time)
		return ok
	case "Quantity":
		_, ok := v.(value.Quantity)
		return ok
	case "Ratio":
		_, ok := v.(value.Ratio)
		return ok
	case "Code":
		_, ok := v.(value.Code)
		return ok
	case "Concept":
		_, ok := v.(value.Concept)
		return ok
	default:
		_, ok := v.(value.Tuple)
		return ok
	}
}

func (e *Engine) evalAs(ctx context.Context, n *elm.As, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	if matchesType(v, n.AsTypeSpecifier) {
		return v, nil
	}
	if n.Strict {
		return nil, errInvalidOperand("", "cast failed: value of type %T does not match %s", v, n.AsTypeSpecifier.Name)
	}
	return value.Null{}, nil
}

func (e *Engine) evalIs(ctx context.Context, n *elm.Is, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: matchesType(v, n.IsTypeSpecifier)}, nil
}

func (e *Engine) targetTypeName(n *elm.Convert) string {
	if n.ToType != "" {
		return unqualifiedTypeName(n.ToType)
	}
	return unqualifiedTypeName(n.ToTypeSpecifier.Name)
}

func (e *Engine) evalConvert(ctx context.Context, n *elm.Convert, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	return convertTo(v, e.targetTypeName(n))
}

func (e *Engine) evalCanConvert(ctx context.Context, n *elm.CanConvert, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Boolean{Value: false}, nil
	}
	result, err := convertTo(v, unqualifiedTypeName(n.ToTypeSpecifier.Name))
	if err != nil || isNullValue(result) {
		return value.Boolean{Value: false}, nil
	}
	return value.Boolean{Value: true}, nil
}

// convertTo performs the actual widening/narrowing conversion, returning
// Null (not an error) when the source value simply does not represent a
// value of the target type (CQL's CanConvert/Convert contract).
func convertTo(v value.Value, target string) (value.Value, error) {
	switch target {
	case "Boolean":
		return toBooleanValue(v)
	case "Integer":
		return toIntegerValue(v)
	case "Long":
		return toLongValue(v)
	case "Decimal":
		return toDecimalValue(v)
	case "String":
		return toStringValue(v)
	case "Quantity":
		return toQuantityValue(v)
	default:
		return v, nil
	}
}

func toBooleanValue(v value.Value) (value.Value, error) {
	switch s := v.(type) {
	case value.Boolean:
		return s, nil
	case value.String:
		switch strings.ToLower(strings.TrimSpace(s.Value)) {
		case "true", "t", "yes", "y", "1":
			return value.Boolean{Value: true}, nil
		case "false", "f", "no", "n", "0":
			return value.Boolean{Value: false}, nil
		}
	}
	return value.Null{}, nil
}

func toIntegerValue(v value.Value) (value.Value, error) {
	switch s := v.(type) {
	case value.Integer:
		return s, nil
	case value.Long:
		return value.Integer{Value: int32(s.Value)}, nil
	case value.Decimal:
		return value.Integer{Value: int32(s.Value.IntPart())}, nil
	case value.String:
		i, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 32)
		if err != nil {
			return value.Null{}, nil
		}
		return value.Integer{Value: int32(i)}, nil
	}
	return value.Null{}, nil
}

func toLongValue(v value.Value) (value.Value, error) {
	switch s := v.(type) {
	case value.Long:
		return s, nil
	case value.Integer:
		return value.Long{Value: int64(s.Value)}, nil
	case value.Decimal:
		return value.Long{Value: s.Value.IntPart()}, nil
	case value.String:
		i, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64)
		if err != nil {
			return value.Null{}, nil
		}
		return value.Long{Value: i}, nil
	}
	return value.Null{}, nil
}

func toDecimalValue(v value.Value) (value.Value, error) {
	if d, ok := toDecimal(v); ok {
		return value.Decimal{Value: d}, nil
	}
	if s, ok := v.(value.String); ok {
		d, err := value.NewDecimal(strings.TrimSpace(s.Value))
		if err != nil {
			return value.Null{}, nil
		}
		return d, nil
	}
	return value.Null{}, nil
}

func toStringValue(v value.Value) (value.Value, error) {
	return value.String{Value: v.String()}, nil
}

func toQuantityValue(v value.Value) (value.Value, error) {
	switch s := v.(type) {
	case value.Quantity:
		return s, nil
	case value.Ratio:
		if s.Denominator.Value.IsZero() {
			return value.Null{}, nil
		}
		return value.Quantity{Value: s.Numerator.Value.DivRound(s.Denominator.Value, 8), Unit: s.Numerator.Unit}, nil
	case value.Integer, value.Long, value.Decimal:
		d, _ := toDecimal(v)
		return value.Quantity{Value: d, Unit: "1"}, nil
	}
	return value.Null{}, nil
}

func (e *Engine) evalToBoolean(ctx context.Context, n *elm.ToBoolean, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, toBooleanValue)
}

func (e *Engine) evalToInteger(ctx context.Context, n *elm.ToInteger, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, toIntegerValue)
}

func (e *Engine) evalToLong(ctx context.Context, n *elm.ToLong, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, toLongValue)
}

func (e *Engine) evalToDecimal(ctx context.Context, n *elm.ToDecimal, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, toDecimalValue)
}

func (e *Engine) evalToString(ctx context.Context, n *elm.ToString, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, toStringValue)
}

func (e *Engine) evalToQuantity(ctx context.Context, n *elm.ToQuantity, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, toQuantityValue)
}

func (e *Engine) evalToConcept(ctx context.Context, n *elm.ToConcept, ec *EvaluationContext) (value.Value, error) {
	return e.convertUnary(ctx, n.Operand, ec, func(v value.Value) (value.Value, error) {
		switch s := v.(type) {
		case value.Concept:
			return s, nil
		case value.Code:
			return value.Concept{Codes: []value.Code{s}, Display: s.Display}, nil
		}
		return value.Null{}, nil
	})
}

func (e *Engine) evalToList(ctx context.Context, n *elm.ToList, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.List{}, nil
	}
	if elements, ok := asList(v); ok {
		return value.List{Elements: elements}, nil
	}
	return value.List{Elements: []value.Value{v}}, nil
}

func (e *Engine) evalToDate(ctx context.Context, n *elm.ToDate, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	switch s := v.(type) {
	case value.Date:
		return s, nil
	case value.DateTime:
		return value.Date{Year: s.Year, Month: s.Month, Day: s.Day}, nil
	case value.String:
		return parseDateString(s.Value)
	}
	return value.Null{}, nil
}

func (e *Engine) evalToDateTime(ctx context.Context, n *elm.ToDateTime, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	switch s := v.(type) {
	case value.DateTime:
		return s, nil
	case value.Date:
		return value.DateTime{Year: s.Year, Month: s.Month, Day: s.Day}, nil
	case value.String:
		return parseDateTimeString(s.Value)
	}
	return value.Null{}, nil
}

func (e *Engine) evalToTime(ctx context.Context, n *elm.ToTime, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	switch s := v.(type) {
	case value.Time:
		return s, nil
	case value.String:
		return parseTimeString(s.Value)
	}
	return value.Null{}, nil
}

func (e *Engine) convertUnary(ctx context.Context, operand elm.Expression, ec *EvaluationContext, f func(value.Value) (value.Value, error)) (value.Value, error) {
	v, err := e.evalOperand(ctx, operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	return f(v)
}

// parseDateString/parseDateTimeString/parseTimeString parse CQL's
// "YYYY-MM-DD"/"YYYY-MM-DDTHH:mm:ss.fff"/"HH:mm:ss.fff" textual forms,
// tolerating partial precision the way @-literals do.
func parseDateString(s string) (value.Value, error) {
	parts := strings.SplitN(s, "-", 3)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return value.Null{}, nil
	}
	d := value.Date{Year: year}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			d.Month = value.IntPtr(m)
		}
	}
	if len(parts) > 2 {
		if day, err := strconv.Atoi(parts[2]); err == nil {
			d.Day = value.IntPtr(day)
		}
	}
	return d, nil
}

func parseDateTimeString(s string) (value.Value, error) {
	datePart, timePart, hasTime := strings.Cut(s, "T")
	dv, _ := parseDateString(datePart)
	d := dv.(value.Date)
	dt := value.DateTime{Year: d.Year, Month: d.Month, Day: d.Day}
	if !hasTime {
		return dt, nil
	}
	tv, err := parseTimeString(timePart)
	if err != nil {
		return dt, nil
	}
	t := tv.(value.Time)
	dt.Hour = value.IntPtr(t.Hour)
	dt.Minute = t.Minute
	dt.Second = t.Second
	dt.Millisecond = t.Millisecond
	return dt, nil
}

func parseTimeString(s string) (value.Value, error) {
	s = strings.TrimSuffix(s, "Z")
	parts := strings.SplitN(s, ":", 3)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return value.Null{}, nil
	}
	t := value.Time{Hour: hour}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(parts[1]); err == nil {
			t.Minute = value.IntPtr(m)
		}
	}
	if len(parts) > 2 {
		secStr, msStr, hasMs := strings.Cut(parts[2], ".")
		if sec, err := strconv.Atoi(secStr); err == nil {
			t.Second = value.IntPtr(sec)
		}
		if hasMs {
			if ms, err := strconv.Atoi(msStr); err == nil {
				t.Millisecond = value.IntPtr(ms)
			}
		}
	}
	return t, nil
}
