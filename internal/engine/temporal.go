package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// Date/DateTime/Time construction, extraction, and arithmetic, grounded on
// DWScript's builtins_datetime*.go family. CQL's partial-precision
// temporal model (internal/value/temporal.go) has no direct teacher
// analogue (DWScript dates are always fully specified), so construction and
// comparison here are newly built against the precision rules rather
// than adapted line-for-line.

func intOperand(ctx context.Context, e *Engine, expr elm.Expression, ec *EvaluationContext) (*int, bool, error) {
	if expr == nil {
		return nil, true, nil
	}
	v, err := e.evalOperand(ctx, expr, ec)
	if err != nil {
		return nil, false, err
	}
	if isNullValue(v) {
		return nil, true, nil
	}
	iv, ok := v.(value.Integer)
	if !ok {
		return nil, false, errInvalidOperand("", "temporal component must be Integer, got %T", v)
	}
	n := int(iv.Value)
	return &n, false, nil
}

func (e *Engine) evalDateTimeCtor(ctx context.Context, n *elm.DateTimeCtor, ec *EvaluationContext) (value.Value, error) {
	yearVal, err := e.evalOperand(ctx, n.Year, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(yearVal) {
		return value.Null{}, nil
	}
	year, ok := yearVal.(value.Integer)
	if !ok {
		return nil, errInvalidOperand("", "DateTime year must be Integer")
	}
	dt := value.DateTime{Year: int(year.Value)}
	for _, part := range []struct {
		expr elm.Expression
		dst  **int
	}{
		{n.Month, &dt.Month}, {n.Day, &dt.Day}, {n.Hour, &dt.Hour},
		{n.Minute, &dt.Minute}, {n.Second, &dt.Second}, {n.Millisecond, &dt.Millisecond},
	} {
		p, isNull, err := intOperand(ctx, e, part.expr, ec)
		if err != nil {
			return nil, err
		}
		if isNull {
			break
		}
		*part.dst = p
	}
	if n.TimezoneOffset != nil {
		offVal, err := e.evalOperand(ctx, n.TimezoneOffset, ec)
		if err != nil {
			return nil, err
		}
		if !isNullValue(offVal) {
			if d, ok := toDecimal(offVal); ok {
				minutes := int(d.Mul(decimal.NewFromInt(60)).IntPart())
				dt.OffsetMinute = value.IntPtr(minutes)
			}
		}
	}
	return dt, nil
}

func (e *Engine) evalDateCtor(ctx context.Context, n *elm.DateCtor, ec *EvaluationContext) (value.Value, error) {
	yearVal, err := e.evalOperand(ctx, n.Year, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(yearVal) {
		return value.Null{}, nil
	}
	year, ok := yearVal.(value.Integer)
	if !ok {
		return nil, errInvalidOperand("", "Date year must be Integer")
	}
	d := value.Date{Year: int(year.Value)}
	month, isNull, err := intOperand(ctx, e, n.Month, ec)
	if err != nil {
		return nil, err
	}
	if isNull {
		return d, nil
	}
	d.Month = month
	day, isNull, err := intOperand(ctx, e, n.Day, ec)
	if err != nil {
		return nil, err
	}
	if !isNull {
		d.Day = day
	}
	return d, nil
}

func (e *Engine) evalTimeCtor(ctx context.Context, n *elm.TimeCtor, ec *EvaluationContext) (value.Value, error) {
	hourVal, err := e.evalOperand(ctx, n.Hour, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(hourVal) {
		return value.Null{}, nil
	}
	hour, ok := hourVal.(value.Integer)
	if !ok {
		return nil, errInvalidOperand("", "Time hour must be Integer")
	}
	t := value.Time{Hour: int(hour.Value)}
	for _, part := range []struct {
		expr elm.Expression
		dst  **int
	}{{n.Minute, &t.Minute}, {n.Second, &t.Second}, {n.Millisecond, &t.Millisecond}} {
		p, isNull, err := intOperand(ctx, e, part.expr, ec)
		if err != nil {
			return nil, err
		}
		if isNull {
			break
		}
		*part.dst = p
	}
	return t, nil
}

func (e *Engine) evalNow() (value.Value, error) {
	n := time.Now()
	off := int(0)
	_, offSec := n.Zone()
	off = offSec / 60
	return value.DateTime{
		Year: n.Year(), Month: value.IntPtr(int(n.Month())), Day: value.IntPtr(n.Day()),
		Hour: value.IntPtr(n.Hour()), Minute: value.IntPtr(n.Minute()), Second: value.IntPtr(n.Second()),
		Millisecond: value.IntPtr(n.Nanosecond() / 1e6), OffsetMinute: value.IntPtr(off),
	}, nil
}

func (e *Engine) evalToday() (value.Value, error) {
	n := time.Now()
	return value.Date{Year: n.Year(), Month: value.IntPtr(int(n.Month())), Day: value.IntPtr(n.Day())}, nil
}

func (e *Engine) evalTimeOfDay() (value.Value, error) {
	n := time.Now()
	return value.Time{Hour: n.Hour(), Minute: value.IntPtr(n.Minute()), Second: value.IntPtr(n.Second()), Millisecond: value.IntPtr(n.Nanosecond() / 1e6)}, nil
}

func (e *Engine) evalDateFrom(ctx context.Context, n *elm.DateFrom, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	dt, ok := v.(value.DateTime)
	if !ok {
		return nil, errInvalidOperand("", "DateFrom requires a DateTime operand, got %T", v)
	}
	return dt.ToDate(), nil
}

func (e *Engine) evalTimeFrom(ctx context.Context, n *elm.TimeFrom, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	dt, ok := v.(value.DateTime)
	if !ok {
		return nil, errInvalidOperand("", "TimeFrom requires a DateTime operand, got %T", v)
	}
	if dt.Hour == nil {
		return value.Null{}, nil
	}
	return value.Time{Hour: *dt.Hour, Minute: dt.Minute, Second: dt.Second, Millisecond: dt.Millisecond}, nil
}

func (e *Engine) evalTimezoneOffsetFrom(ctx context.Context, n *elm.TimezoneOffsetFrom, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	dt, ok := v.(value.DateTime)
	if !ok || dt.OffsetMinute == nil {
		return value.Null{}, nil
	}
	return value.Decimal{Value: decimalFromMinutes(*dt.OffsetMinute)}, nil
}

func (e *Engine) evalDateTimeComponentFrom(ctx context.Context, n *elm.DateTimeComponentFrom, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	switch t := v.(type) {
	case value.Date:
		return dateComponent(t, n.Precision)
	case value.DateTime:
		return dateTimeComponent(t, n.Precision)
	case value.Time:
		return timeComponent(t, n.Precision)
	default:
		return nil, errInvalidOperand("", "DateTimeComponentFrom requires a temporal operand, got %T", v)
	}
}

func dateComponent(d value.Date, precision string) (value.Value, error) {
	switch precision {
	case "year":
		return value.Integer{Value: int32(d.Year)}, nil
	case "month":
		if d.Month == nil {
			return value.Null{}, nil
		}
		return value.Integer{Value: int32(*d.Month)}, nil
	case "day":
		if d.Day == nil {
			return value.Null{}, nil
		}
		return value.Integer{Value: int32(*d.Day)}, nil
	default:
		return value.Null{}, nil
	}
}

func dateTimeComponent(dt value.DateTime, precision string) (value.Value, error) {
	get := func(p *int) (value.Value, error) {
		if p == nil {
			return value.Null{}, nil
		}
		return value.Integer{Value: int32(*p)}, nil
	}
	switch precision {
	case "year":
		return value.Integer{Value: int32(dt.Year)}, nil
	case "month":
		return get(dt.Month)
	case "day":
		return get(dt.Day)
	case "hour":
		return get(dt.Hour)
	case "minute":
		return get(dt.Minute)
	case "second":
		return get(dt.Second)
	case "millisecond":
		return get(dt.Millisecond)
	case "timezoneOffset":
		if dt.OffsetMinute == nil {
			return value.Null{}, nil
		}
		return value.Decimal{Value: decimalFromMinutes(*dt.OffsetMinute)}, nil
	default:
		return value.Null{}, nil
	}
}

func timeComponent(t value.Time, precision string) (value.Value, error) {
	get := func(p *int) (value.Value, error) {
		if p == nil {
			return value.Null{}, nil
		}
		return value.Integer{Value: int32(*p)}, nil
	}
	switch precision {
	case "hour":
		return value.Integer{Value: int32(t.Hour)}, nil
	case "minute":
		return get(t.Minute)
	case "second":
		return get(t.Second)
	case "millisecond":
		return get(t.Millisecond)
	default:
		return value.Null{}, nil
	}
}

// componentsToDateTime converts a Date/DateTime/Time to a common
// millisecond-resolution component tuple for arithmetic/comparison,
// defaulting absent lower components to their minimum (per CQL's
// comparison-with-uncertainty rule, callers check precision before trusting
// equality at a finer grain than both operands specify).
type temporalComponents struct {
	year, month, day, hour, minute, second, millis int
	precision                                      value.Precision
}

func componentsOf(v value.Value) (temporalComponents, bool) {
	switch t := v.(type) {
	case value.Date:
		c := temporalComponents{year: t.Year, month: 1, day: 1, precision: t.Precision()}
		if t.Month != nil {
			c.month = *t.Month
		}
		if t.Day != nil {
			c.day = *t.Day
		}
		return c, true
	case value.DateTime:
		c := temporalComponents{year: t.Year, month: 1, day: 1, precision: t.Precision()}
		if t.Month != nil {
			c.month = *t.Month
		}
		if t.Day != nil {
			c.day = *t.Day
		}
		if t.Hour != nil {
			c.hour = *t.Hour
		}
		if t.Minute != nil {
			c.minute = *t.Minute
		}
		if t.Second != nil {
			c.second = *t.Second
		}
		if t.Millisecond != nil {
			c.millis = *t.Millisecond
		}
		return c, true
	case value.Time:
		c := temporalComponents{precision: t.Precision()}
		c.hour = t.Hour
		if t.Minute != nil {
			c.minute = *t.Minute
		}
		if t.Second != nil {
			c.second = *t.Second
		}
		if t.Millisecond != nil {
			c.millis = *t.Millisecond
		}
		return c, true
	default:
		return temporalComponents{}, false
	}
}

func compareDateComponents(aYear int, aMonth, aDay *int, bYear int, bMonth, bDay *int) int {
	if aYear != bYear {
		return cmpInt(aYear, bYear)
	}
	if aMonth == nil || bMonth == nil {
		return 0
	}
	if *aMonth != *bMonth {
		return cmpInt(*aMonth, *bMonth)
	}
	if aDay == nil || bDay == nil {
		return 0
	}
	return cmpInt(*aDay, *bDay)
}

func compareDateTime(a, b value.DateTime) int {
	ac, _ := componentsOf(a)
	bc, _ := componentsOf(b)
	return compareComponents(ac, bc)
}

func compareTime(a, b value.Time) int {
	ac, _ := componentsOf(a)
	bc, _ := componentsOf(b)
	return compareComponents(ac, bc)
}

func compareComponents(a, b temporalComponents) int {
	fields := [][2]int{
		{a.year, b.year}, {a.month, b.month}, {a.day, b.day},
		{a.hour, b.hour}, {a.minute, b.minute}, {a.second, b.second}, {a.millis, b.millis},
	}
	for _, f := range fields {
		if c := cmpInt(f[0], f[1]); c != 0 {
			return c
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Engine) evalDurationBetween(ctx context.Context, n *elm.DurationBetween, ec *EvaluationContext) (value.Value, error) {
	return e.spanBetween(ctx, n.Operand, n.Precision, ec, true)
}

func (e *Engine) evalDifferenceBetween(ctx context.Context, n *elm.DifferenceBetween, ec *EvaluationContext) (value.Value, error) {
	return e.spanBetween(ctx, n.Operand, n.Precision, ec, false)
}

// spanBetween computes DurationBetween (completed units) or
// DifferenceBetween (calendar boundary count) between two temporal
// operands at the requested precision.
func (e *Engine) spanBetween(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, duration bool) (value.Value, error) {
	a, err := e.evalOperand(ctx, operands[0], ec)
	if err != nil {
		return nil, err
	}
	b, err := e.evalOperand(ctx, operands[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(a, b) {
		return value.Null{}, nil
	}
	ac, ok1 := componentsOf(a)
	bc, ok2 := componentsOf(b)
	if !ok1 || !ok2 {
		return nil, errInvalidOperand("", "DurationBetween/DifferenceBetween requires temporal operands")
	}
	diff := componentDelta(ac, bc, precision, duration)
	return value.Integer{Value: int32(diff)}, nil
}

// componentDelta subtracts component-by-component at the requested
// precision. The "difference" form counts calendar-boundary crossings
// (e.g. December 31 to January 1 is one month apart); the "duration" form
// counts only fully-elapsed units -- both degrade to the same count when
// only the requested precision's component differs.
func componentDelta(a, b temporalComponents, precision string, duration bool) int {
	if duration && precision != "millisecond" {
		if precision == "week" {
			return componentDelta(a, b, "day", true) / 7
		}
		delta := componentDelta(a, b, precision, false)
		af := [7]int{a.year, a.month, a.day, a.hour, a.minute, a.second, a.millis}
		bf := [7]int{b.year, b.month, b.day, b.hour, b.minute, b.second, b.millis}
		cmp := 0
		for i := map[string]int{"year": 1, "month": 2, "day": 3, "hour": 4, "minute": 5, "second": 6}[precision]; i > 0 && i < 7 && cmp == 0; i++ {
			cmp = cmpInt(bf[i], af[i])
		}
		if delta*cmp < 0 {
			delta -= cmpInt(delta, 0)
		}
		return delta
	}
	months := func(c temporalComponents) int { return c.year*12 + (c.month - 1) }
	switch precision {
	case "year":
		return b.year - a.year
	case "month":
		return months(b) - months(a)
	case "week":
		return dayDelta(a, b) / 7
	case "day":
		return dayDelta(a, b)
	case "hour":
		return dayDelta(a, b)*24 + (b.hour - a.hour)
	case "minute":
		return (dayDelta(a, b)*24+(b.hour-a.hour))*60 + (b.minute - a.minute)
	case "second":
		return ((dayDelta(a, b)*24+(b.hour-a.hour))*60+(b.minute-a.minute))*60 + (b.second - a.second)
	case "millisecond":
		secs := ((dayDelta(a, b)*24+(b.hour-a.hour))*60+(b.minute-a.minute))*60 + (b.second - a.second)
		return secs*1000 + (b.millis - a.millis)
	default:
		return 0
	}
}

func dayDelta(a, b temporalComponents) int {
	toTime := func(c temporalComponents) time.Time {
		return time.Date(c.year, time.Month(c.month), c.day, 0, 0, 0, 0, time.UTC)
	}
	return int(toTime(b).Sub(toTime(a)).Hours() / 24)
}

func (e *Engine) evalSameAs(ctx context.Context, n *elm.SameAs, ec *EvaluationContext) (value.Value, error) {
	return e.temporalComparisonAtPrecision(ctx, n.Operand, n.Precision, ec, sameAsCompare)
}

func (e *Engine) evalSameOrBefore(ctx context.Context, n *elm.SameOrBefore, ec *EvaluationContext) (value.Value, error) {
	return e.temporalComparisonAtPrecision(ctx, n.Operand, n.Precision, ec, sameOrBeforeCompare)
}

func (e *Engine) evalSameOrAfter(ctx context.Context, n *elm.SameOrAfter, ec *EvaluationContext) (value.Value, error) {
	return e.temporalComparisonAtPrecision(ctx, n.Operand, n.Precision, ec, sameOrAfterCompare)
}

type precisionCompare func(cmp int) bool

func sameAsCompare(cmp int) bool      { return cmp == 0 }
func sameOrBeforeCompare(cmp int) bool { return cmp <= 0 }
func sameOrAfterCompare(cmp int) bool  { return cmp >= 0 }

func (e *Engine) temporalComparisonAtPrecision(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, pred precisionCompare) (value.Value, error) {
	a, err := e.evalOperand(ctx, operands[0], ec)
	if err != nil {
		return nil, err
	}
	b, err := e.evalOperand(ctx, operands[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(a, b) {
		return value.Null{}, nil
	}
	ac, ok1 := componentsOf(a)
	bc, ok2 := componentsOf(b)
	if !ok1 || !ok2 {
		return nil, errInvalidOperand("", "temporal comparison requires temporal operands")
	}
	cmp := compareComponents(ac, bc)
	return value.Boolean{Value: pred(cmp)}, nil
}

func (e *Engine) evalCalculateAge(ctx context.Context, n *elm.CalculateAge, ec *EvaluationContext) (value.Value, error) {
	born, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(born) {
		return value.Null{}, nil
	}
	now, _ := e.evalNow()
	return e.ageBetween(born, now, n.Precision)
}

func (e *Engine) evalCalculateAgeAt(ctx context.Context, n *elm.CalculateAgeAt, ec *EvaluationContext) (value.Value, error) {
	born, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	asOf, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(born, asOf) {
		return value.Null{}, nil
	}
	return e.ageBetween(born, asOf, n.Precision)
}

func (e *Engine) ageBetween(born, asOf value.Value, precision string) (value.Value, error) {
	if precision == "" {
		precision = "year"
	}
	bc, ok1 := componentsOf(born)
	ac, ok2 := componentsOf(asOf)
	if !ok1 || !ok2 {
		return nil, errInvalidOperand("", "CalculateAge requires temporal operands")
	}
	return value.Integer{Value: int32(componentDelta(bc, ac, precision, true))}, nil
}

// decimalFromMinutes converts a timezone offset in minutes to the decimal
// hours CQL's timezoneOffset component and TimezoneOffsetFrom report.
func decimalFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
