package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestDateTimeCtorPartialPrecision(t *testing.T) {
	n := &elm.DateTimeCtor{Year: intLit(2020), Month: intLit(6)}
	got, ok := evalExpr(t, n).(value.DateTime)
	if !ok {
		t.Fatalf("DateTimeCtor did not return DateTime: %T", evalExpr(t, n))
	}
	if got.Year != 2020 || got.Month == nil || *got.Month != 6 || got.Day != nil {
		t.Errorf("DateTime(2020, 6) = %+v, want year=2020 month=6 day=nil", got)
	}
}

func TestDateCtorYearOnly(t *testing.T) {
	n := &elm.DateCtor{Year: intLit(1999)}
	got, ok := evalExpr(t, n).(value.Date)
	if !ok {
		t.Fatalf("DateCtor did not return Date: %T", evalExpr(t, n))
	}
	if got.Year != 1999 || got.Month != nil {
		t.Errorf("Date(1999) = %+v, want year=1999 month=nil", got)
	}
}

func TestDurationBetweenYears(t *testing.T) {
	n := &elm.DurationBetween{
		Operand:   [2]elm.Expression{&elm.DateCtor{Year: intLit(2000)}, &elm.DateCtor{Year: intLit(2010)}},
		Precision: "year",
	}
	if got := evalExpr(t, n); got != (value.Integer{Value: 10}) {
		t.Errorf("DurationBetween(2000, 2010, year) = %v, want 10", got)
	}
}

func TestSameAsAtYearPrecision(t *testing.T) {
	n := &elm.SameAs{
		Operand:   [2]elm.Expression{&elm.DateCtor{Year: intLit(2020), Month: intLit(1)}, &elm.DateCtor{Year: intLit(2020), Month: intLit(6)}},
		Precision: "year",
	}
	if got := evalExpr(t, n); got != (value.Boolean{Value: true}) {
		t.Errorf("SameAs(2020-01, 2020-06, year) = %v, want true", got)
	}
}

func TestSameAsAtMonthPrecisionDiffers(t *testing.T) {
	n := &elm.SameAs{
		Operand:   [2]elm.Expression{&elm.DateCtor{Year: intLit(2020), Month: intLit(1)}, &elm.DateCtor{Year: intLit(2020), Month: intLit(6)}},
		Precision: "month",
	}
	if got := evalExpr(t, n); got != (value.Boolean{Value: false}) {
		t.Errorf("SameAs(2020-01, 2020-06, month) = %v, want false", got)
	}
}

func TestCalculateAge(t *testing.T) {
	n := &elm.CalculateAge{Operand: &elm.DateCtor{Year: intLit(2000)}, Precision: "year"}
	e := newTestEngine()
	_, err := e.evalCalculateAge(nil, n, NewRootContext(nil))
	if err != nil {
		t.Errorf("CalculateAge errored: %v", err)
	}
}
