package engine

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/value"
)

func TestToDecimalWidensNumericKinds(t *testing.T) {
	if d, ok := toDecimal(value.Integer{Value: 5}); !ok || !d.Equal(decimal.NewFromInt(5)) {
		t.Errorf("toDecimal(Integer(5)) = %v, %v", d, ok)
	}
	if _, ok := toDecimal(value.String{Value: "5"}); ok {
		t.Error("toDecimal(String) should fail")
	}
}

func TestFromDecimalAtRankRoundTrips(t *testing.T) {
	got, err := fromDecimalAtRank(decimal.NewFromInt(7), 0)
	if err != nil || got != (value.Integer{Value: 7}) {
		t.Errorf("fromDecimalAtRank(7, Integer rank) = %v, %v, want Integer(7), nil", got, err)
	}
	got, err = fromDecimalAtRank(decimal.NewFromInt(7), 2)
	if err != nil || got != (value.Decimal{Value: decimal.NewFromInt(7)}) {
		t.Errorf("fromDecimalAtRank(7, Decimal rank) = %v, %v, want Decimal(7), nil", got, err)
	}
}

func TestFromDecimalAtRankOverflows(t *testing.T) {
	huge := decimal.NewFromInt(math.MaxInt32).Add(decimal.NewFromInt(1))
	if _, err := fromDecimalAtRank(huge, 0); err == nil {
		t.Error("fromDecimalAtRank(MaxInt32+1, Integer rank) should overflow")
	}
	hugeLong := decimal.NewFromInt(math.MaxInt64)
	hugeLong = hugeLong.Add(hugeLong)
	if _, err := fromDecimalAtRank(hugeLong, 1); err == nil {
		t.Error("fromDecimalAtRank(2*MaxInt64, Long rank) should overflow")
	}
	if _, err := fromDecimalAtRank(decimal.NewFromInt(42), 1); err != nil {
		t.Errorf("fromDecimalAtRank(42, Long rank) should not overflow, got %v", err)
	}
}

func TestAnyNullDetectsNullOrNilInterface(t *testing.T) {
	if !anyNull(value.Integer{Value: 1}, value.Null{}) {
		t.Error("anyNull should detect an explicit Null among arguments")
	}
	if anyNull(value.Integer{Value: 1}, value.Integer{Value: 2}) {
		t.Error("anyNull should be false when nothing is null")
	}
}

func TestAsBooleanTreatsNonBooleanAsNull(t *testing.T) {
	if _, null := asBoolean(value.Integer{Value: 1}); !null {
		t.Error("asBoolean(Integer) should report null (type mismatch)")
	}
	if b, null := asBoolean(value.Boolean{Value: true}); null || !b {
		t.Errorf("asBoolean(true) = %v, %v, want true, false", b, null)
	}
}

func TestAsListOnNullReportsNullNotFalse(t *testing.T) {
	_, ok := asList(value.Null{})
	if !ok {
		t.Error("asList(Null) should report ok=true (null propagation, not a type mismatch)")
	}
}
