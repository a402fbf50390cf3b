package types

import "testing"

func TestSubtypeNumericChain(t *testing.T) {
	if !Subtype(Integer, Long) {
		t.Error("Integer should be <: Long")
	}
	if !Subtype(Long, Decimal) {
		t.Error("Long should be <: Decimal")
	}
	if Subtype(Decimal, Integer) {
		t.Error("Decimal should not be <: Integer")
	}
}

func TestSubtypeTransitivity(t *testing.T) {
	// Testable property: A <: B ∧ B <: C ⇒ A <: C for every
	// triple drawn from the numeric chain plus List/Interval wrappers.
	triples := []struct{ a, b, c Type }{
		{Integer, Long, Decimal},
		{ListType{Integer}, ListType{Long}, ListType{Decimal}},
		{IntervalType{Integer}, IntervalType{Long}, IntervalType{Decimal}},
	}
	for _, tr := range triples {
		if !(Subtype(tr.a, tr.b) && Subtype(tr.b, tr.c)) {
			t.Fatalf("precondition failed for %v <: %v <: %v", tr.a, tr.b, tr.c)
		}
		if !Subtype(tr.a, tr.c) {
			t.Errorf("%v <: %v did not hold transitively", tr.a, tr.c)
		}
	}
}

func TestEveryTypeIsSubtypeOfAny(t *testing.T) {
	for _, ty := range []Type{Integer, String, Boolean, ListType{Decimal}, IntervalType{Date}} {
		if !Subtype(ty, Any) {
			t.Errorf("%v should be <: Any", ty)
		}
	}
}

func TestListSubtypeCovariant(t *testing.T) {
	if !Subtype(ListType{Integer}, ListType{Decimal}) {
		t.Error("List<Integer> should be <: List<Decimal>")
	}
	if Subtype(ListType{Decimal}, ListType{Integer}) {
		t.Error("List<Decimal> should not be <: List<Integer>")
	}
}

func TestPromotionCostMonotonicity(t *testing.T) {
	intToLong := PromotionCost(Integer, Long)
	intToDecimal := PromotionCost(Integer, Decimal)
	if intToLong < 0 || intToDecimal < 0 {
		t.Fatalf("expected promotions to exist, got %d, %d", intToLong, intToDecimal)
	}
	if !(intToLong < intToDecimal) {
		t.Errorf("Integer->Long (%d) should cost strictly less than Integer->Decimal (%d)", intToLong, intToDecimal)
	}
}

func TestPromotionCostSameTypeIsZero(t *testing.T) {
	if PromotionCost(String, String) != 0 {
		t.Error("same-type promotion should cost 0")
	}
}

func TestPromotionCostToAnyIsFive(t *testing.T) {
	if PromotionCost(String, Any) != 5 {
		t.Error("promotion to Any should cost 5")
	}
}

func TestPromotionCostNoMatch(t *testing.T) {
	if PromotionCost(String, Integer) >= 0 {
		t.Error("String->Integer should not have an implicit promotion")
	}
}

func TestCommonSupertypeNumeric(t *testing.T) {
	if got := CommonSupertype(Integer, Decimal); !Equal(got, Decimal) {
		t.Errorf("CommonSupertype(Integer, Decimal) = %v, want Decimal", got)
	}
}

func TestCommonSupertypeNoLUBIsAny(t *testing.T) {
	if got := CommonSupertype(String, Boolean); !Equal(got, Any) {
		t.Errorf("CommonSupertype(String, Boolean) = %v, want Any", got)
	}
}

func TestValidIntervalPoint(t *testing.T) {
	for _, ty := range []Type{Integer, Long, Decimal, String, Date, DateTime, Time, Quantity} {
		if !ValidIntervalPoint(ty) {
			t.Errorf("%v should be a valid interval point type", ty)
		}
	}
	if ValidIntervalPoint(Boolean) {
		t.Error("Boolean should not be a valid interval point type")
	}
}
