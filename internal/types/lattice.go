package types

// numericRank orders the Integer <: Long <: Decimal numeric-widening chain.
// Free function, not a method on Type, mirroring DWScript's
// SignaturesEqual/isAmbiguous free-function style in
// internal/semantic/overload_resolution.go rather than growing the Type
// interface with every pairwise relation.
func numericRank(t Type) (rank int, ok bool) {
	p, isPrim := t.(Primitive)
	if !isPrim {
		return 0, false
	}
	switch p.Name {
	case "Integer":
		return 0, true
	case "Long":
		return 1, true
	case "Decimal":
		return 2, true
	default:
		return 0, false
	}
}

// Subtype reports whether a <: b under CQL's subtyping lattice:
// Integer <: Long <: Decimal; every T <: Any; List<A> <: List<B> iff A <: B;
// Interval<A> <: Interval<B> iff A <: B; T <: Choice<...,T,...>; Named
// equality is nominal.
func Subtype(a, b Type) bool {
	if Equal(a, b) {
		return true
	}
	if Equal(b, Any) {
		return true
	}
	if ar, aok := numericRank(a); aok {
		if br, bok := numericRank(b); bok {
			return ar <= br
		}
	}
	switch at := a.(type) {
	case ListType:
		if bt, ok := b.(ListType); ok {
			return Subtype(at.Element, bt.Element)
		}
	case IntervalType:
		if bt, ok := b.(IntervalType); ok {
			return Subtype(at.Point, bt.Point)
		}
	}
	if bc, ok := b.(ChoiceType); ok {
		for _, opt := range bc.Options {
			if Subtype(a, opt) {
				return true
			}
		}
	}
	return false
}

// PromotionCost returns the cost of implicitly converting a value of type
// from to a parameter of type to, for use in overload resolution.
// A negative result means no implicit conversion exists.
func PromotionCost(from, to Type) int {
	if Equal(from, to) {
		return 0
	}
	if fr, fok := numericRank(from); fok {
		if tr, tok := numericRank(to); tok && tr > fr {
			return tr - fr
		}
	}
	if _, isChoice := to.(ChoiceType); isChoice {
		if Subtype(from, to) {
			return 2
		}
	}
	if Equal(to, Any) {
		return 5
	}
	if lf, lok := from.(ListType); lok {
		if lt, lok2 := to.(ListType); lok2 {
			inner := PromotionCost(lf.Element, lt.Element)
			if inner < 0 {
				return -1
			}
			return inner
		}
	}
	if ivf, ivok := from.(IntervalType); ivok {
		if ivt, ivok2 := to.(IntervalType); ivok2 {
			inner := PromotionCost(ivf.Point, ivt.Point)
			if inner < 0 {
				return -1
			}
			return inner
		}
	}
	return -1
}

// CommonSupertype returns the least upper bound of a and b, or Any when no
// tighter LUB exists.
func CommonSupertype(a, b Type) Type {
	if Equal(a, b) {
		return a
	}
	if ar, aok := numericRank(a); aok {
		if br, bok := numericRank(b); bok {
			if ar >= br {
				return a
			}
			return b
		}
	}
	if la, ok := a.(ListType); ok {
		if lb, ok2 := b.(ListType); ok2 {
			return ListType{Element: CommonSupertype(la.Element, lb.Element)}
		}
	}
	if ia, ok := a.(IntervalType); ok {
		if ib, ok2 := b.(IntervalType); ok2 {
			return IntervalType{Point: CommonSupertype(ia.Point, ib.Point)}
		}
	}
	return Any
}

// CommonSupertypeAll folds CommonSupertype across a non-empty slice of
// types, e.g. for `List {...}` element inference or `if`/`case` branch
// inference.
func CommonSupertypeAll(types []Type) Type {
	if len(types) == 0 {
		return Any
	}
	result := types[0]
	for _, t := range types[1:] {
		result = CommonSupertype(result, t)
	}
	return result
}
