// Package types implements CQL's static Type representation: the subtyping
// lattice, the implicit-promotion cost model used by overload resolution,
// and common-supertype (least-upper-bound) computation.
package types

import "fmt"

// Type is the closed interface implemented by every static type kind.
// New kinds are added here, never behind a separate registry, so that
// Subtype/PromotionCost/CommonSupertype stay exhaustive.
type Type interface {
	// String returns CQL's surface syntax for the type, e.g. "List<Integer>".
	String() string

	typeNode()
}

// Primitive is a named, leaf (non-parametric) type.
type Primitive struct {
	Name string
}

func (p Primitive) String() string { return p.Name }
func (Primitive) typeNode()        {}

// Well-known primitives. Integer/Long/Decimal/String/Boolean are the
// "primitives" group; Date/DateTime/Time are temporals;
// Quantity/Ratio/Code/Concept/Vocabulary are clinicals.
var (
	Any        Type = Primitive{Name: "Any"}
	Boolean    Type = Primitive{Name: "Boolean"}
	Integer    Type = Primitive{Name: "Integer"}
	Long       Type = Primitive{Name: "Long"}
	Decimal    Type = Primitive{Name: "Decimal"}
	String     Type = Primitive{Name: "String"}
	Date       Type = Primitive{Name: "Date"}
	DateTime   Type = Primitive{Name: "DateTime"}
	Time       Type = Primitive{Name: "Time"}
	Quantity   Type = Primitive{Name: "Quantity"}
	Ratio      Type = Primitive{Name: "Ratio"}
	Code       Type = Primitive{Name: "Code"}
	Concept    Type = Primitive{Name: "Concept"}
	Vocabulary Type = Primitive{Name: "Vocabulary"}
	Void       Type = Primitive{Name: "Void"}
)

// ListType is CQL's `List<Element>`.
type ListType struct {
	Element Type
}

func (l ListType) String() string { return fmt.Sprintf("List<%s>", l.Element) }
func (ListType) typeNode()        {}

// IntervalType is CQL's `Interval<Point>`. Point must be one of the ordered
// point types validated by ValidIntervalPoint.
type IntervalType struct {
	Point Type
}

func (i IntervalType) String() string { return fmt.Sprintf("Interval<%s>", i.Point) }
func (IntervalType) typeNode()        {}

// TupleType is CQL's `Tuple{name: Type, ...}`. Names preserves
// declaration order since two structurally-equal tuples with differently
// ordered fields are still the same type, but error messages and
// serialization want a stable order.
type TupleType struct {
	Names    []string
	Elements map[string]Type
}

func (t TupleType) String() string {
	s := "Tuple{"
	for i, n := range t.Names {
		if i > 0 {
			s += ", "
		}
		s += n + ": " + t.Elements[n].String()
	}
	return s + "}"
}
func (TupleType) typeNode() {}

// ChoiceType is CQL's `Choice<T1, T2, ...>`.
type ChoiceType struct {
	Options []Type
}

func (c ChoiceType) String() string {
	s := "Choice<"
	for i, o := range c.Options {
		if i > 0 {
			s += ", "
		}
		s += o.String()
	}
	return s + ">"
}
func (ChoiceType) typeNode() {}

// NamedType is a model type (e.g. FHIR's "Patient"), identified nominally by
// namespace + name.
type NamedType struct {
	Namespace string
	Name      string
}

func (n NamedType) String() string {
	if n.Namespace == "" {
		return n.Name
	}
	return n.Namespace + "." + n.Name
}
func (NamedType) typeNode() {}

// Equal reports whether two types are structurally/nominally identical
// (not merely mutual subtypes).
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Primitive:
		bp, ok := b.(Primitive)
		return ok && a.Name == bp.Name
	case ListType:
		bl, ok := b.(ListType)
		return ok && Equal(a.Element, bl.Element)
	case IntervalType:
		bi, ok := b.(IntervalType)
		return ok && Equal(a.Point, bi.Point)
	case TupleType:
		bt, ok := b.(TupleType)
		if !ok || len(a.Elements) != len(bt.Elements) {
			return false
		}
		for name, typ := range a.Elements {
			other, ok := bt.Elements[name]
			if !ok || !Equal(typ, other) {
				return false
			}
		}
		return true
	case ChoiceType:
		bc, ok := b.(ChoiceType)
		if !ok || len(a.Options) != len(bc.Options) {
			return false
		}
		for i := range a.Options {
			if !Equal(a.Options[i], bc.Options[i]) {
				return false
			}
		}
		return true
	case NamedType:
		bn, ok := b.(NamedType)
		return ok && a.Namespace == bn.Namespace && a.Name == bn.Name
	default:
		return false
	}
}

// ValidIntervalPoint reports whether t may be used as an Interval's point
// type: Interval point types must be ordered, one of Integer, Long,
// Decimal, String, Date, DateTime, Time, Quantity.
func ValidIntervalPoint(t Type) bool {
	p, ok := t.(Primitive)
	if !ok {
		return false
	}
	switch p.Name {
	case "Integer", "Long", "Decimal", "String", "Date", "DateTime", "Time", "Quantity":
		return true
	default:
		return false
	}
}
