package elm

// TypeSpecifier is the ELM spelling of a type reference, distinct from a
// resolved types.Type: it is source-level syntax ("{urn:hl7-org:elm-types:r1}Integer",
// "ListTypeSpecifier", "IntervalTypeSpecifier", "TupleTypeSpecifier",
// "ChoiceTypeSpecifier", "NamedTypeSpecifier") that the semantic layer
// resolves into a types.Type. Zero value means "unspecified".
type TypeSpecifier struct {
	Kind      string           `json:"type,omitempty"` // "NamedTypeSpecifier", "ListTypeSpecifier", ...
	Name      string           `json:"name,omitempty"`
	ElementType *TypeSpecifier `json:"elementType,omitempty"`
	PointType   *TypeSpecifier `json:"pointType,omitempty"`
	ChoiceTypes []TypeSpecifier `json:"choice,omitempty"`
	TupleElements []TupleTypeElement `json:"element,omitempty"`
}

// TupleTypeElement is one named field of a TupleTypeSpecifier.
type TupleTypeElement struct {
	Name string        `json:"name"`
	Type TypeSpecifier `json:"elementType"`
}

// IsZero reports whether t is the unspecified TypeSpecifier.
func (t TypeSpecifier) IsZero() bool {
	return t.Kind == "" && t.Name == ""
}

// NamedType builds a qualified-name TypeSpecifier, e.g. NamedType("{urn:hl7-org:elm-types:r1}Integer").
func NamedType(name string) TypeSpecifier {
	return TypeSpecifier{Kind: "NamedTypeSpecifier", Name: name}
}

// ListOf builds a ListTypeSpecifier.
func ListOf(elem TypeSpecifier) TypeSpecifier {
	return TypeSpecifier{Kind: "ListTypeSpecifier", ElementType: &elem}
}

// IntervalOf builds an IntervalTypeSpecifier.
func IntervalOf(point TypeSpecifier) TypeSpecifier {
	return TypeSpecifier{Kind: "IntervalTypeSpecifier", PointType: &point}
}

// System type-name constants, the qualified URIs the converter emits for
// primitive literals.
const (
	SystemBoolean  = "{urn:hl7-org:elm-types:r1}Boolean"
	SystemInteger  = "{urn:hl7-org:elm-types:r1}Integer"
	SystemLong     = "{urn:hl7-org:elm-types:r1}Long"
	SystemDecimal  = "{urn:hl7-org:elm-types:r1}Decimal"
	SystemString   = "{urn:hl7-org:elm-types:r1}String"
	SystemDate     = "{urn:hl7-org:elm-types:r1}Date"
	SystemDateTime = "{urn:hl7-org:elm-types:r1}DateTime"
	SystemTime     = "{urn:hl7-org:elm-types:r1}Time"
	SystemQuantity = "{urn:hl7-org:elm-types:r1}Quantity"
	SystemAny      = "{urn:hl7-org:elm-types:r1}Any"
)
