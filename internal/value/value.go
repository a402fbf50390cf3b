// Package value implements CQL's runtime Value model: a tagged union of
// Null, Boolean, Integer, Long, Decimal, String, Date, DateTime, Time,
// Quantity, Ratio, Code, Concept, Interval, List, and Tuple, following the
// teacher's one-struct-per-kind Value interface (internal/interp/value.go)
// rather than a single shared struct.
package value

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies a Value's runtime variant.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindLong
	KindDecimal
	KindString
	KindDate
	KindDateTime
	KindTime
	KindQuantity
	KindRatio
	KindCode
	KindConcept
	KindInterval
	KindList
	KindTuple
)

func (k Kind) String() string {
	names := [...]string{
		"Null", "Boolean", "Integer", "Long", "Decimal", "String",
		"Date", "DateTime", "Time", "Quantity", "Ratio", "Code", "Concept",
		"Interval", "List", "Tuple",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Value is the runtime value interface. It deliberately avoids a generic
// interface{} payload: every variant is its own Go type with its own
// invariant-bearing fields.
type Value interface {
	Kind() Kind
	String() string
}

// IsNull reports whether v is Null or nil (the Go zero value for Value,
// treated identically to an explicit Null).
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Null is the sole representative of CQL's "unknown". It is never equal to
// itself under `=` -- comparison operators special-case it rather than
// relying on Go equality.
type Null struct{}

func (Null) Kind() Kind      { return KindNull }
func (Null) String() string  { return "null" }

// Boolean wraps a bool.
type Boolean struct{ Value bool }

func (Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// Integer is a 32-bit signed integer.
type Integer struct{ Value int32 }

func (Integer) Kind() Kind        { return KindInteger }
func (i Integer) String() string  { return fmt.Sprintf("%d", i.Value) }

// Long is a 64-bit signed integer.
type Long struct{ Value int64 }

func (Long) Kind() Kind       { return KindLong }
func (l Long) String() string { return fmt.Sprintf("%d", l.Value) }

// Decimal is an arbitrary-precision decimal preserving scale (scale is the
// number of fractional digits; Precision(d) returns scale).
// shopspring/decimal already tracks an explicit base-10 exponent, which is
// exactly this scale, so no custom bignum type is needed.
type Decimal struct{ Value decimal.Decimal }

func (Decimal) Kind() Kind        { return KindDecimal }
func (d Decimal) String() string  { return d.Value.String() }

// Scale returns the number of fractional digits retained by d, i.e.
// CQL's Precision(d).
func (d Decimal) Scale() int32 {
	exp := d.Value.Exponent()
	if exp >= 0 {
		return 0
	}
	return -exp
}

// NewDecimal builds a Decimal value from a string, preserving its scale
// exactly (e.g. "1.50" keeps two fractional digits).
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Value: d}, nil
}

// String is a UTF-8 string, indexed by Unicode scalar rather than byte.
type String struct{ Value string }

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return s.Value }

// Runes returns the string's Unicode scalar values, the unit CQL's
// Length/Substring/indexing operators index by.
func (s String) Runes() []rune { return []rune(s.Value) }

// Code is a terminology code.
type Code struct {
	Code    string
	System  string
	Version string // optional; "" means absent
	Display string // optional; "" means absent
}

func (Code) Kind() Kind { return KindCode }
func (c Code) String() string {
	return fmt.Sprintf("Code { code: %q, system: %q }", c.Code, c.System)
}

// Concept is a non-empty list of Code plus an optional display.
type Concept struct {
	Codes   []Code
	Display string
}

func (Concept) Kind() Kind { return KindConcept }
func (c Concept) String() string {
	parts := make([]string, len(c.Codes))
	for i, code := range c.Codes {
		parts[i] = code.String()
	}
	return "Concept { codes: [" + strings.Join(parts, ", ") + "] }"
}

// Quantity is a decimal value with an optional UCUM unit string.
type Quantity struct {
	Value decimal.Decimal
	Unit  string // "" means unitless
}

func (Quantity) Kind() Kind { return KindQuantity }
func (q Quantity) String() string {
	if q.Unit == "" {
		return q.Value.String()
	}
	return fmt.Sprintf("%s '%s'", q.Value.String(), q.Unit)
}

// Ratio is a numerator/denominator pair of Quantity.
type Ratio struct {
	Numerator   Quantity
	Denominator Quantity
}

func (Ratio) Kind() Kind { return KindRatio }
func (r Ratio) String() string {
	return fmt.Sprintf("%s:%s", r.Numerator.String(), r.Denominator.String())
}

// List is an ordered, possibly-heterogeneous sequence. ElementHint is a
// type hint only -- elements may be heterogeneous Any regardless of it.
type List struct {
	ElementHint string
	Elements    []Value
}

func (List) Kind() Kind { return KindList }
func (l List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Tuple is an ordered mapping from element name to Value, preserving
// insertion order for serialization.
type Tuple struct {
	Names  []string
	Values map[string]Value
}

func (Tuple) Kind() Kind { return KindTuple }
func (t Tuple) String() string {
	parts := make([]string, len(t.Names))
	for i, n := range t.Names {
		parts[i] = fmt.Sprintf("%s: %s", n, t.Values[n].String())
	}
	return "Tuple {" + strings.Join(parts, ", ") + "}"
}

// Get returns the named element and whether it was present.
func (t Tuple) Get(name string) (Value, bool) {
	v, ok := t.Values[name]
	return v, ok
}
