// Package elm implements the Expression Logical Model: the typed
// intermediate representation internal/convert lowers AST into and
// internal/engine evaluates. Every node follows DWScript's
// one-struct-per-kind convention (internal/jsonvalue/value.go), generalized
// from a flat value-kind enum to ELM's ~150-variant expression tree.
package elm

import "github.com/cwbudde/go-cql/internal/types"

// Element is the common envelope every ELM node carries: an optional
// localId (assigned by the converter, referenced by annotation/trace tooling)
// and a resultType filled in by the semantic layer, never by the converter.
type Element struct {
	LocalID    string      `json:"localId,omitempty"`
	ResultType types.Type  `json:"-"`
}

// Expression is the closed interface every ELM expression node implements.
// ElmType returns the node's HL7 ELM type tag (the JSON "type"/XML
// "xsi:type" discriminator, e.g. "Add", "ExpressionRef").
type Expression interface {
	ElmType() string
	element() *Element
}

// ResultType returns the node's annotated result type, or nil if the
// semantic layer has not yet run.
func ResultType(e Expression) types.Type {
	return e.element().ResultType
}

// SetResultType is used by the semantic layer's Inferrer to annotate a node
// in place.
func SetResultType(e Expression, t types.Type) {
	e.element().ResultType = t
}

// SetLocalID is used by internal/convert to assign the converter's
// monotonically increasing localId to a freshly built node.
func SetLocalID(e Expression, id string) {
	e.element().LocalID = id
}

// LocalID returns the node's converter-assigned local identifier.
func LocalID(e Expression) string {
	return e.element().LocalID
}

// Unary, Binary, Ternary, and Nary are the exported structural interfaces
// the thin wrapper node types satisfy via UnaryExpression/BinaryExpression/
// TernaryExpression/NaryExpression embedding. internal/semantic's Inferrer
// uses them to recurse into operand trees without a type-switch arm per
// wrapper type, mirroring json_marshal.go's internal dispatch.
type Unary interface {
	Expression
	UnaryOperand() Expression
}

type Binary interface {
	Expression
	BinaryOperands() [2]Expression
}

type Ternary interface {
	Expression
	TernaryOperands() [3]Expression
}

type Nary interface {
	Expression
	NaryOperands() []Expression
}
