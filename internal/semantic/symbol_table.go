// Package semantic implements CQL's static layer: symbol tables across
// lexical scopes and included libraries, function overload resolution by
// promotion-cost minimization, and result-type inference over ELM
// expressions -- grounded directly on DWScript's symbol_table.go and
// overload_resolution.go (DESIGN.md: internal/semantic entry), adapted from
// DWScript's case-insensitive lookup to CQL's case-sensitive identifiers and
// without DWScript's default-parameter ambiguity handling (CQL functions
// have no default parameters).
package semantic

import "github.com/cwbudde/go-cql/internal/types"

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymbolParameter SymbolKind = iota
	SymbolExpressionDef
	SymbolFunctionDef
	SymbolValueSetDef
	SymbolCodeSystemDef
	SymbolCodeDef
	SymbolConceptDef
)

// Access mirrors elm.AccessLevel without importing elm (avoids a semantic
// -> elm -> semantic import cycle risk as the converter grows).
type Access int

const (
	AccessPublic Access = iota
	AccessPrivate
)

// Symbol is one library-level declaration: a parameter, expression def,
// function def, or terminology def.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Type   types.Type // nil for FunctionDef, which is multi-signature (see OverloadSet)
	Access Access
}

// SymbolTable is a single library's flat namespace of top-level
// declarations, keyed case-sensitively: CQL identifiers are
// case-sensitive, unlike DWScript's Pascal-style case folding.
type SymbolTable struct {
	symbols   map[string]*Symbol
	overloads map[string]*OverloadSet
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols:   make(map[string]*Symbol),
		overloads: make(map[string]*OverloadSet),
	}
}

// Declare adds a non-function symbol. It is the caller's responsibility to
// reject a duplicate declaration before calling Declare (CQL's
// converter totality property assumes well-formed, non-duplicate AST).
func (t *SymbolTable) Declare(sym *Symbol) {
	t.symbols[sym.Name] = sym
}

// Lookup finds a non-function symbol by exact name.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// DeclareFunction adds one overload of a (possibly overloaded) function
// name.
func (t *SymbolTable) DeclareFunction(name string, sig FunctionSignature) {
	set, ok := t.overloads[name]
	if !ok {
		set = &OverloadSet{Name: name}
		t.overloads[name] = set
	}
	set.Signatures = append(set.Signatures, sig)
}

// LookupFunction finds the overload set for a function name.
func (t *SymbolTable) LookupFunction(name string) (*OverloadSet, bool) {
	set, ok := t.overloads[name]
	return set, ok
}
