// Package provider defines the three pluggable collaborator interfaces the
// evaluation engine is built against -- ModelProvider, DataRetriever, and
// TerminologyProvider -- plus minimal in-memory default implementations,
// grounded on DWScript's adapter_*.go thin-interface pattern
// (DESIGN.md: internal/provider entry). Real model/data/terminology
// backends are out of scope; only the contract and a usable stand-in live
// here.
package provider

import (
	"context"

	"github.com/cwbudde/go-cql/internal/types"
	"github.com/cwbudde/go-cql/internal/value"
)

// ModelProvider resolves a data-model type name (e.g. "Patient" in the
// "FHIR" model) to its structural Type, and resolves a named property
// access path on that type.
type ModelProvider interface {
	// ResolveType returns the structural type for a model class name within
	// the named model ("" selects the provider's default model).
	ResolveType(model, name string) (types.Type, bool)
	// ResolveProperty returns the type of property `path` on class `typeName`.
	ResolveProperty(model, typeName, path string) (types.Type, bool)
	// DefaultCodePath returns the property path `[TypeName: ...]` filters
	// codes on when the CQL source omits an explicit code property.
	DefaultCodePath(model, typeName string) string
}

// DataRetriever fetches clinical data instances matching a Retrieve.
type DataRetriever interface {
	// Retrieve returns every instance of dataType (optionally filtered to
	// the given terminology codes) visible in the current evaluation
	// context (e.g. the current Patient).
	Retrieve(ctx context.Context, dataType string, codePath string, codes []value.Code) ([]value.Value, error)
}

// TerminologyProvider answers code/value-set/code-system membership
// queries. Expand is used by the Expand operator when no in-memory
// expansion is cached by the caller.
type TerminologyProvider interface {
	InValueSet(ctx context.Context, code value.Code, valueSetID string) (bool, error)
	InCodeSystem(ctx context.Context, code value.Code, codeSystemID string) (bool, error)
	Expand(ctx context.Context, valueSetID string) ([]value.Code, error)
}
