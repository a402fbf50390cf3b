package provider

import (
	"context"

	"github.com/cwbudde/go-cql/internal/value"
)

// SliceRetriever is an in-memory DataRetriever backed by a fixed slice of
// instances per data type, registered ahead of evaluation. It performs no
// code filtering itself when codes are supplied -- callers needing
// code-aware filtering should pre-filter their registered instances, since
// this is a test/default stand-in, not a clinical data store.
type SliceRetriever struct {
	instances map[string][]value.Value
}

// NewSliceRetriever builds a retriever with an initial dataType -> instances
// mapping.
func NewSliceRetriever(instances map[string][]value.Value) *SliceRetriever {
	if instances == nil {
		instances = make(map[string][]value.Value)
	}
	return &SliceRetriever{instances: instances}
}

// Register adds instances for dataType, appending to any already present.
func (r *SliceRetriever) Register(dataType string, instances ...value.Value) {
	r.instances[dataType] = append(r.instances[dataType], instances...)
}

func (r *SliceRetriever) Retrieve(_ context.Context, dataType string, _ string, _ []value.Code) ([]value.Value, error) {
	return r.instances[dataType], nil
}
