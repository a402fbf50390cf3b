package provider

import (
	"context"

	"github.com/cwbudde/go-cql/internal/value"
)

// NullTerminologyProvider answers every membership query false and every
// Expand empty, without error. Nothing installs it by default: an engine
// built with a nil TerminologyProvider keeps it nil, and InValueSet/
// InCodeSystem delegate fully to whatever TerminologyProvider is wired in
// (DESIGN.md).
type NullTerminologyProvider struct{}

func (NullTerminologyProvider) InValueSet(context.Context, value.Code, string) (bool, error) {
	return false, nil
}

func (NullTerminologyProvider) InCodeSystem(context.Context, value.Code, string) (bool, error) {
	return false, nil
}

func (NullTerminologyProvider) Expand(context.Context, string) ([]value.Code, error) {
	return nil, nil
}
