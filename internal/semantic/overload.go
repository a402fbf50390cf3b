package semantic

import (
	"fmt"

	"github.com/cwbudde/go-cql/internal/types"
)

// FunctionSignature is one candidate overload: parameter types in order
// plus its return type.
type FunctionSignature struct {
	Params []types.Type
	Return types.Type
	Fluent bool
}

// OverloadSet is every declared signature for one function name, across a
// library and any libraries it includes.
type OverloadSet struct {
	Name       string
	Signatures []FunctionSignature
}

// ResolveCall picks the signature minimizing total promotion cost across
// argTypes, mirroring DWScript's overload_resolution.go: candidates are
// filtered to arity matches, each scored by summed per-parameter promotion
// cost, and the strictly-lowest-cost candidate wins; a tie is ambiguous.
// Unlike DWScript, there is no default-parameter handling -- CQL
// functions have no optional parameters (DESIGN.md).
func (set *OverloadSet) ResolveCall(argTypes []types.Type) (*FunctionSignature, error) {
	type scored struct {
		sig  *FunctionSignature
		cost int
	}
	var candidates []scored

	for i := range set.Signatures {
		sig := &set.Signatures[i]
		if len(sig.Params) != len(argTypes) {
			continue
		}
		total := 0
		ok := true
		for j, want := range sig.Params {
			cost := types.PromotionCost(argTypes[j], want)
			if cost < 0 {
				ok = false
				break
			}
			total += cost
		}
		if ok {
			candidates = append(candidates, scored{sig, total})
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("semantic: no matching overload for %s with %d argument(s)", set.Name, len(argTypes))
	}

	best := candidates[0]
	ambiguous := false
	for _, c := range candidates[1:] {
		switch {
		case c.cost < best.cost:
			best = c
			ambiguous = false
		case c.cost == best.cost:
			ambiguous = true
		}
	}
	if ambiguous {
		return nil, fmt.Errorf("semantic: ambiguous overload for %s: multiple candidates tie at cost %d", set.Name, best.cost)
	}
	return best.sig, nil
}
