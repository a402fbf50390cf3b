package convert

import (
	"encoding/json"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-cql/internal/ast"
)

// TestConvertLibrarySnapshot pins the converter's ELM JSON output for a
// small representative library, the way DWScript pins interpreter
// output for its script fixtures (internal/interp/fixture_test.go).
func TestConvertLibrarySnapshot(t *testing.T) {
	lib := &ast.Library{
		Identifier: ast.VersionedIdentifier{ID: "SnapshotExample", Version: "1.0.0"},
		Contexts:   []*ast.ContextDef{{Name: "Patient"}},
		Expressions: []*ast.ExpressionDef{
			{
				Name:    "InRange",
				Context: "Patient",
				Body: &ast.Between{
					Operand: &ast.Identifier{Name: "Measurement"},
					Low:     intLit("1"),
					High:    intLit("10"),
				},
			},
			{
				Name:    "TotalCost",
				Context: "Patient",
				Body: &ast.Query{
					Sources: []ast.AliasedSource{{Source: &ast.Identifier{Name: "Claims"}, Alias: "C"}},
					Aggregate: &ast.AggregateClause{
						Accumulator: "Total",
						Starting:    intLit("0"),
						Body: &ast.BinaryOp{
							Op:   "+",
							Left: &ast.Identifier{Name: "Total"},
							Right: &ast.Property{
								Source: &ast.Identifier{Name: "C"},
								Name:   "amount",
							},
						},
					},
				},
			},
		},
	}

	c := New(nil)
	out := c.ConvertLibrary(lib)

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		t.Fatalf("marshal ELM library: %v", err)
	}
	snaps.MatchSnapshot(t, string(raw))
}
