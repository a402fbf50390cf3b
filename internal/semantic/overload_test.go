package semantic

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/types"
)

func TestOverloadSetResolveCall(t *testing.T) {
	set := &OverloadSet{
		Name: "Combine",
		Signatures: []FunctionSignature{
			{Params: []types.Type{types.Integer, types.Integer}, Return: types.Integer},
			{Params: []types.Type{types.Decimal, types.Decimal}, Return: types.Decimal},
			{Params: []types.Type{types.String}, Return: types.String},
		},
	}

	tests := []struct {
		name    string
		args    []types.Type
		want    types.Type
		wantErr bool
	}{
		{"exact integer match", []types.Type{types.Integer, types.Integer}, types.Integer, false},
		{"integer promotes to decimal overload", []types.Type{types.Integer, types.Decimal}, types.Decimal, false},
		{"single string operand", []types.Type{types.String}, types.String, false},
		{"no arity match", []types.Type{types.Integer, types.Integer, types.Integer}, nil, true},
		{"no promotible match", []types.Type{types.String, types.Integer}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := set.ResolveCall(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveCall(%v) = %v, want error", tt.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCall(%v) unexpected error: %v", tt.args, err)
			}
			if !types.Equal(got.Return, tt.want) {
				t.Errorf("ResolveCall(%v).Return = %v, want %v", tt.args, got.Return, tt.want)
			}
		})
	}
}

func TestOverloadSetAmbiguous(t *testing.T) {
	// Two distinct signatures that happen to cost the same to reach from
	// Integer tie and must be rejected rather than silently picking one.
	tied := &OverloadSet{
		Name: "Tied",
		Signatures: []FunctionSignature{
			{Params: []types.Type{types.Decimal}, Return: types.Decimal},
			{Params: []types.Type{types.Decimal}, Return: types.Quantity},
		},
	}
	if _, err := tied.ResolveCall([]types.Type{types.Integer}); err == nil {
		t.Fatal("expected ambiguous overload error for tied candidates, got nil")
	}
}
