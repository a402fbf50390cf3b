package semantic

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/types"
)

func TestResolverQualifiedVisibility(t *testing.T) {
	helpers := NewSymbolTable()
	helpers.Declare(&Symbol{Name: "PublicHelper", Kind: SymbolExpressionDef, Type: types.Integer, Access: AccessPublic})
	helpers.Declare(&Symbol{Name: "PrivateHelper", Kind: SymbolExpressionDef, Type: types.Integer, Access: AccessPrivate})

	own := NewSymbolTable()
	r := NewResolver("Main", own, map[string]*LibraryScope{
		"Helpers": {Name: "Helpers", Symbols: helpers},
	})

	if _, err := r.ResolveQualified("Helpers", "PublicHelper"); err != nil {
		t.Errorf("public symbol should resolve across libraries: %v", err)
	}
	if _, err := r.ResolveQualified("Helpers", "PrivateHelper"); err == nil {
		t.Error("private symbol in an included library must not be visible")
	}
	if _, err := r.ResolveQualified("Missing", "Anything"); err == nil {
		t.Error("expected error for unknown include alias")
	}
}

func TestResolverVisibleFromOwnLibrary(t *testing.T) {
	r := NewResolver("Main", NewSymbolTable(), nil)
	if !r.visibleFrom("Main", AccessPrivate) {
		t.Error("a private symbol must be visible from its own defining library")
	}
	if r.visibleFrom("Other", AccessPrivate) {
		t.Error("a private symbol in another library must not be visible")
	}
	if !r.visibleFrom("Other", AccessPublic) {
		t.Error("a public symbol in another library must be visible")
	}
}

func TestResolverIdentifierOrder(t *testing.T) {
	own := NewSymbolTable()
	own.Declare(&Symbol{Name: "X", Kind: SymbolExpressionDef, Type: types.String})
	r := NewResolver("Main", own, nil)

	scope := NewScope()
	scope.Bind("X", types.Integer)

	_, ty, err := r.ResolveIdentifier("X", scope)
	if err != nil {
		t.Fatalf("ResolveIdentifier: %v", err)
	}
	if !types.Equal(ty, types.Integer) {
		t.Errorf("local scope binding should shadow the library symbol: got %v, want Integer", ty)
	}

	_, ty, err = r.ResolveIdentifier("X", nil)
	if err != nil {
		t.Fatalf("ResolveIdentifier with no scope: %v", err)
	}
	if !types.Equal(ty, types.String) {
		t.Errorf("library symbol should resolve once no enclosing scope shadows it: got %v, want String", ty)
	}

	if _, _, err := r.ResolveIdentifier("Unknown", nil); err == nil {
		t.Error("expected error for unknown identifier")
	}
}
