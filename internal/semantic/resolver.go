package semantic

import (
	"fmt"

	"github.com/cwbudde/go-cql/internal/types"
)

// LibraryScope is the resolvable surface of one library: its own symbol
// table plus the alias it is included under by the library doing the
// resolving (alias is "" for the library being resolved itself).
type LibraryScope struct {
	Name    string
	Symbols *SymbolTable
}

// Resolver implements CQL's identifier resolution order: local
// lexical scope first, then the current library's parameters and
// expression/terminology defs, then qualified lookups into included
// libraries.
type Resolver struct {
	library   string
	symbols   *SymbolTable
	includes  map[string]*LibraryScope // alias -> included library
}

// NewResolver builds a Resolver for one library's own symbol table plus its
// `include` aliases.
func NewResolver(libraryName string, symbols *SymbolTable, includes map[string]*LibraryScope) *Resolver {
	return &Resolver{library: libraryName, symbols: symbols, includes: includes}
}

// ResolveIdentifier resolves an unqualified name in resolution order: the
// local scope chain, then this library's own symbol table. It does not
// search included libraries -- those require an explicit qualifier.
func (r *Resolver) ResolveIdentifier(name string, scope *Scope) (*Symbol, types.Type, error) {
	if scope != nil {
		if t, ok := scope.Resolve(name); ok {
			return nil, t, nil
		}
	}
	if sym, ok := r.symbols.Lookup(name); ok {
		return sym, sym.Type, nil
	}
	if _, ok := r.symbols.LookupFunction(name); ok {
		return nil, nil, fmt.Errorf("semantic: %q names a function, not a value", name)
	}
	return nil, nil, fmt.Errorf("semantic: unknown identifier %q", name)
}

// ResolveQualified resolves `alias.Name` against an included library,
// enforcing the private-symbol visibility rule: a symbol declared private
// in the library defining it is visible only from within that same
// library, never through an include qualifier (restored from
// original_source's semantic/resolver.rs, DESIGN.md).
func (r *Resolver) ResolveQualified(alias, name string) (*Symbol, error) {
	lib, ok := r.includes[alias]
	if !ok {
		return nil, fmt.Errorf("semantic: no included library aliased %q", alias)
	}
	sym, ok := lib.Symbols.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("semantic: %q has no member %q", alias, name)
	}
	if !r.visibleFrom(lib.Name, sym.Access) {
		return nil, fmt.Errorf("semantic: %q.%q is private", alias, name)
	}
	return sym, nil
}

// ResolveQualifiedFunction is ResolveQualified's counterpart for function
// names, which live in a separate namespace (overload sets) from values.
func (r *Resolver) ResolveQualifiedFunction(alias, name string) (*OverloadSet, error) {
	lib, ok := r.includes[alias]
	if !ok {
		return nil, fmt.Errorf("semantic: no included library aliased %q", alias)
	}
	set, ok := lib.Symbols.LookupFunction(name)
	if !ok {
		return nil, fmt.Errorf("semantic: %q has no function %q", alias, name)
	}
	return set, nil
}

// visibleFrom reports whether a symbol declared in definingLib with the
// given access level is visible from r.library. A symbol is visible from
// its own defining library regardless of access; from any other library
// only if Public.
func (r *Resolver) visibleFrom(definingLib string, access Access) bool {
	if definingLib == r.library {
		return true
	}
	return access == AccessPublic
}
