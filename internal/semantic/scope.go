package semantic

import "github.com/cwbudde/go-cql/internal/types"

// ScopeKind records why a Scope frame exists, used only for diagnostics.
type ScopeKind int

const (
	ScopeFunction ScopeKind = iota
	ScopeQueryAlias
	ScopeQueryLet
	ScopeForEachElement
)

// Scope is one frame of a lexical scope chain: query aliases, `let`
// bindings, function operands, and `ForEach`/`Repeat` element bindings all
// push a Scope rather than mutating a single flat map, so a name always
// resolves to its nearest enclosing binding.
type Scope struct {
	kind   ScopeKind
	names  map[string]types.Type
	parent *Scope
}

// NewScope creates a root scope with no parent (library-level function
// bodies start here, chained to the library SymbolTable for outer names).
func NewScope() *Scope {
	return &Scope{names: make(map[string]types.Type)}
}

// Push returns a child scope layered on top of s.
func (s *Scope) Push(kind ScopeKind) *Scope {
	return &Scope{kind: kind, names: make(map[string]types.Type), parent: s}
}

// Bind introduces name into the current (innermost) frame only.
func (s *Scope) Bind(name string, t types.Type) {
	s.names[name] = t
}

// Resolve walks outward from s looking for name, returning the nearest
// enclosing binding.
func (s *Scope) Resolve(name string) (types.Type, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if t, ok := scope.names[name]; ok {
			return t, true
		}
	}
	return nil, false
}
