package semantic

import (
	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/provider"
	"github.com/cwbudde/go-cql/internal/types"
)

// LibraryLoader resolves an `include`'s path to the already-analyzed
// LibraryScope of another library, letting Analyze wire qualified
// cross-library resolution without owning a library cache itself -- the
// caller (pkg/cql, ultimately) is the one that knows how to turn a path
// into a *parsed, converted, analyzed* Library. A nil loader disables
// `include` resolution entirely: every included alias is reported
// unresolved.
type LibraryLoader func(path string) (*LibraryScope, bool)

func access(a elm.AccessLevel) Access {
	if a == elm.AccessPrivate {
		return AccessPrivate
	}
	return AccessPublic
}

// Analyze is the semantic layer's single entry point: it declares every
// top-level name in lib into a fresh SymbolTable (parameters, terminology
// defs, expression defs, function overloads), resolves `include` aliases
// through load, then runs the Inferrer over every ExpressionDef and
// non-external FunctionDef body to annotate result types and surface
// unknown-identifier/no-matching-overload/ambiguous-overload diagnostics --
// grounded on DWScript's Analyzer.Analyze(program) orchestration
// (internal/semantic/analyzer.go: declare-then-walk-then-validate, tolerant
// accumulation into one error list rather than aborting on the first
// failure) adapted from a statement-tree walk to a flat list of ELM
// top-level definitions.
//
// model/defaultModel are passed straight through to the Inferrer for
// Retrieve/Property type resolution; either may be zero-valued, in which
// case those nodes fall back to a structurally synthesized type.
func Analyze(lib *elm.Library, model provider.ModelProvider, defaultModel string, load LibraryLoader) (*SymbolTable, errors.List) {
	symbols := NewSymbolTable()

	for i := range lib.Parameters {
		p := &lib.Parameters[i]
		symbols.Declare(&Symbol{
			Name:   p.Name,
			Kind:   SymbolParameter,
			Type:   typeFromSpecifierOrAny(p.ParameterType, model, defaultModel),
			Access: access(p.AccessLevel),
		})
	}
	for i := range lib.CodeSystems {
		d := &lib.CodeSystems[i]
		symbols.Declare(&Symbol{Name: d.Name, Kind: SymbolCodeSystemDef, Type: types.Vocabulary, Access: access(d.AccessLevel)})
	}
	for i := range lib.ValueSets {
		d := &lib.ValueSets[i]
		symbols.Declare(&Symbol{Name: d.Name, Kind: SymbolValueSetDef, Type: types.Vocabulary, Access: access(d.AccessLevel)})
	}
	for i := range lib.Codes {
		d := &lib.Codes[i]
		symbols.Declare(&Symbol{Name: d.Name, Kind: SymbolCodeDef, Type: types.Code, Access: access(d.AccessLevel)})
	}
	for i := range lib.Concepts {
		d := &lib.Concepts[i]
		symbols.Declare(&Symbol{Name: d.Name, Kind: SymbolConceptDef, Type: types.Concept, Access: access(d.AccessLevel)})
	}
	for i := range lib.Statements {
		d := &lib.Statements[i]
		symbols.Declare(&Symbol{Name: d.Name, Kind: SymbolExpressionDef, Type: types.Any, Access: access(d.AccessLevel)})
	}

	var diagnostics errors.List
	includes := make(map[string]*LibraryScope, len(lib.Includes))
	for i := range lib.Includes {
		inc := &lib.Includes[i]
		alias := inc.LocalIdentifier
		if load == nil {
			diagnostics = append(diagnostics, errors.Newf(errors.KindSemantic, errors.CodeUnknownIdentifier, alias, "no library loader configured to resolve include %q", inc.Path))
			continue
		}
		scope, ok := load(inc.Path)
		if !ok {
			diagnostics = append(diagnostics, errors.Newf(errors.KindSemantic, errors.CodeUnknownIdentifier, alias, "cannot resolve included library %q", inc.Path))
			continue
		}
		includes[alias] = scope
	}

	// FunctionDefs are declared after includes (their signature's
	// TypeSpecifiers may themselves reference a model type) but before
	// inference runs, since a function may call another function declared
	// later in the same library -- CQL, like DWScript's DWScript symbol
	// table, allows forward reference among library-level definitions.
	inferrer := NewInferrer(NewResolver(lib.Identifier.ID, symbols, includes), model, defaultModel)
	for i := range lib.Functions {
		f := &lib.Functions[i]
		sig := FunctionSignature{
			Params: make([]types.Type, len(f.Operands)),
			Return: typeFromSpecifierOrAny(f.ResultTypeSpecifier, model, defaultModel),
			Fluent: f.Fluent,
		}
		for j, op := range f.Operands {
			sig.Params[j] = typeFromSpecifierOrAny(op.OperandType, model, defaultModel)
		}
		symbols.DeclareFunction(f.Name, sig)
	}

	for i := range lib.Statements {
		d := &lib.Statements[i]
		inferrer.SetDefinition(d.Name)
		t := inferrer.Infer(d.Expression, NewScope())
		if sym, ok := symbols.Lookup(d.Name); ok {
			sym.Type = t
		}
	}
	for i := range lib.Functions {
		f := &lib.Functions[i]
		if f.External {
			continue
		}
		inferrer.SetDefinition(f.Name)
		scope := NewScope()
		for _, op := range f.Operands {
			scope.Bind(op.Name, typeFromSpecifierOrAny(op.OperandType, model, defaultModel))
		}
		inferrer.Infer(f.Expression, scope)
	}

	diagnostics = append(diagnostics, inferrer.Diagnostics()...)
	return symbols, diagnostics
}

// AsLibraryScope packages an already-Analyzed library's symbols for use as
// another library's include target, e.g. `includes[alias] = AsLibraryScope(name, symbols)`.
// pkg/cql analyzes a single library and does not call it.
func AsLibraryScope(libraryName string, symbols *SymbolTable) *LibraryScope {
	return &LibraryScope{Name: libraryName, Symbols: symbols}
}

func typeFromSpecifierOrAny(spec elm.TypeSpecifier, model provider.ModelProvider, defaultModel string) types.Type {
	if spec.IsZero() {
		return types.Any
	}
	inf := NewInferrer(nil, model, defaultModel)
	return inf.FromSpecifier(spec)
}
