// Package cql is the public facade over go-cql's internal pipeline:
// convert an already-parsed CQL AST library to ELM, validate it
// semantically, then evaluate it against a pluggable clinical data source.
// The lexer/parser producing the ast.Library is an external collaborator;
// everything from conversion onward lives here behind two calls, Parse and
// Eval: a thin public package wrapping internal packages behind a
// parse-then-eval two-step API, with a public surface shaped like a real
// Go CQL engine's -- ParseConfig/EvalConfig, an opaque *ELM between the
// two calls, and every returned error wrapped so a caller only has to
// handle one error type.
package cql

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/go-cql/internal/ast"
	"github.com/cwbudde/go-cql/internal/convert"
	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/engine"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/provider"
	"github.com/cwbudde/go-cql/internal/semantic"
	"github.com/cwbudde/go-cql/internal/value"
)

// ParseConfig configures conversion and semantic validation of an
// already-parsed CQL library into evaluable ELM.
type ParseConfig struct {
	// Model resolves data-model type and property names (e.g. FHIR's
	// "Patient.birthDate") during semantic analysis and, later, evaluation.
	// May be nil, in which case Retrieve/Property nodes fall back to a
	// structurally synthesized type.
	Model provider.ModelProvider

	// DefaultModel is the data model name assumed for an unqualified
	// Retrieve/Property when the library declares exactly one `using`.
	DefaultModel string

	// Parameters binds library-level parameter defaults to caller-supplied
	// runtime values, overriding whatever default expression the CQL
	// declared. Keyed by parameter name; library-qualified parameter
	// references are not supported (DESIGN.md).
	Parameters map[string]value.Value

	// Loader resolves an `include` path to another already-Parsed library's
	// symbol scope. Nil disables include resolution: any `include` clause
	// is reported as an unresolved-identifier diagnostic.
	Loader semantic.LibraryLoader

	// Log receives conversion-time debug/warn messages (e.g. an
	// unrecognized operator name falling back to a generic FunctionRef).
	// Nil discards them.
	Log *logrus.Entry
}

// Parse lowers astLib to ELM and validates it semantically, returning an
// *ELM ready for Eval. Every error Parse returns is an *EngineError.
func Parse(astLib *ast.Library, config ParseConfig) (*ELM, error) {
	if astLib == nil {
		return nil, &EngineError{Library: "", Stage: StageConversion, Message: "cannot parse a nil library"}
	}
	lib := convert.New(config.Log).ConvertLibrary(astLib)
	return analyzeAndWrap(lib, config)
}

// ParseELM validates an already-converted ELM library semantically,
// skipping the AST/convert stage -- the entry point for a caller (cmd/cql)
// that has no CQL lexer/parser/converter front end of its own and only ever
// receives ELM directly, rather than CQL source text.
func ParseELM(lib *elm.Library, config ParseConfig) (*ELM, error) {
	if lib == nil {
		return nil, &EngineError{Library: "", Stage: StageSemantic, Message: "cannot parse a nil library"}
	}
	return analyzeAndWrap(lib, config)
}

func analyzeAndWrap(lib *elm.Library, config ParseConfig) (*ELM, error) {
	_, diagnostics := semantic.Analyze(lib, config.Model, config.DefaultModel, config.Loader)
	if len(diagnostics) > 0 {
		return nil, &EngineError{Library: lib.Identifier.ID, Stage: StageSemantic, Diagnostics: diagnostics}
	}
	return &ELM{library: lib, params: config.Parameters}, nil
}

// EvalConfig configures one evaluation run of an already-Parsed library.
type EvalConfig struct {
	// Model is passed through to Retrieve's clinical-type resolution;
	// ordinarily the same ModelProvider given to ParseConfig.
	Model provider.ModelProvider

	// Data answers Retrieve calls. May be nil if the library being
	// evaluated never retrieves clinical data (a pure-computation
	// library); a Retrieve against a nil Data is a KindEvaluation error,
	// not a silently empty result.
	Data provider.DataRetriever

	// Terminology answers InValueSet/InCodeSystem/value-set expansion.
	// May be nil if the library never queries terminology membership.
	Terminology provider.TerminologyProvider
}

// ELM is one parsed, converted, and semantically validated CQL library.
type ELM struct {
	library *elm.Library
	params  map[string]value.Value
}

// Library exposes the converted ELM tree, e.g. for JSON serialization
// independent of evaluation.
func (e *ELM) Library() *elm.Library {
	return e.library
}

// Eval evaluates every public, context-matching top-level definition in the
// library against one context instance (e.g. one Patient; nil for a
// Population-context or parameter-only library), tolerant of per-definition
// evaluation failures -- one bad definition's error does not prevent the
// others from returning a result (DESIGN.md's tolerant-library-evaluation
// Open Question decision). A non-nil error is always an *EngineError whose
// Diagnostics names exactly the definitions that failed; results still
// holds every definition that succeeded.
func (e *ELM) Eval(ctx context.Context, contextValue value.Value, config EvalConfig) (map[string]value.Value, error) {
	eng := e.newEngine(config)
	results, evalErrs := eng.EvaluateLibrary(ctx, contextValue)
	if len(evalErrs) > 0 {
		return results, &EngineError{Library: e.library.Identifier.ID, Stage: StageEvaluation, Diagnostics: evalErrs}
	}
	return results, nil
}

// EvalDefinition evaluates a single named top-level definition, the
// single-result counterpart to Eval for a caller (e.g. cmd/cql) that only
// needs one expression's value.
func (e *ELM) EvalDefinition(ctx context.Context, name string, contextValue value.Value, config EvalConfig) (value.Value, error) {
	eng := e.newEngine(config)
	v, err := eng.EvaluateDefinition(ctx, name, contextValue)
	if err != nil {
		return nil, &EngineError{Library: e.library.Identifier.ID, Stage: StageEvaluation, Diagnostics: errors.List{asEngineDiagnostic(name, err)}}
	}
	return v, nil
}

func (e *ELM) newEngine(config EvalConfig) *engine.Engine {
	eng := engine.New(e.library, config.Model, config.Data, config.Terminology)
	for name, v := range e.params {
		eng.SetParameter(name, v)
	}
	return eng
}

func asEngineDiagnostic(definition string, err error) *errors.Error {
	if ee, ok := err.(*errors.Error); ok {
		return ee
	}
	return errors.Newf(errors.KindEvaluation, errors.CodeInternal, definition, "%v", err)
}

// Stage names which pipeline step an EngineError came from.
type Stage int

const (
	StageConversion Stage = iota
	StageSemantic
	StageEvaluation
)

func (s Stage) String() string {
	switch s {
	case StageConversion:
		return "conversion"
	case StageSemantic:
		return "semantic analysis"
	case StageEvaluation:
		return "evaluation"
	default:
		return "unknown"
	}
}

// EngineError is the single error type every pkg/cql operation returns,
// following the google/cql reference's "every propagated error is a
// result.EngineError" contract: callers never need to type-switch over
// *errors.Error/ast errors/panics, only over which Stage failed and what
// Diagnostics it carries.
type EngineError struct {
	Library     string
	Stage       Stage
	Message     string      // set only when Diagnostics is empty (e.g. a nil-library Parse call)
	Diagnostics errors.List // the underlying per-definition errors.Error values, if any
}

func (e *EngineError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("%s: %s failed: %s", e.Library, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Library, e.Stage, e.Diagnostics)
}

// Unwrap exposes the first underlying *errors.Error, letting callers use
// errors.As to inspect its Kind/Code without unpacking Diagnostics by hand.
func (e *EngineError) Unwrap() error {
	if len(e.Diagnostics) == 0 {
		return nil
	}
	return e.Diagnostics[0]
}
