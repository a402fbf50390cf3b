// Package engine implements CQL's evaluation engine: reducing a converted
// ELM expression tree to a runtime value.Value against a pluggable clinical
// data source, following DWScript's single recursive dispatcher
// (internal/interp/interpreter.go's Eval) generalized from DWScript's
// statement/expression AST to ELM's ~150-node expression tree, and the
// teacher's enclosed-Environment pattern (internal/interp/environment.go)
// generalized to EvaluationContext.
package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/provider"
	"github.com/cwbudde/go-cql/internal/value"
)

// maxRecursionDepth guards against runaway recursive definitions (a define
// that (transitively) references itself) and pathologically deep ELM trees,
// mirroring DWScript's stack-depth guards in function-call evaluation.
const maxRecursionDepth = 500

// Engine evaluates one compiled library's statements. It is built once per
// library and reused across contexts (e.g. once per Patient), but is not
// safe for concurrent use from multiple goroutines -- callers evaluating
// many patients concurrently should build one Engine per goroutine, or guard
// calls to Evaluate/EvaluateDefinition with their own lock.
type Engine struct {
	library *elm.Library

	definitions map[string]*elm.ExpressionDef
	functions   map[string]*elm.FunctionDef
	params      map[string]value.Value

	model provider.ModelProvider
	data  provider.DataRetriever
	term  provider.TerminologyProvider

	log *logrus.Logger

	depth int
	memo  map[string]value.Value
}

// New builds an Engine for lib. model/data/term may be nil; Retrieve and
// terminology-membership operators then fail with a KindEvaluation error
// rather than silently returning empty results.
func New(lib *elm.Library, model provider.ModelProvider, data provider.DataRetriever, term provider.TerminologyProvider) *Engine {
	e := &Engine{
		library:     lib,
		definitions: make(map[string]*elm.ExpressionDef, len(lib.Statements)),
		functions:   make(map[string]*elm.FunctionDef, len(lib.Functions)),
		params:      make(map[string]value.Value),
		model:       model,
		data:        data,
		term:        term,
		log:         logrus.StandardLogger(),
		memo:        make(map[string]value.Value),
	}
	for i := range lib.Statements {
		def := &lib.Statements[i]
		e.definitions[def.Name] = def
	}
	for i := range lib.Functions {
		fn := &lib.Functions[i]
		e.functions[fn.Name] = fn
	}
	return e
}

// SetParameter binds a library parameter's runtime value, overriding its ELM
// default expression.
func (e *Engine) SetParameter(name string, v value.Value) {
	e.params[name] = v
}

// EvaluateDefinition evaluates the named top-level `define` against
// contextValue (e.g. one Patient instance; nil for a Population-context or
// parameter-only definition). Results are memoized per Engine instance for
// the lifetime of the current context -- call ResetMemo when switching to a
// new context instance.
func (e *Engine) EvaluateDefinition(ctx context.Context, name string, contextValue value.Value) (result value.Value, err error) {
	def, ok := e.definitions[name]
	if !ok {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUndefinedExpr, name, "no such definition: %s", name)
	}
	if cached, ok := e.memo[name]; ok {
		return cached, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.KindEvaluation, errors.CodeInternal, name, "panic during evaluation: %v", r)
		}
	}()

	root := NewRootContext(contextValue)
	v, err := e.Evaluate(ctx, def.Expression, root)
	if err != nil {
		return nil, err
	}
	e.memo[name] = v
	return v, nil
}

// ResetMemo clears per-definition memoized results, for reuse of an Engine
// instance against a new context value (e.g. the next Patient).
func (e *Engine) ResetMemo() {
	e.memo = make(map[string]value.Value)
}

// EvaluateLibrary evaluates every public, context-matching top-level
// definition tolerantly: one definition's error does not abort the others,
// following google/cql's result.Libraries map shape (DESIGN.md's Open
// Question decision on tolerant library evaluation).
func (e *Engine) EvaluateLibrary(ctx context.Context, contextValue value.Value) (map[string]value.Value, errors.List) {
	e.ResetMemo()
	results := make(map[string]value.Value, len(e.library.Statements))
	var errs errors.List
	for _, def := range e.library.Statements {
		if def.AccessLevel == elm.AccessPrivate {
			continue
		}
		v, err := e.EvaluateDefinition(ctx, def.Name, contextValue)
		if err != nil {
			if ee, ok := err.(*errors.Error); ok {
				errs = append(errs, ee)
			} else {
				errs = append(errs, errors.Newf(errors.KindEvaluation, errors.CodeInternal, def.Name, "%v", err))
			}
			continue
		}
		results[def.Name] = v
	}
	return results, errs
}

// Evaluate reduces e to a Value in scope ec. This is the engine's single
// recursive entry point, mirroring Interpreter.Eval's type switch.
func (e *Engine) Evaluate(ctx context.Context, n elm.Expression, ec *EvaluationContext) (value.Value, error) {
	if n == nil {
		return value.Null{}, nil
	}
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxRecursionDepth {
		return nil, errors.New(errors.KindEvaluation, errors.CodeRecursionLimit, "", "maximum evaluation recursion depth exceeded")
	}

	switch n := n.(type) {
	// --- literals & constructors ---
	case *elm.Literal:
		return e.evalLiteral(n)
	case *elm.Null:
		return value.Null{}, nil
	case *elm.Quantity:
		return e.evalQuantityLiteral(n)
	case *elm.Interval:
		return e.evalIntervalLiteral(ctx, n, ec)
	case *elm.List:
		return e.evalListLiteral(ctx, n, ec)
	case *elm.Tuple:
		return e.evalTupleLiteral(ctx, n, ec)
	case *elm.Instance:
		return e.evalInstanceLiteral(ctx, n, ec)

	// --- references ---
	case *elm.ExpressionRef:
		return e.evalExpressionRef(ctx, n, ec)
	case *elm.FunctionRef:
		return e.evalFunctionRef(ctx, n, ec)
	case *elm.ParameterRef:
		return e.evalParameterRef(n)
	case *elm.OperandRef:
		return e.resolveOrNull(n.Name, ec), nil
	case *elm.AliasRef:
		return e.resolveOrNull(n.Name, ec), nil
	case *elm.QueryLetRef:
		return e.resolveOrNull(n.Name, ec), nil
	case *elm.CodeRef:
		return e.evalCodeRef(n)
	case *elm.ConceptRef:
		return e.evalConceptRef(n)
	case *elm.ValueSetRef, *elm.CodeSystemRef:
		return value.Null{}, nil
	case *elm.IdentifierRef:
		return e.evalIdentifierRef(ctx, n, ec)
	case *elm.Property:
		return e.evalProperty(ctx, n, ec)
	case *elm.Indexer:
		return e.evalIndexer(ctx, n, ec)

	// --- control flow ---
	case *elm.If:
		return e.evalIf(ctx, n, ec)
	case *elm.Case:
		return e.evalCase(ctx, n, ec)

	// --- logical / nullological ---
	case *elm.And:
		return e.evalAnd(ctx, n, ec)
	case *elm.Or:
		return e.evalOr(ctx, n, ec)
	case *elm.Xor:
		return e.evalXor(ctx, n, ec)
	case *elm.Implies:
		return e.evalImplies(ctx, n, ec)
	case *elm.Not:
		return e.evalNot(ctx, n, ec)
	case *elm.IsNull:
		return e.evalIsNull(ctx, n, ec)
	case *elm.IsTrue:
		return e.evalIsTrue(ctx, n, ec)
	case *elm.IsFalse:
		return e.evalIsFalse(ctx, n, ec)
	case *elm.Coalesce:
		return e.evalCoalesce(ctx, n, ec)

	// --- comparison ---
	case *elm.Equal:
		return e.evalEqual(ctx, &n.BinaryExpression, ec, false)
	case *elm.Equivalent:
		return e.evalEqual(ctx, &n.BinaryExpression, ec, true)
	case *elm.NotEqual:
		return e.evalNotEqual(ctx, n, ec)
	case *elm.Less:
		return e.evalOrderingCompare(ctx, &n.BinaryExpression, ec, orderLess)
	case *elm.LessOrEqual:
		return e.evalOrderingCompare(ctx, &n.BinaryExpression, ec, orderLessOrEqual)
	case *elm.Greater:
		return e.evalOrderingCompare(ctx, &n.BinaryExpression, ec, orderGreater)
	case *elm.GreaterOrEqual:
		return e.evalOrderingCompare(ctx, &n.BinaryExpression, ec, orderGreaterOrEqual)

	// --- arithmetic ---
	case *elm.Add:
		return e.evalArithmetic(ctx, &n.BinaryExpression, ec, opAdd)
	case *elm.Subtract:
		return e.evalArithmetic(ctx, &n.BinaryExpression, ec, opSubtract)
	case *elm.Multiply:
		return e.evalArithmetic(ctx, &n.BinaryExpression, ec, opMultiply)
	case *elm.Divide:
		return e.evalDivide(ctx, n, ec)
	case *elm.TruncatedDivide:
		return e.evalArithmetic(ctx, &n.BinaryExpression, ec, opTruncatedDivide)
	case *elm.Modulo:
		return e.evalArithmetic(ctx, &n.BinaryExpression, ec, opModulo)
	case *elm.Power:
		return e.evalArithmetic(ctx, &n.BinaryExpression, ec, opPower)
	case *elm.Log:
		return e.evalLog(ctx, n, ec)
	case *elm.Negate:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opNegate)
	case *elm.Abs:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opAbs)
	case *elm.Ceiling:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opCeiling)
	case *elm.Floor:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opFloor)
	case *elm.Truncate:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opTruncate)
	case *elm.Exp:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opExp)
	case *elm.Ln:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opLn)
	case *elm.Successor:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opSuccessor)
	case *elm.Predecessor:
		return e.evalUnaryArithmetic(ctx, &n.UnaryExpression, ec, opPredecessor)
	case *elm.Round:
		return e.evalRound(ctx, n, ec)
	case *elm.MinValue:
		return e.evalMinMaxValue(n.ValueType, true)
	case *elm.MaxValue:
		return e.evalMinMaxValue(n.ValueType, false)

	// --- string ---
	case *elm.Concatenate:
		return e.evalConcatenate(ctx, n, ec)
	case *elm.Combine:
		return e.evalCombine(ctx, n, ec)
	case *elm.Split:
		return e.evalSplit(ctx, n, ec)
	case *elm.SplitOnMatches:
		return e.evalSplitOnMatches(ctx, n, ec)
	case *elm.Length:
		return e.evalLength(ctx, n, ec)
	case *elm.Upper:
		return e.evalStringCase(ctx, &n.UnaryExpression, ec, true)
	case *elm.Lower:
		return e.evalStringCase(ctx, &n.UnaryExpression, ec, false)
	case *elm.PositionOf:
		return e.evalPositionOf(ctx, n, ec, false)
	case *elm.LastPositionOf:
		return e.evalPositionOf(ctx, &elm.PositionOf{BinaryExpression: n.BinaryExpression}, ec, true)
	case *elm.StartsWith:
		return e.evalStartsEndsWith(ctx, n, ec, true)
	case *elm.EndsWith:
		return e.evalStartsEndsWith(ctx, &elm.StartsWith{BinaryExpression: n.BinaryExpression}, ec, false)
	case *elm.Matches:
		return e.evalMatches(ctx, n, ec)
	case *elm.Substring:
		return e.evalSubstring(ctx, n, ec)
	case *elm.ReplaceMatches:
		return e.evalReplaceMatches(ctx, n, ec)

	// --- temporal ---
	case *elm.DateTimeCtor:
		return e.evalDateTimeCtor(ctx, n, ec)
	case *elm.DateCtor:
		return e.evalDateCtor(ctx, n, ec)
	case *elm.TimeCtor:
		return e.evalTimeCtor(ctx, n, ec)
	case *elm.Now:
		return e.evalNow()
	case *elm.Today:
		return e.evalToday()
	case *elm.TimeOfDay:
		return e.evalTimeOfDay()
	case *elm.DateFrom:
		return e.evalDateFrom(ctx, n, ec)
	case *elm.TimeFrom:
		return e.evalTimeFrom(ctx, n, ec)
	case *elm.TimezoneOffsetFrom:
		return e.evalTimezoneOffsetFrom(ctx, n, ec)
	case *elm.DateTimeComponentFrom:
		return e.evalDateTimeComponentFrom(ctx, n, ec)
	case *elm.DurationBetween:
		return e.evalDurationBetween(ctx, n, ec)
	case *elm.DifferenceBetween:
		return e.evalDifferenceBetween(ctx, n, ec)
	case *elm.SameAs:
		return e.evalSameAs(ctx, n, ec)
	case *elm.SameOrBefore:
		return e.evalSameOrBefore(ctx, n, ec)
	case *elm.SameOrAfter:
		return e.evalSameOrAfter(ctx, n, ec)
	case *elm.CalculateAge:
		return e.evalCalculateAge(ctx, n, ec)
	case *elm.CalculateAgeAt:
		return e.evalCalculateAgeAt(ctx, n, ec)

	// --- interval / list set operators ---
	case *elm.In:
		return e.evalIn(ctx, n, ec)
	case *elm.Contains:
		return e.evalContains(ctx, n, ec)
	case *elm.Includes:
		return e.evalIncludes(ctx, n.Operand, n.Precision, ec, false)
	case *elm.IncludedIn:
		return e.evalIncludedIn(ctx, n.Operand, n.Precision, ec, false)
	case *elm.ProperlyIncludes:
		return e.evalIncludes(ctx, n.Operand, n.Precision, ec, true)
	case *elm.ProperlyIncludedIn:
		return e.evalIncludedIn(ctx, n.Operand, n.Precision, ec, true)
	case *elm.Before:
		return e.evalBeforeAfter(ctx, n.Operand, n.Precision, ec, true)
	case *elm.After:
		return e.evalBeforeAfter(ctx, n.Operand, n.Precision, ec, false)
	case *elm.Meets:
		return e.evalMeets(ctx, n, ec)
	case *elm.MeetsBefore:
		return e.evalMeetsBeforeAfter(ctx, n.Operand, n.Precision, ec, true)
	case *elm.MeetsAfter:
		return e.evalMeetsBeforeAfter(ctx, n.Operand, n.Precision, ec, false)
	case *elm.Overlaps:
		return e.evalOverlaps(ctx, n, ec)
	case *elm.OverlapsBefore:
		return e.evalOverlapsBeforeAfter(ctx, n.Operand, n.Precision, ec, true)
	case *elm.OverlapsAfter:
		return e.evalOverlapsBeforeAfter(ctx, n.Operand, n.Precision, ec, false)
	case *elm.Starts:
		return e.evalStarts(ctx, n, ec)
	case *elm.Ends:
		return e.evalEnds(ctx, n, ec)
	case *elm.Union:
		return e.evalUnion(ctx, n, ec)
	case *elm.Intersect:
		return e.evalIntersect(ctx, n, ec)
	case *elm.Except:
		return e.evalExcept(ctx, n, ec)
	case *elm.Start:
		return e.evalStart(ctx, n, ec)
	case *elm.End:
		return e.evalEnd(ctx, n, ec)
	case *elm.Width:
		return e.evalWidth(ctx, n, ec)
	case *elm.PointFrom:
		return e.evalPointFrom(ctx, n, ec)
	case *elm.Collapse:
		return e.evalCollapse(ctx, n, ec)
	case *elm.Expand:
		return e.evalExpand(ctx, n, ec)

	// --- list ---
	case *elm.Exists:
		return e.evalExists(ctx, n, ec)
	case *elm.First:
		return e.evalFirst(ctx, n, ec)
	case *elm.Last:
		return e.evalLast(ctx, n, ec)
	case *elm.SingletonFrom:
		return e.evalSingletonFrom(ctx, n, ec)
	case *elm.IndexOf:
		return e.evalIndexOf(ctx, n, ec)
	case *elm.Distinct:
		return e.evalDistinct(ctx, n, ec)
	case *elm.Flatten:
		return e.evalFlatten(ctx, n, ec)
	case *elm.Slice:
		return e.evalSlice(ctx, n, ec)
	case *elm.Sort:
		return e.evalSort(ctx, n, ec)
	case *elm.ForEach:
		return e.evalForEach(ctx, n, ec)
	case *elm.Repeat:
		return e.evalRepeat(ctx, n, ec)

	// --- aggregate ---
	case *elm.Count:
		return e.evalCount(ctx, n, ec)
	case *elm.Sum:
		return e.evalSum(ctx, n, ec)
	case *elm.Product:
		return e.evalProduct(ctx, n, ec)
	case *elm.Min:
		return e.evalMinAgg(ctx, n, ec)
	case *elm.Max:
		return e.evalMaxAgg(ctx, n, ec)
	case *elm.Avg:
		return e.evalAvg(ctx, n, ec)
	case *elm.Median:
		return e.evalMedian(ctx, n, ec)
	case *elm.Mode:
		return e.evalMode(ctx, n, ec)
	case *elm.StdDev:
		return e.evalStdDev(ctx, n, ec, false)
	case *elm.PopulationStdDev:
		return e.evalStdDev(ctx, &elm.StdDev{UnaryExpression: n.UnaryExpression}, ec, true)
	case *elm.Variance:
		return e.evalVariance(ctx, n, ec, false)
	case *elm.PopulationVariance:
		return e.evalVariance(ctx, &elm.Variance{UnaryExpression: n.UnaryExpression}, ec, true)
	case *elm.GeometricMean:
		return e.evalGeometricMean(ctx, n, ec)
	case *elm.AllTrue:
		return e.evalAllTrue(ctx, n, ec)
	case *elm.AnyTrue:
		return e.evalAnyTrue(ctx, n, ec)
	case *elm.Aggregate:
		return e.evalAggregateClause(ctx, n, ec)

	// --- query ---
	case *elm.Query:
		return e.evalQuery(ctx, n, ec)

	// --- type conversion ---
	case *elm.As:
		return e.evalAs(ctx, n, ec)
	case *elm.Is:
		return e.evalIs(ctx, n, ec)
	case *elm.Convert:
		return e.evalConvert(ctx, n, ec)
	case *elm.CanConvert:
		return e.evalCanConvert(ctx, n, ec)
	case *elm.ToBoolean:
		return e.evalToBoolean(ctx, n, ec)
	case *elm.ToInteger:
		return e.evalToInteger(ctx, n, ec)
	case *elm.ToLong:
		return e.evalToLong(ctx, n, ec)
	case *elm.ToDecimal:
		return e.evalToDecimal(ctx, n, ec)
	case *elm.ToString:
		return e.evalToString(ctx, n, ec)
	case *elm.ToDate:
		return e.evalToDate(ctx, n, ec)
	case *elm.ToDateTime:
		return e.evalToDateTime(ctx, n, ec)
	case *elm.ToTime:
		return e.evalToTime(ctx, n, ec)
	case *elm.ToConcept:
		return e.evalToConcept(ctx, n, ec)
	case *elm.ToList:
		return e.evalToList(ctx, n, ec)
	case *elm.ToQuantity:
		return e.evalToQuantity(ctx, n, ec)

	// --- clinical ---
	case *elm.Retrieve:
		return e.evalRetrieve(ctx, n, ec)
	case *elm.InCodeSystem:
		return e.evalInCodeSystem(ctx, n, ec)
	case *elm.InValueSet:
		return e.evalInValueSet(ctx, n, ec)
	case *elm.AnyInValueSet:
		return e.evalAnyInValueSet(ctx, n, ec)
	case *elm.AnyInCodeSystem:
		return e.evalAnyInCodeSystem(ctx, n, ec)
	case *elm.Message:
		return e.evalMessage(ctx, n, ec)
	}

	return nil, errors.Newf(errors.KindEvaluation, errors.CodeUnsupported, "", "unsupported ELM node type: %s", n.ElmType())
}

// evalOperand evaluates a single operand, a small helper shared by every
// per-operator file to avoid repeating the Evaluate call-and-check pattern.
func (e *Engine) evalOperand(ctx context.Context, operand elm.Expression, ec *EvaluationContext) (value.Value, error) {
	if operand == nil {
		return value.Null{}, nil
	}
	return e.Evaluate(ctx, operand, ec)
}

// resolveOrNull resolves name in ec, returning Null if unbound -- used by
// the thin binding-reference nodes (OperandRef/AliasRef/QueryLetRef) whose
// only failure mode at evaluation time is a converter/semantic-layer bug,
// not a user-facing error.
func (e *Engine) resolveOrNull(name string, ec *EvaluationContext) value.Value {
	if v, ok := ec.Resolve(name); ok {
		return v
	}
	return value.Null{}
}

func internalf(definition, format string, args ...any) error {
	return errors.Internal(definition, fmt.Sprintf(format, args...))
}
