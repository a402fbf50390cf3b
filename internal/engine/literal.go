package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/value"
)

// Literal/constructor/reference evaluation, grounded on DWScript's
// evalIdentifier chain-lookup (internal/interp/interpreter.go) for the
// binding-reference nodes, generalized from a single Environment chain to
// CQL's several distinct reference kinds (ExpressionRef/ParameterRef/
// OperandRef/AliasRef/QueryLetRef/CodeRef/ConceptRef).

func (e *Engine) evalLiteral(n *elm.Literal) (value.Value, error) {
	switch n.ValueType {
	case elm.SystemBoolean, "Boolean":
		return value.Boolean{Value: n.Value == "true"}, nil
	case elm.SystemInteger, "Integer":
		i, err := strconv.ParseInt(n.Value, 10, 32)
		if err != nil {
			return nil, errors.Newf(errors.KindEvaluation, errors.CodeInvalidOperand, "", "invalid Integer literal %q: %v", n.Value, err)
		}
		return value.Integer{Value: int32(i)}, nil
	case elm.SystemLong, "Long":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, errors.Newf(errors.KindEvaluation, errors.CodeInvalidOperand, "", "invalid Long literal %q: %v", n.Value, err)
		}
		return value.Long{Value: i}, nil
	case elm.SystemDecimal, "Decimal":
		d, err := value.NewDecimal(n.Value)
		if err != nil {
			return nil, errors.Newf(errors.KindEvaluation, errors.CodeInvalidOperand, "", "invalid Decimal literal %q: %v", n.Value, err)
		}
		return d, nil
	case elm.SystemString, "String":
		return value.String{Value: n.Value}, nil
	default:
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUnsupported, "", "unsupported literal valueType %q", n.ValueType)
	}
}

func (e *Engine) evalQuantityLiteral(n *elm.Quantity) (value.Value, error) {
	return value.Quantity{Value: decimal.NewFromFloat(n.Value), Unit: n.Unit}, nil
}

func (e *Engine) evalIntervalLiteral(ctx context.Context, n *elm.Interval, ec *EvaluationContext) (value.Value, error) {
	iv := value.Interval{LowClosed: n.LowClosed, HighClosed: n.HighClosed}
	if n.Low != nil {
		low, err := e.evalOperand(ctx, n.Low, ec)
		if err != nil {
			return nil, err
		}
		if !isNullValue(low) {
			iv.Low = low
			iv.PointType = pointTypeName(low)
		}
	}
	if n.High != nil {
		high, err := e.evalOperand(ctx, n.High, ec)
		if err != nil {
			return nil, err
		}
		if !isNullValue(high) {
			iv.High = high
			if iv.PointType == "" {
				iv.PointType = pointTypeName(high)
			}
		}
	}
	return iv, nil
}

func pointTypeName(v value.Value) string {
	return v.Kind().String()
}

func (e *Engine) evalListLiteral(ctx context.Context, n *elm.List, ec *EvaluationContext) (value.Value, error) {
	elements := make([]value.Value, len(n.Element_))
	for i, expr := range n.Element_ {
		v, err := e.evalOperand(ctx, expr, ec)
		if err != nil {
			return nil, err
		}
		elements[i] = v
	}
	hint := ""
	if n.TypeSpecifier.Kind != "" {
		hint = n.TypeSpecifier.Name
	}
	return value.List{ElementHint: hint, Elements: elements}, nil
}

func (e *Engine) evalTupleLiteral(ctx context.Context, n *elm.Tuple, ec *EvaluationContext) (value.Value, error) {
	names := make([]string, len(n.Elements))
	values := make(map[string]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.evalOperand(ctx, el.Value, ec)
		if err != nil {
			return nil, err
		}
		names[i] = el.Name
		values[el.Name] = v
	}
	return value.Tuple{Names: names, Values: values}, nil
}

func (e *Engine) evalInstanceLiteral(ctx context.Context, n *elm.Instance, ec *EvaluationContext) (value.Value, error) {
	names := make([]string, len(n.Elements))
	values := make(map[string]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.evalOperand(ctx, el.Value, ec)
		if err != nil {
			return nil, err
		}
		names[i] = el.Name
		values[el.Name] = v
	}
	return value.Tuple{Names: names, Values: values}, nil
}

func (e *Engine) evalExpressionRef(ctx context.Context, n *elm.ExpressionRef, ec *EvaluationContext) (value.Value, error) {
	if n.LibraryName != "" {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUnsupported, n.Name, "cross-library ExpressionRef to %s.%s is not supported without a loaded include", n.LibraryName, n.Name)
	}
	return e.EvaluateDefinition(ctx, n.Name, ec.ContextValue())
}

// evalFunctionRef calls a user-defined `define function` against its
// converted arguments. A cross-library call (n.LibraryName set) is rejected
// the same way evalExpressionRef rejects one -- neither is reachable without
// a loaded include, which this Engine does not yet model. An External
// FunctionDef has no body to evaluate; its declaration exists only so the
// converter/semantic layer can resolve calls to it, and actually invoking
// one without a registered implementation is a definition error, not a
// null-propagating one.
func (e *Engine) evalFunctionRef(ctx context.Context, n *elm.FunctionRef, ec *EvaluationContext) (value.Value, error) {
	if n.LibraryName != "" {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUnsupported, n.Name, "cross-library function call to %s.%s is not supported without a loaded include", n.LibraryName, n.Name)
	}
	fn, ok := e.functions[n.Name]
	if !ok {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUndefinedExpr, n.Name, "no such function: %s", n.Name)
	}
	if fn.External {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUnsupported, n.Name, "function %s is external and has no registered implementation", n.Name)
	}
	if len(n.Operand) != len(fn.Operands) {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeInternal, n.Name, "function %s called with %d arguments, wants %d", n.Name, len(n.Operand), len(fn.Operands))
	}

	call := ec.Push()
	for i, argExpr := range n.Operand {
		arg, err := e.evalOperand(ctx, argExpr, ec)
		if err != nil {
			return nil, err
		}
		call.Bind(fn.Operands[i].Name, arg)
	}
	return e.Evaluate(ctx, fn.Expression, call)
}

// evalIdentifierRef resolves a bare name reached at evaluation time still
// wrapped in the converter's generic elm.IdentifierRef (the converter never
// disambiguates ExpressionRef/ParameterRef/AliasRef/QueryLetRef/OperandRef
// from a bare ast.Identifier -- it has no symbol table to consult; that
// disambiguation is semantic.Analyze's job for *type inference*, but
// nothing rewrites the ELM tree with the answer). evalIdentifierRef instead
// resolves dynamically, mirroring DWScript's evalIdentifier chain
// lookup (internal/interp/interpreter.go: environment chain first, then
// progressively wider scopes) generalized to CQL's resolution
// order: local scope chain (query alias/let/ForEach element/function
// operand bindings) first, then this library's expression defs, then
// parameters, then code/concept defs, then value-set/code-system defs
// (which evaluate to Null, matching the dedicated ValueSetRef/CodeSystemRef
// case -- they are terminology identifiers, not value-bearing ones).
func (e *Engine) evalIdentifierRef(ctx context.Context, n *elm.IdentifierRef, ec *EvaluationContext) (value.Value, error) {
	name := n.Name
	if strings.Contains(name, ".") {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeUnsupported, name, "qualified identifier %q is not supported without a loaded include", name)
	}
	if v, ok := ec.Resolve(name); ok {
		return v, nil
	}
	if _, ok := e.definitions[name]; ok {
		return e.EvaluateDefinition(ctx, name, ec.ContextValue())
	}
	if v, ok := e.params[name]; ok {
		return v, nil
	}
	for i := range e.library.Codes {
		if e.library.Codes[i].Name == name {
			return e.evalCodeRef(&elm.CodeRef{Name: name})
		}
	}
	for i := range e.library.Concepts {
		if e.library.Concepts[i].Name == name {
			return e.evalConceptRef(&elm.ConceptRef{Name: name})
		}
	}
	for _, vs := range e.library.ValueSets {
		if vs.Name == name {
			return value.Null{}, nil
		}
	}
	for _, cs := range e.library.CodeSystems {
		if cs.Name == name {
			return value.Null{}, nil
		}
	}
	return nil, errors.Newf(errors.KindEvaluation, errors.CodeUndefinedExpr, name, "unresolved identifier: %s", name)
}

func (e *Engine) evalParameterRef(n *elm.ParameterRef) (value.Value, error) {
	if v, ok := e.params[n.Name]; ok {
		return v, nil
	}
	return value.Null{}, nil
}

func (e *Engine) evalCodeRef(n *elm.CodeRef) (value.Value, error) {
	for i := range e.library.Codes {
		c := &e.library.Codes[i]
		if c.Name == n.Name {
			return value.Code{Code: c.Code, System: c.CodeSystem, Display: c.Display}, nil
		}
	}
	return nil, errors.Newf(errors.KindEvaluation, errors.CodeUndefinedExpr, n.Name, "no such CodeDef: %s", n.Name)
}

func (e *Engine) evalConceptRef(n *elm.ConceptRef) (value.Value, error) {
	for i := range e.library.Concepts {
		c := &e.library.Concepts[i]
		if c.Name == n.Name {
			codes := make([]value.Code, 0, len(c.Codes))
			for _, codeName := range c.Codes {
				for j := range e.library.Codes {
					if e.library.Codes[j].Name == codeName {
						cd := &e.library.Codes[j]
						codes = append(codes, value.Code{Code: cd.Code, System: cd.CodeSystem, Display: cd.Display})
					}
				}
			}
			return value.Concept{Codes: codes, Display: c.Display}, nil
		}
	}
	return nil, errors.Newf(errors.KindEvaluation, errors.CodeUndefinedExpr, n.Name, "no such ConceptDef: %s", n.Name)
}

func (e *Engine) evalProperty(ctx context.Context, n *elm.Property, ec *EvaluationContext) (value.Value, error) {
	var source value.Value
	var err error
	if n.Source != nil {
		source, err = e.evalOperand(ctx, n.Source, ec)
		if err != nil {
			return nil, err
		}
	} else if n.Scope != "" {
		source = e.resolveOrNull(n.Scope, ec)
	} else {
		source = ec.ContextValue()
	}
	if isNullValue(source) {
		return value.Null{}, nil
	}
	return propertyValue(source, n.Path)
}

// propertyValue resolves a dotted path against clinical compound values
// (Code/Concept/Quantity/Ratio component access) and Tuple field access;
// model-attribute access for NamedType instances is delegated through the
// same Tuple representation (instances are constructed as Tuples by
// evalInstanceLiteral and by DataRetriever results).
func propertyValue(source value.Value, path string) (value.Value, error) {
	head, rest, hasRest := strings.Cut(path, ".")
	var v value.Value
	switch s := source.(type) {
	case value.Tuple:
		got, ok := s.Get(head)
		if !ok {
			return value.Null{}, nil
		}
		v = got
	case value.Code:
		switch head {
		case "code":
			v = value.String{Value: s.Code}
		case "system":
			v = value.String{Value: s.System}
		case "version":
			v = value.String{Value: s.Version}
		case "display":
			v = value.String{Value: s.Display}
		default:
			return value.Null{}, nil
		}
	case value.Concept:
		switch head {
		case "codes":
			elements := make([]value.Value, len(s.Codes))
			for i, c := range s.Codes {
				elements[i] = c
			}
			v = value.List{ElementHint: "Code", Elements: elements}
		case "display":
			v = value.String{Value: s.Display}
		default:
			return value.Null{}, nil
		}
	case value.Quantity:
		switch head {
		case "value":
			v = value.Decimal{Value: s.Value}
		case "unit":
			v = value.String{Value: s.Unit}
		default:
			return value.Null{}, nil
		}
	case value.Ratio:
		switch head {
		case "numerator":
			v = s.Numerator
		case "denominator":
			v = s.Denominator
		default:
			return value.Null{}, nil
		}
	case value.Interval:
		switch head {
		case "low":
			v = s.Low
		case "high":
			v = s.High
		case "lowClosed":
			v = value.Boolean{Value: s.LowClosed}
		case "highClosed":
			v = value.Boolean{Value: s.HighClosed}
		default:
			return value.Null{}, nil
		}
	default:
		return nil, errInvalidOperand("", "cannot access property %q on value of type %T", head, source)
	}
	if v == nil {
		v = value.Null{}
	}
	if !hasRest {
		return v, nil
	}
	return propertyValue(v, rest)
}

func (e *Engine) evalIndexer(ctx context.Context, n *elm.Indexer, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	idxVal, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(source, idxVal) {
		return value.Null{}, nil
	}
	idx, ok := idxVal.(value.Integer)
	if !ok {
		return nil, errInvalidOperand("", "Indexer index must be Integer, got %T", idxVal)
	}
	if s, ok := source.(value.String); ok {
		runes := s.Runes()
		if int(idx.Value) < 0 || int(idx.Value) >= len(runes) {
			return value.Null{}, nil
		}
		return value.String{Value: string(runes[idx.Value])}, nil
	}
	elements, ok := asList(source)
	if !ok {
		return nil, errInvalidOperand("", "Indexer requires a String or List source, got %T", source)
	}
	if int(idx.Value) < 0 || int(idx.Value) >= len(elements) {
		return value.Null{}, nil
	}
	return elements[idx.Value], nil
}
