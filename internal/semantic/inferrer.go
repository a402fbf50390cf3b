package semantic

import (
	"strings"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/provider"
	"github.com/cwbudde/go-cql/internal/types"
)

// operatorResult classifies the ~50 structurally-uniform ELM operators (the
// Unary/Binary/Ternary/Nary thin wrappers) by how their result type is
// computed, so the Inferrer does not need one type-switch arm per wrapper
// type -- mirrors json_marshal.go's structural dispatch, but keyed by
// semantics instead of shape.
type operatorResult int

const (
	resultBoolean operatorResult = iota
	resultArithmeticSame                // Add/Subtract/Multiply/... : promoted common operand type
	resultDecimal                       // Divide, Exp, Ln always yield Decimal
	resultInteger                       // Length, IndexOf, PositionOf, ...
	resultString                        // Concatenate, Upper, Lower, ReplaceMatches
	resultUnaryListElement              // SingletonFrom: element type of a List<T> operand
	resultUnaryIntervalPoint            // Start/End/PointFrom: point type of an Interval<T> operand
	resultUnaryPassthrough              // Distinct/Flatten: same type as sole operand
	resultBinaryFirstOperand            // Union/Intersect/Except: type of the first operand
	resultQuantity                      // ToQuantity
	resultDate                          // ToDate
	resultDateTime                      // ToDateTime
	resultTime                          // ToTime
	resultConcept                       // ToConcept
	resultUnaryAsList                   // ToList: wraps the operand's own type in a List
)

var operatorResultKind = map[string]operatorResult{
	"And": resultBoolean, "Or": resultBoolean, "Xor": resultBoolean, "Implies": resultBoolean,
	"Not": resultBoolean, "IsNull": resultBoolean, "IsTrue": resultBoolean, "IsFalse": resultBoolean,
	"Equal": resultBoolean, "NotEqual": resultBoolean, "Equivalent": resultBoolean,
	"Less": resultBoolean, "LessOrEqual": resultBoolean, "Greater": resultBoolean, "GreaterOrEqual": resultBoolean,
	"Exists": resultBoolean, "AllTrue": resultBoolean, "AnyTrue": resultBoolean,
	"In": resultBoolean, "Contains": resultBoolean, "Includes": resultBoolean, "IncludedIn": resultBoolean,
	"ProperlyIncludes": resultBoolean, "ProperlyIncludedIn": resultBoolean,
	"Before": resultBoolean, "After": resultBoolean,
	"Meets": resultBoolean, "MeetsBefore": resultBoolean, "MeetsAfter": resultBoolean,
	"Overlaps": resultBoolean, "OverlapsBefore": resultBoolean, "OverlapsAfter": resultBoolean,
	"Starts": resultBoolean, "Ends": resultBoolean,
	"SameAs": resultBoolean, "SameOrBefore": resultBoolean, "SameOrAfter": resultBoolean,
	"StartsWith": resultBoolean, "EndsWith": resultBoolean, "Matches": resultBoolean,
	"ToBoolean": resultBoolean,

	"Add": resultArithmeticSame, "Subtract": resultArithmeticSame, "Multiply": resultArithmeticSame,
	"TruncatedDivide": resultArithmeticSame, "Modulo": resultArithmeticSame, "Power": resultArithmeticSame,
	"Negate": resultArithmeticSame, "Abs": resultArithmeticSame,
	"Successor": resultArithmeticSame, "Predecessor": resultArithmeticSame,

	"Divide": resultDecimal, "Exp": resultDecimal, "Ln": resultDecimal, "Log": resultDecimal,
	"ToDecimal": resultDecimal,

	"Ceiling": resultInteger, "Floor": resultInteger, "Truncate": resultInteger,
	"Length": resultInteger, "PositionOf": resultInteger, "LastPositionOf": resultInteger,
	"IndexOf": resultInteger, "ToInteger": resultInteger,

	"Concatenate": resultString, "Upper": resultString, "Lower": resultString,
	"ReplaceMatches": resultString, "ToString": resultString,

	"SingletonFrom": resultUnaryListElement,

	"Start": resultUnaryIntervalPoint, "End": resultUnaryIntervalPoint, "PointFrom": resultUnaryIntervalPoint,
	"Width": resultUnaryIntervalPoint,

	"Distinct": resultUnaryPassthrough, "Flatten": resultUnaryPassthrough,

	"Union": resultBinaryFirstOperand, "Intersect": resultBinaryFirstOperand, "Except": resultBinaryFirstOperand,

	"ToQuantity": resultQuantity,
	"ToDate":     resultDate,
	"ToDateTime": resultDateTime,
	"ToTime":     resultTime,
	"ToConcept":  resultConcept,
	"ToList":     resultUnaryAsList,
}

// literalPrimitive maps a Literal/MinValue/MaxValue ValueType (either a
// qualified system URI or a bare name) to its types.Type.
var literalPrimitive = map[string]types.Type{
	elm.SystemBoolean: types.Boolean, "Boolean": types.Boolean,
	elm.SystemInteger: types.Integer, "Integer": types.Integer,
	elm.SystemLong: types.Long, "Long": types.Long,
	elm.SystemDecimal: types.Decimal, "Decimal": types.Decimal,
	elm.SystemString: types.String, "String": types.String,
	elm.SystemDate: types.Date, "Date": types.Date,
	elm.SystemDateTime: types.DateTime, "DateTime": types.DateTime,
	elm.SystemTime: types.Time, "Time": types.Time,
	elm.SystemQuantity: types.Quantity, "Quantity": types.Quantity,
	elm.SystemAny: types.Any, "Any": types.Any,
}

func literalType(valueType string) types.Type {
	if t, ok := literalPrimitive[valueType]; ok {
		return t
	}
	return types.Any
}

// Inferrer implements CQL's type-inference rules, annotating each
// elm.Element.ResultType as it walks an already-converted ELM tree. Results
// are memoized onto the node itself, so a shared subtree (e.g. via
// ExpressionRef) is only inferred once.
type Inferrer struct {
	resolver     *Resolver
	model        provider.ModelProvider
	defaultModel string

	// definition names the ExpressionDef/FunctionDef currently being
	// inferred, attached to any diagnostic Infer records. Set by Analyze
	// before each top-level Infer call; unused (and diagnostics silently
	// dropped) by callers, such as the engine's own tests, that never set
	// it -- Infer's "never errors, worst case Any" contract from callers
	// that don't want diagnostics is preserved.
	definition  string
	diagnostics errors.List
}

// NewInferrer builds an Inferrer bound to one library's Resolver. model may
// be nil -- Retrieve/Property nodes then fall back to a structurally
// synthesized NamedType instead of a model-resolved one.
func NewInferrer(r *Resolver, model provider.ModelProvider, defaultModel string) *Inferrer {
	return &Inferrer{resolver: r, model: model, defaultModel: defaultModel}
}

// SetDefinition names the top-level definition subsequent Infer calls are
// walking, for diagnostic attribution.
func (inf *Inferrer) SetDefinition(name string) {
	inf.definition = name
}

// Diagnostics returns every unresolved-identifier, unresolved-function, or
// overload-resolution error accumulated since the Inferrer was built.
func (inf *Inferrer) Diagnostics() errors.List {
	return inf.diagnostics
}

func (inf *Inferrer) diagnose(code errors.Code, format string, args ...any) {
	inf.diagnostics = append(inf.diagnostics, errors.Newf(errors.KindSemantic, code, inf.definition, format, args...))
}

// Infer computes and annotates e's result type. Calling it twice on the
// same node returns the memoized annotation rather than re-walking it.
func (inf *Inferrer) Infer(e elm.Expression, scope *Scope) types.Type {
	if e == nil {
		return types.Any
	}
	if t := elm.ResultType(e); t != nil {
		return t
	}
	t := inf.infer(e, scope)
	if t == nil {
		t = types.Any
	}
	elm.SetResultType(e, t)
	return t
}

func (inf *Inferrer) infer(e elm.Expression, scope *Scope) types.Type {
	switch n := e.(type) {
	case *elm.Literal:
		return literalType(n.ValueType)
	case *elm.Null:
		return types.Any
	case *elm.Quantity:
		return types.Quantity
	case *elm.Interval:
		point := types.Any
		switch {
		case n.Low != nil:
			point = inf.Infer(n.Low, scope)
		case n.High != nil:
			point = inf.Infer(n.High, scope)
		}
		return types.IntervalType{Point: point}
	case *elm.List:
		if !n.TypeSpecifier.IsZero() {
			return types.ListType{Element: inf.fromSpecifier(n.TypeSpecifier)}
		}
		elems := make([]types.Type, 0, len(n.Element_))
		for _, el := range n.Element_ {
			elems = append(elems, inf.Infer(el, scope))
		}
		return types.ListType{Element: types.CommonSupertypeAll(elems)}
	case *elm.Tuple:
		return inf.tupleType(n.Elements, scope)
	case *elm.Instance:
		return inf.classType(n.ClassType)
	case *elm.ExpressionRef:
		return inf.refType(n.LibraryName, n.Name)
	case *elm.ParameterRef:
		return inf.refType("", n.Name)
	case *elm.FunctionRef:
		return inf.functionRefType(n, scope)
	case *elm.OperandRef:
		if scope != nil {
			if t, ok := scope.Resolve(n.Name); ok {
				return t
			}
		}
		return types.Any
	case *elm.AliasRef:
		if scope != nil {
			if t, ok := scope.Resolve(n.Name); ok {
				return t
			}
		}
		return types.Any
	case *elm.QueryLetRef:
		if scope != nil {
			if t, ok := scope.Resolve(n.Name); ok {
				return t
			}
		}
		return types.Any
	case *elm.CodeRef:
		return types.Code
	case *elm.ConceptRef:
		return types.Concept
	case *elm.ValueSetRef:
		return types.Vocabulary
	case *elm.CodeSystemRef:
		return types.Vocabulary
	case *elm.IdentifierRef:
		return inf.identifierRefType(n, scope)
	case *elm.Property:
		return inf.propertyType(n, scope)
	case *elm.Indexer:
		ops := n.BinaryOperands()
		src := inf.Infer(ops[0], scope)
		if lt, ok := src.(types.ListType); ok {
			return lt.Element
		}
		if types.Equal(src, types.String) {
			return types.String
		}
		return types.Any
	case *elm.Round:
		return types.Decimal
	case *elm.MinValue:
		return literalType(n.ValueType)
	case *elm.MaxValue:
		return literalType(n.ValueType)
	case *elm.Combine:
		return types.String
	case *elm.Split:
		return types.ListType{Element: types.String}
	case *elm.SplitOnMatches:
		return types.ListType{Element: types.String}
	case *elm.Substring:
		return types.String
	case *elm.DateTimeCtor:
		return types.DateTime
	case *elm.DateCtor:
		return types.Date
	case *elm.TimeCtor:
		return types.Time
	case *elm.Now:
		return types.DateTime
	case *elm.Today:
		return types.Date
	case *elm.TimeOfDay:
		return types.Time
	case *elm.DateFrom:
		return types.Date
	case *elm.TimeFrom:
		return types.Time
	case *elm.TimezoneOffsetFrom:
		return types.Decimal
	case *elm.DateTimeComponentFrom:
		return types.Integer
	case *elm.DurationBetween:
		return types.Integer
	case *elm.DifferenceBetween:
		return types.Integer
	case *elm.CalculateAge:
		return types.Integer
	case *elm.CalculateAgeAt:
		return types.Integer
	case *elm.Collapse:
		point := types.Any
		if src, ok := inf.Infer(n.Operand, scope).(types.ListType); ok {
			if it, ok := src.Element.(types.IntervalType); ok {
				point = it.Point
			}
		}
		return types.IntervalType{Point: point}
	case *elm.Expand:
		switch src := inf.Infer(n.Operand, scope).(type) {
		case types.IntervalType:
			return types.ListType{Element: src.Point}
		case types.ListType:
			if it, ok := src.Element.(types.IntervalType); ok {
				return types.ListType{Element: it.Point}
			}
		}
		return types.ListType{Element: types.Any}
	case *elm.First:
		if lt, ok := inf.Infer(n.Source, scope).(types.ListType); ok {
			return lt.Element
		}
		return types.Any
	case *elm.Last:
		if lt, ok := inf.Infer(n.Source, scope).(types.ListType); ok {
			return lt.Element
		}
		return types.Any
	case *elm.Slice:
		return inf.Infer(n.Source, scope)
	case *elm.Sort:
		return inf.Infer(n.Source, scope)
	case *elm.ForEach:
		elemT := types.Any
		if lt, ok := inf.Infer(n.Source, scope).(types.ListType); ok {
			elemT = lt.Element
		}
		inner := pushScope(scope).Push(ScopeForEachElement)
		inner.Bind(n.Scope, elemT)
		return types.ListType{Element: inf.Infer(n.Element_, inner)}
	case *elm.Repeat:
		elemT := types.Any
		if lt, ok := inf.Infer(n.Source, scope).(types.ListType); ok {
			elemT = lt.Element
		}
		inner := pushScope(scope).Push(ScopeForEachElement)
		inner.Bind(n.Scope, elemT)
		bodyT := inf.Infer(n.Element_, inner)
		if lt, ok := bodyT.(types.ListType); ok {
			return lt
		}
		return types.ListType{Element: bodyT}
	case *elm.Aggregate:
		elemT := types.Any
		if lt, ok := inf.Infer(n.Source, scope).(types.ListType); ok {
			elemT = lt.Element
		}
		startT := types.Any
		if n.Starting != nil {
			startT = inf.Infer(n.Starting, scope)
		}
		inner := pushScope(scope).Push(ScopeForEachElement)
		inner.Bind(n.Scope, elemT)
		if n.TotalName != "" {
			inner.Bind(n.TotalName, startT)
		}
		return inf.Infer(n.Body, inner)
	case *elm.As:
		return inf.fromSpecifier(n.AsTypeSpecifier)
	case *elm.Is:
		return types.Boolean
	case *elm.Convert:
		if !n.ToTypeSpecifier.IsZero() {
			return inf.fromSpecifier(n.ToTypeSpecifier)
		}
		return literalType(n.ToType)
	case *elm.CanConvert:
		return types.Boolean
	case *elm.If:
		thenT := inf.Infer(n.Then, scope)
		elseT := types.Any
		if n.Else != nil {
			elseT = inf.Infer(n.Else, scope)
		}
		return types.CommonSupertype(thenT, elseT)
	case *elm.Case:
		ts := make([]types.Type, 0, len(n.CaseItem)+1)
		for _, item := range n.CaseItem {
			ts = append(ts, inf.Infer(item.Then, scope))
		}
		if n.Else != nil {
			ts = append(ts, inf.Infer(n.Else, scope))
		}
		return types.CommonSupertypeAll(ts)
	case *elm.Query:
		return inf.queryType(n, scope)
	case *elm.Retrieve:
		return types.ListType{Element: inf.retrieveElementType(n.DataType)}
	case *elm.InCodeSystem, *elm.InValueSet, *elm.AnyInValueSet, *elm.AnyInCodeSystem:
		return types.Boolean
	case *elm.Message:
		return inf.Infer(n.Source, scope)
	}

	return inf.inferUniform(e, scope)
}

// inferUniform handles the ~50 thin-wrapper operator types by looking up
// their semantic category and, where the category needs it, recursing into
// operands via the exported structural accessors.
func (inf *Inferrer) inferUniform(e elm.Expression, scope *Scope) types.Type {
	kind, ok := operatorResultKind[e.ElmType()]
	if !ok {
		return types.Any
	}
	switch kind {
	case resultBoolean:
		return types.Boolean
	case resultDecimal:
		return types.Decimal
	case resultInteger:
		return types.Integer
	case resultString:
		return types.String
	case resultQuantity:
		return types.Quantity
	case resultDate:
		return types.Date
	case resultDateTime:
		return types.DateTime
	case resultTime:
		return types.Time
	case resultConcept:
		return types.Concept
	case resultUnaryAsList:
		if u, ok := e.(elm.Unary); ok {
			return types.ListType{Element: inf.Infer(u.UnaryOperand(), scope)}
		}
		return types.ListType{Element: types.Any}
	case resultArithmeticSame:
		return inf.operandCommonType(e, scope)
	case resultUnaryPassthrough:
		if u, ok := e.(elm.Unary); ok {
			return inf.Infer(u.UnaryOperand(), scope)
		}
		return types.Any
	case resultUnaryListElement:
		if u, ok := e.(elm.Unary); ok {
			if lt, ok := inf.Infer(u.UnaryOperand(), scope).(types.ListType); ok {
				return lt.Element
			}
		}
		return types.Any
	case resultUnaryIntervalPoint:
		if u, ok := e.(elm.Unary); ok {
			operandT := inf.Infer(u.UnaryOperand(), scope)
			if it, ok := operandT.(types.IntervalType); ok {
				return it.Point
			}
			if lt, ok := operandT.(types.ListType); ok {
				if it, ok := lt.Element.(types.IntervalType); ok {
					return it.Point
				}
			}
		}
		return types.Any
	case resultBinaryFirstOperand:
		if nn, ok := e.(elm.Nary); ok && len(nn.NaryOperands()) > 0 {
			return inf.Infer(nn.NaryOperands()[0], scope)
		}
		if b, ok := e.(elm.Binary); ok {
			return inf.Infer(b.BinaryOperands()[0], scope)
		}
		return types.Any
	}
	return types.Any
}

// operandCommonType computes the promoted common type across a Unary,
// Binary, or Nary arithmetic node's operands.
func (inf *Inferrer) operandCommonType(e elm.Expression, scope *Scope) types.Type {
	var operandTypes []types.Type
	switch o := e.(type) {
	case elm.Unary:
		operandTypes = append(operandTypes, inf.Infer(o.UnaryOperand(), scope))
	case elm.Binary:
		ops := o.BinaryOperands()
		operandTypes = append(operandTypes, inf.Infer(ops[0], scope), inf.Infer(ops[1], scope))
	case elm.Nary:
		for _, op := range o.NaryOperands() {
			operandTypes = append(operandTypes, inf.Infer(op, scope))
		}
	}
	if len(operandTypes) == 0 {
		return types.Any
	}
	return types.CommonSupertypeAll(operandTypes)
}

func (inf *Inferrer) tupleType(elements []elm.TupleElementExpr, scope *Scope) types.Type {
	names := make([]string, 0, len(elements))
	fields := make(map[string]types.Type, len(elements))
	for _, el := range elements {
		names = append(names, el.Name)
		fields[el.Name] = inf.Infer(el.Value, scope)
	}
	return types.TupleType{Names: names, Elements: fields}
}

func (inf *Inferrer) classType(className string) types.Type {
	if inf.model != nil {
		if t, ok := inf.model.ResolveType(inf.defaultModel, className); ok {
			return t
		}
	}
	return types.NamedType{Namespace: inf.defaultModel, Name: className}
}

func (inf *Inferrer) retrieveElementType(dataType string) types.Type {
	if inf.model != nil {
		if t, ok := inf.model.ResolveType(inf.defaultModel, dataType); ok {
			return t
		}
	}
	return types.NamedType{Namespace: inf.defaultModel, Name: dataType}
}

// propertyType resolves a Property node's type via the ModelProvider when
// the source is a model class, via TupleType field lookup when it is a
// tuple, and falls back to Any otherwise (unresolved model metadata).
func (inf *Inferrer) propertyType(p *elm.Property, scope *Scope) types.Type {
	srcT := inf.Infer(p.Source, scope)
	switch t := srcT.(type) {
	case types.TupleType:
		if field, ok := t.Elements[p.Path]; ok {
			return field
		}
	case types.NamedType:
		if inf.model != nil {
			if pt, ok := inf.model.ResolveProperty(t.Namespace, t.Name, p.Path); ok {
				return pt
			}
		}
	}
	return types.Any
}

// refType resolves an ExpressionRef/ParameterRef's type through the
// Resolver, qualifying into an included library when libraryName is set.
func (inf *Inferrer) refType(libraryName, name string) types.Type {
	if inf.resolver == nil {
		return types.Any
	}
	if libraryName == "" {
		if sym, ok := inf.resolver.symbols.Lookup(name); ok {
			return sym.Type
		}
		inf.diagnose(errors.CodeUnknownIdentifier, "unknown identifier %q", name)
		return types.Any
	}
	sym, err := inf.resolver.ResolveQualified(libraryName, name)
	if err != nil || sym == nil {
		inf.diagnose(errors.CodeUnknownIdentifier, "%v", err)
		return types.Any
	}
	return sym.Type
}

// identifierRefType resolves a bare/qualified name still wrapped in the
// converter's generic IdentifierRef (see internal/engine's evalIdentifierRef
// doc comment: the converter never disambiguates ExpressionRef/ParameterRef/
// AliasRef/QueryLetRef/OperandRef from a plain ast.Identifier). Local query
// scope (alias/let/operand bindings) takes priority, then the library's
// symbol table -- mirroring the same resolution order evalIdentifierRef uses
// at evaluation time, so a name that fails here also fails at Eval, and vice
// versa.
func (inf *Inferrer) identifierRefType(n *elm.IdentifierRef, scope *Scope) types.Type {
	name := n.Name
	if scope != nil {
		if t, ok := scope.Resolve(name); ok {
			return t
		}
	}
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return inf.refType(name[:idx], name[idx+1:])
	}
	return inf.refType("", name)
}

// functionRefType resolves a FunctionRef's overload by argument type,
// recording a diagnostic (no-matching/ambiguous overload, or an unknown
// name) rather than failing Infer's no-error contract.
func (inf *Inferrer) functionRefType(n *elm.FunctionRef, scope *Scope) types.Type {
	argTypes := make([]types.Type, len(n.Operand))
	for i, arg := range n.Operand {
		argTypes[i] = inf.Infer(arg, scope)
	}
	if inf.resolver == nil {
		return types.Any
	}

	var set *OverloadSet
	if n.LibraryName == "" {
		s, ok := inf.resolver.symbols.LookupFunction(n.Name)
		if !ok {
			inf.diagnose(errors.CodeUnknownIdentifier, "unknown function %q", n.Name)
			return types.Any
		}
		set = s
	} else {
		s, err := inf.resolver.ResolveQualifiedFunction(n.LibraryName, n.Name)
		if err != nil {
			inf.diagnose(errors.CodeUnknownIdentifier, "%v", err)
			return types.Any
		}
		set = s
	}

	sig, err := set.ResolveCall(argTypes)
	if err != nil {
		code := errors.CodeNoMatchingOverload
		if strings.Contains(err.Error(), "ambiguous") {
			code = errors.CodeAmbiguousOverload
		}
		inf.diagnose(code, "%v", err)
		return types.Any
	}
	return sig.Return
}

// FromSpecifier exposes fromSpecifier to Analyze, which needs to resolve a
// FunctionDef's declared operand/result TypeSpecifiers before it can build
// FunctionSignatures for the symbol table -- ordinary Infer callers never
// need this directly, since ExpressionDefs carry no declared type, only an
// inferred one.
func (inf *Inferrer) FromSpecifier(spec elm.TypeSpecifier) types.Type {
	return inf.fromSpecifier(spec)
}

// fromSpecifier resolves an ELM TypeSpecifier (source-level type syntax)
// into a types.Type.
func (inf *Inferrer) fromSpecifier(spec elm.TypeSpecifier) types.Type {
	switch spec.Kind {
	case "ListTypeSpecifier":
		elemT := types.Any
		if spec.ElementType != nil {
			elemT = inf.fromSpecifier(*spec.ElementType)
		}
		return types.ListType{Element: elemT}
	case "IntervalTypeSpecifier":
		pointT := types.Any
		if spec.PointType != nil {
			pointT = inf.fromSpecifier(*spec.PointType)
		}
		return types.IntervalType{Point: pointT}
	case "TupleTypeSpecifier":
		names := make([]string, 0, len(spec.TupleElements))
		fields := make(map[string]types.Type, len(spec.TupleElements))
		for _, el := range spec.TupleElements {
			names = append(names, el.Name)
			fields[el.Name] = inf.fromSpecifier(el.Type)
		}
		return types.TupleType{Names: names, Elements: fields}
	case "ChoiceTypeSpecifier":
		opts := make([]types.Type, 0, len(spec.ChoiceTypes))
		for _, c := range spec.ChoiceTypes {
			opts = append(opts, inf.fromSpecifier(c))
		}
		return types.ChoiceType{Options: opts}
	default:
		if t, ok := literalPrimitive[spec.Name]; ok {
			return t
		}
		return inf.classType(spec.Name)
	}
}

func (inf *Inferrer) queryType(q *elm.Query, scope *Scope) types.Type {
	qs := pushScope(scope).Push(ScopeQueryAlias)
	aliasTypes := make(map[string]types.Type, len(q.Source))
	aliasOrder := make([]string, 0, len(q.Source))
	for _, src := range q.Source {
		elemT := types.Any
		if lt, ok := inf.Infer(src.Expression, scope).(types.ListType); ok {
			elemT = lt.Element
		}
		qs.Bind(src.Alias, elemT)
		aliasTypes[src.Alias] = elemT
		aliasOrder = append(aliasOrder, src.Alias)
	}
	letScope := qs
	for _, let := range q.Let {
		letScope = letScope.Push(ScopeQueryLet)
		letScope.Bind(let.Identifier, inf.Infer(let.Expression, letScope))
	}
	for _, rel := range q.Relationship {
		relScope := letScope.Push(ScopeQueryAlias)
		elemT := types.Any
		if lt, ok := inf.Infer(rel.Expression, scope).(types.ListType); ok {
			elemT = lt.Element
		}
		relScope.Bind(rel.Alias, elemT)
		if rel.SuchThat != nil {
			inf.Infer(rel.SuchThat, relScope)
		}
	}
	if q.Where != nil {
		inf.Infer(q.Where, letScope)
	}

	if q.Aggregate != nil {
		return inf.Infer(q.Aggregate, letScope)
	}

	var elemT types.Type
	switch {
	case q.Return != nil:
		elemT = inf.Infer(q.Return.Expression, letScope)
	case len(aliasOrder) == 1:
		elemT = aliasTypes[aliasOrder[0]]
	default:
		elemT = types.TupleType{Names: aliasOrder, Elements: aliasTypes}
	}
	return types.ListType{Element: elemT}
}

// pushScope returns scope, or a fresh root Scope if scope is nil -- queries
// and comprehensions can be inferred standalone (e.g. in tests) without a
// caller-supplied enclosing scope.
func pushScope(scope *Scope) *Scope {
	if scope == nil {
		return NewScope()
	}
	return scope
}
