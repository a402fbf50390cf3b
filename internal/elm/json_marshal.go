package elm

import (
	"encoding/json"
	"fmt"
)

// MarshalExpression hand-marshals an ELM expression node to its tagged JSON
// form, following DWScript's jsonvalue/value.go convention of marshaling
// a closed kind set by hand rather than relying on field tags across a
// polymorphic interface (DESIGN.md: internal/elm entry).
func MarshalExpression(e Expression) ([]byte, error) {
	if e == nil {
		return json.Marshal(nil)
	}
	m, err := exprFields(e)
	if err != nil {
		return nil, err
	}
	m["type"] = e.ElmType()
	if id := LocalID(e); id != "" {
		m["localId"] = id
	}
	return json.Marshal(m)
}

func rawExpr(e Expression) (json.RawMessage, error) {
	if e == nil {
		return nil, nil
	}
	b, err := MarshalExpression(e)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func rawExprSlice(es []Expression) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(es))
	for i, e := range es {
		r, err := rawExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// exprFields builds the kind-specific field map for e, excluding "type" and
// "localId" which MarshalExpression adds uniformly.
func exprFields(e Expression) (map[string]interface{}, error) {
	switch n := e.(type) {

	case *Literal:
		return map[string]interface{}{"valueType": n.ValueType, "value": n.Value}, nil
	case *Null:
		return map[string]interface{}{}, nil
	case *Quantity:
		return map[string]interface{}{"value": n.Value, "unit": n.Unit}, nil
	case *Interval:
		m := map[string]interface{}{"lowClosed": n.LowClosed, "highClosed": n.HighClosed}
		return mergeRaw(m, map[string]Expression{"low": n.Low, "high": n.High})
	case *List:
		raws, err := rawExprSlice(n.Element_)
		if err != nil {
			return nil, err
		}
		m := map[string]interface{}{"element": raws}
		if !n.TypeSpecifier.IsZero() {
			m["typeSpecifier"] = n.TypeSpecifier
		}
		return m, nil
	case *Tuple:
		return tupleFields(n.Elements)
	case *Instance:
		m, err := tupleFields(n.Elements)
		if err != nil {
			return nil, err
		}
		m["classType"] = n.ClassType
		return m, nil

	case *ExpressionRef:
		return refFields(n.LibraryName, n.Name), nil
	case *ParameterRef:
		return map[string]interface{}{"name": n.Name}, nil
	case *OperandRef:
		return map[string]interface{}{"name": n.Name}, nil
	case *FunctionRef:
		raws, err := rawExprSlice(n.Operand)
		if err != nil {
			return nil, err
		}
		m := refFields(n.LibraryName, n.Name)
		m["operand"] = raws
		return m, nil
	case *AliasRef:
		return map[string]interface{}{"name": n.Name}, nil
	case *QueryLetRef:
		return map[string]interface{}{"name": n.Name}, nil
	case *CodeRef:
		return refFields(n.LibraryName, n.Name), nil
	case *ConceptRef:
		return refFields(n.LibraryName, n.Name), nil
	case *ValueSetRef:
		return refFields(n.LibraryName, n.Name), nil
	case *CodeSystemRef:
		return refFields(n.LibraryName, n.Name), nil
	case *IdentifierRef:
		return map[string]interface{}{"name": n.Name}, nil
	case *Property:
		m := map[string]interface{}{"path": n.Path}
		if n.Scope != "" {
			m["scope"] = n.Scope
		}
		return mergeRaw(m, map[string]Expression{"source": n.Source})

	case *Round:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"operand": n.Operand, "precision": n.Precision})
	case *MinValue:
		return map[string]interface{}{"valueType": n.ValueType}, nil
	case *MaxValue:
		return map[string]interface{}{"valueType": n.ValueType}, nil

	case *Combine:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"source": n.Source, "separator": n.Separator})
	case *Split:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"stringToSplit": n.StringToSplit, "separator": n.Separator})
	case *SplitOnMatches:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"stringToSplit": n.StringToSplit, "separatorPattern": n.SeparatorPattern})
	case *Substring:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"stringToSub": n.StringExpr, "startIndex": n.StartIndex, "length": n.Length_})

	case *DateTimeCtor:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{
			"year": n.Year, "month": n.Month, "day": n.Day, "hour": n.Hour,
			"minute": n.Minute, "second": n.Second, "millisecond": n.Millisecond,
			"timezoneOffset": n.TimezoneOffset,
		})
	case *DateCtor:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"year": n.Year, "month": n.Month, "day": n.Day})
	case *TimeCtor:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"hour": n.Hour, "minute": n.Minute, "second": n.Second, "millisecond": n.Millisecond})
	case *Now:
		return map[string]interface{}{}, nil
	case *Today:
		return map[string]interface{}{}, nil
	case *TimeOfDay:
		return map[string]interface{}{}, nil
	case *DateTimeComponentFrom:
		m, err := mergeRaw(map[string]interface{}{"precision": n.Precision}, map[string]Expression{"operand": n.Operand})
		return m, err
	case *DurationBetween:
		return pairFields(n.Operand, n.Precision)
	case *DifferenceBetween:
		return pairFields(n.Operand, n.Precision)
	case *SameAs:
		return pairFields(n.Operand, n.Precision)
	case *SameOrBefore:
		return pairFields(n.Operand, n.Precision)
	case *SameOrAfter:
		return pairFields(n.Operand, n.Precision)
	case *CalculateAge:
		return mergeRaw(map[string]interface{}{"precision": n.Precision}, map[string]Expression{"operand": n.Operand})
	case *CalculateAgeAt:
		return pairFields(n.Operand, n.Precision)

	case *Collapse:
		return mergeRaw(map[string]interface{}{"precision": n.Precision}, map[string]Expression{"operand": n.Operand})
	case *Expand:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"operand": n.Operand, "per": n.Per})

	case *First:
		return mergeRaw(map[string]interface{}{"orderBy": n.OrderBy}, map[string]Expression{"source": n.Source})
	case *Last:
		return mergeRaw(map[string]interface{}{"orderBy": n.OrderBy}, map[string]Expression{"source": n.Source})
	case *Slice:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"source": n.Source, "startIndex": n.StartIndex, "endIndex": n.EndIndex})
	case *Sort:
		return mergeRaw(map[string]interface{}{"by": n.OrderBy}, map[string]Expression{"source": n.Source})
	case *ForEach:
		return mergeRaw(map[string]interface{}{"scope": n.Scope}, map[string]Expression{"source": n.Source, "element": n.Element_})
	case *Repeat:
		return mergeRaw(map[string]interface{}{"scope": n.Scope}, map[string]Expression{"source": n.Source, "element": n.Element_})

	case *Aggregate:
		m, err := mergeRaw(map[string]interface{}{"scope": n.Scope, "path": n.TotalName},
			map[string]Expression{"source": n.Source, "iteration": n.Body, "starting": n.Starting})
		return m, err

	case *As:
		m, err := mergeRaw(map[string]interface{}{"asTypeSpecifier": n.AsTypeSpecifier, "strict": n.Strict}, map[string]Expression{"operand": n.Operand})
		return m, err
	case *Is:
		return mergeRaw(map[string]interface{}{"isTypeSpecifier": n.IsTypeSpecifier}, map[string]Expression{"operand": n.Operand})
	case *Convert:
		m := map[string]interface{}{}
		if n.ToType != "" {
			m["toType"] = n.ToType
		}
		if !n.ToTypeSpecifier.IsZero() {
			m["toTypeSpecifier"] = n.ToTypeSpecifier
		}
		return mergeRaw(m, map[string]Expression{"operand": n.Operand})
	case *CanConvert:
		return mergeRaw(map[string]interface{}{"toTypeSpecifier": n.ToTypeSpecifier}, map[string]Expression{"operand": n.Operand})

	case *If:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"condition": n.Condition, "then": n.Then, "else": n.Else})
	case *Case:
		items := make([]map[string]interface{}, len(n.CaseItem))
		for i, it := range n.CaseItem {
			w, err := rawExpr(it.When)
			if err != nil {
				return nil, err
			}
			th, err := rawExpr(it.Then)
			if err != nil {
				return nil, err
			}
			items[i] = map[string]interface{}{"when": w, "then": th}
		}
		return mergeRaw(map[string]interface{}{"caseItem": items}, map[string]Expression{"comparand": n.Comparand, "else": n.Else})

	case *Query:
		return queryFields(n)

	case *Retrieve:
		m := map[string]interface{}{"dataType": n.DataType}
		if n.TemplateID != "" {
			m["templateId"] = n.TemplateID
		}
		if n.CodeProperty != "" {
			m["codeProperty"] = n.CodeProperty
		}
		return mergeRaw(m, map[string]Expression{"codes": n.Codes})
	case *InCodeSystem:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"code": n.Code, "codesystem": n.CodeSystem})
	case *InValueSet:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"code": n.Code, "valueset": n.ValueSet})
	case *AnyInValueSet:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"codes": n.Codes, "valueset": n.ValueSet})
	case *AnyInCodeSystem:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"codes": n.Codes, "codesystem": n.CodeSystem})
	case *Message:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{
			"source": n.Source, "condition": n.Condition, "code": n.Code,
			"severity": n.Severity, "message": n.Message,
		})

	default:
		return unaryBinaryFields(e)
	}
}

// unaryBinaryFields handles the large family of thin wrapper types that
// embed UnaryExpression/BinaryExpression/TernaryExpression/NaryExpression/
// withPrecision with no extra fields of their own.
func unaryBinaryFields(e Expression) (map[string]interface{}, error) {
	switch n := e.(type) {
	case interface{ ternaryOperands() [3]Expression }:
		ops := n.ternaryOperands()
		raws, err := rawExprSlice(ops[:])
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"operand": raws}, nil
	case interface{ naryOperands() []Expression }:
		raws, err := rawExprSlice(n.naryOperands())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"operand": raws}, nil
	case interface {
		binaryOperands() [2]Expression
		precisionValue() string
	}:
		ops := n.binaryOperands()
		raws, err := rawExprSlice(ops[:])
		if err != nil {
			return nil, err
		}
		m := map[string]interface{}{"operand": raws}
		if p := n.precisionValue(); p != "" {
			m["precision"] = p
		}
		return m, nil
	case interface{ binaryOperands() [2]Expression }:
		ops := n.binaryOperands()
		raws, err := rawExprSlice(ops[:])
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"operand": raws}, nil
	case interface{ unaryOperand() Expression }:
		return mergeRaw(map[string]interface{}{}, map[string]Expression{"operand": n.unaryOperand()})
	default:
		return nil, fmt.Errorf("elm: MarshalExpression: unhandled node type %T", e)
	}
}

func refFields(libraryName, name string) map[string]interface{} {
	m := map[string]interface{}{"name": name}
	if libraryName != "" {
		m["libraryName"] = libraryName
	}
	return m
}

func pairFields(operand [2]Expression, precision string) (map[string]interface{}, error) {
	raws, err := rawExprSlice(operand[:])
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{"operand": raws}
	if precision != "" {
		m["precision"] = precision
	}
	return m, nil
}

func tupleFields(elements []TupleElementExpr) (map[string]interface{}, error) {
	items := make([]map[string]interface{}, len(elements))
	for i, el := range elements {
		raw, err := rawExpr(el.Value)
		if err != nil {
			return nil, err
		}
		items[i] = map[string]interface{}{"name": el.Name, "value": raw}
	}
	return map[string]interface{}{"element": items}, nil
}

func queryFields(q *Query) (map[string]interface{}, error) {
	sources := make([]map[string]interface{}, len(q.Source))
	for i, s := range q.Source {
		raw, err := rawExpr(s.Expression)
		if err != nil {
			return nil, err
		}
		sources[i] = map[string]interface{}{"alias": s.Alias, "expression": raw}
	}
	m := map[string]interface{}{"source": sources}

	if len(q.Let) > 0 {
		lets := make([]map[string]interface{}, len(q.Let))
		for i, lc := range q.Let {
			raw, err := rawExpr(lc.Expression)
			if err != nil {
				return nil, err
			}
			lets[i] = map[string]interface{}{"identifier": lc.Identifier, "expression": raw}
		}
		m["let"] = lets
	}

	if len(q.Relationship) > 0 {
		rels := make([]map[string]interface{}, len(q.Relationship))
		for i, r := range q.Relationship {
			expr, err := rawExpr(r.Expression)
			if err != nil {
				return nil, err
			}
			st, err := rawExpr(r.SuchThat)
			if err != nil {
				return nil, err
			}
			rels[i] = map[string]interface{}{
				"type": r.ElmType(), "alias": r.Alias,
				"expression": expr, "suchThat": st,
			}
		}
		m["relationship"] = rels
	}

	if q.Where != nil {
		raw, err := rawExpr(q.Where)
		if err != nil {
			return nil, err
		}
		m["where"] = raw
	}

	if q.Return != nil {
		raw, err := rawExpr(q.Return.Expression)
		if err != nil {
			return nil, err
		}
		m["return"] = map[string]interface{}{"distinct": q.Return.Distinct, "expression": raw}
	}

	if q.Aggregate != nil {
		raw, err := rawExpr(q.Aggregate)
		if err != nil {
			return nil, err
		}
		m["aggregate"] = raw
	}

	if q.Sort != nil && len(q.Sort.By) > 0 {
		m["sort"] = map[string]interface{}{"by": q.Sort.By}
	}

	return m, nil
}

func mergeRaw(m map[string]interface{}, exprs map[string]Expression) (map[string]interface{}, error) {
	for k, e := range exprs {
		if e == nil {
			continue
		}
		raw, err := rawExpr(e)
		if err != nil {
			return nil, err
		}
		m[k] = raw
	}
	return m, nil
}
