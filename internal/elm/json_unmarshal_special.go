package elm

import (
	"encoding/json"
	"fmt"
)

func decodeSpecial(tag string, raw json.RawMessage) (Expression, error) {
	switch tag {
	case "Literal":
		var s struct {
			Element
			ValueType string `json:"valueType"`
			Value     string `json:"value"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &Literal{Element: s.Element, ValueType: s.ValueType, Value: s.Value}, nil

	case "Null":
		var s struct{ Element }
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &Null{Element: s.Element}, nil

	case "Quantity":
		var s struct {
			Element
			Value float64 `json:"value"`
			Unit  string  `json:"unit,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &Quantity{Element: s.Element, Value: s.Value, Unit: s.Unit}, nil

	case "Interval":
		var s struct {
			Element
			Low        json.RawMessage `json:"low,omitempty"`
			LowClosed  bool            `json:"lowClosed"`
			High       json.RawMessage `json:"high,omitempty"`
			HighClosed bool            `json:"highClosed"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		low, err := DecodeExpression(s.Low)
		if err != nil {
			return nil, err
		}
		high, err := DecodeExpression(s.High)
		if err != nil {
			return nil, err
		}
		return &Interval{Element: s.Element, Low: low, LowClosed: s.LowClosed, High: high, HighClosed: s.HighClosed}, nil

	case "List":
		var s struct {
			Element
			TypeSpecifier TypeSpecifier     `json:"typeSpecifier,omitempty"`
			Elements      []json.RawMessage `json:"element,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		elems := make([]Expression, len(s.Elements))
		for i, e := range s.Elements {
			ex, err := DecodeExpression(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ex
		}
		return &List{Element: s.Element, TypeSpecifier: s.TypeSpecifier, Element_: elems}, nil

	case "Tuple", "Instance":
		var s struct {
			Element
			ClassType string `json:"classType,omitempty"`
			Elements  []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"element,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		elems := make([]TupleElementExpr, len(s.Elements))
		for i, el := range s.Elements {
			v, err := DecodeExpression(el.Value)
			if err != nil {
				return nil, err
			}
			elems[i] = TupleElementExpr{Name: el.Name, Value: v}
		}
		if tag == "Instance" {
			return &Instance{Element: s.Element, ClassType: s.ClassType, Elements: elems}, nil
		}
		return &Tuple{Element: s.Element, Elements: elems}, nil

	case "ExpressionRef", "CodeRef", "ConceptRef", "ValueSetRef", "CodeSystemRef":
		var s struct {
			Element
			LibraryName string `json:"libraryName,omitempty"`
			Name        string `json:"name"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		switch tag {
		case "ExpressionRef":
			return &ExpressionRef{Element: s.Element, LibraryName: s.LibraryName, Name: s.Name}, nil
		case "CodeRef":
			return &CodeRef{Element: s.Element, LibraryName: s.LibraryName, Name: s.Name}, nil
		case "ConceptRef":
			return &ConceptRef{Element: s.Element, LibraryName: s.LibraryName, Name: s.Name}, nil
		case "ValueSetRef":
			return &ValueSetRef{Element: s.Element, LibraryName: s.LibraryName, Name: s.Name}, nil
		default:
			return &CodeSystemRef{Element: s.Element, LibraryName: s.LibraryName, Name: s.Name}, nil
		}

	case "ParameterRef", "OperandRef", "AliasRef", "QueryLetRef", "IdentifierRef":
		var s struct {
			Element
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		switch tag {
		case "ParameterRef":
			return &ParameterRef{Element: s.Element, Name: s.Name}, nil
		case "OperandRef":
			return &OperandRef{Element: s.Element, Name: s.Name}, nil
		case "AliasRef":
			return &AliasRef{Element: s.Element, Name: s.Name}, nil
		case "QueryLetRef":
			return &QueryLetRef{Element: s.Element, Name: s.Name}, nil
		default:
			return &IdentifierRef{Element: s.Element, Name: s.Name}, nil
		}

	case "FunctionRef":
		var s struct {
			Element
			LibraryName string            `json:"libraryName,omitempty"`
			Name        string            `json:"name"`
			Operand     []json.RawMessage `json:"operand,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		ops := make([]Expression, len(s.Operand))
		for i, o := range s.Operand {
			e, err := DecodeExpression(o)
			if err != nil {
				return nil, err
			}
			ops[i] = e
		}
		return &FunctionRef{Element: s.Element, LibraryName: s.LibraryName, Name: s.Name, Operand: ops}, nil

	case "Property":
		var s struct {
			Element
			Source json.RawMessage `json:"source,omitempty"`
			Scope  string          `json:"scope,omitempty"`
			Path   string          `json:"path"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		return &Property{Element: s.Element, Source: src, Scope: s.Scope, Path: s.Path}, nil

	case "Round":
		var s struct {
			Element
			Operand   json.RawMessage `json:"operand"`
			Precision json.RawMessage `json:"precision,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		prec, err := DecodeExpression(s.Precision)
		if err != nil {
			return nil, err
		}
		return &Round{Element: s.Element, Operand: op, Precision: prec}, nil

	case "MinValue", "MaxValue":
		var s struct {
			Element
			ValueType string `json:"valueType"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if tag == "MinValue" {
			return &MinValue{Element: s.Element, ValueType: s.ValueType}, nil
		}
		return &MaxValue{Element: s.Element, ValueType: s.ValueType}, nil

	case "Combine":
		var s struct {
			Element
			Source    json.RawMessage `json:"source"`
			Separator json.RawMessage `json:"separator,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		sep, err := DecodeExpression(s.Separator)
		if err != nil {
			return nil, err
		}
		return &Combine{Element: s.Element, Source: src, Separator: sep}, nil

	case "Split":
		var s struct {
			Element
			StringToSplit json.RawMessage `json:"stringToSplit"`
			Separator     json.RawMessage `json:"separator,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		str, err := DecodeExpression(s.StringToSplit)
		if err != nil {
			return nil, err
		}
		sep, err := DecodeExpression(s.Separator)
		if err != nil {
			return nil, err
		}
		return &Split{Element: s.Element, StringToSplit: str, Separator: sep}, nil

	case "SplitOnMatches":
		var s struct {
			Element
			StringToSplit    json.RawMessage `json:"stringToSplit"`
			SeparatorPattern json.RawMessage `json:"separatorPattern"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		str, err := DecodeExpression(s.StringToSplit)
		if err != nil {
			return nil, err
		}
		sep, err := DecodeExpression(s.SeparatorPattern)
		if err != nil {
			return nil, err
		}
		return &SplitOnMatches{Element: s.Element, StringToSplit: str, SeparatorPattern: sep}, nil

	case "Substring":
		var s struct {
			Element
			StringExpr json.RawMessage `json:"stringToSub"`
			StartIndex json.RawMessage `json:"startIndex"`
			Length     json.RawMessage `json:"length,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		str, err := DecodeExpression(s.StringExpr)
		if err != nil {
			return nil, err
		}
		start, err := DecodeExpression(s.StartIndex)
		if err != nil {
			return nil, err
		}
		length, err := DecodeExpression(s.Length)
		if err != nil {
			return nil, err
		}
		return &Substring{Element: s.Element, StringExpr: str, StartIndex: start, Length_: length}, nil

	case "DateTime", "Date", "Time":
		return decodeTemporalCtor(tag, raw)

	case "Now":
		var s struct{ Element }
		json.Unmarshal(raw, &s)
		return &Now{Element: s.Element}, nil
	case "Today":
		var s struct{ Element }
		json.Unmarshal(raw, &s)
		return &Today{Element: s.Element}, nil
	case "TimeOfDay":
		var s struct{ Element }
		json.Unmarshal(raw, &s)
		return &TimeOfDay{Element: s.Element}, nil

	case "DateTimeComponentFrom":
		var s struct {
			Element
			Operand   json.RawMessage `json:"operand"`
			Precision string          `json:"precision"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		return &DateTimeComponentFrom{Element: s.Element, Operand: op, Precision: s.Precision}, nil

	case "DurationBetween", "DifferenceBetween", "SameAs", "SameOrBefore", "SameOrAfter", "CalculateAgeAt":
		ops, precision, elem, err := decodePrecisionPair(raw)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "DurationBetween":
			return &DurationBetween{Element: elem, Operand: ops, Precision: precision}, nil
		case "DifferenceBetween":
			return &DifferenceBetween{Element: elem, Operand: ops, Precision: precision}, nil
		case "SameAs":
			return &SameAs{Element: elem, Operand: ops, Precision: precision}, nil
		case "SameOrBefore":
			return &SameOrBefore{Element: elem, Operand: ops, Precision: precision}, nil
		case "SameOrAfter":
			return &SameOrAfter{Element: elem, Operand: ops, Precision: precision}, nil
		default:
			return &CalculateAgeAt{Element: elem, Operand: ops, Precision: precision}, nil
		}

	case "CalculateAge":
		var s struct {
			Element
			Operand   json.RawMessage `json:"operand"`
			Precision string          `json:"precision,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		return &CalculateAge{Element: s.Element, Operand: op, Precision: s.Precision}, nil

	case "Collapse":
		var s struct {
			Element
			Operand   json.RawMessage `json:"operand"`
			Precision string          `json:"precision,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		return &Collapse{Element: s.Element, Operand: op, Precision: s.Precision}, nil

	case "Expand":
		var s struct {
			Element
			Operand json.RawMessage `json:"operand"`
			Per     json.RawMessage `json:"per,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		per, err := DecodeExpression(s.Per)
		if err != nil {
			return nil, err
		}
		return &Expand{Element: s.Element, Operand: op, Per: per}, nil

	case "First", "Last":
		var s struct {
			Element
			Source  json.RawMessage `json:"source"`
			OrderBy []SortByItem    `json:"orderBy,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		if tag == "First" {
			return &First{Element: s.Element, Source: src, OrderBy: s.OrderBy}, nil
		}
		return &Last{Element: s.Element, Source: src, OrderBy: s.OrderBy}, nil

	case "Slice":
		var s struct {
			Element
			Source     json.RawMessage `json:"source"`
			StartIndex json.RawMessage `json:"startIndex,omitempty"`
			EndIndex   json.RawMessage `json:"endIndex,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		start, err := DecodeExpression(s.StartIndex)
		if err != nil {
			return nil, err
		}
		end, err := DecodeExpression(s.EndIndex)
		if err != nil {
			return nil, err
		}
		return &Slice{Element: s.Element, Source: src, StartIndex: start, EndIndex: end}, nil

	case "Sort":
		var s struct {
			Element
			Source json.RawMessage `json:"source"`
			By     []SortByItem    `json:"by,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		return &Sort{Element: s.Element, Source: src, OrderBy: s.By}, nil

	case "ForEach", "Repeat":
		var s struct {
			Element
			Source      json.RawMessage `json:"source"`
			ElementExpr json.RawMessage `json:"element"`
			Scope       string          `json:"scope"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		el, err := DecodeExpression(s.ElementExpr)
		if err != nil {
			return nil, err
		}
		if tag == "ForEach" {
			return &ForEach{Element: s.Element, Source: src, Element_: el, Scope: s.Scope}, nil
		}
		return &Repeat{Element: s.Element, Source: src, Element_: el, Scope: s.Scope}, nil

	case "AggregateExpression":
		var s struct {
			Element
			Source    json.RawMessage `json:"source"`
			Iteration json.RawMessage `json:"iteration"`
			Starting  json.RawMessage `json:"starting,omitempty"`
			Scope     string          `json:"scope"`
			Path      string          `json:"path,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		body, err := DecodeExpression(s.Iteration)
		if err != nil {
			return nil, err
		}
		starting, err := DecodeExpression(s.Starting)
		if err != nil {
			return nil, err
		}
		return &Aggregate{Element: s.Element, Source: src, Body: body, Starting: starting, Scope: s.Scope, TotalName: s.Path}, nil

	case "As", "Is":
		var s struct {
			Element
			Operand         json.RawMessage `json:"operand"`
			AsTypeSpecifier TypeSpecifier   `json:"asTypeSpecifier,omitempty"`
			IsTypeSpecifier TypeSpecifier   `json:"isTypeSpecifier,omitempty"`
			Strict          bool            `json:"strict,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		if tag == "As" {
			return &As{Element: s.Element, Operand: op, AsTypeSpecifier: s.AsTypeSpecifier, Strict: s.Strict}, nil
		}
		return &Is{Element: s.Element, Operand: op, IsTypeSpecifier: s.IsTypeSpecifier}, nil

	case "Convert":
		var s struct {
			Element
			Operand         json.RawMessage `json:"operand"`
			ToType          string          `json:"toType,omitempty"`
			ToTypeSpecifier TypeSpecifier   `json:"toTypeSpecifier,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		return &Convert{Element: s.Element, Operand: op, ToType: s.ToType, ToTypeSpecifier: s.ToTypeSpecifier}, nil

	case "CanConvert":
		var s struct {
			Element
			Operand         json.RawMessage `json:"operand"`
			ToTypeSpecifier TypeSpecifier   `json:"toTypeSpecifier"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		op, err := DecodeExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		return &CanConvert{Element: s.Element, Operand: op, ToTypeSpecifier: s.ToTypeSpecifier}, nil

	case "If":
		var s struct {
			Element
			Condition json.RawMessage `json:"condition"`
			Then      json.RawMessage `json:"then"`
			Else      json.RawMessage `json:"else,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		cond, err := DecodeExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		then, err := DecodeExpression(s.Then)
		if err != nil {
			return nil, err
		}
		els, err := DecodeExpression(s.Else)
		if err != nil {
			return nil, err
		}
		return &If{Element: s.Element, Condition: cond, Then: then, Else: els}, nil

	case "Case":
		return decodeCase(raw)

	case "Query":
		return decodeQuery(raw)

	case "Retrieve":
		var s struct {
			Element
			DataType     string          `json:"dataType"`
			TemplateID   string          `json:"templateId,omitempty"`
			CodeProperty string          `json:"codeProperty,omitempty"`
			Codes        json.RawMessage `json:"codes,omitempty"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		codes, err := DecodeExpression(s.Codes)
		if err != nil {
			return nil, err
		}
		return &Retrieve{Element: s.Element, DataType: s.DataType, TemplateID: s.TemplateID, CodeProperty: s.CodeProperty, Codes: codes}, nil

	case "InCodeSystem", "InValueSet", "AnyInValueSet", "AnyInCodeSystem":
		return decodeTerminologyMembership(tag, raw)

	case "Message":
		var s struct {
			Element
			Source    json.RawMessage `json:"source"`
			Condition json.RawMessage `json:"condition,omitempty"`
			Code      json.RawMessage `json:"code,omitempty"`
			Severity  json.RawMessage `json:"severity,omitempty"`
			Message   json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		src, err := DecodeExpression(s.Source)
		if err != nil {
			return nil, err
		}
		cond, err := DecodeExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		code, err := DecodeExpression(s.Code)
		if err != nil {
			return nil, err
		}
		sev, err := DecodeExpression(s.Severity)
		if err != nil {
			return nil, err
		}
		msg, err := DecodeExpression(s.Message)
		if err != nil {
			return nil, err
		}
		return &Message{Element: s.Element, Source: src, Condition: cond, Code: code, Severity: sev, Message: msg}, nil

	default:
		return nil, fmt.Errorf("elm: DecodeExpression: unknown node type %q", tag)
	}
}

func decodePrecisionPair(raw json.RawMessage) ([2]Expression, string, Element, error) {
	var s struct {
		Element
		Operand   []json.RawMessage `json:"operand"`
		Precision string            `json:"precision,omitempty"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return [2]Expression{}, "", Element{}, err
	}
	if len(s.Operand) != 2 {
		return [2]Expression{}, "", Element{}, fmt.Errorf("elm: expected 2 operands, got %d", len(s.Operand))
	}
	var ops [2]Expression
	for i := range ops {
		e, err := DecodeExpression(s.Operand[i])
		if err != nil {
			return [2]Expression{}, "", Element{}, err
		}
		ops[i] = e
	}
	return ops, s.Precision, s.Element, nil
}

func decodeTemporalCtor(tag string, raw json.RawMessage) (Expression, error) {
	var s struct {
		Element
		Year           json.RawMessage `json:"year,omitempty"`
		Month          json.RawMessage `json:"month,omitempty"`
		Day            json.RawMessage `json:"day,omitempty"`
		Hour           json.RawMessage `json:"hour,omitempty"`
		Minute         json.RawMessage `json:"minute,omitempty"`
		Second         json.RawMessage `json:"second,omitempty"`
		Millisecond    json.RawMessage `json:"millisecond,omitempty"`
		TimezoneOffset json.RawMessage `json:"timezoneOffset,omitempty"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	decode := func(r json.RawMessage) (Expression, error) { return DecodeExpression(r) }
	year, err := decode(s.Year)
	if err != nil {
		return nil, err
	}
	month, err := decode(s.Month)
	if err != nil {
		return nil, err
	}
	day, err := decode(s.Day)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Date":
		return &DateCtor{Element: s.Element, Year: year, Month: month, Day: day}, nil
	case "Time":
		hour, err := decode(s.Hour)
		if err != nil {
			return nil, err
		}
		minute, err := decode(s.Minute)
		if err != nil {
			return nil, err
		}
		second, err := decode(s.Second)
		if err != nil {
			return nil, err
		}
		ms, err := decode(s.Millisecond)
		if err != nil {
			return nil, err
		}
		return &TimeCtor{Element: s.Element, Hour: hour, Minute: minute, Second: second, Millisecond: ms}, nil
	default:
		hour, err := decode(s.Hour)
		if err != nil {
			return nil, err
		}
		minute, err := decode(s.Minute)
		if err != nil {
			return nil, err
		}
		second, err := decode(s.Second)
		if err != nil {
			return nil, err
		}
		ms, err := decode(s.Millisecond)
		if err != nil {
			return nil, err
		}
		tz, err := decode(s.TimezoneOffset)
		if err != nil {
			return nil, err
		}
		return &DateTimeCtor{
			Element: s.Element, Year: year, Month: month, Day: day,
			Hour: hour, Minute: minute, Second: second, Millisecond: ms,
			TimezoneOffset: tz,
		}, nil
	}
}

func decodeCase(raw json.RawMessage) (Expression, error) {
	var s struct {
		Element
		Comparand json.RawMessage `json:"comparand,omitempty"`
		CaseItem  []struct {
			When json.RawMessage `json:"when"`
			Then json.RawMessage `json:"then"`
		} `json:"caseItem"`
		Else json.RawMessage `json:"else"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	comparand, err := DecodeExpression(s.Comparand)
	if err != nil {
		return nil, err
	}
	items := make([]CaseItem, len(s.CaseItem))
	for i, it := range s.CaseItem {
		when, err := DecodeExpression(it.When)
		if err != nil {
			return nil, err
		}
		then, err := DecodeExpression(it.Then)
		if err != nil {
			return nil, err
		}
		items[i] = CaseItem{When: when, Then: then}
	}
	els, err := DecodeExpression(s.Else)
	if err != nil {
		return nil, err
	}
	return &Case{Element: s.Element, Comparand: comparand, CaseItem: items, Else: els}, nil
}

func decodeTerminologyMembership(tag string, raw json.RawMessage) (Expression, error) {
	var s struct {
		Element
		Code       json.RawMessage `json:"code,omitempty"`
		Codes      json.RawMessage `json:"codes,omitempty"`
		CodeSystem json.RawMessage `json:"codesystem,omitempty"`
		ValueSet   json.RawMessage `json:"valueset,omitempty"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	code, err := DecodeExpression(s.Code)
	if err != nil {
		return nil, err
	}
	codes, err := DecodeExpression(s.Codes)
	if err != nil {
		return nil, err
	}
	cs, err := DecodeExpression(s.CodeSystem)
	if err != nil {
		return nil, err
	}
	vs, err := DecodeExpression(s.ValueSet)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "InCodeSystem":
		return &InCodeSystem{Element: s.Element, Code: code, CodeSystem: cs}, nil
	case "InValueSet":
		return &InValueSet{Element: s.Element, Code: code, ValueSet: vs}, nil
	case "AnyInValueSet":
		return &AnyInValueSet{Element: s.Element, Codes: codes, ValueSet: vs}, nil
	default:
		return &AnyInCodeSystem{Element: s.Element, Codes: codes, CodeSystem: cs}, nil
	}
}
