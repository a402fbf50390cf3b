package elm

import (
	"encoding/json"
	"fmt"
)

// DecodeExpression decodes one tagged ELM expression node, dispatching on
// its "type" field. An unknown tag is an error, since an
// ELM tree with a node the converter/engine doesn't recognize is malformed
// input, not a value this layer can guess at.
func DecodeExpression(raw json.RawMessage) (Expression, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("elm: decoding expression tag: %w", err)
	}

	if factory, ok := unaryFactories[head.Type]; ok {
		var shadow struct {
			Element
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &shadow); err != nil {
			return nil, err
		}
		operand, err := DecodeExpression(shadow.Operand)
		if err != nil {
			return nil, err
		}
		return factory(UnaryExpression{Element: shadow.Element, Operand: operand}), nil
	}

	if factory, ok := binaryFactories[head.Type]; ok {
		be, err := decodeBinary(raw)
		if err != nil {
			return nil, err
		}
		return factory(be), nil
	}

	if factory, ok := precisionFactories[head.Type]; ok {
		be, err := decodeBinary(raw)
		if err != nil {
			return nil, err
		}
		var p struct {
			Precision string `json:"precision"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return factory(withPrecision{Element: be.Element, Operand: be.Operand, Precision: p.Precision}), nil
	}

	if factory, ok := ternaryFactories[head.Type]; ok {
		var shadow struct {
			Element
			Operand []json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &shadow); err != nil {
			return nil, err
		}
		if len(shadow.Operand) != 3 {
			return nil, fmt.Errorf("elm: %s expects 3 operands, got %d", head.Type, len(shadow.Operand))
		}
		var ops [3]Expression
		for i := range ops {
			e, err := DecodeExpression(shadow.Operand[i])
			if err != nil {
				return nil, err
			}
			ops[i] = e
		}
		return factory(TernaryExpression{Element: shadow.Element, Operand: ops}), nil
	}

	if factory, ok := naryFactories[head.Type]; ok {
		var shadow struct {
			Element
			Operand []json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &shadow); err != nil {
			return nil, err
		}
		ops := make([]Expression, len(shadow.Operand))
		for i, o := range shadow.Operand {
			e, err := DecodeExpression(o)
			if err != nil {
				return nil, err
			}
			ops[i] = e
		}
		return factory(NaryExpression{Element: shadow.Element, Operand: ops}), nil
	}

	return decodeSpecial(head.Type, raw)
}

func decodeBinary(raw json.RawMessage) (BinaryExpression, error) {
	var shadow struct {
		Element
		Operand []json.RawMessage `json:"operand"`
	}
	if err := json.Unmarshal(raw, &shadow); err != nil {
		return BinaryExpression{}, err
	}
	if len(shadow.Operand) != 2 {
		return BinaryExpression{}, fmt.Errorf("elm: binary operator expects 2 operands, got %d", len(shadow.Operand))
	}
	var ops [2]Expression
	for i := range ops {
		e, err := DecodeExpression(shadow.Operand[i])
		if err != nil {
			return BinaryExpression{}, err
		}
		ops[i] = e
	}
	return BinaryExpression{Element: shadow.Element, Operand: ops}, nil
}

var unaryFactories = map[string]func(UnaryExpression) Expression{
	"Not":                func(u UnaryExpression) Expression { return &Not{u} },
	"IsNull":             func(u UnaryExpression) Expression { return &IsNull{u} },
	"IsTrue":             func(u UnaryExpression) Expression { return &IsTrue{u} },
	"IsFalse":            func(u UnaryExpression) Expression { return &IsFalse{u} },
	"Negate":             func(u UnaryExpression) Expression { return &Negate{u} },
	"Abs":                func(u UnaryExpression) Expression { return &Abs{u} },
	"Ceiling":            func(u UnaryExpression) Expression { return &Ceiling{u} },
	"Floor":              func(u UnaryExpression) Expression { return &Floor{u} },
	"Truncate":           func(u UnaryExpression) Expression { return &Truncate{u} },
	"Exp":                func(u UnaryExpression) Expression { return &Exp{u} },
	"Ln":                 func(u UnaryExpression) Expression { return &Ln{u} },
	"Successor":          func(u UnaryExpression) Expression { return &Successor{u} },
	"Predecessor":        func(u UnaryExpression) Expression { return &Predecessor{u} },
	"Length":             func(u UnaryExpression) Expression { return &Length{u} },
	"Upper":              func(u UnaryExpression) Expression { return &Upper{u} },
	"Lower":              func(u UnaryExpression) Expression { return &Lower{u} },
	"DateFrom":           func(u UnaryExpression) Expression { return &DateFrom{u} },
	"TimeFrom":           func(u UnaryExpression) Expression { return &TimeFrom{u} },
	"TimezoneOffsetFrom": func(u UnaryExpression) Expression { return &TimezoneOffsetFrom{u} },
	"Start":              func(u UnaryExpression) Expression { return &Start{u} },
	"End":                func(u UnaryExpression) Expression { return &End{u} },
	"Width":              func(u UnaryExpression) Expression { return &Width{u} },
	"PointFrom":          func(u UnaryExpression) Expression { return &PointFrom{u} },
	"Exists":             func(u UnaryExpression) Expression { return &Exists{u} },
	"SingletonFrom":      func(u UnaryExpression) Expression { return &SingletonFrom{u} },
	"Distinct":           func(u UnaryExpression) Expression { return &Distinct{u} },
	"Flatten":            func(u UnaryExpression) Expression { return &Flatten{u} },
	"Count":              func(u UnaryExpression) Expression { return &Count{u} },
	"Sum":                func(u UnaryExpression) Expression { return &Sum{u} },
	"Product":            func(u UnaryExpression) Expression { return &Product{u} },
	"Min":                func(u UnaryExpression) Expression { return &Min{u} },
	"Max":                func(u UnaryExpression) Expression { return &Max{u} },
	"Avg":                func(u UnaryExpression) Expression { return &Avg{u} },
	"Median":             func(u UnaryExpression) Expression { return &Median{u} },
	"Mode":               func(u UnaryExpression) Expression { return &Mode{u} },
	"StdDev":             func(u UnaryExpression) Expression { return &StdDev{u} },
	"Variance":           func(u UnaryExpression) Expression { return &Variance{u} },
	"PopulationStdDev":   func(u UnaryExpression) Expression { return &PopulationStdDev{u} },
	"PopulationVariance": func(u UnaryExpression) Expression { return &PopulationVariance{u} },
	"GeometricMean":      func(u UnaryExpression) Expression { return &GeometricMean{u} },
	"AllTrue":            func(u UnaryExpression) Expression { return &AllTrue{u} },
	"AnyTrue":            func(u UnaryExpression) Expression { return &AnyTrue{u} },
	"ToBoolean":          func(u UnaryExpression) Expression { return &ToBoolean{u} },
	"ToInteger":          func(u UnaryExpression) Expression { return &ToInteger{u} },
	"ToLong":             func(u UnaryExpression) Expression { return &ToLong{u} },
	"ToDecimal":          func(u UnaryExpression) Expression { return &ToDecimal{u} },
	"ToString":           func(u UnaryExpression) Expression { return &ToString{u} },
	"ToDate":             func(u UnaryExpression) Expression { return &ToDate{u} },
	"ToDateTime":         func(u UnaryExpression) Expression { return &ToDateTime{u} },
	"ToTime":             func(u UnaryExpression) Expression { return &ToTime{u} },
	"ToConcept":          func(u UnaryExpression) Expression { return &ToConcept{u} },
	"ToList":             func(u UnaryExpression) Expression { return &ToList{u} },
	"ToQuantity":         func(u UnaryExpression) Expression { return &ToQuantity{u} },
}

var binaryFactories = map[string]func(BinaryExpression) Expression{
	"Add":             func(b BinaryExpression) Expression { return &Add{b} },
	"Subtract":        func(b BinaryExpression) Expression { return &Subtract{b} },
	"Multiply":        func(b BinaryExpression) Expression { return &Multiply{b} },
	"Divide":          func(b BinaryExpression) Expression { return &Divide{b} },
	"TruncatedDivide": func(b BinaryExpression) Expression { return &TruncatedDivide{b} },
	"Modulo":          func(b BinaryExpression) Expression { return &Modulo{b} },
	"Power":           func(b BinaryExpression) Expression { return &Power{b} },
	"Log":             func(b BinaryExpression) Expression { return &Log{b} },
	"Equal":           func(b BinaryExpression) Expression { return &Equal{b} },
	"NotEqual":        func(b BinaryExpression) Expression { return &NotEqual{b} },
	"Equivalent":      func(b BinaryExpression) Expression { return &Equivalent{b} },
	"Less":            func(b BinaryExpression) Expression { return &Less{b} },
	"LessOrEqual":     func(b BinaryExpression) Expression { return &LessOrEqual{b} },
	"Greater":         func(b BinaryExpression) Expression { return &Greater{b} },
	"GreaterOrEqual":  func(b BinaryExpression) Expression { return &GreaterOrEqual{b} },
	"And":             func(b BinaryExpression) Expression { return &And{b} },
	"Or":              func(b BinaryExpression) Expression { return &Or{b} },
	"Xor":             func(b BinaryExpression) Expression { return &Xor{b} },
	"Implies":         func(b BinaryExpression) Expression { return &Implies{b} },
	"PositionOf":      func(b BinaryExpression) Expression { return &PositionOf{b} },
	"LastPositionOf":  func(b BinaryExpression) Expression { return &LastPositionOf{b} },
	"StartsWith":      func(b BinaryExpression) Expression { return &StartsWith{b} },
	"EndsWith":        func(b BinaryExpression) Expression { return &EndsWith{b} },
	"Matches":         func(b BinaryExpression) Expression { return &Matches{b} },
	"Except":          func(b BinaryExpression) Expression { return &Except{b} },
	"Indexer":         func(b BinaryExpression) Expression { return &Indexer{b} },
	"IndexOf":         func(b BinaryExpression) Expression { return &IndexOf{b} },
}

var precisionFactories = map[string]func(withPrecision) Expression{
	"In":                 func(w withPrecision) Expression { return &In{w} },
	"Contains":           func(w withPrecision) Expression { return &Contains{w} },
	"Includes":           func(w withPrecision) Expression { return &Includes{w} },
	"IncludedIn":         func(w withPrecision) Expression { return &IncludedIn{w} },
	"ProperlyIncludes":   func(w withPrecision) Expression { return &ProperlyIncludes{w} },
	"ProperlyIncludedIn": func(w withPrecision) Expression { return &ProperlyIncludedIn{w} },
	"Before":             func(w withPrecision) Expression { return &Before{w} },
	"After":              func(w withPrecision) Expression { return &After{w} },
	"Meets":              func(w withPrecision) Expression { return &Meets{w} },
	"MeetsBefore":        func(w withPrecision) Expression { return &MeetsBefore{w} },
	"MeetsAfter":         func(w withPrecision) Expression { return &MeetsAfter{w} },
	"Overlaps":           func(w withPrecision) Expression { return &Overlaps{w} },
	"OverlapsBefore":     func(w withPrecision) Expression { return &OverlapsBefore{w} },
	"OverlapsAfter":      func(w withPrecision) Expression { return &OverlapsAfter{w} },
	"Starts":             func(w withPrecision) Expression { return &Starts{w} },
	"Ends":               func(w withPrecision) Expression { return &Ends{w} },
}

var ternaryFactories = map[string]func(TernaryExpression) Expression{
	"ReplaceMatches": func(t TernaryExpression) Expression { return &ReplaceMatches{t} },
}

var naryFactories = map[string]func(NaryExpression) Expression{
	"Coalesce":    func(n NaryExpression) Expression { return &Coalesce{n} },
	"Concatenate": func(n NaryExpression) Expression { return &Concatenate{n} },
	"Union":       func(n NaryExpression) Expression { return &Union{n} },
	"Intersect":   func(n NaryExpression) Expression { return &Intersect{n} },
}
