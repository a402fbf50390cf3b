package elm

import (
	"encoding/json"
	"fmt"
)

// Library (de)serialization: the envelope is
// {"library": <Library>}, but deserialization also accepts a bare Library
// object. Every expression node is hand-marshaled by kind, following the
// teacher's jsonvalue/value.go MarshalJSON-by-hand convention over a closed
// kind set (DESIGN.md).

// libraryEnvelope is the {"library": ...} wire shape.
type libraryEnvelope struct {
	Library rawLibrary `json:"library"`
}

// rawLibrary mirrors Library's JSON shape but keeps Statements/Parameters/
// Functions as raw fields whose Expression children need manual decode.
type rawLibrary struct {
	Identifier       VersionedIdentifier `json:"identifier"`
	SchemaIdentifier VersionedIdentifier `json:"schemaIdentifier,omitempty"`
	Usings           []UsingDef          `json:"usings,omitempty"`
	Includes         []IncludeDef        `json:"includes,omitempty"`
	Parameters       []rawParameterDef   `json:"parameters,omitempty"`
	CodeSystems      []CodeSystemDef     `json:"codeSystems,omitempty"`
	ValueSets        []ValueSetDef       `json:"valueSets,omitempty"`
	Codes            []CodeDef           `json:"codes,omitempty"`
	Concepts         []ConceptDef        `json:"concepts,omitempty"`
	Contexts         []ContextDef        `json:"contexts,omitempty"`
	Statements       []rawExpressionDef  `json:"statements,omitempty"`
	Functions        []rawFunctionDef    `json:"functionDefs,omitempty"`
}

type rawParameterDef struct {
	Element
	Name          string        `json:"name"`
	AccessLevel   AccessLevel   `json:"accessLevel,omitempty"`
	ParameterType TypeSpecifier `json:"parameterTypeSpecifier,omitempty"`
	Default       json.RawMessage `json:"default,omitempty"`
}

type rawExpressionDef struct {
	Element
	Name        string          `json:"name"`
	Context     string          `json:"context,omitempty"`
	AccessLevel AccessLevel     `json:"accessLevel,omitempty"`
	Expression  json.RawMessage `json:"expression"`
}

type rawOperandDef struct {
	Name        string        `json:"name"`
	OperandType TypeSpecifier `json:"operandTypeSpecifier"`
}

type rawFunctionDef struct {
	Element
	Name                string          `json:"name"`
	Context             string          `json:"context,omitempty"`
	AccessLevel         AccessLevel     `json:"accessLevel,omitempty"`
	Fluent              bool            `json:"fluent,omitempty"`
	External            bool            `json:"external,omitempty"`
	Operands            []rawOperandDef `json:"operand,omitempty"`
	ResultTypeSpecifier TypeSpecifier   `json:"resultTypeSpecifier,omitempty"`
	Expression          json.RawMessage `json:"expression,omitempty"`
}

// MarshalJSON emits the envelope form.
func (l *Library) MarshalJSON() ([]byte, error) {
	m, err := libraryToMap(l)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{"library": m})
}

// UnmarshalJSON accepts either the envelope or a bare Library object.
func (l *Library) UnmarshalJSON(data []byte) error {
	var peek map[string]json.RawMessage
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	body := data
	if inner, ok := peek["library"]; ok {
		body = inner
	}
	var raw rawLibrary
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}
	l.Identifier = raw.Identifier
	l.SchemaIdentifier = raw.SchemaIdentifier
	l.Usings = raw.Usings
	l.Includes = raw.Includes
	l.CodeSystems = raw.CodeSystems
	l.ValueSets = raw.ValueSets
	l.Codes = raw.Codes
	l.Concepts = raw.Concepts
	l.Contexts = raw.Contexts

	l.Parameters = make([]ParameterDef, len(raw.Parameters))
	for i, p := range raw.Parameters {
		l.Parameters[i] = ParameterDef{
			Element: p.Element, Name: p.Name, AccessLevel: p.AccessLevel,
			ParameterType: p.ParameterType,
		}
		if len(p.Default) > 0 {
			def, err := DecodeExpression(p.Default)
			if err != nil {
				return fmt.Errorf("parameter %s default: %w", p.Name, err)
			}
			l.Parameters[i].Default = def
		}
	}

	l.Statements = make([]ExpressionDef, len(raw.Statements))
	for i, s := range raw.Statements {
		expr, err := DecodeExpression(s.Expression)
		if err != nil {
			return fmt.Errorf("statement %s: %w", s.Name, err)
		}
		l.Statements[i] = ExpressionDef{
			Element: s.Element, Name: s.Name, Context: s.Context,
			AccessLevel: s.AccessLevel, Expression: expr,
		}
	}

	l.Functions = make([]FunctionDef, len(raw.Functions))
	for i, f := range raw.Functions {
		fd := FunctionDef{
			Element: f.Element, Name: f.Name, Context: f.Context,
			AccessLevel: f.AccessLevel, Fluent: f.Fluent, External: f.External,
			ResultTypeSpecifier: f.ResultTypeSpecifier,
		}
		fd.Operands = make([]OperandDef, len(f.Operands))
		for j, o := range f.Operands {
			fd.Operands[j] = OperandDef{Name: o.Name, OperandType: o.OperandType}
		}
		if len(f.Expression) > 0 {
			body, err := DecodeExpression(f.Expression)
			if err != nil {
				return fmt.Errorf("function %s: %w", f.Name, err)
			}
			fd.Expression = body
		}
		l.Functions[i] = fd
	}
	return nil
}

func libraryToMap(l *Library) (map[string]interface{}, error) {
	m := map[string]interface{}{"identifier": l.Identifier}
	if l.SchemaIdentifier.ID != "" {
		m["schemaIdentifier"] = l.SchemaIdentifier
	}
	if len(l.Usings) > 0 {
		m["usings"] = l.Usings
	}
	if len(l.Includes) > 0 {
		m["includes"] = l.Includes
	}
	if len(l.Parameters) > 0 {
		params := make([]map[string]interface{}, len(l.Parameters))
		for i, p := range l.Parameters {
			pm := map[string]interface{}{"name": p.Name}
			if p.LocalID != "" {
				pm["localId"] = p.LocalID
			}
			if p.AccessLevel != "" {
				pm["accessLevel"] = p.AccessLevel
			}
			if !p.ParameterType.IsZero() {
				pm["parameterTypeSpecifier"] = p.ParameterType
			}
			if p.Default != nil {
				raw, err := MarshalExpression(p.Default)
				if err != nil {
					return nil, err
				}
				pm["default"] = json.RawMessage(raw)
			}
			params[i] = pm
		}
		m["parameters"] = params
	}
	if len(l.CodeSystems) > 0 {
		m["codeSystems"] = l.CodeSystems
	}
	if len(l.ValueSets) > 0 {
		m["valueSets"] = l.ValueSets
	}
	if len(l.Codes) > 0 {
		m["codes"] = l.Codes
	}
	if len(l.Concepts) > 0 {
		m["concepts"] = l.Concepts
	}
	if len(l.Contexts) > 0 {
		m["contexts"] = l.Contexts
	}
	if len(l.Statements) > 0 {
		stmts := make([]map[string]interface{}, len(l.Statements))
		for i, s := range l.Statements {
			raw, err := MarshalExpression(s.Expression)
			if err != nil {
				return nil, err
			}
			sm := map[string]interface{}{"name": s.Name, "expression": json.RawMessage(raw)}
			if s.LocalID != "" {
				sm["localId"] = s.LocalID
			}
			if s.Context != "" {
				sm["context"] = s.Context
			}
			if s.AccessLevel != "" {
				sm["accessLevel"] = s.AccessLevel
			}
			stmts[i] = sm
		}
		m["statements"] = stmts
	}
	if len(l.Functions) > 0 {
		fns := make([]map[string]interface{}, len(l.Functions))
		for i, f := range l.Functions {
			fm := map[string]interface{}{"name": f.Name, "operand": f.Operands}
			if f.LocalID != "" {
				fm["localId"] = f.LocalID
			}
			if f.Context != "" {
				fm["context"] = f.Context
			}
			if f.AccessLevel != "" {
				fm["accessLevel"] = f.AccessLevel
			}
			if f.Fluent {
				fm["fluent"] = true
			}
			if f.External {
				fm["external"] = true
			}
			if !f.ResultTypeSpecifier.IsZero() {
				fm["resultTypeSpecifier"] = f.ResultTypeSpecifier
			}
			if f.Expression != nil {
				raw, err := MarshalExpression(f.Expression)
				if err != nil {
					return nil, err
				}
				fm["expression"] = json.RawMessage(raw)
			}
			fns[i] = fm
		}
		m["functionDefs"] = fns
	}
	return m, nil
}
