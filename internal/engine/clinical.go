package engine

import (
	"context"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/value"
)

// Clinical retrieve and terminology operators, wired against the pluggable
// provider.DataRetriever/provider.TerminologyProvider collaborators
// (DESIGN.md's internal/provider entry) -- the engine never reaches into a
// concrete data store itself.

func (e *Engine) evalRetrieve(ctx context.Context, n *elm.Retrieve, ec *EvaluationContext) (value.Value, error) {
	if e.data == nil {
		return nil, errors.New(errors.KindEvaluation, errors.CodeNoDataRetriever, "", "Retrieve requires a DataRetriever, none configured")
	}
	var codes []value.Code
	if n.Codes != nil {
		codesVal, err := e.evalOperand(ctx, n.Codes, ec)
		if err != nil {
			return nil, err
		}
		switch cv := codesVal.(type) {
		case value.Code:
			codes = []value.Code{cv}
		case value.Concept:
			codes = cv.Codes
		case value.List:
			for _, el := range cv.Elements {
				if c, ok := el.(value.Code); ok {
					codes = append(codes, c)
				}
			}
		}
	}
	instances, err := e.data.Retrieve(ctx, n.DataType, n.CodeProperty, codes)
	if err != nil {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeRetrieveFailed, "", "Retrieve[%s] failed: %v", n.DataType, err)
	}
	return value.List{ElementHint: n.DataType, Elements: instances}, nil
}

func (e *Engine) evalInCodeSystem(ctx context.Context, n *elm.InCodeSystem, ec *EvaluationContext) (value.Value, error) {
	codeVal, err := e.evalOperand(ctx, n.Code, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(codeVal) {
		return value.Null{}, nil
	}
	code, ok := codeVal.(value.Code)
	if !ok {
		return nil, errInvalidOperand("", "InCodeSystem requires a Code operand, got %T", codeVal)
	}
	systemID, err := e.codeSystemID(ctx, n.CodeSystem, ec)
	if err != nil {
		return nil, err
	}
	in, err := e.term.InCodeSystem(ctx, code, systemID)
	if err != nil {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeTerminologyFailed, "", "InCodeSystem failed: %v", err)
	}
	return value.Boolean{Value: in}, nil
}

func (e *Engine) evalInValueSet(ctx context.Context, n *elm.InValueSet, ec *EvaluationContext) (value.Value, error) {
	codeVal, err := e.evalOperand(ctx, n.Code, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(codeVal) {
		return value.Null{}, nil
	}
	code, ok := codeVal.(value.Code)
	if !ok {
		return nil, errInvalidOperand("", "InValueSet requires a Code operand, got %T", codeVal)
	}
	valueSetID, err := e.valueSetID(ctx, n.ValueSet, ec)
	if err != nil {
		return nil, err
	}
	in, err := e.term.InValueSet(ctx, code, valueSetID)
	if err != nil {
		return nil, errors.Newf(errors.KindEvaluation, errors.CodeTerminologyFailed, "", "InValueSet failed: %v", err)
	}
	return value.Boolean{Value: in}, nil
}

func (e *Engine) evalAnyInValueSet(ctx context.Context, n *elm.AnyInValueSet, ec *EvaluationContext) (value.Value, error) {
	codesVal, err := e.evalOperand(ctx, n.Codes, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(codesVal) {
		return value.Boolean{Value: false}, nil
	}
	elements, ok := asList(codesVal)
	if !ok {
		return nil, errInvalidOperand("", "AnyInValueSet requires a List<Code> operand")
	}
	valueSetID, err := e.valueSetID(ctx, n.ValueSet, ec)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		code, ok := el.(value.Code)
		if !ok {
			continue
		}
		in, err := e.term.InValueSet(ctx, code, valueSetID)
		if err != nil {
			return nil, errors.Newf(errors.KindEvaluation, errors.CodeTerminologyFailed, "", "AnyInValueSet failed: %v", err)
		}
		if in {
			return value.Boolean{Value: true}, nil
		}
	}
	return value.Boolean{Value: false}, nil
}

func (e *Engine) evalAnyInCodeSystem(ctx context.Context, n *elm.AnyInCodeSystem, ec *EvaluationContext) (value.Value, error) {
	codesVal, err := e.evalOperand(ctx, n.Codes, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(codesVal) {
		return value.Boolean{Value: false}, nil
	}
	elements, ok := asList(codesVal)
	if !ok {
		return nil, errInvalidOperand("", "AnyInCodeSystem requires a List<Code> operand")
	}
	systemID, err := e.codeSystemID(ctx, n.CodeSystem, ec)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		code, ok := el.(value.Code)
		if !ok {
			continue
		}
		in, err := e.term.InCodeSystem(ctx, code, systemID)
		if err != nil {
			return nil, errors.Newf(errors.KindEvaluation, errors.CodeTerminologyFailed, "", "AnyInCodeSystem failed: %v", err)
		}
		if in {
			return value.Boolean{Value: true}, nil
		}
	}
	return value.Boolean{Value: false}, nil
}

// valueSetID/codeSystemID resolve either a direct ValueSetRef/CodeSystemRef
// (looked up in the library's declarations for its declared id) or an
// arbitrary String-valued expression.
func (e *Engine) valueSetID(ctx context.Context, expr elm.Expression, ec *EvaluationContext) (string, error) {
	if ref, ok := expr.(*elm.ValueSetRef); ok {
		for i := range e.library.ValueSets {
			if e.library.ValueSets[i].Name == ref.Name {
				return e.library.ValueSets[i].ID, nil
			}
		}
		return ref.Name, nil
	}
	v, err := e.evalOperand(ctx, expr, ec)
	if err != nil {
		return "", err
	}
	s, _ := asString(v)
	return s, nil
}

func (e *Engine) codeSystemID(ctx context.Context, expr elm.Expression, ec *EvaluationContext) (string, error) {
	if ref, ok := expr.(*elm.CodeSystemRef); ok {
		for i := range e.library.CodeSystems {
			if e.library.CodeSystems[i].Name == ref.Name {
				return e.library.CodeSystems[i].ID, nil
			}
		}
		return ref.Name, nil
	}
	v, err := e.evalOperand(ctx, expr, ec)
	if err != nil {
		return "", err
	}
	s, _ := asString(v)
	return s, nil
}

func (e *Engine) evalMessage(ctx context.Context, n *elm.Message, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if n.Condition != nil {
		cond, err := e.evalOperand(ctx, n.Condition, ec)
		if err != nil {
			return nil, err
		}
		if b, null := asBoolean(cond); null || !b {
			return source, nil
		}
	}
	msgVal, err := e.evalOperand(ctx, n.Message, ec)
	if err != nil {
		return nil, err
	}
	msg, _ := asString(msgVal)
	severity := "message"
	if n.Severity != nil {
		sv, err := e.evalOperand(ctx, n.Severity, ec)
		if err != nil {
			return nil, err
		}
		if s, ok := asString(sv); ok {
			severity = s
		}
	}
	switch severity {
	case "error":
		e.log.Error(msg)
	case "warning":
		e.log.Warn(msg)
	default:
		e.log.Info(msg)
	}
	return source, nil
}
