package engine

import (
	"context"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// Three-valued logic, grounded on CQL's truth tables and DWScript's
// evalBooleanBinaryOp (internal/interp/interpreter.go) generalized from
// two-valued to three-valued (null-propagating) logic.

func (e *Engine) evalAnd(ctx context.Context, n *elm.And, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	lb, lnull := asBoolean(left)
	if !lnull && !lb {
		return value.Boolean{Value: false}, nil
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	rb, rnull := asBoolean(right)
	if !rnull && !rb {
		return value.Boolean{Value: false}, nil
	}
	if lnull || rnull {
		return value.Null{}, nil
	}
	return value.Boolean{Value: lb && rb}, nil
}

func (e *Engine) evalOr(ctx context.Context, n *elm.Or, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	lb, lnull := asBoolean(left)
	if !lnull && lb {
		return value.Boolean{Value: true}, nil
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	rb, rnull := asBoolean(right)
	if !rnull && rb {
		return value.Boolean{Value: true}, nil
	}
	if lnull || rnull {
		return value.Null{}, nil
	}
	return value.Boolean{Value: lb || rb}, nil
}

func (e *Engine) evalXor(ctx context.Context, n *elm.Xor, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	lb, lnull := asBoolean(left)
	rb, rnull := asBoolean(right)
	if lnull || rnull {
		return value.Null{}, nil
	}
	return value.Boolean{Value: lb != rb}, nil
}

// Implies is defined as (not A) or B rather than evaluated eagerly, so it
// inherits Or's short-circuit-on-true-not-A behavior.
func (e *Engine) evalImplies(ctx context.Context, n *elm.Implies, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	lb, lnull := asBoolean(left)
	if !lnull && !lb {
		return value.Boolean{Value: true}, nil
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	rb, rnull := asBoolean(right)
	if !rnull && rb {
		return value.Boolean{Value: true}, nil
	}
	if lnull || rnull {
		return value.Null{}, nil
	}
	return value.Boolean{Value: !lb || rb}, nil
}

func (e *Engine) evalNot(ctx context.Context, n *elm.Not, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	b, null := asBoolean(v)
	if null {
		return value.Null{}, nil
	}
	return value.Boolean{Value: !b}, nil
}

func (e *Engine) evalIsNull(ctx context.Context, n *elm.IsNull, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: isNullValue(v)}, nil
}

func (e *Engine) evalIsTrue(ctx context.Context, n *elm.IsTrue, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	b, null := asBoolean(v)
	return value.Boolean{Value: !null && b}, nil
}

func (e *Engine) evalIsFalse(ctx context.Context, n *elm.IsFalse, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	b, null := asBoolean(v)
	return value.Boolean{Value: !null && !b}, nil
}

func (e *Engine) evalCoalesce(ctx context.Context, n *elm.Coalesce, ec *EvaluationContext) (value.Value, error) {
	for _, operand := range n.Operand {
		v, err := e.evalOperand(ctx, operand, ec)
		if err != nil {
			return nil, err
		}
		if !isNullValue(v) {
			return v, nil
		}
	}
	return value.Null{}, nil
}
