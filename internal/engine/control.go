package engine

import (
	"context"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// If/Case, grounded on DWScript's evalIfStmt (internal/interp/interpreter.go):
// a null condition (neither true nor false) takes the else branch, per
// CQL's three-valued-logic rule for conditional expressions.

func (e *Engine) evalIf(ctx context.Context, n *elm.If, ec *EvaluationContext) (value.Value, error) {
	cond, err := e.evalOperand(ctx, n.Condition, ec)
	if err != nil {
		return nil, err
	}
	b, null := asBoolean(cond)
	if !null && b {
		return e.evalOperand(ctx, n.Then, ec)
	}
	return e.evalOperand(ctx, n.Else, ec)
}

func (e *Engine) evalCase(ctx context.Context, n *elm.Case, ec *EvaluationContext) (value.Value, error) {
	if n.Comparand != nil {
		comparand, err := e.evalOperand(ctx, n.Comparand, ec)
		if err != nil {
			return nil, err
		}
		for _, item := range n.CaseItem {
			when, err := e.evalOperand(ctx, item.When, ec)
			if err != nil {
				return nil, err
			}
			eq, err := valuesEqual(comparand, when, false)
			if err == nil && eq {
				return e.evalOperand(ctx, item.Then, ec)
			}
		}
		return e.evalOperand(ctx, n.Else, ec)
	}
	for _, item := range n.CaseItem {
		when, err := e.evalOperand(ctx, item.When, ec)
		if err != nil {
			return nil, err
		}
		b, null := asBoolean(when)
		if !null && b {
			return e.evalOperand(ctx, item.Then, ec)
		}
	}
	return e.evalOperand(ctx, n.Else, ec)
}
