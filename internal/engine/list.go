package engine

import (
	"context"
	"sort"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// List operators, grounded on DWScript's for-range evaluation of
// DWScript array expressions (internal/interp/interpreter.go), generalized
// to null-propagating CQL list semantics.

const maxRepeatIterations = 10000

func (e *Engine) evalExists(ctx context.Context, n *elm.Exists, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Boolean{Value: false}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Exists requires a List operand, got %T", v)
	}
	for _, el := range elements {
		if !isNullValue(el) {
			return value.Boolean{Value: true}, nil
		}
	}
	return value.Boolean{Value: false}, nil
}

func (e *Engine) sortedElements(ctx context.Context, source []value.Value, orderBy []elm.SortByItem, ec *EvaluationContext) ([]value.Value, error) {
	if len(orderBy) == 0 {
		return source, nil
	}
	sorted := append([]value.Value{}, source...)
	var sortErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		less, err := sortLess(sorted[i], sorted[j], orderBy)
		if err != nil {
			sortErr = err
		}
		return less
	})
	return sorted, sortErr
}

func sortLess(a, b value.Value, orderBy []elm.SortByItem) (bool, error) {
	for _, item := range orderBy {
		av, bv := a, b
		var err error
		if item.Path != "" {
			av, err = propertyValue(a, item.Path)
			if err != nil {
				return false, err
			}
			bv, err = propertyValue(b, item.Path)
			if err != nil {
				return false, err
			}
		}
		cmp, err := compareOrdered(av, bv)
		if err != nil {
			continue
		}
		if cmp == 0 {
			continue
		}
		if item.Direction == elm.SortDesc {
			return cmp > 0, nil
		}
		return cmp < 0, nil
	}
	return false, nil
}

func (e *Engine) evalFirst(ctx context.Context, n *elm.First, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "First requires a List source, got %T", v)
	}
	sorted, err := e.sortedElements(ctx, elements, n.OrderBy, ec)
	if err != nil {
		return nil, err
	}
	if len(sorted) == 0 {
		return value.Null{}, nil
	}
	return sorted[0], nil
}

func (e *Engine) evalLast(ctx context.Context, n *elm.Last, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Last requires a List source, got %T", v)
	}
	sorted, err := e.sortedElements(ctx, elements, n.OrderBy, ec)
	if err != nil {
		return nil, err
	}
	if len(sorted) == 0 {
		return value.Null{}, nil
	}
	return sorted[len(sorted)-1], nil
}

func (e *Engine) evalSingletonFrom(ctx context.Context, n *elm.SingletonFrom, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "SingletonFrom requires a List operand, got %T", v)
	}
	switch len(elements) {
	case 0:
		return value.Null{}, nil
	case 1:
		return elements[0], nil
	default:
		return nil, errInvalidOperand("", "SingletonFrom requires a List of at most one element, got %d", len(elements))
	}
}

func (e *Engine) evalIndexOf(ctx context.Context, n *elm.IndexOf, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	element, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(source, element) {
		return value.Null{}, nil
	}
	elements, ok := asList(source)
	if !ok {
		return nil, errInvalidOperand("", "IndexOf requires a List source, got %T", source)
	}
	for i, el := range elements {
		if eq, err := valuesEqual(el, element, false); err == nil && eq {
			return value.Integer{Value: int32(i)}, nil
		}
	}
	return value.Integer{Value: -1}, nil
}

func (e *Engine) evalDistinct(ctx context.Context, n *elm.Distinct, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Distinct requires a List operand, got %T", v)
	}
	return dedupeValues(elements), nil
}

func (e *Engine) evalFlatten(ctx context.Context, n *elm.Flatten, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Flatten requires a List operand, got %T", v)
	}
	var result []value.Value
	for _, el := range elements {
		if inner, ok := asList(el); ok {
			result = append(result, inner...)
		} else {
			result = append(result, el)
		}
	}
	return value.List{Elements: result}, nil
}

func (e *Engine) evalSlice(ctx context.Context, n *elm.Slice, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Slice requires a List source, got %T", v)
	}
	start := 0
	if n.StartIndex != nil {
		sv, err := e.evalOperand(ctx, n.StartIndex, ec)
		if err != nil {
			return nil, err
		}
		if isNullValue(sv) {
			return value.Null{}, nil
		}
		si, ok := sv.(value.Integer)
		if !ok {
			return nil, errInvalidOperand("", "Slice startIndex must be Integer")
		}
		start = int(si.Value)
	}
	end := len(elements)
	if n.EndIndex != nil {
		ev, err := e.evalOperand(ctx, n.EndIndex, ec)
		if err != nil {
			return nil, err
		}
		if isNullValue(ev) {
			return value.Null{}, nil
		}
		ei, ok := ev.(value.Integer)
		if !ok {
			return nil, errInvalidOperand("", "Slice endIndex must be Integer")
		}
		end = int(ei.Value)
	}
	if start < 0 {
		start = 0
	}
	if end > len(elements) {
		end = len(elements)
	}
	if start > end {
		return value.Null{}, nil
	}
	return value.List{Elements: append([]value.Value{}, elements[start:end]...)}, nil
}

func (e *Engine) evalSort(ctx context.Context, n *elm.Sort, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Sort requires a List source, got %T", v)
	}
	sorted, err := e.sortedElements(ctx, elements, n.OrderBy, ec)
	if err != nil {
		return nil, err
	}
	return value.List{Elements: sorted}, nil
}

func (e *Engine) evalForEach(ctx context.Context, n *elm.ForEach, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "ForEach requires a List source, got %T", v)
	}
	result := make([]value.Value, len(elements))
	for i, el := range elements {
		scope := ec.Push()
		scope.Bind(n.Scope, el)
		rv, err := e.Evaluate(ctx, n.Element_, scope)
		if err != nil {
			return nil, err
		}
		result[i] = rv
	}
	return value.List{Elements: result}, nil
}

func (e *Engine) evalRepeat(ctx context.Context, n *elm.Repeat, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Repeat requires a List source, got %T", v)
	}
	result := append([]value.Value{}, elements...)
	frontier := elements
	for iter := 0; len(frontier) > 0 && iter < maxRepeatIterations; iter++ {
		var next []value.Value
		for _, el := range frontier {
			scope := ec.Push()
			scope.Bind(n.Scope, el)
			rv, err := e.Evaluate(ctx, n.Element_, scope)
			if err != nil {
				return nil, err
			}
			if isNullValue(rv) {
				continue
			}
			isNew := true
			for _, existing := range result {
				if eq, err := valuesEqual(rv, existing, false); err == nil && eq {
					isNew = false
					break
				}
			}
			if isNew {
				result = append(result, rv)
				next = append(next, rv)
			}
		}
		frontier = next
	}
	return value.List{Elements: result}, nil
}
