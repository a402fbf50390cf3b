package engine

import (
	"context"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// Query implements the canonical multi-source query pipeline --
// source cross product, let, with/without relationship
// filtering, where, return (or single-alias/tuple passthrough), aggregate,
// sort -- mirrored at the value level from the shape internal/semantic's
// queryType() already validates at the type level.

type queryRow struct {
	scope *EvaluationContext
}

func (e *Engine) evalQuery(ctx context.Context, n *elm.Query, ec *EvaluationContext) (value.Value, error) {
	if len(n.Source) == 0 {
		return value.List{}, nil
	}

	// singleton tracks whether the query has exactly one source and that
	// source evaluated to a non-List value -- per step 9, such a query's
	// result is the single value itself (or Null), not a one-element List.
	singleton := len(n.Source) == 1
	rows := []queryRow{{scope: ec}}
	for _, src := range n.Source {
		v, err := e.evalOperand(ctx, src.Expression, ec)
		if err != nil {
			return nil, err
		}
		var elements []value.Value
		if !isNullValue(v) {
			if els, ok := asList(v); ok {
				elements = els
				singleton = false
			} else {
				elements = []value.Value{v}
			}
		}
		var next []queryRow
		for _, row := range rows {
			for _, el := range elements {
				child := row.scope.Push()
				child.Bind(src.Alias, el)
				next = append(next, queryRow{scope: child})
			}
		}
		rows = next
	}

	for _, let := range n.Let {
		for i, row := range rows {
			v, err := e.Evaluate(ctx, let.Expression, row.scope)
			if err != nil {
				return nil, err
			}
			row.scope.Bind(let.Identifier, v)
			rows[i] = row
		}
	}

	for _, rel := range n.Relationship {
		var filtered []queryRow
		for _, row := range rows {
			related, err := e.evalOperand(ctx, rel.Expression, row.scope)
			if err != nil {
				return nil, err
			}
			relatedElements, _ := asList(related)
			satisfied := false
			for _, rv := range relatedElements {
				child := row.scope.Push()
				child.Bind(rel.Alias, rv)
				cond, err := e.Evaluate(ctx, rel.SuchThat, child)
				if err != nil {
					return nil, err
				}
				if b, null := asBoolean(cond); !null && b {
					satisfied = true
					break
				}
			}
			keep := satisfied
			if rel.Without {
				keep = !satisfied
			}
			if keep {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if n.Where != nil {
		var filtered []queryRow
		for _, row := range rows {
			cond, err := e.Evaluate(ctx, n.Where, row.scope)
			if err != nil {
				return nil, err
			}
			if b, null := asBoolean(cond); !null && b {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if n.Aggregate != nil {
		var total value.Value = value.Null{}
		var err error
		if n.Aggregate.Starting != nil {
			total, err = e.evalOperand(ctx, n.Aggregate.Starting, ec)
			if err != nil {
				return nil, err
			}
		}
		totalName := n.Aggregate.TotalName
		if totalName == "" {
			totalName = "$this"
		}
		for _, row := range rows {
			row.scope.Bind(totalName, total)
			total, err = e.Evaluate(ctx, n.Aggregate.Body, row.scope)
			if err != nil {
				return nil, err
			}
		}
		return total, nil
	}

	var result []value.Value
	if n.Return != nil {
		for _, row := range rows {
			v, err := e.Evaluate(ctx, n.Return.Expression, row.scope)
			if err != nil {
				return nil, err
			}
			result = append(result, v)
		}
		if n.Return.Distinct {
			result = dedupeValues(result).(value.List).Elements
		}
	} else if len(n.Source) == 1 {
		alias := n.Source[0].Alias
		for _, row := range rows {
			v := e.resolveOrNull(alias, row.scope)
			result = append(result, v)
		}
	} else {
		for _, row := range rows {
			names := make([]string, len(n.Source))
			values := make(map[string]value.Value, len(n.Source))
			for i, src := range n.Source {
				names[i] = src.Alias
				values[src.Alias] = e.resolveOrNull(src.Alias, row.scope)
			}
			result = append(result, value.Tuple{Names: names, Values: values})
		}
	}

	if n.Sort != nil && len(n.Sort.By) > 0 {
		sorted, err := e.sortedElements(ctx, result, n.Sort.By, ec)
		if err != nil {
			return nil, err
		}
		result = sorted
	}

	if singleton {
		if len(result) == 0 {
			return value.Null{}, nil
		}
		return result[0], nil
	}

	return value.List{Elements: result}, nil
}
