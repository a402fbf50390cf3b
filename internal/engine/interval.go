package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// Interval/list set operators, grounded on point-in-interval and
// Allen's-interval-algebra relations. The teacher has no interval
// concept (DWScript has no Interval type), so these are built fresh,
// sharing the isBelowLow/isAboveHigh/touchesLow/
// touchesHigh helpers value/interval.go already forward-references.

func isBelowLow(iv value.Interval, p value.Value) bool {
	if iv.Low == nil {
		return false
	}
	cmp, err := compareOrdered(p, iv.Low)
	if err != nil {
		return false
	}
	if iv.LowClosed {
		return cmp < 0
	}
	return cmp <= 0
}

func isAboveHigh(iv value.Interval, p value.Value) bool {
	if iv.High == nil {
		return false
	}
	cmp, err := compareOrdered(p, iv.High)
	if err != nil {
		return false
	}
	if iv.HighClosed {
		return cmp > 0
	}
	return cmp >= 0
}

func touchesLow(iv value.Interval, p value.Value) bool {
	if iv.Low == nil {
		return false
	}
	cmp, err := compareOrdered(p, iv.Low)
	return err == nil && cmp == 0
}

func touchesHigh(iv value.Interval, p value.Value) bool {
	if iv.High == nil {
		return false
	}
	cmp, err := compareOrdered(p, iv.High)
	return err == nil && cmp == 0
}

func pointInInterval(iv value.Interval, p value.Value) bool {
	return !isBelowLow(iv, p) && !isAboveHigh(iv, p)
}

func (e *Engine) evalIn(ctx context.Context, n *elm.In, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	if iv, ok := asInterval(right); ok {
		return value.Boolean{Value: pointInInterval(iv, left)}, nil
	}
	if elements, ok := asList(right); ok {
		for _, el := range elements {
			eq, err := valuesEqual(left, el, false)
			if err == nil && eq {
				return value.Boolean{Value: true}, nil
			}
		}
		return value.Boolean{Value: false}, nil
	}
	return nil, errInvalidOperand("", "In requires an Interval or List right operand, got %T", right)
}

func (e *Engine) evalContains(ctx context.Context, n *elm.Contains, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	if iv, ok := asInterval(left); ok {
		return value.Boolean{Value: pointInInterval(iv, right)}, nil
	}
	if elements, ok := asList(left); ok {
		for _, el := range elements {
			eq, err := valuesEqual(el, right, false)
			if err == nil && eq {
				return value.Boolean{Value: true}, nil
			}
		}
		return value.Boolean{Value: false}, nil
	}
	return nil, errInvalidOperand("", "Contains requires an Interval or List left operand, got %T", left)
}

func (e *Engine) evalIncludes(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, properly bool) (value.Value, error) {
	left, err := e.evalOperand(ctx, operands[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, operands[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lIv, lok := asInterval(left)
	rIv, rok := asInterval(right)
	if lok && rok {
		includes := !isBelowLow(lIv, orHigh(rIv)) && pointInInterval(lIv, boundedLow(rIv)) && pointInInterval(lIv, boundedHigh(rIv))
		if !includes {
			return value.Boolean{Value: false}, nil
		}
		if properly {
			return value.Boolean{Value: !intervalEqual(lIv, rIv, false)}, nil
		}
		return value.Boolean{Value: true}, nil
	}
	lList, lok2 := asList(left)
	rList, rok2 := asList(right)
	if lok2 && rok2 {
		for _, re := range rList {
			found := false
			for _, le := range lList {
				eq, err := valuesEqual(le, re, false)
				if err == nil && eq {
					found = true
					break
				}
			}
			if !found {
				return value.Boolean{Value: false}, nil
			}
		}
		if properly {
			return value.Boolean{Value: len(lList) > len(rList)}, nil
		}
		return value.Boolean{Value: true}, nil
	}
	return nil, errInvalidOperand("", "Includes requires two Intervals or two Lists")
}

func (e *Engine) evalIncludedIn(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, properly bool) (value.Value, error) {
	swapped := [2]elm.Expression{operands[1], operands[0]}
	return e.evalIncludes(ctx, swapped, precision, ec, properly)
}

func orHigh(iv value.Interval) value.Value { return iv.High }
func boundedLow(iv value.Interval) value.Value {
	if iv.Low == nil {
		return iv.High
	}
	return iv.Low
}
func boundedHigh(iv value.Interval) value.Value {
	if iv.High == nil {
		return iv.Low
	}
	return iv.High
}

func (e *Engine) evalBeforeAfter(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, before bool) (value.Value, error) {
	left, err := e.evalOperand(ctx, operands[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, operands[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lHigh, lLow, lok := intervalBounds(left)
	rHigh, rLow, rok := intervalBounds(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Before/After requires point or Interval operands")
	}
	if before {
		if lHigh == nil || rLow == nil {
			return value.Null{}, nil
		}
		cmp, err := compareOrdered(lHigh, rLow)
		if err != nil {
			return nil, err
		}
		return value.Boolean{Value: cmp < 0}, nil
	}
	if lLow == nil || rHigh == nil {
		return value.Null{}, nil
	}
	cmp, err := compareOrdered(lLow, rHigh)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: cmp > 0}, nil
}

// intervalBounds returns (high, low) for v: itself twice if v is a point
// value, or its endpoints if v is an Interval.
func intervalBounds(v value.Value) (value.Value, value.Value, bool) {
	if iv, ok := asInterval(v); ok {
		return iv.High, iv.Low, true
	}
	return v, v, true
}

func (e *Engine) evalMeets(ctx context.Context, n *elm.Meets, ec *EvaluationContext) (value.Value, error) {
	before, err := e.evalMeetsBeforeAfter(ctx, n.Operand, n.Precision, ec, true)
	if err != nil {
		return nil, err
	}
	if b, null := asBoolean(before); !null && b {
		return value.Boolean{Value: true}, nil
	}
	return e.evalMeetsBeforeAfter(ctx, n.Operand, n.Precision, ec, false)
}

func (e *Engine) evalMeetsBeforeAfter(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, before bool) (value.Value, error) {
	left, err := e.evalOperand(ctx, operands[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, operands[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lIv, lok := asInterval(left)
	rIv, rok := asInterval(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Meets requires Interval operands")
	}
	if before {
		if lIv.High == nil || rIv.Low == nil {
			return value.Null{}, nil
		}
		return value.Boolean{Value: isAdjacent(lIv.High, rIv.Low)}, nil
	}
	if lIv.Low == nil || rIv.High == nil {
		return value.Null{}, nil
	}
	return value.Boolean{Value: isAdjacent(rIv.High, lIv.Low)}, nil
}

// isAdjacent reports whether a is the immediate predecessor of b under
// their shared successor operator -- approximated here via ordering
// equality of Successor(a) and b for numeric point types.
func isAdjacent(a, b value.Value) bool {
	if _, ok := numericKindRank(a); ok {
		ad, _ := toDecimal(a)
		bd, _ := toDecimal(b)
		return ad.Add(decimal.NewFromInt(1)).Equal(bd)
	}
	ac, aok := componentsOf(a)
	bc, bok := componentsOf(b)
	if aok && bok {
		return compareComponents(ac, bc) == 0
	}
	return false
}

func (e *Engine) evalOverlaps(ctx context.Context, n *elm.Overlaps, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lIv, lok := asInterval(left)
	rIv, rok := asInterval(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Overlaps requires Interval operands")
	}
	return value.Boolean{Value: intervalsOverlap(lIv, rIv)}, nil
}

func intervalsOverlap(a, b value.Interval) bool {
	if a.Low != nil && b.High != nil {
		cmp, err := compareOrdered(a.Low, b.High)
		if err == nil && cmp > 0 {
			return false
		}
	}
	if b.Low != nil && a.High != nil {
		cmp, err := compareOrdered(b.Low, a.High)
		if err == nil && cmp > 0 {
			return false
		}
	}
	return true
}

func (e *Engine) evalOverlapsBeforeAfter(ctx context.Context, operands [2]elm.Expression, precision string, ec *EvaluationContext, before bool) (value.Value, error) {
	left, err := e.evalOperand(ctx, operands[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, operands[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lIv, lok := asInterval(left)
	rIv, rok := asInterval(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "OverlapsBefore/OverlapsAfter requires Interval operands")
	}
	if !intervalsOverlap(lIv, rIv) {
		return value.Boolean{Value: false}, nil
	}
	if before {
		if lIv.Low == nil || rIv.Low == nil {
			return value.Null{}, nil
		}
		cmp, err := compareOrdered(lIv.Low, rIv.Low)
		if err != nil {
			return nil, err
		}
		return value.Boolean{Value: cmp < 0}, nil
	}
	if lIv.High == nil || rIv.High == nil {
		return value.Null{}, nil
	}
	cmp, err := compareOrdered(lIv.High, rIv.High)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: cmp > 0}, nil
}

func (e *Engine) evalStarts(ctx context.Context, n *elm.Starts, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lIv, lok := asInterval(left)
	rIv, rok := asInterval(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Starts requires Interval operands")
	}
	eq, err := endpointEqual(lIv.Low, rIv.Low)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: eq}, nil
}

func (e *Engine) evalEnds(ctx context.Context, n *elm.Ends, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lIv, lok := asInterval(left)
	rIv, rok := asInterval(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Ends requires Interval operands")
	}
	eq, err := endpointEqual(lIv.High, rIv.High)
	if err != nil {
		return nil, err
	}
	return value.Boolean{Value: eq}, nil
}

func endpointEqual(a, b value.Value) (bool, error) {
	if a == nil && b == nil {
		return true, nil
	}
	if a == nil || b == nil {
		return false, nil
	}
	return valuesEqual(a, b, false)
}

func (e *Engine) evalUnion(ctx context.Context, n *elm.Union, ec *EvaluationContext) (value.Value, error) {
	if len(n.Operand) == 0 {
		return value.List{}, nil
	}
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	if lIv, lok := asInterval(left); lok {
		rIv, rok := asInterval(right)
		if !rok || !intervalsOverlap(lIv, rIv) {
			return nil, errInvalidOperand("", "Union of non-overlapping Intervals is undefined")
		}
		return unionIntervals(lIv, rIv), nil
	}
	lList, _ := asList(left)
	rList, _ := asList(right)
	result := append(append([]value.Value{}, lList...), rList...)
	return dedupeValues(result), nil
}

func unionIntervals(a, b value.Interval) value.Interval {
	low, lowClosed := a.Low, a.LowClosed
	if b.Low == nil || (a.Low != nil && mustCompare(b.Low, a.Low) < 0) {
		low, lowClosed = b.Low, b.LowClosed
	}
	high, highClosed := a.High, a.HighClosed
	if b.High == nil || (a.High != nil && mustCompare(b.High, a.High) > 0) {
		high, highClosed = b.High, b.HighClosed
	}
	return value.Interval{PointType: a.PointType, Low: low, LowClosed: lowClosed, High: high, HighClosed: highClosed}
}

func mustCompare(a, b value.Value) int {
	cmp, err := compareOrdered(a, b)
	if err != nil {
		return 0
	}
	return cmp
}

func (e *Engine) evalIntersect(ctx context.Context, n *elm.Intersect, ec *EvaluationContext) (value.Value, error) {
	if len(n.Operand) == 0 {
		return value.List{}, nil
	}
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	if lIv, lok := asInterval(left); lok {
		rIv, rok := asInterval(right)
		if !rok || !intervalsOverlap(lIv, rIv) {
			return value.Null{}, nil
		}
		return intersectIntervals(lIv, rIv), nil
	}
	lList, _ := asList(left)
	rList, _ := asList(right)
	var result []value.Value
	for _, le := range lList {
		for _, re := range rList {
			if eq, err := valuesEqual(le, re, false); err == nil && eq {
				result = append(result, le)
				break
			}
		}
	}
	return value.List{Elements: dedupeValues(result).(value.List).Elements}, nil
}

func intersectIntervals(a, b value.Interval) value.Interval {
	low, lowClosed := a.Low, a.LowClosed
	if a.Low == nil || (b.Low != nil && mustCompare(b.Low, a.Low) > 0) {
		low, lowClosed = b.Low, b.LowClosed
	}
	high, highClosed := a.High, a.HighClosed
	if a.High == nil || (b.High != nil && mustCompare(b.High, a.High) < 0) {
		high, highClosed = b.High, b.HighClosed
	}
	return value.Interval{PointType: a.PointType, Low: low, LowClosed: lowClosed, High: high, HighClosed: highClosed}
}

func (e *Engine) evalExcept(ctx context.Context, n *elm.Except, ec *EvaluationContext) (value.Value, error) {
	left, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	right, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(left, right) {
		return value.Null{}, nil
	}
	lList, lok := asList(left)
	rList, rok := asList(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Except requires List operands")
	}
	var result []value.Value
	for _, le := range lList {
		found := false
		for _, re := range rList {
			if eq, err := valuesEqual(le, re, false); err == nil && eq {
				found = true
				break
			}
		}
		if !found {
			result = append(result, le)
		}
	}
	return value.List{Elements: result}, nil
}

func dedupeValues(vs []value.Value) value.Value {
	var result []value.Value
	for _, v := range vs {
		found := false
		for _, r := range result {
			if eq, err := valuesEqual(v, r, false); err == nil && eq {
				found = true
				break
			}
		}
		if !found {
			result = append(result, v)
		}
	}
	return value.List{Elements: result}
}

func (e *Engine) evalStart(ctx context.Context, n *elm.Start, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	iv, ok := asInterval(v)
	if !ok {
		return nil, errInvalidOperand("", "Start requires an Interval operand, got %T", v)
	}
	if iv.Low == nil {
		return value.Null{}, nil
	}
	return iv.Low, nil
}

func (e *Engine) evalEnd(ctx context.Context, n *elm.End, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	iv, ok := asInterval(v)
	if !ok {
		return nil, errInvalidOperand("", "End requires an Interval operand, got %T", v)
	}
	if iv.High == nil {
		return value.Null{}, nil
	}
	return iv.High, nil
}

func (e *Engine) evalWidth(ctx context.Context, n *elm.Width, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	iv, ok := asInterval(v)
	if !ok || iv.Low == nil || iv.High == nil {
		return value.Null{}, nil
	}
	ld, lok := toDecimal(iv.Low)
	hd, hok := toDecimal(iv.High)
	if !lok || !hok {
		return nil, errInvalidOperand("", "Width requires a numeric-point Interval")
	}
	return value.Decimal{Value: hd.Sub(ld)}, nil
}

func (e *Engine) evalPointFrom(ctx context.Context, n *elm.PointFrom, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	iv, ok := asInterval(v)
	if !ok {
		return nil, errInvalidOperand("", "PointFrom requires an Interval operand, got %T", v)
	}
	if iv.Low == nil || iv.High == nil {
		return value.Null{}, nil
	}
	if eq, _ := valuesEqual(iv.Low, iv.High, false); !eq {
		return nil, errInvalidOperand("", "PointFrom requires a single-point Interval")
	}
	return iv.Low, nil
}

func (e *Engine) evalCollapse(ctx context.Context, n *elm.Collapse, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Collapse requires a List<Interval> operand")
	}
	var intervals []value.Interval
	for _, el := range elements {
		if iv, ok := asInterval(el); ok {
			intervals = append(intervals, iv)
		}
	}
	merged := mergeIntervals(intervals)
	result := make([]value.Value, len(merged))
	for i, iv := range merged {
		result[i] = iv
	}
	return value.List{ElementHint: "Interval", Elements: result}, nil
}

func mergeIntervals(intervals []value.Interval) []value.Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := append([]value.Interval{}, intervals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Low != nil && sorted[j-1].Low != nil && mustCompare(sorted[j].Low, sorted[j-1].Low) < 0; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	var merged []value.Interval
	for _, iv := range sorted {
		if len(merged) == 0 {
			merged = append(merged, iv)
			continue
		}
		last := &merged[len(merged)-1]
		if last.High == nil || iv.Low == nil || mustCompare(iv.Low, last.High) <= 0 || isAdjacent(last.High, iv.Low) {
			if iv.High == nil || (last.High != nil && mustCompare(iv.High, last.High) > 0) {
				last.High, last.HighClosed = iv.High, iv.HighClosed
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}

func (e *Engine) evalExpand(ctx context.Context, n *elm.Expand, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, errInvalidOperand("", "Expand requires a List<Interval> operand")
	}
	var result []value.Value
	for _, el := range elements {
		iv, ok := asInterval(el)
		if !ok || iv.Low == nil || iv.High == nil {
			continue
		}
		rank, numeric := numericKindRank(iv.Low)
		if !numeric {
			return nil, errInvalidOperand("", "Expand requires a numeric-point Interval")
		}
		lo, _ := toDecimal(iv.Low)
		hi, _ := toDecimal(iv.High)
		for cur := lo; !cur.GreaterThan(hi); cur = cur.Add(decimal.NewFromInt(1)) {
			point, err := fromDecimalAtRank(cur, rank)
			if err != nil {
				return nil, err
			}
			result = append(result, point)
		}
	}
	return value.List{Elements: result}, nil
}
