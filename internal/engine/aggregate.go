package engine

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/value"
)

// Aggregate operators, grounded on CQL's null-skipping reduction
// rules (every aggregate ignores null elements; an all-null or empty list
// yields null except Count, which yields 0, AllTrue, which yields true, and
// AnyTrue, which yields false).

func (e *Engine) nonNullElements(ctx context.Context, operand elm.Expression, ec *EvaluationContext, definition string) ([]value.Value, bool, error) {
	v, err := e.evalOperand(ctx, operand, ec)
	if err != nil {
		return nil, false, err
	}
	if isNullValue(v) {
		return nil, true, nil
	}
	elements, ok := asList(v)
	if !ok {
		return nil, false, errInvalidOperand("", "%s requires a List operand, got %T", definition, v)
	}
	result := make([]value.Value, 0, len(elements))
	for _, el := range elements {
		if !isNullValue(el) {
			result = append(result, el)
		}
	}
	return result, true, nil
}

func (e *Engine) evalCount(ctx context.Context, n *elm.Count, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Count")
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Integer{Value: 0}, nil
	}
	return value.Integer{Value: int32(len(elements))}, nil
}

func decimalsOf(elements []value.Value) ([]decimal.Decimal, bool) {
	out := make([]decimal.Decimal, 0, len(elements))
	for _, el := range elements {
		d, ok := toDecimal(el)
		if !ok {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}

func (e *Engine) evalSum(ctx context.Context, n *elm.Sum, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Sum")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	ds, ok := decimalsOf(elements)
	if !ok {
		return nil, errInvalidOperand("", "Sum requires numeric elements")
	}
	rank, _ := numericKindRank(elements[0])
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return fromDecimalAtRank(total, rank)
}

func (e *Engine) evalProduct(ctx context.Context, n *elm.Product, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Product")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	ds, ok := decimalsOf(elements)
	if !ok {
		return nil, errInvalidOperand("", "Product requires numeric elements")
	}
	rank, _ := numericKindRank(elements[0])
	total := decimal.NewFromInt(1)
	for _, d := range ds {
		total = total.Mul(d)
	}
	return fromDecimalAtRank(total, rank)
}

func (e *Engine) evalMinAgg(ctx context.Context, n *elm.Min, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Min")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	best := elements[0]
	for _, el := range elements[1:] {
		if cmp, err := compareOrdered(el, best); err == nil && cmp < 0 {
			best = el
		}
	}
	return best, nil
}

func (e *Engine) evalMaxAgg(ctx context.Context, n *elm.Max, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Max")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	best := elements[0]
	for _, el := range elements[1:] {
		if cmp, err := compareOrdered(el, best); err == nil && cmp > 0 {
			best = el
		}
	}
	return best, nil
}

func (e *Engine) evalAvg(ctx context.Context, n *elm.Avg, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Avg")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	ds, ok := decimalsOf(elements)
	if !ok {
		return nil, errInvalidOperand("", "Avg requires numeric elements")
	}
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return value.Decimal{Value: total.DivRound(decimal.NewFromInt(int64(len(ds))), 8)}, nil
}

func (e *Engine) evalMedian(ctx context.Context, n *elm.Median, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Median")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	ds, ok := decimalsOf(elements)
	if !ok {
		return nil, errInvalidOperand("", "Median requires numeric elements")
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].LessThan(ds[j]) })
	mid := len(ds) / 2
	if len(ds)%2 == 1 {
		return value.Decimal{Value: ds[mid]}, nil
	}
	return value.Decimal{Value: ds[mid-1].Add(ds[mid]).DivRound(decimal.NewFromInt(2), 8)}, nil
}

func (e *Engine) evalMode(ctx context.Context, n *elm.Mode, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Mode")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	type bucket struct {
		v     value.Value
		count int
	}
	var buckets []bucket
	for _, el := range elements {
		found := false
		for i := range buckets {
			if eq, err := valuesEqual(buckets[i].v, el, false); err == nil && eq {
				buckets[i].count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, bucket{v: el, count: 1})
		}
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.count > best.count {
			best = b
		}
	}
	return best.v, nil
}

func (e *Engine) evalStdDev(ctx context.Context, n *elm.StdDev, ec *EvaluationContext, population bool) (value.Value, error) {
	variance, err := e.evalVariance(ctx, &elm.Variance{UnaryExpression: n.UnaryExpression}, ec, population)
	if err != nil {
		return nil, err
	}
	d, ok := toDecimal(variance)
	if !ok {
		return value.Null{}, nil
	}
	f, _ := d.Float64()
	return value.Decimal{Value: decimal.NewFromFloat(math.Sqrt(f))}, nil
}

func (e *Engine) evalVariance(ctx context.Context, n *elm.Variance, ec *EvaluationContext, population bool) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "Variance")
	if err != nil {
		return nil, err
	}
	denomAdjust := 1
	if population {
		denomAdjust = 0
	}
	if !ok || len(elements) < 1+denomAdjust {
		return value.Null{}, nil
	}
	ds, ok := decimalsOf(elements)
	if !ok {
		return nil, errInvalidOperand("", "Variance requires numeric elements")
	}
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	mean := total.DivRound(decimal.NewFromInt(int64(len(ds))), 10)
	sumSq := decimal.Zero
	for _, d := range ds {
		diff := d.Sub(mean)
		sumSq = sumSq.Add(diff.Mul(diff))
	}
	denom := len(ds) - denomAdjust
	return value.Decimal{Value: sumSq.DivRound(decimal.NewFromInt(int64(denom)), 8)}, nil
}

func (e *Engine) evalGeometricMean(ctx context.Context, n *elm.GeometricMean, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "GeometricMean")
	if err != nil {
		return nil, err
	}
	if !ok || len(elements) == 0 {
		return value.Null{}, nil
	}
	ds, ok := decimalsOf(elements)
	if !ok {
		return nil, errInvalidOperand("", "GeometricMean requires numeric elements")
	}
	product := 1.0
	for _, d := range ds {
		f, _ := d.Float64()
		if f <= 0 {
			return value.Null{}, nil
		}
		product *= f
	}
	return value.Decimal{Value: decimal.NewFromFloat(math.Pow(product, 1.0/float64(len(ds))))}, nil
}

func (e *Engine) evalAllTrue(ctx context.Context, n *elm.AllTrue, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "AllTrue")
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Boolean{Value: true}, nil
	}
	for _, el := range elements {
		b, null := asBoolean(el)
		if null || !b {
			return value.Boolean{Value: false}, nil
		}
	}
	return value.Boolean{Value: true}, nil
}

func (e *Engine) evalAnyTrue(ctx context.Context, n *elm.AnyTrue, ec *EvaluationContext) (value.Value, error) {
	elements, ok, err := e.nonNullElements(ctx, n.Operand, ec, "AnyTrue")
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Boolean{Value: false}, nil
	}
	for _, el := range elements {
		b, null := asBoolean(el)
		if !null && b {
			return value.Boolean{Value: true}, nil
		}
	}
	return value.Boolean{Value: false}, nil
}

func (e *Engine) evalAggregateClause(ctx context.Context, n *elm.Aggregate, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(source) {
		return value.Null{}, nil
	}
	elements, ok := asList(source)
	if !ok {
		return nil, errInvalidOperand("", "aggregate clause requires a List source, got %T", source)
	}
	var total value.Value = value.Null{}
	if n.Starting != nil {
		total, err = e.evalOperand(ctx, n.Starting, ec)
		if err != nil {
			return nil, err
		}
	}
	totalName := n.TotalName
	if totalName == "" {
		totalName = "$this"
	}
	for _, el := range elements {
		scope := ec.Push()
		scope.Bind(n.Scope, el)
		scope.Bind(totalName, total)
		total, err = e.Evaluate(ctx, n.Body, scope)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}
