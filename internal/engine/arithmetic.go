package engine

import (
	"math"

	"context"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/value"
)

// Binary/unary arithmetic, grounded on DWScript's evalIntegerBinaryOp/
// evalFloatBinaryOp per-operator switch (internal/interp/interpreter.go),
// generalized from DWScript's Integer/Float pair to CQL's
// Integer/Long/Decimal/Quantity promotion lattice (internal/types/lattice.go).

type arithOp int

const (
	opAdd arithOp = iota
	opSubtract
	opMultiply
	opTruncatedDivide
	opModulo
	opPower
)

func (e *Engine) evalArithmetic(ctx context.Context, n *elm.BinaryExpression, ec *EvaluationContext, op arithOp) (value.Value, error) {
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

	if lq, ok := left.(value.Quantity); ok {
		rq, ok2 := right.(value.Quantity)
		if ok2 {
			return quantityArith(lq, rq, op)
		}
	}
	if lRank, lok := numericKindRank(left); lok {
		if rRank, rok := numericKindRank(right); rok {
			ld, _ := toDecimal(left)
			rd, _ := toDecimal(right)
			rank := lRank
			if rRank > rank {
				rank = rRank
			}
			result, isNull, err := applyDecimalOp(ld, rd, op)
			if err != nil {
				return nil, err
			}
			if isNull {
				return value.Null{}, nil
			}
			return fromDecimalAtRank(result, rank)
		}
	}
	if s, ok := left.(value.String); ok && op == opAdd {
		if rs, ok2 := right.(value.String); ok2 {
			return value.String{Value: s.Value + rs.Value}, nil
		}
	}
	return nil, errInvalidOperand("", "unsupported operand types for arithmetic: %T, %T", left, right)
}

// applyDecimalOp computes l op r. isNull reports a zero divisor on
// TruncatedDivide/Modulo, which CQL defines as a Null result, not an error --
// the caller must check isNull before trusting result.
func applyDecimalOp(l, r decimal.Decimal, op arithOp) (result decimal.Decimal, isNull bool, err error) {
	switch op {
	case opAdd:
		return l.Add(r), false, nil
	case opSubtract:
		return l.Sub(r), false, nil
	case opMultiply:
		return l.Mul(r), false, nil
	case opTruncatedDivide:
		if r.IsZero() {
			return decimal.Decimal{}, true, nil
		}
		return l.Div(r).Truncate(0), false, nil
	case opModulo:
		if r.IsZero() {
			return decimal.Decimal{}, true, nil
		}
		q := l.Div(r).Truncate(0)
		return l.Sub(q.Mul(r)), false, nil
	case opPower:
		lf, _ := l.Float64()
		rf, _ := r.Float64()
		return decimal.NewFromFloat(math.Pow(lf, rf)), false, nil
	default:
		return decimal.Decimal{}, false, errInvalidOperand("", "unknown arithmetic operator")
	}
}

func quantityArith(l, r value.Quantity, op arithOp) (value.Value, error) {
	switch op {
	case opAdd, opSubtract:
		if l.Unit != r.Unit {
			return nil, errors.New(errors.KindEvaluation, errors.CodeIncompatibleUnits, "", "quantities must share a unit for + and -")
		}
		result, _, _ := applyDecimalOp(l.Value, r.Value, op)
		return value.Quantity{Value: result, Unit: l.Unit}, nil
	case opMultiply:
		result, _, _ := applyDecimalOp(l.Value, r.Value, op)
		return value.Quantity{Value: result, Unit: combineUnits(l.Unit, r.Unit, true)}, nil
	case opTruncatedDivide:
		result, isNull, err := applyDecimalOp(l.Value, r.Value, op)
		if err != nil {
			return nil, err
		}
		if isNull {
			return value.Null{}, nil
		}
		return value.Quantity{Value: result, Unit: combineUnits(l.Unit, r.Unit, false)}, nil
	default:
		return nil, errInvalidOperand("", "unsupported Quantity operator")
	}
}

// combineUnits is a minimal UCUM unit combiner good enough for the common
// same-unit and unitless cases; full UCUM algebra is out of scope.
func combineUnits(l, r string, multiply bool) string {
	if r == "" || r == "1" {
		return l
	}
	if l == "" || l == "1" {
		if multiply {
			return r
		}
		return "1/" + r
	}
	if l == r {
		if multiply {
			return l + "2"
		}
		return "1"
	}
	if multiply {
		return l + "." + r
	}
	return l + "/" + r
}

// Divide is distinct from TruncatedDivide: it always promotes to Decimal
// (CQL's `/` operator never yields Integer), and divides by zero
// yields null rather than an error (CQL's `/` null-on-zero rule).
func (e *Engine) evalDivide(ctx context.Context, n *elm.Divide, ec *EvaluationContext) (value.Value, error) {
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
	if lq, ok := left.(value.Quantity); ok {
		rq, ok2 := right.(value.Quantity)
		if ok2 {
			if rq.Value.IsZero() {
				return value.Null{}, nil
			}
			return value.Quantity{Value: lq.Value.Div(rq.Value), Unit: combineUnits(lq.Unit, rq.Unit, false)}, nil
		}
	}
	ld, lok := toDecimal(left)
	rd, rok := toDecimal(right)
	if !lok || !rok {
		return nil, errInvalidOperand("", "Divide requires numeric operands, got %T, %T", left, right)
	}
	if rd.IsZero() {
		return value.Null{}, nil
	}
	return value.Decimal{Value: ld.DivRound(rd, 8)}, nil
}

func (e *Engine) evalLog(ctx context.Context, n *elm.Log, ec *EvaluationContext) (value.Value, error) {
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
	ld, lok := toDecimal(left)
	bd, bok := toDecimal(right)
	if !lok || !bok {
		return nil, errInvalidOperand("", "Log requires numeric operands")
	}
	lf, _ := ld.Float64()
	bf, _ := bd.Float64()
	if lf <= 0 || bf <= 0 || bf == 1 {
		return value.Null{}, nil
	}
	return value.Decimal{Value: decimal.NewFromFloat(math.Log(lf) / math.Log(bf))}, nil
}

type unaryArithOp int

const (
	opNegate unaryArithOp = iota
	opAbs
	opCeiling
	opFloor
	opTruncate
	opExp
	opLn
	opSuccessor
	opPredecessor
)

func (e *Engine) evalUnaryArithmetic(ctx context.Context, n *elm.UnaryExpression, ec *EvaluationContext, op unaryArithOp) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	rank, numeric := numericKindRank(v)
	var unit string
	if q, ok := v.(value.Quantity); ok {
		rank, numeric = 2, true
		unit = q.Unit
	}
	if !numeric {
		return nil, errInvalidOperand("", "unary arithmetic requires a numeric operand, got %T", v)
	}
	d, _ := toDecimal(v)
	switch op {
	case opNegate:
		result := d.Neg()
		if unit != "" {
			return value.Quantity{Value: result, Unit: unit}, nil
		}
		return fromDecimalAtRank(result, rank)
	case opAbs:
		result := d.Abs()
		if unit != "" {
			return value.Quantity{Value: result, Unit: unit}, nil
		}
		return fromDecimalAtRank(result, rank)
	case opCeiling:
		return value.Integer{Value: int32(d.Ceil().IntPart())}, nil
	case opFloor:
		return value.Integer{Value: int32(d.Floor().IntPart())}, nil
	case opTruncate:
		return value.Integer{Value: int32(d.Truncate(0).IntPart())}, nil
	case opExp:
		f, _ := d.Float64()
		return value.Decimal{Value: decimal.NewFromFloat(math.Exp(f))}, nil
	case opLn:
		f, _ := d.Float64()
		if f <= 0 {
			return value.Null{}, nil
		}
		return value.Decimal{Value: decimal.NewFromFloat(math.Log(f))}, nil
	case opSuccessor:
		return fromDecimalAtRank(d.Add(decimal.NewFromInt(1)), rank)
	case opPredecessor:
		return fromDecimalAtRank(d.Sub(decimal.NewFromInt(1)), rank)
	default:
		return nil, errInvalidOperand("", "unknown unary arithmetic operator")
	}
}

func (e *Engine) evalRound(ctx context.Context, n *elm.Round, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	d, ok := toDecimal(v)
	if !ok {
		return nil, errInvalidOperand("", "Round requires a numeric operand, got %T", v)
	}
	precision := int32(0)
	if n.Precision != nil {
		pv, err := e.evalOperand(ctx, n.Precision, ec)
		if err != nil {
			return nil, err
		}
		if isNullValue(pv) {
			return value.Null{}, nil
		}
		pi, ok := pv.(value.Integer)
		if !ok {
			return nil, errInvalidOperand("", "Round precision must be Integer, got %T", pv)
		}
		precision = pi.Value
	}
	return value.Decimal{Value: d.Round(precision)}, nil
}

func (e *Engine) evalMinMaxValue(valueType string, min bool) (value.Value, error) {
	switch valueType {
	case "Integer", "{urn:hl7-org:elm-types:r1}Integer":
		if min {
			return value.Integer{Value: math.MinInt32}, nil
		}
		return value.Integer{Value: math.MaxInt32}, nil
	case "Long", "{urn:hl7-org:elm-types:r1}Long":
		if min {
			return value.Long{Value: math.MinInt64}, nil
		}
		return value.Long{Value: math.MaxInt64}, nil
	case "Decimal", "{urn:hl7-org:elm-types:r1}Decimal":
		if min {
			return value.Decimal{Value: decimal.New(-99999999999999999, -9)}, nil
		}
		return value.Decimal{Value: decimal.New(99999999999999999, -9)}, nil
	case "Date", "{urn:hl7-org:elm-types:r1}Date":
		if min {
			return value.Date{Year: 1}, nil
		}
		return value.Date{Year: 9999, Month: value.IntPtr(12), Day: value.IntPtr(31)}, nil
	case "DateTime", "{urn:hl7-org:elm-types:r1}DateTime":
		if min {
			return value.DateTime{Year: 1}, nil
		}
		return value.DateTime{
			Year: 9999, Month: value.IntPtr(12), Day: value.IntPtr(31),
			Hour: value.IntPtr(23), Minute: value.IntPtr(59), Second: value.IntPtr(59), Millisecond: value.IntPtr(999),
		}, nil
	case "Time", "{urn:hl7-org:elm-types:r1}Time":
		if min {
			return value.Time{Hour: 0}, nil
		}
		return value.Time{Hour: 23, Minute: value.IntPtr(59), Second: value.IntPtr(59), Millisecond: value.IntPtr(999)}, nil
	default:
		return nil, errInvalidOperand("", "MinValue/MaxValue unsupported for type %s", valueType)
	}
}
