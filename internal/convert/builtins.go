// Built-in function-call recognition: CQL spells most of its operator
// library as ordinary function calls (`Abs(x)`, `Coalesce(a, b, c)`,
// `DurationBetween(a, b, 'days')`) rather than infix/prefix syntax. This
// table maps the unqualified call name onto the typed ELM node it lowers to,
// mirroring binaryNodeCtors/convertBinaryOp's "surface name -> typed node"
// shape for the function-call surface instead of the infix one. Names
// absent from the table fall through to elm.FunctionRef.
package convert

import (
	"strings"

	"github.com/cwbudde/go-cql/internal/ast"
	"github.com/cwbudde/go-cql/internal/elm"
)

// builtinEntry builds an ELM node from a call's already-converted argument
// list. Arity mismatches are left to the semantic layer; build is only
// consulted once arity has been accepted by the caller.
type builtinEntry struct {
	minArgs int
	maxArgs int // -1 means unbounded
	build   func(args []elm.Expression) elm.Expression
}

func unary(ctor func(elm.Expression) elm.Expression) builtinEntry {
	return builtinEntry{1, 1, func(a []elm.Expression) elm.Expression { return ctor(a[0]) }}
}

func binary(ctor func(a, b elm.Expression) elm.Expression) builtinEntry {
	return builtinEntry{2, 2, func(a []elm.Expression) elm.Expression { return ctor(a[0], a[1]) }}
}

func nary(ctor func([]elm.Expression) elm.Expression) builtinEntry {
	return builtinEntry{0, -1, func(a []elm.Expression) elm.Expression { return ctor(a) }}
}

// splitPrecision pops a trailing string-literal argument off as a
// precision specifier, the shape the parser emits for precision-qualified
// calls like `DurationBetween(a, b, 'days')`. Returns "" when no trailing
// string literal is present.
func splitPrecision(args []elm.Expression) ([]elm.Expression, string) {
	if len(args) == 0 {
		return args, ""
	}
	if lit, ok := args[len(args)-1].(*elm.Literal); ok && lit.ValueType == elm.SystemString {
		return args[:len(args)-1], lit.Value
	}
	return args, ""
}

var builtinFunctions = map[string]builtinEntry{
	// Arithmetic.
	"abs":         unary(func(x elm.Expression) elm.Expression { return &elm.Abs{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"ceiling":     unary(func(x elm.Expression) elm.Expression { return &elm.Ceiling{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"floor":       unary(func(x elm.Expression) elm.Expression { return &elm.Floor{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"truncate":    unary(func(x elm.Expression) elm.Expression { return &elm.Truncate{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"exp":         unary(func(x elm.Expression) elm.Expression { return &elm.Exp{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"ln":          unary(func(x elm.Expression) elm.Expression { return &elm.Ln{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"successor":   unary(func(x elm.Expression) elm.Expression { return &elm.Successor{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"predecessor": unary(func(x elm.Expression) elm.Expression { return &elm.Predecessor{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"log": binary(func(a, b elm.Expression) elm.Expression { return &elm.Log{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"round": {1, 2, func(a []elm.Expression) elm.Expression {
		r := &elm.Round{Operand: a[0]}
		if len(a) == 2 {
			r.Precision = a[1]
		}
		return r
	}},
	"minvalue": {1, 1, func(a []elm.Expression) elm.Expression {
		name := ""
		if lit, ok := a[0].(*elm.Literal); ok {
			name = lit.Value
		}
		return &elm.MinValue{ValueType: name}
	}},
	"maxvalue": {1, 1, func(a []elm.Expression) elm.Expression {
		name := ""
		if lit, ok := a[0].(*elm.Literal); ok {
			name = lit.Value
		}
		return &elm.MaxValue{ValueType: name}
	}},

	// Strings.
	"length":   unary(func(x elm.Expression) elm.Expression { return &elm.Length{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"upper":    unary(func(x elm.Expression) elm.Expression { return &elm.Upper{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"lower":    unary(func(x elm.Expression) elm.Expression { return &elm.Lower{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"positionof":     binary(func(a, b elm.Expression) elm.Expression { return &elm.PositionOf{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"lastpositionof": binary(func(a, b elm.Expression) elm.Expression { return &elm.LastPositionOf{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"startswith":     binary(func(a, b elm.Expression) elm.Expression { return &elm.StartsWith{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"endswith":       binary(func(a, b elm.Expression) elm.Expression { return &elm.EndsWith{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"matches":        binary(func(a, b elm.Expression) elm.Expression { return &elm.Matches{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"combine": {1, 2, func(a []elm.Expression) elm.Expression {
		c := &elm.Combine{Source: a[0]}
		if len(a) == 2 {
			c.Separator = a[1]
		}
		return c
	}},
	"split": {1, 2, func(a []elm.Expression) elm.Expression {
		s := &elm.Split{StringToSplit: a[0]}
		if len(a) == 2 {
			s.Separator = a[1]
		}
		return s
	}},
	"splitonmatches": binary(func(a, b elm.Expression) elm.Expression {
		return &elm.SplitOnMatches{StringToSplit: a, SeparatorPattern: b}
	}),
	"substring": {2, 3, func(a []elm.Expression) elm.Expression {
		s := &elm.Substring{StringExpr: a[0], StartIndex: a[1]}
		if len(a) == 3 {
			s.Length_ = a[2]
		}
		return s
	}},
	"replacematches": {3, 3, func(a []elm.Expression) elm.Expression {
		return &elm.ReplaceMatches{TernaryExpression: elm.TernaryExpression{Operand: [3]elm.Expression{a[0], a[1], a[2]}}}
	}},

	// Nullological / list aggregate.
	"coalesce": nary(func(a []elm.Expression) elm.Expression { return &elm.Coalesce{NaryExpression: elm.NaryExpression{Operand: a}} }),
	"exists":   unary(func(x elm.Expression) elm.Expression { return &elm.Exists{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"count":    unary(func(x elm.Expression) elm.Expression { return &elm.Count{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"sum":      unary(func(x elm.Expression) elm.Expression { return &elm.Sum{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"product":  unary(func(x elm.Expression) elm.Expression { return &elm.Product{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"min":      unary(func(x elm.Expression) elm.Expression { return &elm.Min{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"max":      unary(func(x elm.Expression) elm.Expression { return &elm.Max{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"avg":      unary(func(x elm.Expression) elm.Expression { return &elm.Avg{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"median":   unary(func(x elm.Expression) elm.Expression { return &elm.Median{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"mode":     unary(func(x elm.Expression) elm.Expression { return &elm.Mode{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"stddev":   unary(func(x elm.Expression) elm.Expression { return &elm.StdDev{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"variance": unary(func(x elm.Expression) elm.Expression { return &elm.Variance{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"populationstddev":   unary(func(x elm.Expression) elm.Expression { return &elm.PopulationStdDev{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"populationvariance": unary(func(x elm.Expression) elm.Expression { return &elm.PopulationVariance{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"geometricmean":      unary(func(x elm.Expression) elm.Expression { return &elm.GeometricMean{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"alltrue":            unary(func(x elm.Expression) elm.Expression { return &elm.AllTrue{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"anytrue":            unary(func(x elm.Expression) elm.Expression { return &elm.AnyTrue{UnaryExpression: elm.UnaryExpression{Operand: x}} }),

	// List operators.
	"first": {1, 1, func(a []elm.Expression) elm.Expression { return &elm.First{Source: a[0]} }},
	"last":  {1, 1, func(a []elm.Expression) elm.Expression { return &elm.Last{Source: a[0]} }},
	"singletonfrom": unary(func(x elm.Expression) elm.Expression { return &elm.SingletonFrom{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"indexof":       binary(func(a, b elm.Expression) elm.Expression { return &elm.IndexOf{BinaryExpression: elm.BinaryExpression{Operand: [2]elm.Expression{a, b}}} }),
	"distinct":      unary(func(x elm.Expression) elm.Expression { return &elm.Distinct{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"flatten":       unary(func(x elm.Expression) elm.Expression { return &elm.Flatten{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"slice": {2, 3, func(a []elm.Expression) elm.Expression {
		s := &elm.Slice{Source: a[0], StartIndex: a[1]}
		if len(a) == 3 {
			s.EndIndex = a[2]
		}
		return s
	}},

	// Interval operators.
	"start":     unary(func(x elm.Expression) elm.Expression { return &elm.Start{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"end":       unary(func(x elm.Expression) elm.Expression { return &elm.End{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"width":     unary(func(x elm.Expression) elm.Expression { return &elm.Width{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"pointfrom": unary(func(x elm.Expression) elm.Expression { return &elm.PointFrom{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"collapse": {1, 2, func(a []elm.Expression) elm.Expression {
		rest, precision := splitPrecision(a)
		return &elm.Collapse{Operand: rest[0], Precision: precision}
	}},
	"expand": {1, 2, func(a []elm.Expression) elm.Expression {
		e := &elm.Expand{Operand: a[0]}
		if len(a) == 2 {
			e.Per = a[1]
		}
		return e
	}},

	// Type conversions.
	"toboolean":  unary(func(x elm.Expression) elm.Expression { return &elm.ToBoolean{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"tointeger":  unary(func(x elm.Expression) elm.Expression { return &elm.ToInteger{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"tolong":     unary(func(x elm.Expression) elm.Expression { return &elm.ToLong{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"todecimal":  unary(func(x elm.Expression) elm.Expression { return &elm.ToDecimal{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"tostring":   unary(func(x elm.Expression) elm.Expression { return &elm.ToString{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"todate":     unary(func(x elm.Expression) elm.Expression { return &elm.ToDate{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"todatetime": unary(func(x elm.Expression) elm.Expression { return &elm.ToDateTime{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"totime":     unary(func(x elm.Expression) elm.Expression { return &elm.ToTime{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"toconcept":  unary(func(x elm.Expression) elm.Expression { return &elm.ToConcept{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"tolist":     unary(func(x elm.Expression) elm.Expression { return &elm.ToList{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"toquantity": unary(func(x elm.Expression) elm.Expression { return &elm.ToQuantity{UnaryExpression: elm.UnaryExpression{Operand: x}} }),

	// Date/Time.
	"now":       {0, 0, func([]elm.Expression) elm.Expression { return &elm.Now{} }},
	"today":     {0, 0, func([]elm.Expression) elm.Expression { return &elm.Today{} }},
	"timeofday": {0, 0, func([]elm.Expression) elm.Expression { return &elm.TimeOfDay{} }},
	"datefrom":             unary(func(x elm.Expression) elm.Expression { return &elm.DateFrom{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"timefrom":             unary(func(x elm.Expression) elm.Expression { return &elm.TimeFrom{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"timezoneoffsetfrom":   unary(func(x elm.Expression) elm.Expression { return &elm.TimezoneOffsetFrom{UnaryExpression: elm.UnaryExpression{Operand: x}} }),
	"datetimecomponentfrom": {1, 2, func(a []elm.Expression) elm.Expression {
		rest, precision := splitPrecision(a)
		return &elm.DateTimeComponentFrom{Operand: rest[0], Precision: precision}
	}},
	"durationbetween": {2, 3, func(a []elm.Expression) elm.Expression {
		rest, precision := splitPrecision(a)
		return &elm.DurationBetween{Operand: [2]elm.Expression{rest[0], rest[1]}, Precision: precision}
	}},
	"differencebetween": {2, 3, func(a []elm.Expression) elm.Expression {
		rest, precision := splitPrecision(a)
		return &elm.DifferenceBetween{Operand: [2]elm.Expression{rest[0], rest[1]}, Precision: precision}
	}},
	"calculateage": {1, 2, func(a []elm.Expression) elm.Expression {
		rest, precision := splitPrecision(a)
		return &elm.CalculateAge{Operand: rest[0], Precision: precision}
	}},
	"calculateageat": {2, 3, func(a []elm.Expression) elm.Expression {
		rest, precision := splitPrecision(a)
		return &elm.CalculateAgeAt{Operand: [2]elm.Expression{rest[0], rest[1]}, Precision: precision}
	}},

	// Type testing/conversion spelled as calls.
	"convert": {2, 2, func(a []elm.Expression) elm.Expression { return &elm.Convert{Operand: a[0]} }},
}

// convertFunctionCall lowers a surface function call. Library-qualified
// calls (FHIRHelpers.ToInterval(x), and user-defined functions generally)
// always go through FunctionRef -- only unqualified calls are checked
// against the built-in table, since a qualifier always names either a
// user/library function or a model helper, never a system operator.
func (c *Converter) convertFunctionCall(n *ast.FunctionCall) elm.Expression {
	args := make([]elm.Expression, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		args = append(args, c.convertExpression(a))
	}

	if n.Qualifier != "" {
		return &elm.FunctionRef{LibraryName: n.Qualifier, Name: n.Name, Operand: args}
	}

	if entry, ok := builtinFunctions[strings.ToLower(n.Name)]; ok {
		if len(args) >= entry.minArgs && (entry.maxArgs < 0 || len(args) <= entry.maxArgs) {
			return entry.build(args)
		}
		c.log.WithField("name", n.Name).WithField("argc", len(args)).
			Debug("convert: built-in call arity mismatch, lowering to FunctionRef")
	} else {
		c.log.WithField("name", n.Name).Debug("convert: unrecognized function call, lowering to FunctionRef")
	}
	return &elm.FunctionRef{Name: n.Name, Operand: args}
}
