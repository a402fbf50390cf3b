package elm

// Binary arithmetic operators.
type Add struct{ BinaryExpression }
func (*Add) ElmType() string { return "Add" }

type Subtract struct{ BinaryExpression }
func (*Subtract) ElmType() string { return "Subtract" }

type Multiply struct{ BinaryExpression }
func (*Multiply) ElmType() string { return "Multiply" }

type Divide struct{ BinaryExpression }
func (*Divide) ElmType() string { return "Divide" }

type TruncatedDivide struct{ BinaryExpression }
func (*TruncatedDivide) ElmType() string { return "TruncatedDivide" }

type Modulo struct{ BinaryExpression }
func (*Modulo) ElmType() string { return "Modulo" }

type Power struct{ BinaryExpression }
func (*Power) ElmType() string { return "Power" }

type Log struct{ BinaryExpression }
func (*Log) ElmType() string { return "Log" }

// Unary arithmetic operators.
type Negate struct{ UnaryExpression }
func (*Negate) ElmType() string { return "Negate" }

type Abs struct{ UnaryExpression }
func (*Abs) ElmType() string { return "Abs" }

type Ceiling struct{ UnaryExpression }
func (*Ceiling) ElmType() string { return "Ceiling" }

type Floor struct{ UnaryExpression }
func (*Floor) ElmType() string { return "Floor" }

type Truncate struct{ UnaryExpression }
func (*Truncate) ElmType() string { return "Truncate" }

type Exp struct{ UnaryExpression }
func (*Exp) ElmType() string { return "Exp" }

type Ln struct{ UnaryExpression }
func (*Ln) ElmType() string { return "Ln" }

type Successor struct{ UnaryExpression }
func (*Successor) ElmType() string { return "Successor" }

type Predecessor struct{ UnaryExpression }
func (*Predecessor) ElmType() string { return "Predecessor" }

// Round takes an operand and an optional precision expression.
type Round struct {
	Element
	Operand   Expression `json:"operand"`
	Precision Expression `json:"precision,omitempty"`
}

func (r *Round) element() *Element { return &r.Element }
func (*Round) ElmType() string     { return "Round" }

// MinValue/MaxValue are type-parameterized nullary operators yielding a
// type's minimum/maximum representable value.
type MinValue struct {
	Element
	ValueType string `json:"valueType"`
}

func (m *MinValue) element() *Element { return &m.Element }
func (*MinValue) ElmType() string     { return "MinValue" }

type MaxValue struct {
	Element
	ValueType string `json:"valueType"`
}

func (m *MaxValue) element() *Element { return &m.Element }
func (*MaxValue) ElmType() string     { return "MaxValue" }
