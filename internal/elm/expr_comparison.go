package elm

type Equal struct{ BinaryExpression }
func (*Equal) ElmType() string { return "Equal" }

type NotEqual struct{ BinaryExpression }
func (*NotEqual) ElmType() string { return "NotEqual" }

type Equivalent struct{ BinaryExpression }
func (*Equivalent) ElmType() string { return "Equivalent" }

type Less struct{ BinaryExpression }
func (*Less) ElmType() string { return "Less" }

type LessOrEqual struct{ BinaryExpression }
func (*LessOrEqual) ElmType() string { return "LessOrEqual" }

type Greater struct{ BinaryExpression }
func (*Greater) ElmType() string { return "Greater" }

type GreaterOrEqual struct{ BinaryExpression }
func (*GreaterOrEqual) ElmType() string { return "GreaterOrEqual" }
