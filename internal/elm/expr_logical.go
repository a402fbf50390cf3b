package elm

// And/Or/Xor are binary in ELM; chained surface `and`/`or` are
// left-folded into nested binary nodes by the converter, not emitted n-ary.
type And struct{ BinaryExpression }
func (*And) ElmType() string { return "And" }

type Or struct{ BinaryExpression }
func (*Or) ElmType() string { return "Or" }

type Xor struct{ BinaryExpression }
func (*Xor) ElmType() string { return "Xor" }

type Implies struct{ BinaryExpression }
func (*Implies) ElmType() string { return "Implies" }

type Not struct{ UnaryExpression }
func (*Not) ElmType() string { return "Not" }

// Null-ological operators: three-valued-logic-aware null handling.
type IsNull struct{ UnaryExpression }
func (*IsNull) ElmType() string { return "IsNull" }

type IsTrue struct{ UnaryExpression }
func (*IsTrue) ElmType() string { return "IsTrue" }

type IsFalse struct{ UnaryExpression }
func (*IsFalse) ElmType() string { return "IsFalse" }

// Coalesce returns the first non-null of its operands.
type Coalesce struct{ NaryExpression }
func (*Coalesce) ElmType() string { return "Coalesce" }
