package elm

// UnaryExpression is the shared shape of every one-operand ELM operator
// (Not, Exists, Start, End, Predecessor, ...), grounded on google/cql's
// model.IUnaryExpression accessor pattern.
type UnaryExpression struct {
	Element
	Operand Expression `json:"operand"`
}

func (u *UnaryExpression) element() *Element        { return &u.Element }
func (u *UnaryExpression) unaryOperand() Expression { return u.Operand }

// UnaryOperand is unaryOperand's exported counterpart, used by the
// semantic layer's Inferrer to walk operand trees generically.
func (u *UnaryExpression) UnaryOperand() Expression { return u.Operand }

// BinaryExpression is the shared shape of every two-operand ELM operator
// (Add, Less, And, ...), grounded on google/cql's model.IBinaryExpression.
type BinaryExpression struct {
	Element
	Operand [2]Expression `json:"operand"`
}

func (b *BinaryExpression) element() *Element          { return &b.Element }
func (b *BinaryExpression) binaryOperands() [2]Expression { return b.Operand }

// BinaryOperands is binaryOperands' exported counterpart.
func (b *BinaryExpression) BinaryOperands() [2]Expression { return b.Operand }

// TernaryExpression is the shared shape of three-operand operators
// (ReplaceMatches).
type TernaryExpression struct {
	Element
	Operand [3]Expression `json:"operand"`
}

func (t *TernaryExpression) element() *Element            { return &t.Element }
func (t *TernaryExpression) ternaryOperands() [3]Expression { return t.Operand }

// TernaryOperands is ternaryOperands' exported counterpart.
func (t *TernaryExpression) TernaryOperands() [3]Expression { return t.Operand }

// NaryExpression is the shared shape of variadic operators (And-chains
// normalize to binary, but Coalesce/Concatenate and some list ops are
// naturally n-ary).
type NaryExpression struct {
	Element
	Operand []Expression `json:"operand"`
}

func (n *NaryExpression) element() *Element          { return &n.Element }
func (n *NaryExpression) naryOperands() []Expression { return n.Operand }

// NaryOperands is naryOperands' exported counterpart.
func (n *NaryExpression) NaryOperands() []Expression { return n.Operand }
