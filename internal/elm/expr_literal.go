package elm

// Literal is a scalar constant: Boolean, Integer, Long, Decimal, String, or
// the partial-precision Date/DateTime/Time (emitted as "@..."-prefixed
// strings). ValueType carries the qualified system type URI.
type Literal struct {
	Element
	ValueType string `json:"valueType"`
	Value     string `json:"value"`
}

func (l *Literal) element() *Element { return &l.Element }
func (*Literal) ElmType() string     { return "Literal" }

// Null is the untyped null literal.
type Null struct {
	Element
}

func (n *Null) element() *Element { return &n.Element }
func (*Null) ElmType() string      { return "Null" }

// Quantity is a literal decimal value with a UCUM unit.
type Quantity struct {
	Element
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

func (q *Quantity) element() *Element { return &q.Element }
func (*Quantity) ElmType() string     { return "Quantity" }

// Interval is an interval-construction expression: Low/High bound
// expressions (nil = unbounded) plus closure flags.
type Interval struct {
	Element
	Low        Expression `json:"low,omitempty"`
	LowClosed  bool       `json:"lowClosed"`
	High       Expression `json:"high,omitempty"`
	HighClosed bool       `json:"highClosed"`
}

func (i *Interval) element() *Element { return &i.Element }
func (*Interval) ElmType() string     { return "Interval" }

// List is a list-construction expression.
type List struct {
	Element
	TypeSpecifier TypeSpecifier `json:"typeSpecifier,omitempty"`
	Element_      []Expression  `json:"element,omitempty"`
}

func (l *List) element() *Element { return &l.Element }
func (*List) ElmType() string     { return "List" }

// TupleElementExpr is one `name: value` pair of a Tuple construction.
type TupleElementExpr struct {
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

// Tuple is a structural tuple-construction expression.
type Tuple struct {
	Element
	Elements []TupleElementExpr `json:"element,omitempty"`
}

func (t *Tuple) element() *Element { return &t.Element }
func (*Tuple) ElmType() string     { return "Tuple" }

// Instance is a named-model-class construction expression, structurally
// identical to Tuple but carrying a classType.
type Instance struct {
	Element
	ClassType string             `json:"classType"`
	Elements  []TupleElementExpr `json:"element,omitempty"`
}

func (i *Instance) element() *Element { return &i.Element }
func (*Instance) ElmType() string     { return "Instance" }
