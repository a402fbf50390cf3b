package elm

// Binary interval/list membership and relational operators. Several carry
// an optional precision for temporal point types.
type withPrecision struct {
	Element
	Operand   [2]Expression `json:"operand"`
	Precision string        `json:"precision,omitempty"`
}

func (w *withPrecision) element() *Element             { return &w.Element }
func (w *withPrecision) binaryOperands() [2]Expression { return w.Operand }
func (w *withPrecision) precisionValue() string        { return w.Precision }

// BinaryOperands satisfies elm.Binary for the withPrecision family.
func (w *withPrecision) BinaryOperands() [2]Expression { return w.Operand }

type In struct{ withPrecision }
func (*In) ElmType() string { return "In" }

type Contains struct{ withPrecision }
func (*Contains) ElmType() string { return "Contains" }

type Includes struct{ withPrecision }
func (*Includes) ElmType() string { return "Includes" }

type IncludedIn struct{ withPrecision }
func (*IncludedIn) ElmType() string { return "IncludedIn" }

type ProperlyIncludes struct{ withPrecision }
func (*ProperlyIncludes) ElmType() string { return "ProperlyIncludes" }

type ProperlyIncludedIn struct{ withPrecision }
func (*ProperlyIncludedIn) ElmType() string { return "ProperlyIncludedIn" }

type Before struct{ withPrecision }
func (*Before) ElmType() string { return "Before" }

type After struct{ withPrecision }
func (*After) ElmType() string { return "After" }

type Meets struct{ withPrecision }
func (*Meets) ElmType() string { return "Meets" }

type MeetsBefore struct{ withPrecision }
func (*MeetsBefore) ElmType() string { return "MeetsBefore" }

type MeetsAfter struct{ withPrecision }
func (*MeetsAfter) ElmType() string { return "MeetsAfter" }

type Overlaps struct{ withPrecision }
func (*Overlaps) ElmType() string { return "Overlaps" }

type OverlapsBefore struct{ withPrecision }
func (*OverlapsBefore) ElmType() string { return "OverlapsBefore" }

type OverlapsAfter struct{ withPrecision }
func (*OverlapsAfter) ElmType() string { return "OverlapsAfter" }

type Starts struct{ withPrecision }
func (*Starts) ElmType() string { return "Starts" }

type Ends struct{ withPrecision }
func (*Ends) ElmType() string { return "Ends" }

// Union/Intersect/Except operate over two lists or two intervals.
type Union struct{ NaryExpression }
func (*Union) ElmType() string { return "Union" }

type Intersect struct{ NaryExpression }
func (*Intersect) ElmType() string { return "Intersect" }

type Except struct{ BinaryExpression }
func (*Except) ElmType() string { return "Except" }

// Unary interval operators.
type Start struct{ UnaryExpression }
func (*Start) ElmType() string { return "Start" }

type End struct{ UnaryExpression }
func (*End) ElmType() string { return "End" }

type Width struct{ UnaryExpression }
func (*Width) ElmType() string { return "Width" }

type PointFrom struct{ UnaryExpression }
func (*PointFrom) ElmType() string { return "PointFrom" }

type Collapse struct {
	Element
	Operand   Expression `json:"operand"`
	Precision string     `json:"precision,omitempty"`
}

func (c *Collapse) element() *Element { return &c.Element }
func (*Collapse) ElmType() string     { return "Collapse" }

type Expand struct {
	Element
	Operand Expression `json:"operand"`
	Per     Expression `json:"per,omitempty"`
}

func (e *Expand) element() *Element { return &e.Element }
func (*Expand) ElmType() string     { return "Expand" }
