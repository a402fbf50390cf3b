package ast

// Literal is a surface-syntax literal: booleans, numbers, strings, and the
// untyped `null` keyword. Kind mirrors the lexical token class; the
// converter (not this package) maps it onto a types.Type.
type Literal struct {
	Position Position
	Kind     string // "Boolean", "Integer", "Long", "Decimal", "String", "Null"
	Text     string // the literal's raw lexeme, e.g. "42", "3.14", "'abc'"
}

func (l *Literal) Pos() Position   { return l.Position }
func (l *Literal) expressionNode() {}

// QuantityLiteral is a surface-syntax quantity literal, e.g. `4 days` or `2.5 'mg'`.
type QuantityLiteral struct {
	Position Position
	Value    string
	Unit     string
}

func (q *QuantityLiteral) Pos() Position    { return q.Position }
func (*QuantityLiteral) expressionNode() {}

// DateTimeLiteral is a surface-syntax `@...` literal covering Date, DateTime,
// and Time; Text retains the raw ISO-ish lexeme for the converter to parse
// into a partial-precision value.Date/DateTime/Time.
type DateTimeLiteral struct {
	Position Position
	Kind     string // "Date", "DateTime", "Time"
	Text     string
}

func (d *DateTimeLiteral) Pos() Position { return d.Position }
func (*DateTimeLiteral) expressionNode() {}

// Identifier is a bare name reference: a parameter, an expression def, an
// alias, a let-variable, or a model property depending on resolution.
type Identifier struct {
	Position Position
	Name     string
}

func (i *Identifier) Pos() Position   { return i.Position }
func (*Identifier) expressionNode() {}

// QualifiedIdentifier is `Qualifier.Name`, e.g. `Patient.birthDate` or
// `FHIRHelpers.ToInterval`.
type QualifiedIdentifier struct {
	Position  Position
	Qualifier string
	Name      string
}

func (q *QualifiedIdentifier) Pos() Position { return q.Position }
func (*QualifiedIdentifier) expressionNode() {}

// Property is `Source.Name`, a property-access expression over an arbitrary
// source expression rather than a bare identifier.
type Property struct {
	Position Position
	Source   Expression
	Name     string
}

func (p *Property) Pos() Position   { return p.Position }
func (*Property) expressionNode() {}

// Indexer is `Source[Index]`, list/string element access.
type Indexer struct {
	Position Position
	Source   Expression
	Index    Expression
}

func (x *Indexer) Pos() Position   { return x.Position }
func (*Indexer) expressionNode() {}

// BinaryOp is any infix operator: arithmetic, comparison, logical,
// membership ("in", "contains"), string concatenation ("&"), and the "is"/
// "as" type operators are modeled separately (TypeExpression).
type BinaryOp struct {
	Position Position
	Op       string
	Left     Expression
	Right    Expression
}

func (b *BinaryOp) Pos() Position   { return b.Position }
func (*BinaryOp) expressionNode() {}

// UnaryOp is a prefix operator: "not", unary "-"/"+", "exists", "singleton
// from", "start of"/"end of", etc.
type UnaryOp struct {
	Position Position
	Op       string
	Operand  Expression
}

func (u *UnaryOp) Pos() Position   { return u.Position }
func (*UnaryOp) expressionNode() {}

// Between is the surface-syntax ternary `X between Low and High`; the
// converter desugars this into a conjunction of two comparisons.
type Between struct {
	Position Position
	Operand  Expression
	Low      Expression
	High     Expression
}

func (b *Between) Pos() Position   { return b.Position }
func (*Between) expressionNode() {}

// TypeExpression is the "is"/"as"/"cast as" family: `Operand is Type`,
// `Operand as Type`, `cast Operand as Type`.
type TypeExpression struct {
	Position Position
	Op       string // "Is", "As", "Cast"
	Operand  Expression
	Type     *TypeSpecifier
}

func (t *TypeExpression) Pos() Position   { return t.Position }
func (*TypeExpression) expressionNode() {}

// FunctionCall is a call to either a built-in operator spelled as a function
// (e.g. `Coalesce(a, b)`) or a user/library-defined function. Qualifier is
// the include alias for `Alias.Func(...)` calls, "" otherwise.
type FunctionCall struct {
	Position  Position
	Qualifier string
	Name      string
	Arguments []Expression
}

func (f *FunctionCall) Pos() Position   { return f.Position }
func (*FunctionCall) expressionNode() {}

// If is the surface `if Cond then Then else Else` expression.
type If struct {
	Position Position
	Cond     Expression
	Then     Expression
	Else     Expression
}

func (i *If) Pos() Position   { return i.Position }
func (*If) expressionNode() {}

// CaseItem is one `when ... then ...` arm of a Case expression.
type CaseItem struct {
	When Expression
	Then Expression
}

// Case models both the comparand form (`case X when ...`) and the
// conditional form (`case when ...`); Comparand is nil for the latter.
type Case struct {
	Position  Position
	Comparand Expression // nil for the conditional form
	Items     []CaseItem
	Else      Expression
}

func (c *Case) Pos() Position   { return c.Position }
func (*Case) expressionNode() {}

// ListLiteral is a surface `{ a, b, c }` or `List<T>{ ... }` literal.
type ListLiteral struct {
	Position Position
	OfType   *TypeSpecifier // nil if untyped
	Elements []Expression
}

func (l *ListLiteral) Pos() Position   { return l.Position }
func (*ListLiteral) expressionNode() {}

// TupleElement is one `name: value` pair of a TupleLiteral or Instance.
type TupleElement struct {
	Name  string
	Value Expression
}

// TupleLiteral is a surface `Tuple { a: 1, b: 2 }` literal.
type TupleLiteral struct {
	Position Position
	Elements []TupleElement
}

func (t *TupleLiteral) Pos() Position   { return t.Position }
func (*TupleLiteral) expressionNode() {}

// Instance is a surface `TypeName { a: 1, b: 2 }` model-class constructor;
// distinct from TupleLiteral only in carrying a named type.
type Instance struct {
	Position Position
	Type     *TypeSpecifier
	Elements []TupleElement
}

func (i *Instance) Pos() Position   { return i.Position }
func (*Instance) expressionNode() {}

// IntervalLiteral is a surface `Interval[Low, High]` or `Interval(Low, High]`
// literal; LowClosed/HighClosed record the bracket shape.
type IntervalLiteral struct {
	Position   Position
	Low        Expression
	LowClosed  bool
	High       Expression
	HighClosed bool
}

func (i *IntervalLiteral) Pos() Position   { return i.Position }
func (*IntervalLiteral) expressionNode() {}

// Retrieve is a surface `[TypeName: Terminology]` clinical data retrieve.
// Terminology is nil for an unfiltered retrieve.
type Retrieve struct {
	Position    Position
	DataType    *TypeSpecifier
	CodeProperty string // "" selects the model's default code path
	Terminology Expression
}

func (r *Retrieve) Pos() Position   { return r.Position }
func (*Retrieve) expressionNode() {}

// SortDirection is the surface `asc`/`desc` keyword on a sort clause.
type SortDirection int

const (
	SortAscending SortDirection = iota
	SortDescending
)

// SortByItem is one term of a `sort by` clause; Property is "" to sort on
// the element itself.
type SortByItem struct {
	Property  string
	Direction SortDirection
}

// AliasedSource is one `Source Alias` clause of a query's `from`.
type AliasedSource struct {
	Source Expression
	Alias  string
}

// LetClause is one `let Name: Value` clause.
type LetClause struct {
	Name  string
	Value Expression
}

// RelationshipClause is a query's `with`/`without` clause: join against
// Source aliased as Alias, keep/reject tuples satisfying SuchThat.
type RelationshipClause struct {
	Without   bool
	Source    Expression
	Alias     string
	SuchThat  Expression
}

// AggregateClause is a query's `aggregate` clause.
type AggregateClause struct {
	Starting    Expression // nil if omitted
	Accumulator string
	Body        Expression
}

// Query is the surface multi-source query expression: `from` sources,
// optional `let`, `with`/`without` relationships, `where`, `return`
// (with optional `distinct`), `aggregate`, and `sort by` -- the full
// 9-step pipeline ELM lowers this to.
type Query struct {
	Position      Position
	Sources       []AliasedSource
	Lets          []LetClause
	Relationships []RelationshipClause
	Where         Expression // nil if omitted
	ReturnDistinct bool
	Return        Expression // nil selects the tuple/singleton source itself
	Aggregate     *AggregateClause
	SortBy        []SortByItem
}

func (q *Query) Pos() Position   { return q.Position }
func (*Query) expressionNode() {}
