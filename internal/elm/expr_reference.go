package elm

// ExpressionRef references another `define`d expression, optionally
// qualified by an included library's alias.
type ExpressionRef struct {
	Element
	LibraryName string `json:"libraryName,omitempty"`
	Name        string `json:"name"`
}

func (e *ExpressionRef) element() *Element { return &e.Element }
func (*ExpressionRef) ElmType() string     { return "ExpressionRef" }

// ParameterRef references a library parameter.
type ParameterRef struct {
	Element
	Name string `json:"name"`
}

func (p *ParameterRef) element() *Element { return &p.Element }
func (*ParameterRef) ElmType() string     { return "ParameterRef" }

// OperandRef references a function's own operand from within its body.
type OperandRef struct {
	Element
	Name string `json:"name"`
}

func (o *OperandRef) element() *Element { return &o.Element }
func (*OperandRef) ElmType() string     { return "OperandRef" }

// FunctionRef calls a named function, built-in or user-defined. The
// converter only emits this for calls it could not map onto a typed system
// operator.
type FunctionRef struct {
	Element
	LibraryName string       `json:"libraryName,omitempty"`
	Name        string       `json:"name"`
	Operand     []Expression `json:"operand,omitempty"`
}

func (f *FunctionRef) element() *Element { return &f.Element }
func (*FunctionRef) ElmType() string     { return "FunctionRef" }

// AliasRef references a query's `from`-clause alias from within the query
// body (where/return/sort).
type AliasRef struct {
	Element
	Name string `json:"name"`
}

func (a *AliasRef) element() *Element { return &a.Element }
func (*AliasRef) ElmType() string     { return "AliasRef" }

// QueryLetRef references a query's `let`-bound name.
type QueryLetRef struct {
	Element
	Name string `json:"name"`
}

func (q *QueryLetRef) element() *Element { return &q.Element }
func (*QueryLetRef) ElmType() string     { return "QueryLetRef" }

// CodeRef references a library-level CodeDef.
type CodeRef struct {
	Element
	LibraryName string `json:"libraryName,omitempty"`
	Name        string `json:"name"`
}

func (c *CodeRef) element() *Element { return &c.Element }
func (*CodeRef) ElmType() string     { return "CodeRef" }

// ConceptRef references a library-level ConceptDef.
type ConceptRef struct {
	Element
	LibraryName string `json:"libraryName,omitempty"`
	Name        string `json:"name"`
}

func (c *ConceptRef) element() *Element { return &c.Element }
func (*ConceptRef) ElmType() string     { return "ConceptRef" }

// ValueSetRef references a library-level ValueSetDef.
type ValueSetRef struct {
	Element
	LibraryName string `json:"libraryName,omitempty"`
	Name        string `json:"name"`
}

func (v *ValueSetRef) element() *Element { return &v.Element }
func (*ValueSetRef) ElmType() string     { return "ValueSetRef" }

// CodeSystemRef references a library-level CodeSystemDef.
type CodeSystemRef struct {
	Element
	LibraryName string `json:"libraryName,omitempty"`
	Name        string `json:"name"`
}

func (c *CodeSystemRef) element() *Element { return &c.Element }
func (*CodeSystemRef) ElmType() string     { return "CodeSystemRef" }

// IdentifierRef is a generic fallback reference the converter emits for
// every bare identifier; both the semantic inferrer and the engine
// dispatcher resolve it dynamically (local scope, then library
// definitions/parameters/terminology) rather than rewriting it to a more
// specific reference kind ahead of time.
type IdentifierRef struct {
	Element
	Name string `json:"name"`
}

func (i *IdentifierRef) element() *Element { return &i.Element }
func (*IdentifierRef) ElmType() string     { return "IdentifierRef" }

// Property accesses a named member of a source expression (a model
// attribute, a tuple field, or a Code/Concept/Quantity component).
type Property struct {
	Element
	Source Expression `json:"source,omitempty"`
	Scope  string     `json:"scope,omitempty"`
	Path   string     `json:"path"`
}

func (p *Property) element() *Element { return &p.Element }
func (*Property) ElmType() string     { return "Property" }

// Indexer accesses a list/string element by position.
type Indexer struct {
	BinaryExpression
}

func (*Indexer) ElmType() string { return "Indexer" }
