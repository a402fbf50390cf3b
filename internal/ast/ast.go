// Package ast defines the surface-syntax tree shape the CQL parser is
// contracted to emit. This package owns no parsing logic -- the parser
// is an external collaborator -- it only fixes the node types internal/convert
// lowers into ELM.
//
// Node/Expression follow DWScript's ast.Node interface split, with Node
// reduced to Pos() and no Statement interface: CQL's declaration-oriented
// surface syntax has no statements in the imperative sense -- every
// top-level construct is a definition.
package ast

// Node is the base interface for every AST node.
type Node interface {
	// Pos returns the node's source position, for error reporting.
	Pos() Position
}

// Position is a 1-indexed source location.
type Position struct {
	Line   int
	Column int
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// TypeSpecifier is the surface-syntax spelling of a type (e.g. "List<Integer>",
// "Interval<DateTime>", "Patient").
type TypeSpecifier struct {
	Position  Position
	Namespace string // e.g. "FHIR"; "" for System/unqualified
	Name      string // e.g. "Integer", "Patient"
	List      *TypeSpecifier
	Interval  *TypeSpecifier
	TupleElem map[string]*TypeSpecifier
	ChoiceOf  []*TypeSpecifier
}

func (t *TypeSpecifier) Pos() Position { return t.Position }

// AccessModifier is the surface-syntax "public"/"private" keyword.
type AccessModifier int

const (
	// AccessUnspecified means the keyword was omitted; the converter maps
	// this to Public.
	AccessUnspecified AccessModifier = iota
	AccessPublic
	AccessPrivate
)

// VersionedIdentifier names a library by name and optional version.
type VersionedIdentifier struct {
	ID      string
	Version string // "" if unspecified
}

// Include is an AST `include` clause: an alias bound to another library.
type Include struct {
	Position Position
	Library  VersionedIdentifier
	Alias    string
}

func (i *Include) Pos() Position { return i.Position }

// UsingDef is an AST `using` clause declaring a data model.
type UsingDef struct {
	Position Position
	Model    string
	Version  string
}

func (u *UsingDef) Pos() Position { return u.Position }

// ParameterDef is an AST `parameter` declaration.
type ParameterDef struct {
	Position Position
	Name     string
	Type     *TypeSpecifier
	Default  Expression // nil if none
	Access   AccessModifier
}

func (p *ParameterDef) Pos() Position { return p.Position }

// CodeSystemDef is an AST `codesystem` declaration.
type CodeSystemDef struct {
	Position Position
	Name     string
	ID       string
	Version  string
	Access   AccessModifier
}

func (c *CodeSystemDef) Pos() Position { return c.Position }

// ValueSetDef is an AST `valueset` declaration.
type ValueSetDef struct {
	Position    Position
	Name        string
	ID          string
	Version     string
	CodeSystems []string // refers to CodeSystemDef.Name
	Access      AccessModifier
}

func (v *ValueSetDef) Pos() Position { return v.Position }

// CodeDef is an AST `code` declaration.
type CodeDef struct {
	Position   Position
	Name       string
	Code       string
	System     string // refers to a CodeSystemDef.Name
	Display    string
	Access     AccessModifier
}

func (c *CodeDef) Pos() Position { return c.Position }

// ConceptDef is an AST `concept` declaration.
type ConceptDef struct {
	Position Position
	Name     string
	Codes    []string // refers to CodeDef.Name
	Display  string
	Access   AccessModifier
}

func (c *ConceptDef) Pos() Position { return c.Position }

// ContextDef is an AST `context` declaration (e.g. `context Patient`).
type ContextDef struct {
	Position Position
	Name     string
}

func (c *ContextDef) Pos() Position { return c.Position }

// ExpressionDef is an AST `define` declaration.
type ExpressionDef struct {
	Position Position
	Name     string
	Access   AccessModifier
	Context  string // "" inherits the library's current context
	Body     Expression
}

func (e *ExpressionDef) Pos() Position { return e.Position }

// FunctionParameter is one parameter of a FunctionDef.
type FunctionParameter struct {
	Name string
	Type *TypeSpecifier
}

// FunctionDef is an AST `define function` declaration.
type FunctionDef struct {
	Position   Position
	Name       string
	Access     AccessModifier
	Context    string
	Parameters []FunctionParameter
	ReturnType *TypeSpecifier
	Body       Expression // nil for external/abstract functions
	External   bool
	Fluent     bool
}

func (f *FunctionDef) Pos() Position { return f.Position }

// Library is the root AST node for a single CQL source file.
type Library struct {
	Position     Position
	Identifier   VersionedIdentifier
	Usings       []*UsingDef
	Includes     []*Include
	Parameters   []*ParameterDef
	CodeSystems  []*CodeSystemDef
	ValueSets    []*ValueSetDef
	Codes        []*CodeDef
	Concepts     []*ConceptDef
	Contexts     []*ContextDef
	Expressions  []*ExpressionDef
	Functions    []*FunctionDef
}

func (l *Library) Pos() Position { return l.Position }
