package convert

import (
	"strconv"
	"testing"

	"github.com/cwbudde/go-cql/internal/ast"
	"github.com/cwbudde/go-cql/internal/elm"
)

func intLit(text string) *ast.Literal { return &ast.Literal{Kind: "Integer", Text: text} }

func TestConvertBinaryOp(t *testing.T) {
	c := New(nil)
	n := &ast.BinaryOp{Op: "+", Left: intLit("1"), Right: intLit("2")}
	got := c.convertExpression(n)
	add, ok := got.(*elm.Add)
	if !ok {
		t.Fatalf("convertExpression(+) = %T, want *elm.Add", got)
	}
	if elm.LocalID(add) == "" {
		t.Error("converted node should carry a non-empty localId")
	}
	left, ok := add.Operand[0].(*elm.Literal)
	if !ok || left.Value != "1" {
		t.Errorf("left operand = %#v, want Literal(1)", add.Operand[0])
	}
}

func TestConvertBinaryOpUnrecognizedFallsBackToFunctionRef(t *testing.T) {
	c := New(nil)
	n := &ast.BinaryOp{Op: "???", Left: intLit("1"), Right: intLit("2")}
	got := c.convertExpression(n)
	ref, ok := got.(*elm.FunctionRef)
	if !ok {
		t.Fatalf("convertExpression(???) = %T, want *elm.FunctionRef", got)
	}
	if ref.Name != "???" || len(ref.Operand) != 2 {
		t.Errorf("unexpected FunctionRef shape: %#v", ref)
	}
}

func TestConvertNotEquivalentDesugar(t *testing.T) {
	c := New(nil)
	n := &ast.BinaryOp{Op: "!~", Left: intLit("1"), Right: intLit("2")}
	got := c.convertExpression(n)
	not, ok := got.(*elm.Not)
	if !ok {
		t.Fatalf("!~ should desugar to Not(...), got %T", got)
	}
	if _, ok := not.Operand.(*elm.Equivalent); !ok {
		t.Errorf("Not's operand should be Equivalent, got %T", not.Operand)
	}
}

func TestConvertBetweenDesugar(t *testing.T) {
	c := New(nil)
	n := &ast.Between{Operand: intLit("5"), Low: intLit("1"), High: intLit("10")}
	got := c.convertExpression(n)
	and, ok := got.(*elm.And)
	if !ok {
		t.Fatalf("between should desugar to And(...), got %T", got)
	}
	if _, ok := and.Operand[0].(*elm.GreaterOrEqual); !ok {
		t.Errorf("left branch should be GreaterOrEqual, got %T", and.Operand[0])
	}
	if _, ok := and.Operand[1].(*elm.LessOrEqual); !ok {
		t.Errorf("right branch should be LessOrEqual, got %T", and.Operand[1])
	}
}

func TestConvertCastIsStrict(t *testing.T) {
	c := New(nil)
	n := &ast.TypeExpression{Op: "Cast", Operand: intLit("1"), Type: &ast.TypeSpecifier{Name: "Decimal"}}
	got := c.convertExpression(n)
	as, ok := got.(*elm.As)
	if !ok {
		t.Fatalf("Cast should lower to As, got %T", got)
	}
	if !as.Strict {
		t.Error("Cast should lower to a strict As")
	}
}

func TestConvertAsIsNotStrict(t *testing.T) {
	c := New(nil)
	n := &ast.TypeExpression{Op: "As", Operand: intLit("1"), Type: &ast.TypeSpecifier{Name: "Decimal"}}
	got := c.convertExpression(n).(*elm.As)
	if got.Strict {
		t.Error("plain As should not be strict")
	}
}

func TestConvertFunctionCallBuiltin(t *testing.T) {
	c := New(nil)
	n := &ast.FunctionCall{Name: "Abs", Arguments: []ast.Expression{intLit("-1")}}
	got := c.convertExpression(n)
	if _, ok := got.(*elm.Abs); !ok {
		t.Fatalf("Abs(...) = %T, want *elm.Abs", got)
	}
}

func TestConvertFunctionCallQualifiedAlwaysFunctionRef(t *testing.T) {
	c := New(nil)
	n := &ast.FunctionCall{Qualifier: "FHIRHelpers", Name: "ToInterval", Arguments: []ast.Expression{intLit("1")}}
	got := c.convertExpression(n)
	ref, ok := got.(*elm.FunctionRef)
	if !ok {
		t.Fatalf("qualified call = %T, want *elm.FunctionRef", got)
	}
	if ref.LibraryName != "FHIRHelpers" || ref.Name != "ToInterval" {
		t.Errorf("unexpected FunctionRef shape: %#v", ref)
	}
}

func TestConvertFunctionCallUnknownFallsBackToFunctionRef(t *testing.T) {
	c := New(nil)
	n := &ast.FunctionCall{Name: "SomeUserDefinedHelper", Arguments: []ast.Expression{intLit("1")}}
	got := c.convertExpression(n)
	if _, ok := got.(*elm.FunctionRef); !ok {
		t.Fatalf("unknown call = %T, want *elm.FunctionRef", got)
	}
}

func TestConvertFunctionCallDurationBetweenWithPrecision(t *testing.T) {
	c := New(nil)
	n := &ast.FunctionCall{Name: "DurationBetween", Arguments: []ast.Expression{
		intLit("1"), intLit("2"), &ast.Literal{Kind: "String", Text: "'days'"},
	}}
	got := c.convertExpression(n)
	d, ok := got.(*elm.DurationBetween)
	if !ok {
		t.Fatalf("DurationBetween(...) = %T, want *elm.DurationBetween", got)
	}
	if d.Precision != "days" {
		t.Errorf("precision = %q, want days", d.Precision)
	}
}

func TestConvertLocalIDsAreMonotonicAndUnique(t *testing.T) {
	c := New(nil)
	lib := &ast.Library{
		Identifier: ast.VersionedIdentifier{ID: "Test"},
		Expressions: []*ast.ExpressionDef{
			{Name: "A", Body: intLit("1")},
			{Name: "B", Body: &ast.BinaryOp{Op: "+", Left: intLit("1"), Right: intLit("2")}},
		},
	}
	out := c.ConvertLibrary(lib)
	seen := map[string]bool{}
	prev := 0
	for _, stmt := range out.Statements {
		id := elm.LocalID(stmt.Expression)
		if id == "" {
			t.Fatalf("statement %s has empty localId", stmt.Name)
		}
		if seen[id] {
			t.Fatalf("duplicate localId %s", id)
		}
		seen[id] = true
		n, err := strconv.Atoi(id)
		if err != nil || n <= prev {
			t.Fatalf("statement %s localId %s does not increase past %d", stmt.Name, id, prev)
		}
		prev = n
	}
}

func TestConvertLibraryAccessDefaultsToPublic(t *testing.T) {
	c := New(nil)
	lib := &ast.Library{
		Identifier: ast.VersionedIdentifier{ID: "Test"},
		Expressions: []*ast.ExpressionDef{
			{Name: "Unspecified", Access: ast.AccessUnspecified, Body: intLit("1")},
			{Name: "Explicit", Access: ast.AccessPrivate, Body: intLit("1")},
		},
	}
	out := c.ConvertLibrary(lib)
	if out.Statements[0].AccessLevel != elm.AccessPublic {
		t.Errorf("unspecified access should default to Public, got %v", out.Statements[0].AccessLevel)
	}
	if out.Statements[1].AccessLevel != elm.AccessPrivate {
		t.Errorf("explicit private access should stay Private, got %v", out.Statements[1].AccessLevel)
	}
}

func TestConvertQuerySingleSource(t *testing.T) {
	c := New(nil)
	n := &ast.Query{
		Sources: []ast.AliasedSource{{Source: &ast.Identifier{Name: "Encounters"}, Alias: "E"}},
		Where:   &ast.BinaryOp{Op: "=", Left: &ast.Identifier{Name: "x"}, Right: intLit("1")},
	}
	got := c.convertExpression(n)
	q, ok := got.(*elm.Query)
	if !ok {
		t.Fatalf("convertExpression(Query) = %T, want *elm.Query", got)
	}
	if len(q.Source) != 1 || q.Source[0].Alias != "E" {
		t.Errorf("unexpected query source: %#v", q.Source)
	}
	if q.Where == nil {
		t.Error("where clause should be converted")
	}
}

func TestConvertQueryAggregateSharesSource(t *testing.T) {
	c := New(nil)
	source := &ast.Identifier{Name: "Claims"}
	n := &ast.Query{
		Sources: []ast.AliasedSource{{Source: source, Alias: "C"}},
		Aggregate: &ast.AggregateClause{
			Accumulator: "Total",
			Starting:    intLit("0"),
			Body:        &ast.Identifier{Name: "Total"},
		},
	}
	got := c.convertExpression(n).(*elm.Query)
	if got.Aggregate == nil {
		t.Fatal("expected aggregate clause")
	}
	if got.Aggregate.Source == nil {
		t.Error("aggregate source should be populated from the query's own source")
	}
	if got.Aggregate.TotalName != "Total" {
		t.Errorf("TotalName = %q, want Total", got.Aggregate.TotalName)
	}
}
