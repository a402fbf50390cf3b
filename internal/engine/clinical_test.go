package engine

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/provider"
	"github.com/cwbudde/go-cql/internal/value"
)

// stubTerminology answers InValueSet true only for a preconfigured valueSetID.
type stubTerminology struct {
	memberValueSet string
}

func (s stubTerminology) InValueSet(_ context.Context, _ value.Code, valueSetID string) (bool, error) {
	return valueSetID == s.memberValueSet, nil
}
func (s stubTerminology) InCodeSystem(_ context.Context, _ value.Code, _ string) (bool, error) {
	return true, nil
}
func (s stubTerminology) Expand(_ context.Context, _ string) ([]value.Code, error) { return nil, nil }

func codeRefLibrary(name, code, system string) *elm.Library {
	return &elm.Library{Codes: []elm.CodeDef{{Name: name, Code: code, CodeSystem: system}}}
}

func TestRetrieveWithoutDataRetrieverErrors(t *testing.T) {
	e := New(&elm.Library{}, nil, nil, nil)
	n := &elm.Retrieve{DataType: "Patient"}
	_, err := e.evalRetrieve(context.Background(), n, NewRootContext(nil))
	if err == nil {
		t.Error("Retrieve with no DataRetriever should error")
	}
}

func TestRetrieveReturnsRegisteredInstances(t *testing.T) {
	retriever := provider.NewSliceRetriever(nil)
	retriever.Register("Patient", value.String{Value: "patient-1"})
	e := New(&elm.Library{}, nil, retriever, nil)
	n := &elm.Retrieve{DataType: "Patient"}
	got, err := e.evalRetrieve(context.Background(), n, NewRootContext(nil))
	if err != nil {
		t.Fatalf("Retrieve errored: %v", err)
	}
	list, ok := got.(value.List)
	if !ok || len(list.Elements) != 1 {
		t.Fatalf("Retrieve = %v, want one-element List", got)
	}
}

func TestInValueSetUsesTerminologyProvider(t *testing.T) {
	lib := codeRefLibrary("c1", "1234", "sys")
	e := New(lib, nil, nil, stubTerminology{memberValueSet: "urn:oid:example"})
	n := &elm.InValueSet{Code: &elm.CodeRef{Name: "c1"}, ValueSet: strLit("urn:oid:example")}
	if got := evalExprOn(t, e, n); got != (value.Boolean{Value: true}) {
		t.Errorf("InValueSet(member) = %v, want true", got)
	}
	other := &elm.InValueSet{Code: &elm.CodeRef{Name: "c1"}, ValueSet: strLit("urn:oid:other")}
	if got := evalExprOn(t, e, other); got != (value.Boolean{Value: false}) {
		t.Errorf("InValueSet(non-member) = %v, want false", got)
	}
}

func TestMessageReturnsSourceUnconditionally(t *testing.T) {
	n := &elm.Message{Source: strLit("unchanged"), Message: strLit("a message")}
	if got := evalExpr(t, n); got != (value.String{Value: "unchanged"}) {
		t.Errorf("Message(source) = %v, want unchanged source", got)
	}
}
