package provider

import (
	"context"
	"testing"

	"github.com/cwbudde/go-cql/internal/types"
	"github.com/cwbudde/go-cql/internal/value"
)

func TestStaticModelProviderRoundTrip(t *testing.T) {
	p := NewStaticModelProvider()
	p.RegisterClass("FHIR", "Patient", types.NamedType{Namespace: "FHIR", Name: "Patient"})
	p.RegisterProperty("FHIR", "Patient", "birthDate", types.Date)
	p.SetDefaultCodePath("FHIR", "Condition", "code")

	if _, ok := p.ResolveType("FHIR", "Observation"); ok {
		t.Error("unregistered class should not resolve")
	}
	ty, ok := p.ResolveType("FHIR", "Patient")
	if !ok || !types.Equal(ty, types.NamedType{Namespace: "FHIR", Name: "Patient"}) {
		t.Errorf("ResolveType(Patient) = %v, %v", ty, ok)
	}
	pt, ok := p.ResolveProperty("FHIR", "Patient", "birthDate")
	if !ok || !types.Equal(pt, types.Date) {
		t.Errorf("ResolveProperty(birthDate) = %v, %v", pt, ok)
	}
	if got := p.DefaultCodePath("FHIR", "Condition"); got != "code" {
		t.Errorf("DefaultCodePath = %q", got)
	}
}

func TestSliceRetrieverReturnsRegisteredInstances(t *testing.T) {
	r := NewSliceRetriever(nil)
	r.Register("Condition", value.String{Value: "a"}, value.String{Value: "b"})
	got, err := r.Retrieve(context.Background(), "Condition", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d instances, want 2", len(got))
	}
	if got2, _ := r.Retrieve(context.Background(), "Missing", "", nil); got2 != nil {
		t.Errorf("unregistered data type should return nil, got %v", got2)
	}
}

func TestNullTerminologyProviderAlwaysFalse(t *testing.T) {
	var tp NullTerminologyProvider
	ctx := context.Background()
	code := value.Code{Code: "1234", System: "http://example.org"}
	if in, err := tp.InValueSet(ctx, code, "some-vs"); err != nil || in {
		t.Errorf("InValueSet = %v, %v", in, err)
	}
	if in, err := tp.InCodeSystem(ctx, code, "some-cs"); err != nil || in {
		t.Errorf("InCodeSystem = %v, %v", in, err)
	}
	if codes, err := tp.Expand(ctx, "some-vs"); err != nil || codes != nil {
		t.Errorf("Expand = %v, %v", codes, err)
	}
}
