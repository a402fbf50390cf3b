package engine

import (
	"testing"

	"github.com/cwbudde/go-cql/internal/value"
)

func TestResolveFindsInnermostBinding(t *testing.T) {
	root := NewRootContext(nil)
	root.Bind("x", value.Integer{Value: 1})
	inner := root.Push()
	inner.Bind("x", value.Integer{Value: 2})

	if v, ok := inner.Resolve("x"); !ok || v != (value.Integer{Value: 2}) {
		t.Errorf("inner.Resolve(x) = %v, %v, want shadowed 2", v, ok)
	}
	if v, ok := root.Resolve("x"); !ok || v != (value.Integer{Value: 1}) {
		t.Errorf("root.Resolve(x) = %v, %v, want 1", v, ok)
	}
}

func TestResolveFallsThroughToOuterScope(t *testing.T) {
	root := NewRootContext(nil)
	root.Bind("y", value.String{Value: "outer"})
	inner := root.Push()

	if v, ok := inner.Resolve("y"); !ok || v != (value.String{Value: "outer"}) {
		t.Errorf("inner.Resolve(y) = %v, %v, want outer", v, ok)
	}
}

func TestResolveUnboundNameFails(t *testing.T) {
	root := NewRootContext(nil)
	if _, ok := root.Resolve("missing"); ok {
		t.Error("Resolve(missing) should report ok=false")
	}
}

func TestContextValueCarriesThroughPush(t *testing.T) {
	root := NewRootContext(value.String{Value: "patient-1"})
	inner := root.Push()
	if got := inner.ContextValue(); got != (value.String{Value: "patient-1"}) {
		t.Errorf("inner.ContextValue() = %v, want patient-1", got)
	}
}
