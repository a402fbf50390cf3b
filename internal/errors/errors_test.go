package errors

import (
	"strings"
	"testing"
)

func TestErrorFormatsKindAndSpan(t *testing.T) {
	err := New(KindEvaluation, CodeOverflow, "X", "integer overflow").WithSpan(3, 7)

	got := err.Error()
	for _, want := range []string{"X:", "Evaluation error", "3:7", "integer overflow"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, want substring %q", got, want)
		}
	}
}

func TestErrorWithoutDefinitionOrSpan(t *testing.T) {
	err := New(KindConversion, CodeUnsupported, "", "bad shape")
	got := err.Error()
	if strings.Contains(got, " at ") {
		t.Errorf("Error() = %q, should not contain a span when none was set", got)
	}
}

func TestListErrorJoinsMessages(t *testing.T) {
	l := List{
		New(KindSemantic, CodeUnknownIdentifier, "A", "unknown identifier 'foo'"),
		New(KindSemantic, CodeAmbiguousOverload, "B", "ambiguous overload"),
	}
	got := l.Error()
	if !strings.Contains(got, "2 errors") {
		t.Errorf("List.Error() = %q, want count prefix", got)
	}
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := New(KindIO, CodeProviderIO, "", "transport down")
	wrapped := New(KindEvaluation, CodeInternal, "Y", "retrieve failed").WithCause(cause)

	if wrapped.Unwrap() != cause {
		t.Fatalf("Unwrap() did not return the attached cause")
	}
}
