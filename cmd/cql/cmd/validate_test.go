package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func TestValidateCommandReportsOK(t *testing.T) {
	libPath := writeTempFile(t, "lib.elm.json", oneDefLibraryJSON)

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs([]string{"validate", libPath})
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(buf.String(), "OK") {
		t.Errorf("output = %q, want it to mention OK", buf.String())
	}
}

func TestValidateCommandReportsDiagnostics(t *testing.T) {
	badLibrary := `{
		"library": {
			"identifier": {"id": "Bad"},
			"statements": [
				{"name": "Bad", "expression": {"type": "IdentifierRef", "name": "NoSuchThing"}}
			]
		}
	}`
	libPath := writeTempFile(t, "bad.elm.json", badLibrary)

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs([]string{"validate", libPath})
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if err == nil {
		t.Fatal("expected an error for an unresolvable identifier")
	}
	if !strings.Contains(buf.String(), "NoSuchThing") {
		t.Errorf("output = %q, want it to mention the unresolved name", buf.String())
	}
}
