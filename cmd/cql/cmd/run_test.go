package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/cwbudde/go-cql/internal/value"
)

const oneDefLibraryJSON = `{
	"library": {
		"identifier": {"id": "Test", "version": "1.0.0"},
		"statements": [
			{"name": "One", "expression": {"type": "Literal", "valueType": "{urn:hl7-org:elm-types:r1}Integer", "value": "1"}}
		]
	}
}`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadLibraryAcceptsEnvelope(t *testing.T) {
	path := writeTempFile(t, "lib.elm.json", oneDefLibraryJSON)
	lib, err := loadLibrary(path)
	if err != nil {
		t.Fatalf("loadLibrary: %v", err)
	}
	if lib.Identifier.ID != "Test" {
		t.Errorf("Identifier.ID = %q, want Test", lib.Identifier.ID)
	}
	if len(lib.Statements) != 1 || lib.Statements[0].Name != "One" {
		t.Errorf("Statements = %+v, want one ExpressionDef named One", lib.Statements)
	}
}

func TestLoadLibraryMissingFile(t *testing.T) {
	if _, err := loadLibrary(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadParametersEmptyPathReturnsNil(t *testing.T) {
	params, err := loadParameters("")
	if err != nil {
		t.Fatalf("loadParameters: %v", err)
	}
	if params != nil {
		t.Errorf("params = %v, want nil", params)
	}
}

func TestLoadParametersConvertsEachKind(t *testing.T) {
	path := writeTempFile(t, "params.json", `{"Flag": true, "Name": "Alice", "Count": 3, "Missing": null}`)
	params, err := loadParameters(path)
	if err != nil {
		t.Fatalf("loadParameters: %v", err)
	}
	if params["Flag"] != (value.Boolean{Value: true}) {
		t.Errorf("Flag = %v", params["Flag"])
	}
	if params["Name"] != (value.String{Value: "Alice"}) {
		t.Errorf("Name = %v", params["Name"])
	}
	if _, ok := params["Missing"].(value.Null); !ok {
		t.Errorf("Missing = %v, want Null", params["Missing"])
	}
	dec, ok := params["Count"].(value.Decimal)
	if !ok || dec.Value.String() != "3" {
		t.Errorf("Count = %v, want Decimal 3", params["Count"])
	}
}

func TestLoadParametersRejectsNonObject(t *testing.T) {
	path := writeTempFile(t, "params.json", `[1, 2, 3]`)
	if _, err := loadParameters(path); err == nil {
		t.Error("expected an error for a non-object parameters file")
	}
}

func TestLoadParametersRejectsUnsupportedKind(t *testing.T) {
	path := writeTempFile(t, "params.json", `{"Bad": [1, 2]}`)
	if _, err := loadParameters(path); err == nil {
		t.Error("expected an error for an array-valued parameter")
	}
}

func TestJSONResultToValueRejectsArray(t *testing.T) {
	r := gjson.Parse(`[1,2]`)
	if _, err := jsonResultToValue(r); err == nil {
		t.Error("expected an error for a JSON array")
	}
}

func TestRunCommandEvaluatesAndPrintsJSON(t *testing.T) {
	libPath := writeTempFile(t, "lib.elm.json", oneDefLibraryJSON)

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs([]string{"run", libPath})
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if runErr != nil {
		t.Fatalf("run: %v", runErr)
	}

	var out map[string]cliResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if out["One"].Kind != "Integer" || out["One"].Value != "1" {
		t.Errorf("results[One] = %+v, want Integer 1", out["One"])
	}
}
