package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/provider"
	"github.com/cwbudde/go-cql/internal/value"
	"github.com/cwbudde/go-cql/pkg/cql"
)

var (
	paramsPath  string
	contextText string
)

var runCmd = &cobra.Command{
	Use:   "run <library.elm.json>",
	Short: "Evaluate an ELM library",
	Long: `Load an ELM library, run semantic analysis, and evaluate every
public top-level definition against an optional context value.

Example:
  cql run measure.elm.json --parameters params.json --context "patient-1"`,
	Args: cobra.ExactArgs(1),
	RunE: runLibrary,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&paramsPath, "parameters", "", "path to a JSON object binding library parameters")
	runCmd.Flags().StringVar(&contextText, "context", "", "the context value (e.g. a Patient id), passed through as a String")
}

func runLibrary(_ *cobra.Command, args []string) error {
	log.Debugf("loading ELM library %s", args[0])
	lib, err := loadLibrary(args[0])
	if err != nil {
		return err
	}

	params, err := loadParameters(paramsPath)
	if err != nil {
		return fmt.Errorf("failed to read parameters: %w", err)
	}
	log.Debugf("loaded %d parameter override(s)", len(params))

	elmLib, err := cql.ParseELM(lib, cql.ParseConfig{Parameters: params})
	if err != nil {
		return err
	}
	log.Debugf("semantic analysis passed for library %s", lib.Identifier.ID)

	var ctxValue value.Value
	if contextText != "" {
		ctxValue = value.String{Value: contextText}
	}

	results, err := elmLib.Eval(context.Background(), ctxValue, cql.EvalConfig{
		Terminology: provider.NullTerminologyProvider{},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluation reported error(s): %v\n", err)
	}

	out := make(map[string]cliResult, len(results))
	for name, v := range results {
		out[name] = cliResult{Kind: v.Kind().String(), Value: v.String()}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(out); encErr != nil {
		return fmt.Errorf("failed to write results: %w", encErr)
	}

	if err != nil {
		return fmt.Errorf("execution failed")
	}
	return nil
}

// cliResult is the CLI's own minimal JSON rendering of a value.Value --
// Kind/String(), not a full wire-form encoding. A faithful literal wire
// form per Kind (distinguishing a Decimal's preserved scale, a DateTime's
// partial precision, etc.) belongs to the ELM serializer, not this CLI's
// result dump.
type cliResult struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func loadLibrary(path string) (*elm.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library %s: %w", path, err)
	}
	var lib elm.Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to decode ELM library %s: %w", path, err)
	}
	return &lib, nil
}

// loadParameters parses a flat JSON object of null/bool/string/number
// parameter values using gjson's path-free object walk -- the one call site
// in this module that exercises gjson directly rather than leaving it an
// unwired transitive dependency of go-snaps.
func loadParameters(path string) (map[string]value.Value, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%s must be a JSON object of parameter name to value", path)
	}
	params := make(map[string]value.Value)
	var convErr error
	root.ForEach(func(key, val gjson.Result) bool {
		v, err := jsonResultToValue(val)
		if err != nil {
			convErr = fmt.Errorf("parameter %q: %w", key.String(), err)
			return false
		}
		params[key.String()] = v
		return true
	})
	return params, convErr
}

func jsonResultToValue(r gjson.Result) (value.Value, error) {
	switch r.Type {
	case gjson.Null:
		return value.Null{}, nil
	case gjson.False:
		return value.Boolean{Value: false}, nil
	case gjson.True:
		return value.Boolean{Value: true}, nil
	case gjson.String:
		return value.String{Value: r.Str}, nil
	case gjson.Number:
		d, err := value.NewDecimal(r.Raw)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", r.Raw, err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value kind %v (only null/bool/string/number parameters are supported)", r.Type)
	}
}
