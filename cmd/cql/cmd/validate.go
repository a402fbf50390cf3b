package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-cql/pkg/cql"
)

var validateCmd = &cobra.Command{
	Use:   "validate <library.elm.json>",
	Short: "Run semantic analysis only, without evaluating",
	Long: `Load an ELM library and run semantic analysis (reference resolution,
overload resolution, type inference) without evaluating any definition.
Prints every diagnostic raised and exits non-zero if any were found --
useful for checking a converter's output in isolation.`,
	Args: cobra.ExactArgs(1),
	RunE: validateLibrary,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateLibrary(_ *cobra.Command, args []string) error {
	log.Debugf("loading ELM library %s", args[0])
	lib, err := loadLibrary(args[0])
	if err != nil {
		return err
	}

	if _, err := cql.ParseELM(lib, cql.ParseConfig{}); err != nil {
		ee, ok := err.(*cql.EngineError)
		if !ok {
			return err
		}
		for _, diag := range ee.Diagnostics {
			fmt.Println(diag.Error())
		}
		return fmt.Errorf("semantic analysis failed with %d diagnostic(s)", len(ee.Diagnostics))
	}

	fmt.Println("OK: no semantic diagnostics")
	return nil
}
