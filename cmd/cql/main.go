// Command cql loads an already-converted ELM library (JSON envelope)
// and runs it through semantic analysis and evaluation -- the two stages
// this module places in scope (the CQL lexer/parser producing the
// ast.Library ELM is converted from is an external collaborator this module
// does not implement).
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-cql/cmd/cql/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
