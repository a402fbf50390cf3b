package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "cql",
	Short: "CQL/ELM evaluation tool chain",
	Long: `cql loads an ELM library (the JSON intermediate representation CQL
source is converted to) and runs it: semantic validation followed by
evaluation against an optional data/terminology provider.

The CQL lexer/parser and the AST-to-ELM converter's upstream front end are
not part of this tool -- it operates directly on already-converted ELM
JSON, the same envelope format a real CQL-to-ELM translator would emit.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	})
}
