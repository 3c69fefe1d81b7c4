// Package main implements corsetc, the command-line front end over the
// compiler pipeline: parse/translate/compile (pkg/corset), lower
// (pkg/lower), check (pkg/trace) and render (pkg/backend, pkg/binfile).
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is the base command when corsetc is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "corsetc",
	Short: "A compiler and checker for the Corset constraint language.",
	Long:  "A compiler, trace checker and back-end renderer for the Corset constraint language.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable ANSI-coloured diagnostics")
	rootCmd.PersistentFlags().String("field", "bls12-377", "prime field to check traces under (bls12-377, gf251, gf8209)")
	rootCmd.PersistentFlags().UintP("threads", "j", 0, "checker worker pool size (0 means GOMAXPROCS)")
	rootCmd.PersistentFlags().Bool("native", true, "apply normalisation/inverse and if-expansion lowering")

	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
}
