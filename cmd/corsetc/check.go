package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airlang/corset/pkg/binfile"
	"github.com/airlang/corset/pkg/corset"
	"github.com/airlang/corset/pkg/schema"
	"github.com/airlang/corset/pkg/trace"
	"github.com/spf13/cobra"
)

// checkCmd implements "corsetc check", loading a JSON trace against a
// constraint set (either a .bin file or Corset source) and reporting every
// failing constraint.
var checkCmd = &cobra.Command{
	Use:   "check [flags] trace_file constraint_file(s)",
	Short: "Check a JSON trace against a constraint set.",
	Long:  "Check a JSON trace file against a compiled constraint set.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		traceFile := args[0]
		constraintFiles := args[1:]

		cs := loadConstraintSet(cmd, constraintFiles)

		data, err := os.ReadFile(traceFile)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		spillage := GetInt(cmd, "spillage")
		if err := trace.Load(cs, data, spillage); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		cfg := fieldConfig(cmd)
		threads := GetUint(cmd, "threads")

		if err := trace.Expand(cs, cfg); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		failures := trace.Check(cs, cfg, threads)
		if len(failures) == 0 {
			fmt.Println("ok")
			return
		}

		for _, f := range failures {
			fmt.Printf("FAIL %s.%s (row %d): %s\n", f.Module(), f.Handle(), f.Row(), f.Error())
		}

		os.Exit(4)
	},
}

// loadConstraintSet reads either a single .bin file or one or more Corset
// source files into a constraint set, dispatching on file extension as the
// teacher's check command does.
func loadConstraintSet(cmd *cobra.Command, filenames []string) *schema.ConstraintSet {
	if len(filenames) == 1 && filepath.Ext(filenames[0]) == ".bin" {
		data, err := os.ReadFile(filenames[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		bf, err := binfile.Deserialise(data)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		cs, err := bf.ConstraintSet()
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		return cs
	}

	var cfg corset.CompilationConfig

	cfg.Native = GetFlag(cmd, "native")

	return compileSources(cmd, cfg, filenames)
}

func init() {
	checkCmd.Flags().Int("spillage", 0, "override inferred per-module spilling depth (0 uses each module's own requirement)")
	rootCmd.AddCommand(checkCmd)
}
