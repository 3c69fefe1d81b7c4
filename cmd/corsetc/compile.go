package main

import (
	"fmt"
	"os"

	"github.com/airlang/corset/pkg/binfile"
	"github.com/airlang/corset/pkg/corset"
	"github.com/spf13/cobra"
)

// compileCmd implements "corsetc compile", translating one or more Corset
// source files into a versioned binary constraint set.
var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file(s)",
	Short: "Compile Corset source into a binary constraint set.",
	Long:  "Compile one or more Corset source files into a binary constraint set file.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		var cfg corset.CompilationConfig

		cfg.Native = GetFlag(cmd, "native")

		output := GetString(cmd, "output")
		if output == "" {
			fmt.Println("missing required --output flag")
			os.Exit(1)
		}

		metadata := parseMetadataFlags(GetStringArray(cmd, "define"))

		cs := compileSources(cmd, cfg, args)

		bf, err := binfile.NewBinaryFile(cs, binfile.Metadata(metadata))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		data, err := bf.Serialise()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if err := os.WriteFile(output, data, 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "output binary constraint set file")
	compileCmd.Flags().StringArrayP("define", "D", nil, "attach metadata to the binary file header, as key=value")
	rootCmd.AddCommand(compileCmd)
}
