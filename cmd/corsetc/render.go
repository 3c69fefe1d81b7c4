package main

import (
	"fmt"
	"os"

	"github.com/airlang/corset/pkg/backend"
	"github.com/spf13/cobra"
)

// renderCmd implements "corsetc render", producing a single back-end output
// file from a compiled constraint set.
var renderCmd = &cobra.Command{
	Use:   "render [flags] constraint_file(s)",
	Short: "Render a constraint set to a back-end format.",
	Long:  "Render a compiled constraint set to one of go, latex or wizardiop.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		format := backend.Format(GetString(cmd, "format"))
		name := GetString(cmd, "name")
		output := GetString(cmd, "output")

		cs := loadConstraintSet(cmd, args)

		out, err := backend.Render(cs, format, name)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if output == "" {
			fmt.Print(out)
			return
		}

		if err := os.WriteFile(output, []byte(out), 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	renderCmd.Flags().String("format", string(backend.Go), "back-end format: go, latex or wizardiop")
	renderCmd.Flags().String("name", "corset", "Go package name, or LaTeX document title")
	renderCmd.Flags().StringP("output", "o", "", "output file (defaults to stdout)")
	rootCmd.AddCommand(renderCmd)
}
