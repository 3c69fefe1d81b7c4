package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/corset"
	"github.com/airlang/corset/pkg/field"
	"github.com/airlang/corset/pkg/lower"
	"github.com/airlang/corset/pkg/schema"
	"github.com/airlang/corset/pkg/sexp"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected bool flag, or exits if the flag is undeclared.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if the flag is undeclared.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected uint flag, or exits if the flag is undeclared.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt gets an expected int flag, or exits if the flag is undeclared.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected repeated string flag, or exits if the flag
// is undeclared.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// fieldConfig resolves the --field flag to a field.Config, exiting on an
// unrecognised name.
func fieldConfig(cmd *cobra.Command) *field.Config {
	name := GetString(cmd, "field")

	cfg := field.GetConfig(name)
	if cfg == nil {
		fmt.Printf("unknown prime field %q\n", name)
		os.Exit(2)
	}

	return cfg
}

// readSources parses and translates one or more Corset source files into a
// single AST forest, reporting every syntax/translation error it
// accumulates before exiting.
func readSources(cmd *cobra.Command, filenames []string) []ast.Node {
	var (
		nodes   []ast.Node
		anyErrs bool
	)

	noColor := GetFlag(cmd, "no-color") || !term.IsTerminal(int(os.Stderr.Fd()))

	for _, filename := range filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		sf := sexp.NewSourceFile(filename, data)
		p := sexp.NewParser(sf)

		var forms []sexp.SExp

		for {
			form, err := p.Parse()
			if err != nil {
				printSyntaxError(err, noColor)
				anyErrs = true

				break
			}

			if form == nil {
				break
			}

			forms = append(forms, form)
		}

		translator := ast.NewTranslator(sf, p)

		fnodes, terrs := translator.TranslateAll(forms)
		for _, terr := range terrs {
			printSyntaxError(terr, noColor)
			anyErrs = true
		}

		nodes = append(nodes, fnodes...)
	}

	if anyErrs {
		os.Exit(1)
	}

	return nodes
}

// printSyntaxError renders err, appending a caret excerpt when err is a
// *sexp.SyntaxError; the caret line is coloured unless noColor is set.
func printSyntaxError(err error, noColor bool) {
	se, ok := err.(*sexp.SyntaxError)
	if !ok {
		fmt.Println(err)
		return
	}

	fmt.Println(se.Error())

	caret := se.Caret()
	if noColor {
		fmt.Println(caret)
		return
	}

	lines := strings.SplitN(caret, "\n", 2)
	if len(lines) == 2 {
		fmt.Printf("%s\n\033[31m%s\033[0m\n", lines[0], lines[1])
	} else {
		fmt.Println(caret)
	}
}

// compileSources runs the full frontend (parse/translate/compile) and, when
// cfg.Native holds, the normalisation/inverse and if-expansion passes.
func compileSources(cmd *cobra.Command, cfg corset.CompilationConfig, filenames []string) *schema.ConstraintSet {
	nodes := readSources(cmd, filenames)

	cs, err := corset.Compile(nodes)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if cfg.Native {
		if err := lower.Lower(cs); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	return cs
}

// parseMetadataFlags parses "-D key=value" pairs into binary-file metadata.
func parseMetadataFlags(defs []string) map[string]string {
	metadata := make(map[string]string, len(defs))

	for _, d := range defs {
		key, value, ok := strings.Cut(d, "=")
		if !ok {
			fmt.Printf("malformed -D flag %q (expected key=value)\n", d)
			os.Exit(2)
		}

		metadata[key] = value
	}

	return metadata
}
