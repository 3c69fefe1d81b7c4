package backend

import (
	"fmt"
	"strings"

	"github.com/airlang/corset/pkg/schema"
)

// RenderLatex emits a LaTeX document describing a compiled constraint set:
// one section per module listing its columns and its constraints (in an
// align* block), followed by a single section listing every computation,
// rendered with the shared pretty-printer.
func RenderLatex(cs *schema.ConstraintSet, title string) (string, error) {
	if title == "" {
		title = "Constraint Set"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "\\documentclass{article}\n\\usepackage{amsmath}\n\\title{%s}\n\\begin{document}\n\\maketitle\n\n",
		latexEscape(title))

	for _, module := range cs.Store.Modules() {
		fmt.Fprintf(&b, "\\section{Module %s}\n\n", latexEscape(module))

		cols := cs.Store.IterModule(module)
		if len(cols) > 0 {
			b.WriteString("\\subsection{Columns}\n\\begin{itemize}\n")

			for _, h := range cols {
				col, ok := cs.Store.Get(h)
				if !ok {
					continue
				}

				fmt.Fprintf(&b, "\\item \\texttt{%s} : %s\n", latexEscape(col.Handle.Name), latexEscape(col.Type.String()))
			}

			b.WriteString("\\end{itemize}\n\n")
		}

		constraints := cs.ConstraintsInModule(module)
		if len(constraints) > 0 {
			b.WriteString("\\subsection{Constraints}\n\\begin{align*}\n")

			for _, c := range constraints {
				fmt.Fprintf(&b, "& \\text{%s} \\\\\n", latexEscape(describeConstraint(c)))
			}

			b.WriteString("\\end{align*}\n\n")
		}
	}

	if len(cs.Computations) > 0 {
		b.WriteString("\\section{Computations}\n\\begin{align*}\n")

		for _, c := range cs.Computations {
			fmt.Fprintf(&b, "& \\text{%s} \\\\\n", latexEscape(describeComputation(c)))
		}

		b.WriteString("\\end{align*}\n\n")
	}

	b.WriteString("\\end{document}\n")

	return b.String(), nil
}

// latexEscape escapes the handful of characters that are syntactically
// significant to LaTeX and that this renderer's inputs (handle names, type
// strings, pretty-printed expressions) can actually contain.
func latexEscape(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\textbackslash{}",
		"_", "\\_",
		"{", "\\{",
		"}", "\\}",
		"^", "\\^{}",
		"#", "\\#",
		"%", "\\%",
		"&", "\\&",
	)

	return replacer.Replace(s)
}
