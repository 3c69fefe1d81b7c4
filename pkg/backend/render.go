package backend

import (
	"fmt"

	"github.com/airlang/corset/pkg/schema"
)

// Format names one of the back-ends Render dispatches to.
type Format string

// The closed set of back-end formats.
const (
	Go        Format = "go"
	Latex     Format = "latex"
	WizardIOP Format = "wizardiop"
)

// ErrUnknownFormat is returned by Render for any Format outside the closed
// set above.
type ErrUnknownFormat struct {
	Format Format
}

func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("unknown back-end format %q", e.Format)
}

// Render produces a single output file from cs for the given back-end (spec
// §6 "render(cs) → string for each, with no back-end feedback into the
// core"). name is the package name for the Go back-end and the document
// title for the LaTeX back-end; the WizardIOP back-end ignores it.
func Render(cs *schema.ConstraintSet, format Format, name string) (string, error) {
	switch format {
	case Go:
		return RenderGo(cs, name)
	case Latex:
		return RenderLatex(cs, name)
	case WizardIOP:
		return RenderWizardIOP(cs)
	default:
		return "", &ErrUnknownFormat{Format: format}
	}
}
