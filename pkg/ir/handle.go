// Package ir defines the polynomial intermediate representation produced by
// the resolver/elaborator: the Node tree, the closed set of
// Intrinsic operations, and the Void/Boolean/Numeric type lattice columns
// and expressions are classified against.
package ir

import (
	"strconv"
	"strings"
)

const arraySeparator = "_"
const moduleSeparator = "__"

// Handle is a fully qualified name: (module, name, perspective?). Two
// handles are equal iff all three components match.
type Handle struct {
	Module      string
	Name        string
	Perspective string
}

// NewHandle constructs a handle with no perspective.
func NewHandle(module, name string) Handle {
	return Handle{module, name, ""}
}

// NewPerspectiveHandle constructs a handle scoped to a perspective.
func NewPerspectiveHandle(module, name, perspective string) Handle {
	return Handle{module, name, perspective}
}

// Equals reports whether two handles name the same entity.
func (h Handle) Equals(o Handle) bool {
	return h.Module == o.Module && h.Name == o.Name && h.Perspective == o.Perspective
}

// Ith derives the handle of the i-th sibling scalar column of an array
// column, by appending "_i" to the name.
func (h Handle) Ith(i int) Handle {
	return Handle{h.Module, h.Name + arraySeparator + strconv.Itoa(i), h.Perspective}
}

// Display renders the handle in "module.name" form.
func (h Handle) Display() string {
	if h.Module == "" {
		return h.Name
	}

	return h.Module + "." + h.Name
}

// String implements fmt.Stringer as the display form.
func (h Handle) String() string {
	return h.Display()
}

// Mangle renders the handle as an identifier-safe string suitable for
// embedding in a back-end's generated code: every non-alphanumeric
// character (including but not limited to `()[]{}/:%.`) is replaced by `_`,
// and the module, perspective (when present) and name components are joined
// with `__`.
func (h Handle) Mangle() string {
	module := purify(h.Module)
	name := purify(h.Name)

	if h.Perspective != "" {
		name = purify(h.Perspective) + moduleSeparator + name
	}

	if module == "" {
		return name
	}

	return module + moduleSeparator + name
}

func purify(s string) string {
	var b strings.Builder

	for _, r := range s {
		if isAlphaNumeric(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	return b.String()
}

func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
