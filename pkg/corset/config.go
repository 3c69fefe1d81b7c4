package corset

// CompilationConfig encapsulates the options that affect compilation and are
// threaded explicitly through each pass, rather than kept in a process-wide
// mutable. Stdlib/Debug mirror this compiler's own
// CompilationConfig; Native, Field, Threads and Spillage are this compiler's
// own surface for the native/non-native lowering gate, the checker's field
// modulus, its worker pool size, and the module spilling depth. Of these
// fields only Native is read (by cmd/corsetc, to decide whether pkg/lower
// runs); Compile reads none of them, and the checker and trace loader take
// their field, thread count and spilling override as separate arguments.
type CompilationConfig struct {
	// Stdlib includes the built-in function library alongside user source.
	Stdlib bool
	// Debug enables additional debug-only constraints.
	Debug bool
	// Strict turns resolver warnings (e.g. unused symbols) into errors.
	Strict bool
	// Native gates the normalisation/inverse and if-expansion passes: when
	// false, pkg/lower is never invoked and Normalize/IfZero/IfNotZero nodes
	// reach the back-end unexpanded.
	Native bool
	// Field names the modulus the checker reduces values under ("bls12-377",
	// "gf251", "gf8209", ...); see pkg/field.
	Field string
	// Threads bounds the checker's worker pool size; 0 means GOMAXPROCS.
	Threads uint
	// Spillage overrides the per-module spilling depth the trace loader
	// pre-pends; 0 means use each module's requirement, derived from the
	// negative Shift offsets its constraints reference.
	Spillage int
}

// DefaultCompilationConfig returns the configuration used when no flags
// override it: standard library included, native lowering on, no debug
// constraints, the production field.
func DefaultCompilationConfig() CompilationConfig {
	return CompilationConfig{Stdlib: true, Native: true, Field: "bls12-377"}
}
