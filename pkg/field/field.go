// Package field provides the unbounded-integer arithmetic used for constant
// folding together with the modular reduction applied when a
// Vanishes/InRange check compares a folded value against zero.
// The field is a genuine runtime configuration parameter: callers select a
// Config by name and every later pass carries it explicitly rather than
// reading a process-wide global.
package field

import (
	"fmt"
	"math/big"

	bls12377fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Config names one supported prime field by its modulus. Two small moduli
// are provided purely for testing; BLS12_377 is the production default and
// its modulus is sourced from gnark-crypto rather than hand-transcribed.
type Config struct {
	// Name identifies this configuration for CLI selection and diagnostics.
	Name string
	// Modulus is the prime characteristic of the field.
	Modulus *big.Int
}

// GF_251 is a tiny prime field used exclusively for testing.
var GF_251 = Config{"gf251", big.NewInt(251)}

// GF_8209 is a small prime field used exclusively for testing.
var GF_8209 = Config{"gf8209", big.NewInt(8209)}

// BLS12_377 is the default production field: the scalar field of the
// BLS12-377 curve, as defined by gnark-crypto.
var BLS12_377 = Config{"bls12-377", bls12377fr.Modulus()}

// Configs lists every field configuration known to the compiler.
var Configs = []Config{GF_251, GF_8209, BLS12_377}

// GetConfig looks up a field configuration by name, or returns nil if no such
// configuration is registered.
func GetConfig(name string) *Config {
	for i := range Configs {
		if Configs[i].Name == name {
			return &Configs[i]
		}
	}

	return nil
}

// Element is a value of a specific Config's field: an unbounded integer
// together with a reference to the modulus it is reduced against. Constant
// folding operates on plain *big.Int and only reduces into an
// Element at the point a check needs to compare against zero.
type Element struct {
	cfg *Config
	val *big.Int
}

// NewElement reduces v modulo cfg's modulus and wraps the result.
func (c *Config) NewElement(v *big.Int) Element {
	reduced := new(big.Int).Mod(v, c.Modulus)
	return Element{c, reduced}
}

// Zero constructs the additive identity of this field.
func (c *Config) Zero() Element {
	return Element{c, big.NewInt(0)}
}

// BigInt returns the canonical (non-negative, reduced) representative of
// this element.
func (e Element) BigInt() *big.Int {
	return new(big.Int).Set(e.val)
}

// IsZero reports whether this element is the additive identity.
func (e Element) IsZero() bool {
	return e.val.Sign() == 0
}

// Add computes x+y reduced modulo the shared field.
func (e Element) Add(o Element) Element {
	return e.cfg.NewElement(new(big.Int).Add(e.val, o.val))
}

// Sub computes x-y reduced modulo the shared field.
func (e Element) Sub(o Element) Element {
	return e.cfg.NewElement(new(big.Int).Sub(e.val, o.val))
}

// Mul computes x*y reduced modulo the shared field.
func (e Element) Mul(o Element) Element {
	return e.cfg.NewElement(new(big.Int).Mul(e.val, o.val))
}

// Neg computes -x reduced modulo the shared field.
func (e Element) Neg() Element {
	return e.cfg.NewElement(new(big.Int).Neg(e.val))
}

// Inverse computes x⁻¹, or 0 if x is zero, matching the standard convention
// used throughout the normalisation pass.
func (e Element) Inverse() Element {
	if e.IsZero() {
		return e.cfg.Zero()
	}

	inv := new(big.Int).ModInverse(e.val, e.cfg.Modulus)

	return Element{e.cfg, inv}
}

// Cmp compares two elements' canonical representatives, consistent with
// their shared field's total order over [0,Modulus).
func (e Element) Cmp(o Element) int {
	return e.val.Cmp(o.val)
}

// String renders the element's canonical decimal representative.
func (e Element) String() string {
	return e.val.String()
}

// GoString renders an element for debugging, including its field's name.
func (e Element) GoString() string {
	return fmt.Sprintf("%s(%s)", e.cfg.Name, e.val.String())
}
