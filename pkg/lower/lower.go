package lower

import "github.com/airlang/corset/pkg/schema"

// Lower runs the normalisation/inverse pass followed by if-expansion over
// cs, in the order required: if-expansion's own inverse lookups
// must see whatever columns the normalisation pass already introduced.
// It then assigns every column its own register, numbered in module order
// and, within a module, in declaration order.
func Lower(cs *schema.ConstraintSet) error {
	if err := Normalize(cs); err != nil {
		return err
	}

	if err := ExpandIfs(cs); err != nil {
		return err
	}

	var next uint

	for _, module := range cs.Store.Modules() {
		for _, h := range cs.Store.IterModule(module) {
			cs.Store.SetRegister(h, schema.NewRegisterId(next))
			next++
		}
	}

	return nil
}
