package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// Substitution maps pattern variable names to the type expressions they
// were bound to during matching.
type Substitution map[string]types.TypeExpr

// String renders bindings sorted by variable name for stable output
func (s Substitution) String() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("{")
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", name, s[name].String())
	}
	sb.WriteString("}")
	return sb.String()
}

// unify matches shape against a ground target type, binding variables as it
// goes. Matching is one-way: variables occur only on the shape side. A name
// counts as a variable occurrence only when it is bare; a variable name
// applied to arguments is matched nominally like any other constructor.
func unify(shape types.TypeExpr, target types.TypeExpr, vars map[string]bool, binding Substitution) bool {
	if vars[shape.Name] && len(shape.Args) == 0 {
		if bound, ok := binding[shape.Name]; ok {
			// A variable may appear more than once; every occurrence
			// must bind to the same expression.
			return bound.Equals(target)
		}
		binding[shape.Name] = target
		return true
	}

	if shape.Name != target.Name || len(shape.Args) != len(target.Args) {
		return false
	}
	for i := range shape.Args {
		if !unify(shape.Args[i], target.Args[i], vars, binding) {
			return false
		}
	}
	return true
}

// apply substitutes bound variables in t, leaving unbound names untouched
func apply(t types.TypeExpr, binding Substitution) types.TypeExpr {
	if bound, ok := binding[t.Name]; ok && len(t.Args) == 0 {
		return bound
	}

	if len(t.Args) == 0 {
		return t
	}
	args := make([]types.TypeExpr, len(t.Args))
	for i, arg := range t.Args {
		args[i] = apply(arg, binding)
	}
	return types.TypeExpr{Name: t.Name, Args: args}
}

// applyCapability substitutes bound variables in a capability's arguments.
// Capability names themselves are never variables.
func applyCapability(c types.CapabilityRef, binding Substitution) types.CapabilityRef {
	if len(c.Args) == 0 {
		return c
	}
	args := make([]types.TypeExpr, len(c.Args))
	for i, arg := range c.Args {
		args[i] = apply(arg, binding)
	}
	return types.CapabilityRef{Name: c.Name, Args: args}
}
