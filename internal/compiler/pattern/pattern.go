// Package pattern implements the pattern registry and the structural
// matching that resolves obligations against declared patterns. A pattern
// pairs a type shape containing free variables with obligation templates;
// matching an obligation binds the variables and instantiates the templates
// into derived obligations.
package pattern

import (
	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// Pattern is one declared pattern: a capability head and a type shape, both
// of which may mention the pattern's variables, plus the obligation
// templates instantiated on a successful match.
type Pattern struct {
	Capability types.CapabilityRef
	Target     types.TypeExpr
	Variables  map[string]bool
	Requires   []types.Obligation

	// Provenance for diagnostics
	File string
	Loc  ast.SourceLocation
}

// Match unifies the pattern against an obligation. Both the capability
// arguments and the target type must unify under a single binding. Returns
// the binding and whether the pattern matched.
func (p *Pattern) Match(target types.Obligation) (Substitution, bool) {
	if p.Capability.Name != target.Capability.Name {
		return nil, false
	}
	if len(p.Capability.Args) != len(target.Capability.Args) {
		return nil, false
	}

	binding := Substitution{}
	for i := range p.Capability.Args {
		if !unify(p.Capability.Args[i], target.Capability.Args[i], p.Variables, binding) {
			return nil, false
		}
	}
	if !unify(p.Target, target.Type, p.Variables, binding) {
		return nil, false
	}
	return binding, true
}

// Instantiate applies a binding to the pattern's obligation templates,
// preserving template order
func (p *Pattern) Instantiate(binding Substitution) []types.Obligation {
	derived := make([]types.Obligation, len(p.Requires))
	for i, template := range p.Requires {
		derived[i] = types.Obligation{
			Type:       apply(template.Type, binding),
			Capability: applyCapability(template.Capability, binding),
		}
	}
	return derived
}

// Registry holds declared patterns bucketed by capability name. Within a
// capability, patterns keep registration order; the first match wins.
type Registry struct {
	byCapability map[string][]*Pattern
	count        int
}

// NewRegistry creates an empty pattern registry
func NewRegistry() *Registry {
	return &Registry{byCapability: make(map[string][]*Pattern)}
}

// Register appends a pattern to its capability's bucket
func (r *Registry) Register(p *Pattern) {
	name := p.Capability.Name
	r.byCapability[name] = append(r.byCapability[name], p)
	r.count++
}

// Resolve tries the target capability's patterns in registration order and
// returns the first that matches, along with its variable binding. Returns
// nil when no pattern matches; the caller decides whether that falls back
// to a direct declaration reference or is an error.
func (r *Registry) Resolve(target types.Obligation) (*Pattern, Substitution) {
	for _, p := range r.byCapability[target.Capability.Name] {
		if binding, ok := p.Match(target); ok {
			return p, binding
		}
	}
	return nil, nil
}

// Len returns the number of registered patterns
func (r *Registry) Len() int {
	return r.count
}
