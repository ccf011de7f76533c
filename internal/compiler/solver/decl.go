// Package solver implements obligation cycle analysis: it extracts
// constraint graphs from declarations, expands tracked obligations to a
// fixpoint through the pattern registry, and rewrites precondition lists so
// that cyclic obligations are removed and their non-cyclic leaves retained.
package solver

import (
	"fmt"
	"strings"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/pattern"
	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// GenericParam is a declaration generic parameter with its bounds
type GenericParam struct {
	Name   string
	Bounds []types.CapabilityRef
}

// String renders the parameter with its bounds, e.g. "T: Clone + Evaluate"
func (p GenericParam) String() string {
	if len(p.Bounds) == 0 {
		return p.Name
	}
	return p.Name + ": " + joinBounds(p.Bounds)
}

// Predicate is one where-clause entry: a type expression and its bounds
type Predicate struct {
	Type   types.TypeExpr
	Bounds []types.CapabilityRef
}

// String renders the predicate, e.g. "Pair<T, T>: Evaluate"
func (p Predicate) String() string {
	return p.Type.String() + ": " + joinBounds(p.Bounds)
}

func joinBounds(bounds []types.CapabilityRef) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = b.String()
	}
	return strings.Join(parts, " + ")
}

// Declaration is one impl declaration in core form: everything the analysis
// needs, already structurally normalized.
type Declaration struct {
	SelfType   types.TypeExpr
	Capability types.CapabilityRef
	Generics   []GenericParam
	Where      []Predicate

	// Provenance for diagnostics
	File string
	Loc  ast.SourceLocation
}

// String returns the declaration's display identity, used in diagnostics
func (d *Declaration) String() string {
	var sb strings.Builder
	sb.WriteString("impl")
	if len(d.Generics) > 0 {
		sb.WriteString("<")
		for i, p := range d.Generics {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Name)
		}
		sb.WriteString(">")
	}
	fmt.Fprintf(&sb, " %s for %s", d.Capability.String(), d.SelfType.String())
	return sb.String()
}

// RootObligation returns the declaration's own obligation: Self type paired
// with the implemented capability
func (d *Declaration) RootObligation() types.Obligation {
	return types.NewObligation(d.SelfType, d.Capability)
}

// Obligations returns the declaration's atomic preconditions in extraction
// order: generic-parameter bounds first, then where-clause predicates, with
// compound bounds split into one obligation per capability.
func (d *Declaration) Obligations() []types.Obligation {
	var obs []types.Obligation
	for _, param := range d.Generics {
		paramType := types.NewType(param.Name)
		for _, bound := range param.Bounds {
			obs = append(obs, types.NewObligation(paramType, bound))
		}
	}
	for _, pred := range d.Where {
		for _, bound := range pred.Bounds {
			obs = append(obs, types.NewObligation(pred.Type, bound))
		}
	}
	return obs
}

// variables returns the set of generic parameter names. During direct
// reference resolution these play the same role as pattern variables.
func (d *Declaration) variables() map[string]bool {
	set := make(map[string]bool, len(d.Generics))
	for _, param := range d.Generics {
		set[param.Name] = true
	}
	return set
}

// asPattern views the declaration as a pattern: Self type as the shape,
// generic parameters as variables, and the declaration's own atomic
// preconditions as the derived obligation templates. Direct reference
// resolution is pattern matching against this view.
func (d *Declaration) asPattern() *pattern.Pattern {
	return &pattern.Pattern{
		Capability: d.Capability,
		Target:     d.SelfType,
		Variables:  d.variables(),
		Requires:   d.Obligations(),
		File:       d.File,
		Loc:        d.Loc,
	}
}
