// Package types defines the structural values the analyzer operates on:
// type expressions, capability references, and obligations. Values are
// immutable once built; equality is structural, which by construction is
// the same as comparing printed forms.
package types

import "strings"

// TypeExpr is a structural type expression: a head name (possibly
// qualified, e.g. "collections.Vec") plus ordered generic arguments.
type TypeExpr struct {
	Name string
	Args []TypeExpr
}

// NewType creates a type expression from a head name and arguments.
func NewType(name string, args ...TypeExpr) TypeExpr {
	return TypeExpr{Name: name, Args: args}
}

func (t TypeExpr) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteByte('<')
	for i, arg := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// Qualified reports whether the head name is a qualified path ("a.B")
// rather than a single identifier.
func (t TypeExpr) Qualified() bool {
	return strings.Contains(t.Name, ".")
}

// Equals checks if two type expressions are structurally identical.
func (t TypeExpr) Equals(other TypeExpr) bool {
	if t.Name != other.Name || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}

// CapabilityRef names a capability plus ordered generic arguments.
type CapabilityRef struct {
	Name string
	Args []TypeExpr
}

// NewCapability creates a capability reference from a name and arguments.
func NewCapability(name string, args ...TypeExpr) CapabilityRef {
	return CapabilityRef{Name: name, Args: args}
}

func (c CapabilityRef) String() string {
	// Same printed shape as a type expression.
	return TypeExpr{Name: c.Name, Args: c.Args}.String()
}

// Equals checks if two capability references are structurally identical.
func (c CapabilityRef) Equals(other CapabilityRef) bool {
	if c.Name != other.Name || len(c.Args) != len(other.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}

// Obligation is the atomic analysis unit: a type expression asserted to
// satisfy a capability. Obligations are pure values with no identity
// beyond structural equality.
type Obligation struct {
	Type       TypeExpr
	Capability CapabilityRef
}

// NewObligation creates an obligation from a type and a capability.
func NewObligation(t TypeExpr, c CapabilityRef) Obligation {
	return Obligation{Type: t, Capability: c}
}

func (o Obligation) String() string {
	return o.Type.String() + ": " + o.Capability.String()
}

// Equals checks if two obligations are structurally identical.
func (o Obligation) Equals(other Obligation) bool {
	return o.Type.Equals(other.Type) && o.Capability.Equals(other.Capability)
}

// Key returns the canonical map key for an obligation. Printing is
// injective over the structural form, so key equality is structural
// equality.
func (o Obligation) Key() string {
	return o.String()
}
