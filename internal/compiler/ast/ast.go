// Package ast defines the Abstract Syntax Tree (AST) node types for the knot
// declaration language: capabilities, implementations, patterns, and track
// directives, plus the type expressions and predicates they contain.
package ast

import "strings"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Decl is the interface for top-level declarations
type Decl interface {
	Node
	decl()
}

// Program is the root node of the AST. Decls preserves source order across
// declaration kinds so emission can reproduce the file layout.
type Program struct {
	Decls []Decl
}

func (p *Program) node() {}

// Location returns the source location of the program node in the AST.
func (p *Program) Location() SourceLocation {
	if len(p.Decls) > 0 {
		return p.Decls[0].Location()
	}
	return SourceLocation{Line: 1, Column: 1}
}

// Capabilities returns the capability declarations in source order.
func (p *Program) Capabilities() []*CapabilityNode {
	var out []*CapabilityNode
	for _, d := range p.Decls {
		if c, ok := d.(*CapabilityNode); ok {
			out = append(out, c)
		}
	}
	return out
}

// Impls returns the impl declarations in source order.
func (p *Program) Impls() []*ImplNode {
	var out []*ImplNode
	for _, d := range p.Decls {
		if i, ok := d.(*ImplNode); ok {
			out = append(out, i)
		}
	}
	return out
}

// Patterns returns the pattern declarations in source order.
func (p *Program) Patterns() []*PatternNode {
	var out []*PatternNode
	for _, d := range p.Decls {
		if pt, ok := d.(*PatternNode); ok {
			out = append(out, pt)
		}
	}
	return out
}

// Tracks returns the track directives in source order.
func (p *Program) Tracks() []*TrackNode {
	var out []*TrackNode
	for _, d := range p.Decls {
		if t, ok := d.(*TrackNode); ok {
			out = append(out, t)
		}
	}
	return out
}

// CapabilityNode declares a capability name with optional parameters:
// capability Convert<Target>
type CapabilityNode struct {
	Name   string
	Params []string
	Loc    SourceLocation
}

func (c *CapabilityNode) node() {}
func (c *CapabilityNode) decl() {}

// Location returns the source location of the capability declaration.
func (c *CapabilityNode) Location() SourceLocation {
	return c.Loc
}

// ImplNode declares that a type implements a capability, with generic
// parameters and a where clause of preconditions:
// impl<T: Clone> Evaluate for List<T> where T: Evaluate
type ImplNode struct {
	Generics   []*GenericParamNode
	Capability *CapRefNode
	SelfType   *TypeExprNode
	Where      []*PredicateNode
	Loc        SourceLocation
}

func (i *ImplNode) node() {}
func (i *ImplNode) decl() {}

// Location returns the source location of the impl declaration.
func (i *ImplNode) Location() SourceLocation {
	return i.Loc
}

// PatternNode declares a rewrite pattern for a capability: when an
// obligation's type matches Target (generics bind as variables), it expands
// into the Requires obligations:
// pattern<A, B> Evaluate for Pair<A, B> requires A: Evaluate, B: Evaluate
type PatternNode struct {
	Generics   []*GenericParamNode
	Capability *CapRefNode
	Target     *TypeExprNode
	Requires   []*PredicateNode
	Loc        SourceLocation
}

func (p *PatternNode) node() {}
func (p *PatternNode) decl() {}

// Location returns the source location of the pattern declaration.
func (p *PatternNode) Location() SourceLocation {
	return p.Loc
}

// TrackNode designates capabilities for cycle analysis:
// track Evaluate, Convert
type TrackNode struct {
	Names []string
	Loc   SourceLocation
}

func (t *TrackNode) node() {}
func (t *TrackNode) decl() {}

// Location returns the source location of the track directive.
func (t *TrackNode) Location() SourceLocation {
	return t.Loc
}

// GenericParamNode is a generic parameter with optional bounds: T: A + B
type GenericParamNode struct {
	Name   string
	Bounds []*CapRefNode
	Loc    SourceLocation
}

func (g *GenericParamNode) node() {}

// Location returns the source location of the generic parameter.
func (g *GenericParamNode) Location() SourceLocation {
	return g.Loc
}

// PredicateNode is a where/requires entry: a type expression with one or
// more capability bounds (Pair<A, B>: Evaluate + Clone).
type PredicateNode struct {
	Type   *TypeExprNode
	Bounds []*CapRefNode
	Loc    SourceLocation
}

func (p *PredicateNode) node() {}

// Location returns the source location of the predicate.
func (p *PredicateNode) Location() SourceLocation {
	return p.Loc
}

// TypeExprNode is a type expression: a possibly qualified head name plus
// ordered generic arguments (collections.Vec<T>).
type TypeExprNode struct {
	Name string // qualified segments joined by "."
	Args []*TypeExprNode
	Loc  SourceLocation
}

func (t *TypeExprNode) node() {}

// Location returns the source location of the type expression.
func (t *TypeExprNode) Location() SourceLocation {
	return t.Loc
}

// String renders the type expression in source syntax: Name<A, B>.
func (t *TypeExprNode) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// CapRefNode is a capability reference with optional generic arguments:
// Convert<Target>
type CapRefNode struct {
	Name string
	Args []*TypeExprNode
	Loc  SourceLocation
}

func (c *CapRefNode) node() {}

// Location returns the source location of the capability reference.
func (c *CapRefNode) Location() SourceLocation {
	return c.Loc
}

// String renders the capability reference in source syntax: Convert<Target>.
func (c *CapRefNode) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "<" + strings.Join(args, ", ") + ">"
}
