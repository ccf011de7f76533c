// Package emit serializes analyzed declaration batches back to knot source
// text. Capability, pattern, and track declarations are reproduced from the
// AST; impl declarations are printed from their rewritten records, so the
// output reflects any cycle breaking the solver performed. Output is
// normalized to one declaration per line and is stable across runs.
package emit

import (
	"fmt"
	"strings"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/solver"
)

// Sources renders every file in a batch and returns the text keyed by file
// path. decls holds the rewritten impl records in batch order, which matches
// the files' impl declarations concatenated in file order.
func Sources(files []*solver.SourceFile, decls []*solver.Declaration) (map[string]string, error) {
	out := make(map[string]string, len(files))
	next := 0
	for _, f := range files {
		impls := f.Program.Impls()
		end := next + len(impls)
		if end > len(decls) {
			return nil, fmt.Errorf("emit: batch has %d rewritten impls, %s needs %d more", len(decls), f.Path, end-len(decls))
		}
		text, err := File(f.Program, decls[next:end])
		if err != nil {
			return nil, fmt.Errorf("emit %s: %w", f.Path, err)
		}
		out[f.Path] = text
		next = end
	}
	if next != len(decls) {
		return nil, fmt.Errorf("emit: %d rewritten impls left over after all files", len(decls)-next)
	}
	return out, nil
}

// File renders one parsed source file back to knot text. Declarations keep
// their original order; each impl declaration is replaced by the
// corresponding entry of impls, which must hold the file's rewritten impl
// records in source order.
func File(program *ast.Program, impls []*solver.Declaration) (string, error) {
	if got, want := len(impls), len(program.Impls()); got != want {
		return "", fmt.Errorf("%d rewritten records for %d impl declarations", got, want)
	}
	var b strings.Builder
	next := 0
	for _, decl := range program.Decls {
		switch d := decl.(type) {
		case *ast.CapabilityNode:
			b.WriteString(Capability(d))
		case *ast.ImplNode:
			b.WriteString(Impl(impls[next]))
			next++
		case *ast.PatternNode:
			b.WriteString(Pattern(d))
		case *ast.TrackNode:
			b.WriteString(Track(d))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Capability renders a capability declaration.
func Capability(c *ast.CapabilityNode) string {
	if len(c.Params) == 0 {
		return "capability " + c.Name
	}
	return "capability " + c.Name + "<" + strings.Join(c.Params, ", ") + ">"
}

// Track renders a track directive.
func Track(t *ast.TrackNode) string {
	return "track " + strings.Join(t.Names, ", ")
}

// Pattern renders a pattern declaration from its AST node. Patterns are
// never rewritten by analysis, so the node is the source of truth.
func Pattern(p *ast.PatternNode) string {
	var b strings.Builder
	b.WriteString("pattern")
	writeGenericNodes(&b, p.Generics)
	b.WriteByte(' ')
	b.WriteString(p.Capability.String())
	b.WriteString(" for ")
	b.WriteString(p.Target.String())
	if len(p.Requires) > 0 {
		b.WriteString(" requires ")
		for i, req := range p.Requires {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(predicateNode(req))
		}
	}
	return b.String()
}

// Impl renders a rewritten impl declaration. An impl whose where clause was
// emptied by cycle breaking prints without the where keyword.
func Impl(d *solver.Declaration) string {
	var b strings.Builder
	b.WriteString("impl")
	if len(d.Generics) > 0 {
		b.WriteByte('<')
		for i, g := range d.Generics {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(g.String())
		}
		b.WriteByte('>')
	}
	b.WriteByte(' ')
	b.WriteString(d.Capability.String())
	b.WriteString(" for ")
	b.WriteString(d.SelfType.String())
	if len(d.Where) > 0 {
		b.WriteString(" where ")
		for i, p := range d.Where {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
	}
	return b.String()
}

func writeGenericNodes(b *strings.Builder, params []*ast.GenericParamNode) {
	if len(params) == 0 {
		return
	}
	b.WriteByte('<')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if len(p.Bounds) > 0 {
			b.WriteString(": ")
			b.WriteString(joinCapRefNodes(p.Bounds))
		}
	}
	b.WriteByte('>')
}

func predicateNode(p *ast.PredicateNode) string {
	return p.Type.String() + ": " + joinCapRefNodes(p.Bounds)
}

func joinCapRefNodes(refs []*ast.CapRefNode) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " + ")
}
