package solver

import (
	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/pattern"
	"github.com/unknot-dev/unknot/internal/compiler/types"
)

// SourceFile pairs a parsed program with the path it came from
type SourceFile struct {
	Path    string
	Program *ast.Program
}

// Batch is a loaded declaration set: the structural form the analysis
// consumes, with no surface syntax left.
type Batch struct {
	Declarations []*Declaration
	Patterns     *pattern.Registry
	Tracked      []string
	Warnings     []*errors.CompilerError
}

// Load converts parsed programs into a batch. Declarations, patterns, and
// track lists keep source order across files. When no track declaration
// exists anywhere in the batch, the tracked set defaults to every
// capability some declaration implements, in first-implementation order.
//
// A qualified Self type head is fatal here; referencing an undeclared
// capability from an impl or pattern is only a warning.
func Load(files []SourceFile) (*Batch, *errors.CompilerError) {
	batch := &Batch{Patterns: pattern.NewRegistry()}

	declared := make(map[string]bool)
	for _, f := range files {
		for _, c := range f.Program.Capabilities() {
			declared[c.Name] = true
		}
	}

	trackedSeen := make(map[string]bool)
	implementedSeen := make(map[string]bool)
	var implemented []string

	for _, f := range files {
		for _, node := range f.Program.Decls {
			switch node := node.(type) {
			case *ast.ImplNode:
				decl, err := loadImpl(f.Path, node)
				if err != nil {
					return nil, err
				}
				if !declared[decl.Capability.Name] {
					batch.Warnings = append(batch.Warnings,
						errors.NewUnknownCapability(node.Loc, decl.Capability.Name).WithFile(f.Path))
				}
				batch.Declarations = append(batch.Declarations, decl)
				if !implementedSeen[decl.Capability.Name] {
					implementedSeen[decl.Capability.Name] = true
					implemented = append(implemented, decl.Capability.Name)
				}

			case *ast.PatternNode:
				p := loadPattern(f.Path, node)
				if !declared[p.Capability.Name] {
					batch.Warnings = append(batch.Warnings,
						errors.NewUnknownCapability(node.Loc, p.Capability.Name).WithFile(f.Path))
				}
				batch.Patterns.Register(p)

			case *ast.TrackNode:
				for _, name := range node.Names {
					if !trackedSeen[name] {
						trackedSeen[name] = true
						batch.Tracked = append(batch.Tracked, name)
					}
				}
			}
		}
	}

	if len(batch.Tracked) == 0 {
		batch.Tracked = implemented
	}

	return batch, nil
}

// loadImpl converts an impl node, rejecting qualified Self type heads
func loadImpl(path string, node *ast.ImplNode) (*Declaration, *errors.CompilerError) {
	decl := &Declaration{
		SelfType:   toTypeExpr(node.SelfType),
		Capability: toCapRef(node.Capability),
		Generics:   toGenerics(node.Generics),
		Where:      toPredicates(node.Where),
		File:       path,
		Loc:        node.Loc,
	}

	if decl.SelfType.Qualified() {
		return nil, errors.NewMalformedSelfType(node.Loc, decl.SelfType.String()).
			WithFile(path).
			WithDeclaration(decl.String())
	}

	return decl, nil
}

// loadPattern converts a pattern node. Generic names become the pattern
// variables; bounds on pattern generics contribute obligation templates
// ahead of the requires list, mirroring extraction order for impls.
func loadPattern(path string, node *ast.PatternNode) *pattern.Pattern {
	variables := make(map[string]bool, len(node.Generics))
	var requires []types.Obligation

	for _, param := range node.Generics {
		variables[param.Name] = true
		paramType := types.NewType(param.Name)
		for _, bound := range param.Bounds {
			requires = append(requires, types.NewObligation(paramType, toCapRef(bound)))
		}
	}
	for _, pred := range node.Requires {
		predType := toTypeExpr(pred.Type)
		for _, bound := range pred.Bounds {
			requires = append(requires, types.NewObligation(predType, toCapRef(bound)))
		}
	}

	return &pattern.Pattern{
		Capability: toCapRef(node.Capability),
		Target:     toTypeExpr(node.Target),
		Variables:  variables,
		Requires:   requires,
		File:       path,
		Loc:        node.Loc,
	}
}

func toTypeExpr(node *ast.TypeExprNode) types.TypeExpr {
	var args []types.TypeExpr
	for _, arg := range node.Args {
		args = append(args, toTypeExpr(arg))
	}
	return types.TypeExpr{Name: node.Name, Args: args}
}

func toCapRef(node *ast.CapRefNode) types.CapabilityRef {
	var args []types.TypeExpr
	for _, arg := range node.Args {
		args = append(args, toTypeExpr(arg))
	}
	return types.CapabilityRef{Name: node.Name, Args: args}
}

func toGenerics(nodes []*ast.GenericParamNode) []GenericParam {
	var params []GenericParam
	for _, node := range nodes {
		param := GenericParam{Name: node.Name}
		for _, bound := range node.Bounds {
			param.Bounds = append(param.Bounds, toCapRef(bound))
		}
		params = append(params, param)
	}
	return params
}

func toPredicates(nodes []*ast.PredicateNode) []Predicate {
	var preds []Predicate
	for _, node := range nodes {
		pred := Predicate{Type: toTypeExpr(node.Type)}
		for _, bound := range node.Bounds {
			pred.Bounds = append(pred.Bounds, toCapRef(bound))
		}
		preds = append(preds, pred)
	}
	return preds
}
