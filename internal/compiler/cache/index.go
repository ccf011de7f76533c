package cache

import (
	"sort"
	"sync"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// fileRefs records the capability names one file declares and references.
type fileRefs struct {
	declares   map[string]bool
	references map[string]bool
}

// CapabilityIndex cross-references capability names with the files that
// declare and reference them. Declarations resolve against the whole batch,
// so the index does not order parsing; watch mode uses it to report which
// files a change can affect.
type CapabilityIndex struct {
	files map[string]*fileRefs
	mu    sync.RWMutex
}

// NewCapabilityIndex creates an empty index.
func NewCapabilityIndex() *CapabilityIndex {
	return &CapabilityIndex{
		files: make(map[string]*fileRefs),
	}
}

// Update replaces the index entry for path with the names found in program.
func (ix *CapabilityIndex) Update(path string, program *ast.Program) {
	refs := collectRefs(program)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.files[path] = refs
}

// Remove drops the index entry for path.
func (ix *CapabilityIndex) Remove(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.files, path)
}

// DeclaredIn returns the files declaring the capability name, sorted.
func (ix *CapabilityIndex) DeclaredIn(name string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var paths []string
	for path, refs := range ix.files {
		if refs.declares[name] {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// ReferencedIn returns the files referencing the capability name in an impl,
// pattern, or track declaration, sorted.
func (ix *CapabilityIndex) ReferencedIn(name string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var paths []string
	for path, refs := range ix.files {
		if refs.references[name] {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Capabilities returns every declared capability name, sorted.
func (ix *CapabilityIndex) Capabilities() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, refs := range ix.files {
		for name := range refs.declares {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Related returns the other files that declare or reference any capability
// name the given file mentions, sorted. This is the set a change to path
// can affect.
func (ix *CapabilityIndex) Related(path string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	own, exists := ix.files[path]
	if !exists {
		return nil
	}

	names := make(map[string]bool)
	for name := range own.declares {
		names[name] = true
	}
	for name := range own.references {
		names[name] = true
	}

	var related []string
	for other, refs := range ix.files {
		if other == path {
			continue
		}
		if mentionsAny(refs, names) {
			related = append(related, other)
		}
	}
	sort.Strings(related)
	return related
}

// Size returns the number of indexed files.
func (ix *CapabilityIndex) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.files)
}

// Clear removes all entries from the index.
func (ix *CapabilityIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.files = make(map[string]*fileRefs)
}

func mentionsAny(refs *fileRefs, names map[string]bool) bool {
	for name := range refs.declares {
		if names[name] {
			return true
		}
	}
	for name := range refs.references {
		if names[name] {
			return true
		}
	}
	return false
}

// collectRefs walks a program and gathers the capability names it declares
// and references. Generic arguments are types, so only the head name of a
// capability reference counts.
func collectRefs(program *ast.Program) *fileRefs {
	refs := &fileRefs{
		declares:   make(map[string]bool),
		references: make(map[string]bool),
	}

	addBounds := func(bounds []*ast.CapRefNode) {
		for _, b := range bounds {
			refs.references[b.Name] = true
		}
	}

	for _, decl := range program.Decls {
		switch d := decl.(type) {
		case *ast.CapabilityNode:
			refs.declares[d.Name] = true
		case *ast.ImplNode:
			refs.references[d.Capability.Name] = true
			for _, g := range d.Generics {
				addBounds(g.Bounds)
			}
			for _, w := range d.Where {
				addBounds(w.Bounds)
			}
		case *ast.PatternNode:
			refs.references[d.Capability.Name] = true
			for _, g := range d.Generics {
				addBounds(g.Bounds)
			}
			for _, r := range d.Requires {
				addBounds(r.Bounds)
			}
		case *ast.TrackNode:
			for _, name := range d.Names {
				refs.references[name] = true
			}
		}
	}

	return refs
}
