package modules

import (
	"sort"

	"github.com/funvibe/speclink/internal/ast"
)

// Forest is a set of top-level modules read from one or more forest
// documents. Node ids are unique across the whole forest.
type Forest struct {
	Files   []string      // Documents the forest was read from, in load order
	Modules []*ast.Module // Top-level modules in document order
	Sources ast.SourceMap // Node id -> position in its document
}

// Module returns the top-level module called name.
func (f *Forest) Module(name string) (*ast.Module, bool) {
	for _, m := range f.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Names returns the names of all modules of the forest, nested ones
// included, sorted.
func (f *Forest) Names() []string {
	var names []string
	var walk func(m *ast.Module)
	walk = func(m *ast.Module) {
		names = append(names, m.Name)
		for _, d := range m.Declarations {
			if nested, ok := d.(*ast.ModuleDecl); ok {
				walk(nested.Module)
			}
		}
	}
	for _, m := range f.Modules {
		walk(m)
	}
	sort.Strings(names)
	return names
}

// MaxID returns the largest node id in the forest.
func (f *Forest) MaxID() uint64 {
	return ast.MaxID(f.Modules...)
}
