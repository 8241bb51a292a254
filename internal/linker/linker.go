// Package linker runs resolution and flattening over a whole forest.
//
// Modules are linked dependencies first: nested modules before their parent,
// and imported or instantiated modules before the module that names them, so
// every prototype is already instance-free when it is copied. Cycles are cut
// where they are found; the passes themselves report what cannot be resolved.
package linker

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/flattener"
	"github.com/funvibe/speclink/internal/resolver"
	"github.com/funvibe/speclink/internal/symbols"
)

// Result is the outcome of linking a forest.
type Result struct {
	Modules []*ast.Module // Linked top-level modules, in input order
	// Tables holds the linked table of every module that resolved. Modules
	// that failed, or depend on a prototype that did, have no entry.
	Tables symbols.LookupTableByModule
	// Errors lists resolution errors in the order modules were linked.
	Errors []error
}

// Link resolves and flattens modules against the collected tables. Modules
// that fail to resolve, or instantiate a prototype that did, keep their
// instances. Internal failures are returned as err and match
// diagnostics.ErrInternal.
func Link(modules []*ast.Module, tables symbols.LookupTableByModule, logger *log.Logger) (res *Result, err error) {
	defer diagnostics.RecoverInternal(&err)

	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &linker{
		logger:  logger,
		sources: make(map[string]*ast.Module),
		tables:  tables.Clone(),
		linked:  make(map[string]*ast.Module),
		state:   make(map[string]state),
	}
	var index func(m *ast.Module)
	index = func(m *ast.Module) {
		l.sources[m.Name] = m
		for _, d := range m.Declarations {
			if nested, ok := d.(*ast.ModuleDecl); ok {
				index(nested.Module)
			}
		}
	}
	for _, m := range modules {
		index(m)
	}

	out := &Result{Modules: make([]*ast.Module, len(modules))}
	for i, m := range modules {
		l.link(m.Name)
		out.Modules[i] = l.module(m.Name)
	}
	out.Tables = l.tables
	for name, st := range l.state {
		if st == failed {
			delete(out.Tables, name)
		}
	}
	out.Errors = l.errors
	return out, nil
}

type state int

const (
	unvisited state = iota
	visiting
	linked
	failed
)

type linker struct {
	logger  *log.Logger
	sources map[string]*ast.Module // Input modules by name, nested included
	tables  symbols.LookupTableByModule
	linked  map[string]*ast.Module
	state   map[string]state
	errors  []error
}

// module returns the linked form of name, or its input form.
func (l *linker) module(name string) *ast.Module {
	if m, ok := l.linked[name]; ok {
		return m
	}
	return l.sources[name]
}

// link links the module called name and reports whether it is usable as a
// prototype.
func (l *linker) link(name string) bool {
	switch l.state[name] {
	case linked:
		return true
	case failed:
		return false
	case visiting:
		l.logger.Warn("dependency cycle", "module", name)
		return true
	}
	src, ok := l.sources[name]
	if !ok {
		// Not part of the forest; the resolver reports it.
		return true
	}
	l.state[name] = visiting

	ok = l.linkDependencies(src)
	m := l.withLinkedNested(src)
	if ok {
		ok = l.resolveAndFlatten(m)
	} else {
		l.logger.Debug("skipping module with failed dependency", "module", name)
	}

	if ok {
		l.state[name] = linked
	} else {
		l.state[name] = failed
	}
	return ok
}

func (l *linker) linkDependencies(m *ast.Module) bool {
	ok := true
	for _, d := range m.Declarations {
		switch d := d.(type) {
		case *ast.ModuleDecl:
			// A failed nested module only loses its own instances.
			l.link(d.Module.Name)
		case *ast.Import:
			l.link(d.ModuleName)
		case *ast.Instance:
			if !l.link(d.ProtoName) {
				ok = false
			}
		}
	}
	return ok
}

// withLinkedNested replaces nested modules of m by their linked form and
// re-exports their names into m's table.
func (l *linker) withLinkedNested(m *ast.Module) *ast.Module {
	out := &ast.Module{ID: m.ID, Name: m.Name, Declarations: make([]ast.Declaration, len(m.Declarations))}
	table := l.tables[m.Name]
	for i, d := range m.Declarations {
		nested, ok := d.(*ast.ModuleDecl)
		if !ok {
			out.Declarations[i] = d
			continue
		}
		inner := l.module(nested.Module.Name)
		out.Declarations[i] = &ast.ModuleDecl{Module: inner}
		if table != nil && l.state[inner.Name] == linked {
			symbols.ExportNested(table, inner.Name, inner.ID, l.tables[inner.Name])
		}
	}
	l.linked[m.Name] = out
	return out
}

func (l *linker) resolveAndFlatten(m *ast.Module) bool {
	resolved, err := resolver.Resolve(m, l.tables)
	if err != nil {
		l.logger.Debug("resolution failed", "module", m.Name, "err", err)
		l.errors = append(l.errors, err)
		return false
	}

	// Every module goes in: copies may reach definitions a prototype
	// imported, and fresh ids must not collide with any module's ids.
	others := make(map[string]*ast.Module, len(l.sources))
	for name := range l.sources {
		if name != m.Name {
			others[name] = l.module(name)
		}
	}

	flat, table := flattener.Flatten(m, resolved[m.Name], others, resolved)
	resolved[m.Name] = table
	l.tables = resolved
	l.linked[m.Name] = flat
	l.logger.Debug("linked module", "module", m.Name, "declarations", len(flat.Declarations))
	return true
}
