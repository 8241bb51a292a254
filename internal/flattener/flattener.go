// Package flattener removes instance declarations from a module by emitting
// namespaced copies of the prototype's definitions.
//
// For `module N = M(p = e)` the flattener emits `N::p = e` for each override
// and a copy `N::x` of every other module-level definition x of M, in which
// references to M's definitions are rewritten to their N:: form. Builtins and
// lambda parameters keep their names. Every synthesized node gets a fresh id.
// Module-level definitions that the copies refer to but M never imported are
// copied under N:: as well.
//
// Instances must be flattened bottom-up: a prototype that still contains an
// instance aborts the run with a *diagnostics.InternalError panic, as does a
// reference without a table entry. Both mean an earlier pass was skipped.
package flattener

import (
	"sort"
	"strings"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/collector"
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/idgen"
	"github.com/funvibe/speclink/internal/symbols"
	"github.com/funvibe/speclink/internal/utils"
)

// Flatten returns m with every top-level instance replaced by the
// declarations it stands for, together with a table describing the result.
//
// table is m's resolved table; modules and tables hold every module that may
// serve as a prototype (already flattened) and their tables. Inputs are never
// modified. A module without instances is returned as is.
func Flatten(
	m *ast.Module, table symbols.LookupTable, modules map[string]*ast.Module, tables symbols.LookupTableByModule,
) (*ast.Module, symbols.LookupTable) {
	if !ast.ContainsInstance(m) {
		return m, table
	}

	all := make([]*ast.Module, 0, len(modules)+1)
	all = append(all, m)
	for _, name := range sortedModuleNames(modules) {
		all = append(all, modules[name])
	}

	f := &flattener{
		gen:     idgen.New(all...),
		modules: modules,
		tables:  tables,
		index:   indexDeclarations(all),
	}

	out := &ast.Module{ID: m.ID, Name: m.Name, Declarations: make([]ast.Declaration, 0, len(m.Declarations))}
	var synthesized []ast.Declaration
	for _, d := range m.Declarations {
		inst, ok := d.(*ast.Instance)
		if !ok {
			out.Declarations = append(out.Declarations, d)
			continue
		}
		decls := f.flattenInstance(inst)
		out.Declarations = append(out.Declarations, decls...)
		synthesized = append(synthesized, decls...)
	}

	// The resolver's N:: entries point into the prototype; replace them with
	// entries for the synthesized declarations.
	flatTable := table.Clone()
	for _, d := range synthesized {
		delete(flatTable, d.DeclName())
	}
	collector.CollectDeclarations(flatTable, synthesized)

	return out, flatTable
}

type flattener struct {
	gen     *idgen.Generator
	modules map[string]*ast.Module
	tables  symbols.LookupTableByModule
	index   map[uint64]site
}

// site is where a declaration lives.
type site struct {
	decl   ast.Declaration
	module string
}

func indexDeclarations(modules []*ast.Module) map[uint64]site {
	index := make(map[uint64]site)
	var walk func(m *ast.Module)
	walk = func(m *ast.Module) {
		for _, d := range m.Declarations {
			if nested, ok := d.(*ast.ModuleDecl); ok {
				walk(nested.Module)
				continue
			}
			index[d.NodeID()] = site{decl: d, module: m.Name}
		}
	}
	for _, m := range modules {
		walk(m)
	}
	return index
}

// entry is one definition that an instance needs a copy of. name is
// relative to the instance namespace.
type entry struct {
	entryKey
	ref uint64
}

// entryKey separates value and type definitions sharing a name.
type entryKey struct {
	name   string
	isType bool
}

func (f *flattener) flattenInstance(inst *ast.Instance) []ast.Declaration {
	proto, ok := f.modules[inst.ProtoName]
	if !ok {
		diagnostics.Abort(diagnostics.ErrI003, inst.ID, "instance %s: prototype module %s not supplied", inst.Name, inst.ProtoName)
	}
	if ast.HasInstances(proto) {
		diagnostics.Abort(diagnostics.ErrI002, inst.ID,
			"instance %s: prototype %s still contains instances; flatten it first", inst.Name, inst.ProtoName)
	}
	protoTable, ok := f.tables[inst.ProtoName]
	if !ok {
		diagnostics.Abort(diagnostics.ErrI003, inst.ID, "instance %s: no table for prototype %s", inst.Name, inst.ProtoName)
	}

	var decls []ast.Declaration
	overridden := make(map[string]bool, len(inst.Overrides))
	emitted := make(map[entryKey]uint64)
	for _, o := range inst.Overrides {
		constDef, ok := protoTable.ConstEntry(o.Param)
		if !ok {
			diagnostics.Abort(diagnostics.ErrI001, o.ID, "instance %s: %s is not a constant of %s", inst.Name, o.Param, inst.ProtoName)
		}
		overridden[o.Param] = true
		emitted[entryKey{name: o.Param}] = constDef.Reference

		// The override expression belongs to the instantiating module, so
		// only its type (taken from the prototype) is namespaced.
		c := f.copier(protoTable, inst.Name, inst.Name, false)
		decls = append(decls, &ast.OpDef{
			ID:             f.gen.Next(),
			Name:           utils.Qualify(inst.Name, o.Param),
			Qualifier:      ast.QualifierPureVal,
			Expr:           c.expr(o.Expr),
			TypeAnnotation: c.typ(constDef.TypeAnnotation),
		})
	}

	queue := copyEntries(protoTable, overridden)
	for _, e := range queue {
		emitted[e.entryKey] = e.ref
	}
	// Definitions imported into the prototype may refer to siblings the
	// prototype never imported. Those are copied under the same namespace
	// so that the instance stays self-contained.
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		s, ok := f.index[e.ref]
		if !ok {
			diagnostics.Abort(diagnostics.ErrI001, e.ref, "instance %s: no declaration for %s", inst.Name, e.name)
		}
		declTable, ok := f.tables[s.module]
		if !ok {
			diagnostics.Abort(diagnostics.ErrI001, e.ref, "instance %s: no table for module %s", inst.Name, s.module)
		}
		namespace := inst.Name
		if prefix := strings.TrimSuffix(e.name, s.decl.DeclName()); strings.HasSuffix(prefix, utils.NamespaceSeparator) {
			namespace = utils.Qualify(inst.Name, strings.TrimSuffix(prefix, utils.NamespaceSeparator))
		}
		var deps []entry
		c := f.copier(declTable, inst.Name, namespace, true)
		c.deps = &deps
		decls = append(decls, c.declaration(s.decl, utils.Qualify(inst.Name, e.name)))

		for _, dep := range deps {
			ref, seen := emitted[dep.entryKey]
			if !seen {
				emitted[dep.entryKey] = dep.ref
				queue = append(queue, dep)
				continue
			}
			if ref != dep.ref {
				diagnostics.Abort(diagnostics.ErrI001, dep.ref,
					"instance %s: %s of module %s is shadowed by another definition of %s",
					inst.Name, dep.name, f.index[dep.ref].module, inst.ProtoName)
			}
		}
	}
	return decls
}

// copyEntries lists the module-level definitions of a prototype table that an
// instance materializes, ordered by the id of their declaration.
func copyEntries(table symbols.LookupTable, overridden map[string]bool) []entry {
	var entries []entry
	for _, name := range table.Names() {
		if overridden[name] {
			continue
		}
		cell := table[name]
		if v, ok := cell.ResolveValue(nil); ok && !v.IsBuiltin() && v.Kind != symbols.KindModule && v.Kind != symbols.KindParam {
			entries = append(entries, entry{entryKey: entryKey{name: name}, ref: v.Reference})
		}
		if t, ok := cell.ResolveType(); ok {
			entries = append(entries, entry{entryKey: entryKey{name: name, isType: true}, ref: t.Reference})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ref < entries[j].ref })
	return entries
}

func sortedModuleNames(modules map[string]*ast.Module) []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
