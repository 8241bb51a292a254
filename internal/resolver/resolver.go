// Package resolver merges into a module's lookup table every name that its
// imports and instances make visible.
package resolver

import (
	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/symbols"
	"github.com/funvibe/speclink/internal/utils"
)

// Resolve processes the imports and instances of m against tables and returns
// a copy of tables in which m's table has been extended.
//
// Declarations are handled independently and every unresolved reference is
// reported. When any is found the returned error is a
// diagnostics.ResolutionErrors and no table is returned.
// The input tables are never modified.
func Resolve(m *ast.Module, tables symbols.LookupTableByModule) (symbols.LookupTableByModule, error) {
	result := tables.Clone()
	table, ok := result[m.Name]
	if !ok {
		table = symbols.NewLookupTable()
		result[m.Name] = table
	}

	r := &resolution{module: m.Name, sources: tables, table: table}
	for _, d := range m.Declarations {
		switch d := d.(type) {
		case *ast.Import:
			r.resolveImport(d)
		case *ast.Instance:
			r.resolveInstance(d)
		}
	}

	if len(r.errors) > 0 {
		return nil, r.errors
	}
	return result, nil
}

type resolution struct {
	module  string
	sources symbols.LookupTableByModule
	table   symbols.LookupTable
	errors  diagnostics.ResolutionErrors
}

func (r *resolution) source(name string, ref uint64) (symbols.LookupTable, bool) {
	src, ok := r.sources[name]
	if !ok {
		r.errors = append(r.errors, diagnostics.NewUnresolvedModule(r.module, name, ref))
	}
	return src, ok
}

func (r *resolution) resolveImport(d *ast.Import) {
	src, ok := r.source(d.ModuleName, d.ID)
	if !ok {
		return
	}

	if d.IsWildcard() {
		for _, name := range src.Names() {
			cell := src[name]
			// Locally scoped names are never exported.
			if !cell.AllUnscoped() || cell.OnlyBuiltin() {
				continue
			}
			r.table.Set(name, cell.Clone())
		}
		return
	}

	cell, ok := src.Lookup(d.DefName)
	if !ok {
		r.errors = append(r.errors, diagnostics.NewUnresolvedDefinition(r.module, d.DefName, d.ModuleName, d.ID))
		return
	}
	r.table.Set(d.DefName, cell.Clone())

	if _, isModule := src.ModuleEntry(d.DefName); isModule {
		// import M.Inner brings every Inner:: name of M along.
		for _, name := range src.Names() {
			if utils.HasNamespace(name, d.DefName) {
				r.table.Set(name, src[name].Clone())
			}
		}
	}
}

func (r *resolution) resolveInstance(d *ast.Instance) {
	proto, ok := r.source(d.ProtoName, d.ID)
	if !ok {
		return
	}

	overridden := make(map[string]bool, len(d.Overrides))
	for _, o := range d.Overrides {
		constDef, ok := proto.ConstEntry(o.Param)
		if !ok {
			r.errors = append(r.errors, diagnostics.NewUnresolvedDefinition(r.module, o.Param, d.ProtoName, o.ID))
			continue
		}
		overridden[o.Param] = true

		key := utils.Qualify(d.Name, o.Param)
		r.table.Set(key, &symbols.DefinitionTable{Values: []symbols.ValueDefinition{{
			Kind:           symbols.KindDef,
			Identifier:     key,
			Reference:      o.ID,
			TypeAnnotation: symbols.NamespaceType(constDef.TypeAnnotation, d.Name, proto),
		}}})
	}

	for _, name := range proto.Names() {
		if overridden[name] {
			continue
		}
		copied := namespacedCopy(proto[name], d.Name, proto)
		if copied.IsEmpty() {
			continue
		}
		key := utils.Qualify(d.Name, name)
		r.table.Set(key, copied.Rename(key))
	}
}

// namespacedCopy keeps the module-level, non-builtin definitions of cell and
// prefixes the type references they carry.
func namespacedCopy(cell *symbols.DefinitionTable, namespace string, proto symbols.LookupTable) *symbols.DefinitionTable {
	out := &symbols.DefinitionTable{}
	for _, v := range cell.Values {
		if v.IsScoped() || v.IsBuiltin() {
			continue
		}
		v.TypeAnnotation = symbols.NamespaceType(v.TypeAnnotation, namespace, proto)
		out.Values = append(out.Values, v)
	}
	for _, t := range cell.Types {
		t.Type = symbols.NamespaceType(t.Type, namespace, proto)
		out.Types = append(out.Types, t)
	}
	return out
}
