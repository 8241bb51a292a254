package symbols

import (
	"sort"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/utils"
)

// AddValue records a value definition under its identifier.
// An unscoped definition replaces a cell that only holds the builtin entry,
// so module definitions shadow builtins.
func (lt LookupTable) AddValue(def ValueDefinition) {
	cell, ok := lt[def.Identifier]
	if !ok {
		lt[def.Identifier] = &DefinitionTable{Values: []ValueDefinition{def}}
		return
	}
	if !def.IsScoped() && cell.OnlyBuiltin() {
		cell.Values = []ValueDefinition{def}
		return
	}
	cell.Values = append(cell.Values, def)
}

// AddType records a type definition under its identifier.
func (lt LookupTable) AddType(def TypeDefinition) {
	cell, ok := lt[def.Identifier]
	if !ok {
		lt[def.Identifier] = &DefinitionTable{Types: []TypeDefinition{def}}
		return
	}
	cell.Types = append(cell.Types, def)
}

// Set overwrites the cell of name. Used by imports, which take precedence
// over whatever the importer had under that name.
func (lt LookupTable) Set(name string, cell *DefinitionTable) {
	lt[name] = cell
}

// Lookup returns the cell of name.
func (lt LookupTable) Lookup(name string) (*DefinitionTable, bool) {
	cell, ok := lt[name]
	if !ok || cell.IsEmpty() {
		return nil, false
	}
	return cell, true
}

// Names returns all identifiers of the table, sorted.
func (lt LookupTable) Names() []string {
	names := make([]string, 0, len(lt))
	for name := range lt {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserNames returns the identifiers that hold at least one non-builtin
// definition, sorted.
func (lt LookupTable) UserNames() []string {
	var names []string
	for _, name := range lt.Names() {
		if !lt[name].OnlyBuiltin() {
			names = append(names, name)
		}
	}
	return names
}

// Clone returns a deep copy of the table.
func (lt LookupTable) Clone() LookupTable {
	if lt == nil {
		return nil
	}
	out := make(LookupTable, len(lt))
	for name, cell := range lt {
		out[name] = cell.Clone()
	}
	return out
}

// Clone returns a deep copy of every table.
func (tbm LookupTableByModule) Clone() LookupTableByModule {
	if tbm == nil {
		return nil
	}
	out := make(LookupTableByModule, len(tbm))
	for name, lt := range tbm {
		out[name] = lt.Clone()
	}
	return out
}

// ModuleNames returns the module names, sorted.
func (tbm LookupTableByModule) ModuleNames() []string {
	names := make([]string, 0, len(tbm))
	for name := range tbm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rename returns a copy of the cell with every identifier replaced by name.
func (d *DefinitionTable) Rename(name string) *DefinitionTable {
	out := d.Clone()
	for i := range out.Values {
		out.Values[i].Identifier = name
	}
	for i := range out.Types {
		out.Types[i].Identifier = name
	}
	return out
}

// ExportNested copies every unscoped, non-builtin definition of inner into
// outer under the "innerName::" prefix and records innerName itself as a
// module entry pointing at moduleID. Type references inside copied types are
// namespaced the same way.
func ExportNested(outer LookupTable, innerName string, moduleID uint64, inner LookupTable) {
	for _, name := range inner.Names() {
		cell := inner[name]
		exported := &DefinitionTable{}
		for _, v := range cell.Values {
			if v.IsScoped() || v.IsBuiltin() {
				continue
			}
			v.TypeAnnotation = NamespaceType(v.TypeAnnotation, innerName, inner)
			exported.Values = append(exported.Values, v)
		}
		for _, t := range cell.Types {
			t.Type = NamespaceType(t.Type, innerName, inner)
			exported.Types = append(exported.Types, t)
		}
		if exported.IsEmpty() {
			continue
		}
		key := utils.Qualify(innerName, name)
		outer.Set(key, exported.Rename(key))
	}

	outer.Set(innerName, &DefinitionTable{Values: []ValueDefinition{{
		Kind:       KindModule,
		Identifier: innerName,
		Reference:  moduleID,
	}}})
}

// ModuleEntry reports whether name is recorded as a module in lt.
func (lt LookupTable) ModuleEntry(name string) (ValueDefinition, bool) {
	cell, ok := lt.Lookup(name)
	if !ok {
		return ValueDefinition{}, false
	}
	def, ok := cell.ResolveValue(nil)
	if !ok || def.Kind != KindModule {
		return ValueDefinition{}, false
	}
	return def, true
}

// ConstEntry reports whether name is a module-level constant of lt.
func (lt LookupTable) ConstEntry(name string) (ValueDefinition, bool) {
	cell, ok := lt.Lookup(name)
	if !ok {
		return ValueDefinition{}, false
	}
	def, ok := cell.ResolveValue(nil)
	if !ok || def.Kind != KindConst {
		return ValueDefinition{}, false
	}
	return def, true
}

// ReferenceIDs returns the reference ids of all non-builtin definitions, for
// cross-checking tables against trees in tests and tools.
func (lt LookupTable) ReferenceIDs() map[uint64]string {
	refs := make(map[uint64]string)
	for name, cell := range lt {
		for _, v := range cell.Values {
			if v.Reference != ast.NoID {
				refs[v.Reference] = name
			}
		}
		for _, t := range cell.Types {
			if t.Reference != ast.NoID {
				refs[t.Reference] = name
			}
		}
	}
	return refs
}
