// Package inliner replaces references to type aliases by the types they stand
// for, both in the module tree and in the types stored in its lookup table.
package inliner

import (
	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/idgen"
	"github.com/funvibe/speclink/internal/symbols"
)

// InlineModule returns copies of m and table in which every alias reference
// has been expanded. Expansion is recursive, so the result is a fixed point:
// inlining it again changes nothing. Opaque types (declared without a body)
// are kept as references.
//
// Every expansion is a fresh copy of the alias body whose type nodes get
// ids above any id found in m or table.
//
// Nested modules are left as they are; their names resolve against their own
// tables, which InlineAll supplies.
func InlineModule(m *ast.Module, table symbols.LookupTable) (*ast.Module, symbols.LookupTable) {
	in := newInliner(table, idgen.NewFrom(max(ast.MaxID(m), maxTypeID(table))))
	return in.module(m, nil), in.inlineTable()
}

// InlineAll inlines every module of modules, and every module nested in them,
// against its own table. Tables of modules not present in the tree are
// inlined too. Inputs are never modified.
func InlineAll(modules []*ast.Module, tables symbols.LookupTableByModule) ([]*ast.Module, symbols.LookupTableByModule) {
	outTables := make(symbols.LookupTableByModule, len(tables))
	seed := ast.MaxID(modules...)
	for _, table := range tables {
		seed = max(seed, maxTypeID(table))
	}
	gen := idgen.NewFrom(seed)

	var inline func(m *ast.Module) *ast.Module
	inline = func(m *ast.Module) *ast.Module {
		table, ok := tables[m.Name]
		if !ok {
			return m
		}
		in := newInliner(table, gen)
		outTables[m.Name] = in.inlineTable()
		return in.module(m, inline)
	}

	outModules := make([]*ast.Module, len(modules))
	for i, m := range modules {
		outModules[i] = inline(m)
	}
	for _, name := range tables.ModuleNames() {
		if _, done := outTables[name]; !done {
			outTables[name] = newInliner(tables[name], gen).inlineTable()
		}
	}
	return outModules, outTables
}

type inliner struct {
	gen      *idgen.Generator
	table    symbols.LookupTable
	expanded map[string]ast.Type
	visiting map[string]bool
}

func newInliner(table symbols.LookupTable, gen *idgen.Generator) *inliner {
	return &inliner{
		gen:      gen,
		table:    table,
		expanded: make(map[string]ast.Type),
		visiting: make(map[string]bool),
	}
}

// module rewrites the declarations of m. Nested modules go through nested,
// or are kept unchanged when it is nil.
func (in *inliner) module(m *ast.Module, nested func(*ast.Module) *ast.Module) *ast.Module {
	out := &ast.Module{ID: m.ID, Name: m.Name, Declarations: make([]ast.Declaration, len(m.Declarations))}
	for i, d := range m.Declarations {
		if md, ok := d.(*ast.ModuleDecl); ok {
			if nested != nil {
				d = &ast.ModuleDecl{Module: nested(md.Module)}
			}
			out.Declarations[i] = d
			continue
		}
		out.Declarations[i] = ast.MapDeclarationTypes(d, in.node)
	}
	return out
}

// inlineTable returns a copy of the table with every stored type expanded.
func (in *inliner) inlineTable() symbols.LookupTable {
	out := in.table.Clone()
	for _, name := range out.Names() {
		cell := out[name]
		for i := range cell.Values {
			cell.Values[i].TypeAnnotation = in.typ(cell.Values[i].TypeAnnotation)
		}
		for i := range cell.Types {
			cell.Types[i].Type = in.typ(cell.Types[i].Type)
		}
	}
	return out
}

func (in *inliner) typ(t ast.Type) ast.Type {
	if t == nil {
		return nil
	}
	return ast.TransformType(t, in.node)
}

// node expands a single type node whose children are already expanded.
func (in *inliner) node(t ast.Type) ast.Type {
	c, ok := t.(*ast.ConstType)
	if !ok {
		return t
	}
	expanded, ok := in.alias(c.Name)
	if !ok {
		return t
	}
	// Each use site gets its own copy.
	return ast.TransformType(expanded, func(n ast.Type) ast.Type { return ast.WithTypeID(n, in.gen.Next()) })
}

// maxTypeID returns the largest type node id stored in table.
func maxTypeID(table symbols.LookupTable) uint64 {
	ft := func(t ast.Type, acc uint64) uint64 { return max(acc, t.NodeID()) }
	var maxID uint64
	for _, cell := range table {
		for _, v := range cell.Values {
			maxID = ast.FoldType(ft, maxID, v.TypeAnnotation)
		}
		for _, t := range cell.Types {
			maxID = ast.FoldType(ft, maxID, t.Type)
		}
	}
	return maxID
}

// alias returns the fully expanded body of the alias name. Opaque types,
// unknown names and names on a cycle are not expanded.
func (in *inliner) alias(name string) (ast.Type, bool) {
	if t, ok := in.expanded[name]; ok {
		return t, true
	}
	if in.visiting[name] {
		return nil, false
	}
	body, ok := in.table.TypeAlias(name)
	if !ok {
		return nil, false
	}

	in.visiting[name] = true
	t := ast.TransformType(body, in.node)
	delete(in.visiting, name)

	in.expanded[name] = t
	return t, true
}
