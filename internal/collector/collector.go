// Package collector builds the per-module lookup tables: every identifier a
// module defines, every lambda parameter and let-bound operator together with
// the scope that limits its visibility, and the names exported by nested
// modules.
//
// Collection never fails. References to unknown names surface in later passes.
package collector

import (
	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/config"
	"github.com/funvibe/speclink/internal/symbols"
)

// context is the traversal state. It is passed by value; push operations
// return a new context and never share the backing array with the caller.
type context struct {
	modules []string
	scopes  []uint64
}

func (c context) enterModule(name string) context {
	c.modules = append(c.modules[:len(c.modules):len(c.modules)], name)
	c.scopes = nil
	return c
}

func (c context) pushScope(id uint64) context {
	c.scopes = append(c.scopes[:len(c.scopes):len(c.scopes)], id)
	return c
}

// scope returns the innermost enclosing scope, or ast.NoID at module level.
func (c context) scope() uint64 {
	if len(c.scopes) == 0 {
		return ast.NoID
	}
	return c.scopes[len(c.scopes)-1]
}

// Collect returns a lookup table for each module and for every module nested
// inside them, keyed by module name.
func Collect(modules ...*ast.Module) symbols.LookupTableByModule {
	tables := make(symbols.LookupTableByModule)
	for _, m := range modules {
		collectModule(context{}, tables, m)
	}
	return tables
}

// CollectDeclarations records decls into table as module-level declarations.
// The flattener uses it to register the declarations it synthesizes.
func CollectDeclarations(table symbols.LookupTable, decls []ast.Declaration) {
	tables := make(symbols.LookupTableByModule)
	for _, d := range decls {
		collectDeclaration(context{}, tables, table, d)
	}
}

func collectModule(ctx context, tables symbols.LookupTableByModule, m *ast.Module) symbols.LookupTable {
	ctx = ctx.enterModule(m.Name)
	table := symbols.NewLookupTable()
	for _, d := range m.Declarations {
		collectDeclaration(ctx, tables, table, d)
	}
	tables[m.Name] = table
	return table
}

func collectDeclaration(ctx context, tables symbols.LookupTableByModule, table symbols.LookupTable, d ast.Declaration) {
	switch d := d.(type) {
	case *ast.ConstDecl:
		addValue(table, symbols.ValueDefinition{
			Kind: symbols.KindConst, Identifier: d.Name, Reference: d.ID, TypeAnnotation: d.Type,
		})
	case *ast.VarDecl:
		addValue(table, symbols.ValueDefinition{
			Kind: symbols.KindVar, Identifier: d.Name, Reference: d.ID, TypeAnnotation: d.Type,
		})
	case *ast.OpDef:
		collectOpDef(ctx, table, d)
	case *ast.TypeDef:
		if d.Name != config.DiscardName {
			table.AddType(symbols.TypeDefinition{Identifier: d.Name, Type: d.Type, Reference: d.ID})
		}
	case *ast.AssumeDecl:
		addValue(table, symbols.ValueDefinition{
			Kind: symbols.KindAssumption, Identifier: d.Name, Reference: d.ID,
		})
		collectExpression(ctx, table, d.Assumption)
	case *ast.Import:
		// Imports are the resolver's business.
	case *ast.Instance:
		// Only the instance name is known here; its contents are produced by
		// the resolver (table) and the flattener (declarations).
		addValue(table, symbols.ValueDefinition{
			Kind: symbols.KindModule, Identifier: d.Name, Reference: d.ID,
		})
		for _, o := range d.Overrides {
			collectExpression(ctx, table, o.Expr)
		}
	case *ast.ModuleDecl:
		inner := collectModule(ctx, tables, d.Module)
		symbols.ExportNested(table, d.Module.Name, d.Module.ID, inner)
	}
}

func collectOpDef(ctx context, table symbols.LookupTable, d *ast.OpDef) {
	addValue(table, symbols.ValueDefinition{
		Kind:           symbols.KindDef,
		Identifier:     d.Name,
		Reference:      d.ID,
		Scope:          ctx.scope(),
		TypeAnnotation: d.TypeAnnotation,
	})
	collectExpression(ctx, table, d.Expr)
}

func collectExpression(ctx context, table symbols.LookupTable, e ast.Expression) {
	switch e := e.(type) {
	case *ast.App:
		for _, arg := range e.Args {
			collectExpression(ctx, table, arg)
		}
	case *ast.Lambda:
		for _, p := range e.Params {
			addValue(table, symbols.ValueDefinition{
				Kind:           symbols.KindParam,
				Identifier:     p.Name,
				Reference:      p.ID,
				Scope:          e.ID,
				TypeAnnotation: p.Type,
			})
		}
		collectExpression(ctx.pushScope(e.ID), table, e.Body)
	case *ast.Let:
		inner := ctx.pushScope(e.ID)
		if e.OpDef != nil {
			collectOpDef(inner, table, e.OpDef)
		}
		collectExpression(inner, table, e.Body)
	case *ast.Name, *ast.BoolLit, *ast.IntLit, *ast.StrLit, nil:
	}
}

func addValue(table symbols.LookupTable, def symbols.ValueDefinition) {
	if def.Identifier == config.DiscardName {
		return
	}
	table.AddValue(def)
}
