package flattener

import (
	"strings"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/idgen"
	"github.com/funvibe/speclink/internal/symbols"
	"github.com/funvibe/speclink/internal/utils"
)

// copier deep-copies declarations with fresh ids. When rewrite is set, name
// references are resolved in table (using the original scope ids) and the
// ones that should be namespaced get the namespace prefix.
//
// When deps is set, every module-level definition a copy refers to under the
// namespace is recorded there, keyed relative to the instance name.
type copier struct {
	gen       *idgen.Generator
	table     symbols.LookupTable
	namespace string
	instance  string
	rewrite   bool
	scopes    []uint64
	deps      *[]entry
}

func (f *flattener) copier(table symbols.LookupTable, instance, namespace string, rewrite bool) copier {
	return copier{gen: f.gen, table: table, namespace: namespace, instance: instance, rewrite: rewrite}
}

func (c copier) record(name string, ref uint64, isType bool) {
	if c.deps == nil || ref == ast.NoID {
		return
	}
	key := strings.TrimPrefix(utils.Qualify(c.namespace, name), c.instance+utils.NamespaceSeparator)
	*c.deps = append(*c.deps, entry{entryKey: entryKey{name: key, isType: isType}, ref: ref})
}

func (c copier) pushScope(id uint64) copier {
	c.scopes = append(c.scopes[:len(c.scopes):len(c.scopes)], id)
	return c
}

func (c copier) declaration(d ast.Declaration, name string) ast.Declaration {
	switch d := d.(type) {
	case *ast.ConstDecl:
		return &ast.ConstDecl{ID: c.gen.Next(), Name: name, Type: c.typ(d.Type)}
	case *ast.VarDecl:
		return &ast.VarDecl{ID: c.gen.Next(), Name: name, Type: c.typ(d.Type)}
	case *ast.OpDef:
		return c.opDef(d, name)
	case *ast.TypeDef:
		return &ast.TypeDef{ID: c.gen.Next(), Name: name, Type: c.typ(d.Type)}
	case *ast.AssumeDecl:
		return &ast.AssumeDecl{ID: c.gen.Next(), Name: name, Assumption: c.expr(d.Assumption)}
	default:
		diagnostics.Abort(diagnostics.ErrI001, d.NodeID(), "cannot copy %s declaration %s", ast.DeclKind(d), d.DeclName())
		return nil
	}
}

func (c copier) opDef(d *ast.OpDef, name string) *ast.OpDef {
	return &ast.OpDef{
		ID:             c.gen.Next(),
		Name:           name,
		Qualifier:      d.Qualifier,
		Expr:           c.expr(d.Expr),
		TypeAnnotation: c.typ(d.TypeAnnotation),
	}
}

func (c copier) expr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Name:
		return &ast.Name{ID: c.gen.Next(), Name: c.name(e.Name, e.ID)}
	case *ast.BoolLit:
		return &ast.BoolLit{ID: c.gen.Next(), Value: e.Value}
	case *ast.IntLit:
		return &ast.IntLit{ID: c.gen.Next(), Value: e.Value}
	case *ast.StrLit:
		return &ast.StrLit{ID: c.gen.Next(), Value: e.Value}
	case *ast.App:
		opcode := c.name(e.Opcode, e.ID)
		args := make([]ast.Expression, len(e.Args))
		for i, a := range e.Args {
			args[i] = c.expr(a)
		}
		return &ast.App{ID: c.gen.Next(), Opcode: opcode, Args: args}
	case *ast.Lambda:
		inner := c.pushScope(e.ID)
		params := make([]ast.Param, len(e.Params))
		for i, p := range e.Params {
			params[i] = ast.Param{ID: c.gen.Next(), Name: p.Name, Type: c.typ(p.Type)}
		}
		return &ast.Lambda{ID: c.gen.Next(), Params: params, Qualifier: e.Qualifier, Body: inner.expr(e.Body)}
	case *ast.Let:
		inner := c.pushScope(e.ID)
		var def *ast.OpDef
		if e.OpDef != nil {
			def = inner.opDef(e.OpDef, inner.name(e.OpDef.Name, e.OpDef.ID))
		}
		return &ast.Let{ID: c.gen.Next(), OpDef: def, Body: inner.expr(e.Body)}
	default:
		diagnostics.Abort(diagnostics.ErrI001, e.NodeID(), "cannot copy expression %T", e)
		return nil
	}
}

// name returns the name a reference takes in the copy.
func (c copier) name(name string, ref uint64) string {
	if !c.rewrite {
		return name
	}
	def, ok := c.table.ResolveValue(name, c.scopes)
	if !ok {
		diagnostics.Abort(diagnostics.ErrI001, ref, "no definition found for '%s'", name)
	}
	if shouldAddNamespace(def) {
		if !def.IsScoped() {
			c.record(name, def.Reference, false)
		}
		return utils.Qualify(c.namespace, name)
	}
	return name
}

// shouldAddNamespace reports whether a reference to def is renamed in a copy:
// everything except builtins and lambda parameters.
func shouldAddNamespace(def symbols.ValueDefinition) bool {
	return !def.IsBuiltin() && def.Kind != symbols.KindParam
}

// typ namespaces the declared types of the copied module and gives every type
// node a fresh id.
func (c copier) typ(t ast.Type) ast.Type {
	if t == nil {
		return nil
	}
	ast.FoldType(func(node ast.Type, _ struct{}) struct{} {
		if ct, ok := node.(*ast.ConstType); ok {
			if def, declared := c.table.ResolveType(ct.Name); declared {
				c.record(ct.Name, def.Reference, true)
			}
		}
		return struct{}{}
	}, struct{}{}, t)
	return ast.TransformType(symbols.NamespaceType(t, c.namespace, c.table), func(node ast.Type) ast.Type {
		return ast.WithTypeID(node, c.gen.Next())
	})
}
