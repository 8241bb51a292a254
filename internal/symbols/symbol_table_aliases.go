package symbols

import (
	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/utils"
)

// NamespaceType returns a copy of t in which every reference to a type
// declared in table is prefixed with namespace. The rewrite reaches through
// set, list, function, operator, tuple, record and union shapes.
// Primitive types and unknown names are left alone.
func NamespaceType(t ast.Type, namespace string, table LookupTable) ast.Type {
	if t == nil {
		return nil
	}
	return ast.TransformType(t, func(node ast.Type) ast.Type {
		c, ok := node.(*ast.ConstType)
		if !ok {
			return node
		}
		if _, declared := table.ResolveType(c.Name); declared {
			c.Name = utils.Qualify(namespace, c.Name)
		}
		return c
	})
}

// TypeAlias returns the aliased type of name, or false when name is unknown
// or declared without a definition.
func (lt LookupTable) TypeAlias(name string) (ast.Type, bool) {
	def, ok := lt.ResolveType(name)
	if !ok || def.IsOpaque() {
		return nil, false
	}
	return def.Type, true
}
