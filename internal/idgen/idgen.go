// Package idgen mints fresh node ids for synthesized AST nodes.
package idgen

import "github.com/funvibe/speclink/internal/ast"

// Generator hands out ids in increasing order. It is owned by a single
// flattening run and is not safe for concurrent use.
type Generator struct {
	next uint64
}

// New returns a generator whose first id is strictly greater than every id
// found in modules.
func New(modules ...*ast.Module) *Generator {
	return NewFrom(ast.MaxID(modules...))
}

// NewFrom returns a generator whose first id is seed+1.
func NewFrom(seed uint64) *Generator {
	return &Generator{next: seed + 1}
}

// Next returns a fresh id.
func (g *Generator) Next() uint64 {
	id := g.next
	g.next++
	return id
}
