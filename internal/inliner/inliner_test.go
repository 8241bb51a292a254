package inliner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/collector"
	"github.com/funvibe/speclink/internal/modules"
	"github.com/funvibe/speclink/internal/pipeline"
	"github.com/funvibe/speclink/internal/prettyprinter"
	"github.com/funvibe/speclink/internal/symbols"
)

const forestSrc = `
modules:
  - name: A
    declarations:
      - {kind: typedef, name: T1, type: T2}
      - {kind: typedef, name: T2, type: {kind: set, elem: T3}}
      - {kind: typedef, name: T3, type: int}
      - {kind: typedef, name: O}
      - {kind: var, name: x, type: T1}
      - {kind: var, name: o, type: {kind: list, elem: O}}
      - {kind: typedef, name: C1, type: C2}
      - {kind: typedef, name: C2, type: C1}
      - {kind: var, name: c, type: C1}
      - {kind: def, name: f, expr: {kind: lambda, params: [{name: p, type: T3}], body: p}}
      - kind: module
        module:
          name: Inner
          declarations:
            - {kind: typedef, name: T1, type: bool}
            - {kind: var, name: z, type: T1}
`

func setup(t *testing.T) (*ast.Module, symbols.LookupTableByModule) {
	t.Helper()
	forest, err := modules.NewLoader().Parse("test.yaml", []byte(forestSrc))
	require.NoError(t, err)
	return forest.Modules[0], collector.Collect(forest.Modules...)
}

func declType(t *testing.T, m *ast.Module, name string) string {
	t.Helper()
	for _, d := range m.Declarations {
		if d.DeclName() != name {
			continue
		}
		switch d := d.(type) {
		case *ast.VarDecl:
			return prettyprinter.PrintType(d.Type)
		case *ast.TypeDef:
			return prettyprinter.PrintType(d.Type)
		}
	}
	t.Fatalf("no declaration %s in %s", name, m.Name)
	return ""
}

func TestInlineModule(t *testing.T) {
	a, tables := setup(t)
	out, table := InlineModule(a, tables["A"])

	tests := []struct {
		name string
		want string
	}{
		{"x", "Set[int]"},
		{"T1", "Set[int]"},
		{"T2", "Set[int]"},
		{"o", "List[O]"},
	}
	for _, tt := range tests {
		if got := declType(t, out, tt.name); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}

	f := out.Declarations[9].(*ast.OpDef)
	require.Equal(t, "int", prettyprinter.PrintType(f.Expr.(*ast.Lambda).Params[0].Type))

	x, ok := table.ResolveValue("x", nil)
	require.True(t, ok)
	require.Equal(t, "Set[int]", prettyprinter.PrintType(x.TypeAnnotation))
	t1, ok := table.ResolveType("T1")
	require.True(t, ok)
	require.Equal(t, "Set[int]", prettyprinter.PrintType(t1.Type))

	o, ok := table.ResolveType("O")
	require.True(t, ok)
	require.True(t, o.IsOpaque())

	// Nested modules are left for InlineAll.
	inner := out.Declarations[10].(*ast.ModuleDecl).Module
	require.Equal(t, "T1", declType(t, inner, "z"))
}

func TestInlineDoesNotModifyInput(t *testing.T) {
	a, tables := setup(t)
	before := tables.Clone()
	InlineAll([]*ast.Module{a}, tables)

	require.Equal(t, "T1", declType(t, a, "x"))
	require.Equal(t, before, tables)
}

func TestInlineCycle(t *testing.T) {
	a, tables := setup(t)
	out, _ := InlineModule(a, tables["A"])

	// A cycle stops at the first repeated alias instead of looping.
	got := declType(t, out, "c")
	require.Contains(t, []string{"C1", "C2"}, got)
}

func TestInlineModuleFreshTypeIDs(t *testing.T) {
	a, tables := setup(t)
	before := ast.MaxID(a)
	out, _ := InlineModule(a, tables["A"])

	// x, T1 and T2 all expand to the body of T2.
	seen := make(map[uint64]bool)
	fd := func(_ ast.Declaration, _ struct{}) struct{} { return struct{}{} }
	fe := func(_ ast.Expression, _ struct{}) struct{} { return struct{}{} }
	ft := func(ty ast.Type, _ struct{}) struct{} {
		require.False(t, seen[ty.NodeID()], "type id %d used twice", ty.NodeID())
		seen[ty.NodeID()] = true
		return struct{}{}
	}
	ast.FoldModule(fd, fe, ft, struct{}{}, out)

	x := out.Declarations[4].(*ast.VarDecl).Type.(*ast.SetType)
	require.Greater(t, x.ID, before, "expansions get fresh ids")
	require.Equal(t, before, ast.MaxID(a), "the input keeps its ids")
}

func TestInlineAll(t *testing.T) {
	a, tables := setup(t)
	mods, outTables := InlineAll([]*ast.Module{a}, tables)
	require.Len(t, mods, 1)
	require.ElementsMatch(t, tables.ModuleNames(), outTables.ModuleNames())

	inner := mods[0].Declarations[10].(*ast.ModuleDecl).Module
	require.Equal(t, "bool", declType(t, inner, "z"), "nested modules use their own aliases")
	require.Equal(t, "Set[int]", declType(t, mods[0], "x"))

	z, ok := outTables["Inner"].ResolveValue("z", nil)
	require.True(t, ok)
	require.Equal(t, "bool", prettyprinter.PrintType(z.TypeAnnotation))
}

func TestInlineFixedPoint(t *testing.T) {
	a, tables := setup(t)
	once, onceTables := InlineAll([]*ast.Module{a}, tables)
	twice, twiceTables := InlineAll(once, onceTables)

	require.Equal(t, prettyprinter.PrintModule(once...), prettyprinter.PrintModule(twice...))
	for _, name := range []string{"A", "Inner"} {
		require.Equal(t,
			prettyprinter.PrintTable(onceTables[name], prettyprinter.TableOptions{}),
			prettyprinter.PrintTable(twiceTables[name], prettyprinter.TableOptions{}),
		)
	}
}

func TestInlinerProcessor(t *testing.T) {
	a, tables := setup(t)
	ctx := pipeline.NewPipelineContext([]*ast.Module{a}, nil, nil)
	ctx.Tables = tables

	ctx = (&InlinerProcessor{}).Process(ctx)
	require.False(t, ctx.Failed())
	require.Equal(t, "Set[int]", declType(t, ctx.Modules[0], "x"))
}
