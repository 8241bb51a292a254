package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/collector"
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/modules"
	"github.com/funvibe/speclink/internal/symbols"
)

const forestSrc = `
modules:
  - name: A
    declarations:
      - {kind: const, name: N, type: int}
      - {kind: typedef, name: T, type: {kind: set, elem: int}}
      - {kind: var, name: x, type: T}
      - kind: def
        name: f
        expr: {kind: lambda, params: [p], body: {kind: app, op: iadd, args: [p, N]}}
      - {kind: def, name: size, expr: 0}
      - kind: module
        module:
          name: Inner
          declarations:
            - {kind: const, name: c, type: int}
  - name: Named
    declarations:
      - {kind: import, module: A, name: f}
      - {kind: import, module: A, name: size}
  - name: Nested
    declarations:
      - {kind: import, module: A, name: Inner}
  - name: Wild
    declarations:
      - {kind: import, module: A, name: "*"}
  - name: Inst
    declarations:
      - {kind: instance, name: I, of: A, overrides: [{param: N, expr: 3}]}
  - name: Bad
    declarations:
      - {kind: import, module: Missing, name: x}
      - {kind: import, module: A, name: nope}
      - {kind: instance, name: J, of: A, overrides: [{param: x, expr: 1}]}
      - {kind: instance, name: K, of: Gone}
`

func setup(t *testing.T) (*modules.Forest, symbols.LookupTableByModule) {
	t.Helper()
	forest, err := modules.NewLoader().Parse("test.yaml", []byte(forestSrc))
	require.NoError(t, err)
	return forest, collector.Collect(forest.Modules...)
}

func module(t *testing.T, forest *modules.Forest, name string) *ast.Module {
	t.Helper()
	m, ok := forest.Module(name)
	require.True(t, ok, "module %s", name)
	return m
}

func TestResolveNamedImport(t *testing.T) {
	forest, tables := setup(t)
	resolved, err := Resolve(module(t, forest, "Named"), tables)
	require.NoError(t, err)

	table := resolved["Named"]
	f, ok := table.ResolveValue("f", nil)
	require.True(t, ok)
	want, _ := tables["A"].ResolveValue("f", nil)
	require.Equal(t, want.Reference, f.Reference)

	_, ok = table.Lookup("p")
	require.False(t, ok, "only the imported name comes along")
	_, ok = table.Lookup("N")
	require.False(t, ok)

	// The imported size replaces the builtin.
	size, ok := table.ResolveValue("size", nil)
	require.True(t, ok)
	require.False(t, size.IsBuiltin())
	require.Len(t, table["size"].Values, 1)
}

func TestResolveNestedModuleImport(t *testing.T) {
	forest, tables := setup(t)
	resolved, err := Resolve(module(t, forest, "Nested"), tables)
	require.NoError(t, err)

	table := resolved["Nested"]
	_, ok := table.ModuleEntry("Inner")
	require.True(t, ok)
	c, ok := table.ResolveValue("Inner::c", nil)
	require.True(t, ok)
	require.Equal(t, symbols.KindConst, c.Kind)
}

func TestResolveWildcardImport(t *testing.T) {
	forest, tables := setup(t)
	resolved, err := Resolve(module(t, forest, "Wild"), tables)
	require.NoError(t, err)

	table := resolved["Wild"]
	for _, name := range []string{"N", "x", "f", "size", "Inner", "Inner::c"} {
		_, ok := table.ResolveValue(name, nil)
		require.True(t, ok, "%s should be imported", name)
	}
	_, ok := table.ResolveType("T")
	require.True(t, ok)
	_, ok = table.Lookup("p")
	require.False(t, ok, "scoped names are not exported")

	// Builtins are still the builtin definitions.
	concat, ok := table.ResolveValue("concat", nil)
	require.True(t, ok)
	require.True(t, concat.IsBuiltin())
}

func TestResolveInstance(t *testing.T) {
	forest, tables := setup(t)
	inst := module(t, forest, "Inst")
	resolved, err := Resolve(inst, tables)
	require.NoError(t, err)

	table := resolved["Inst"]
	override := inst.Declarations[0].(*ast.Instance).Overrides[0]

	n, ok := table.ResolveValue("I::N", nil)
	require.True(t, ok)
	require.Equal(t, symbols.KindDef, n.Kind)
	require.Equal(t, override.ID, n.Reference)
	require.IsType(t, &ast.PrimitiveType{}, n.TypeAnnotation)

	x, ok := table.ResolveValue("I::x", nil)
	require.True(t, ok)
	require.Equal(t, "I::x", x.Identifier)
	ct, ok := x.TypeAnnotation.(*ast.ConstType)
	require.True(t, ok)
	require.Equal(t, "I::T", ct.Name)

	_, ok = table.ResolveType("I::T")
	require.True(t, ok)
	_, ok = table.ResolveValue("I::f", nil)
	require.True(t, ok)
	_, ok = table.Lookup("I::p")
	require.False(t, ok)
	_, ok = table.Lookup("I::iadd")
	require.False(t, ok, "builtins are not copied")

	// A's table keeps its own type names.
	ax, _ := tables["A"].ResolveValue("x", nil)
	require.Equal(t, "T", ax.TypeAnnotation.(*ast.ConstType).Name)
}

func TestResolveErrors(t *testing.T) {
	forest, tables := setup(t)
	bad := module(t, forest, "Bad")

	resolved, err := Resolve(bad, tables)
	require.Nil(t, resolved)
	require.Error(t, err)

	errs, ok := diagnostics.AsResolutionErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 4)

	require.Equal(t, diagnostics.ErrL001, errs[0].Code)
	require.Equal(t, "Missing", errs[0].ModuleName)
	require.Equal(t, bad.Declarations[0].NodeID(), errs[0].Reference)

	require.Equal(t, diagnostics.ErrL002, errs[1].Code)
	require.Equal(t, "nope", errs[1].DefName)
	require.Equal(t, "A", errs[1].Context)

	// x is a variable of A, not a constant.
	require.Equal(t, diagnostics.ErrL002, errs[2].Code)
	require.Equal(t, "x", errs[2].DefName)
	require.Equal(t, bad.Declarations[2].(*ast.Instance).Overrides[0].ID, errs[2].Reference)

	require.Equal(t, diagnostics.ErrL001, errs[3].Code)
	require.Equal(t, "Gone", errs[3].ModuleName)

	for _, e := range errs {
		require.Equal(t, "Bad", e.Module)
	}

	located := errs.WithLocations(forest.Sources)
	require.NotNil(t, located[0].Location)
	require.Equal(t, "test.yaml", located[0].Location.File)
}

func TestResolveDoesNotModifyInput(t *testing.T) {
	forest, tables := setup(t)
	before := tables.Clone()

	for _, name := range []string{"Named", "Wild", "Inst", "Bad"} {
		_, _ = Resolve(module(t, forest, name), tables)
	}
	require.Equal(t, before, tables)
}
