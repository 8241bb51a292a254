package modules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/speclink/internal/ast"
)

const sample = `modules:
  - name: A
    declarations:
      - {kind: const, name: N, type: int}
      - {kind: var, name: x, type: T}
      - {kind: typedef, name: T}
      - {kind: assume, name: _, expr: true}
      - kind: def
        name: f
        qualifier: val
        expr: {kind: app, op: iadd, args: [3, N, "s", {kind: str, value: "7"}]}
      - kind: module
        module:
          name: Inner
          declarations:
            - {kind: import, module: A, name: "*"}
      - {kind: instance, name: I, of: B, overrides: [{param: K, expr: 1}]}
`

func TestParse(t *testing.T) {
	forest, err := NewLoader().Parse("a.yaml", []byte(sample))
	require.NoError(t, err)
	require.Len(t, forest.Modules, 1)
	require.Equal(t, []string{"a.yaml"}, forest.Files)
	require.Equal(t, []string{"A", "Inner"}, forest.Names())

	a := forest.Modules[0]
	require.Equal(t, uint64(1), a.ID)
	require.Len(t, a.Declarations, 7)

	n := a.Declarations[0].(*ast.ConstDecl)
	require.Equal(t, "N", n.Name)
	require.Equal(t, &ast.PrimitiveType{ID: n.Type.NodeID(), Name: "int"}, n.Type)

	x := a.Declarations[1].(*ast.VarDecl)
	require.IsType(t, &ast.ConstType{}, x.Type)

	require.True(t, a.Declarations[2].(*ast.TypeDef).IsOpaque())
	require.IsType(t, &ast.BoolLit{}, a.Declarations[3].(*ast.AssumeDecl).Assumption)

	f := a.Declarations[4].(*ast.OpDef)
	require.Equal(t, ast.QualifierVal, f.Qualifier)
	app := f.Expr.(*ast.App)
	require.Equal(t, "iadd", app.Opcode)
	require.Len(t, app.Args, 4)
	require.Equal(t, int64(3), app.Args[0].(*ast.IntLit).Value)
	require.Equal(t, "N", app.Args[1].(*ast.Name).Name)
	require.Equal(t, "s", app.Args[2].(*ast.StrLit).Value)
	require.Equal(t, "7", app.Args[3].(*ast.StrLit).Value)

	inner := a.Declarations[5].(*ast.ModuleDecl).Module
	imp := inner.Declarations[0].(*ast.Import)
	require.True(t, imp.IsWildcard())

	inst := a.Declarations[6].(*ast.Instance)
	require.Equal(t, "B", inst.ProtoName)
	require.Len(t, inst.Overrides, 1)
	require.Equal(t, "K", inst.Overrides[0].Param)
}

func TestParseIDsAndPositions(t *testing.T) {
	forest, err := NewLoader().Parse("a.yaml", []byte(sample))
	require.NoError(t, err)

	// Every id is distinct and has a position.
	require.Equal(t, forest.MaxID(), uint64(len(forest.Sources)))
	a := forest.Modules[0]
	for _, d := range a.Declarations {
		require.Greater(t, d.NodeID(), a.ID)
		_, ok := forest.Sources.Lookup(d.NodeID())
		require.True(t, ok, "no position for %s", d.DeclName())
	}

	loc, ok := forest.Sources.Lookup(a.ID)
	require.True(t, ok)
	require.Equal(t, ast.Location{File: "a.yaml", Line: 2, Column: 5}, loc)

	loc, _ = forest.Sources.Lookup(a.Declarations[0].NodeID())
	require.Equal(t, 4, loc.Line)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty document"},
		{"no modules", "other: 1\n", `missing "modules"`},
		{"not a mapping", "- 1\n", "must be a mapping"},
		{"unknown declaration", "modules:\n  - name: A\n    declarations:\n      - {kind: axiom, name: a}\n", `unknown declaration kind "axiom"`},
		{"missing type", "modules:\n  - name: A\n    declarations:\n      - {kind: const, name: N}\n", `missing "type"`},
		{"bad qualifier", "modules:\n  - name: A\n    declarations:\n      - {kind: def, name: f, qualifier: lazy, expr: 1}\n", `unknown qualifier "lazy"`},
		{"twice in document", "modules:\n  - name: A\n  - name: A\n", "module A declared twice"},
		{"override twice", "modules:\n  - name: A\n    declarations:\n      - {kind: instance, name: I, of: B, overrides: [{param: K, expr: 1}, {param: K, expr: 2}]}\n", "K overridden twice"},
		{"unknown expression", "modules:\n  - name: A\n    declarations:\n      - {kind: def, name: f, expr: {kind: call}}\n", `unknown expression kind "call"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Parse("bad.yaml", []byte(tt.src))
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %T", err)
			require.Equal(t, "bad.yaml", le.File)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDuplicateKey(t *testing.T) {
	src := "modules:\n  - name: A\n    declarations:\n      - {kind: const, name: N, name: M, type: int}\n"
	_, err := NewLoader().Parse("dup.yaml", []byte(src))
	var le *LoadError
	require.True(t, errors.As(err, &le))
}

func TestParseContinuesIDs(t *testing.T) {
	l := NewLoader()
	first, err := l.Parse("a.yaml", []byte(sample))
	require.NoError(t, err)
	second, err := l.Parse("b.yaml", []byte("modules:\n  - name: B\n"))
	require.NoError(t, err)
	require.Equal(t, first.MaxID()+1, second.Modules[0].ID)

	_, err = l.Parse("c.yaml", []byte("modules:\n  - name: B\n"))
	require.ErrorContains(t, err, "module B already declared in b.yaml")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	a := write("a.yaml", "modules:\n  - name: A\n    declarations:\n      - {kind: const, name: N, type: int}\n")
	write("b.yml", "modules:\n  - name: B\n    declarations:\n      - {kind: import, module: A, name: N}\n")
	write("notes.txt", "not a forest")

	l := NewLoader()
	forest, err := l.Load(dir, a)
	require.NoError(t, err)
	require.Len(t, forest.Files, 2, "a.yaml is read once")
	require.Equal(t, []string{"A", "B"}, forest.Names())
	require.Equal(t, forest.MaxID(), uint64(len(forest.Sources)))

	once, err := l.LoadFile(a)
	require.NoError(t, err)
	again, err := l.LoadFile(a)
	require.NoError(t, err)
	require.Same(t, once, again)

	_, err = NewLoader().Load(t.TempDir())
	require.ErrorContains(t, err, "no forest documents found")

	_, err = NewLoader().Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
