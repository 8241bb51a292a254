package ast

import "testing"

// sample builds:
//
//	module A {                      1
//	  const N: Set[T]               2, 3, 4
//	  def f = (x) => iadd(x, N)     5, 6, 7(param x), 8, 9, 10
//	  module Inner { var v: int }   11, 12, 13
//	  module I = B(N = 1)           14, override 15, 16
//	}
func sample() *Module {
	return &Module{ID: 1, Name: "A", Declarations: []Declaration{
		&ConstDecl{ID: 2, Name: "N", Type: &SetType{ID: 3, Elem: &ConstType{ID: 4, Name: "T"}}},
		&OpDef{ID: 5, Name: "f", Qualifier: QualifierPureDef, Expr: &Lambda{
			ID: 6, Params: []Param{{ID: 7, Name: "x"}}, Qualifier: QualifierDef,
			Body: &App{ID: 8, Opcode: "iadd", Args: []Expression{&Name{ID: 9, Name: "x"}, &Name{ID: 10, Name: "N"}}},
		}},
		&ModuleDecl{Module: &Module{ID: 11, Name: "Inner", Declarations: []Declaration{
			&VarDecl{ID: 12, Name: "v", Type: &PrimitiveType{ID: 13, Name: IntTypeName}},
		}}},
		&Instance{ID: 14, Name: "I", ProtoName: "B", Overrides: []Override{
			{ID: 15, Param: "N", Expr: &IntLit{ID: 16, Value: 1}},
		}},
	}}
}

func TestMaxID(t *testing.T) {
	if got := MaxID(sample()); got != 16 {
		t.Errorf("MaxID = %d, want 16", got)
	}

	// Parameter, let-binding and override ids count even when they are the largest.
	m := &Module{ID: 1, Name: "B", Declarations: []Declaration{
		&OpDef{ID: 2, Name: "g", Expr: &Let{ID: 3, OpDef: &OpDef{ID: 40, Name: "y", Expr: &IntLit{ID: 4}}, Body: &Name{ID: 5, Name: "y"}}},
	}}
	if got := MaxID(m); got != 40 {
		t.Errorf("MaxID with let = %d, want 40", got)
	}
	if got := MaxID(m, sample(), nil); got != 40 {
		t.Errorf("MaxID of several modules = %d, want 40", got)
	}
	if got := MaxID(); got != 0 {
		t.Errorf("MaxID() = %d, want 0", got)
	}
}

func TestFoldOrder(t *testing.T) {
	var names []string
	fd := func(d Declaration, acc []string) []string { return append(acc, "decl:"+d.DeclName()) }
	fe := func(e Expression, acc []string) []string {
		if n, ok := e.(*Name); ok {
			return append(acc, "name:"+n.Name)
		}
		return acc
	}
	ft := func(t Type, acc []string) []string {
		if c, ok := t.(*ConstType); ok {
			return append(acc, "type:"+c.Name)
		}
		return acc
	}
	names = FoldModule(fd, fe, ft, names, sample())

	want := []string{"decl:N", "type:T", "decl:f", "name:x", "name:N", "decl:Inner", "decl:v", "decl:I"}
	if len(names) != len(want) {
		t.Fatalf("fold visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("fold[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestInstanceDetection(t *testing.T) {
	m := sample()
	if !HasInstances(m) || !ContainsInstance(m) {
		t.Errorf("sample module should report its instance")
	}

	nestedOnly := &Module{ID: 1, Name: "P", Declarations: []Declaration{
		&ModuleDecl{Module: m},
	}}
	if !HasInstances(nestedOnly) {
		t.Errorf("HasInstances should see instances in nested modules")
	}
	if ContainsInstance(nestedOnly) {
		t.Errorf("ContainsInstance should only look at the top level")
	}

	empty := &Module{ID: 1, Name: "E"}
	if HasInstances(empty) || ContainsInstance(empty) {
		t.Errorf("empty module has no instances")
	}
}

func TestTransformTypeDoesNotModifyInput(t *testing.T) {
	in := &FunType{ID: 1, Arg: &ConstType{ID: 2, Name: "T"}, Res: &ListType{ID: 3, Elem: &ConstType{ID: 4, Name: "T"}}}
	out := TransformType(in, func(t Type) Type {
		if c, ok := t.(*ConstType); ok {
			c.Name = "X::" + c.Name
		}
		return t
	})

	if in.Arg.(*ConstType).Name != "T" || in.Res.(*ListType).Elem.(*ConstType).Name != "T" {
		t.Errorf("input was modified: %#v", in)
	}
	f, ok := out.(*FunType)
	if !ok {
		t.Fatalf("TransformType returned %T, want *FunType", out)
	}
	if f.Arg.(*ConstType).Name != "X::T" || f.Res.(*ListType).Elem.(*ConstType).Name != "X::T" {
		t.Errorf("output not rewritten: %#v", f)
	}
	if f.ID != 1 {
		t.Errorf("ids should be kept, got %d", f.ID)
	}
}

func TestMapTypesReachesEveryType(t *testing.T) {
	rename := func(t Type) Type {
		if c, ok := t.(*ConstType); ok {
			c.Name = "Q"
		}
		return t
	}
	m := &Module{ID: 1, Name: "A", Declarations: []Declaration{
		&OpDef{ID: 2, Name: "f", TypeAnnotation: &ConstType{ID: 3, Name: "T"}, Expr: &Lambda{
			ID: 4, Params: []Param{{ID: 5, Name: "x", Type: &ConstType{ID: 6, Name: "T"}}},
			Body: &Let{ID: 7, OpDef: &OpDef{ID: 8, Name: "y", TypeAnnotation: &ConstType{ID: 9, Name: "T"}, Expr: &IntLit{ID: 10}}, Body: &Name{ID: 11, Name: "y"}},
		}},
		&ModuleDecl{Module: &Module{ID: 12, Name: "Inner", Declarations: []Declaration{
			&TypeDef{ID: 13, Name: "U", Type: &ConstType{ID: 14, Name: "T"}},
		}}},
	}}

	out := MapTypes(m, rename)

	count := FoldModule(
		func(_ Declaration, n int) int { return n },
		func(_ Expression, n int) int { return n },
		func(t Type, n int) int {
			if c, ok := t.(*ConstType); ok && c.Name == "Q" {
				return n + 1
			}
			return n
		}, 0, out)
	if count != 4 {
		t.Errorf("rewritten %d types, want 4", count)
	}
	if got := m.Declarations[0].(*OpDef).TypeAnnotation.(*ConstType).Name; got != "T" {
		t.Errorf("input annotation changed to %s", got)
	}
	if MaxID(out) != MaxID(m) {
		t.Errorf("MapTypes changed ids")
	}
}

func TestQualifiers(t *testing.T) {
	for _, q := range []Qualifier{QualifierPureVal, QualifierPureDef, QualifierVal, QualifierDef,
		QualifierAction, QualifierRun, QualifierTemporal, QualifierNondet} {
		if !IsQualifier(q) {
			t.Errorf("IsQualifier(%s) = false", q)
		}
	}
	if IsQualifier("pure") {
		t.Errorf("IsQualifier(pure) = true")
	}
}
