package ast

// FoldModule folds the declarations of m in document order, descending into
// nested modules, expressions and types. Each callback sees a node before its
// children.
func FoldModule[T any](
	fd func(Declaration, T) T, fe func(Expression, T) T, ft func(Type, T) T, acc T, m *Module,
) T {
	if m == nil {
		return acc
	}
	for _, d := range m.Declarations {
		acc = FoldDeclaration(fd, fe, ft, acc, d)
	}
	return acc
}

func FoldDeclaration[T any](
	fd func(Declaration, T) T, fe func(Expression, T) T, ft func(Type, T) T, acc T, d Declaration,
) T {
	if d == nil {
		return acc
	}
	acc = fd(d, acc)

	switch d := d.(type) {
	case *ConstDecl:
		acc = FoldType(ft, acc, d.Type)
	case *VarDecl:
		acc = FoldType(ft, acc, d.Type)
	case *OpDef:
		acc = FoldType(ft, acc, d.TypeAnnotation)
		acc = FoldExpression(fe, ft, acc, d.Expr)
	case *TypeDef:
		acc = FoldType(ft, acc, d.Type)
	case *AssumeDecl:
		acc = FoldExpression(fe, ft, acc, d.Assumption)
	case *Instance:
		for _, o := range d.Overrides {
			acc = FoldExpression(fe, ft, acc, o.Expr)
		}
	case *ModuleDecl:
		acc = FoldModule(fd, fe, ft, acc, d.Module)
	case *Import:
	}
	return acc
}

func FoldExpression[T any](
	fe func(Expression, T) T, ft func(Type, T) T, acc T, e Expression,
) T {
	if e == nil {
		return acc
	}
	acc = fe(e, acc)

	switch e := e.(type) {
	case *App:
		for _, arg := range e.Args {
			acc = FoldExpression(fe, ft, acc, arg)
		}
	case *Lambda:
		for _, p := range e.Params {
			acc = FoldType(ft, acc, p.Type)
		}
		acc = FoldExpression(fe, ft, acc, e.Body)
	case *Let:
		if e.OpDef != nil {
			acc = FoldType(ft, acc, e.OpDef.TypeAnnotation)
			acc = FoldExpression(fe, ft, acc, e.OpDef.Expr)
		}
		acc = FoldExpression(fe, ft, acc, e.Body)
	case *Name, *BoolLit, *IntLit, *StrLit:
	}
	return acc
}

func FoldType[T any](ft func(Type, T) T, acc T, t Type) T {
	if t == nil {
		return acc
	}
	acc = ft(t, acc)

	switch t := t.(type) {
	case *SetType:
		acc = FoldType(ft, acc, t.Elem)
	case *ListType:
		acc = FoldType(ft, acc, t.Elem)
	case *FunType:
		acc = FoldType(ft, acc, t.Arg)
		acc = FoldType(ft, acc, t.Res)
	case *OperType:
		for _, a := range t.Args {
			acc = FoldType(ft, acc, a)
		}
		acc = FoldType(ft, acc, t.Res)
	case *TupleType:
		for _, el := range t.Elems {
			acc = FoldType(ft, acc, el)
		}
	case *RecordType:
		for _, f := range t.Fields {
			acc = FoldType(ft, acc, f.Type)
		}
	case *UnionType:
		for _, v := range t.Variants {
			for _, f := range v.Fields {
				acc = FoldType(ft, acc, f.Type)
			}
		}
	case *PrimitiveType, *ConstType:
	}
	return acc
}

// MaxID returns the largest node id present in any of the modules,
// including module, parameter, let-binding and override ids.
func MaxID(modules ...*Module) uint64 {
	fd := func(d Declaration, acc uint64) uint64 {
		acc = max(acc, d.NodeID())
		if inst, ok := d.(*Instance); ok {
			for _, o := range inst.Overrides {
				acc = max(acc, o.ID)
			}
		}
		return acc
	}
	fe := func(e Expression, acc uint64) uint64 {
		acc = max(acc, e.NodeID())
		switch e := e.(type) {
		case *Lambda:
			for _, p := range e.Params {
				acc = max(acc, p.ID)
			}
		case *Let:
			if e.OpDef != nil {
				acc = max(acc, e.OpDef.ID)
			}
		}
		return acc
	}
	ft := func(t Type, acc uint64) uint64 {
		return max(acc, t.NodeID())
	}

	var maxID uint64
	for _, m := range modules {
		if m == nil {
			continue
		}
		maxID = max(maxID, m.ID)
		maxID = FoldModule(fd, fe, ft, maxID, m)
	}
	return maxID
}

// HasInstances reports whether m or any module nested in it declares an instance.
func HasInstances(m *Module) bool {
	fd := func(d Declaration, found bool) bool {
		_, ok := d.(*Instance)
		return found || ok
	}
	fe := func(_ Expression, found bool) bool { return found }
	ft := func(_ Type, found bool) bool { return found }
	return FoldModule(fd, fe, ft, false, m)
}

// ContainsInstance reports whether m declares an instance at its top level.
func ContainsInstance(m *Module) bool {
	for _, d := range m.Declarations {
		if _, ok := d.(*Instance); ok {
			return true
		}
	}
	return false
}
