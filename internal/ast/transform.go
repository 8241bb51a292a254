package ast

// TransformType rebuilds t bottom-up, applying f to every node after its
// children have been transformed. The input is never modified.
func TransformType(t Type, f func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *SetType:
		return f(&SetType{ID: t.ID, Elem: TransformType(t.Elem, f)})
	case *ListType:
		return f(&ListType{ID: t.ID, Elem: TransformType(t.Elem, f)})
	case *FunType:
		return f(&FunType{ID: t.ID, Arg: TransformType(t.Arg, f), Res: TransformType(t.Res, f)})
	case *OperType:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = TransformType(a, f)
		}
		return f(&OperType{ID: t.ID, Args: args, Res: TransformType(t.Res, f)})
	case *TupleType:
		elems := make([]Type, len(t.Elems))
		for i, el := range t.Elems {
			elems[i] = TransformType(el, f)
		}
		return f(&TupleType{ID: t.ID, Elems: elems})
	case *RecordType:
		return f(&RecordType{ID: t.ID, Fields: transformFields(t.Fields, f)})
	case *UnionType:
		variants := make([]Variant, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = Variant{Label: v.Label, Fields: transformFields(v.Fields, f)}
		}
		return f(&UnionType{ID: t.ID, Variants: variants})
	case *ConstType:
		c := *t
		return f(&c)
	case *PrimitiveType:
		p := *t
		return f(&p)
	default:
		return f(t)
	}
}

// WithTypeID sets the id of t and returns it. It is meant for nodes freshly
// built by TransformType.
func WithTypeID(t Type, id uint64) Type {
	switch t := t.(type) {
	case *PrimitiveType:
		t.ID = id
	case *ConstType:
		t.ID = id
	case *SetType:
		t.ID = id
	case *ListType:
		t.ID = id
	case *FunType:
		t.ID = id
	case *OperType:
		t.ID = id
	case *TupleType:
		t.ID = id
	case *RecordType:
		t.ID = id
	case *UnionType:
		t.ID = id
	}
	return t
}

func transformFields(fields []Field, f func(Type) Type) []Field {
	out := make([]Field, len(fields))
	for i, fl := range fields {
		out[i] = Field{Name: fl.Name, Type: TransformType(fl.Type, f)}
	}
	return out
}

// MapTypes returns a copy of m in which every type (declaration types, type
// annotations, lambda parameter types, nested modules) was rewritten with
// TransformType. Ids and expressions are preserved.
func MapTypes(m *Module, f func(Type) Type) *Module {
	if m == nil {
		return nil
	}
	out := &Module{ID: m.ID, Name: m.Name, Declarations: make([]Declaration, len(m.Declarations))}
	for i, d := range m.Declarations {
		out.Declarations[i] = MapDeclarationTypes(d, f)
	}
	return out
}

// MapDeclarationTypes rewrites the types of a single declaration like MapTypes.
func MapDeclarationTypes(d Declaration, f func(Type) Type) Declaration {
	switch d := d.(type) {
	case *ConstDecl:
		return &ConstDecl{ID: d.ID, Name: d.Name, Type: TransformType(d.Type, f)}
	case *VarDecl:
		return &VarDecl{ID: d.ID, Name: d.Name, Type: TransformType(d.Type, f)}
	case *OpDef:
		return mapOpDefTypes(d, f)
	case *TypeDef:
		return &TypeDef{ID: d.ID, Name: d.Name, Type: TransformType(d.Type, f)}
	case *AssumeDecl:
		return &AssumeDecl{ID: d.ID, Name: d.Name, Assumption: mapExpressionTypes(d.Assumption, f)}
	case *Instance:
		overrides := make([]Override, len(d.Overrides))
		for i, o := range d.Overrides {
			overrides[i] = Override{ID: o.ID, Param: o.Param, Expr: mapExpressionTypes(o.Expr, f)}
		}
		return &Instance{ID: d.ID, Name: d.Name, ProtoName: d.ProtoName, Overrides: overrides}
	case *ModuleDecl:
		return &ModuleDecl{Module: MapTypes(d.Module, f)}
	default:
		return d
	}
}

func mapOpDefTypes(d *OpDef, f func(Type) Type) *OpDef {
	if d == nil {
		return nil
	}
	return &OpDef{
		ID:             d.ID,
		Name:           d.Name,
		Qualifier:      d.Qualifier,
		Expr:           mapExpressionTypes(d.Expr, f),
		TypeAnnotation: TransformType(d.TypeAnnotation, f),
	}
}

func mapExpressionTypes(e Expression, f func(Type) Type) Expression {
	switch e := e.(type) {
	case *App:
		args := make([]Expression, len(e.Args))
		for i, a := range e.Args {
			args[i] = mapExpressionTypes(a, f)
		}
		return &App{ID: e.ID, Opcode: e.Opcode, Args: args}
	case *Lambda:
		params := make([]Param, len(e.Params))
		for i, p := range e.Params {
			params[i] = Param{ID: p.ID, Name: p.Name, Type: TransformType(p.Type, f)}
		}
		return &Lambda{ID: e.ID, Params: params, Qualifier: e.Qualifier, Body: mapExpressionTypes(e.Body, f)}
	case *Let:
		return &Let{ID: e.ID, OpDef: mapOpDefTypes(e.OpDef, f), Body: mapExpressionTypes(e.Body, f)}
	default:
		// Names and literals carry no types and are immutable.
		return e
	}
}
