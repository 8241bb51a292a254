package modules

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/speclink/internal/ast"
)

// decoder turns the yaml node tree of one document into modules. Ids are
// handed out in document order as nodes are entered.
type decoder struct {
	file    string
	nextID  uint64
	sources ast.SourceMap
	names   map[string]bool
}

func (d *decoder) id(n *yaml.Node) uint64 {
	id := d.nextID
	d.nextID++
	d.sources[id] = ast.Location{File: d.file, Line: n.Line, Column: n.Column}
	return id
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return &LoadError{File: d.file, Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

// fields indexes a mapping node by key.
func (d *decoder) fields(n *yaml.Node, what string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "%s must be a mapping", what)
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if _, dup := out[key.Value]; dup {
			return nil, d.errorf(key, "duplicate key %q in %s", key.Value, what)
		}
		out[key.Value] = n.Content[i+1]
	}
	return out, nil
}

func (d *decoder) str(n *yaml.Node, fields map[string]*yaml.Node, key, what string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", d.errorf(n, "%s: missing %q", what, key)
	}
	if v.Kind != yaml.ScalarNode || v.Value == "" {
		return "", d.errorf(v, "%s: %q must be a non-empty string", what, key)
	}
	return v.Value, nil
}

func (d *decoder) seq(fields map[string]*yaml.Node, key, what string) ([]*yaml.Node, error) {
	v, ok := fields[key]
	if !ok {
		return nil, nil
	}
	if v.Kind != yaml.SequenceNode {
		return nil, d.errorf(v, "%s: %q must be a list", what, key)
	}
	return v.Content, nil
}

func (d *decoder) forest(doc *yaml.Node) ([]*ast.Module, error) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	fields, err := d.fields(root, "forest")
	if err != nil {
		return nil, err
	}
	items, err := d.seq(fields, "modules", "forest")
	if err != nil {
		return nil, err
	}
	if items == nil {
		return nil, d.errorf(root, "forest: missing %q", "modules")
	}

	d.names = make(map[string]bool)
	modules := make([]*ast.Module, 0, len(items))
	for _, item := range items {
		m, err := d.module(item)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (d *decoder) module(n *yaml.Node) (*ast.Module, error) {
	fields, err := d.fields(n, "module")
	if err != nil {
		return nil, err
	}
	id := d.id(n)
	name, err := d.str(n, fields, "name", "module")
	if err != nil {
		return nil, err
	}
	if d.names[name] {
		return nil, d.errorf(n, "module %s declared twice", name)
	}
	d.names[name] = true

	items, err := d.seq(fields, "declarations", "module "+name)
	if err != nil {
		return nil, err
	}
	m := &ast.Module{ID: id, Name: name, Declarations: make([]ast.Declaration, 0, len(items))}
	for _, item := range items {
		decl, err := d.declaration(item)
		if err != nil {
			return nil, err
		}
		m.Declarations = append(m.Declarations, decl)
	}
	return m, nil
}

func (d *decoder) declaration(n *yaml.Node) (ast.Declaration, error) {
	fields, err := d.fields(n, "declaration")
	if err != nil {
		return nil, err
	}
	kind, err := d.str(n, fields, "kind", "declaration")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "module":
		body, ok := fields["module"]
		if !ok {
			return nil, d.errorf(n, "module declaration: missing %q", "module")
		}
		m, err := d.module(body)
		if err != nil {
			return nil, err
		}
		return &ast.ModuleDecl{Module: m}, nil
	case "import":
		return d.importDecl(n, fields)
	case "instance":
		return d.instance(n, fields)
	}

	id := d.id(n)
	name, err := d.str(n, fields, "name", kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "const":
		t, err := d.requiredType(n, fields, kind)
		if err != nil {
			return nil, err
		}
		return &ast.ConstDecl{ID: id, Name: name, Type: t}, nil
	case "var":
		t, err := d.requiredType(n, fields, kind)
		if err != nil {
			return nil, err
		}
		return &ast.VarDecl{ID: id, Name: name, Type: t}, nil
	case "typedef":
		t, err := d.optionalType(fields)
		if err != nil {
			return nil, err
		}
		return &ast.TypeDef{ID: id, Name: name, Type: t}, nil
	case "def":
		return d.opDef(n, fields, id, name)
	case "assume":
		body, ok := fields["expr"]
		if !ok {
			return nil, d.errorf(n, "assume %s: missing %q", name, "expr")
		}
		e, err := d.expression(body)
		if err != nil {
			return nil, err
		}
		return &ast.AssumeDecl{ID: id, Name: name, Assumption: e}, nil
	default:
		return nil, d.errorf(fields["kind"], "unknown declaration kind %q", kind)
	}
}

func (d *decoder) opDef(n *yaml.Node, fields map[string]*yaml.Node, id uint64, name string) (*ast.OpDef, error) {
	qualifier := ast.QualifierPureDef
	if q, ok := fields["qualifier"]; ok {
		qualifier = ast.Qualifier(q.Value)
		if !ast.IsQualifier(qualifier) {
			return nil, d.errorf(q, "def %s: unknown qualifier %q", name, q.Value)
		}
	}
	annotation, err := d.optionalType(fields)
	if err != nil {
		return nil, err
	}
	body, ok := fields["expr"]
	if !ok {
		return nil, d.errorf(n, "def %s: missing %q", name, "expr")
	}
	e, err := d.expression(body)
	if err != nil {
		return nil, err
	}
	return &ast.OpDef{ID: id, Name: name, Qualifier: qualifier, Expr: e, TypeAnnotation: annotation}, nil
}

func (d *decoder) importDecl(n *yaml.Node, fields map[string]*yaml.Node) (*ast.Import, error) {
	id := d.id(n)
	moduleName, err := d.str(n, fields, "module", "import")
	if err != nil {
		return nil, err
	}
	defName, err := d.str(n, fields, "name", "import")
	if err != nil {
		return nil, err
	}
	return &ast.Import{ID: id, ModuleName: moduleName, DefName: defName}, nil
}

func (d *decoder) instance(n *yaml.Node, fields map[string]*yaml.Node) (*ast.Instance, error) {
	id := d.id(n)
	name, err := d.str(n, fields, "name", "instance")
	if err != nil {
		return nil, err
	}
	proto, err := d.str(n, fields, "of", "instance "+name)
	if err != nil {
		return nil, err
	}
	items, err := d.seq(fields, "overrides", "instance "+name)
	if err != nil {
		return nil, err
	}

	inst := &ast.Instance{ID: id, Name: name, ProtoName: proto}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		of, err := d.fields(item, "override")
		if err != nil {
			return nil, err
		}
		oid := d.id(item)
		param, err := d.str(item, of, "param", "override")
		if err != nil {
			return nil, err
		}
		if seen[param] {
			return nil, d.errorf(item, "instance %s: %s overridden twice", name, param)
		}
		seen[param] = true
		body, ok := of["expr"]
		if !ok {
			return nil, d.errorf(item, "override %s: missing %q", param, "expr")
		}
		e, err := d.expression(body)
		if err != nil {
			return nil, err
		}
		inst.Overrides = append(inst.Overrides, ast.Override{ID: oid, Param: param, Expr: e})
	}
	return inst, nil
}

// expression decodes an expression. Scalars are shorthands: integers,
// true/false, quoted strings, and otherwise names.
func (d *decoder) expression(n *yaml.Node) (ast.Expression, error) {
	if n.Kind == yaml.ScalarNode {
		return d.scalarExpression(n)
	}
	fields, err := d.fields(n, "expression")
	if err != nil {
		return nil, err
	}
	kind, err := d.str(n, fields, "kind", "expression")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "name":
		id := d.id(n)
		name, err := d.str(n, fields, "name", kind)
		if err != nil {
			return nil, err
		}
		return &ast.Name{ID: id, Name: name}, nil
	case "bool", "int", "str":
		v, ok := fields["value"]
		if !ok {
			return nil, d.errorf(n, "%s literal: missing %q", kind, "value")
		}
		return d.literal(n, kind, v.Value)
	case "app":
		id := d.id(n)
		op, err := d.str(n, fields, "op", kind)
		if err != nil {
			return nil, err
		}
		items, err := d.seq(fields, "args", kind)
		if err != nil {
			return nil, err
		}
		app := &ast.App{ID: id, Opcode: op, Args: make([]ast.Expression, 0, len(items))}
		for _, item := range items {
			arg, err := d.expression(item)
			if err != nil {
				return nil, err
			}
			app.Args = append(app.Args, arg)
		}
		return app, nil
	case "lambda":
		return d.lambda(n, fields)
	case "let":
		id := d.id(n)
		defNode, ok := fields["def"]
		if !ok {
			return nil, d.errorf(n, "let: missing %q", "def")
		}
		df, err := d.fields(defNode, "let binding")
		if err != nil {
			return nil, err
		}
		defID := d.id(defNode)
		name, err := d.str(defNode, df, "name", "let binding")
		if err != nil {
			return nil, err
		}
		def, err := d.opDef(defNode, df, defID, name)
		if err != nil {
			return nil, err
		}
		body, ok := fields["body"]
		if !ok {
			return nil, d.errorf(n, "let: missing %q", "body")
		}
		e, err := d.expression(body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{ID: id, OpDef: def, Body: e}, nil
	default:
		return nil, d.errorf(fields["kind"], "unknown expression kind %q", kind)
	}
}

func (d *decoder) lambda(n *yaml.Node, fields map[string]*yaml.Node) (*ast.Lambda, error) {
	id := d.id(n)
	qualifier := ast.QualifierDef
	if q, ok := fields["qualifier"]; ok {
		qualifier = ast.Qualifier(q.Value)
		if !ast.IsQualifier(qualifier) {
			return nil, d.errorf(q, "lambda: unknown qualifier %q", q.Value)
		}
	}
	items, err := d.seq(fields, "params", "lambda")
	if err != nil {
		return nil, err
	}
	lam := &ast.Lambda{ID: id, Qualifier: qualifier, Params: make([]ast.Param, 0, len(items))}
	for _, item := range items {
		p, err := d.param(item)
		if err != nil {
			return nil, err
		}
		lam.Params = append(lam.Params, p)
	}
	body, ok := fields["body"]
	if !ok {
		return nil, d.errorf(n, "lambda: missing %q", "body")
	}
	if lam.Body, err = d.expression(body); err != nil {
		return nil, err
	}
	return lam, nil
}

// param accepts a bare name or {name, type}.
func (d *decoder) param(n *yaml.Node) (ast.Param, error) {
	if n.Kind == yaml.ScalarNode {
		return ast.Param{ID: d.id(n), Name: n.Value}, nil
	}
	fields, err := d.fields(n, "parameter")
	if err != nil {
		return ast.Param{}, err
	}
	id := d.id(n)
	name, err := d.str(n, fields, "name", "parameter")
	if err != nil {
		return ast.Param{}, err
	}
	t, err := d.optionalType(fields)
	if err != nil {
		return ast.Param{}, err
	}
	return ast.Param{ID: id, Name: name, Type: t}, nil
}

func (d *decoder) scalarExpression(n *yaml.Node) (ast.Expression, error) {
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return d.literal(n, "str", n.Value)
	}
	switch n.ShortTag() {
	case "!!int":
		return d.literal(n, "int", n.Value)
	case "!!bool":
		return d.literal(n, "bool", n.Value)
	}
	if n.Value == "" {
		return nil, d.errorf(n, "empty expression")
	}
	return &ast.Name{ID: d.id(n), Name: n.Value}, nil
}

func (d *decoder) literal(n *yaml.Node, kind, value string) (ast.Expression, error) {
	switch kind {
	case "int":
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return nil, d.errorf(n, "invalid integer %q", value)
		}
		return &ast.IntLit{ID: d.id(n), Value: v}, nil
	case "bool":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, d.errorf(n, "invalid boolean %q", value)
		}
		return &ast.BoolLit{ID: d.id(n), Value: v}, nil
	default:
		return &ast.StrLit{ID: d.id(n), Value: value}, nil
	}
}

func (d *decoder) requiredType(n *yaml.Node, fields map[string]*yaml.Node, what string) (ast.Type, error) {
	t, ok := fields["type"]
	if !ok {
		return nil, d.errorf(n, "%s: missing %q", what, "type")
	}
	return d.typ(t)
}

func (d *decoder) optionalType(fields map[string]*yaml.Node) (ast.Type, error) {
	t, ok := fields["type"]
	if !ok {
		return nil, nil
	}
	return d.typ(t)
}

// typ decodes a type. A scalar is a primitive type name or a reference to a
// declared type.
func (d *decoder) typ(n *yaml.Node) (ast.Type, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "" {
			return nil, d.errorf(n, "empty type")
		}
		switch n.Value {
		case ast.IntTypeName, ast.BoolTypeName, ast.StrTypeName:
			return &ast.PrimitiveType{ID: d.id(n), Name: n.Value}, nil
		}
		return &ast.ConstType{ID: d.id(n), Name: n.Value}, nil
	}

	fields, err := d.fields(n, "type")
	if err != nil {
		return nil, err
	}
	kind, err := d.str(n, fields, "kind", "type")
	if err != nil {
		return nil, err
	}
	id := d.id(n)

	switch kind {
	case ast.IntTypeName, ast.BoolTypeName, ast.StrTypeName:
		return &ast.PrimitiveType{ID: id, Name: kind}, nil
	case "const":
		name, err := d.str(n, fields, "name", "type")
		if err != nil {
			return nil, err
		}
		return &ast.ConstType{ID: id, Name: name}, nil
	case "set", "list":
		elemNode, ok := fields["elem"]
		if !ok {
			return nil, d.errorf(n, "%s type: missing %q", kind, "elem")
		}
		elem, err := d.typ(elemNode)
		if err != nil {
			return nil, err
		}
		if kind == "set" {
			return &ast.SetType{ID: id, Elem: elem}, nil
		}
		return &ast.ListType{ID: id, Elem: elem}, nil
	case "fun":
		arg, err := d.requiredField(n, fields, "arg", kind)
		if err != nil {
			return nil, err
		}
		res, err := d.requiredField(n, fields, "res", kind)
		if err != nil {
			return nil, err
		}
		return &ast.FunType{ID: id, Arg: arg, Res: res}, nil
	case "oper":
		args, err := d.types(fields, "args", kind)
		if err != nil {
			return nil, err
		}
		res, err := d.requiredField(n, fields, "res", kind)
		if err != nil {
			return nil, err
		}
		return &ast.OperType{ID: id, Args: args, Res: res}, nil
	case "tup":
		elems, err := d.types(fields, "elems", kind)
		if err != nil {
			return nil, err
		}
		return &ast.TupleType{ID: id, Elems: elems}, nil
	case "rec":
		fs, err := d.typeFields(fields, "fields", kind)
		if err != nil {
			return nil, err
		}
		return &ast.RecordType{ID: id, Fields: fs}, nil
	case "union":
		items, err := d.seq(fields, "variants", kind)
		if err != nil {
			return nil, err
		}
		u := &ast.UnionType{ID: id}
		for _, item := range items {
			vf, err := d.fields(item, "variant")
			if err != nil {
				return nil, err
			}
			label, err := d.str(item, vf, "label", "variant")
			if err != nil {
				return nil, err
			}
			fs, err := d.typeFields(vf, "fields", "variant "+label)
			if err != nil {
				return nil, err
			}
			u.Variants = append(u.Variants, ast.Variant{Label: label, Fields: fs})
		}
		return u, nil
	default:
		return nil, d.errorf(fields["kind"], "unknown type kind %q", kind)
	}
}

func (d *decoder) requiredField(n *yaml.Node, fields map[string]*yaml.Node, key, what string) (ast.Type, error) {
	v, ok := fields[key]
	if !ok {
		return nil, d.errorf(n, "%s type: missing %q", what, key)
	}
	return d.typ(v)
}

func (d *decoder) types(fields map[string]*yaml.Node, key, what string) ([]ast.Type, error) {
	items, err := d.seq(fields, key, what)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Type, 0, len(items))
	for _, item := range items {
		t, err := d.typ(item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *decoder) typeFields(fields map[string]*yaml.Node, key, what string) ([]ast.Field, error) {
	items, err := d.seq(fields, key, what)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Field, 0, len(items))
	for _, item := range items {
		ff, err := d.fields(item, "field")
		if err != nil {
			return nil, err
		}
		name, err := d.str(item, ff, "name", "field")
		if err != nil {
			return nil, err
		}
		tn, ok := ff["type"]
		if !ok {
			return nil, d.errorf(item, "field %s: missing %q", name, "type")
		}
		t, err := d.typ(tn)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Field{Name: name, Type: t})
	}
	return out, nil
}
