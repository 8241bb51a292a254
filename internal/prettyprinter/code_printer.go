package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/speclink/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Builtin operators printed in infix form, with their symbol.
var infixOperators = map[string]string{
	"or":        "or",
	"and":       "and",
	"implies":   "implies",
	"iff":       "iff",
	"eq":        "==",
	"neq":       "!=",
	"ilt":       "<",
	"igt":       ">",
	"ilte":      "<=",
	"igte":      ">=",
	"iadd":      "+",
	"isub":      "-",
	"imul":      "*",
	"idiv":      "/",
	"imod":      "%",
	"ipow":      "^",
	"assign":    "'=",
	"in":        "in",
	"contains":  "contains",
	"subseteq":  "subseteq",
	"union":     "union",
	"intersect": "intersect",
	"exclude":   "exclude",
}

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"iff":       1,
	"implies":   2,
	"or":        3,
	"and":       4,
	"'=":        5,
	"==":        6,
	"!=":        6,
	"<":         6,
	">":         6,
	"<=":        6,
	">=":        6,
	"in":        6,
	"contains":  6,
	"subseteq":  6,
	"union":     7,
	"intersect": 7,
	"exclude":   7,
	"+":         8,
	"-":         8,
	"*":         9,
	"/":         9,
	"%":         9,
	"^":         10, // right-assoc
}

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 11 // Default high precedence for unknown ops
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"^":       true,
	"implies": true,
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	column int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// PrintModule renders modules in surface syntax.
func PrintModule(modules ...*ast.Module) string {
	p := NewCodePrinter()
	for i, m := range modules {
		if i > 0 {
			p.writeln()
		}
		p.PrintModule(m)
	}
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

func (p *CodePrinter) PrintModule(m *ast.Module) {
	p.writeIndent()
	p.write("module " + m.Name + " {")
	p.writeln()
	p.indent++
	for _, d := range m.Declarations {
		p.printDeclaration(d)
	}
	p.indent--
	p.writeIndent()
	p.write("}")
	p.writeln()
}

func (p *CodePrinter) printDeclaration(d ast.Declaration) {
	if nested, ok := d.(*ast.ModuleDecl); ok {
		p.PrintModule(nested.Module)
		return
	}

	p.writeIndent()
	switch d := d.(type) {
	case *ast.ConstDecl:
		p.write("const " + d.Name + ": ")
		p.printType(d.Type)
	case *ast.VarDecl:
		p.write("var " + d.Name + ": ")
		p.printType(d.Type)
	case *ast.TypeDef:
		p.write("type " + d.Name)
		if !d.IsOpaque() {
			p.write(" = ")
			p.printType(d.Type)
		}
	case *ast.OpDef:
		p.printOpDef(d)
	case *ast.AssumeDecl:
		p.write("assume " + d.Name + " = ")
		p.printExpr(d.Assumption, 0, false)
	case *ast.Import:
		p.write("import " + d.ModuleName + "." + d.DefName)
	case *ast.Instance:
		p.write("module " + d.Name + " = " + d.ProtoName + "(")
		for i, o := range d.Overrides {
			if i > 0 {
				p.write(", ")
			}
			p.write(o.Param + " = ")
			p.printExpr(o.Expr, 0, false)
		}
		p.write(")")
	default:
		p.write("<???>")
	}
	p.writeln()
}

func qualifierKeyword(q ast.Qualifier) string {
	switch q {
	case ast.QualifierPureVal:
		return "pure val"
	case ast.QualifierPureDef:
		return "pure def"
	case "":
		return "def"
	default:
		return string(q)
	}
}

func (p *CodePrinter) printOpDef(d *ast.OpDef) {
	p.write(qualifierKeyword(d.Qualifier) + " " + d.Name)
	body := d.Expr
	// def f(x, y) = body is stored as a lambda
	if lam, ok := body.(*ast.Lambda); ok && d.Qualifier != ast.QualifierPureVal && d.Qualifier != ast.QualifierVal {
		p.printParams(lam.Params)
		body = lam.Body
	}
	if d.TypeAnnotation != nil {
		p.write(": ")
		p.printType(d.TypeAnnotation)
	}
	p.write(" = ")
	p.printExpr(body, 0, false)
}

func (p *CodePrinter) printParams(params []ast.Param) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		if param.Type != nil {
			p.write(": ")
			p.printType(param.Type)
		}
	}
	p.write(")")
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	switch e := expr.(type) {
	case nil:
		p.write("<???>")
	case *ast.Name:
		p.write(e.Name)
	case *ast.BoolLit:
		p.write(strconv.FormatBool(e.Value))
	case *ast.IntLit:
		p.write(strconv.FormatInt(e.Value, 10))
	case *ast.StrLit:
		p.write(strconv.Quote(e.Value))
	case *ast.App:
		op, infix := infixOperators[e.Opcode]
		if !infix || len(e.Args) != 2 {
			p.write(e.Opcode + "(")
			p.printArgs(e.Args)
			p.write(")")
			return
		}
		prec := getPrecedence(op)
		needParens := prec < parentPrec
		// For same precedence, check associativity
		if prec == parentPrec {
			needParens = isRight != rightAssoc[op]
		}
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Args[0], prec, false)
		p.write(" " + op + " ")
		p.printExpr(e.Args[1], prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.Lambda:
		if parentPrec > 0 {
			p.write("(")
		}
		p.printParams(e.Params)
		p.write(" => ")
		p.printExpr(e.Body, 0, false)
		if parentPrec > 0 {
			p.write(")")
		}
	case *ast.Let:
		p.write("{")
		p.writeln()
		p.indent++
		p.writeIndent()
		if e.OpDef != nil {
			p.printOpDef(e.OpDef)
		}
		p.writeln()
		p.writeIndent()
		p.printExpr(e.Body, 0, false)
		p.writeln()
		p.indent--
		p.writeIndent()
		p.write("}")
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) printArgs(args []ast.Expression) {
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(a, 0, false)
	}
}

// PrintType renders a type on its own.
func PrintType(t ast.Type) string {
	p := NewCodePrinter()
	p.printType(t)
	return p.String()
}

func (p *CodePrinter) printType(t ast.Type) {
	switch t := t.(type) {
	case nil:
		p.write("<???>")
	case *ast.PrimitiveType:
		p.write(t.Name)
	case *ast.ConstType:
		p.write(t.Name)
	case *ast.SetType:
		p.write("Set[")
		p.printType(t.Elem)
		p.write("]")
	case *ast.ListType:
		p.write("List[")
		p.printType(t.Elem)
		p.write("]")
	case *ast.FunType:
		p.write("(")
		p.printType(t.Arg)
		p.write(" -> ")
		p.printType(t.Res)
		p.write(")")
	case *ast.OperType:
		p.write("(")
		for i, a := range t.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printType(a)
		}
		p.write(") => ")
		p.printType(t.Res)
	case *ast.TupleType:
		p.write("(")
		for i, el := range t.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.printType(el)
		}
		p.write(")")
	case *ast.RecordType:
		p.printFields(t.Fields)
	case *ast.UnionType:
		for i, v := range t.Variants {
			if i > 0 {
				p.write(" | ")
			}
			p.write(v.Label)
			if len(v.Fields) > 0 {
				p.write("(")
				p.printFields(v.Fields)
				p.write(")")
			}
		}
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) printFields(fields []ast.Field) {
	p.write("{ ")
	for i, f := range fields {
		if i > 0 {
			p.write(", ")
		}
		p.write(f.Name + ": ")
		p.printType(f.Type)
	}
	p.write(" }")
}
