package ast

import "fmt"

// NoID is never assigned to a node. Definitions use it to mean "no reference"
// and "no scope".
const NoID uint64 = 0

// Node is the base interface for all AST nodes.
// Every node carries a stable numeric id assigned by the parser (or the loader).
type Node interface {
	NodeID() uint64
}

// Declaration is a Node that may appear in a module body.
type Declaration interface {
	Node
	declarationNode()
	// DeclName returns the name introduced by the declaration, or "" for imports.
	DeclName() string
}

// Qualifier distinguishes the flavours of operator definitions and lambdas.
type Qualifier string

const (
	QualifierPureVal  Qualifier = "pureval"
	QualifierPureDef  Qualifier = "puredef"
	QualifierVal      Qualifier = "val"
	QualifierDef      Qualifier = "def"
	QualifierAction   Qualifier = "action"
	QualifierRun      Qualifier = "run"
	QualifierTemporal Qualifier = "temporal"
	QualifierNondet   Qualifier = "nondet"
)

var qualifiers = map[Qualifier]bool{
	QualifierPureVal: true, QualifierPureDef: true, QualifierVal: true, QualifierDef: true,
	QualifierAction: true, QualifierRun: true, QualifierTemporal: true, QualifierNondet: true,
}

// IsQualifier reports whether q is one of the known qualifiers.
func IsQualifier(q Qualifier) bool { return qualifiers[q] }

// WildcardImport is the DefName of `import M.*`.
const WildcardImport = "*"

// Module is a named container of declarations. Nested modules appear in
// Declarations as *ModuleDecl.
type Module struct {
	ID           uint64
	Name         string
	Declarations []Declaration
}

func (m *Module) NodeID() uint64 { return m.ID }

// ConstDecl declares a module parameter: const N: int
type ConstDecl struct {
	ID   uint64
	Name string
	Type Type
}

func (d *ConstDecl) NodeID() uint64   { return d.ID }
func (d *ConstDecl) declarationNode() {}
func (d *ConstDecl) DeclName() string { return d.Name }

// VarDecl declares a state variable: var x: int
type VarDecl struct {
	ID   uint64
	Name string
	Type Type
}

func (d *VarDecl) NodeID() uint64   { return d.ID }
func (d *VarDecl) declarationNode() {}
func (d *VarDecl) DeclName() string { return d.Name }

// OpDef is an operator definition: def f(x) = x + 1
// Parameters are expressed as a *Lambda body.
// OpDef also appears inside *Let expressions.
type OpDef struct {
	ID             uint64
	Name           string
	Qualifier      Qualifier
	Expr           Expression
	TypeAnnotation Type // Optional
}

func (d *OpDef) NodeID() uint64   { return d.ID }
func (d *OpDef) declarationNode() {}
func (d *OpDef) DeclName() string { return d.Name }

// TypeDef declares a type. Type is nil for an uninterpreted type: type T
type TypeDef struct {
	ID   uint64
	Name string
	Type Type
}

func (d *TypeDef) NodeID() uint64   { return d.ID }
func (d *TypeDef) declarationNode() {}
func (d *TypeDef) DeclName() string { return d.Name }

// IsOpaque reports whether the type declaration has no definition.
func (d *TypeDef) IsOpaque() bool { return d.Type == nil }

// AssumeDecl is an assumption: assume NPos = N > 0
type AssumeDecl struct {
	ID         uint64
	Name       string
	Assumption Expression
}

func (d *AssumeDecl) NodeID() uint64   { return d.ID }
func (d *AssumeDecl) declarationNode() {}
func (d *AssumeDecl) DeclName() string { return d.Name }

// Import brings names of another module into scope.
//
//	import M.x      DefName = "x"
//	import M.*      DefName = WildcardImport
//	import M.Inner  DefName = "Inner" (a nested module of M)
type Import struct {
	ID         uint64
	ModuleName string
	DefName    string
}

func (d *Import) NodeID() uint64   { return d.ID }
func (d *Import) declarationNode() {}
func (d *Import) DeclName() string { return "" }

// IsWildcard reports whether this is `import M.*`.
func (d *Import) IsWildcard() bool { return d.DefName == WildcardImport }

// Override binds one prototype constant in an instance: N = 3
type Override struct {
	ID    uint64
	Param string
	Expr  Expression
}

// Instance instantiates a prototype module: module N = M(N = 3, S = Set(1))
type Instance struct {
	ID        uint64
	Name      string
	ProtoName string
	Overrides []Override
}

func (d *Instance) NodeID() uint64   { return d.ID }
func (d *Instance) declarationNode() {}
func (d *Instance) DeclName() string { return d.Name }

// Override returns the override for param, if any.
func (d *Instance) Override(param string) (Override, bool) {
	for _, o := range d.Overrides {
		if o.Param == param {
			return o, true
		}
	}
	return Override{}, false
}

// ModuleDecl wraps a nested module declaration.
type ModuleDecl struct {
	Module *Module
}

func (d *ModuleDecl) NodeID() uint64   { return d.Module.ID }
func (d *ModuleDecl) declarationNode() {}
func (d *ModuleDecl) DeclName() string { return d.Module.Name }

// DeclKind returns the surface keyword of a declaration, for logs and errors.
func DeclKind(d Declaration) string {
	switch d := d.(type) {
	case *ConstDecl:
		return "const"
	case *VarDecl:
		return "var"
	case *OpDef:
		return string(d.Qualifier)
	case *TypeDef:
		return "type"
	case *AssumeDecl:
		return "assume"
	case *Import:
		return "import"
	case *Instance:
		return "instance"
	case *ModuleDecl:
		return "module"
	default:
		return fmt.Sprintf("%T", d)
	}
}

// Location is a position in a module forest document.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// SourceMap maps node ids to where they were read from.
type SourceMap map[uint64]Location

// Lookup returns the location of id, if known.
func (sm SourceMap) Lookup(id uint64) (Location, bool) {
	if sm == nil {
		return Location{}, false
	}
	loc, ok := sm[id]
	return loc, ok
}
