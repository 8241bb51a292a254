package ast

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Name is a reference to a definition: x
type Name struct {
	ID   uint64
	Name string
}

func (e *Name) NodeID() uint64  { return e.ID }
func (e *Name) expressionNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	ID    uint64
	Value bool
}

func (e *BoolLit) NodeID() uint64  { return e.ID }
func (e *BoolLit) expressionNode() {}

// IntLit is an integer literal.
type IntLit struct {
	ID    uint64
	Value int64
}

func (e *IntLit) NodeID() uint64  { return e.ID }
func (e *IntLit) expressionNode() {}

// StrLit is a string literal.
type StrLit struct {
	ID    uint64
	Value string
}

func (e *StrLit) NodeID() uint64  { return e.ID }
func (e *StrLit) expressionNode() {}

// App applies an operator: iadd(x, 1)
// Opcode is a name reference, resolved like *Name.
type App struct {
	ID     uint64
	Opcode string
	Args   []Expression
}

func (e *App) NodeID() uint64  { return e.ID }
func (e *App) expressionNode() {}

// Param is a lambda parameter. Name "_" discards the argument.
type Param struct {
	ID   uint64
	Name string
	Type Type // Optional
}

// Lambda is an anonymous operator: (x, y) => x + y
type Lambda struct {
	ID        uint64
	Params    []Param
	Qualifier Qualifier
	Body      Expression
}

func (e *Lambda) NodeID() uint64  { return e.ID }
func (e *Lambda) expressionNode() {}

// Let binds an operator locally: val y = 2 { y + 1 }
type Let struct {
	ID    uint64
	OpDef *OpDef
	Body  Expression
}

func (e *Let) NodeID() uint64  { return e.ID }
func (e *Let) expressionNode() {}
