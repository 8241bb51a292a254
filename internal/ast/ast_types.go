package ast

// --- Type Nodes ---

// Type represents a type node in the AST.
type Type interface {
	Node
	typeNode()
}

// Primitive type names.
const (
	IntTypeName  = "int"
	BoolTypeName = "bool"
	StrTypeName  = "str"
)

// PrimitiveType is int, bool or str.
type PrimitiveType struct {
	ID   uint64
	Name string
}

func (t *PrimitiveType) NodeID() uint64 { return t.ID }
func (t *PrimitiveType) typeNode()      {}

// ConstType is a reference to a declared type (alias or uninterpreted): T
type ConstType struct {
	ID   uint64
	Name string
}

func (t *ConstType) NodeID() uint64 { return t.ID }
func (t *ConstType) typeNode()      {}

// SetType is Set[Elem].
type SetType struct {
	ID   uint64
	Elem Type
}

func (t *SetType) NodeID() uint64 { return t.ID }
func (t *SetType) typeNode()      {}

// ListType is List[Elem].
type ListType struct {
	ID   uint64
	Elem Type
}

func (t *ListType) NodeID() uint64 { return t.ID }
func (t *ListType) typeNode()      {}

// FunType is a map type: Arg -> Res
type FunType struct {
	ID  uint64
	Arg Type
	Res Type
}

func (t *FunType) NodeID() uint64 { return t.ID }
func (t *FunType) typeNode()      {}

// OperType is an operator signature: (A, B) => C
type OperType struct {
	ID   uint64
	Args []Type
	Res  Type
}

func (t *OperType) NodeID() uint64 { return t.ID }
func (t *OperType) typeNode()      {}

// TupleType is (A, B, C).
type TupleType struct {
	ID    uint64
	Elems []Type
}

func (t *TupleType) NodeID() uint64 { return t.ID }
func (t *TupleType) typeNode()      {}

// Field is a named record component.
type Field struct {
	Name string
	Type Type
}

// RecordType is { a: A, b: B }. Field order is preserved.
type RecordType struct {
	ID     uint64
	Fields []Field
}

func (t *RecordType) NodeID() uint64 { return t.ID }
func (t *RecordType) typeNode()      {}

// Variant is one labelled alternative of a union.
type Variant struct {
	Label  string
	Fields []Field
}

// UnionType is a tagged union of records.
type UnionType struct {
	ID       uint64
	Variants []Variant
}

func (t *UnionType) NodeID() uint64 { return t.ID }
func (t *UnionType) typeNode()      {}
