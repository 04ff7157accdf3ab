package lang

// Expr is a node of a compiled expression tree. Its String method returns
// source text that compiles back to an equivalent tree.
type Expr interface {
	String() string

	exprNode()
}

// Literal is a constant value.
type Literal struct {
	Value Value
}

// Binary applies Op to Left and Right. Conditional nodes hold a Colon node on
// their right side carrying the two branches.
type Binary struct {
	Left  Expr
	Right Expr
	Op    Operator
}

// Unary applies a prefix operator: OpNot, OpReturn, or OpSubtract for
// negation.
type Unary struct {
	Operand Expr
	Op      Operator
}

// Access walks a chain of steps from a root name.
type Access struct {
	Steps []Step
}

// BlockExpr evaluates a brace-delimited block in expression position.
type BlockExpr struct {
	Block *Block
}

// StepKind identifies one element of an [Access] chain.
type StepKind int

const (
	StepName StepKind = iota
	StepIndex
	StepCall
)

// Step is a property name, an index expression, or a call argument list.
type Step struct {
	Index Expr
	Name  string
	Args  []Expr
	Kind  StepKind
}

func (*Literal) exprNode()   {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}
func (*Access) exprNode()    {}
func (*BlockExpr) exprNode() {}
